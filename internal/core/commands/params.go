// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package commands implements the cor.Command steps the example preparation
// and dataset refresh workflows are built from.
//
// The preparation chain runs once per example:
//
//	record-lookup -> sample-frames -> gather-labels -> construct-bridges -> sign-video-url -> assemble-example
//
// Each command passes its main result to the next through cor.CtxOut and also
// stores it under one of the Param* keys, so later commands can reach results
// produced further up the chain. Random draws always come from the Context's
// generator.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
)

// Context keys shared by the preparation commands.
const (
	ParamRequest  = "__REQUEST__"   // *model.ExampleRequest
	ParamRecord   = "__RECORD__"    // *model.DatasetRecord
	ParamSteps    = "__STEPS__"     // sampling.SampledIndices
	ParamLabels   = "__LABELS__"    // []int
	ParamBridges  = "__BRIDGES__"   // sampling.BridgeSet
	ParamVideoURL = "__VIDEO_URL__" // string
	ParamExample  = "__EXAMPLE__"   // *model.Example
)

// get reads key from context as a T.
func get[T any](context cor.Context, key string) (T, error) {
	value, ok := context.Get(key).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("context key %s: expected %T, got %T", key, zero, context.Get(key))
	}
	return value, nil
}
