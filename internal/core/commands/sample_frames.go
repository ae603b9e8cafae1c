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


package commands

import (
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// SampleFrames draws num_frames sorted frame indices from the record found
// under its input.
type SampleFrames struct {
	cor.BaseCommand
}

func NewSampleFrames(name string) *SampleFrames {
	return &SampleFrames{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *SampleFrames) Execute(context cor.Context) {
	record, err := get[*model.DatasetRecord](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	request, err := get[*model.ExampleRequest](context, ParamRequest)
	if err != nil {
		c.Fail(context, err)
		return
	}

	steps, err := sampling.SampleFrames(context.Rand(), record.SeqLen, request.Sampling.NumFrames)
	if err != nil {
		c.Fail(context, err)
		return
	}
	context.Add(ParamSteps, steps)
	c.Succeed(context)
	c.Emit(context, steps)
}
