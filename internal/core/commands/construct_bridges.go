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
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// ConstructBridges builds the bridges of an example. Raw annotation splits
// the sampled steps into num_segments overlapping windows; labeled annotation
// picks two adjacent label groups of the labels found under its input.
type ConstructBridges struct {
	cor.BaseCommand
}

func NewConstructBridges(name string) *ConstructBridges {
	return &ConstructBridges{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *ConstructBridges) Execute(context cor.Context) {
	labels, err := get[[]int](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	request, err := get[*model.ExampleRequest](context, ParamRequest)
	if err != nil {
		c.Fail(context, err)
		return
	}
	steps, err := get[sampling.SampledIndices](context, ParamSteps)
	if err != nil {
		c.Fail(context, err)
		return
	}

	var bridges sampling.BridgeSet
	cfg := request.Sampling
	switch cfg.Annotation {
	case sampling.AnnotationRaw:
		bridges, err = sampling.ConstructUniformBridges(context.Rand(), steps, cfg.OverlapRate, cfg.NumSegments)
	case sampling.AnnotationLabeled:
		if len(labels) == 0 {
			err = &sampling.ConfigError{Field: "frame_label", Value: nil, Reason: "labeled annotation needs frame labels"}
			break
		}
		bridges, err = sampling.ConstructLabeledBridges(context.Rand(), labels)
	default:
		err = &sampling.ConfigError{Field: "annotation", Value: cfg.Annotation, Reason: fmt.Sprintf("must be %s or %s", sampling.AnnotationRaw, sampling.AnnotationLabeled)}
	}
	if err != nil {
		c.Fail(context, err)
		return
	}

	trace.SpanFromContext(context.GetContext()).SetAttributes(
		attribute.String("annotation", string(cfg.Annotation)),
		attribute.Int("bridges", len(bridges)),
	)
	context.Add(ParamBridges, bridges)
	c.Succeed(context)
	c.Emit(context, bridges)
}
