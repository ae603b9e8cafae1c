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

// AssembleExample collects the results of the preparation chain into a
// *model.Example, the last output of the chain.
type AssembleExample struct {
	cor.BaseCommand
}

func NewAssembleExample(name string) *AssembleExample {
	return &AssembleExample{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *AssembleExample) Execute(context cor.Context) {
	request, err := get[*model.ExampleRequest](context, ParamRequest)
	if err != nil {
		c.Fail(context, err)
		return
	}
	record, err := get[*model.DatasetRecord](context, ParamRecord)
	if err != nil {
		c.Fail(context, err)
		return
	}
	steps, err := get[sampling.SampledIndices](context, ParamSteps)
	if err != nil {
		c.Fail(context, err)
		return
	}
	labels, err := get[[]int](context, ParamLabels)
	if err != nil {
		c.Fail(context, err)
		return
	}
	bridges, err := get[sampling.BridgeSet](context, ParamBridges)
	if err != nil {
		c.Fail(context, err)
		return
	}

	example := model.NewExample(request, record)
	example.Steps = steps.Ints()
	example.Labels = labels
	example.Bridges = bridges.Triplets()
	if url, ok := context.Get(ParamVideoURL).(string); ok {
		example.VideoURL = url
	}

	context.Add(ParamExample, example)
	c.Succeed(context)
	c.Emit(context, example)
}
