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

// GatherLabels looks up the label of every sampled frame. Unlabeled records
// produce an empty label list.
type GatherLabels struct {
	cor.BaseCommand
}

func NewGatherLabels(name string) *GatherLabels {
	return &GatherLabels{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *GatherLabels) Execute(context cor.Context) {
	steps, err := get[sampling.SampledIndices](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	record, err := get[*model.DatasetRecord](context, ParamRecord)
	if err != nil {
		c.Fail(context, err)
		return
	}

	labels := []int{}
	if record.HasLabels() {
		if labels, err = sampling.GatherLabels(record.FrameLabel, steps); err != nil {
			c.Fail(context, err)
			return
		}
	}
	context.Add(ParamLabels, labels)
	c.Succeed(context)
	c.Emit(context, labels)
}
