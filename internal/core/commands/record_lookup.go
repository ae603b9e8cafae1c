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
	goctx "context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// RecordStore resolves a split and index to a record. *dataset.Catalog
// satisfies it.
type RecordStore interface {
	Record(ctx goctx.Context, split string, index int) (*model.DatasetRecord, error)
}

// RecordLookup turns the *model.ExampleRequest found under its input into the
// record to sample, either the request's inline record or the one the store
// holds at Split/Index.
type RecordLookup struct {
	cor.BaseCommand
	store RecordStore
}

// NewRecordLookup creates the command. store may be nil when every request
// carries an inline record.
func NewRecordLookup(name string, store RecordStore) *RecordLookup {
	return &RecordLookup{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

func (c *RecordLookup) Execute(context cor.Context) {
	request, err := get[*model.ExampleRequest](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	record := request.Inline
	if record == nil {
		if c.store == nil {
			c.Fail(context, errors.New("no record store configured"))
			return
		}
		record, err = c.store.Record(context.GetContext(), request.Split, request.Index)
		if err != nil {
			c.Fail(context, err)
			return
		}
	}
	if err := record.Validate(); err != nil {
		c.Fail(context, err)
		return
	}

	trace.SpanFromContext(context.GetContext()).SetAttributes(
		attribute.String("split", request.Split),
		attribute.Int("index", request.Index),
		attribute.Int("seq_len", record.SeqLen),
	)
	context.Add(ParamRequest, request)
	context.Add(ParamRecord, record)
	c.Succeed(context)
	c.Emit(context, record)
}
