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


// Package workflow assembles commands into the pipelines the API, the CLI and
// the Pub/Sub listeners run.
package workflow

import (
	goctx "context"
	"errors"
	"time"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/commands"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// ExamplePreparationWorkflow turns a *model.ExampleRequest into a
// *model.Example: it looks the record up, samples frames, gathers their
// labels, constructs bridges and, for videos in Cloud Storage, signs a URL
// the decoder can fetch.
type ExamplePreparationWorkflow struct {
	cor.BaseCommand
	store       commands.RecordStore
	signer      commands.URLSigner
	videoBucket string
	urlExpiry   time.Duration
	chain       cor.Chain
}

// NewExamplePreparationWorkflow builds the workflow. store may be nil for
// inline records only; signer may be nil to skip URL signing.
func NewExamplePreparationWorkflow(store commands.RecordStore, signer commands.URLSigner, videoBucket string) *ExamplePreparationWorkflow {
	out := &ExamplePreparationWorkflow{
		BaseCommand: *cor.NewBaseCommand("example-preparation-workflow"),
		store:       store,
		signer:      signer,
		videoBucket: videoBucket,
		urlExpiry:   commands.DefaultSignedURLExpiry,
	}
	out.initializeChain()
	return out
}

func (w *ExamplePreparationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewRecordLookup("record-lookup", w.store))
	out.AddCommand(commands.NewSampleFrames("sample-frames"))
	out.AddCommand(commands.NewGatherLabels("gather-labels"))
	out.AddCommand(commands.NewConstructBridges("construct-bridges"))
	out.AddCommand(commands.NewSignVideoURL("sign-video-url", w.signer, w.videoBucket, w.urlExpiry))
	out.AddCommand(commands.NewAssembleExample("assemble-example"))
	w.chain = out
}

// Execute runs the chain. The caller sets the Context's generator.
func (w *ExamplePreparationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Prepare runs the workflow for one request with the request's generator.
func (w *ExamplePreparationWorkflow) Prepare(ctx goctx.Context, request *model.ExampleRequest) (*model.Example, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.SetRand(request.Rand())
	chCtx.Add(cor.CtxIn, request)

	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		return nil, err
	}
	example, ok := chCtx.Get(commands.ParamExample).(*model.Example)
	if !ok {
		return nil, errors.New("workflow finished without an example")
	}
	return example, nil
}
