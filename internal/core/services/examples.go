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


// Package services exposes the operations the API and the CLI offer on top
// of the dataset catalog and the workflows.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/commands"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/workflow"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

const (
	// MaxBatchSize bounds the number of indices a single batch may request.
	MaxBatchSize = 1024
	// MaxPreviewSeqLen bounds the sequence length of a preview request.
	MaxPreviewSeqLen = 1 << 20
	// MaxPreviewNumFrames bounds the subsample width of a preview request.
	MaxPreviewNumFrames = 4096
)

var (
	// ErrInvalidRequest is returned for malformed requests that never reach
	// the sampler, such as an empty batch.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoDataset is returned by dataset operations of a preview-only service.
	ErrNoDataset = errors.New("no dataset configured")
)

// ExampleService prepares examples with the configured sampling defaults.
type ExampleService struct {
	Catalog  *dataset.Catalog                     // Dataset splits; nil when only previews are served.
	Example  *workflow.ExamplePreparationWorkflow // Single-example pipeline.
	Batch    *workflow.BatchWorkflow              // Worker pool over Example.
	Defaults sampling.Config                      // Sampling parameters of dataset examples and preview fallbacks.
}

// NewExampleService wires the workflows around catalog. signer and
// videoBucket control URL signing, see commands.SignVideoURL; pass a nil
// interface, not a nil pointer, to disable it.
func NewExampleService(catalog *dataset.Catalog, signer commands.URLSigner, videoBucket string, defaults sampling.Config, numberOfWorkers int) *ExampleService {
	var store commands.RecordStore
	if catalog != nil {
		store = catalog
	}
	example := workflow.NewExamplePreparationWorkflow(store, signer, videoBucket)
	return &ExampleService{
		Catalog:  catalog,
		Example:  example,
		Batch:    workflow.NewBatchWorkflow(example, numberOfWorkers),
		Defaults: defaults,
	}
}

func (s *ExampleService) catalog() (*dataset.Catalog, error) {
	if s.Catalog == nil {
		return nil, ErrNoDataset
	}
	return s.Catalog, nil
}

// Prepare returns the example for the record at index of split. A non-nil
// seed makes the result reproducible.
func (s *ExampleService) Prepare(ctx context.Context, split string, index int, seed *uint64) (*model.Example, error) {
	if _, err := s.catalog(); err != nil {
		return nil, err
	}
	request := model.NewExampleRequest(split, index, s.Defaults)
	if seed != nil {
		request.WithSeed(*seed, 0)
	}
	return s.Example.Prepare(ctx, request)
}

// PrepareBatch prepares every requested index of split.
func (s *ExampleService) PrepareBatch(ctx context.Context, split string, request *model.BatchRequest) (*model.BatchResult, error) {
	catalog, err := s.catalog()
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckSplit(split); err != nil {
		return nil, err
	}
	if len(request.Indices) == 0 || len(request.Indices) > MaxBatchSize {
		return nil, fmt.Errorf("%w: a batch needs between 1 and %d indices, got %d", ErrInvalidRequest, MaxBatchSize, len(request.Indices))
	}
	return s.Batch.Run(ctx, &workflow.BatchJob{Split: split, Sampling: s.Defaults, Request: request}), nil
}

// Preview samples an inline sequence description, applying any sampling
// overrides of the request on top of the defaults.
func (s *ExampleService) Preview(ctx context.Context, preview *model.PreviewRequest) (*model.Example, error) {
	cfg, err := preview.Apply(s.Defaults)
	if err != nil {
		return nil, err
	}
	if preview.SeqLen > MaxPreviewSeqLen {
		return nil, &sampling.ConfigError{Field: "seq_len", Value: preview.SeqLen, Reason: fmt.Sprintf("must be <= %d", MaxPreviewSeqLen)}
	}
	if cfg.NumFrames > MaxPreviewNumFrames {
		return nil, &sampling.ConfigError{Field: "num_frames", Value: cfg.NumFrames, Reason: fmt.Sprintf("must be <= %d", MaxPreviewNumFrames)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	request := model.NewExampleRequest("", 0, cfg)
	request.Inline = preview.Record()
	if preview.Seed != nil {
		request.WithSeed(*preview.Seed, 0)
	}
	return s.Example.Prepare(ctx, request)
}

// Stats returns the sequence-length statistics of split.
func (s *ExampleService) Stats(ctx context.Context, split string) (*model.DatasetStats, error) {
	catalog, err := s.catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Stats(ctx, split)
}
