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


package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
	test "github.com/jaycherian/gcp-go-temporal-align/internal/testutil"
)

func newService(t *testing.T) *services.ExampleService {
	config := test.NewFileDatasetConfig(t)
	catalog, err := dataset.NewCatalogFromConfig(config, nil)
	assert.NoError(t, err)
	defaults, err := config.Sampling.Params()
	assert.NoError(t, err)
	return services.NewExampleService(catalog, nil, "", defaults, config.Application.ThreadPoolSize)
}

func TestPrepare(t *testing.T) {
	svc := newService(t)
	seed := uint64(11)

	a, err := svc.Prepare(context.Background(), "train", 0, &seed)
	assert.NoError(t, err)
	b, err := svc.Prepare(context.Background(), "train", 0, &seed)
	assert.NoError(t, err)
	assert.That(t, reflect.DeepEqual(a.Steps, b.Steps))
	assert.That(t, reflect.DeepEqual(a.Bridges, b.Bridges))
	assert.Equal(t, len(a.Steps), 8)
}

func TestPrepareBatchValidatesRequest(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.PrepareBatch(ctx, "train", &model.BatchRequest{})
	assert.That(t, err != nil)
	_, err = svc.PrepareBatch(ctx, "holdout", &model.BatchRequest{Indices: []int{0}})
	assert.That(t, err != nil)

	result, err := svc.PrepareBatch(ctx, "val", &model.BatchRequest{Indices: []int{1, 0, 1}})
	assert.NoError(t, err)
	assert.Equal(t, len(result.Items), 3)
	assert.Equal(t, result.Failed, 0)
	assert.Equal(t, result.Items[1].Example.Name, "pouring_001")
}

func TestPreview(t *testing.T) {
	svc := services.NewExampleService(nil, nil, "", sampling.Config{NumFrames: 8, NumSegments: 2, OverlapRate: 0.5, Annotation: sampling.AnnotationRaw}, 2)
	ctx := context.Background()
	seed := uint64(3)
	frames := 9

	example, err := svc.Preview(ctx, &model.PreviewRequest{SeqLen: 9, FrameLabel: []int{0, 0, 1, 1, 1, 1, 2, 2, 2}, NumFrames: &frames, Annotation: "labeled", Seed: &seed})
	assert.NoError(t, err)
	assert.Equal(t, example.Name, "preview")
	assert.Equal(t, example.Bridges[1], [3]int{6, 7, 8})

	segments := 4
	_, err = svc.Preview(ctx, &model.PreviewRequest{SeqLen: 30, NumSegments: &segments})
	assert.That(t, err != nil)

	_, err = svc.Stats(ctx, "train")
	assert.That(t, err != nil)
	_, err = svc.Prepare(ctx, "train", 0, nil)
	assert.That(t, err != nil)
}

func TestStats(t *testing.T) {
	stats, err := newService(t).Stats(context.Background(), "train")
	assert.NoError(t, err)
	assert.Equal(t, stats.Records, 4)
	assert.Equal(t, stats.Labeled, 3)
}

func TestPreviewBoundsInputs(t *testing.T) {
	svc := services.NewExampleService(nil, nil, "", sampling.Config{NumFrames: 8, NumSegments: 2, OverlapRate: 0.5, Annotation: sampling.AnnotationRaw}, 2)
	ctx := context.Background()

	_, err := svc.Preview(ctx, &model.PreviewRequest{SeqLen: 2_000_000_000})
	var configErr *sampling.ConfigError
	assert.That(t, errors.As(err, &configErr))
	assert.Equal(t, configErr.Field, "seq_len")

	frames := services.MaxPreviewNumFrames + 1
	_, err = svc.Preview(ctx, &model.PreviewRequest{SeqLen: 100, NumFrames: &frames})
	assert.That(t, errors.As(err, &configErr))
	assert.Equal(t, configErr.Field, "num_frames")
	assert.That(t, errors.Is(err, sampling.ErrInvalidConfiguration))

	example, err := svc.Preview(ctx, &model.PreviewRequest{SeqLen: services.MaxPreviewSeqLen})
	assert.NoError(t, err)
	assert.Equal(t, len(example.Steps), 8)
}
