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


package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/api"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
	test "github.com/jaycherian/gcp-go-temporal-align/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, options api.Options) *gin.Engine {
	t.Helper()
	config := test.NewFileDatasetConfig(t)
	catalog, err := dataset.NewCatalogFromConfig(config, nil)
	require.NoError(t, err)
	defaults, err := config.Sampling.Params()
	require.NoError(t, err)
	service := services.NewExampleService(catalog, nil, "", defaults, config.Application.ThreadPoolSize)
	options.ServiceName = "api-test"
	return api.NewRouter(service, options)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestStats(t *testing.T) {
	r := newRouter(t, api.Options{})

	w := do(t, r, http.MethodGet, "/api/v1/datasets/train/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[model.DatasetStats](t, w)
	assert.Equal(t, "train", stats.Split)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 3, stats.Labeled)
	assert.Equal(t, 7, stats.MinSeqLen)
	assert.Equal(t, 40, stats.MaxSeqLen)

	w = do(t, r, http.MethodGet, "/api/v1/datasets/holdout/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown_split", decode[api.ErrorResponse](t, w).Invariant)
}

func TestExampleIsReproducibleWithSeed(t *testing.T) {
	r := newRouter(t, api.Options{})

	first := do(t, r, http.MethodGet, "/api/v1/datasets/train/examples/3?seed=42", nil)
	second := do(t, r, http.MethodGet, "/api/v1/datasets/train/examples/3?seed=42", nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	a := decode[model.Example](t, first)
	b := decode[model.Example](t, second)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Bridges, b.Bridges)
	assert.NotEqual(t, a.Id, b.Id)
	assert.Equal(t, "pouring_004", a.Name)
	assert.Len(t, a.Steps, 8)
	assert.Len(t, a.Bridges, 2)
	for _, bridge := range a.Bridges {
		assert.Less(t, bridge[0], bridge[1])
		assert.Less(t, bridge[1], bridge[2])
	}
}

func TestExampleBadRequests(t *testing.T) {
	r := newRouter(t, api.Options{})

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/datasets/train/examples/first", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/datasets/train/examples/0?seed=-1", nil).Code)

	w := do(t, r, http.MethodGet, "/api/v1/datasets/val/examples/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "record_not_found", decode[api.ErrorResponse](t, w).Invariant)
}

func TestBatch(t *testing.T) {
	r := newRouter(t, api.Options{})
	seed := uint64(7)

	w := do(t, r, http.MethodPost, "/api/v1/datasets/train/batches", model.BatchRequest{Indices: []int{0, 3, 9}, Seed: &seed})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[model.BatchResult](t, w)
	require.Len(t, result.Items, 3)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Items[1].Index)
	assert.NotNil(t, result.Items[1].Example)
	assert.Nil(t, result.Items[2].Example)
	assert.NotEmpty(t, result.Items[2].Error)

	again := decode[model.BatchResult](t, do(t, r, http.MethodPost, "/api/v1/datasets/train/batches", model.BatchRequest{Indices: []int{0, 3, 9}, Seed: &seed}))
	assert.Equal(t, result.Items[1].Example.Steps, again.Items[1].Example.Steps)

	w = do(t, r, http.MethodPost, "/api/v1/datasets/train/batches", map[string]any{"indices": []int{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewErrors(t *testing.T) {
	r := newRouter(t, api.Options{})

	tests := []struct {
		name      string
		body      map[string]any
		status    int
		invariant string
	}{
		{
			name:      "overlap out of range",
			body:      map[string]any{"seq_len": 20, "overlap_rate": 1.5},
			status:    http.StatusBadRequest,
			invariant: "invalid_configuration",
		},
		{
			name:      "degenerate split",
			body:      map[string]any{"seq_len": 20, "num_frames": 2, "num_segments": 2},
			status:    http.StatusUnprocessableEntity,
			invariant: "degenerate_split",
		},
		{
			name:      "single label group",
			body:      map[string]any{"seq_len": 4, "frame_label": []int{0, 0, 0, 0}, "annotation": "labeled"},
			status:    http.StatusUnprocessableEntity,
			invariant: "insufficient_groups",
		},
		{
			name:      "sequence too long to preview",
			body:      map[string]any{"seq_len": 2_000_000_000},
			status:    http.StatusBadRequest,
			invariant: "invalid_configuration",
		},
		{
			name:      "negative sequence length",
			body:      map[string]any{"seq_len": -3},
			status:    http.StatusBadRequest,
			invariant: "invalid_configuration",
		},
		{
			name:      "labels shorter than sequence",
			body:      map[string]any{"seq_len": 4, "frame_label": []int{0, 1}},
			status:    http.StatusBadRequest,
			invariant: "invalid_record",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/examples/preview", tt.body)
			assert.Equal(t, tt.status, w.Code)
			body := decode[api.ErrorResponse](t, w)
			assert.Equal(t, tt.invariant, body.Invariant)
			assert.NotEmpty(t, body.Error)
		})
	}

	w := do(t, r, http.MethodPost, "/api/v1/examples/preview", map[string]any{"seq_len": 20, "overlap_rate": 1.5})
	details := decode[api.ErrorResponse](t, w).Details
	assert.Equal(t, "overlap_rate", details["field"])
	assert.Equal(t, 1.5, details["value"])
}

func TestPreview(t *testing.T) {
	r := newRouter(t, api.Options{})

	w := do(t, r, http.MethodPost, "/api/v1/examples/preview", map[string]any{
		"seq_len":     9,
		"frame_label": []int{0, 0, 1, 1, 1, 1, 2, 2, 2},
		"num_frames":  9,
		"annotation":  "labeled",
		"name":        "scoop",
		"seed":        1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	example := decode[model.Example](t, w)
	assert.Equal(t, "scoop", example.Name)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, example.Steps)
	assert.Equal(t, [3]int{6, 7, 8}, example.Bridges[1])
}

func TestRateLimit(t *testing.T) {
	r := newRouter(t, api.Options{RequestsPerSecond: 0.001, RequestBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/datasets/val/stats", nil).Code)
	w := do(t, r, http.MethodGet, "/api/v1/datasets/val/stats", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
