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


package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
	test "github.com/jaycherian/gcp-go-temporal-align/internal/testutil"
)

// countingSource serves fixed records and counts loads.
type countingSource struct {
	records []*model.DatasetRecord
	loads   atomic.Int32
	err     error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Load(_ context.Context, _ string) ([]*model.DatasetRecord, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestDecodeManifest(t *testing.T) {
	jsonData := []byte(`[{"id": 3, "name": "a", "video_file": "a.mp4", "seq_len": 4, "frame_label": [0, 0, 1, 1]}]`)
	records, err := dataset.DecodeManifest("train.json", jsonData)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Id)
	assert.Equal(t, []int{0, 0, 1, 1}, records[0].FrameLabel)

	yamlData := []byte("- id: 4\n  name: b\n  video_file: b.mp4\n  seq_len: 3\n")
	records, err = dataset.DecodeManifest("val.yaml", yamlData)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b.mp4", records[0].VideoFile)
	assert.False(t, records[0].HasLabels())

	_, err = dataset.DecodeManifest("train.json", []byte(`[{"id": 1, "frames": 3}]`))
	assert.Error(t, err)
	_, err = dataset.DecodeManifest("train.json", []byte(`[null]`))
	assert.Error(t, err)
}

func TestEncodeManifestRoundTripsYAML(t *testing.T) {
	records := test.SampleRecords()
	data, err := dataset.EncodeManifest("train.yml", records)
	require.NoError(t, err)
	decoded, err := dataset.DecodeManifest("train.yml", data)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestSplitFromObject(t *testing.T) {
	split, ok := dataset.SplitFromObject("datasets/pouring/train.json")
	assert.True(t, ok)
	assert.Equal(t, "train", split)

	split, ok = dataset.SplitFromObject("val.yaml")
	assert.True(t, ok)
	assert.Equal(t, "val", split)

	_, ok = dataset.SplitFromObject("videos/pouring_001.mp4")
	assert.False(t, ok)
	_, ok = dataset.SplitFromObject("datasets/.json")
	assert.False(t, ok)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	test.WriteManifest(t, dir, "train", test.SampleRecords())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "val.yaml"), []byte("- id: 9\n  name: v\n  video_file: v.mp4\n  seq_len: 5\n"), 0o644))

	source := dataset.NewFileSource(dir)
	records, err := source.Load(context.Background(), "train")
	require.NoError(t, err)
	assert.Len(t, records, len(test.SampleRecords()))

	records, err = source.Load(context.Background(), "val")
	require.NoError(t, err)
	assert.Equal(t, 9, records[0].Id)

	_, err = source.Load(context.Background(), "test")
	assert.Error(t, err)
}

func TestCatalogRecord(t *testing.T) {
	source := &countingSource{records: test.SampleRecords()}
	catalog := dataset.NewCatalog(source, cloud.DefaultSplits, nil)
	ctx := context.Background()

	record, err := catalog.Record(ctx, "train", 1)
	require.NoError(t, err)
	assert.Equal(t, "pouring_002", record.Name)

	_, err = catalog.Record(ctx, "train", 4)
	assert.ErrorIs(t, err, dataset.ErrRecordNotFound)
	_, err = catalog.Record(ctx, "train", -1)
	assert.ErrorIs(t, err, dataset.ErrRecordNotFound)

	_, err = catalog.Record(ctx, "holdout", 0)
	assert.ErrorIs(t, err, dataset.ErrUnknownSplit)

	assert.Equal(t, int32(1), source.loads.Load())
}

func TestCatalogLoadsOnceUnderConcurrency(t *testing.T) {
	source := &countingSource{records: test.SampleRecords()}
	catalog := dataset.NewCatalog(source, []string{"train"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := catalog.Records(context.Background(), "train")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), source.loads.Load())
}

// gatedSource blocks loads of one split until release is closed.
type gatedSource struct {
	records []*model.DatasetRecord
	gated   string
	started chan struct{}
	release chan struct{}
	loads   atomic.Int32
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) Load(ctx context.Context, split string) ([]*model.DatasetRecord, error) {
	if split == s.gated {
		s.loads.Add(1)
		close(s.started)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.records, nil
}

func TestCatalogServesCachedSplitDuringSlowLoad(t *testing.T) {
	source := &gatedSource{
		records: test.SampleRecords(),
		gated:   "train",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	catalog := dataset.NewCatalog(source, cloud.DefaultSplits, nil)
	ctx := context.Background()

	_, err := catalog.Records(ctx, "val")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]*model.DatasetRecord, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := catalog.Records(ctx, "train")
			assert.NoError(t, err)
			results[i] = records
		}()
	}
	<-source.started

	done := make(chan error, 1)
	go func() {
		_, err := catalog.Stats(ctx, "val")
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cached split blocked behind a cold load")
	}

	close(source.release)
	wg.Wait()
	assert.Equal(t, int32(1), source.loads.Load())
	for _, records := range results {
		assert.Len(t, records, len(source.records))
	}
}

func TestCatalogRefreshAndInvalidate(t *testing.T) {
	source := &countingSource{records: test.SampleRecords()}
	catalog := dataset.NewCatalog(source, []string{"train"}, nil)
	ctx := context.Background()

	_, err := catalog.Records(ctx, "train")
	require.NoError(t, err)

	source.records = source.records[:1]
	require.NoError(t, catalog.Refresh(ctx, "train"))
	records, err := catalog.Records(ctx, "train")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	source.err = errors.New("unavailable")
	assert.Error(t, catalog.Refresh(ctx, "train"))
	records, err = catalog.Records(ctx, "train")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	catalog.Invalidate("train")
	_, err = catalog.Records(ctx, "train")
	assert.Error(t, err)

	assert.ErrorIs(t, catalog.Refresh(ctx, "val"), dataset.ErrUnknownSplit)
}

func TestCatalogCuratesAndSummarizes(t *testing.T) {
	records := append(test.SampleRecords(), model.NewDatasetRecord(9, "broken", "broken.mp4", 0, nil))
	curator := &dataset.Curator{Annotation: sampling.AnnotationRaw}
	catalog := dataset.NewCatalog(&countingSource{records: records}, []string{"train"}, curator)
	ctx := context.Background()

	kept, err := catalog.Records(ctx, "train")
	require.NoError(t, err)
	assert.Len(t, kept, 4)

	rejected, err := catalog.Rejections(ctx, "train")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, 9, rejected[0].RecordId)

	stats, err := catalog.Stats(ctx, "train")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 3, stats.Labeled)
	assert.Equal(t, 7, stats.MinSeqLen)
	assert.Equal(t, 40, stats.MaxSeqLen)
}

func TestNewCatalogFromConfig(t *testing.T) {
	config := test.NewFileDatasetConfig(t)
	catalog, err := dataset.NewCatalogFromConfig(config, nil)
	require.NoError(t, err)
	assert.Equal(t, cloud.DefaultSplits, catalog.Splits())

	records, err := catalog.Records(context.Background(), "val")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	config.Dataset.Source = cloud.SourceGCS
	_, err = dataset.NewCatalogFromConfig(config, nil)
	assert.Error(t, err)
}
