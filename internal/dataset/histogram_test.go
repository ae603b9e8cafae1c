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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
	test "github.com/jaycherian/gcp-go-temporal-align/internal/testutil"
)

func TestAutoBinCount(t *testing.T) {
	assert.Equal(t, 0, dataset.AutoBinCount(nil))
	assert.Equal(t, 1, dataset.AutoBinCount([]float64{5, 5, 5}))
	assert.Equal(t, 5, dataset.AutoBinCount([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
}

func TestHistogram(t *testing.T) {
	bins := dataset.Histogram([]float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	require.Len(t, bins, 5)
	for _, bin := range bins {
		assert.Equal(t, 2, bin.Count)
	}
	assert.Equal(t, 1.0, bins[0].Low)
	assert.Equal(t, 10.0, bins[4].High)

	single := dataset.Histogram([]float64{12, 12})
	require.Len(t, single, 1)
	assert.Equal(t, model.HistogramBin{Low: 11.5, High: 12.5, Count: 2}, single[0])

	assert.Nil(t, dataset.Histogram(nil))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, dataset.Median(nil))
	assert.Equal(t, 5.0, dataset.Median([]float64{5}))
	assert.Equal(t, 2.0, dataset.Median([]float64{1, 2, 3}))
	assert.Equal(t, 10.5, dataset.Median([]float64{9, 12}))
	assert.Equal(t, 10.5, dataset.Median([]float64{7, 9, 12, 40}))
}

func TestSummarize(t *testing.T) {
	stats := dataset.Summarize("train", test.SampleRecords())
	assert.Equal(t, "train", stats.Split)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 7, stats.MinSeqLen)
	assert.Equal(t, 40, stats.MaxSeqLen)
	assert.InDelta(t, 17.0, stats.Mean, 1e-9)
	assert.InDelta(t, 10.5, stats.Median, 1e-9)

	total := 0
	for _, bin := range stats.Histogram {
		total += bin.Count
	}
	assert.Equal(t, 4, total)

	empty := dataset.Summarize("val", nil)
	assert.Equal(t, 0, empty.Records)
	assert.Nil(t, empty.Histogram)
}

func TestCuratorLabeled(t *testing.T) {
	curator := &dataset.Curator{Annotation: sampling.AnnotationLabeled, MinUsableGroups: 2}
	kept, rejected := curator.Curate(test.SampleRecords())

	// pouring_003 has a single group longer than one frame; pouring_004 has no labels.
	require.Len(t, kept, 2)
	assert.Equal(t, "pouring_001", kept[0].Name)
	assert.Equal(t, "pouring_002", kept[1].Name)
	require.Len(t, rejected, 2)
	assert.Equal(t, 2, rejected[0].RecordId)
	assert.Contains(t, rejected[0].Reason, "only 1 label groups")
	assert.Equal(t, 3, rejected[1].RecordId)
}

func TestCuratorChecksVideoFiles(t *testing.T) {
	root := t.TempDir()
	test.WriteVideo(t, filepath.Join(root, "good.mp4"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.mp4"), []byte("these are not frames"), 0o644))

	records := []*model.DatasetRecord{
		model.NewDatasetRecord(0, "good", "good.mp4", 10, nil),
		model.NewDatasetRecord(1, "text", "notes.mp4", 10, nil),
		model.NewDatasetRecord(2, "missing", "missing.mp4", 10, nil),
		model.NewDatasetRecord(3, "remote", "gs://videos/remote.mp4", 10, nil),
	}
	curator := &dataset.Curator{Annotation: sampling.AnnotationRaw, CheckVideoFiles: true, VideoRoot: root}
	kept, rejected := curator.Curate(records)

	require.Len(t, kept, 2)
	assert.Equal(t, "good", kept[0].Name)
	assert.Equal(t, "remote", kept[1].Name)
	require.Len(t, rejected, 2)
	assert.Equal(t, "text", rejected[0].Name)
	assert.Equal(t, "missing", rejected[1].Name)
}
