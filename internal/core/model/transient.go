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


package model

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// These objects live in memory while a workflow runs or a response is built;
// none of them is written back to a dataset.

// ExampleRequest asks for one training example drawn from a dataset split.
// When Seed is nil the example gets a fresh generator; otherwise Seed and
// Stream fully determine the sampled frames and bridges. Inline, when set,
// is sampled instead of the record at Split/Index.
type ExampleRequest struct {
	RequestId string
	Split     string
	Index     int
	Seed      *uint64
	Stream    uint64
	Sampling  sampling.Config
	Inline    *DatasetRecord
}

// NewExampleRequest creates a request with a random request id.
func NewExampleRequest(split string, index int, cfg sampling.Config) *ExampleRequest {
	return &ExampleRequest{
		RequestId: uuid.NewString(),
		Split:     split,
		Index:     index,
		Sampling:  cfg,
	}
}

// WithSeed pins the generator of the request.
func (r *ExampleRequest) WithSeed(seed uint64, stream uint64) *ExampleRequest {
	r.Seed = &seed
	r.Stream = stream
	return r
}

// Rand returns the generator the request's workflow draws from.
func (r *ExampleRequest) Rand() *rand.Rand {
	if r.Seed == nil {
		return sampling.FreshRand()
	}
	return sampling.NewRand(*r.Seed, r.Stream)
}

// Example is a prepared training example: the sorted frame indices to decode,
// their labels, and the bridges in step space. Pixels are decoded elsewhere
// from VideoFile (or VideoURL when the video lives in Cloud Storage).
type Example struct {
	Id         string                  `json:"id" yaml:"id"`
	RequestId  string                  `json:"request_id" yaml:"request_id"`
	Split      string                  `json:"split,omitempty" yaml:"split,omitempty"`
	Index      int                     `json:"index" yaml:"index"`
	RecordId   int                     `json:"record_id" yaml:"record_id"`
	Name       string                  `json:"name" yaml:"name"`
	SeqLen     int                     `json:"seq_len" yaml:"seq_len"`
	Annotation sampling.AnnotationMode `json:"annotation" yaml:"annotation"`
	Steps      []int                   `json:"steps" yaml:"steps"`
	Labels     []int                   `json:"labels" yaml:"labels"`
	Bridges    [][3]int                `json:"bridges" yaml:"bridges"`
	VideoFile  string                  `json:"video_file,omitempty" yaml:"video_file,omitempty"`
	VideoURL   string                  `json:"video_url,omitempty" yaml:"video_url,omitempty"`
}

// NewExample starts an example for record under request.
func NewExample(request *ExampleRequest, record *DatasetRecord) *Example {
	return &Example{
		Id:         uuid.NewString(),
		RequestId:  request.RequestId,
		Split:      request.Split,
		Index:      request.Index,
		RecordId:   record.Id,
		Name:       record.Name,
		SeqLen:     record.SeqLen,
		Annotation: request.Sampling.Annotation,
		VideoFile:  record.VideoFile,
	}
}

// PreviewRequest describes a sequence inline, without a dataset. Nil sampling
// fields fall back to the configured defaults.
type PreviewRequest struct {
	SeqLen      int      `json:"seq_len" yaml:"seq_len" binding:"required"`
	FrameLabel  []int    `json:"frame_label,omitempty" yaml:"frame_label,omitempty"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	NumFrames   *int     `json:"num_frames,omitempty" yaml:"num_frames,omitempty"`
	NumSegments *int     `json:"num_segments,omitempty" yaml:"num_segments,omitempty"`
	OverlapRate *float64 `json:"overlap_rate,omitempty" yaml:"overlap_rate,omitempty"`
	Annotation  string   `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Seed        *uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Apply returns base with the request's overrides.
func (p *PreviewRequest) Apply(base sampling.Config) (sampling.Config, error) {
	out := base
	if p.NumFrames != nil {
		out.NumFrames = *p.NumFrames
	}
	if p.NumSegments != nil {
		out.NumSegments = *p.NumSegments
	}
	if p.OverlapRate != nil {
		out.OverlapRate = *p.OverlapRate
	}
	if p.Annotation != "" {
		mode, err := sampling.ParseAnnotationMode(p.Annotation)
		if err != nil {
			return out, err
		}
		out.Annotation = mode
	}
	return out, nil
}

// Record turns the inline description into a record with id 0.
func (p *PreviewRequest) Record() *DatasetRecord {
	name := p.Name
	if name == "" {
		name = "preview"
	}
	return NewDatasetRecord(0, name, "", p.SeqLen, p.FrameLabel)
}

// BatchRequest asks for several examples of one split. Item k of a seeded
// batch uses stream k, so the batch replays regardless of worker scheduling.
type BatchRequest struct {
	Indices []int   `json:"indices" yaml:"indices" binding:"required"`
	Seed    *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// BatchItem is the outcome of one index of a batch.
type BatchItem struct {
	Index   int      `json:"index" yaml:"index"`
	Example *Example `json:"example,omitempty" yaml:"example,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult keeps items in request order.
type BatchResult struct {
	BatchId string      `json:"batch_id" yaml:"batch_id"`
	Split   string      `json:"split" yaml:"split"`
	Seed    *uint64     `json:"seed,omitempty" yaml:"seed,omitempty"`
	Items   []BatchItem `json:"items" yaml:"items"`
	Failed  int         `json:"failed" yaml:"failed"`
}

// NewBatchResult allocates one item per requested index.
func NewBatchResult(split string, request *BatchRequest) *BatchResult {
	items := make([]BatchItem, len(request.Indices))
	for i, index := range request.Indices {
		items[i].Index = index
	}
	return &BatchResult{
		BatchId: uuid.NewString(),
		Split:   split,
		Seed:    request.Seed,
		Items:   items,
	}
}

// HistogramBin counts sequence lengths in [Low, High). The last bin is closed.
type HistogramBin struct {
	Low   float64 `json:"low" yaml:"low"`
	High  float64 `json:"high" yaml:"high"`
	Count int     `json:"count" yaml:"count"`
}

// DatasetStats summarises the sequence lengths of a split.
type DatasetStats struct {
	Split     string         `json:"split" yaml:"split"`
	Records   int            `json:"records" yaml:"records"`
	Labeled   int            `json:"labeled" yaml:"labeled"`
	MinSeqLen int            `json:"min_seq_len" yaml:"min_seq_len"`
	MaxSeqLen int            `json:"max_seq_len" yaml:"max_seq_len"`
	Mean      float64        `json:"mean_seq_len" yaml:"mean_seq_len"`
	Median    float64        `json:"median_seq_len" yaml:"median_seq_len"`
	Histogram []HistogramBin `json:"histogram" yaml:"histogram"`
}

// Rejection explains why curation dropped a record.
type Rejection struct {
	RecordId int    `json:"record_id" yaml:"record_id"`
	Name     string `json:"name" yaml:"name"`
	Reason   string `json:"reason" yaml:"reason"`
}
