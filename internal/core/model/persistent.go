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


// Package model defines the data structures shared by the dataset layer, the
// workflows and the API. This file holds the records that are persisted in a
// dataset manifest or a BigQuery table.
package model

import (
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// ErrInvalidRecord is returned by DatasetRecord.Validate.
var ErrInvalidRecord = errors.New("invalid dataset record")

// DatasetRecord describes one video of a dataset split. Videos are decoded by a
// separate collaborator, so the record only carries the path to the file and
// the per-frame metadata the sampler needs.
type DatasetRecord struct {
	Id         int    `json:"id" yaml:"id" bigquery:"id"`                                                // Dataset-assigned identifier, echoed back in every example.
	Name       string `json:"name" yaml:"name" bigquery:"name"`                                          // Human-readable video name.
	VideoFile  string `json:"video_file" yaml:"video_file" bigquery:"video_file"`                        // Path relative to the dataset video root, or a gs:// URI.
	SeqLen     int    `json:"seq_len" yaml:"seq_len" bigquery:"seq_len"`                                 // Number of decoded frames in the video.
	FrameLabel []int  `json:"frame_label,omitempty" yaml:"frame_label,omitempty" bigquery:"frame_label"` // Optional phase label per frame.
}

// NewDatasetRecord creates a record. frameLabel may be nil for unlabeled videos.
func NewDatasetRecord(id int, name string, videoFile string, seqLen int, frameLabel []int) *DatasetRecord {
	return &DatasetRecord{
		Id:         id,
		Name:       name,
		VideoFile:  videoFile,
		SeqLen:     seqLen,
		FrameLabel: frameLabel,
	}
}

// Validate checks that the record can be sampled: a positive sequence length
// and, when labels are present, exactly one label per frame. A non-positive
// length also matches sampling.ErrInvalidConfiguration.
func (r *DatasetRecord) Validate() error {
	if r.SeqLen <= 0 {
		return fmt.Errorf("%w: record %d (%s): %w", ErrInvalidRecord, r.Id, r.Name,
			&sampling.ConfigError{Field: "seq_len", Value: r.SeqLen, Reason: "must be positive"})
	}
	if len(r.FrameLabel) > 0 && len(r.FrameLabel) != r.SeqLen {
		return fmt.Errorf("%w: record %d (%s): %d frame labels for seq_len %d", ErrInvalidRecord, r.Id, r.Name, len(r.FrameLabel), r.SeqLen)
	}
	return nil
}

// Descriptor returns the part of the record the sampling core works on.
func (r *DatasetRecord) Descriptor() sampling.SequenceDescriptor {
	return sampling.SequenceDescriptor{SeqLen: r.SeqLen, FrameLabel: r.FrameLabel}
}

// HasLabels reports whether the record carries per-frame labels.
func (r *DatasetRecord) HasLabels() bool {
	return len(r.FrameLabel) > 0
}
