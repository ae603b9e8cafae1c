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


package dataset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// headerSize is the number of leading bytes filetype needs to recognise a container.
const headerSize = 262

// Curator drops records the sampler would reject or the decoder could not
// read. In labeled mode a record must have at least MinUsableGroups label
// groups spanning more than one frame; this is a necessary condition for the
// sampled labels to produce a bridge pair, not a sufficient one.
type Curator struct {
	Annotation      sampling.AnnotationMode
	MinUsableGroups int
	CheckVideoFiles bool
	VideoRoot       string
}

// NewCurator builds a curator from the curation and dataset configuration.
func NewCurator(annotation sampling.AnnotationMode, curation cloud.CurationConfig, videoRoot string) *Curator {
	return &Curator{
		Annotation:      annotation,
		MinUsableGroups: curation.MinUsableGroups,
		CheckVideoFiles: curation.CheckVideoFiles,
		VideoRoot:       videoRoot,
	}
}

// Curate splits records into the ones to keep and the reasons for the rest.
// The order of kept records is preserved.
func (c *Curator) Curate(records []*model.DatasetRecord) (kept []*model.DatasetRecord, rejected []model.Rejection) {
	kept = make([]*model.DatasetRecord, 0, len(records))
	for _, record := range records {
		if err := c.check(record); err != nil {
			rejected = append(rejected, model.Rejection{RecordId: record.Id, Name: record.Name, Reason: err.Error()})
			continue
		}
		kept = append(kept, record)
	}
	if len(rejected) > 0 {
		slog.Info("curation dropped records", "kept", len(kept), "rejected", len(rejected))
	}
	return kept, rejected
}

func (c *Curator) check(record *model.DatasetRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if c.Annotation == sampling.AnnotationLabeled {
		if !record.HasLabels() {
			return errors.New("labeled annotation needs frame labels")
		}
		if usable := sampling.CountAnchorable(record.FrameLabel); usable < c.MinUsableGroups {
			return fmt.Errorf("only %d label groups span more than one frame, need %d", usable, c.MinUsableGroups)
		}
	}
	if c.CheckVideoFiles && record.VideoFile != "" && !cloud.IsGCSURI(record.VideoFile) {
		return c.checkVideoFile(record.VideoFile)
	}
	return nil
}

func (c *Curator) checkVideoFile(videoFile string) error {
	fileName := videoFile
	if !filepath.IsAbs(fileName) {
		fileName = filepath.Join(c.VideoRoot, fileName)
	}
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("video file: %w", err)
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("video file %s: %w", fileName, err)
	}
	if !filetype.IsVideo(head[:n]) {
		return fmt.Errorf("video file %s is not a recognised video container", fileName)
	}
	return nil
}
