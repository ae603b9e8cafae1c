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


// Package dataset loads split manifests, curates their records and serves
// them to the example workflows. A manifest is a list of model.DatasetRecord
// for one split; it can come from a local directory, a Cloud Storage bucket
// or a BigQuery table.
package dataset

import (
	"context"
	"errors"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

var (
	// ErrUnknownSplit is returned for a split name the catalog is not configured for.
	ErrUnknownSplit = errors.New("unknown split")
	// ErrRecordNotFound is returned for an index outside a split.
	ErrRecordNotFound = errors.New("record not found")
)

// Source reads the records of one split.
type Source interface {
	// Load returns the records of split in manifest order.
	Load(ctx context.Context, split string) ([]*model.DatasetRecord, error)
	// Name identifies the source in logs.
	Name() string
}
