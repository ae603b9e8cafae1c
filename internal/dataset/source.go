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

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// NewSource returns the Source config.Dataset.Source selects. clients may be
// nil for the file source.
func NewSource(config *cloud.Config, clients *cloud.ServiceClients) (Source, error) {
	switch config.Dataset.Source {
	case cloud.SourceFile:
		return NewFileSource(config.Dataset.Path), nil
	case cloud.SourceGCS:
		if clients == nil || clients.StorageClient == nil {
			return nil, errors.New("gcs dataset source needs a storage client")
		}
		return NewGCSSource(clients.StorageClient, config.Dataset.Bucket, config.Dataset.Prefix), nil
	case cloud.SourceBigQuery:
		if clients == nil || clients.BigQueryClient == nil {
			return nil, errors.New("bigquery dataset source needs a bigquery client")
		}
		return NewBigQuerySource(clients.BigQueryClient, config.BigQueryDataSource.DatasetName, config.BigQueryDataSource.RecordTable), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", config.Dataset.Source)
	}
}

// NewCatalogFromConfig wires a catalog with the configured source, splits
// and curation.
func NewCatalogFromConfig(config *cloud.Config, clients *cloud.ServiceClients) (*Catalog, error) {
	source, err := NewSource(config, clients)
	if err != nil {
		return nil, err
	}
	var curator *Curator
	if config.Curation.Enabled {
		mode, err := sampling.ParseAnnotationMode(config.Sampling.Annotation)
		if err != nil {
			return nil, err
		}
		curator = NewCurator(mode, config.Curation, config.Dataset.VideoRoot)
	}
	return NewCatalog(source, config.SplitNames(), curator), nil
}
