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
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// BigQuerySource reads records from a table with one row per video and a
// split column. frame_label is a REPEATED INT64 column.
type BigQuerySource struct {
	Client      *bigquery.Client
	DatasetName string
	RecordTable string
}

func NewBigQuerySource(client *bigquery.Client, datasetName string, recordTable string) *BigQuerySource {
	return &BigQuerySource{Client: client, DatasetName: datasetName, RecordTable: recordTable}
}

func (s *BigQuerySource) Name() string {
	return "bigquery:" + s.DatasetName + "." + s.RecordTable
}

// GetFQN returns the table name in the project.dataset.table form SQL expects.
func (s *BigQuerySource) GetFQN() string {
	fqn := s.Client.Dataset(s.DatasetName).Table(s.RecordTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

func (s *BigQuerySource) Load(ctx context.Context, split string) (out []*model.DatasetRecord, err error) {
	q := s.Client.Query(fmt.Sprintf(QryRecordsBySplit, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "split", Value: split}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from BigQuery: %w", err)
	}
	out = make([]*model.DatasetRecord, 0, itr.TotalRows)
	for {
		r := &model.DatasetRecord{}
		err := itr.Next(r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}
