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
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// GCSSource reads gs://<Bucket>/<Prefix>/<split>.json (or .yaml, .yml).
// Transient read failures are retried.
type GCSSource struct {
	Client       *storage.Client
	Bucket       string
	Prefix       string
	retryCounter metric.Int64Counter
}

func NewGCSSource(client *storage.Client, bucket string, prefix string) *GCSSource {
	retryCounter, _ := otel.Meter("github.com/jaycherian/gcp-go-temporal-align/dataset").Int64Counter("gcs-source.counter.retry")
	return &GCSSource{Client: client, Bucket: bucket, Prefix: prefix, retryCounter: retryCounter}
}

func (s *GCSSource) Name() string {
	return fmt.Sprintf("gcs:gs://%s/%s", s.Bucket, s.Prefix)
}

// ObjectName returns the manifest object for split with the given extension.
func (s *GCSSource) ObjectName(split string, ext string) string {
	return path.Join(s.Prefix, split+ext)
}

func (s *GCSSource) Load(ctx context.Context, split string) ([]*model.DatasetRecord, error) {
	for _, ext := range ManifestExtensions {
		objectName := s.ObjectName(split, ext)
		var data []byte
		err := cloud.WithRetries(ctx, s.retryCounter, func(ctx context.Context) error {
			reader, err := s.Client.Bucket(s.Bucket).Object(objectName).NewReader(ctx)
			if errors.Is(err, storage.ErrObjectNotExist) {
				return cloud.Permanent(err)
			}
			if err != nil {
				return err
			}
			defer reader.Close()
			data, err = io.ReadAll(reader)
			return err
		})
		if errors.Is(err, storage.ErrObjectNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read gs://%s/%s: %w", s.Bucket, objectName, err)
		}
		return DecodeManifest(objectName, data)
	}
	return nil, fmt.Errorf("no manifest for split %s in gs://%s/%s", split, s.Bucket, s.Prefix)
}
