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


// This file creates and holds the Google Cloud clients the application needs.
// Only the clients the configuration calls for are created, so a deployment
// reading manifests from local disk runs without any Google credentials.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at startup with the loaded Config.
//  2. A storage client is created when manifests or videos live in Cloud Storage.
//  3. A BigQuery client is created when records come from BigQuery.
//  4. An IAM credentials client is created when a signer service account is set.
//  5. A Pub/Sub client and one listener per topic subscription are created.
package cloud

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
)

// ServiceClients holds every Google Cloud client and wrapper. Fields that the
// configuration does not need are nil.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                    // Client for Google Cloud Pub/Sub.
	BigQueryClient  *bigquery.Client                  // Client for Google Cloud BigQuery.
	IAMClient       *credentials.IamCredentialsClient // Client for IAM to sign GCS URLs.
	URLSigner       *QuotaAwareURLSigner              // Signs video URLs; nil without a storage client.
	PubSubListeners map[string]*PubSubListener        // Active listeners keyed by the logical name from the config.
}

// Close shuts down every client that was created.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BigQueryClient != nil {
		errs = append(errs, c.BigQueryClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	return errors.Join(errs...)
}

// NeedsStorage reports whether config reads from or signs URLs for Cloud Storage.
func NeedsStorage(config *Config) bool {
	return config.Dataset.Source == SourceGCS || config.Dataset.VideoBucket != "" || config.Application.SignerServiceAccountEmail != ""
}

// NewCloudServiceClients creates the clients config needs. On error every
// client created so far is closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			_ = cloud.Close()
			cloud = nil
		}
	}()

	if NeedsStorage(config) {
		if cloud.StorageClient, err = storage.NewClient(ctx); err != nil {
			return cloud, err
		}
		slog.Info("created storage client")
	}

	if config.Dataset.Source == SourceBigQuery {
		if cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return cloud, err
		}
		slog.Info("created bigquery client", "project", config.Application.GoogleProjectId)
	}

	if config.Application.SignerServiceAccountEmail != "" {
		if cloud.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
			return cloud, err
		}
	}
	if cloud.StorageClient != nil {
		cloud.URLSigner = NewQuotaAwareURLSigner(cloud.StorageClient, cloud.IAMClient,
			config.Application.SignerServiceAccountEmail, int(config.Application.RequestsPerSecond))
	}

	if len(config.TopicSubscriptions) > 0 {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return cloud, err
		}
		// Commands are attached once the workflows are built.
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				return cloud, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	return cloud, nil
}
