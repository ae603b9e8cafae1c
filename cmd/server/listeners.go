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


package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/workflow"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

// SetupListeners attaches the dataset refresh workflow to every configured
// subscription and starts listening. The subscriptions are expected to carry
// finalize notifications of the manifest bucket.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients, catalog *dataset.Catalog) {
	if len(cloudClients.PubSubListeners) == 0 {
		return
	}
	refresh := workflow.NewDatasetRefreshWorkflow(catalog, config.Dataset.Bucket, config.Dataset.Prefix)
	for key, listener := range cloudClients.PubSubListeners {
		listener.SetCommand(refresh)
		listener.SetTimeout(time.Duration(config.TopicSubscriptions[key].TimeoutInSeconds) * time.Second)
		listener.Listen(ctx)
		slog.Info("dataset refresh listener started", "key", key)
	}
}
