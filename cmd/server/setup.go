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
	"fmt"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/commands"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

// StateManager holds the components the server shares between requests.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	catalog        *dataset.Catalog
	exampleService *services.ExampleService
}

// Close releases the cloud clients.
func (s *StateManager) Close() error {
	return s.cloud.Close()
}

// SetupOS points the configuration loader at ./configs with the "local"
// runtime, unless the environment already says otherwise.
func SetupOS() error {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		return os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return nil
}

// GetConfig loads and validates the configuration.
func GetConfig() (*cloud.Config, error) {
	if err := SetupOS(); err != nil {
		return nil, fmt.Errorf("failed to setup env: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// InitState creates the clients, the catalog and the example service, and
// starts the Pub/Sub listeners.
func InitState(ctx context.Context, config *cloud.Config) (*StateManager, error) {
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, err
	}
	state := &StateManager{config: config, cloud: cloudClients}

	state.catalog, err = dataset.NewCatalogFromConfig(config, cloudClients)
	if err != nil {
		_ = cloudClients.Close()
		return nil, err
	}

	defaults, err := config.Sampling.Params()
	if err != nil {
		_ = cloudClients.Close()
		return nil, err
	}

	var signer commands.URLSigner
	if cloudClients.URLSigner != nil {
		signer = cloudClients.URLSigner
	}
	state.exampleService = services.NewExampleService(state.catalog, signer, config.Dataset.VideoBucket, defaults, config.Application.ThreadPoolSize)
	slog.Info("initialized state",
		"source", config.Dataset.Source,
		"splits", config.SplitNames(),
		"sampling", defaults.String(),
		"signing", signer != nil)

	SetupListeners(ctx, config, cloudClients, state.catalog)
	return state, nil
}
