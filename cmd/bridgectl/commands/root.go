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


// Package commands implements the bridgectl subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	corecmd "github.com/jaycherian/gcp-go-temporal-align/internal/core/commands"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
	"github.com/jaycherian/gcp-go-temporal-align/internal/telemetry"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configDir string
	runtime   string
	output    string
	logLevel  string
}

// NewRootCommand returns a fresh command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "bridgectl",
		Short: "Sample temporal bridges from action videos",
		Long: `bridgectl - sample frames and temporal bridges the way the training
loader does, without decoding any video.

Configuration is read from <config-dir>/.env.toml and
<config-dir>/.env.<runtime>.toml, like the server.

Examples:
  # Preview a labeled sequence
  bridgectl sample --seq-len 9 --labels 0,0,1,1,1,1,2,2,2 --annotation labeled --seed 7

  # Sequence-length histogram of the training split
  bridgectl stats train -o yaml

  # Write a curated copy of the validation manifest
  bridgectl curate val --write val.curated.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := telemetry.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(telemetry.NewLogHandler(cmd.ErrOrStderr(), level)))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "configs", "directory holding the .env TOML files")
	flags.StringVar(&opts.runtime, "runtime", "local", "runtime whose .env.<runtime>.toml overrides the base file")
	flags.StringVarP(&opts.output, "output", "o", FormatJSON, "output format: json or yaml")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newSampleCommand(opts),
		newStatsCommand(opts),
		newCurateCommand(opts),
		newBatchCommand(opts),
	)
	return root
}

// Execute runs the command tree with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads and validates the configuration the flags point at.
func (o *globalOptions) loadConfig() (*cloud.Config, error) {
	if err := os.Setenv(cloud.EnvConfigFilePrefix, o.configDir); err != nil {
		return nil, err
	}
	if err := os.Setenv(cloud.EnvConfigRuntime, o.runtime); err != nil {
		return nil, err
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

// environment is what a dataset command needs. close releases the clients.
type environment struct {
	config  *cloud.Config
	clients *cloud.ServiceClients
	service *services.ExampleService
}

func (e *environment) close() {
	if err := e.clients.Close(); err != nil {
		slog.Warn("failed to close cloud clients", "error", err)
	}
}

// newEnvironment loads the configuration and builds the catalog-backed
// service. Topic subscriptions are ignored: the CLI never listens.
func (o *globalOptions) newEnvironment(ctx context.Context) (*environment, error) {
	config, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	config.TopicSubscriptions = nil

	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, err
	}
	catalog, err := dataset.NewCatalogFromConfig(config, clients)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}
	defaults, err := config.Sampling.Params()
	if err != nil {
		_ = clients.Close()
		return nil, err
	}
	var signer corecmd.URLSigner
	if clients.URLSigner != nil {
		signer = clients.URLSigner
	}
	service := services.NewExampleService(catalog, signer, config.Dataset.VideoBucket, defaults, config.Application.ThreadPoolSize)
	return &environment{config: config, clients: clients, service: service}, nil
}
