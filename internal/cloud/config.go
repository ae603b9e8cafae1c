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


// Package cloud holds the application configuration and the Google Cloud
// clients it needs. Configuration is loaded from TOML files, see LoadConfig.
//
// Structs:
//   - SamplingConfig: default frame and bridge sampling parameters.
//   - DatasetConfig: where split manifests are read from.
//   - CurationConfig: which records are dropped before they reach the sampler.
//   - BigQueryDataSource: the BigQuery dataset and table holding records.
//   - TelemetryConfig: exporter and log settings.
//   - TopicSubscription: a Pub/Sub subscription the server listens on.
//   - Config: the root of the configuration.
package cloud

import (
	"fmt"
	"slices"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// Dataset source kinds.
const (
	SourceFile     = "file"
	SourceGCS      = "gcs"
	SourceBigQuery = "bigquery"
)

// Telemetry exporters.
const (
	ExporterGCP  = "gcp"
	ExporterNone = "none"
)

// DefaultSplits are used when the configuration names none.
var DefaultSplits = []string{"train", "val", "test"}

// SamplingConfig holds the per-example sampling defaults.
type SamplingConfig struct {
	NumFrames   int     `toml:"num_frames"`   // Size of the temporal subsample.
	NumSegments int     `toml:"num_segments"` // Number of uniform bridges in raw mode.
	OverlapRate float64 `toml:"overlap_rate"` // Fraction of a segment shared with its neighbours, in [0, 1).
	Annotation  string  `toml:"annotation"`   // "raw" or "labeled".
	NumContexts int     `toml:"num_contexts"` // Context frames for the model collaborator; not used when sampling.
}

// Params converts the TOML section into a core sampling configuration.
func (s SamplingConfig) Params() (sampling.Config, error) {
	mode, err := sampling.ParseAnnotationMode(s.Annotation)
	if err != nil {
		return sampling.Config{}, err
	}
	cfg := sampling.Config{
		NumFrames:   s.NumFrames,
		NumSegments: s.NumSegments,
		OverlapRate: s.OverlapRate,
		Annotation:  mode,
	}
	return cfg, cfg.Validate()
}

// DatasetConfig tells the catalog where to find split manifests.
type DatasetConfig struct {
	Source      string   `toml:"source"`       // One of "file", "gcs" or "bigquery".
	Path        string   `toml:"path"`         // Local directory holding <split>.json or <split>.yaml.
	Bucket      string   `toml:"bucket"`       // Bucket holding manifests when source is "gcs".
	Prefix      string   `toml:"prefix"`       // Object prefix of the manifests in Bucket.
	Splits      []string `toml:"splits"`       // Allowed split names.
	VideoRoot   string   `toml:"video_root"`   // Local directory video_file paths are relative to.
	VideoBucket string   `toml:"video_bucket"` // Bucket video_file paths are relative to, when set.
}

// CurationConfig controls the filtering applied when a split is loaded.
type CurationConfig struct {
	Enabled         bool `toml:"enabled"`
	MinUsableGroups int  `toml:"min_usable_groups"` // Labeled mode only; two are needed for a bridge pair.
	CheckVideoFiles bool `toml:"check_video_files"` // Sniff local video headers.
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`      // The name of the BigQuery dataset.
	RecordTable string `toml:"record_table"` // Table with one row per video and a split column.
}

// TelemetryConfig selects where traces, metrics and logs go.
type TelemetryConfig struct {
	Exporter string `toml:"exporter"`  // "gcp" or "none".
	LogFile  string `toml:"log_file"`  // Optional file that receives a copy of the logs.
	LogLevel string `toml:"log_level"` // debug, info, warn or error.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Config represents the overall configuration for the application, loaded from TOML files.
type Config struct {
	Application struct {
		Name                      string  `toml:"name"`                         // The name of the application.
		GoogleProjectId           string  `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string  `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int     `toml:"thread_pool_size"`             // Workers used by batch preparation.
		SignerServiceAccountEmail string  `toml:"signer_service_account_email"` // The service account email used for signing GCS URLs.
		ListenAddress             string  `toml:"listen_address"`               // Address the API server binds to.
		RequestsPerSecond         float64 `toml:"requests_per_second"`          // API token bucket refill rate; 0 disables limiting.
		RequestBurst              int     `toml:"request_burst"`                // API token bucket size.
	} `toml:"application"`
	Sampling           SamplingConfig               `toml:"sampling"`
	Dataset            DatasetConfig                `toml:"dataset"`
	Curation           CurationConfig               `toml:"curation"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	Telemetry          TelemetryConfig              `toml:"telemetry"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g., "DatasetTopic").
}

// NewConfig returns a Config with its maps initialized and the defaults every
// deployment shares. Values decoded from TOML overwrite them.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.ThreadPoolSize = 4
	c.Application.ListenAddress = ":8080"
	c.Sampling = SamplingConfig{NumFrames: 20, NumSegments: 3, OverlapRate: 0.5, Annotation: string(sampling.AnnotationRaw)}
	c.Dataset.Source = SourceFile
	c.Curation.MinUsableGroups = 2
	c.Telemetry.Exporter = ExporterNone
	c.Telemetry.LogLevel = "info"
	return c
}

// SplitNames returns the configured splits, or DefaultSplits.
func (c *Config) SplitNames() []string {
	if len(c.Dataset.Splits) == 0 {
		return DefaultSplits
	}
	return c.Dataset.Splits
}

// Validate checks the sections every entry point depends on.
func (c *Config) Validate() error {
	if _, err := c.Sampling.Params(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if !slices.Contains([]string{SourceFile, SourceGCS, SourceBigQuery}, c.Dataset.Source) {
		return fmt.Errorf("dataset: unknown source %q", c.Dataset.Source)
	}
	if c.Dataset.Source == SourceGCS && c.Dataset.Bucket == "" {
		return fmt.Errorf("dataset: source %q needs a bucket", SourceGCS)
	}
	if c.Dataset.Source == SourceBigQuery && (c.BigQueryDataSource.DatasetName == "" || c.BigQueryDataSource.RecordTable == "") {
		return fmt.Errorf("big_query_data_source: dataset and record_table are required")
	}
	if c.Application.ThreadPoolSize <= 0 {
		return fmt.Errorf("application: thread_pool_size must be positive, got %d", c.Application.ThreadPoolSize)
	}
	if c.Telemetry.Exporter != ExporterGCP && c.Telemetry.Exporter != ExporterNone {
		return fmt.Errorf("telemetry: unknown exporter %q", c.Telemetry.Exporter)
	}
	return nil
}
