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


package cloud

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

func TestNewConfigDefaultsAreValid(t *testing.T) {
	config := NewConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultSplits, config.SplitNames())

	params, err := config.Sampling.Params()
	require.NoError(t, err)
	assert.Equal(t, sampling.Config{NumFrames: 20, NumSegments: 3, OverlapRate: 0.5, Annotation: sampling.AnnotationRaw}, params)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		target error
	}{
		{"degenerate split", func(c *Config) { c.Sampling.NumFrames = 3; c.Sampling.NumSegments = 4 }, sampling.ErrDegenerateSplit},
		{"bad overlap", func(c *Config) { c.Sampling.OverlapRate = 1 }, sampling.ErrInvalidConfiguration},
		{"bad annotation", func(c *Config) { c.Sampling.Annotation = "phases" }, sampling.ErrInvalidConfiguration},
		{"unknown source", func(c *Config) { c.Dataset.Source = "s3" }, nil},
		{"gcs without bucket", func(c *Config) { c.Dataset.Source = SourceGCS }, nil},
		{"bigquery without table", func(c *Config) { c.Dataset.Source = SourceBigQuery }, nil},
		{"no workers", func(c *Config) { c.Application.ThreadPoolSize = 0 }, nil},
		{"unknown exporter", func(c *Config) { c.Telemetry.Exporter = "jaeger" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfig()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoadConfigOverridesBaseWithRuntimeFile(t *testing.T) {
	dir := t.TempDir()
	base := `
[application]
name = "temporal-align"
thread_pool_size = 8

[sampling]
num_frames = 32
num_segments = 4
overlap_rate = 0.25
annotation = "raw"

[topic_subscriptions.DatasetTopic]
name = "dataset-updates-sub"
timeout_in_seconds = 30
`
	override := `
[sampling]
annotation = "labeled"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(override), 0o644))
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "unit")

	config := NewConfig()
	require.NoError(t, LoadConfig(config))

	assert.Equal(t, "temporal-align", config.Application.Name)
	assert.Equal(t, 8, config.Application.ThreadPoolSize)
	assert.Equal(t, 32, config.Sampling.NumFrames)
	assert.Equal(t, "labeled", config.Sampling.Annotation)
	assert.Equal(t, ":8080", config.Application.ListenAddress)
	assert.Equal(t, "dataset-updates-sub", config.TopicSubscriptions["DatasetTopic"].Name)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[sampling\nnum_frames = "), 0o644))
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "unit")

	assert.Error(t, LoadConfig(NewConfig()))
}

func TestParseGCSURI(t *testing.T) {
	for _, uri := range []string{
		"gs://videos/pouring/pouring_001.mp4",
		"https://storage.mtls.cloud.google.com/videos/pouring/pouring_001.mp4",
		"https://storage.googleapis.com/videos/pouring/pouring_001.mp4",
	} {
		object, err := ParseGCSURI(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, "videos", object.Bucket)
		assert.Equal(t, "pouring/pouring_001.mp4", object.Name)
		assert.Equal(t, "gs://videos/pouring/pouring_001.mp4", object.URI())
		assert.True(t, IsGCSURI(uri))
	}

	for _, uri := range []string{"pouring_001.mp4", "gs://videos", "gs:///a.mp4", "s3://videos/a.mp4"} {
		_, err := ParseGCSURI(uri)
		assert.Error(t, err, uri)
	}
	assert.False(t, IsGCSURI("/data/pouring_001.mp4"))
}

func TestWithRetries(t *testing.T) {
	retryBackoff = time.Millisecond
	ctx := context.Background()

	calls := 0
	err := WithRetries(ctx, nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("unavailable")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = WithRetries(ctx, nil, func(context.Context) error {
		calls++
		return errors.New("unavailable")
	})
	assert.Error(t, err)
	assert.Equal(t, MaxRetries+1, calls)

	calls = 0
	notFound := errors.New("not found")
	err = WithRetries(ctx, nil, func(context.Context) error {
		calls++
		return Permanent(notFound)
	})
	assert.Same(t, notFound, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetriesStopsOnCancel(t *testing.T) {
	retryBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetries(ctx, nil, func(context.Context) error { return errors.New("unavailable") })
	assert.ErrorIs(t, err, context.Canceled)
}
