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


// Package test provides helpers and fixtures shared by the test suites:
// temporary configuration and manifest files, sample records and Pub/Sub
// notification payloads.
package test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// mp4Header is the start of an ISO base media file: an ftyp box with the
// isom brand.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
	'a', 'v', 'c', '1', 'm', 'p', '4', '1',
}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// SampleRecords returns a fresh copy of the example split.
func SampleRecords() []*model.DatasetRecord {
	return model.GetExampleRecords()
}

// WriteManifest writes records as dir/<split>.json and returns the file name.
func WriteManifest(t *testing.T, dir string, split string, records []*model.DatasetRecord) string {
	t.Helper()
	fileName := filepath.Join(dir, split+".json")
	data, err := json.MarshalIndent(records, "", "  ")
	HandleErr(err, t)
	HandleErr(os.WriteFile(fileName, data, 0o644), t)
	return fileName
}

// WriteVideo writes a file whose header identifies it as an MP4 container.
func WriteVideo(t *testing.T, fileName string) {
	t.Helper()
	data := make([]byte, 512)
	copy(data, mp4Header)
	HandleErr(os.MkdirAll(filepath.Dir(fileName), 0o755), t)
	HandleErr(os.WriteFile(fileName, data, 0o644), t)
}

// SetupConfig writes body as .env.toml in a temporary directory, points the
// configuration loader at it and returns the loaded configuration.
func SetupConfig(t *testing.T, body string) *cloud.Config {
	t.Helper()
	dir := t.TempDir()
	HandleErr(os.WriteFile(filepath.Join(dir, cloud.ConfigFileBaseName+cloud.ConfigFileExtension), []byte(body), 0o644), t)
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	HandleErr(cloud.LoadConfig(config), t)
	return config
}

// NewFileDatasetConfig returns a configuration reading the example records
// from a temporary directory as the train split. The val and test splits
// hold the first two records.
func NewFileDatasetConfig(t *testing.T) *cloud.Config {
	t.Helper()
	dir := t.TempDir()
	records := SampleRecords()
	WriteManifest(t, dir, "train", records)
	WriteManifest(t, dir, "val", records[:2])
	WriteManifest(t, dir, "test", records[:2])

	return SetupConfig(t, fmt.Sprintf(`
[application]
name = "temporal-align-test"
thread_pool_size = 3

[sampling]
num_frames = 8
num_segments = 2
overlap_rate = 0.5
annotation = "raw"

[dataset]
source = "file"
path = %q
`, dir))
}

// GetTestManifestMessageText returns the GCS notification published when
// object is finalized in bucket.
func GetTestManifestMessageText(bucket string, object string) string {
	return fmt.Sprintf(`{
  "kind": "storage#object",
  "id": "%[1]s/%[2]s/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/%[1]s/o/%[2]s",
  "name": "%[2]s",
  "bucket": "%[1]s",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "application/json",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "2048",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`, bucket, object)
}
