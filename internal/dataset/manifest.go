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
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// ManifestExtensions lists the manifest formats in lookup order.
var ManifestExtensions = []string{".json", ".yaml", ".yml"}

// DecodeManifest decodes a list of records. The format follows the extension
// of name; anything that is not YAML is read as JSON.
func DecodeManifest(name string, data []byte) ([]*model.DatasetRecord, error) {
	var records []*model.DatasetRecord
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode manifest %s: %w", name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode manifest %s: %w", name, err)
		}
	}
	for i, record := range records {
		if record == nil {
			return nil, fmt.Errorf("decode manifest %s: entry %d is empty", name, i)
		}
	}
	return records, nil
}

// EncodeManifest writes records in the format the extension of name selects.
func EncodeManifest(name string, records []*model.DatasetRecord) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Marshal(records)
	default:
		return json.MarshalIndent(records, "", "  ")
	}
}

// SplitFromObject returns the split a manifest object or file name belongs
// to, e.g. "datasets/pouring/train.json" -> "train".
func SplitFromObject(name string) (string, bool) {
	base := path.Base(name)
	for _, ext := range ManifestExtensions {
		if split, ok := strings.CutSuffix(base, ext); ok && split != "" {
			return split, true
		}
	}
	return "", false
}
