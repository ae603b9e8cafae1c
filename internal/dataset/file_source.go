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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// FileSource reads <Dir>/<split>.json, .yaml or .yml, the first one found.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Name() string {
	return "file:" + s.Dir
}

func (s *FileSource) Load(ctx context.Context, split string) ([]*model.DatasetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ext := range ManifestExtensions {
		fileName := filepath.Join(s.Dir, split+ext)
		data, err := os.ReadFile(fileName)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return DecodeManifest(fileName, data)
	}
	return nil, fmt.Errorf("no manifest for split %s in %s", split, s.Dir)
}
