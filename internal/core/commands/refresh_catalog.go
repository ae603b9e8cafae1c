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


package commands

import (
	goctx "context"
	"log/slog"
	"path"
	"strings"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

// CatalogRefresher reloads a split. *dataset.Catalog satisfies it.
type CatalogRefresher interface {
	CheckSplit(split string) error
	Refresh(ctx goctx.Context, split string) error
}

// RefreshCatalog reloads the split whose manifest the *cloud.GCSObject under
// its input names. Objects outside bucket/prefix, objects that are not
// manifests and manifests of unconfigured splits are acknowledged and
// ignored, so unrelated uploads to the bucket are not redelivered forever.
// The command outputs the refreshed split name, or "" when it ignored the
// object.
type RefreshCatalog struct {
	cor.BaseCommand
	catalog CatalogRefresher
	bucket  string
	prefix  string
}

func NewRefreshCatalog(name string, catalog CatalogRefresher, bucket string, prefix string) *RefreshCatalog {
	return &RefreshCatalog{BaseCommand: *cor.NewBaseCommand(name), catalog: catalog, bucket: bucket, prefix: prefix}
}

// SplitOf returns the split object is the manifest of, if any.
func (c *RefreshCatalog) SplitOf(object *cloud.GCSObject) (string, bool) {
	if c.bucket != "" && object.Bucket != c.bucket {
		return "", false
	}
	dir := strings.Trim(c.prefix, "/")
	if dir == "" {
		dir = "."
	}
	if path.Dir(object.Name) != dir {
		return "", false
	}
	split, ok := dataset.SplitFromObject(object.Name)
	if !ok || c.catalog.CheckSplit(split) != nil {
		return "", false
	}
	return split, true
}

func (c *RefreshCatalog) Execute(context cor.Context) {
	object, err := get[*cloud.GCSObject](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	split, ok := c.SplitOf(object)
	if !ok {
		slog.InfoContext(context.GetContext(), "ignoring object outside the dataset", "object", object.URI())
		c.Succeed(context)
		c.Emit(context, "")
		return
	}
	if err := c.catalog.Refresh(context.GetContext(), split); err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "refreshed split", "split", split, "object", object.URI())
	c.Succeed(context)
	c.Emit(context, split)
}
