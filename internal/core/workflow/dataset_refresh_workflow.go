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


package workflow

import (
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/commands"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
)

// DatasetRefreshWorkflow reloads a split of the catalog when its manifest
// changes in Cloud Storage. It is attached to a Pub/Sub listener receiving
// the bucket's object notifications.
type DatasetRefreshWorkflow struct {
	cor.BaseCommand
	catalog commands.CatalogRefresher
	bucket  string
	prefix  string
	chain   cor.Chain
}

// Execute runs the workflow with the raw notification under cor.CtxIn.
func (d *DatasetRefreshWorkflow) Execute(context cor.Context) {
	d.chain.Execute(context)
}

func (d *DatasetRefreshWorkflow) initializeChain() {
	out := cor.NewBaseChain(d.GetName())
	out.AddCommand(commands.NewDatasetTriggerToGCSObject("dataset-trigger-to-gcs-object"))
	out.AddCommand(commands.NewRefreshCatalog("refresh-catalog", d.catalog, d.bucket, d.prefix))
	d.chain = out
}

// NewDatasetRefreshWorkflow creates the workflow for manifests stored under
// gs://bucket/prefix.
func NewDatasetRefreshWorkflow(catalog commands.CatalogRefresher, bucket string, prefix string) *DatasetRefreshWorkflow {
	out := &DatasetRefreshWorkflow{
		BaseCommand: *cor.NewBaseCommand("dataset-refresh-workflow"),
		catalog:     catalog,
		bucket:      bucket,
		prefix:      prefix,
	}
	out.initializeChain()
	return out
}
