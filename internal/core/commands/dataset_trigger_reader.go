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


// This file defines the first command of the dataset refresh workflow.
//
// Logic Flow:
//  1. The command receives the raw Pub/Sub message data as a JSON string.
//  2. It parses it into a cloud.GCSPubSubNotification.
//  3. It keeps the bucket, object name and content type in a cloud.GCSObject,
//     stored under cloud.GCSObjectName and passed on to the next command.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
)

// DatasetTriggerToGCSObject parses a GCS Pub/Sub notification.
type DatasetTriggerToGCSObject struct {
	cor.BaseCommand
}

func NewDatasetTriggerToGCSObject(name string) *DatasetTriggerToGCSObject {
	return &DatasetTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *DatasetTriggerToGCSObject) Execute(context cor.Context) {
	in, err := get[string](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}
	if out.Bucket == "" || out.Name == "" {
		c.Fail(context, errors.New("GCS notification without bucket or object name"))
		return
	}

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.GCSObjectName, msg)
	c.Succeed(context)
	c.Emit(context, msg)
}
