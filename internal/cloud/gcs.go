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


// This file defines models related to Google Cloud Storage (GCS): the payload
// of GCS Pub/Sub notifications and a small internal representation of an
// object.
package cloud

import (
	"fmt"
	"strings"
)

// GCSObjectName is the cor.Context key under which workflow commands share the
// GCSObject being processed.
const GCSObjectName = "__GCS__OBJ__"

// gcsHTTPSPrefixes are the authenticated browser forms of an object URL.
var gcsHTTPSPrefixes = []string{
	"https://storage.mtls.cloud.google.com/",
	"https://storage.cloud.google.com/",
	"https://storage.googleapis.com/",
}

// GCSPubSubNotification maps the JSON message payload GCS publishes when an
// object in a monitored bucket changes.
type GCSPubSubNotification struct {
	Kind           string                 `json:"kind"`           // The kind of the object, typically "storage#object".
	ID             string                 `json:"id"`             // The full ID of the object, including bucket and generation.
	SelfLink       string                 `json:"selfLink"`       // The URI for this object.
	Name           string                 `json:"name"`           // The name of the object within the bucket.
	Bucket         string                 `json:"bucket"`         // The name of the bucket containing the object.
	Generation     string                 `json:"generation"`     // The generation number of the object's content.
	MetaGeneration string                 `json:"metageneration"` // The generation number of the object's metadata.
	ContentType    string                 `json:"contentType"`    // The MIME type of the object's content.
	TimeCreated    string                 `json:"timeCreated"`    // The creation time of the object.
	Updated        string                 `json:"updated"`        // The last modification time of the object.
	Size           string                 `json:"size"`           // The size of the object in bytes.
	MD5Hash        string                 `json:"md5Hash"`        // The MD5 hash of the object's content.
	MetaData       map[string]interface{} `json:"metadata"`       // User-provided metadata, if any.
	Crc32c         string                 `json:"crc32c"`         // The CRC32C checksum of the object's content.
	ETag           string                 `json:"etag"`           // The HTTP ETag of the object.
}

// GCSObject is the part of a notification workflows care about.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "application/json").
}

// URI returns the object as gs://bucket/name.
func (o *GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// IsGCSURI reports whether uri names a Cloud Storage object.
func IsGCSURI(uri string) bool {
	if strings.HasPrefix(uri, "gs://") {
		return true
	}
	for _, prefix := range gcsHTTPSPrefixes {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}

// ParseGCSURI splits a gs:// URI, or one of the storage HTTPS forms, into a
// bucket and an object name.
func ParseGCSURI(uri string) (*GCSObject, error) {
	path, found := strings.CutPrefix(uri, "gs://")
	for _, prefix := range gcsHTTPSPrefixes {
		if found {
			break
		}
		path, found = strings.CutPrefix(uri, prefix)
	}
	if !found {
		return nil, fmt.Errorf("invalid GCS URI format: %s", uri)
	}
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", uri)
	}
	return &GCSObject{Bucket: parts[0], Name: parts[1]}, nil
}
