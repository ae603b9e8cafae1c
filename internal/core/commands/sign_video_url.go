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
	"fmt"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// DefaultSignedURLExpiry is how long a signed video URL stays valid.
const DefaultSignedURLExpiry = 15 * time.Minute

// URLSigner signs GET URLs for Cloud Storage objects.
// *cloud.QuotaAwareURLSigner satisfies it.
type URLSigner interface {
	SignedURL(ctx goctx.Context, gcsURI string, expires time.Duration) (string, error)
}

// SignVideoURL gives the decoding collaborator a signed URL for videos held
// in Cloud Storage: either a gs:// video_file, or a relative video_file when
// a video bucket is configured. Other videos pass through untouched, as does
// everything when no signer is configured. The command forwards its input.
type SignVideoURL struct {
	cor.BaseCommand
	signer      URLSigner
	videoBucket string
	expires     time.Duration
}

func NewSignVideoURL(name string, signer URLSigner, videoBucket string, expires time.Duration) *SignVideoURL {
	if expires <= 0 {
		expires = DefaultSignedURLExpiry
	}
	return &SignVideoURL{
		BaseCommand: *cor.NewBaseCommand(name),
		signer:      signer,
		videoBucket: videoBucket,
		expires:     expires,
	}
}

// VideoURI returns the Cloud Storage URI of videoFile, or "" when the video
// is local.
func (c *SignVideoURL) VideoURI(videoFile string) string {
	switch {
	case videoFile == "":
		return ""
	case cloud.IsGCSURI(videoFile):
		return videoFile
	case c.videoBucket != "":
		return fmt.Sprintf("gs://%s/%s", c.videoBucket, strings.TrimPrefix(videoFile, "/"))
	default:
		return ""
	}
}

func (c *SignVideoURL) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam())
	record, err := get[*model.DatasetRecord](context, ParamRecord)
	if err != nil {
		c.Fail(context, err)
		return
	}

	if uri := c.VideoURI(record.VideoFile); c.signer != nil && uri != "" {
		url, err := c.signer.SignedURL(context.GetContext(), uri, c.expires)
		if err != nil {
			c.Fail(context, fmt.Errorf("sign %s: %w", uri, err))
			return
		}
		context.Add(ParamVideoURL, url)
	}
	c.Succeed(context)
	c.Emit(context, in)
}
