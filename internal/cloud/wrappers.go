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


// This file wraps URL signing in a decorator that adds rate limiting and
// retries. Signing a V4 URL on Cloud Run or GKE goes through the IAM
// Credentials SignBlob API, which has a per-project quota; a batch of examples
// can easily ask for hundreds of URLs at once.
package cloud

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// QuotaAwareURLSigner produces V4 signed GET URLs for Cloud Storage objects.
// When an IAM client is set, blobs are signed remotely with SignerEmail's
// key; otherwise the storage client signs with its own credentials.
type QuotaAwareURLSigner struct {
	StorageClient *storage.Client
	IAMClient     *credentials.IamCredentialsClient
	SignerEmail   string
	RateLimit     *rate.Limiter
	retryCounter  metric.Int64Counter
}

// NewQuotaAwareURLSigner creates a signer allowing requestsPerSecond sign
// operations per second, with bursts of the same size.
func NewQuotaAwareURLSigner(storageClient *storage.Client, iamClient *credentials.IamCredentialsClient, signerEmail string, requestsPerSecond int) *QuotaAwareURLSigner {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	retryCounter, _ := otel.Meter("github.com/jaycherian/gcp-go-temporal-align/cloud").Int64Counter("url-signer.counter.retry")
	return &QuotaAwareURLSigner{
		StorageClient: storageClient,
		IAMClient:     iamClient,
		SignerEmail:   signerEmail,
		RateLimit:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		retryCounter:  retryCounter,
	}
}

// SignedURL returns a URL granting GET access to gcsURI until expires elapses.
// It blocks while the rate limiter is empty.
func (q *QuotaAwareURLSigner) SignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	object, err := ParseGCSURI(gcsURI)
	if err != nil {
		return "", err
	}
	if err := q.RateLimit.Wait(ctx); err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	}
	if q.IAMClient != nil && q.SignerEmail != "" {
		opts.GoogleAccessID = q.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			return q.signBlob(ctx, b)
		}
	}

	u, err := q.StorageClient.Bucket(object.Bucket).SignedURL(object.Name, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", object.Bucket, object.Name, err)
	}
	return u, nil
}

func (q *QuotaAwareURLSigner) signBlob(ctx context.Context, payload []byte) (signed []byte, err error) {
	req := &credentialspb.SignBlobRequest{
		Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", q.SignerEmail),
		Payload: payload,
	}
	err = WithRetries(ctx, q.retryCounter, func(ctx context.Context) error {
		resp, err := q.IAMClient.SignBlob(ctx, req)
		if err != nil {
			return fmt.Errorf("IAMClient.SignBlob: %w", err)
		}
		signed = resp.SignedBlob
		return nil
	})
	return signed, err
}
