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


package sampling

import (
	"fmt"
	"math"
	"strings"
)

// AnnotationMode selects which bridge constructor an example goes through.
type AnnotationMode string

const (
	// AnnotationRaw builds evenly spaced, jitter-overlapping bridges.
	AnnotationRaw AnnotationMode = "raw"
	// AnnotationLabeled builds bridges from per-frame group labels.
	AnnotationLabeled AnnotationMode = "labeled"
)

// ParseAnnotationMode accepts "raw" or "labeled", case-insensitively.
func ParseAnnotationMode(s string) (AnnotationMode, error) {
	switch m := AnnotationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case AnnotationRaw, AnnotationLabeled:
		return m, nil
	default:
		return "", &ConfigError{Field: "annotation", Value: s, Reason: "must be raw or labeled"}
	}
}

// Config is the per-example sampling configuration.
type Config struct {
	NumFrames   int
	NumSegments int
	OverlapRate float64
	Annotation  AnnotationMode
}

// Validate checks every parameter and, for raw annotation, that the uniform
// split leaves room for an interior anchor.
func (c Config) Validate() error {
	if c.NumFrames <= 0 {
		return &ConfigError{Field: "num_frames", Value: c.NumFrames, Reason: "must be > 0"}
	}
	if c.NumSegments <= 0 {
		return &ConfigError{Field: "num_segments", Value: c.NumSegments, Reason: "must be > 0"}
	}
	if err := validateOverlap(c.OverlapRate); err != nil {
		return err
	}
	if _, err := ParseAnnotationMode(string(c.Annotation)); err != nil {
		return err
	}
	if c.Annotation == AnnotationRaw {
		if _, err := ComputeSplit(c.NumFrames, c.NumSegments, c.OverlapRate); err != nil {
			return err
		}
	}
	return nil
}

// String renders the configuration for logs.
func (c Config) String() string {
	return fmt.Sprintf("num_frames=%d num_segments=%d overlap_rate=%g annotation=%s",
		c.NumFrames, c.NumSegments, c.OverlapRate, c.Annotation)
}

func validateOverlap(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate >= 1 {
		return &ConfigError{Field: "overlap_rate", Value: rate, Reason: "must be in [0, 1)"}
	}
	return nil
}
