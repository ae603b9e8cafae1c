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
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package matches exactly one of
// them through errors.Is.
var (
	// ErrInvalidConfiguration reports a non-positive length or count, an overlap
	// rate outside [0, 1), or an unknown annotation mode.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDegenerateSplit reports a uniform split that leaves no room for an
	// interior anchor.
	ErrDegenerateSplit = errors.New("degenerate split")
	// ErrInsufficientGroups reports a label sequence with fewer than two groups
	// wide enough to host an anchor.
	ErrInsufficientGroups = errors.New("insufficient label groups")
)

// ConfigError names the parameter that failed validation and its value.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// DegenerateSplitError carries the split geometry that made the uniform
// construction impossible.
type DegenerateSplitError struct {
	NumFrames   int
	NumSegments int
	OverlapRate float64
	AvgLen      int
	HalfLap     int
	Segment     int // -1 when the split is degenerate for every segment
}

func (e *DegenerateSplitError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("%s: segment %d has no interior anchor (num_frames=%d num_segments=%d overlap_rate=%g avg_len=%d half_lap=%d)",
			ErrDegenerateSplit, e.Segment, e.NumFrames, e.NumSegments, e.OverlapRate, e.AvgLen, e.HalfLap)
	}
	return fmt.Sprintf("%s: avg_len-half_lap-1=%d < 1 (num_frames=%d num_segments=%d overlap_rate=%g avg_len=%d half_lap=%d)",
		ErrDegenerateSplit, e.AvgLen-e.HalfLap-1, e.NumFrames, e.NumSegments, e.OverlapRate, e.AvgLen, e.HalfLap)
}

func (e *DegenerateSplitError) Unwrap() error { return ErrDegenerateSplit }

// InsufficientGroupsError reports how many label groups were seen and how many
// survived the minimum-span filter.
type InsufficientGroupsError struct {
	Groups   int
	Retained int
}

func (e *InsufficientGroupsError) Error() string {
	return fmt.Sprintf("%s: %d of %d groups span more than one step, need at least 2",
		ErrInsufficientGroups, e.Retained, e.Groups)
}

func (e *InsufficientGroupsError) Unwrap() error { return ErrInsufficientGroups }
