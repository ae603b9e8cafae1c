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


// Package sampling holds the numeric core of example preparation: choosing a
// fixed-size temporal subsample of a frame sequence and deriving the "bridge"
// windows used as ordering supervision.
//
// Two index spaces are involved and they are kept apart by type:
//   - FrameIndex addresses a frame of the full sequence, in [0, seq_len).
//   - StepIndex addresses a position of the sampled subsequence, in [0, num_frames).
//
// Every function that draws random numbers takes an explicit *rand.Rand. None of
// them keep state between calls, so they may be called concurrently as long as
// each goroutine owns its generator.
package sampling

// FrameIndex is a position in the full, decoded frame sequence.
type FrameIndex int

// StepIndex is a position in the sampled subsequence.
type StepIndex int

// SequenceDescriptor is what the core consumes from a dataset record.
type SequenceDescriptor struct {
	SeqLen     int   // Number of frames in the full sequence. Must be positive.
	FrameLabel []int // Optional per-frame group id. When present, len(FrameLabel) == SeqLen.
}

// HasLabels reports whether per-frame group labels are available.
func (d SequenceDescriptor) HasLabels() bool {
	return len(d.FrameLabel) > 0
}

// SampledIndices is the ordered, fixed-width subsample of a sequence. Values
// are non-decreasing and repeat only when the sequence is shorter than the
// requested width.
type SampledIndices []FrameIndex

// Ints returns the indices as plain ints, for encoding and for gathering.
func (s SampledIndices) Ints() []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

// Bridge marks a segment of the sampled subsequence with an interior anchor.
// Head <= Point <= Tail, and Point is strictly between Head and Tail whenever
// the span covers more than one position.
type Bridge struct {
	Head  StepIndex `json:"head" yaml:"head"`
	Point StepIndex `json:"point" yaml:"point"`
	Tail  StepIndex `json:"tail" yaml:"tail"`
}

// Triplet returns the bridge as [head, point, tail].
func (b Bridge) Triplet() [3]int {
	return [3]int{int(b.Head), int(b.Point), int(b.Tail)}
}

// BridgeSet is an ordered list of bridges.
type BridgeSet []Bridge

// Triplets returns every bridge as [head, point, tail].
func (s BridgeSet) Triplets() [][3]int {
	out := make([][3]int, len(s))
	for i, b := range s {
		out[i] = b.Triplet()
	}
	return out
}
