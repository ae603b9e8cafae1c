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
	"math/rand/v2"
	"slices"
	"strconv"
)

// SampleFrames picks numFrames frame indices out of a sequence of seqLen
// frames and returns them in ascending order.
//
// When the sequence is at least as long as the requested width the indices
// are distinct: a uniformly random numFrames-subset of [0, seqLen), which is
// what a truncated random permutation gives once sorted. The subset is drawn
// with Floyd's algorithm, so time and memory are O(numFrames) however long
// the sequence is. Shorter sequences are padded to the fixed width by drawing with
// replacement, so the result may repeat indices.
//
// Inputs:
//   - rng: The generator owned by the caller for this request.
//   - seqLen: Length of the full sequence, > 0.
//   - numFrames: Width of the subsample, > 0.
//
// Outputs:
//   - SampledIndices: numFrames non-decreasing values in [0, seqLen).
//   - error: ErrInvalidConfiguration for non-positive arguments.
func SampleFrames(rng *rand.Rand, seqLen, numFrames int) (SampledIndices, error) {
	if seqLen <= 0 {
		return nil, &ConfigError{Field: "seq_len", Value: seqLen, Reason: "must be > 0"}
	}
	if numFrames <= 0 {
		return nil, &ConfigError{Field: "num_frames", Value: numFrames, Reason: "must be > 0"}
	}

	if seqLen >= numFrames {
		steps := distinctIndices(rng, seqLen, numFrames)
		slices.Sort(steps)
		return steps, nil
	}

	steps := make(SampledIndices, numFrames)
	for i := range steps {
		steps[i] = FrameIndex(rng.IntN(seqLen))
	}
	slices.Sort(steps)
	return steps, nil
}

// distinctIndices draws k distinct values from [0, n), k <= n, using Floyd's
// algorithm: for j in [n-k, n) take t in [0, j], or j itself when t was
// already taken.
func distinctIndices(rng *rand.Rand, n, k int) SampledIndices {
	seen := make(map[int]struct{}, k)
	out := make(SampledIndices, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.IntN(j + 1)
		if _, ok := seen[t]; ok {
			t = j
		}
		seen[t] = struct{}{}
		out = append(out, FrameIndex(t))
	}
	return out
}

// GatherLabels returns the group label of every sampled frame.
func GatherLabels(frameLabel []int, steps SampledIndices) ([]int, error) {
	out := make([]int, len(steps))
	for i, s := range steps {
		if int(s) < 0 || int(s) >= len(frameLabel) {
			return nil, &ConfigError{Field: "frame_label", Value: len(frameLabel), Reason: "does not cover sampled frame " + strconv.Itoa(int(s))}
		}
		out[i] = frameLabel[s]
	}
	return out, nil
}
