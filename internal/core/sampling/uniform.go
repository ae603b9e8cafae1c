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

import "math/rand/v2"

// Split is the geometry of a uniform segmentation of the sampled subsequence.
type Split struct {
	NumFrames   int
	NumSegments int
	OverlapRate float64
	AvgLen      int // nominal segment width
	HalfLap     int // half-width of the jitter band shared by adjacent segments
}

// maxAnchorOffset is the largest distance from a segment head to its anchor.
func (s Split) maxAnchorOffset() int {
	return s.AvgLen - s.HalfLap - 1
}

// lastTailJitter is the upper bound of the draw that pulls the last tail
// inside the subsequence. It is at least 1 so the tail never lands on
// num_frames, including when there is no overlap at all.
func (s Split) lastTailJitter() int {
	return max(1, s.HalfLap)
}

// ComputeSplit derives the segment width and overlap band for a uniform
// segmentation and rejects geometries that leave no interior anchor.
//
// The overlap band is floor(avg_len * r / (2 - r)), which makes the expected
// overlap between neighbours a fraction r of their width. A split is
// degenerate when avg_len - half_lap - 1 < 1, and also when the last segment
// (the only one, if num_segments is 1) could be clipped so hard that no
// position remains between its head and tail.
func ComputeSplit(numFrames, numSegments int, overlapRate float64) (Split, error) {
	if numFrames <= 0 {
		return Split{}, &ConfigError{Field: "num_frames", Value: numFrames, Reason: "must be > 0"}
	}
	if numSegments <= 0 {
		return Split{}, &ConfigError{Field: "num_segments", Value: numSegments, Reason: "must be > 0"}
	}
	if err := validateOverlap(overlapRate); err != nil {
		return Split{}, err
	}

	avgLen := numFrames / numSegments
	split := Split{
		NumFrames:   numFrames,
		NumSegments: numSegments,
		OverlapRate: overlapRate,
		AvgLen:      avgLen,
		HalfLap:     int(float64(avgLen) * overlapRate / (2 - overlapRate)),
	}
	if split.maxAnchorOffset() < 1 {
		return split, split.degenerate(-1)
	}

	last := numSegments - 1
	headMax := last * avgLen
	if numSegments == 1 {
		headMax = split.HalfLap
	}
	tailMin := numFrames - split.lastTailJitter()
	if min(split.maxAnchorOffset(), tailMin-headMax-1) < 1 {
		return split, split.degenerate(last)
	}
	return split, nil
}

func (s Split) degenerate(segment int) error {
	return &DegenerateSplitError{
		NumFrames:   s.NumFrames,
		NumSegments: s.NumSegments,
		OverlapRate: s.OverlapRate,
		AvgLen:      s.AvgLen,
		HalfLap:     s.HalfLap,
		Segment:     segment,
	}
}

// ConstructUniformBridges cuts the sampled subsequence into numSegments evenly
// spaced, overlapping windows and anchors each one at a random interior step.
//
// Segment i nominally covers [i*avg_len, (i+1)*avg_len]. Inner boundaries are
// pushed outward by up to half_lap so neighbours overlap. The first head and
// the last tail are handled separately so every bridge stays inside the
// subsequence: the first head jitters inward from 0 and the last tail is
// pulled in from num_frames by 1..half_lap. A single segment gets both
// treatments. The anchor sits 1..avg_len-half_lap-1 steps after the head,
// capped one step before the tail.
//
// Only len(steps) is used; the constructor works purely in step space.
func ConstructUniformBridges(rng *rand.Rand, steps SampledIndices, overlapRate float64, numSegments int) (BridgeSet, error) {
	split, err := ComputeSplit(len(steps), numSegments, overlapRate)
	if err != nil {
		return nil, err
	}

	avgLen, halfLap := split.AvgLen, split.HalfLap
	last := numSegments - 1
	bridges := make(BridgeSet, numSegments)
	for i := range bridges {
		var head, tail int
		switch {
		case i == 0:
			head = uniformInt(rng, 0, halfLap)
			if numSegments == 1 {
				tail = split.NumFrames - uniformInt(rng, 1, split.lastTailJitter())
			} else {
				tail = avgLen + uniformInt(rng, 0, halfLap)
			}
		case i == last:
			head = i*avgLen - uniformInt(rng, 0, halfLap)
			tail = split.NumFrames - uniformInt(rng, 1, split.lastTailJitter())
		default:
			head = i*avgLen - uniformInt(rng, 0, halfLap)
			tail = (i+1)*avgLen + uniformInt(rng, 0, halfLap)
		}
		reach := min(split.maxAnchorOffset(), tail-head-1)
		point := head + uniformInt(rng, 1, reach)
		bridges[i] = Bridge{Head: StepIndex(head), Point: StepIndex(point), Tail: StepIndex(tail)}
	}
	return bridges, nil
}
