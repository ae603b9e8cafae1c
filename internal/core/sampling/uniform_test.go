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


package sampling_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

func steps(n int) sampling.SampledIndices {
	out := make(sampling.SampledIndices, n)
	for i := range out {
		out[i] = sampling.FrameIndex(i * 3)
	}
	return out
}

func TestComputeSplit(t *testing.T) {
	split, err := sampling.ComputeSplit(8, 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 4, split.AvgLen)
	assert.Equal(t, 1, split.HalfLap)

	split, err = sampling.ComputeSplit(32, 4, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 8, split.AvgLen)
	assert.Equal(t, 2, split.HalfLap)

	split, err = sampling.ComputeSplit(20, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, split.AvgLen)
	assert.Equal(t, 0, split.HalfLap)
}

// num_frames=8, num_segments=2, overlap_rate=0.5: avg_len=4, half_lap=1.
func TestUniformBridgesTwoSegments(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		bridges, err := sampling.ConstructUniformBridges(sampling.NewRand(seed, 0), steps(8), 0.5, 2)
		require.NoError(t, err)
		require.Len(t, bridges, 2)

		first, second := bridges[0], bridges[1]
		assert.Contains(t, []sampling.StepIndex{0, 1}, first.Head)
		assert.Contains(t, []sampling.StepIndex{4, 5}, first.Tail)
		assert.Contains(t, []sampling.StepIndex{3, 4}, second.Head)
		assert.Equal(t, sampling.StepIndex(7), second.Tail)

		for _, b := range bridges {
			assert.Less(t, b.Head, b.Point)
			assert.Less(t, b.Point, b.Tail)
			// point = head + U[1, avg_len-half_lap-1] = head + U[1, 2]
			assert.LessOrEqual(t, int(b.Point-b.Head), 2)
		}
	}
}

func TestUniformBridgesProperties(t *testing.T) {
	cases := []struct {
		numFrames   int
		numSegments int
		overlapRate float64
	}{
		{8, 2, 0.5},
		{32, 4, 0.5},
		{33, 4, 0.3},
		{20, 3, 0},
		{64, 8, 0.75},
		{16, 1, 0.25},
		{100, 5, 0.9},
		{10, 1, 0},
	}
	for _, tc := range cases {
		split, err := sampling.ComputeSplit(tc.numFrames, tc.numSegments, tc.overlapRate)
		require.NoError(t, err, "%+v", tc)

		for seed := uint64(0); seed < 100; seed++ {
			bridges, err := sampling.ConstructUniformBridges(sampling.NewRand(seed, 1), steps(tc.numFrames), tc.overlapRate, tc.numSegments)
			require.NoError(t, err)
			require.Len(t, bridges, tc.numSegments)

			for _, b := range bridges {
				assert.GreaterOrEqual(t, int(b.Head), 0, "%+v %+v", tc, b)
				assert.Less(t, b.Head, b.Point, "%+v %+v", tc, b)
				assert.Less(t, b.Point, b.Tail, "%+v %+v", tc, b)
				assert.Less(t, int(b.Tail), tc.numFrames, "%+v %+v", tc, b)
				assert.LessOrEqual(t, int(b.Point-b.Head), split.AvgLen-split.HalfLap-1)
			}
			for i := 1; i < len(bridges); i++ {
				overlap := int(bridges[i-1].Tail - bridges[i].Head)
				assert.GreaterOrEqual(t, overlap, 0, "%+v %v", tc, bridges)
				assert.LessOrEqual(t, overlap, 2*split.HalfLap, "%+v %v", tc, bridges)
			}
		}
	}
}

func TestUniformBridgesWithoutOverlap(t *testing.T) {
	bridges, err := sampling.ConstructUniformBridges(sampling.NewRand(5, 5), steps(9), 0, 3)
	require.NoError(t, err)
	require.Len(t, bridges, 3)

	assert.Equal(t, sampling.StepIndex(0), bridges[0].Head)
	assert.Equal(t, sampling.StepIndex(3), bridges[0].Tail)
	assert.Equal(t, sampling.StepIndex(3), bridges[1].Head)
	assert.Equal(t, sampling.StepIndex(6), bridges[1].Tail)
	// The last tail is pulled one step inside the subsequence, which leaves a
	// single interior position.
	assert.Equal(t, sampling.Bridge{Head: 6, Point: 7, Tail: 8}, bridges[2])
}

func TestUniformBridgesAreReproducible(t *testing.T) {
	a, err := sampling.ConstructUniformBridges(sampling.NewRand(11, 2), steps(32), 0.5, 4)
	require.NoError(t, err)
	b, err := sampling.ConstructUniformBridges(sampling.NewRand(11, 2), steps(32), 0.5, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Triplets(), 4)
}

func TestUniformBridgesDegenerateSplit(t *testing.T) {
	cases := []struct {
		name        string
		numFrames   int
		numSegments int
		overlapRate float64
		segment     int
	}{
		{"segments wider than frames", 3, 4, 0.5, -1},
		{"unit width", 2, 2, 0, -1},
		{"overlap swallows anchor", 10, 2, 0.9, -1},
		{"last segment clipped shut", 4, 2, 0.5, 1},
		{"single segment clipped shut", 8, 1, 0.9, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sampling.ConstructUniformBridges(sampling.NewRand(1, 1), steps(tc.numFrames), tc.overlapRate, tc.numSegments)
			require.Error(t, err)
			assert.ErrorIs(t, err, sampling.ErrDegenerateSplit)
			assert.NotErrorIs(t, err, sampling.ErrInvalidConfiguration)

			var split *sampling.DegenerateSplitError
			require.True(t, errors.As(err, &split))
			assert.Equal(t, tc.segment, split.Segment)
			assert.Equal(t, tc.numFrames, split.NumFrames)
			assert.Contains(t, err.Error(), "avg_len=")
		})
	}
}

func TestUniformBridgesInvalidConfiguration(t *testing.T) {
	for _, tc := range []struct {
		numSegments int
		overlapRate float64
	}{
		{0, 0.5},
		{-2, 0.5},
		{2, 1},
		{2, -0.1},
		{2, math.NaN()},
	} {
		_, err := sampling.ConstructUniformBridges(sampling.NewRand(1, 1), steps(16), tc.overlapRate, tc.numSegments)
		assert.ErrorIs(t, err, sampling.ErrInvalidConfiguration, "%+v", tc)
	}

	_, err := sampling.ConstructUniformBridges(sampling.NewRand(1, 1), nil, 0.5, 2)
	assert.ErrorIs(t, err, sampling.ErrInvalidConfiguration)
}
