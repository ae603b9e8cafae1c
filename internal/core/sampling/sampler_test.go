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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

func TestSampleFramesProperties(t *testing.T) {
	cases := []struct {
		seqLen    int
		numFrames int
	}{
		{1, 1}, {1, 6}, {5, 5}, {10, 5}, {3, 8}, {240, 32}, {31, 32}, {1000, 1},
	}
	for _, tc := range cases {
		for seed := uint64(0); seed < 50; seed++ {
			steps, err := sampling.SampleFrames(sampling.NewRand(seed, 0), tc.seqLen, tc.numFrames)
			require.NoError(t, err)
			require.Len(t, steps, tc.numFrames)
			assert.True(t, slices.IsSorted(steps), "steps must be non-decreasing: %v", steps)
			for _, s := range steps {
				assert.GreaterOrEqual(t, int(s), 0)
				assert.Less(t, int(s), tc.seqLen)
			}
			if tc.seqLen >= tc.numFrames {
				assert.Len(t, slices.Compact(slices.Clone(steps)), tc.numFrames, "indices must be distinct: %v", steps)
			}
		}
	}
}

// Ten frames, five picks: five distinct sorted values out of 0..9.
func TestSampleFramesDistinctFromLongerSequence(t *testing.T) {
	steps, err := sampling.SampleFrames(sampling.NewRand(7, 1), 10, 5)
	require.NoError(t, err)
	assert.Len(t, steps, 5)
	assert.True(t, slices.IsSorted(steps))
	assert.Len(t, slices.Compact(slices.Clone(steps)), 5)
	for _, s := range steps {
		assert.Contains(t, []sampling.FrameIndex{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, s)
	}
}

func TestSampleFramesPadsShortSequence(t *testing.T) {
	steps, err := sampling.SampleFrames(sampling.NewRand(3, 0), 3, 8)
	require.NoError(t, err)
	assert.Len(t, steps, 8)
	assert.True(t, slices.IsSorted(steps))
	// Eight draws from three values must repeat.
	assert.Less(t, len(slices.Compact(slices.Clone(steps))), 8)
}

func TestSampleFramesIsReproducible(t *testing.T) {
	a, err := sampling.SampleFrames(sampling.NewRand(42, 9), 500, 20)
	require.NoError(t, err)
	b, err := sampling.SampleFrames(sampling.NewRand(42, 9), 500, 20)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := sampling.SampleFrames(sampling.NewRand(42, 10), 500, 20)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSampleFramesRejectsNonPositive(t *testing.T) {
	for _, tc := range []struct {
		seqLen, numFrames int
		field             string
	}{
		{0, 5, "seq_len"},
		{-3, 5, "seq_len"},
		{10, 0, "num_frames"},
		{10, -1, "num_frames"},
	} {
		_, err := sampling.SampleFrames(sampling.NewRand(1, 1), tc.seqLen, tc.numFrames)
		require.Error(t, err)
		assert.ErrorIs(t, err, sampling.ErrInvalidConfiguration)

		var cfgErr *sampling.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, tc.field, cfgErr.Field)
	}
}

func TestGatherLabels(t *testing.T) {
	labels := []int{0, 0, 1, 1, 1, 2, 2}
	got, err := sampling.GatherLabels(labels, sampling.SampledIndices{0, 2, 2, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1, 2, 2}, got)

	_, err = sampling.GatherLabels(labels[:3], sampling.SampledIndices{0, 4})
	assert.ErrorIs(t, err, sampling.ErrInvalidConfiguration)
}

func TestSampleFramesCostDoesNotGrowWithSequenceLength(t *testing.T) {
	// A dense permutation of this many frames could not be allocated.
	const seqLen = 1 << 50

	steps, err := sampling.SampleFrames(sampling.NewRand(1, 1), seqLen, 16)
	require.NoError(t, err)
	require.Len(t, steps, 16)
	assert.True(t, slices.IsSorted(steps))
	for i, s := range steps {
		assert.True(t, s >= 0 && int(s) < seqLen)
		if i > 0 {
			assert.Less(t, steps[i-1], s)
		}
	}

	allocs := testing.AllocsPerRun(20, func() {
		_, _ = sampling.SampleFrames(sampling.NewRand(2, 2), seqLen, 4)
	})
	assert.Less(t, allocs, 16.0)
}

func TestSampleFramesSubsetsAreUniform(t *testing.T) {
	// 10 possible pairs out of 5 frames; each should come up about 1/10 of the time.
	const draws = 20000
	counts := make(map[[2]sampling.FrameIndex]int)
	rng := sampling.NewRand(7, 0)
	for range draws {
		steps, err := sampling.SampleFrames(rng, 5, 2)
		require.NoError(t, err)
		counts[[2]sampling.FrameIndex{steps[0], steps[1]}]++
	}
	require.Len(t, counts, 10)
	for pair, n := range counts {
		assert.InDelta(t, draws/10, n, 300, "pair %v", pair)
	}
}
