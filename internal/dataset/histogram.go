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


package dataset

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

// AutoBinCount returns the number of histogram bins for sorted using the
// larger of the Sturges and Freedman-Diaconis estimates, the rule numpy calls
// "auto". A sample with zero range gets one bin.
func AutoBinCount(sorted []float64) int {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	dataRange := sorted[n-1] - sorted[0]
	if dataRange == 0 {
		return 1
	}

	width := dataRange / (math.Log2(float64(n)) + 1)
	iqr := stat.Quantile(0.75, stat.LinInterp, sorted, nil) - stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	if fd := 2 * iqr * math.Pow(float64(n), -1.0/3.0); fd > 0 {
		width = math.Min(width, fd)
	}
	return max(1, int(math.Ceil(dataRange/width)))
}

// Median returns the middle value of sorted, or the mean of the two middle
// values when the length is even.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Histogram bins values with AutoBinCount equal-width bins. Every bin is
// half open except the last, which includes the maximum.
func Histogram(values []float64) []model.HistogramBin {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []model.HistogramBin{{Low: lo - 0.5, High: hi + 0.5, Count: len(sorted)}}
	}

	bins := AutoBinCount(sorted)
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// Push the last divider past the maximum so the closed last bin counts it.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i] = model.HistogramBin{Low: dividers[i], High: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].High = hi
	return out
}

// Summarize computes the sequence-length statistics of a split.
func Summarize(split string, records []*model.DatasetRecord) *model.DatasetStats {
	out := &model.DatasetStats{Split: split, Records: len(records)}
	if len(records) == 0 {
		return out
	}

	lengths := make([]float64, len(records))
	for i, record := range records {
		lengths[i] = float64(record.SeqLen)
		if record.HasLabels() {
			out.Labeled++
		}
	}
	slices.Sort(lengths)

	out.MinSeqLen = int(floats.Min(lengths))
	out.MaxSeqLen = int(floats.Max(lengths))
	out.Mean = stat.Mean(lengths, nil)
	out.Median = Median(lengths)
	out.Histogram = Histogram(lengths)
	return out
}
