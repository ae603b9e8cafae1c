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

// LabelGroup is the extent of one label inside a label sequence: the indices
// of its first and last occurrence. Positions in between may carry other
// labels; they are still enclosed by the group.
type LabelGroup struct {
	Label int
	Start int
	End   int
}

// Span is End - Start.
func (g LabelGroup) Span() int {
	return g.End - g.Start
}

// CanAnchor reports whether the group leaves at least one position strictly
// between its first and last occurrence.
func (g LabelGroup) CanAnchor() bool {
	return g.Span() > 1
}

// Groups lists the distinct labels of a sequence in order of first occurrence.
func Groups(labels []int) []LabelGroup {
	index := make(map[int]int)
	var groups []LabelGroup
	for i, l := range labels {
		if g, ok := index[l]; ok {
			groups[g].End = i
			continue
		}
		index[l] = len(groups)
		groups = append(groups, LabelGroup{Label: l, Start: i, End: i})
	}
	return groups
}

// CountAnchorable returns how many groups of a label sequence can host an
// interior anchor.
func CountAnchorable(labels []int) int {
	n := 0
	for _, g := range Groups(labels) {
		if g.CanAnchor() {
			n++
		}
	}
	return n
}

// ConstructLabeledBridges turns the labels of the sampled steps into bridges
// aligned with label groups and returns one random adjacent pair of them.
//
// Groups are visited in order of first occurrence, so "adjacent" means
// consecutive in that order. Groups spanning one step or less are skipped.
// Each kept group yields Bridge(start, point, end) with point drawn strictly
// inside. Fewer than two kept groups is ErrInsufficientGroups: the dataset
// is expected to have been curated so that this does not happen.
func ConstructLabeledBridges(rng *rand.Rand, labels []int) (BridgeSet, error) {
	groups := Groups(labels)
	bridges := make(BridgeSet, 0, len(groups))
	for _, g := range groups {
		if !g.CanAnchor() {
			continue
		}
		point := uniformInt(rng, g.Start+1, g.End-1)
		bridges = append(bridges, Bridge{Head: StepIndex(g.Start), Point: StepIndex(point), Tail: StepIndex(g.End)})
	}
	if len(bridges) < 2 {
		return nil, &InsufficientGroupsError{Groups: len(groups), Retained: len(bridges)}
	}

	i := rng.IntN(len(bridges) - 1)
	return BridgeSet{bridges[i], bridges[i+1]}, nil
}
