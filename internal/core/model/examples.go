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


package model

// GetExampleRecords returns a small hand-made split used by bridgectl's
// offline mode, the API documentation and tests. The labels follow the
// phases of a pouring video: idle, lift, pour, return.
func GetExampleRecords() []*DatasetRecord {
	return []*DatasetRecord{
		NewDatasetRecord(0, "pouring_001", "pouring_001.mp4", 12,
			[]int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3}),
		NewDatasetRecord(1, "pouring_002", "pouring_002.mp4", 9,
			[]int{0, 0, 1, 1, 1, 1, 2, 2, 2}),
		NewDatasetRecord(2, "pouring_003", "pouring_003.mp4", 7,
			[]int{0, 0, 1, 1, 1, 2, 2}),
		NewDatasetRecord(3, "pouring_004", "pouring_004.mp4", 40, nil),
	}
}
