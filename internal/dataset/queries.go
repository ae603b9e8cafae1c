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

// QryRecordsBySplit selects the records of one split in manifest order.
//
// Placeholders:
//   - `%s`: the fully qualified name of the record table.
//
// Parameters:
//   - `@split`: the split name.
const QryRecordsBySplit = "SELECT id, name, video_file, seq_len, frame_label FROM `%s` WHERE split = @split ORDER BY id"
