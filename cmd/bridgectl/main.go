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


// Command bridgectl samples training examples and inspects dataset splits
// from the command line, using the same configuration as the server.
//
// Usage:
//
//	bridgectl [flags] <command> [args]
//
// Commands:
//
//	sample  - Sample one example from an inline sequence description
//	stats   - Sequence-length statistics of a split
//	curate  - Report (and optionally drop) records the sampler would reject
//	batch   - Prepare examples for several indices of a split
package main

import (
	"fmt"
	"os"

	"github.com/jaycherian/gcp-go-temporal-align/cmd/bridgectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
