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


package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
)

func newSampleCommand(opts *globalOptions) *cobra.Command {
	var (
		file        string
		builtin     int
		seqLen      int
		labels      []int
		name        string
		numFrames   int
		numSegments int
		overlapRate float64
		annotation  string
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample one example from an inline sequence description",
		Long: `Sample frames and bridges for a sequence given on the command line, in a
request file (-f, YAML or JSON) or picked from the built-in examples
(--builtin). Flags override the file; unset sampling flags fall back to the
[sampling] section of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defaults, err := config.Sampling.Params()
			if err != nil {
				return err
			}

			request := &model.PreviewRequest{}
			if file != "" {
				if err := loadRequest(file, request); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("builtin") {
				records := model.GetExampleRecords()
				if builtin < 0 || builtin >= len(records) {
					return fmt.Errorf("--builtin must be in [0, %d)", len(records))
				}
				request.SeqLen = records[builtin].SeqLen
				request.FrameLabel = records[builtin].FrameLabel
				request.Name = records[builtin].Name
			}

			flags := cmd.Flags()
			if flags.Changed("seq-len") {
				request.SeqLen = seqLen
			}
			if flags.Changed("labels") {
				request.FrameLabel = labels
			}
			if flags.Changed("name") {
				request.Name = name
			}
			if flags.Changed("num-frames") {
				request.NumFrames = &numFrames
			}
			if flags.Changed("num-segments") {
				request.NumSegments = &numSegments
			}
			if flags.Changed("overlap-rate") {
				request.OverlapRate = &overlapRate
			}
			if flags.Changed("annotation") {
				request.Annotation = annotation
			}
			if flags.Changed("seed") {
				request.Seed = &seed
			}
			if request.SeqLen <= 0 {
				return fmt.Errorf("a positive sequence length is required, use --seq-len, --builtin or -f")
			}

			service := services.NewExampleService(nil, nil, "", defaults, config.Application.ThreadPoolSize)
			example, err := service.Preview(cmd.Context(), request)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), opts.output, example)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "request file (YAML or JSON)")
	f.IntVar(&builtin, "builtin", 0, "index of a built-in example sequence")
	f.IntVar(&seqLen, "seq-len", 0, "number of frames in the video")
	f.IntSliceVar(&labels, "labels", nil, "per-frame group labels, comma separated")
	f.StringVar(&name, "name", "", "name reported in the example")
	f.IntVar(&numFrames, "num-frames", 0, "size of the temporal subsample")
	f.IntVar(&numSegments, "num-segments", 0, "number of uniform bridges in raw mode")
	f.Float64Var(&overlapRate, "overlap-rate", 0, "segment overlap in [0, 1)")
	f.StringVar(&annotation, "annotation", "", "raw or labeled")
	f.Uint64Var(&seed, "seed", 0, "seed for a reproducible example")
	return cmd
}
