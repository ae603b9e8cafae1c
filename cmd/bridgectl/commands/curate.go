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
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-temporal-align/internal/cloud"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

// CurationReport is the output of the curate command.
type CurationReport struct {
	Split     string            `json:"split" yaml:"split"`
	Source    string            `json:"source" yaml:"source"`
	Total     int               `json:"total" yaml:"total"`
	Kept      int               `json:"kept" yaml:"kept"`
	Rejected  []model.Rejection `json:"rejected" yaml:"rejected"`
	WrittenTo string            `json:"written_to,omitempty" yaml:"written_to,omitempty"`
}

func newCurateCommand(opts *globalOptions) *cobra.Command {
	var (
		write      string
		annotation string
		minGroups  int
		checkVideo bool
	)

	cmd := &cobra.Command{
		Use:   "curate <split>",
		Short: "Report the records of a split the sampler would reject",
		Long: `Load a split straight from its source, bypassing the catalog, and run the
curation rules on it whether or not [curation] is enabled. With --write the
kept records are written as a manifest; the extension picks JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := opts.loadConfig()
			if err != nil {
				return err
			}
			config.TopicSubscriptions = nil
			split := args[0]
			if !slices.Contains(config.SplitNames(), split) {
				return fmt.Errorf("%w: %q", dataset.ErrUnknownSplit, split)
			}

			flags := cmd.Flags()
			if flags.Changed("annotation") {
				config.Sampling.Annotation = annotation
			}
			if flags.Changed("min-groups") {
				config.Curation.MinUsableGroups = minGroups
			}
			if flags.Changed("check-video") {
				config.Curation.CheckVideoFiles = checkVideo
			}
			mode, err := sampling.ParseAnnotationMode(config.Sampling.Annotation)
			if err != nil {
				return err
			}

			clients, err := cloud.NewCloudServiceClients(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer func() { _ = clients.Close() }()

			source, err := dataset.NewSource(config, clients)
			if err != nil {
				return err
			}
			records, err := source.Load(cmd.Context(), split)
			if err != nil {
				return err
			}

			curator := dataset.NewCurator(mode, config.Curation, config.Dataset.VideoRoot)
			kept, rejected := curator.Curate(records)
			report := &CurationReport{
				Split:    split,
				Source:   source.Name(),
				Total:    len(records),
				Kept:     len(kept),
				Rejected: rejected,
			}
			if report.Rejected == nil {
				report.Rejected = []model.Rejection{}
			}

			if write != "" {
				data, err := dataset.EncodeManifest(write, kept)
				if err != nil {
					return err
				}
				if err := os.WriteFile(write, data, 0o644); err != nil {
					return fmt.Errorf("failed to write manifest: %w", err)
				}
				report.WrittenTo = write
			}
			return output(cmd.OutOrStdout(), opts.output, report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&write, "write", "", "write the kept records to this manifest file")
	f.StringVar(&annotation, "annotation", "", "override the configured annotation mode")
	f.IntVar(&minGroups, "min-groups", 2, "label groups wider than one frame a labeled record needs")
	f.BoolVar(&checkVideo, "check-video", false, "check that local video files are videos")
	return cmd
}
