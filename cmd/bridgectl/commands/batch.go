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
	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

func newBatchCommand(opts *globalOptions) *cobra.Command {
	var (
		indices []int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "batch <split>",
		Short: "Prepare examples for several indices of a split",
		Long: `Prepare one example per index with the configured worker pool. With --seed
the batch is reproducible: item k is sampled from the stream (seed, k).
Items that fail are reported in place and counted in "failed".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.newEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			request := &model.BatchRequest{Indices: indices}
			if cmd.Flags().Changed("seed") {
				request.Seed = &seed
			}
			result, err := env.service.PrepareBatch(cmd.Context(), args[0], request)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), opts.output, result)
		},
	}

	cmd.Flags().IntSliceVarP(&indices, "indices", "i", nil, "record indices, comma separated")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible batch")
	_ = cmd.MarkFlagRequired("indices")
	return cmd
}
