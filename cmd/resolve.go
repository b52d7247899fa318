package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zen-garden/zenop/core/jobindex"
)

// ErrMissingDataset is returned when --dataset is not given.
var ErrMissingDataset = errors.New("missing required argument --dataset")

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the scenario indices this worker would run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := resolveIndices(opts)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(res)
	},
}

// resolveIndices reads the batch-array variable and resolves the indices.
func resolveIndices(o runOptions) (jobindex.Result, error) {
	if o.dataset == "" {
		return jobindex.Result{}, ErrMissingDataset
	}
	envValue, envSet := jobindex.LookupEnv(o.jobIndexVar)
	res, err := jobindex.Resolve(jobindex.Request{
		JobIndex:    o.jobIndex,
		JobIndexOp:  o.jobIndexOp,
		EnvValue:    envValue,
		EnvSet:      envSet,
		Dataset:     o.dataset,
		ScenariosOp: o.scenariosOp,
		BaseCount:   o.baseCount,
	})
	if err != nil {
		return jobindex.Result{}, fmt.Errorf("resolve job index: %w", err)
	}
	return res, nil
}
