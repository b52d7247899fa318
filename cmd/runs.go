package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zen-garden/zenop/config"
	"github.com/zen-garden/zenop/core/runlog"
)

var runsFilter struct {
	runID  string
	status string
	since  time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the step records of past runs from the run log",
	Long: "Prints the run-log records matching the filters as JSON lines, oldest first.\n" +
		"--dataset filters on the dataset path as it was given to the run.",
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFilter.runID, "run_id", "", "only records of this run")
	f.StringVar(&runsFilter.status, "status", "", "only records with this status (started, succeeded, failed)")
	f.DurationVar(&runsFilter.since, "since", 0, "only records newer than this, e.g. 24h")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settingsPath, !cmd.Flags().Changed("settings"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := runlog.Open(cfg.Logging)
	if err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := runlog.Query{
		RunID:   runsFilter.runID,
		Dataset: opts.dataset,
		Status:  runsFilter.status,
	}
	if runsFilter.since > 0 {
		q.Start = time.Now().Add(-runsFilter.since)
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return fmt.Errorf("query run log: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
