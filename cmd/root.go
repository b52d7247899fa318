package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zen-garden/zenop/core/jobindex"
)

var (
	settingsPath string
	opts         runOptions
)

// runOptions holds the flags shared by run and resolve.
type runOptions struct {
	dataset      string
	config       string
	configOp     string
	datasetOp    string
	folderOutput string
	jobIndex     string
	jobIndexOp   string
	jobIndexVar  string
	scenariosOp  string
	baseCount    int
	deleteData   bool
	report       string
}

var rootCmd = &cobra.Command{
	Use:   "zenop",
	Short: "Run ZEN-garden operation-only scenarios on carried over capacities",
	Long: "Runs the base model on --dataset, adds the capacity additions of that run to the\n" +
		"existing capacities of an operation-only copy of the dataset and runs the\n" +
		"operational scenarios on the copy.",
	SilenceUsage: true,
	RunE:         runCarryover,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&settingsPath, "settings", "zenop.yaml", "application settings file (optional)")
	f.StringVar(&opts.dataset, "dataset", "", "path to the dataset (required)")
	f.StringVar(&opts.config, "config", "./config.json", "engine config file")
	f.StringVar(&opts.scenariosOp, "scenarios_op", "", "path to the scenarios file of the operation-only runs; relative paths are taken inside --dataset (default scenarios.json)")
	f.StringVar(&opts.jobIndex, "job_index", "", "comma separated base scenario indices")
	f.StringVar(&opts.jobIndexOp, "job_index_op", "", "comma separated operational scenario indices")
	f.StringVar(&opts.jobIndexVar, "job_index_var", jobindex.DefaultEnvVar, "environment variable holding the flat batch-array index, used when no index is given")
	f.IntVar(&opts.baseCount, "base_count", 0, "number of base scenarios; flat indices beyond it are rejected (0 disables the check)")

	rf := rootCmd.Flags()
	rf.StringVar(&opts.configOp, "config_op", "", "engine config of the operation-only run (default --config)")
	rf.StringVar(&opts.datasetOp, "dataset_op", "", "name or path of the operation-only dataset (default <dataset>_operation)")
	rf.StringVar(&opts.folderOutput, "folder_output", "", "engine output folder (default <dataset parent>/outputs)")
	rf.BoolVar(&opts.deleteData, "delete_data", false, "delete the operation-only dataset when done")
	rf.StringVar(&opts.report, "report", "", "write the run report to this file (.csv or .json)")

	rootCmd.AddCommand(resolveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
