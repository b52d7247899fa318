package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zen-garden/zenop/app"
	"github.com/zen-garden/zenop/config"
	"github.com/zen-garden/zenop/core/carryover"
	"github.com/zen-garden/zenop/infra/logger"
	"github.com/zen-garden/zenop/pkg/export"
)

func runCarryover(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := resolveIndices(opts)
	if err != nil {
		return err
	}
	cfg, err := config.Load(settingsPath, !cmd.Flags().Changed("settings"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.New("main").Infow("resolved job index", map[string]any{
		"job_index":    res.JobIndex,
		"job_index_op": res.JobIndexOp,
	})

	svc, err := app.New(cfg, map[string]string{
		"dataset":      filepath.Base(opts.dataset),
		"job_index":    joinIndices(res.JobIndex),
		"job_index_op": joinIndices(res.JobIndexOp),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	rep, err := svc.Run(ctx, carryover.Options{
		Dataset:      opts.dataset,
		Config:       opts.config,
		ConfigOp:     opts.configOp,
		DatasetOp:    opts.datasetOp,
		FolderOutput: opts.folderOutput,
		JobIndex:     res.JobIndex,
		JobIndexOp:   res.JobIndexOp,
		ScenariosOp:  opts.scenariosOp,
		DeleteData:   opts.deleteData,
	})
	if err != nil {
		return err
	}
	if opts.report != "" {
		if err := export.WriteFile(opts.report, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// joinIndices renders indices for metric labels; nil means every scenario.
func joinIndices(v []int) string {
	if v == nil {
		return "all"
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
