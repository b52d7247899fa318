package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreengine "github.com/zen-garden/zenop/core/engine"
	"github.com/zen-garden/zenop/infra/logger"
)

func TestArgsBaseRun(t *testing.T) {
	e := NewExecEngine(Config{}, nil)
	got := e.Args(coreengine.Run{Dataset: "data/d", Config: "config.json", JobIndex: []int{1, 3}, JobIndexOp: []int{2}})
	assert.Equal(t, []string{"python", "-m", "zen_garden", "--dataset", "data/d", "--config", "config.json", "--job_index", "1,3"}, got)
}

func TestArgsOperationOnlyDefault(t *testing.T) {
	e := NewExecEngine(Config{Command: []string{"zen-garden"}}, nil)
	got := e.Args(coreengine.Run{
		Dataset:       "data/d_operation",
		Config:        "config_op.json",
		JobIndexOp:    []int{0},
		ScenariosOp:   "ops.json",
		OperationOnly: true,
	})
	assert.Equal(t, []string{"zen-garden", "--dataset", "data/d_operation", "--config", "config_op.json"}, got)
}

func TestArgsOperationOnlyTemplate(t *testing.T) {
	e := NewExecEngine(Config{
		Command:       []string{"zen-garden"},
		OperationArgs: []string{"--job_index_op={job_index_op}", "--scenarios_op={scenarios_op}", "--operation_only"},
	}, nil)
	cases := []struct {
		name string
		run  coreengine.Run
		want []string
	}{
		{
			name: "all values",
			run:  coreengine.Run{Dataset: "d", FolderOutput: "out", JobIndexOp: []int{0, 2}, ScenariosOp: "ops.json", OperationOnly: true},
			want: []string{"zen-garden", "--dataset", "d", "--folder_output", "out",
				"--job_index_op=0,2", "--scenarios_op=ops.json", "--operation_only"},
		},
		{
			name: "missing values dropped",
			run:  coreengine.Run{Dataset: "d", OperationOnly: true},
			want: []string{"zen-garden", "--dataset", "d", "--operation_only"},
		},
		{
			name: "base run ignores template",
			run:  coreengine.Run{Dataset: "d", JobIndexOp: []int{1}},
			want: []string{"zen-garden", "--dataset", "d"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, e.Args(c.run))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	c := Config{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunSuccessCapturesOutput(t *testing.T) {
	script := writeScript(t, "echo \"$@\"\n")
	e := NewExecEngine(Config{Command: []string{script}}, logger.NopLogger{})
	var out bytes.Buffer
	e.SetOutput(&out, &out)
	require.NoError(t, e.Run(context.Background(), coreengine.Run{Dataset: "d", Config: "c.json"}))
	assert.Equal(t, "--dataset d --config c.json\n", out.String())
}

func TestRunExitCode(t *testing.T) {
	script := writeScript(t, "exit 3\n")
	e := NewExecEngine(Config{Command: []string{script}}, logger.NopLogger{})
	err := e.Run(context.Background(), coreengine.Run{Dataset: "d"})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
}

func TestRunCancelled(t *testing.T) {
	script := writeScript(t, "sleep 30\n")
	e := NewExecEngine(Config{Command: []string{script}}, logger.NopLogger{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := e.Run(ctx, coreengine.Run{Dataset: "d"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunMissingBinary(t *testing.T) {
	e := NewExecEngine(Config{Command: []string{filepath.Join(t.TempDir(), "nope")}}, logger.NopLogger{})
	err := e.Run(context.Background(), coreengine.Run{Dataset: "d"})
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}
