package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	coreengine "github.com/zen-garden/zenop/core/engine"
	"github.com/zen-garden/zenop/infra/logger"
)

// Config defines how the optimization engine is launched.
type Config struct {
	// Command is the executable and leading arguments, e.g. ["python", "-m", "zen_garden"].
	Command []string `json:"command"`
	// WorkDir is the working directory of the child process. Empty keeps the current one.
	WorkDir string `json:"work_dir"`
	// Env lists extra KEY=VALUE pairs appended to the inherited environment.
	Env []string `json:"env"`
	// OperationArgs are appended for operation-only runs. The placeholders
	// {job_index_op} and {scenarios_op} are expanded; an argument holding a
	// placeholder without a value is left out, so write flags with values as
	// "--flag={placeholder}". Empty passes only the common arguments and leaves
	// operation-only settings to the --config_op file.
	OperationArgs []string `json:"operation_args"`
}

// Placeholders expanded in Config.OperationArgs.
const (
	PlaceholderJobIndexOp  = "{job_index_op}"
	PlaceholderScenariosOp = "{scenarios_op}"
)

// SetDefaults applies the default ZEN-garden module invocation.
func (c *Config) SetDefaults() {
	if len(c.Command) == 0 {
		c.Command = []string{"python", "-m", "zen_garden"}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if len(c.Command) == 0 || strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("engine command is required")
	}
	return nil
}

// ExitError is returned when the engine exits with a non-zero status.
type ExitError struct {
	Dataset  string
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("engine run on %s exited with code %d", e.Dataset, e.ExitCode)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecEngine runs the engine as a child process.
type ExecEngine struct {
	cfg    Config
	log    logger.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewExecEngine returns an engine that streams child output to log.
func NewExecEngine(cfg Config, log logger.Logger) *ExecEngine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &ExecEngine{cfg: cfg, log: log}
}

// SetOutput overrides where child stdout and stderr go. Nil keeps the logger.
func (e *ExecEngine) SetOutput(stdout, stderr io.Writer) {
	e.stdout, e.stderr = stdout, stderr
}

// Args builds the command line for r.
func (e *ExecEngine) Args(r coreengine.Run) []string {
	args := append([]string(nil), e.cfg.Command...)
	args = append(args, "--dataset", r.Dataset)
	if r.Config != "" {
		args = append(args, "--config", r.Config)
	}
	if r.FolderOutput != "" {
		args = append(args, "--folder_output", r.FolderOutput)
	}
	if len(r.JobIndex) > 0 {
		args = append(args, "--job_index", joinInts(r.JobIndex))
	}
	if r.OperationOnly {
		args = append(args, expandOperationArgs(e.cfg.OperationArgs, r)...)
	}
	return args
}

func expandOperationArgs(tmpl []string, r coreengine.Run) []string {
	values := map[string]string{
		PlaceholderJobIndexOp:  joinInts(r.JobIndexOp),
		PlaceholderScenariosOp: r.ScenariosOp,
	}
	out := make([]string, 0, len(tmpl))
	for _, arg := range tmpl {
		keep := true
		for ph, v := range values {
			if !strings.Contains(arg, ph) {
				continue
			}
			if v == "" {
				keep = false
				break
			}
			arg = strings.ReplaceAll(arg, ph, v)
		}
		if keep {
			out = append(out, arg)
		}
	}
	return out
}

// Run starts the engine and waits for it. Cancelling ctx kills the whole
// process group of the child.
func (e *ExecEngine) Run(ctx context.Context, r coreengine.Run) error {
	args := e.Args(r)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.cfg.WorkDir
	cmd.Env = append(os.Environ(), e.cfg.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	stdout, stderr := e.stdout, e.stderr
	if stdout == nil {
		lw := logger.NewLineWriter(e.log, "stdout")
		defer func() { _ = lw.Close() }()
		stdout = lw
	}
	if stderr == nil {
		lw := logger.NewLineWriter(e.log, "stderr")
		defer func() { _ = lw.Close() }()
		stderr = lw
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	e.log.Infow("starting engine", map[string]any{
		"dataset":        r.Dataset,
		"operation_only": r.OperationOnly,
		"args":           strings.Join(args, " "),
	})
	err := cmd.Run()
	if ctx.Err() != nil {
		return fmt.Errorf("engine run on %s cancelled: %w", r.Dataset, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Dataset: r.Dataset, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("start engine: %w", err)
	}
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
