// Package runner invokes the external build and run collaborators and
// captures their output for extraction.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/simtools/etissbench/bench"
)

// Script names resolved relative to the scripts directory.
const (
	runScript         = "run-benchmark.sh"
	buildScript       = "build-examples.sh"
	engineBuildScript = "build-etiss.sh"
)

// Payload is the raw output of one benchmark run: the captured process
// output plus the path where the run collaborator was asked to write its
// structured stats export. The file may legitimately be absent.
type Payload struct {
	Stdout    string
	Stderr    string
	StatsPath string
}

// RunError reports an external collaborator that exited non-zero. It carries
// the captured output so the failure can be diagnosed without rerunning.
type RunError struct {
	Command []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed: %v: %v", e.Command, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Invoker wraps single benchmark executions and the build collaborators.
// It is not safe to share one stats directory between processes: filename
// uniqueness is only guaranteed within one Invoker.
type Invoker struct {
	scriptsDir string
	statsDir   string
	env        []string
	logger     *slog.Logger
	now        func() time.Time

	// Filename collision guard: a repeated base name within the same
	// second gets a sequence suffix.
	mu       sync.Mutex
	lastBase string
	lastSeq  int
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(inv *Invoker) {
		inv.logger = logger
	}
}

// WithEnv sets the environment for spawned collaborators.
// Default: the process environment.
func WithEnv(env []string) Option {
	return func(inv *Invoker) {
		inv.env = env
	}
}

// WithClock sets the time source used for stats filenames.
func WithClock(now func() time.Time) Option {
	return func(inv *Invoker) {
		inv.now = now
	}
}

// New creates an Invoker. scriptsDir holds the build/run collaborator
// scripts; resultsDir is where the jit_stats output tree is created, under
// an optional experimentName subdirectory.
func New(scriptsDir, resultsDir, experimentName string, opts ...Option) (*Invoker, error) {
	statsDir := filepath.Join(resultsDir, "jit_stats")
	if experimentName != "" {
		statsDir = filepath.Join(statsDir, experimentName)
	}
	if err := os.MkdirAll(statsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	inv := &Invoker{
		scriptsDir: scriptsDir,
		statsDir:   statsDir,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// StatsDir returns the directory structured stats exports are written to.
func (inv *Invoker) StatsDir() string {
	return inv.statsDir
}

// Run executes one benchmark configuration to completion and returns the
// captured output. A non-zero exit produces a *RunError; there is no retry.
func (inv *Invoker) Run(ctx context.Context, cfg bench.Config) (Payload, error) {
	statsPath := filepath.Join(inv.statsDir, inv.statsFileName(cfg))

	args := []string{
		"--program", cfg.Program,
		"--profile", cfg.Profile,
		"--etiss-variant", cfg.Variant.Canonical,
		"--jit", cfg.JIT,
		"--block-size", strconv.Itoa(cfg.BlockSize),
		"--gcc-opt-level", cfg.GCCOptLevel,
		"--llvm-opt-level", cfg.LLVMOptLevel,
		"--jit-stats-json", statsPath,
	}
	if cfg.FastJIT.Valid {
		args = append(args, "--fast-jit", cfg.FastJIT.Value)
	}
	if cfg.OptimizationThreads.Valid {
		args = append(args, "--optimization-threads",
			strconv.Itoa(cfg.OptimizationThreads.Value))
	}

	stdout, stderr, err := inv.exec(ctx, filepath.Join(inv.scriptsDir, runScript), args)
	payload := Payload{
		Stdout:    stdout,
		Stderr:    stderr,
		StatsPath: statsPath,
	}
	if err != nil {
		return Payload{}, err
	}

	if stderr != "" {
		inv.logger.Warn("run collaborator stderr",
			"program", cfg.Program,
			"stderr", stderr)
	}
	return payload, nil
}

// BuildEngine builds the simulation engine for the given variant.
func (inv *Invoker) BuildEngine(ctx context.Context, variant bench.Variant, clean bool) error {
	args := []string{"--variant", variant.Canonical}
	if clean {
		args = append(args, "--clean")
	}

	inv.logger.Info("building engine", "variant", variant.Canonical)
	_, _, err := inv.exec(ctx, filepath.Join(inv.scriptsDir, engineBuildScript), args)
	return err
}

// BuildProgram builds a benchmark program with the given profile.
func (inv *Invoker) BuildProgram(ctx context.Context, profile, program string, clean bool) error {
	args := []string{"--profile", profile, "--program", program}
	if clean {
		args = append(args, "--clean")
	}

	inv.logger.Info("building program", "program", program, "profile", profile)
	_, _, err := inv.exec(ctx, filepath.Join(inv.scriptsDir, buildScript), args)
	return err
}

// exec runs a collaborator to completion, capturing stdout and stderr.
func (inv *Invoker) exec(ctx context.Context, script string, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, script, args...)
	if inv.env != nil {
		cmd.Env = inv.env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", "", &RunError{
			Command: append([]string{script}, args...),
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}
	return stdout.String(), stderr.String(), nil
}
