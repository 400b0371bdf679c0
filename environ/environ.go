// Package environ resolves the tool's root paths from the process
// environment merged with a shell-style configuration file.
package environ

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Root path fallbacks used when the corresponding variable is unset.
const (
	DefaultETISSRoot    = "/opt/etiss"
	DefaultExamplesRoot = "/opt/etiss_riscv_examples"
)

// Environment variables consumed for root-path overrides.
const (
	etissRootVar    = "ETISS_ROOT"
	examplesRootVar = "EXAMPLES_ROOT"
)

// Env is a merged name-to-value environment mapping. It is resolved once at
// process start and injected into the components that need it, so tests can
// supply synthetic roots without touching the real environment.
type Env map[string]string

// Roots holds the resolved root directories of the simulator tree and the
// benchmark examples tree.
type Roots struct {
	ETISS    string
	Examples string
}

// Resolve builds an Env from the current process environment, overlaid with
// variables exported by sourcing configFile in bash. Sourcing is a trust
// boundary: the file's content is executed as shell and only key=value
// parsing is applied to the output. A missing or failing config file is
// logged and the process environment alone is returned.
func Resolve(configFile string, logger *slog.Logger) Env {
	if logger == nil {
		logger = slog.Default()
	}

	env := make(Env)
	merge(env, os.Environ())

	cmd := exec.Command("/bin/bash", "-c",
		fmt.Sprintf("source %s && env", configFile))
	out, err := cmd.Output()
	if err != nil {
		logger.Warn("could not source environment config",
			"config", configFile,
			"err", err)
		return env
	}

	merge(env, strings.Split(string(out), "\n"))
	return env
}

// merge parses key=value lines into env, ignoring lines without a separator.
func merge(env Env, lines []string) {
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[key] = value
	}
}

// Roots resolves the root directories, falling back to the hard-coded
// defaults for unset variables.
func (e Env) Roots() Roots {
	return Roots{
		ETISS:    e.getOr(etissRootVar, DefaultETISSRoot),
		Examples: e.getOr(examplesRootVar, DefaultExamplesRoot),
	}
}

func (e Env) getOr(key, fallback string) string {
	if v, ok := e[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Slice renders the environment in the KEY=value form expected by exec.Cmd.
func (e Env) Slice() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	return out
}
