// Package gitinfo probes the invoking directory's git state for the
// dashboard header.
package gitinfo

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a git command and returns its output. Injectable so tests
// don't need a real repository.
type Runner func(ctx context.Context, workDir string, args ...string) (string, error)

func defaultRunner(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workDir
	out, err := cmd.Output()
	return string(out), err
}

// Probe resolves git information for a working directory.
type Probe struct {
	Runner Runner // nil uses the real git subprocess
}

// Branch returns the current branch name, or "" when the directory is not a
// repository, git is missing, or the command times out. Absence of a branch
// is a neutral display state, not an error.
func (p Probe) Branch(ctx context.Context, workDir string) string {
	runner := p.Runner
	if runner == nil {
		runner = defaultRunner
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out, err := runner(ctx, workDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
