// SPDX-License-Identifier: MPL-2.0

// Package run executes external commands for the dependency and artifact
// installers. It exposes a small Runner interface so tests can count and
// inspect invocations without spawning processes.
package run

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/shipm/shipm/pkg/types"
)

// ErrEmptyCommand is returned in Result.Err when Run is called with an
// empty argv.
var ErrEmptyCommand = errors.New("empty command")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Result describes one finished command invocation.
	// A non-zero ExitCode with a nil Err means the process ran and failed;
	// Err is set only for infrastructure failures (binary not found,
	// context canceled before completion).
	Result struct {
		ExitCode types.ExitCode
		Err      error
	}

	// Runner runs a command described by argv and reports its outcome.
	// Implementations stream output to their configured writers; nothing
	// is captured or buffered.
	Runner interface {
		Run(ctx context.Context, argv []string) Result
	}

	// ExecRunnerOption configures an ExecRunner.
	ExecRunnerOption func(*ExecRunner)

	// ExecRunner runs commands through os/exec with inherited stdio.
	// Package-manager invocations go through it unmodified, so interactive
	// prompts (sudo password entry) reach the terminal.
	ExecRunner struct {
		execCommand ExecCommandFunc
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.execCommand = fn
	}
}

// WithStdin sets the reader wired to the command's standard input.
func WithStdin(in io.Reader) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.stdin = in
	}
}

// WithStdout sets the writer receiving the command's standard output.
func WithStdout(out io.Writer) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.stdout = out
	}
}

// WithStderr sets the writer receiving the command's standard error.
func WithStderr(out io.Writer) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.stderr = out
	}
}

// NewExecRunner creates a Runner backed by os/exec. By default the
// command inherits the process's stdin, stdout, and stderr.
func NewExecRunner(opts ...ExecRunnerOption) *ExecRunner {
	r := &ExecRunner{
		execCommand: exec.CommandContext,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes argv and blocks until it exits. A non-zero exit status is
// captured in Result.ExitCode, not returned as an error.
func (r *ExecRunner) Run(ctx context.Context, argv []string) Result {
	if len(argv) == 0 {
		return Result{ExitCode: 1, Err: ErrEmptyCommand}
	}

	cmd := r.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			return Result{ExitCode: types.ExitCode(exitErr.ExitCode())}
		}
		return Result{ExitCode: 1, Err: err}
	}

	return Result{ExitCode: 0}
}

// Elevated prepends the elevation prefix to argv, returning a fresh slice.
// An empty prefix returns a copy of argv unchanged.
func Elevated(prefix, argv []string) []string {
	out := make([]string, 0, len(prefix)+len(argv))
	out = append(out, prefix...)
	out = append(out, argv...)
	return out
}
