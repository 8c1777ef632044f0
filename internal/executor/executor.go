// Package executor runs docker and docker compose as subprocesses.
//
// Commands are executed as argument vectors, never through a shell. The
// quoted command line produced by CommandLine is only used for logs and
// error messages.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Command is a program invocation with its working directory.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Executor runs a command and returns its trimmed stdout.
type Executor interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// DefaultTimeout bounds a command when the CLI is built with a zero timeout.
const DefaultTimeout = 5 * time.Minute

// waitDelay caps how long child processes may hold the output pipes open
// after the command itself was killed.
const waitDelay = time.Second

// CLI executes commands with os/exec.
type CLI struct {
	logger  zerolog.Logger
	timeout time.Duration
}

func NewCLI(logger zerolog.Logger, timeout time.Duration) *CLI {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CLI{
		logger:  logger.With().Str("component", "executor").Logger(),
		timeout: timeout,
	}
}

// Run executes cmd. A non-zero exit, a start failure or a timeout all
// return an *ExecError carrying the combined output.
func (e *CLI) Run(ctx context.Context, cmd Command) (string, error) {
	start := time.Now()
	line := CommandLine(cmd)

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	c := exec.CommandContext(execCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	e.logger.Debug().Strs("cmd", c.Args).Str("dir", cmd.Dir).Msg("running command")

	runErr := c.Run()
	duration := time.Since(start)

	if runErr == nil {
		observeCommand(cmd, resultOK, duration)
		e.logger.Debug().Str("cmd", line).Dur("duration", duration).Msg("command finished")
		return strings.TrimSpace(stdout.String()), nil
	}

	result := resultError
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		result = resultTimeout
		runErr = fmt.Errorf("command timed out after %s: %w", e.timeout, runErr)
	}
	observeCommand(cmd, result, duration)

	execErr := newExecError(line, exitCode(runErr), stdout.String(), stderr.String(), runErr)
	e.logger.Error().
		Str("cmd", line).
		Int("exit_code", execErr.ExitCode).
		Dur("duration", duration).
		Str("output", execErr.Output).
		Msg("command failed")
	return "", execErr
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
