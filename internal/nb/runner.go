// Package nb runs the nb command-line tool and returns its raw output.
package nb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single nb invocation.
const DefaultTimeout = 30 * time.Second

const waitDelay = 2 * time.Second

// Runner executes a query against nb. Failures are reported in the Result,
// not as a Go error.
type Runner interface {
	Execute(ctx context.Context, q Query) Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, q Query) Result

func (f RunnerFunc) Execute(ctx context.Context, q Query) Result { return f(ctx, q) }

// CommandRunner runs the nb binary with os/exec.
type CommandRunner struct {
	binary  string
	timeout time.Duration
	env     []string
	logger  *zap.Logger
}

// Option configures a CommandRunner.
type Option func(*CommandRunner)

// WithTimeout sets the per-call timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(r *CommandRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *CommandRunner) { r.env = append(r.env, env...) }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *CommandRunner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewCommandRunner(binary string, opts ...Option) *CommandRunner {
	if binary == "" {
		binary = "nb"
	}
	r := &CommandRunner{
		binary:  binary,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs nb for q and captures stdout. A nonzero exit, a missing
// binary or a timeout produce a failed Result whose message includes stderr.
func (r *CommandRunner) Execute(ctx context.Context, q Query) Result {
	args, err := q.Args()
	if err != nil {
		return Failure(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	// Children that inherit the pipes must not keep Run blocked past the
	// deadline.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		msg := describeFailure(ctx, err, stderr.String(), r.timeout)
		r.logger.Debug("nb query failed",
			zap.Stringer("query", q),
			zap.Duration("elapsed", elapsed),
			zap.String("error", msg))
		return Failure(msg)
	}

	r.logger.Debug("nb query finished",
		zap.Stringer("query", q),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", stdout.Len()))
	return Success(stdout.String())
}

func describeFailure(ctx context.Context, err error, stderr string, timeout time.Duration) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s", timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if s := strings.TrimSpace(stderr); s != "" {
			return fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), s)
		}
	}
	return err.Error()
}
