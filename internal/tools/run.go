package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// NotFoundError indicates a required external tool is not installed.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("required tool %q not found", e.Tool)
}

// RunError preserves the offending command and exit status for
// diagnostics when an external tool fails.
type RunError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s %s exited with status %d", e.Command, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Runner executes external tools. Quiet mode discards tool output instead
// of forwarding it to the process's stdout/stderr.
type Runner struct {
	Quiet bool

	// Dir, when set, is the working directory for every command.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string
}

// Command describes a single external tool invocation.
type Command struct {
	Tool string
	Args []string
	Dir  string
	Env  []string

	// Stdin, when set, is fed to the process.
	Stdin io.Reader
}

// Run executes cmd and waits for it to finish. A non-zero exit becomes a
// *RunError carrying the command line and captured stderr.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	_, err := r.run(ctx, cmd, false)
	return err
}

// Output executes cmd and returns its captured stdout.
func (r *Runner) Output(ctx context.Context, cmd Command) (string, error) {
	return r.run(ctx, cmd, true)
}

func (r *Runner) run(ctx context.Context, cmd Command, capture bool) (string, error) {
	path, err := MustLocate(cmd.Tool)
	if err != nil {
		return "", err
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	if c.Dir == "" {
		c.Dir = r.Dir
	}
	c.Env = append(os.Environ(), append(r.Env, cmd.Env...)...)
	c.Stdin = cmd.Stdin

	var stdout, stderr bytes.Buffer
	if capture {
		c.Stdout = &stdout
	} else if !r.Quiet {
		c.Stdout = os.Stdout
	}
	if r.Quiet {
		c.Stderr = &stderr
	} else {
		c.Stderr = io.MultiWriter(os.Stderr, &stderr)
	}

	if err := c.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return "", &RunError{
			Command:  cmd.Tool,
			Args:     cmd.Args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
