/*
Copyright (c) 2023 Purple Clay

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package gitrun launches the external git binary and captures its output.
//
// Every operation is handed off to a git client resolvable on PATH; the
// runner performs no parsing of its own beyond trimming trailing newlines.
// A command is always passed as a single, already-quoted string: callers
// are responsible for quoting arguments that contain whitespace or quotes
// (see QuoteArg).
package gitrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExecError is raised when a git command exits with a non-zero status.
// It carries enough context to reconstruct what was run and why it failed.
type ExecError struct {
	// Cmd is the exact command string that was executed
	Cmd string

	// Stdout contains any output (stdout and stderr combined) the command
	// wrote before failing
	Stdout string

	// Stderr contains the error reported by the shell interpreter, such as
	// the exit status or a command-string parse error
	Stderr string

	// ExitCode is the command's non-zero exit status, or zero when the
	// command never ran (for example, a command-string parse error)
	ExitCode int
}

// Error returns a friendly formatted message describing the failure
func (e *ExecError) Error() string {
	out := e.Stderr
	if out == "" {
		out = e.Stdout
	}

	return fmt.Sprintf("failed to execute git command: %s\n\n%s", e.Cmd, out)
}

// Runner executes git commands with a fixed working directory. A Runner
// has no other state and is safe to construct freely; it does not own
// or clean up the directory it points at.
type Runner struct {
	dir string
}

// New returns a Runner bound to the given working directory. An empty
// dir runs commands in the current process's working directory
func New(dir string) *Runner {
	return &Runner{dir: dir}
}

// Dir returns the working directory this runner is bound to
func (r *Runner) Dir() string {
	return r.dir
}

// Run executes a command string, returning its combined, trimmed output.
// A non-zero exit is reported as an *ExecError
func (r *Runner) Run(cmd string) (string, error) {
	out, err := r.run(cmd, "")
	if err != nil {
		return out, err
	}
	return out, nil
}

// TryRun executes a command string, swallowing any non-zero exit. The
// second return value reports whether the command succeeded; on failure
// it is false and the returned string is empty
func (r *Runner) TryRun(cmd string) (string, bool) {
	out, err := r.run(cmd, "")
	if err != nil {
		return "", false
	}
	return out, true
}

// RunWithInput executes a command string, piping stdin to the process
func (r *Runner) RunWithInput(cmd, stdin string) (string, error) {
	return r.run(cmd, stdin)
}

func (r *Runner) run(cmd, stdin string) (string, error) {
	p, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
	if err != nil {
		return "", &ExecError{Cmd: cmd, Stderr: err.Error()}
	}

	var buf bytes.Buffer

	opts := []func(*interp.Runner) error{
		interp.StdIO(strings.NewReader(stdin), &buf, &buf),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}

	run, err := interp.New(opts...)
	if err != nil {
		return "", &ExecError{Cmd: cmd, Stderr: err.Error()}
	}

	if err := run.Run(context.Background(), p); err != nil {
		execErr := &ExecError{
			Cmd:    cmd,
			Stdout: strings.TrimSuffix(buf.String(), "\n"),
			Stderr: err.Error(),
		}
		var status interp.ExitStatus
		if errors.As(err, &status) {
			execErr.ExitCode = int(status)
		}
		return execErr.Stdout, execErr
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// QuoteArg wraps an argument in double quotes if it contains whitespace
// or a double quote, escaping any interior quotes as the command string
// is reassembled. An empty argument becomes ""
func QuoteArg(arg string) string {
	if arg == "" {
		return `""`
	}

	if !strings.ContainsAny(arg, " \t\n\"") {
		return arg
	}

	escaped := strings.ReplaceAll(arg, `"`, `\"`)
	return `"` + escaped + `"`
}
