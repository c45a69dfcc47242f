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

package engine

import "fmt"

// DivergenceError is raised in Incremental mode when a gap is found in
// the already-published prefix of the local tag list
type DivergenceError struct {
	Tag string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("engine: %s has no provenance on LIVE/main but a later tag does; "+
		"use --repair or --nuke to recover", e.Tag)
}

// ConfigurationError covers a LIVE URL that cannot be resolved from
// any permitted source
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "engine: " + e.Message
}

// DetectionError covers a source path that isn't inside a git
// repository
type DetectionError struct {
	Message string
}

func (e *DetectionError) Error() string {
	return "engine: " + e.Message
}

// UnreachableError covers a LIVE remote that doesn't resolve, or is
// missing refs/remotes/LIVE/main when a non-Nuke sync requires it
type UnreachableError struct {
	Message string
}

func (e *UnreachableError) Error() string {
	return "engine: " + e.Message
}

// Exit codes, part of the CLI contract (spec §6)
const (
	ExitSuccess     = 0
	ExitDetection   = 1
	ExitConfig      = 2
	ExitUnreachable = 3
	ExitMidLoop     = 4
	ExitDivergence  = 5
	ExitGitError    = 10
	ExitOther       = 11
)

// exitCodeFor maps a sync error to its CLI exit code
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch err.(type) {
	case *DetectionError:
		return ExitDetection
	case *ConfigurationError:
		return ExitConfig
	case *UnreachableError:
		return ExitUnreachable
	case *DivergenceError:
		return ExitDivergence
	}

	if isExecError(err) {
		return ExitGitError
	}

	return ExitOther
}
