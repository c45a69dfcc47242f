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

// Package engine implements GitLive's publishing state machine: it
// discovers release tags in a source repository, decides which of them
// still need to reach the LIVE target, and grafts each missing one
// onto LIVE/main as a single squashed, provenance-trailered commit.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/Racso/git-live/internal/gitrun"
)

// Engine runs syncs. It carries no state of its own between calls
type Engine struct{}

// New returns a ready-to-use Engine
func New() *Engine {
	return &Engine{}
}

// Sync performs one full publish cycle per opts.Mode, returning a
// Result whose ExitCode matches the CLI contract in spec §6 even when
// Success is false
func (e *Engine) Sync(opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = NopLogger{}
	}

	if strings.TrimSpace(opts.SourcePath) == "" {
		return failure(&DetectionError{Message: "no source repository path configured"})
	}
	if strings.TrimSpace(opts.LiveURL) == "" {
		return failure(&ConfigurationError{Message: "no LIVE URL configured"})
	}

	sourceRun := gitrun.New(opts.SourcePath)
	if _, err := sourceRun.Run("git rev-parse --is-inside-work-tree"); err != nil {
		return failure(&DetectionError{Message: fmt.Sprintf("%q is not a git repository: %v", opts.SourcePath, err)})
	}

	ws, err := newWorkspace(log)
	if err != nil {
		return failure(err)
	}
	defer func() {
		cleanupBranches(ws.run, log)
		ws.close()
	}()

	if err := ws.setupRemotes(opts.SourcePath, opts.LiveURL, opts.Mode); err != nil {
		return failure(err)
	}

	publishedAt := time.Now()

	published := recoverProvenance(ws)
	tags := collectTags(ws.run, log)

	if len(tags) == 0 {
		log.Info("no live/* tags found; nothing to do")
		return Result{Success: true, ExitCode: ExitSuccess}
	}

	start, ok, err := decideStartIndex(tags, published, opts.Mode)
	if err != nil {
		return failure(err)
	}
	if !ok {
		log.Info("nothing to do")
		return Result{Success: true, ExitCode: ExitSuccess}
	}

	liveParent := ""
	if opts.Mode != Nuke {
		parent, err := ws.run.Run("git rev-parse refs/remotes/LIVE/main")
		if err != nil {
			return failure(&UnreachableError{Message: "refs/remotes/LIVE/main does not exist, and mode is not Nuke"})
		}
		liveParent = strings.TrimSpace(parent)
	}

	tmpBranch := ws.tmpBranchName()
	if liveParent != "" {
		if _, err := ws.run.Run("git branch " + gitrun.QuoteArg(tmpBranch) + " " + gitrun.QuoteArg(liveParent)); err != nil {
			return failure(fmt.Errorf("engine: create temporary branch: %w", err))
		}
	}

	results, finalSHA, err := publishLoop(ws.run, tags, start, opts.Mode, opts.Rules, liveParent, publishedAt, log)
	if err != nil {
		result := failure(fmt.Errorf("engine: publish loop: %w", err))
		result.ExitCode = ExitMidLoop
		return result
	}

	if finalSHA != "" {
		if _, err := ws.run.Run("git update-ref refs/heads/" + tmpBranch + " " + gitrun.QuoteArg(finalSHA)); err != nil {
			return failure(fmt.Errorf("engine: move temporary branch: %w", err))
		}
	}

	if opts.DryRun {
		log.Info("dry-run: would push %d tags", len(results))
		return Result{Success: true, ExitCode: ExitSuccess, TagsPublished: len(results)}
	}

	if err := pushPhase(ws.run, tmpBranch, tags, published, results, opts.Mode, log); err != nil {
		result := failure(err)
		result.ExitCode = ExitMidLoop
		return result
	}

	return Result{Success: true, ExitCode: ExitSuccess, TagsPublished: len(results)}
}

// cleanupBranches deletes every tmp-sync-* branch in the workspace,
// covering both this run's own temporary branch and any left behind by
// a prior crashed run. Always called, even on failure, so the
// workspace never accumulates debris before its directory is removed
func cleanupBranches(run *gitrun.Runner, log Logger) {
	out, ok := run.TryRun(`git for-each-ref --format="%(refname:short)" refs/heads/tmp-sync-*`)
	if !ok {
		return
	}

	for _, name := range gitrun.SplitLines(out) {
		if _, ok := run.TryRun("git branch -D " + gitrun.QuoteArg(name)); !ok {
			log.Debug("could not remove stray branch %s", name)
		}
	}
}

func failure(err error) Result {
	return Result{
		Success:      false,
		ExitCode:     exitCodeFor(err),
		ErrorMessage: err.Error(),
	}
}
