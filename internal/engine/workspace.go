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

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Racso/git-live/internal/gitrun"
)

const (
	committerEmail = "gitlive@transient.local"
	committerName  = "GitLive Publisher"
)

// workspace is a disposable git repository used to stage the squashed
// history before it is pushed to LIVE. It owns the temp directory it
// was handed and deletes it on close
type workspace struct {
	dir string
	run *gitrun.Runner
	log Logger
}

// newWorkspace creates a unique temp dir, git-inits it, and sets a
// fixed synthetic committer identity so resulting commit SHAs depend
// only on tree, parent, message and commit time, never on the host's
// own git identity
func newWorkspace(log Logger) (*workspace, error) {
	dir, err := os.MkdirTemp("", "gitlive-publisher-*")
	if err != nil {
		return nil, fmt.Errorf("engine: create workspace: %w", err)
	}

	run := gitrun.New(dir)

	if _, err := run.Run("git init --quiet"); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("engine: git init workspace: %w", err)
	}

	if _, err := run.Run("git config user.email " + gitrun.QuoteArg(committerEmail)); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if _, err := run.Run("git config user.name " + gitrun.QuoteArg(committerName)); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return &workspace{dir: dir, run: run, log: log}, nil
}

// setupRemotes adds REPO (source) and LIVE (target), fetches REPO's
// history and tags (required), best-effort-fetches LIVE's main branch
// and tags, and probes LIVE for basic reachability. An empty ls-remote
// response is only fatal outside Nuke mode: a virgin LIVE target (bare
// init, zero refs) is a real, successful `git ls-remote` with empty
// stdout, and spec.md §8 requires Nuke to succeed against exactly that
func (w *workspace) setupRemotes(sourcePath, liveURL string, mode Mode) error {
	if _, err := w.run.Run("git remote add REPO " + gitrun.QuoteArg(sourcePath)); err != nil {
		return fmt.Errorf("engine: add source remote: %w", err)
	}
	if _, err := w.run.Run("git remote add LIVE " + gitrun.QuoteArg(liveURL)); err != nil {
		return fmt.Errorf("engine: add LIVE remote: %w", err)
	}

	if _, err := w.run.Run("git fetch REPO --tags"); err != nil {
		return fmt.Errorf("engine: fetch source repository: %w", err)
	}

	if _, ok := w.run.TryRun("git fetch LIVE main --tags"); !ok {
		w.log.Debug("LIVE main not fetched (likely a virgin target)")
	}

	probe, err := w.run.Run("git ls-remote LIVE")
	if err != nil {
		return &UnreachableError{Message: fmt.Sprintf("LIVE remote %q is unreachable: %v", liveURL, err)}
	}
	if strings.TrimSpace(probe) == "" && mode != Nuke {
		return &UnreachableError{Message: fmt.Sprintf("LIVE remote %q is unreachable (empty ls-remote response)", liveURL)}
	}

	return nil
}

// tmpBranchName returns this workspace's unique temporary branch name
func (w *workspace) tmpBranchName() string {
	return fmt.Sprintf("tmp-sync-%d-%d", time.Now().Unix(), os.Getpid())
}

const (
	closeRetryAttempts = 5
	closeRetryBackoff  = 200 * time.Millisecond
)

// close deletes the workspace directory, clearing read-only bits on
// packed objects first (required on platforms that mark
// .git/objects/pack/* read-only). Removal is retried a handful of
// times with a short backoff, since a still-settling filesystem (or an
// antivirus scanner holding a handle open, on Windows) can make the
// first attempt fail even after clearReadOnly has run
func (w *workspace) close() {
	clearReadOnly(w.dir)

	var err error
	for attempt := 0; attempt < closeRetryAttempts; attempt++ {
		if err = os.RemoveAll(w.dir); err == nil {
			return
		}
		clearReadOnly(w.dir)
		time.Sleep(closeRetryBackoff)
	}

	w.log.Debug("could not remove workspace %s after %d attempts: %v", w.dir, closeRetryAttempts, err)
}
