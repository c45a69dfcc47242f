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

// Package gittest provisions throwaway git repositories for engine and
// selector integration tests: a source repository with `live/*` tags
// and a bare LIVE remote, driven through the real git binary via
// internal/gitrun, modeled on gitz/gittest's real-repository approach
package gittest

import (
	"testing"

	"github.com/Racso/git-live/internal/gitrun"
	"github.com/stretchr/testify/require"
)

const (
	// AuthorName is the committer/author name used for every commit
	// made in a provisioned source repository
	AuthorName = "batman"

	// AuthorEmail is the committer/author email used alongside AuthorName
	AuthorEmail = "batman@dc.com"
)

// Pair is a provisioned source repository and its bare LIVE remote
type Pair struct {
	SourceDir string
	LiveDir   string
	Source    *gitrun.Runner
	Live      *gitrun.Runner
}

// NewPair initializes an empty source repository and an empty bare
// LIVE repository, both under the test's TempDir
func NewPair(t *testing.T) *Pair {
	t.Helper()

	sourceDir := t.TempDir()
	liveDir := t.TempDir()

	source := gitrun.New(sourceDir)
	MustRun(t, source, "git init --quiet")
	MustRun(t, source, "git config user.name "+gitrun.QuoteArg(AuthorName))
	MustRun(t, source, "git config user.email "+gitrun.QuoteArg(AuthorEmail))

	live := gitrun.New(liveDir)
	MustRun(t, live, "git init --quiet --bare")

	return &Pair{SourceDir: sourceDir, LiveDir: liveDir, Source: source, Live: live}
}

// MustRun executes cmd against run, failing the test on error
func MustRun(t *testing.T, run *gitrun.Runner, cmd string) string {
	t.Helper()
	out, err := run.Run(cmd)
	require.NoError(t, err)
	return out
}

// SeedLiveWithEmptyCommit gives a virgin LIVE remote an initial commit
// on main, as spec.md's end-to-end scenario 1 requires ("LIVE:
// initialized with one unrelated empty commit on main")
func (p *Pair) SeedLiveWithEmptyCommit(t *testing.T) {
	t.Helper()

	clone := t.TempDir()
	seed := gitrun.New(clone)

	MustRun(t, seed, "git clone --quiet "+gitrun.QuoteArg(p.LiveDir)+" .")
	MustRun(t, seed, "git config user.name "+gitrun.QuoteArg(AuthorName))
	MustRun(t, seed, "git config user.email "+gitrun.QuoteArg(AuthorEmail))
	MustRun(t, seed, `git commit --quiet --allow-empty -m "seed"`)
	MustRun(t, seed, "git push --quiet origin HEAD:main")
}

// WriteFile writes content to path inside the source repository
func (p *Pair) WriteFile(t *testing.T, path, content string) {
	t.Helper()
	writeFile(t, p.SourceDir, path, content)
}

// CommitAll stages everything in the source repository and commits it
func (p *Pair) CommitAll(t *testing.T, message string) string {
	t.Helper()
	MustRun(t, p.Source, "git add -A")
	MustRun(t, p.Source, "git commit --quiet -m "+gitrun.QuoteArg(message))
	return MustRun(t, p.Source, "git rev-parse HEAD")
}

// Tag creates a lightweight tag at HEAD in the source repository
func (p *Pair) Tag(t *testing.T, name string) {
	t.Helper()
	MustRun(t, p.Source, "git tag "+gitrun.QuoteArg(name))
}

// LiveTags lists the tags currently on the bare LIVE remote
func (p *Pair) LiveTags(t *testing.T) []string {
	t.Helper()
	out := MustRun(t, p.Live, "git tag --list")
	return splitNonEmpty(out)
}

// ShowLiveFile reads a file's content at ref (a tag or commit-ish) from
// the bare LIVE remote, working without a checkout via `git show`
func (p *Pair) ShowLiveFile(t *testing.T, ref, path string) string {
	t.Helper()
	return MustRun(t, p.Live, "git show "+gitrun.QuoteArg(ref+":"+path))
}

// LiveLog lists LIVE main's commit subjects, oldest first
func (p *Pair) LiveLog(t *testing.T) []string {
	t.Helper()
	out := MustRun(t, p.Live, `git log --reverse --pretty=format:%s main`)
	return splitNonEmpty(out)
}
