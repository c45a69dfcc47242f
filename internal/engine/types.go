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
	"errors"

	"github.com/Racso/git-live/internal/gitrun"
	"github.com/Racso/git-live/internal/selector"
)

// Mode selects how the engine decides its publishing start point
type Mode int

const (
	// Incremental publishes only tags not yet represented on LIVE,
	// failing with a DivergenceError if the published prefix has gaps
	Incremental Mode = iota

	// Repair starts at the first tag missing provenance on LIVE,
	// tolerating gaps rather than failing
	Repair

	// Nuke republishes every tag from scratch, force-pushing history
	Nuke
)

// Options configures a single call to Sync
type Options struct {
	// SourcePath is the path to the already-cloned source repository
	SourcePath string

	// LiveURL is the already-normalized (and possibly authenticated)
	// URL of the LIVE target
	LiveURL string

	// Rules filters the tree of every published tag; empty means
	// publish the tree unmodified
	Rules []selector.Rule

	Mode   Mode
	DryRun bool
	Logger Logger
}

// Result is the outcome of a single Sync call
type Result struct {
	Success       bool
	ExitCode      int
	ErrorMessage  string
	TagsPublished int
}

// TagRecord is one candidate release tag collected from the source
// repository's local `live/*` namespace
type TagRecord struct {
	Name           string // "live/1.0.0"
	Timestamp      int64  // committer time, seconds since epoch
	SourceFullSHA  string // 40 hex chars
	SourceShortSHA string // >=7 hex chars
}

// DisplayName strips the "live/" prefix, yielding the name used on LIVE
func (t TagRecord) DisplayName() string {
	return stripLivePrefix(t.Name)
}

// Provenance is the parsed content of a LIVE commit's `// GitLive` block
type Provenance struct {
	SourceCommit string // commit key, full 40-hex source SHA
	Tag          string // tag key (full, with live/ prefix)
	Date         string // date key, ISO-8601 UTC
	CommitCount  int    // commit-count key
}

// PublishedEntry records an existing LIVE commit's provenance, keyed
// by the lower-cased source SHA it was published from
type PublishedEntry struct {
	LiveSHA string
	Provenance
}

// PublishedSet maps a lower-cased source full SHA to the LIVE commit
// it was published as
type PublishedSet map[string]PublishedEntry

func isExecError(err error) bool {
	var execErr *gitrun.ExecError
	return errors.As(err, &execErr)
}

func stripLivePrefix(name string) string {
	const prefix = "live/"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}
