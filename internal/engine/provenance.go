package engine

import (
	"strconv"
	"strings"

	"github.com/Racso/git-live/internal/gitrun"
	"github.com/Racso/git-live/internal/z0"
)

const provenanceMarker = "// GitLive"

// recoverProvenance walks refs/remotes/LIVE/main newest-first, parsing
// each commit's trailing Z0 block to rebuild the published set. A
// missing LIVE/main, or a parse failure on an individual commit, is
// non-fatal: the commit is simply skipped
func recoverProvenance(w *workspace) PublishedSet {
	published := PublishedSet{}

	out, ok := w.run.TryRun(`git log --pretty=format:"%H %ct" refs/remotes/LIVE/main`)
	if !ok {
		return published
	}

	for _, line := range gitrun.SplitLines(out) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		liveSHA := fields[0]

		body, ok := w.run.TryRun("git log -1 --format=\"%B\" " + liveSHA)
		if !ok {
			continue
		}

		prov, ok := parseProvenance(body)
		if !ok || prov.SourceCommit == "" {
			continue
		}

		// git log lists newest-first; on duplicate source commits this
		// assignment is overwritten by each older entry encountered
		// later in the loop, so the oldest publication wins
		key := strings.ToLower(prov.SourceCommit)
		published[key] = PublishedEntry{LiveSHA: liveSHA, Provenance: prov}
	}

	return published
}

// parseProvenance locates the "// GitLive" marker in a commit message
// and parses the remainder as a Z0 document
func parseProvenance(body string) (Provenance, bool) {
	idx := strings.Index(body, provenanceMarker)
	if idx < 0 {
		return Provenance{}, false
	}

	block := body[idx+len(provenanceMarker):]

	node, err := z0.Parse(block)
	if err != nil {
		return Provenance{}, false
	}

	r := z0.NewReader(node)

	count := 0
	if cc := r.Path("commit-count").Optional(""); cc != "" {
		count, _ = strconv.Atoi(cc)
	}

	return Provenance{
		SourceCommit: r.Path("commit").Optional(""),
		Tag:          r.Path("tag").Optional(""),
		Date:         r.Path("date").Optional(""),
		CommitCount:  count,
	}, true
}
