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
	"strings"

	"github.com/Racso/git-live/internal/gitrun"
)

// pushPhase pushes the temporary branch to LIVE/main, pushes every
// newly-created tag, and runs the normalization pass over the full tag
// list. It is skipped entirely in dry-run
func pushPhase(run *gitrun.Runner, tmpBranch string, tags []TagRecord, published PublishedSet, newlyPublished []publishResult, mode Mode, log Logger) error {
	force := mode == Nuke || mode == Repair

	if mode == Nuke {
		deleteAllRemoteTags(run, log)
	}

	refSpec := "refs/heads/" + tmpBranch + ":refs/heads/main"
	if force {
		refSpec = "+" + refSpec
	}
	if _, err := run.Run("git push LIVE " + refSpec); err != nil {
		return fmt.Errorf("engine: push branch to LIVE: %w", err)
	}

	newByName := map[string]string{}
	for _, r := range newlyPublished {
		newByName[r.Tag.Name] = r.LiveSHA
		if err := pushTag(run, r.Tag.Name, r.LiveSHA, force); err != nil {
			return fmt.Errorf("engine: push tag %s: %w", r.Tag.Name, err)
		}
	}

	normalizeTags(run, tags, published, newByName, force, log)

	return nil
}

// deleteAllRemoteTags enumerates LIVE's tags and force-deletes every
// one, best-effort, as Nuke's opening move
func deleteAllRemoteTags(run *gitrun.Runner, log Logger) {
	out, ok := run.TryRun("git ls-remote --tags LIVE")
	if !ok {
		return
	}

	for _, line := range gitrun.SplitLines(out) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := fields[1]
		name := strings.TrimPrefix(ref, "refs/tags/")
		name = strings.TrimSuffix(name, "^{}")
		if name == "" {
			continue
		}

		if _, ok := run.TryRun("git push LIVE --delete " + gitrun.QuoteArg(name)); !ok {
			log.Debug("could not delete remote tag %s (best-effort)", name)
		}
	}
}

func pushTag(run *gitrun.Runner, localTag, sha string, force bool) error {
	remoteTag := stripLivePrefix(localTag)

	refSpec := fmt.Sprintf("%s:refs/tags/%s", sha, remoteTag)
	if force {
		refSpec = "+" + refSpec
	}

	_, err := run.Run("git push LIVE " + refSpec)
	return err
}

// normalizeTags ensures every tag in the full local list exists on
// LIVE under its remote name: tags pushed this run are skipped (already
// pushed above); tags whose source commit was already published in a
// prior run but are missing on LIVE are re-pushed from their recorded
// LIVE SHA. Failures here are best-effort and never fail the sync
func normalizeTags(run *gitrun.Runner, tags []TagRecord, published PublishedSet, newByName map[string]string, force bool, log Logger) {
	for _, tag := range tags {
		remoteTag := stripLivePrefix(tag.Name)

		if _, exists := run.TryRun("git ls-remote --exit-code --tags LIVE " + gitrun.QuoteArg("refs/tags/"+remoteTag)); exists {
			continue
		}

		if _, justPushed := newByName[tag.Name]; justPushed {
			continue
		}

		entry, wasPublished := published[strings.ToLower(tag.SourceFullSHA)]
		if !wasPublished {
			continue
		}

		refSpec := fmt.Sprintf("%s:refs/tags/%s", entry.LiveSHA, remoteTag)
		if force {
			refSpec = "+" + refSpec
		}

		if _, ok := run.TryRun("git push LIVE " + refSpec); !ok {
			log.Debug("normalization: could not push pre-existing tag %s (best-effort)", remoteTag)
		}
	}
}
