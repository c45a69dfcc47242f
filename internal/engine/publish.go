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
	"time"

	"github.com/Racso/git-live/internal/gitrun"
	"github.com/Racso/git-live/internal/selector"
)

// publishResult is one tag successfully grafted onto the temporary branch
type publishResult struct {
	Tag     TagRecord
	LiveSHA string
}

// publishLoop grafts tags[start:] onto the temporary branch in order,
// each as a single squashed commit carrying a provenance trailer. It
// returns the results in publication order and the final commit SHA
// (equal to parent when nothing was published)
func publishLoop(run *gitrun.Runner, tags []TagRecord, start int, mode Mode, rules []selector.Rule, liveParent string, publishedAt time.Time, log Logger) ([]publishResult, string, error) {
	var results []publishResult

	currentParent := liveParent
	var prevTag string
	if start > 0 {
		prevTag = tags[start-1].Name
	}

	for i := start; i < len(tags); i++ {
		tag := tags[i]

		tree, err := run.Run("git rev-parse " + gitrun.QuoteArg(tag.Name+"^{tree}"))
		if err != nil {
			return results, currentParent, fmt.Errorf("engine: resolve tree for %s: %w", tag.Name, err)
		}
		tree = strings.TrimSpace(tree)

		if len(rules) > 0 {
			tree, err = selector.FilterTree(run, tree, rules)
			if err != nil {
				return results, currentParent, fmt.Errorf("engine: filter tree for %s: %w", tag.Name, err)
			}
		}

		count, err := commitCount(run, prevTag, tag.Name, i == 0)
		if err != nil {
			return results, currentParent, fmt.Errorf("engine: count commits for %s: %w", tag.Name, err)
		}

		message := buildMessage(tag, count, publishedAt)

		var commitCmd strings.Builder
		commitCmd.WriteString("git commit-tree ")
		commitCmd.WriteString(gitrun.QuoteArg(tree))

		omitParent := mode == Nuke && i == start
		if !omitParent && currentParent != "" {
			commitCmd.WriteString(" -p ")
			commitCmd.WriteString(gitrun.QuoteArg(currentParent))
		}

		newSHA, err := run.RunWithInput(commitCmd.String(), message)
		if err != nil {
			return results, currentParent, fmt.Errorf("engine: commit-tree for %s: %w", tag.Name, err)
		}
		newSHA = strings.TrimSpace(newSHA)

		if _, err := run.Run("git tag -f " + gitrun.QuoteArg(tag.Name) + " " + gitrun.QuoteArg(newSHA)); err != nil {
			return results, currentParent, fmt.Errorf("engine: move local tag %s: %w", tag.Name, err)
		}

		log.Info("published %s as %s", tag.DisplayName(), shortFormat(newSHA))

		results = append(results, publishResult{Tag: tag, LiveSHA: newSHA})
		currentParent = newSHA
		prevTag = tag.Name
	}

	return results, currentParent, nil
}

// commitCount counts the source commits spanned by this tag: the range
// prevTag..tag, or just the tag itself when there is no usable prevTag
func commitCount(run *gitrun.Runner, prevTag, tag string, first bool) (int, error) {
	rangeSpec := tag
	if !first && prevTag != "" {
		if _, ok := run.TryRun("git rev-parse --verify " + gitrun.QuoteArg(prevTag)); ok {
			rangeSpec = prevTag + ".." + tag
		}
	}

	out, err := run.Run("git log --pretty=format:%H --reverse " + gitrun.QuoteArg(rangeSpec))
	if err != nil {
		return 0, err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return 0, nil
	}

	return len(strings.Split(out, "\n")), nil
}

// shortFormat bounds sha to at most 7 characters, matching the
// fallback short-SHA length used elsewhere in the engine
func shortFormat(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// buildMessage constructs the squashed commit's subject, blank line and
// provenance trailer per the stable contract in spec §6. date records
// when this sync published the commit, not the source tag's own
// committer time
func buildMessage(tag TagRecord, count int, publishedAt time.Time) string {
	display := tag.DisplayName()

	var b strings.Builder
	fmt.Fprintf(&b, "GitLive: publish %s commit %s\n\n", display, tag.SourceShortSHA)
	b.WriteString(provenanceMarker)
	b.WriteString("\n")
	fmt.Fprintf(&b, "commit = %s\n", tag.SourceFullSHA)
	fmt.Fprintf(&b, "tag = %s\n", tag.Name)
	fmt.Fprintf(&b, "date = %s\n", publishedAt.UTC().Format("2006-01-02T15:04:05.0000000Z"))
	fmt.Fprintf(&b, "commit-count = %d\n", count)

	return b.String()
}
