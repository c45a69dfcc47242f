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
	"sort"
	"strconv"
	"strings"

	"github.com/Racso/git-live/internal/gitrun"
)

// collectTags lists local `live/*` tags and resolves each to a
// TagRecord, discarding any tag whose committer timestamp is missing
// or unparseable. The result is sorted ascending by timestamp, with a
// name tie-break to guarantee a total order
func collectTags(run *gitrun.Runner, log Logger) []TagRecord {
	out, ok := run.TryRun("git tag --list live/*")
	if !ok {
		return nil
	}

	var records []TagRecord

	for _, name := range gitrun.SplitLines(out) {
		tsOut, ok := run.TryRun("git log -1 --format=%ct " + gitrun.QuoteArg(name))
		if !ok {
			log.Debug("dropping tag %s: no committer timestamp", name)
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(tsOut), 10, 64)
		if err != nil {
			log.Debug("dropping tag %s: unparseable committer timestamp %q", name, tsOut)
			continue
		}

		fullSHA, err := run.Run("git rev-parse " + gitrun.QuoteArg(name+"^{}"))
		if err != nil {
			log.Debug("dropping tag %s: cannot resolve commit: %v", name, err)
			continue
		}
		fullSHA = strings.TrimSpace(fullSHA)

		shortSHA, ok := run.TryRun("git rev-parse --short " + gitrun.QuoteArg(name+"^{}"))
		if !ok || strings.TrimSpace(shortSHA) == "" {
			shortSHA = fullSHA
			if len(shortSHA) > 7 {
				shortSHA = shortSHA[:7]
			}
		}

		records = append(records, TagRecord{
			Name:           name,
			Timestamp:      ts,
			SourceFullSHA:  fullSHA,
			SourceShortSHA: strings.TrimSpace(shortSHA),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp < records[j].Timestamp
		}
		return records[i].Name < records[j].Name
	})

	return records
}
