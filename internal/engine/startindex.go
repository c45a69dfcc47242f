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

import "strings"

// decideStartIndex implements the mode state machine of spec §4.F.5.
// It returns the index into tags to resume publishing from, or ok=false
// when there is genuinely nothing to do (a successful no-op, not an error)
func decideStartIndex(tags []TagRecord, published PublishedSet, mode Mode) (start int, ok bool, err error) {
	if mode == Nuke {
		return 0, len(tags) > 0, nil
	}

	if len(published) == 0 {
		return 0, len(tags) > 0, nil
	}

	switch mode {
	case Repair:
		for i, t := range tags {
			if !isPublished(published, t) {
				return i, true, nil
			}
		}
		return 0, false, nil

	case Incremental:
		lastIdx := -1
		for i, t := range tags {
			if isPublished(published, t) {
				lastIdx = i
			}
		}

		for j := 0; j <= lastIdx; j++ {
			if !isPublished(published, tags[j]) {
				return 0, false, &DivergenceError{Tag: tags[j].Name}
			}
		}

		start = lastIdx + 1
		return start, start < len(tags), nil
	}

	return 0, len(tags) > 0, nil
}

func isPublished(published PublishedSet, t TagRecord) bool {
	_, ok := published[strings.ToLower(t.SourceFullSHA)]
	return ok
}
