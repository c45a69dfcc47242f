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

// Package selector compiles Ant-style glob rules into anchored regular
// expressions and applies them to reconstruct a filtered git tree
// using plumbing commands only — no working-tree checkout.
package selector

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Racso/git-live/internal/gitrun"
)

// Kind is the sign of a rule: whether it adds or removes matching paths
type Kind int

const (
	// Add includes matching paths in the selection
	Add Kind = iota

	// Remove excludes matching paths from the selection
	Remove
)

// Rule is one compiled `+ <glob>` or `- <glob>` specification
type Rule struct {
	Kind    Kind
	Pattern string
	re      *regexp.Regexp
}

// Regexp returns the anchored regular expression this rule's glob
// compiles to, compiling (and caching) it on first use
func (r *Rule) Regexp() *regexp.Regexp {
	if r.re == nil {
		r.re = regexp.MustCompile(globToRegexp(r.Pattern))
	}
	return r.re
}

// Compile parses a list of rule specs ("+ glob" / "- glob") into Rules
func Compile(specs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))

	for _, spec := range specs {
		trimmed := strings.TrimSpace(spec)
		if len(trimmed) < 2 {
			return nil, fmt.Errorf("selector: invalid rule %q", spec)
		}

		var kind Kind
		switch trimmed[0] {
		case '+':
			kind = Add
		case '-':
			kind = Remove
		default:
			return nil, fmt.Errorf("selector: rule %q must start with '+' or '-'", spec)
		}

		pattern := strings.TrimSpace(trimmed[1:])
		if pattern == "" {
			return nil, fmt.Errorf("selector: rule %q has an empty pattern", spec)
		}

		rules = append(rules, Rule{Kind: kind, Pattern: pattern})
	}

	return rules, nil
}

// globToRegexp compiles a single Ant-style glob into an anchored
// regular expression source string, working segment by segment so that
// "**" can be special-cased by its position relative to "/"
func globToRegexp(pattern string) string {
	p := pattern
	if strings.HasSuffix(p, "/") {
		p += "**"
	}

	segments := strings.Split(p, "/")

	if len(segments) == 1 && segments[0] == "**" {
		return "^.*$"
	}

	var b strings.Builder
	b.WriteString("^")

	// pendingSlash is true once a plain segment has been emitted and the
	// next token needs a literal "/" in front of it. A "**" placeholder
	// either absorbs that pending slash into its own expansion or, for
	// the optional-leading-segments case, needs none at all
	pendingSlash := false

	for i, seg := range segments {
		switch {
		case seg == "**" && i == 0:
			// leading "**/" => optional leading segments
			b.WriteString(`(?:.*/)?`)
			pendingSlash = false
		case seg == "**" && i == len(segments)-1:
			// trailing "/**" => any path suffix
			if pendingSlash {
				b.WriteString(`/.*`)
			} else {
				b.WriteString(`.*`)
			}
			pendingSlash = false
		case seg == "**":
			// "**" mid-path => zero or more full segments
			if pendingSlash {
				b.WriteString(`/`)
			}
			b.WriteString(`(?:[^/]+/)*`)
			pendingSlash = false
		default:
			if pendingSlash {
				b.WriteString("/")
			}
			b.WriteString(segmentToRegexp(seg))
			pendingSlash = true
		}
	}

	b.WriteString("$")
	return b.String()
}

// segmentToRegexp compiles a single non-"**" path segment, where "*"
// matches any run of non-"/" characters and "?" matches exactly one
func segmentToRegexp(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// Entry is one row of `ls-tree -r`: a blob's mode, type, sha and path
type Entry struct {
	Mode string
	Type string
	SHA  string
	Path string
}

// parseLsTree parses the machine-readable output of `ls-tree -r -z`-free
// (plain, newline-delimited) format: "<mode> <type> <sha>\t<path>"
func parseLsTree(output string) ([]Entry, error) {
	var entries []Entry

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("selector: malformed ls-tree line %q", line)
		}

		fields := strings.Fields(line[:tab])
		if len(fields) != 3 {
			return nil, fmt.Errorf("selector: malformed ls-tree line %q", line)
		}

		entries = append(entries, Entry{
			Mode: fields[0],
			Type: fields[1],
			SHA:  fields[2],
			Path: line[tab+1:],
		})
	}

	return entries, nil
}

// Evaluate applies rules, in order, to the entries of a tree and
// returns the selected subset. The starting set is everything when the
// first rule is a Remove, empty otherwise
func Evaluate(entries []Entry, rules []Rule) []Entry {
	selected := map[string]Entry{}

	if len(rules) > 0 && rules[0].Kind == Remove {
		for _, e := range entries {
			selected[e.Path] = e
		}
	}

	for _, rule := range rules {
		re := rule.Regexp()
		for _, e := range entries {
			if !re.MatchString(e.Path) {
				continue
			}
			switch rule.Kind {
			case Add:
				selected[e.Path] = e
			case Remove:
				delete(selected, e.Path)
			}
		}
	}

	out := make([]Entry, 0, len(selected))
	for _, e := range selected {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// FilterTree reconstructs treeSHA under rules using git plumbing only:
// ls-tree -r to enumerate, read-tree --empty plus update-index
// --add --cacheinfo per selected blob, then write-tree. It performs no
// checkout and touches no working-tree file
func FilterTree(run *gitrun.Runner, treeSHA string, rules []Rule) (string, error) {
	out, err := run.Run("git ls-tree -r " + gitrun.QuoteArg(treeSHA))
	if err != nil {
		return "", fmt.Errorf("selector: ls-tree %s: %w", treeSHA, err)
	}

	entries, err := parseLsTree(out)
	if err != nil {
		return "", err
	}

	selected := Evaluate(entries, rules)

	if _, err := run.Run("git read-tree --empty"); err != nil {
		return "", fmt.Errorf("selector: read-tree --empty: %w", err)
	}

	for _, e := range selected {
		cacheinfo := fmt.Sprintf("%s,%s,%s", e.Mode, e.SHA, e.Path)
		if _, err := run.Run("git update-index --add --cacheinfo " + gitrun.QuoteArg(cacheinfo)); err != nil {
			return "", fmt.Errorf("selector: update-index %s: %w", e.Path, err)
		}
	}

	sha, err := run.Run("git write-tree")
	if err != nil {
		return "", fmt.Errorf("selector: write-tree: %w", err)
	}

	return strings.TrimSpace(sha), nil
}
