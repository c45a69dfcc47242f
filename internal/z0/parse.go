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

package z0

import (
	"regexp"
	"strings"

	"github.com/purpleclay/chomp"
)

var segmentPattern = regexp.MustCompile(`^([A-Za-z_-][A-Za-z0-9_-]*|[0-9]+)$`)

const arraySentinel = "#"

// Parse reads a Z0 document and returns its root node. Blank lines and
// comment lines (first non-whitespace characters "//") are ignored.
// Every other line is either an assignment (contains '=') or a section
// header (ends with ':')
func Parse(src string) (*Node, error) {
	p := &parser{
		root:    newNode(),
		current: []string{},
	}
	p.stack = []*Node{p.root}

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if idx := strings.Index(line, "="); idx >= 0 {
			if err := p.assignment(lineNo, line); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasSuffix(line, ":") {
			if err := p.section(lineNo, line); err != nil {
				return nil, err
			}
			continue
		}

		return nil, parseErrf(lineNo, "line is neither an assignment nor a section header: %q", raw)
	}

	return p.root, nil
}

type parser struct {
	root    *Node
	section []string // path of the last section header, prefixed to every assignment
	current []string // path of the last navigated section/assignment, absolute from root
	stack   []*Node  // stack[0] == root; stack[i] is the node at current[:i]
	locked  map[*Node]bool
}

func (p *parser) lock(n *Node) {
	if p.locked == nil {
		p.locked = map[*Node]bool{}
	}
	p.locked[n] = true
	n.locked = true
}

// splitPath tokenizes a dotted path using chomp, validating each segment
func splitPath(lineNo int, raw string) ([]string, error) {
	if raw == "" || strings.HasPrefix(raw, ".") || strings.HasSuffix(raw, ".") || strings.Contains(raw, "..") {
		return nil, parseErrf(lineNo, "invalid path %q", raw)
	}

	rem := raw
	var segs []string
	for rem != "" {
		var seg string
		var err error

		rem, seg, err = chomp.Until(".")(rem)
		if err != nil {
			// no further '.' found: the remainder is the final segment
			seg = rem
			rem = ""
		} else {
			// consume the '.' separator itself
			rem, _, _ = chomp.Tag(".")(rem)
		}

		if seg != arraySentinel && !segmentPattern.MatchString(seg) {
			return nil, parseErrf(lineNo, "invalid path segment %q in %q", seg, raw)
		}
		segs = append(segs, seg)
	}

	return segs, nil
}

func segEq(a, b string) bool {
	if a == arraySentinel || b == arraySentinel {
		other := a
		if a == arraySentinel {
			other = b
		}
		return other == arraySentinel || isDigits(other)
	}
	return normalizeKey(a) == normalizeKey(b)
}

// navigate relocates the parser's current position to fullPath, locking
// every node on the branch being left and creating nodes as needed on
// the branch being entered. It returns the node at fullPath
func (p *parser) navigate(lineNo int, fullPath []string) (*Node, error) {
	commonLen := 0
	for commonLen < len(p.current) && commonLen < len(fullPath) && segEq(p.current[commonLen], fullPath[commonLen]) {
		commonLen++
	}

	// a trailing '#' never reuses the element it would otherwise match:
	// it always mints a brand-new array entry. A '#' earlier in the path
	// matches the current element and continues it
	if commonLen == len(fullPath) && commonLen == len(p.current) && len(fullPath) > 0 && fullPath[len(fullPath)-1] == arraySentinel {
		commonLen--
	}

	// lock every node on the branch we're walking away from
	for depth := len(p.current); depth > commonLen; depth-- {
		p.lock(p.stack[depth])
	}

	joinNode := p.stack[commonLen]
	if joinNode.locked {
		return nil, parseErrf(lineNo, "path %q re-enters a locked section", strings.Join(fullPath, "."))
	}

	newStack := append([]*Node{}, p.stack[:commonLen+1]...)
	node := joinNode

	for i := commonLen; i < len(fullPath); i++ {
		seg := fullPath[i]
		parent := node

		var child *Node
		var err error

		isArrayElement := false

		switch {
		case seg == arraySentinel:
			child, err = parent.arrayAppend()
			isArrayElement = true
		case isDigits(seg):
			idx := 0
			for _, r := range seg {
				idx = idx*10 + int(r-'0')
			}
			child, err = parent.arrayIndex(idx)
			isArrayElement = true
		default:
			if parent.kind == KindArray {
				return nil, parseErrf(lineNo, "array cannot take a named child %q", seg)
			}
			child, err = parent.objectChild(seg)
		}

		if err != nil {
			return nil, parseErrf(lineNo, "%s: %v", strings.Join(fullPath[:i+1], "."), err)
		}

		// Refine the array's element kind as soon as we know whether this
		// element terminates the path (a scalar leaf) or is an ancestor
		// of further segments (a dictionary element)
		if isArrayElement {
			if i == len(fullPath)-1 {
				err = parent.markArrayElementValue()
			} else {
				err = parent.markArrayElementDictionary()
			}
			if err != nil {
				return nil, parseErrf(lineNo, "%s: %v", strings.Join(fullPath[:i+1], "."), err)
			}
		}
		if child.locked {
			return nil, parseErrf(lineNo, "path %q traverses a locked node", strings.Join(fullPath, "."))
		}

		node = child
		newStack = append(newStack, node)
	}

	p.current = fullPath
	p.stack = newStack
	return node, nil
}

func (p *parser) assignment(lineNo int, line string) error {
	rem, left, err := chomp.Until("=")(line)
	if err != nil {
		return parseErrf(lineNo, "expected '=' in assignment %q", line)
	}
	rem, _, _ = chomp.Tag("=")(rem)

	path := strings.TrimSpace(left)
	value := strings.TrimSpace(rem)

	rawSegs, err := splitPath(lineNo, path)
	if err != nil {
		return err
	}

	if len(p.section) > 0 && segEq(p.section[0], rawSegs[0]) {
		return parseErrf(lineNo, "assignment %q inside section %q would create an ambiguous path", path, strings.Join(p.section, "."))
	}

	full := append(append([]string{}, p.section...), rawSegs...)

	node, err := p.navigate(lineNo, full)
	if err != nil {
		return err
	}

	if err := node.setScalar(value); err != nil {
		return parseErrf(lineNo, "%s: %v", path, err)
	}

	return nil
}

func (p *parser) section(lineNo int, line string) error {
	path := strings.TrimSpace(strings.TrimSuffix(line, ":"))

	segs, err := splitPath(lineNo, path)
	if err != nil {
		return err
	}

	if _, err := p.navigate(lineNo, segs); err != nil {
		return err
	}

	p.section = segs
	return nil
}
