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

import "strings"

// Reader is a tolerant, read-only wrapper around a Node tree. A missing
// child looked up through Reader behaves as a falsy, safely-chainable
// "null node" rather than panicking
type Reader struct {
	node *Node
}

// NewReader wraps a node (which may be nil) for tolerant reading
func NewReader(n *Node) Reader {
	return Reader{node: n}
}

// Node returns the underlying node, which may be nil
func (r Reader) Node() *Node {
	return r.node
}

// Exists reports whether the wrapped node is present
func (r Reader) Exists() bool {
	return r.node != nil && r.node.Kind() != KindUnset
}

// Path navigates a dotted path of child lookups, case/separator
// insensitively, returning a Reader over whatever is found (or a Reader
// wrapping nil if any segment is missing)
func (r Reader) Path(path string) Reader {
	node := r.node
	for _, seg := range strings.Split(path, ".") {
		if node == nil {
			break
		}
		node = node.Child(seg)
	}
	return Reader{node: node}
}

// Optional returns the node's scalar value, or def if the node is
// missing or not a scalar
func (r Reader) Optional(def string) string {
	v, ok := r.node.Value()
	if !ok {
		return def
	}
	return v
}

// Required returns the node's scalar value, or an error if missing
func (r Reader) Required(name string) (string, error) {
	v, ok := r.node.Value()
	if !ok {
		return "", &MissingKeyError{Key: name}
	}
	return v, nil
}

// ContainsKey reports whether an object child with this name is present
func (r Reader) ContainsKey(name string) bool {
	return r.node.ContainsKey(name)
}

// Array returns a Reader for every element of an array node
func (r Reader) Array() []Reader {
	elements := r.node.Elements()
	out := make([]Reader, 0, len(elements))
	for _, e := range elements {
		out = append(out, Reader{node: e})
	}
	return out
}

// StringValues returns the scalar value of every element of an array
// node, skipping any element that isn't itself a scalar
func (r Reader) StringValues() []string {
	elements := r.node.Elements()
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		if v, ok := e.Value(); ok {
			out = append(out, v)
		}
	}
	return out
}

// MissingKeyError is returned by Reader.Required when a key is absent
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return "z0: required key missing: " + e.Key
}
