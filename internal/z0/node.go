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

// Package z0 implements the tiny, indentation-free, line-based
// configuration format used both for the gitlive.z0 config file and for
// the round-trip provenance block embedded in every LIVE commit message.
package z0

import "strings"

// Kind identifies which of the three disjoint shapes a Node currently has
type Kind int

const (
	// KindUnset is the zero value: a node that hasn't been written to yet
	KindUnset Kind = iota

	// KindScalar holds a single string value
	KindScalar

	// KindObject is an ordered mapping of child name to Node
	KindObject

	// KindArray is an ordered, index-keyed collection of Nodes
	KindArray
)

// ArrayType refines a KindArray node once its first child is written
type ArrayType int

const (
	// ArrayUnknown means the array has no children yet
	ArrayUnknown ArrayType = iota

	// ArrayValue means every element is a scalar
	ArrayValue

	// ArrayDictionary means every element is an object
	ArrayDictionary
)

// Node is a single element of a parsed Z0 document. It is a tagged union:
// exactly one of scalar/object/array is meaningful, determined by Kind
type Node struct {
	kind   Kind
	scalar string

	order []string // normalized keys, insertion order (object and array)
	names map[string]string
	kids  map[string]*Node

	arrayType ArrayType
	locked    bool
}

func newNode() *Node {
	return &Node{}
}

// normalizeKey folds case and treats '-' and '_' as equivalent, as
// required for both object child names and env/CLI config keys
func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Kind reports the current shape of the node
func (n *Node) Kind() Kind {
	if n == nil {
		return KindUnset
	}
	return n.kind
}

// IsScalar reports whether the node holds a plain value
func (n *Node) IsScalar() bool {
	return n.Kind() == KindScalar
}

// IsObject reports whether the node is an object
func (n *Node) IsObject() bool {
	return n.Kind() == KindObject
}

// IsArray reports whether the node is an array
func (n *Node) IsArray() bool {
	return n.Kind() == KindArray
}

// Value returns the node's scalar content. The second return value is
// false when the node isn't a scalar (including a nil/missing node)
func (n *Node) Value() (string, bool) {
	if n == nil || n.kind != KindScalar {
		return "", false
	}
	return n.scalar, true
}

// Child looks up a named child of an object node. Lookup is
// case-insensitive and treats '-' and '_' as equivalent. Returns a nil
// Node (which is itself safely usable, see Value/Child/Len) when absent
func (n *Node) Child(name string) *Node {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return n.kids[normalizeKey(name)]
}

// ContainsKey reports whether an object node has a given child
func (n *Node) ContainsKey(name string) bool {
	return n.Child(name) != nil
}

// ChildNames returns the display names of an object node's children, in
// the order they were first assigned
func (n *Node) ChildNames() []string {
	if n == nil || n.kind != KindObject {
		return nil
	}
	out := make([]string, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.names[k])
	}
	return out
}

// Len returns the number of elements in an array node, or zero otherwise
func (n *Node) Len() int {
	if n == nil || n.kind != KindArray {
		return 0
	}
	return len(n.order)
}

// Elements returns the ordered children of an array node
func (n *Node) Elements() []*Node {
	if n == nil || n.kind != KindArray {
		return nil
	}
	out := make([]*Node, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.kids[k])
	}
	return out
}

// ArrayType reports the refined element kind of an array node
func (n *Node) ArrayType() ArrayType {
	if n == nil {
		return ArrayUnknown
	}
	return n.arrayType
}

func (n *Node) setScalar(v string) error {
	if n.kind == KindObject || n.kind == KindArray {
		return errKindMismatch
	}
	n.kind = KindScalar
	n.scalar = v
	return nil
}

func (n *Node) ensureObject() error {
	switch n.kind {
	case KindUnset:
		n.kind = KindObject
		n.kids = map[string]*Node{}
		n.names = map[string]string{}
	case KindObject:
	default:
		return errKindMismatch
	}
	return nil
}

func (n *Node) ensureArray() error {
	switch n.kind {
	case KindUnset:
		n.kind = KindArray
		n.kids = map[string]*Node{}
	case KindArray:
	default:
		return errKindMismatch
	}
	return nil
}

// objectChild returns (creating if necessary) the named child of an
// object node, recording the child's display name on first creation
func (n *Node) objectChild(display string) (*Node, error) {
	if err := n.ensureObject(); err != nil {
		return nil, err
	}

	key := normalizeKey(display)
	if child, ok := n.kids[key]; ok {
		return child, nil
	}

	child := newNode()
	n.kids[key] = child
	n.names[key] = display
	n.order = append(n.order, key)
	return child, nil
}

// arrayAppend creates a brand-new trailing element in an array node
func (n *Node) arrayAppend() (*Node, error) {
	if err := n.ensureArray(); err != nil {
		return nil, err
	}

	key := len(n.order)
	child := newNode()
	idx := itoa(key)
	n.kids[idx] = child
	n.order = append(n.order, idx)
	return child, nil
}

// arrayIndex returns (creating if necessary, but only at the next
// monotonic index) the element of an array node at a specific position
func (n *Node) arrayIndex(i int) (*Node, error) {
	if err := n.ensureArray(); err != nil {
		return nil, err
	}

	key := itoa(i)
	if child, ok := n.kids[key]; ok {
		return child, nil
	}

	if i != len(n.order) {
		return nil, errArrayNotMonotonic
	}

	child := newNode()
	n.kids[key] = child
	n.order = append(n.order, key)
	return child, nil
}

func (n *Node) markArrayElementValue() error {
	switch n.arrayType {
	case ArrayUnknown:
		n.arrayType = ArrayValue
	case ArrayValue:
	default:
		return errArrayKindMixed
	}
	return nil
}

func (n *Node) markArrayElementDictionary() error {
	switch n.arrayType {
	case ArrayUnknown:
		n.arrayType = ArrayDictionary
	case ArrayDictionary:
	default:
		return errArrayKindMixed
	}
	return nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	neg := i < 0
	if neg {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if neg {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
