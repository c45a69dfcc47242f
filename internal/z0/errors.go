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
	"errors"
	"fmt"
)

var (
	errKindMismatch      = errors.New("node already has an incompatible shape")
	errArrayNotMonotonic = errors.New("array index is not the next monotonic element")
	errArrayKindMixed    = errors.New("array cannot mix value and dictionary elements")
)

// ParseError is raised when a line of a Z0 document cannot be parsed or
// would violate the format's forward-only locking rules. It is always
// line-numbered (1-based) against the source passed to Parse
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("z0: line %d: %s", e.Line, e.Message)
}

func parseErrf(line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}
