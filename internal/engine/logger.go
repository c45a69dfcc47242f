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

import "fmt"

// Logger is the engine's only observability dependency: a two-level,
// verbosity-gated sink. Info is the default narration of what the sync
// did; Debug is reserved for detail only useful when diagnosing a run
type Logger interface {
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Verbosity selects how much of the engine's narration reaches output
type Verbosity int

const (
	// Silent emits nothing
	Silent Verbosity = iota

	// Info emits top-level progress
	Info

	// Debug additionally emits per-tag and per-command detail
	Debug
)

// ConsoleLogger writes to a func(string) sink (ordinarily fmt.Println),
// gated by a verbosity level, mirroring git-backup's infof/debugf
// pattern of a single package-level verbosity knob
type ConsoleLogger struct {
	Level   Verbosity
	Println func(string)
}

// NewConsoleLogger returns a ConsoleLogger writing through fmt.Println
func NewConsoleLogger(level Verbosity) *ConsoleLogger {
	return &ConsoleLogger{Level: level, Println: func(s string) { fmt.Println(s) }}
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	if l.Level >= Info {
		l.Println(fmt.Sprintf(format, args...))
	}
}

func (l *ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.Level >= Debug {
		l.Println(fmt.Sprintf(format, args...))
	}
}

// NopLogger discards everything; the zero value is ready to use
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Debug(string, ...interface{}) {}
