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

// Package config implements the layered value reader used to resolve
// gitlive's settings (url, user, password, file rules) across three
// sources: CLI flags, the environment, and the gitlive.z0 file, each
// gated by a per-key security level.
package config

import (
	"strings"

	"github.com/Racso/git-live/internal/z0"
)

// Level restricts which sources a key may be read from
type Level int

const (
	// SecureStrict permits only the environment. Used for values that
	// must never be passed on a command line (visible in process
	// listings) or committed to a config file
	SecureStrict Level = iota

	// SecureFlexible permits CLI and environment, but never the Z0 file
	SecureFlexible

	// All permits CLI, environment and the Z0 file
	All
)

// Reader resolves keys across CLI arguments, the environment and a
// parsed Z0 tree, applying CLI > ENV > Z0 precedence for whichever
// sources a key's security level allows
type Reader struct {
	args []string // "--name=value" entries, e.g. os.Args[1:]
	env  []string // "NAME=value" entries, e.g. os.Environ()
	root *z0.Node
}

// New builds a Reader over the given CLI args, environment and
// (possibly nil) parsed Z0 root node
func New(args, env []string, root *z0.Node) Reader {
	return Reader{args: args, env: env, root: root}
}

// Get resolves key at the given security level, trying each permitted
// source in CLI > ENV > Z0 order. fallback supplies additional Z0 key
// names to try (in order) when key itself isn't present in the Z0
// tree, for legacy aliases such as url/public-url
func (r Reader) Get(level Level, key string, fallback ...string) (string, bool) {
	if level >= SecureFlexible {
		if v, ok := r.fromArgs(key); ok {
			return v, true
		}
	}

	if v, ok := r.fromEnv(key); ok {
		return v, true
	}

	if level == All {
		reader := z0.NewReader(r.root)
		for _, k := range append([]string{key}, fallback...) {
			if v := reader.Path(k); v.Exists() {
				if s, ok := v.Node().Value(); ok {
					return s, true
				}
			}
		}
	}

	return "", false
}

func (r Reader) fromArgs(key string) (string, bool) {
	for _, a := range r.args {
		if !strings.HasPrefix(a, "--") {
			continue
		}
		name, value, ok := strings.Cut(a[2:], "=")
		if !ok {
			continue
		}
		if normalize(name) == normalize(key) {
			return value, true
		}
	}
	return "", false
}

func (r Reader) fromEnv(key string) (string, bool) {
	want := "GITLIVE_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	for _, e := range r.env {
		name, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if name == want {
			return value, true
		}
	}

	// fallback: case/separator-insensitive scan for GITLIVE_<key>
	for _, e := range r.env {
		name, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		rest, found := strings.CutPrefix(strings.ToUpper(name), "GITLIVE_")
		if !found {
			continue
		}
		if normalize(rest) == normalize(key) {
			return value, true
		}
	}

	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
}

// Files reads the "files" array directly from the Z0 tree, regardless
// of security level (rule specs are never secrets)
func (r Reader) Files() []string {
	return z0.NewReader(r.root).Path("files").StringValues()
}
