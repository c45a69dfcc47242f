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

// Package urlutil normalizes remote URLs and injects basic-auth
// credentials, matching the tolerant, best-effort semantics git itself
// applies to remote names.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize trims whitespace, converts backslashes to forward slashes,
// collapses accidental slash-dot-git repetitions, and appends ".git"
// for github.com/gitlab.com hosts that are missing it
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimRight(s, "/")

	s = collapseGitSuffix(s)

	if !strings.HasSuffix(s, ".git") {
		if host := hostOf(s); host == "github.com" || host == "gitlab.com" {
			s += ".git"
		}
	}

	return s
}

// collapseGitSuffix folds "/.git" -> ".git" and any run of repeated
// ".git" suffixes down to a single one. A trailing ".git/" has already
// become ".git" through Normalize's trailing-slash trim
func collapseGitSuffix(s string) string {
	s = strings.ReplaceAll(s, "/.git", ".git")

	const maxIterations = 100
	for i := 0; i < maxIterations && strings.HasSuffix(s, ".git.git"); i++ {
		s = strings.TrimSuffix(s, ".git")
	}

	return s
}

// hostOf returns the host component of an absolute http(s) URL, or ""
// if raw doesn't parse as one (ssh/scp-style and filesystem paths fall
// through to the string-level collapses only)
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Hostname()
}

// InjectAuth re-serializes raw with user/password in the userinfo
// position. It is a no-op when both credentials are empty, when raw
// isn't an http(s) URL, or when raw fails to parse
func InjectAuth(raw, user, password string) string {
	if user == "" && password == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return raw
	}

	if password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, password)
	}

	return u.String()
}
