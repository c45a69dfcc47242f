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

// Command gitlive mirrors live/*-tagged releases from a source
// repository into a public LIVE repository, squashing each release
// into a single provenance-trailered commit.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Racso/git-live/internal/config"
	"github.com/Racso/git-live/internal/engine"
	"github.com/Racso/git-live/internal/selector"
	"github.com/Racso/git-live/internal/urlutil"
	"github.com/Racso/git-live/internal/z0"
)

const defaultConfigFile = "gitlive.z0"

func main() {
	os.Exit(run(os.Args[1:], os.Environ()))
}

func run(args, env []string) int {
	fs := flag.NewFlagSet("gitlive", flag.ContinueOnError)

	url := fs.String("url", "", "LIVE repository URL")
	user := fs.String("user", "", "username for LIVE authentication")
	password := fs.String("password", "", "password or token for LIVE authentication")
	dryRun := fs.Bool("dry-run", false, "evaluate the sync without pushing")
	incrementalFlag := fs.Bool("incremental", false, "publish only tags missing from LIVE (default)")
	repairFlag := fs.Bool("repair", false, "resume publishing from the first tag missing provenance")
	fullFlag := fs.Bool("full", false, "alias for --repair")
	nukeFlag := fs.Bool("nuke", false, "republish every tag from scratch, force-pushing history")
	verbose := fs.Bool("v", false, "verbose output")
	veryVerbose := fs.Bool("vv", false, "very verbose output")
	fs.BoolVar(verbose, "verbose", false, "verbose output")
	fs.BoolVar(veryVerbose, "very-verbose", false, "very verbose output")

	if err := fs.Parse(args); err != nil {
		return engine.ExitOther
	}

	level := engine.Silent
	if *verbose {
		level = engine.Info
	}
	if *veryVerbose {
		level = engine.Debug
	}
	log := engine.NewConsoleLogger(level)

	reader, err := loadConfig(args, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return engine.ExitConfig
	}

	liveURL, ok := reader.Get(config.All, "url", "public-url")
	if !ok || liveURL == "" {
		fmt.Fprintln(os.Stderr, "gitlive: no LIVE URL configured (--url, GITLIVE_URL, or url/public-url in gitlive.z0)")
		return engine.ExitConfig
	}
	if *url != "" {
		liveURL = *url
	}

	effectiveUser, _ := reader.Get(config.All, "user")
	if *user != "" {
		effectiveUser = *user
	}
	effectivePassword, _ := reader.Get(config.SecureFlexible, "password")
	if *password != "" {
		effectivePassword = *password
	}

	liveURL = urlutil.Normalize(liveURL)
	liveURL = urlutil.InjectAuth(liveURL, effectiveUser, effectivePassword)

	rules, err := selector.Compile(reader.Files())
	if err != nil {
		fmt.Fprintln(os.Stderr, "gitlive:", err)
		return engine.ExitConfig
	}

	sourcePath, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gitlive:", err)
		return engine.ExitOther
	}

	mode := selectMode(*nukeFlag, *repairFlag || *fullFlag, *incrementalFlag)

	result := engine.New().Sync(engine.Options{
		SourcePath: sourcePath,
		LiveURL:    liveURL,
		Rules:      rules,
		Mode:       mode,
		DryRun:     *dryRun,
		Logger:     log,
	})

	if !result.Success {
		fmt.Fprintln(os.Stderr, "gitlive:", result.ErrorMessage)
	}

	return result.ExitCode
}

// selectMode applies the explicit flag precedence nuke > repair > incremental
func selectMode(nuke, repair, incremental bool) engine.Mode {
	switch {
	case nuke:
		return engine.Nuke
	case repair:
		return engine.Repair
	default:
		_ = incremental
		return engine.Incremental
	}
}

// loadConfig reads gitlive.z0 from the current working directory, if
// present, and wraps it with the CLI args and environment into a
// layered config.Reader. A missing config file is not an error
func loadConfig(args, env []string) (config.Reader, error) {
	var root *z0.Node

	if content, err := os.ReadFile(defaultConfigFile); err == nil {
		node, err := z0.Parse(string(content))
		if err != nil {
			return config.Reader{}, fmt.Errorf("gitlive: parsing %s: %w", defaultConfigFile, err)
		}
		root = node
	} else if !os.IsNotExist(err) {
		return config.Reader{}, fmt.Errorf("gitlive: reading %s: %w", defaultConfigFile, err)
	}

	return config.New(args, env, root), nil
}
