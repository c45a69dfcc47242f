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

package engine_test

import (
	"testing"

	"github.com/Racso/git-live/internal/engine"
	"github.com/Racso/git-live/internal/gittest"
	"github.com/Racso/git-live/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncOpts(pair *gittest.Pair, mode engine.Mode) engine.Options {
	return engine.Options{
		SourcePath: pair.SourceDir,
		LiveURL:    pair.LiveDir,
		Mode:       mode,
		Logger:     engine.NopLogger{},
	}
}

func TestSyncSingleTag(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "add content")
	pair.Tag(t, "live/1.0.0")

	result := engine.New().Sync(syncOpts(pair, engine.Incremental))

	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, 1, result.TagsPublished)

	log := pair.LiveLog(t)
	assert.Len(t, log, 2)

	content := pair.ShowLiveFile(t, "1.0.0", "content.txt")
	assert.Equal(t, "line 1", content)
}

func TestSyncThreeTagsInSequence(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	pair.WriteFile(t, "content.txt", "line 1\nline 2\n")
	pair.CommitAll(t, "two")
	pair.Tag(t, "live/1.1.0")

	pair.WriteFile(t, "content.txt", "line 1\nline 2\nline 3\n")
	pair.CommitAll(t, "three")
	pair.Tag(t, "live/1.2.0")

	result := engine.New().Sync(syncOpts(pair, engine.Incremental))

	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, 3, result.TagsPublished)

	assert.Equal(t, "line 1\nline 2\nline 3", pair.ShowLiveFile(t, "1.2.0", "content.txt"))
	assert.Equal(t, "line 1", pair.ShowLiveFile(t, "1.0.0", "content.txt"))
}

func TestSyncIncrementalResume(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	first := engine.New().Sync(syncOpts(pair, engine.Incremental))
	require.True(t, first.Success, first.ErrorMessage)
	assert.Equal(t, 1, first.TagsPublished)

	pair.WriteFile(t, "content.txt", "line 1\nline 2\n")
	pair.CommitAll(t, "two")
	pair.Tag(t, "live/1.1.0")

	second := engine.New().Sync(syncOpts(pair, engine.Incremental))
	require.True(t, second.Success, second.ErrorMessage)
	assert.Equal(t, 1, second.TagsPublished)

	tags := pair.LiveTags(t)
	assert.ElementsMatch(t, []string{"1.0.0", "1.1.0"}, tags)
}

func TestSyncIncrementalTwiceInARowPublishesNothing(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	first := engine.New().Sync(syncOpts(pair, engine.Incremental))
	require.True(t, first.Success, first.ErrorMessage)

	second := engine.New().Sync(syncOpts(pair, engine.Incremental))
	require.True(t, second.Success, second.ErrorMessage)
	assert.Equal(t, 0, second.TagsPublished)
}

func TestSyncIgnoreRuleExcludesFile(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "keep me\n")
	pair.WriteFile(t, "secret.txt", "shh\n")
	pair.CommitAll(t, "add files")
	pair.Tag(t, "live/1.0.0")

	rules, err := selector.Compile([]string{"- secret.txt"})
	require.NoError(t, err)

	opts := syncOpts(pair, engine.Incremental)
	opts.Rules = rules

	result := engine.New().Sync(opts)
	require.True(t, result.Success, result.ErrorMessage)

	assert.Equal(t, "keep me", pair.ShowLiveFile(t, "1.0.0", "content.txt"))

	_, err = pair.Live.Run("git show 1.0.0:secret.txt")
	assert.Error(t, err)
}

func TestSyncNukeRepublishesFromScratch(t *testing.T) {
	pair := gittest.NewPair(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	pair.WriteFile(t, "content.txt", "line 1\nline 2\n")
	pair.CommitAll(t, "two")
	pair.Tag(t, "live/1.1.0")

	first := engine.New().Sync(syncOpts(pair, engine.Nuke))
	require.True(t, first.Success, first.ErrorMessage)
	assert.Equal(t, 2, first.TagsPublished)

	second := engine.New().Sync(syncOpts(pair, engine.Nuke))
	require.True(t, second.Success, second.ErrorMessage)
	assert.Equal(t, 2, second.TagsPublished)

	log := pair.LiveLog(t)
	assert.Len(t, log, 2)
}

func TestSyncDivergenceDetection(t *testing.T) {
	pair := gittest.NewPair(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	pair.WriteFile(t, "content.txt", "line 1\nline 2\n")
	middleSHA := pair.CommitAll(t, "two")

	pair.WriteFile(t, "content.txt", "line 1\nline 2\nline 3\n")
	pair.CommitAll(t, "three")
	pair.Tag(t, "live/3.0.0")

	// only 1.0.0 and 3.0.0 exist yet: a Nuke here records provenance
	// for both while leaving a gap at the not-yet-tagged middle commit
	nuke := engine.New().Sync(syncOpts(pair, engine.Nuke))
	require.True(t, nuke.Success, nuke.ErrorMessage)
	assert.Equal(t, 2, nuke.TagsPublished)

	gittest.MustRun(t, pair.Source, "git tag live/2.0.0 "+middleSHA)

	result := engine.New().Sync(syncOpts(pair, engine.Incremental))

	require.False(t, result.Success)
	assert.Equal(t, engine.ExitDivergence, result.ExitCode)
	assert.Contains(t, result.ErrorMessage, "live/2.0.0")
}

func TestSyncNukeAgainstVirginLive(t *testing.T) {
	pair := gittest.NewPair(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	result := engine.New().Sync(syncOpts(pair, engine.Nuke))
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, 1, result.TagsPublished)

	log := pair.LiveLog(t)
	assert.Len(t, log, 1)
}

func TestSyncZeroTagsIsBenignSuccess(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")

	result := engine.New().Sync(syncOpts(pair, engine.Incremental))
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, 0, result.TagsPublished)
}

func TestSyncDryRunMutatesNothing(t *testing.T) {
	pair := gittest.NewPair(t)
	pair.SeedLiveWithEmptyCommit(t)

	pair.WriteFile(t, "content.txt", "line 1\n")
	pair.CommitAll(t, "one")
	pair.Tag(t, "live/1.0.0")

	before, err := pair.Live.Run("git show-ref")
	require.NoError(t, err)

	opts := syncOpts(pair, engine.Incremental)
	opts.DryRun = true

	result := engine.New().Sync(opts)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, 1, result.TagsPublished)

	after, err := pair.Live.Run("git show-ref")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
