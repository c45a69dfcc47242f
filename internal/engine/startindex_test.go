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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagRecord(name, sha string) TagRecord {
	return TagRecord{Name: name, SourceFullSHA: sha, SourceShortSHA: sha[:7]}
}

func published(shas ...string) PublishedSet {
	set := PublishedSet{}
	for _, sha := range shas {
		set[sha] = PublishedEntry{LiveSHA: "live-" + sha}
	}
	return set
}

func TestDecideStartIndexNukeAlwaysStartsAtZero(t *testing.T) {
	tags := []TagRecord{tagRecord("live/1.0.0", "1111111111111111111111111111111111111111")}
	start, ok, err := decideStartIndex(tags, published("1111111111111111111111111111111111111111"), Nuke)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
}

func TestDecideStartIndexEmptyPublishedStartsAtZero(t *testing.T) {
	tags := []TagRecord{tagRecord("live/1.0.0", "1111111111111111111111111111111111111111")}
	start, ok, err := decideStartIndex(tags, PublishedSet{}, Incremental)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
}

func TestDecideStartIndexRepairFindsFirstMissing(t *testing.T) {
	tags := []TagRecord{
		tagRecord("live/1.0.0", "1111111111111111111111111111111111111111"),
		tagRecord("live/2.0.0", "2222222222222222222222222222222222222222"),
		tagRecord("live/3.0.0", "3333333333333333333333333333333333333333"),
	}
	p := published("1111111111111111111111111111111111111111", "3333333333333333333333333333333333333333")

	start, ok, err := decideStartIndex(tags, p, Repair)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, start)
}

func TestDecideStartIndexRepairNothingToDo(t *testing.T) {
	tags := []TagRecord{tagRecord("live/1.0.0", "1111111111111111111111111111111111111111")}
	p := published("1111111111111111111111111111111111111111")

	_, ok, err := decideStartIndex(tags, p, Repair)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecideStartIndexIncrementalResumesAfterLastPublished(t *testing.T) {
	tags := []TagRecord{
		tagRecord("live/1.0.0", "1111111111111111111111111111111111111111"),
		tagRecord("live/2.0.0", "2222222222222222222222222222222222222222"),
	}
	p := published("1111111111111111111111111111111111111111")

	start, ok, err := decideStartIndex(tags, p, Incremental)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, start)
}

func TestDecideStartIndexIncrementalNothingToDo(t *testing.T) {
	tags := []TagRecord{tagRecord("live/1.0.0", "1111111111111111111111111111111111111111")}
	p := published("1111111111111111111111111111111111111111")

	_, ok, err := decideStartIndex(tags, p, Incremental)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecideStartIndexIncrementalDivergenceFailsOnGap(t *testing.T) {
	tags := []TagRecord{
		tagRecord("live/1.0.0", "1111111111111111111111111111111111111111"),
		tagRecord("live/2.0.0", "2222222222222222222222222222222222222222"),
		tagRecord("live/3.0.0", "3333333333333333333333333333333333333333"),
	}
	p := published("1111111111111111111111111111111111111111", "3333333333333333333333333333333333333333")

	_, _, err := decideStartIndex(tags, p, Incremental)
	require.Error(t, err)

	var divergence *DivergenceError
	require.ErrorAs(t, err, &divergence)
	assert.Equal(t, "live/2.0.0", divergence.Tag)
}
