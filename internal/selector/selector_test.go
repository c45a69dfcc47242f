package selector_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Racso/git-live/internal/gitrun"
	"github.com/Racso/git-live/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepoWithTree(t *testing.T) (*gitrun.Runner, string) {
	t.Helper()

	dir := t.TempDir()
	r := gitrun.New(dir)

	_, err := r.Run("git init --quiet")
	require.NoError(t, err)
	_, err = r.Run(`git config user.email "test@example.com"`)
	require.NoError(t, err)
	_, err = r.Run(`git config user.name "tester"`)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "readme.md"), []byte("docs\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "secret.md"), []byte("shh\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	_, err = r.Run("git add .")
	require.NoError(t, err)
	_, err = r.Run(`git commit --quiet -m "initial"`)
	require.NoError(t, err)

	treeSHA, err := r.Run("git rev-parse HEAD^{tree}")
	require.NoError(t, err)

	return r, strings.TrimSpace(treeSHA)
}

func compileOne(t *testing.T, spec string) selector.Rule {
	t.Helper()
	rules, err := selector.Compile([]string{spec})
	require.NoError(t, err)
	require.Len(t, rules, 1)
	return rules[0]
}

func TestCompileRejectsMissingSign(t *testing.T) {
	_, err := selector.Compile([]string{"*.md"})
	require.Error(t, err)
}

func TestCompileRejectsEmptyPattern(t *testing.T) {
	_, err := selector.Compile([]string{"+ "})
	require.Error(t, err)
}

func TestGlobStarMatchesWithinSegment(t *testing.T) {
	r := compileOne(t, "+ *.md")
	assert.True(t, r.Regexp().MatchString("README.md"))
	assert.False(t, r.Regexp().MatchString("docs/README.md"))
}

func TestGlobQuestionMarkMatchesSingleChar(t *testing.T) {
	r := compileOne(t, "+ file?.txt")
	assert.True(t, r.Regexp().MatchString("file1.txt"))
	assert.False(t, r.Regexp().MatchString("file12.txt"))
}

func TestGlobDoubleStarMidPathMatchesZeroOrMoreSegments(t *testing.T) {
	r := compileOne(t, "+ a/**/b")
	assert.True(t, r.Regexp().MatchString("a/b"))
	assert.True(t, r.Regexp().MatchString("a/x/b"))
	assert.True(t, r.Regexp().MatchString("a/x/y/b"))
	assert.False(t, r.Regexp().MatchString("a/b/c"))
}

func TestGlobLeadingDoubleStarIsOptional(t *testing.T) {
	r := compileOne(t, "+ **/README.md")
	assert.True(t, r.Regexp().MatchString("README.md"))
	assert.True(t, r.Regexp().MatchString("docs/README.md"))
	assert.True(t, r.Regexp().MatchString("a/b/README.md"))
}

func TestGlobTrailingDoubleStarMatchesSuffix(t *testing.T) {
	r := compileOne(t, "+ vendor/**")
	assert.True(t, r.Regexp().MatchString("vendor/pkg/file.go"))
	assert.False(t, r.Regexp().MatchString("vendor"))
}

func TestGlobTrailingSlashImpliesDoubleStar(t *testing.T) {
	r := compileOne(t, "+ secrets/")
	assert.True(t, r.Regexp().MatchString("secrets/key.pem"))
	assert.False(t, r.Regexp().MatchString("secretsmine/key.pem"))
}

func TestGlobLiteralMetacharactersAreEscaped(t *testing.T) {
	r := compileOne(t, "+ a+b.txt")
	assert.True(t, r.Regexp().MatchString("a+b.txt"))
	assert.False(t, r.Regexp().MatchString("aXb.txt"))
}

func TestEvaluateStartsEmptyWhenFirstRuleAdds(t *testing.T) {
	entries := []selector.Entry{{Path: "a.md"}, {Path: "b.txt"}}
	rules, err := selector.Compile([]string{"+ *.md"})
	require.NoError(t, err)

	got := selector.Evaluate(entries, rules)
	require.Len(t, got, 1)
	assert.Equal(t, "a.md", got[0].Path)
}

func TestEvaluateStartsFullWhenFirstRuleRemoves(t *testing.T) {
	entries := []selector.Entry{{Path: "a.md"}, {Path: "secret.txt"}}
	rules, err := selector.Compile([]string{"- secret.txt"})
	require.NoError(t, err)

	got := selector.Evaluate(entries, rules)
	require.Len(t, got, 1)
	assert.Equal(t, "a.md", got[0].Path)
}

func TestEvaluateAppliesRulesInOrder(t *testing.T) {
	entries := []selector.Entry{
		{Path: "docs/a.md"},
		{Path: "docs/secret.md"},
		{Path: "main.go"},
	}
	rules, err := selector.Compile([]string{"+ docs/**", "- docs/secret.md"})
	require.NoError(t, err)

	got := selector.Evaluate(entries, rules)
	require.Len(t, got, 1)
	assert.Equal(t, "docs/a.md", got[0].Path)
}

func TestEvaluateCanProduceEmptySelection(t *testing.T) {
	entries := []selector.Entry{{Path: "a.md"}}
	rules, err := selector.Compile([]string{"+ *.md", "- *.md"})
	require.NoError(t, err)

	got := selector.Evaluate(entries, rules)
	assert.Empty(t, got)
}

func TestEvaluateResultIsSortedByPath(t *testing.T) {
	entries := []selector.Entry{{Path: "z.md"}, {Path: "a.md"}, {Path: "m.md"}}
	rules, err := selector.Compile([]string{"+ *.md"})
	require.NoError(t, err)

	got := selector.Evaluate(entries, rules)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a.md", "m.md", "z.md"}, []string{got[0].Path, got[1].Path, got[2].Path})
}

func TestFilterTreeReconstructsSelectedSubset(t *testing.T) {
	r, treeSHA := initRepoWithTree(t)

	rules, err := selector.Compile([]string{"+ docs/**", "- docs/secret.md"})
	require.NoError(t, err)

	filteredSHA, err := selector.FilterTree(r, treeSHA, rules)
	require.NoError(t, err)
	require.NotEqual(t, treeSHA, filteredSHA)

	out, err := r.Run("git ls-tree -r " + gitrun.QuoteArg(filteredSHA))
	require.NoError(t, err)
	assert.Contains(t, out, "docs/readme.md")
	assert.NotContains(t, out, "docs/secret.md")
	assert.NotContains(t, out, "main.go")
}

func TestFilterTreeEmptySelectionProducesEmptyTree(t *testing.T) {
	r, treeSHA := initRepoWithTree(t)

	rules, err := selector.Compile([]string{"+ *.nonexistent"})
	require.NoError(t, err)

	filteredSHA, err := selector.FilterTree(r, treeSHA, rules)
	require.NoError(t, err)

	emptyTreeSHA, err := r.Run("git hash-object -t tree --stdin < /dev/null")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(emptyTreeSHA), filteredSHA)
}
