package changes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrezz-b/salsa-prep/internal/config"
)

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.CacheFile = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func initRepo(t *testing.T, dir string) (*git.Repository, *git.Worktree) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return repo, wt
}

func commitFile(t *testing.T, wt *git.Worktree, dir, name, content, msg string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := wt.Add(filepath.ToSlash(name))
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestDetect_MissingCheckout(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "nope"))
	result := NewDetector(cfg).Detect(nil)

	assert.True(t, result.HasChanges)
	assert.False(t, result.ShouldUpdateCache)
	assert.Empty(t, result.CurrentCommit)
}

func TestDetect_NotARepository(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	result := NewDetector(cfg).Detect(nil)

	assert.True(t, result.HasChanges)
	assert.False(t, result.ShouldUpdateCache)
}

func TestDetect_FirstRun(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	head := commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")

	result := NewDetector(testConfig(t, dir)).Detect(nil)

	assert.True(t, result.HasChanges)
	assert.True(t, result.ShouldUpdateCache)
	assert.Equal(t, head, result.CurrentCommit)
}

func TestDetect_SameCommit(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	head := commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")

	d := NewDetector(testConfig(t, dir))
	require.NoError(t, d.UpdateCache(head))
	result := d.Detect([]string{"Moves"})

	assert.False(t, result.HasChanges)
	assert.False(t, result.ShouldUpdateCache)
	assert.Equal(t, head, result.CurrentCommit)
}

func TestDetect_UnreachableCachedCommit(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")

	d := NewDetector(testConfig(t, dir))
	// A commit that was lost to a shallow re-clone.
	require.NoError(t, d.UpdateCache("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
	result := d.Detect([]string{"Moves"})

	assert.True(t, result.HasChanges)
	assert.True(t, result.ShouldUpdateCache)
}

func TestDetect_EmptyWatchedFoldersCountsAnyDifference(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	first := commitFile(t, wt, dir, "README.md", "v1", "initial")
	commitFile(t, wt, dir, "README.md", "v2", "update")

	d := NewDetector(testConfig(t, dir))
	require.NoError(t, d.UpdateCache(first))
	result := d.Detect(nil)

	assert.True(t, result.HasChanges)
	assert.True(t, result.ShouldUpdateCache)
}

func TestDetect_IrrelevantChange(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	first := commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")
	commitFile(t, wt, dir, "Journal/2025.md", "unrelated", "journal")

	d := NewDetector(testConfig(t, dir))
	require.NoError(t, d.UpdateCache(first))
	result := d.Detect([]string{"Moves", "Concepts"})

	assert.False(t, result.HasChanges)
	// Commit advanced irrelevantly; still worth recording.
	assert.True(t, result.ShouldUpdateCache)
}

func TestDetect_RelevantChange(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	first := commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")
	commitFile(t, wt, dir, "Moves/Cross Body Lead.md", "body", "new move")

	d := NewDetector(testConfig(t, dir))
	require.NoError(t, d.UpdateCache(first))
	result := d.Detect([]string{"Moves", "Concepts"})

	assert.True(t, result.HasChanges)
	assert.True(t, result.ShouldUpdateCache)
}

func TestDetect_UnderscoreFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	_, wt := initRepo(t, dir)
	first := commitFile(t, wt, dir, "Moves/Open Break.md", "body", "initial")
	commitFile(t, wt, dir, "Moves/_scratch.md", "wip", "scratch")

	d := NewDetector(testConfig(t, dir))
	require.NoError(t, d.UpdateCache(first))
	result := d.Detect([]string{"Moves"})

	assert.False(t, result.HasChanges)
	assert.True(t, result.ShouldUpdateCache)
}

func TestCache_Roundtrip(t *testing.T) {
	d := NewDetector(testConfig(t, t.TempDir()))

	_, ok := d.CachedCommit()
	assert.False(t, ok)

	require.NoError(t, d.UpdateCache("abc123"))
	commit, ok := d.CachedCommit()
	require.True(t, ok)
	assert.Equal(t, "abc123", commit)
}

func TestCache_EmptyCommitIgnored(t *testing.T) {
	d := NewDetector(testConfig(t, t.TempDir()))
	require.NoError(t, d.UpdateCache("abc123"))
	require.NoError(t, d.UpdateCache(""))

	commit, ok := d.CachedCommit()
	require.True(t, ok)
	assert.Equal(t, "abc123", commit)
}

func TestRelevant(t *testing.T) {
	folders := []string{"Moves", "Concepts"}
	assert.True(t, relevant("Moves/Open Break.md", folders))
	assert.True(t, relevant("Concepts/Deep/Frame.md", folders))
	assert.False(t, relevant("Journal/2025.md", folders))
	assert.False(t, relevant("Moves/_scratch.md", folders))
	assert.False(t, relevant("MovesExtra/file.md", folders))
}
