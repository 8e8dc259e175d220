package monover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenRepositoryNonGitDirectory(t *testing.T) {
	_, err := OpenRepository(t.TempDir())
	require.Error(t, err)
}

func TestGitViewBranchName(t *testing.T) {
	repo, _, err := testMonorepo()
	require.NoError(t, err)

	view := NewGitView(repo)

	name, err := view.BranchName()
	require.NoError(t, err)
	require.Equal(t, "master", name)

	require.NoError(t, testCheckoutBranch(repo, "feature/new-thing"))

	name, err = view.BranchName()
	require.NoError(t, err)
	require.Equal(t, "feature/new-thing", name)
}

func TestGitViewTags(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	commit, err := testCommitFiles(repo, "initial", map[string]string{"a.txt": "a"})
	require.NoError(t, err)

	require.NoError(t, testTag(repo, "v1.0.0", commit))
	require.NoError(t, testAnnotatedTag(repo, "v1.1.0", commit))
	require.NoError(t, testTag(repo, "api/v2.0.0", commit))

	view := NewGitView(repo)
	tags, err := view.Tags()
	require.NoError(t, err)
	require.Len(t, tags, 3)

	// Both lightweight and annotated tags resolve to the target commit.
	for _, tag := range tags {
		require.Equal(t, commit.String(), tag.Commit, "Tag: %s", tag.Name)
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	require.ElementsMatch(t, []string{"v1.0.0", "v1.1.0", "api/v2.0.0"}, names)
}

func TestGitViewChangedPaths(t *testing.T) {
	repo, tagged, err := testMonorepo()
	require.NoError(t, err)

	_, err = testCommitFiles(repo, "change api", map[string]string{
		"services/api/new.go": "package main\n",
	})
	require.NoError(t, err)

	view := NewGitView(repo)
	paths, err := view.ChangedPaths(tagged.String())
	require.NoError(t, err)
	require.Equal(t, []string{"services/api/new.go"}, paths)
}

func TestGitViewAncestry(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	first, err := testCommitFiles(repo, "one", map[string]string{"a.txt": "1"})
	require.NoError(t, err)
	second, err := testCommitFiles(repo, "two", map[string]string{"b.txt": "2"})
	require.NoError(t, err)
	third, err := testCommitFiles(repo, "three", map[string]string{"c.txt": "3"})
	require.NoError(t, err)

	view := NewGitView(repo)
	chain, err := view.Ancestry()
	require.NoError(t, err)
	require.Equal(t, []string{third.String(), second.String(), first.String()}, chain)
}
