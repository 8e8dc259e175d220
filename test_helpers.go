package monover

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testCommitFiles writes the given files and commits them in one commit,
// returning the commit hash.
func testCommitFiles(repo *git.Repository, message string, files map[string]string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	for name, content := range files {
		if err := writeFile(workTree.Filesystem, name, content); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := workTree.Add(name); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	return workTree.Commit(message, &git.CommitOptions{Author: testSignature})
}

// testCheckoutBranch creates and checks out a branch at the current HEAD.
func testCheckoutBranch(repo *git.Repository, name string) error {
	workTree, err := repo.Worktree()
	if err != nil {
		return err
	}
	return workTree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
}

// testTag creates a lightweight tag pointing at commit.
func testTag(repo *git.Repository, name string, commit plumbing.Hash) error {
	_, err := repo.CreateTag(name, commit, nil)
	return err
}

// testAnnotatedTag creates an annotated tag pointing at commit.
func testAnnotatedTag(repo *git.Repository, name string, commit plumbing.Hash) error {
	_, err := repo.CreateTag(name, commit, &git.CreateTagOptions{
		Message: "release " + name,
		Tagger:  testSignature,
	})
	return err
}

// testMonorepo builds a repository with two projects, tags v1.0.0 on the
// initial commit and returns the repo plus the tagged commit. Layout:
//
//	services/api/  depends on  libs/core/
//	libs/core/
func testMonorepo() (*git.Repository, plumbing.Hash, error) {
	repo, err := testRepoCreate()
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}

	tagged, err := testCommitFiles(repo, "initial layout", map[string]string{
		"services/api/main.go":    "package main\n",
		"services/api/handler.go": "package main\n",
		"services/api/go.mod":     "module api\n",
		"libs/core/core.go":       "package core\n",
		"libs/core/go.mod":        "module core\n",
		"README.md":               "# monorepo\n",
		"docs/architecture.md":    "notes\n",
	})
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}

	if err := testTag(repo, "v1.0.0", tagged); err != nil {
		return nil, plumbing.ZeroHash, err
	}

	return repo, tagged, nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
