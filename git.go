package monover

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OpenRepository opens the Git repository containing path.
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// GitView adapts a go-git repository to the RepoView contract. Every method
// is a read-only query; GitView never mutates the repository.
type GitView struct {
	repo *git.Repository
}

// NewGitView wraps an opened repository.
func NewGitView(repo *git.Repository) *GitView {
	return &GitView{repo: repo}
}

// BranchName returns the short name of the checked out branch. A detached
// HEAD resolves to the commit hash, which classifies as a feature branch.
func (v *GitView) BranchName() (string, error) {
	head, err := v.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

// Tags lists every tag with the commit it ultimately points at, resolving
// annotated tags through their tag object.
func (v *GitView) Tags() ([]TagRef, error) {
	iter, err := v.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		target := ref.Hash()
		obj, err := v.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			// Annotated tag
			target = obj.Target
		case plumbing.ErrObjectNotFound:
			// Lightweight tag
		default:
			return err
		}

		tags = append(tags, TagRef{Name: ref.Name().Short(), Commit: target.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolving tags: %w", err)
	}

	return tags, nil
}

// ChangedPaths diffs the trees of from and the repository tip, returning
// every path touched on either side of the diff.
func (v *GitView) ChangedPaths(from string) ([]string, error) {
	fromCommit, err := v.commit(plumbing.NewHash(from))
	if err != nil {
		return nil, err
	}

	head, err := v.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	tipCommit, err := v.commit(head.Hash())
	if err != nil {
		return nil, err
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree of %s: %w", from, err)
	}
	tipTree, err := tipCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tip tree: %w", err)
	}

	changes, err := object.DiffTree(fromTree, tipTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	seen := make(map[string]struct{}, len(changes))
	var paths []string
	for _, change := range changes {
		for _, name := range []string{change.From.Name, change.To.Name} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			paths = append(paths, name)
		}
	}

	return paths, nil
}

// Ancestry walks the first-parent chain from the tip to the root commit.
func (v *GitView) Ancestry() ([]string, error) {
	head, err := v.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	commit, err := v.commit(head.Hash())
	if err != nil {
		return nil, err
	}

	var chain []string
	for {
		chain = append(chain, commit.Hash.String())
		if commit.NumParents() == 0 {
			return chain, nil
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("walking first parent of %s: %w", chain[len(chain)-1], err)
		}
	}
}

func (v *GitView) commit(hash plumbing.Hash) (*object.Commit, error) {
	commit, err := v.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("getting commit %s: %w", hash, err)
	}
	return commit, nil
}
