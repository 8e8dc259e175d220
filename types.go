// Package monover computes deterministic semantic versions for the projects
// of a monorepo, driven entirely by git metadata: the current branch name,
// reachable tags and commit history. It is read-only with respect to
// repository state and produces the same version for the same history.
package monover

// BranchType is the role of a branch, used to select the version policy
// applied to a changed project.
type BranchType int

const (
	// BranchFeature is the catch-all role for anything unrecognized,
	// including feature/*, bugfix/* and personal branches.
	BranchFeature BranchType = iota

	// BranchMain is the primary integration branch (main, master).
	BranchMain

	// BranchDev is the shared development branch (dev, develop).
	BranchDev

	// BranchRelease is a branch that encodes an explicit release version,
	// either via a release/ prefix or by being named after a version.
	BranchRelease
)

func (b BranchType) String() string {
	switch b {
	case BranchMain:
		return "main"
	case BranchDev:
		return "dev"
	case BranchRelease:
		return "release"
	default:
		return "feature"
	}
}

// TagRef pairs a tag name with the hex hash of the commit it points at.
// Annotated tags are resolved to their target commit by the accessor.
type TagRef struct {
	Name   string
	Commit string
}

// RepoView is the read-only window into repository history consumed by the
// resolution engine. Implementations must present a consistent snapshot for
// the duration of one resolution run and must be safe for concurrent
// queries, since per-project resolutions may run in parallel.
type RepoView interface {
	// BranchName returns the name of the currently checked out branch.
	BranchName() (string, error)

	// Tags lists every tag with its target commit.
	Tags() ([]TagRef, error)

	// ChangedPaths returns the paths touched between the given commit and
	// the repository tip.
	ChangedPaths(from string) ([]string, error)

	// Ancestry returns the first-parent chain of commit hashes from the
	// tip down to the root commit, tip first.
	Ancestry() ([]string, error)
}

// Project describes one independently versioned project inside the
// repository. Paths are repository-relative and slash separated.
type Project struct {
	// Name identifies the project in output and correlates project-scoped
	// tags of the form "Name/v1.2.3".
	Name string `yaml:"name"`

	// Path is the directory that contains the project's sources.
	Path string `yaml:"path"`

	// Dependencies are the paths of other projects this one depends on.
	// A change under any of them counts as a change to this project.
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// Config controls version resolution for a repository.
type Config struct {
	// TagPrefix is stripped before parsing a tag or branch name as a
	// semantic version. Defaults to "v".
	TagPrefix string `yaml:"tag-prefix"`

	// MainBranches and DevBranches override the branch names classified
	// as main and dev. Defaults: {main, master} and
	// {dev, develop, development}.
	MainBranches []string `yaml:"main-branches"`
	DevBranches  []string `yaml:"dev-branches"`

	// Debug enables diagnostic logging. It never changes resolved versions.
	Debug bool `yaml:"debug"`

	// Projects is the set of independently versioned projects.
	Projects []Project `yaml:"projects"`
}

// Resolution is the outcome of resolving one project. A failed project
// never aborts its siblings in a multi-project run.
type Resolution struct {
	Project string
	Version Version
	Err     error
}
