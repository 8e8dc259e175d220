package monover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var nopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Calculator resolves one semantic version per project from a single
// repository snapshot. The tag set and first-parent ancestry are fetched
// once and shared across projects within a run; beyond that memoization it
// holds no mutable state, so per-project resolutions are independent.
type Calculator struct {
	view   RepoView
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	ancestry []string
	tags     []TagRef
	fetched  struct {
		ancestry bool
		tags     bool
	}
}

// NewCalculator creates a calculator over the given repository view.
func NewCalculator(view RepoView, cfg Config) *Calculator {
	return &Calculator{view: view, cfg: cfg, logger: nopLogger}
}

// WithLogger directs diagnostic output to logger. Logging never affects
// resolved versions.
func (c *Calculator) WithLogger(logger *slog.Logger) *Calculator {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Resolve computes the version for a single project:
//
//  1. A release branch with an embedded version is authoritative.
//  2. Otherwise the base version is the most recent valid tag reachable on
//     the first-parent ancestry, or 0.0.0 with no reference commit.
//  3. An unchanged project keeps its base version verbatim.
//  4. A changed project gets a patch bump on main, or a pre-release suffix
//     carrying the branch role and commit height elsewhere.
func (c *Calculator) Resolve(project Project) (Version, error) {
	branch, err := c.view.BranchName()
	if err != nil {
		return Version{}, fmt.Errorf("resolving branch name: %w", err)
	}

	branchType := ClassifyBranch(branch, c.cfg)
	c.logger.Debug("classified branch",
		"branch", branch, "type", branchType.String(), "project", project.Name)

	// Explicit release versions always win over computed ones.
	if branchType == BranchRelease {
		if version, ok := ExtractReleaseVersion(branch, c.cfg.tagPrefix()); ok {
			return version, nil
		}
		c.logger.Debug("release branch without embedded version", "branch", branch)
	}

	base, referenceCommit, err := c.baseVersion(project)
	if err != nil {
		return Version{}, err
	}

	changed, err := HasChanged(c.view, referenceCommit, project.Path, project.Dependencies, c.logger)
	if err != nil {
		return Version{}, fmt.Errorf("detecting changes for %s: %w", project.Name, err)
	}
	if !changed {
		// Re-resolving an unchanged project is idempotent.
		return base, nil
	}

	height, err := c.height(referenceCommit)
	if err != nil {
		return Version{}, fmt.Errorf("counting commit height: %w", err)
	}

	return nextVersion(base, branchType, branch, height), nil
}

// ResolveAll resolves every project in order, stopping between projects
// when ctx is cancelled. Per-project failures are recorded on the
// corresponding Resolution; the remaining projects still resolve.
func (c *Calculator) ResolveAll(ctx context.Context, projects []Project) ([]Resolution, error) {
	results := make([]Resolution, 0, len(projects))
	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		version, err := c.Resolve(project)
		results = append(results, Resolution{Project: project.Name, Version: version, Err: err})
	}
	return results, nil
}

// baseVersion walks the ancestry tip-down and returns the version of the
// first commit carrying a valid tag for this project, together with that
// commit. Repositories without a usable tag start from 0.0.0 and an empty
// reference commit.
func (c *Calculator) baseVersion(project Project) (Version, string, error) {
	tags, err := c.tagSet()
	if err != nil {
		return Version{}, "", err
	}

	byCommit := make(map[string][]TagRef, len(tags))
	for _, tag := range tags {
		byCommit[tag.Commit] = append(byCommit[tag.Commit], tag)
	}

	chain, err := c.chain()
	if err != nil {
		return Version{}, "", err
	}

	for _, commit := range chain {
		best, ok := bestTagVersion(byCommit[commit], project, c.cfg.tagPrefix())
		if !ok {
			continue
		}
		c.logger.Debug("base version from tag",
			"project", project.Name, "commit", commit, "version", best.String())
		return best, commit, nil
	}

	return Zero(), "", nil
}

// bestTagVersion picks the highest valid version among the tags on one
// commit. Project-scoped tags only count for the matching project;
// malformed tags are skipped, never fatal.
func bestTagVersion(tags []TagRef, project Project, tagPrefix string) (Version, bool) {
	var best Version
	found := false
	for _, tag := range tags {
		if scope := TagScope(tag.Name); scope != "" && !strings.EqualFold(scope, project.Name) {
			continue
		}
		version, ok := TagVersion(tag.Name, tagPrefix)
		if !ok {
			continue
		}
		if !found || version.Compare(best) > 0 {
			best, found = version, true
		}
	}
	return best, found
}

// height counts first-parent commits between the tip and referenceCommit,
// exclusive. An empty reference, or one off the first-parent line, counts
// the whole chain.
func (c *Calculator) height(referenceCommit string) (int, error) {
	chain, err := c.chain()
	if err != nil {
		return 0, err
	}
	if referenceCommit == "" {
		return len(chain), nil
	}
	for i, commit := range chain {
		if commit == referenceCommit {
			return i, nil
		}
	}
	return len(chain), nil
}

// nextVersion applies the per-role version policy to a changed project.
func nextVersion(base Version, branchType BranchType, branch string, height int) Version {
	switch branchType {
	case BranchMain:
		return Version{Major: base.Major, Minor: base.Minor, Patch: base.Patch + 1}
	case BranchDev:
		return Version{
			Major: base.Major, Minor: base.Minor, Patch: base.Patch,
			Pre: fmt.Sprintf("dev.%d", height),
		}
	default:
		return Version{
			Major: base.Major, Minor: base.Minor, Patch: base.Patch,
			Pre: fmt.Sprintf("%s.%d", branchSlug(branch), height),
		}
	}
}

// branchSlug reduces a branch name to the characters allowed in a
// pre-release identifier: lowercase alphanumerics separated by single
// hyphens. "feature/New_Thing" becomes "feature-new-thing".
func branchSlug(branch string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(branch) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	if b.Len() == 0 {
		return "feature"
	}
	return b.String()
}

func (c *Calculator) chain() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetched.ancestry {
		chain, err := c.view.Ancestry()
		if err != nil {
			return nil, fmt.Errorf("walking ancestry: %w", err)
		}
		c.ancestry = chain
		c.fetched.ancestry = true
	}
	return c.ancestry, nil
}

func (c *Calculator) tagSet() ([]TagRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetched.tags {
		tags, err := c.view.Tags()
		if err != nil {
			return nil, fmt.Errorf("listing tags: %w", err)
		}
		c.tags = tags
		c.fetched.tags = true
	}
	return c.tags, nil
}
