package monover

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// HasChanged reports whether the project at projectPath, or anything under
// its declared dependency paths, was touched between referenceCommit and
// the repository tip. An empty referenceCommit means there is no prior
// tagged version, in which case the project is unconditionally changed.
func HasChanged(view RepoView, referenceCommit, projectPath string, dependencyPaths []string, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = nopLogger
	}

	if referenceCommit == "" {
		logger.Debug("no reference commit, project counts as changed", "project", projectPath)
		return true, nil
	}

	changed, err := view.ChangedPaths(referenceCommit)
	if err != nil {
		return false, fmt.Errorf("diffing against %s: %w", referenceCommit, err)
	}

	roots := make([]string, 0, len(dependencyPaths)+1)
	roots = append(roots, projectPath)
	roots = append(roots, dependencyPaths...)

	for _, p := range changed {
		for _, root := range roots {
			if pathWithin(p, root) {
				logger.Debug("change detected",
					"project", projectPath, "path", p, "root", root)
				return true, nil
			}
		}
	}

	return false, nil
}

// pathWithin reports whether p is root itself or lives underneath it.
// Containment is per path segment: "src/app" does not contain
// "src/appendix/notes.md".
func pathWithin(p, root string) bool {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	root = path.Clean(strings.TrimPrefix(root, "./"))
	if root == "." {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
