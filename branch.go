package monover

import (
	"regexp"
	"strings"
)

// bareVersionPattern matches branches named directly after a version, such
// as "v3.1.4" or "2.5". They classify as Release even without a slash.
var bareVersionPattern = regexp.MustCompile(`^[vV]?\d+\.\d+(\.\d+)?$`)

var (
	defaultMainBranches = []string{"main", "master"}
	defaultDevBranches  = []string{"dev", "develop", "development"}
)

// ClassifyBranch maps a branch name to its role. Matching is
// case-insensitive and total: the rules are evaluated in order, first match
// wins, and anything unrecognized is a feature branch.
func ClassifyBranch(name string, cfg Config) BranchType {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, main := range cfg.mainBranches() {
		if lower == strings.ToLower(main) {
			return BranchMain
		}
	}

	for _, dev := range cfg.devBranches() {
		if lower == strings.ToLower(dev) {
			return BranchDev
		}
	}

	if strings.HasPrefix(lower, "release/") || strings.HasPrefix(lower, "release-") {
		return BranchRelease
	}
	if bareVersionPattern.MatchString(lower) {
		return BranchRelease
	}

	return BranchFeature
}

// ExtractReleaseVersion pulls the explicit version out of a release branch
// name, e.g. "release/1.2" or "release-v2.0.1" under tag prefix "v". It is
// only meaningful for branches ClassifyBranch calls Release; for anything
// else it harmlessly returns ok == false.
func ExtractReleaseVersion(branch, tagPrefix string) (Version, bool) {
	name := strings.TrimSpace(branch)
	lower := strings.ToLower(name)

	switch {
	case strings.HasPrefix(lower, "release/"):
		name = name[len("release/"):]
	case strings.HasPrefix(lower, "release-"):
		name = name[len("release-"):]
	}

	return ParseVersion(stripVersionPrefix(name, tagPrefix))
}

// stripVersionPrefix removes the configured tag prefix from the front of
// candidate, case-insensitively. A lone leading v/V is stripped even when
// the prefix is something else, so "release/v1.2.3" still resolves under
// any prefix.
func stripVersionPrefix(candidate, tagPrefix string) string {
	if tagPrefix != "" && len(candidate) >= len(tagPrefix) &&
		strings.EqualFold(candidate[:len(tagPrefix)], tagPrefix) {
		return candidate[len(tagPrefix):]
	}
	if !strings.EqualFold(tagPrefix, "v") &&
		(strings.HasPrefix(candidate, "v") || strings.HasPrefix(candidate, "V")) {
		return candidate[1:]
	}
	return candidate
}
