package monover

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// versionPattern is the strict grammar accepted by ParseVersion: two or
// three dot-separated numeric components, an optional pre-release after the
// first "-", an optional build suffix after "+". No leading "v" and no
// fourth numeric component.
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

// Version is an immutable semantic version. A missing patch component
// defaults to 0 at construction time, never left unset. Two Versions with
// the same fields are equal regardless of how they were produced.
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   string
	Build string
}

// Zero returns version 0.0.0, the base for repositories without a usable tag.
func Zero() Version { return Version{} }

// ParseVersion parses text against the strict
// MAJOR.MINOR[.PATCH][-PRE][+BUILD] grammar. Malformed input, including an
// empty string or a leading "v", yields ok == false rather than an error:
// callers try-parse many candidate tags and decide themselves whether
// absence matters.
func ParseVersion(text string) (Version, bool) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, false
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, false
	}

	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, false
	}

	patch := 0
	if m[3] != "" {
		if patch, err = strconv.Atoi(m[3]); err != nil {
			return Version{}, false
		}
	}

	return Version{
		Major: major,
		Minor: minor,
		Patch: patch,
		Pre:   m[4],
		Build: m[5],
	}, true
}

// String renders the version as MAJOR.MINOR.PATCH[-PRE][+BUILD].
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare orders two versions by semantic-version precedence: -1 if v is
// lower than o, 0 if equal, +1 if higher. Build metadata is ignored, per
// the semver specification.
func (v Version) Compare(o Version) int {
	return v.blang().Compare(o.blang())
}

// blang converts to a blang/semver value for precedence comparison. The
// pre-release identifiers are split here rather than parsed by blang, whose
// grammar differs from ours.
func (v Version) blang() semver.Version {
	sv := semver.Version{
		Major: uint64(v.Major),
		Minor: uint64(v.Minor),
		Patch: uint64(v.Patch),
	}
	if v.Pre == "" {
		return sv
	}
	for _, id := range strings.Split(v.Pre, ".") {
		if n, err := strconv.ParseUint(id, 10, 64); err == nil {
			sv.Pre = append(sv.Pre, semver.PRVersion{VersionNum: n, IsNum: true})
		} else {
			sv.Pre = append(sv.Pre, semver.PRVersion{VersionStr: id})
		}
	}
	return sv
}

// FallbackVersion is reported when no repository is available at all, so CI
// pipelines still obtain a parseable version.
func FallbackVersion() Version {
	return Version{Pre: "dev.0"}
}
