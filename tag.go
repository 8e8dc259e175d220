package monover

import (
	"path"
	"strings"
)

// IsValidTag reports whether tag encodes an in-scope semantic version under
// the given prefix. Project-scoped tags like "MyProject/v1.2.3" are valid
// wherever the bare version part parses; correlating the project segment
// with a particular project is the caller's responsibility.
func IsValidTag(tag, tagPrefix string) bool {
	_, ok := TagVersion(tag, tagPrefix)
	return ok
}

// TagVersion extracts the semantic version encoded by a tag name, or
// ok == false when the tag is out of scope or malformed.
func TagVersion(tag, tagPrefix string) (Version, bool) {
	if tag == "" {
		return Version{}, false
	}

	if tagPrefix != "" &&
		!strings.HasPrefix(tag, tagPrefix) &&
		!strings.Contains(tag, "/"+tagPrefix) {
		return Version{}, false
	}

	// The version part of a scoped tag sits after the last "/".
	_, candidate := path.Split(tag)
	candidate = strings.TrimPrefix(candidate, tagPrefix)

	return ParseVersion(candidate)
}

// TagScope returns the project qualifier of a scoped tag, or "" for bare
// tags: "MyProject/v1.2.3" has scope "MyProject".
func TagScope(tag string) string {
	dir, _ := path.Split(tag)
	return strings.TrimSuffix(dir, "/")
}
