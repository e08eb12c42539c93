// Package versions compares semantic version strings.
package versions

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Matches reports whether version satisfies expr. expr may be an exact
// version ("1.2.0") or a range ("^1.2", "~1.2.3", "1.x", ">=1.0 <2.0").
// Unparseable input never matches.
func Matches(version, expr string) bool {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return false
	}
	c, err := semver.NewConstraint(strings.TrimSpace(expr))
	if err != nil {
		return false
	}
	return c.Check(v)
}

// Compare returns -1, 0 or 1 as a is older than, equal to or newer than b.
// It uses semantic versioning when both strings are valid semver and falls
// back to lexicographic comparison otherwise.
func Compare(a, b string) int {
	av, errA := semver.NewVersion(strings.TrimSpace(a))
	bv, errB := semver.NewVersion(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return av.Compare(bv)
}

// Compatible reports whether a toolchain at tool can consume a manifest
// declaring declared: either tool matches the declared expression or tool is
// not older than declared.
func Compatible(tool, declared string) bool {
	return Matches(tool, declared) || Compare(tool, declared) >= 0
}
