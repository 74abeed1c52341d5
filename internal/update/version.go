package update

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// markerPattern is the full marker grammar. Anything else is malformed,
// including semver-isms like pre-release tags or a lowercase "v".
var markerPattern = regexp.MustCompile(`^V(\d+)\.(\d+)\.(\d+)$`)

// Version is a parsed version marker. The zero value (V0.0.0) sorts
// below every released version and stands in for an absent marker.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseVersion parses a `V<major>.<minor>.<patch>` marker string.
// Surrounding whitespace is trimmed first; any other deviation from the
// grammar yields a *MarkerError.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)

	m := markerPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, &MarkerError{Raw: raw}
	}

	var parts [3]uint64
	for i, digits := range m[1:] {
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			// all-digit but does not fit in uint64
			return Version{}, &MarkerError{Raw: raw}
		}
		parts[i] = n
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// String renders the marker form of the version.
func (v Version) String() string {
	return fmt.Sprintf("V%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is the zero version V0.0.0.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare orders two versions lexicographically by (major, minor, patch).
// Returns -1 if a < b, 0 if equal, +1 if a > b. Components are compared
// as integers, so there is no upper bound on minor or patch.
func Compare(a, b Version) int {
	if c := cmpUint64(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmpUint64(a.Minor, b.Minor); c != 0 {
		return c
	}
	return cmpUint64(a.Patch, b.Patch)
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
