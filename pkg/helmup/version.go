package helmup

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrVersionFormat reports a version string that does not parse as a
// semantic version. It is never downgraded to a false result: an invalid
// version is a configuration defect, not a failed check.
var ErrVersionFormat = errors.New("invalid semantic version")

func parseVersion(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrVersionFormat, s, err)
	}
	return v, nil
}

// MeetsMinimum reports whether current satisfies min <= current.
func MeetsMinimum(current, min string) (bool, error) {
	cur, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	lo, err := parseVersion(min)
	if err != nil {
		return false, err
	}
	return !cur.LessThan(lo), nil
}

// IsWithin reports whether current satisfies min <= current <= max. Both
// bounds are inclusive.
func IsWithin(current, min, max string) (bool, error) {
	cur, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	lo, err := parseVersion(min)
	if err != nil {
		return false, err
	}
	hi, err := parseVersion(max)
	if err != nil {
		return false, err
	}
	return !cur.LessThan(lo) && !cur.GreaterThan(hi), nil
}
