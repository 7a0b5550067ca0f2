package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Version is a parsed semantic version. It wraps github.com/Masterminds/semver/v3
// rather than hand-rolling tuple comparison, matching how the host's own
// dependency chain already pulls this library in for version handling.
type Version struct {
	Major, Minor, Patch int
	Pre                 string
}

// ParseVersion parses a semver string of the form major.minor.patch[-pre].
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	return Version{
		Major: int(sv.Major()),
		Minor: int(sv.Minor()),
		Patch: int(sv.Patch()),
		Pre:   sv.Prerelease(),
	}, nil
}

func (v Version) semver() *semver.Version {
	raw := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		raw += "-" + v.Pre
	}
	sv, _ := semver.NewVersion(raw)
	return sv
}

// String renders the version as major.minor.patch[-pre].
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Compare returns -1, 0, or 1 per v.Compare(other) semantics, with pre-release
// versions sorting lower than their base version.
func (v Version) Compare(other Version) int {
	return v.semver().Compare(other.semver())
}

// LessThan reports whether v sorts strictly before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// IsZero reports whether v is the unset zero value.
func (v Version) IsZero() bool { return v == Version{} }

func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*v = Version{}
		return nil
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
