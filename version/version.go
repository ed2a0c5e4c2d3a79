// Package version reports the build version of cspgen.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// set with -ldflags "-X github.com/yusing/cspolicy/version.version=v1.2.3"
var (
	version        = "unset"
	currentVersion Version
)

func Get() Version {
	return currentVersion
}

// Raw returns the version string the binary was built with.
func Raw() string {
	return version
}

func init() {
	currentVersion = Parse(version)
}

type Version struct{ Major, Minor, Patch int }

func New(major, minor, patch int) Version {
	return Version{major, minor, patch}
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) IsZero() bool {
	return v == Version{}
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	*v = Parse(string(text))
	return nil
}

func (v Version) IsNewerThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch > other.Patch
}

var versionRegex = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)(\-[\w.]+)?$`)

// Parse parses a vMAJOR.MINOR.PATCH string with an optional pre-release
// suffix. Anything else, like a branch name, yields the zero Version.
func Parse(v string) (ver Version) {
	if !versionRegex.MatchString(v) {
		return ver
	}

	v, _, _ = strings.Cut(v, "-")
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return ver
		}
		nums[i] = n
	}
	return New(nums[0], nums[1], nums[2])
}
