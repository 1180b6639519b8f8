package broad

import (
	"strconv"
	"strings"
)

// Version is a loosely parsed tool version. Release strings in the wild mix
// numeric and textual segments ("3.8-1-0-gf15c1c3ef", "4.1.4.1"), so
// segments are compared numerically when both sides are numbers, lexically
// when both are text, and numbers sort before text otherwise. A version
// that is a prefix of a longer one sorts first.
type Version struct {
	raw  string
	segs []segment
}

type segment struct {
	num     int
	str     string
	numeric bool
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParseVersion parses raw into a comparable Version. It never fails; an
// empty or unrecognizable string yields a zero Version.
func ParseVersion(raw string) Version {
	v := Version{raw: strings.TrimSpace(raw)}
	s := v.raw
	if len(s) > 1 && s[0] == 'v' && isDigit(s[1]) {
		s = s[1:]
	}
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			n, _ := strconv.Atoi(s[i:j])
			v.segs = append(v.segs, segment{num: n, numeric: true})
			i = j
		case isAlpha(c):
			j := i
			for j < len(s) && isAlpha(s[j]) {
				j++
			}
			v.segs = append(v.segs, segment{str: s[i:j]})
			i = j
		default:
			i++
		}
	}
	return v
}

func (v Version) String() string { return v.raw }

// IsZero reports whether no version information was parsed.
func (v Version) IsZero() bool { return len(v.segs) == 0 }

// Major returns the leading numeric component, or 0 when the version does
// not start with a number.
func (v Version) Major() int {
	if len(v.segs) > 0 && v.segs[0].numeric {
		return v.segs[0].num
	}
	return 0
}

// Compare returns -1, 0 or 1 as v sorts before, equal to or after o.
func (v Version) Compare(o Version) int {
	for i := 0; i < len(v.segs) && i < len(o.segs); i++ {
		a, b := v.segs[i], o.segs[i]
		switch {
		case a.numeric && b.numeric:
			if a.num != b.num {
				if a.num < b.num {
					return -1
				}
				return 1
			}
		case !a.numeric && !b.numeric:
			if a.str != b.str {
				if a.str < b.str {
					return -1
				}
				return 1
			}
		case a.numeric:
			return -1
		default:
			return 1
		}
	}
	switch {
	case len(v.segs) < len(o.segs):
		return -1
	case len(v.segs) > len(o.segs):
		return 1
	}
	return 0
}

// AtLeast reports whether v sorts at or after o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }
