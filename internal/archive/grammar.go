package archive

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidFormat is returned when a filename does not match its archive's
// naming grammar.
var ErrInvalidFormat = errors.New("invalid filename format")

// Both grammars are anchored at the start only. Anything after the required
// fields is accepted as long as a word boundary follows them, so
// "..._c20230010009500.nc" matches while a fifteenth timestamp digit does not.
var (
	nexradPattern = regexp.MustCompile(
		`^(?P<station>[A-Z]{3}[A-Z0-9])` +
			`(?P<year>[0-9]{4})(?P<month>[0-9]{2})(?P<day>[0-9]{2})` +
			`_(?P<time>[0-9]{6})` +
			`(?P<suffix>_?[A-Z]?[0-9]{0,2}_?[A-Z]{0,3})\b`)

	goesPattern = regexp.MustCompile(
		`^OR_(?P<instrument>[A-Z]{3})` +
			`-(?P<level>[A-Za-z0-9]{2,3})` +
			`-(?P<mode>[A-Za-z0-9]{4,6})` +
			`-(?P<band>[A-Z0-9]{2,5})` +
			`_G(?P<satellite>18)` +
			`_s(?P<start>[0-9]{14})` +
			`_e(?P<end>[0-9]{14})` +
			`_c(?P<created>[0-9]{14})\b`)
)

// Valid reports whether name matches the naming grammar of the given archive.
// It never fails; unknown kinds are simply not valid.
func Valid(kind Kind, name string) bool {
	switch kind {
	case NEXRAD:
		return nexradPattern.MatchString(name)
	case GOES:
		return goesPattern.MatchString(name)
	default:
		return false
	}
}

// submatches returns the named groups of re matched against name, or false
// when name does not match.
func submatches(re *regexp.Regexp, name string) (map[string]string, bool) {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string, len(m))
	for i, group := range re.SubexpNames() {
		if group != "" {
			groups[group] = m[i]
		}
	}
	return groups, true
}

func invalidFormat(kind Kind, name string) error {
	return fmt.Errorf("%w for %s: %q", ErrInvalidFormat, kind.DisplayName(), name)
}
