package archive

import (
	"net/url"
	"strings"
)

// Location fully addresses one object inside an archive bucket.
type Location struct {
	Kind     Kind
	Prefix   string // hierarchical path ending in "/"
	Filename string
}

// Key returns the object key inside the archive bucket.
func (l Location) Key() string {
	return l.Prefix + l.Filename
}

// URL joins base with the object key. The filename is path-escaped; names
// that pass either grammar contain no characters that need escaping unless
// they carry unusual trailing text.
func (l Location) URL(base string) string {
	return strings.TrimSuffix(base, "/") + "/" + l.Prefix + url.PathEscape(l.Filename)
}

// NEXRADPrefix builds the NEXRAD path prefix year/month/day/station/.
// Empty trailing components are omitted so the result can be used to list
// a partially selected hierarchy.
func NEXRADPrefix(year, month, day, station string) string {
	return joinPrefix(year, month, day, station)
}

// GOESPrefix builds the GOES path prefix product/year/day-of-year/hour/.
// Empty trailing components are omitted.
func GOESPrefix(product, year, dayOfYear, hour string) string {
	return joinPrefix(product, year, dayOfYear, hour)
}

func joinPrefix(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			break
		}
		b.WriteString(p)
		b.WriteByte('/')
	}
	return b.String()
}
