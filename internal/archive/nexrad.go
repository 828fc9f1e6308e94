package archive

import (
	"fmt"
	"time"
)

// NEXRADFilename holds the fields embedded in a NEXRAD Level-2 filename such
// as KTLX20230615_123456_V06.
type NEXRADFilename struct {
	Raw     string
	Station string
	Year    string
	Month   string
	Day     string
	Time    string // HHMMSS
	Suffix  string // optional compression/chunk marker, e.g. "_V06"
}

// ParseNEXRAD decomposes name into its fields. It returns ErrInvalidFormat
// when name does not match the NEXRAD grammar.
func ParseNEXRAD(name string) (NEXRADFilename, error) {
	g, ok := submatches(nexradPattern, name)
	if !ok {
		return NEXRADFilename{}, invalidFormat(NEXRAD, name)
	}
	return NEXRADFilename{
		Raw:     name,
		Station: g["station"],
		Year:    g["year"],
		Month:   g["month"],
		Day:     g["day"],
		Time:    g["time"],
		Suffix:  g["suffix"],
	}, nil
}

// Kind implements Filename.
func (f NEXRADFilename) Kind() Kind { return NEXRAD }

// Location implements Filename: year/month/day/station/<name>.
func (f NEXRADFilename) Location() Location {
	return Location{
		Kind:     NEXRAD,
		Prefix:   NEXRADPrefix(f.Year, f.Month, f.Day, f.Station),
		Filename: f.Raw,
	}
}

// ScanTime returns the volume scan start time in UTC. The grammar only checks
// digit counts, so calendar-invalid names produce an error here.
func (f NEXRADFilename) ScanTime() (time.Time, error) {
	t, err := time.Parse("20060102150405", f.Year+f.Month+f.Day+f.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("nexrad scan time of %q: %w", f.Raw, err)
	}
	return t.UTC(), nil
}
