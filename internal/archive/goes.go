package archive

import (
	"fmt"
	"strconv"
	"time"
)

// GOESFilename holds the fields embedded in a GOES-18 product filename such as
// OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc.
type GOESFilename struct {
	Raw        string
	Instrument string // e.g. "ABI"
	Level      string // e.g. "L1b"
	ScanMode   string // e.g. "RadC", "RadM1"
	Band       string // e.g. "M6C02"
	Satellite  string // always "18"
	Start      Timestamp
	End        Timestamp
	Created    Timestamp
}

// Timestamp is a GOES scan timestamp: year, day-of-year, hour, minute, second
// and tenths of a second, kept as the digit strings found in the filename.
type Timestamp struct {
	Year      string
	DayOfYear string
	Hour      string
	Minute    string
	Second    string
	Tenth     string
}

// parseTimestamp splits the 14 digits following the s/e/c marker.
// The grammar guarantees the length.
func parseTimestamp(digits string) Timestamp {
	return Timestamp{
		Year:      digits[0:4],
		DayOfYear: digits[4:7],
		Hour:      digits[7:9],
		Minute:    digits[9:11],
		Second:    digits[11:13],
		Tenth:     digits[13:14],
	}
}

// Time converts the timestamp to UTC, rejecting out-of-range fields.
func (ts Timestamp) Time() (time.Time, error) {
	year, _ := strconv.Atoi(ts.Year)
	doy, _ := strconv.Atoi(ts.DayOfYear)
	hour, _ := strconv.Atoi(ts.Hour)
	minute, _ := strconv.Atoi(ts.Minute)
	sec, _ := strconv.Atoi(ts.Second)
	tenth, _ := strconv.Atoi(ts.Tenth)

	daysInYear := 365
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		daysInYear = 366
	}
	if doy < 1 || doy > daysInYear {
		return time.Time{}, fmt.Errorf("day-of-year %s out of range for %s", ts.DayOfYear, ts.Year)
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("time of day %s:%s:%s out of range", ts.Hour, ts.Minute, ts.Second)
	}

	t := time.Date(year, time.January, 1, hour, minute, sec, tenth*int(100*time.Millisecond), time.UTC)
	return t.AddDate(0, 0, doy-1), nil
}

// ParseGOES decomposes name into its fields. It returns ErrInvalidFormat when
// name does not match the GOES-18 grammar.
func ParseGOES(name string) (GOESFilename, error) {
	g, ok := submatches(goesPattern, name)
	if !ok {
		return GOESFilename{}, invalidFormat(GOES, name)
	}
	return GOESFilename{
		Raw:        name,
		Instrument: g["instrument"],
		Level:      g["level"],
		ScanMode:   g["mode"],
		Band:       g["band"],
		Satellite:  g["satellite"],
		Start:      parseTimestamp(g["start"]),
		End:        parseTimestamp(g["end"]),
		Created:    parseTimestamp(g["created"]),
	}, nil
}

// ProductFamily returns the bucket-level product directory, e.g.
// "ABI-L1b-RadC". A scan mode that is not purely alphabetic carries a
// trailing repeat digit ("RadM1") which is not part of the directory name.
func (f GOESFilename) ProductFamily() string {
	mode := f.ScanMode
	if !isAlpha(mode) {
		mode = mode[:len(mode)-1]
	}
	return f.Instrument + "-" + f.Level + "-" + mode
}

// Kind implements Filename.
func (f GOESFilename) Kind() Kind { return GOES }

// Location implements Filename: product/year/day-of-year/hour/<name>, taken
// from the scan start timestamp only.
func (f GOESFilename) Location() Location {
	return Location{
		Kind:     GOES,
		Prefix:   GOESPrefix(f.ProductFamily(), f.Start.Year, f.Start.DayOfYear, f.Start.Hour),
		Filename: f.Raw,
	}
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
