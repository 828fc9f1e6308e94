package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GOESMetadata is one product/year/day/hour directory present in the GOES-18
// bucket
type GOESMetadata struct {
	Product string `json:"product" db:"product"`
	Year    string `json:"year" db:"year"`
	Day     string `json:"day" db:"day"`
	Hour    string `json:"hour" db:"hour"`
}

// NEXRADMetadata is one year/month/day/station directory present in the
// NEXRAD Level-2 bucket
type NEXRADMetadata struct {
	Year          string `json:"year" db:"year"`
	Month         string `json:"month" db:"month"`
	Day           string `json:"day" db:"day"`
	GroundStation string `json:"ground_station" db:"ground_station"`
}

// NEXRADSite is a radar site location used for map data
type NEXRADSite struct {
	GroundStation string  `json:"ground_station" db:"ground_station"`
	State         string  `json:"state" db:"state"`
	County        string  `json:"county" db:"county"`
	Latitude      float64 `json:"latitude" db:"latitude"`
	Longitude     float64 `json:"longitude" db:"longitude"`
	Elevation     int     `json:"elevation" db:"elevation"`
}

var (
	stateColumn      = regexp.MustCompile(`^[A-Z][A-Z]\b`)
	coordinateColumn = regexp.MustCompile(`^-?[0-9]\d(\.\d+)?$`)
	columnSeparator  = regexp.MustCompile(`\s{2,}`)
)

// IsUSNEXRADLine reports whether a line of the station list describes a
// NEXRAD site in the United States
func IsUSNEXRADLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[len(fields)-1], "NEXRAD") && strings.Contains(line, "UNITED STATES")
}

// ParseSiteLine extracts a site from one fixed-width line of the NCEI
// station list. Columns are separated by runs of two or more spaces.
func ParseSiteLine(line string) (*NEXRADSite, error) {
	line = strings.TrimSpace(line)

	var columns []string
	for _, c := range columnSeparator.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		return nil, &ValidationError{Field: "line", Value: line, Message: "empty station line"}
	}

	ids := strings.Fields(columns[0])
	if len(ids) < 2 {
		return nil, &ValidationError{Field: "ground_station", Value: columns[0], Message: "missing station identifier"}
	}
	site := &NEXRADSite{GroundStation: ids[1]}

	// State and county share a column ("SD BROWN"); search after the country
	// column so a two-letter word in the site name is not taken for a state.
	start := 1
	for i, c := range columns {
		if strings.Contains(c, "UNITED STATES") {
			start = i + 1
			break
		}
	}
	for i := start; i < len(columns); i++ {
		c := columns[i]
		if !stateColumn.MatchString(c) {
			continue
		}
		site.State = c[:2]
		site.County = strings.TrimSpace(c[2:])
		if site.County == "" && i+1 < len(columns) && !coordinateColumn.MatchString(strings.Fields(columns[i+1])[0]) {
			site.County = columns[i+1]
		}
		break
	}
	if site.State == "" {
		return nil, &ValidationError{Field: "state", Value: line, Message: "no state column found"}
	}

	tokens := strings.Fields(line)
	for i, tok := range tokens {
		if !coordinateColumn.MatchString(tok) {
			continue
		}
		if i+2 >= len(tokens) {
			return nil, &ValidationError{Field: "coordinates", Value: line, Message: "truncated coordinate columns"}
		}
		lat, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &ValidationError{Field: "latitude", Value: tok, Message: fmt.Sprintf("invalid latitude: %v", err)}
		}
		lon, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return nil, &ValidationError{Field: "longitude", Value: tokens[i+1], Message: fmt.Sprintf("invalid longitude: %v", err)}
		}
		elev, err := strconv.Atoi(tokens[i+2])
		if err != nil {
			return nil, &ValidationError{Field: "elevation", Value: tokens[i+2], Message: fmt.Sprintf("invalid elevation: %v", err)}
		}
		site.Latitude, site.Longitude, site.Elevation = lat, lon, elev
		return site, nil
	}

	return nil, &ValidationError{Field: "coordinates", Value: line, Message: "no coordinate columns found"}
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
