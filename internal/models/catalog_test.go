package models

import (
	"errors"
	"testing"
)

const (
	lineKABR = "30001795 KABR 14929  ABERDEEN                       UNITED STATES        SD BROWN                          45.45583 -98.41306 1383   -6     NEXRAD"
	lineKARX = "30001799 KARX 94984  LA CROSSE                      UNITED STATES        WI LA CROSSE                      43.82278 -91.19111 1357   -6     NEXRAD"
	lineTJUA = "30001838 TJUA 11655  SAN JUAN                       PUERTO RICO          PR                                18.11556 -66.07806 2958   -4     NEXRAD"
	lineTDWR = "30001872 TADW 93739  ANDREWS AFB                    UNITED STATES        MD PRINCE GEORGES                 38.69500 -76.84500 346    -5     TDWR"
)

func TestIsUSNEXRADLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"us nexrad", lineKABR, true},
		{"outside us", lineTJUA, false},
		{"tdwr", lineTDWR, false},
		{"empty", "", false},
		{"lowercase type", lineKABR[:len(lineKABR)-6] + "nexrad", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUSNEXRADLine(tt.line); got != tt.want {
				t.Errorf("IsUSNEXRADLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSiteLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want NEXRADSite
	}{
		{
			name: "single word county",
			line: lineKABR,
			want: NEXRADSite{GroundStation: "KABR", State: "SD", County: "BROWN", Latitude: 45.45583, Longitude: -98.41306, Elevation: 1383},
		},
		{
			name: "two letter word in site name is not a state",
			line: lineKARX,
			want: NEXRADSite{GroundStation: "KARX", State: "WI", County: "LA CROSSE", Latitude: 43.82278, Longitude: -91.19111, Elevation: 1357},
		},
		{
			name: "state and county in separate columns",
			line: "30001795 KABR 14929  ABERDEEN  UNITED STATES  SD  BROWN  45.45583 -98.41306 1383  -6  NEXRAD",
			want: NEXRADSite{GroundStation: "KABR", State: "SD", County: "BROWN", Latitude: 45.45583, Longitude: -98.41306, Elevation: 1383},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSiteLine(tt.line)
			if err != nil {
				t.Fatalf("ParseSiteLine() unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("ParseSiteLine() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseSiteLine_Errors(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"empty", "   ", "line"},
		{"no station", "30001795  ABERDEEN  UNITED STATES  SD BROWN  45.4 -98.4 1383  NEXRAD", "ground_station"},
		{"no state", "30001795 KABR 14929  ABERDEEN  UNITED STATES  45.45583 -98.41306 1383  NEXRAD", "state"},
		{"no coordinates", "30001795 KABR 14929  ABERDEEN  UNITED STATES  SD BROWN  NEXRAD", "coordinates"},
		{"truncated", "30001795 KABR 14929  ABERDEEN  UNITED STATES  SD BROWN  45.45583 -98.41306", "coordinates"},
		{"bad elevation", "30001795 KABR 14929  ABERDEEN  UNITED STATES  SD BROWN  45.45583 -98.41306 high  NEXRAD", "elevation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSiteLine(tt.line)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ParseSiteLine() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
			if vErr.IsTransient() {
				t.Error("ValidationError should not be transient")
			}
		})
	}
}
