package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	goesRadC   = "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc"
	goesRadM1  = "OR_ABI-L1b-RadM1-M6C13_G18_s20231451237245_e20231451237302_c20231451237349.nc"
	nexradKTLX = "KTLX20230615_123456"
)

func TestValid_NEXRAD(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", nexradKTLX, true},
		{"version suffix", "KTLX20230615_123456_V06", true},
		{"metadata suffix", "KTLX20230615_123456_MDM", true},
		{"numeric fourth station char", "KMX120230615_123456", true},
		{"gzip extension", "KTLX20230615_123456.gz", true},
		{"lower case station", "ktlx20230615_123456", false},
		{"digit first", "1TLX20230615_123456", false},
		{"short date", "KTLX2023061_123456", false},
		{"missing time separator", "KTLX20230615123456", false},
		{"short time", "KTLX20230615_12345", false},
		{"not anchored", "xKTLX20230615_123456", false},
		{"leading whitespace", " KTLX20230615_123456", false},
		{"goes name", goesRadC, false},
		{"junk", "not_a_real_filename", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(NEXRAD, tt.input))
		})
	}
}

func TestValid_GOES(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"conus radiance", goesRadC, true},
		{"mesoscale with repeat digit", goesRadM1, true},
		{"no extension", "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500", true},
		{"level 2 product", "OR_ABI-L2-CMIPF-M6C13_G18_s20230010000000_e20230010009000_c20230010009500.nc", true},
		{"goes-17", "OR_ABI-L1b-RadC-M6C02_G17_s20230010000000_e20230010009000_c20230010009500.nc", false},
		{"lower case prefix", "or_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc", false},
		{"fifteen digit start", "OR_ABI-L1b-RadC-M6C02_G18_s202300100000001_e20230010009000_c20230010009500.nc", false},
		{"fifteen digit creation", "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c202300100095001.nc", false},
		{"missing end", "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_c20230010009500.nc", false},
		{"short scan mode", "OR_ABI-L1b-Rad-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc", false},
		{"nexrad name", nexradKTLX, false},
		{"junk", "not_a_real_filename", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(GOES, tt.input))
		})
	}
}

func TestValid_UnknownKind(t *testing.T) {
	assert.False(t, Valid(Kind(0), nexradKTLX))
	assert.False(t, Valid(Kind(42), goesRadC))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"nexrad", NEXRAD, false},
		{"NEXRAD", NEXRAD, false},
		{"goes", GOES, false},
		{"GOES-18", GOES, false},
		{" goes18 ", GOES, false},
		{"himawari", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "nexrad", NEXRAD.String())
	assert.Equal(t, "goes", GOES.String())
	assert.Equal(t, "GOES-18", GOES.DisplayName())
	assert.Equal(t, "unknown", Kind(9).String())
}
