package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the public archives the browser can resolve against.
type Kind int

const (
	// NEXRAD is the NEXRAD Level-2 radar archive.
	NEXRAD Kind = iota + 1
	// GOES is the GOES-18 satellite imagery archive.
	GOES
)

// ErrUnknownKind is returned when an archive name cannot be mapped to a Kind.
var ErrUnknownKind = errors.New("unknown archive kind")

// Kinds lists every supported archive in a stable order.
func Kinds() []Kind {
	return []Kind{NEXRAD, GOES}
}

// String returns the lower-case archive name used in URLs, metrics and config.
func (k Kind) String() string {
	switch k {
	case NEXRAD:
		return "nexrad"
	case GOES:
		return "goes"
	default:
		return "unknown"
	}
}

// DisplayName returns the human readable archive name.
func (k Kind) DisplayName() string {
	switch k {
	case NEXRAD:
		return "NEXRAD"
	case GOES:
		return "GOES-18"
	default:
		return "unknown"
	}
}

// ParseKind maps an archive name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nexrad":
		return NEXRAD, nil
	case "goes", "goes18", "goes-18":
		return GOES, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
