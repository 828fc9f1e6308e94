package archive

// Filename is a validated archive filename. Values are only produced by Parse,
// ParseNEXRAD and ParseGOES.
type Filename interface {
	Kind() Kind
	Location() Location
}

// Parse validates name against the grammar of kind and decomposes it.
func Parse(kind Kind, name string) (Filename, error) {
	switch kind {
	case NEXRAD:
		f, err := ParseNEXRAD(name)
		if err != nil {
			return nil, err
		}
		return f, nil
	case GOES:
		f, err := ParseGOES(name)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, ErrUnknownKind
	}
}

// Derive returns the object location for a filename of the given archive.
// Invalid names fail with ErrInvalidFormat instead of yielding a partial path.
func Derive(kind Kind, name string) (Location, error) {
	f, err := Parse(kind, name)
	if err != nil {
		return Location{}, err
	}
	return f.Location(), nil
}
