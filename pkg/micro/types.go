package micro

import "github.com/matzehuels/hdf2mic/pkg/errors"

// DataType is a declared VTK element type for a per-cell attribute. The
// declared type only selects the numeral family used when rendering values;
// reading from the source always goes through float64.
type DataType string

// The accepted VTK data types.
const (
	TypeBit           DataType = "bit"
	TypeUnsignedChar  DataType = "unsigned_char"
	TypeChar          DataType = "char"
	TypeUnsignedShort DataType = "unsigned_short"
	TypeShort         DataType = "short"
	TypeUnsignedInt   DataType = "unsigned_int"
	TypeInt           DataType = "int"
	TypeUnsignedLong  DataType = "unsigned_long"
	TypeLong          DataType = "long"
	TypeFloat         DataType = "float"
	TypeDouble        DataType = "double"
)

// typeFamilies maps each accepted type to its numeral family: true for the
// integer family (unsigned decimal rendering), false for the floating family
// (fixed decimal rendering). Membership doubles as the validity check.
var typeFamilies = map[DataType]bool{
	TypeBit:           true,
	TypeUnsignedChar:  true,
	TypeChar:          true,
	TypeUnsignedShort: true,
	TypeShort:         true,
	TypeUnsignedInt:   true,
	TypeInt:           true,
	TypeUnsignedLong:  true,
	TypeLong:          true,
	TypeFloat:         false,
	TypeDouble:        false,
}

// ParseDataType validates a declared VTK data type string.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if _, ok := typeFamilies[t]; !ok {
		return "", errors.New(errors.ErrCodeUnknownDataType, "unknown VTK dataType %q (accepted: bit, unsigned_char, char, unsigned_short, short, unsigned_int, int, unsigned_long, long, float, double)", s)
	}
	return t, nil
}

// Integer reports whether the type renders with integer numerals.
func (t DataType) Integer() bool {
	return typeFamilies[t]
}
