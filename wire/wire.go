package wire

// Major identifies the three-bit major type carried by every item header.
type Major uint8

const (
	MajorUint Major = iota
	MajorNegInt
	MajorBytes
	MajorText
	MajorArray
	MajorMap
	MajorTag
	MajorSimple
)

func (m Major) String() string {
	switch m {
	case MajorUint:
		return "unsigned integer"
	case MajorNegInt:
		return "negative integer"
	case MajorBytes:
		return "byte string"
	case MajorText:
		return "text string"
	case MajorArray:
		return "array"
	case MajorMap:
		return "map"
	case MajorTag:
		return "tag"
	case MajorSimple:
		return "simple/float"
	default:
		return "unknown"
	}
}

// Additional-information values with assigned meaning.
const (
	infoIndefinite = 31

	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
)

// breakByte closes an indefinite-length item.
const breakByte = 0xff

// Well-known tag numbers used by this module.
const (
	// TagPosBignum and TagNegBignum wrap a byte string holding the
	// big-endian magnitude of an integer too large for the native
	// integer major types.
	TagPosBignum uint64 = 2
	TagNegBignum uint64 = 3
)
