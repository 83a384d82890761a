/*
Package wire implements encoding and decoding of the CBOR wire format as
defined in RFC 8949.

Every data item starts with a single header byte carrying a three-bit major
type and a five-bit additional-information value. Additional-information
values below 24 encode the item's argument inline; values 24 through 27 are
followed by 1, 2, 4 or 8 big-endian argument bytes; value 31 marks an
indefinite-length item (byte strings, text strings, arrays and maps) or, for
the simple/float major type, the break marker that closes one. Values 28
through 30 are reserved and rejected.

The Encoder writes one data item per call and always selects the smallest
header width that can represent the argument, so encoding a given value is
deterministic byte for byte. The Decoder parses one header at a time and
leaves iteration over array elements, map entries and indefinite-length
string chunks to the caller.

Decoders read from a Source rather than an io.Reader so that implementations
backed by an in-memory buffer can hand out slices of the original input
instead of copying. Each Fill call reports whether the returned bytes stay
valid for the life of the input (RefLong) or only until the next call on the
Source (RefShort); the Decoder copies in the latter case and aliases in the
former. NewSliceSource adapts a byte slice, NewReaderSource adapts any
io.Reader.

Typical decode loop for an array:

	n, indefinite, err := dec.ReadArrayHeader()
	if err != nil {
		return err
	}
	if indefinite {
		for {
			more, err := dec.More()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			// decode one element
		}
	} else {
		for i := 0; i < n; i++ {
			// decode one element
		}
	}

All decode failures are *DecodeError values carrying the error kind and the
number of bytes consumed before the failure. Encode failures are
*EncodeError values and always originate from the sink, never from the value
being encoded.
*/
package wire
