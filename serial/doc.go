/*
Package serial maps Go values onto the CBOR wire format implemented by
package wire.

Marshal walks a value with reflection and emits exactly one data item:
booleans, integers (minimal-width), floats (at the value's own precision),
strings, byte slices, arrays, slices, maps, pointers (nil encodes as null)
and structs, which encode as maps keyed by field name. Struct fields are
renamed and configured with the `cwire` tag:

	type Package struct {
		Name     string   `cwire:"name"`
		Checksum []byte   `cwire:"checksum"`
		Internal int      `cwire:"-"`                  // never encoded
		Detail   Detail   `cwire:",flatten"`           // fields merge into this map
		Cached   bool     `cwire:"cached,skipdecode"`  // written, never read back
	}

A field marked skipdecode is still serialized but is never read from the
wire, even when present; after Unmarshal it holds its zero value. A
flattened struct's fields are spread directly into the enclosing map as
siblings of the outer fields, which forces the enclosing map to the
indefinite-length encoding since its entry count is not knowable upfront.

Closed sets of variants ("enums") are modeled as Go interface types whose
concrete implementations are registered up front:

	serial.RegisterEnum((*Shape)(nil),
		serial.Variant{Name: "Unit", Shape: serial.UnitVariant, Type: reflect.TypeOf(Unit{})},
		serial.Variant{Name: "Circle", Shape: serial.NewtypeVariant, Type: reflect.TypeOf(Circle(0))},
	)

A unit variant travels as its bare identifier; the other shapes travel as a
single-entry map from the identifier to the payload (one item for newtype,
an array for tuple, a map for struct variants). The identifier is the
variant name, or its registration index when Config.VariantByIndex is set.
RegisterUntagged declares variants that carry no identifier at all: the
decoder buffers the item into a value tree and tries each candidate type in
registration order, so declaration order is a semantic part of the type.

Unmarshal reads from a wire.Source. When the source hands out slices of the
original input (wire.SliceSource does), byte-slice targets alias that input
rather than copying; every path that buffers content first, untagged enums
and flatten included, yields owned data instead.

Types needing full control implement Marshaler and Unmarshaler, mirroring
the Encoder/Decoder pairing of the wire package.
*/
package serial
