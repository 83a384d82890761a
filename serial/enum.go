package serial

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoVariantMatch is the terminal failure of untagged enum resolution:
// every registered candidate was tried against the buffered item and none
// deserialized. Use errors.Cause to test for it.
var ErrNoVariantMatch = errors.New("cwire/serial: no enum variant matched")

// VariantShape declares how a variant's payload travels on the wire.
type VariantShape int

const (
	// UnitVariant carries no payload and encodes as its bare identifier.
	UnitVariant VariantShape = iota
	// NewtypeVariant carries a single item.
	NewtypeVariant
	// TupleVariant carries its Go struct's fields as a definite array,
	// in declaration order, names discarded.
	TupleVariant
	// StructVariant carries its Go struct's fields as a map, exactly as
	// a plain struct would encode.
	StructVariant
)

// Variant describes one member of a registered enum.
type Variant struct {
	Name  string
	Shape VariantShape
	Type  reflect.Type
}

type enumDef struct {
	variants []Variant
	untagged bool
	byType   map[reflect.Type]int
	byName   map[string]int
}

var (
	enumMu sync.RWMutex
	enums  = map[reflect.Type]*enumDef{}
)

// RegisterEnum declares iface, given as a nil pointer to the interface
// type such as (*Shape)(nil), to be a closed set of variants. Each
// variant's concrete type must implement the interface. Variants travel
// as described by their VariantShape. Registration panics on misuse, in
// the manner of gob.Register: a bad registration is a programming error,
// not an input error.
func RegisterEnum(iface interface{}, variants ...Variant) {
	t := ifaceType(iface)
	def := &enumDef{
		variants: variants,
		byType:   make(map[reflect.Type]int),
		byName:   make(map[string]int),
	}
	for i, v := range variants {
		if v.Type == nil {
			panic(fmt.Sprintf("cwire/serial: variant %q has no type", v.Name))
		}
		if !v.Type.Implements(t) {
			panic(fmt.Sprintf("cwire/serial: %s does not implement %s", v.Type, t))
		}
		if v.Name == "" {
			panic(fmt.Sprintf("cwire/serial: variant %s has no name", v.Type))
		}
		switch v.Shape {
		case TupleVariant, StructVariant:
			if v.Type.Kind() != reflect.Struct {
				panic(fmt.Sprintf("cwire/serial: %s variants must be structs, %s is not", shapeName(v.Shape), v.Type))
			}
		}
		if _, dup := def.byType[v.Type]; dup {
			panic(fmt.Sprintf("cwire/serial: duplicate variant type %s", v.Type))
		}
		if _, dup := def.byName[v.Name]; dup {
			panic(fmt.Sprintf("cwire/serial: duplicate variant name %q", v.Name))
		}
		def.byType[v.Type] = i
		def.byName[v.Name] = i
	}
	enumMu.Lock()
	enums[t] = def
	enumMu.Unlock()
}

// RegisterUntagged declares iface to be an enum whose wire representation
// carries no variant identifier. Each prototype's dynamic type becomes a
// candidate; decoding buffers the item and tries candidates strictly in
// the order given here, so order is part of the contract.
func RegisterUntagged(iface interface{}, prototypes ...interface{}) {
	t := ifaceType(iface)
	def := &enumDef{
		untagged: true,
		byType:   make(map[reflect.Type]int),
		byName:   make(map[string]int),
	}
	for i, p := range prototypes {
		pt := reflect.TypeOf(p)
		if pt == nil {
			panic("cwire/serial: untagged variant prototype is nil")
		}
		if !pt.Implements(t) {
			panic(fmt.Sprintf("cwire/serial: %s does not implement %s", pt, t))
		}
		if _, dup := def.byType[pt]; dup {
			panic(fmt.Sprintf("cwire/serial: duplicate variant type %s", pt))
		}
		def.byType[pt] = i
		def.variants = append(def.variants, Variant{Type: pt})
	}
	enumMu.Lock()
	enums[t] = def
	enumMu.Unlock()
}

func ifaceType(iface interface{}) reflect.Type {
	t := reflect.TypeOf(iface)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		panic("cwire/serial: enum must be registered via a nil interface pointer such as (*Shape)(nil)")
	}
	return t.Elem()
}

func enumFor(t reflect.Type) *enumDef {
	enumMu.RLock()
	def := enums[t]
	enumMu.RUnlock()
	return def
}

func shapeName(s VariantShape) string {
	switch s {
	case UnitVariant:
		return "unit"
	case NewtypeVariant:
		return "newtype"
	case TupleVariant:
		return "tuple"
	case StructVariant:
		return "struct"
	default:
		return "unknown"
	}
}
