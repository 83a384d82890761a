package serial

import (
	"reflect"
	"strings"
	"sync"
)

// field is the bridge's view of one encodable struct field.
type field struct {
	name       string
	index      int
	flatten    bool
	skipDecode bool
}

type structInfo struct {
	// fields in declaration order, flattened fields included.
	fields []field
	byName map[string]*field
}

var structCache sync.Map // reflect.Type -> *structInfo

func infoOf(t reflect.Type) *structInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}
	info := &structInfo{byName: make(map[string]*field)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		f := field{name: sf.Name, index: i}
		if tag, ok := sf.Tag.Lookup("cwire"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				f.name = parts[0]
			}
			for _, opt := range parts[1:] {
				switch opt {
				case "flatten":
					f.flatten = true
				case "skipdecode":
					f.skipDecode = true
				}
			}
		}
		info.fields = append(info.fields, f)
	}
	for i := range info.fields {
		f := &info.fields[i]
		if !f.flatten {
			info.byName[f.name] = f
		}
	}
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

func (si *structInfo) hasFlatten() bool {
	for i := range si.fields {
		if si.fields[i].flatten {
			return true
		}
	}
	return false
}
