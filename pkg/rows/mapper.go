// Package rows implements the row mapper: row metadata derived by
// reflection over a target struct type, a position map that aligns that
// metadata against a server RowDescription, and a generic response.Handler
// ("row-sink") that decodes one DataRow at a time into values of the
// target type.
package rows

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/lib/pq/oid"
	"github.com/shopspring/decimal"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/typeconv"
)

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// invalidPos is the db-index sentinel recorded when no server field
// matches a target field name.
const invalidPos = -1

// field is one struct field's row metadata.
type field struct {
	name  string
	index int
	typ   reflect.Type
}

// Mapper holds one target row type's reflected field metadata. It is built
// once per struct type (typically once per call to [Into]) and reused
// across every row decoded in that query.
type Mapper struct {
	elemType reflect.Type
	fields   []field
}

// NewMapper derives row metadata for the struct type sample (a value or
// pointer of the target row type R). Field names are taken from the "db"
// struct tag, falling back to the Go field name when absent; names must be
// unique.
func NewMapper(sample any) (*Mapper, error) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, pgerr.New(pgerr.KindIncompatibleType, "row target must be a struct, got "+t.Kind().String())
	}

	seen := make(map[string]bool, t.NumField())
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name := sf.Tag.Get("db")
		if name == "" {
			name = sf.Name
		}
		if seen[name] {
			return nil, pgerr.New(pgerr.KindIncompatibleType, "duplicate row field name: "+name)
		}
		seen[name] = true
		fields = append(fields, field{name: name, index: i, typ: sf.Type})
	}

	return &Mapper{elemType: t, fields: fields}, nil
}

// Position is one target field's resolved location within a RowDescription.
type Position struct {
	DBIndex int
	Field   message.FieldDescription
}

// BuildPositions aligns the mapper's fields against rd by name. It always
// returns a full-length position slice, with unresolvable fields marked
// [invalidPos], alongside the first error encountered (missing name or
// incompatible type), so the row-sink can keep consuming the stream even
// after a metadata mismatch.
func (m *Mapper) BuildPositions(rd message.RowDescription) ([]Position, error) {
	positions := make([]Position, len(m.fields))
	var firstErr error

	for i, f := range m.fields {
		idx := invalidPos
		for j, fd := range rd.Fields {
			if fd.Name == f.name {
				idx = j
				break
			}
		}
		if idx == invalidPos {
			if firstErr == nil {
				firstErr = pgerr.New(pgerr.KindIncompatibleType, fmt.Sprintf("no server column named %q", f.name))
			}
			positions[i] = Position{DBIndex: invalidPos}
			continue
		}

		fd := rd.Fields[idx]
		if !accepts(f.typ, oid.Oid(fd.DataTypeOID)) {
			if firstErr == nil {
				firstErr = pgerr.New(pgerr.KindIncompatibleType, fmt.Sprintf("server column %q (oid %d) is not compatible with field %q", fd.Name, fd.DataTypeOID, f.name))
			}
		}
		positions[i] = Position{DBIndex: idx, Field: fd}
	}

	return positions, firstErr
}

// accepts dispatches to the type codec's per-type compatibility predicate
// based on the target Go field's type. A pointer field admits a NULL
// column value in addition to whatever its pointee type accepts.
func accepts(t reflect.Type, serverOID oid.Oid) bool {
	if t.Kind() == reflect.Ptr {
		return accepts(t.Elem(), serverOID)
	}
	switch t {
	case uuidType:
		return typeconv.AcceptsUUID(serverOID)
	case decimalType:
		return typeconv.AcceptsNumeric(serverOID)
	}
	switch t.Kind() {
	case reflect.Bool:
		return typeconv.AcceptsBool(serverOID)
	case reflect.Int16:
		return typeconv.AcceptsInt2(serverOID)
	case reflect.Int32:
		return typeconv.AcceptsInt4(serverOID)
	case reflect.Int64, reflect.Int:
		return typeconv.AcceptsInt8(serverOID)
	case reflect.Float32:
		return typeconv.AcceptsFloat4(serverOID)
	case reflect.Float64:
		return typeconv.AcceptsFloat8(serverOID)
	case reflect.String:
		return typeconv.AcceptsText(serverOID)
	default:
		return false
	}
}

// decode parses raw (the already length-delimited column bytes, nil for
// SQL NULL) into a reflect.Value assignable to t, in the given wire format.
func decode(t reflect.Type, raw []byte, format message.FieldDescription, binary bool) (reflect.Value, error) {
	serverOID := oid.Oid(format.DataTypeOID)

	if t.Kind() == reflect.Ptr {
		if raw == nil {
			return reflect.Zero(t), nil
		}
		elem, err := decode(t.Elem(), raw, format, binary)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if raw == nil {
		return reflect.Value{}, pgerr.New(pgerr.KindUnexpectedNull, "unexpected SQL NULL for non-pointer field")
	}

	switch t {
	case uuidType:
		var v uuid.UUID
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryUUID(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextUUID(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case decimalType:
		var v decimal.Decimal
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryNumeric(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextNumeric(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	}

	switch t.Kind() {
	case reflect.Bool:
		var v bool
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryBool(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextBool(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case reflect.Int16:
		var v int16
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryInt2(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextInt2(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case reflect.Int32:
		var v int32
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryInt4(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextInt4(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case reflect.Int64, reflect.Int:
		var v int64
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryInt8(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextInt8(string(raw), serverOID)
		}
		if t.Kind() == reflect.Int {
			return reflect.ValueOf(int(v)), err
		}
		return reflect.ValueOf(v), err
	case reflect.Float32:
		var v float32
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryFloat4(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextFloat4(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case reflect.Float64:
		var v float64
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryFloat8(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextFloat8(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	case reflect.String:
		var v string
		var err error
		if binary {
			v, err = typeconv.DecodeBinaryText(raw, serverOID)
		} else {
			v, err = typeconv.DecodeTextText(string(raw), serverOID)
		}
		return reflect.ValueOf(v), err
	default:
		return reflect.Value{}, pgerr.New(pgerr.KindIncompatibleType, "unsupported row field kind: "+t.Kind().String())
	}
}
