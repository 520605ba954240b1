// Package proptable implements the feature table of an instanced-model tile:
// a JSON object of named global and per-instance properties paired with a
// binary block that satisfies byte offsets declared in the JSON.
//
// Property lookups return an explicit presence flag rather than a default
// value, so callers can apply their own per-field fallback policy. Absence is
// expected control flow here; only missing every alternative of a required
// field is an error, and that decision belongs to the caller.
package proptable

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tilemesa/instile/endian"
)

// binaryRef is a JSON property of the form {"byteOffset": N} with an
// optional componentType override.
type binaryRef struct {
	byteOffset int
	component  ComponentType // 0 when the property does not override the type
}

// value is one parsed JSON property in exactly one of its shapes.
type value struct {
	scalar  *float64
	array   []float64
	boolean *bool
	ref     *binaryRef
}

// Table is a read-only view over a feature table. Construct with New; a
// Table never mutates after construction.
type Table struct {
	values map[string]value
	binary []byte
	engine endian.EndianEngine
}

// New parses the feature table JSON and pairs it with its binary block.
// The binary block may be empty when every property is JSON-inlined.
//
// Returns:
//   - *Table: parsed read-only table
//   - error: JSON syntax errors, unrecognized property shapes, or an invalid
//     componentType string
func New(jsonData, binary []byte) (*Table, error) {
	var raw map[string]any
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, fmt.Errorf("feature table JSON: %w", err)
	}

	t := &Table{
		values: make(map[string]value, len(raw)),
		binary: binary,
		engine: endian.Little(),
	}

	for name, v := range raw {
		parsed, err := parseValue(v)
		if err != nil {
			return nil, fmt.Errorf("feature table property %q: %w", name, err)
		}
		t.values[name] = parsed
	}

	return t, nil
}

func parseValue(v any) (value, error) {
	switch vv := v.(type) {
	case float64:
		return value{scalar: &vv}, nil
	case bool:
		return value{boolean: &vv}, nil
	case []any:
		arr := make([]float64, len(vv))
		for i, elem := range vv {
			num, ok := elem.(float64)
			if !ok {
				return value{}, fmt.Errorf("array element %d is not numeric", i)
			}
			arr[i] = num
		}

		return value{array: arr}, nil
	case map[string]any:
		offset, ok := vv["byteOffset"].(float64)
		if !ok {
			return value{}, fmt.Errorf("object property carries no byteOffset")
		}
		ref := &binaryRef{byteOffset: int(offset)}
		if ctStr, ok := vv["componentType"].(string); ok {
			ct, err := ParseComponentType(ctStr)
			if err != nil {
				return value{}, err
			}
			ref.component = ct
		}

		return value{ref: ref}, nil
	default:
		return value{}, fmt.Errorf("unsupported property shape %T", v)
	}
}

// Has reports whether a property of any shape is declared under name.
func (t *Table) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// GetGlobalProperty resolves a singleton named property as componentCount
// components of the given type.
//
// JSON-inlined scalars and arrays are returned directly; binary references
// are decoded from the binary block at their declared offset. The second
// return is false when the property is absent, has a mismatched component
// count, or its binary reference falls outside the block.
func (t *Table) GetGlobalProperty(name string, componentType ComponentType, componentCount int) ([]float64, bool) {
	v, ok := t.values[name]
	if !ok {
		return nil, false
	}

	switch {
	case v.scalar != nil:
		if componentCount != 1 {
			return nil, false
		}

		return []float64{*v.scalar}, true
	case v.array != nil:
		if len(v.array) != componentCount {
			return nil, false
		}
		out := make([]float64, componentCount)
		copy(out, v.array)

		return out, true
	case v.ref != nil:
		return t.readComponents(v.ref, 0, componentType, componentCount)
	default:
		return nil, false
	}
}

// GetProperty resolves a per-instance named property for the given instance
// index as componentCount components of the given type.
//
// Per-instance properties are binary references; element i of a property
// with N components of size s lives at byteOffset + i*N*s. A property
// declaring its own componentType overrides the caller's type. The second
// return is false when the property is absent or the read falls outside the
// binary block.
func (t *Table) GetProperty(name string, instanceIndex int, componentType ComponentType, componentCount int) ([]float64, bool) {
	v, ok := t.values[name]
	if !ok || v.ref == nil || instanceIndex < 0 {
		return nil, false
	}

	return t.readComponents(v.ref, instanceIndex, componentType, componentCount)
}

// GetGlobalBool resolves a singleton boolean property.
func (t *Table) GetGlobalBool(name string) (bool, bool) {
	v, ok := t.values[name]
	if !ok || v.boolean == nil {
		return false, false
	}

	return *v.boolean, true
}

func (t *Table) readComponents(ref *binaryRef, elementIndex int, componentType ComponentType, componentCount int) ([]float64, bool) {
	if ref.component != 0 {
		componentType = ref.component
	}
	size := componentType.Size()
	if size == 0 || componentCount <= 0 {
		return nil, false
	}

	start := ref.byteOffset + elementIndex*componentCount*size
	end := start + componentCount*size
	if start < 0 || end > len(t.binary) {
		return nil, false
	}

	out := make([]float64, componentCount)
	for i := 0; i < componentCount; i++ {
		out[i] = t.readOne(start+i*size, componentType)
	}

	return out, true
}

func (t *Table) readOne(offset int, componentType ComponentType) float64 {
	switch componentType {
	case Byte:
		return float64(int8(t.binary[offset]))
	case UnsignedByte:
		return float64(t.binary[offset])
	case Short:
		return float64(int16(t.engine.Uint16(t.binary[offset:])))
	case UnsignedShort:
		return float64(t.engine.Uint16(t.binary[offset:]))
	case Int:
		return float64(int32(t.engine.Uint32(t.binary[offset:])))
	case UnsignedInt:
		return float64(t.engine.Uint32(t.binary[offset:]))
	case Float:
		return float64(math.Float32frombits(t.engine.Uint32(t.binary[offset:])))
	case Double:
		return math.Float64frombits(t.engine.Uint64(t.binary[offset:]))
	default:
		return 0
	}
}
