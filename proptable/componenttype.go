package proptable

import (
	"fmt"

	"github.com/tilemesa/instile/errs"
)

// ComponentType identifies the numeric element type of a binary-referenced
// feature table property.
type ComponentType uint8

const (
	Byte ComponentType = iota + 1
	UnsignedByte
	Short
	UnsignedShort
	Int
	UnsignedInt
	Float
	Double
)

// Size returns the encoded size of one component in bytes.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case Int, UnsignedInt, Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case Int:
		return "INT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	default:
		return "UNKNOWN"
	}
}

// ParseComponentType maps a feature table componentType string to its
// ComponentType.
//
// Returns:
//   - ComponentType: parsed type
//   - error: errs.ErrInvalidPropertyType for unrecognized strings
func ParseComponentType(s string) (ComponentType, error) {
	switch s {
	case "BYTE":
		return Byte, nil
	case "UNSIGNED_BYTE":
		return UnsignedByte, nil
	case "SHORT":
		return Short, nil
	case "UNSIGNED_SHORT":
		return UnsignedShort, nil
	case "INT":
		return Int, nil
	case "UNSIGNED_INT":
		return UnsignedInt, nil
	case "FLOAT":
		return Float, nil
	case "DOUBLE":
		return Double, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidPropertyType, s)
	}
}
