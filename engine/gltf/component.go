package gltf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Component table errors.
var (
	ErrUnknownComponentType  = errors.New("unknown accessor component type")
	ErrUnknownAccessorType   = errors.New("unknown accessor element type")
	ErrUnsupportedNormalized = errors.New("unsupported normalized accessor component type")
)

// normalizedScales maps integer component types to the reciprocal used to rebuild normalized floats.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#animations
var normalizedScales = map[int]float64{
	ComponentTypeByte:          1.0 / 127,
	ComponentTypeUnsignedByte:  1.0 / 255,
	ComponentTypeShort:         1.0 / 32767,
	ComponentTypeUnsignedShort: 1.0 / 65535,
}

// ComponentTypeSize returns the byte size of a component type, or 0 when unknown.
func ComponentTypeSize(componentType int) int {
	switch componentType {
	case ComponentTypeByte, ComponentTypeUnsignedByte:
		return 1
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// TypeComponentCount returns the number of components for an accessor element type, or 0 when unknown.
func TypeComponentCount(accessorType string) int {
	switch accessorType {
	case AccessorTypeScalar:
		return 1
	case AccessorTypeVec2:
		return 2
	case AccessorTypeVec3:
		return 3
	case AccessorTypeVec4, AccessorTypeMat2:
		return 4
	case AccessorTypeMat3:
		return 9
	case AccessorTypeMat4:
		return 16
	default:
		return 0
	}
}

// NormalizedComponentScale returns the scale that maps a normalized integer component to a float.
//
// Parameters:
//   - componentType: the accessor component type
//
// Returns:
//   - float64: the reciprocal of the type's maximum positive value
//   - error: ErrUnsupportedNormalized for FLOAT, UNSIGNED_INT and unknown types
func NormalizedComponentScale(componentType int) (float64, error) {
	scale, ok := normalizedScales[componentType]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedNormalized, componentType)
	}
	return scale, nil
}

// Denormalize maps a raw normalized integer component to a float. Signed results are clamped to -1.
func Denormalize(raw float64, componentType int) (float32, error) {
	scale, err := NormalizedComponentScale(componentType)
	if err != nil {
		return 0, err
	}
	return float32(max(raw*scale, -1)), nil
}

// IsSignedComponent reports whether the component type holds signed integers.
func IsSignedComponent(componentType int) bool {
	return componentType == ComponentTypeByte || componentType == ComponentTypeShort
}

// ElementSize returns the tightly packed byte size of one accessor element.
//
// Parameters:
//   - acc: the accessor
//
// Returns:
//   - int: the element size in bytes
//   - error: error if the component or element type is unknown
func ElementSize(acc *Accessor) (int, error) {
	size := ComponentTypeSize(acc.ComponentType)
	if size == 0 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownComponentType, acc.ComponentType)
	}
	count := TypeComponentCount(acc.Type)
	if count == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccessorType, acc.Type)
	}
	return size * count, nil
}

// ReadComponent reads one little-endian component from the start of data as a float64.
// data must hold at least ComponentTypeSize(componentType) bytes.
func ReadComponent(data []byte, componentType int) float64 {
	switch componentType {
	case ComponentTypeByte:
		return float64(int8(data[0]))
	case ComponentTypeUnsignedByte:
		return float64(data[0])
	case ComponentTypeShort:
		return float64(int16(binary.LittleEndian.Uint16(data)))
	case ComponentTypeUnsignedShort:
		return float64(binary.LittleEndian.Uint16(data))
	case ComponentTypeUnsignedInt:
		return float64(binary.LittleEndian.Uint32(data))
	case ComponentTypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	default:
		return 0
	}
}

// ReadUnsigned reads one little-endian unsigned integer component from the start of data.
// Signed and float types are not valid here and yield 0.
func ReadUnsigned(data []byte, componentType int) uint32 {
	switch componentType {
	case ComponentTypeUnsignedByte:
		return uint32(data[0])
	case ComponentTypeUnsignedShort:
		return uint32(binary.LittleEndian.Uint16(data))
	case ComponentTypeUnsignedInt:
		return binary.LittleEndian.Uint32(data)
	default:
		return 0
	}
}
