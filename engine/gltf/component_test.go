package gltf

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedComponentScale(t *testing.T) {
	scale, err := NormalizedComponentScale(ComponentTypeShort)
	require.NoError(t, err)
	assert.Equal(t, 1.0/32767, scale)

	for ct, want := range map[int]float64{
		ComponentTypeByte:          1.0 / 127,
		ComponentTypeUnsignedByte:  1.0 / 255,
		ComponentTypeUnsignedShort: 1.0 / 65535,
	} {
		got, err := NormalizedComponentScale(ct)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, ct := range []int{ComponentTypeFloat, ComponentTypeUnsignedInt, 1234} {
		_, err := NormalizedComponentScale(ct)
		assert.ErrorIs(t, err, ErrUnsupportedNormalized)
	}
}

func TestDenormalizeShort(t *testing.T) {
	v, err := Denormalize(32767, ComponentTypeShort)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	v, err = Denormalize(-32768, ComponentTypeShort)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, float32(-1))

	v, err = Denormalize(255, ComponentTypeUnsignedByte)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)
}

func TestReadComponent(t *testing.T) {
	buf := make([]byte, 4)

	binary.LittleEndian.PutUint16(buf, uint16(0x8000))
	assert.Equal(t, float64(-32768), ReadComponent(buf, ComponentTypeShort))
	assert.Equal(t, float64(32768), ReadComponent(buf, ComponentTypeUnsignedShort))

	binary.LittleEndian.PutUint32(buf, math.Float32bits(1.5))
	assert.Equal(t, 1.5, ReadComponent(buf, ComponentTypeFloat))

	assert.Equal(t, float64(-1), ReadComponent([]byte{0xFF}, ComponentTypeByte))
	assert.Equal(t, uint32(255), ReadUnsigned([]byte{0xFF}, ComponentTypeUnsignedByte))
}

func TestElementSize(t *testing.T) {
	size, err := ElementSize(&Accessor{ComponentType: ComponentTypeFloat, Type: AccessorTypeVec3})
	require.NoError(t, err)
	assert.Equal(t, 12, size)

	size, err = ElementSize(&Accessor{ComponentType: ComponentTypeUnsignedByte, Type: AccessorTypeMat4})
	require.NoError(t, err)
	assert.Equal(t, 16, size)

	_, err = ElementSize(&Accessor{ComponentType: 1, Type: AccessorTypeVec3})
	assert.ErrorIs(t, err, ErrUnknownComponentType)

	_, err = ElementSize(&Accessor{ComponentType: ComponentTypeFloat, Type: "VEC5"})
	assert.ErrorIs(t, err, ErrUnknownAccessorType)
}
