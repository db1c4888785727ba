package loader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32Bytes(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func uint16Bytes(values ...uint16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

func TestDecodeAccessorNormalizedShort(t *testing.T) {
	acc := &gltf.Accessor{
		ComponentType: gltf.ComponentTypeShort,
		Normalized:    true,
		Count:         2,
		Type:          gltf.AccessorTypeVec2,
	}
	raw := []int16{32767, -32768, 0, -16384}
	view := make([]byte, 0, 8)
	for _, v := range raw {
		view = binary.LittleEndian.AppendUint16(view, uint16(v))
	}

	attr, err := decodeAccessor(acc, accessorSource{view: view})
	require.NoError(t, err)
	require.Len(t, attr.Float32, 4)
	assert.Nil(t, attr.Int32)
	assert.True(t, attr.Normalized)
	assert.Equal(t, 2, attr.ItemSize)

	assert.InDelta(t, 1.0, attr.Float32[0], 1e-6)
	assert.Equal(t, float32(-1), attr.Float32[1], "most negative value clamps to -1")
	assert.Equal(t, float32(0), attr.Float32[2])
	assert.InDelta(t, -16384.0/32767.0, attr.Float32[3], 1e-6)
}

func TestDecodeAccessorIntegerStorage(t *testing.T) {
	tests := []struct {
		name          string
		componentType int
		view          []byte
		wantInt       []int32
		wantUint      []uint32
	}{
		{"signed byte", gltf.ComponentTypeByte, []byte{0xFF, 0x05}, []int32{-1, 5}, nil},
		{"unsigned byte", gltf.ComponentTypeUnsignedByte, []byte{0xFF, 0x05}, nil, []uint32{255, 5}},
		{"unsigned short", gltf.ComponentTypeUnsignedShort, uint16Bytes(65535, 7), nil, []uint32{65535, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &gltf.Accessor{ComponentType: tt.componentType, Count: 2, Type: gltf.AccessorTypeScalar}
			attr, err := decodeAccessor(acc, accessorSource{view: tt.view})
			require.NoError(t, err)
			assert.Nil(t, attr.Float32)
			assert.Equal(t, tt.wantInt, attr.Int32)
			assert.Equal(t, tt.wantUint, attr.Uint32)
		})
	}
}

func TestDecodeAccessorInterleaved(t *testing.T) {
	// two VEC3 positions interleaved with a float padding component, stride 16
	view := float32Bytes(1, 2, 3, 99, 4, 5, 6, 99)
	acc := &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 2, Type: gltf.AccessorTypeVec3}

	attr, err := decodeAccessor(acc, accessorSource{view: view, stride: 16})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, attr.Float32)
}

func TestDecodeAccessorByteOffset(t *testing.T) {
	view := float32Bytes(0, 0, 7, 8)
	acc := &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 2, Type: gltf.AccessorTypeScalar, ByteOffset: 8}

	attr, err := decodeAccessor(acc, accessorSource{view: view})
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 8}, attr.Float32)
}

func TestDecodeAccessorZeroFilled(t *testing.T) {
	acc := &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 2, Type: gltf.AccessorTypeVec3}

	attr, err := decodeAccessor(acc, accessorSource{})
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 6), attr.Float32)
	assert.Equal(t, 2, attr.Count)
}

func TestDecodeAccessorSparse(t *testing.T) {
	acc := &gltf.Accessor{
		ComponentType: gltf.ComponentTypeUnsignedShort,
		Count:         4,
		Type:          gltf.AccessorTypeScalar,
		Sparse: &gltf.AccessorSparse{
			Count:   2,
			Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedByte},
		},
	}
	src := accessorSource{
		view:          uint16Bytes(1, 2, 3, 4),
		sparseIndices: []byte{1, 3},
		sparseValues:  uint16Bytes(9, 8),
	}

	attr, err := decodeAccessor(acc, src)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 9, 3, 8}, attr.Uint32)
}

func TestDecodeAccessorSparseWithoutBase(t *testing.T) {
	acc := &gltf.Accessor{
		ComponentType: gltf.ComponentTypeFloat,
		Count:         3,
		Type:          gltf.AccessorTypeScalar,
		Sparse: &gltf.AccessorSparse{
			Count:   1,
			Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedShort},
		},
	}
	src := accessorSource{
		sparseIndices: uint16Bytes(2),
		sparseValues:  float32Bytes(0.5),
	}

	attr, err := decodeAccessor(acc, src)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0.5}, attr.Float32)
}

func TestDecodeAccessorErrors(t *testing.T) {
	tests := []struct {
		name string
		acc  *gltf.Accessor
		src  accessorSource
		want error
	}{
		{
			name: "view too short",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 3, Type: gltf.AccessorTypeScalar},
			src:  accessorSource{view: float32Bytes(1, 2)},
			want: ErrAccessorOverflow,
		},
		{
			name: "stride below element size",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 2, Type: gltf.AccessorTypeVec3},
			src:  accessorSource{view: make([]byte, 64), stride: 8},
			want: ErrAccessorOverflow,
		},
		{
			name: "sparse target out of range",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         2,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   1,
					Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedByte},
				},
			},
			src:  accessorSource{sparseIndices: []byte{5}, sparseValues: float32Bytes(1)},
			want: ErrIndexOutOfRange,
		},
		{
			name: "sparse signed indices",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         2,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   1,
					Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeShort},
				},
			},
			src:  accessorSource{sparseIndices: []byte{0, 0}, sparseValues: float32Bytes(1)},
			want: gltf.ErrUnknownComponentType,
		},
		{
			name: "count overflows stride arithmetic",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 4611686018427387905, Type: gltf.AccessorTypeScalar},
			src:  accessorSource{view: make([]byte, 16)},
			want: ErrAccessorOverflow,
		},
		{
			name: "zero-filled count too large",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, Count: 1 << 40, Type: gltf.AccessorTypeVec3},
			want: ErrAccessorOverflow,
		},
		{
			name: "negative byte offset",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, ByteOffset: -4, Count: 1, Type: gltf.AccessorTypeScalar},
			src:  accessorSource{view: make([]byte, 8)},
			want: ErrAccessorOverflow,
		},
		{
			name: "byte offset past view",
			acc:  &gltf.Accessor{ComponentType: gltf.ComponentTypeFloat, ByteOffset: 12, Count: 1, Type: gltf.AccessorTypeScalar},
			src:  accessorSource{view: make([]byte, 8)},
			want: ErrAccessorOverflow,
		},
		{
			name: "negative sparse indices offset",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         2,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   1,
					Indices: gltf.AccessorSparseIndices{ByteOffset: -8, ComponentType: gltf.ComponentTypeUnsignedByte},
				},
			},
			src:  accessorSource{sparseIndices: []byte{0}, sparseValues: float32Bytes(1)},
			want: ErrAccessorOverflow,
		},
		{
			name: "negative sparse values offset",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         2,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   1,
					Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedByte},
					Values:  gltf.AccessorSparseValues{ByteOffset: -4},
				},
			},
			src:  accessorSource{sparseIndices: []byte{0}, sparseValues: float32Bytes(1)},
			want: ErrAccessorOverflow,
		},
		{
			name: "negative sparse count",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         2,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   -1,
					Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedByte},
				},
			},
			want: ErrAccessorOverflow,
		},
		{
			name: "sparse count above element count",
			acc: &gltf.Accessor{
				ComponentType: gltf.ComponentTypeFloat,
				Count:         1,
				Type:          gltf.AccessorTypeScalar,
				Sparse: &gltf.AccessorSparse{
					Count:   2,
					Indices: gltf.AccessorSparseIndices{ComponentType: gltf.ComponentTypeUnsignedByte},
				},
			},
			src:  accessorSource{sparseIndices: []byte{0, 0}, sparseValues: float32Bytes(1, 2)},
			want: ErrAccessorOverflow,
		},
		{
			name: "unknown component type",
			acc:  &gltf.Accessor{ComponentType: 1234, Count: 1, Type: gltf.AccessorTypeScalar},
			want: gltf.ErrUnknownComponentType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeAccessor(tt.acc, tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSpanFits(t *testing.T) {
	assert.True(t, spanFits(8, 0, 8))
	assert.True(t, spanFits(8, 8, 0))
	assert.False(t, spanFits(8, 4, 8))
	assert.False(t, spanFits(8, -1, 2))
	assert.False(t, spanFits(8, 2, -1))
	assert.False(t, spanFits(8, math.MaxInt, math.MaxInt), "offset plus length wraps")
}
