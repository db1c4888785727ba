package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// maxAccessorValues caps the number of components a single accessor may decode to.
const maxAccessorValues = 1 << 28

// accessorSource holds the resolved bytes an accessor reads from.
type accessorSource struct {
	// view is the base buffer view, nil for zero-filled accessors.
	view []byte

	// stride is the buffer view byteStride, 0 when tightly packed.
	stride int

	// sparseIndices and sparseValues are the sparse buffer views, nil without sparse storage.
	sparseIndices []byte
	sparseValues  []byte
}

// decodeAccessor reconstructs the typed values of acc.
// Float and normalized data land in Float32, plain signed integers in Int32, plain unsigned integers in Uint32.
// Interleaved views are read element by element; sparse overrides are applied after the base decode.
//
// Parameters:
//   - acc: the accessor definition
//   - src: the resolved view bytes
//
// Returns:
//   - *model.BufferAttribute: the decoded values
//   - error: error if the layout is unsupported or exceeds the view
func decodeAccessor(acc *gltf.Accessor, src accessorSource) (*model.BufferAttribute, error) {
	ct := acc.ComponentType
	elemSize, err := gltf.ElementSize(acc)
	if err != nil {
		return nil, err
	}
	if acc.Count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrAccessorOverflow, acc.Count)
	}
	itemSize := gltf.TypeComponentCount(acc.Type)
	compSize := gltf.ComponentTypeSize(ct)
	if acc.Count > maxAccessorValues/itemSize {
		return nil, fmt.Errorf("%w: count %d exceeds %d values", ErrAccessorOverflow, acc.Count, maxAccessorValues)
	}

	stride := src.stride
	if stride == 0 {
		stride = elemSize
	}
	if src.view != nil && acc.Count > 0 {
		if stride < elemSize {
			return nil, fmt.Errorf("%w: stride %d below element size %d", ErrAccessorOverflow, stride, elemSize)
		}
		if !fitsView(len(src.view), acc.ByteOffset, stride, elemSize, acc.Count) {
			return nil, fmt.Errorf("%w: %d elements of %d bytes at offset %d, stride %d, view has %d",
				ErrAccessorOverflow, acc.Count, elemSize, acc.ByteOffset, stride, len(src.view))
		}
	}

	var scale float64
	if acc.Normalized {
		if scale, err = gltf.NormalizedComponentScale(ct); err != nil {
			return nil, err
		}
	}

	attr := &model.BufferAttribute{
		Name:          acc.Name,
		ItemSize:      itemSize,
		Count:         acc.Count,
		ComponentType: ct,
		Normalized:    acc.Normalized,
	}
	n := acc.Count * itemSize
	var store func(i int, raw float64)
	switch {
	case ct == gltf.ComponentTypeFloat:
		attr.Float32 = make([]float32, n)
		store = func(i int, raw float64) { attr.Float32[i] = float32(raw) }
	case acc.Normalized:
		attr.Float32 = make([]float32, n)
		store = func(i int, raw float64) { attr.Float32[i] = float32(max(raw*scale, -1)) }
	case gltf.IsSignedComponent(ct):
		attr.Int32 = make([]int32, n)
		store = func(i int, raw float64) { attr.Int32[i] = int32(raw) }
	default:
		attr.Uint32 = make([]uint32, n)
		store = func(i int, raw float64) { attr.Uint32[i] = uint32(raw) }
	}

	if src.view != nil && acc.Count > 0 {
		for e := range acc.Count {
			base := acc.ByteOffset + e*stride
			for c := range itemSize {
				store(e*itemSize+c, gltf.ReadComponent(src.view[base+c*compSize:], ct))
			}
		}
	}

	if acc.Sparse != nil {
		if err := applySparse(acc, src, elemSize, itemSize, compSize, store); err != nil {
			return nil, err
		}
	}
	return attr, nil
}

func applySparse(acc *gltf.Accessor, src accessorSource, elemSize, itemSize, compSize int, store func(int, float64)) error {
	sp := acc.Sparse
	ict := sp.Indices.ComponentType
	switch ict {
	case gltf.ComponentTypeUnsignedByte, gltf.ComponentTypeUnsignedShort, gltf.ComponentTypeUnsignedInt:
	default:
		return fmt.Errorf("%w: sparse indices use %d", gltf.ErrUnknownComponentType, ict)
	}
	idxSize := gltf.ComponentTypeSize(ict)

	if sp.Count < 0 || sp.Count > acc.Count {
		return fmt.Errorf("%w: sparse count %d for %d elements", ErrAccessorOverflow, sp.Count, acc.Count)
	}
	if sp.Count == 0 {
		return nil
	}
	if !fitsView(len(src.sparseIndices), sp.Indices.ByteOffset, idxSize, idxSize, sp.Count) {
		return fmt.Errorf("%w: %d sparse indices at offset %d, view has %d",
			ErrAccessorOverflow, sp.Count, sp.Indices.ByteOffset, len(src.sparseIndices))
	}
	if !fitsView(len(src.sparseValues), sp.Values.ByteOffset, elemSize, elemSize, sp.Count) {
		return fmt.Errorf("%w: %d sparse values at offset %d, view has %d",
			ErrAccessorOverflow, sp.Count, sp.Values.ByteOffset, len(src.sparseValues))
	}

	for s := range sp.Count {
		target := int(gltf.ReadUnsigned(src.sparseIndices[sp.Indices.ByteOffset+s*idxSize:], ict))
		if target < 0 || target >= acc.Count {
			return outOfRange("sparse target", target, acc.Count)
		}
		base := sp.Values.ByteOffset + s*elemSize
		for c := range itemSize {
			store(target*itemSize+c, gltf.ReadComponent(src.sparseValues[base+c*compSize:], acc.ComponentType))
		}
	}
	return nil
}

// fitsView reports whether count elements of elemSize bytes, stride bytes apart from offset, lie inside a view of size bytes.
func fitsView(size, offset, stride, elemSize, count int) bool {
	if offset < 0 || stride <= 0 || elemSize <= 0 || count <= 0 {
		return count == 0 && offset >= 0 && offset <= size
	}
	if offset > size || size-offset < elemSize {
		return false
	}
	return count-1 <= (size-offset-elemSize)/stride
}

// spanFits reports whether length bytes starting at offset lie inside a buffer of size bytes.
func spanFits(size, offset, length int) bool {
	return offset >= 0 && length >= 0 && offset <= size && length <= size-offset
}
