package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Vertex is one interleaved vertex of a static mesh, laid out for a std430 vertex buffer.
// Size: 64 bytes.
type Vertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
	Color    [4]float32 // offset 32
	Tangent  [4]float32 // offset 48: xyz + handedness
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex little endian.
//
// Returns:
//   - []byte: 64-byte buffer ready for upload.
func (v *Vertex) Marshal() []byte {
	return v.appendTo(make([]byte, 0, 64))
}

func (v *Vertex) appendTo(buf []byte) []byte {
	buf = appendFloats(buf, v.Position[:]...)
	buf = appendFloats(buf, v.Normal[:]...)
	buf = appendFloats(buf, v.TexCoord[:]...)
	buf = appendFloats(buf, v.Color[:]...)
	return appendFloats(buf, v.Tangent[:]...)
}

// SkinnedVertex extends Vertex with up to four joint influences.
// Size: 96 bytes.
type SkinnedVertex struct {
	Vertex
	Joints  [4]uint32  // offset 64
	Weights [4]float32 // offset 80
}

// Size returns the size of the SkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *SkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex little endian.
//
// Returns:
//   - []byte: 96-byte buffer ready for upload.
func (v *SkinnedVertex) Marshal() []byte {
	buf := v.Vertex.appendTo(make([]byte, 0, 96))
	for _, j := range v.Joints {
		buf = binary.LittleEndian.AppendUint32(buf, j)
	}
	return appendFloats(buf, v.Weights[:]...)
}

func appendFloats(buf []byte, values ...float32) []byte {
	for _, f := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Vertices interleaves the standard attributes of g. Missing attributes are zero, except color which
// defaults to opaque white. Three-component colors get alpha 1.
//
// Returns:
//   - []Vertex: one vertex per position, nil without a position attribute
func (g *Geometry) Vertices() []Vertex {
	pos, ok := g.Attributes[AttributePosition]
	if !ok {
		return nil
	}

	out := make([]Vertex, pos.Count)
	for i := range out {
		v := &out[i]
		fill(v.Position[:], pos, i)
		fill(v.Normal[:], g.Attributes[AttributeNormal], i)
		fill(v.TexCoord[:], g.Attributes[AttributeUV], i)
		fill(v.Tangent[:], g.Attributes[AttributeTangent], i)
		v.Color = [4]float32{1, 1, 1, 1}
		fill(v.Color[:], g.Attributes[AttributeColor], i)
	}
	return out
}

// SkinnedVertices is Vertices plus joint indices and weights.
//
// Returns:
//   - []SkinnedVertex: one vertex per position, nil without a position attribute
func (g *Geometry) SkinnedVertices() []SkinnedVertex {
	base := g.Vertices()
	if base == nil {
		return nil
	}
	joints := g.Attributes[AttributeSkinIndex]
	weights := g.Attributes[AttributeSkinWeight]

	out := make([]SkinnedVertex, len(base))
	for i := range out {
		out[i].Vertex = base[i]
		if joints != nil && i < joints.Count {
			for c := range min(joints.ItemSize, 4) {
				out[i].Joints[c] = uint32(joints.Component(i, c))
			}
		}
		fill(out[i].Weights[:], weights, i)
	}
	return out
}

// BoundingRadius returns the largest distance of a vertex from the origin.
//
// Parameters:
//   - vertices: the vertex data
//
// Returns:
//   - float32: the maximum distance from the origin
func BoundingRadius(vertices []Vertex) float32 {
	var maxSq float32
	for _, v := range vertices {
		p := v.Position
		maxSq = max(maxSq, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
	}
	return float32(math.Sqrt(float64(maxSq)))
}

// fill copies element i of a into dst, up to the shorter of the two widths.
func fill(dst []float32, a *BufferAttribute, i int) {
	if a == nil || i >= a.Count {
		return
	}
	for c := range min(a.ItemSize, len(dst)) {
		dst[c] = a.Component(i, c)
	}
}
