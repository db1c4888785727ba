package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Standard attribute names.
const (
	AttributePosition   = "position"
	AttributeNormal     = "normal"
	AttributeTangent    = "tangent"
	AttributeUV         = "uv"
	AttributeUV2        = "uv2"
	AttributeColor      = "color"
	AttributeSkinWeight = "skinWeight"
	AttributeSkinIndex  = "skinIndex"
)

// BufferAttribute holds decoded vertex or index data. Exactly one of Float32, Int32 and Uint32 is populated:
// Float32 for float and normalized data, Int32 for plain signed integers, Uint32 for plain unsigned integers.
type BufferAttribute struct {
	Name string

	// ItemSize is the number of components per element.
	ItemSize int

	// Count is the number of elements.
	Count int

	// ComponentType is the glTF component type the data was decoded from.
	ComponentType int

	// Normalized is set when integer data was rescaled into Float32.
	Normalized bool

	Float32 []float32
	Int32   []int32
	Uint32  []uint32
}

// Len returns the number of scalar components held.
func (a *BufferAttribute) Len() int {
	return a.Count * a.ItemSize
}

// Component returns component c of element i as a float.
func (a *BufferAttribute) Component(i, c int) float32 {
	idx := i*a.ItemSize + c
	switch {
	case a.Float32 != nil:
		return a.Float32[idx]
	case a.Int32 != nil:
		return float32(a.Int32[idx])
	case a.Uint32 != nil:
		return float32(a.Uint32[idx])
	default:
		return 0
	}
}

// SetComponent writes component c of element i, converting to the backing array's type.
func (a *BufferAttribute) SetComponent(i, c int, v float32) {
	idx := i*a.ItemSize + c
	switch {
	case a.Float32 != nil:
		a.Float32[idx] = v
	case a.Int32 != nil:
		a.Int32[idx] = int32(v)
	case a.Uint32 != nil:
		a.Uint32[idx] = uint32(v)
	}
}

// Vec3 returns element i as a vector. The attribute must have ItemSize >= 3.
func (a *BufferAttribute) Vec3(i int) mgl32.Vec3 {
	return mgl32.Vec3{a.Component(i, 0), a.Component(i, 1), a.Component(i, 2)}
}

// Clone returns a deep copy of a.
func (a *BufferAttribute) Clone() *BufferAttribute {
	cp := *a
	cp.Float32 = cloneSlice(a.Float32)
	cp.Int32 = cloneSlice(a.Int32)
	cp.Uint32 = cloneSlice(a.Uint32)
	return &cp
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// Geometry is a set of vertex attributes with an optional index buffer and morph targets.
type Geometry struct {
	UUID uuid.UUID
	Name string

	Attributes map[string]*BufferAttribute
	Index      *BufferAttribute

	// MorphAttributes maps an attribute name to one attribute per morph target.
	MorphAttributes map[string][]*BufferAttribute

	// MorphTargetsRelative is set when morph attributes hold deltas from the base attribute.
	MorphTargetsRelative bool

	BoundingBox    *Box3
	BoundingSphere *Sphere

	UserData map[string]any
}

// NewGeometry creates an empty geometry with a fresh UUID.
func NewGeometry() *Geometry {
	return &Geometry{
		UUID:            uuid.New(),
		Attributes:      map[string]*BufferAttribute{},
		MorphAttributes: map[string][]*BufferAttribute{},
		UserData:        map[string]any{},
	}
}

// HasAttribute reports whether name is populated.
func (g *Geometry) HasAttribute(name string) bool {
	_, ok := g.Attributes[name]
	return ok
}

// SetAttribute assigns attribute a to name.
func (g *Geometry) SetAttribute(name string, a *BufferAttribute) {
	g.Attributes[name] = a
}

// ComputeBoundingBox derives the bounding box from the position attribute.
func (g *Geometry) ComputeBoundingBox() {
	box := NewBox3()
	if pos, ok := g.Attributes[AttributePosition]; ok {
		for i := 0; i < pos.Count; i++ {
			box.ExpandByPoint(pos.Vec3(i))
		}
	}
	g.BoundingBox = &box
}

// ComputeBoundingSphere derives a sphere centered on the bounding box of the current positions that
// encloses every position. BoundingBox is recomputed as well.
func (g *Geometry) ComputeBoundingSphere() {
	g.ComputeBoundingBox()
	center := g.BoundingBox.Center()
	var maxSq float32
	if pos, ok := g.Attributes[AttributePosition]; ok {
		for i := 0; i < pos.Count; i++ {
			maxSq = max(maxSq, pos.Vec3(i).Sub(center).LenSqr())
		}
	}
	g.BoundingSphere = &Sphere{Center: center, Radius: float32(math.Sqrt(float64(maxSq)))}
}

// Box3 is an axis aligned bounding box.
type Box3 struct {
	Min, Max mgl32.Vec3
}

// NewBox3 returns an empty box that any point expands.
func NewBox3() Box3 {
	inf := float32(math.Inf(1))
	return Box3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// ExpandByPoint grows b to contain p.
func (b *Box3) ExpandByPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// ExpandByVector grows b by v on both sides of each axis.
func (b *Box3) ExpandByVector(v mgl32.Vec3) {
	b.Min = b.Min.Sub(v)
	b.Max = b.Max.Add(v)
}

// Center returns the box midpoint.
func (b Box3) Center() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent along each axis.
func (b Box3) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}
