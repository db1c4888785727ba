package model

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureClone(t *testing.T) {
	tex := NewTexture(nil)
	tex.UserData["k"] = "v"

	clone := tex.Clone()
	clone.Sampler.MaxAnisotropy = 8
	clone.UserData["k"] = "changed"

	assert.NotEqual(t, tex.UUID, clone.UUID)
	assert.Equal(t, uint16(1), tex.Sampler.MaxAnisotropy)
	assert.Equal(t, "v", tex.UserData["k"])
}

func TestTextureUVTransform(t *testing.T) {
	tex := NewTexture(nil)
	assert.True(t, tex.UVTransform().ApproxEqual(mgl32.Ident3()))

	tex.Offset = mgl32.Vec2{0.5, 0.25}
	m := tex.UVTransform()
	uv := m.Mul3x1(mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 0.5, uv.X(), 1e-6)
	assert.InDelta(t, 0.25, uv.Y(), 1e-6)

	tex.Offset = mgl32.Vec2{}
	tex.Rotation = math.Pi / 2
	uv = tex.UVTransform().Mul3x1(mgl32.Vec3{1, 0, 1})
	assert.InDelta(t, 0, uv.X(), 1e-6)
	assert.InDelta(t, -1, uv.Y(), 1e-6)
}

func TestGeometryBounds(t *testing.T) {
	g := NewGeometry()
	g.ComputeBoundingBox()
	assert.True(t, g.BoundingBox.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, g.BoundingBox.Center())

	g.SetAttribute(AttributePosition, &BufferAttribute{
		ItemSize: 3,
		Count:    2,
		Float32:  []float32{-1, 0, 0, 1, 2, 0},
	})
	g.ComputeBoundingSphere()
	require.NotNil(t, g.BoundingBox)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, g.BoundingBox.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, g.BoundingBox.Max)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, g.BoundingSphere.Center)
	assert.InDelta(t, math.Sqrt2, g.BoundingSphere.Radius, 1e-6)

	g.Attributes[AttributePosition].Float32 = []float32{0, 0, 0, 4, 0, 0}
	g.ComputeBoundingSphere()
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, g.BoundingBox.Max, "stale box is replaced")
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, g.BoundingSphere.Center)
	assert.InDelta(t, 2, g.BoundingSphere.Radius, 1e-6)
}

func TestBufferAttributeAccess(t *testing.T) {
	a := &BufferAttribute{ItemSize: 2, Count: 2, Uint32: []uint32{1, 2, 3, 4}}
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, float32(3), a.Component(1, 0))

	cp := a.Clone()
	cp.SetComponent(1, 0, 9)
	assert.Equal(t, uint32(9), cp.Uint32[2])
	assert.Equal(t, uint32(3), a.Uint32[2])
}

func TestMaterialParamsConcurrentSetters(t *testing.T) {
	params := NewMaterialParams()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			params.SetScalar(ParamIOR, float32(i))
			params.SetMap(MapColor, NewTexture(nil))
		}()
	}
	wg.Wait()

	_, ok := params.Scalar(ParamIOR)
	assert.True(t, ok)
	assert.Len(t, params.Maps(), 1)

	params.SetMap(MapColor, nil)
	_, ok = params.Map(MapColor)
	assert.False(t, ok)
}

func TestModelQueries(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	geometry := NewGeometry()
	geometry.BoundingBox = &Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{2, 1, 1}}
	child.Mesh = &Mesh{Name: "m", Primitives: []*MeshPrimitive{{Geometry: geometry}}}
	child.Skin = &Skin{Name: "s"}
	root.Add(child)

	m := NewModel(
		WithName("asset"),
		WithScenes([]*Scene{{Name: "main", Nodes: []*Node{root}}}),
		WithAnimations([]*AnimationClip{{Name: "walk"}, {Name: "run"}}),
		WithAssociations(map[any]Association{root: {Kind: "node", Index: 0, Primitive: -1}}),
	)

	assert.Equal(t, "asset", m.Name())
	require.NotNil(t, m.Scene(), "first scene is the default")
	assert.Equal(t, "main", m.Scene().Name)
	assert.Equal(t, []string{"walk", "run"}, m.AnimationNames())
	assert.Equal(t, 1, m.GetAnimationIndex("run"))
	assert.Equal(t, -1, m.GetAnimationIndex("jump"))
	assert.True(t, m.Skinned())

	box := m.BoundingBox()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, box.Min)
	assert.Equal(t, mgl32.Vec3{2, 1, 1}, box.Max)

	a, ok := m.Association(root)
	require.True(t, ok)
	assert.Equal(t, 0, a.Index)
	_, ok = m.Association(child)
	assert.False(t, ok)
}

func TestNodeLocalMatrix(t *testing.T) {
	n := NewNode("n")
	n.Translation = mgl32.Vec3{1, 2, 3}
	n.Scale = mgl32.Vec3{2, 2, 2}

	p := n.LocalMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{3, 2, 3, 1}, p)

	explicit := mgl32.Ident4()
	n.Matrix = &explicit
	assert.Equal(t, mgl32.Ident4(), n.LocalMatrix())
}
