package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Asset carries the metadata block of a loaded asset.
type Asset struct {
	Version    string
	MinVersion string
	Generator  string
	Copyright  string
}

// Association records the document table and index an engine object was built from.
type Association struct {
	// Kind is the dependency kind, e.g. "mesh" or "material".
	Kind string

	// Index is the position in the document table.
	Index int

	// Primitive is the primitive index for objects built per primitive, -1 otherwise.
	Primitive int
}

// --- Scene Graph ---

// Scene is a named set of root nodes.
type Scene struct {
	Name     string
	Nodes    []*Node
	UserData map[string]any
}

// Traverse visits every node reachable from the scene roots, parents before children.
func (s *Scene) Traverse(fn func(*Node)) {
	for _, n := range s.Nodes {
		n.Traverse(fn)
	}
}

// Node is a transform in the scene hierarchy carrying optional mesh, camera and extension attachments.
type Node struct {
	// Name is unique within a loaded asset.
	Name string

	// IsBone is set for nodes referenced as skin joints.
	IsBone bool

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	// Matrix is set when the document declared an explicit matrix instead of TRS.
	Matrix *mgl32.Mat4

	Mesh   *Mesh
	Camera *Camera
	Skin   *Skin

	// Attachments hold payloads contributed by extensions, e.g. punctual lights.
	Attachments []any

	// MorphTargetInfluences are the node's morph weights, overriding the mesh defaults.
	MorphTargetInfluences []float32

	Children []*Node
	UserData map[string]any
}

// NewNode creates a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		UserData: map[string]any{},
	}
}

// Add appends child nodes.
func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(n.Rotation.Normalize().Mat4()).Mul4(s)
}

// Traverse visits n and its descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Lights returns the light attachments of n.
func (n *Node) Lights() []*Light {
	var lights []*Light
	for _, a := range n.Attachments {
		if l, ok := a.(*Light); ok {
			lights = append(lights, l)
		}
	}
	return lights
}

// Mesh groups primitives drawn under one node.
type Mesh struct {
	Name       string
	Primitives []*MeshPrimitive

	// Weights are the default morph target weights.
	Weights  []float32
	UserData map[string]any
}

// Clone returns a mesh with its own primitive list. Geometry and materials stay shared.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:       m.Name,
		Primitives: make([]*MeshPrimitive, len(m.Primitives)),
		Weights:    append([]float32(nil), m.Weights...),
		UserData:   m.UserData,
	}
	for i, p := range m.Primitives {
		cp := *p
		out.Primitives[i] = &cp
	}
	return out
}

// MeshPrimitive is one draw call: geometry, material and topology.
type MeshPrimitive struct {
	Name     string
	Geometry *Geometry
	Material *Material

	// Mode is the glTF topology constant.
	Mode int

	// Skinned is set when the owning node binds a skin.
	Skinned bool
}

// Skin binds joints to a mesh for skeletal deformation.
type Skin struct {
	Name                string
	Joints              []*Node
	InverseBindMatrices []mgl32.Mat4
	Skeleton            *Node
}

// --- Cameras and Lights ---

// CameraType identifies a projection model.
type CameraType string

const (
	CameraTypePerspective  CameraType = "perspective"
	CameraTypeOrthographic CameraType = "orthographic"
)

// Camera holds projection parameters. Angles are radians.
type Camera struct {
	Name string
	Type CameraType

	// Perspective
	Yfov        float32
	AspectRatio float32

	// Orthographic half extents
	Xmag, Ymag float32

	Znear, Zfar float32
	UserData    map[string]any
}

// Clone returns a copy of c.
func (c *Camera) Clone() *Camera {
	cp := *c
	return &cp
}

// Projection returns the camera projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	if c.Type == CameraTypeOrthographic {
		return mgl32.Ortho(-c.Xmag, c.Xmag, -c.Ymag, c.Ymag, c.Znear, c.Zfar)
	}
	return mgl32.Perspective(c.Yfov, c.AspectRatio, c.Znear, c.Zfar)
}

// LightType identifies a punctual light model.
type LightType string

const (
	LightTypeDirectional LightType = "directional"
	LightTypePoint       LightType = "point"
	LightTypeSpot        LightType = "spot"
)

// Light is a punctual light source. Range 0 means unlimited.
type Light struct {
	Name      string
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Range     float32

	// Spot cone angles in radians.
	InnerConeAngle float32
	OuterConeAngle float32
}

// DefaultOuterConeAngle is the spot light outer cone when none is declared.
const DefaultOuterConeAngle = float32(math.Pi / 4)

// --- Animation Types ---

// AnimationClip represents a single animation (walk, run, attack, etc.).
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// Tracks contains one keyframe track per animated node property.
	Tracks []*KeyframeTrack
}

// KeyframeTrack animates one property of one node.
type KeyframeTrack struct {
	// Target is the animated node.
	Target *Node

	// Path is translation, rotation, scale or weights.
	Path string

	// Interpolation is LINEAR, STEP or CUBICSPLINE.
	Interpolation string

	// Times are keyframe times in seconds.
	Times []float32

	// Values are flattened keyframe values, ItemSize per key (three per key for CUBICSPLINE tangents).
	Values []float32

	ItemSize int
}
