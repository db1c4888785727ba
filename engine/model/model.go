package model

// model is the implementation of the Model interface.
type model struct {
	name         string
	scene        *Scene
	scenes       []*Scene
	animations   []*AnimationClip
	cameras      []*Camera
	asset        Asset
	userData     map[string]any
	warnings     []string
	associations map[any]Association
}

// Model defines the interface for a loaded glTF asset.
// A Model holds the assembled scene graph together with the auxiliary tables of the asset: every scene,
// animation clips, cameras, asset metadata and the document-level user data.
// It is produced by the Loader once the whole dependency graph of the asset has resolved.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Scene retrieves the default scene, or the first scene when the document declares no default.
	// Returns nil for assets without scenes.
	//
	// Returns:
	//   - *Scene: the default scene or nil
	Scene() *Scene

	// Scenes retrieves every scene in document order.
	//
	// Returns:
	//   - []*Scene: the scenes
	Scenes() []*Scene

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of animation clips.
	//
	// Returns:
	//   - int: the clip count
	AnimationCount() int

	// AnimationNames returns the clip names in document order.
	//
	// Returns:
	//   - []string: the clip names
	AnimationNames() []string

	// GetAnimationIndex looks up a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - int: the clip index, or -1 if not found
	GetAnimationIndex(name string) int

	// Cameras retrieves every camera in document order.
	//
	// Returns:
	//   - []*Camera: the cameras
	Cameras() []*Camera

	// Asset retrieves the asset metadata block.
	//
	// Returns:
	//   - Asset: the asset metadata
	Asset() Asset

	// UserData retrieves the document-level extras and unhandled extensions.
	//
	// Returns:
	//   - map[string]any: the user data
	UserData() map[string]any

	// Warnings retrieves the non-fatal issues reported while parsing.
	//
	// Returns:
	//   - []string: the warning messages in emission order
	Warnings() []string

	// Association looks up the document origin of an engine object.
	//
	// Parameters:
	//   - obj: a *Node, *Mesh, *Material, *Texture, *Camera or *Geometry from this model
	//
	// Returns:
	//   - Association: the document kind and index
	//   - bool: true if obj was produced by this model
	Association(obj any) (Association, bool)

	// Skinned reports whether any node of any scene binds a skin.
	//
	// Returns:
	//   - bool: true if a skin is bound
	Skinned() bool

	// BoundingBox returns the union of the geometry bounds of the default scene in mesh local space.
	//
	// Returns:
	//   - Box3: the bounds, empty when the scene has no geometry
	BoundingBox() Box3
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		userData:     map[string]any{},
		associations: map[any]Association{},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.scene == nil && len(m.scenes) > 0 {
		m.scene = m.scenes[0]
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Scene() *Scene {
	return m.scene
}

func (m *model) Scenes() []*Scene {
	return m.scenes
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, a := range m.animations {
		names[i] = a.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, a := range m.animations {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) Cameras() []*Camera {
	return m.cameras
}

func (m *model) Asset() Asset {
	return m.asset
}

func (m *model) UserData() map[string]any {
	return m.userData
}

func (m *model) Warnings() []string {
	return m.warnings
}

func (m *model) Association(obj any) (Association, bool) {
	a, ok := m.associations[obj]
	return a, ok
}

func (m *model) Skinned() bool {
	for _, s := range m.scenes {
		skinned := false
		s.Traverse(func(n *Node) {
			if n.Skin != nil {
				skinned = true
			}
		})
		if skinned {
			return true
		}
	}
	return false
}

func (m *model) BoundingBox() Box3 {
	box := NewBox3()
	if m.scene == nil {
		return box
	}
	m.scene.Traverse(func(n *Node) {
		if n.Mesh == nil {
			return
		}
		for _, p := range n.Mesh.Primitives {
			if p.Geometry == nil {
				continue
			}
			if p.Geometry.BoundingBox == nil {
				p.Geometry.ComputeBoundingBox()
			}
			if p.Geometry.BoundingBox.IsEmpty() {
				continue
			}
			box.ExpandByPoint(p.Geometry.BoundingBox.Min)
			box.ExpandByPoint(p.Geometry.BoundingBox.Max)
		}
	})
	return box
}
