package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithScene is an option builder that sets the default scene of the Model.
//
// Parameters:
//   - scene: the default scene
//
// Returns:
//   - ModelBuilderOption: a function that applies the scene option to a model
func WithScene(scene *Scene) ModelBuilderOption {
	return func(m *model) {
		m.scene = scene
	}
}

// WithScenes is an option builder that sets every scene of the Model.
//
// Parameters:
//   - scenes: the scenes in document order
//
// Returns:
//   - ModelBuilderOption: a function that applies the scenes option to a model
func WithScenes(scenes []*Scene) ModelBuilderOption {
	return func(m *model) {
		m.scenes = scenes
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
//
// Parameters:
//   - animations: the animation clips
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations []*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		m.animations = animations
	}
}

// WithCameras is an option builder that sets the cameras of the Model.
//
// Parameters:
//   - cameras: the cameras in document order
//
// Returns:
//   - ModelBuilderOption: a function that applies the cameras option to a model
func WithCameras(cameras []*Camera) ModelBuilderOption {
	return func(m *model) {
		m.cameras = cameras
	}
}

// WithAsset is an option builder that sets the asset metadata of the Model.
//
// Parameters:
//   - asset: the asset metadata
//
// Returns:
//   - ModelBuilderOption: a function that applies the asset option to a model
func WithAsset(asset Asset) ModelBuilderOption {
	return func(m *model) {
		m.asset = asset
	}
}

// WithUserData is an option builder that sets the document-level user data of the Model.
//
// Parameters:
//   - userData: extras and unhandled extensions of the document root
//
// Returns:
//   - ModelBuilderOption: a function that applies the user data option to a model
func WithUserData(userData map[string]any) ModelBuilderOption {
	return func(m *model) {
		if userData != nil {
			m.userData = userData
		}
	}
}

// WithWarnings is an option builder that sets the parse warnings of the Model.
//
// Parameters:
//   - warnings: the warning messages
//
// Returns:
//   - ModelBuilderOption: a function that applies the warnings option to a model
func WithWarnings(warnings []string) ModelBuilderOption {
	return func(m *model) {
		m.warnings = warnings
	}
}

// WithAssociations is an option builder that sets the engine object to document origin map of the Model.
//
// Parameters:
//   - associations: the association map
//
// Returns:
//   - ModelBuilderOption: a function that applies the associations option to a model
func WithAssociations(associations map[any]Association) ModelBuilderOption {
	return func(m *model) {
		if associations != nil {
			m.associations = associations
		}
	}
}
