package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// Plugin handles one glTF extension for the duration of a single parse.
// A plugin implements any subset of the hook interfaces below; the parser detects each capability
// by type assertion and consults plugins in registration order.
type Plugin interface {
	// Name returns the extension name the plugin handles.
	Name() string
}

// PluginFactory creates a Plugin for one parse. Factories are registered by pointer identity.
type PluginFactory struct {
	// Name is the extension name, used by Config.DisabledPlugins.
	Name string

	// New builds the plugin around the active parser.
	New func(p Parser) Plugin
}

// MaterialTypeProvider overrides the material type. The first plugin returning ok wins.
type MaterialTypeProvider interface {
	MaterialType(materialIndex int) (model.MaterialType, bool)
}

// MaterialParamsExtender contributes material parameters. Every extender runs, in registration order.
type MaterialParamsExtender interface {
	ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error
}

// PrimitiveAttributeInjector supplies primitive attributes ahead of the accessor path.
// Attributes it sets are skipped by the standard assignment. handled reports whether it acted.
type PrimitiveAttributeInjector interface {
	InjectPrimitiveAttributes(ctx context.Context, primitive *gltf.Primitive, geometry *model.Geometry) (handled bool, err error)
}

// NodeAttachmentProvider attaches non-standard payloads to a node. A nil attachment is ignored.
type NodeAttachmentProvider interface {
	NodeAttachment(ctx context.Context, nodeIndex int) (any, error)
}

// TextureLoader replaces the image source of a texture. The first plugin returning ok wins.
type TextureLoader interface {
	LoadTexture(ctx context.Context, textureIndex int) (*model.Texture, bool, error)
}

// TextureExtender specializes a texture for one texture reference. Implementations must clone before mutating.
type TextureExtender interface {
	ExtendTexture(texture *model.Texture, info *gltf.TextureInfo) *model.Texture
}

// BufferViewLoader replaces the bytes of a buffer view. The first plugin returning ok wins.
type BufferViewLoader interface {
	LoadBufferView(ctx context.Context, bufferViewIndex int) ([]byte, bool, error)
}

// DependencyLoader constructs a dependency kind the core does not know. The first plugin returning ok wins.
type DependencyLoader interface {
	LoadDependency(ctx context.Context, kind DependencyKind, index int) (any, bool, error)
}

// DecoderRequirer is implemented by extensions backed by an injected decoder.
// Ready reports false when the decoder is absent.
type DecoderRequirer interface {
	Ready() bool
}
