package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// ApplyTextureTransform applies a KHR_texture_transform descriptor to texture.
// Without offset, rotation or scale the input texture is returned unchanged. Otherwise a clone carries the
// transform and is marked for re-upload; the input is never modified. A texCoord override is not supported
// and is only reported through warn.
//
// Parameters:
//   - texture: the shared texture
//   - transform: the transform descriptor
//   - warn: receives unsupported-feature warnings, may be nil
//
// Returns:
//   - *model.Texture: texture itself or a transformed clone
func ApplyTextureTransform(texture *model.Texture, transform gltf.TextureTransform, warn func(msg string, args ...any)) *model.Texture {
	if transform.TexCoord != nil && *transform.TexCoord != 0 && warn != nil {
		warn("custom UV sets in texture transform not supported", "extension", gltf.ExtensionTextureTransform, "texCoord", *transform.TexCoord)
	}
	if transform.Offset == nil && transform.Rotation == nil && transform.Scale == nil {
		return texture
	}

	clone := texture.Clone()
	if transform.Offset != nil {
		clone.Offset = mgl32.Vec2(*transform.Offset)
	}
	if transform.Rotation != nil {
		clone.Rotation = *transform.Rotation
	}
	if transform.Scale != nil {
		clone.Repeat = mgl32.Vec2(*transform.Scale)
	}
	clone.NeedsUpdate = true
	return clone
}
