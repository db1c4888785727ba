package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// TextureEncoding identifies the color space of texel data.
type TextureEncoding int

const (
	LinearEncoding TextureEncoding = iota
	SRGBEncoding
)

// Texture pairs an image with sampling state and a UV transform.
// Textures are shared between materials; specialize a shared texture with Clone, never in place.
type Texture struct {
	UUID uuid.UUID
	Name string

	// Image is shared by every clone.
	Image *common.ImportedImage

	Sampler *common.SamplerStagingData

	Offset   mgl32.Vec2
	Repeat   mgl32.Vec2
	Center   mgl32.Vec2
	Rotation float32

	FlipY    bool
	Encoding TextureEncoding

	// NeedsUpdate marks the texture for re-upload.
	NeedsUpdate bool

	UserData map[string]any
}

// NewTexture creates a texture with identity UV transform around image.
func NewTexture(image *common.ImportedImage) *Texture {
	return &Texture{
		UUID:     uuid.New(),
		Image:    image,
		Sampler:  common.DefaultSamplerStagingData(),
		Repeat:   mgl32.Vec2{1, 1},
		FlipY:    true,
		UserData: map[string]any{},
	}
}

// Clone returns a copy of t with a new UUID. The image is shared.
func (t *Texture) Clone() *Texture {
	cp := *t
	cp.UUID = uuid.New()
	if t.Sampler != nil {
		s := *t.Sampler
		cp.Sampler = &s
	}
	cp.UserData = make(map[string]any, len(t.UserData))
	for k, v := range t.UserData {
		cp.UserData[k] = v
	}
	return &cp
}

// UVTransform returns the 3x3 matrix applying offset, repeat and rotation about Center.
func (t *Texture) UVTransform() mgl32.Mat3 {
	c := float32(math.Cos(float64(t.Rotation)))
	s := float32(math.Sin(float64(t.Rotation)))
	sx, sy := t.Repeat.X(), t.Repeat.Y()
	cx, cy := t.Center.X(), t.Center.Y()
	tx, ty := t.Offset.X(), t.Offset.Y()

	// column-major
	return mgl32.Mat3{
		sx * c, -sy * s, 0,
		sx * s, sy * c, 0,
		-sx*(c*cx+s*cy) + cx + tx, -sy*(-s*cx+c*cy) + cy + ty, 1,
	}
}
