// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSamplerStagingData returns linear filtering with repeat wrapping on every axis.
//
// Returns:
//   - *SamplerStagingData: a new sampler configuration
func DefaultSamplerStagingData() *SamplerStagingData {
	return &SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// ImportedImage represents encoded image data referenced by a model file.
// The bytes stay encoded until Decode is called; compressed GPU formats (KTX2) carry their transcoded
// payload in Staging instead.
type ImportedImage struct {
	// Name is an identifier for this image.
	Name string

	// URI is the resolved source location, empty for images embedded in a buffer view.
	URI string

	// Data contains the encoded image bytes (PNG/JPEG/WebP).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/webp").
	MimeType string

	// Width is the image width in pixels (populated after Decode).
	Width int

	// Height is the image height in pixels (populated after Decode).
	Height int

	// Staging holds pixel data supplied directly by a texture decoder.
	Staging *TextureStagingData
}

// Decode decodes the image to raw RGBA pixel data.
// Supports PNG, JPEG and WebP. Images that already carry Staging data return it unchanged.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - *TextureStagingData: RGBA pixels with dimensions
//   - error: error if decoding fails
func (i *ImportedImage) Decode() (*TextureStagingData, error) {
	if i == nil {
		return nil, fmt.Errorf("image is nil")
	}
	if i.Staging != nil {
		return i.Staging, nil
	}
	if len(i.Data) == 0 {
		return nil, fmt.Errorf("image %q has no data", i.Name)
	}

	img, _, err := image.Decode(bytes.NewReader(i.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", i.Name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	i.Width = bounds.Dx()
	i.Height = bounds.Dy()

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(i.Width),
		Height: uint32(i.Height),
	}, nil
}

// DecodeConfig reads the image dimensions without decoding pixels.
//
// Returns:
//   - string: the detected format name
//   - error: error if the header cannot be read
func (i *ImportedImage) DecodeConfig() (string, error) {
	if i == nil || len(i.Data) == 0 {
		return "", fmt.Errorf("image has no data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(i.Data))
	if err != nil {
		return "", fmt.Errorf("failed to read image header: %w", err)
	}
	i.Width = cfg.Width
	i.Height = cfg.Height
	return format, nil
}
