package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// DracoDecoder decompresses KHR_draco_mesh_compression payloads.
type DracoDecoder interface {
	// DecodeGeometry decodes a compressed buffer view into a geometry.
	//
	// Parameters:
	//   - ctx: cancels the decode
	//   - data: the compressed bytes
	//   - attributeIDs: engine attribute name to draco attribute id
	//   - attributeTypes: engine attribute name to glTF component type
	//
	// Returns:
	//   - *model.Geometry: the decoded attributes and index
	//   - error: error if decoding fails
	DecodeGeometry(ctx context.Context, data []byte, attributeIDs map[string]int, attributeTypes map[string]int) (*model.Geometry, error)
}

// KTX2Decoder transcodes KHR_texture_basisu images.
type KTX2Decoder interface {
	// Transcode converts a KTX2 container into GPU-ready pixel data.
	Transcode(ctx context.Context, data []byte) (*common.TextureStagingData, error)
}

// MeshoptDecoder decompresses EXT_meshopt_compression buffer views.
type MeshoptDecoder interface {
	// Decode decompresses source into dst, which holds count elements of stride bytes.
	// mode is ATTRIBUTES, TRIANGLES or INDICES; filter is NONE, OCTAHEDRAL, QUATERNION or EXPONENTIAL.
	Decode(ctx context.Context, dst []byte, count, stride int, source []byte, mode, filter string) error
}

// ImageDecoder prepares an encoded image for texture use.
type ImageDecoder interface {
	// Decode fills image metadata (and optionally Staging) in place.
	Decode(ctx context.Context, image *common.ImportedImage) error
}

// headerImageDecoder reads image dimensions and leaves pixel decoding to the consumer.
type headerImageDecoder struct{}

var _ ImageDecoder = headerImageDecoder{}

func (headerImageDecoder) Decode(_ context.Context, image *common.ImportedImage) error {
	format, err := image.DecodeConfig()
	if err != nil {
		return err
	}
	if image.MimeType == "" {
		image.MimeType = "image/" + format
	}
	return nil
}

// RGBAImageDecoder decodes PNG, JPEG and WebP sources to RGBA pixels in Staging.
// Use it with WithImageDecoder when textures are uploaded directly from the model.
type RGBAImageDecoder struct{}

var _ ImageDecoder = RGBAImageDecoder{}

func (RGBAImageDecoder) Decode(_ context.Context, image *common.ImportedImage) error {
	format, err := image.DecodeConfig()
	if err != nil {
		return err
	}
	staging, err := image.Decode()
	if err != nil {
		return err
	}
	image.Staging = staging
	if image.MimeType == "" {
		image.MimeType = "image/" + format
	}
	return nil
}

// ktx2ImageDecoder adapts a KTX2Decoder to the ImageDecoder interface.
type ktx2ImageDecoder struct {
	ktx2 KTX2Decoder
}

func (d ktx2ImageDecoder) Decode(ctx context.Context, image *common.ImportedImage) error {
	staging, err := d.ktx2.Transcode(ctx, image.Data)
	if err != nil {
		return err
	}
	image.Staging = staging
	image.Width = int(staging.Width)
	image.Height = int(staging.Height)
	image.MimeType = "image/ktx2"
	return nil
}
