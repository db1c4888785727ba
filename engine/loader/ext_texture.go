package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// textureSource decodes the alternate image source of a texture extension.
// Returns nil when the texture does not use the extension.
func textureSource(p Parser, name string, textureIndex int) (*int, error) {
	textures := p.Document().Textures
	if textureIndex < 0 || textureIndex >= len(textures) {
		return nil, nil
	}
	var ext gltf.TextureSource
	ok, err := textures[textureIndex].Extensions.Decode(name, &ext)
	if err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", name, err)
	}
	if !ok {
		return nil, nil
	}
	return ext.Source, nil
}

// basisUPlugin handles KHR_texture_basisu through the injected KTX2Decoder.
// Without a decoder the texture falls back to its regular source.
type basisUPlugin struct {
	parser Parser
}

func newBasisUPlugin(p Parser) Plugin {
	return &basisUPlugin{parser: p}
}

func (e *basisUPlugin) Name() string {
	return gltf.ExtensionTextureBasisU
}

func (e *basisUPlugin) Ready() bool {
	return e.parser.KTX2Decoder() != nil
}

func (e *basisUPlugin) LoadTexture(ctx context.Context, textureIndex int) (*model.Texture, bool, error) {
	source, err := textureSource(e.parser, e.Name(), textureIndex)
	if err != nil || source == nil {
		return nil, false, err
	}
	if !e.Ready() {
		return nil, false, nil
	}
	tex, err := e.parser.LoadTextureImage(ctx, textureIndex, *source, ktx2ImageDecoder{ktx2: e.parser.KTX2Decoder()})
	return tex, true, err
}

// webPPlugin handles EXT_texture_webp. WebP decoding is always available, so the fallback source is never used.
type webPPlugin struct {
	parser Parser
}

func newWebPPlugin(p Parser) Plugin {
	return &webPPlugin{parser: p}
}

func (e *webPPlugin) Name() string {
	return gltf.ExtensionTextureWebP
}

func (e *webPPlugin) LoadTexture(ctx context.Context, textureIndex int) (*model.Texture, bool, error) {
	source, err := textureSource(e.parser, e.Name(), textureIndex)
	if err != nil || source == nil {
		return nil, false, err
	}
	tex, err := e.parser.LoadTextureImage(ctx, textureIndex, *source, e.parser.ImageDecoder())
	return tex, true, err
}
