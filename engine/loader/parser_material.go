package loader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

const defaultAlphaCutoff = 0.5

// loadMaterial builds a material in two phases: the material type is selected first (built-in
// specular-glossiness or unlit handlers, otherwise the first plugin that claims it), then every parameter
// extender contributes before the material is instantiated.
func (p *parser) loadMaterial(ctx context.Context, index int) (*model.Material, error) {
	def, err := at(p.doc.Materials, "materials", index)
	if err != nil {
		return nil, err
	}

	params := model.NewMaterialParams()
	params.Name = def.Name
	mtype := model.MaterialTypeStandard

	g, gctx := errgroup.WithContext(ctx)
	assign := func(slot string, info *gltf.TextureInfo, encoding model.TextureEncoding) {
		g.Go(func() error {
			_, err := p.AssignTexture(gctx, params, slot, info, encoding)
			return err
		})
	}

	var extenders []MaterialParamsExtender
	sg, hasSG := p.extensions[gltf.ExtensionMaterialsPbrSpecularGloss].(*specularGlossinessExtension)
	unlit, hasUnlit := p.extensions[gltf.ExtensionMaterialsUnlit].(*unlitExtension)
	switch {
	case hasSG && def.Extensions.Has(gltf.ExtensionMaterialsPbrSpecularGloss):
		mtype, _ = sg.MaterialType(index)
		extenders = append(extenders, sg)
	case hasUnlit && def.Extensions.Has(gltf.ExtensionMaterialsUnlit):
		mtype, _ = unlit.MaterialType(index)
		extenders = append(extenders, unlit)
	default:
		if pbr := def.PbrMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				params.Color = mgl32.Vec3{f[0], f[1], f[2]}
				params.Opacity = f[3]
			}
			if pbr.BaseColorTexture != nil {
				assign(model.MapColor, pbr.BaseColorTexture, model.SRGBEncoding)
			}
			params.Metalness = common.Deref(pbr.MetallicFactor, 1)
			params.Roughness = common.Deref(pbr.RoughnessFactor, 1)
			if pbr.MetallicRoughnessTexture != nil {
				assign(model.MapMetalness, pbr.MetallicRoughnessTexture, model.LinearEncoding)
				assign(model.MapRoughness, pbr.MetallicRoughnessTexture, model.LinearEncoding)
			}
		}

		for _, pl := range p.plugins {
			if tp, ok := pl.(MaterialTypeProvider); ok {
				if t, ok := tp.MaterialType(index); ok {
					mtype = t
					break
				}
			}
		}
		for _, pl := range p.plugins {
			if ext, ok := pl.(MaterialParamsExtender); ok {
				extenders = append(extenders, ext)
			}
		}
	}

	if def.DoubleSided {
		params.Side = model.DoubleSide
	}
	switch def.AlphaMode {
	case gltf.AlphaModeBlend:
		params.Transparent = true
		params.DepthWrite = false
	case gltf.AlphaModeMask:
		params.AlphaTest = common.Deref(def.AlphaCutoff, defaultAlphaCutoff)
	}

	if mtype != model.MaterialTypeBasic {
		if nt := def.NormalTexture; nt != nil {
			assign(model.MapNormal, &nt.TextureInfo, model.LinearEncoding)
			scale := common.Deref(nt.Scale, 1)
			params.SetVector(model.ParamNormalScale, mgl32.Vec2{scale, -scale})
		}
		if ot := def.OcclusionTexture; ot != nil {
			assign(model.MapAO, &ot.TextureInfo, model.LinearEncoding)
			if ot.Strength != nil {
				params.SetScalar(model.ParamAOMapIntensity, *ot.Strength)
			}
		}
		if def.EmissiveTexture != nil {
			assign(model.MapEmissive, def.EmissiveTexture, model.SRGBEncoding)
		}
	}

	g.Go(func() error {
		for _, ext := range extenders {
			if err := ext.ExtendMaterialParams(gctx, index, params); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// emissiveFactor overrides whatever an extender left in Emissive
	if f := def.EmissiveFactor; f != nil && mtype != model.MaterialTypeBasic {
		params.Emissive = mgl32.Vec3(*f)
	}

	material := model.NewMaterial(mtype, params)
	p.assignExtras(material.UserData, def.Extras)
	p.addUnknownExtensions(material.UserData, def.Extensions)
	p.associate(material, KindMaterial, index, -1)
	return material, nil
}

func (p *parser) AssignTexture(ctx context.Context, params *model.MaterialParams, slot string, info *gltf.TextureInfo, encoding model.TextureEncoding) (*model.Texture, error) {
	if info == nil {
		return nil, nil
	}
	tex, err := p.Texture(ctx, info.Index)
	if err != nil || tex == nil {
		return nil, err
	}

	if info.TexCoord != 0 && !info.Extensions.Has(gltf.ExtensionTextureTransform) {
		p.Warn("custom UV set not supported", "texCoord", info.TexCoord, "slot", slot)
	}

	if tt, ok := p.extensions[gltf.ExtensionTextureTransform].(TextureExtender); ok {
		tex = tt.ExtendTexture(tex, info)
	}
	for _, pl := range p.plugins {
		if te, ok := pl.(TextureExtender); ok {
			tex = te.ExtendTexture(tex, info)
		}
	}

	if encoding == model.SRGBEncoding && tex.Encoding != model.SRGBEncoding {
		if tex, err = p.srgbTexture(ctx, tex); err != nil {
			return nil, err
		}
	}

	params.SetMap(slot, tex)
	return tex, nil
}

// srgbTexture returns the shared sRGB variant of tex.
func (p *parser) srgbTexture(ctx context.Context, tex *model.Texture) (*model.Texture, error) {
	v, err := p.resolve(ctx, "texture:srgb:"+tex.UUID.String(), "texture", KindTexture, -1, func(context.Context) (any, error) {
		clone := tex.Clone()
		clone.Encoding = model.SRGBEncoding
		p.copyAssociation(tex, clone)
		return clone, nil
	})
	return dependencyAs[*model.Texture](v, err)
}

func (p *parser) loadTexture(ctx context.Context, index int) (*model.Texture, error) {
	def, err := at(p.doc.Textures, "textures", index)
	if err != nil {
		return nil, err
	}

	for _, pl := range p.plugins {
		if tl, ok := pl.(TextureLoader); ok {
			tex, handled, err := tl.LoadTexture(ctx, index)
			if err != nil {
				return nil, err
			}
			if handled {
				return tex, nil
			}
		}
	}

	if def.Source == nil {
		p.Warn("texture has no source", "kind", KindTexture, "index", index)
		return nil, nil
	}
	return p.LoadTextureImage(ctx, index, *def.Source, p.image)
}

func (p *parser) LoadTextureImage(ctx context.Context, textureIndex, sourceIndex int, decoder ImageDecoder) (*model.Texture, error) {
	def, err := at(p.doc.Textures, "textures", textureIndex)
	if err != nil {
		return nil, err
	}
	if _, err := at(p.doc.Images, "images", sourceIndex); err != nil {
		return nil, err
	}
	sampler := ""
	if def.Sampler != nil {
		if _, err := at(p.doc.Samplers, "samplers", *def.Sampler); err != nil {
			return nil, err
		}
		sampler = strconv.Itoa(*def.Sampler)
	}

	key := fmt.Sprintf("textureImage:%d:%s:%T", sourceIndex, sampler, decoder)
	v, err := p.resolve(ctx, key, "textureImage", KindTexture, textureIndex, func(ctx context.Context) (any, error) {
		src, err := p.imageSource(ctx, sourceIndex)
		if err != nil || src == nil {
			return nil, err
		}

		img := *src
		if err := decoder.Decode(ctx, &img); err != nil {
			p.Warn("could not decode texture image", "kind", KindTexture, "index", textureIndex, "image", sourceIndex, "error", err)
			return nil, nil
		}

		tex := model.NewTexture(&img)
		tex.FlipY = false
		tex.Name = common.Coalesce(def.Name, img.Name)
		if def.Sampler != nil {
			tex.Sampler = samplerToStagingData(&p.doc.Samplers[*def.Sampler])
		}
		p.associate(tex, KindTexture, textureIndex, -1)
		return tex, nil
	})
	return dependencyAs[*model.Texture](v, err)
}

// samplerToStagingData converts a glTF sampler definition into engine-ready SamplerStagingData.
// Any unset fields fall back to linear filtering and repeat wrapping.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the glTF sampler to convert
//
// Returns:
//   - *common.SamplerStagingData: the converted sampler staging data
func samplerToStagingData(s *gltf.Sampler) *common.SamplerStagingData {
	result := common.DefaultSamplerStagingData()

	if s.MagFilter != nil {
		switch *s.MagFilter {
		case gltf.FilterNearest:
			result.MagFilter = wgpu.FilterModeNearest
		case gltf.FilterLinear:
			result.MagFilter = wgpu.FilterModeLinear
		}
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltf.FilterNearest, gltf.FilterNearestMipmapNearest, gltf.FilterNearestMipmapLinear:
			result.MinFilter = wgpu.FilterModeNearest
		case gltf.FilterLinear, gltf.FilterLinearMipmapNearest, gltf.FilterLinearMipmapLinear:
			result.MinFilter = wgpu.FilterModeLinear
		}
		switch *s.MinFilter {
		case gltf.FilterNearestMipmapNearest, gltf.FilterLinearMipmapNearest:
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		case gltf.FilterNearestMipmapLinear, gltf.FilterLinearMipmapLinear:
			result.MipmapFilter = wgpu.MipmapFilterModeLinear
		case gltf.FilterNearest, gltf.FilterLinear:
			// no mip chain is sampled
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		}
	}

	if s.WrapS != nil {
		result.AddressModeU = wrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.AddressModeV = wrapToAddressMode(*s.WrapT)
	}
	return result
}

// wrapToAddressMode converts a glTF wrap mode constant to a wgpu AddressMode. Unknown modes repeat.
func wrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
