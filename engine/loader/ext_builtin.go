package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Built-in extension handlers. The parser creates them from extensionsUsed and consults them directly
// at fixed points, ahead of registered plugins.

// unlitExtension handles KHR_materials_unlit.
type unlitExtension struct {
	parser *parser
}

func (e *unlitExtension) Name() string {
	return gltf.ExtensionMaterialsUnlit
}

func (e *unlitExtension) MaterialType(int) (model.MaterialType, bool) {
	return model.MaterialTypeBasic, true
}

func (e *unlitExtension) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	def := &e.parser.doc.Materials[materialIndex]
	params.Color = mgl32.Vec3{1, 1, 1}
	params.Opacity = 1

	pbr := def.PbrMetallicRoughness
	if pbr == nil {
		return nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		params.Color = mgl32.Vec3{f[0], f[1], f[2]}
		params.Opacity = f[3]
	}
	if pbr.BaseColorTexture != nil {
		if _, err := e.parser.AssignTexture(ctx, params, model.MapColor, pbr.BaseColorTexture, model.SRGBEncoding); err != nil {
			return err
		}
	}
	return nil
}

// specularGlossinessExtension handles KHR_materials_pbrSpecularGlossiness.
type specularGlossinessExtension struct {
	parser *parser
}

func (e *specularGlossinessExtension) Name() string {
	return gltf.ExtensionMaterialsPbrSpecularGloss
}

func (e *specularGlossinessExtension) MaterialType(int) (model.MaterialType, bool) {
	return model.MaterialTypeSpecularGlossiness, true
}

func (e *specularGlossinessExtension) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	def := &e.parser.doc.Materials[materialIndex]
	var sg gltf.MaterialsPbrSpecularGlossiness
	if _, err := def.Extensions.Decode(e.Name(), &sg); err != nil {
		return fmt.Errorf("invalid %s payload: %w", e.Name(), err)
	}

	params.Color = mgl32.Vec3{1, 1, 1}
	params.Opacity = 1
	if f := sg.DiffuseFactor; f != nil {
		params.Color = mgl32.Vec3{f[0], f[1], f[2]}
		params.Opacity = f[3]
	}
	params.SetScalar(model.ParamGlossiness, common.Deref(sg.GlossinessFactor, 1))

	specular := mgl32.Vec3{1, 1, 1}
	if sg.SpecularFactor != nil {
		specular = mgl32.Vec3(*sg.SpecularFactor)
	}
	params.SetColor(model.ParamSpecular, specular)

	if sg.DiffuseTexture != nil {
		if _, err := e.parser.AssignTexture(ctx, params, model.MapColor, sg.DiffuseTexture, model.SRGBEncoding); err != nil {
			return err
		}
	}
	if sg.SpecularGlossinessTexture != nil {
		if _, err := e.parser.AssignTexture(ctx, params, model.MapGlossiness, sg.SpecularGlossinessTexture, model.LinearEncoding); err != nil {
			return err
		}
		if _, err := e.parser.AssignTexture(ctx, params, model.MapSpecularGlossiness, sg.SpecularGlossinessTexture, model.SRGBEncoding); err != nil {
			return err
		}
	}
	return nil
}

// dracoExtension handles KHR_draco_mesh_compression through the injected DracoDecoder.
type dracoExtension struct {
	parser *parser
}

func (e *dracoExtension) Name() string {
	return gltf.ExtensionDracoMeshCompression
}

func (e *dracoExtension) Ready() bool {
	return e.parser.draco != nil
}

// InjectPrimitiveAttributes decodes the compressed buffer view and supplies its attributes and index.
// Each decoded attribute keeps the normalized flag of the primitive's accessor for the same semantic.
func (e *dracoExtension) InjectPrimitiveAttributes(ctx context.Context, primitive *gltf.Primitive, geometry *model.Geometry) (bool, error) {
	var draco gltf.DracoPrimitive
	ok, err := primitive.Extensions.Decode(e.Name(), &draco)
	if !ok {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("invalid %s payload: %w", e.Name(), err)
	}

	doc := e.parser.doc
	ids := make(map[string]int, len(draco.Attributes))
	for semantic, id := range draco.Attributes {
		ids[AttributeName(semantic)] = id
	}
	types := map[string]int{}
	normalized := map[string]bool{}
	for semantic, accIndex := range primitive.Attributes {
		name := AttributeName(semantic)
		if _, ok := draco.Attributes[semantic]; !ok {
			continue
		}
		acc, err := at(doc.Accessors, "accessors", accIndex)
		if err != nil {
			return false, err
		}
		types[name] = acc.ComponentType
		normalized[name] = acc.Normalized
	}

	data, err := e.parser.BufferView(ctx, draco.BufferView)
	if err != nil {
		return false, err
	}
	decoded, err := e.parser.draco.DecodeGeometry(ctx, data, ids, types)
	if err != nil {
		return false, fmt.Errorf("draco decode failed: %w", err)
	}
	if decoded == nil {
		return false, nil
	}

	for name, attr := range decoded.Attributes {
		if geometry.HasAttribute(name) {
			continue
		}
		attr.Normalized = normalized[name]
		geometry.SetAttribute(name, attr)
	}
	if geometry.Index == nil {
		geometry.Index = decoded.Index
	}
	return true, nil
}

// textureTransformExtension handles KHR_texture_transform.
type textureTransformExtension struct {
	parser *parser
}

func (e *textureTransformExtension) Name() string {
	return gltf.ExtensionTextureTransform
}

func (e *textureTransformExtension) ExtendTexture(texture *model.Texture, info *gltf.TextureInfo) *model.Texture {
	var transform gltf.TextureTransform
	ok, err := info.Extensions.Decode(e.Name(), &transform)
	if !ok {
		return texture
	}
	if err != nil {
		e.parser.Warn("ignoring malformed texture transform", "extension", e.Name(), "error", err)
		return texture
	}
	out := ApplyTextureTransform(texture, transform, e.parser.Warn)
	if out != texture {
		e.parser.copyAssociation(texture, out)
	}
	return out
}

// meshQuantizationExtension marks KHR_mesh_quantization as handled. Quantized attributes decode through
// the regular accessor path.
type meshQuantizationExtension struct{}

func (meshQuantizationExtension) Name() string {
	return gltf.ExtensionMeshQuantization
}
