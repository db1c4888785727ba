package loader

import (
	"context"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const defaultIOR = 1.5

// materialPayload decodes the named extension payload of a material into v.
// Returns false when the material does not use the extension.
func materialPayload(p Parser, name string, materialIndex int, v any) (bool, error) {
	materials := p.Document().Materials
	if materialIndex < 0 || materialIndex >= len(materials) {
		return false, nil
	}
	ok, err := materials[materialIndex].Extensions.Decode(name, v)
	if err != nil {
		return false, fmt.Errorf("invalid %s payload: %w", name, err)
	}
	return ok, nil
}

// physicalExtension selects the physical material type for every material using the named extension.
type physicalExtension struct {
	parser Parser
	name   string
}

func (e *physicalExtension) Name() string {
	return e.name
}

func (e *physicalExtension) MaterialType(materialIndex int) (model.MaterialType, bool) {
	materials := e.parser.Document().Materials
	if materialIndex < 0 || materialIndex >= len(materials) || !materials[materialIndex].Extensions.Has(e.name) {
		return 0, false
	}
	return model.MaterialTypePhysical, true
}

// assign forwards to Parser.AssignTexture when info is set.
func (e *physicalExtension) assign(ctx context.Context, params *model.MaterialParams, slot string, info *gltf.TextureInfo, encoding model.TextureEncoding) error {
	if info == nil {
		return nil
	}
	_, err := e.parser.AssignTexture(ctx, params, slot, info, encoding)
	return err
}

// clearcoatPlugin handles KHR_materials_clearcoat.
type clearcoatPlugin struct {
	physicalExtension
}

func newClearcoatPlugin(p Parser) Plugin {
	return &clearcoatPlugin{physicalExtension{parser: p, name: gltf.ExtensionMaterialsClearcoat}}
}

func (e *clearcoatPlugin) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	var ext gltf.MaterialsClearcoat
	if ok, err := materialPayload(e.parser, e.name, materialIndex, &ext); !ok {
		return err
	}

	if ext.ClearcoatFactor != nil {
		params.SetScalar(model.ParamClearcoat, *ext.ClearcoatFactor)
	}
	if err := e.assign(ctx, params, model.MapClearcoat, ext.ClearcoatTexture, model.LinearEncoding); err != nil {
		return err
	}
	if ext.ClearcoatRoughnessFactor != nil {
		params.SetScalar(model.ParamClearcoatRoughness, *ext.ClearcoatRoughnessFactor)
	}
	if err := e.assign(ctx, params, model.MapClearcoatRoughness, ext.ClearcoatRoughnessTexture, model.LinearEncoding); err != nil {
		return err
	}
	if nt := ext.ClearcoatNormalTexture; nt != nil {
		if err := e.assign(ctx, params, model.MapClearcoatNormal, &nt.TextureInfo, model.LinearEncoding); err != nil {
			return err
		}
		if nt.Scale != nil {
			params.SetVector(model.ParamClearcoatNormalScale, mgl32.Vec2{*nt.Scale, -*nt.Scale})
		}
	}
	return nil
}

// iorPlugin handles KHR_materials_ior.
type iorPlugin struct {
	physicalExtension
}

func newIORPlugin(p Parser) Plugin {
	return &iorPlugin{physicalExtension{parser: p, name: gltf.ExtensionMaterialsIOR}}
}

func (e *iorPlugin) ExtendMaterialParams(_ context.Context, materialIndex int, params *model.MaterialParams) error {
	var ext gltf.MaterialsIOR
	if ok, err := materialPayload(e.parser, e.name, materialIndex, &ext); !ok {
		return err
	}
	params.SetScalar(model.ParamIOR, common.Deref(ext.IOR, defaultIOR))
	return nil
}

// specularPlugin handles KHR_materials_specular.
type specularPlugin struct {
	physicalExtension
}

func newSpecularPlugin(p Parser) Plugin {
	return &specularPlugin{physicalExtension{parser: p, name: gltf.ExtensionMaterialsSpecular}}
}

func (e *specularPlugin) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	var ext gltf.MaterialsSpecular
	if ok, err := materialPayload(e.parser, e.name, materialIndex, &ext); !ok {
		return err
	}

	params.SetScalar(model.ParamSpecularIntensity, common.Deref(ext.SpecularFactor, 1))
	if err := e.assign(ctx, params, model.MapSpecularIntensity, ext.SpecularTexture, model.LinearEncoding); err != nil {
		return err
	}
	tint := mgl32.Vec3{1, 1, 1}
	if ext.SpecularColorFactor != nil {
		tint = mgl32.Vec3(*ext.SpecularColorFactor)
	}
	params.SetColor(model.ParamSpecularTint, tint)
	return e.assign(ctx, params, model.MapSpecularTint, ext.SpecularColorTexture, model.SRGBEncoding)
}

// transmissionPlugin handles KHR_materials_transmission.
type transmissionPlugin struct {
	physicalExtension
}

func newTransmissionPlugin(p Parser) Plugin {
	return &transmissionPlugin{physicalExtension{parser: p, name: gltf.ExtensionMaterialsTransmission}}
}

func (e *transmissionPlugin) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	var ext gltf.MaterialsTransmission
	if ok, err := materialPayload(e.parser, e.name, materialIndex, &ext); !ok {
		return err
	}
	if ext.TransmissionFactor != nil {
		params.SetScalar(model.ParamTransmission, *ext.TransmissionFactor)
	}
	return e.assign(ctx, params, model.MapTransmission, ext.TransmissionTexture, model.LinearEncoding)
}

// volumePlugin handles KHR_materials_volume.
type volumePlugin struct {
	physicalExtension
}

func newVolumePlugin(p Parser) Plugin {
	return &volumePlugin{physicalExtension{parser: p, name: gltf.ExtensionMaterialsVolume}}
}

func (e *volumePlugin) ExtendMaterialParams(ctx context.Context, materialIndex int, params *model.MaterialParams) error {
	var ext gltf.MaterialsVolume
	if ok, err := materialPayload(e.parser, e.name, materialIndex, &ext); !ok {
		return err
	}

	params.SetScalar(model.ParamThickness, common.Deref(ext.ThicknessFactor, 0))
	if err := e.assign(ctx, params, model.MapThickness, ext.ThicknessTexture, model.LinearEncoding); err != nil {
		return err
	}
	params.SetScalar(model.ParamAttenuationDistance, common.Deref(ext.AttenuationDistance, float32(math.Inf(1))))
	color := mgl32.Vec3{1, 1, 1}
	if ext.AttenuationColor != nil {
		color = mgl32.Vec3(*ext.AttenuationColor)
	}
	params.SetColor(model.ParamAttenuationColor, color)
	return nil
}
