package model

import (
	"maps"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MaterialType selects the shading model a material is instantiated with.
type MaterialType int

const (
	// MaterialTypeStandard is the metallic-roughness model.
	MaterialTypeStandard MaterialType = iota
	// MaterialTypePhysical extends Standard with clearcoat, transmission, volume, ior and specular.
	MaterialTypePhysical
	// MaterialTypeBasic is unlit.
	MaterialTypeBasic
	// MaterialTypeSpecularGlossiness is the legacy specular-glossiness model.
	MaterialTypeSpecularGlossiness
)

func (t MaterialType) String() string {
	switch t {
	case MaterialTypeStandard:
		return "MeshStandardMaterial"
	case MaterialTypePhysical:
		return "MeshPhysicalMaterial"
	case MaterialTypeBasic:
		return "MeshBasicMaterial"
	case MaterialTypeSpecularGlossiness:
		return "MeshStandardSGMaterial"
	default:
		return "UnknownMaterial"
	}
}

// Side selects which faces are rendered.
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Texture slot names.
const (
	MapColor              = "map"
	MapMetalness          = "metalnessMap"
	MapRoughness          = "roughnessMap"
	MapNormal             = "normalMap"
	MapAO                 = "aoMap"
	MapEmissive           = "emissiveMap"
	MapClearcoat          = "clearcoatMap"
	MapClearcoatRoughness = "clearcoatRoughnessMap"
	MapClearcoatNormal    = "clearcoatNormalMap"
	MapSpecularIntensity  = "specularIntensityMap"
	MapSpecularTint       = "specularTintMap"
	MapTransmission       = "transmissionMap"
	MapThickness          = "thicknessMap"
	MapSpecularGlossiness = "specularMap"
	MapGlossiness         = "glossinessMap"
)

// Scalar, color and vector parameter names.
const (
	ParamClearcoat            = "clearcoat"
	ParamClearcoatRoughness   = "clearcoatRoughness"
	ParamIOR                  = "ior"
	ParamSpecularIntensity    = "specularIntensity"
	ParamTransmission         = "transmission"
	ParamThickness            = "thickness"
	ParamAttenuationDistance  = "attenuationDistance"
	ParamAOMapIntensity       = "aoMapIntensity"
	ParamGlossiness           = "glossiness"
	ParamSpecularTint         = "specularTint"
	ParamAttenuationColor     = "attenuationColor"
	ParamSpecular             = "specular"
	ParamNormalScale          = "normalScale"
	ParamClearcoatNormalScale = "clearcoatNormalScale"
)

// MaterialParams accumulates material state before instantiation.
// Core fields are written by the parser before extensions run. Extension parameters and texture slots go
// through the setters, which are safe for concurrent use.
type MaterialParams struct {
	mu sync.RWMutex

	Name        string
	Color       mgl32.Vec3
	Opacity     float32
	Metalness   float32
	Roughness   float32
	Emissive    mgl32.Vec3
	Transparent bool
	DepthWrite  bool
	AlphaTest   float32
	Side        Side

	scalars map[string]float32
	colors  map[string]mgl32.Vec3
	vectors map[string]mgl32.Vec2
	maps    map[string]*Texture
}

// NewMaterialParams returns metallic-roughness defaults: white, opaque, fully metallic and rough.
func NewMaterialParams() *MaterialParams {
	return &MaterialParams{
		Color:      mgl32.Vec3{1, 1, 1},
		Opacity:    1,
		Metalness:  1,
		Roughness:  1,
		DepthWrite: true,
		scalars:    map[string]float32{},
		colors:     map[string]mgl32.Vec3{},
		vectors:    map[string]mgl32.Vec2{},
		maps:       map[string]*Texture{},
	}
}

func (p *MaterialParams) SetScalar(name string, v float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scalars[name] = v
}

func (p *MaterialParams) Scalar(name string) (float32, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.scalars[name]
	return v, ok
}

func (p *MaterialParams) SetColor(name string, v mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors[name] = v
}

func (p *MaterialParams) ColorParam(name string) (mgl32.Vec3, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.colors[name]
	return v, ok
}

func (p *MaterialParams) SetVector(name string, v mgl32.Vec2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vectors[name] = v
}

func (p *MaterialParams) Vector(name string) (mgl32.Vec2, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.vectors[name]
	return v, ok
}

// SetMap assigns a texture to a slot. A nil texture clears the slot.
func (p *MaterialParams) SetMap(slot string, t *Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t == nil {
		delete(p.maps, slot)
		return
	}
	p.maps[slot] = t
}

func (p *MaterialParams) Map(slot string) (*Texture, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.maps[slot]
	return t, ok
}

// Maps returns a copy of every populated texture slot.
func (p *MaterialParams) Maps() map[string]*Texture {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.maps)
}

// Scalars returns a copy of every extension scalar.
func (p *MaterialParams) Scalars() map[string]float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.scalars)
}

// Material is an instantiated material of a fixed type.
type Material struct {
	UUID     uuid.UUID
	Name     string
	Type     MaterialType
	Params   *MaterialParams
	UserData map[string]any
}

// NewMaterial instantiates a material of type t from params.
func NewMaterial(t MaterialType, params *MaterialParams) *Material {
	return &Material{
		UUID:     uuid.New(),
		Name:     params.Name,
		Type:     t,
		Params:   params,
		UserData: map[string]any{},
	}
}
