package gltf

// Payload types of the extensions recognized by the loader.
// Optional members are pointers so an absent value can fall back to the extension's default.

// TextureTransform is the KHR_texture_transform payload of a texture reference.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_texture_transform
type TextureTransform struct {
	Offset   *[2]float32 `json:"offset,omitempty"`
	Rotation *float32    `json:"rotation,omitempty"`
	Scale    *[2]float32 `json:"scale,omitempty"`
	TexCoord *int        `json:"texCoord,omitempty"`
}

// MaterialsUnlit is the empty KHR_materials_unlit payload.
type MaterialsUnlit struct{}

// MaterialsPbrSpecularGlossiness is the KHR_materials_pbrSpecularGlossiness payload.
type MaterialsPbrSpecularGlossiness struct {
	DiffuseFactor             *[4]float32  `json:"diffuseFactor,omitempty"`
	DiffuseTexture            *TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularFactor            *[3]float32  `json:"specularFactor,omitempty"`
	GlossinessFactor          *float32     `json:"glossinessFactor,omitempty"`
	SpecularGlossinessTexture *TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

// MaterialsClearcoat is the KHR_materials_clearcoat payload.
type MaterialsClearcoat struct {
	ClearcoatFactor           *float32           `json:"clearcoatFactor,omitempty"`
	ClearcoatTexture          *TextureInfo       `json:"clearcoatTexture,omitempty"`
	ClearcoatRoughnessFactor  *float32           `json:"clearcoatRoughnessFactor,omitempty"`
	ClearcoatRoughnessTexture *TextureInfo       `json:"clearcoatRoughnessTexture,omitempty"`
	ClearcoatNormalTexture    *NormalTextureInfo `json:"clearcoatNormalTexture,omitempty"`
}

// MaterialsIOR is the KHR_materials_ior payload.
type MaterialsIOR struct {
	IOR *float32 `json:"ior,omitempty"`
}

// MaterialsSpecular is the KHR_materials_specular payload.
type MaterialsSpecular struct {
	SpecularFactor       *float32     `json:"specularFactor,omitempty"`
	SpecularTexture      *TextureInfo `json:"specularTexture,omitempty"`
	SpecularColorFactor  *[3]float32  `json:"specularColorFactor,omitempty"`
	SpecularColorTexture *TextureInfo `json:"specularColorTexture,omitempty"`
}

// MaterialsTransmission is the KHR_materials_transmission payload.
type MaterialsTransmission struct {
	TransmissionFactor  *float32     `json:"transmissionFactor,omitempty"`
	TransmissionTexture *TextureInfo `json:"transmissionTexture,omitempty"`
}

// MaterialsVolume is the KHR_materials_volume payload.
type MaterialsVolume struct {
	ThicknessFactor     *float32     `json:"thicknessFactor,omitempty"`
	ThicknessTexture    *TextureInfo `json:"thicknessTexture,omitempty"`
	AttenuationDistance *float32     `json:"attenuationDistance,omitempty"`
	AttenuationColor    *[3]float32  `json:"attenuationColor,omitempty"`
}

// TextureSource is the payload shared by KHR_texture_basisu and EXT_texture_webp: an alternate image source.
type TextureSource struct {
	Source *int `json:"source,omitempty"`
}

// LightsPunctual is the document-level KHR_lights_punctual payload.
type LightsPunctual struct {
	Lights []Light `json:"lights"`
}

// Light is one punctual light definition.
type Light struct {
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type"`
	Color     *[3]float32 `json:"color,omitempty"`
	Intensity *float32    `json:"intensity,omitempty"`
	Range     *float32    `json:"range,omitempty"`
	Spot      *LightSpot  `json:"spot,omitempty"`
}

// LightSpot holds the cone angles of a spot light in radians.
type LightSpot struct {
	InnerConeAngle *float32 `json:"innerConeAngle,omitempty"`
	OuterConeAngle *float32 `json:"outerConeAngle,omitempty"`
}

// NodeLight is the node-level KHR_lights_punctual payload.
type NodeLight struct {
	Light *int `json:"light,omitempty"`
}

// MeshoptCompression is the EXT_meshopt_compression payload of a buffer view.
type MeshoptCompression struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride"`
	Count      int    `json:"count"`
	Mode       string `json:"mode"`
	Filter     string `json:"filter,omitempty"`
}

// Meshopt filter names.
const (
	MeshoptFilterNone = "NONE"
)
