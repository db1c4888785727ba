package gltf

// ComponentType constants
const (
	ComponentTypeByte          = 5120
	ComponentTypeUnsignedByte  = 5121
	ComponentTypeShort         = 5122
	ComponentTypeUnsignedShort = 5123
	ComponentTypeUnsignedInt   = 5125
	ComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	AccessorTypeScalar = "SCALAR"
	AccessorTypeVec2   = "VEC2"
	AccessorTypeVec3   = "VEC3"
	AccessorTypeVec4   = "VEC4"
	AccessorTypeMat2   = "MAT2"
	AccessorTypeMat3   = "MAT3"
	AccessorTypeMat4   = "MAT4"
)

// PrimitiveMode constants
const (
	PrimitiveModePoints        = 0
	PrimitiveModeLines         = 1
	PrimitiveModeLineLoop      = 2
	PrimitiveModeLineStrip     = 3
	PrimitiveModeTriangles     = 4
	PrimitiveModeTriangleStrip = 5
	PrimitiveModeTriangleFan   = 6
)

// Sampler filter constants
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// Alpha modes
const (
	AlphaModeOpaque = "OPAQUE"
	AlphaModeMask   = "MASK"
	AlphaModeBlend  = "BLEND"
)

// Animation interpolation constants
const (
	InterpolationLinear      = "LINEAR"
	InterpolationStep        = "STEP"
	InterpolationCubicSpline = "CUBICSPLINE"
)

// Animation path constants
const (
	AnimationPathTranslation = "translation"
	AnimationPathRotation    = "rotation"
	AnimationPathScale       = "scale"
	AnimationPathWeights     = "weights"
)

// Camera types
const (
	CameraTypePerspective  = "perspective"
	CameraTypeOrthographic = "orthographic"
)

// GLB magic number and chunk type constants
const (
	GLBMagic        = 0x46546C67 // "glTF" in little-endian ASCII
	GLBVersion      = 2
	GLBHeaderLength = 12
	GLBChunkHeader  = 8
	GLBChunkJSON    = 0x4E4F534A // "JSON" in little-endian ASCII
	GLBChunkBIN     = 0x004E4942 // "BIN\0" in little-endian ASCII
)

// Extension names recognized by the loader. These identifiers are fixed by the Khronos registry.
const (
	ExtensionBinaryGLTF                = "KHR_binary_glTF"
	ExtensionDracoMeshCompression      = "KHR_draco_mesh_compression"
	ExtensionLightsPunctual            = "KHR_lights_punctual"
	ExtensionMaterialsClearcoat        = "KHR_materials_clearcoat"
	ExtensionMaterialsIOR              = "KHR_materials_ior"
	ExtensionMaterialsPbrSpecularGloss = "KHR_materials_pbrSpecularGlossiness"
	ExtensionMaterialsSpecular         = "KHR_materials_specular"
	ExtensionMaterialsTransmission     = "KHR_materials_transmission"
	ExtensionMaterialsUnlit            = "KHR_materials_unlit"
	ExtensionMaterialsVolume           = "KHR_materials_volume"
	ExtensionTextureBasisU             = "KHR_texture_basisu"
	ExtensionTextureTransform          = "KHR_texture_transform"
	ExtensionMeshQuantization          = "KHR_mesh_quantization"
	ExtensionTextureWebP               = "EXT_texture_webp"
	ExtensionMeshoptCompression        = "EXT_meshopt_compression"
)

// KnownExtensions lists every extension name above.
var KnownExtensions = []string{
	ExtensionBinaryGLTF,
	ExtensionDracoMeshCompression,
	ExtensionLightsPunctual,
	ExtensionMaterialsClearcoat,
	ExtensionMaterialsIOR,
	ExtensionMaterialsPbrSpecularGloss,
	ExtensionMaterialsSpecular,
	ExtensionMaterialsTransmission,
	ExtensionMaterialsUnlit,
	ExtensionMaterialsVolume,
	ExtensionTextureBasisU,
	ExtensionTextureTransform,
	ExtensionMeshQuantization,
	ExtensionTextureWebP,
	ExtensionMeshoptCompression,
}
