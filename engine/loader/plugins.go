package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
)

// Plugin factories for the extensions supported out of the box.
var (
	ClearcoatPlugin    = &PluginFactory{Name: gltf.ExtensionMaterialsClearcoat, New: newClearcoatPlugin}
	BasisUPlugin       = &PluginFactory{Name: gltf.ExtensionTextureBasisU, New: newBasisUPlugin}
	WebPPlugin         = &PluginFactory{Name: gltf.ExtensionTextureWebP, New: newWebPPlugin}
	TransmissionPlugin = &PluginFactory{Name: gltf.ExtensionMaterialsTransmission, New: newTransmissionPlugin}
	VolumePlugin       = &PluginFactory{Name: gltf.ExtensionMaterialsVolume, New: newVolumePlugin}
	IORPlugin          = &PluginFactory{Name: gltf.ExtensionMaterialsIOR, New: newIORPlugin}
	SpecularPlugin     = &PluginFactory{Name: gltf.ExtensionMaterialsSpecular, New: newSpecularPlugin}
	LightsPlugin       = &PluginFactory{Name: gltf.ExtensionLightsPunctual, New: newLightsPlugin}
	MeshoptPlugin      = &PluginFactory{Name: gltf.ExtensionMeshoptCompression, New: newMeshoptPlugin}
)

// DefaultPlugins returns the factories a new Loader registers, in consultation order.
// Order matters for first-responder hooks: the first plugin claiming a material type or texture wins.
//
// Returns:
//   - []*PluginFactory: clearcoat, basisu, webp, transmission, volume, ior, specular, lights, meshopt
func DefaultPlugins() []*PluginFactory {
	return []*PluginFactory{
		ClearcoatPlugin,
		BasisUPlugin,
		WebPPlugin,
		TransmissionPlugin,
		VolumePlugin,
		IORPlugin,
		SpecularPlugin,
		LightsPlugin,
		MeshoptPlugin,
	}
}
