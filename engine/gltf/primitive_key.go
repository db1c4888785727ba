package gltf

import (
	"slices"
	"strconv"
	"strings"
)

// DracoPrimitive is the KHR_draco_mesh_compression payload of a primitive.
type DracoPrimitive struct {
	BufferView int            `json:"bufferView"`
	Attributes map[string]int `json:"attributes"`
}

// PrimitiveKey derives the geometry cache key of a primitive.
// Draco primitives key on their compressed bufferView, the primitive's indices accessor and the draco
// attribute ids. The primitive's indices are used rather than an indices field inside the draco payload:
// the payload defines none, and two primitives sharing a compressed view but declaring different index
// accessors must not share a geometry.
// All other primitives key on the index accessor, the attribute accessors and the declared mode.
// Absent indices or mode render as an empty field.
//
// Parameters:
//   - p: the primitive definition
//
// Returns:
//   - string: the cache key
func PrimitiveKey(p *Primitive) string {
	var draco DracoPrimitive
	if ok, err := p.Extensions.Decode(ExtensionDracoMeshCompression, &draco); ok && err == nil {
		return "draco:" + strconv.Itoa(draco.BufferView) + ":" + optionalInt(p.Indices) + ":" + AttributesKey(draco.Attributes)
	}
	return optionalInt(p.Indices) + ":" + AttributesKey(p.Attributes) + ":" + optionalInt(p.Mode)
}

// AttributesKey renders an attribute map as "NAME:index;" pairs sorted by name.
func AttributesKey(attributes map[string]int) string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(attributes[name]))
		sb.WriteByte(';')
	}
	return sb.String()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
