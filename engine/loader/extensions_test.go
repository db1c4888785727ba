package loader

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightsPunctual(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_lights_punctual"],
		"extensions": {"KHR_lights_punctual": {"lights": [
			{"name": "lamp", "type": "spot", "color": [1, 0.5, 0], "intensity": 4},
			{"type": "directional"}
		]}},
		"nodes": [
			{"name": "l1", "extensions": {"KHR_lights_punctual": {"light": 0}}},
			{"name": "l2", "extensions": {"KHR_lights_punctual": {"light": 0}}},
			{"name": "sun", "extensions": {"KHR_lights_punctual": {"light": 1}}}
		],
		"scenes": [{"nodes": [0, 1, 2]}]
	}`
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)
	nodes := m.Scene().Nodes
	require.Len(t, nodes, 3)

	var names []string
	for _, n := range nodes[:2] {
		lights := n.Lights()
		require.Len(t, lights, 1)
		assert.Equal(t, model.LightTypeSpot, lights[0].Type)
		assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, lights[0].Color)
		assert.Equal(t, float32(4), lights[0].Intensity)
		assert.Equal(t, model.DefaultOuterConeAngle, lights[0].OuterConeAngle)
		names = append(names, lights[0].Name)
	}
	assert.ElementsMatch(t, []string{"lamp_instance_0", "lamp_instance_1"}, names)

	sun := nodes[2].Lights()
	require.Len(t, sun, 1)
	assert.Equal(t, "light_1", sun[0].Name)
	assert.Equal(t, float32(1), sun[0].Intensity)
}

func TestMaterialExtensions(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_materials_clearcoat", "KHR_materials_ior", "KHR_materials_unlit"],
		"materials": [
			{"name": "coat", "extensions": {"KHR_materials_clearcoat": {"clearcoatFactor": 0.5}, "KHR_materials_ior": {}}},
			{"name": "flat", "pbrMetallicRoughness": {"baseColorFactor": [0, 1, 0, 1]}, "extensions": {"KHR_materials_unlit": {}}}
		],
		"meshes": [{"primitives": [
			{"attributes": {}, "material": 0},
			{"attributes": {}, "material": 1}
		]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)
	prims := m.Scene().Nodes[0].Mesh.Primitives

	coat := prims[0].Material
	assert.Equal(t, model.MaterialTypePhysical, coat.Type)
	v, ok := coat.Params.Scalar(model.ParamClearcoat)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)
	v, ok = coat.Params.Scalar(model.ParamIOR)
	require.True(t, ok)
	assert.Equal(t, float32(1.5), v)

	flat := prims[1].Material
	assert.Equal(t, model.MaterialTypeBasic, flat.Type)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, flat.Params.Color)
	_, ok = flat.Params.Scalar(model.ParamIOR)
	assert.False(t, ok)
}

func TestSpecularGlossinessMaterial(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_materials_pbrSpecularGlossiness"],
		"materials": [{
			"name": "sg",
			"emissiveFactor": [1, 0.5, 0.25],
			"extensions": {"KHR_materials_pbrSpecularGlossiness": {
				"diffuseFactor": [0.5, 0.5, 0.5, 0.75],
				"specularFactor": [0.2, 0.3, 0.4],
				"glossinessFactor": 0.6
			}}
		}, {
			"name": "sg-dark",
			"extensions": {"KHR_materials_pbrSpecularGlossiness": {}}
		}],
		"meshes": [{"primitives": [
			{"attributes": {}, "material": 0},
			{"attributes": {}, "material": 1}
		]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)
	prims := m.Scene().Nodes[0].Mesh.Primitives

	sg := prims[0].Material
	assert.Equal(t, model.MaterialTypeSpecularGlossiness, sg.Type)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.25}, sg.Params.Emissive)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, sg.Params.Color)
	assert.Equal(t, float32(0.75), sg.Params.Opacity)
	specular, ok := sg.Params.ColorParam(model.ParamSpecular)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0.2, 0.3, 0.4}, specular)
	gloss, ok := sg.Params.Scalar(model.ParamGlossiness)
	require.True(t, ok)
	assert.Equal(t, float32(0.6), gloss)

	dark := prims[1].Material
	assert.Equal(t, mgl32.Vec3{}, dark.Params.Emissive)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, dark.Params.Color)
}
