package loader

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// lightsPlugin handles KHR_lights_punctual. Lights resolve as KindLight dependencies and attach to nodes;
// a light referenced by several nodes is cloned per node.
type lightsPlugin struct {
	parser Parser
	defs   []gltf.Light
	refs   map[int]int

	mu   sync.Mutex
	uses map[int]int
}

func newLightsPlugin(p Parser) Plugin {
	e := &lightsPlugin{parser: p, refs: map[int]int{}, uses: map[int]int{}}
	doc := p.Document()

	var payload gltf.LightsPunctual
	if _, err := doc.Extensions.Decode(e.Name(), &payload); err != nil {
		p.Warn("ignoring malformed lights payload", "extension", e.Name(), "error", err)
	}
	e.defs = payload.Lights

	for i := range doc.Nodes {
		if light := e.nodeLight(i); light != nil {
			e.refs[*light]++
		}
	}
	return e
}

func (e *lightsPlugin) Name() string {
	return gltf.ExtensionLightsPunctual
}

func (e *lightsPlugin) nodeLight(nodeIndex int) *int {
	var nl gltf.NodeLight
	if ok, err := e.parser.Document().Nodes[nodeIndex].Extensions.Decode(e.Name(), &nl); !ok || err != nil {
		return nil
	}
	return nl.Light
}

func (e *lightsPlugin) LoadDependency(_ context.Context, kind DependencyKind, index int) (any, bool, error) {
	if kind != KindLight {
		return nil, false, nil
	}
	light, err := e.loadLight(index)
	return light, true, err
}

func (e *lightsPlugin) loadLight(index int) (*model.Light, error) {
	def, err := at(e.defs, "lights", index)
	if err != nil {
		return nil, err
	}

	light := &model.Light{
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: common.Deref(def.Intensity, 1),
		Range:     common.Deref(def.Range, 0),
	}
	if def.Color != nil {
		light.Color = mgl32.Vec3(*def.Color)
	}

	switch model.LightType(def.Type) {
	case model.LightTypeDirectional:
		light.Type = model.LightTypeDirectional
	case model.LightTypePoint:
		light.Type = model.LightTypePoint
	case model.LightTypeSpot:
		light.Type = model.LightTypeSpot
		light.OuterConeAngle = model.DefaultOuterConeAngle
		if def.Spot != nil {
			light.InnerConeAngle = common.Deref(def.Spot.InnerConeAngle, 0)
			light.OuterConeAngle = common.Deref(def.Spot.OuterConeAngle, model.DefaultOuterConeAngle)
		}
	default:
		return nil, fmt.Errorf("unexpected light type %q", def.Type)
	}

	light.Name = def.Name
	if light.Name == "" {
		light.Name = "light_" + strconv.Itoa(index)
	}
	return light, nil
}

func (e *lightsPlugin) NodeAttachment(ctx context.Context, nodeIndex int) (any, error) {
	index := e.nodeLight(nodeIndex)
	if index == nil {
		return nil, nil
	}
	light, err := dependencyAs[*model.Light](e.parser.GetDependency(ctx, KindLight, *index))
	if err != nil || light == nil {
		return nil, err
	}
	if e.refs[*index] <= 1 {
		return light, nil
	}

	e.mu.Lock()
	n := e.uses[*index]
	e.uses[*index]++
	e.mu.Unlock()

	clone := *light
	clone.Name += "_instance_" + strconv.Itoa(n)
	return &clone, nil
}
