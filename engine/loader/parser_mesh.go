package loader

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// attributeNames maps glTF attribute semantics to engine attribute names.
var attributeNames = map[string]string{
	"POSITION":   model.AttributePosition,
	"NORMAL":     model.AttributeNormal,
	"TANGENT":    model.AttributeTangent,
	"TEXCOORD_0": model.AttributeUV,
	"TEXCOORD_1": model.AttributeUV2,
	"COLOR_0":    model.AttributeColor,
	"WEIGHTS_0":  model.AttributeSkinWeight,
	"JOINTS_0":   model.AttributeSkinIndex,
}

// morphAttributes are the semantics morph targets may displace.
var morphAttributes = []string{"POSITION", "NORMAL", "COLOR_0"}

// AttributeName returns the engine attribute name for a glTF semantic. Unknown semantics are lower-cased.
func AttributeName(semantic string) string {
	if name, ok := attributeNames[semantic]; ok {
		return name
	}
	return strings.ToLower(semantic)
}

func (p *parser) loadMesh(ctx context.Context, index int) (*model.Mesh, error) {
	def, err := at(p.doc.Meshes, "meshes", index)
	if err != nil {
		return nil, err
	}

	name := def.Name
	if name == "" {
		name = "mesh_" + strconv.Itoa(index)
	}

	prims, err := fanOut(ctx, len(def.Primitives), func(ctx context.Context, i int) (*model.MeshPrimitive, error) {
		return p.loadPrimitive(ctx, index, i, name, len(def.Primitives))
	})
	if err != nil {
		return nil, err
	}

	mesh := &model.Mesh{Name: name, Primitives: prims, UserData: map[string]any{}}
	if len(def.Weights) > 0 {
		mesh.Weights = append([]float32(nil), def.Weights...)
	}
	p.assignExtras(mesh.UserData, def.Extras)
	p.addUnknownExtensions(mesh.UserData, def.Extensions)
	p.associate(mesh, KindMesh, index, -1)
	return mesh, nil
}

func (p *parser) loadPrimitive(ctx context.Context, meshIndex, primIndex int, meshName string, total int) (*model.MeshPrimitive, error) {
	def := &p.doc.Meshes[meshIndex].Primitives[primIndex]

	mode := def.ModeOrDefault()
	if mode < gltf.PrimitiveModePoints || mode > gltf.PrimitiveModeTriangleFan {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPrimitiveMode, mode)
	}

	prim := &model.MeshPrimitive{Name: meshName, Mode: mode}
	if total > 1 {
		prim.Name = meshName + "_" + strconv.Itoa(primIndex)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if def.Material == nil {
			prim.Material, err = p.defaultMaterial(gctx)
			return err
		}
		prim.Material, err = dependencyAs[*model.Material](p.GetDependency(gctx, KindMaterial, *def.Material))
		return err
	})
	g.Go(func() (err error) {
		prim.Geometry, err = p.primitiveGeometry(gctx, meshIndex, def)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.associate(prim, KindMesh, meshIndex, primIndex)
	return prim, nil
}

// defaultMaterial returns the material shared by every primitive without one.
func (p *parser) defaultMaterial(ctx context.Context) (*model.Material, error) {
	v, err := p.resolve(ctx, "material:default", "material", KindMaterial, -1, func(context.Context) (any, error) {
		params := model.NewMaterialParams()
		params.Name = "default"
		return model.NewMaterial(model.MaterialTypeStandard, params), nil
	})
	return dependencyAs[*model.Material](v, err)
}

// primitiveGeometry returns the geometry for def, shared with every primitive of the same primitive key.
func (p *parser) primitiveGeometry(ctx context.Context, meshIndex int, def *gltf.Primitive) (*model.Geometry, error) {
	key := "primitive:" + gltf.PrimitiveKey(def)
	v, err := p.resolve(ctx, key, "primitive", KindMesh, meshIndex, func(ctx context.Context) (any, error) {
		p.metrics.dependencies.WithLabelValues("primitive").Inc()
		return p.buildGeometry(ctx, def)
	})
	return dependencyAs[*model.Geometry](v, err)
}

func (p *parser) buildGeometry(ctx context.Context, def *gltf.Primitive) (*model.Geometry, error) {
	geometry := model.NewGeometry()

	if def.Extensions.Has(gltf.ExtensionDracoMeshCompression) {
		if draco, ok := p.extensions[gltf.ExtensionDracoMeshCompression].(PrimitiveAttributeInjector); ok {
			if _, err := draco.InjectPrimitiveAttributes(ctx, def, geometry); err != nil {
				return nil, err
			}
		}
	}
	for _, pl := range p.plugins {
		if inj, ok := pl.(PrimitiveAttributeInjector); ok {
			if _, err := inj.InjectPrimitiveAttributes(ctx, def, geometry); err != nil {
				return nil, err
			}
		}
	}

	if err := p.addPrimitiveAttributes(ctx, geometry, def); err != nil {
		return nil, err
	}
	return geometry, nil
}

// addPrimitiveAttributes assigns every attribute and the index buffer not already supplied,
// then attaches extras, bounds and morph targets.
func (p *parser) addPrimitiveAttributes(ctx context.Context, geometry *model.Geometry, def *gltf.Primitive) error {
	var semantics []string
	for semantic := range def.Attributes {
		if !geometry.HasAttribute(AttributeName(semantic)) {
			semantics = append(semantics, semantic)
		}
	}
	slices.Sort(semantics)

	var index *model.BufferAttribute
	g, gctx := errgroup.WithContext(ctx)
	attrs := make([]*model.BufferAttribute, len(semantics))
	for i, semantic := range semantics {
		g.Go(func() (err error) {
			attrs[i], err = p.Accessor(gctx, def.Attributes[semantic])
			return err
		})
	}
	if def.Indices != nil && geometry.Index == nil {
		g.Go(func() (err error) {
			index, err = p.Accessor(gctx, *def.Indices)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, semantic := range semantics {
		geometry.SetAttribute(AttributeName(semantic), attrs[i])
	}
	if index != nil {
		geometry.Index = index
	}

	p.assignExtras(geometry.UserData, def.Extras)
	p.computeBounds(geometry, def)

	if len(def.Targets) > 0 {
		return p.addMorphTargets(ctx, geometry, def.Targets)
	}
	return nil
}

// computeBounds derives the bounding volumes from the POSITION accessor min/max, widened by the largest
// morph displacement. Without min/max the bounds are computed from the decoded positions.
func (p *parser) computeBounds(geometry *model.Geometry, def *gltf.Primitive) {
	posIndex, ok := def.Attributes["POSITION"]
	if !ok || posIndex < 0 || posIndex >= len(p.doc.Accessors) {
		return
	}
	acc := &p.doc.Accessors[posIndex]

	if len(acc.Min) < 3 || len(acc.Max) < 3 {
		p.Warn("missing min/max properties for accessor POSITION", "kind", KindAccessor, "index", posIndex)
		geometry.ComputeBoundingBox()
		geometry.ComputeBoundingSphere()
		return
	}

	box := model.Box3{Min: vec3(acc.Min), Max: vec3(acc.Max)}
	if acc.Normalized {
		if scale, err := gltf.NormalizedComponentScale(acc.ComponentType); err == nil {
			box.Min = box.Min.Mul(float32(scale))
			box.Max = box.Max.Mul(float32(scale))
		}
	}

	var maxDisplacement mgl32.Vec3
	for _, target := range def.Targets {
		ti, ok := target["POSITION"]
		if !ok || ti < 0 || ti >= len(p.doc.Accessors) {
			continue
		}
		tacc := &p.doc.Accessors[ti]
		if len(tacc.Min) < 3 || len(tacc.Max) < 3 {
			p.Warn("missing min/max properties for accessor POSITION", "kind", KindAccessor, "index", ti)
			continue
		}
		var d mgl32.Vec3
		for c := range 3 {
			d[c] = max(abs32(tacc.Min[c]), abs32(tacc.Max[c]))
		}
		if tacc.Normalized {
			if scale, err := gltf.NormalizedComponentScale(tacc.ComponentType); err == nil {
				d = d.Mul(float32(scale))
			}
		}
		for c := range 3 {
			maxDisplacement[c] = max(maxDisplacement[c], d[c])
		}
	}
	box.ExpandByVector(maxDisplacement)

	geometry.BoundingBox = &box
	geometry.BoundingSphere = &model.Sphere{
		Center: box.Center(),
		Radius: box.Max.Sub(box.Min).Len() / 2,
	}
}

// addMorphTargets resolves the morph attribute of every target. A target that omits a semantic present on
// another target reuses the base attribute.
func (p *parser) addMorphTargets(ctx context.Context, geometry *model.Geometry, targets []map[string]int) error {
	for _, semantic := range morphAttributes {
		present := false
		for _, t := range targets {
			if _, ok := t[semantic]; ok {
				present = true
				break
			}
		}
		if !present {
			continue
		}

		name := AttributeName(semantic)
		base := geometry.Attributes[name]
		morphs, err := fanOut(ctx, len(targets), func(ctx context.Context, i int) (*model.BufferAttribute, error) {
			idx, ok := targets[i][semantic]
			if !ok {
				return base, nil
			}
			return p.Accessor(ctx, idx)
		})
		if err != nil {
			return err
		}
		geometry.MorphAttributes[name] = morphs
	}
	geometry.MorphTargetsRelative = true
	return nil
}

func vec3(v []float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
