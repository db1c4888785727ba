package loader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Camera defaults applied when a perspective camera omits them.
const (
	defaultAspectRatio = 1
	defaultZnear       = 1
	defaultZfar        = 2e6
)

func (p *parser) loadScene(ctx context.Context, index int) (*model.Scene, error) {
	def, err := at(p.doc.Scenes, "scenes", index)
	if err != nil {
		return nil, err
	}

	roots, err := fanOut(ctx, len(def.Nodes), func(ctx context.Context, i int) (*model.Node, error) {
		return p.hierarchy(ctx, def.Nodes[i])
	})
	if err != nil {
		return nil, err
	}

	scene := &model.Scene{Name: def.Name, Nodes: roots, UserData: map[string]any{}}
	p.assignExtras(scene.UserData, def.Extras)
	p.addUnknownExtensions(scene.UserData, def.Extensions)
	p.associate(scene, KindScene, index, -1)
	return scene, nil
}

// hierarchy resolves a node together with its subtree and bound skin.
func (p *parser) hierarchy(ctx context.Context, index int) (*model.Node, error) {
	key := "hierarchy:" + strconv.Itoa(index)
	v, err := p.resolve(ctx, key, "hierarchy", KindNode, index, func(ctx context.Context) (any, error) {
		return p.buildHierarchy(ctx, index)
	})
	return dependencyAs[*model.Node](v, err)
}

func (p *parser) buildHierarchy(ctx context.Context, index int) (*model.Node, error) {
	def, err := at(p.doc.Nodes, "nodes", index)
	if err != nil {
		return nil, err
	}

	var (
		node     *model.Node
		skin     *model.Skin
		children []*model.Node
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		node, err = p.node(gctx, index)
		return err
	})
	g.Go(func() (err error) {
		children, err = fanOut(gctx, len(def.Children), func(ctx context.Context, i int) (*model.Node, error) {
			return p.hierarchy(ctx, def.Children[i])
		})
		return err
	})
	if def.Skin != nil {
		g.Go(func() (err error) {
			skin, err = dependencyAs[*model.Skin](p.GetDependency(gctx, KindSkin, *def.Skin))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if skin != nil {
		node.Skin = skin
		if node.Mesh != nil {
			for _, prim := range node.Mesh.Primitives {
				prim.Skinned = true
			}
		}
	}
	node.Add(children...)
	return node, nil
}

// loadNode builds a node without its children.
func (p *parser) loadNode(ctx context.Context, index int) (*model.Node, error) {
	def, err := at(p.doc.Nodes, "nodes", index)
	if err != nil {
		return nil, err
	}

	node := model.NewNode(p.nodeNames[index])
	if def.Name != "" {
		node.UserData["name"] = def.Name
	}
	node.IsBone = p.joints[index]

	var attachments []any
	g, gctx := errgroup.WithContext(ctx)
	if def.Mesh != nil {
		g.Go(func() error {
			mesh, err := dependencyAs[*model.Mesh](p.GetDependency(gctx, KindMesh, *def.Mesh))
			if err != nil {
				return err
			}
			node.Mesh = p.meshRef(*def.Mesh, mesh)
			return nil
		})
	}
	if def.Camera != nil {
		g.Go(func() error {
			camera, err := dependencyAs[*model.Camera](p.GetDependency(gctx, KindCamera, *def.Camera))
			if err != nil {
				return err
			}
			node.Camera = p.cameraRef(*def.Camera, camera)
			return nil
		})
	}
	g.Go(func() error {
		for _, pl := range p.plugins {
			ap, ok := pl.(NodeAttachmentProvider)
			if !ok {
				continue
			}
			a, err := ap.NodeAttachment(gctx, index)
			if err != nil {
				return err
			}
			if a != nil {
				attachments = append(attachments, a)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	node.Attachments = attachments

	if len(def.Weights) > 0 {
		node.MorphTargetInfluences = append([]float32(nil), def.Weights...)
	}

	if def.Matrix != nil {
		m := mgl32.Mat4(*def.Matrix)
		node.Matrix = &m
	} else {
		if def.Translation != nil {
			node.Translation = mgl32.Vec3(*def.Translation)
		}
		if def.Rotation != nil {
			r := def.Rotation
			node.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		}
		if def.Scale != nil {
			node.Scale = mgl32.Vec3(*def.Scale)
		}
	}

	p.assignExtras(node.UserData, def.Extras)
	p.addUnknownExtensions(node.UserData, def.Extensions)
	p.associate(node, KindNode, index, -1)
	return node, nil
}

// meshRef returns mesh for its only referencing node, or a renamed clone per node when the mesh is shared.
func (p *parser) meshRef(index int, mesh *model.Mesh) *model.Mesh {
	if p.meshRefs[index] <= 1 {
		return mesh
	}
	p.mu.Lock()
	n := p.meshUses[index]
	p.meshUses[index]++
	p.mu.Unlock()

	clone := mesh.Clone()
	clone.Name += "_instance_" + strconv.Itoa(n)
	p.copyAssociation(mesh, clone)
	for i, prim := range mesh.Primitives {
		p.copyAssociation(prim, clone.Primitives[i])
	}
	return clone
}

// cameraRef is meshRef for cameras.
func (p *parser) cameraRef(index int, camera *model.Camera) *model.Camera {
	if p.cameraRefs[index] <= 1 {
		return camera
	}
	p.mu.Lock()
	n := p.cameraUses[index]
	p.cameraUses[index]++
	p.mu.Unlock()

	clone := camera.Clone()
	clone.Name += "_instance_" + strconv.Itoa(n)
	p.copyAssociation(camera, clone)
	return clone
}

func (p *parser) loadSkin(ctx context.Context, index int) (*model.Skin, error) {
	def, err := at(p.doc.Skins, "skins", index)
	if err != nil {
		return nil, err
	}

	skin := &model.Skin{Name: def.Name}
	var ibm *model.BufferAttribute
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		skin.Joints, err = fanOut(gctx, len(def.Joints), func(ctx context.Context, i int) (*model.Node, error) {
			return p.node(ctx, def.Joints[i])
		})
		return err
	})
	if def.InverseBindMatrices != nil {
		g.Go(func() (err error) {
			ibm, err = p.Accessor(gctx, *def.InverseBindMatrices)
			return err
		})
	}
	if def.Skeleton != nil {
		g.Go(func() (err error) {
			skin.Skeleton, err = p.node(gctx, *def.Skeleton)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skin.InverseBindMatrices = make([]mgl32.Mat4, len(skin.Joints))
	for j := range skin.InverseBindMatrices {
		if ibm == nil || j >= ibm.Count || ibm.ItemSize != 16 {
			skin.InverseBindMatrices[j] = mgl32.Ident4()
			continue
		}
		var m mgl32.Mat4
		for c := range 16 {
			m[c] = ibm.Component(j, c)
		}
		skin.InverseBindMatrices[j] = m
	}
	if ibm != nil && (ibm.ItemSize != 16 || ibm.Count < len(skin.Joints)) {
		p.Warn("inverse bind matrices do not cover every joint", "kind", KindSkin, "index", index)
	}
	return skin, nil
}

func (p *parser) loadCamera(_ context.Context, index int) (*model.Camera, error) {
	def, err := at(p.doc.Cameras, "cameras", index)
	if err != nil {
		return nil, err
	}

	camera := &model.Camera{Name: def.Name, UserData: map[string]any{}}
	switch def.Type {
	case gltf.CameraTypePerspective:
		params := def.Perspective
		if params == nil {
			return nil, fmt.Errorf("perspective camera %d has no perspective block", index)
		}
		camera.Type = model.CameraTypePerspective
		camera.Yfov = params.Yfov
		camera.AspectRatio = common.Deref(params.AspectRatio, defaultAspectRatio)
		camera.Znear = common.Coalesce(params.Znear, defaultZnear)
		camera.Zfar = common.Deref(params.Zfar, defaultZfar)
	case gltf.CameraTypeOrthographic:
		params := def.Orthographic
		if params == nil {
			return nil, fmt.Errorf("orthographic camera %d has no orthographic block", index)
		}
		camera.Type = model.CameraTypeOrthographic
		camera.Xmag = params.Xmag
		camera.Ymag = params.Ymag
		camera.Znear = params.Znear
		camera.Zfar = params.Zfar
	default:
		return nil, fmt.Errorf("camera %d has unknown type %q", index, def.Type)
	}

	p.assignExtras(camera.UserData, def.Extras)
	p.addUnknownExtensions(camera.UserData, def.Extensions)
	p.associate(camera, KindCamera, index, -1)
	return camera, nil
}
