package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
)

// initExtensions builds the extension table for this parse.
// Plugins are instantiated first, in registration order. Built-in handlers are then created for the
// names in extensionsUsed; every other name must match a plugin or is reported as unknown.
func (p *parser) initExtensions() error {
	for _, f := range p.factories {
		pl := f.New(p)
		if pl == nil {
			continue
		}
		p.plugins = append(p.plugins, pl)
		p.extensions[pl.Name()] = pl
	}

	for _, name := range p.doc.ExtensionsUsed {
		required := p.doc.RequiresExtension(name)
		switch name {
		case gltf.ExtensionMaterialsUnlit:
			p.extensions[name] = &unlitExtension{parser: p}
		case gltf.ExtensionMaterialsPbrSpecularGloss:
			p.extensions[name] = &specularGlossinessExtension{parser: p}
		case gltf.ExtensionDracoMeshCompression:
			if p.draco == nil {
				if required {
					return missingDecoder(name)
				}
				p.Warn("no draco decoder configured, compressed primitives fall back to accessors", "extension", name)
				continue
			}
			p.extensions[name] = &dracoExtension{parser: p}
		case gltf.ExtensionTextureTransform:
			p.extensions[name] = &textureTransformExtension{parser: p}
		case gltf.ExtensionMeshQuantization:
			p.extensions[name] = meshQuantizationExtension{}
		default:
			h, ok := p.extensions[name]
			if !ok {
				if !required {
					p.Warn("unknown extension", "extension", name)
					continue
				}
				if p.policy == PolicyError {
					return &ParseError{Class: ClassUnsupported, Err: fmt.Errorf("%w: %s", ErrUnknownRequiredExtension, name)}
				}
				p.Warn("unknown required extension", "extension", name)
				continue
			}
			if r, ok := h.(DecoderRequirer); ok && !r.Ready() {
				if required {
					return missingDecoder(name)
				}
				p.Warn("extension decoder not configured, falling back", "extension", name)
			}
		}
	}
	return nil
}

func missingDecoder(name string) error {
	return &ParseError{Class: ClassUnsupported, Err: fmt.Errorf("%w: %s", ErrMissingDecoder, name)}
}

// markDefs scans the node table before any dependency resolves: it assigns unique node names,
// marks skin joints as bones, counts mesh and camera references and checks that the hierarchy is a forest.
func (p *parser) markDefs() error {
	nodes := p.doc.Nodes
	used := map[string]int{}
	p.nodeNames = make([]string, len(nodes))
	for i := range nodes {
		p.nodeNames[i] = uniqueName(used, nodes[i].Name)
	}

	for _, skin := range p.doc.Skins {
		for _, j := range skin.Joints {
			if j < 0 || j >= len(nodes) {
				return outOfRange("nodes", j, len(nodes))
			}
			p.joints[j] = true
		}
	}

	parents := make([]int, len(nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i := range nodes {
		n := &nodes[i]
		for _, c := range n.Children {
			if c < 0 || c >= len(nodes) {
				return outOfRange("nodes", c, len(nodes))
			}
			if parents[c] != -1 || c == i {
				return fmt.Errorf("%w: node %d has more than one parent", ErrNodeHierarchy, c)
			}
			parents[c] = i
		}
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(p.doc.Meshes) {
				return outOfRange("meshes", *n.Mesh, len(p.doc.Meshes))
			}
			p.meshRefs[*n.Mesh]++
		}
		if n.Camera != nil {
			if *n.Camera < 0 || *n.Camera >= len(p.doc.Cameras) {
				return outOfRange("cameras", *n.Camera, len(p.doc.Cameras))
			}
			p.cameraRefs[*n.Camera]++
		}
	}

	// 0 unvisited, 1 on the current parent chain, 2 known to reach a root
	state := make([]uint8, len(nodes))
	for i := range nodes {
		var chain []int
		j := i
		for j != -1 && state[j] == 0 {
			state[j] = 1
			chain = append(chain, j)
			j = parents[j]
		}
		if j != -1 && state[j] == 1 {
			return fmt.Errorf("%w: cycle through node %d", ErrNodeHierarchy, j)
		}
		for _, k := range chain {
			state[k] = 2
		}
	}

	for si, scene := range p.doc.Scenes {
		for _, root := range scene.Nodes {
			if root < 0 || root >= len(nodes) {
				return outOfRange("nodes", root, len(nodes))
			}
			if parents[root] != -1 {
				return fmt.Errorf("%w: scene %d root node %d has a parent", ErrNodeHierarchy, si, root)
			}
		}
	}
	return nil
}
