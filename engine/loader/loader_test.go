package loader

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildGLB assembles a version 2 GLB container, padding both chunks to 4 bytes.
func buildGLB(t *testing.T, version uint32, jsonText string, bin []byte) []byte {
	t.Helper()

	jsonChunk := []byte(jsonText)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte(nil), bin...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	total := gltf.GLBHeaderLength + gltf.GLBChunkHeader + len(jsonChunk)
	if bin != nil {
		total += gltf.GLBChunkHeader + len(binChunk)
	}

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, gltf.GLBMagic)
	out = binary.LittleEndian.AppendUint32(out, version)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(jsonChunk)))
	out = binary.LittleEndian.AppendUint32(out, gltf.GLBChunkJSON)
	out = append(out, jsonChunk...)
	if bin != nil {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(binChunk)))
		out = binary.LittleEndian.AppendUint32(out, gltf.GLBChunkBIN)
		out = append(out, binChunk...)
	}
	return out
}

// triangleBin holds three VEC3 positions followed by three UNSIGNED_SHORT indices.
func triangleBin() []byte {
	bin := float32Bytes(0, 0, 0, 1, 0, 0, 0, 2, 0)
	bin = append(bin, uint16Bytes(0, 1, 2)...)
	return append(bin, 0, 0)
}

// triangleJSON is a scene with one root and two children sharing a mesh whose two primitives share
// attributes and indices.
const triangleJSON = `{
	"asset": {"version": "2.0", "generator": "test"},
	"extensionsUsed": ["EXT_unknown_thing"],
	"extensions": {"EXT_unknown_thing": {"v": 1}},
	"extras": {"author": "tester"},
	"scene": 0,
	"scenes": [{"name": "main", "nodes": [0]}],
	"nodes": [
		{"name": "root", "children": [1, 2]},
		{"name": "a", "mesh": 0, "translation": [1, 2, 3]},
		{"name": "a", "mesh": 0, "rotation": [0, 0, 0, 1]}
	],
	"meshes": [{
		"name": "tri",
		"primitives": [
			{"attributes": {"POSITION": 0}, "indices": 1, "material": 0},
			{"attributes": {"POSITION": 0}, "indices": 1}
		]
	}],
	"materials": [{
		"name": "red",
		"pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 0.5], "metallicFactor": 0.25},
		"alphaMode": "BLEND",
		"doubleSided": true
	}],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 2, 0]},
		{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
	],
	"bufferViews": [
		{"buffer": 0, "byteOffset": 0, "byteLength": 36},
		{"buffer": 0, "byteOffset": 36, "byteLength": 6}
	],
	"buffers": [{"byteLength": 44}]
}`

func TestParseGLB(t *testing.T) {
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.Parse(context.Background(), buildGLB(t, 2, triangleJSON, triangleBin()), "")
	require.NoError(t, err)

	scene := m.Scene()
	require.NotNil(t, scene)
	assert.Equal(t, "main", scene.Name)
	require.Len(t, scene.Nodes, 1)

	root := scene.Nodes[0]
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 2)
	a, b := root.Children[0], root.Children[1]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "a_1", b.Name)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, a.Translation)

	require.NotNil(t, a.Mesh)
	require.NotNil(t, b.Mesh)
	assert.ElementsMatch(t, []string{"tri_instance_0", "tri_instance_1"}, []string{a.Mesh.Name, b.Mesh.Name})
	require.Len(t, a.Mesh.Primitives, 2)
	assert.Equal(t, "tri_0", a.Mesh.Primitives[0].Name)
	assert.Equal(t, "tri_1", a.Mesh.Primitives[1].Name)

	geometry := a.Mesh.Primitives[0].Geometry
	require.NotNil(t, geometry)
	assert.Same(t, geometry, a.Mesh.Primitives[1].Geometry, "primitives with the same key share geometry")
	assert.Same(t, geometry, b.Mesh.Primitives[0].Geometry, "mesh instances share geometry")

	pos := geometry.Attributes[model.AttributePosition]
	require.NotNil(t, pos)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 2, 0}, pos.Float32)
	require.NotNil(t, geometry.Index)
	assert.Equal(t, []uint32{0, 1, 2}, geometry.Index.Uint32)
	require.NotNil(t, geometry.BoundingBox)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, geometry.BoundingBox.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, geometry.BoundingBox.Max)

	red := a.Mesh.Primitives[0].Material
	require.NotNil(t, red)
	assert.Equal(t, "red", red.Name)
	assert.Equal(t, model.MaterialTypeStandard, red.Type)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, red.Params.Color)
	assert.Equal(t, float32(0.5), red.Params.Opacity)
	assert.Equal(t, float32(0.25), red.Params.Metalness)
	assert.Equal(t, float32(1), red.Params.Roughness)
	assert.True(t, red.Params.Transparent)
	assert.False(t, red.Params.DepthWrite)
	assert.Equal(t, model.DoubleSide, red.Params.Side)

	def := a.Mesh.Primitives[1].Material
	require.NotNil(t, def)
	assert.Equal(t, "default", def.Name)
	assert.Same(t, def, b.Mesh.Primitives[1].Material)

	assert.Equal(t, "test", m.Asset().Generator)
	assert.Equal(t, "tester", m.UserData()["author"])
	unknown, ok := m.UserData()["gltfExtensions"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, unknown, "EXT_unknown_thing")
	assert.Contains(t, m.Warnings(), "unknown extension extension=EXT_unknown_thing")

	assoc, ok := m.Association(root)
	require.True(t, ok)
	assert.Equal(t, model.Association{Kind: "node", Index: 0, Primitive: -1}, assoc)
	assoc, ok = m.Association(a.Mesh)
	require.True(t, ok)
	assert.Equal(t, "mesh", assoc.Kind)
}

func TestParseStringDataURIBuffer(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 8, "uri": "data:application/octet-stream;base64,AACAPwAAAEA="}],
		"bufferViews": [{"buffer": 0, "byteLength": 8}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"}],
		"animations": [{
			"channels": [{"sampler": 0, "target": {"node": 0, "path": "scale"}}],
			"samplers": [{"input": 0, "output": 0}]
		}],
		"nodes": [{"name": "n"}],
		"scenes": [{"nodes": [0]}]
	}`
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)

	require.Equal(t, 1, m.AnimationCount())
	clip := m.Animations()[0]
	assert.Equal(t, "animation_0", clip.Name)
	assert.Equal(t, float32(2), clip.Duration)
	require.Len(t, clip.Tracks, 1)
	track := clip.Tracks[0]
	assert.Equal(t, gltf.InterpolationLinear, track.Interpolation)
	assert.Equal(t, []float32{1, 2}, track.Times)
	assert.Same(t, m.Scene().Nodes[0], track.Target)
}

func TestParseRejectsLegacyAssets(t *testing.T) {
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"version 1 JSON", []byte(`{"asset":{"version":"1.0"}}`), gltf.ErrUnsupportedVersion},
		{"version 1 binary", buildGLB(t, 1, `{}`, nil), gltf.ErrLegacyBinary},
		{"malformed JSON", []byte(`{"asset":`), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Parse(context.Background(), tt.data, "")
			require.Error(t, err)
			assert.Equal(t, ClassFormat, ClassOf(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParseAsyncCallsOneCallback(t *testing.T) {
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	var loads, errs atomic.Int32
	done := make(chan struct{}, 2)
	l.ParseAsync(context.Background(), []byte(`{"asset":{"version":"1.0"}}`), "",
		func(model.Model) { loads.Add(1); done <- struct{}{} },
		func(error) { errs.Add(1); done <- struct{}{} },
	)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no callback")
	}
	// a second callback would arrive promptly
	select {
	case <-done:
		t.Fatal("both callbacks were called")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(0), loads.Load())
	assert.Equal(t, int32(1), errs.Load())
}

func TestParseReferenceErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "node cycle",
			doc:  `{"asset":{"version":"2.0"},"nodes":[{"children":[1]},{"children":[0]}]}`,
			want: ErrNodeHierarchy,
		},
		{
			name: "node with two parents",
			doc:  `{"asset":{"version":"2.0"},"nodes":[{"children":[2]},{"children":[2]},{}]}`,
			want: ErrNodeHierarchy,
		},
		{
			name: "missing mesh",
			doc:  `{"asset":{"version":"2.0"},"nodes":[{"mesh":3}],"scenes":[{"nodes":[0]}]}`,
			want: ErrIndexOutOfRange,
		},
		{
			name: "missing binary chunk",
			doc: `{"asset":{"version":"2.0"},"buffers":[{"byteLength":4}],"bufferViews":[{"buffer":0,"byteLength":4}],
				"accessors":[{"bufferView":0,"componentType":5126,"count":1,"type":"SCALAR"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			want: ErrMissingBinaryChunk,
		},
		{
			name: "accessor count overflows view",
			doc: `{"asset":{"version":"2.0"},
				"buffers":[{"byteLength":16,"uri":"data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAAAAAA=="}],
				"bufferViews":[{"buffer":0,"byteLength":16}],
				"accessors":[{"bufferView":0,"componentType":5126,"count":4611686018427387905,"type":"VEC3"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			want: ErrAccessorOverflow,
		},
		{
			name: "negative sparse indices offset",
			doc: `{"asset":{"version":"2.0"},
				"buffers":[{"byteLength":16,"uri":"data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAAAAAA=="}],
				"bufferViews":[{"buffer":0,"byteLength":16}],
				"accessors":[{"componentType":5126,"count":2,"type":"SCALAR","sparse":{"count":1,
					"indices":{"bufferView":0,"byteOffset":-8,"componentType":5121},"values":{"bufferView":0}}}],
				"animations":[{"channels":[{"sampler":0,"target":{"node":0,"path":"scale"}}],"samplers":[{"input":0,"output":0}]}],
				"nodes":[{}],"scenes":[{"nodes":[0]}]}`,
			want: ErrAccessorOverflow,
		},
		{
			name: "buffer view end wraps",
			doc: `{"asset":{"version":"2.0"},
				"buffers":[{"byteLength":16,"uri":"data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAAAAAA=="}],
				"bufferViews":[{"buffer":0,"byteOffset":8,"byteLength":9223372036854775807}],
				"accessors":[{"bufferView":0,"componentType":5126,"count":1,"type":"SCALAR"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			want: ErrBufferViewOverflow,
		},
		{
			name: "default scene out of range",
			doc:  `{"asset":{"version":"2.0"},"scene":2,"scenes":[{"nodes":[]}]}`,
			want: ErrIndexOutOfRange,
		},
	}

	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ParseString(context.Background(), tt.doc, "")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, ClassReference, ClassOf(err))
		})
	}
}

func TestRequiredExtensionPolicy(t *testing.T) {
	const doc = `{"asset":{"version":"2.0"},"extensionsUsed":["EXT_future"],"extensionsRequired":["EXT_future"]}`

	t.Run("warn", func(t *testing.T) {
		l := NewLoader(WithLogger(discardLogger()))
		defer l.Close()
		m, err := l.ParseString(context.Background(), doc, "")
		require.NoError(t, err)
		assert.Contains(t, m.Warnings(), "unknown required extension extension=EXT_future")
	})

	t.Run("error", func(t *testing.T) {
		l := NewLoader(WithLogger(discardLogger()), WithRequiredExtensionPolicy(PolicyError))
		defer l.Close()
		_, err := l.ParseString(context.Background(), doc, "")
		require.ErrorIs(t, err, ErrUnknownRequiredExtension)
		assert.Equal(t, ClassUnsupported, ClassOf(err))
	})

	t.Run("required decoder missing", func(t *testing.T) {
		l := NewLoader(WithLogger(discardLogger()))
		defer l.Close()
		_, err := l.ParseString(context.Background(),
			`{"asset":{"version":"2.0"},"extensionsUsed":["KHR_draco_mesh_compression"],"extensionsRequired":["KHR_draco_mesh_compression"]}`, "")
		require.ErrorIs(t, err, ErrMissingDecoder)
	})

	t.Run("optional decoder missing", func(t *testing.T) {
		l := NewLoader(WithLogger(discardLogger()))
		defer l.Close()
		m, err := l.ParseString(context.Background(),
			`{"asset":{"version":"2.0"},"extensionsUsed":["EXT_meshopt_compression"]}`, "")
		require.NoError(t, err)
		assert.Contains(t, m.Warnings(), "extension decoder not configured, falling back extension=EXT_meshopt_compression")
	})
}

// paramsPlugin contributes a scalar without claiming a material type.
type paramsPlugin struct{}

func (paramsPlugin) Name() string { return "TEST_params" }

func (paramsPlugin) ExtendMaterialParams(_ context.Context, _ int, params *model.MaterialParams) error {
	params.SetScalar("testScalar", 3)
	return nil
}

// typePlugin claims every material as physical.
type typePlugin struct{}

func (typePlugin) Name() string { return "TEST_type" }

func (typePlugin) MaterialType(int) (model.MaterialType, bool) {
	return model.MaterialTypePhysical, true
}

func TestMaterialTypeSelectionKeepsEveryExtender(t *testing.T) {
	params := &PluginFactory{Name: "TEST_params", New: func(Parser) Plugin { return paramsPlugin{} }}
	typed := &PluginFactory{Name: "TEST_type", New: func(Parser) Plugin { return typePlugin{} }}

	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()
	l.Register(params).Register(typed).Register(params)

	plugins := l.Plugins()
	assert.Len(t, plugins, len(DefaultPlugins())+2, "duplicate registration is ignored")

	const doc = `{"asset":{"version":"2.0"},"materials":[{"name":"m"}],
		"meshes":[{"primitives":[{"attributes":{},"material":0}]}],"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`
	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)

	mat := m.Scene().Nodes[0].Mesh.Primitives[0].Material
	assert.Equal(t, model.MaterialTypePhysical, mat.Type)
	v, ok := mat.Params.Scalar("testScalar")
	require.True(t, ok)
	assert.Equal(t, float32(3), v)

	l.Unregister(typed)
	m, err = l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)
	assert.Equal(t, model.MaterialTypeStandard, m.Scene().Nodes[0].Mesh.Primitives[0].Material.Type)
}

func TestParseTextureTransform(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_texture_transform"],
		"images": [{"uri": "data:image/png;base64,` + onePixelPNG + `"}],
		"samplers": [{"magFilter": 9728, "wrapS": 33071}],
		"textures": [{"source": 0, "sampler": 0}],
		"materials": [
			{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0, "extensions": {"KHR_texture_transform": {"rotation": 1.5}}}}},
			{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}},
			{"emissiveTexture": {"index": 0}}
		],
		"meshes": [{"primitives": [
			{"attributes": {}, "material": 0},
			{"attributes": {}, "material": 1},
			{"attributes": {}, "material": 2}
		]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`
	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	m, err := l.ParseString(context.Background(), doc, "")
	require.NoError(t, err)
	prims := m.Scene().Nodes[0].Mesh.Primitives

	rotated, ok := prims[0].Material.Params.Map(model.MapColor)
	require.True(t, ok)
	plain, ok := prims[1].Material.Params.Map(model.MapColor)
	require.True(t, ok)
	emissive, ok := prims[2].Material.Params.Map(model.MapEmissive)
	require.True(t, ok)

	assert.Equal(t, float32(1.5), rotated.Rotation)
	assert.True(t, rotated.NeedsUpdate)
	assert.Equal(t, float32(0), plain.Rotation)
	assert.NotEqual(t, rotated.UUID, plain.UUID)
	assert.Same(t, plain, emissive, "sRGB variants are shared")

	assert.Equal(t, model.SRGBEncoding, plain.Encoding)
	assert.False(t, plain.FlipY)
	assert.Equal(t, 1, plain.Image.Width)
	assert.Equal(t, "image/png", plain.Image.MimeType)
	assert.Same(t, plain.Image, rotated.Image, "clones share the decoded image")
	require.NotNil(t, plain.Sampler)
	assert.Equal(t, wgpu.FilterModeNearest, plain.Sampler.MagFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, plain.Sampler.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, plain.Sampler.AddressModeV)
}

func TestLoadOverHTTP(t *testing.T) {
	const doc = `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 8, "uri": "values.bin"}],
		"bufferViews": [{"buffer": 0, "byteLength": 8}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [1], "max": [2]}],
		"animations": [{
			"name": "pulse",
			"channels": [{"sampler": 0, "target": {"node": 0, "path": "weights"}}],
			"samplers": [{"input": 0, "output": 0, "interpolation": "STEP"}]
		}],
		"nodes": [{}],
		"scenes": [{"nodes": [0]}]
	}`

	var hits atomic.Int32
	var token atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/assets/scene.gltf", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		token.Store(r.Header.Get("X-Token"))
		_, _ = io.WriteString(w, doc)
	})
	mux.HandleFunc("/assets/values.bin", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(float32Bytes(1, 2))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader(
		WithLogger(discardLogger()),
		WithRequestHeader(http.Header{"X-Token": {"secret"}}),
		WithDecodeWorkers(2),
	)
	defer l.Close()

	var progressed atomic.Bool
	url := srv.URL + "/assets/scene.gltf"
	m, err := l.Load(context.Background(), url, func(loaded, total int64) {
		progressed.Store(true)
	})
	require.NoError(t, err)
	assert.True(t, progressed.Load())
	assert.Equal(t, "secret", token.Load())
	assert.Equal(t, "scene.gltf", m.Name())
	assert.Equal(t, []string{"pulse"}, m.AnimationNames())
	assert.Equal(t, gltf.InterpolationStep, m.Animations()[0].Tracks[0].Interpolation)
	assert.Equal(t, int32(2), hits.Load())

	again, err := l.Load(context.Background(), url, nil)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, int32(2), hits.Load(), "cached models are not fetched again")
	assert.Same(t, m, l.Get(url))
	assert.Len(t, l.Models(), 1)
}

func TestLoadFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(WithLogger(discardLogger()))
	defer l.Close()

	_, err := l.Load(context.Background(), srv.URL+"/missing.glb", nil)
	require.Error(t, err)
	assert.Equal(t, ClassFetch, ClassOf(err))
}

func TestClosedLoader(t *testing.T) {
	l := NewLoader(WithLogger(discardLogger()), WithDecodeWorkers(1))
	l.Close()
	l.Close()

	_, err := l.ParseString(context.Background(), `{"asset":{"version":"2.0"}}`, "")
	assert.ErrorIs(t, err, ErrLoaderClosed)
}

func TestLoaderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	l := NewLoader(WithLogger(discardLogger()), WithMetricsRegisterer(reg))
	defer l.Close()
	metrics := l.(*loader).metrics

	_, err := l.Parse(context.Background(), buildGLB(t, 2, triangleJSON, triangleBin()), "")
	require.NoError(t, err)
	_, err = l.ParseString(context.Background(), `{"asset":{"version":"1.0"}}`, "")
	require.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.parses))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.errors.WithLabelValues("format")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.dependencies.WithLabelValues("mesh")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.dependencies.WithLabelValues("primitive")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.cacheHits.WithLabelValues("mesh")), float64(1))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.parseDuration))

	// a second loader on the same registry reuses the collectors
	other := NewLoader(WithLogger(discardLogger()), WithMetricsRegisterer(reg))
	defer other.Close()
	assert.Same(t, metrics.parses, other.(*loader).metrics.parses)
}
