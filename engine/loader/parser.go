package loader

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// DependencyKind names a document table the parser resolves entries of.
type DependencyKind string

const (
	KindScene      DependencyKind = "scene"
	KindNode       DependencyKind = "node"
	KindMesh       DependencyKind = "mesh"
	KindAccessor   DependencyKind = "accessor"
	KindBufferView DependencyKind = "bufferView"
	KindBuffer     DependencyKind = "buffer"
	KindMaterial   DependencyKind = "material"
	KindTexture    DependencyKind = "texture"
	KindImage      DependencyKind = "image"
	KindSkin       DependencyKind = "skin"
	KindAnimation  DependencyKind = "animation"
	KindCamera     DependencyKind = "camera"
	KindLight      DependencyKind = "light"
)

// userDataExtensions is the UserData key holding extensions no handler consumed.
const userDataExtensions = "gltfExtensions"

// Parser is the per-parse dependency resolver handed to plugins.
// Every dependency is constructed at most once per parse; repeated and concurrent requests for the same
// (kind, index) receive the identical value. Resolved values are shared and must not be mutated in place.
type Parser interface {
	// Document returns the parsed JSON document.
	//
	// Returns:
	//   - *gltf.Document: the document
	Document() *gltf.Document

	// GetDependency resolves one entry of a document table.
	//
	// Parameters:
	//   - ctx: ends the wait early; the construction itself runs until the parse ends
	//   - kind: the table
	//   - index: the table index
	//
	// Returns:
	//   - any: the constructed value, e.g. *model.Mesh for KindMesh; nil for textures without a usable image
	//   - error: the first hard failure of the construction
	GetDependency(ctx context.Context, kind DependencyKind, index int) (any, error)

	// GetDependencies resolves every entry of a document table in index order.
	//
	// Parameters:
	//   - ctx: ends the wait early
	//   - kind: the table
	//
	// Returns:
	//   - []any: one value per table entry
	//   - error: the first hard failure
	GetDependencies(ctx context.Context, kind DependencyKind) ([]any, error)

	// Accessor resolves a decoded accessor.
	Accessor(ctx context.Context, index int) (*model.BufferAttribute, error)

	// BufferView resolves the bytes of a buffer view.
	BufferView(ctx context.Context, index int) ([]byte, error)

	// Buffer resolves the bytes of a buffer.
	Buffer(ctx context.Context, index int) ([]byte, error)

	// Texture resolves a texture. Returns nil when the texture has no usable image.
	Texture(ctx context.Context, index int) (*model.Texture, error)

	// AssignTexture resolves the texture referenced by info, applies texture extensions and the requested
	// color encoding, and stores the result in slot of params.
	//
	// Parameters:
	//   - ctx: ends the wait early
	//   - params: the material parameters being built
	//   - slot: the texture slot, e.g. model.MapColor
	//   - info: the texture reference
	//   - encoding: the color space of the texel data
	//
	// Returns:
	//   - *model.Texture: the assigned texture, nil when the texture has no usable image
	//   - error: the first hard failure
	AssignTexture(ctx context.Context, params *model.MaterialParams, slot string, info *gltf.TextureInfo, encoding model.TextureEncoding) (*model.Texture, error)

	// LoadTextureImage builds a texture for textureIndex from image sourceIndex, decoded by decoder.
	// Results are shared per (source, sampler, decoder type).
	//
	// Parameters:
	//   - ctx: ends the wait early
	//   - textureIndex: the texture providing the sampler
	//   - sourceIndex: the image to read
	//   - decoder: prepares the encoded image
	//
	// Returns:
	//   - *model.Texture: the texture, nil when the image could not be loaded
	//   - error: the first hard failure
	LoadTextureImage(ctx context.Context, textureIndex, sourceIndex int, decoder ImageDecoder) (*model.Texture, error)

	// Extension returns the handler registered for an extension name, or nil.
	Extension(name string) any

	// Registry returns the keyed store backing the dependency cache.
	Registry() *Registry

	// Associations returns a snapshot of the engine object to document origin map.
	Associations() map[any]model.Association

	// Logger returns the parse logger.
	Logger() *slog.Logger

	// Warn records a non-fatal issue. args are slog key-value pairs.
	Warn(msg string, args ...any)

	// DRACODecoder returns the injected draco decoder, or nil.
	DRACODecoder() DracoDecoder

	// KTX2Decoder returns the injected KTX2 decoder, or nil.
	KTX2Decoder() KTX2Decoder

	// MeshoptDecoder returns the injected meshopt decoder, or nil.
	MeshoptDecoder() MeshoptDecoder

	// ImageDecoder returns the decoder used for plain image sources.
	ImageDecoder() ImageDecoder
}

// parserOptions is the loader state a parse runs with.
type parserOptions struct {
	name         string
	logger       *slog.Logger
	fetcher      Fetcher
	resourcePath string
	header       http.Header
	draco        DracoDecoder
	ktx2         KTX2Decoder
	meshopt      MeshoptDecoder
	image        ImageDecoder
	policy       RequiredExtensionPolicy
	metrics      *loaderMetrics
	pool         worker.DynamicWorkerPool
	factories    []*PluginFactory
}

// parser is the implementation of the Parser interface.
type parser struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	doc  *gltf.Document
	body []byte
	parserOptions

	cache *Registry

	extensions map[string]any
	plugins    []Plugin

	// populated by markDefs before any dependency resolves
	nodeNames  []string
	joints     map[int]bool
	meshRefs   map[int]int
	cameraRefs map[int]int

	mu           sync.Mutex
	meshUses     map[int]int
	cameraUses   map[int]int
	warnings     []string
	associations map[any]model.Association
	taskID       int
}

var _ Parser = &parser{}

// newParser creates a parser for one document. The parse ends when ctx ends or the first hard failure occurs.
func newParser(ctx context.Context, doc *gltf.Document, container *gltf.Container, opts parserOptions) *parser {
	pctx, cancel := context.WithCancelCause(ctx)
	p := &parser{
		ctx:           pctx,
		cancel:        cancel,
		doc:           doc,
		body:          container.Body,
		parserOptions: opts,
		cache:         NewRegistry(),
		extensions:    map[string]any{},
		joints:        map[int]bool{},
		meshRefs:      map[int]int{},
		cameraRefs:    map[int]int{},
		meshUses:      map[int]int{},
		cameraUses:    map[int]int{},
		associations:  map[any]model.Association{},
	}
	if container.Binary {
		p.extensions[gltf.ExtensionBinaryGLTF] = container
	}
	return p
}

// parse resolves the whole document and assembles the model.
func (p *parser) parse() (model.Model, error) {
	if err := p.initExtensions(); err != nil {
		p.fail(err)
		return nil, err
	}
	if err := p.markDefs(); err != nil {
		err = newParseError("", 0, err)
		p.fail(err)
		return nil, err
	}

	var scenes, animations, cameras []any
	g, ctx := errgroup.WithContext(p.ctx)
	g.Go(func() (err error) {
		scenes, err = p.GetDependencies(ctx, KindScene)
		return err
	})
	g.Go(func() (err error) {
		animations, err = p.GetDependencies(ctx, KindAnimation)
		return err
	})
	g.Go(func() (err error) {
		cameras, err = p.GetDependencies(ctx, KindCamera)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, p.firstError(err)
	}

	opts := []model.ModelBuilderOption{
		model.WithName(p.name),
		model.WithScenes(collect[*model.Scene](scenes)),
		model.WithAnimations(collect[*model.AnimationClip](animations)),
		model.WithCameras(collect[*model.Camera](cameras)),
		model.WithAsset(model.Asset{
			Version:    p.doc.Asset.Version,
			MinVersion: p.doc.Asset.MinVersion,
			Generator:  p.doc.Asset.Generator,
			Copyright:  p.doc.Asset.Copyright,
		}),
	}
	if p.doc.Scene != nil {
		if *p.doc.Scene < 0 || *p.doc.Scene >= len(scenes) {
			err := newParseError(KindScene, *p.doc.Scene, outOfRange("scenes", *p.doc.Scene, len(scenes)))
			p.fail(err)
			return nil, err
		}
		opts = append(opts, model.WithScene(scenes[*p.doc.Scene].(*model.Scene)))
	}

	userData := map[string]any{}
	p.assignExtras(userData, p.doc.Extras)
	p.addUnknownExtensions(userData, p.doc.Extensions)

	opts = append(opts,
		model.WithUserData(userData),
		model.WithWarnings(p.Warnings()),
		model.WithAssociations(p.Associations()),
	)
	return model.NewModel(opts...), nil
}

// close ends the parse and releases the dependency cache.
func (p *parser) close() {
	p.cancel(context.Canceled)
	p.cache.RemoveAll()
}

// fail records the first hard failure and cancels every pending construction.
func (p *parser) fail(err error) {
	p.cancel(err)
}

// firstError returns the failure that ended the parse, preferring the recorded cause over err.
func (p *parser) firstError(err error) error {
	if cause := context.Cause(p.ctx); cause != nil && cause != context.Canceled {
		return cause
	}
	return err
}

// resolve memoizes fn under key and cancels the parse when it fails.
func (p *parser) resolve(ctx context.Context, key, label string, kind DependencyKind, index int, fn func(ctx context.Context) (any, error)) (any, error) {
	v, err := p.memoize(ctx, p.cache, key, label, fn)
	if err != nil {
		err = newParseError(kind, index, err)
		p.fail(err)
		return nil, err
	}
	return v, nil
}

func (p *parser) Document() *gltf.Document {
	return p.doc
}

func (p *parser) GetDependency(ctx context.Context, kind DependencyKind, index int) (any, error) {
	key := string(kind) + ":" + strconv.Itoa(index)
	return p.resolve(ctx, key, string(kind), kind, index, func(ctx context.Context) (any, error) {
		p.metrics.dependencies.WithLabelValues(string(kind)).Inc()
		return p.loadDependency(ctx, kind, index)
	})
}

func (p *parser) loadDependency(ctx context.Context, kind DependencyKind, index int) (any, error) {
	for _, pl := range p.plugins {
		if dl, ok := pl.(DependencyLoader); ok {
			v, handled, err := dl.LoadDependency(ctx, kind, index)
			if err != nil {
				return nil, err
			}
			if handled {
				return v, nil
			}
		}
	}

	// Typed nil results are returned as untyped nil so callers can test v == nil.
	switch kind {
	case KindScene:
		return p.loadScene(ctx, index)
	case KindNode:
		return p.loadNode(ctx, index)
	case KindMesh:
		return p.loadMesh(ctx, index)
	case KindAccessor:
		return p.loadAccessor(ctx, index)
	case KindBufferView:
		return p.loadBufferView(ctx, index)
	case KindBuffer:
		return p.loadBuffer(ctx, index)
	case KindMaterial:
		return p.loadMaterial(ctx, index)
	case KindTexture:
		t, err := p.loadTexture(ctx, index)
		if t == nil {
			return nil, err
		}
		return t, err
	case KindImage:
		img, err := p.loadImageSource(ctx, index)
		if img == nil {
			return nil, err
		}
		return img, err
	case KindSkin:
		return p.loadSkin(ctx, index)
	case KindAnimation:
		return p.loadAnimation(ctx, index)
	case KindCamera:
		return p.loadCamera(ctx, index)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, kind)
	}
}

func (p *parser) GetDependencies(ctx context.Context, kind DependencyKind) ([]any, error) {
	n, err := p.tableLen(kind)
	if err != nil {
		return nil, newParseError(kind, 0, err)
	}
	v, err := p.resolve(ctx, string(kind)+"s", string(kind)+"s", kind, 0, func(ctx context.Context) (any, error) {
		return fanOut(ctx, n, func(ctx context.Context, i int) (any, error) {
			return p.GetDependency(ctx, kind, i)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

func (p *parser) tableLen(kind DependencyKind) (int, error) {
	switch kind {
	case KindScene:
		return len(p.doc.Scenes), nil
	case KindNode:
		return len(p.doc.Nodes), nil
	case KindMesh:
		return len(p.doc.Meshes), nil
	case KindAccessor:
		return len(p.doc.Accessors), nil
	case KindBufferView:
		return len(p.doc.BufferViews), nil
	case KindBuffer:
		return len(p.doc.Buffers), nil
	case KindMaterial:
		return len(p.doc.Materials), nil
	case KindTexture:
		return len(p.doc.Textures), nil
	case KindImage:
		return len(p.doc.Images), nil
	case KindSkin:
		return len(p.doc.Skins), nil
	case KindAnimation:
		return len(p.doc.Animations), nil
	case KindCamera:
		return len(p.doc.Cameras), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownDependency, kind)
	}
}

func (p *parser) Accessor(ctx context.Context, index int) (*model.BufferAttribute, error) {
	return dependencyAs[*model.BufferAttribute](p.GetDependency(ctx, KindAccessor, index))
}

func (p *parser) BufferView(ctx context.Context, index int) ([]byte, error) {
	return dependencyAs[[]byte](p.GetDependency(ctx, KindBufferView, index))
}

func (p *parser) Buffer(ctx context.Context, index int) ([]byte, error) {
	return dependencyAs[[]byte](p.GetDependency(ctx, KindBuffer, index))
}

func (p *parser) Texture(ctx context.Context, index int) (*model.Texture, error) {
	return dependencyAs[*model.Texture](p.GetDependency(ctx, KindTexture, index))
}

func (p *parser) node(ctx context.Context, index int) (*model.Node, error) {
	return dependencyAs[*model.Node](p.GetDependency(ctx, KindNode, index))
}

func (p *parser) Extension(name string) any {
	return p.extensions[name]
}

func (p *parser) Registry() *Registry {
	return p.cache
}

func (p *parser) Associations() map[any]model.Association {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.associations)
}

func (p *parser) Logger() *slog.Logger {
	return p.logger
}

func (p *parser) Warn(msg string, args ...any) {
	p.logger.Warn(msg, args...)
	p.metrics.warnings.Inc()

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	p.mu.Lock()
	p.warnings = append(p.warnings, sb.String())
	p.mu.Unlock()
}

// Warnings returns the warnings recorded so far.
func (p *parser) Warnings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.warnings...)
}

func (p *parser) DRACODecoder() DracoDecoder {
	return p.draco
}

func (p *parser) KTX2Decoder() KTX2Decoder {
	return p.ktx2
}

func (p *parser) MeshoptDecoder() MeshoptDecoder {
	return p.meshopt
}

func (p *parser) ImageDecoder() ImageDecoder {
	return p.image
}

// associate records the document origin of an engine object.
func (p *parser) associate(obj any, kind DependencyKind, index, primitive int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.associations[obj] = model.Association{Kind: string(kind), Index: index, Primitive: primitive}
}

// copyAssociation gives clone the origin of original.
func (p *parser) copyAssociation(original, clone any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.associations[original]; ok {
		p.associations[clone] = a
	}
}

// assignExtras copies object extras into userData. Non-object extras are ignored with a warning.
func (p *parser) assignExtras(userData map[string]any, extras json.RawMessage) {
	if len(extras) == 0 {
		return
	}
	var m map[string]any
	if err := json.Unmarshal(extras, &m); err != nil {
		p.Warn("ignoring non-object extras", "extras", string(extras))
		return
	}
	maps.Copy(userData, m)
}

// addUnknownExtensions copies extensions without a registered handler into userData["gltfExtensions"].
func (p *parser) addUnknownExtensions(userData map[string]any, exts gltf.Extensions) {
	for name, raw := range exts {
		if _, known := p.extensions[name]; known {
			continue
		}
		unknown, _ := userData[userDataExtensions].(map[string]any)
		if unknown == nil {
			unknown = map[string]any{}
			userData[userDataExtensions] = unknown
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			v = string(raw)
		}
		unknown[name] = v
	}
}

// decode runs fn on the decode pool, or inline when no pool is configured.
func (p *parser) decode(ctx context.Context, payload any, fn func() (*model.BufferAttribute, error)) (*model.BufferAttribute, error) {
	if p.pool == nil {
		return fn()
	}

	type result struct {
		attr *model.BufferAttribute
		err  error
	}
	done := make(chan result, 1)

	p.mu.Lock()
	p.taskID++
	id := p.taskID
	p.mu.Unlock()

	p.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: payload,
		Do: func() (any, error) {
			attr, err := fn()
			done <- result{attr: attr, err: err}
			return attr, err
		},
	})

	select {
	case r := <-done:
		return r.attr, r.err
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// uniqueName sanitizes name for use as a node name and suffixes repeats with _1, _2, ...
func uniqueName(used map[string]int, name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '.', ':', '/':
			return -1
		case ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, name)
	if n, ok := used[sanitized]; ok {
		used[sanitized] = n + 1
		return sanitized + "_" + strconv.Itoa(n+1)
	}
	used[sanitized] = 0
	return sanitized
}

// at returns a pointer to table[index] or a reference error.
func at[T any](table []T, name string, index int) (*T, error) {
	if index < 0 || index >= len(table) {
		return nil, outOfRange(name, index, len(table))
	}
	return &table[index], nil
}

// dependencyAs converts a resolved dependency to T. A nil dependency yields the zero T.
func dependencyAs[T any](v any, err error) (T, error) {
	var zero T
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %T, got %T", ErrUnexpectedDependency, zero, v)
	}
	return t, nil
}

// fanOut runs fn for 0..n-1 concurrently and returns results in index order.
// The first error cancels the remaining calls.
func fanOut[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// collect converts resolved dependencies to a typed slice.
func collect[T any](values []any) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// imageSource resolves the encoded bytes of an image.
func (p *parser) imageSource(ctx context.Context, index int) (*common.ImportedImage, error) {
	return dependencyAs[*common.ImportedImage](p.GetDependency(ctx, KindImage, index))
}
