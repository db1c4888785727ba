package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	logger       *slog.Logger
	fetcher      Fetcher
	path         string
	resourcePath string
	header       http.Header

	draco   DracoDecoder
	ktx2    KTX2Decoder
	meshopt MeshoptDecoder
	image   ImageDecoder

	policy        RequiredExtensionPolicy
	decodeWorkers int
	metrics       *loaderMetrics
	plugins       []*PluginFactory

	// poolMu is held for reading by every parse and for writing by Close.
	poolMu sync.RWMutex
	pool   worker.DynamicWorkerPool
	closed bool
}

// Loader defines the public-facing interface for loading glTF 2.0 and GLB assets.
// Each Load or Parse runs an independent parse with its own dependency cache; the Loader itself only holds
// configuration, the registered plugin factories, the decode pool and a cache of models loaded by URL.
type Loader interface {
	// Load fetches url and parses the result. Models are cached by the fetched URL; a cached model is
	// returned without fetching again.
	//
	// Parameters:
	//   - ctx: cancels the fetch and the parse
	//   - url: the asset URL or file path, relative to the configured path
	//   - onProgress: optional byte progress of the main fetch
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: a *ParseError describing the first hard failure
	Load(ctx context.Context, url string, onProgress ProgressFunc) (model.Model, error)

	// LoadAsync runs Load in the background. Exactly one of onLoad or onError is called.
	//
	// Parameters:
	//   - ctx: cancels the fetch and the parse
	//   - url: the asset URL or file path
	//   - onLoad: receives the model on success
	//   - onProgress: optional byte progress of the main fetch
	//   - onError: receives the failure
	LoadAsync(ctx context.Context, url string, onLoad func(model.Model), onProgress ProgressFunc, onError func(error))

	// Parse parses raw .gltf or .glb bytes.
	//
	// Parameters:
	//   - ctx: cancels the parse
	//   - data: the asset bytes
	//   - basePath: the base for relative buffer and image URIs, overridden by the configured resource path
	//
	// Returns:
	//   - model.Model: the parsed model
	//   - error: a *ParseError describing the first hard failure
	Parse(ctx context.Context, data []byte, basePath string) (model.Model, error)

	// ParseAsync runs Parse in the background. Exactly one of onLoad or onError is called.
	//
	// Parameters:
	//   - ctx: cancels the parse
	//   - data: the asset bytes
	//   - basePath: the base for relative URIs
	//   - onLoad: receives the model on success
	//   - onError: receives the failure
	ParseAsync(ctx context.Context, data []byte, basePath string, onLoad func(model.Model), onError func(error))

	// ParseString parses JSON text that is already decoded. The asset has no binary body.
	//
	// Parameters:
	//   - ctx: cancels the parse
	//   - content: the glTF JSON
	//   - basePath: the base for relative URIs
	//
	// Returns:
	//   - model.Model: the parsed model
	//   - error: a *ParseError describing the first hard failure
	ParseString(ctx context.Context, content string, basePath string) (model.Model, error)

	// Register adds a plugin factory. Registering the same factory twice has no effect.
	// Factories are instantiated once per parse in registration order.
	//
	// Parameters:
	//   - factory: the plugin factory
	//
	// Returns:
	//   - Loader: the loader, for chaining
	Register(factory *PluginFactory) Loader

	// Unregister removes a previously registered plugin factory.
	//
	// Parameters:
	//   - factory: the plugin factory
	//
	// Returns:
	//   - Loader: the loader, for chaining
	Unregister(factory *PluginFactory) Loader

	// Plugins returns the registered plugin factories in registration order.
	//
	// Returns:
	//   - []*PluginFactory: a copy of the registration list
	Plugins() []*PluginFactory

	// Get retrieves a model cached by Load. Returns nil if not found.
	//
	// Parameters:
	//   - url: the fetched URL
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(url string) model.Model

	// Models returns the full model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by fetched URL
	Models() map[string]model.Model

	// Close stops the decode pool. Later calls to Load and Parse fail with ErrLoaderClosed.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the default plugins registered and the specified options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		logger:     slog.Default(),
		fetcher:    NewFetcher(nil),
		image:      headerImageDecoder{},
		policy:     PolicyWarn,
		plugins:    DefaultPlugins(),
	}

	for _, option := range options {
		option(l)
	}

	if l.metrics == nil {
		l.metrics = newLoaderMetrics(nil)
	}
	if l.decodeWorkers > 0 {
		l.pool = worker.NewDynamicWorkerPool(l.decodeWorkers, l.decodeWorkers*16, time.Second)
	}
	return l
}

func (l *loader) Load(ctx context.Context, url string, onProgress ProgressFunc) (model.Model, error) {
	fetchURL := l.path + url

	l.mu.RLock()
	if cached, ok := l.modelCache[fetchURL]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	resourcePath := l.resourcePath
	if resourcePath == "" {
		resourcePath = gltf.ResolveURL(gltf.ExtractURLBase(url), l.path)
	}

	data, err := l.fetcher.Fetch(ctx, fetchURL, l.header, onProgress)
	if err != nil {
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			err = ctxErr
		} else {
			err = fmt.Errorf("%w: %s: %w", errFetch, fetchURL, err)
		}
		perr := newParseError("", 0, err)
		l.metrics.errors.WithLabelValues(ClassOf(perr).String()).Inc()
		return nil, perr
	}

	m, err := l.parse(ctx, path.Base(fetchURL), resourcePath, func() (*gltf.Container, error) {
		return gltf.Demultiplex(data)
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.modelCache[fetchURL] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) LoadAsync(ctx context.Context, url string, onLoad func(model.Model), onProgress ProgressFunc, onError func(error)) {
	go func() {
		m, err := l.Load(ctx, url, onProgress)
		deliver(m, err, onLoad, onError)
	}()
}

func (l *loader) Parse(ctx context.Context, data []byte, basePath string) (model.Model, error) {
	return l.parse(ctx, "", l.basePath(basePath), func() (*gltf.Container, error) {
		return gltf.Demultiplex(data)
	})
}

func (l *loader) ParseAsync(ctx context.Context, data []byte, basePath string, onLoad func(model.Model), onError func(error)) {
	go func() {
		m, err := l.Parse(ctx, data, basePath)
		deliver(m, err, onLoad, onError)
	}()
}

func (l *loader) ParseString(ctx context.Context, content string, basePath string) (model.Model, error) {
	return l.parse(ctx, "", l.basePath(basePath), func() (*gltf.Container, error) {
		return gltf.DemultiplexString(content), nil
	})
}

func (l *loader) Register(factory *PluginFactory) Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	if factory != nil && !slices.Contains(l.plugins, factory) {
		l.plugins = append(l.plugins, factory)
	}
	return l
}

func (l *loader) Unregister(factory *PluginFactory) Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plugins = slices.DeleteFunc(l.plugins, func(f *PluginFactory) bool {
		return f == factory
	})
	return l
}

func (l *loader) Plugins() []*PluginFactory {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.plugins)
}

func (l *loader) Get(url string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[url]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Close() {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.pool != nil {
		l.pool.Stop()
	}
}

// basePath returns the configured resource path, or base when none is configured.
func (l *loader) basePath(base string) string {
	if l.resourcePath != "" {
		return l.resourcePath
	}
	return base
}

// parse runs one parse end to end: demultiplex, decode the JSON, resolve the dependency graph.
// Every failure is returned as a *ParseError and counted by class.
func (l *loader) parse(ctx context.Context, name, resourcePath string, demux func() (*gltf.Container, error)) (m model.Model, err error) {
	start := time.Now()
	l.metrics.parses.Inc()
	defer func() {
		l.metrics.parseDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			l.metrics.errors.WithLabelValues(ClassOf(err).String()).Inc()
			l.logger.Error("glTF parse failed", "name", name, "error", err)
		}
	}()

	l.poolMu.RLock()
	defer l.poolMu.RUnlock()
	if l.closed {
		return nil, newParseError("", 0, ErrLoaderClosed)
	}

	container, err := demux()
	if err != nil {
		return nil, &ParseError{Class: ClassFormat, Err: err}
	}
	doc, err := gltf.ParseDocument(container.Content)
	if err != nil {
		return nil, &ParseError{Class: ClassFormat, Err: err}
	}

	opts := l.parserOptions(resourcePath)
	opts.name = name
	p := newParser(ctx, doc, container, opts)
	defer p.close()

	m, err = p.parse()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("glTF parsed", "name", name, "warnings", len(m.Warnings()), "duration", time.Since(start))
	return m, nil
}

// parserOptions snapshots the loader configuration for one parse.
func (l *loader) parserOptions(resourcePath string) parserOptions {
	return parserOptions{
		logger:       l.logger,
		fetcher:      l.fetcher,
		resourcePath: resourcePath,
		header:       l.header,
		draco:        l.draco,
		ktx2:         l.ktx2,
		meshopt:      l.meshopt,
		image:        l.image,
		policy:       l.policy,
		metrics:      l.metrics,
		pool:         l.pool,
		factories:    l.Plugins(),
	}
}

// deliver calls exactly one of onLoad or onError.
func deliver(m model.Model, err error, onLoad func(model.Model), onError func(error)) {
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onLoad != nil {
		onLoad(m)
	}
}
