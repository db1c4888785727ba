package loader

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/prometheus/client_golang/prometheus"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the structured logger used for warnings and parse events.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFetcher is an option builder that replaces the fetcher used for the main asset, buffers and images.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		if f != nil {
			l.fetcher = f
		}
	}
}

// WithPath is an option builder that sets the prefix prepended to every URL passed to Load.
//
// Parameters:
//   - path: the URL prefix
//
// Returns:
//   - LoaderBuilderOption: a function that applies the path option to a loader
func WithPath(path string) LoaderBuilderOption {
	return func(l *loader) {
		l.path = path
	}
}

// WithResourcePath is an option builder that sets the base for relative buffer and image URIs.
//
// Parameters:
//   - path: the resource base
//
// Returns:
//   - LoaderBuilderOption: a function that applies the resource path option to a loader
func WithResourcePath(path string) LoaderBuilderOption {
	return func(l *loader) {
		l.resourcePath = path
	}
}

// WithRequestHeader is an option builder that sets headers sent with every network fetch.
//
// Parameters:
//   - header: the request headers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the header option to a loader
func WithRequestHeader(header http.Header) LoaderBuilderOption {
	return func(l *loader) {
		l.header = header.Clone()
	}
}

// WithDRACODecoder is an option builder that enables KHR_draco_mesh_compression.
//
// Parameters:
//   - d: the geometry decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithDRACODecoder(d DracoDecoder) LoaderBuilderOption {
	return func(l *loader) {
		l.draco = d
	}
}

// WithKTX2Decoder is an option builder that enables KHR_texture_basisu.
//
// Parameters:
//   - d: the KTX2 transcoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithKTX2Decoder(d KTX2Decoder) LoaderBuilderOption {
	return func(l *loader) {
		l.ktx2 = d
	}
}

// WithMeshoptDecoder is an option builder that enables EXT_meshopt_compression.
//
// Parameters:
//   - d: the meshopt decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithMeshoptDecoder(d MeshoptDecoder) LoaderBuilderOption {
	return func(l *loader) {
		l.meshopt = d
	}
}

// WithImageDecoder is an option builder that replaces the decoder used for plain image sources.
//
// Parameters:
//   - d: the image decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithImageDecoder(d ImageDecoder) LoaderBuilderOption {
	return func(l *loader) {
		if d != nil {
			l.image = d
		}
	}
}

// WithDecodeWorkers is an option builder that sets the size of the accessor decode pool.
// Zero decodes accessors on the requesting goroutine.
//
// Parameters:
//   - n: the number of pool workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.decodeWorkers = max(n, 0)
	}
}

// WithRequiredExtensionPolicy is an option builder that selects how unhandled required extensions are treated.
//
// Parameters:
//   - policy: PolicyWarn or PolicyError
//
// Returns:
//   - LoaderBuilderOption: a function that applies the policy option to a loader
func WithRequiredExtensionPolicy(policy RequiredExtensionPolicy) LoaderBuilderOption {
	return func(l *loader) {
		l.policy = policy
	}
}

// WithMetricsRegisterer is an option builder that registers the parse metrics with reg.
//
// Parameters:
//   - reg: the Prometheus registerer
//
// Returns:
//   - LoaderBuilderOption: a function that applies the metrics option to a loader
func WithMetricsRegisterer(reg prometheus.Registerer) LoaderBuilderOption {
	return func(l *loader) {
		l.metrics = newLoaderMetrics(reg)
	}
}

// WithConfig is an option builder that applies a loader config file.
// Plugins named in DisabledPlugins are unregistered; options applied later still override the other fields.
//
// Parameters:
//   - cfg: a validated config
//
// Returns:
//   - LoaderBuilderOption: a function that applies the config to a loader
func WithConfig(cfg *Config) LoaderBuilderOption {
	return func(l *loader) {
		if cfg == nil {
			return
		}
		l.path = cfg.Path
		l.resourcePath = cfg.ResourcePath
		l.header = cfg.header()
		l.decodeWorkers = cfg.DecodeWorkers
		if cfg.RequiredExtensionPolicy != "" {
			l.policy = cfg.RequiredExtensionPolicy
		}
		l.plugins = slices.DeleteFunc(l.plugins, func(f *PluginFactory) bool {
			return slices.Contains(cfg.DisabledPlugins, f.Name)
		})
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
