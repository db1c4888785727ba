package loader

import (
	"context"
)

// future is the shared result of a memoized computation.
// An absent registry entry means not started; an entry whose done channel is open is in progress;
// a closed done channel means complete.
type future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) resolve(value any, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// wait blocks until the future completes or ctx ends.
func (f *future) wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// memoize runs fn once per key in reg. Every caller, concurrent or later, receives the same value and error.
// fn runs on the parser's root context so a canceled requester does not poison the shared result.
func (p *parser) memoize(ctx context.Context, reg *Registry, key, label string, fn func(ctx context.Context) (any, error)) (any, error) {
	v, loaded := reg.GetOrAdd(key, func() any { return newFuture() })
	f := v.(*future)
	if loaded {
		p.metrics.cacheHits.WithLabelValues(label).Inc()
		return f.wait(ctx)
	}

	value, err := fn(p.ctx)
	f.resolve(value, err)
	return value, err
}
