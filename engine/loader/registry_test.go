package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, doc *gltf.Document) *parser {
	t.Helper()
	p := newParser(context.Background(), doc, &gltf.Container{}, parserOptions{
		logger:  discardLogger(),
		fetcher: NewFetcher(nil),
		image:   headerImageDecoder{},
		policy:  PolicyWarn,
		metrics: newLoaderMetrics(nil),
	})
	t.Cleanup(p.close)
	return p
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	v, loaded := r.GetOrAdd("mesh:0", func() any { return "first" })
	assert.False(t, loaded)
	assert.Equal(t, "first", v)

	v, loaded = r.GetOrAdd("mesh:0", func() any { return "second" })
	assert.True(t, loaded)
	assert.Equal(t, "first", v)

	r.Add("texture:1", 42)
	got, ok := r.Get("texture:1")
	require.True(t, ok)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, r.Len())

	r.Remove("texture:1")
	_, ok = r.Get("texture:1")
	assert.False(t, ok)

	r.RemoveAll()
	assert.Zero(t, r.Len())
}

func TestMemoizeConstructsOnce(t *testing.T) {
	p := newTestParser(t, &gltf.Document{})

	type value struct{ n int }
	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &value{n: 7}, nil
	}

	const callers = 32
	results := make([]any, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.memoize(context.Background(), p.cache, "mesh:3", "mesh", fn)
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, float64(callers-1), testutil.ToFloat64(p.metrics.cacheHits.WithLabelValues("mesh")))
}

func TestMemoizeSharesFailure(t *testing.T) {
	p := newTestParser(t, &gltf.Document{})
	boom := errors.New("boom")

	_, err := p.memoize(context.Background(), p.cache, "buffer:0", "buffer", func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	_, err = p.memoize(context.Background(), p.cache, "buffer:0", "buffer", func(context.Context) (any, error) {
		t.Fatal("construction must not run twice")
		return nil, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMemoizeWaitHonorsContext(t *testing.T) {
	p := newTestParser(t, &gltf.Document{})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = p.memoize(context.Background(), p.cache, "image:0", "image", func(context.Context) (any, error) {
			close(started)
			<-release
			return "done", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.memoize(ctx, p.cache, "image:0", "image", nil)
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
