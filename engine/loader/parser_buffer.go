package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"golang.org/x/sync/errgroup"
)

func (p *parser) loadBuffer(ctx context.Context, index int) ([]byte, error) {
	def, err := at(p.doc.Buffers, "buffers", index)
	if err != nil {
		return nil, err
	}
	if def.Type != "" && def.Type != "arraybuffer" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBufferType, def.Type)
	}

	if def.URI == "" {
		if index != 0 || p.body == nil {
			return nil, fmt.Errorf("%w: buffer %d", ErrMissingBinaryChunk, index)
		}
		return p.body, nil
	}

	data, err := p.fetch(ctx, def.URI)
	if err != nil {
		return nil, err
	}
	if len(data) < def.ByteLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSizeMismatch, len(data), def.ByteLength)
	}
	return data, nil
}

// fetch retrieves a document-relative URI through the Fetcher.
func (p *parser) fetch(ctx context.Context, uri string) ([]byte, error) {
	url := gltf.ResolveURL(uri, p.resourcePath)
	data, err := p.fetcher.Fetch(ctx, url, p.header, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, fmt.Errorf("%w: %s: %w", errFetch, displayURL(url), err)
	}
	return data, nil
}

func (p *parser) loadBufferView(ctx context.Context, index int) ([]byte, error) {
	def, err := at(p.doc.BufferViews, "bufferViews", index)
	if err != nil {
		return nil, err
	}

	for _, pl := range p.plugins {
		if bl, ok := pl.(BufferViewLoader); ok {
			data, handled, err := bl.LoadBufferView(ctx, index)
			if err != nil {
				return nil, err
			}
			if handled {
				return data, nil
			}
		}
	}

	buf, err := p.Buffer(ctx, def.Buffer)
	if err != nil {
		return nil, err
	}
	if !spanFits(len(buf), def.ByteOffset, def.ByteLength) {
		return nil, fmt.Errorf("%w: bufferView %d spans %d bytes at offset %d of %d", ErrBufferViewOverflow, index, def.ByteLength, def.ByteOffset, len(buf))
	}
	end := def.ByteOffset + def.ByteLength
	return buf[def.ByteOffset:end:end], nil
}

func (p *parser) loadAccessor(ctx context.Context, index int) (*model.BufferAttribute, error) {
	acc, err := at(p.doc.Accessors, "accessors", index)
	if err != nil {
		return nil, err
	}

	var src accessorSource
	g, gctx := errgroup.WithContext(ctx)
	if acc.BufferView != nil {
		bv, err := at(p.doc.BufferViews, "bufferViews", *acc.BufferView)
		if err != nil {
			return nil, err
		}
		if bv.ByteStride != nil {
			src.stride = *bv.ByteStride
		}
		g.Go(func() (err error) {
			src.view, err = p.BufferView(gctx, *acc.BufferView)
			return err
		})
	}
	if acc.Sparse != nil {
		g.Go(func() (err error) {
			src.sparseIndices, err = p.BufferView(gctx, acc.Sparse.Indices.BufferView)
			return err
		})
		g.Go(func() (err error) {
			src.sparseValues, err = p.BufferView(gctx, acc.Sparse.Values.BufferView)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p.decode(ctx, index, func() (*model.BufferAttribute, error) {
		return decodeAccessor(acc, src)
	})
}

// loadImageSource reads the encoded bytes of an image. Fetch failures are downgraded to a warning and
// a nil image so the referencing textures are skipped.
func (p *parser) loadImageSource(ctx context.Context, index int) (*common.ImportedImage, error) {
	def, err := at(p.doc.Images, "images", index)
	if err != nil {
		return nil, err
	}

	img := &common.ImportedImage{Name: def.Name, MimeType: def.MimeType}
	switch {
	case def.BufferView != nil:
		if img.Data, err = p.BufferView(ctx, *def.BufferView); err != nil {
			return nil, err
		}
	case gltf.IsDataURI(def.URI):
		data, mime, err := gltf.DecodeDataURI(def.URI)
		if err != nil {
			p.Warn("could not decode image data URI", "kind", KindImage, "index", index, "error", err)
			return nil, nil
		}
		img.Data = data
		img.MimeType = common.Coalesce(img.MimeType, mime)
	case def.URI != "":
		img.URI = gltf.ResolveURL(def.URI, p.resourcePath)
		data, err := p.fetch(ctx, def.URI)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.Warn("could not load texture image", "kind", KindImage, "index", index, "uri", img.URI, "error", err)
			return nil, nil
		}
		img.Data = data
	default:
		return nil, fmt.Errorf("%w: image %d", ErrMissingImageSource, index)
	}
	return img, nil
}

// displayURL shortens data URIs for error messages.
func displayURL(url string) string {
	if gltf.IsDataURI(url) && len(url) > 32 {
		return url[:32] + "..."
	}
	return url
}
