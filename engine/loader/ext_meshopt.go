package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
)

// meshoptPlugin handles EXT_meshopt_compression through the injected MeshoptDecoder.
// Without a decoder the buffer view falls back to its uncompressed buffer.
type meshoptPlugin struct {
	parser Parser
}

func newMeshoptPlugin(p Parser) Plugin {
	return &meshoptPlugin{parser: p}
}

func (e *meshoptPlugin) Name() string {
	return gltf.ExtensionMeshoptCompression
}

func (e *meshoptPlugin) Ready() bool {
	return e.parser.MeshoptDecoder() != nil
}

func (e *meshoptPlugin) LoadBufferView(ctx context.Context, bufferViewIndex int) ([]byte, bool, error) {
	views := e.parser.Document().BufferViews
	if bufferViewIndex < 0 || bufferViewIndex >= len(views) {
		return nil, false, nil
	}
	var ext gltf.MeshoptCompression
	ok, err := views[bufferViewIndex].Extensions.Decode(e.Name(), &ext)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s payload: %w", e.Name(), err)
	}
	if !ok || !e.Ready() {
		return nil, false, nil
	}

	buf, err := e.parser.Buffer(ctx, ext.Buffer)
	if err != nil {
		return nil, false, err
	}
	if !spanFits(len(buf), ext.ByteOffset, ext.ByteLength) {
		return nil, false, fmt.Errorf("%w: meshopt source of %d bytes at offset %d of %d", ErrBufferViewOverflow, ext.ByteLength, ext.ByteOffset, len(buf))
	}
	end := ext.ByteOffset + ext.ByteLength
	if ext.Count < 0 || ext.ByteStride <= 0 || ext.Count > maxAccessorValues/ext.ByteStride {
		return nil, false, fmt.Errorf("invalid %s payload: count %d, byteStride %d", e.Name(), ext.Count, ext.ByteStride)
	}

	dst := make([]byte, ext.Count*ext.ByteStride)
	filter := common.Coalesce(ext.Filter, gltf.MeshoptFilterNone)
	if err := e.parser.MeshoptDecoder().Decode(ctx, dst, ext.Count, ext.ByteStride, buf[ext.ByteOffset:end], ext.Mode, filter); err != nil {
		return nil, false, fmt.Errorf("meshopt decode failed: %w", err)
	}
	return dst, true, nil
}
