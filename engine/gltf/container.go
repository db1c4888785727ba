package gltf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Common errors returned while demultiplexing a container.
var (
	ErrHeaderTooShort   = errors.New("GLB header too short")
	ErrLegacyBinary     = errors.New("legacy binary glTF detected: use a glTF 1.0 loader")
	ErrTruncated        = errors.New("GLB declared length exceeds data")
	ErrChunkOverflow    = errors.New("GLB chunk length exceeds container")
	ErrMissingJSONChunk = errors.New("GLB file missing JSON chunk")
)

// glbHeader is the header of a GLB file (12 bytes).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// glbChunkHeader is the header of a GLB chunk (8 bytes).
type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// Container is the demultiplexed form of a glTF asset: the JSON content plus the optional binary chunk.
type Container struct {
	// Content is the UTF-8 JSON text of the document.
	Content string

	// Body is the BIN chunk of a binary container, nil otherwise.
	Body []byte

	// Binary reports whether the source was a GLB container.
	Binary bool

	// Version is the GLB container version, 0 for plain JSON.
	Version uint32
}

// IsGLB reports whether data begins with the binary glTF magic.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == GLBMagic
}

// Demultiplex splits raw bytes into JSON content and binary body.
// Bytes that do not begin with the GLB magic are treated as UTF-8 JSON text.
//
// Parameters:
//   - data: the raw asset bytes
//
// Returns:
//   - *Container: the demultiplexed container
//   - error: error if the binary header or chunk layout is malformed
func Demultiplex(data []byte) (*Container, error) {
	if !IsGLB(data) {
		content, err := decodeText(data)
		if err != nil {
			return nil, err
		}
		return &Container{Content: content}, nil
	}
	return demultiplexGLB(data)
}

// DemultiplexString wraps JSON text that is already decoded.
//
// Parameters:
//   - content: the JSON text
//
// Returns:
//   - *Container: a container with no binary body
func DemultiplexString(content string) *Container {
	return &Container{Content: content}
}

func demultiplexGLB(data []byte) (*Container, error) {
	if len(data) < GLBHeaderLength {
		return nil, ErrHeaderTooShort
	}

	var header glbHeader
	if err := binary.Read(bytes.NewReader(data[:GLBHeaderLength]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Version < GLBVersion {
		return nil, ErrLegacyBinary
	}
	if int(header.Length) > len(data) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrTruncated, header.Length, len(data))
	}

	c := &Container{Binary: true, Version: header.Version}
	haveJSON := false

	offset := GLBHeaderLength
	end := int(header.Length)
	for offset < end {
		if end-offset < GLBChunkHeader {
			return nil, fmt.Errorf("%w: dangling %d bytes at offset %d", ErrChunkOverflow, end-offset, offset)
		}

		var chunk glbChunkHeader
		if err := binary.Read(bytes.NewReader(data[offset:offset+GLBChunkHeader]), binary.LittleEndian, &chunk); err != nil {
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		offset += GLBChunkHeader

		if int(chunk.ChunkLength) > end-offset {
			return nil, fmt.Errorf("%w: chunk of %d bytes at offset %d", ErrChunkOverflow, chunk.ChunkLength, offset)
		}
		payload := data[offset : offset+int(chunk.ChunkLength)]
		offset += int(chunk.ChunkLength)

		switch chunk.ChunkType {
		case GLBChunkJSON:
			content, err := decodeText(payload)
			if err != nil {
				return nil, err
			}
			c.Content = content
			haveJSON = true
		case GLBChunkBIN:
			c.Body = payload
		}
	}

	if !haveJSON {
		return nil, ErrMissingJSONChunk
	}
	return c, nil
}

// decodeText decodes UTF-8 bytes, dropping a leading byte order mark when present.
func decodeText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-8 content: %w", err)
	}
	return string(out), nil
}
