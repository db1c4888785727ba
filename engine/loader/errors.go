package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
)

// Common errors returned by the parser
var (
	ErrIndexOutOfRange          = errors.New("index out of range")
	ErrAccessorOverflow         = errors.New("accessor exceeds buffer view")
	ErrBufferViewOverflow       = errors.New("buffer view exceeds buffer")
	ErrBufferSizeMismatch       = errors.New("buffer shorter than declared byteLength")
	ErrMissingBinaryChunk       = errors.New("buffer has no uri and no binary chunk")
	ErrUnsupportedBufferType    = errors.New("unsupported buffer type")
	ErrMissingImageSource       = errors.New("image has neither uri nor bufferView")
	ErrNodeHierarchy            = errors.New("node hierarchy is not a forest")
	ErrUnknownDependency        = errors.New("unknown dependency kind")
	ErrUnknownRequiredExtension = errors.New("required extension is not supported")
	ErrMissingDecoder           = errors.New("required extension has no decoder")
	ErrBlobUnsupported          = errors.New("blob: URIs require a custom fetcher")
	ErrLoaderClosed             = errors.New("loader is closed")
	ErrUnsupportedPrimitiveMode = errors.New("unsupported primitive mode")
	ErrUnexpectedDependency     = errors.New("dependency has unexpected type")

	// errFetch marks failures raised by the Fetcher.
	errFetch = errors.New("fetch failed")
)

// ErrorClass classifies a hard parse failure.
type ErrorClass int

const (
	// ClassFormat covers malformed containers, malformed JSON and unsupported asset versions.
	ClassFormat ErrorClass = iota
	// ClassReference covers out-of-range indices and missing binary data.
	ClassReference
	// ClassUnsupported covers unsupported component types, extensions and decoders.
	ClassUnsupported
	// ClassFetch covers failures of the fetch collaborator.
	ClassFetch
	// ClassCanceled is reported when the caller's context ends the parse.
	ClassCanceled
)

// String returns the string representation of ErrorClass
func (c ErrorClass) String() string {
	switch c {
	case ClassFormat:
		return "format"
	case ClassReference:
		return "reference"
	case ClassUnsupported:
		return "unsupported"
	case ClassFetch:
		return "fetch"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ParseError wraps a hard failure with its class and the dependency that raised it.
type ParseError struct {
	Class ErrorClass

	// Kind and Index identify the failing dependency. Kind is empty for document-level failures.
	Kind  DependencyKind
	Index int

	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("gltf %s error: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("gltf %s error in %s %d: %v", e.Class, e.Kind, e.Index, e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of err, classifying unwrapped errors by their sentinel.
func ClassOf(err error) ErrorClass {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Class
	}
	return classify(err)
}

func classify(err error) ErrorClass {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrLoaderClosed):
		return ClassCanceled
	case errors.Is(err, ErrIndexOutOfRange),
		errors.Is(err, ErrAccessorOverflow),
		errors.Is(err, ErrBufferViewOverflow),
		errors.Is(err, ErrBufferSizeMismatch),
		errors.Is(err, ErrMissingBinaryChunk),
		errors.Is(err, ErrMissingImageSource),
		errors.Is(err, ErrNodeHierarchy):
		return ClassReference
	case errors.Is(err, gltf.ErrUnsupportedNormalized),
		errors.Is(err, gltf.ErrUnknownComponentType),
		errors.Is(err, gltf.ErrUnknownAccessorType),
		errors.Is(err, ErrUnsupportedBufferType),
		errors.Is(err, ErrUnknownRequiredExtension),
		errors.Is(err, ErrMissingDecoder),
		errors.Is(err, ErrBlobUnsupported),
		errors.Is(err, ErrUnsupportedPrimitiveMode),
		errors.Is(err, ErrUnknownDependency),
		errors.Is(err, ErrUnexpectedDependency):
		return ClassUnsupported
	case errors.Is(err, errFetch):
		return ClassFetch
	default:
		return ClassFormat
	}
}

// newParseError wraps err unless it already carries a classification.
func newParseError(kind DependencyKind, index int, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Class: classify(err), Kind: kind, Index: index, Err: err}
}

// outOfRange builds the reference error for a bad index into a document table.
func outOfRange(table string, index, length int) error {
	return fmt.Errorf("%w: %s[%d] (have %d)", ErrIndexOutOfRange, table, index, length)
}
