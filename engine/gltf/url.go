package gltf

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	httpBasePattern = regexp.MustCompile(`(?i)^https?://`)
	originPattern   = regexp.MustCompile(`(?i)(^https?://[^/]+).*`)
	absolutePattern = regexp.MustCompile(`(?i)^(https?:)?//`)
	dataURIPattern  = regexp.MustCompile(`(?i)^data:.*,.*$`)
	blobURIPattern  = regexp.MustCompile(`(?i)^blob:.*$`)
)

// ErrInvalidDataURI is returned when a data: URI has no payload separator.
var ErrInvalidDataURI = errors.New("malformed data URI")

// ResolveURL resolves a resource URI against a base path. It performs no I/O.
//
// Rules, in order: an empty uri yields ""; a host-relative uri ("/x") is rebased onto the origin of an http(s)
// basePath; absolute ("scheme://" or "//") data: and blob: URIs are returned unchanged; anything else is
// appended to basePath.
//
// Parameters:
//   - uri: the URI referenced by the document
//   - basePath: the resource path of the asset
//
// Returns:
//   - string: the resolved URI
func ResolveURL(uri, basePath string) string {
	if uri == "" {
		return ""
	}

	if httpBasePattern.MatchString(basePath) && strings.HasPrefix(uri, "/") {
		basePath = originPattern.ReplaceAllString(basePath, "$1")
	}

	if absolutePattern.MatchString(uri) {
		return uri
	}
	if dataURIPattern.MatchString(uri) {
		return uri
	}
	if blobURIPattern.MatchString(uri) {
		return uri
	}

	return basePath + uri
}

// ExtractURLBase returns everything up to and including the last "/" of u, or "./" when u has none.
func ExtractURLBase(u string) string {
	idx := strings.LastIndex(u, "/")
	if idx == -1 {
		return "./"
	}
	return u[:idx+1]
}

// IsDataURI reports whether uri is a data: URI.
func IsDataURI(uri string) bool {
	return dataURIPattern.MatchString(uri)
}

// IsBlobURI reports whether uri is a blob: URI.
func IsBlobURI(uri string) bool {
	return blobURIPattern.MatchString(uri)
}

// DecodeDataURI decodes a data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
//
// Parameters:
//   - uri: the data URI
//
// Returns:
//   - []byte: the decoded payload
//   - string: the declared MIME type, possibly empty
//   - error: error if the URI is malformed or the payload cannot be decoded
func DecodeDataURI(uri string) ([]byte, string, error) {
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return nil, "", fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}

	header, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: no comma found", ErrInvalidDataURI)
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to unescape data URI: %w", err)
		}
		return []byte(text), mimeType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}
