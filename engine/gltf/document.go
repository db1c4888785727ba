package gltf

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrUnsupportedVersion is returned for documents whose asset version major is below 2.
var ErrUnsupportedVersion = errors.New("unsupported glTF asset version: only 2.x is supported")

// ParseDocument decodes glTF JSON text and checks the asset version.
//
// Parameters:
//   - content: the JSON text of the document
//
// Returns:
//   - *Document: the decoded document
//   - error: error if the JSON is malformed or the version is unsupported
func ParseDocument(content string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	major, err := VersionMajor(doc.Asset.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Asset.Version)
	}
	if major < 2 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Asset.Version)
	}

	return &doc, nil
}

// VersionMajor returns the major component of a "major.minor" version string.
func VersionMajor(version string) (int, error) {
	major, _, _ := strings.Cut(version, ".")
	return strconv.Atoi(major)
}

// UsesExtension reports whether name is listed in extensionsUsed.
func (d *Document) UsesExtension(name string) bool {
	return slices.Contains(d.ExtensionsUsed, name)
}

// RequiresExtension reports whether name is listed in extensionsRequired.
func (d *Document) RequiresExtension(name string) bool {
	return slices.Contains(d.ExtensionsRequired, name)
}
