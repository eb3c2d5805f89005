// Package manifest loads a WebExtension manifest.json and derives the
// browser-specific variants written into each build target.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/clickat/extbuild/pkg/util"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNotFound is returned by Load when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// Manifest is a JSON object document. Every Manifest owns its bytes, so
// changes to one value are never visible through another.
type Manifest struct {
	raw []byte
}

// Parse validates data as a JSON object and returns a Manifest holding a
// private copy of it.
func Parse(data []byte) (*Manifest, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid manifest: malformed JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("invalid manifest: top-level value must be a JSON object")
	}
	return &Manifest{raw: bytes.Clone(data)}, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	return &Manifest{raw: bytes.Clone(m.raw)}
}

// Get returns the value at a gjson path.
func (m *Manifest) Get(path string) gjson.Result {
	return gjson.GetBytes(m.raw, path)
}

// Set replaces the value at an sjson path with the JSON encoding of value,
// creating intermediate objects as needed. Existing keys keep their position.
func (m *Manifest) Set(path string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	updated, err := sjson.SetRawBytes(m.raw, path, encoded)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	m.raw = updated
	return nil
}

// Bytes returns the manifest indented with two spaces in source key order.
func (m *Manifest) Bytes() ([]byte, error) {
	return util.IndentJSON(m.raw)
}

// WriteFile writes the indented manifest to path.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, util.DefaultFileMode); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
