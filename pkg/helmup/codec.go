package helmup

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SaveFunc persists a mutated document. The editors call it after every
// operation that changes the tree, before returning.
type SaveFunc func(*Document) error

// Parse builds a Document from raw YAML. Empty input yields an empty
// mapping document; a top-level non-mapping is rejected.
func Parse(data []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if n.Kind == 0 {
		return NewDocument(), nil
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) == 0 || n.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level YAML is not a mapping")
	}
	return &Document{root: &n}, nil
}

// Load reads a YAML document from path, preserving mapping key order.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the document back to path, overwriting it.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileSaver returns a SaveFunc that rewrites path on every call.
func FileSaver(path string) SaveFunc {
	return func(d *Document) error {
		return d.Save(path)
	}
}
