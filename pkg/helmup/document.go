package helmup

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Structural errors reported by Document mutations. A path that runs
// through a scalar, or a sequence index that cannot resolve, indicates a
// malformed document or a wrong path, not a normal negative outcome.
var (
	ErrNotContainer    = errors.New("path traverses a non-container node")
	ErrIndexOutOfRange = errors.New("sequence index out of range")
)

// Document is the in-memory ownership tree for one YAML file: mappings
// with preserved key order, sequences, and scalars. Exactly one editor
// mutates a Document at a time.
type Document struct {
	root *yaml.Node
}

// NewDocument returns an empty document holding a single empty mapping.
func NewDocument() *Document {
	return &Document{root: &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}}
}

// Root returns the top-level mapping node.
func (d *Document) Root() *yaml.Node { return d.root.Content[0] }

// Get resolves path and returns the addressed node, or false if any
// segment does not resolve against a container of the expected kind.
func (d *Document) Get(path KeyPath) (*yaml.Node, bool) {
	cur := d.Root()
	for _, seg := range path {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Set writes value at path, creating intermediate mappings along the way.
// Writing through an existing scalar is an error; so is an index segment
// that addresses a missing or non-sequence node. For the final segment,
// an index equal to the sequence length appends.
func (d *Document) Set(path KeyPath, value *yaml.Node) error {
	if len(path) == 0 {
		return fmt.Errorf("set: empty path")
	}
	parent, err := d.resolveParent(path)
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	if last.IsIndex() {
		if parent.Kind != yaml.SequenceNode {
			return fmt.Errorf("set %s: %w: %s is not a sequence", path, ErrNotContainer, kindName(parent))
		}
		switch i := last.Index(); {
		case i >= 0 && i < len(parent.Content):
			parent.Content[i] = value
		case i == len(parent.Content):
			parent.Content = append(parent.Content, value)
		default:
			return fmt.Errorf("set %s: %w: index %d, length %d", path, ErrIndexOutOfRange, i, len(parent.Content))
		}
		return nil
	}
	if parent.Kind != yaml.MappingNode {
		return fmt.Errorf("set %s: %w: %s is not a mapping", path, ErrNotContainer, kindName(parent))
	}
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == last.Key() {
			parent.Content[i+1] = value
			return nil
		}
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: last.Key()},
		value,
	)
	return nil
}

// SetDefault writes value at path only when the path does not resolve,
// and returns the node that now lives there.
func (d *Document) SetDefault(path KeyPath, value *yaml.Node) (*yaml.Node, error) {
	if existing, ok := d.Get(path); ok {
		return existing, nil
	}
	if err := d.Set(path, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Pop removes the node at path and returns it. A missing path is not an
// error; it reports false and leaves the document unchanged.
func (d *Document) Pop(path KeyPath) (*yaml.Node, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := d.Root()
	for _, seg := range path[:len(path)-1] {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	last := path[len(path)-1]
	if last.IsIndex() {
		i := last.Index()
		if cur.Kind != yaml.SequenceNode || i < 0 || i >= len(cur.Content) {
			return nil, false
		}
		removed := cur.Content[i]
		cur.Content = append(cur.Content[:i], cur.Content[i+1:]...)
		return removed, true
	}
	if cur.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(cur.Content); i += 2 {
		if cur.Content[i].Value == last.Key() {
			removed := cur.Content[i+1]
			cur.Content = append(cur.Content[:i], cur.Content[i+2:]...)
			return removed, true
		}
	}
	return nil, false
}

// Equal reports deep structural equality, ordered for both mappings and
// sequences.
func (d *Document) Equal(other *Document) bool {
	return nodeEqual(d.Root(), other.Root())
}

// resolveParent walks to the parent of the final segment, creating
// missing intermediate mappings.
func (d *Document) resolveParent(path KeyPath) (*yaml.Node, error) {
	cur := d.Root()
	for i, seg := range path[:len(path)-1] {
		if seg.IsIndex() {
			if cur.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("set %s: %w: %s at %s is not a sequence", path, ErrNotContainer, kindName(cur), path[:i])
			}
			if seg.Index() < 0 || seg.Index() >= len(cur.Content) {
				return nil, fmt.Errorf("set %s: %w: index %d at %s", path, ErrIndexOutOfRange, seg.Index(), path[:i+1])
			}
			cur = cur.Content[seg.Index()]
			continue
		}
		if cur.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("set %s: %w: %s at %s is not a mapping", path, ErrNotContainer, kindName(cur), path[:i])
		}
		next := mappingValue(cur, seg.Key())
		if next == nil {
			if path[i+1].IsIndex() {
				return nil, fmt.Errorf("set %s: %w: cannot create sequence at %s", path, ErrNotContainer, path[:i+1])
			}
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg.Key()},
				next,
			)
		}
		cur = next
	}
	return cur, nil
}

// child resolves one segment against a container node.
func child(n *yaml.Node, seg Segment) (*yaml.Node, bool) {
	if seg.IsIndex() {
		if n.Kind != yaml.SequenceNode || seg.Index() < 0 || seg.Index() >= len(n.Content) {
			return nil, false
		}
		return n.Content[seg.Index()], true
	}
	if n.Kind != yaml.MappingNode {
		return nil, false
	}
	if v := mappingValue(n, seg.Key()); v != nil {
		return v, true
	}
	return nil, false
}

// mappingValue returns the value node for key within a mapping, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func nodeEqual(a, b *yaml.Node) bool {
	if a.Kind != b.Kind || a.ShortTag() != b.ShortTag() || a.Value != b.Value {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !nodeEqual(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// nodeFor builds a node from a plain Go value. Values decoded from the
// run configuration arrive through a JSON round trip, so numbers show up
// as float64 and nested map order is not significant; map keys are sorted
// to keep output deterministic.
func nodeFor(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case *yaml.Node:
		return v, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}, nil
	case float64:
		if v == float64(int64(v)) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v), 10)}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			n, err := nodeFor(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			n, err := nodeFor(v[k])
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				n,
			)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", value)
}
