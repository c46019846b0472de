package helmup

import (
	"fmt"
	"strings"
)

// Segment is a single step of a KeyPath: either a mapping key or a
// sequence index.
type Segment struct {
	key   string
	index int
	isIdx bool
}

// Key returns a segment addressing a mapping entry.
func Key(k string) Segment { return Segment{key: k} }

// Index returns a segment addressing a sequence element.
func Index(i int) Segment { return Segment{index: i, isIdx: true} }

// IsIndex reports whether the segment addresses a sequence element.
func (s Segment) IsIndex() bool { return s.isIdx }

// Key returns the mapping key for a non-index segment.
func (s Segment) Key() string { return s.key }

// Index returns the sequence index for an index segment.
func (s Segment) Index() int { return s.index }

func (s Segment) String() string {
	if s.isIdx {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// KeyPath addresses a node inside a Document as an ordered sequence of
// mapping keys and sequence indices.
type KeyPath []Segment

// Path builds a KeyPath from string keys and int indices.
func Path(segments ...any) (KeyPath, error) {
	p := make(KeyPath, 0, len(segments))
	for _, seg := range segments {
		switch s := seg.(type) {
		case string:
			p = append(p, Key(s))
		case int:
			p = append(p, Index(s))
		case Segment:
			p = append(p, s)
		default:
			return nil, fmt.Errorf("unsupported path segment %v (%T)", seg, seg)
		}
	}
	return p, nil
}

// String renders the path in bracketed dot notation, e.g. "a[0].b.c".
func (p KeyPath) String() string {
	var b strings.Builder
	for _, seg := range p {
		if seg.isIdx {
			fmt.Fprintf(&b, "[%d]", seg.index)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.key)
	}
	return b.String()
}
