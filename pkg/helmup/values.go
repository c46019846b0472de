package helmup

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// ErrMergeKind reports a rename merge between values of incompatible
// kinds, e.g. a sequence against a mapping.
var ErrMergeKind = errors.New("cannot merge values of mismatched kinds")

// ValuesFile applies version-gated key edits to one values.yaml document.
// It is bound to a chart name, which must be the first segment of every
// edited path, and to the chart's current version, which is checked
// against each operation's minimum version before anything mutates.
//
// Successful operations return the empty string; ineligibility and
// chart-name mismatches return a descriptive result. Only malformed
// version strings and structural mismatches surface as errors.
type ValuesFile struct {
	file         string
	doc          *Document
	chartName    string
	chartVersion string
	save         SaveFunc
}

// NewValuesFile binds a parsed values document to a chart name and its
// current version. save is invoked after every mutating operation.
func NewValuesFile(doc *Document, file, chartName, chartVersion string, save SaveFunc) *ValuesFile {
	return &ValuesFile{
		file:         file,
		doc:          doc,
		chartName:    chartName,
		chartVersion: chartVersion,
		save:         save,
	}
}

// Document returns the underlying values document.
func (v *ValuesFile) Document() *Document { return v.doc }

// gate runs the two preconditions shared by every operation: the bound
// chart version must meet the operation's minimum, and the path must
// start with the bound chart name.
func (v *ValuesFile) gate(path KeyPath, reqMinVersion string) (string, error) {
	ok, err := MeetsMinimum(v.chartVersion, reqMinVersion)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf(
			"chart version %s not eligible for the requirements, minimum required version: %s at %s file",
			v.chartVersion, reqMinVersion, v.file,
		), nil
	}
	if len(path) == 0 || path[0].IsIndex() || path[0].Key() != v.chartName {
		head := ""
		if len(path) > 0 {
			head = path[0].String()
		}
		return fmt.Sprintf("chart name %s does not match the key %s at %s file", v.chartName, head, v.file), nil
	}
	return "", nil
}

// AddKey writes value at path. A nil value means "insert an empty mapping
// if the path is absent". An existing key is only replaced when overwrite
// is set; otherwise the document is left untouched. The operation is
// idempotent for overwrite=false.
func (v *ValuesFile) AddKey(path KeyPath, overwrite bool, value any, reqMinVersion string) (string, error) {
	if msg, err := v.gate(path, reqMinVersion); msg != "" || err != nil {
		return msg, err
	}

	_, exists := v.doc.Get(path)
	if exists && !overwrite {
		slog.Debug("key already exists", "key", path.String(), "file", v.file)
		return "", nil
	}

	if value == nil {
		empty := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if _, err := v.doc.SetDefault(path, empty); err != nil {
			return "", err
		}
	} else {
		node, err := nodeFor(value)
		if err != nil {
			return "", err
		}
		if err := v.doc.Set(path, node); err != nil {
			return "", err
		}
	}
	if err := v.save(v.doc); err != nil {
		return "", fmt.Errorf("saving values file: %w", err)
	}

	action := "added"
	if exists {
		action = "overwritten"
	}
	slog.Debug("key written", "key", path.String(), "action", action, "file", v.file)
	return "", nil
}

// RemoveKey deletes the node at path. Presence is structural: a key whose
// value is falsy (empty mapping, 0, false, "") is still present and gets
// removed. A missing path leaves the document untouched.
func (v *ValuesFile) RemoveKey(path KeyPath, reqMinVersion string) (string, error) {
	if msg, err := v.gate(path, reqMinVersion); msg != "" || err != nil {
		return msg, err
	}

	if _, ok := v.doc.Pop(path); !ok {
		slog.Debug("key not found", "key", path.String(), "file", v.file)
		return "", nil
	}
	slog.Debug("key removed", "key", path.String(), "file", v.file)
	if err := v.save(v.doc); err != nil {
		return "", fmt.Errorf("saving values file: %w", err)
	}
	return "", nil
}

// RenameKey moves the value at oldPath to newPath. When newPath already
// holds a value and merge is set, the two are combined by kind: sequences
// concatenate new followed by old, mappings shallow-merge with old
// overriding new on collision, scalars keep the new value. Without merge
// an existing destination is left as is. The old key is removed in every
// case once the old path resolves.
func (v *ValuesFile) RenameKey(oldPath, newPath KeyPath, merge bool, reqMinVersion string) (string, error) {
	if msg, err := v.gate(newPath, reqMinVersion); msg != "" || err != nil {
		return msg, err
	}

	oldValue, ok := v.doc.Get(oldPath)
	if !ok {
		slog.Debug("cannot rename, old key missing", "key", oldPath.String(), "file", v.file)
		return "", nil
	}
	newValue, newExists := v.doc.Get(newPath)

	switch {
	case newExists && merge:
		merged, err := mergeNodes(oldValue, newValue)
		if err != nil {
			return "", fmt.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
		}
		if msg, err := v.AddKey(newPath, merge, merged, reqMinVersion); msg != "" || err != nil {
			return msg, err
		}
		slog.Debug("merged old values", "from", oldPath.String(), "to", newPath.String(), "file", v.file)
	case !newExists && merge:
		if msg, err := v.AddKey(newPath, merge, oldValue, reqMinVersion); msg != "" || err != nil {
			return msg, err
		}
	default:
		if msg, err := v.AddKey(newPath, merge, nil, reqMinVersion); msg != "" || err != nil {
			return msg, err
		}
	}

	if msg, err := v.RemoveKey(oldPath, reqMinVersion); msg != "" || err != nil {
		return msg, err
	}
	if err := v.save(v.doc); err != nil {
		return "", fmt.Errorf("saving values file: %w", err)
	}
	return "", nil
}

// mergeNodes combines the old and new values of a rename by kind.
func mergeNodes(oldN, newN *yaml.Node) (*yaml.Node, error) {
	oldSeq := oldN.Kind == yaml.SequenceNode
	newSeq := newN.Kind == yaml.SequenceNode
	oldMap := oldN.Kind == yaml.MappingNode
	newMap := newN.Kind == yaml.MappingNode

	switch {
	case oldSeq && newSeq:
		merged := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		merged.Content = append(merged.Content, newN.Content...)
		merged.Content = append(merged.Content, oldN.Content...)
		return merged, nil
	case oldMap && newMap:
		merged := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		merged.Content = append(merged.Content, newN.Content...)
		for i := 0; i+1 < len(oldN.Content); i += 2 {
			key, val := oldN.Content[i], oldN.Content[i+1]
			replaced := false
			for j := 0; j+1 < len(merged.Content); j += 2 {
				if merged.Content[j].Value == key.Value {
					merged.Content[j+1] = val
					replaced = true
					break
				}
			}
			if !replaced {
				merged.Content = append(merged.Content, key, val)
			}
		}
		return merged, nil
	case oldSeq || newSeq || oldMap || newMap:
		return nil, fmt.Errorf("%w: %s with %s", ErrMergeKind, kindName(newN), kindName(oldN))
	}
	return newN, nil
}
