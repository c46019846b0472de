package helmup

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChartFile edits the dependency list of one Chart.yaml document. It is
// bound to a single dependency name and a min/max version range; the
// current version is derived from the document at construction time.
type ChartFile struct {
	file       string
	doc        *Document
	name       string
	minVersion string
	maxVersion string
	version    string
	save       SaveFunc
}

// NewChartFile binds a parsed chart document to a dependency name and a
// version range. The editor never touches files itself; save is invoked
// after every mutation.
func NewChartFile(doc *Document, file, name, minVersion, maxVersion string, save SaveFunc) *ChartFile {
	c := &ChartFile{
		file:       file,
		doc:        doc,
		name:       name,
		minVersion: minVersion,
		maxVersion: maxVersion,
		save:       save,
	}
	c.version = c.DependencyVersion()
	return c
}

// Version returns the bound dependency's current version, or "" when the
// dependency was not found.
func (c *ChartFile) Version() string { return c.version }

// Document returns the underlying chart document.
func (c *ChartFile) Document() *Document { return c.doc }

// DependencyVersion scans the dependency list in document order and
// returns the version field of the first entry whose name contains the
// bound name, case-insensitively. It returns "" when no entry matches or
// the matching entry has no version.
func (c *ChartFile) DependencyVersion() string {
	deps, ok := c.doc.Get(KeyPath{Key("dependencies")})
	if !ok || deps.Kind != yaml.SequenceNode {
		return ""
	}
	want := strings.ToLower(c.name)
	for _, entry := range deps.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		name := mappingValue(entry, "name")
		if name == nil || !strings.Contains(strings.ToLower(name.Value), want) {
			continue
		}
		if ver := mappingValue(entry, "version"); ver != nil {
			return ver.Value
		}
		return ""
	}
	return ""
}

// VersionCheck reports whether the current dependency version lies within
// the bound range, inclusive.
func (c *ChartFile) VersionCheck() (bool, error) {
	return IsWithin(c.version, c.minVersion, c.maxVersion)
}

// UpdateVersion rewrites the bound dependency's version field to target.
// All negative outcomes except malformed version strings are reported as
// descriptive results, not errors. The dependency list is scanned in
// full: a non-matching entry never concludes the search on its own.
func (c *ChartFile) UpdateVersion(target string) (string, error) {
	ok, err := c.VersionCheck()
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf(
			"chart version %s not eligible for the requirements %s <= %s <= %s at %s file to update its version",
			c.version, c.minVersion, c.version, c.maxVersion, c.file,
		), nil
	}
	if _, err := parseVersion(target); err != nil {
		return "", err
	}

	deps, ok := c.doc.Get(KeyPath{Key("dependencies")})
	if ok && deps.Kind == yaml.SequenceNode {
		for _, entry := range deps.Content {
			if entry.Kind != yaml.MappingNode {
				continue
			}
			name := mappingValue(entry, "name")
			if name == nil || name.Value != c.name {
				continue
			}
			ver := mappingValue(entry, "version")
			if ver != nil && ver.Value == target {
				return fmt.Sprintf("chart version is already at the desired version: %s at %s file", target, c.file), nil
			}
			if ver != nil {
				ver.Kind = yaml.ScalarNode
				ver.Tag = "!!str"
				ver.Value = target
				ver.Content = nil
			} else {
				entry.Content = append(entry.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "version"},
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: target},
				)
			}
			if err := c.save(c.doc); err != nil {
				return "", fmt.Errorf("saving chart file: %w", err)
			}
			c.version = target
			return fmt.Sprintf("chart %s updated to %s version", c.name, target), nil
		}
	}
	return fmt.Sprintf("%s dependency not found in the %s file", c.name, c.file), nil
}
