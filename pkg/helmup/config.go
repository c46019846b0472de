package helmup

import (
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

// Config drives one batch run: where to look for chart files, which
// dependency versions to enforce, and the version-gated key changes to
// apply to the companion values files.
type Config struct {
	BaseRequirements BaseRequirements    `json:"base_requirements" validate:"required"`
	VersionChanges   map[string][]Change `json:"version_changes" validate:"omitempty,dive,dive"`
}

// BaseRequirements names the chart roots and the per-dependency version
// requirements.
type BaseRequirements struct {
	ChartPaths          []string      `json:"path_for_charts" validate:"required,min=1,dive,required"`
	VersionRequirements []Requirement `json:"version_requirements" validate:"required,min=1,dive"`
}

// Requirement binds one dependency name to its allowed version range and
// the version it should be bumped to.
type Requirement struct {
	ChartName       string `json:"chart_name" validate:"required"`
	MinVersion      string `json:"min_version" validate:"required"`
	MaxVersion      string `json:"max_version" validate:"required"`
	UpdateToVersion string `json:"update_to_version" validate:"required"`
}

// Change is one edit descriptor from version_changes. Key segments are
// strings for mapping keys and integers for sequence indices.
type Change struct {
	Action         string `json:"action" validate:"required,oneof=add_key remove_key rename_key"`
	Key            []any  `json:"key,omitempty"`
	OldKey         []any  `json:"old_key,omitempty"`
	NewKey         []any  `json:"new_key,omitempty"`
	Overwrite      bool   `json:"overwrite,omitempty"`
	OverwriteValue any    `json:"overwrite_value,omitempty"`
	Merge          bool   `json:"merge,omitempty"`
}

// LoadConfig reads, parses, and validates a run configuration file.
// Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return &cfg, nil
}

// pathFromConfig converts a decoded key list to a KeyPath. The YAML
// decode goes through JSON, so indices arrive as float64.
func pathFromConfig(raw []any) (KeyPath, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	p := make(KeyPath, 0, len(raw))
	for _, seg := range raw {
		switch s := seg.(type) {
		case string:
			p = append(p, Key(s))
		case int:
			p = append(p, Index(s))
		case float64:
			if s != math.Trunc(s) {
				return nil, fmt.Errorf("key segment %v is not an integer index", s)
			}
			p = append(p, Index(int(s)))
		default:
			return nil, fmt.Errorf("unsupported key segment %v (%T)", seg, seg)
		}
	}
	return p, nil
}
