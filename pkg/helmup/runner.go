package helmup

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Version is the current version of the helmup package
const Version = "1.0.0"

// Runner applies a Config across every chart file found under the
// configured roots, one file at a time. Each document stays exclusive to
// its edit session; there is no concurrent access.
type Runner struct {
	cfg  *Config
	opts *options
}

// NewRunner creates a Runner for the given configuration.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	return &Runner{
		cfg:  cfg,
		opts: applyOptions(defaultOptions(), opts),
	}
}

// Run walks the configured chart roots and processes each discovered
// chart file against each version requirement. A failure on one chart is
// logged and does not stop the batch; walk errors and malformed
// configuration abort the run.
func (r *Runner) Run() error {
	gateVersions, err := sortedChangeVersions(r.cfg.VersionChanges)
	if err != nil {
		return err
	}
	for _, root := range r.cfg.BaseRequirements.ChartPaths {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() != r.opts.ChartFileName {
				return nil
			}
			for _, req := range r.cfg.BaseRequirements.VersionRequirements {
				if err := r.processChart(path, req, gateVersions); err != nil {
					r.opts.Logger.Error("processing chart failed", "chart", path, "dependency", req.ChartName, "error", err)
				}
			}
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("walking %s: %w", root, walkErr)
		}
	}
	return nil
}

// processChart runs one edit session: update the dependency version in
// the chart file, then apply every gated change to the sibling values
// file, in ascending order of the gate versions.
func (r *Runner) processChart(path string, req Requirement, gateVersions []string) error {
	log := r.opts.Logger

	doc, err := Load(path)
	if err != nil {
		return err
	}
	chart := NewChartFile(doc, path, req.ChartName, req.MinVersion, req.MaxVersion, FileSaver(path))
	if chart.Version() == "" {
		log.Info("dependency not found", "dependency", req.ChartName, "file", path)
		return nil
	}

	result, err := chart.UpdateVersion(req.UpdateToVersion)
	if err != nil {
		return err
	}
	log.Info(result)

	valuesPath := filepath.Join(filepath.Dir(path), r.opts.ValuesFileName)
	valuesDoc, err := Load(valuesPath)
	if err != nil {
		return err
	}
	values := NewValuesFile(valuesDoc, valuesPath, req.ChartName, chart.Version(), FileSaver(valuesPath))

	for _, gateVersion := range gateVersions {
		for _, change := range r.cfg.VersionChanges[gateVersion] {
			result, err := applyChange(values, change, gateVersion)
			if err != nil {
				return err
			}
			if result != "" {
				log.Info(result)
			}
		}
	}
	return nil
}

// applyChange dispatches one change descriptor to the values editor.
func applyChange(values *ValuesFile, change Change, gateVersion string) (string, error) {
	switch change.Action {
	case "add_key":
		path, err := pathFromConfig(change.Key)
		if err != nil {
			return "", err
		}
		return values.AddKey(path, change.Overwrite, change.OverwriteValue, gateVersion)
	case "remove_key":
		path, err := pathFromConfig(change.Key)
		if err != nil {
			return "", err
		}
		return values.RemoveKey(path, gateVersion)
	case "rename_key":
		oldPath, err := pathFromConfig(change.OldKey)
		if err != nil {
			return "", err
		}
		newPath, err := pathFromConfig(change.NewKey)
		if err != nil {
			return "", err
		}
		return values.RenameKey(oldPath, newPath, change.Merge, gateVersion)
	}
	return "", fmt.Errorf("invalid action: %s", change.Action)
}

// sortedChangeVersions returns the gate versions in ascending semantic
// order, so change application is deterministic regardless of config
// document order.
func sortedChangeVersions(changes map[string][]Change) ([]string, error) {
	keys := make([]string, 0, len(changes))
	parsed := make(map[string]*semver.Version, len(changes))
	for raw := range changes {
		v, err := parseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("version_changes key: %w", err)
		}
		keys = append(keys, raw)
		parsed[raw] = v
	}
	sort.Slice(keys, func(i, j int) bool {
		return parsed[keys[i]].LessThan(parsed[keys[j]])
	})
	return keys, nil
}
