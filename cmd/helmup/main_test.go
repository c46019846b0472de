package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/helmup/helmup/pkg/helmup"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (string, error) {
	var buf bytes.Buffer
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// RootCmd is shared across tests; reset flags changed by a previous
	// Execute so each call behaves like a fresh CLI invocation.
	RootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()

	w.Close()
	os.Stdout = old

	buf.ReadFrom(r)
	return buf.String(), err
}

func TestCLIVersion(t *testing.T) {
	output, err := executeCommand("--version")
	assert.NoError(t, err)
	assert.Equal(t, helmup.Version+"\n", output)
}

func TestCLIRun(t *testing.T) {
	tmpDir := t.TempDir()

	chartDir := filepath.Join(tmpDir, "charts", "ms-example")
	require.NoError(t, os.MkdirAll(chartDir, 0o755))

	chartContent := `apiVersion: v2
dependencies:
  - name: microservice
    repository: oci://harbor.example.com/foundation
    version: 5.1.0
name: ms-example
version: 2.0.2
`
	valuesContent := `microservice:
  image:
    repository: dockerhub.com/apache/dummy-image
    tag: v1.2.0
`
	require.NoError(t, os.WriteFile(filepath.Join(chartDir, "Chart.yaml"), []byte(chartContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(chartDir, "values.yaml"), []byte(valuesContent), 0o644))

	configContent := fmt.Sprintf(`base_requirements:
  path_for_charts:
    - %s
  version_requirements:
    - chart_name: microservice
      min_version: 4.0.0
      max_version: 6.0.0
      update_to_version: 5.2.0
version_changes:
  5.0.0:
    - action: add_key
      key: [microservice, image, pullPolicy]
      overwrite: true
      overwrite_value: IfNotPresent
`, filepath.Join(tmpDir, "charts"))
	configPath := filepath.Join(tmpDir, "version_changes.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	_, err := executeCommand("-q", "-f", configPath)
	require.NoError(t, err)

	chartDoc, err := helmup.Load(filepath.Join(chartDir, "Chart.yaml"))
	require.NoError(t, err)
	path, err := helmup.Path("dependencies", 0, "version")
	require.NoError(t, err)
	ver, ok := chartDoc.Get(path)
	require.True(t, ok)
	assert.Equal(t, "5.2.0", ver.Value)

	valuesDoc, err := helmup.Load(filepath.Join(chartDir, "values.yaml"))
	require.NoError(t, err)
	path, err = helmup.Path("microservice", "image", "pullPolicy")
	require.NoError(t, err)
	got, ok := valuesDoc.Get(path)
	require.True(t, ok)
	assert.Equal(t, "IfNotPresent", got.Value)
}

func TestCLIErrors(t *testing.T) {
	// missing config file
	_, err := executeCommand("-q", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	// positional arguments are rejected
	_, err = executeCommand("some-arg")
	assert.Error(t, err)
}
