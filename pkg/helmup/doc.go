/*
Package helmup updates Helm chart dependency versions and applies
version-gated key changes to the companion values files.

Each chart file is handled as an order-preserving document tree. A
ChartFile bumps the version of a named dependency when the current
version lies within a configured range; a ValuesFile adds, removes, or
renames keys in values.yaml once the chart has reached a change's minimum
version. All edits are path-addressed, e.g. ["microservice", "image",
"tag"], and the first path segment must always name the chart being
edited.

Basic usage:

	doc, err := helmup.Load("./charts/ms-example/Chart.yaml")
	if err != nil {
		log.Fatal(err)
	}

	chart := helmup.NewChartFile(doc, "Chart.yaml", "microservice", "4.0.0", "6.0.0",
		helmup.FileSaver("./charts/ms-example/Chart.yaml"))
	result, err := chart.UpdateVersion("5.2.0")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result)

Batch runs are driven by a configuration file listing chart roots,
dependency version requirements, and the gated changes:

	cfg, err := helmup.LoadConfig("./version_changes.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if err := helmup.NewRunner(cfg).Run(); err != nil {
		log.Fatal(err)
	}

Negative outcomes that are part of normal operation (version gate not
met, key already present, dependency not found) are returned as
descriptive result strings, never as errors. Errors are reserved for
malformed version strings, structural path mismatches, and I/O failures.
*/
package helmup
