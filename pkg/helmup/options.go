package helmup

import "log/slog"

// options configures the behavior of a Runner.
type options struct {
	// ChartFileName is the chart file to look for (default: "Chart.yaml")
	ChartFileName string
	// ValuesFileName is the values file next to each chart file (default: "values.yaml")
	ValuesFileName string
	// Logger receives run progress and results
	Logger *slog.Logger
}

// defaultOptions returns the default Runner configuration.
func defaultOptions() *options {
	return &options{
		ChartFileName:  "Chart.yaml",
		ValuesFileName: "values.yaml",
		Logger:         slog.Default(),
	}
}

// Option is a functional option for configuring a Runner.
type Option func(*options)

// WithChartFileName sets the chart file name to discover.
func WithChartFileName(name string) Option {
	return func(o *options) {
		o.ChartFileName = name
	}
}

// WithValuesFileName sets the values file name looked up next to each
// chart file.
func WithValuesFileName(name string) Option {
	return func(o *options) {
		o.ValuesFileName = name
	}
}

// WithLogger sets the logger used for run progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// applyOptions applies the given options to the defaults.
func applyOptions(o *options, opts []Option) *options {
	for _, option := range opts {
		option(o)
	}
	return o
}
