// Package config holds the typed parameters for opening a Vamana index, and
// an optional loader for processes that want to configure the engine from
// the environment or a YAML file instead of constructing Config by hand.
package config

import (
	"fmt"

	"github.com/annvector/vamana/distance"
)

// Config mirrors the options an engine is opened with.
type Config struct {
	// Metric selects the distance kernel: "l2" or "cosine".
	Metric string `yaml:"metric" env:"METRIC" envDefault:"l2"`
	// Dim is the vector dimension, required.
	Dim int `yaml:"dim" env:"DIM"`
	// Capacity is the number of vertex slots pre-allocated at Open. It is
	// not enforced as a limit: inserts past it grow the stores.
	Capacity uint32 `yaml:"capacity" env:"CAPACITY"`
	// R is the maximum out-degree per vertex.
	R int `yaml:"degreeBound" env:"DEGREE_BOUND" envDefault:"64"`
	// LBuild is the build/insert-time search-list size.
	LBuild int `yaml:"searchSize" env:"SEARCH_SIZE" envDefault:"100"`
	// Alpha is the robust-pruning diversity factor, >= 1.0.
	Alpha float32 `yaml:"alpha" env:"ALPHA" envDefault:"1.2"`
	// NumThreads bounds the build/insert worker pool. 0 means "use
	// runtime.NumCPU()-1, at least 1".
	NumThreads int `yaml:"numThreads" env:"NUM_THREADS" envDefault:"0"`
	// SaturateGraph fills pruned adjacency lists back up to R from occluded
	// candidates when robust pruning would otherwise leave them sparser.
	SaturateGraph bool `yaml:"saturateGraph" env:"SATURATE_GRAPH" envDefault:"false"`
	// UseOPQ is accepted for interoperability with disk-index configs but
	// ignored, by Validate as well: product quantization is out of scope for
	// this engine.
	UseOPQ bool `yaml:"useOPQ" env:"USE_OPQ" envDefault:"false"`
}

// Validate checks the config is internally consistent, returning an
// InvalidConfigError naming the offending field.
func (c Config) Validate() error {
	if c.Dim <= 0 {
		return &InvalidConfigError{Field: "Dim", Reason: "must be positive"}
	}
	if c.Capacity == 0 {
		return &InvalidConfigError{Field: "Capacity", Reason: "must be positive"}
	}
	if _, err := distance.GetDistanceFn(c.Metric); err != nil {
		return &InvalidConfigError{Field: "Metric", Reason: err.Error()}
	}
	if c.R <= 0 {
		return &InvalidConfigError{Field: "R", Reason: "must be positive"}
	}
	if c.LBuild < c.R {
		return &InvalidConfigError{Field: "LBuild", Reason: "must be >= R"}
	}
	if c.Alpha < 1.0 {
		return &InvalidConfigError{Field: "Alpha", Reason: "must be >= 1.0"}
	}
	if c.NumThreads < 0 {
		return &InvalidConfigError{Field: "NumThreads", Reason: "must be >= 0"}
	}
	return nil
}

// AlignedDim returns dim rounded up to the next multiple of 8, per I5.
func (c Config) AlignedDim() int {
	return (c.Dim + 7) / 8 * 8
}

// InvalidConfigError reports a rejected config field.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Reason)
}
