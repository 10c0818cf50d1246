// Package config loads the optional HCL option file supplying CFR+/RNR/
// DBR/portfolio parameters, overridable by CLI flags, grounded on
// lox-pokerforbots/internal/client/config.go's gohcl/DefaultXConfig idiom.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/mkemp/pokercfr/pkg/errs"
)

// Config is the full set of tunable options a training/portfolio run can
// read from an .hcl file.
type Config struct {
	CFR       CFRConfig       `hcl:"cfr,block"`
	RNR       RNRConfig       `hcl:"rnr,block"`
	DBR       DBRConfig       `hcl:"dbr,block"`
	Portfolio PortfolioConfig `hcl:"portfolio,block"`
}

// CFRConfig mirrors cfr.Options' tunable fields, per spec.md §9's CFR+
// defaults (iterations 1500, weight_delay 700).
type CFRConfig struct {
	Iterations               int     `hcl:"iterations,optional"`
	WeightDelay              int     `hcl:"weight_delay,optional"`
	CheckpointIterations     int     `hcl:"checkpoint_iterations,optional"`
	MinimalActionProbability float64 `hcl:"minimal_action_probability,optional"`
	Seed                     int64   `hcl:"seed,optional"`
}

// RNRConfig supplies response.RNRPolicy's fixed tilt probability, and the
// target/tolerance portfolio.OptimizeRNR searches for when p isn't pinned.
type RNRConfig struct {
	P                      float64 `hcl:"p,optional"`
	TargetExploitability   float64 `hcl:"target_exploitability,optional"`
	MaxExploitabilityDelta float64 `hcl:"max_exploitability_delta,optional"`
}

// DBRConfig supplies response.DBRPolicy's mixing-weight cap.
type DBRConfig struct {
	PMax float64 `hcl:"p_max,optional"`
}

// PortfolioConfig supplies portfolio.Select's stopping rule: either a
// fixed Size, or a Threshold against the fully-greedy curve's total
// improvement (Size <= 0 selects the threshold rule).
type PortfolioConfig struct {
	Size      int     `hcl:"size,optional"`
	Threshold float64 `hcl:"threshold,optional"`
}

// Default returns the configuration used when no .hcl file is present,
// grounded on rnr_parameter_optimizer.py's defaults (iterations=1500,
// checkpoint_iterations=10) and build_portfolio.py's
// (portfolio_cut_improvement_threshold=0.05).
func Default() *Config {
	return &Config{
		CFR: CFRConfig{
			Iterations:               1500,
			WeightDelay:              700,
			CheckpointIterations:     10,
			MinimalActionProbability: 0,
			Seed:                     1,
		},
		RNR: RNRConfig{
			P:                      0.5,
			TargetExploitability:   0,
			MaxExploitabilityDelta: 0.01,
		},
		DBR: DBRConfig{
			PMax: 0.8,
		},
		Portfolio: PortfolioConfig{
			Size:      0,
			Threshold: 0.05,
		},
	}
}

// Load reads and decodes filename as an HCL config, falling back to
// Default() field-by-field for anything the file leaves at its zero
// value. A missing file is not an error: it returns Default() unchanged.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, errs.New(errs.IOFailure, "parse %s: %s", filename, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, errs.New(errs.IOFailure, "decode %s: %s", filename, diags.Error())
	}

	cfg.applyDefaults(Default())
	return &cfg, nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.CFR.Iterations == 0 {
		c.CFR.Iterations = d.CFR.Iterations
	}
	if c.CFR.WeightDelay == 0 {
		c.CFR.WeightDelay = d.CFR.WeightDelay
	}
	if c.CFR.CheckpointIterations == 0 {
		c.CFR.CheckpointIterations = d.CFR.CheckpointIterations
	}
	if c.CFR.Seed == 0 {
		c.CFR.Seed = d.CFR.Seed
	}
	if c.RNR.P == 0 {
		c.RNR.P = d.RNR.P
	}
	if c.RNR.MaxExploitabilityDelta == 0 {
		c.RNR.MaxExploitabilityDelta = d.RNR.MaxExploitabilityDelta
	}
	if c.DBR.PMax == 0 {
		c.DBR.PMax = d.DBR.PMax
	}
	if c.Portfolio.Threshold == 0 {
		c.Portfolio.Threshold = d.Portfolio.Threshold
	}
}
