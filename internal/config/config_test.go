package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pokercfr.hcl")
	hcl := `
cfr {
  iterations = 5000
}

rnr {
  p = 0.3
}

dbr {
  p_max = 0.6
}

portfolio {
  size = 4
}
`
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.CFR.Iterations)
	require.Equal(t, Default().CFR.WeightDelay, cfg.CFR.WeightDelay)
	require.Equal(t, Default().CFR.CheckpointIterations, cfg.CFR.CheckpointIterations)

	require.InDelta(t, 0.3, cfg.RNR.P, 1e-9)
	require.InDelta(t, Default().RNR.MaxExploitabilityDelta, cfg.RNR.MaxExploitabilityDelta, 1e-9)

	require.InDelta(t, 0.6, cfg.DBR.PMax, 1e-9)

	require.Equal(t, 4, cfg.Portfolio.Size)
	require.InDelta(t, Default().Portfolio.Threshold, cfg.Portfolio.Threshold, 1e-9)
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("cfr { iterations = "), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
