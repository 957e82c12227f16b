package config

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/powbench/pkg/types"
)

// held in a variable so the int conversions below happen at run time
var (
	maxDifficulty int64 = math.MaxUint32
	maxTimeout          = MaxTimeout
)

func validConfig() *Config {
	cfg := NewConfig()
	cfg.Mode = "parallel"
	cfg.Difficulty = 8
	cfg.Threads = 4
	cfg.Timeout = 60
	cfg.MetricsOut = "out.csv"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing mode", func(c *Config) { c.Mode = "" }, ErrNoModeSpecified},
		{"missing difficulty", func(c *Config) { c.Difficulty = -1 }, ErrInvalidDifficulty},
		{"zero difficulty is fine", func(c *Config) { c.Difficulty = 0 }, nil},
		{"max difficulty", func(c *Config) { c.Difficulty = int(maxDifficulty) }, nil},
		{"difficulty past uint32", func(c *Config) { c.Difficulty = int(maxDifficulty + 1) }, ErrInvalidDifficulty},
		{"difficulty wrapping to one", func(c *Config) { c.Difficulty = int(maxDifficulty + 2) }, ErrInvalidDifficulty},
		{"zero threads", func(c *Config) { c.Threads = 0 }, ErrInvalidThreads},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"max timeout", func(c *Config) { c.Timeout = int(maxTimeout) }, nil},
		{"timeout overflowing duration", func(c *Config) { c.Timeout = int(maxTimeout + 1) }, ErrInvalidTimeout},
		{"bad affinity", func(c *Config) { c.Affinity = "yes" }, ErrInvalidAffinity},
		{"numeric affinity", func(c *Config) { c.Affinity = "1" }, nil},
		{"missing metrics", func(c *Config) { c.MetricsOut = "" }, ErrNoMetricsOut},
		{"quoted empty metrics", func(c *Config) { c.MetricsOut = `""` }, ErrNoMetricsOut},
		{"zero runs", func(c *Config) { c.Runs = 0 }, ErrInvalidRuns},
		{"verbose without interval", func(c *Config) { c.Verbose = true; c.LogInterval = 0 }, ErrInvalidLogInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestValidateBadMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "turbo"
	assert.Error(t, cfg.Validate())
}

func TestMetricsPath(t *testing.T) {
	cfg := validConfig()
	cfg.MetricsOut = `"results/run 1.csv"`
	assert.Equal(t, "results/run 1.csv", cfg.MetricsPath())

	cfg.MetricsOut = `plain.csv`
	assert.Equal(t, "plain.csv", cfg.MetricsPath())
}

func TestMiningConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "concurrent"
	cfg.Affinity = "true"
	cfg.Seed = 77

	mc, err := cfg.MiningConfig()
	require.NoError(t, err)

	assert.Equal(t, types.MiningConfig{
		Mode:         types.Concurrent,
		Difficulty:   8,
		Threads:      4,
		Affinity:     true,
		Timeout:      60 * time.Second,
		Seed:         77,
		HashName:     "sha256",
		ExperimentID: DefaultExperimentID,
	}, mc)
}

func TestMiningConfigDifficultyBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Difficulty = int(maxDifficulty)
	mc, err := cfg.MiningConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), mc.Difficulty)

	// 2^32 must not silently become difficulty 0
	cfg.Difficulty = int(maxDifficulty + 1)
	_, err = cfg.MiningConfig()
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestMiningConfigLongTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Timeout = int(maxTimeout)
	mc, err := cfg.MiningConfig()
	require.NoError(t, err)
	assert.Greater(t, mc.Timeout, time.Duration(0))
}

func TestMiningConfigGeneratesExperimentID(t *testing.T) {
	cfg := validConfig()
	cfg.ExperimentID = ""

	mc, err := cfg.MiningConfig()
	require.NoError(t, err)
	_, err = uuid.Parse(mc.ExperimentID)
	assert.NoError(t, err)
}

func TestMiningConfigInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.Threads = -2
	_, err := cfg.MiningConfig()
	assert.ErrorIs(t, err, ErrInvalidThreads)
}

func TestGetDescription(t *testing.T) {
	cfg := validConfig()
	desc := cfg.GetDescription()
	assert.Contains(t, desc, "Mode: parallel")
	assert.Contains(t, desc, "Difficulty: 8 bits")
	assert.Contains(t, desc, "Affinity: disabled")
}
