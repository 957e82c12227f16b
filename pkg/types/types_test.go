package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"sequential", Sequential, false},
		{"parallel", Parallel, false},
		{"concurrent", Concurrent, false},
		{"Parallel", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
			assert.Equal(t, tt.input, mode.String())
		})
	}
}

func TestModeStringUnknown(t *testing.T) {
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestHashesPerSecond(t *testing.T) {
	r := &MiningResult{TotalHashes: 1000, Elapsed: 2 * time.Second}
	assert.InDelta(t, 500.0, r.HashesPerSecond(), 1e-9)

	r = &MiningResult{TotalHashes: 1000}
	assert.Zero(t, r.HashesPerSecond())
}
