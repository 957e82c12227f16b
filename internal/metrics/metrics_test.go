package metrics

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessProbe(t *testing.T) {
	probe, err := NewProcessProbe()
	require.NoError(t, err)

	before, err := probe.CPUTime()
	require.NoError(t, err)

	// burn some cpu so the counter moves
	sum := sha256.Sum256(nil)
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		sum = sha256.Sum256(sum[:])
	}

	after, err := probe.CPUTime()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after, before)

	mem, err := probe.MemoryMB()
	require.NoError(t, err)
	assert.Greater(t, mem, 0.0)
}

func TestSecondsToDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, secondsToDuration(1.5))
	assert.Equal(t, time.Duration(0), secondsToDuration(0))
}

func TestNop(t *testing.T) {
	var p Probe = Nop{}
	cpu, err := p.CPUTime()
	assert.NoError(t, err)
	assert.Zero(t, cpu)
	mem, err := p.MemoryMB()
	assert.NoError(t, err)
	assert.Zero(t, mem)
}
