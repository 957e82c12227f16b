package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/screa/powbench/internal/crypto"
	"github.com/screa/powbench/pkg/types"
)

// Errors
var (
	ErrNoModeSpecified    = errors.New("must specify --mode (sequential, concurrent or parallel)")
	ErrNoMetricsOut       = errors.New("must specify --metrics-out")
	ErrInvalidDifficulty  = errors.New("--difficulty must be an integer between 0 and 4294967295")
	ErrInvalidThreads     = errors.New("--threads must be a positive integer")
	ErrInvalidTimeout     = errors.New("--timeout must be a positive number of seconds")
	ErrInvalidAffinity    = errors.New("--affinity must be true or false")
	ErrInvalidRuns        = errors.New("--runs must be a positive integer")
	ErrInvalidLogInterval = errors.New("--log-interval must be a positive number of seconds")
)

// DefaultExperimentID labels runs when no id is given
const DefaultExperimentID = "exp_001"

// MaxTimeout is the longest timeout, in seconds, that fits in a time.Duration
const MaxTimeout = int64(math.MaxInt64 / time.Second)

// Config holds the application configuration as read from the command line
type Config struct {
	Mode         string
	Difficulty   int
	Threads      int
	Timeout      int // seconds
	Seed         uint64
	Affinity     string
	MetricsOut   string
	Hash         string
	ExperimentID string
	Runs         int
	Verbose      bool
	LogFile      string
	LogInterval  int // Logging interval in seconds
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Difficulty:   -1,
		Threads:      0,
		Timeout:      0,
		Affinity:     "false",
		Hash:         crypto.SHA256,
		ExperimentID: DefaultExperimentID,
		Runs:         1,
		LogInterval:  5, // Default 5 seconds
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mode == "" {
		return ErrNoModeSpecified
	}
	if _, err := types.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Difficulty < 0 || int64(c.Difficulty) > math.MaxUint32 {
		return ErrInvalidDifficulty
	}
	if c.Threads <= 0 {
		return ErrInvalidThreads
	}
	if c.Timeout <= 0 || int64(c.Timeout) > MaxTimeout {
		return ErrInvalidTimeout
	}
	if _, err := c.affinity(); err != nil {
		return err
	}
	if c.MetricsPath() == "" {
		return ErrNoMetricsOut
	}
	if c.Runs <= 0 {
		return ErrInvalidRuns
	}
	if c.Verbose && c.LogInterval <= 0 {
		return ErrInvalidLogInterval
	}
	return nil
}

func (c *Config) affinity() (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Affinity))
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidAffinity, c.Affinity)
	}
	return v, nil
}

// MetricsPath returns the report path with any surrounding double quotes removed
func (c *Config) MetricsPath() string {
	path := c.MetricsOut
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		path = path[1 : len(path)-1]
	}
	return path
}

// MiningConfig converts a validated configuration into the immutable run description.
// An empty experiment id is replaced by a random UUID.
func (c *Config) MiningConfig() (types.MiningConfig, error) {
	if err := c.Validate(); err != nil {
		return types.MiningConfig{}, err
	}
	mode, _ := types.ParseMode(c.Mode)
	affinity, _ := c.affinity()

	id := c.ExperimentID
	if id == "" {
		id = uuid.NewString()
	}

	return types.MiningConfig{
		Mode:         mode,
		Difficulty:   uint32(c.Difficulty),
		Threads:      c.Threads,
		Affinity:     affinity,
		Timeout:      time.Duration(c.Timeout) * time.Second,
		Seed:         c.Seed,
		HashName:     c.Hash,
		ExperimentID: id,
	}, nil
}

// GetDescription returns a human-readable summary of the run configuration
func (c *Config) GetDescription() []string {
	affinity, _ := c.affinity()
	state := "disabled"
	if affinity {
		state = "enabled"
	}
	return []string{
		"Mode: " + c.Mode,
		fmt.Sprintf("Difficulty: %d bits", c.Difficulty),
		fmt.Sprintf("Threads: %d", c.Threads),
		fmt.Sprintf("Timeout: %d seconds", c.Timeout),
		fmt.Sprintf("Seed: %d", c.Seed),
		"Affinity: " + state,
		"Hash: " + c.Hash,
	}
}
