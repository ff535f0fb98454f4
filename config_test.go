package cachebench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero arena", func(c *Config) { c.ArenaLength = 0 }},
		{"unaligned arena", func(c *Config) { c.ArenaLength = 4*Gigabyte + 1 }},
		{"line size below slot", func(c *Config) { c.MinLineSize = 4 }},
		{"empty line range", func(c *Config) { c.MaxLineSize = c.MinLineSize / 2 }},
		{"empty cache size range", func(c *Config) { c.MinCacheSize = c.MaxCacheSize + 1 }},
		{"zero cache size step", func(c *Config) { c.CacheSizeStep = 0 }},
		{"cache range beyond arena", func(c *Config) { c.MaxCacheSize = 2 * c.ArenaLength }},
		{"non power of two set count", func(c *Config) { c.MaxNSets = 100 }},
		{"empty set count range", func(c *Config) { c.MinNSets = c.MaxNSets * 2 }},
		{"empty associativity range", func(c *Config) { c.MinAssociativity = c.MaxAssociativity + 1 }},
		{"associativity probe beyond arena", func(c *Config) { c.MaxAssociativity = 1 << 40 }},
		{"zero accesses", func(c *Config) { c.NAccesses = 0 }},
		{"non-positive precision", func(c *Config) { c.Precision = 0 }},
		{"budget below required runs", func(c *Config) { c.TotalRunsThreshold = c.RequiredConvergedRuns - 1 }},
		{"random mode without budget", func(c *Config) {
			c.Mode = ChainRandom
			c.RandomAccessBudget = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, IsInvalidArgError(err), "got %v", err)
		})
	}
}
