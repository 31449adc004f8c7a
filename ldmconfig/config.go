// Package ldmconfig loads and validates the runtime settings shared by the
// scenario runner and the ldmcheck command, following the teacher's
// LogConfig/ValidateConfig convention: a plain struct with exported fields,
// a DefaultConfig constructor, and an explicit Validate pass run once at
// load time rather than scattered through the call sites that consume it.
package ldmconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// SelfTestMode controls how often a scenario run invokes SelfTest on the
// document under test.
type SelfTestMode int8

const (
	// SelfTestAfterEach runs SelfTest after every operation.
	SelfTestAfterEach SelfTestMode = iota

	// SelfTestAfterAll runs SelfTest once, after the whole scenario replays.
	SelfTestAfterAll

	// SelfTestNever skips SelfTest entirely.
	SelfTestNever
)

// Config is the shared configuration for a scenario run: which self-test
// cadence to apply, how many replicas to simulate, and whether delivery
// order should be shuffled to exercise commutativity.
type Config struct {
	// SelfTest selects when SelfTest runs during a scenario replay.
	SelfTest SelfTestMode

	// Replicas is the number of independent Document instances to run the
	// same logical operation set against, comparing their final state.
	Replicas int

	// ShuffleDelivery reorders each replica's operation delivery
	// independently, to exercise the commutativity guarantee; when false,
	// every replica applies operations in the scenario's listed order.
	ShuffleDelivery bool

	// Seed drives the shuffle; fixed by default so a failing scenario
	// reproduces deterministically.
	Seed int64
}

// DefaultConfig returns the configuration Load starts from, so a field a
// configuration TOML file leaves unset keeps its default.
func DefaultConfig() *Config {
	return &Config{
		SelfTest:        SelfTestAfterEach,
		Replicas:        2,
		ShuffleDelivery: false,
		Seed:            1,
	}
}

// Validate rejects configurations that could not possibly run: fewer than
// one replica leaves nothing to compare for convergence.
func (c *Config) Validate() error {
	if c.Replicas < 1 {
		return fmt.Errorf("ldmconfig: Replicas must be >= 1, got %d", c.Replicas)
	}
	if c.SelfTest < SelfTestAfterEach || c.SelfTest > SelfTestNever {
		return fmt.Errorf("ldmconfig: unknown SelfTest mode %d", c.SelfTest)
	}
	return nil
}

// Load reads a TOML configuration file, starting from DefaultConfig so any
// field the file omits keeps its default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("ldmconfig: decoding %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
