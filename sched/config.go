package sched

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rvos-project/rvos/emu"
)

// Config holds scheduler construction parameters.
type Config struct {
	// Policy selects the scheduling algorithm: "priority",
	// "round-robin", or "fcfs".
	Policy string `json:"policy"`

	// TimeSlice is the round-robin slice length in ticks.
	TimeSlice int `json:"time_slice"`

	// AgingEnabled turns the starvation-prevention mechanism on.
	AgingEnabled bool `json:"aging_enabled"`

	// AgingThreshold is the wait in ticks before aging applies.
	AgingThreshold uint64 `json:"aging_threshold"`

	// StackTop is the high memory mark task stacks grow down from.
	StackTop uint32 `json:"stack_top"`

	// DefaultStackSize is the per-task stack allocation in bytes.
	DefaultStackSize int `json:"default_stack_size"`
}

// DefaultConfig returns the scheduler defaults: priority policy with
// aging enabled.
func DefaultConfig() *Config {
	return &Config{
		Policy:           "priority",
		TimeSlice:        DefaultTimeSlice,
		AgingEnabled:     true,
		AgingThreshold:   DefaultAgingThreshold,
		StackTop:         DefaultStackTop,
		DefaultStackSize: DefaultStackSize,
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scheduler config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse scheduler config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize scheduler config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scheduler config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.Policy {
	case "priority", "round-robin", "fcfs":
	default:
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	if c.TimeSlice <= 0 {
		return fmt.Errorf("time_slice must be > 0")
	}
	if c.DefaultStackSize <= 0 {
		return fmt.Errorf("default_stack_size must be > 0")
	}
	return nil
}

// NewPolicy creates the Policy the config names.
func (c *Config) NewPolicy() (Policy, error) {
	switch c.Policy {
	case "priority":
		return NewPriorityPolicy(), nil
	case "round-robin":
		return NewRoundRobinPolicy(c.TimeSlice), nil
	case "fcfs":
		return NewFCFSPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", c.Policy)
	}
}

// NewFromConfig builds a scheduler over regFile per the config.
func NewFromConfig(regFile *emu.RegFile, c *Config, opts ...Option) (*Scheduler, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, err := c.NewPolicy()
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithAging(c.AgingEnabled),
		WithAgingThreshold(c.AgingThreshold),
		WithStackTop(c.StackTop),
		WithDefaultStackSize(c.DefaultStackSize),
	}
	return New(regFile, policy, append(base, opts...)...), nil
}
