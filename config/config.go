// Package config holds the run configuration of the PBrain12 machine.
//
// A Config is a plain value. It is built once, validated, and handed to
// the kernel and machine constructors; nothing reads it from global state.
package config

import (
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ezrec/pbrain/alloc"
)

// Configuration keys, shared by the config file, environment and flags.
const (
	KEY_MEMORY_SIZE = "memory_size"
	KEY_POLICY      = "policy"
	KEY_TIME_SLICE  = "time_slice"
	KEY_MAX_SLICE   = "max_slice"
	KEY_SEED        = "seed"
	KEY_VERBOSE     = "verbose"
	KEY_MESSAGES    = "messages"
	KEY_SEMAPHORES  = "semaphores"
)

// ENV_PREFIX prefixes the environment variable form of every key.
const ENV_PREFIX = "PBRAIN"

// Semaphore describes one semaphore of the kernel's table.
type Semaphore struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Count int    `yaml:"count" mapstructure:"count"`
	Gate  bool   `yaml:"gate" mapstructure:"gate"` // Selected by a non-zero register instead of the accumulator.
}

// Config is the configuration of a run.
type Config struct {
	MemorySize int          `yaml:"memory_size"` // Words in the memory store.
	Policy     alloc.Policy `yaml:"policy"`      // Allocation policy.
	TimeSlice  int          `yaml:"time_slice"`  // Fixed time slice, or 0 for a random slice.
	MaxSlice   int          `yaml:"max_slice"`   // Upper bound of a random time slice.
	Seed       uint64       `yaml:"seed"`        // Seed of the time slice generator.
	Verbose    bool         `yaml:"verbose"`     // Narrate allocator, scheduler and CPU actions.
	Messages   bool         `yaml:"messages"`    // Report diagnostics.
	Semaphores []Semaphore  `yaml:"semaphores"`  // Semaphore table.
}

// DefaultSemaphores is the dining philosophers table: five forks and a
// doorman admitting four diners.
func DefaultSemaphores() []Semaphore {
	return []Semaphore{
		{Name: "fork0", Count: 1},
		{Name: "fork1", Count: 1},
		{Name: "fork2", Count: 1},
		{Name: "fork3", Count: 1},
		{Name: "fork4", Count: 1},
		{Name: "doorman", Count: 4, Gate: true},
	}
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MemorySize: 1000,
		Policy:     alloc.BEST_FIT,
		TimeSlice:  0,
		MaxSlice:   10,
		Seed:       1,
		Semaphores: DefaultSemaphores(),
	}
}

// Bind installs the defaults and the environment mapping into v.
func Bind(v *viper.Viper) {
	def := Default()

	v.SetDefault(KEY_MEMORY_SIZE, def.MemorySize)
	v.SetDefault(KEY_POLICY, def.Policy.String())
	v.SetDefault(KEY_TIME_SLICE, def.TimeSlice)
	v.SetDefault(KEY_MAX_SLICE, def.MaxSlice)
	v.SetDefault(KEY_SEED, def.Seed)
	v.SetDefault(KEY_VERBOSE, def.Verbose)
	v.SetDefault(KEY_MESSAGES, def.Messages)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load builds a validated configuration from v.
// Keys missing from v take their default value.
func Load(v *viper.Viper) (cfg Config, err error) {
	cfg = Default()

	if v.IsSet(KEY_MEMORY_SIZE) {
		cfg.MemorySize = v.GetInt(KEY_MEMORY_SIZE)
	}
	if v.IsSet(KEY_POLICY) {
		cfg.Policy, err = alloc.ParsePolicy(v.GetString(KEY_POLICY))
		if err != nil {
			err = &ErrKey{Key: KEY_POLICY, Err: err}
			return
		}
	}
	if v.IsSet(KEY_TIME_SLICE) {
		cfg.TimeSlice = v.GetInt(KEY_TIME_SLICE)
	}
	if v.IsSet(KEY_MAX_SLICE) {
		cfg.MaxSlice = v.GetInt(KEY_MAX_SLICE)
	}
	if v.IsSet(KEY_SEED) {
		cfg.Seed = v.GetUint64(KEY_SEED)
	}
	cfg.Verbose = v.GetBool(KEY_VERBOSE)
	cfg.Messages = v.GetBool(KEY_MESSAGES)

	if v.IsSet(KEY_SEMAPHORES) {
		var table []Semaphore
		err = v.UnmarshalKey(KEY_SEMAPHORES, &table)
		if err != nil {
			err = &ErrKey{Key: KEY_SEMAPHORES, Err: err}
			return
		}
		cfg.Semaphores = table
	}

	err = cfg.Validate()
	return
}

// Validate checks the configuration for values the machine cannot run with.
func (cfg Config) Validate() (err error) {
	switch {
	case cfg.MemorySize <= 0:
		err = &ErrKey{Key: KEY_MEMORY_SIZE, Err: ErrRange}
	case cfg.Policy < alloc.FIRST_FIT || cfg.Policy > alloc.WORST_FIT:
		err = &ErrKey{Key: KEY_POLICY, Err: alloc.ErrPolicy(cfg.Policy.String())}
	case cfg.TimeSlice < 0:
		err = &ErrKey{Key: KEY_TIME_SLICE, Err: ErrRange}
	case cfg.TimeSlice == 0 && cfg.MaxSlice <= 0:
		err = &ErrKey{Key: KEY_MAX_SLICE, Err: ErrRange}
	default:
		err = validateSemaphores(cfg.Semaphores)
	}

	return
}

func validateSemaphores(table []Semaphore) (err error) {
	names := make(map[string]bool, len(table))
	resources := 0

	for _, sem := range table {
		switch {
		case len(sem.Name) == 0:
			err = ErrSemaphoreName
		case names[sem.Name]:
			err = ErrSemaphoreDuplicate
		case sem.Count < 0:
			err = ErrRange
		}
		if err != nil {
			err = &ErrKey{Key: KEY_SEMAPHORES + "." + sem.Name, Err: err}
			return
		}

		names[sem.Name] = true
		if !sem.Gate {
			resources++
		}
	}

	if resources == 0 {
		err = &ErrKey{Key: KEY_SEMAPHORES, Err: ErrSemaphoreTable}
	}

	return
}

// WriteYAML writes the configuration in config file format.
func (cfg Config) WriteYAML(w io.Writer) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err = enc.Encode(cfg)
	if err != nil {
		return
	}

	err = enc.Close()
	return
}
