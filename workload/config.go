package workload

import "github.com/pkg/errors"

// Config describes a randomized run. Field tags match the CLI flag names so
// viper can fill it from flags, environment and config files.
type Config struct {
	Shards int    `mapstructure:"shards" json:"shards" yaml:"shards"`
	Rounds int    `mapstructure:"rounds" json:"rounds" yaml:"rounds"`
	Stacks int    `mapstructure:"stacks" json:"stacks" yaml:"stacks"`
	Ops    int    `mapstructure:"ops" json:"ops" yaml:"ops"`
	Seed   uint64 `mapstructure:"seed" json:"seed" yaml:"seed"`

	// CapHint is passed to every pool; 0 lets pools grow from empty.
	CapHint int `mapstructure:"cap-hint" json:"cap_hint" yaml:"cap_hint"`

	PushWeight int `mapstructure:"push-weight" json:"push_weight" yaml:"push_weight"`
	PopWeight  int `mapstructure:"pop-weight" json:"pop_weight" yaml:"pop_weight"`
	FreeWeight int `mapstructure:"free-weight" json:"free_weight" yaml:"free_weight"`

	RecyclerSize  int `mapstructure:"recycler-size" json:"recycler_size" yaml:"recycler_size"`
	RecyclerLimit int `mapstructure:"recycler-limit" json:"recycler_limit" yaml:"recycler_limit"`
}

func DefaultConfig() Config {
	return Config{
		Shards:        4,
		Rounds:        8,
		Stacks:        64,
		Ops:           100000,
		Seed:          1,
		CapHint:       1024,
		PushWeight:    6,
		PopWeight:     3,
		FreeWeight:    1,
		RecyclerSize:  64,
		RecyclerLimit: 32,
	}
}

// Validate checks cfg for values Run cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Shards <= 0:
		return errors.Errorf("shards must be positive, got %d", c.Shards)
	case c.Rounds <= 0:
		return errors.Errorf("rounds must be positive, got %d", c.Rounds)
	case c.Stacks <= 0:
		return errors.Errorf("stacks must be positive, got %d", c.Stacks)
	case c.Ops < 0:
		return errors.Errorf("ops must not be negative, got %d", c.Ops)
	case c.CapHint < 0:
		return errors.Errorf("cap-hint must not be negative, got %d", c.CapHint)
	case c.PushWeight < 0 || c.PopWeight < 0 || c.FreeWeight < 0:
		return errors.New("op weights must not be negative")
	case c.PushWeight+c.PopWeight+c.FreeWeight == 0:
		return errors.New("at least one op weight must be positive")
	case c.RecyclerSize < 0 || c.RecyclerLimit < 0:
		return errors.New("recycler size and limit must not be negative")
	}
	return nil
}
