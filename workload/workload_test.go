package workload

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"stackpool/metrics"
	"stackpool/stackpool"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Shards = 3
	cfg.Rounds = 4
	cfg.Stacks = 8
	cfg.Ops = 2000
	cfg.CapHint = 16
	return cfg
}

func TestRunChecksEveryShard(t *testing.T) {
	cfg := smallConfig()
	c := metrics.NewPoolCollector("stackpool")

	rep, err := Run(context.Background(), cfg, zaptest.NewLogger(t), c)
	require.NoError(t, err)

	require.Len(t, rep.Shards, cfg.Shards)
	var pushes uint64
	for i, sr := range rep.Shards {
		assert.Equal(t, i, sr.Shard)
		assert.Equal(t, cfg.Rounds, sr.Rounds)
		assert.Positive(t, sr.Stats.Pushes)
		assert.Positive(t, sr.Stats.Reused, "free list never used")
		pushes += sr.Stats.Pushes
	}
	assert.Equal(t, pushes, rep.Total.Pushes)
	assert.Equal(t, []string{"shard-0", "shard-1", "shard-2"}, c.Pools())
	assert.Equal(t, 30, testutil.CollectAndCount(c))
	assert.Positive(t, rep.Parked)
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := smallConfig()
	a, err := Run(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, nil, nil)
	require.NoError(t, err)

	for i := range a.Shards {
		assert.Equal(t, a.Shards[i].Checksum, b.Shards[i].Checksum)
		assert.Equal(t, a.Shards[i].MaxDepth, b.Shards[i].MaxDepth)
		assert.Equal(t, a.Shards[i].Stats.Pushes, b.Shards[i].Stats.Pushes)
	}

	cfg.Seed++
	c, err := Run(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Shards[0].Checksum, c.Shards[0].Checksum)
}

func TestRunPushOnly(t *testing.T) {
	cfg := smallConfig()
	cfg.Shards = 1
	cfg.Rounds = 1
	cfg.PopWeight = 0
	cfg.FreeWeight = 0

	rep, err := Run(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	st := rep.Shards[0].Stats
	assert.Equal(t, uint64(cfg.Ops), st.Pushes)
	assert.Zero(t, st.Reused)
	assert.Equal(t, cfg.Ops, st.Live)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallConfig(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Stacks = 0
	_, err := Run(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "stacks must be positive")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"shards", func(c *Config) { c.Shards = 0 }},
		{"rounds", func(c *Config) { c.Rounds = -1 }},
		{"ops", func(c *Config) { c.Ops = -1 }},
		{"cap hint", func(c *Config) { c.CapHint = -1 }},
		{"negative weight", func(c *Config) { c.PopWeight = -1 }},
		{"zero weights", func(c *Config) { c.PushWeight, c.PopWeight, c.FreeWeight = 0, 0, 0 }},
		{"recycler", func(c *Config) { c.RecyclerLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAccumulate(t *testing.T) {
	a := stackpool.Stats{Nodes: 10, Live: 4, Pushes: 7, NodesFreed: 1}
	b := stackpool.Stats{Nodes: 3, Live: 1, Pushes: 2, NodesFreed: 5}
	got := accumulate(a, b)
	assert.Equal(t, 3, got.Nodes)
	assert.Equal(t, 1, got.Live)
	assert.Equal(t, uint64(9), got.Pushes)
	assert.Equal(t, uint64(6), got.NodesFreed)
}
