// Package workload drives many stacks in shared pools with random
// operations and checks them against a plain slice model.
//
// Each shard owns its pools and runs in its own goroutine. Rounds take a
// pool from a recycler shared by all shards, so released storage moves
// between shards.
package workload

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackpool/metrics"
	"stackpool/stackpool"
)

// ErrMismatch reports a stack whose contents differ from the model.
var ErrMismatch = errors.New("workload: stack differs from model")

type (
	pool     = stackpool.Pool[int64, uint32]
	recycler = stackpool.Recycler[int64, uint32]
)

// ShardReport is the outcome of one shard.
type ShardReport struct {
	Shard    int             `json:"shard" yaml:"shard"`
	Rounds   int             `json:"rounds" yaml:"rounds"`
	MaxDepth int             `json:"max_depth" yaml:"max_depth"`
	Checksum uint64          `json:"checksum" yaml:"checksum"`
	Stats    stackpool.Stats `json:"stats" yaml:"stats"`
}

// Report is the outcome of Run.
type Report struct {
	Config  Config          `json:"config" yaml:"config"`
	Shards  []ShardReport   `json:"shards" yaml:"shards"`
	Total   stackpool.Stats `json:"total" yaml:"total"`
	Parked  int             `json:"parked" yaml:"parked"`
	Elapsed time.Duration   `json:"elapsed" yaml:"elapsed"`
}

// Run executes cfg. collector may be nil; when set, each shard publishes
// its running totals after every round under the name "shard-<n>".
func Run(ctx context.Context, cfg Config, logger *zap.Logger, collector *metrics.PoolCollector) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid workload config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rec := stackpool.NewRecycler[int64, uint32](cfg.RecyclerSize, cfg.RecyclerLimit, logger)
	defer rec.Close()

	start := time.Now()
	reports := make([]ShardReport, cfg.Shards)
	g, gctx := errgroup.WithContext(ctx)
	for i := range reports {
		g.Go(func() error {
			s := &shard{
				id:        i,
				cfg:       cfg,
				rng:       rand.New(rand.NewPCG(cfg.Seed, uint64(i))),
				rec:       rec,
				logger:    logger.With(zap.Int("shard", i)),
				collector: collector,
			}
			rep, err := s.run(gctx)
			if err != nil {
				return errors.WithMessagef(err, "shard %d", i)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Config:  cfg,
		Shards:  reports,
		Parked:  rec.Parked(),
		Elapsed: time.Since(start),
	}
	for _, r := range reports {
		report.Total = report.Total.Add(r.Stats)
	}
	logger.Info("workload finished",
		zap.Int("shards", cfg.Shards),
		zap.Uint64("pushes", report.Total.Pushes),
		zap.Uint64("reused", report.Total.Reused),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

type shard struct {
	id        int
	cfg       Config
	rng       *rand.Rand
	rec       *recycler
	logger    *zap.Logger
	collector *metrics.PoolCollector

	report ShardReport
	buf    []int64
}

func (s *shard) run(ctx context.Context) (ShardReport, error) {
	s.report.Shard = s.id
	for round := 0; round < s.cfg.Rounds; round++ {
		st, err := s.round(ctx)
		if err != nil {
			return s.report, errors.WithMessagef(err, "round %d", round)
		}
		s.report.Rounds++
		s.report.Stats = accumulate(s.report.Stats, st)
		if s.collector != nil {
			s.collector.Update("shard-"+strconv.Itoa(s.id), s.report.Stats)
		}
		s.logger.Debug("round done",
			zap.Int("round", round),
			zap.Int("nodes", st.Nodes),
			zap.Int("live", st.Live),
			zap.Uint64("reused", st.Reused))
	}
	return s.report, nil
}

// round runs one pool from creation to release.
func (s *shard) round(ctx context.Context) (stackpool.Stats, error) {
	p := stackpool.NewPoolFrom(s.rec, s.cfg.CapHint)
	defer p.Release()

	heads := make([]uint32, s.cfg.Stacks)
	for i := range heads {
		heads[i] = p.NewStack()
	}
	model := make([][]int64, s.cfg.Stacks)

	total := s.cfg.PushWeight + s.cfg.PopWeight + s.cfg.FreeWeight
	for op := 0; op < s.cfg.Ops; op++ {
		if op&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return stackpool.Stats{}, errors.WithStack(err)
			}
		}

		i := s.rng.IntN(len(heads))
		switch r := s.rng.IntN(total); {
		case r < s.cfg.PushWeight:
			v := s.rng.Int64()
			heads[i] = p.Push(v, heads[i])
			model[i] = append(model[i], v)
			s.report.MaxDepth = max(s.report.MaxDepth, len(model[i]))
		case r < s.cfg.PushWeight+s.cfg.PopWeight:
			if p.IsEmpty(heads[i]) {
				continue
			}
			top := model[i][len(model[i])-1]
			if got := p.Value(heads[i]); got != top {
				return stackpool.Stats{}, errors.Wrapf(ErrMismatch, "stack %d top is %d, want %d", i, got, top)
			}
			heads[i] = p.Pop(heads[i])
			model[i] = model[i][:len(model[i])-1]
		default:
			heads[i] = p.FreeStack(heads[i])
			model[i] = model[i][:0]
		}
	}

	if err := s.verify(p, heads, model); err != nil {
		return stackpool.Stats{}, err
	}
	return p.Stats(), nil
}

// verify compares every stack with its model, top first, and checks the
// pool's chains.
func (s *shard) verify(p *pool, heads []uint32, model [][]int64) error {
	for i, h := range heads {
		s.buf = p.AppendValues(s.buf[:0], h)
		want := model[i]
		if len(s.buf) != len(want) {
			return errors.Wrapf(ErrMismatch, "stack %d has %d values, want %d", i, len(s.buf), len(want))
		}
		for j, v := range s.buf {
			if w := want[len(want)-1-j]; v != w {
				return errors.Wrapf(ErrMismatch, "stack %d value %d is %d, want %d", i, j, v, w)
			}
			s.report.Checksum = s.report.Checksum*31 + uint64(v)
		}
	}
	return errors.Wrap(p.ValidateAll(heads...), "validate pool")
}

// accumulate adds the counters of st to total and takes its gauges.
func accumulate(total, st stackpool.Stats) stackpool.Stats {
	sum := total.Add(st)
	sum.Nodes = st.Nodes
	sum.Capacity = st.Capacity
	sum.Free = st.Free
	sum.Live = st.Live
	return sum
}
