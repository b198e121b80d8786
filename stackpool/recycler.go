package stackpool

import (
	"math/bits"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/syncmap"
)

const (
	defaultRecycleDelay    = 60 * time.Second
	defaultRecycleInterval = 30 * time.Minute
)

// Recycler parks node storage released by pools so that pools created
// later can take it instead of allocating. Storage is bucketed by
// power-of-two capacity. Each bucket holds at most poolSize slices; when
// more than limitCnt slices sit unused in a bucket for a while, 10% of them
// are dropped every recycle interval.
//
// A Recycler is safe for concurrent use; the pools built from it are not.
type Recycler[T any, N Handle] struct {
	classes  syncmap.Map // size class -> *storageClass[T, N]
	poolSize int
	limitCnt uint32
	logger   *zap.Logger
	closed   atomic.Bool

	recycleDelay    time.Duration
	recycleInterval time.Duration
}

// NewRecycler returns a Recycler keeping up to poolSize slices per size
// class. A nil logger discards trimming logs.
func NewRecycler[T any, N Handle](poolSize, limitCnt int, logger *zap.Logger) *Recycler[T, N] {
	if poolSize < 0 {
		poolSize = 0
	}
	if limitCnt < 0 {
		limitCnt = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recycler[T, N]{
		poolSize:        poolSize,
		limitCnt:        uint32(limitCnt),
		logger:          logger,
		recycleDelay:    defaultRecycleDelay,
		recycleInterval: defaultRecycleInterval,
	}
}

// Parked returns the number of slices waiting in the recycler.
func (r *Recycler[T, N]) Parked() int {
	total := 0
	r.classes.Range(func(_, v any) bool {
		total += len(v.(*storageClass[T, N]).pool)
		return true
	})
	return total
}

// Close stops all pending trim timers. Parked storage is left to the GC.
func (r *Recycler[T, N]) Close() {
	r.closed.Store(true)
	r.classes.Range(func(_, v any) bool {
		v.(*storageClass[T, N]).stopTimer()
		return true
	})
}

// get returns an empty slice with capacity >= n.
func (r *Recycler[T, N]) get(n int) []node[T, N] {
	if n <= 0 {
		return nil
	}
	return r.class(bits.Len(uint(n - 1))).get()
}

// put parks s in the largest class its capacity covers.
func (r *Recycler[T, N]) put(s []node[T, N]) {
	c := cap(s)
	if c == 0 {
		return
	}
	clear(s[:c])
	key := bits.Len(uint(c)) - 1
	classCap := 1 << key
	r.class(key).put(s[:0:classCap])
}

func (r *Recycler[T, N]) class(key int) *storageClass[T, N] {
	if v, ok := r.classes.Load(key); ok {
		return v.(*storageClass[T, N])
	}
	sc := &storageClass[T, N]{
		owner: r,
		key:   key,
		pool:  make(chan []node[T, N], r.poolSize),
	}
	v, _ := r.classes.LoadOrStore(key, sc)
	return v.(*storageClass[T, N])
}

// 实现一个基于channel的对象池
type storageClass[T any, N Handle] struct {
	owner  *Recycler[T, N]
	key    int
	pool   chan []node[T, N]
	getCnt atomic.Uint32
	putCnt atomic.Uint32

	mu           sync.Mutex
	recycleTimer *time.Timer
}

func (c *storageClass[T, N]) get() []node[T, N] {
	select {
	case s := <-c.pool:
		c.getCnt.Add(1)
		return s
	default:
		return make([]node[T, N], 0, 1<<c.key)
	}
}

func (c *storageClass[T, N]) put(s []node[T, N]) {
	select {
	case c.pool <- s:
		c.putCnt.Add(1)
	default:
		// 池已满，丢弃
	}

	getCnt := c.getCnt.Load()
	putCnt := c.putCnt.Load()
	c.mu.Lock()
	defer c.mu.Unlock()
	// Close 之后不再启动定时器
	if c.owner.closed.Load() {
		return
	}
	if putCnt-getCnt > c.owner.limitCnt {
		// 触发回收机制
		if c.recycleTimer == nil {
			c.recycleTimer = time.AfterFunc(c.owner.recycleDelay, c.triggerRecycle)
		} else {
			c.recycleTimer.Reset(c.owner.recycleDelay)
		}
	} else if c.recycleTimer != nil {
		c.recycleTimer.Stop()
	}
}

// triggerRecycle 用于触发池的回收机制，每次回收10%
func (c *storageClass[T, N]) triggerRecycle() {
	before := len(c.pool)
	recycleCnt := before / 10
	for i := 0; i < recycleCnt; i++ {
		select {
		case <-c.pool:
			c.getCnt.Add(1)
		default:
		}
	}
	c.owner.logger.Info("stackpool recycler trimmed",
		zap.Int("class_cap", 1<<c.key),
		zap.Int("before", before),
		zap.Int("after", len(c.pool)))

	c.mu.Lock()
	if !c.owner.closed.Load() {
		c.recycleTimer.Reset(c.owner.recycleInterval)
	}
	c.mu.Unlock()
}

func (c *storageClass[T, N]) stopTimer() {
	c.mu.Lock()
	if c.recycleTimer != nil {
		c.recycleTimer.Stop()
	}
	c.mu.Unlock()
}
