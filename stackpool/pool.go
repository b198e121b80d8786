package stackpool

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"unsafe"
)

// Handle is the integer type used to address nodes. 0 is the sentinel
// (empty stack / end of chain); h > 0 addresses nodes[h-1].
type Handle interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// node ：一个槽位，next 同时用于存活栈和 free list
type node[T any, N Handle] struct {
	value T
	next  N
}

// Pool is an arena of nodes shared by any number of stacks. A stack is only
// its head handle: Push, Pop and FreeStack return the new head and the
// caller keeps it.
//
// Passing the sentinel or a freed handle to Value, Ref, SetValue, Next or
// Pop is a caller error and is not checked unless built with the
// stackpooldebug tag.
//
// The zero value is an empty pool ready to use. A Pool is not safe for
// concurrent use.
type Pool[T any, N Handle] struct {
	nodes    []node[T, N]
	freeHead N   // 用 nodes[h-1].next 串 free list
	freeLen  int // free list 上的节点数

	recycler *Recycler[T, N]
	stats    counters
}

// New returns an empty pool using uint handles.
func New[T any]() *Pool[T, uint] {
	return &Pool[T, uint]{}
}

// NewPool returns an empty pool with room for capHint nodes.
func NewPool[T any, N Handle](capHint int) *Pool[T, N] {
	p := &Pool[T, N]{}
	p.Reserve(capHint)
	return p
}

// NewPoolFrom is like NewPool but takes storage from r, and gives it back
// on Release.
func NewPoolFrom[T any, N Handle](r *Recycler[T, N], capHint int) *Pool[T, N] {
	p := &Pool[T, N]{recycler: r}
	p.Reserve(capHint)
	return p
}

func (p *Pool[T, N]) node(h N) *node[T, N] { return &p.nodes[h-1] }

// NewStack returns an empty stack. Nothing is allocated.
func (p *Pool[T, N]) NewStack() N { return 0 }

// End returns the handle that terminates every chain.
func (p *Pool[T, N]) End() N { return 0 }

// IsEmpty reports whether h is the empty stack.
func (p *Pool[T, N]) IsEmpty(h N) bool { return h == 0 }

// Reserve makes room for at least n nodes. It is only a hint: n is capped
// at the number of nodes N can address, and a size the runtime cannot
// allocate is ignored.
func (p *Pool[T, N]) Reserve(n int) {
	if maxN := uint64(^N(0)); n > 0 && uint64(n) > maxN {
		n = int(maxN)
	}
	if n <= cap(p.nodes) {
		return
	}

	want := uint64(n)
	if p.recycler != nil {
		key := bits.Len(uint(n - 1))
		if key >= bits.UintSize-1 {
			return
		}
		want = 1 << key
	}
	if size := uint64(unsafe.Sizeof(node[T, N]{})); size > 0 && want > uint64(math.MaxInt)/size {
		return
	}
	p.grow(n)
}

// Capacity returns the number of nodes the storage holds without growing.
func (p *Pool[T, N]) Capacity() int { return cap(p.nodes) }

// Len returns the number of slots ever allocated, live or free.
func (p *Pool[T, N]) Len() int { return len(p.nodes) }

// FreeLen returns the number of slots waiting on the free list.
func (p *Pool[T, N]) FreeLen() int { return p.freeLen }

// LiveLen returns the number of slots that belong to some stack.
func (p *Pool[T, N]) LiveLen() int { return len(p.nodes) - p.freeLen }

// Value returns the value stored at h.
func (p *Pool[T, N]) Value(h N) T {
	p.checkLive(h, "Value")
	return p.node(h).value
}

// Ref returns a pointer to the value stored at h. The pointer is only valid
// until the next Push that grows the storage; h itself stays valid.
func (p *Pool[T, N]) Ref(h N) *T {
	p.checkLive(h, "Ref")
	return &p.node(h).value
}

// SetValue overwrites the value stored at h.
func (p *Pool[T, N]) SetValue(h N, v T) {
	p.checkLive(h, "SetValue")
	p.node(h).value = v
}

// Next returns the handle below h in its stack.
func (p *Pool[T, N]) Next(h N) N {
	p.checkLive(h, "Next")
	return p.node(h).next
}

// Push puts v on top of the stack head and returns the new head.
// A free slot is reused when there is one, otherwise storage grows.
func (p *Pool[T, N]) Push(v T, head N) N {
	p.stats.pushes++
	return p.alloc(v, head)
}

// Pop removes the top node of head and returns the new head. head must not
// be empty.
func (p *Pool[T, N]) Pop(head N) N {
	p.checkLive(head, "Pop")
	n := p.node(head)
	next := n.next
	p.free(head)
	p.stats.pops++
	return next
}

// FreeStack returns every node of head to the free list and returns the
// empty stack. The whole chain is spliced in front of the free list.
func (p *Pool[T, N]) FreeStack(head N) N {
	if head == 0 {
		return 0
	}

	var zero T
	cnt := 1
	tail := head
	for {
		n := p.node(tail)
		n.value = zero
		if n.next == 0 {
			break
		}
		tail = n.next
		cnt++
	}

	p.node(tail).next = p.freeHead
	p.freeHead = head
	p.freeLen += cnt

	p.stats.stacksFreed++
	p.stats.nodesFreed += uint64(cnt)
	return 0
}

// Depth returns the number of nodes in the stack head.
func (p *Pool[T, N]) Depth(head N) int {
	d := 0
	for h := head; h != 0; h = p.node(h).next {
		d++
	}
	return d
}

// Release drops all stacks at once and hands the storage back to the
// recycler the pool was built from. Every handle becomes stale. The pool
// can be used again afterwards.
func (p *Pool[T, N]) Release() {
	if p.recycler != nil && p.nodes != nil {
		p.recycler.put(p.nodes)
	}
	p.nodes = nil
	p.freeHead = 0
	p.freeLen = 0
	p.stats = counters{}
}

// alloc 返回新节点 handle
func (p *Pool[T, N]) alloc(v T, next N) N {
	if p.freeHead != 0 {
		h := p.freeHead
		n := p.node(h)
		p.freeHead = n.next
		p.freeLen--
		n.value = v
		n.next = next
		p.stats.reused++
		return h
	}

	idx := len(p.nodes) + 1
	h := N(idx)
	if uint64(h) != uint64(idx) {
		panic(fmt.Sprintf("stackpool: %d nodes do not fit in handle type %T", idx, h))
	}
	if len(p.nodes) == cap(p.nodes) {
		p.grow(max(len(p.nodes)+1, 2*cap(p.nodes)))
	}
	p.nodes = append(p.nodes, node[T, N]{value: v, next: next})
	p.stats.appends++
	return h
}

// free 挂回 free list；next 作为 nextFree
func (p *Pool[T, N]) free(h N) {
	var zero T
	n := p.node(h)
	n.value = zero
	n.next = p.freeHead
	p.freeHead = h
	p.freeLen++
}

// grow makes cap(p.nodes) >= n. Existing nodes keep their index.
func (p *Pool[T, N]) grow(n int) {
	p.stats.grows++
	if p.recycler == nil {
		p.nodes = slices.Grow(p.nodes, n-len(p.nodes))
		return
	}
	ns := p.recycler.get(n)
	ns = append(ns, p.nodes...)
	if p.nodes != nil {
		p.recycler.put(p.nodes)
	}
	p.nodes = ns
}
