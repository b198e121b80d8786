package stackpool

import (
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange reports a handle past the end of the storage.
	ErrOutOfRange = errors.New("stackpool: handle out of range")
	// ErrCycle reports a chain that never reaches the sentinel.
	ErrCycle = errors.New("stackpool: chain does not terminate")
	// ErrOverlap reports a node reachable from two chains.
	ErrOverlap = errors.New("stackpool: node shared by two chains")
	// ErrFreeCount reports a free list whose length disagrees with FreeLen.
	ErrFreeCount = errors.New("stackpool: free list length mismatch")
	// ErrLeaked reports allocated slots that are neither free nor in any
	// of the given stacks.
	ErrLeaked = errors.New("stackpool: slots owned by no chain")
)

// Validate walks the free list and every stack in heads and checks that
// each chain terminates, stays inside the storage and shares no node with
// another chain. heads must be distinct stacks; empty heads are skipped.
// It costs O(Len) and allocates; use it in tests and checks, not on hot
// paths.
//
// Validate only sees the stacks it is given, so a slot that is neither free
// nor in heads goes unnoticed. Use ValidateAll when heads are all the live
// stacks of the pool.
func (p *Pool[T, N]) Validate(heads ...N) error {
	_, err := p.validate(heads)
	return err
}

// ValidateAll is Validate for callers passing every live stack: it also
// requires each allocated slot to be on the free list or in one of heads.
func (p *Pool[T, N]) ValidateAll(heads ...N) error {
	live, err := p.validate(heads)
	if err != nil {
		return err
	}
	if live != p.LiveLen() {
		return errors.Wrapf(ErrLeaked, "%d of %d live slots reachable", live, p.LiveLen())
	}
	return nil
}

// validate returns the number of slots reached from heads.
func (p *Pool[T, N]) validate(heads []N) (int, error) {
	owner := make([]int32, len(p.nodes)) // 0 未访问, -1 free list, i+1 heads[i]

	walk := func(head N, id int32) (int, error) {
		cnt := 0
		for h := head; h != 0; h = p.nodes[h-1].next {
			if uint64(h) > uint64(len(p.nodes)) {
				return cnt, errors.Wrapf(ErrOutOfRange, "handle %d, len %d", h, len(p.nodes))
			}
			switch o := owner[h-1]; {
			case o == id:
				return cnt, errors.Wrapf(ErrCycle, "handle %d revisited", h)
			case o != 0:
				return cnt, errors.Wrapf(ErrOverlap, "handle %d owned by %s, reached from %s", h, chainName(o), chainName(id))
			}
			owner[h-1] = id
			cnt++
		}
		return cnt, nil
	}

	n, err := walk(p.freeHead, -1)
	if err != nil {
		return 0, errors.WithMessage(err, "free list")
	}
	if n != p.freeLen {
		return 0, errors.Wrapf(ErrFreeCount, "walked %d, recorded %d", n, p.freeLen)
	}

	live := 0
	for i, head := range heads {
		n, err := walk(head, int32(i+1))
		if err != nil {
			return 0, errors.WithMessagef(err, "stack %d", i)
		}
		live += n
	}
	return live, nil
}

func chainName(id int32) string {
	if id < 0 {
		return "free list"
	}
	return "stack " + strconv.Itoa(int(id-1))
}
