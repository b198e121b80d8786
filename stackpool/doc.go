// Package stackpool hosts many singly-linked stacks in one growable arena of
// nodes.
//
// A stack is nothing but the handle of its top node. Handles are 1-based
// indices into the arena and 0 is the empty stack, so growing the arena
// never invalidates a handle. Popped and freed nodes go onto a free list
// threaded through the same next field and are reused before the arena
// grows again.
//
//	p := stackpool.New[int]()
//	s := p.NewStack()
//	s = p.Push(10, s)
//	s = p.Push(20, s)
//	for v := range p.Values(s) {
//		fmt.Println(v) // 20, 10
//	}
//	s = p.FreeStack(s)
//
// Every mutating call returns the new head; keep it and drop the old one.
// Handles that were popped or freed are stale, and using them (or reading
// the empty stack) is undefined. Build with -tags stackpooldebug to turn
// those mistakes into panics.
package stackpool
