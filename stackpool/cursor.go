package stackpool

import "iter"

// Cursor walks one stack from top to bottom. It does not own anything: it is
// a pool pointer and the current handle, and must not be used after the pool
// is released. Two cursors are equal (==) iff they share pool and handle.
type Cursor[T any, N Handle] struct {
	pool *Pool[T, N]
	at   N
}

// Begin returns a cursor on the top of the stack head.
func (p *Pool[T, N]) Begin(head N) Cursor[T, N] {
	return Cursor[T, N]{pool: p, at: head}
}

// EndCursor returns the cursor every traversal of p stops at.
func (p *Pool[T, N]) EndCursor() Cursor[T, N] {
	return Cursor[T, N]{pool: p}
}

// Value returns the value under the cursor.
func (c Cursor[T, N]) Value() T { return c.pool.Value(c.at) }

// Ref returns a pointer to the value under the cursor.
func (c Cursor[T, N]) Ref() *T { return c.pool.Ref(c.at) }

// Handle returns the current handle.
func (c Cursor[T, N]) Handle() N { return c.at }

// Done reports whether the cursor reached the end of its stack.
func (c Cursor[T, N]) Done() bool { return c.at == 0 }

// Advance moves the cursor one node down.
func (c *Cursor[T, N]) Advance() { c.at = c.pool.Next(c.at) }

// Equal reports whether c and o share pool and handle.
func (c Cursor[T, N]) Equal(o Cursor[T, N]) bool { return c == o }

// Values yields the values of head from top to bottom.
func (p *Pool[T, N]) Values(head N) iter.Seq[T] {
	return func(yield func(T) bool) {
		for h := head; h != 0; h = p.node(h).next {
			if !yield(p.node(h).value) {
				return
			}
		}
	}
}

// All yields the handles and values of head from top to bottom.
func (p *Pool[T, N]) All(head N) iter.Seq2[N, T] {
	return func(yield func(N, T) bool) {
		for h := head; h != 0; h = p.node(h).next {
			if !yield(h, p.node(h).value) {
				return
			}
		}
	}
}

// AppendValues appends the values of head, top first, to dst.
func (p *Pool[T, N]) AppendValues(dst []T, head N) []T {
	for h := head; h != 0; h = p.node(h).next {
		dst = append(dst, p.node(h).value)
	}
	return dst
}
