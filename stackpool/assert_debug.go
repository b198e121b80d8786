//go:build stackpooldebug

package stackpool

import "fmt"

func (p *Pool[T, N]) checkLive(h N, op string) {
	if h == 0 {
		panic(fmt.Sprintf("stackpool: %s on empty stack", op))
	}
	if uint64(h) > uint64(len(p.nodes)) {
		panic(fmt.Sprintf("stackpool: %s on handle %d out of range (len %d)", op, h, len(p.nodes)))
	}
}
