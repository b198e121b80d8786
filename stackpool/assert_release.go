//go:build !stackpooldebug

package stackpool

func (p *Pool[T, N]) checkLive(N, string) {}
