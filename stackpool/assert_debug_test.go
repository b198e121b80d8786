//go:build stackpooldebug

package stackpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugAssertions(t *testing.T) {
	p := New[int]()
	s := p.Push(1, p.NewStack())

	assert.PanicsWithValue(t, "stackpool: Value on empty stack", func() { p.Value(0) })
	assert.PanicsWithValue(t, "stackpool: Pop on empty stack", func() { p.Pop(p.NewStack()) })
	assert.PanicsWithValue(t, "stackpool: Next on handle 5 out of range (len 1)", func() { p.Next(5) })
	assert.Panics(t, func() { p.Ref(0) })
	assert.Panics(t, func() { p.SetValue(2, 1) })
	assert.NotPanics(t, func() { p.Value(s) })
}
