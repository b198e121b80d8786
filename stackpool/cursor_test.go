package stackpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorWalk(t *testing.T) {
	p := New[string]()
	s := pushAll(t, p, p.NewStack(), "a", "b", "c")

	var got []string
	for c := p.Begin(s); c != p.EndCursor(); c.Advance() {
		got = append(got, c.Value())
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestCursorEquality(t *testing.T) {
	p, q := New[int](), New[int]()
	s := pushAll(t, p, p.NewStack(), 1, 2)
	pushAll(t, q, q.NewStack(), 1, 2)

	assert.True(t, p.Begin(s).Equal(p.Begin(s)))
	assert.False(t, p.Begin(s).Equal(q.Begin(s)), "different pools")
	assert.False(t, p.Begin(s).Equal(p.Begin(p.Next(s))))
	assert.True(t, p.Begin(p.NewStack()).Equal(p.EndCursor()))
	assert.True(t, p.Begin(p.NewStack()).Done())
}

func TestCursorRestartFromSavedHandle(t *testing.T) {
	p := New[int]()
	s := pushAll(t, p, p.NewStack(), 1, 2, 3)

	c := p.Begin(s)
	c.Advance()
	saved := c.Handle()
	c.Advance()
	require.Equal(t, 1, c.Value())

	again := p.Begin(saved)
	assert.Equal(t, 2, again.Value())
}

func TestCursorRefMutates(t *testing.T) {
	p := New[int]()
	s := pushAll(t, p, p.NewStack(), 1, 2, 3)
	for c := p.Begin(s); !c.Done(); c.Advance() {
		*c.Ref() *= 10
	}
	assert.Equal(t, []int{30, 20, 10}, values(p, s))
}

func TestValuesStopsEarly(t *testing.T) {
	p := New[int]()
	s := pushAll(t, p, p.NewStack(), 1, 2, 3, 4)

	var got []int
	for v := range p.Values(s) {
		if v == 2 {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{4, 3}, got)

	var hs []uint
	for h, v := range p.All(s) {
		hs = append(hs, h)
		if v == 3 {
			break
		}
	}
	assert.Equal(t, []uint{4, 3}, hs)
}

func TestIteratorsOnEmptyStack(t *testing.T) {
	p := New[int]()
	for range p.Values(p.NewStack()) {
		t.Fatal("empty stack yielded a value")
	}
	assert.Empty(t, p.AppendValues(nil, p.NewStack()))
	assert.Equal(t, 0, p.Depth(p.NewStack()))
}
