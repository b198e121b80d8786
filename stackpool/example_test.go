package stackpool_test

import (
	"fmt"

	"stackpool/stackpool"
)

func Example() {
	p := stackpool.New[int]()
	s := p.NewStack()
	s = p.Push(10, s)
	s = p.Push(20, s)
	fmt.Println(p.Value(s))

	s = p.Pop(s)
	fmt.Println(p.Value(s))

	s = p.Pop(s)
	fmt.Println(p.IsEmpty(s))
	// Output:
	// 20
	// 10
	// true
}

func ExamplePool_FreeStack() {
	p := stackpool.NewPool[string, uint32](0)
	a, b := p.NewStack(), p.NewStack()
	for _, v := range []string{"x", "y", "z"} {
		a = p.Push(v, a)
	}
	b = p.Push("only", b)

	a = p.FreeStack(a)
	fmt.Println(p.IsEmpty(a), p.FreeLen(), p.LiveLen())

	for _, v := range []string{"1", "2", "3"} {
		a = p.Push(v, a)
	}
	fmt.Println(p.Len(), p.AppendValues(nil, a), p.AppendValues(nil, b))
	// Output:
	// true 3 1
	// 4 [3 2 1] [only]
}

func ExamplePool_Begin() {
	p := stackpool.New[rune]()
	s := p.NewStack()
	for _, r := range "abc" {
		s = p.Push(r, s)
	}
	for c := p.Begin(s); c != p.EndCursor(); c.Advance() {
		fmt.Printf("%c", c.Value())
	}
	fmt.Println()
	// Output:
	// cba
}

func ExamplePool_Values() {
	p := stackpool.New[int]()
	s := p.NewStack()
	for i := 1; i <= 4; i++ {
		s = p.Push(i*i, s)
	}
	sum := 0
	for v := range p.Values(s) {
		sum += v
	}
	fmt.Println(sum, p.Depth(s))
	// Output:
	// 30 4
}
