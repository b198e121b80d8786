package stackpool

type counters struct {
	pushes      uint64
	pops        uint64
	reused      uint64
	appends     uint64
	grows       uint64
	stacksFreed uint64
	nodesFreed  uint64
}

// Stats is a snapshot of a pool's storage and operation counters.
// Counters restart from zero on Release.
type Stats struct {
	Nodes    int `json:"nodes" yaml:"nodes"`
	Capacity int `json:"capacity" yaml:"capacity"`
	Free     int `json:"free" yaml:"free"`
	Live     int `json:"live" yaml:"live"`

	Pushes      uint64 `json:"pushes" yaml:"pushes"`
	Pops        uint64 `json:"pops" yaml:"pops"`
	Reused      uint64 `json:"reused" yaml:"reused"`
	Appended    uint64 `json:"appended" yaml:"appended"`
	Grows       uint64 `json:"grows" yaml:"grows"`
	StacksFreed uint64 `json:"stacks_freed" yaml:"stacks_freed"`
	NodesFreed  uint64 `json:"nodes_freed" yaml:"nodes_freed"`
}

// Stats returns the current counters of p.
func (p *Pool[T, N]) Stats() Stats {
	return Stats{
		Nodes:       len(p.nodes),
		Capacity:    cap(p.nodes),
		Free:        p.freeLen,
		Live:        len(p.nodes) - p.freeLen,
		Pushes:      p.stats.pushes,
		Pops:        p.stats.pops,
		Reused:      p.stats.reused,
		Appended:    p.stats.appends,
		Grows:       p.stats.grows,
		StacksFreed: p.stats.stacksFreed,
		NodesFreed:  p.stats.nodesFreed,
	}
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	s.Nodes += o.Nodes
	s.Capacity += o.Capacity
	s.Free += o.Free
	s.Live += o.Live
	s.Pushes += o.Pushes
	s.Pops += o.Pops
	s.Reused += o.Reused
	s.Appended += o.Appended
	s.Grows += o.Grows
	s.StacksFreed += o.StacksFreed
	s.NodesFreed += o.NodesFreed
	return s
}
