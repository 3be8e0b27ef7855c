package main

import (
	"fmt"

	"github.com/funny-falcon/sharedptr/alloc"
	"github.com/funny-falcon/sharedptr/shared"
)

const fanout = 4

type payload struct {
	Sum  int64
	Data [32]int64
}

type node struct {
	shared.EnableSharedFromThis[node]
	id       int
	parent   *shared.Weak[node]
	children []*shared.Shared[node]
	payload  *shared.Shared[payload]
	refs     shared.ReleaseHolder
}

func (n *node) Destroy() {
	n.refs.Release()
}

func (n *node) adopt(c *shared.Shared[node]) {
	n.children = append(n.children, c)
	n.refs.Add(c)
}

// Workload builds trees with owning child edges and observing parent edges.
// Node records come from Blocks, payloads from Slab.
type Workload struct {
	Blocks *alloc.Counting
	Slab   *alloc.Slab
}

func (w *Workload) newNode(id int, parent *shared.Shared[node]) (*shared.Shared[node], error) {
	pl, err := alloc.New[payload](w.Slab)
	if err != nil {
		return nil, err
	}
	for i := range pl.Data {
		pl.Data[i] = int64(id + i)
		pl.Sum += pl.Data[i]
	}
	sp, err := shared.NewWithAllocator(pl, shared.AllocatorDelete[payload](w.Slab), w.Blocks)
	if err != nil {
		return nil, err
	}
	s, err := shared.AllocateShared(w.Blocks, func(n *node) error {
		n.id = id
		n.parent = parent.Weak()
		n.payload = sp
		n.refs.Add(n.parent)
		n.refs.Add(n.payload)
		return nil
	})
	if err != nil {
		sp.Release()
		return nil, err
	}
	return s, nil
}

func payloadSum(id int) int64 {
	return int64(len(payload{}.Data)*id + len(payload{}.Data)*(len(payload{}.Data)-1)/2)
}

// Round builds a tree of n nodes, checks its edges and drops it. Every
// record must be returned once the root goes.
func (w *Workload) Round(n int) error {
	if n <= 0 {
		return nil
	}
	liveBefore := w.Blocks.Live()
	root, err := w.newNode(0, nil)
	if err != nil {
		return err
	}
	level := []*shared.Shared[node]{root}
	id := 1
	for id < n && len(level) > 0 {
		var next []*shared.Shared[node]
		for _, p := range level {
			for k := 0; k < fanout && id < n; k++ {
				c, err := w.newNode(id, p)
				if err != nil {
					root.Release()
					return err
				}
				id++
				p.Get().adopt(c)
				next = append(next, c)
			}
		}
		level = next
	}

	leaf := level[len(level)-1]
	leafID := leaf.Get().id
	if err := checkEdges(leaf.Get()); err != nil {
		root.Release()
		return err
	}
	probe := leaf.Weak()
	defer probe.Release()

	root.Release()
	if !probe.Expired() {
		return fmt.Errorf("node %d outlived its root", leafID)
	}
	// probe still pins the leaf's block
	if live := w.Blocks.Live() - liveBefore; live != 1 {
		return fmt.Errorf("%d records live after dropping the tree", live)
	}
	return nil
}

func checkEdges(n *node) error {
	self := n.SharedFromThis()
	defer self.Release()
	if self.Get() != n || self.UseCount() != 2 {
		return fmt.Errorf("node %d: bad self reference", n.id)
	}
	for {
		if sum := n.payload.Get().Sum; sum != payloadSum(n.id) {
			return fmt.Errorf("node %d: payload sum %d", n.id, sum)
		}
		if n.parent.Expired() {
			break
		}
		p := n.parent.Lock()
		parent := p.Get()
		p.Release()
		if len(parent.children) == 0 {
			return fmt.Errorf("node %d: parent %d has no children", n.id, parent.id)
		}
		n = parent
	}
	if n.id != 0 {
		return fmt.Errorf("walk ended at node %d, not the root", n.id)
	}
	return nil
}
