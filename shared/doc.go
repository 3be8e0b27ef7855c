// Package shared implements reference-counted shared ownership of heap
// objects.
//
// A Shared handle owns its object; a Weak handle observes it without keeping
// it alive. Both point at a control block holding a strong and a weak count.
// When the strong count drops to zero the object is destroyed. The block
// itself is returned to its allocator once both counts are zero.
//
// Go has no destructors, so every handle obtained from this package must be
// released explicitly:
//
//	p, err := shared.MakeShared(func(c *Conn) error { return c.open(addr) })
//	if err != nil {
//		return err
//	}
//	defer p.Release()
//
//	q := p.Clone() // second owner
//	w := p.Weak()  // observer
//	defer w.Release()
//
// Handles are not safe for concurrent use: the counts are plain integers.
// Cycles of Shared handles are never collected; break them with Weak.
package shared
