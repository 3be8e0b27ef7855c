package shared

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/funny-falcon/sharedptr/alloc"
)

type counts struct {
	strong uint32
	weak   uint32
}

func (c *counts) header() *counts {
	return c
}

type controlBlock interface {
	header() *counts
	// destroy ends the life of the managed object. It runs once, when the
	// strong count drops to zero.
	destroy()
	// release returns the block's own memory. Both counts are zero.
	release()
}

func retainStrong(cb controlBlock) {
	cb.header().strong++
}

// tryRetainStrong adds a strong reference only while the object is alive.
// Check and increment are one step; an atomic variant must keep it so.
func tryRetainStrong(cb controlBlock) bool {
	c := cb.header()
	if c.strong == 0 {
		return false
	}
	c.strong++
	return true
}

func releaseStrong(cb controlBlock) {
	c := cb.header()
	if c.strong == 0 {
		panic(errors.AssertionFailedf("shared: strong count underflow"))
	}
	c.strong--
	if c.strong > 0 {
		return
	}
	// the block must outlive destroy, which may drop weak references to it
	c.weak++
	cb.destroy()
	releaseWeak(cb)
}

func retainWeak(cb controlBlock) {
	cb.header().weak++
}

func releaseWeak(cb controlBlock) {
	c := cb.header()
	if c.weak == 0 {
		panic(errors.AssertionFailedf("shared: weak count underflow"))
	}
	c.weak--
	if c.weak == 0 && c.strong == 0 {
		cb.release()
	}
}

// detachedBlock manages an object allocated elsewhere. The deleter reclaims
// the object; alloc reclaims only the block record.
type detachedBlock[T any] struct {
	counts
	ptr     *T
	deleter Deleter[T]
	alloc   alloc.Allocator
}

func (b *detachedBlock[T]) destroy() {
	p := b.ptr
	b.ptr = nil
	dropSelfRef(p)
	b.deleter(p)
}

func (b *detachedBlock[T]) release() {
	b.alloc.Dealloc(unsafe.Pointer(b), alloc.TypeOf[detachedBlock[T]]())
}

// combinedBlock embeds the object. Its storage stays allocated until the
// last weak reference is gone.
type combinedBlock[T any] struct {
	counts
	alloc alloc.Allocator
	obj   T
}

func (b *combinedBlock[T]) destroy() {
	dropSelfRef(&b.obj)
	DefaultDelete(&b.obj)
}

func (b *combinedBlock[T]) release() {
	b.alloc.Dealloc(unsafe.Pointer(b), alloc.TypeOf[combinedBlock[T]]())
}
