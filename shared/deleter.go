package shared

import "github.com/funny-falcon/sharedptr/alloc"

// Deleter reclaims an object wrapped by New. It is called once, with the
// pointer originally passed in, which may be nil.
type Deleter[T any] func(*T)

// Destroyer is implemented by objects that need to run code when their last
// owner lets go.
type Destroyer interface {
	Destroy()
}

// DefaultDelete runs Destroy if *T has it and clears the object.
func DefaultDelete[T any](p *T) {
	if p == nil {
		return
	}
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*p = zero
}

// AllocatorDelete returns a Deleter for objects obtained from alloc.New(a).
func AllocatorDelete[T any](a alloc.Allocator) Deleter[T] {
	return func(p *T) {
		if p == nil {
			return
		}
		if d, ok := any(p).(Destroyer); ok {
			d.Destroy()
		}
		alloc.Free(a, p)
	}
}
