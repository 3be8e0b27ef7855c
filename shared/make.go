package shared

import "github.com/funny-falcon/sharedptr/alloc"

// New takes ownership of p, reclaimed with DefaultDelete.
func New[T any](p *T) (*Shared[T], error) {
	return NewWithAllocator(p, DefaultDelete[T], alloc.Default)
}

func NewWithDeleter[T any](p *T, d Deleter[T]) (*Shared[T], error) {
	return NewWithAllocator(p, d, alloc.Default)
}

// NewWithAllocator takes ownership of p. The control block is allocated
// from a; the object is reclaimed by d. If the block cannot be allocated,
// d(p) runs and a's error is returned as is.
func NewWithAllocator[T any](p *T, d Deleter[T], a alloc.Allocator) (*Shared[T], error) {
	if d == nil {
		d = DefaultDelete[T]
	}
	if a == nil {
		a = alloc.Default
	}
	b, err := alloc.New[detachedBlock[T]](a)
	if err != nil {
		d(p)
		return nil, err
	}
	b.strong = 1
	b.ptr = p
	b.deleter = d
	b.alloc = a
	s := &Shared[T]{ptr: p, cb: b}
	enableSharedFromThis(s)
	return s, nil
}

// AllocateShared builds a T and its control block in one record from a.
// init constructs the object in place; a nil init leaves it zero. When init
// fails, the partly built object goes through DefaultDelete, so a Destroy
// method can drop whatever init already acquired, and the record is freed.
// Allocation and init errors are returned as is.
func AllocateShared[T any](a alloc.Allocator, init func(*T) error) (*Shared[T], error) {
	if a == nil {
		a = alloc.Default
	}
	b, err := alloc.New[combinedBlock[T]](a)
	if err != nil {
		return nil, err
	}
	if init != nil {
		if err := init(&b.obj); err != nil {
			DefaultDelete(&b.obj)
			alloc.Free(a, b)
			return nil, err
		}
	}
	b.strong = 1
	b.alloc = a
	s := &Shared[T]{ptr: &b.obj, cb: b}
	enableSharedFromThis(s)
	return s, nil
}

func MakeShared[T any](init func(*T) error) (*Shared[T], error) {
	return AllocateShared(alloc.Default, init)
}
