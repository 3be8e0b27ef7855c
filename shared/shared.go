package shared

// noCopy makes go vet's copylocks check reject handles copied by value;
// such a copy would share the block without counting.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Shared is an owning handle. The zero value is empty.
//
// A handle stays valid until Release, Reset, MoveAssign or Move empties it.
// Get on an empty handle returns nil.
type Shared[T any] struct {
	_   noCopy
	ptr *T
	cb  controlBlock
}

// Get returns the managed object. It is valid only while UseCount() > 0.
func (s *Shared[T]) Get() *T {
	if s == nil {
		return nil
	}
	return s.ptr
}

// UseCount returns the number of Shared handles on the object, 0 if s is empty.
func (s *Shared[T]) UseCount() int {
	if s == nil || s.cb == nil {
		return 0
	}
	return int(s.cb.header().strong)
}

// Clone returns a new owner of the same object.
func (s *Shared[T]) Clone() *Shared[T] {
	if s == nil || s.cb == nil {
		return &Shared[T]{}
	}
	retainStrong(s.cb)
	return &Shared[T]{ptr: s.ptr, cb: s.cb}
}

// Move transfers ownership to a new handle and leaves s empty.
func (s *Shared[T]) Move() *Shared[T] {
	n := &Shared[T]{}
	if s != nil {
		n.Swap(s)
	}
	return n
}

// Swap exchanges the contents of s and o without touching any count.
func (s *Shared[T]) Swap(o *Shared[T]) {
	s.ptr, o.ptr = o.ptr, s.ptr
	s.cb, o.cb = o.cb, s.cb
}

// Assign makes s another owner of o's object, releasing what s held.
func (s *Shared[T]) Assign(o *Shared[T]) {
	tmp := o.Clone()
	tmp.Swap(s)
	tmp.Release()
}

// MoveAssign moves o's ownership into s, releasing what s held. o is left
// empty unless it is s.
func (s *Shared[T]) MoveAssign(o *Shared[T]) {
	tmp := o.Move()
	tmp.Swap(s)
	tmp.Release()
}

// Release drops this handle's ownership and empties it. Releasing an empty
// handle does nothing.
func (s *Shared[T]) Release() {
	if s == nil || s.cb == nil {
		return
	}
	cb := s.cb
	s.ptr, s.cb = nil, nil
	releaseStrong(cb)
}

// Reset empties s, destroying the object if s was its last owner.
func (s *Shared[T]) Reset() {
	tmp := &Shared[T]{}
	tmp.Swap(s)
	tmp.Release()
}

// ResetTo replaces the managed object with p under a new block. On error s
// is unchanged and p has been passed to DefaultDelete.
func (s *Shared[T]) ResetTo(p *T) error {
	tmp, err := New(p)
	if err != nil {
		return err
	}
	tmp.Swap(s)
	tmp.Release()
	return nil
}

// Weak returns an observer of s's object.
func (s *Shared[T]) Weak() *Weak[T] {
	return NewWeak(s)
}

// Convert returns an owner of s's object viewed as a T, sharing s's block.
// conv maps the object to the related value, e.g. an embedded base struct;
// it is not called for an empty or nil-owning s.
func Convert[T, U any](s *Shared[U], conv func(*U) *T) *Shared[T] {
	if s == nil || s.cb == nil {
		return &Shared[T]{}
	}
	retainStrong(s.cb)
	var p *T
	if s.ptr != nil {
		p = conv(s.ptr)
	}
	return &Shared[T]{ptr: p, cb: s.cb}
}

// lockBlock takes a new strong reference if the block's object is alive.
func lockBlock[T any](ptr *T, cb controlBlock) *Shared[T] {
	if cb == nil || !tryRetainStrong(cb) {
		return &Shared[T]{}
	}
	return &Shared[T]{ptr: ptr, cb: cb}
}
