package shared

// Weak observes an object owned by Shared handles without keeping it alive.
// The zero value is empty.
type Weak[T any] struct {
	_   noCopy
	ptr *T
	cb  controlBlock
}

// NewWeak returns an observer of s's object. An empty s gives an empty Weak.
func NewWeak[T any](s *Shared[T]) *Weak[T] {
	if s == nil || s.cb == nil {
		return &Weak[T]{}
	}
	retainWeak(s.cb)
	return &Weak[T]{ptr: s.ptr, cb: s.cb}
}

// Expired reports whether the object has been destroyed, or w is empty.
func (w *Weak[T]) Expired() bool {
	return w == nil || w.cb == nil || w.cb.header().strong == 0
}

// Lock returns a new owner of the object, or an empty handle if it has
// already been destroyed.
func (w *Weak[T]) Lock() *Shared[T] {
	if w == nil {
		return &Shared[T]{}
	}
	return lockBlock(w.ptr, w.cb)
}

// UseCount reports how many Shared handles own the object; 0 once it is
// destroyed or when w is empty.
func (w *Weak[T]) UseCount() int {
	if w == nil || w.cb == nil {
		return 0
	}
	return int(w.cb.header().strong)
}

// Clone returns another observer of the same object.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.cb == nil {
		return &Weak[T]{}
	}
	retainWeak(w.cb)
	return &Weak[T]{ptr: w.ptr, cb: w.cb}
}

// Move transfers w's observation to a new handle and leaves w empty.
func (w *Weak[T]) Move() *Weak[T] {
	n := &Weak[T]{}
	if w != nil {
		n.Swap(w)
	}
	return n
}

// Swap exchanges the contents of w and o without touching any count.
func (w *Weak[T]) Swap(o *Weak[T]) {
	w.ptr, o.ptr = o.ptr, w.ptr
	w.cb, o.cb = o.cb, w.cb
}

// Assign makes w observe o's object, dropping what w observed before.
func (w *Weak[T]) Assign(o *Weak[T]) {
	tmp := o.Clone()
	tmp.Swap(w)
	tmp.Release()
}

// MoveAssign moves o into w, dropping what w observed before. o is left
// empty.
func (w *Weak[T]) MoveAssign(o *Weak[T]) {
	tmp := o.Move()
	tmp.Swap(w)
	tmp.Release()
}

// Release drops the observation and empties w. The block is freed here if
// this was the last reference of any kind.
func (w *Weak[T]) Release() {
	if w == nil || w.cb == nil {
		return
	}
	cb := w.cb
	w.ptr, w.cb = nil, nil
	releaseWeak(cb)
}

// Reset empties w.
func (w *Weak[T]) Reset() {
	tmp := &Weak[T]{}
	tmp.Swap(w)
	tmp.Release()
}

// ConvertWeak is Convert for observers. The result shares w's block even
// when w has expired; conv only runs while the object is alive, so an
// expired source gives an observer with a nil pointer that is itself
// expired.
func ConvertWeak[T, U any](w *Weak[U], conv func(*U) *T) *Weak[T] {
	if w == nil || w.cb == nil {
		return &Weak[T]{}
	}
	retainWeak(w.cb)
	var p *T
	if w.ptr != nil && !w.Expired() {
		p = conv(w.ptr)
	}
	return &Weak[T]{ptr: p, cb: w.cb}
}
