package shared

// EnableSharedFromThis lets an object mint owners of itself. Embed it by
// value in T:
//
//	type Session struct {
//		shared.EnableSharedFromThis[Session]
//		...
//	}
//
// The embedded observer is set the first time a Shared handle takes
// ownership of the object through New or MakeShared.
type EnableSharedFromThis[T any] struct {
	weak Weak[T]
}

type selfRef[T any] interface {
	weakThis() *Weak[T]
}

func (e *EnableSharedFromThis[T]) weakThis() *Weak[T] {
	return &e.weak
}

// SharedFromThis returns a new owner of the object. Before the object was
// ever owned, or once it is destroyed, the handle is empty.
func (e *EnableSharedFromThis[T]) SharedFromThis() *Shared[T] {
	return e.weak.Lock()
}

// WeakFromThis returns a new observer of the object, empty before the object
// was ever owned.
func (e *EnableSharedFromThis[T]) WeakFromThis() *Weak[T] {
	return e.weak.Clone()
}

func enableSharedFromThis[T any](s *Shared[T]) {
	if s.ptr == nil {
		return
	}
	r, ok := any(s.ptr).(selfRef[T])
	if !ok {
		return
	}
	if w := r.weakThis(); w.Expired() {
		w.MoveAssign(NewWeak(s))
	}
}

// dropSelfRef releases the embedded observer so a destroyed object does not
// hold its own block.
func dropSelfRef[T any](p *T) {
	if p == nil {
		return
	}
	if r, ok := any(p).(selfRef[T]); ok {
		r.weakThis().Release()
	}
}
