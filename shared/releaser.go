package shared

// Releaser is implemented by *Shared and *Weak.
type Releaser interface {
	Release()
}

// ReleaseHolder collects handles that are dropped together, last added
// first. Methods on a nil holder do nothing.
type ReleaseHolder struct {
	R []Releaser
}

func (r *ReleaseHolder) Add(rr Releaser) {
	if r == nil {
		return
	}
	r.R = append(r.R, rr)
}

func (r *ReleaseHolder) Release() {
	if r == nil {
		return
	}
	for i := len(r.R) - 1; i >= 0; i-- {
		r.R[i].Release()
	}
	r.R = nil
}
