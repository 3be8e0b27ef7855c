package shared_test

import "github.com/funny-falcon/sharedptr/shared"

type tracked struct {
	id        int
	destroyed *int
}

func (t *tracked) Destroy() {
	if t.destroyed != nil {
		*t.destroyed++
	}
}

type base struct {
	name string
}

type derived struct {
	base
	extra int
}

type session struct {
	shared.EnableSharedFromThis[session]
	id        int
	destroyed *int
}

func (s *session) Destroy() {
	if s.destroyed != nil {
		*s.destroyed++
	}
}
