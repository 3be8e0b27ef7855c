package alloc

import (
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

// Pool recycles records per type. Records are cleared on Dealloc, so Alloc
// always hands out zeroed storage.
type Pool struct {
	mu    sync.Mutex
	pools map[uintptr]*sync.Pool
}

func (p *Pool) pool(typ reflect2.Type) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pools == nil {
		p.pools = make(map[uintptr]*sync.Pool)
	}
	sp := p.pools[typ.RType()]
	if sp == nil {
		sp = &sync.Pool{
			New: func() any { return typ.UnsafeNew() },
		}
		p.pools[typ.RType()] = sp
	}
	return sp
}

func (p *Pool) Alloc(typ reflect2.Type) (unsafe.Pointer, error) {
	return p.pool(typ).Get().(unsafe.Pointer), nil
}

func (p *Pool) Dealloc(ptr unsafe.Pointer, typ reflect2.Type) {
	zero(ptr, typ)
	p.pool(typ).Put(ptr)
}
