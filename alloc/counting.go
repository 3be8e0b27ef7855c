package alloc

import (
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/modern-go/reflect2"
)

// Counting wraps an Allocator and keeps call and byte counters per record
// type. Limit, when positive, caps the number of live records.
type Counting struct {
	Allocator Allocator
	Limit     int
	Log       string

	sync.Mutex
	Allocs    int
	Deallocs  int
	LiveBytes int
	types     map[string]*TypeStats
}

func (c *Counting) base() Allocator {
	if c.Allocator == nil {
		return Default
	}
	return c.Allocator
}

func (c *Counting) typeStats(typ reflect2.Type) *TypeStats {
	if c.types == nil {
		c.types = make(map[string]*TypeStats)
	}
	name := typ.String()
	ts := c.types[name]
	if ts == nil {
		ts = &TypeStats{Name: name}
		c.types[name] = ts
	}
	return ts
}

func (c *Counting) Alloc(typ reflect2.Type) (unsafe.Pointer, error) {
	c.Lock()
	defer c.Unlock()
	if c.Limit > 0 && c.Allocs-c.Deallocs >= c.Limit {
		return nil, errors.Wrapf(ErrExhausted, "counting: %d live records", c.Limit)
	}
	ptr, err := c.base().Alloc(typ)
	if err != nil {
		return nil, err
	}
	c.Allocs++
	c.LiveBytes += sizeOf(typ)
	ts := c.typeStats(typ)
	ts.Allocs++
	ts.LiveRecords++
	if c.Log != "" {
		fmt.Printf("%p alloc %s %s\n", ptr, typ.String(), c.Log)
	}
	return ptr, nil
}

func (c *Counting) Dealloc(ptr unsafe.Pointer, typ reflect2.Type) {
	c.Lock()
	defer c.Unlock()
	if c.Log != "" {
		fmt.Printf("%p dealloc %s %s\n", ptr, typ.String(), c.Log)
	}
	c.base().Dealloc(ptr, typ)
	c.Deallocs++
	c.LiveBytes -= sizeOf(typ)
	ts := c.typeStats(typ)
	ts.Deallocs++
	ts.LiveRecords--
}

// Live is the number of records allocated and not yet returned.
func (c *Counting) Live() int {
	c.Lock()
	defer c.Unlock()
	return c.Allocs - c.Deallocs
}

func (c *Counting) Snapshot() Stats {
	c.Lock()
	defer c.Unlock()
	st := Stats{
		Allocs:      c.Allocs,
		Deallocs:    c.Deallocs,
		LiveRecords: c.Allocs - c.Deallocs,
		LiveBytes:   c.LiveBytes,
	}
	for _, ts := range c.types {
		st.Types = append(st.Types, *ts)
	}
	sort.Slice(st.Types, func(i, j int) bool {
		return st.Types[i].Name < st.Types[j].Name
	})
	return st
}
