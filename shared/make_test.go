package shared_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/sharedptr/alloc"
	"github.com/funny-falcon/sharedptr/shared"
)

func TestMakeShared_fresh(t *testing.T) {
	s, err := shared.MakeShared(func(o *tracked) error {
		o.id = 11
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.UseCount())
	assert.Equal(t, 11, s.Get().id)
	s.Release()

	z, err := shared.MakeShared[derived](nil)
	require.NoError(t, err)
	assert.Equal(t, derived{}, *z.Get())
	z.Release()
}

func TestAllocateShared_singleAllocation(t *testing.T) {
	c := &alloc.Counting{}
	s, err := shared.AllocateShared(c, func(o *tracked) error {
		o.id = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Allocs)
	assert.Equal(t, 1, s.UseCount())
	s.Release()
	assert.Equal(t, 1, c.Deallocs)
	assert.Equal(t, 0, c.LiveBytes)
}

func TestNewWithAllocator_twoAllocations(t *testing.T) {
	c := &alloc.Counting{}
	obj, err := alloc.New[tracked](c)
	require.NoError(t, err)
	obj.id = 1
	s, err := shared.NewWithAllocator(obj, shared.AllocatorDelete[tracked](c), c)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Allocs)

	w := s.Weak()
	s.Release()
	// object reclaimed by its deleter, block kept for the observer
	assert.Equal(t, 1, c.Deallocs)
	assert.Equal(t, 1, c.Live())
	w.Release()
	assert.Equal(t, 2, c.Deallocs)
	assert.Equal(t, 0, c.LiveBytes)
}

func TestAllocateShared_storageOutlivesObject(t *testing.T) {
	c := &alloc.Counting{}
	s, err := shared.AllocateShared[[64]int64](c, nil)
	require.NoError(t, err)
	size := c.LiveBytes
	assert.Greater(t, size, 64*8)

	w := s.Weak()
	s.Release()
	assert.Equal(t, size, c.LiveBytes)
	w.Release()
	assert.Equal(t, 0, c.LiveBytes)
}

func TestAllocateShared_pool(t *testing.T) {
	p := &alloc.Pool{}
	for i := 0; i < 10; i++ {
		destroyed := 0
		s, err := shared.AllocateShared(p, func(o *tracked) error {
			assert.Equal(t, 0, o.id)
			o.id = i + 1
			o.destroyed = &destroyed
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, s.Get().id)
		s.Release()
		assert.Equal(t, 1, destroyed)
	}
}

func TestAllocateShared_initError(t *testing.T) {
	c := &alloc.Counting{}
	errInit := errors.New("init failed")
	s, err := shared.AllocateShared(c, func(o *tracked) error {
		o.id = 1
		return errInit
	})
	assert.Nil(t, s)
	assert.Equal(t, errInit, err)
	assert.Equal(t, 0, c.Live())
}

type holder struct {
	child *shared.Shared[tracked]
}

func (h *holder) Destroy() {
	h.child.Release()
}

func TestAllocateShared_initErrorReleasesMembers(t *testing.T) {
	destroyed := 0
	c := &alloc.Counting{}
	child, err := shared.AllocateShared(c, func(o *tracked) error {
		o.destroyed = &destroyed
		return nil
	})
	require.NoError(t, err)

	errInit := errors.New("init failed")
	h, err := shared.AllocateShared(c, func(h *holder) error {
		h.child = child.Clone()
		return errInit
	})
	assert.Nil(t, h)
	assert.Equal(t, errInit, err)
	assert.Equal(t, 1, child.UseCount())
	assert.Equal(t, 1, c.Live())

	child.Release()
	assert.Equal(t, 1, destroyed)
	assert.Equal(t, 0, c.Live())
}

func TestAllocateShared_allocError(t *testing.T) {
	s, err := shared.AllocateShared[tracked](&alloc.Slab{}, nil)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, alloc.ErrPointerType))

	c := &alloc.Counting{Limit: 1}
	first, err := shared.AllocateShared[tracked](c, nil)
	require.NoError(t, err)
	second, err := shared.AllocateShared[tracked](c, nil)
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, alloc.ErrExhausted))
	first.Release()
	assert.Equal(t, 0, c.Live())
}

func TestNewWithAllocator_allocError(t *testing.T) {
	var deleted *tracked
	obj := &tracked{id: 3}
	c := &alloc.Counting{Limit: 1}
	hold, err := alloc.New[int64](c)
	require.NoError(t, err)

	s, err := shared.NewWithAllocator(obj, func(p *tracked) { deleted = p }, c)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, alloc.ErrExhausted))
	assert.Same(t, obj, deleted)

	alloc.Free(c, hold)
	assert.Equal(t, 0, c.Live())
}
