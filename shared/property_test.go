package shared_test

import (
	"testing"
	"testing/quick"

	"github.com/funny-falcon/sharedptr/alloc"
	"github.com/funny-falcon/sharedptr/shared"
)

// TestPropertyCountsFollowHandles drives an arbitrary sequence of clone,
// release, observe and lock operations against one object and checks after
// every step that the counts match the live handles, the object is destroyed
// exactly when the last owner goes, and the block is freed exactly when the
// last handle of either kind goes.
func TestPropertyCountsFollowHandles(t *testing.T) {
	property := func(ops []byte, combined bool) bool {
		c := &alloc.Counting{}
		destroyed := 0
		var root *shared.Shared[tracked]
		var err error
		if combined {
			root, err = shared.AllocateShared(c, func(o *tracked) error {
				o.destroyed = &destroyed
				return nil
			})
		} else {
			root, err = shared.NewWithAllocator(&tracked{destroyed: &destroyed}, nil, c)
		}
		if err != nil {
			return false
		}
		strong := []*shared.Shared[tracked]{root}
		var weak []*shared.Weak[tracked]
		alive := true

		for _, op := range ops {
			pick := int(op >> 3)
			switch op % 5 {
			case 0:
				if len(strong) > 0 {
					strong = append(strong, strong[pick%len(strong)].Clone())
				}
			case 1:
				if len(strong) > 0 {
					k := pick % len(strong)
					strong[k].Release()
					strong = append(strong[:k], strong[k+1:]...)
				}
			case 2:
				if len(strong) > 0 {
					weak = append(weak, strong[pick%len(strong)].Weak())
				}
			case 3:
				if len(weak) > 0 {
					k := pick % len(weak)
					weak[k].Release()
					weak = append(weak[:k], weak[k+1:]...)
				}
			case 4:
				if len(weak) > 0 {
					l := weak[pick%len(weak)].Lock()
					if (l.Get() != nil) != alive {
						return false
					}
					if alive {
						strong = append(strong, l)
					}
				}
			}
			if len(strong) == 0 {
				alive = false
			}

			if alive != (destroyed == 0) || destroyed > 1 {
				return false
			}
			for _, s := range strong {
				if s.UseCount() != len(strong) {
					return false
				}
			}
			for _, w := range weak {
				if w.UseCount() != len(strong) || w.Expired() == alive {
					return false
				}
			}
			if (len(strong) == 0 && len(weak) == 0) != (c.Live() == 0) {
				return false
			}
		}

		for _, s := range strong {
			s.Release()
		}
		for _, w := range weak {
			w.Release()
		}
		return destroyed == 1 && c.Live() == 0 && c.Deallocs == 1
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
