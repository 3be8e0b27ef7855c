package alloc

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const SlabSize = 1 << 24
const ChunkSizeShift = 18
const ChunkSize = 1 << ChunkSizeShift
const ChunkMask = ChunkSize - 1

type Chunk [ChunkSize]byte

// ChunkGen carves mmap'ed slabs into ChunkSize-aligned chunks.
type ChunkGen struct {
	sync.Mutex
	CurSlab    []byte
	TotalAlloc int
}

func (g *ChunkGen) Gen() (*Chunk, error) {
	g.Lock()
	defer g.Unlock()
	if len(g.CurSlab) == 0 {
		// one extra chunk so the slab can start on a chunk boundary
		mem, err := unix.Mmap(-1, 0, SlabSize+ChunkSize, unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, errors.Wrap(err, "alloc: mmap slab")
		}
		skip := (ChunkSize - int(uintptr(unsafe.Pointer(&mem[0]))&ChunkMask)) & ChunkMask
		g.CurSlab = mem[skip : skip+SlabSize]
		g.TotalAlloc += SlabSize
	}
	res := (*Chunk)(unsafe.Pointer(&g.CurSlab[0]))
	g.CurSlab = g.CurSlab[ChunkSize:]
	return res, nil
}

var ChunkGenerator ChunkGen

func munmap(ch *Chunk) error {
	_, _, e := unix.Syscall(unix.SYS_MUNMAP, uintptr(unsafe.Pointer(ch)), ChunkSize, 0)
	if e != 0 {
		return errors.Wrap(e, "alloc: munmap chunk")
	}
	return nil
}
