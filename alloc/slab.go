package alloc

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/modern-go/reflect2"
)

// header is the per-record size prefix; it also keeps records 8-byte aligned.
const header = 8

// minPayload keeps every record, zero-sized ones included, inside its chunk.
const minPayload = 8

// Slab places pointer-free records in mmap'ed chunks. The first word of every
// chunk counts the bytes not held by live records; a chunk that is no longer
// current and whose count reaches ChunkSize goes to Free for reuse.
type Slab struct {
	sync.Mutex
	Gen        *ChunkGen
	Cur        chunk
	Free       []chunk
	Chunks     int
	TotalFree  int
	TotalAlloc int
	Allocs     int
	Deallocs   int
	Log        string
}

type chunk struct {
	chunk uintptr
	off   uintptr
	free  *int
}

func (s *Slab) Alloc(typ reflect2.Type) (unsafe.Pointer, error) {
	if hasPointers(typ.Type1()) {
		return nil, errors.Wrapf(ErrPointerType, "slab: %s", typ.String())
	}
	s.Lock()
	defer s.Unlock()
	return s.alloc(sizeOf(typ))
}

func (s *Slab) alloc(ln int) (unsafe.Pointer, error) {
	if ln < minPayload {
		ln = minPayload
	}
	n := header + (ln+7)&^7
	if n > ChunkSize-header {
		return nil, errors.Wrapf(ErrTooLarge, "slab: %d bytes", ln)
	}
	if s.Cur.free == nil || int(s.Cur.off)+n > ChunkSize {
		if err := s.nextChunk(); err != nil {
			return nil, err
		}
	}
	*(*uint64)(unsafe.Pointer(s.Cur.chunk + s.Cur.off)) = uint64(n)
	res := unsafe.Pointer(s.Cur.chunk + s.Cur.off + header)
	clear(unsafe.Slice((*byte)(res), n-header))
	s.Cur.off += uintptr(n)
	*s.Cur.free -= n
	s.TotalAlloc += n
	s.TotalFree -= n
	s.Allocs++
	if s.Log != "" {
		fmt.Printf("%p alloc %d %s\n", res, n, s.Log)
	}
	return res, nil
}

func (s *Slab) nextChunk() error {
	if s.Cur.free != nil {
		// retired: the chunk header counts as free from now on
		*s.Cur.free += header
		if *s.Cur.free == ChunkSize {
			s.Free = append(s.Free, s.Cur)
		}
		s.Cur = chunk{}
	}
	if len(s.Free) > 0 {
		s.Cur = s.Free[len(s.Free)-1]
		s.Free = s.Free[:len(s.Free)-1]
		s.Cur.off = header
		*s.Cur.free = ChunkSize - header
		return nil
	}
	gen := s.Gen
	if gen == nil {
		gen = &ChunkGenerator
	}
	ch, err := gen.Gen()
	if err != nil {
		return err
	}
	s.Cur.chunk = uintptr(unsafe.Pointer(ch))
	s.Cur.off = header
	s.Cur.free = (*int)(unsafe.Pointer(ch))
	*s.Cur.free = ChunkSize - header
	s.Chunks++
	s.TotalFree += ChunkSize - header
	if s.Log != "" {
		fmt.Printf("%p chunk %s\n", ch, s.Log)
	}
	return nil
}

func (s *Slab) Dealloc(ptr unsafe.Pointer, typ reflect2.Type) {
	s.Lock()
	defer s.Unlock()
	s.dealloc(ptr)
}

func (s *Slab) dealloc(ptr unsafe.Pointer) {
	up := uintptr(ptr)
	sz := int(*(*uint64)(unsafe.Pointer(up - header)))
	s.TotalFree += sz
	s.TotalAlloc -= sz
	s.Deallocs++
	chunkp := (up - header) &^ ChunkMask
	freep := (*int)(unsafe.Pointer(chunkp))
	*freep += sz
	if s.Log != "" {
		fmt.Printf("%p dealloc %s\n", ptr, s.Log)
	}
	if *freep == ChunkSize {
		s.Free = append(s.Free, chunk{
			chunk: chunkp,
			off:   header,
			free:  freep,
		})
	}
}

// ChunkSpace reports the free bytes of the chunk holding ptr.
func (s *Slab) ChunkSpace(ptr unsafe.Pointer) int {
	s.Lock()
	defer s.Unlock()
	return *(*int)(unsafe.Pointer((uintptr(ptr) - header) &^ ChunkMask))
}

// FreeFree returns fully free chunks to the OS.
func (s *Slab) FreeFree() error {
	s.Lock()
	defer s.Unlock()
	for i, free := range s.Free {
		if err := munmap((*Chunk)(unsafe.Pointer(free.chunk))); err != nil {
			s.Free = s.Free[i:]
			return err
		}
		s.TotalFree -= ChunkSize - header
		s.Chunks--
	}
	s.Free = nil
	return nil
}

func (s *Slab) Snapshot() Stats {
	s.Lock()
	defer s.Unlock()
	return Stats{
		Allocs:      s.Allocs,
		Deallocs:    s.Deallocs,
		LiveRecords: s.Allocs - s.Deallocs,
		LiveBytes:   s.TotalAlloc,
		MappedBytes: s.Chunks * ChunkSize,
		FreeBytes:   s.TotalFree,
	}
}
