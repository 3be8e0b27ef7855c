// Package alloc holds the memory strategies used to place control blocks
// and managed objects.
//
// An Allocator hands out storage for exactly one record of a given type.
// Callers pass the type of the record they actually need, so one allocator
// value serves blocks, combined block+object records and plain objects alike.
package alloc

import (
	"reflect"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/modern-go/reflect2"
)

var (
	ErrPointerType = errors.New("alloc: record type contains pointers")
	ErrTooLarge    = errors.New("alloc: record does not fit a chunk")
	ErrExhausted   = errors.New("alloc: allocator exhausted")
)

type Allocator interface {
	Alloc(typ reflect2.Type) (unsafe.Pointer, error)
	Dealloc(ptr unsafe.Pointer, typ reflect2.Type)
}

// Default is used whenever no allocator is supplied.
var Default Allocator = Heap{}

func TypeOf[T any]() reflect2.Type {
	return reflect2.Type2(reflect.TypeOf((*T)(nil)).Elem())
}

// New allocates a zeroed T from a.
func New[T any](a Allocator) (*T, error) {
	p, err := a.Alloc(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// Free returns p, previously obtained from New with the same a.
func Free[T any](a Allocator, p *T) {
	if p == nil {
		return
	}
	a.Dealloc(unsafe.Pointer(p), TypeOf[T]())
}

// Heap allocates GC-managed records. Dealloc only clears the record so it
// stops pinning whatever it referenced; the collector reclaims the memory.
type Heap struct{}

func (Heap) Alloc(typ reflect2.Type) (unsafe.Pointer, error) {
	return typ.UnsafeNew(), nil
}

func (Heap) Dealloc(ptr unsafe.Pointer, typ reflect2.Type) {
	zero(ptr, typ)
}

func zero(ptr unsafe.Pointer, typ reflect2.Type) {
	reflect.NewAt(typ.Type1(), ptr).Elem().SetZero()
}

func sizeOf(typ reflect2.Type) int {
	return int(typ.Type1().Size())
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	}
	return true
}
