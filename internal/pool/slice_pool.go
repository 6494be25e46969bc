package pool

import "sync"

var intSlicePool = sync.Pool{
	New: func() any { return &[]int{} },
}

// GetIntSlice retrieves an int slice of length zero and capacity of at least size.
//
// The caller must call the returned cleanup function to return the slice to the pool.
//
//	deltas, cleanup := pool.GetIntSlice(4 * len(descs))
//	defer cleanup()
func GetIntSlice(size int) ([]int, func()) {
	ptr, _ := intSlicePool.Get().(*[]int)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int, 0, size)
	}
	*ptr = slice

	return slice, func() {
		*ptr = (*ptr)[:0]
		intSlicePool.Put(ptr)
	}
}
