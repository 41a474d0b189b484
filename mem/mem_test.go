package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketSliceGrowth(t *testing.T) {
	var l BucketSlice[int]
	const n = bucketSize*3 + 17
	for i := 0; i < n; i++ {
		l.Append(i)
	}
	require.Equal(t, n, l.Len())
	for i := 0; i < n; i++ {
		require.Equal(t, i, l.Get(i))
	}
}

func TestBucketSliceStablePointers(t *testing.T) {
	var l BucketSlice[int]
	ptrs := make([]*int, 0, bucketSize*4)
	for i := 0; i < bucketSize*4; i++ {
		ptrs = append(ptrs, l.Append(i))
	}
	// Growing more buckets must not have moved earlier elements.
	for i, ptr := range ptrs {
		require.Same(t, l.Ptr(i), ptr)
		require.Equal(t, i, *ptr)
	}
}

func TestBucketSliceReset(t *testing.T) {
	var l BucketSlice[int]
	for i := 0; i < bucketSize+1; i++ {
		l.Append(i)
	}
	l.Reset()
	require.Equal(t, 0, l.Len())
	l.Append(42)
	require.Equal(t, 1, l.Len())
	require.Equal(t, 42, l.Get(0))
}
