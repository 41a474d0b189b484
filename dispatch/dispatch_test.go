package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsAllTasks(t *testing.T) {
	d := New(4)
	// One result slot per task; disjoint writes need no locking.
	results := make([]int, 100)
	for i := range results {
		i := i
		d.Queue(func() {
			results[i] = i + 1
		})
	}
	d.Sync()
	for i, v := range results {
		require.Equal(t, i+1, v)
	}
}

func TestDispatcherReuseAcrossFrames(t *testing.T) {
	d := New(2)
	var frame1, frame2 [8]bool
	for i := range frame1 {
		i := i
		d.Queue(func() { frame1[i] = true })
	}
	d.Sync()
	for i := range frame2 {
		i := i
		d.Queue(func() { frame2[i] = true })
	}
	d.Sync()
	for i := range frame1 {
		require.True(t, frame1[i])
		require.True(t, frame2[i])
	}
}
