package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/M4T1A5/tracy/dispatch"
	"github.com/M4T1A5/tracy/trace"
)

func TestIsEmpty(t *testing.T) {
	tr := &trace.Trace{LastTime: 100}

	empty := &trace.Thread{ID: 1, Name: "idle"}
	tr.Threads = append(tr.Threads, empty)
	require.True(t, NewThreadItem(tr, empty).IsEmpty())

	withZones := &trace.Thread{ID: 2, Timeline: []trace.ZoneEvent{zone(0, 10)}}
	require.False(t, NewThreadItem(tr, withZones).IsEmpty())

	withMessages := &trace.Thread{ID: 3, Messages: []trace.MessageEvent{{Time: 5, Text: "hello"}}}
	require.False(t, NewThreadItem(tr, withMessages).IsEmpty())

	withGhosts := &trace.Thread{ID: 4, GhostZones: []trace.GhostZone{{Start: 0, End: 10, Child: -1}}}
	require.False(t, NewThreadItem(tr, withGhosts).IsEmpty())

	// The crash thread is always presentable, even with no events.
	tr.Crash = &trace.CrashEvent{Thread: 1, Time: 90}
	require.False(t, NewThreadItem(tr, empty).IsEmpty())
}

func TestProfilerThreadsStartCollapsed(t *testing.T) {
	tr := &trace.Trace{}
	require.False(t, NewThreadItem(tr, &trace.Thread{Name: "Tracy Profiler"}).ShowFull())
	require.True(t, NewThreadItem(tr, &trace.Thread{Name: "worker"}).ShowFull())
}

func TestHeaderColors(t *testing.T) {
	tr := &trace.Trace{Crash: &trace.CrashEvent{Thread: 1}}

	crashed := NewThreadItem(tr, &trace.Thread{ID: 1})
	require.EqualValues(t, 0xFF2222FF, crashed.HeaderColor())
	require.EqualValues(t, 0xFF111188, crashed.HeaderColorInactive())

	fiber := NewThreadItem(tr, &trace.Thread{ID: 2, IsFiber: true})
	require.EqualValues(t, 0xFF88FF88, fiber.HeaderColor())

	plain := NewThreadItem(tr, &trace.Thread{ID: 3})
	require.EqualValues(t, 0xFFFFFFFF, plain.HeaderColor())
	require.EqualValues(t, 0xFF888888, plain.HeaderColorInactive())
}

func rangeFixture() (*trace.Trace, *trace.Thread) {
	thread := &trace.Thread{
		ID:       1,
		Name:     "worker",
		Timeline: []trace.ZoneEvent{zone(20, 80), zone(90, trace.NoTimestamp)},
		Messages: []trace.MessageEvent{{Time: 15, Text: "start"}, {Time: 85, Text: "stop"}},
	}
	tr := &trace.Trace{
		Threads:   []*trace.Thread{thread},
		FirstTime: 0,
		LastTime:  100,
		Locks: map[uint32]*trace.LockMap{
			1: {
				ID:    1,
				Valid: true,
				Threads: map[trace.ThreadID]uint8{
					1: 0,
					2: 1,
				},
				Timeline: []trace.LockEvent{
					{Time: 5, Thread: 1},
					{Time: 10, Thread: 0},
					{Time: 92, Thread: 0},
					{Time: 95, Thread: 1},
				},
			},
			2: {ID: 2, Valid: false, Threads: map[trace.ThreadID]uint8{1: 0}},
		},
	}
	tr.SetContextSwitchData(1, &trace.ContextSwitch{
		Regions: []trace.ContextSwitchRegion{
			{Start: 18, End: 60, State: trace.ThreadRunning},
			{Start: 60, End: 70, State: trace.ThreadWaiting},
			{Start: 70, End: 96, State: trace.ThreadRunning},
		},
		RunningTime: 68,
	})
	return tr, thread
}

func TestRangeBeginEnd(t *testing.T) {
	tr, thread := rangeFixture()
	item := NewThreadItem(tr, thread)

	// Earliest: the lock event at 10 (the event at 5 belongs to another thread; the invalid lock is
	// skipped entirely).
	require.Equal(t, trace.Timestamp(10), item.RangeBegin())
	// Latest: the unresolved zone resolves to the trace end.
	require.Equal(t, trace.Timestamp(100), item.RangeEnd())
}

func TestRangeOfEmptyThread(t *testing.T) {
	tr := &trace.Trace{LastTime: 100}
	thread := &trace.Thread{ID: 9}
	tr.Threads = []*trace.Thread{thread}
	item := NewThreadItem(tr, thread)

	require.Equal(t, trace.Timestamp(-1), item.RangeEnd())
}

func TestSummary(t *testing.T) {
	tr, thread := rangeFixture()
	thread.ZoneCount = 7
	thread.Samples = []trace.SampleData{
		{Time: 30, Stack: 1},
		{Time: 40, Stack: 2, Kernel: true},
		{Time: 50, Stack: 3},
		{Time: 60, Stack: 4},
	}
	thread.KernelSampleCount = 1
	item := NewThreadItem(tr, thread)

	s := item.Summary()
	require.Equal(t, trace.Timestamp(10), s.First)
	require.Equal(t, trace.Timestamp(100), s.Last)
	require.Equal(t, trace.Timestamp(90), s.Lifetime)
	require.InDelta(t, 0.9, s.LifetimeFraction, 1e-9)
	require.Equal(t, 7, s.ZoneCount)
	require.Equal(t, 2, s.TopLevelZones)
	require.Equal(t, 2, s.Messages)
	require.Equal(t, 1, s.Locks)
	require.True(t, s.HasContextSwitches)
	require.Equal(t, 3, s.RunningRegions)
	require.Equal(t, trace.Timestamp(68), s.RunningTime)
	require.InDelta(t, 68.0/90.0, s.RunningFraction, 1e-9)
	require.Equal(t, 4, s.Samples)
	require.Equal(t, 1, s.KernelSamples)
	require.InDelta(t, 0.25, s.KernelFraction, 1e-9)

	out := s.String()
	require.Contains(t, out, "Zone count: 7")
	require.Contains(t, out, "Kernel samples: 1 (25%)")
	require.Contains(t, out, "Time in running state:")
}

func TestPreprocessOrchestration(t *testing.T) {
	tr, thread := rangeFixture()
	thread.Samples = []trace.SampleData{{Time: 30, Stack: 1}}
	item := NewThreadItem(tr, thread)

	ctx := testContext(0, 100, 0.05)
	vd := &ViewData{DrawContextSwitches: true, DrawSamples: true}

	td := dispatch.New(4)
	item.Preprocess(ctx, vd, td)
	td.Sync()

	require.Equal(t, 1, item.Depth())
	require.NotZero(t, item.ZoneDraws().Len())
	require.NotZero(t, item.CtxDraws().Len())
	require.NotZero(t, item.SampleDraws().Len())

	item.DrawFinished()
	require.Zero(t, item.ZoneDraws().Len())
	require.Zero(t, item.CtxDraws().Len())
	require.Zero(t, item.SampleDraws().Len())

	// Toggles off: only the zone pass runs.
	item.Preprocess(ctx, &ViewData{}, td)
	td.Sync()
	require.NotZero(t, item.ZoneDraws().Len())
	require.Zero(t, item.CtxDraws().Len())
	require.Zero(t, item.SampleDraws().Len())
	item.DrawFinished()
}

func TestPreprocessPanicsOnDirtyBuffers(t *testing.T) {
	tr, thread := rangeFixture()
	item := NewThreadItem(tr, thread)

	ctx := testContext(0, 100, 0.05)
	td := dispatch.New(1)
	item.Preprocess(ctx, &ViewData{}, td)
	td.Sync()

	require.Panics(t, func() {
		item.Preprocess(ctx, &ViewData{}, td)
	})
}

func TestGhostModeSelection(t *testing.T) {
	ghosts := []trace.GhostZone{{Start: 0, End: 50, Frame: 1, Child: -1}}
	tr := &trace.Trace{LastTime: 100, GhostZonesReady: true}
	thread := &trace.Thread{ID: 1, GhostZones: ghosts}
	tr.Threads = []*trace.Thread{thread}
	item := NewThreadItem(tr, thread)

	ctx := testContext(0, 100, 0.05)
	td := dispatch.New(1)

	// No exact zones and ghost display requested: the ghost folder runs.
	item.Preprocess(ctx, &ViewData{GhostZones: true}, td)
	td.Sync()
	require.Equal(t, 1, item.ZoneDraws().Len())
	require.Equal(t, ZoneDrawGhost, item.ZoneDraws().Get(0).Kind)
	item.DrawFinished()

	// Ghosts not requested and no explicit toggle: nothing to draw for this thread.
	item.Preprocess(ctx, &ViewData{}, td)
	td.Sync()
	require.Zero(t, item.ZoneDraws().Len())
	item.DrawFinished()

	// The explicit per-thread toggle wins over the view default.
	item.SetGhost(true)
	item.Preprocess(ctx, &ViewData{}, td)
	td.Sync()
	require.Equal(t, 1, item.ZoneDraws().Len())
	require.Equal(t, ZoneDrawGhost, item.ZoneDraws().Get(0).Kind)
	item.DrawFinished()

	// Without reconstructed ghost data the exact folder is used regardless.
	tr.GhostZonesReady = false
	item.Preprocess(ctx, &ViewData{GhostZones: true}, td)
	td.Sync()
	require.Zero(t, item.ZoneDraws().Len())
	item.DrawFinished()
}

func TestGhostPreferredForUninstrumentedThread(t *testing.T) {
	// A thread with exact zones keeps them even when ghost display is on globally.
	tr := &trace.Trace{LastTime: 100, GhostZonesReady: true}
	thread := &trace.Thread{
		ID:         1,
		Timeline:   []trace.ZoneEvent{zone(0, 50)},
		GhostZones: []trace.GhostZone{{Start: 0, End: 50, Frame: 1, Child: -1}},
	}
	tr.Threads = []*trace.Thread{thread}
	item := NewThreadItem(tr, thread)

	td := dispatch.New(1)
	item.Preprocess(testContext(0, 100, 0.05), &ViewData{GhostZones: true}, td)
	td.Sync()
	require.Equal(t, 1, item.ZoneDraws().Len())
	require.Equal(t, ZoneDrawZone, item.ZoneDraws().Get(0).Kind)
	item.DrawFinished()
}
