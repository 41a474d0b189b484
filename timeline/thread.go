package timeline

import (
	"math"
	"strings"

	"github.com/M4T1A5/tracy/dispatch"
	"github.com/M4T1A5/tracy/mem"
	"github.com/M4T1A5/tracy/slices"
	"github.com/M4T1A5/tracy/trace"
)

// ThreadItem aggregates all timeline data of a single thread: it runs the per-frame folding passes and
// owns the draw primitive buffers they fill.
type ThreadItem struct {
	tr     *trace.Trace
	thread *trace.Thread

	// ghost switches the zone track to ghost zones for this thread, regardless of ViewData.
	ghost bool
	// showFull is the initial expanded/collapsed state; profiler-internal threads start collapsed.
	showFull bool

	depth      int
	zoneDraw   mem.BucketSlice[ZoneDraw]
	ctxDraw    mem.BucketSlice[CtxDraw]
	sampleDraw mem.BucketSlice[SampleDraw]
}

func NewThreadItem(tr *trace.Trace, thread *trace.Thread) *ThreadItem {
	return &ThreadItem{
		tr:       tr,
		thread:   thread,
		showFull: !strings.HasPrefix(thread.Name, "Tracy "),
	}
}

func (item *ThreadItem) Thread() *trace.Thread { return item.thread }
func (item *ThreadItem) ShowFull() bool        { return item.showFull }
func (item *ThreadItem) SetShowFull(v bool)    { item.showFull = v }
func (item *ThreadItem) Ghost() bool           { return item.ghost }
func (item *ThreadItem) SetGhost(v bool)       { item.ghost = v }

// IsEmpty reports whether the thread has nothing to present: no zones, no messages, no ghost zones, and it
// isn't the thread a crash was recorded on.
func (item *ThreadItem) IsEmpty() bool {
	if crash := item.tr.Crash; crash != nil && crash.Thread == item.thread.ID {
		return false
	}
	return len(item.thread.Timeline) == 0 &&
		len(item.thread.Messages) == 0 &&
		len(item.thread.GhostZones) == 0
}

func (item *ThreadItem) HeaderLabel() string { return item.thread.Name }

func (item *ThreadItem) HeaderColor() uint32 {
	if crash := item.tr.Crash; crash != nil && crash.Thread == item.thread.ID {
		return 0xFF2222FF
	}
	if item.thread.IsFiber {
		return 0xFF88FF88
	}
	return 0xFFFFFFFF
}

func (item *ThreadItem) HeaderColorInactive() uint32 {
	if crash := item.tr.Crash; crash != nil && crash.Thread == item.thread.ID {
		return 0xFF111188
	}
	if item.thread.IsFiber {
		return 0xFF448844
	}
	return 0xFF888888
}

func (item *ThreadItem) HeaderLineColor() uint32 { return 0x33FFFFFF }

// ThreadColor is the base color for the thread's zones. With dynamic coloring each thread gets a stable
// color derived from its ID.
func (item *ThreadItem) ThreadColor(vd *ViewData) uint32 {
	if !vd.DynamicColors {
		return 0xFFCC5555
	}
	h := uint32(item.thread.ID) * 0x9E3779B9
	return 0xFF000000 | (h&0x7F7F7F | 0x404040)
}

// RangeBegin returns the thread's earliest relevant timestamp across all its data sources, or the maximum
// timestamp if it has none.
func (item *ThreadItem) RangeBegin() trace.Timestamp {
	first := trace.Timestamp(math.MaxInt64)
	if cs := item.tr.ContextSwitchData(item.thread.ID); cs != nil && len(cs.Regions) > 0 {
		first = cs.Regions[0].Start
	}
	if len(item.thread.Timeline) > 0 {
		first = min(first, item.thread.Timeline[0].Start)
	}
	if len(item.thread.GhostZones) > 0 {
		first = min(first, item.thread.GhostZones[0].Start)
	}
	if len(item.thread.Messages) > 0 {
		first = min(first, item.thread.Messages[0].Time)
	}
	for _, lock := range item.tr.Locks {
		if !lock.Valid {
			continue
		}
		lt, ok := lock.Threads[item.thread.ID]
		if !ok {
			continue
		}
		for i := range lock.Timeline {
			if lock.Timeline[i].Thread == lt {
				first = min(first, lock.Timeline[i].Time)
				break
			}
		}
	}
	return first
}

// RangeEnd returns the thread's latest relevant timestamp, or -1 if it has none.
func (item *ThreadItem) RangeEnd() trace.Timestamp {
	last := trace.Timestamp(-1)
	if cs := item.tr.ContextSwitchData(item.thread.ID); cs != nil && len(cs.Regions) > 0 {
		back := slices.LastPtr(cs.Regions)
		if back.IsEndValid() {
			last = back.End
		} else {
			last = back.Start
		}
	}
	if len(item.thread.Timeline) > 0 {
		last = max(last, item.tr.ZoneEnd(slices.LastPtr(item.thread.Timeline)))
	}
	if len(item.thread.GhostZones) > 0 {
		last = max(last, slices.Last(item.thread.GhostZones).End)
	}
	if len(item.thread.Messages) > 0 {
		last = max(last, slices.Last(item.thread.Messages).Time)
	}
	for _, lock := range item.tr.Locks {
		if !lock.Valid {
			continue
		}
		lt, ok := lock.Threads[item.thread.ID]
		if !ok {
			continue
		}
		for i := len(lock.Timeline) - 1; i >= 0; i-- {
			if lock.Timeline[i].Thread == lt {
				last = max(last, lock.Timeline[i].Time)
				break
			}
		}
	}
	return last
}

// Preprocess runs the folding passes for one frame, submitting one task per applicable data source. The
// draw buffers must be empty on entry; results are valid only after td's barrier.
func (item *ThreadItem) Preprocess(ctx *Context, vd *ViewData, td *dispatch.Dispatcher) {
	if item.zoneDraw.Len() != 0 || item.ctxDraw.Len() != 0 || item.sampleDraw.Len() != 0 {
		panic("timeline: ThreadItem draw buffers not empty; caller did not consume the previous frame")
	}

	td.Queue(func() {
		if item.tr.GhostZonesReady && (item.ghost || (vd.GhostZones && len(item.thread.Timeline) == 0)) {
			item.depth = foldZones[trace.GhostZone, ghostAccessor](item.tr, ctx, item.thread.GhostZones, 0, &item.zoneDraw)
		} else {
			item.depth = foldZones[trace.ZoneEvent, zoneAccessor](item.tr, ctx, item.thread.Timeline, 0, &item.zoneDraw)
		}
	})

	if vd.DrawContextSwitches {
		if cs := item.tr.ContextSwitchData(item.thread.ID); cs != nil {
			td.Queue(func() {
				item.preprocessContextSwitches(ctx, cs)
			})
		}
	}

	if vd.DrawSamples && len(item.thread.Samples) > 0 {
		td.Queue(func() {
			item.preprocessSamples(ctx, item.thread.Samples)
		})
	}
}

// DrawFinished clears the draw buffers after the caller has consumed them; it must run before the next
// Preprocess.
func (item *ThreadItem) DrawFinished() {
	item.sampleDraw.Reset()
	item.ctxDraw.Reset()
	item.zoneDraw.Reset()
}

// Depth is the maximum zone nesting depth reached in the last preprocessed window; the caller sizes the
// zone track to it.
func (item *ThreadItem) Depth() int { return item.depth }

func (item *ThreadItem) ZoneDraws() *mem.BucketSlice[ZoneDraw]     { return &item.zoneDraw }
func (item *ThreadItem) CtxDraws() *mem.BucketSlice[CtxDraw]       { return &item.ctxDraw }
func (item *ThreadItem) SampleDraws() *mem.BucketSlice[SampleDraw] { return &item.sampleDraw }
