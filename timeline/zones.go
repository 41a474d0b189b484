package timeline

import (
	"cmp"
	"math"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/M4T1A5/tracy/mem"
	"github.com/M4T1A5/tracy/trace"
)

// zoneSource abstracts the two storage shapes the zone folder operates on: exact zones with a child index
// into the zone side table, and ghost zones with children in the ghost side table. Implementations are
// zero-size; the folder is instantiated per shape at compile time.
type zoneSource[E any] interface {
	start(ev *E) trace.Timestamp
	// rawEnd may be the unresolved sentinel; it is only ever compared in the uint64 domain.
	rawEnd(ev *E) trace.Timestamp
	endValid(ev *E) bool
	resolvedEnd(tr *trace.Trace, ev *E) trace.Timestamp
	// children returns the nested sequence, or nil.
	children(tr *trace.Trace, ev *E) []E
	// startSlop widens the search below the window start, endSlack above the window end.
	startSlop(tr *trace.Trace, minVisNs int64) int64
	endSlack(tr *trace.Trace) int64
	single(ev *E, depth uint16) ZoneDraw
	folded(ev *E, depth uint16, end trace.Timestamp, num uint32) ZoneDraw
}

type zoneAccessor struct{}

func (zoneAccessor) start(ev *trace.ZoneEvent) trace.Timestamp  { return ev.Start }
func (zoneAccessor) rawEnd(ev *trace.ZoneEvent) trace.Timestamp { return ev.End }
func (zoneAccessor) endValid(ev *trace.ZoneEvent) bool          { return ev.IsEndValid() }
func (zoneAccessor) resolvedEnd(tr *trace.Trace, ev *trace.ZoneEvent) trace.Timestamp {
	return tr.ZoneEnd(ev)
}
func (zoneAccessor) children(tr *trace.Trace, ev *trace.ZoneEvent) []trace.ZoneEvent {
	return tr.ZoneChildrenOf(ev)
}
func (zoneAccessor) startSlop(tr *trace.Trace, minVisNs int64) int64 {
	// Zone start times can be recorded late by up to the capture delay.
	return max(tr.Delay, 2*minVisNs)
}
func (zoneAccessor) endSlack(tr *trace.Trace) int64 { return tr.Resolution }
func (zoneAccessor) single(ev *trace.ZoneEvent, depth uint16) ZoneDraw {
	return ZoneDraw{Kind: ZoneDrawZone, Depth: depth, Zone: ev}
}
func (zoneAccessor) folded(ev *trace.ZoneEvent, depth uint16, end trace.Timestamp, num uint32) ZoneDraw {
	return ZoneDraw{Kind: ZoneDrawFolded, Depth: depth, Zone: ev, End: end, Num: num}
}

type ghostAccessor struct{}

func (ghostAccessor) start(ev *trace.GhostZone) trace.Timestamp  { return ev.Start }
func (ghostAccessor) rawEnd(ev *trace.GhostZone) trace.Timestamp { return ev.End }
func (ghostAccessor) endValid(ev *trace.GhostZone) bool          { return true }
func (ghostAccessor) resolvedEnd(tr *trace.Trace, ev *trace.GhostZone) trace.Timestamp {
	return ev.End
}
func (ghostAccessor) children(tr *trace.Trace, ev *trace.GhostZone) []trace.GhostZone {
	return tr.GhostChildrenOf(ev)
}
func (ghostAccessor) startSlop(tr *trace.Trace, minVisNs int64) int64 { return 2 * minVisNs }
func (ghostAccessor) endSlack(tr *trace.Trace) int64                  { return 0 }
func (ghostAccessor) single(ev *trace.GhostZone, depth uint16) ZoneDraw {
	return ZoneDraw{Kind: ZoneDrawGhost, Depth: depth, Ghost: ev}
}
func (ghostAccessor) folded(ev *trace.GhostZone, depth uint16, end trace.Timestamp, num uint32) ZoneDraw {
	return ZoneDraw{Kind: ZoneDrawGhostFolded, Depth: depth, Ghost: ev, End: end, Num: num}
}

// lowerBoundEnd returns the first index in vec[from:to] whose raw end time is >= t, comparing in the
// uint64 domain so that unended events sort after everything.
func lowerBoundEnd[E any, A zoneSource[E]](vec []E, from, to int, t trace.Timestamp) int {
	var a A
	return from + sort.Search(to-from, func(i int) bool {
		return uint64(a.rawEnd(&vec[from+i])) >= uint64(t)
	})
}

// lowerBoundStart returns the first index in vec[from:to] whose start time is >= t.
func lowerBoundStart[E any, A zoneSource[E]](vec []E, from, to int, t trace.Timestamp) int {
	var a A
	i, _ := slices.BinarySearchFunc(vec[from:to], t, func(ev E, t trace.Timestamp) int {
		return cmp.Compare(a.start(&ev), t)
	})
	return from + i
}

// foldZones walks one level of an interval tree, appending draw primitives for the visible part and
// recursing into the children of individually visible elements. It returns the maximum depth reached, one
// past the deepest level that emitted anything, or depth unchanged if nothing is visible.
func foldZones[E any, A zoneSource[E]](tr *trace.Trace, ctx *Context, vec []E, depth int, out *mem.BucketSlice[ZoneDraw]) int {
	var a A
	if len(vec) == 0 {
		return depth
	}

	vStart, vEnd := ctx.Start, ctx.End
	minVisNs := int64(math.Round(float64(ctx.Scale) * minVisSize * ctx.NsPerPx))

	it := lowerBoundEnd[E, A](vec, 0, len(vec), max(0, vStart-trace.Timestamp(a.startSlop(tr, minVisNs))))
	if it == len(vec) {
		return depth
	}
	zitend := lowerBoundStart[E, A](vec, it, len(vec), vEnd+trace.Timestamp(a.endSlack(tr)))
	if it == zitend {
		return depth
	}
	if !a.endValid(&vec[it]) && a.resolvedEnd(tr, &vec[it]) < vStart {
		return depth
	}
	if a.resolvedEnd(tr, &vec[zitend-1]) < vStart {
		return depth
	}

	maxDepth := depth + 1

	for it < zitend {
		ev := &vec[it]
		end := a.resolvedEnd(tr, ev)
		zsz := int64(end - a.start(ev))
		if zsz < minVisNs {
			// Merge elements until we find an element or gap that's big enough to stand on its own. We
			// don't stop merging as soon as the fold reaches the minimum size, because that would leave
			// runs of adjacent folds that flicker into each other when panning.
			nextTime := int64(end) + minVisNs
			next := it + 1
			for {
				next = lowerBoundEnd[E, A](vec, next, zitend, trace.Timestamp(nextTime))
				if next == zitend {
					break
				}
				prev := next - 1
				if prev == it {
					break
				}
				pt := a.resolvedEnd(tr, &vec[prev])
				nt := a.resolvedEnd(tr, &vec[next])
				if int64(nt-pt) >= minVisNs {
					break
				}
				nextTime = int64(nt) + minVisNs
			}
			out.Append(a.folded(ev, uint16(depth), a.resolvedEnd(tr, &vec[next-1]), uint32(next-it)))
			it = next
		} else {
			if children := a.children(tr, ev); children != nil {
				if d := foldZones[E, A](tr, ctx, children, depth+1, out); d > maxDepth {
					maxDepth = d
				}
			}
			out.Append(a.single(ev, uint16(depth)))
			it++
		}
	}

	return maxDepth
}
