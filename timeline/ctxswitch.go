package timeline

import (
	"cmp"
	"math"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/M4T1A5/tracy/trace"
)

func lowerBoundRegionEnd(vec []trace.ContextSwitchRegion, from, to int, t trace.Timestamp) int {
	return from + sort.Search(to-from, func(i int) bool {
		return uint64(vec[from+i].End) >= uint64(t)
	})
}

func lowerBoundRegionStart(vec []trace.ContextSwitchRegion, from, to int, t trace.Timestamp) int {
	i, _ := slices.BinarySearchFunc(vec[from:to], t, func(r trace.ContextSwitchRegion, t trace.Timestamp) int {
		return cmp.Compare(r.Start, t)
	})
	return from + i
}

// waitStack finds the stack sample captured at the boundary of a wait region: at the moment the thread
// resumed, or failing that, the moment it stopped running. Context switch timestamps and sample timestamps
// come from the same kernel events, so an exact match is expected when sampling caught the switch.
func waitStack(samples []trace.SampleData, r *trace.ContextSwitchRegion) trace.StackID {
	if len(samples) == 0 {
		return 0
	}
	if r.IsEndValid() {
		if i, ok := slices.BinarySearchFunc(samples, r.End, func(s trace.SampleData, t trace.Timestamp) int {
			return cmp.Compare(s.Time, t)
		}); ok {
			return samples[i].Stack
		}
	}
	if i, ok := slices.BinarySearchFunc(samples, r.Start, func(s trace.SampleData, t trace.Timestamp) int {
		return cmp.Compare(s.Time, t)
	}); ok {
		return samples[i].Stack
	}
	return 0
}

// preprocessContextSwitches folds one thread's scheduling history into CtxDraw primitives. Wait regions
// are always emitted individually, annotated with the preceding running region and a wait stack if one was
// sampled; running regions fold by pixel width.
func (item *ThreadItem) preprocessContextSwitches(ctx *Context, cs *trace.ContextSwitch) {
	vec := cs.Regions
	if len(vec) == 0 {
		return
	}
	vStart, vEnd := ctx.Start, ctx.End

	it := lowerBoundRegionEnd(vec, 0, len(vec), max(0, vStart))
	if it == len(vec) {
		return
	}
	// A region that starts before the window but extends into it must not be missed.
	if it > 0 {
		it--
	}
	citend := lowerBoundRegionStart(vec, it, len(vec), vEnd)
	if it == citend {
		return
	}
	if citend != len(vec) {
		citend++
	}

	minCtxNs := int64(math.Round(minCtxSize * ctx.NsPerPx))
	pxns := ctx.PxPerNs
	w := float64(ctx.Width)
	samples := item.thread.Samples

	var prevRun *trace.ContextSwitchRegion
	minpx := -10.0
	for it < citend {
		r := &vec[it]
		if r.State != trace.ThreadRunning {
			if prevRun != nil {
				item.ctxDraw.Append(CtxDraw{
					Kind:      CtxDrawWaiting,
					Region:    r,
					MinPx:     float32(minpx),
					Prev:      prevRun,
					WaitStack: waitStack(samples, r),
				})
			}
			it++
			continue
		}

		end := item.tr.RegionEnd(r)
		zsz := math.Max(float64(end-r.Start)*pxns, pxns*0.5)
		if zsz < minCtxSize {
			num := 0
			px0 := math.Max(float64(r.Start-vStart)*pxns, -10.0)
			px1ns := int64(end - vStart)
			nextTime := int64(end) + minCtxNs
			for {
				prevIt := it
				it = lowerBoundRegionEnd(vec, it, citend, trace.Timestamp(nextTime))
				if it == prevIt {
					it++
				}
				for i := prevIt; i < it; i++ {
					if vec[i].State == trace.ThreadRunning {
						num++
					}
				}
				if it >= citend {
					it = citend
					break
				}
				nend := item.tr.RegionEnd(&vec[it])
				nsnext := int64(nend - vStart)
				if nsnext-px1ns >= minCtxNs*2 {
					break
				}
				px1ns = nsnext
				nextTime = int64(nend) + int64(math.Round(ctx.NsPerPx))
			}
			minpx = math.Min(math.Max(float64(px1ns)*pxns, px0+minCtxSize), w+10)
			foldEnd := item.tr.RegionEnd(&vec[it-1])
			if num == 1 {
				item.ctxDraw.Append(CtxDraw{Kind: CtxDrawFoldedOne, Region: r, MinPx: float32(minpx), FoldEnd: foldEnd})
			} else {
				item.ctxDraw.Append(CtxDraw{Kind: CtxDrawFoldedMulti, Region: r, MinPx: float32(minpx), FoldEnd: foldEnd, Num: num})
			}
			// The last running region swallowed by the fold is the provenance for the next wait.
			for i := it - 1; i >= 0; i-- {
				if vec[i].State == trace.ThreadRunning {
					prevRun = &vec[i]
					break
				}
			}
		} else {
			item.ctxDraw.Append(CtxDraw{Kind: CtxDrawRunning, Region: r, MinPx: float32(minpx)})
			prevRun = r
			it++
		}
	}
}
