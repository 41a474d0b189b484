package timeline

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"github.com/M4T1A5/tracy/trace"
)

func lowerBoundSampleTime(vec []trace.SampleData, from, to int, t trace.Timestamp) int {
	i, _ := slices.BinarySearchFunc(vec[from:to], t, func(s trace.SampleData, t trace.Timestamp) int {
		return cmp.Compare(s.Time, t)
	})
	return from + i
}

// preprocessSamples clusters the visible stack samples. Samples closer together than the minimum pixel
// distance are absorbed into one cluster, extending the trigger window each time in the same way zone
// folds extend.
func (item *ThreadItem) preprocessSamples(ctx *Context, vec []trace.SampleData) {
	vStart, vEnd := ctx.Start, ctx.End
	minVisNs := int64(math.Round(float64(ctx.Scale) * minSampleSize * ctx.NsPerPx))

	it := lowerBoundSampleTime(vec, 0, len(vec), vStart-trace.Timestamp(minVisNs))
	if it == len(vec) {
		return
	}
	itend := lowerBoundSampleTime(vec, it, len(vec), vEnd)
	if it == itend {
		return
	}

	for it < itend {
		next := it + 1
		if next != itend {
			t0 := vec[it].Time
			nextTime := int64(t0) + minVisNs
			for {
				next = lowerBoundSampleTime(vec, next, itend, trace.Timestamp(nextTime))
				if next == itend {
					break
				}
				prev := next - 1
				if prev == it {
					break
				}
				pt := vec[prev].Time
				nt := vec[next].Time
				if int64(nt-pt) >= minVisNs {
					break
				}
				nextTime = int64(nt) + minVisNs
			}
		}
		item.sampleDraw.Append(SampleDraw{Num: uint32(next - it), Index: uint32(it)})
		it = next
	}
}
