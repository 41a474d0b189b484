package timeline

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/M4T1A5/tracy/trace"
)

var local = message.NewPrinter(language.English)

// Summary are the presentation statistics for one thread, derived from already-resolved ranges.
type Summary struct {
	First    trace.Timestamp
	Last     trace.Timestamp
	Lifetime trace.Timestamp
	// LifetimeFraction is the share of the whole capture the thread was alive for.
	LifetimeFraction float64

	RunningTime trace.Timestamp
	// RunningFraction is the share of the lifetime spent in the running state; only meaningful when
	// HasContextSwitches.
	RunningFraction    float64
	HasContextSwitches bool
	RunningRegions     int

	ZoneCount     int
	TopLevelZones int
	Messages      int
	Locks         int

	Samples        int
	KernelSamples  int
	KernelFraction float64

	Crashed bool
	IsFiber bool
}

// Summary computes the thread's statistics. Any subset of data sources may be empty; Last is -1 when the
// thread has no events at all.
func (item *ThreadItem) Summary() Summary {
	s := Summary{
		First:         item.RangeBegin(),
		Last:          item.RangeEnd(),
		ZoneCount:     item.thread.ZoneCount,
		TopLevelZones: len(item.thread.Timeline),
		Messages:      len(item.thread.Messages),
		Samples:       len(item.thread.Samples),
		KernelSamples: item.thread.KernelSampleCount,
		IsFiber:       item.thread.IsFiber,
	}
	if crash := item.tr.Crash; crash != nil && crash.Thread == item.thread.ID {
		s.Crashed = true
	}
	if s.Samples > 0 {
		s.KernelFraction = float64(s.KernelSamples) / float64(s.Samples)
	}
	for _, lock := range item.tr.Locks {
		if !lock.Valid {
			continue
		}
		if _, ok := lock.Threads[item.thread.ID]; ok {
			s.Locks++
		}
	}
	if s.Last >= 0 {
		s.Lifetime = s.Last - s.First
		if d := item.tr.Duration(); d > 0 {
			s.LifetimeFraction = float64(s.Lifetime) / float64(d)
		}
	}
	if cs := item.tr.ContextSwitchData(item.thread.ID); cs != nil {
		s.HasContextSwitches = true
		s.RunningRegions = len(cs.Regions)
		s.RunningTime = cs.RunningTime
		if s.Lifetime > 0 {
			s.RunningFraction = float64(s.RunningTime) / float64(s.Lifetime)
		}
	}
	return s
}

func pct(f float64) string {
	return humanize.FtoaWithDigits(f*100, 2) + "%"
}

// String renders the summary as the multi-line report shown on the thread header.
func (s Summary) String() string {
	var fmts []string
	var args []any

	if s.Last >= 0 {
		fmts = append(fmts, "Appeared at: %s", "Last event at: %s", "Lifetime: %s (%s)")
		args = append(args, s.First, s.Last, s.Lifetime, pct(s.LifetimeFraction))
		if s.HasContextSwitches {
			fmts = append(fmts, "Time in running state: %s (%s)")
			args = append(args, s.RunningTime, pct(s.RunningFraction))
		}
	}
	if s.TopLevelZones > 0 {
		fmts = append(fmts, "Zone count: %d", "Top-level zones: %d")
		args = append(args, s.ZoneCount, s.TopLevelZones)
	}
	if s.Messages > 0 {
		fmts = append(fmts, "Messages: %d")
		args = append(args, s.Messages)
	}
	if s.Locks > 0 {
		fmts = append(fmts, "Locks: %d")
		args = append(args, s.Locks)
	}
	if s.HasContextSwitches {
		fmts = append(fmts, "Running state regions: %d")
		args = append(args, s.RunningRegions)
	}
	if s.Samples > 0 {
		fmts = append(fmts, "Call stack samples: %d")
		args = append(args, s.Samples)
		if s.KernelSamples > 0 {
			fmts = append(fmts, "Kernel samples: %d (%s)")
			args = append(args, s.KernelSamples, pct(s.KernelFraction))
		}
	}
	return local.Sprintf(strings.Join(fmts, "\n"), args...)
}
