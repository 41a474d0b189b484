package timeline

import (
	"github.com/M4T1A5/tracy/trace"
)

type ZoneDrawKind uint8

const (
	ZoneDrawZone ZoneDrawKind = iota
	ZoneDrawFolded
	ZoneDrawGhost
	ZoneDrawGhostFolded
)

// ZoneDraw is one draw primitive on the zone track. It references the source event and never copies it;
// the referenced storage must outlive the frame, but no longer.
type ZoneDraw struct {
	Kind  ZoneDrawKind
	Depth uint16
	// Zone is set for ZoneDrawZone and ZoneDrawFolded, Ghost for the ghost kinds. For folds it is the
	// first merged element.
	Zone  *trace.ZoneEvent
	Ghost *trace.GhostZone
	// End is the resolved end of the last merged element; folds only.
	End trace.Timestamp
	// Num is the number of merged elements; folds only.
	Num uint32
}

type CtxDrawKind uint8

const (
	CtxDrawRunning CtxDrawKind = iota
	CtxDrawWaiting
	CtxDrawFoldedOne
	CtxDrawFoldedMulti
)

// CtxDraw is one draw primitive on the context switch track.
type CtxDraw struct {
	Kind   CtxDrawKind
	Region *trace.ContextSwitchRegion
	// MinPx is the right edge, in pixels, of the preceding fold marker; the renderer uses it to keep
	// markers from overlapping after a fold was widened to its minimum size.
	MinPx float32
	// Prev is the running region preceding a wait; CtxDrawWaiting only.
	Prev *trace.ContextSwitchRegion
	// WaitStack is the stack sampled at the boundary of the wait, if any; CtxDrawWaiting only.
	WaitStack trace.StackID
	// FoldEnd is the resolved end of the last merged region; fold kinds only.
	FoldEnd trace.Timestamp
	// Num is the number of merged running regions; CtxDrawFoldedMulti only.
	Num int
}

// SampleDraw is one cluster of stack samples. Num is the number of samples in the cluster (1 for an
// individually visible sample), Index the position of the first one in the thread's sample sequence.
type SampleDraw struct {
	Num   uint32
	Index uint32
}
