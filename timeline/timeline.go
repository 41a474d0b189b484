// Package timeline decides, for a given view window over a trace, which events are individually visible
// and which collapse into folded markers.
//
// The entry point is ThreadItem: per frame, the caller submits its Preprocess pass to a dispatcher, waits
// for the barrier, renders the resulting draw buffers, and calls DrawFinished. Draw primitives reference
// events in the trace store and are valid for one frame only.
package timeline

import (
	"github.com/M4T1A5/tracy/trace"
)

const (
	// Zones narrower than minVisSize pixels fold into a single marker.
	minVisSize = 3
	// Context switch regions narrower than minCtxSize pixels fold.
	minCtxSize = 4
	// Samples closer together than minSampleSize pixels cluster.
	minSampleSize = 5
)

// Context is the view window for one frame: the visible time range and its pixel mapping. It is immutable
// for the duration of a frame's preprocessing.
type Context struct {
	Start trace.Timestamp
	End   trace.Timestamp
	// NsPerPx is the span of one horizontal pixel; PxPerNs is its inverse.
	NsPerPx float64
	PxPerNs float64
	// Width of the viewport in pixels.
	Width float32
	// Scale is the global UI scale factor.
	Scale float32
}

// ViewData are the caller's display toggles. Each one independently enables the corresponding
// preprocessing pass.
type ViewData struct {
	DrawContextSwitches bool
	DrawSamples         bool
	// GhostZones requests ghost zones for threads that have no instrumented zones.
	GhostZones    bool
	DynamicColors bool
}
