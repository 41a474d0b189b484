// Package trace holds the in-memory model of a captured execution trace: per-thread zone trees, context
// switch regions, stack samples, messages and lock timelines, together with the global capture bounds.
//
// All sequences are time-ordered and immutable once the trace is assembled. Consumers reference events by
// pointer or index; nothing in this package mutates an event after assembly.
package trace

// Timestamp is a point in time, in nanoseconds since the start of the capture.
type Timestamp int64

// NoTimestamp marks an end time that was never recorded, for example because the program crashed while the
// zone was still open. It sorts after every resolved timestamp when compared in the uint64 domain.
const NoTimestamp Timestamp = -1

type ThreadID uint64

// StackID references a call stack stored by the capture; 0 means no stack.
type StackID uint32

type ThreadState uint8

const (
	ThreadWaiting ThreadState = iota
	ThreadRunning
	ThreadBlocked
)

// ZoneEvent is a single instrumented call or scope interval. Child indexes Trace.ZoneChildren when >= 0.
//
// The type is laid out without pointers so that the garbage collector won't have to scan the millions of
// events a large trace holds. References to other data are indices into slices on Trace.
type ZoneEvent struct {
	Start  Timestamp
	End    Timestamp // NoTimestamp if the zone never closed
	Child  int32
	SrcLoc int32
}

func (ev *ZoneEvent) IsEndValid() bool  { return ev.End >= 0 }
func (ev *ZoneEvent) HasChildren() bool { return ev.Child >= 0 }

// GhostZone is an approximate interval reconstructed from stack samples, used when a thread has no precise
// instrumentation. Ghost zones always have resolved end times. Child indexes Trace.GhostChildren when >= 0.
type GhostZone struct {
	Start Timestamp
	End   Timestamp
	Frame int32
	Child int32
}

func (gz *GhostZone) HasChildren() bool { return gz.Child >= 0 }

// ContextSwitchRegion is a contiguous span during which a thread was observed in a single scheduler state.
// A thread's regions are ordered, non-overlapping and gap-free: running regions alternate with non-running
// ones, or abut.
type ContextSwitchRegion struct {
	Start Timestamp
	End   Timestamp // NoTimestamp if the state never changed again
	State ThreadState
}

func (r *ContextSwitchRegion) IsEndValid() bool { return r.End >= 0 }

// ContextSwitch is the full scheduling history of one thread.
type ContextSwitch struct {
	Regions []ContextSwitchRegion
	// Total time spent in the running state, precomputed during assembly.
	RunningTime Timestamp
}

// SampleData is one stack sampling event.
type SampleData struct {
	Time   Timestamp
	Stack  StackID
	Kernel bool
}

type MessageEvent struct {
	Time Timestamp
	Text string
}

// LockEvent is one event on a lock's timeline. Thread is an index into the lock's participant list, not a
// ThreadID; LockMap.Threads maps from thread IDs to these indices.
type LockEvent struct {
	Time   Timestamp
	Thread uint8
}

type LockMap struct {
	ID      uint32
	Valid   bool
	Threads map[ThreadID]uint8
	// Events of all participating threads, interleaved in time order.
	Timeline []LockEvent
}

type Thread struct {
	ID   ThreadID
	Name string
	// Top-level zones. Zones nested below them live in Trace.ZoneChildren.
	Timeline []ZoneEvent
	// Top-level ghost zones; children live in Trace.GhostChildren.
	GhostZones []GhostZone
	Messages   []MessageEvent
	Samples    []SampleData
	// Total number of zones on this thread, including nested ones.
	ZoneCount         int
	KernelSampleCount int
	IsFiber           bool
}

// CrashEvent records a crash observed during capture.
type CrashEvent struct {
	Thread  ThreadID
	Time    Timestamp
	Message string
}

type Trace struct {
	Threads []*Thread

	// Side tables for nested zones, indexed by the Child field of their parent.
	ZoneChildren  [][]ZoneEvent
	GhostChildren [][]GhostZone

	Locks map[uint32]*LockMap
	Crash *CrashEvent

	FirstTime Timestamp
	LastTime  Timestamp
	// Delay is the capture's measured instrumentation overhead, Resolution its timer granularity, both in
	// nanoseconds. The folding engine widens its search windows by these to not miss events whose recorded
	// times are off by up to that much.
	Delay      int64
	Resolution int64

	// GhostZonesReady is false until background reconstruction of ghost zones has finished.
	GhostZonesReady bool

	contextSwitch map[ThreadID]*ContextSwitch
	threadsByID   map[ThreadID]*Thread
}

// SetContextSwitchData registers the scheduling history for a thread during assembly.
func (tr *Trace) SetContextSwitchData(tid ThreadID, ctx *ContextSwitch) {
	if tr.contextSwitch == nil {
		tr.contextSwitch = map[ThreadID]*ContextSwitch{}
	}
	tr.contextSwitch[tid] = ctx
}

// ContextSwitchData returns the scheduling history of a thread, or nil if the capture didn't record any.
func (tr *Trace) ContextSwitchData(tid ThreadID) *ContextSwitch {
	return tr.contextSwitch[tid]
}

func (tr *Trace) ThreadByID(tid ThreadID) *Thread {
	if tr.threadsByID == nil {
		tr.threadsByID = make(map[ThreadID]*Thread, len(tr.Threads))
		for _, th := range tr.Threads {
			tr.threadsByID[th.ID] = th
		}
	}
	return tr.threadsByID[tid]
}

// ZoneEnd returns the resolved end time of a zone: its recorded end if it has one, otherwise the last known
// time of the trace. The zone itself is never assigned a synthetic end.
func (tr *Trace) ZoneEnd(ev *ZoneEvent) Timestamp {
	if ev.IsEndValid() {
		return ev.End
	}
	return tr.LastTime
}

// RegionEnd is ZoneEnd for context switch regions.
func (tr *Trace) RegionEnd(r *ContextSwitchRegion) Timestamp {
	if r.IsEndValid() {
		return r.End
	}
	return tr.LastTime
}

func (tr *Trace) ZoneChildrenOf(ev *ZoneEvent) []ZoneEvent {
	if !ev.HasChildren() {
		return nil
	}
	return tr.ZoneChildren[ev.Child]
}

func (tr *Trace) GhostChildrenOf(gz *GhostZone) []GhostZone {
	if !gz.HasChildren() {
		return nil
	}
	return tr.GhostChildren[gz.Child]
}

// Duration returns the length of the whole capture.
func (tr *Trace) Duration() Timestamp {
	return tr.LastTime - tr.FirstTime
}
