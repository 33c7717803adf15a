package rowan

import "errors"

// ErrNoTarget is returned by Render when no surface target is attached.
// Flushing without a target is a configuration error and is never silently
// ignored.
var ErrNoTarget = errors.New("rowan: no surface target attached")

// Mode selects the flush policy installed before each flush.
type Mode uint8

const (
	// ModeSync flushes the whole dirty set immediately on every mutation
	// (while unsuspended). Default.
	ModeSync Mode = iota

	// ModeIncremental defers flushing to cooperative ticks, each bounded
	// by the per-tick mutation budget.
	ModeIncremental
)

// State is the scheduler's observable state.
type State uint8

const (
	// StateDetached: no surface target attached.
	StateDetached State = iota

	// StateSuspended: the suspend counter is positive; mutations
	// accumulate without flushing.
	StateSuspended

	// StateIdle: attached, not flushing, no tick scheduled.
	StateIdle

	// StateFlushing: a flush is in progress. Re-entrant flush requests
	// are ignored while here.
	StateFlushing

	// StateAwaitingTick: incremental mode with a follow-up tick scheduled.
	StateAwaitingTick
)

// removal is a journaled backend unmount. Entries with detach set cost one
// structural unit (the element leaves its parent); destroy-only entries are
// free (the element already died with its subtree root).
type removal struct {
	parent Handle
	elem   Handle
	detach bool
}

// Stage owns a scene tree, decides when and how dirty state is flushed to
// the attached backend, and carries the suspend/resume counter. Create one
// per root surface; two stages never share state.
type Stage struct {
	root     *Node
	backend  Backend
	registry *registry

	mode         Mode
	maxPerTick   int
	suspendCount int
	rendering    bool
	tickPending  bool
	tickHook     func(run func())
	disposed     bool

	// finishOwed is set when a tick made progress but ran out of budget:
	// the render-finished notification is owed to whichever later pass
	// drains the tree, including a final clean tick.
	finishOwed bool

	// settledWait is set while an OnResourcesSettled callback is
	// registered with the backend, so repeated render-finishes over the
	// same outstanding resources queue only one settled notification.
	settledWait bool

	// journal holds backend unmounts recorded at mutation time. It is
	// drained at the start of every flush pass, before any tree work, so
	// mounted-order bookkeeping stays consistent with the surface.
	journal []removal

	// pendingClips is the ordered set of clipped nodes awaiting their
	// deferred clip flush within the current pass. Clip geometry can only
	// be applied once the clipped target has a backend element.
	pendingClips []*Node

	tickAlloc cappedAllocator

	debug bool
	stats flushStats

	// OnRenderStart fires when a flush pass begins doing work.
	OnRenderStart func()

	// OnRenderFinish fires when the tree has fully drained.
	OnRenderFinish func()

	// OnSettled fires after OnRenderFinish once the backend reports no
	// outstanding asynchronous resources; it is deferred until they
	// complete (or fail) otherwise. Consecutive finishes over the same
	// outstanding resources coalesce into a single deferred notification.
	OnSettled func()
}

// NewStage creates a stage with a pre-created root container and no surface
// target. Nodes may be added and mutated freely before a backend is
// attached; they cost nothing until the first flush.
func NewStage() *Stage {
	st := &Stage{
		root:       NewContainer("root"),
		registry:   newRegistry(),
		maxPerTick: DefaultMaxMutationsPerTick,
	}
	st.root.stage = st
	return st
}

// Root returns the stage's root container node.
func (st *Stage) Root() *Node {
	return st.root
}

// Backend returns the attached backend, or nil while detached.
func (st *Stage) Backend() Backend {
	return st.backend
}

// SetBackend attaches a surface target, or detaches with nil. Attaching
// while unsuspended triggers an immediate flush (synchronous mode) or
// schedules a tick (incremental mode). Attaching a different backend
// rebuilds the surface from scratch; moving an existing surface to a new
// host container is the backend's own concern (see Backend.Mount).
func (st *Stage) SetBackend(b Backend) {
	if st.disposed {
		panic("rowan: SetBackend on disposed stage")
	}
	if b == st.backend {
		return
	}
	if st.backend != nil {
		if st.root.handle != nil {
			st.backend.Unmount(st.root.handle)
			releaseHandles(st.backend, st.root)
		}
		// Journaled handles belong to the old surface; drop them.
		st.journal = st.journal[:0]
		st.registry.clear()
	}
	st.backend = b
	if b == nil {
		return
	}
	markSubtreeAttached(st.root)
	st.invalidate()
}

// SetMode switches between synchronous and incremental flushing. Switching
// to synchronous mode with accumulated dirty state flushes it immediately
// (unless suspended).
func (st *Stage) SetMode(m Mode) {
	if st.mode == m {
		return
	}
	st.mode = m
	st.invalidate()
}

// Mode returns the active flush mode.
func (st *Stage) Mode() Mode {
	return st.mode
}

// SetMaxMutationsPerTick configures the structural-mutation budget for
// incremental ticks. Panics if max is not positive.
func (st *Stage) SetMaxMutationsPerTick(max int) {
	if max <= 0 {
		panic("rowan: mutation budget must be positive")
	}
	st.maxPerTick = max
}

// Suspend increments the suspend counter. While the counter is positive,
// mutations accumulate without flushing.
func (st *Stage) Suspend() {
	if globalDebug && st.disposed {
		panic("rowan: Suspend on disposed stage")
	}
	st.suspendCount++
}

// Resume decrements the suspend counter, or forces it to zero. When the
// counter reaches zero and a target is attached, the accumulated dirty
// state is flushed (synchronous mode) or a tick is scheduled (incremental
// mode). Panics on underflow.
func (st *Stage) Resume(force bool) {
	if st.suspendCount == 0 {
		panic("rowan: Resume without matching Suspend")
	}
	if force {
		st.suspendCount = 0
	} else {
		st.suspendCount--
	}
	if st.suspendCount == 0 {
		st.invalidate()
	}
}

// Suspended reports whether the suspend counter is positive.
func (st *Stage) Suspended() bool {
	return st.suspendCount > 0
}

// IsDirty reports whether any mutation is waiting to be flushed. Together
// with Render this is the serializer boundary: exporters call Render when
// IsDirty and then read the surface back.
func (st *Stage) IsDirty() bool {
	return st.root.IsDirty() || len(st.journal) > 0
}

// State returns the scheduler's observable state.
func (st *Stage) State() State {
	switch {
	case st.rendering:
		return StateFlushing
	case st.suspendCount > 0:
		return StateSuspended
	case st.backend == nil:
		return StateDetached
	case st.tickPending:
		return StateAwaitingTick
	default:
		return StateIdle
	}
}

// NodeByID returns the node with the given identifier if it is currently
// live on the surface, or nil.
func (st *Stage) NodeByID(id uint32) *Node {
	return st.registry.lookup(id)
}

// SetTickScheduler installs the host's cooperative-yield primitive: fn is
// called with a tick closure that must be deferred onto the host's event
// loop, never run synchronously. Without a scheduler the host drives ticks
// explicitly by calling Tick whenever TickPending reports true.
func (st *Stage) SetTickScheduler(fn func(run func())) {
	st.tickHook = fn
}

// TickPending reports whether an incremental tick is scheduled.
func (st *Stage) TickPending() bool {
	return st.tickPending
}

// Render performs an explicit full synchronous flush, regardless of mode.
// Returns ErrNoTarget if no backend is attached. A re-entrant call during
// a flush is a no-op: the in-progress flush re-evaluates dirtiness before
// finishing.
func (st *Stage) Render() error {
	if st.disposed {
		panic("rowan: Render on disposed stage")
	}
	if st.backend == nil {
		return ErrNoTarget
	}
	if st.rendering {
		return nil
	}
	st.renderNow()
	return nil
}

// Tick performs one bounded unit of incremental flush work. Stale ticks
// (stage disposed, tick no longer pending, or tree already clean) do
// nothing.
func (st *Stage) Tick() {
	if st.disposed || !st.tickPending {
		return
	}
	st.tickPending = false
	if st.backend == nil || st.suspendCount > 0 || st.rendering {
		return
	}
	if !st.IsDirty() {
		// Stale tick: nothing to do, unless a budget-cut earlier tick
		// still owes the finished notification.
		if st.finishOwed {
			st.finishRender()
		}
		return
	}
	st.rendering = true
	st.fireRenderStart()
	st.tickAlloc.reset(st.maxPerTick, backendCostModel(st.backend))
	complete := st.flushPass(&st.tickAlloc)
	st.rendering = false
	if !complete || st.tickAlloc.remaining == 0 {
		// Budget ran dry (or ran out exactly); give the host loop control
		// back and continue on the next tick.
		st.finishOwed = true
		st.scheduleTick()
		return
	}
	st.finishRender()
}

// Dispose flushes a final empty state, releases every backend element, and
// detaches the backend. The stage and its nodes are unusable afterwards.
func (st *Stage) Dispose() {
	if st.disposed {
		return
	}
	st.suspendCount = 0
	st.tickPending = false
	st.root.RemoveChildren()
	if st.backend != nil {
		st.renderNow()
		if st.root.handle != nil {
			st.backend.Unmount(st.root.handle)
			releaseHandles(st.backend, st.root)
		}
		st.backend = nil
	}
	st.journal = nil
	st.registry.clear()
	st.root.stage = nil
	st.root.dispose()
	st.disposed = true
}

// --- internals ---

// invalidate is called whenever dirty state appears (or may have appeared).
// It decides between flushing now, scheduling a tick, and doing nothing.
func (st *Stage) invalidate() {
	if st.disposed || st.backend == nil || st.suspendCount > 0 || st.rendering {
		return
	}
	if !st.IsDirty() {
		return
	}
	if st.mode == ModeIncremental {
		st.scheduleTick()
	} else {
		st.renderNow()
	}
}

func (st *Stage) scheduleTick() {
	if st.tickPending {
		return
	}
	st.tickPending = true
	if st.tickHook != nil {
		st.tickHook(st.Tick)
	}
}

// renderNow runs an unbounded flush. If dirty state survives it, the
// scheduler itself is defective: fail loudly rather than limp on.
func (st *Stage) renderNow() {
	st.rendering = true
	st.fireRenderStart()
	complete := st.flushPass(unboundedAllocator{})
	st.rendering = false
	if !complete || st.IsDirty() {
		panic("rowan: internal error: synchronous flush left residual dirty state")
	}
	// The tree is drained; any tick scheduled for it would be stale.
	st.tickPending = false
	st.finishRender()
}

func (st *Stage) fireRenderStart() {
	if st.OnRenderStart != nil {
		st.OnRenderStart()
	}
}

// finishRender emits the render-finished notification and chases the
// fully-settled one: immediately if the backend has no outstanding async
// resources, otherwise once they drain.
func (st *Stage) finishRender() {
	st.finishOwed = false
	if st.OnRenderFinish != nil {
		st.OnRenderFinish()
	}
	if st.OnSettled != nil {
		if st.backend == nil || st.backend.PendingResources() == 0 {
			st.OnSettled()
		} else if !st.settledWait {
			st.settledWait = true
			st.backend.OnResourcesSettled(func() {
				st.settledWait = false
				if st.OnSettled != nil {
					st.OnSettled()
				}
			})
		}
	}
}

// journalUnmount records the backend removal of child's element (one
// structural unit at flush time) and severs the handles of its whole
// subtree. Called at mutation time, before the tree link is cut.
func (st *Stage) journalUnmount(parent, child *Node) {
	if child.handle != nil {
		st.journal = append(st.journal, removal{
			parent: parent.handle,
			elem:   child.handle,
			detach: true,
		})
		st.registry.remove(child.id)
		child.handle = nil
		child.mounted = child.mounted[:0]
	}
	if child.clip != nil {
		severHandles(child.clip, st)
	}
	for _, c := range child.children {
		severHandles(c, st)
	}
}

// createHandle materializes the backend element for n and registers the
// node. This plus the follow-up insertion is one budgeted operation.
func (st *Stage) createHandle(n *Node) Handle {
	h := st.backend.CreateElement(n)
	n.handle = h
	st.registry.add(n)
	return h
}

// releaseHandles destroys every backend element under n (inclusive) and
// severs the handles. Used on detach and dispose, outside budget
// accounting.
func releaseHandles(b Backend, n *Node) {
	if n.handle != nil {
		b.DestroyElement(n.handle)
		n.handle = nil
	}
	n.mounted = n.mounted[:0]
	if n.clip != nil {
		releaseHandles(b, n.clip)
	}
	for _, child := range n.children {
		releaseHandles(b, child)
	}
}
