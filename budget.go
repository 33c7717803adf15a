package rowan

// OpKind classifies a backend mutation for budget accounting.
type OpKind uint8

const (
	// OpCreate is the materialization of one new surface element: creation
	// plus its initial insertion, counted as a single structural unit.
	OpCreate OpKind = iota

	// OpInsert moves an existing element to a new position (insert-or-move,
	// like DOM insertBefore). One structural unit.
	OpInsert

	// OpRemove detaches an element from the surface. One structural unit.
	OpRemove

	// OpAttributes is an in-place attribute update (paint, transform,
	// visibility, geometry parameters). Free under the structural cost
	// model, one unit under the uniform model.
	OpAttributes
)

// CostModel describes how a backend's surface charges for mutations.
type CostModel uint8

const (
	// CostStructural: only element creation/insertion/removal is expensive
	// (tree surfaces such as a DOM). Attribute updates are free.
	CostStructural CostModel = iota

	// CostUniform: every update costs the same (surfaces that regenerate
	// work on any change, such as a full-frame rasterizer).
	CostUniform
)

// DefaultMaxMutationsPerTick is the structural-mutation cap installed for
// incremental flushing unless overridden with Stage.SetMaxMutationsPerTick.
const DefaultMaxMutationsPerTick = 400

// Allocator grants mutation units to the flush loop. Two policies exist:
// unbounded (synchronous flushes) and capped (incremental ticks).
type Allocator interface {
	// Acquire grants between 0 and wanted units and consumes the grant.
	Acquire(wanted int) int

	// AcquireOne grants a single unit for the given operation kind, or
	// reports false when the budget for this tick is exhausted. Operation
	// kinds that are free under the active cost model always succeed.
	AcquireOne(op OpKind) bool

	// ReserveFraction moves up to one third of the remaining budget into a
	// reservation owned by the caller and returns its size. The caller
	// spends the reservation itself and returns the unspent part with
	// Release. Used so that a pass which removes or creates elements never
	// consumes the units needed to attach what it builds.
	ReserveFraction() int

	// Release returns allowed-used unspent units to the pool within the
	// same tick.
	Release(allowed, used int)
}

// unboundedAllocator always grants the full request. Installed for the
// initial construction flush and for explicit Render calls.
type unboundedAllocator struct{}

func (unboundedAllocator) Acquire(wanted int) int      { return wanted }
func (unboundedAllocator) AcquireOne(op OpKind) bool   { return true }
func (unboundedAllocator) ReserveFraction() int        { return 0 }
func (unboundedAllocator) Release(allowed, used int)   {}

// cappedAllocator grants at most max units per tick. A grant of 0 signals
// "budget exhausted for this tick"; the flush loop then leaves the rest of
// the dirty state for the next tick.
type cappedAllocator struct {
	remaining int
	model     CostModel
}

// reset re-arms the per-tick counter. Called by the stage before each tick.
func (a *cappedAllocator) reset(max int, model CostModel) {
	a.remaining = max
	a.model = model
}

func (a *cappedAllocator) Acquire(wanted int) int {
	if wanted < 0 {
		panic("rowan: negative budget request")
	}
	g := wanted
	if g > a.remaining {
		g = a.remaining
	}
	a.remaining -= g
	return g
}

func (a *cappedAllocator) AcquireOne(op OpKind) bool {
	if op == OpAttributes && a.model == CostStructural {
		// Attribute updates do not create surface nodes; free.
		return true
	}
	if a.remaining <= 0 {
		return false
	}
	a.remaining--
	return true
}

func (a *cappedAllocator) ReserveFraction() int {
	r := a.remaining / 3
	a.remaining -= r
	return r
}

func (a *cappedAllocator) Release(allowed, used int) {
	if used > allowed {
		panic("rowan: released more budget than was granted")
	}
	a.remaining += allowed - used
}
