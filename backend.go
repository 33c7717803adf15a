package rowan

// Handle is an opaque reference to a backend surface element. The scheduler
// never inspects it; nodes own exactly one each while mounted.
type Handle any

// Backend translates a flush of dirty nodes into concrete surface
// mutations. Implementations must be cheap to call: the scheduler has
// already paid for each operation through the budget allocator before
// invoking it (one structural unit for CreateElement, InsertChild, and
// RemoveChild; zero for the rest under the structural cost model).
//
// Backends are driven from a single goroutine; no synchronization is
// required.
type Backend interface {
	// CreateElement builds the surface element for n and returns its
	// handle. The element is not yet attached; the scheduler follows up
	// with InsertChild (or Mount for the stage root) in the same budgeted
	// operation.
	CreateElement(n *Node) Handle

	// Mount attaches the stage root element to the host surface, and
	// Unmount detaches it. Re-mounting an already-built root must move the
	// existing element rather than rebuild it.
	Mount(root Handle)
	Unmount(root Handle)

	// InsertChild places child at the given paint-order index under
	// parent, moving it there if it is already attached elsewhere
	// (insert-or-move semantics).
	InsertChild(parent, child Handle, index int)

	// RemoveChild detaches child from parent. The scheduler destroys the
	// element afterwards.
	RemoveChild(parent, child Handle)

	// DestroyElement releases any resources behind a detached element.
	// Never counted against the budget.
	DestroyElement(h Handle)

	// ApplyAttributes copies the node state selected by flags (geometry,
	// appearance, transform, visibility) onto the element.
	ApplyAttributes(h Handle, n *Node, flags DirtyFlags)

	// ApplyClip makes the clip element's geometry bound the target
	// element's rendering. Attribute-class operation.
	ApplyClip(target, clip Handle)

	// PendingResources reports how many asynchronous resources (image
	// fetches and the like) are still outstanding. The stage defers its
	// "settled" notification until this reaches zero.
	PendingResources() int

	// OnResourcesSettled registers fn to run once when the pending count
	// next reaches zero. If nothing is pending the backend may call fn
	// immediately. Resource failures must still drain the count so the
	// callback eventually fires; errors travel through backend-specific
	// channels, never across the flush boundary.
	OnResourcesSettled(fn func())
}

// CostModeler is optionally implemented by backends whose surface does not
// get attribute updates for free. Without it the stage assumes
// CostStructural.
type CostModeler interface {
	CostModel() CostModel
}

func backendCostModel(b Backend) CostModel {
	if cm, ok := b.(CostModeler); ok {
		return cm.CostModel()
	}
	return CostStructural
}

// ResourceTracker is a drop-in implementation of the async-resource half of
// the Backend contract. Backends embed it and bracket each asynchronous
// load with Begin/End; End on failure too, so waiters are never stuck.
type ResourceTracker struct {
	pending int
	waiters []func()
}

// Begin records one outstanding asynchronous resource.
func (rt *ResourceTracker) Begin() {
	rt.pending++
}

// End records the completion (or failure) of one resource and fires the
// registered callbacks if none remain.
func (rt *ResourceTracker) End() {
	if rt.pending == 0 {
		panic("rowan: ResourceTracker.End without matching Begin")
	}
	rt.pending--
	if rt.pending == 0 {
		waiters := rt.waiters
		rt.waiters = nil
		for _, fn := range waiters {
			fn()
		}
	}
}

// PendingResources returns the number of outstanding resources.
func (rt *ResourceTracker) PendingResources() int {
	return rt.pending
}

// OnResourcesSettled registers fn to run when the pending count reaches
// zero, or immediately if it already is.
func (rt *ResourceTracker) OnResourcesSettled(fn func()) {
	if rt.pending == 0 {
		fn()
		return
	}
	rt.waiters = append(rt.waiters, fn)
}
