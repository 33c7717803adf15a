package rowan

// nodeIDCounter is a plain counter (no atomic — rowan is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// NodeType discriminates the drawable kinds. A single flat struct is used
// for all node types to avoid interface dispatch on the flush path.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota
	NodeTypeRect
	NodeTypeCircle
	NodeTypeEllipse
	NodeTypePath
	NodeTypeText
	NodeTypeImage
	NodeTypeClip
)

// Node is the fundamental scene graph element: a drawable or a container of
// drawables. Exported fields may be mutated directly, followed by a
// MarkDirty call with the matching flags; the Set* helpers do both.
type Node struct {
	// Identity. The process-unique ID is assigned lazily; see NodeID.
	id   uint32
	Name string
	Type NodeType

	// Hierarchy. Parent is a weak back-link used for dirty propagation and
	// never an ownership edge; children order is paint order.
	Parent   *Node
	children []*Node

	// stage is set on the root node only (NewStage creates the root).
	stage *Stage

	// Dirty state.
	dirty           DirtyFlags
	descendantDirty bool

	// Backend element, created lazily on first flush, owned exclusively by
	// this node. mounted mirrors the order of child elements currently on
	// the surface, which may trail n.children until the next flush.
	handle  Handle
	mounted []*Node

	// Transform (local).
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64

	// Geometry, by Type.
	Width, Height    float64 // rect, image
	Radius           float64 // circle
	RadiusX, RadiusY float64 // ellipse
	Segments         []PathSegment
	Text             string
	Source           string // image reference, resolved by the backend

	// Appearance.
	Fill    Color
	Stroke  Stroke
	Opacity float64
	Visible bool

	// clip references a NodeTypeClip node applied to this node. Clip nodes
	// live outside the child list; their elements are created under this
	// node's element once it exists.
	clip *Node

	// Metadata.
	UserData any

	disposed bool
}

// nodeDefaults sets the common default field values shared by all
// constructors.
func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Opacity = 1
	n.Visible = true
}

// NodeID returns the node's process-unique identifier, assigning it on
// first use.
func (n *Node) NodeID() uint32 {
	if n.id == 0 {
		n.id = nextNodeID()
	}
	return n.id
}

// --- Tree manipulation ---

// AddChild appends child to this node's children (on top, in paint order).
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.AddChildAt(child, len(n.children))
}

// AddChildAt inserts child at the given index in paint order.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("rowan: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("rowan: adding child would create a cycle")
	}
	if child.Type == NodeTypeClip {
		panic("rowan: clip nodes are applied with SetClip, not added as children")
	}
	if index < 0 || index > len(n.children) {
		panic("rowan: child index out of range")
	}
	if child.Parent == n {
		// Reorder among current siblings.
		cur := n.childIndex(child)
		if cur < index {
			index--
		}
		n.SetChildIndex(child, index)
		return
	}
	if child.Parent != nil {
		child.Parent.detachChild(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeAttached(child)
	n.descendantDirty = true
	n.MarkDirty(DirtyStructure)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node. The child's surface element, if
// any, is scheduled for removal on the next flush; the child itself survives
// and can be re-added later at zero cost until then.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild")
	}
	if child.Parent != n {
		panic("rowan: child's parent is not this node")
	}
	n.detachChild(child)
	n.MarkDirty(DirtyStructure)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("rowan: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.detachChild(n.children[len(n.children)-1])
	}
	n.MarkDirty(DirtyStructure)
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings. On a tree
// surface the move costs one structural mutation unit at flush time.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("rowan: child's parent is not this node")
	}
	if index < 0 || index >= len(n.children) {
		panic("rowan: child index out of range")
	}
	oldIndex := n.childIndex(child)
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	n.MarkDirty(DirtyStructure)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. The surface elements are released
// on the next flush. Disposing the stage root is not allowed; dispose the
// Stage instead.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	if n.stage != nil {
		panic("rowan: cannot dispose the stage root; dispose the Stage")
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.dirty = 0
	n.descendantDirty = false
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	if n.clip != nil {
		n.clip.dispose()
		n.clip = nil
	}
	n.children = nil
	n.mounted = nil
	n.Parent = nil
	n.Segments = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// root returns the topmost ancestor.
func (n *Node) root() *Node {
	p := n
	for p.Parent != nil {
		p = p.Parent
	}
	return p
}

// stageOf returns the owning stage, or nil while detached.
func (n *Node) stageOf() *Stage {
	return n.root().stage
}

func (n *Node) childIndex(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// detachChild severs child from n: journals the backend unmount of the
// child's subtree (if it ever flushed), prunes the surface mirror, splices
// the child list, and clears the parent link. Callers mark DirtyStructure.
func (n *Node) detachChild(child *Node) {
	if st := n.stageOf(); st != nil {
		st.journalUnmount(n, child)
	} else {
		// Detached tree fragments cannot carry surface state, but guard
		// against a subtree that was cut from a stage wholesale.
		severHandles(child, nil)
	}
	for i, c := range n.mounted {
		if c == child {
			copy(n.mounted[i:], n.mounted[i+1:])
			n.mounted[len(n.mounted)-1] = nil
			n.mounted = n.mounted[:len(n.mounted)-1]
			break
		}
	}
	i := n.childIndex(child)
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil
}

// severHandles clears the backend handles of node and all descendants.
// When a stage is given, each severed handle is journaled for destruction
// (the elements die with their subtree root, so no per-element RemoveChild
// is needed) and the node leaves the registry. A severed node flushes as a
// fresh creation if re-attached.
func severHandles(node *Node, st *Stage) {
	if node.handle != nil {
		if st != nil {
			st.journal = append(st.journal, removal{elem: node.handle})
			st.registry.remove(node.id)
		}
		node.handle = nil
	}
	node.mounted = node.mounted[:0]
	if node.clip != nil {
		severHandles(node.clip, st)
	}
	for _, child := range node.children {
		severHandles(child, st)
	}
}
