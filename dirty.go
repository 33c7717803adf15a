package rowan

import "strings"

// DirtyFlags records which categories of a node's state have changed since
// the last successful flush. Flags are additive; a flag is cleared only when
// the corresponding surface mutation has actually been applied by the
// backend, so an interrupted incremental flush leaves exactly the unfinished
// work behind.
type DirtyFlags uint8

const (
	// DirtyGeometry marks a change to the node's shape parameters
	// (size, radius, path data, text content, image source).
	DirtyGeometry DirtyFlags = 1 << iota

	// DirtyAppearance marks a change to fill, stroke, or opacity.
	DirtyAppearance

	// DirtyTransform marks a change to position, scale, or rotation.
	DirtyTransform

	// DirtyVisibility marks a change to the Visible flag.
	DirtyVisibility

	// DirtyClip marks a change to the node's clip reference or to the clip
	// node's own geometry. Clip flushes are deferred until the clipped
	// target has a backend element.
	DirtyClip

	// DirtyStructure marks a change to the node's child list: additions,
	// removals, or reordering.
	DirtyStructure
)

// DirtyAll is every flag at once. Used when a subtree is (re)attached and
// must be materialized from scratch.
const DirtyAll = DirtyGeometry | DirtyAppearance | DirtyTransform |
	DirtyVisibility | DirtyClip | DirtyStructure

// dirtyAttrs are the flags consumed by a single ApplyAttributes call.
const dirtyAttrs = DirtyGeometry | DirtyAppearance | DirtyTransform | DirtyVisibility

// Has reports whether all flags in other are set.
func (f DirtyFlags) Has(other DirtyFlags) bool {
	return f&other == other
}

// String returns a pipe-separated list of flag names, or "clean".
func (f DirtyFlags) String() string {
	if f == 0 {
		return "clean"
	}
	names := []struct {
		flag DirtyFlags
		name string
	}{
		{DirtyGeometry, "geometry"},
		{DirtyAppearance, "appearance"},
		{DirtyTransform, "transform"},
		{DirtyVisibility, "visibility"},
		{DirtyClip, "clip"},
		{DirtyStructure, "structure"},
	}
	var b strings.Builder
	for _, e := range names {
		if f&e.flag == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(e.name)
	}
	return b.String()
}

// MarkDirty turns on the given flags on n and marks a lightweight
// "has dirty descendant" flag on every ancestor up to the root, stopping
// early once an ancestor is already so marked. O(depth) worst case, O(1)
// amortized for repeated mutations to the same subtree.
//
// If the node belongs to a stage with an attached backend, the stage is
// notified and decides whether to flush now, on the next tick, or not at
// all (suspended).
func (n *Node) MarkDirty(flags DirtyFlags) {
	if flags == 0 {
		return
	}
	if globalDebug {
		debugCheckDisposed(n, "MarkDirty")
	}
	n.dirty |= flags
	p := n
	for p.Parent != nil {
		if p.Parent.descendantDirty {
			// An earlier mark already walked to the root and notified
			// the stage; that notification is still pending.
			return
		}
		p.Parent.descendantDirty = true
		p = p.Parent
	}
	if p.stage != nil {
		p.stage.invalidate()
	}
}

// IsDirty reports whether the node itself or any descendant carries dirty
// flags.
func (n *Node) IsDirty() bool {
	return n.dirty != 0 || n.descendantDirty
}

// Dirty returns the node's own dirty flags.
func (n *Node) Dirty() DirtyFlags {
	return n.dirty
}

// clearDirty turns off exactly the given flags. Called by the flush loop
// after the backend confirms the corresponding mutation; never before.
func (n *Node) clearDirty(flags DirtyFlags) {
	n.dirty &^= flags
}

// markSubtreeAttached sets the full dirty set on node and all descendants so
// the next flush materializes the whole subtree. Containers additionally get
// the descendant-dirty flag so the walk descends into them.
func markSubtreeAttached(node *Node) {
	node.dirty |= dirtyAttrs
	if node.clip != nil {
		// The clip element is rebuilt too, so its geometry must flush
		// again; its own flags were cleared by the previous flush.
		node.dirty |= DirtyClip
		node.clip.dirty |= dirtyAttrs
	}
	if len(node.children) > 0 {
		node.dirty |= DirtyStructure
		node.descendantDirty = true
	}
	for _, child := range node.children {
		markSubtreeAttached(child)
	}
}
