package rowan

import "testing"

func TestMarkDirtyPropagatesUp(t *testing.T) {
	root := NewContainer("root")
	mid := NewContainer("mid")
	leaf := NewCircle("leaf", 1)
	root.AddChild(mid)
	mid.AddChild(leaf)
	root.descendantDirty = false
	mid.descendantDirty = false
	leaf.dirty = 0

	leaf.MarkDirty(DirtyTransform)
	if leaf.Dirty() != DirtyTransform {
		t.Errorf("leaf dirty = %v", leaf.Dirty())
	}
	if !mid.descendantDirty || !root.descendantDirty {
		t.Error("descendant-dirty flag did not propagate to the root")
	}
	if mid.Dirty() != 0 {
		t.Error("ancestors must not inherit the node's own flags")
	}
}

func TestMarkDirtyStopsAtMarkedAncestor(t *testing.T) {
	root := NewContainer("root")
	mid := NewContainer("mid")
	leaf := NewCircle("leaf", 1)
	root.AddChild(mid)
	mid.AddChild(leaf)

	// Simulate a pending earlier mark at mid only: a second mark must not
	// walk above it.
	root.descendantDirty = false
	mid.descendantDirty = false
	leaf.MarkDirty(DirtyGeometry)
	root.descendantDirty = false

	leaf.MarkDirty(DirtyAppearance)
	if root.descendantDirty {
		t.Error("walk should have stopped at the already-marked ancestor")
	}
}

func TestIsDirty(t *testing.T) {
	n := NewContainer("n")
	c := NewCircle("c", 1)
	n.AddChild(c)
	if !n.IsDirty() {
		t.Error("structural mutation should dirty the parent")
	}
	n.clearDirty(DirtyAll)
	n.descendantDirty = false
	c.clearDirty(DirtyAll)
	if n.IsDirty() {
		t.Error("cleared tree should report clean")
	}
	c.SetFill(ColorBlack)
	if !n.IsDirty() {
		t.Error("descendant dirt should surface through IsDirty")
	}
}

func TestMarkDirtyZeroIsNoOp(t *testing.T) {
	root := NewContainer("root")
	c := NewCircle("c", 1)
	root.AddChild(c)
	root.descendantDirty = false
	c.MarkDirty(0)
	if root.descendantDirty {
		t.Error("MarkDirty(0) must not propagate")
	}
}

func TestDetachedMutationIsFree(t *testing.T) {
	// Mutating a node with no stage must not touch any backend; this is
	// just the absence of a crash plus flag accumulation.
	n := NewCircle("c", 1)
	n.SetPosition(1, 2)
	n.SetFill(ColorWhite)
	want := DirtyTransform | DirtyAppearance
	if n.Dirty()&want != want {
		t.Errorf("dirty = %v, want at least %v", n.Dirty(), want)
	}
}

func TestDirtyFlagsString(t *testing.T) {
	if got := DirtyFlags(0).String(); got != "clean" {
		t.Errorf("String() = %q, want clean", got)
	}
	if got := (DirtyGeometry | DirtyStructure).String(); got != "geometry|structure" {
		t.Errorf("String() = %q", got)
	}
	if got := DirtyTransform.String(); got != "transform" {
		t.Errorf("String() = %q", got)
	}
}

func TestDirtyFlagsHas(t *testing.T) {
	f := DirtyGeometry | DirtyAppearance
	if !f.Has(DirtyGeometry) {
		t.Error("Has(DirtyGeometry) = false")
	}
	if f.Has(DirtyGeometry | DirtyClip) {
		t.Error("Has should require all queried flags")
	}
}

func TestMarkSubtreeAttached(t *testing.T) {
	p := NewContainer("p")
	c := NewRect("c", 1, 1)
	p.AddChild(c)
	k := NewClip("k", nil)
	c.SetClip(k)
	p.dirty = 0
	c.dirty = 0
	k.dirty = 0
	p.descendantDirty = false

	markSubtreeAttached(p)
	if p.dirty&DirtyStructure == 0 || !p.descendantDirty {
		t.Error("parent should be marked for structure sync and descent")
	}
	if c.dirty&dirtyAttrs != dirtyAttrs {
		t.Error("child should be marked for full attribute flush")
	}
	if c.dirty&DirtyClip == 0 {
		t.Error("clipped child should be marked for clip flush")
	}
	if k.dirty&dirtyAttrs != dirtyAttrs {
		t.Error("clip node should be re-marked so its geometry flushes again")
	}
}
