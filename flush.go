package rowan

// flushPass applies as much dirty state to the backend as the allocator
// permits. Order within a pass: journaled removals first (so the surface
// mirror stays consistent), then the root element if it has never been
// built, then a depth-first walk of dirty subtrees in paint order. Returns
// false when the budget ran out with work left; every flag already cleared
// corresponds to a mutation the backend really applied, so the next pass
// retries exactly the unfinished remainder.
func (st *Stage) flushPass(alloc Allocator) bool {
	st.stats = flushStats{}
	st.pendingClips = st.pendingClips[:0]
	if !st.drainJournal(alloc) {
		return false
	}
	if st.root.handle == nil {
		if !alloc.AcquireOne(OpCreate) {
			return false
		}
		st.backend.Mount(st.createHandle(st.root))
		st.stats.creates++
	}
	ok := st.flushNode(st.root, alloc)
	if st.debug {
		st.debugLogFlush()
	}
	return ok
}

// drainJournal applies recorded element unmounts. A third of the remaining
// budget is held back so that removals can never starve the creations and
// moves that follow in the same tick.
func (st *Stage) drainJournal(alloc Allocator) bool {
	if len(st.journal) == 0 {
		return true
	}
	res := alloc.ReserveFraction()
	ok := true
	i := 0
	for ; i < len(st.journal); i++ {
		e := st.journal[i]
		if e.detach {
			if !alloc.AcquireOne(OpRemove) {
				ok = false
				break
			}
			st.backend.RemoveChild(e.parent, e.elem)
			st.stats.removes++
		}
		st.backend.DestroyElement(e.elem)
	}
	st.journal = st.journal[:copy(st.journal, st.journal[i:])]
	alloc.Release(res, 0)
	return ok
}

// flushNode applies n's own dirty state, syncs its child elements, flushes
// any deferred clips, and then descends into dirty children. n always has
// a backend element on entry: the root is built by flushPass and children
// are materialized by their parent's structure sync before the walk
// reaches them.
func (st *Stage) flushNode(n *Node, alloc Allocator) bool {
	if flags := n.dirty & dirtyAttrs; flags != 0 {
		if !alloc.AcquireOne(OpAttributes) {
			return false
		}
		st.backend.ApplyAttributes(n.handle, n, flags)
		n.clearDirty(flags)
		st.stats.attrOps++
	}
	if n.dirty&DirtyStructure != 0 {
		if !st.syncChildren(n, alloc) {
			return false
		}
		n.clearDirty(DirtyStructure)
	}
	if n.dirty&DirtyClip != 0 || (n.clip != nil && n.clip.dirty != 0) {
		st.pendingClips = append(st.pendingClips, n)
	}
	// Deferred clips flush immediately after their target's own mutations,
	// within the same tick, now that the target has an element.
	if !st.flushClips(alloc) {
		return false
	}
	if n.descendantDirty {
		for _, c := range n.children {
			if c.dirty == 0 && !c.descendantDirty {
				continue
			}
			if !st.flushNode(c, alloc) {
				return false
			}
		}
		n.descendantDirty = false
	}
	return true
}

// syncChildren reconciles the surface child order with n.children
// (insertion order = paint order). Each missing element costs one
// structural unit to materialize; each out-of-place element costs one unit
// to move. Idempotent: elements already in position are skipped, so an
// interrupted sync resumes where it stopped.
func (st *Stage) syncChildren(n *Node, alloc Allocator) bool {
	for i, c := range n.children {
		if c.handle == nil {
			if !alloc.AcquireOne(OpCreate) {
				return false
			}
			st.createHandle(c)
			st.backend.InsertChild(n.handle, c.handle, i)
			mountedInsert(n, c, i)
			st.stats.creates++
			continue
		}
		if i < len(n.mounted) && n.mounted[i] == c {
			continue
		}
		if !alloc.AcquireOne(OpInsert) {
			return false
		}
		st.backend.InsertChild(n.handle, c.handle, i)
		mountedRemove(n, c)
		mountedInsert(n, c, i)
		st.stats.moves++
	}
	return true
}

// flushClips drains the pending-clip queue in order. A clip element is
// created on first use (one structural unit, mounted wherever the backend
// keeps clip definitions), its geometry applied, and the target bound to
// it. A cleared clip unbinds the target.
func (st *Stage) flushClips(alloc Allocator) bool {
	for len(st.pendingClips) > 0 {
		target := st.pendingClips[0]
		clip := target.clip
		if clip == nil {
			if !alloc.AcquireOne(OpAttributes) {
				return false
			}
			st.backend.ApplyClip(target.handle, nil)
		} else {
			if clip.handle == nil {
				if !alloc.AcquireOne(OpCreate) {
					return false
				}
				st.createHandle(clip)
				st.stats.creates++
			}
			if flags := clip.dirty & dirtyAttrs; flags != 0 {
				if !alloc.AcquireOne(OpAttributes) {
					return false
				}
				st.backend.ApplyAttributes(clip.handle, clip, flags)
				clip.clearDirty(flags)
				st.stats.attrOps++
			}
			st.backend.ApplyClip(target.handle, clip.handle)
		}
		target.clearDirty(DirtyClip)
		st.stats.clips++
		copy(st.pendingClips, st.pendingClips[1:])
		st.pendingClips = st.pendingClips[:len(st.pendingClips)-1]
	}
	return true
}

func mountedInsert(n *Node, c *Node, i int) {
	n.mounted = append(n.mounted, nil)
	copy(n.mounted[i+1:], n.mounted[i:])
	n.mounted[i] = c
}

func mountedRemove(n *Node, c *Node) {
	for i, m := range n.mounted {
		if m == c {
			copy(n.mounted[i:], n.mounted[i+1:])
			n.mounted[len(n.mounted)-1] = nil
			n.mounted = n.mounted[:len(n.mounted)-1]
			return
		}
	}
}
