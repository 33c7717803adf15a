package rowan

import (
	"fmt"
	"os"
)

// flushStats counts the backend operations of one flush pass.
// Only logged when the stage is in debug mode.
type flushStats struct {
	creates int
	moves   int
	removes int
	attrOps int
	clips   int
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and
// per-flush operation counts are logged to stderr.
func (st *Stage) SetDebugMode(enabled bool) {
	st.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Stage debug flag so that node
// operations (which lack a Stage pointer) can check it cheaply. Only valid
// with a single Stage; multiple Stages with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// debugLogFlush prints the operation counts of the pass that just ran.
func (st *Stage) debugLogFlush() {
	s := st.stats
	_, _ = fmt.Fprintf(os.Stderr,
		"[rowan] creates: %d | moves: %d | removes: %d | attrs: %d | clips: %d\n",
		s.creates, s.moves, s.removes, s.attrOps, s.clips)
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree operation. Only called in debug mode; release-mode
// callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("rowan debug: %s on disposed node %q (ID was %d)", op, n.Name, n.id))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[rowan] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[rowan] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
