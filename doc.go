// Package rowan is a retained-mode scene graph for vector graphics with
// pluggable rendering backends.
//
// Rowan gives you a tree of drawable nodes, tracks exactly which parts of
// the tree changed, and flushes those changes to a display surface either
// all at once or incrementally under a per-tick mutation budget, so large
// scenes never block the host's event loop.
//
// # Quick start
//
//	stage := rowan.NewStage()
//	stage.SetBackend(svgback.New(400, 300))
//
//	circle := rowan.NewCircle("dot", 20)
//	circle.SetPosition(100, 80)
//	circle.SetFill(rowan.Color{R: 0.9, G: 0.2, B: 0.2, A: 1})
//	stage.Root().AddChild(circle)
//
// With an attached backend and no suspension, every mutation is flushed to
// the surface immediately. Batch related mutations with [Stage.Suspend] and
// [Stage.Resume], or switch to incremental mode so flushing happens in
// budgeted ticks:
//
//	stage.SetMode(rowan.ModeIncremental)
//	// ... mutate freely ...
//	for stage.TickPending() {
//		stage.Tick() // typically driven by the host's update loop
//	}
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Stage.Root]. Create nodes with typed constructors: [NewContainer],
// [NewRect], [NewCircle], [NewEllipse], [NewPath], [NewText], [NewImage],
// and [NewClip]. Child order is paint order.
//
// Nodes may be built and mutated freely while detached from the stage; they
// cost nothing until the first flush after attachment.
//
// # Backends
//
// A [Backend] translates flushed mutations into concrete surface
// operations. The rowan module ships three: svgback (an SVG element tree
// with byte serialization), rasterback (a CPU rasterizer producing
// image.RGBA), and ebitenback (an Ebitengine canvas). The scene API is
// identical across all of them.
//
// # Dirty tracking and budgets
//
// Each node records which categories of its state changed (geometry,
// appearance, transform, visibility, structure, clip) since the last flush.
// A flush walks only dirty subtrees. In incremental mode each tick performs
// at most a configured number of structural surface mutations
// ([Stage.SetMaxMutationsPerTick]); whatever does not fit stays dirty and is
// retried on the next tick, so the tree always converges without starving
// the host loop.
package rowan
