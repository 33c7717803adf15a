package rowan

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenFill, TweenOpacity) and call Update(dt) each frame. The group writes
// the values and marks the node with the matching dirty flags, so the stage
// batches the resulting surface updates like any other mutation. If the
// target node is disposed, the group stops immediately.
//
// There is no global animation manager — users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	flags  DirtyFlags
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target
// fields, and marks the node dirty. If the target node has been disposed,
// Done is set to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	if g.target != nil {
		g.target.MarkDirty(g.flags)
	}
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing
// function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, flags: DirtyTransform}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY
// to the given target values over the specified duration using the easing
// function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node, flags: DirtyTransform}
	g.tweens[0] = gween.New(float32(node.ScaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.ScaleY), float32(toSY), duration, fn)
	g.fields[0] = &node.ScaleX
	g.fields[1] = &node.ScaleY
	return g
}

// TweenRotation creates a TweenGroup that animates node.Rotation to the
// target value over the specified duration using the easing function.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node, flags: DirtyTransform}
	g.tweens[0] = gween.New(float32(node.Rotation), float32(to), duration, fn)
	g.fields[0] = &node.Rotation
	return g
}

// TweenFill creates a TweenGroup that animates all four components of
// node.Fill (R, G, B, A) to the target color over the specified duration.
func TweenFill(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: node, flags: DirtyAppearance}
	g.tweens[0] = gween.New(float32(node.Fill.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(node.Fill.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(node.Fill.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(node.Fill.A), float32(to.A), duration, fn)
	g.fields[0] = &node.Fill.R
	g.fields[1] = &node.Fill.G
	g.fields[2] = &node.Fill.B
	g.fields[3] = &node.Fill.A
	return g
}

// TweenOpacity creates a TweenGroup that animates node.Opacity to the
// target value over the specified duration using the easing function.
func TweenOpacity(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node, flags: DirtyAppearance}
	g.tweens[0] = gween.New(float32(node.Opacity), float32(to), duration, fn)
	g.fields[0] = &node.Opacity
	return g
}
