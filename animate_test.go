package rowan

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	n := NewCircle("c", 1)
	g := TweenPosition(n, 100, 50, 1, ease.Linear)

	g.Update(0.5)
	if n.X != 50 || n.Y != 25 {
		t.Errorf("midpoint = (%v, %v), want (50, 25)", n.X, n.Y)
	}
	if n.Dirty()&DirtyTransform == 0 {
		t.Error("tween update should mark the transform dirty")
	}
	if g.Done {
		t.Error("tween should not be done at the midpoint")
	}

	g.Update(0.5)
	if n.X != 100 || n.Y != 50 {
		t.Errorf("endpoint = (%v, %v), want (100, 50)", n.X, n.Y)
	}
	if !g.Done {
		t.Error("tween should be done")
	}
}

func TestTweenOpacity(t *testing.T) {
	n := NewCircle("c", 1)
	n.Opacity = 1
	g := TweenOpacity(n, 0, 2, ease.Linear)
	g.Update(1)
	if n.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", n.Opacity)
	}
	if n.Dirty()&DirtyAppearance == 0 {
		t.Error("opacity tween should mark appearance dirty")
	}
}

func TestTweenFill(t *testing.T) {
	n := NewRect("r", 1, 1)
	n.Fill = ColorBlack
	g := TweenFill(n, ColorWhite, 1, ease.Linear)
	g.Update(1)
	if n.Fill.R != 1 || n.Fill.G != 1 || n.Fill.B != 1 {
		t.Errorf("Fill = %+v, want white", n.Fill)
	}
	if !g.Done {
		t.Error("tween should be done")
	}
}

func TestTweenStopsOnDisposedTarget(t *testing.T) {
	p := NewContainer("p")
	n := NewCircle("c", 1)
	p.AddChild(n)
	g := TweenPosition(n, 10, 10, 1, ease.Linear)
	g.Update(0.25)
	n.Dispose()

	before := n.X
	g.Update(0.25)
	if !g.Done {
		t.Error("tween should stop once the target is disposed")
	}
	if n.X != before {
		t.Error("tween must not write to a disposed node")
	}
}

func TestTweenUpdateAfterDone(t *testing.T) {
	n := NewCircle("c", 1)
	g := TweenRotation(n, 1, 0.5, ease.Linear)
	g.Update(1)
	if !g.Done {
		t.Fatal("tween should be done")
	}
	n.Rotation = 0
	g.Update(1)
	if n.Rotation != 0 {
		t.Error("finished group must not keep writing")
	}
}
