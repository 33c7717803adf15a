package rasterback

import (
	"errors"
	"image"
	"testing"

	"github.com/rowangfx/rowan"
)

func newScene(t *testing.T) (*rowan.Stage, *Backend) {
	t.Helper()
	st := rowan.NewStage()
	b := New(64, 64)
	st.SetBackend(b)
	return st, b
}

func TestCostModelUniform(t *testing.T) {
	if got := New(8, 8).CostModel(); got != rowan.CostUniform {
		t.Errorf("CostModel = %d, want CostUniform", got)
	}
}

func TestRasterizeEmpty(t *testing.T) {
	b := New(16, 16)
	img := b.Rasterize()
	if got := img.Bounds(); got != image.Rect(0, 0, 16, 16) {
		t.Errorf("bounds = %v", got)
	}
}

func TestRasterizeFilledRect(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 32, 32)
	st.Root().AddChild(r)
	r.SetPosition(16, 16)
	r.SetFill(rowan.Color{R: 1, A: 1})

	img := b.Rasterize()
	// Center of the rect is solidly red; a corner of the frame is empty.
	if c := img.RGBAAt(32, 32); c.R < 200 || c.A < 200 {
		t.Errorf("center pixel = %v, want solid red", c)
	}
	if c := img.RGBAAt(2, 2); c.A != 0 {
		t.Errorf("corner pixel = %v, want transparent", c)
	}
}

func TestRasterizeCircle(t *testing.T) {
	st, b := newScene(t)
	c := rowan.NewCircle("c", 10)
	st.Root().AddChild(c)
	c.SetPosition(32, 32)
	c.SetFill(rowan.ColorBlack)

	img := b.Rasterize()
	if px := img.RGBAAt(32, 32); px.A < 200 {
		t.Errorf("circle center = %v, want opaque", px)
	}
	// A point well outside the radius stays empty.
	if px := img.RGBAAt(32, 10); px.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", px)
	}
}

func TestInvisibleNodeSkipped(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 64, 64)
	st.Root().AddChild(r)
	r.SetFill(rowan.ColorBlack)
	r.SetVisible(false)

	img := b.Rasterize()
	if px := img.RGBAAt(32, 32); px.A != 0 {
		t.Errorf("invisible node drew %v", px)
	}
}

func TestOpacityApplied(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 64, 64)
	st.Root().AddChild(r)
	r.SetFill(rowan.ColorBlack)
	r.SetOpacity(0.5)

	img := b.Rasterize()
	px := img.RGBAAt(32, 32)
	if px.A < 100 || px.A > 160 {
		t.Errorf("alpha = %d, want roughly half", px.A)
	}
}

func TestMirrorFollowsRemoval(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 64, 64)
	st.Root().AddChild(r)
	r.SetFill(rowan.ColorBlack)
	st.Root().RemoveChild(r)

	img := b.Rasterize()
	if px := img.RGBAAt(32, 32); px.A != 0 {
		t.Errorf("removed node still drew %v", px)
	}
}

// stubSource resolves loads on demand rather than synchronously.
type stubSource struct {
	pending map[string]func(image.Image, error)
}

func (s *stubSource) Load(ref string, done func(image.Image, error)) {
	if s.pending == nil {
		s.pending = make(map[string]func(image.Image, error))
	}
	s.pending[ref] = done
}

func (s *stubSource) resolve(ref string, img image.Image, err error) {
	done := s.pending[ref]
	delete(s.pending, ref)
	done(img, err)
}

func TestImageLoadPending(t *testing.T) {
	st, b := newScene(t)
	src := &stubSource{}
	b.SetImageSource(src)

	settled := 0
	st.OnSettled = func() { settled++ }
	st.Root().AddChild(rowan.NewImage("i", "pic.png", 16, 16))

	if got := b.PendingResources(); got != 1 {
		t.Fatalf("PendingResources = %d, want 1", got)
	}
	if settled != 0 {
		t.Fatal("settled fired before the image loaded")
	}

	pix := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range pix.Pix {
		pix.Pix[i] = 0xff
	}
	src.resolve("pic.png", pix, nil)
	if b.PendingResources() != 0 {
		t.Error("load should have completed")
	}
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}

	img := b.Rasterize()
	if px := img.RGBAAt(8, 8); px.A == 0 {
		t.Errorf("image did not draw, pixel = %v", px)
	}
}

func TestImageLoadError(t *testing.T) {
	st, b := newScene(t)
	src := &stubSource{}
	b.SetImageSource(src)
	var gotRef string
	b.OnResourceError = func(ref string, err error) { gotRef = ref }

	st.Root().AddChild(rowan.NewImage("i", "missing.png", 16, 16))
	src.resolve("missing.png", nil, errors.New("not found"))

	if gotRef != "missing.png" {
		t.Errorf("error callback ref = %q", gotRef)
	}
	if b.PendingResources() != 0 {
		t.Error("failed load must still settle the counter")
	}
	// Rasterization carries on; the node just renders nothing.
	b.Rasterize()
}
