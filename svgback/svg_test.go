package svgback

import (
	"strconv"
	"strings"
	"testing"

	"github.com/rowangfx/rowan"
)

func newScene(t *testing.T) (*rowan.Stage, *Backend) {
	t.Helper()
	st := rowan.NewStage()
	b := New(200, 100)
	st.SetBackend(b)
	return st, b
}

// rootEl returns the element mirroring the stage root.
func rootEl(t *testing.T, b *Backend) *Element {
	t.Helper()
	kids := b.Doc().Children()
	// Index 0 is <defs>; the stage root mounts after it.
	if len(kids) < 2 {
		t.Fatal("stage root element not mounted")
	}
	return kids[1]
}

func TestNewDocument(t *testing.T) {
	b := New(200, 100)
	doc := b.Doc()
	if doc.Tag != "svg" {
		t.Errorf("Tag = %q, want svg", doc.Tag)
	}
	if got := doc.Attr("viewBox"); got != "0 0 200 100" {
		t.Errorf("viewBox = %q", got)
	}
	if doc.Attr("xmlns") == "" {
		t.Error("xmlns missing")
	}
	if len(doc.Children()) != 1 || doc.Children()[0].Tag != "defs" {
		t.Error("document should start with a defs element")
	}
}

func TestTagMapping(t *testing.T) {
	st, b := newScene(t)
	st.Root().AddChild(rowan.NewRect("r", 10, 20))
	st.Root().AddChild(rowan.NewCircle("c", 5))
	st.Root().AddChild(rowan.NewEllipse("e", 4, 3))
	st.Root().AddChild(rowan.NewPath("p", []rowan.PathSegment{rowan.MoveTo(0, 0)}))
	st.Root().AddChild(rowan.NewText("t", "hi"))
	st.Root().AddChild(rowan.NewImage("i", "a.png", 8, 8))

	want := []string{"rect", "circle", "ellipse", "path", "text", "image"}
	kids := rootEl(t, b).Children()
	if len(kids) != len(want) {
		t.Fatalf("children = %d, want %d", len(kids), len(want))
	}
	for i, tag := range want {
		if kids[i].Tag != tag {
			t.Errorf("child %d tag = %q, want %q", i, kids[i].Tag, tag)
		}
	}
}

func TestGeometryAttributes(t *testing.T) {
	st, b := newScene(t)
	st.Root().AddChild(rowan.NewRect("r", 10, 20))
	st.Root().AddChild(rowan.NewCircle("c", 7))

	kids := rootEl(t, b).Children()
	if got := kids[0].Attr("width"); got != "10" {
		t.Errorf("rect width = %q", got)
	}
	if got := kids[0].Attr("height"); got != "20" {
		t.Errorf("rect height = %q", got)
	}
	if got := kids[1].Attr("r"); got != "7" {
		t.Errorf("circle r = %q", got)
	}
}

func TestAppearanceAttributes(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 10, 10)
	st.Root().AddChild(r)
	r.SetFill(rowan.Color{R: 1, G: 0.5, B: 0, A: 0.5})
	r.SetStroke(rowan.Stroke{Color: rowan.ColorBlack, Width: 2})

	el := rootEl(t, b).Children()[0]
	if got := el.Attr("fill"); got != "#ff8000" {
		t.Errorf("fill = %q", got)
	}
	if got := el.Attr("fill-opacity"); got != "0.5" {
		t.Errorf("fill-opacity = %q", got)
	}
	if got := el.Attr("stroke"); got != "#000000" {
		t.Errorf("stroke = %q", got)
	}
	if got := el.Attr("stroke-width"); got != "2" {
		t.Errorf("stroke-width = %q", got)
	}

	// Defaults delete their attributes again.
	r.SetFill(rowan.Color{})
	r.SetStroke(rowan.Stroke{})
	if got := el.Attr("fill"); got != "none" {
		t.Errorf("cleared fill = %q, want none", got)
	}
	if el.Attr("stroke") != "" || el.Attr("stroke-width") != "" {
		t.Error("cleared stroke should drop its attributes")
	}
}

func TestTransformAttribute(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 10, 10)
	st.Root().AddChild(r)
	el := rootEl(t, b).Children()[0]

	if el.Attr("transform") != "" {
		t.Errorf("identity transform should be absent, got %q", el.Attr("transform"))
	}
	r.SetPosition(5, 6)
	if got := el.Attr("transform"); got != "translate(5 6)" {
		t.Errorf("transform = %q", got)
	}
	r.SetScale(2, 2)
	if got := el.Attr("transform"); got != "translate(5 6) scale(2 2)" {
		t.Errorf("transform = %q", got)
	}
	r.SetPosition(0, 0)
	r.SetScale(1, 1)
	if el.Attr("transform") != "" {
		t.Error("identity transform should be deleted")
	}
}

func TestVisibilityAttribute(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 10, 10)
	st.Root().AddChild(r)
	el := rootEl(t, b).Children()[0]

	r.SetVisible(false)
	if got := el.Attr("display"); got != "none" {
		t.Errorf("display = %q, want none", got)
	}
	r.SetVisible(true)
	if el.Attr("display") != "" {
		t.Error("display should be deleted when visible")
	}
}

func TestPathData(t *testing.T) {
	segs := []rowan.PathSegment{
		rowan.MoveTo(0, 0),
		rowan.LineTo(10, 0),
		rowan.QuadTo(15, 5, 10, 10),
		rowan.CubicTo(8, 12, 2, 12, 0, 10),
		rowan.ClosePath(),
	}
	want := "M 0 0 L 10 0 Q 15 5 10 10 C 8 12 2 12 0 10 Z"
	if got := PathData(segs); got != want {
		t.Errorf("PathData = %q, want %q", got, want)
	}
}

func TestClipParkedUnderDefs(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 10, 10)
	st.Root().AddChild(r)
	clip := rowan.NewClip("k", []rowan.PathSegment{
		rowan.MoveTo(0, 0), rowan.LineTo(5, 0), rowan.LineTo(5, 5), rowan.ClosePath(),
	})
	r.SetClip(clip)

	defs := b.Doc().Children()[0]
	if len(defs.Children()) != 1 {
		t.Fatalf("defs has %d children, want 1", len(defs.Children()))
	}
	cp := defs.Children()[0]
	if cp.Tag != "clipPath" {
		t.Errorf("tag = %q, want clipPath", cp.Tag)
	}
	if len(cp.Children()) != 1 || cp.Children()[0].Tag != "path" {
		t.Fatal("clipPath should carry an inner path")
	}
	if cp.Children()[0].Attr("d") == "" {
		t.Error("clip geometry missing")
	}

	el := rootEl(t, b).Children()[0]
	if got := el.Attr("clip-path"); got != "url(#"+cp.Attr("id")+")" {
		t.Errorf("clip-path = %q", got)
	}

	r.SetClip(nil)
	if el.Attr("clip-path") != "" {
		t.Error("clip-path should be removed on clear")
	}
}

func TestReattachKeepsClipGeometry(t *testing.T) {
	st, _ := newScene(t)
	r := rowan.NewRect("r", 10, 10)
	st.Root().AddChild(r)
	r.SetClip(rowan.NewClip("k", []rowan.PathSegment{
		rowan.MoveTo(0, 0), rowan.LineTo(5, 0), rowan.LineTo(5, 5), rowan.ClosePath(),
	}))

	// Move the whole scene to a fresh surface.
	st.SetBackend(nil)
	b2 := New(200, 100)
	st.SetBackend(b2)

	defs := b2.Doc().Children()[0]
	if len(defs.Children()) != 1 {
		t.Fatalf("defs has %d children, want 1", len(defs.Children()))
	}
	cp := defs.Children()[0]
	if got := cp.Children()[0].Attr("d"); got == "" {
		t.Fatal("rebuilt clipPath lost its geometry")
	}
	el := rootEl(t, b2).Children()[0]
	if got := el.Attr("clip-path"); got != "url(#"+cp.Attr("id")+")" {
		t.Errorf("clip-path = %q", got)
	}
}

func TestReorderAndRemove(t *testing.T) {
	st, b := newScene(t)
	a := rowan.NewCircle("a", 1)
	c := rowan.NewCircle("c", 1)
	st.Root().AddChild(a)
	st.Root().AddChild(c)
	root := rootEl(t, b)

	st.Root().SetChildIndex(c, 0)
	if root.Children()[0].Attr("id") != "n"+itoa(c.NodeID()) {
		t.Error("reorder not reflected on the surface")
	}
	st.Root().RemoveChild(a)
	if len(root.Children()) != 1 {
		t.Errorf("children = %d, want 1 after removal", len(root.Children()))
	}
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestBytes(t *testing.T) {
	st, b := newScene(t)
	r := rowan.NewRect("r", 10, 20)
	st.Root().AddChild(r)
	r.SetFill(rowan.ColorBlack)
	r.SetPosition(1, 2)

	out := string(b.Bytes())
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("missing XML header")
	}
	for _, want := range []string{
		`<svg `,
		`viewBox="0 0 200 100"`,
		`<defs/>`,
		`<rect `,
		`width="10"`,
		`height="20"`,
		`fill="#000000"`,
		`transform="translate(1 2)"`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBytesEscapesText(t *testing.T) {
	st, b := newScene(t)
	st.Root().AddChild(rowan.NewText("t", `a < b & "c"`))
	out := string(b.Bytes())
	if !strings.Contains(out, "a &lt; b &amp;") {
		t.Errorf("text not escaped:\n%s", out)
	}
}

func TestStatsCount(t *testing.T) {
	st, b := newScene(t)
	b.Stats = Stats{}
	st.Root().AddChild(rowan.NewCircle("a", 1))
	if b.Stats.Creates != 1 || b.Stats.Inserts != 1 {
		t.Errorf("stats = %+v, want 1 create and 1 insert", b.Stats)
	}
}
