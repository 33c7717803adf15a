// Package svgback renders a rowan scene graph into a retained SVG element
// tree that can be serialized to bytes at any time.
//
// The surface is tree-shaped, so the backend reports the structural cost
// model: element creation, insertion, and removal each consume one mutation
// unit of the stage's budget, while attribute updates are free.
package svgback

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rowangfx/rowan"
)

// Element is one node of the retained SVG tree. Exposed for read-back by
// exporters and tests; mutate it only through the backend.
type Element struct {
	Tag   string
	Attrs map[string]string

	// Text is the character data of text elements.
	Text string

	parent   *Element
	children []*Element

	// inner is the geometry carrier of composite elements (the path inside
	// a clipPath).
	inner *Element
}

// Children returns the child elements in paint order. The returned slice
// MUST NOT be mutated by the caller.
func (e *Element) Children() []*Element {
	return e.children
}

// Attr returns the named attribute, or "".
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

func (e *Element) detach() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			copy(p.children[i:], p.children[i+1:])
			p.children[len(p.children)-1] = nil
			p.children = p.children[:len(p.children)-1]
			break
		}
	}
	e.parent = nil
}

func (e *Element) insertAt(child *Element, index int) {
	child.parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
}

// Stats counts the surface operations performed since the backend was
// created. Useful for budget assertions and diagnostics.
type Stats struct {
	Creates  int
	Inserts  int
	Removes  int
	Destroys int
	AttrOps  int
}

// Backend implements rowan.Backend on an in-memory SVG document.
type Backend struct {
	rowan.ResourceTracker

	doc  *Element // <svg> host container
	defs *Element // clip definitions

	// Stats accumulates operation counts; callers may reset it freely.
	Stats Stats
}

var _ rowan.Backend = (*Backend)(nil)
var _ rowan.CostModeler = (*Backend)(nil)

// New creates a backend over a fresh SVG document of the given pixel size.
func New(width, height float64) *Backend {
	doc := &Element{
		Tag: "svg",
		Attrs: map[string]string{
			"xmlns":   "http://www.w3.org/2000/svg",
			"width":   fmtFloat(width),
			"height":  fmtFloat(height),
			"viewBox": "0 0 " + fmtFloat(width) + " " + fmtFloat(height),
		},
	}
	defs := &Element{Tag: "defs"}
	doc.insertAt(defs, 0)
	return &Backend{doc: doc, defs: defs}
}

// Doc returns the document element for read-back.
func (b *Backend) Doc() *Element {
	return b.doc
}

// CostModel reports the structural model: attribute updates on an SVG tree
// do not create nodes and are free.
func (b *Backend) CostModel() rowan.CostModel {
	return rowan.CostStructural
}

// CreateElement builds the SVG element for n, including the inner geometry
// carrier of clipPath elements.
func (b *Backend) CreateElement(n *rowan.Node) rowan.Handle {
	b.Stats.Creates++
	el := &Element{
		Tag:   tagFor(n.Type),
		Attrs: map[string]string{"id": elementID(n)},
	}
	if n.Type == rowan.NodeTypeClip {
		el.inner = &Element{Tag: "path", Attrs: map[string]string{}}
		el.insertAt(el.inner, 0)
	}
	return el
}

// Mount attaches the stage root element to the document, moving it if it is
// already attached elsewhere.
func (b *Backend) Mount(root rowan.Handle) {
	el := root.(*Element)
	if el.parent == b.doc {
		return
	}
	el.detach()
	b.doc.insertAt(el, len(b.doc.children))
}

// Unmount detaches the stage root element from the document.
func (b *Backend) Unmount(root rowan.Handle) {
	root.(*Element).detach()
}

// InsertChild places child at the given paint-order index under parent.
// The index addresses parent's children after child has left its old slot
// (insert-or-move, like DOM insertBefore).
func (b *Backend) InsertChild(parent, child rowan.Handle, index int) {
	b.Stats.Inserts++
	p := parent.(*Element)
	c := child.(*Element)
	c.detach()
	// The first slot of the document root is <defs>; node children of the
	// root itself are never inserted here, so index maps directly.
	p.insertAt(c, index)
}

// RemoveChild detaches child from parent.
func (b *Backend) RemoveChild(parent, child rowan.Handle) {
	b.Stats.Removes++
	child.(*Element).detach()
}

// DestroyElement releases a detached element. clipPath elements parked in
// <defs> are unlinked here.
func (b *Backend) DestroyElement(h rowan.Handle) {
	b.Stats.Destroys++
	el := h.(*Element)
	el.detach()
	el.children = nil
	el.inner = nil
}

// ApplyAttributes copies the node state selected by flags onto the element.
func (b *Backend) ApplyAttributes(h rowan.Handle, n *rowan.Node, flags rowan.DirtyFlags) {
	b.Stats.AttrOps++
	el := h.(*Element)
	if flags.Has(rowan.DirtyGeometry) {
		applyGeometry(el, n)
	}
	if flags.Has(rowan.DirtyTransform) {
		if t := transformAttr(n); t == "" {
			delete(el.Attrs, "transform")
		} else {
			el.Attrs["transform"] = t
		}
	}
	if flags.Has(rowan.DirtyAppearance) {
		applyAppearance(el, n)
	}
	if flags.Has(rowan.DirtyVisibility) {
		if n.Visible {
			delete(el.Attrs, "display")
		} else {
			el.Attrs["display"] = "none"
		}
	}
}

// ApplyClip binds target to the clip element (parking the clipPath under
// <defs> on first use), or unbinds with a nil clip.
func (b *Backend) ApplyClip(target, clip rowan.Handle) {
	t := target.(*Element)
	if clip == nil {
		delete(t.Attrs, "clip-path")
		return
	}
	c := clip.(*Element)
	if c.parent == nil {
		b.defs.insertAt(c, len(b.defs.children))
	}
	t.Attrs["clip-path"] = "url(#" + c.Attrs["id"] + ")"
}

// --- attribute builders ---

func tagFor(t rowan.NodeType) string {
	switch t {
	case rowan.NodeTypeContainer:
		return "g"
	case rowan.NodeTypeRect:
		return "rect"
	case rowan.NodeTypeCircle:
		return "circle"
	case rowan.NodeTypeEllipse:
		return "ellipse"
	case rowan.NodeTypePath:
		return "path"
	case rowan.NodeTypeText:
		return "text"
	case rowan.NodeTypeImage:
		return "image"
	case rowan.NodeTypeClip:
		return "clipPath"
	}
	panic(fmt.Sprintf("svgback: unknown node type %d", t))
}

func elementID(n *rowan.Node) string {
	return "n" + strconv.FormatUint(uint64(n.NodeID()), 10)
}

func applyGeometry(el *Element, n *rowan.Node) {
	switch n.Type {
	case rowan.NodeTypeRect:
		el.Attrs["width"] = fmtFloat(n.Width)
		el.Attrs["height"] = fmtFloat(n.Height)
	case rowan.NodeTypeCircle:
		el.Attrs["r"] = fmtFloat(n.Radius)
	case rowan.NodeTypeEllipse:
		el.Attrs["rx"] = fmtFloat(n.RadiusX)
		el.Attrs["ry"] = fmtFloat(n.RadiusY)
	case rowan.NodeTypePath:
		el.Attrs["d"] = PathData(n.Segments)
	case rowan.NodeTypeText:
		el.Text = n.Text
	case rowan.NodeTypeImage:
		el.Attrs["href"] = n.Source
		el.Attrs["width"] = fmtFloat(n.Width)
		el.Attrs["height"] = fmtFloat(n.Height)
	case rowan.NodeTypeClip:
		el.inner.Attrs["d"] = PathData(n.Segments)
	}
}

func applyAppearance(el *Element, n *rowan.Node) {
	if n.Fill.None() {
		el.Attrs["fill"] = "none"
		delete(el.Attrs, "fill-opacity")
	} else {
		el.Attrs["fill"] = hexColor(n.Fill)
		if n.Fill.A < 1 {
			el.Attrs["fill-opacity"] = fmtFloat(n.Fill.A)
		} else {
			delete(el.Attrs, "fill-opacity")
		}
	}
	if n.Stroke.None() {
		delete(el.Attrs, "stroke")
		delete(el.Attrs, "stroke-width")
		delete(el.Attrs, "stroke-opacity")
	} else {
		el.Attrs["stroke"] = hexColor(n.Stroke.Color)
		el.Attrs["stroke-width"] = fmtFloat(n.Stroke.Width)
		if n.Stroke.Color.A < 1 {
			el.Attrs["stroke-opacity"] = fmtFloat(n.Stroke.Color.A)
		} else {
			delete(el.Attrs, "stroke-opacity")
		}
	}
	if n.Opacity < 1 {
		el.Attrs["opacity"] = fmtFloat(n.Opacity)
	} else {
		delete(el.Attrs, "opacity")
	}
}

// transformAttr composes the SVG transform list, or "" for identity.
func transformAttr(n *rowan.Node) string {
	var s string
	if n.X != 0 || n.Y != 0 {
		s = "translate(" + fmtFloat(n.X) + " " + fmtFloat(n.Y) + ")"
	}
	if n.Rotation != 0 {
		if s != "" {
			s += " "
		}
		s += "rotate(" + fmtFloat(n.Rotation*180/math.Pi) + ")"
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		if s != "" {
			s += " "
		}
		s += "scale(" + fmtFloat(n.ScaleX) + " " + fmtFloat(n.ScaleY) + ")"
	}
	return s
}

// PathData renders path segments as an SVG path data string.
func PathData(segments []rowan.PathSegment) string {
	var s string
	for i, seg := range segments {
		if i > 0 {
			s += " "
		}
		switch seg.Kind {
		case rowan.SegMove:
			s += "M " + fmtFloat(seg.X) + " " + fmtFloat(seg.Y)
		case rowan.SegLine:
			s += "L " + fmtFloat(seg.X) + " " + fmtFloat(seg.Y)
		case rowan.SegQuad:
			s += "Q " + fmtFloat(seg.X1) + " " + fmtFloat(seg.Y1) +
				" " + fmtFloat(seg.X) + " " + fmtFloat(seg.Y)
		case rowan.SegCubic:
			s += "C " + fmtFloat(seg.X1) + " " + fmtFloat(seg.Y1) +
				" " + fmtFloat(seg.X2) + " " + fmtFloat(seg.Y2) +
				" " + fmtFloat(seg.X) + " " + fmtFloat(seg.Y)
		case rowan.SegClose:
			s += "Z"
		}
	}
	return s
}

func hexColor(c rowan.Color) string {
	r := uint8(clamp01(c.R)*255 + 0.5)
	g := uint8(clamp01(c.G)*255 + 0.5)
	bl := uint8(clamp01(c.B)*255 + 0.5)
	return fmt.Sprintf("#%02x%02x%02x", r, g, bl)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
