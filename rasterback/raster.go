// Package rasterback renders a rowan scene graph to an image.RGBA with a
// CPU rasterizer, by wrapping rasterx.
//
// The surface is immediate-mode: every frame is regenerated in full, so
// attribute updates are not cheaper than structural ones. The backend
// therefore reports the uniform cost model and the stage charges one
// mutation unit for attribute operations too.
package rasterback

import (
	"image"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/rowangfx/rowan"
)

// element mirrors one scene node on the surface. The mirror keeps paint
// order; node state is read back at rasterization time.
type element struct {
	node     *rowan.Node
	parent   *element
	children []*element

	// img is the decoded pixel data of image nodes, nil while loading.
	img image.Image
}

func (e *element) detach() {
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

// ImageSource resolves image node source references. Load may complete
// synchronously or call done later from the same goroutine that drives the
// stage; the backend counts the load as pending until done runs.
type ImageSource interface {
	Load(ref string, done func(img image.Image, err error))
}

// Backend implements rowan.Backend on a CPU rasterizer.
type Backend struct {
	rowan.ResourceTracker

	width, height int
	root          *element
	source        ImageSource

	// OnResourceError is called when an image load fails. The failure is
	// an event only; rasterization continues and the node renders nothing.
	OnResourceError func(ref string, err error)
}

var _ rowan.Backend = (*Backend)(nil)
var _ rowan.CostModeler = (*Backend)(nil)

// New creates a backend rasterizing to the given pixel size.
func New(width, height int) *Backend {
	return &Backend{width: width, height: height}
}

// SetImageSource installs the resolver for image node sources.
func (b *Backend) SetImageSource(src ImageSource) {
	b.source = src
}

// CostModel reports the uniform model: the rasterizer regenerates the
// whole frame on any change.
func (b *Backend) CostModel() rowan.CostModel {
	return rowan.CostUniform
}

func (b *Backend) CreateElement(n *rowan.Node) rowan.Handle {
	return &element{node: n}
}

func (b *Backend) Mount(root rowan.Handle) {
	b.root = root.(*element)
}

func (b *Backend) Unmount(root rowan.Handle) {
	if b.root == root.(*element) {
		b.root = nil
	}
}

func (b *Backend) InsertChild(parent, child rowan.Handle, index int) {
	p := parent.(*element)
	c := child.(*element)
	c.detach()
	c.parent = p
	p.children = append(p.children, nil)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = c
}

func (b *Backend) RemoveChild(parent, child rowan.Handle) {
	child.(*element).detach()
}

func (b *Backend) DestroyElement(h rowan.Handle) {
	el := h.(*element)
	el.detach()
	el.children = nil
	el.img = nil
	el.node = nil
}

// ApplyAttributes reads nothing ahead of time except image pixels: the
// mirror holds node references and rasterization reads live state. Image
// sources kick off a (possibly asynchronous) load here.
func (b *Backend) ApplyAttributes(h rowan.Handle, n *rowan.Node, flags rowan.DirtyFlags) {
	if n.Type != rowan.NodeTypeImage || !flags.Has(rowan.DirtyGeometry) {
		return
	}
	el := h.(*element)
	el.img = nil
	if n.Source == "" || b.source == nil {
		return
	}
	ref := n.Source
	b.Begin()
	b.source.Load(ref, func(img image.Image, err error) {
		if err != nil {
			if b.OnResourceError != nil {
				b.OnResourceError(ref, err)
			}
		} else {
			el.img = img
		}
		b.End()
	})
}

// ApplyClip is a no-op: the rasterizer has no clip support and clipped
// content draws unclipped.
func (b *Backend) ApplyClip(target, clip rowan.Handle) {}

// Rasterize regenerates the frame from the mounted scene. Text nodes are
// skipped (shaping belongs to richer surfaces); clip nodes never enter the
// mirror tree.
func (b *Backend) Rasterize() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	if b.root == nil {
		return img
	}
	scanner := rasterx.NewScannerGV(b.width, b.height, img, img.Bounds())
	r := &raster{
		dst:     img,
		scanner: scanner,
		filler:  rasterx.NewFiller(b.width, b.height, scanner),
		dasher:  rasterx.NewDasher(b.width, b.height, scanner),
	}
	r.draw(b.root, identity)
	return img
}

// raster carries the per-frame rasterization state. The filler and dasher
// share one scanner; color is set on the scanner before each Draw.
type raster struct {
	dst     *image.RGBA
	scanner rasterx.Scanner
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
}

// affine is [a, b, c, d, tx, ty] in column-major 2x3 layout.
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func mul(p, c affine) affine {
	return affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

func localTransform(n *rowan.Node) affine {
	sin, cos := math.Sincos(n.Rotation)
	return affine{
		cos * n.ScaleX, sin * n.ScaleX,
		-sin * n.ScaleY, cos * n.ScaleY,
		n.X, n.Y,
	}
}

func (r *raster) draw(el *element, parent affine) {
	n := el.node
	if n == nil || !n.Visible {
		return
	}
	world := mul(parent, localTransform(n))
	switch n.Type {
	case rowan.NodeTypeRect:
		r.shape(n, world, rectSegments(n.Width, n.Height))
	case rowan.NodeTypeCircle:
		r.shape(n, world, ellipseSegments(n.Radius, n.Radius))
	case rowan.NodeTypeEllipse:
		r.shape(n, world, ellipseSegments(n.RadiusX, n.RadiusY))
	case rowan.NodeTypePath:
		r.shape(n, world, n.Segments)
	case rowan.NodeTypeImage:
		r.image(el, n, world)
	}
	for _, c := range el.children {
		r.draw(c, world)
	}
}

// shape fills and strokes one outline through the world transform.
func (r *raster) shape(n *rowan.Node, world affine, segments []rowan.PathSegment) {
	if !n.Fill.None() {
		feedPath(r.filler, world, segments)
		r.scanner.SetColor(rasterx.ApplyOpacity(n.Fill.RGBA(), n.Opacity))
		r.filler.Draw()
		r.filler.Clear()
	}
	if !n.Stroke.None() {
		r.dasher.SetStroke(toFixed(n.Stroke.Width), toFixed(4), rasterx.ButtCap, rasterx.ButtCap,
			rasterx.FlatGap, rasterx.Miter, nil, 0)
		feedPath(r.dasher, world, segments)
		r.scanner.SetColor(rasterx.ApplyOpacity(n.Stroke.Color.RGBA(), n.Opacity))
		r.dasher.Draw()
		r.dasher.Clear()
	}
}

// image blits a loaded image into the node's rectangle. Only the
// translation part of the transform applies; scaling goes through the
// node's declared size.
func (r *raster) image(el *element, n *rowan.Node, world affine) {
	if el.img == nil || n.Width <= 0 || n.Height <= 0 {
		return
	}
	x, y := world.apply(0, 0)
	rect := image.Rect(int(x), int(y), int(x+n.Width), int(y+n.Height))
	draw.ApproxBiLinear.Scale(r.dst, rect, el.img, el.img.Bounds(), draw.Over, nil)
}

// pathAdder is the path-feeding surface shared by rasterx fillers and
// dashers.
type pathAdder interface {
	Start(fixed.Point26_6)
	Line(fixed.Point26_6)
	QuadBezier(fixed.Point26_6, fixed.Point26_6)
	CubeBezier(fixed.Point26_6, fixed.Point26_6, fixed.Point26_6)
	Stop(bool)
}

// feedPath walks the segments into a rasterx path adder, transforming each
// point into device space.
func feedPath(a pathAdder, world affine, segments []rowan.PathSegment) {
	started := false
	for _, seg := range segments {
		switch seg.Kind {
		case rowan.SegMove:
			if started {
				a.Stop(false)
			}
			a.Start(fixedPoint(world, seg.X, seg.Y))
			started = true
		case rowan.SegLine:
			a.Line(fixedPoint(world, seg.X, seg.Y))
		case rowan.SegQuad:
			a.QuadBezier(fixedPoint(world, seg.X1, seg.Y1), fixedPoint(world, seg.X, seg.Y))
		case rowan.SegCubic:
			a.CubeBezier(fixedPoint(world, seg.X1, seg.Y1),
				fixedPoint(world, seg.X2, seg.Y2), fixedPoint(world, seg.X, seg.Y))
		case rowan.SegClose:
			if started {
				a.Stop(true)
				started = false
			}
		}
	}
	if started {
		a.Stop(true)
	}
}

func fixedPoint(world affine, x, y float64) fixed.Point26_6 {
	dx, dy := world.apply(x, y)
	return fixed.Point26_6{X: toFixed(dx), Y: toFixed(dy)}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// kappa approximates a quarter circle with one cubic bezier.
const kappa = 0.5522847498307936

// ellipseSegments builds an ellipse outline centered on the origin.
func ellipseSegments(rx, ry float64) []rowan.PathSegment {
	kx, ky := rx*kappa, ry*kappa
	return []rowan.PathSegment{
		rowan.MoveTo(rx, 0),
		rowan.CubicTo(rx, ky, kx, ry, 0, ry),
		rowan.CubicTo(-kx, ry, -rx, ky, -rx, 0),
		rowan.CubicTo(-rx, -ky, -kx, -ry, 0, -ry),
		rowan.CubicTo(kx, -ry, rx, -ky, rx, 0),
		rowan.ClosePath(),
	}
}

// rectSegments builds a rectangle outline anchored at the origin.
func rectSegments(w, h float64) []rowan.PathSegment {
	return []rowan.PathSegment{
		rowan.MoveTo(0, 0),
		rowan.LineTo(w, 0),
		rowan.LineTo(w, h),
		rowan.LineTo(0, h),
		rowan.ClosePath(),
	}
}
