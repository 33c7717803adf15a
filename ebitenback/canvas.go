// Package ebitenback renders a rowan scene graph onto an Ebitengine image.
//
// The surface is immediate-mode: Draw regenerates the whole frame from the
// mounted scene, so the backend reports the uniform cost model. Integrate
// it with an ebiten.Game by forwarding Stage.Tick from Update and Draw
// from Draw.
package ebitenback

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/rowangfx/rowan"
)

// whitePixel is a 1x1 white image used as the source for solid triangles.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}

// element mirrors one scene node on the surface in paint order.
type element struct {
	node     *rowan.Node
	parent   *element
	children []*element
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

// Backend implements rowan.Backend on an Ebitengine canvas.
type Backend struct {
	rowan.ResourceTracker

	root    *element
	resolve func(ref string) *ebiten.Image
}

var _ rowan.Backend = (*Backend)(nil)
var _ rowan.CostModeler = (*Backend)(nil)

// New creates an ebiten canvas backend.
func New() *Backend {
	return &Backend{}
}

// SetImageResolver installs the lookup for image node sources. Resolution
// is synchronous; a nil or missing result draws nothing.
func (b *Backend) SetImageResolver(fn func(ref string) *ebiten.Image) {
	b.resolve = fn
}

// CostModel reports the uniform model: the canvas redraws every frame.
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
	el.node = nil
}

// ApplyAttributes is a no-op: the mirror reads live node state at draw
// time.
func (b *Backend) ApplyAttributes(h rowan.Handle, n *rowan.Node, flags rowan.DirtyFlags) {}

// ApplyClip is a no-op: the canvas draws clipped content unclipped.
func (b *Backend) ApplyClip(target, clip rowan.Handle) {}

// Draw regenerates the frame onto screen.
func (b *Backend) Draw(screen *ebiten.Image) {
	if b.root == nil {
		return
	}
	b.drawElement(screen, b.root, identity)
}

// affine is [a, b, c, d, tx, ty].
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

func (m affine) apply(x, y float64) (float32, float32) {
	return float32(m[0]*x + m[2]*y + m[4]), float32(m[1]*x + m[3]*y + m[5])
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

func (b *Backend) drawElement(dst *ebiten.Image, el *element, parent affine) {
	n := el.node
	if n == nil || !n.Visible {
		return
	}
	world := mul(parent, localTransform(n))
	switch n.Type {
	case rowan.NodeTypeRect:
		drawShape(dst, n, world, rectSegments(n.Width, n.Height))
	case rowan.NodeTypeCircle:
		drawShape(dst, n, world, ellipseSegments(n.Radius, n.Radius))
	case rowan.NodeTypeEllipse:
		drawShape(dst, n, world, ellipseSegments(n.RadiusX, n.RadiusY))
	case rowan.NodeTypePath:
		drawShape(dst, n, world, n.Segments)
	case rowan.NodeTypeImage:
		b.drawImage(dst, n, world)
	}
	for _, c := range el.children {
		b.drawElement(dst, c, world)
	}
}

// drawShape builds a vector path in device space and submits fill and
// stroke triangles against the white pixel.
func drawShape(dst *ebiten.Image, n *rowan.Node, world affine, segments []rowan.PathSegment) {
	if len(segments) == 0 {
		return
	}
	var path vector.Path
	started := false
	for _, seg := range segments {
		switch seg.Kind {
		case rowan.SegMove:
			x, y := world.apply(seg.X, seg.Y)
			path.MoveTo(x, y)
			started = true
		case rowan.SegLine:
			x, y := world.apply(seg.X, seg.Y)
			path.LineTo(x, y)
		case rowan.SegQuad:
			cx, cy := world.apply(seg.X1, seg.Y1)
			x, y := world.apply(seg.X, seg.Y)
			path.QuadTo(cx, cy, x, y)
		case rowan.SegCubic:
			c1x, c1y := world.apply(seg.X1, seg.Y1)
			c2x, c2y := world.apply(seg.X2, seg.Y2)
			x, y := world.apply(seg.X, seg.Y)
			path.CubicTo(c1x, c1y, c2x, c2y, x, y)
		case rowan.SegClose:
			path.Close()
		}
	}
	if !started {
		return
	}
	if !n.Fill.None() {
		verts, inds := path.AppendVerticesAndIndicesForFilling(nil, nil)
		submit(dst, verts, inds, n.Fill, n.Opacity)
	}
	if !n.Stroke.None() {
		op := &vector.StrokeOptions{Width: float32(n.Stroke.Width)}
		verts, inds := path.AppendVerticesAndIndicesForStroke(nil, nil, op)
		submit(dst, verts, inds, n.Stroke.Color, n.Opacity)
	}
}

func submit(dst *ebiten.Image, verts []ebiten.Vertex, inds []uint16, c rowan.Color, opacity float64) {
	cr := float32(c.R * c.A * opacity)
	cg := float32(c.G * c.A * opacity)
	cb := float32(c.B * c.A * opacity)
	ca := float32(c.A * opacity)
	for i := range verts {
		verts[i].SrcX = 0.5
		verts[i].SrcY = 0.5
		verts[i].ColorR = cr
		verts[i].ColorG = cg
		verts[i].ColorB = cb
		verts[i].ColorA = ca
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	dst.DrawTriangles(verts, inds, whitePixel, op)
}

func (b *Backend) drawImage(dst *ebiten.Image, n *rowan.Node, world affine) {
	if b.resolve == nil {
		return
	}
	img := b.resolve(n.Source)
	if img == nil {
		return
	}
	var op ebiten.DrawImageOptions
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if n.Width > 0 && n.Height > 0 && w > 0 && h > 0 {
		op.GeoM.Scale(n.Width/float64(w), n.Height/float64(h))
	}
	x, y := world.apply(0, 0)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleAlpha(float32(n.Opacity))
	dst.DrawImage(img, &op)
}

// kappa approximates a quarter circle with one cubic bezier.
const kappa = 0.5522847498307936

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

func rectSegments(w, h float64) []rowan.PathSegment {
	return []rowan.PathSegment{
		rowan.MoveTo(0, 0),
		rowan.LineTo(w, 0),
		rowan.LineTo(w, h),
		rowan.LineTo(0, h),
		rowan.ClosePath(),
	}
}
