package rowan

// SegmentKind tells the backend which path command a segment encodes.
type SegmentKind uint8

const (
	SegMove SegmentKind = iota
	SegLine
	SegQuad
	SegCubic
	SegClose
)

// PathSegment is one command of a path outline. X1/Y1 and X2/Y2 are control
// points for quadratic and cubic segments; X/Y is the end point. Close uses
// no coordinates.
type PathSegment struct {
	Kind   SegmentKind
	X1, Y1 float64
	X2, Y2 float64
	X, Y   float64
}

// MoveTo returns a move-to segment.
func MoveTo(x, y float64) PathSegment {
	return PathSegment{Kind: SegMove, X: x, Y: y}
}

// LineTo returns a line-to segment.
func LineTo(x, y float64) PathSegment {
	return PathSegment{Kind: SegLine, X: x, Y: y}
}

// QuadTo returns a quadratic bezier segment with control point (cx, cy).
func QuadTo(cx, cy, x, y float64) PathSegment {
	return PathSegment{Kind: SegQuad, X1: cx, Y1: cy, X: x, Y: y}
}

// CubicTo returns a cubic bezier segment with control points (c1x, c1y) and
// (c2x, c2y).
func CubicTo(c1x, c1y, c2x, c2y, x, y float64) PathSegment {
	return PathSegment{Kind: SegCubic, X1: c1x, Y1: c1y, X2: c2x, Y2: c2y, X: x, Y: y}
}

// ClosePath returns a close segment.
func ClosePath() PathSegment {
	return PathSegment{Kind: SegClose}
}

// --- Constructors ---

// NewContainer creates a container node with no visual representation of
// its own.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewRect creates a rectangle node with the given size.
func NewRect(name string, width, height float64) *Node {
	n := &Node{Name: name, Type: NodeTypeRect, Width: width, Height: height}
	nodeDefaults(n)
	return n
}

// NewCircle creates a circle node with the given radius, centered on the
// node's position.
func NewCircle(name string, radius float64) *Node {
	n := &Node{Name: name, Type: NodeTypeCircle, Radius: radius}
	nodeDefaults(n)
	return n
}

// NewEllipse creates an ellipse node with the given radii, centered on the
// node's position.
func NewEllipse(name string, rx, ry float64) *Node {
	n := &Node{Name: name, Type: NodeTypeEllipse, RadiusX: rx, RadiusY: ry}
	nodeDefaults(n)
	return n
}

// NewPath creates a path node from the given segments.
func NewPath(name string, segments []PathSegment) *Node {
	n := &Node{Name: name, Type: NodeTypePath, Segments: segments}
	nodeDefaults(n)
	return n
}

// NewText creates a text node. Layout and shaping are backend concerns;
// rowan only carries the string.
func NewText(name, content string) *Node {
	n := &Node{Name: name, Type: NodeTypeText, Text: content}
	nodeDefaults(n)
	return n
}

// NewImage creates an image node. The source reference is resolved by the
// backend, possibly asynchronously; the stage's settled notification waits
// for it.
func NewImage(name, source string, width, height float64) *Node {
	n := &Node{Name: name, Type: NodeTypeImage, Source: source, Width: width, Height: height}
	nodeDefaults(n)
	return n
}

// NewClip creates a clip node from a path outline. Clip nodes are applied
// with Node.SetClip, never added as children; their surface element is
// created lazily, after the clipped target has one.
func NewClip(name string, segments []PathSegment) *Node {
	n := &Node{Name: name, Type: NodeTypeClip, Segments: segments}
	nodeDefaults(n)
	return n
}

// --- Mutation helpers ---
//
// Fields may equally be written directly, followed by MarkDirty with the
// matching flags; tweens do exactly that.

// SetPosition moves the node and marks its transform dirty.
func (n *Node) SetPosition(x, y float64) {
	if n.X == x && n.Y == y {
		return
	}
	n.X, n.Y = x, y
	n.MarkDirty(DirtyTransform)
}

// SetScale sets the node's scale factors.
func (n *Node) SetScale(sx, sy float64) {
	if n.ScaleX == sx && n.ScaleY == sy {
		return
	}
	n.ScaleX, n.ScaleY = sx, sy
	n.MarkDirty(DirtyTransform)
}

// SetRotation sets the node's rotation in radians.
func (n *Node) SetRotation(rad float64) {
	if n.Rotation == rad {
		return
	}
	n.Rotation = rad
	n.MarkDirty(DirtyTransform)
}

// SetSize sets the width and height of rect and image nodes.
func (n *Node) SetSize(width, height float64) {
	if n.Width == width && n.Height == height {
		return
	}
	n.Width, n.Height = width, height
	n.MarkDirty(DirtyGeometry)
}

// SetRadius sets a circle's radius.
func (n *Node) SetRadius(r float64) {
	if n.Radius == r {
		return
	}
	n.Radius = r
	n.MarkDirty(DirtyGeometry)
}

// SetRadii sets an ellipse's radii.
func (n *Node) SetRadii(rx, ry float64) {
	if n.RadiusX == rx && n.RadiusY == ry {
		return
	}
	n.RadiusX, n.RadiusY = rx, ry
	n.MarkDirty(DirtyGeometry)
}

// SetSegments replaces a path or clip node's outline.
func (n *Node) SetSegments(segments []PathSegment) {
	n.Segments = segments
	n.MarkDirty(DirtyGeometry)
}

// SetText replaces a text node's content.
func (n *Node) SetText(content string) {
	if n.Text == content {
		return
	}
	n.Text = content
	n.MarkDirty(DirtyGeometry)
}

// SetSource replaces an image node's source reference.
func (n *Node) SetSource(source string) {
	if n.Source == source {
		return
	}
	n.Source = source
	n.MarkDirty(DirtyGeometry)
}

// SetFill sets the fill color.
func (n *Node) SetFill(c Color) {
	if n.Fill == c {
		return
	}
	n.Fill = c
	n.MarkDirty(DirtyAppearance)
}

// SetStroke sets the stroke paint.
func (n *Node) SetStroke(s Stroke) {
	if n.Stroke == s {
		return
	}
	n.Stroke = s
	n.MarkDirty(DirtyAppearance)
}

// SetOpacity sets the node's opacity in [0, 1].
func (n *Node) SetOpacity(o float64) {
	if n.Opacity == o {
		return
	}
	n.Opacity = o
	n.MarkDirty(DirtyAppearance)
}

// SetVisible shows or hides the node. The surface element stays mounted;
// visibility is an attribute-class mutation.
func (n *Node) SetVisible(v bool) {
	if n.Visible == v {
		return
	}
	n.Visible = v
	n.MarkDirty(DirtyVisibility)
}

// SetClip applies a clip node to this node, or clears it with nil. The clip
// element is flushed immediately after this node's own flush, once this
// node has a surface element. Panics if c is not a clip node or already
// clips another node.
func (n *Node) SetClip(c *Node) {
	if c != nil && c.Type != NodeTypeClip {
		panic("rowan: SetClip requires a node created with NewClip")
	}
	if n.clip == c {
		return
	}
	if c != nil && c.Parent != nil {
		panic("rowan: clip node already applied to another node")
	}
	if old := n.clip; old != nil {
		severHandles(old, n.stageOf())
		old.Parent = nil
	}
	if c != nil {
		// Weak back-link so mutations of the clip's geometry propagate
		// dirtiness through the target.
		c.Parent = n
		c.dirty |= dirtyAttrs
	}
	n.clip = c
	n.MarkDirty(DirtyClip)
}

// Clip returns the node's clip node, or nil.
func (n *Node) Clip() *Node {
	return n.clip
}
