package pdfdoc

import "math"

// Point is a position in PDF user space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in PDF user space (origin bottom-left,
// y growing upwards). A normalized Rect has X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect returns the normalized rectangle spanned by two corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return !(r.X1 > r.X0 && r.Y1 > r.Y0)
}

// Finite reports whether every coordinate of r is a finite number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Intersects reports whether r and o share a region of positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Bounds makes Rect a Region.
func (r Rect) Bounds() Rect { return r }

// Quad is a quadrilateral bounding a span of text. UL/UR are the upper
// corners and LL/LR the lower ones.
type Quad struct {
	UL, UR, LL, LR Point
}

// QuadFromRect returns the quad with the corners of r.
func QuadFromRect(r Rect) Quad {
	return Quad{
		UL: Point{r.X0, r.Y1},
		UR: Point{r.X1, r.Y1},
		LL: Point{r.X0, r.Y0},
		LR: Point{r.X1, r.Y0},
	}
}

// Bounds returns the axis-aligned rectangle enclosing q.
func (q Quad) Bounds() Rect {
	r := NewRect(q.UL.X, q.UL.Y, q.LR.X, q.LR.Y)
	return r.Union(NewRect(q.UR.X, q.UR.Y, q.LL.X, q.LL.Y))
}

// Region is anything that can be marked for redaction.
type Region interface {
	Bounds() Rect
}

// Matrix is a PDF transformation matrix [a b c d e f] using the row vector
// convention of the PDF reference: p' = p x M.
type Matrix [6]float64

var identity = Matrix{1, 0, 0, 1, 0, 0}

func translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Mul returns m x n, the transformation applying m first and then n.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Apply transforms p by m.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse of m and false when m is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) {
		return identity, false
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}

// TransformRect maps the four corners of r through m and returns their
// bounding box.
func (m Matrix) TransformRect(r Rect) Rect {
	p := [4]Point{
		m.Apply(Point{r.X0, r.Y0}),
		m.Apply(Point{r.X1, r.Y0}),
		m.Apply(Point{r.X0, r.Y1}),
		m.Apply(Point{r.X1, r.Y1}),
	}
	out := Rect{X0: p[0].X, Y0: p[0].Y, X1: p[0].X, Y1: p[0].Y}
	for _, q := range p[1:] {
		out = out.Union(Rect{X0: q.X, Y0: q.Y, X1: q.X, Y1: q.Y})
	}
	return out
}
