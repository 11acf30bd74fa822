// Package geom holds the engine's plain geometry value types.
//
// These types share their memory layout with the engine ABI and are passed
// by value. They carry no engine handle and need no destruction.
//
// The package also has the scalar math of the engine's global scope (Lerp,
// Ease, Wrapf, Posmod and the others).
package geom

import "math"

// Vector2 is a 2D vector of 32-bit floats.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a 3D vector of 32-bit floats.
type Vector3 struct {
	X, Y, Z float32
}

// Rect2 is an axis-aligned rectangle.
type Rect2 struct {
	Position Vector2
	Size     Vector2
}

// Transform2D is a 2x3 matrix: X and Y are the basis columns, Origin the translation.
type Transform2D struct {
	X, Y, Origin Vector2
}

// Plane is a plane in Hessian normal form.
type Plane struct {
	Normal Vector3
	D      float32
}

// Quat is a rotation quaternion.
type Quat struct {
	X, Y, Z, W float32
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Position Vector3
	Size     Vector3
}

// Basis is a 3x3 matrix stored as rows.
type Basis struct {
	Elements [3]Vector3
}

// Transform is a 3D affine transform.
type Transform struct {
	Basis  Basis
	Origin Vector3
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

func Vec2(x, y float32) Vector2    { return Vector2{X: x, Y: y} }
func Vec3(x, y, z float32) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (v Vector2) Add(o Vector2) Vector2     { return Vector2{v.X + o.X, v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2     { return Vector2{v.X - o.X, v.Y - o.Y} }
func (v Vector2) Mul(s float32) Vector2     { return Vector2{v.X * s, v.Y * s} }
func (v Vector2) Dot(o Vector2) float32     { return v.X*o.X + v.Y*o.Y }
func (v Vector2) Cross(o Vector2) float32   { return v.X*o.Y - v.Y*o.X }
func (v Vector2) Length() float32           { return float32(math.Sqrt(float64(v.Dot(v)))) }
func (v Vector2) Angle() float32            { return float32(math.Atan2(float64(v.Y), float64(v.X))) }

// DistanceTo returns the distance between two points.
func (v Vector2) DistanceTo(o Vector2) float32 { return v.Sub(o).Length() }

// Normalized returns v scaled to unit length, or the zero vector.
func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return v.Mul(1 / l)
}

// Lerp interpolates linearly between v and o.
func (v Vector2) Lerp(o Vector2, t float32) Vector2 {
	return v.Add(o.Sub(v).Mul(t))
}

// Rotated returns v rotated by phi radians.
func (v Vector2) Rotated(phi float32) Vector2 {
	s, c := math.Sincos(float64(phi))
	return Vector2{
		X: v.X*float32(c) - v.Y*float32(s),
		Y: v.X*float32(s) + v.Y*float32(c),
	}
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Mul(s float32) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }
func (v Vector3) Dot(o Vector3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector3) Length() float32       { return float32(math.Sqrt(float64(v.Dot(v)))) }

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalized returns v scaled to unit length, or the zero vector.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.Mul(1 / l)
}

// Lerp interpolates linearly between v and o.
func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	return v.Add(o.Sub(v).Mul(t))
}

// Area returns the rectangle's area.
func (r Rect2) Area() float32 { return r.Size.X * r.Size.Y }

// End returns the corner opposite Position.
func (r Rect2) End() Vector2 { return r.Position.Add(r.Size) }

// HasPoint reports whether p lies inside r. The far edges are exclusive.
func (r Rect2) HasPoint(p Vector2) bool {
	end := r.End()
	return p.X >= r.Position.X && p.Y >= r.Position.Y && p.X < end.X && p.Y < end.Y
}

// Intersects reports whether r and o overlap.
func (r Rect2) Intersects(o Rect2) bool {
	re, oe := r.End(), o.End()
	return r.Position.X < oe.X && o.Position.X < re.X &&
		r.Position.Y < oe.Y && o.Position.Y < re.Y
}

// IdentityTransform2D returns the 2D identity transform.
func IdentityTransform2D() Transform2D {
	return Transform2D{X: Vector2{1, 0}, Y: Vector2{0, 1}}
}

// Xform applies t to the point v.
func (t Transform2D) Xform(v Vector2) Vector2 {
	return Vector2{
		X: t.X.X*v.X + t.Y.X*v.Y + t.Origin.X,
		Y: t.X.Y*v.X + t.Y.Y*v.Y + t.Origin.Y,
	}
}

// Translated returns t moved by offset.
func (t Transform2D) Translated(offset Vector2) Transform2D {
	t.Origin = t.Origin.Add(offset)
	return t
}

// DistanceTo returns the signed distance from the plane to p.
func (p Plane) DistanceTo(v Vector3) float32 { return p.Normal.Dot(v) - p.D }

// IdentityQuat returns the identity rotation.
func IdentityQuat() Quat { return Quat{W: 1} }

// Mul composes two rotations.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y + q.Y*o.W + q.Z*o.X - q.X*o.Z,
		Z: q.W*o.Z + q.Z*o.W + q.X*o.Y - q.Y*o.X,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Length() float32 {
	return float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
}

// Volume returns the box's volume.
func (a AABB) Volume() float32 { return a.Size.X * a.Size.Y * a.Size.Z }

// HasPoint reports whether p lies inside a.
func (a AABB) HasPoint(p Vector3) bool {
	end := a.Position.Add(a.Size)
	return p.X >= a.Position.X && p.Y >= a.Position.Y && p.Z >= a.Position.Z &&
		p.X < end.X && p.Y < end.Y && p.Z < end.Z
}

// IdentityBasis returns the 3x3 identity matrix.
func IdentityBasis() Basis {
	return Basis{Elements: [3]Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Xform multiplies the basis by v.
func (b Basis) Xform(v Vector3) Vector3 {
	return Vector3{
		X: b.Elements[0].Dot(v),
		Y: b.Elements[1].Dot(v),
		Z: b.Elements[2].Dot(v),
	}
}

// Determinant returns the basis determinant.
func (b Basis) Determinant() float32 {
	e := b.Elements
	return e[0].X*(e[1].Y*e[2].Z-e[2].Y*e[1].Z) -
		e[1].X*(e[0].Y*e[2].Z-e[2].Y*e[0].Z) +
		e[2].X*(e[0].Y*e[1].Z-e[1].Y*e[0].Z)
}

// IdentityTransform returns the 3D identity transform.
func IdentityTransform() Transform { return Transform{Basis: IdentityBasis()} }

// Xform applies t to the point v.
func (t Transform) Xform(v Vector3) Vector3 { return t.Basis.Xform(v).Add(t.Origin) }

// RGB returns an opaque color.
func RGB(r, g, b float32) Color { return Color{R: r, G: g, B: b, A: 1} }

// ToARGB32 packs the color into 0xAARRGGBB.
func (c Color) ToARGB32() uint32 {
	return uint32(clamp8(c.A))<<24 | uint32(clamp8(c.R))<<16 | uint32(clamp8(c.G))<<8 | uint32(clamp8(c.B))
}

// Lerp interpolates linearly between c and o.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

func clamp8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return uint8(f*255 + 0.5)
	}
}
