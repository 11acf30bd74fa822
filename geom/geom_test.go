package geom

import "testing"

func TestVector2(t *testing.T) {
	a := Vec2(3, 4)
	if a.Length() != 5 {
		t.Errorf("Length = %v, want 5", a.Length())
	}
	if n := a.Normalized(); n.Length() < 0.999 || n.Length() > 1.001 {
		t.Errorf("Normalized length = %v", n.Length())
	}
	if (Vector2{}).Normalized() != (Vector2{}) {
		t.Error("zero vector should normalize to zero")
	}
	if got := a.Lerp(Vec2(5, 8), 0.5); got != Vec2(4, 6) {
		t.Errorf("Lerp = %v", got)
	}
	if a.Cross(Vec2(1, 0)) != -4 {
		t.Errorf("Cross = %v", a.Cross(Vec2(1, 0)))
	}
}

func TestVector3Cross(t *testing.T) {
	x, y := Vec3(1, 0, 0), Vec3(0, 1, 0)
	if got := x.Cross(y); got != Vec3(0, 0, 1) {
		t.Errorf("Cross = %v, want (0,0,1)", got)
	}
}

func TestRect2(t *testing.T) {
	r := Rect2{Position: Vec2(0, 0), Size: Vec2(2, 3)}
	if r.Area() != 6 {
		t.Errorf("Area = %v", r.Area())
	}
	tests := []struct {
		p    Vector2
		want bool
	}{
		{Vec2(1, 1), true},
		{Vec2(0, 0), true},
		{Vec2(2, 1), false},
		{Vec2(-1, 1), false},
	}
	for _, tt := range tests {
		if got := r.HasPoint(tt.p); got != tt.want {
			t.Errorf("HasPoint(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !r.Intersects(Rect2{Position: Vec2(1, 1), Size: Vec2(5, 5)}) {
		t.Error("expected intersection")
	}
}

func TestTransforms(t *testing.T) {
	tr := IdentityTransform2D().Translated(Vec2(1, 2))
	if got := tr.Xform(Vec2(1, 1)); got != Vec2(2, 3) {
		t.Errorf("Xform = %v", got)
	}
	if IdentityBasis().Determinant() != 1 {
		t.Error("identity determinant should be 1")
	}
	t3 := IdentityTransform()
	t3.Origin = Vec3(0, 0, 1)
	if got := t3.Xform(Vec3(1, 0, 0)); got != Vec3(1, 0, 1) {
		t.Errorf("Xform = %v", got)
	}
	if q := IdentityQuat().Mul(IdentityQuat()); q != IdentityQuat() {
		t.Errorf("identity product = %v", q)
	}
}

func TestColor(t *testing.T) {
	if got := RGB(1, 0, 0).ToARGB32(); got != 0xffff0000 {
		t.Errorf("ToARGB32 = %#x", got)
	}
	if got := (Color{}).Lerp(Color{R: 1, A: 1}, 0.5); got.R != 0.5 || got.A != 0.5 {
		t.Errorf("Lerp = %v", got)
	}
}
