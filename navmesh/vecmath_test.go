package navmesh

import "testing"

func TestTriArea2DSign(t *testing.T) {
	ccw := triArea2D([]float32{0, 0, 0}, []float32{1, 0, 0}, []float32{0, 0, 1})
	if ccw <= 0 {
		t.Fatalf("expected a positive area for a counter-clockwise triangle, got %v", ccw)
	}
	cw := triArea2D([]float32{0, 0, 0}, []float32{0, 0, 1}, []float32{1, 0, 0})
	if cw >= 0 {
		t.Fatalf("expected a negative area for a clockwise triangle, got %v", cw)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []float32{0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1}
	if !pointInPolygon([]float32{0.5, 0, 0.5}, square, 4) {
		t.Fatalf("expected the centre of the square to be inside")
	}
	if pointInPolygon([]float32{2, 0, 2}, square, 4) {
		t.Fatalf("expected a far-away point to be outside")
	}
}

func TestDistancePtSegSqr2D(t *testing.T) {
	_, d := distancePtSegSqr2D([]float32{0.5, 0, 5}, []float32{0, 0, 0}, []float32{1, 0, 0})
	if d != 25 {
		t.Fatalf("expected squared distance 25 from a point directly above the segment's midpoint, got %v", d)
	}
	tc, d2 := distancePtSegSqr2D([]float32{-5, 0, 0}, []float32{0, 0, 0}, []float32{1, 0, 0})
	if tc != 0 || d2 != 25 {
		t.Fatalf("expected clamping to t=0 beyond the segment's start, got t=%v d=%v", tc, d2)
	}
}

func TestClosestHeightPointTriangle(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{2, 0, 0}
	c := []float32{0, 0, 2}
	h, ok := closestHeightPointTriangle([]float32{0.5, 99, 0.5}, a, b, c)
	if !ok {
		t.Fatalf("expected the point to project inside the flat triangle")
	}
	if h != 0 {
		t.Fatalf("expected height 0 on a flat triangle, got %v", h)
	}
	if _, ok := closestHeightPointTriangle([]float32{5, 0, 5}, a, b, c); ok {
		t.Fatalf("expected a point outside the triangle to miss")
	}
}

func TestIntersectSegmentPoly2D(t *testing.T) {
	square := []float32{0, 0, 0, 2, 0, 0, 2, 0, 2, 0, 0, 2}
	tmin, tmax, _, segMax, ok := intersectSegmentPoly2D([]float32{-1, 0, 1}, []float32{1, 0, 1}, square, 4)
	if !ok {
		t.Fatalf("expected the segment to intersect the square")
	}
	if tmin <= 0 || tmax <= tmin {
		t.Fatalf("expected a nontrivial entry/exit span, got tmin=%v tmax=%v", tmin, tmax)
	}
	// The ray ends strictly inside the square, so there is no exit edge.
	if segMax != -1 {
		t.Fatalf("expected segMax == -1 for a ray ending inside the polygon, got %d", segMax)
	}
}

func TestNextPow2AndIlog2(t *testing.T) {
	cases := map[uint32]uint32{1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Fatalf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
	if ilog2(1) != 0 || ilog2(2) != 1 || ilog2(256) != 8 {
		t.Fatalf("ilog2 mismatch")
	}
}
