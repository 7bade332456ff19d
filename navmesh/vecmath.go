package navmesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ornfelt/navmesh/common"
)

const eps = 1e-6

func vdist(a, b []float32) float32 {
	return common.Vdist(a, b)
}

func vdistSqr(a, b []float32) float32 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	dz := b[2] - a[2]
	return dx*dx + dy*dy + dz*dz
}

func vdist2D(a, b []float32) float32 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

func vdistSqr2D(a, b []float32) float32 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return dx*dx + dz*dz
}

func vlerp(dst, a, b []float32, t float32) { common.Vlerp(dst, a, b, t) }

func vsub(dst, a, b []float32) { common.Vsub(dst, a, b) }

func vadd(dst, a, b []float32) { common.Vadd(dst, a, b) }

// vmad: dst = a + b*t
func vmad(dst, a, b []float32, t float32) { common.Vmad(dst, a, b, t) }

func vcopy(dst, src []float32) {
	dst[0], dst[1], dst[2] = src[0], src[1], src[2]
}

func vnormalize(v []float32) {
	d := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if d < eps {
		return
	}
	inv := 1 / d
	v[0] *= inv
	v[1] *= inv
	v[2] *= inv
}

func vmin(dst, b []float32) { common.Vmin(dst, b) }

func vmax(dst, b []float32) { common.Vmax(dst, b) }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float32) float32 { return common.Clamp(v, lo, hi) }

func sqr(v float32) float32 { return v * v }

func isFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func vIsFinite(v []float32) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}

// triArea2D is the signed area of the triangle (a,b,c) projected onto xz.
func triArea2D(a, b, c []float32) float32 { return common.TriArea2D(a, b, c) }

// vec3ToBuf/bufToVec3 bridge the public mgl32.Vec3 API to the flat
// []float32 buffers the query engine operates on internally.
func vec3ToBuf(v mgl32.Vec3) []float32 { return []float32{v[0], v[1], v[2]} }
func bufToVec3(b []float32) mgl32.Vec3 { return mgl32.Vec3{b[0], b[1], b[2]} }

// closestHeightPointTriangle returns the y of point p projected onto the
// plane of triangle (a,b,c) if p's xz projection lies within the triangle
// (barycentric coordinates all >= -eps).
func closestHeightPointTriangle(p, a, b, c []float32) (h float32, ok bool) {
	v0 := []float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	v1 := []float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v2 := []float32{p[0] - a[0], p[1] - a[1], p[2] - a[2]}

	dot00 := v0[0]*v0[0] + v0[2]*v0[2]
	dot01 := v0[0]*v1[0] + v0[2]*v1[2]
	dot02 := v0[0]*v2[0] + v0[2]*v2[2]
	dot11 := v1[0]*v1[0] + v1[2]*v1[2]
	dot12 := v1[0]*v2[0] + v1[2]*v2[2]

	invDenom := dot00*dot11 - dot01*dot01
	if invDenom == 0 {
		return 0, false
	}
	inv := 1 / invDenom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv

	if u >= -eps && v >= -eps && u+v <= 1+eps {
		h = a[1] + v0[1]*u + v1[1]*v
		return h, true
	}
	return 0, false
}

// distancePtSegSqr2D returns the squared distance from pt to segment [p,q]
// (xz-plane) and the clamped parametric position t in [0,1].
func distancePtSegSqr2D(pt, p, q []float32) (t, distSqr float32) {
	pqx := q[0] - p[0]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqz*pqz
	t = pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = clampf(t, 0, 1)
	dx = p[0] + t*pqx - pt[0]
	dz = p[2] + t*pqz - pt[2]
	return t, dx*dx + dz*dz
}

// pointInPolygon tests xz-membership of pt in the (possibly non-convex)
// vertex fan verts[0:nverts].
func pointInPolygon(pt, verts []float32, nverts int32) bool {
	c := false
	i := int32(0)
	j := nverts - 1
	for i < nverts {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if ((vi[2] > pt[2]) != (vj[2] > pt[2])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			c = !c
		}
		j = i
		i++
	}
	return c
}

// distancePtPolyEdgesSqr computes, per edge, the squared distance from pt
// and the clamped parametric t, and reports whether pt lies inside the
// polygon (xz).
func distancePtPolyEdgesSqr(pt, verts []float32, nverts int32, edgeDistSqr, edgeT []float32) bool {
	inside := false
	i := int32(0)
	j := nverts - 1
	for i < nverts {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if ((vi[2] > pt[2]) != (vj[2] > pt[2])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			inside = !inside
		}
		edgeT[j], edgeDistSqr[j] = distancePtSegSqr2D(pt, vj, vi)
		j = i
		i++
	}
	return inside
}

// intersectSegSeg2D solves for the parametric positions s (on [ap,aq]) and
// t (on [bp,bq]) of the intersection of the two 2D (xz) segments.
func intersectSegSeg2D(ap, aq, bp, bq []float32) (s, t float32, ok bool) {
	u := []float32{aq[0] - ap[0], 0, aq[2] - ap[2]}
	v := []float32{bq[0] - bp[0], 0, bq[2] - bp[2]}
	w := []float32{ap[0] - bp[0], 0, ap[2] - bp[2]}
	d := u[0]*v[2] - u[2]*v[0]
	if math.Abs(float64(d)) < 1e-9 {
		return 0, 0, false
	}
	s = (v[0]*w[2] - v[2]*w[0]) / d
	t = (u[0]*w[2] - u[2]*w[0]) / d
	return s, t, true
}

// intersectSegmentPoly2D casts the segment [p,q] (xz) against the convex
// vertex fan verts[0:nverts], returning the entry/exit parametric t and the
// segment indices hit. segMax == -1 means the ray ends inside the polygon.
func intersectSegmentPoly2D(p, q, verts []float32, nverts int32) (tmin, tmax float32, segMin, segMax int32, ok bool) {
	const eps32 = 0.00000001
	tmin, tmax = 0, 1
	segMin, segMax = -1, -1

	dir := []float32{q[0] - p[0], 0, q[2] - p[2]}

	var i, j int32
	for i, j = 0, nverts-1; i < nverts; j, i = i, i+1 {
		edge := []float32{verts[i*3] - verts[j*3], 0, verts[i*3+2] - verts[j*3+2]}
		diff := []float32{p[0] - verts[j*3], 0, p[2] - verts[j*3+2]}

		n := edge[0]*diff[2] - edge[2]*diff[0]
		d := edge[2]*dir[0] - edge[0]*dir[2]
		if math.Abs(float64(d)) < eps32 {
			if n < 0 {
				return tmin, tmax, segMin, segMax, false
			}
			continue
		}
		tt := n / d
		if d < 0 {
			if tt > tmin {
				tmin = tt
				segMin = j
			}
		} else {
			if tt < tmax {
				tmax = tt
				segMax = j
			}
		}
		if tmin > tmax {
			return tmin, tmax, segMin, segMax, false
		}
	}
	return tmin, tmax, segMin, segMax, true
}

// randomPointInConvexPoly fan-triangulates from vertex 0, picks a triangle
// via cumulative-area reservoir sampling on s, and samples uniformly within
// it using the sqrt(t) mapping.
func randomPointInConvexPoly(verts []float32, nverts int32, areas []float32, s, t float32) []float32 {
	areaSum := float32(0)
	for i := int32(2); i < nverts; i++ {
		areas[i] = maxf(0.001, triArea2D(common.GetVert3(verts, 0), common.GetVert3(verts, (i-1)), common.GetVert3(verts, i)))
		areaSum += areas[i]
	}
	thr := s * areaSum
	acc := float32(0)
	var tri int32 = int32(nverts) - 1
	w := float32(1)
	for i := int32(2); i < nverts; i++ {
		next := acc + areas[i]
		if thr >= acc && thr < next {
			tri = i
			w = (thr - acc) / areas[i]
			break
		}
		acc = next
	}

	u := float32(math.Sqrt(float64(t)))
	a := 1 - u
	b := u * (1 - w)
	c := u * w
	pa := common.GetVert3(verts, 0)
	pb := common.GetVert3(verts, (tri-1))
	pc := common.GetVert3(verts, tri)
	return []float32{
		a*pa[0] + b*pb[0] + c*pc[0],
		a*pa[1] + b*pb[1] + c*pc[1],
		a*pa[2] + b*pb[2] + c*pc[2],
	}
}

func overlapQuantBounds(amin, amax, bmin, bmax [3]uint16) bool {
	overlap := true
	if amin[0] > bmax[0] || amax[0] < bmin[0] {
		overlap = false
	}
	if amin[1] > bmax[1] || amax[1] < bmin[1] {
		overlap = false
	}
	if amin[2] > bmax[2] || amax[2] < bmin[2] {
		overlap = false
	}
	return overlap
}

func overlapBounds(amin, amax, bmin, bmax []float32) bool {
	overlap := true
	for i := 0; i < 3; i++ {
		if amin[i] > bmax[i] || amax[i] < bmin[i] {
			overlap = false
		}
	}
	return overlap
}
