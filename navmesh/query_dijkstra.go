package navmesh

import (
	"math"

	"github.com/ornfelt/navmesh/common"
)

// PolyVisit is one entry of a Dijkstra-style expansion result, reported in
// non-decreasing Cost (visit) order.
type PolyVisit struct {
	Ref    PolyRef
	Parent PolyRef
	Cost   float32
}

// FindPolysAroundCircle expands a Dijkstra search from startRef,
// accumulating total = parent total + midpoint-to-midpoint Euclidean
// distance, pruning candidates whose crossing portal lies farther than
// radius from centerPos.
func (q *Query) FindPolysAroundCircle(startRef PolyRef, centerPos []float32, radius float32, filter *QueryFilter, maxResult int32) (result []PolyVisit, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || centerPos == nil || radius < 0 || filter == nil {
		return nil, Failure | InvalidParam
	}
	if q.busy() {
		return nil, Failure
	}

	q.nodePool.Clear()
	q.openList.Reset()

	startNode := q.nodePool.GetNode(startRef, 0)
	vcopy(startNode.Pos[:], centerPos)
	startNode.Flags = nodeOpen
	q.openList.Push(startNode)

	status = Success
	radiusSqr := sqr(radius)

	for !q.openList.Empty() {
		best := q.openList.Pop()
		best.Flags &^= nodeOpen
		best.Flags |= nodeClosed

		bestTile, bestPoly := q.mesh.GetTileAndPolyByRefUnsafe(best.Ref)

		var parentRef PolyRef
		if best.Pidx != 0 {
			parentRef = q.nodePool.GetNodeAtIdx(best.Pidx).Ref
		}

		if int32(len(result)) < maxResult {
			result = append(result, PolyVisit{Ref: best.Ref, Parent: parentRef, Cost: best.Total})
		} else {
			status |= BufferTooSmall
		}

		for i := bestPoly.FirstLink; i != nullLink; i = bestTile.Links[i].Next {
			link := bestTile.Links[i]
			neighbourRef := link.Ref
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}
			neighbourTile, neighbourPoly := q.mesh.GetTileAndPolyByRefUnsafe(neighbourRef)
			if !filter.PassFilter(neighbourPoly) {
				continue
			}
			left, right, st := q.mesh.getPortalPoints(best.Ref, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile)
			if st.Failed() {
				continue
			}
			if _, distSqr := distancePtSegSqr2D(centerPos, left, right); distSqr > radiusSqr {
				continue
			}

			neighbourNode := q.nodePool.GetNode(neighbourRef, 0)
			if neighbourNode == nil {
				status |= OutOfNodes
				continue
			}
			if neighbourNode.Flags&nodeClosed != 0 {
				continue
			}
			if neighbourNode.Flags == 0 {
				vlerp(neighbourNode.Pos[:], left, right, 0.5)
			}

			cost := vdist(best.Pos[:], neighbourNode.Pos[:])
			total := best.Total + cost
			if neighbourNode.Flags&nodeOpen != 0 && total >= neighbourNode.Total {
				continue
			}

			neighbourNode.Pidx = q.nodePool.GetNodeIdx(best)
			neighbourNode.Total = total

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.Modify(neighbourNode)
			} else {
				neighbourNode.Flags = nodeOpen
				q.openList.Push(neighbourNode)
			}
		}
	}

	return result, status
}

// FindPolysAroundShape is the polygon-shaped variant of
// FindPolysAroundCircle: candidates are pruned by 2D intersection of the
// crossing portal against the shape polygon instead of distance-to-circle.
func (q *Query) FindPolysAroundShape(startRef PolyRef, shapeVerts []float32, nverts int32, filter *QueryFilter, maxResult int32) (result []PolyVisit, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || shapeVerts == nil || nverts < 3 || filter == nil {
		return nil, Failure | InvalidParam
	}
	if q.busy() {
		return nil, Failure
	}

	centerPos := make([]float32, 3)
	for i := int32(0); i < nverts; i++ {
		vadd(centerPos, centerPos, common.GetVert3(shapeVerts, i))
	}
	inv := 1.0 / float32(nverts)
	centerPos[0] *= inv
	centerPos[1] *= inv
	centerPos[2] *= inv

	q.nodePool.Clear()
	q.openList.Reset()

	startNode := q.nodePool.GetNode(startRef, 0)
	vcopy(startNode.Pos[:], centerPos)
	startNode.Flags = nodeOpen
	q.openList.Push(startNode)

	status = Success

	for !q.openList.Empty() {
		best := q.openList.Pop()
		best.Flags &^= nodeOpen
		best.Flags |= nodeClosed

		bestTile, bestPoly := q.mesh.GetTileAndPolyByRefUnsafe(best.Ref)

		var parentRef PolyRef
		if best.Pidx != 0 {
			parentRef = q.nodePool.GetNodeAtIdx(best.Pidx).Ref
		}

		if int32(len(result)) < maxResult {
			result = append(result, PolyVisit{Ref: best.Ref, Parent: parentRef, Cost: best.Total})
		} else {
			status |= BufferTooSmall
		}

		for i := bestPoly.FirstLink; i != nullLink; i = bestTile.Links[i].Next {
			link := bestTile.Links[i]
			neighbourRef := link.Ref
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}
			neighbourTile, neighbourPoly := q.mesh.GetTileAndPolyByRefUnsafe(neighbourRef)
			if !filter.PassFilter(neighbourPoly) {
				continue
			}
			left, right, st := q.mesh.getPortalPoints(best.Ref, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile)
			if st.Failed() {
				continue
			}
			if !segmentCrossesPoly(left, right, shapeVerts, nverts) {
				continue
			}

			neighbourNode := q.nodePool.GetNode(neighbourRef, 0)
			if neighbourNode == nil {
				status |= OutOfNodes
				continue
			}
			if neighbourNode.Flags&nodeClosed != 0 {
				continue
			}
			if neighbourNode.Flags == 0 {
				vlerp(neighbourNode.Pos[:], left, right, 0.5)
			}

			cost := vdist(best.Pos[:], neighbourNode.Pos[:])
			total := best.Total + cost
			if neighbourNode.Flags&nodeOpen != 0 && total >= neighbourNode.Total {
				continue
			}

			neighbourNode.Pidx = q.nodePool.GetNodeIdx(best)
			neighbourNode.Total = total

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.Modify(neighbourNode)
			} else {
				neighbourNode.Flags = nodeOpen
				q.openList.Push(neighbourNode)
			}
		}
	}

	return result, status
}

// segmentCrossesPoly reports whether segment [a,b] intersects any edge of,
// or lies inside, the convex polygon verts[0:nverts] in xz.
func segmentCrossesPoly(a, b, verts []float32, nverts int32) bool {
	if pointInPolygon(a, verts, nverts) || pointInPolygon(b, verts, nverts) {
		return true
	}
	j := nverts - 1
	for i := int32(0); i < nverts; i++ {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if s, t, ok := intersectSegSeg2D(a, b, vj, vi); ok && s >= 0 && s <= 1 && t >= 0 && t <= 1 {
			return true
		}
		j = i
	}
	return false
}

// FindDistanceToWall runs a Dijkstra-like expansion bounded by maxRadius:
// every wall edge encountered tightens a running minimum squared distance
// and records the projected hit point; the final hit normal is
// normalize(centerPos - hitPos).
func (q *Query) FindDistanceToWall(startRef PolyRef, centerPos []float32, maxRadius float32, filter *QueryFilter) (hitDist float32, hitPos, hitNormal [3]float32, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || centerPos == nil || filter == nil {
		return 0, hitPos, hitNormal, Failure | InvalidParam
	}
	if q.busy() {
		return 0, hitPos, hitNormal, Failure
	}

	q.nodePool.Clear()
	q.openList.Reset()

	startNode := q.nodePool.GetNode(startRef, 0)
	vcopy(startNode.Pos[:], centerPos)
	startNode.Flags = nodeOpen
	q.openList.Push(startNode)

	radiusSqr := sqr(maxRadius)
	status = Success
	bestDistSqr := float32(math.MaxFloat32)

	for !q.openList.Empty() {
		best := q.openList.Pop()
		best.Flags &^= nodeOpen
		best.Flags |= nodeClosed

		bestTile, bestPoly := q.mesh.GetTileAndPolyByRefUnsafe(best.Ref)
		var parentRef PolyRef
		if best.Pidx != 0 {
			parentRef = q.nodePool.GetNodeAtIdx(best.Pidx).Ref
		}

		nv := int32(bestPoly.VertCount)
		verts := make([]float32, nv*3)
		for i := int32(0); i < nv; i++ {
			v := common.GetVert3(bestTile.Verts, bestPoly.Verts[i])
			copy(common.GetVert3(verts, i), v)
		}

		j := nv - 1
		for i := int32(0); i < nv; i++ {
			isWall := true
			for k := bestPoly.FirstLink; k != nullLink; k = bestTile.Links[k].Next {
				if int32(bestTile.Links[k].Edge) == j {
					isWall = false
					break
				}
			}
			if isWall {
				t, distSqr := distancePtSegSqr2D(centerPos, common.GetVert3(verts, j), common.GetVert3(verts, i))
				if distSqr < bestDistSqr {
					bestDistSqr = distSqr
					vlerp(hitPos[:], common.GetVert3(verts, j), common.GetVert3(verts, i), t)
				}
			}
			j = i
		}

		for i := bestPoly.FirstLink; i != nullLink; i = bestTile.Links[i].Next {
			link := bestTile.Links[i]
			neighbourRef := link.Ref
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}
			neighbourTile, neighbourPoly := q.mesh.GetTileAndPolyByRefUnsafe(neighbourRef)
			if !filter.PassFilter(neighbourPoly) {
				continue
			}
			left, right, st := q.mesh.getPortalPoints(best.Ref, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile)
			if st.Failed() {
				continue
			}
			if _, distSqr := distancePtSegSqr2D(centerPos, left, right); distSqr > radiusSqr {
				continue
			}

			neighbourNode := q.nodePool.GetNode(neighbourRef, 0)
			if neighbourNode == nil {
				status |= OutOfNodes
				continue
			}
			if neighbourNode.Flags&nodeClosed != 0 {
				continue
			}
			if neighbourNode.Flags == 0 {
				vlerp(neighbourNode.Pos[:], left, right, 0.5)
			}
			cost := vdist(best.Pos[:], neighbourNode.Pos[:])
			total := best.Total + cost
			if neighbourNode.Flags&nodeOpen != 0 && total >= neighbourNode.Total {
				continue
			}
			neighbourNode.Pidx = q.nodePool.GetNodeIdx(best)
			neighbourNode.Total = total
			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.Modify(neighbourNode)
			} else {
				neighbourNode.Flags = nodeOpen
				q.openList.Push(neighbourNode)
			}
		}
	}

	hitDist = float32(math.Sqrt(float64(bestDistSqr)))
	vsub(hitNormal[:], centerPos, hitPos[:])
	vnormalize(hitNormal[:])
	return hitDist, hitPos, hitNormal, status
}

// FindRandomPointAroundCircle combines a circle-bounded Dijkstra expansion
// with area-weighted triangle sampling to pick a uniformly random point
// among the reachable polygons, then projects it onto the mesh surface.
// A failed height projection fails the whole call (decided explicitly: the
// source's status check on the wrong variable is not replicated).
func (q *Query) FindRandomPointAroundCircle(startRef PolyRef, centerPos []float32, radius float32, filter *QueryFilter, randS, randT, randAreaS, randAreaT float32) (randRef PolyRef, randPt [3]float32, status Status) {
	polys, st := q.FindPolysAroundCircle(startRef, centerPos, radius, filter, 512)
	if st.Failed() || len(polys) == 0 {
		return 0, randPt, Failure | InvalidParam
	}

	areaSum := float32(0)
	areas := make([]float32, len(polys))
	for i, pv := range polys {
		tile, poly := q.mesh.GetTileAndPolyByRefUnsafe(pv.Ref)
		area := polyArea2D(tile, poly)
		areas[i] = area
		areaSum += area
	}

	thr := randAreaS * areaSum
	acc := float32(0)
	chosen := len(polys) - 1
	for i := range polys {
		next := acc + areas[i]
		if thr >= acc && thr < next {
			chosen = i
			break
		}
		acc = next
	}

	tile, poly := q.mesh.GetTileAndPolyByRefUnsafe(polys[chosen].Ref)
	nv := int32(poly.VertCount)
	verts := make([]float32, nv*3)
	for i := int32(0); i < nv; i++ {
		v := common.GetVert3(tile.Verts, poly.Verts[i])
		copy(common.GetVert3(verts, i), v)
	}
	triAreas := make([]float32, nv)
	pt := randomPointInConvexPoly(verts, nv, triAreas, randS, randT)

	h, st2 := q.GetPolyHeight(polys[chosen].Ref, pt)
	if st2.Failed() {
		return 0, randPt, Failure | InvalidParam
	}
	randPt[0], randPt[1], randPt[2] = pt[0], h, pt[2]
	return polys[chosen].Ref, randPt, Success
}

func polyArea2D(tile *Tile, poly *Poly) float32 {
	nv := int32(poly.VertCount)
	if nv < 3 {
		return 0
	}
	a0 := common.GetVert3(tile.Verts, poly.Verts[0])
	var area float32
	for i := int32(1); i < nv-1; i++ {
		b := common.GetVert3(tile.Verts, poly.Verts[i])
		c := common.GetVert3(tile.Verts, poly.Verts[i+1])
		area += maxf(0.001, triArea2D(a0, b, c))
	}
	return area
}
