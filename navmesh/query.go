package navmesh

import (
	"math"

	"github.com/ornfelt/navmesh/common"
)

const maxNodes = 2048

// Query is a single-threaded search scratchpad bound to one Mesh: its own
// node pool, tiny node pool (short searches like moveAlongSurface), open
// list, and sliced-query state. Two goroutines must never share a Query.
type Query struct {
	mesh         *Mesh
	nodePool     *NodePool
	tinyNodePool *NodePool
	openList     *NodeQueue

	sliced slicedState
}

func NewQuery(mesh *Mesh, maxNodesHint int32) *Query {
	if maxNodesHint <= 0 {
		maxNodesHint = maxNodes
	}
	hash := nextPow2(uint32(maxNodesHint))
	return &Query{
		mesh:         mesh,
		nodePool:     NewNodePool(uint32(maxNodesHint), hash),
		tinyNodePool: NewNodePool(64, 32),
		openList:     NewNodeQueue(),
	}
}

func (q *Query) Mesh() *Mesh { return q.mesh }

// closestPointOnPoly implements the §4.D contract: off-mesh connections
// interpolate linearly between endpoints by distance ratio; ground
// polygons clamp to the xz projection (or the polygon interior) and then
// adopt the detail mesh height where a triangle contains the point.
func closestPointOnPoly(tile *Tile, poly *Poly, pos []float32) (closest []float32, posOverPoly bool) {
	if poly.Type() == PolyTypeOffMeshConnection {
		v0 := common.GetVert3(tile.Verts, poly.Verts[0])
		v1 := common.GetVert3(tile.Verts, poly.Verts[1])
		d0 := vdist(pos, v0)
		d1 := vdist(pos, v1)
		u := d0 / (d0 + d1)
		out := make([]float32, 3)
		vlerp(out, v0, v1, u)
		return out, false
	}

	nv := int32(poly.VertCount)
	verts := make([]float32, nv*3)
	for i := int32(0); i < nv; i++ {
		v := common.GetVert3(tile.Verts, poly.Verts[i])
		copy(common.GetVert3(verts, i), v)
	}

	closest = []float32{pos[0], pos[1], pos[2]}
	inside := pointInPolygon(pos, verts, nv)
	if !inside {
		edgeD := make([]float32, nv)
		edgeT := make([]float32, nv)
		distancePtPolyEdgesSqr(pos, verts, nv, edgeD, edgeT)
		imin := int32(0)
		dmin := edgeD[0]
		for i := int32(1); i < nv; i++ {
			if edgeD[i] < dmin {
				dmin = edgeD[i]
				imin = i
			}
		}
		va := common.GetVert3(verts, imin)
		vb := common.GetVert3(verts, ((imin+1)%nv))
		vlerp(closest, va, vb, edgeT[imin])
		inside = false
	}
	posOverPoly = inside

	// Detail mesh height.
	var pd *PolyDetail
	polyIdx := polyDetailIndex(tile, poly)
	if polyIdx >= 0 {
		pd = &tile.DetailMeshes[polyIdx]
	}
	if pd != nil {
		for j := uint8(0); j < pd.TriCount; j++ {
			t := common.GetVert4(tile.DetailTris, pd.TriBase+uint32(j))
			var v [3][]float32
			for k := 0; k < 3; k++ {
				if t[k] < poly.VertCount {
					vi := poly.Verts[t[k]]
					v[k] = common.GetVert3(tile.Verts, vi)
				} else {
					vi := pd.VertBase + uint32(t[k]) - uint32(poly.VertCount)
					v[k] = common.GetVert3(tile.DetailVerts, vi)
				}
			}
			if h, ok := closestHeightPointTriangle(closest, v[0], v[1], v[2]); ok {
				closest[1] = h
				break
			}
		}
	}
	return closest, posOverPoly
}

func closestPointOnPolyInTile(tile *Tile, poly *Poly, pos []float32) (closest []float32, posOverPoly bool) {
	return closestPointOnPoly(tile, poly, pos)
}

// ClosestPointOnPoly is the public entry point for §4.D's closestPointOnPoly:
// off-mesh connections interpolate between endpoints; ground polygons clamp
// to the polygon (xz) and then adopt the detail-mesh height.
func (q *Query) ClosestPointOnPoly(ref PolyRef, pos []float32) (closest []float32, posOverPoly bool, status Status) {
	tile, poly, st := q.mesh.GetTileAndPolyByRef(ref)
	if st.Failed() {
		return nil, false, st
	}
	closest, posOverPoly = closestPointOnPoly(tile, poly, pos)
	return closest, posOverPoly, Success
}

// polyDetailIndex recovers a polygon's slot within its tile's slice, since
// tile.DetailMeshes is parallel to tile.Polys.
func polyDetailIndex(tile *Tile, poly *Poly) int {
	for i := range tile.Polys {
		if &tile.Polys[i] == poly {
			if i < len(tile.DetailMeshes) {
				return i
			}
			return -1
		}
	}
	return -1
}

// GetPolyHeight answers the height query: off-mesh connections interpolate
// by xz-distance ratio; ground polygons search detail triangles and return
// the first that contains the xz projection, failing INVALID_PARAM if none
// do.
func (q *Query) GetPolyHeight(ref PolyRef, pos []float32) (height float32, status Status) {
	tile, poly, st := q.mesh.GetTileAndPolyByRef(ref)
	if st.Failed() {
		return 0, st
	}
	if poly.Type() == PolyTypeOffMeshConnection {
		v0 := common.GetVert3(tile.Verts, poly.Verts[0])
		v1 := common.GetVert3(tile.Verts, poly.Verts[1])
		d0 := vdist2D(pos, v0)
		d1 := vdist2D(pos, v1)
		u := d0 / (d0 + d1)
		return v0[1] + (v1[1]-v0[1])*u, Success
	}

	polyIdx := polyDetailIndex(tile, poly)
	if polyIdx < 0 || polyIdx >= len(tile.DetailMeshes) {
		return 0, Failure | InvalidParam
	}
	pd := &tile.DetailMeshes[polyIdx]
	for j := uint8(0); j < pd.TriCount; j++ {
		t := common.GetVert4(tile.DetailTris, pd.TriBase+uint32(j))
		var v [3][]float32
		for k := 0; k < 3; k++ {
			if t[k] < poly.VertCount {
				vi := poly.Verts[t[k]]
				v[k] = common.GetVert3(tile.Verts, vi)
			} else {
				vi := pd.VertBase + uint32(t[k]) - uint32(poly.VertCount)
				v[k] = common.GetVert3(tile.DetailVerts, vi)
			}
		}
		if h, ok := closestHeightPointTriangle(pos, v[0], v[1], v[2]); ok {
			return h, Success
		}
	}
	return 0, Failure | InvalidParam
}

// queryPolygonsInTile walks the BV-tree when present (quantizing
// [qmin,qmax] with the tile's BvQuantFactor, descending only on overlap),
// falling back to a linear scan otherwise. Off-mesh connections are
// excluded; callback receives each passing PolyRef.
func (q *Query) queryPolygonsInTile(tile *Tile, qmin, qmax []float32, filter *QueryFilter, cb func(PolyRef, *Poly)) {
	base := q.mesh.GetPolyRefBase(tile.tileIndex)
	if len(tile.BvTree) > 0 {
		var bmin, bmax [3]uint16
		for i := 0; i < 3; i++ {
			bmin[i] = uint16(clampf((qmin[i]-tile.Header.Bmin[i])*tile.Header.BvQuantFactor, 0, 65535))
			bmax[i] = uint16(clampf((qmax[i]-tile.Header.Bmin[i])*tile.Header.BvQuantFactor, 0, 65535))
		}
		node := 0
		end := len(tile.BvTree)
		for node < end {
			n := &tile.BvTree[node]
			overlap := overlapQuantBounds(bmin, bmax, n.Bmin, n.Bmax)
			isLeaf := n.I >= 0
			if isLeaf && overlap {
				ref := base | PolyRef(n.I)
				poly := &tile.Polys[n.I]
				if filter == nil || filter.PassFilter(poly) {
					cb(ref, poly)
				}
			}
			if overlap || isLeaf {
				node++
			} else {
				escape := -int(n.I)
				node += escape
			}
		}
		return
	}
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		if poly.Type() == PolyTypeOffMeshConnection {
			continue
		}
		bmin, bmax := polyBounds(tile, poly)
		if !overlapBounds(qmin, qmax, bmin, bmax) {
			continue
		}
		if filter == nil || filter.PassFilter(poly) {
			cb(q.mesh.GetPolyRefBase(tile.tileIndex)|PolyRef(i), poly)
		}
	}
}

// QueryPolygons returns every polygon whose bounds overlap
// [center-halfExtents, center+halfExtents], across every tile intersecting
// that box.
func (q *Query) QueryPolygons(center, halfExtents []float32, filter *QueryFilter) []PolyRef {
	qmin := []float32{center[0] - halfExtents[0], center[1] - halfExtents[1], center[2] - halfExtents[2]}
	qmax := []float32{center[0] + halfExtents[0], center[1] + halfExtents[1], center[2] + halfExtents[2]}
	minx, miny := q.mesh.CalcTileLoc(qmin)
	maxx, maxy := q.mesh.CalcTileLoc(qmax)
	var out []PolyRef
	for ty := miny; ty <= maxy; ty++ {
		for tx := minx; tx <= maxx; tx++ {
			for _, tile := range q.mesh.GetTilesAt(tx, ty) {
				q.queryPolygonsInTile(tile, qmin, qmax, filter, func(ref PolyRef, _ *Poly) {
					out = append(out, ref)
				})
			}
		}
	}
	return out
}

// FindNearestPoly scans the tile grid over [center-halfExtents,
// center+halfExtents] and returns the polygon whose closestPointOnPoly
// minimizes a height-aware distance: horizontal squared distance when
// the projection falls outside the polygon, or
// max(0, |dy|-walkableClimb)^2 when it falls inside (preferring vertically
// reachable polygons over merely-closer ones). At most 128 candidates are
// considered.
func (q *Query) FindNearestPoly(center, halfExtents []float32, filter *QueryFilter) (nearestRef PolyRef, nearestPt []float32, status Status) {
	qmin := []float32{center[0] - halfExtents[0], center[1] - halfExtents[1], center[2] - halfExtents[2]}
	qmax := []float32{center[0] + halfExtents[0], center[1] + halfExtents[1], center[2] + halfExtents[2]}
	minx, miny := q.mesh.CalcTileLoc(qmin)
	maxx, maxy := q.mesh.CalcTileLoc(qmax)

	nearestDist := float32(math.MaxFloat32)
	considered := 0
	status = Success
	for ty := miny; ty <= maxy && considered < 128; ty++ {
		for tx := minx; tx <= maxx && considered < 128; tx++ {
			for _, tile := range q.mesh.GetTilesAt(tx, ty) {
				q.queryPolygonsInTile(tile, qmin, qmax, filter, func(ref PolyRef, poly *Poly) {
					if considered >= 128 {
						return
					}
					considered++
					closest, posOverPoly := closestPointOnPoly(tile, poly, center)
					var d float32
					diff := []float32{center[0] - closest[0], center[1] - closest[1], center[2] - closest[2]}
					if posOverPoly {
						d = sqr(maxf(0, float32(math.Abs(float64(diff[1])))-tile.Header.WalkableClimb))
					} else {
						d = diff[0]*diff[0] + diff[2]*diff[2]
					}
					if d < nearestDist {
						nearestDist = d
						nearestRef = ref
						nearestPt = closest
					}
				})
			}
		}
	}
	return nearestRef, nearestPt, status
}
