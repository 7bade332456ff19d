package navmesh

import (
	"math"

	"github.com/ornfelt/navmesh/common"
)

// RaycastUseCosts integrates filter.GetCost along the hit path; otherwise
// RaycastHit.PathCost is left at zero.
const RaycastUseCosts = 1

// RaycastHit is the result of a 2D (xz) line-of-sight query over the mesh.
type RaycastHit struct {
	T          float32
	HitNormal  [3]float32
	HitEdgeIdx int32
	Path       []PolyRef
	PathCost   float32
}

// Raycast walks polygon-by-polygon in xz from startRef toward endPos,
// stopping at the first wall it hits (T in (0,1), HitNormal populated) or
// reporting T=+Inf if the ray reaches endPos while still inside the mesh.
// endPos.y is ignored: this is a 2D check and does not resolve vertical
// separation.
func (q *Query) Raycast(startRef PolyRef, startPos, endPos []float32, filter *QueryFilter, options int32, maxPath int32) (hit RaycastHit, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || startPos == nil || endPos == nil || filter == nil {
		return hit, Failure | InvalidParam
	}

	hit.Path = make([]PolyRef, 0, maxPath)
	dir := make([]float32, 3)
	vsub(dir, endPos, startPos)

	curPos := []float32{startPos[0], startPos[1], startPos[2]}
	var lastPos [3]float32

	status = Success
	curRef := startRef
	tile, poly := q.mesh.GetTileAndPolyByRefUnsafe(curRef)

	for curRef != 0 {
		nv := int32(poly.VertCount)
		verts := make([]float32, nv*3)
		for i := int32(0); i < nv; i++ {
			v := common.GetVert3(tile.Verts, poly.Verts[i])
			copy(common.GetVert3(verts, i), v)
		}

		_, tmax, _, segMax, ok := intersectSegmentPoly2D(startPos, endPos, verts, nv)
		if !ok {
			return hit, status
		}
		hit.HitEdgeIdx = segMax
		if tmax > hit.T {
			hit.T = tmax
		}

		if int32(len(hit.Path)) < maxPath {
			hit.Path = append(hit.Path, curRef)
		} else {
			status |= BufferTooSmall
		}

		if segMax == -1 {
			hit.T = float32(math.Inf(1))
			if options&RaycastUseCosts != 0 {
				hit.PathCost += filter.GetCost(curPos, endPos, nil, poly, poly)
			}
			return hit, status
		}

		var nextRef PolyRef
		var nextTile *Tile
		var nextPoly *Poly
		for i := poly.FirstLink; i != nullLink; i = tile.Links[i].Next {
			link := tile.Links[i]
			if int32(link.Edge) != segMax {
				continue
			}
			nt, np := q.mesh.GetTileAndPolyByRefUnsafe(link.Ref)
			if np.Type() == PolyTypeOffMeshConnection {
				continue
			}
			if !filter.PassFilter(np) {
				continue
			}
			if link.Side == 0xff {
				nextRef, nextTile, nextPoly = link.Ref, nt, np
				break
			}
			if link.Bmin == 0 && link.Bmax == 255 {
				nextRef, nextTile, nextPoly = link.Ref, nt, np
				break
			}
			v0 := poly.Verts[link.Edge]
			v1 := poly.Verts[(int(link.Edge)+1)%int(poly.VertCount)]
			left := common.GetVert3(tile.Verts, v0)
			right := common.GetVert3(tile.Verts, v1)
			s := float32(1.0 / 255.0)
			if link.Side == 0 || link.Side == 4 {
				lmin := left[2] + (right[2]-left[2])*(float32(link.Bmin)*s)
				lmax := left[2] + (right[2]-left[2])*(float32(link.Bmax)*s)
				if lmin > lmax {
					lmin, lmax = lmax, lmin
				}
				z := startPos[2] + (endPos[2]-startPos[2])*tmax
				if z >= lmin && z <= lmax {
					nextRef, nextTile, nextPoly = link.Ref, nt, np
					break
				}
			} else if link.Side == 2 || link.Side == 6 {
				lmin := left[0] + (right[0]-left[0])*(float32(link.Bmin)*s)
				lmax := left[0] + (right[0]-left[0])*(float32(link.Bmax)*s)
				if lmin > lmax {
					lmin, lmax = lmax, lmin
				}
				x := startPos[0] + (endPos[0]-startPos[0])*tmax
				if x >= lmin && x <= lmax {
					nextRef, nextTile, nextPoly = link.Ref, nt, np
					break
				}
			}
		}

		if options&RaycastUseCosts != 0 {
			vcopy(lastPos[:], curPos)
			vmad(curPos, startPos, dir, hit.T)
			e1 := common.GetVert3(verts, segMax)
			e2 := common.GetVert3(verts, ((segMax+1)%nv))
			eDir := []float32{e2[0] - e1[0], e2[1] - e1[1], e2[2] - e1[2]}
			diff := []float32{curPos[0] - e1[0], curPos[1] - e1[1], curPos[2] - e1[2]}
			var s float32
			if sqr(eDir[0]) > sqr(eDir[2]) {
				s = diff[0] / eDir[0]
			} else {
				s = diff[2] / eDir[2]
			}
			curPos[1] = e1[1] + eDir[1]*s
			hit.PathCost += filter.GetCost(lastPos[:], curPos, nil, poly, poly)
		}

		if nextRef == 0 {
			a := segMax
			b := int32(0)
			if segMax+1 < nv {
				b = segMax + 1
			}
			va := common.GetVert3(verts, a)
			vb := common.GetVert3(verts, b)
			dx := vb[0] - va[0]
			dz := vb[2] - va[2]
			hit.HitNormal[0] = dz
			hit.HitNormal[1] = 0
			hit.HitNormal[2] = -dx
			vnormalize(hit.HitNormal[:])
			return hit, status
		}

		curRef = nextRef
		tile, poly = nextTile, nextPoly
	}

	return hit, status
}
