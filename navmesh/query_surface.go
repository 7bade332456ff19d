package navmesh

import (
	"math"

	"github.com/ornfelt/navmesh/common"
)

const maxMoveStack = 48

// MoveAlongSurface performs a constrained flood of up to 48 polygons within
// a search band centered on the midpoint of (startPos, endPos), radius
// |end-start|/2 + eps. At each polygon, if endPos lies inside it the search
// stops; otherwise every wall edge tightens a running best surface point
// (projection of endPos onto it) and every portal inside the band pushes
// its neighbour. The returned visited corridor is the prefix used for
// subsequent path stitching.
func (q *Query) MoveAlongSurface(startRef PolyRef, startPos, endPos []float32, filter *QueryFilter, maxVisited int32) (resultPos []float32, visited []PolyRef, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || startPos == nil || endPos == nil || filter == nil || maxVisited <= 0 {
		return nil, nil, Failure | InvalidParam
	}

	q.tinyNodePool.Clear()
	startNode := q.tinyNodePool.GetNode(startRef, 0)
	startNode.Pidx = 0
	startNode.Cost = 0
	startNode.Total = 0
	startNode.Flags = nodeClosed

	var stack []*Node
	stack = append(stack, startNode)

	bestPos := []float32{startPos[0], startPos[1], startPos[2]}
	bestDist := float32(math.MaxFloat32)
	var bestNode *Node

	searchPos := make([]float32, 3)
	vlerp(searchPos, startPos, endPos, 0.5)
	searchRadSqr := sqr(vdist(startPos, endPos)/2 + 0.001)

	status = Success

	for len(stack) > 0 {
		cur := stack[0]
		stack = stack[1:]

		curTile, curPoly := q.mesh.GetTileAndPolyByRefUnsafe(cur.Ref)
		nv := int32(curPoly.VertCount)
		verts := make([]float32, nv*3)
		for i := int32(0); i < nv; i++ {
			v := common.GetVert3(curTile.Verts, curPoly.Verts[i])
			copy(common.GetVert3(verts, i), v)
		}

		if pointInPolygon(endPos, verts, nv) {
			bestNode = cur
			vcopy(bestPos, endPos)
			break
		}

		j := int(curPoly.VertCount) - 1
		for i := 0; i < int(curPoly.VertCount); i++ {
			var neis []PolyRef
			if curPoly.Neis[j]&extLink != 0 {
				for k := curPoly.FirstLink; k != nullLink; k = curTile.Links[k].Next {
					link := curTile.Links[k]
					if int(link.Edge) == j && link.Ref != 0 {
						_, neiPoly := q.mesh.GetTileAndPolyByRefUnsafe(link.Ref)
						if filter.PassFilter(neiPoly) {
							neis = append(neis, link.Ref)
						}
					}
				}
			} else if curPoly.Neis[j] != 0 {
				idx := curPoly.Neis[j] - 1
				if filter.PassFilter(&curTile.Polys[idx]) {
					neis = append(neis, q.mesh.GetPolyRefBase(curTile.tileIndex)|PolyRef(idx))
				}
			}

			vj := common.GetVert3(verts, j)
			vi := common.GetVert3(verts, i)

			if len(neis) == 0 {
				_, distSqr := distancePtSegSqr2D(endPos, vj, vi)
				if distSqr < bestDist {
					t, _ := distancePtSegSqr2D(endPos, vj, vi)
					vlerp(bestPos, vj, vi, t)
					bestDist = distSqr
					bestNode = cur
				}
			} else {
				for _, nref := range neis {
					neighbourNode := q.tinyNodePool.GetNode(nref, 0)
					if neighbourNode == nil || neighbourNode.Flags&nodeClosed != 0 {
						continue
					}
					_, distSqr := distancePtSegSqr2D(searchPos, vj, vi)
					if distSqr > searchRadSqr {
						continue
					}
					if len(stack) < maxMoveStack {
						neighbourNode.Pidx = q.tinyNodePool.GetNodeIdx(cur)
						neighbourNode.Flags |= nodeClosed
						stack = append(stack, neighbourNode)
					}
				}
			}
			j = i
		}
	}

	if bestNode != nil {
		node := bestNode
		for node != nil {
			visited = append(visited, node.Ref)
			if int32(len(visited)) >= maxVisited {
				status |= BufferTooSmall
				break
			}
			node = q.tinyNodePool.GetNodeAtIdx(node.Pidx)
		}
		// reverse to start->...->best order.
		for l, r := 0, len(visited)-1; l < r; l, r = l+1, r-1 {
			visited[l], visited[r] = visited[r], visited[l]
		}
	}

	return bestPos, visited, status
}
