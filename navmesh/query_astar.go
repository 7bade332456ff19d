package navmesh

// hScale is the weighted-A* heuristic inflation: slightly greedy, trading
// optimality for fewer expansions.
const hScale = 0.999

// FindPath runs canonical weighted A* over the polygon adjacency graph
// from startRef to endRef. Node position for a newly visited neighbour is
// the midpoint of the shared portal edge (off-mesh connections collapse to
// one vertex); the end node's cost sums the edge cost into endRef plus the
// cost from that midpoint to the literal endPos. A closed node may be
// reopened when the new total is strictly smaller. If the open list
// empties without reaching endRef, the partial corridor to the
// best-heuristic node is returned with PartialResult set.
func (q *Query) FindPath(startRef, endRef PolyRef, startPos, endPos []float32, filter *QueryFilter, maxPath int32) (path []PolyRef, status Status) {
	if !q.mesh.IsValidPolyRef(startRef) || !q.mesh.IsValidPolyRef(endRef) ||
		startPos == nil || endPos == nil || filter == nil || maxPath <= 0 {
		return nil, Failure | InvalidParam
	}
	if q.busy() {
		return nil, Failure
	}
	if startRef == endRef {
		return []PolyRef{startRef}, Success
	}

	q.nodePool.Clear()
	q.openList.Reset()

	startNode := q.nodePool.GetNode(startRef, 0)
	vcopy(startNode.Pos[:], startPos)
	startNode.Pidx = 0
	startNode.Cost = 0
	startNode.Total = vdist(startPos, endPos) * hScale
	startNode.Flags = nodeOpen
	q.openList.Push(startNode)

	lastBestNode := startNode
	lastBestHeuristic := startNode.Total

	status = Success

	for !q.openList.Empty() {
		best := q.openList.Pop()
		best.Flags &^= nodeOpen
		best.Flags |= nodeClosed

		if best.Ref == endRef {
			lastBestNode = best
			break
		}

		bestTile, bestPoly := q.mesh.GetTileAndPolyByRefUnsafe(best.Ref)

		var parentRef PolyRef
		var parentPoly *Poly
		if best.Pidx != 0 {
			parentNode := q.nodePool.GetNodeAtIdx(best.Pidx)
			parentRef = parentNode.Ref
			_, parentPoly = q.mesh.GetTileAndPolyByRefUnsafe(parentRef)
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

			neighbourNode := q.nodePool.GetNode(neighbourRef, uint8(link.Side>>1))
			if neighbourNode == nil {
				status |= OutOfNodes
				continue
			}

			if neighbourNode.Pidx == 0 && neighbourNode.Flags == 0 {
				left, right, st := q.mesh.getPortalPoints(best.Ref, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile)
				if st.Failed() {
					continue
				}
				vlerp(neighbourNode.Pos[:], left, right, 0.5)
			}

			var cost, heuristic float32
			if neighbourRef == endRef {
				curCost := filter.GetCost(best.Pos[:], neighbourNode.Pos[:], parentPoly, bestPoly, neighbourPoly)
				endCost := filter.GetCost(neighbourNode.Pos[:], endPos, bestPoly, neighbourPoly, neighbourPoly)
				cost = best.Cost + curCost + endCost
				heuristic = 0
			} else {
				curCost := filter.GetCost(best.Pos[:], neighbourNode.Pos[:], parentPoly, bestPoly, neighbourPoly)
				cost = best.Cost + curCost
				heuristic = vdist(neighbourNode.Pos[:], endPos) * hScale
			}
			total := cost + heuristic

			if (neighbourNode.Flags&(nodeOpen|nodeClosed)) != 0 && total >= neighbourNode.Total {
				continue
			}

			neighbourNode.Pidx = q.nodePool.GetNodeIdx(best)
			neighbourNode.Flags &^= nodeClosed
			neighbourNode.Cost = cost
			neighbourNode.Total = total

			if heuristic < lastBestHeuristic {
				lastBestHeuristic = heuristic
				lastBestNode = neighbourNode
			}

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.Modify(neighbourNode)
			} else {
				neighbourNode.Flags |= nodeOpen
				q.openList.Push(neighbourNode)
			}
		}
	}

	if lastBestNode.Ref != endRef {
		status |= PartialResult
	}

	path = q.reconstructPath(lastBestNode, maxPath, &status)
	return path, status
}

func (q *Query) reconstructPath(endNode *Node, maxPath int32, status *Status) []PolyRef {
	var rev []PolyRef
	node := endNode
	for node != nil {
		rev = append(rev, node.Ref)
		if node.Pidx == 0 {
			break
		}
		node = q.nodePool.GetNodeAtIdx(node.Pidx)
	}
	n := int32(len(rev))
	if n > maxPath {
		n = maxPath
		*status |= BufferTooSmall
	}
	out := make([]PolyRef, n)
	for i := int32(0); i < n; i++ {
		out[i] = rev[len(rev)-1-int(i)]
	}
	return out
}
