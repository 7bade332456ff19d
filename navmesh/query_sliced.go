package navmesh

// FindPathOptAnyAngle enables the raycast shortcut during sliced A*: for
// each popped node within raycastLimit of its parent, a ray is cast toward
// the candidate neighbour; if it reaches the target, the neighbour is
// attached directly to best's parent (skipping best itself) and flagged
// ParentDetached, so reconstruction re-traces the skipped span by raycast.
const FindPathOptAnyAngle int32 = 0x01

type slicedQueryState int32

const (
	slicedFailed slicedQueryState = iota
	slicedInProgress
	slicedValid
)

type slicedState struct {
	state          slicedQueryState
	startRef       PolyRef
	endRef         PolyRef
	startPos       [3]float32
	endPos         [3]float32
	filter         *QueryFilter
	options        int32
	raycastLimitSqr float32
	lastBestNode   *Node
	lastBestHeuristic float32
}

// InitSlicedFindPath stores the query as cooperative process state; only
// UpdateSlicedFindPath/FinalizeSlicedFindPath{,Partial} may run until the
// query is finalized or re-initialized. FindPath, FindPolysAroundCircle,
// FindPolysAroundShape, and FindDistanceToWall all share q.nodePool and
// q.openList with the sliced search, so each refuses (FAILURE) while a
// sliced query is in progress rather than silently corrupting it.
// MoveAlongSurface and Raycast use their own separate node pool (or none)
// and stay callable throughout, since UpdateSlicedFindPath's own any-angle
// shortcut depends on calling Raycast mid-search.
func (q *Query) InitSlicedFindPath(startRef, endRef PolyRef, startPos, endPos []float32, filter *QueryFilter, options int32, agentRadius float32) Status {
	q.sliced = slicedState{}
	if !q.mesh.IsValidPolyRef(startRef) || !q.mesh.IsValidPolyRef(endRef) || startPos == nil || endPos == nil || filter == nil {
		q.sliced.state = slicedFailed
		return Failure | InvalidParam
	}

	q.sliced.startRef = startRef
	q.sliced.endRef = endRef
	vcopy(q.sliced.startPos[:], startPos)
	vcopy(q.sliced.endPos[:], endPos)
	q.sliced.filter = filter
	q.sliced.options = options
	const rayCastLimitProportions = 50.0
	q.sliced.raycastLimitSqr = sqr(agentRadius * rayCastLimitProportions)

	if startRef == endRef {
		q.sliced.state = slicedValid
		return Success
	}

	q.nodePool.Clear()
	q.openList.Reset()

	startNode := q.nodePool.GetNode(startRef, 0)
	vcopy(startNode.Pos[:], startPos)
	startNode.Total = vdist(startPos, endPos) * hScale
	startNode.Flags = nodeOpen
	q.openList.Push(startNode)

	q.sliced.lastBestNode = startNode
	q.sliced.lastBestHeuristic = startNode.Total
	q.sliced.state = slicedInProgress
	return InProgress
}

// UpdateSlicedFindPath runs at most maxIter expansions of the in-progress
// sliced search.
func (q *Query) UpdateSlicedFindPath(maxIter int32) (doneIters int32, status Status) {
	if q.sliced.state != slicedInProgress {
		return 0, q.sliced.statusOf()
	}

	filter := q.sliced.filter
	endPos := q.sliced.endPos[:]

	for doneIters < maxIter && !q.openList.Empty() {
		doneIters++
		best := q.openList.Pop()
		best.Flags &^= nodeOpen
		best.Flags |= nodeClosed

		if best.Ref == q.sliced.endRef {
			q.sliced.lastBestNode = best
			q.sliced.state = slicedValid
			return doneIters, Success
		}

		bestTile, bestPoly := q.mesh.GetTileAndPolyByRefUnsafe(best.Ref)
		if bestTile.Header == nil {
			q.sliced.state = slicedFailed
			return doneIters, Failure
		}

		var parentRef PolyRef
		var parentPoly *Poly
		if best.Pidx != 0 {
			pn := q.nodePool.GetNodeAtIdx(best.Pidx)
			parentRef = pn.Ref
			_, parentPoly = q.mesh.GetTileAndPolyByRefUnsafe(parentRef)
		}

		tryLOS := q.sliced.options&FindPathOptAnyAngle != 0 && parentRef != 0 &&
			vdistSqr(parentNode(q, best).Pos[:], best.Pos[:]) < q.sliced.raycastLimitSqr

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
			foundShortcut := false
			if tryLOS {
				hit, hst := q.Raycast(parentRef, parentNode(q, best).Pos[:], neighbourNode.Pos[:], filter, RaycastUseCosts, 64)
				if !hst.Failed() && hit.T >= 1 {
					cost = parentNode(q, best).Cost + hit.PathCost
					foundShortcut = true
				}
			}

			if !foundShortcut {
				curCost := filter.GetCost(best.Pos[:], neighbourNode.Pos[:], parentPoly, bestPoly, neighbourPoly)
				cost = best.Cost + curCost
			}

			if neighbourRef == q.sliced.endRef {
				endCost := filter.GetCost(neighbourNode.Pos[:], endPos, bestPoly, neighbourPoly, neighbourPoly)
				cost += endCost
				heuristic = 0
			} else {
				heuristic = vdist(neighbourNode.Pos[:], endPos) * hScale
			}
			total := cost + heuristic

			if (neighbourNode.Flags&(nodeOpen|nodeClosed)) != 0 && total >= neighbourNode.Total {
				continue
			}

			if foundShortcut {
				neighbourNode.Pidx = best.Pidx
				neighbourNode.Flags |= nodeParentDetached
			} else {
				neighbourNode.Pidx = q.nodePool.GetNodeIdx(best)
				neighbourNode.Flags &^= nodeParentDetached
			}
			neighbourNode.Flags &^= nodeClosed
			neighbourNode.Cost = cost
			neighbourNode.Total = total

			if heuristic < q.sliced.lastBestHeuristic {
				q.sliced.lastBestHeuristic = heuristic
				q.sliced.lastBestNode = neighbourNode
			}

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.Modify(neighbourNode)
			} else {
				neighbourNode.Flags |= nodeOpen
				q.openList.Push(neighbourNode)
			}
		}
	}

	if q.openList.Empty() {
		q.sliced.state = slicedValid
		return doneIters, Success | PartialResult
	}
	return doneIters, InProgress
}

func parentNode(q *Query, n *Node) *Node {
	if n.Pidx == 0 {
		return n
	}
	return q.nodePool.GetNodeAtIdx(n.Pidx)
}

// busy reports whether a sliced search is mid-flight and still holds
// q.nodePool/q.openList; every other search entry point that touches
// those must refuse rather than silently corrupt the sliced corridor.
func (q *Query) busy() bool { return q.sliced.state == slicedInProgress }

func (s *slicedState) statusOf() Status {
	switch s.state {
	case slicedInProgress:
		return InProgress
	case slicedValid:
		return Success
	default:
		return Failure
	}
}

// FinalizeSlicedFindPath reconstructs the corridor from the completed
// sliced search and resets the state machine to its FAILURE sentinel so a
// stray call after finalize is a hard error rather than corrupted reuse.
func (q *Query) FinalizeSlicedFindPath(maxPath int32) (path []PolyRef, status Status) {
	if q.sliced.state == slicedFailed {
		return nil, Failure
	}
	defer func() { q.sliced.state = slicedFailed }()

	if q.sliced.startRef == q.sliced.endRef {
		return []PolyRef{q.sliced.startRef}, Success
	}
	if q.sliced.lastBestNode == nil {
		return nil, Failure
	}

	status = Success
	if q.sliced.lastBestNode.Ref != q.sliced.endRef {
		status |= PartialResult
	}
	path = q.reconstructSlicedPath(q.sliced.lastBestNode, maxPath, &status)
	return path, status
}

// FinalizeSlicedFindPathPartial resumes toward an already-known corridor:
// it locates the furthest existing ref the pool has visited and reverses
// from there (else from the best-heuristic node), marking PartialResult.
func (q *Query) FinalizeSlicedFindPathPartial(existing []PolyRef, maxPath int32) (path []PolyRef, status Status) {
	if q.sliced.state == slicedFailed {
		return nil, Failure
	}
	defer func() { q.sliced.state = slicedFailed }()

	if len(existing) == 0 {
		return nil, Failure | InvalidParam
	}

	var node *Node
	for i := len(existing) - 1; i >= 0; i-- {
		node = q.nodePool.FindNode(existing[i], 0)
		if node != nil {
			break
		}
	}
	if node == nil {
		node = q.sliced.lastBestNode
	}
	if node == nil {
		return nil, Failure
	}

	status = Success | PartialResult
	path = q.reconstructSlicedPath(node, maxPath, &status)
	return path, status
}

// reconstructSlicedPath mirrors reconstructPath but additionally re-traces
// any ParentDetached hop via raycast, recovering the intermediate polygons
// the shortcut skipped over.
func (q *Query) reconstructSlicedPath(endNode *Node, maxPath int32, status *Status) []PolyRef {
	var rev []PolyRef
	node := endNode
	for node != nil {
		rev = append(rev, node.Ref)
		if node.Flags&nodeParentDetached != 0 {
			parent := parentNode(q, node)
			hit, _ := q.Raycast(parent.Ref, parent.Pos[:], node.Pos[:], q.sliced.filter, 0, 64)
			for i := len(hit.Path) - 1; i >= 0; i-- {
				if hit.Path[i] != node.Ref && hit.Path[i] != parent.Ref {
					rev = append(rev, hit.Path[i])
				}
			}
		}
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
