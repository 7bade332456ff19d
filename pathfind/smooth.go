package pathfind

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ornfelt/navmesh/navmesh"
)

// renderSmooth is the iterative corridor smoother: it repeatedly steers
// toward a lookahead target along the straight-path portals, steps via
// MoveAlongSurface, splices the result into the corridor with
// fixupCorridor, and projects the new position onto the mesh height.
func (f *Finder) renderSmooth(startPos, endPos []float32) {
	iterPos := []float32{startPos[0], startPos[1], startPos[2]}
	if h, st := f.query.GetPolyHeight(f.polyPath[0], iterPos); !st.Failed() {
		iterPos[1] = h
	}

	points := []mgl32.Vec3{{iterPos[0], iterPos[1], iterPos[2]}}
	polys := append([]navmesh.PolyRef{}, f.polyPath...)

	for len(points) < maxPointPathLength && len(polys) > 0 {
		if vdist2D(iterPos, endPos) < smoothPathSlop && absf(iterPos[1]-endPos[1]) < 2.0 {
			break
		}

		steerPos, steerFlag, steerRef, ok := f.getSteerTarget(iterPos, endPos, polys)
		if !ok {
			break
		}

		isOffMeshConn := steerFlag&navmesh.StraightPathOffMeshConnection != 0
		isEnd := steerFlag&navmesh.StraightPathEnd != 0

		delta := []float32{steerPos[0] - iterPos[0], 0, steerPos[2] - iterPos[2]}
		lenSqr := delta[0]*delta[0] + delta[2]*delta[2]
		var stepLen float32 = smoothPathStepSize
		if isOffMeshConn || isEnd {
			if d := sqrtf(lenSqr); d < stepLen {
				stepLen = d
			}
		}
		moveTarget := make([]float32, 3)
		if lenSqr > 1e-9 {
			scale := stepLen / sqrtf(lenSqr)
			moveTarget[0] = iterPos[0] + delta[0]*scale
			moveTarget[1] = iterPos[1]
			moveTarget[2] = iterPos[2] + delta[2]*scale
		} else {
			copy(moveTarget, iterPos)
		}

		resultPos, visited, st := f.query.MoveAlongSurface(polys[0], iterPos, moveTarget, f.filter, 16)
		if st.Failed() {
			break
		}
		polys = fixupCorridor(polys, visited)

		if h, hst := f.query.GetPolyHeight(polys[0], resultPos); !hst.Failed() {
			resultPos[1] = h
		}
		iterPos = resultPos

		if isOffMeshConn && steerRef != 0 {
			points = append(points, mgl32.Vec3{iterPos[0], iterPos[1], iterPos[2]})
			polys = offMeshAdvance(polys, steerRef)
			continue
		}

		points = append(points, mgl32.Vec3{iterPos[0], iterPos[1], iterPos[2]})
	}

	f.points = points
}

// getSteerTarget looks ahead along the straight-path portals until the
// vertex is farther than smoothPathSlop from the current position, or an
// off-mesh connection / the end is reached.
func (f *Finder) getSteerTarget(pos, target []float32, polys []navmesh.PolyRef) (steerPos []float32, flags int32, ref navmesh.PolyRef, ok bool) {
	const maxSteerPoints = 3
	verts, st := f.query.FindStraightPath(pos, target, polys, maxSteerPoints, 0)
	if st.Failed() || len(verts) == 0 {
		return nil, 0, 0, false
	}

	i := 0
	for i < len(verts) && verts[i].Flags&navmesh.StraightPathOffMeshConnection == 0 && (vdist2D(verts[i].Pos[:], pos) < smoothPathSlop) {
		i++
	}
	if i >= len(verts) {
		i = len(verts) - 1
	}
	v := verts[i]
	return []float32{v.Pos[0], v.Pos[1], v.Pos[2]}, v.Flags, v.Ref, true
}

// fixupCorridor finds the furthest polygon of path that also appears in
// visited and returns visited from that polygon on, followed by the rest of
// path after it — splicing the local-walk result into the main corridor.
// path is returned unchanged when the two share no polygon.
func fixupCorridor(path []navmesh.PolyRef, visited []navmesh.PolyRef) []navmesh.PolyRef {
	furthestPath := -1
	furthestVisited := -1
	for i := len(path) - 1; i >= 0; i-- {
		found := -1
		for j := len(visited) - 1; j >= 0; j-- {
			if path[i] == visited[j] {
				found = j
				break
			}
		}
		if found != -1 {
			furthestPath = i
			furthestVisited = found
			break
		}
	}
	if furthestPath == -1 || furthestVisited == -1 {
		return path
	}
	out := make([]navmesh.PolyRef, 0, len(visited)-furthestVisited+len(path)-furthestPath)
	out = append(out, visited[furthestVisited:]...)
	out = append(out, path[furthestPath+1:]...)
	return out
}

func offMeshAdvance(polys []navmesh.PolyRef, steerRef navmesh.PolyRef) []navmesh.PolyRef {
	for i, p := range polys {
		if p == steerRef && i+1 < len(polys) {
			return polys[i+1:]
		}
	}
	return polys
}

func vdist2D(a, b []float32) float32 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return sqrtf(dx*dx + dz*dz)
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrtf(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
