package navmesh

import "testing"

func TestFindPathFullGrid(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 4}])

	path, status := q.FindPath(start, end, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 4.5}, filter, 64)
	if status.Failed() {
		t.Fatalf("FindPath failed: %v", status)
	}
	if status.Detail(PartialResult) {
		t.Fatalf("expected a complete path, got partial: %v", status)
	}
	if len(path) == 0 || path[0] != start || path[len(path)-1] != end {
		t.Fatalf("path does not span start..end: %v", path)
	}
}

func TestFindPathAroundWall(t *testing.T) {
	// Column c==2 is blocked except at row 4, forcing every path through
	// the top row (scenario S2: a corridor with a single detour).
	skip := func(c, r int32) bool { return c == 2 && r != 4 }
	mesh, refs := buildGridMesh(t, 5, 5, skip)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 0}])

	path, status := q.FindPath(start, end, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 0.5}, filter, 64)
	if status.Failed() {
		t.Fatalf("FindPath failed: %v", status)
	}
	if status.Detail(PartialResult) {
		t.Fatalf("expected a complete detour path, got partial: %v", status)
	}
	foundGap := false
	for _, ref := range path {
		if ref == refFor(mesh, refs[[2]int32{2, 4}]) {
			foundGap = true
		}
	}
	if !foundGap {
		t.Fatalf("expected the detour path to cross the gap at (2,4): %v", path)
	}
}

func TestFindPathDisconnected(t *testing.T) {
	// A full column removed with no detour at all disconnects the grid.
	skip := func(c, r int32) bool { return c == 2 }
	mesh, refs := buildGridMesh(t, 5, 5, skip)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 0}])

	path, status := q.FindPath(start, end, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 0.5}, filter, 64)
	if status.Failed() {
		t.Fatalf("FindPath failed outright: %v", status)
	}
	if !status.Detail(PartialResult) {
		t.Fatalf("expected PartialResult on a disconnected grid, got %v", status)
	}
	if path[len(path)-1] == end {
		t.Fatalf("a disconnected search should not reach the requested end: %v", path)
	}
}

func TestFindNearestPoly(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	ref, pt, status := q.FindNearestPoly([]float32{2.5, 0, 2.5}, []float32{1, 1, 1}, filter)
	if status.Failed() {
		t.Fatalf("FindNearestPoly failed: %v", status)
	}
	want := refFor(mesh, refs[[2]int32{2, 2}])
	if ref != want {
		t.Fatalf("expected nearest poly %v, got %v at %v", want, ref, pt)
	}
}

func TestFindStraightPath(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 0}])
	startPos := []float32{0.5, 0, 0.5}
	endPos := []float32{4.5, 0, 0.5}

	path, status := q.FindPath(start, end, startPos, endPos, filter, 64)
	if status.Failed() {
		t.Fatalf("FindPath failed: %v", status)
	}

	verts, status2 := q.FindStraightPath(startPos, endPos, path, 32, StraightPathAllCrossings)
	if status2.Failed() {
		t.Fatalf("FindStraightPath failed: %v", status2)
	}
	if len(verts) < 2 {
		t.Fatalf("expected at least a start and end vertex, got %d", len(verts))
	}
	if verts[0].Flags&StraightPathStart == 0 {
		t.Fatalf("first vertex should carry StraightPathStart, got flags=%d", verts[0].Flags)
	}
	last := verts[len(verts)-1]
	if last.Flags&StraightPathEnd == 0 {
		t.Fatalf("last vertex should carry StraightPathEnd, got flags=%d", last.Flags)
	}
	// A straight corridor along a single row should string-pull onto the
	// centreline itself, with every vertex colinear between the endpoints.
	for i, v := range verts {
		if v.Pos[2] < 0.49 || v.Pos[2] > 0.51 {
			t.Fatalf("vertex %d strayed off the straight corridor centreline: %+v", i, v)
		}
		if i > 0 && v.Pos[0] < verts[i-1].Pos[0] {
			t.Fatalf("vertex %d is not monotonically progressing toward the goal: %+v", i, verts)
		}
	}
}

func TestRaycastClearAndBlocked(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	hit, status := q.Raycast(start, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 0.5}, filter, 0, 32)
	if status.Failed() {
		t.Fatalf("Raycast failed: %v", status)
	}
	if hit.T < 1 {
		t.Fatalf("expected an unobstructed raycast across the row, got T=%v edge=%d", hit.T, hit.HitEdgeIdx)
	}

	skip := func(c, r int32) bool { return c == 2 }
	meshWall, refsWall := buildGridMesh(t, 5, 5, skip)
	qWall := NewQuery(meshWall, 256)
	startWall := refFor(meshWall, refsWall[[2]int32{0, 0}])
	hitWall, statusWall := qWall.Raycast(startWall, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 0.5}, filter, 0, 32)
	if statusWall.Failed() {
		t.Fatalf("Raycast failed: %v", statusWall)
	}
	if hitWall.T >= 1 {
		t.Fatalf("expected the raycast to stop at the removed column's wall, got T=%v", hitWall.T)
	}
}

func TestMoveAlongSurface(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	resultPos, visited, status := q.MoveAlongSurface(start, []float32{0.5, 0, 0.5}, []float32{2.5, 0, 2.5}, filter, 16)
	if status.Failed() {
		t.Fatalf("MoveAlongSurface failed: %v", status)
	}
	if len(visited) == 0 || visited[0] != start {
		t.Fatalf("expected the visited corridor to start at the origin poly: %v", visited)
	}
	if vdist2D(resultPos, []float32{2.5, 0, 2.5}) > 1e-3 {
		t.Fatalf("expected to reach the target inside the mesh, landed at %v", resultPos)
	}
}

func TestFindPolysAroundCircle(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{2, 2}])
	result, status := q.FindPolysAroundCircle(start, []float32{2.5, 0, 2.5}, 1.1, filter, 64)
	if status.Failed() {
		t.Fatalf("FindPolysAroundCircle failed: %v", status)
	}
	if len(result) < 1 {
		t.Fatalf("expected at least the start polygon in the result")
	}
	foundStart := false
	for _, v := range result {
		if v.Ref == start {
			foundStart = true
		}
	}
	if !foundStart {
		t.Fatalf("expected the start polygon itself to be in the result: %v", result)
	}
}

func TestFindDistanceToWall(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	// (0,0) is a corner cell: two of its edges are outer walls.
	start := refFor(mesh, refs[[2]int32{0, 0}])
	dist, _, _, status := q.FindDistanceToWall(start, []float32{0.5, 0, 0.5}, 5, filter)
	if status.Failed() {
		t.Fatalf("FindDistanceToWall failed: %v", status)
	}
	if dist > 0.51 {
		t.Fatalf("expected the corner cell's centre to be within 0.5 of a wall, got %v", dist)
	}
}
