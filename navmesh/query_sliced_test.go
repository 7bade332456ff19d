package navmesh

import "testing"

func TestSlicedFindPathFullGrid(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 4}])
	startPos := []float32{0.5, 0, 0.5}
	endPos := []float32{4.5, 0, 4.5}

	status := q.InitSlicedFindPath(start, end, startPos, endPos, filter, 0, 0.5)
	if status.Failed() {
		t.Fatalf("InitSlicedFindPath failed: %v", status)
	}

	var done int32
	for {
		iters, st := q.UpdateSlicedFindPath(4)
		done += iters
		if st.Failed() {
			t.Fatalf("UpdateSlicedFindPath failed after %d iters: %v", done, st)
		}
		if !st.InProgress() {
			break
		}
	}

	path, status := q.FinalizeSlicedFindPath(64)
	if status.Failed() {
		t.Fatalf("FinalizeSlicedFindPath failed: %v", status)
	}
	if status.Detail(PartialResult) {
		t.Fatalf("expected a complete path, got partial: %v", status)
	}
	if len(path) == 0 || path[0] != start || path[len(path)-1] != end {
		t.Fatalf("path does not span start..end: %v", path)
	}
}

func TestSlicedFindPathSameStartEnd(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{1, 1}])
	pos := []float32{1.5, 0, 1.5}

	status := q.InitSlicedFindPath(start, start, pos, pos, filter, 0, 0.5)
	if status != Success {
		t.Fatalf("expected immediate Success for start==end, got %v", status)
	}

	path, status := q.FinalizeSlicedFindPath(8)
	if status.Failed() {
		t.Fatalf("FinalizeSlicedFindPath failed: %v", status)
	}
	if len(path) != 1 || path[0] != start {
		t.Fatalf("expected a single-ref path, got %v", path)
	}
}

func TestSlicedFindPathDisconnected(t *testing.T) {
	// A full column removed with no detour disconnects the grid, so the
	// sliced search exhausts its open list before reaching the goal.
	skip := func(c, r int32) bool { return c == 2 }
	mesh, refs := buildGridMesh(t, 5, 5, skip)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 0}])

	status := q.InitSlicedFindPath(start, end, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 0.5}, filter, 0, 0.5)
	if status != InProgress {
		t.Fatalf("expected InProgress, got %v", status)
	}

	for {
		_, st := q.UpdateSlicedFindPath(16)
		if st.Failed() {
			t.Fatalf("UpdateSlicedFindPath failed outright: %v", st)
		}
		if !st.InProgress() {
			break
		}
	}

	path, status := q.FinalizeSlicedFindPath(64)
	if status.Failed() {
		t.Fatalf("FinalizeSlicedFindPath failed outright: %v", status)
	}
	if !status.Detail(PartialResult) {
		t.Fatalf("expected PartialResult on a disconnected grid, got %v", status)
	}
	if len(path) == 0 || path[len(path)-1] == end {
		t.Fatalf("a disconnected search should not reach the requested end: %v", path)
	}
}

func TestSlicedFindPathFinalizePartial(t *testing.T) {
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 4}])

	status := q.InitSlicedFindPath(start, end, []float32{0.5, 0, 0.5}, []float32{4.5, 0, 4.5}, filter, 0, 0.5)
	if status.Failed() {
		t.Fatalf("InitSlicedFindPath failed: %v", status)
	}
	// Run just enough iterations to have visited some polygons without
	// necessarily reaching the goal, then finalize against that partial
	// corridor the way a budget-exhausted caller would.
	q.UpdateSlicedFindPath(2)

	existing := []PolyRef{start}
	path, status := q.FinalizeSlicedFindPathPartial(existing, 64)
	if status.Failed() {
		t.Fatalf("FinalizeSlicedFindPathPartial failed: %v", status)
	}
	if !status.Detail(PartialResult) {
		t.Fatalf("expected PartialResult, got %v", status)
	}
	if len(path) == 0 || path[0] != start {
		t.Fatalf("expected the partial corridor to start at the known ref: %v", path)
	}

	// Once finalized the sliced state is a hard sentinel: any further call
	// must fail rather than reuse stale state.
	if _, status := q.FinalizeSlicedFindPath(64); !status.Failed() {
		t.Fatalf("expected finalize-after-finalize to fail, got %v", status)
	}
}

func TestSlicedFindPathAnyAngleShortcut(t *testing.T) {
	// A straight, unobstructed row gives the any-angle raycast shortcut
	// (S6) plenty of opportunity to detach a neighbour's parent across
	// several cells at once; the reconstructed corridor must still be a
	// contiguous chain of linked polygons from start to end.
	mesh, refs := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	start := refFor(mesh, refs[[2]int32{0, 0}])
	end := refFor(mesh, refs[[2]int32{4, 0}])
	startPos := []float32{0.5, 0, 0.5}
	endPos := []float32{4.5, 0, 0.5}

	status := q.InitSlicedFindPath(start, end, startPos, endPos, filter, FindPathOptAnyAngle, 1.0)
	if status.Failed() {
		t.Fatalf("InitSlicedFindPath failed: %v", status)
	}

	for {
		_, st := q.UpdateSlicedFindPath(8)
		if st.Failed() {
			t.Fatalf("UpdateSlicedFindPath failed: %v", st)
		}
		if !st.InProgress() {
			break
		}
	}

	path, status := q.FinalizeSlicedFindPath(64)
	if status.Failed() {
		t.Fatalf("FinalizeSlicedFindPath failed: %v", status)
	}
	if status.Detail(PartialResult) {
		t.Fatalf("expected a complete path, got partial: %v", status)
	}
	if len(path) == 0 || path[0] != start || path[len(path)-1] != end {
		t.Fatalf("path does not span start..end: %v", path)
	}
	for i := 1; i < len(path); i++ {
		if !adjacentPolys(mesh, path[i-1], path[i]) {
			t.Fatalf("corridor is not contiguous between %v and %v: %v", path[i-1], path[i], path)
		}
	}
}

func TestSlicedFindPathInvalidRef(t *testing.T) {
	mesh, _ := buildGridMesh(t, 5, 5, nil)
	q := NewQuery(mesh, 256)
	filter := NewQueryFilter()

	status := q.InitSlicedFindPath(0, 0, []float32{0, 0, 0}, []float32{1, 0, 1}, filter, 0, 0.5)
	if !status.Failed() {
		t.Fatalf("expected InitSlicedFindPath to fail on ref 0, got %v", status)
	}
	if _, status := q.FinalizeSlicedFindPath(8); !status.Failed() {
		t.Fatalf("expected finalize after a failed init to fail, got %v", status)
	}
}
