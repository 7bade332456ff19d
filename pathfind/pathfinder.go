// Package pathfind drives the query engine with a request/response
// pipeline: snap start/end to the mesh, search a polygon corridor, and
// render it either as a straight funneled path or an iteratively smoothed
// one.
package pathfind

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ornfelt/navmesh/navmesh"
)

const (
	maxPathLength      = 740
	maxPointPathLength = 740

	smoothPathStepSize = 4.0
	smoothPathSlop     = 0.3
)

// PathType classifies the outcome of a CalculatePath call, giving callers
// a typed result instead of having to infer it from the point list.
type PathType int

const (
	PathNormal PathType = iota
	PathShortcut
	PathIncomplete
	PathNoPath
)

func (t PathType) String() string {
	switch t {
	case PathNormal:
		return "normal"
	case PathShortcut:
		return "shortcut"
	case PathIncomplete:
		return "incomplete"
	default:
		return "nopath"
	}
}

// Finder builds rendered paths on top of one navmesh.Query. Like Query, a
// Finder is not safe for concurrent use by more than one caller.
type Finder struct {
	mesh   *navmesh.Mesh
	query  *navmesh.Query
	filter *navmesh.QueryFilter

	useStraightPath   bool
	forceDestination  bool
	swimming          bool
	pathLengthLimit   int32

	polyPath         []navmesh.PolyRef
	points           []mgl32.Vec3
	actualEnd        mgl32.Vec3
	pathType         PathType
}

// NewFinder builds a path builder over mesh using its own query scratchpad
// and a default filter (every area included at cost 1.0).
func NewFinder(mesh *navmesh.Mesh) *Finder {
	return &Finder{
		mesh:            mesh,
		query:           navmesh.NewQuery(mesh, 2048),
		filter:          navmesh.NewQueryFilter(),
		pathLengthLimit: maxPathLength,
	}
}

func (f *Finder) SetUseStraightPath(v bool)   { f.useStraightPath = v }
func (f *Finder) SetForceDestination(v bool)  { f.forceDestination = v }
func (f *Finder) SetPathLengthLimit(n int32)  { f.pathLengthLimit = n }

// SetSwimming toggles the liquid/ground area cost split on the internal
// filter — the Go equivalent of the original's updateFilter(isSwimming).
func (f *Finder) SetSwimming(swimming bool) {
	f.swimming = swimming
	if swimming {
		f.filter.AreaCost[areaWater] = 1.0
		f.filter.AreaCost[areaGround] = 10.0
	} else {
		f.filter.AreaCost[areaWater] = 10.0
		f.filter.AreaCost[areaGround] = 1.0
	}
}

const (
	areaGround uint8 = 0
	areaWater  uint8 = 1
)

func (f *Finder) PathType() PathType        { return f.pathType }
func (f *Finder) Points() []mgl32.Vec3      { return f.points }
func (f *Finder) ActualEndPosition() mgl32.Vec3 { return f.actualEnd }

// Calculate is the pipeline: snap endpoints, search the corridor, classify
// the result, and render it per the configured mode. origin/dest are world
// points; forceDest (when true, like the original's calculate(...,
// forceDest=true)) keeps the smoothed path's terminal waypoint fixed at
// dest even when the mesh's actualEndPosition differs.
func (f *Finder) Calculate(origin, dest mgl32.Vec3) PathType {
	startExtents := []float32{3, 5, 3}
	endExtents := []float32{3, 5, 3}

	startPos := vec3Buf(origin)
	endPos := vec3Buf(dest)

	startRef, startPt, st1 := f.query.FindNearestPoly(startPos, startExtents, f.filter)
	endRef, endPt, st2 := f.query.FindNearestPoly(endPos, endExtents, f.filter)

	if st1.Failed() || st2.Failed() || startRef == 0 || endRef == 0 {
		return f.buildShortcut(origin, dest)
	}

	path, status := f.query.FindPath(startRef, endRef, startPt, endPt, f.filter, f.pathLengthLimit)
	if status.Failed() || len(path) == 0 {
		return f.buildShortcut(origin, dest)
	}
	f.polyPath = path

	incomplete := status.Detail(navmesh.PartialResult) || path[len(path)-1] != endRef
	actualEnd := bufToVec3(endPt)
	if incomplete {
		closest, _, lst := f.query.ClosestPointOnPoly(path[len(path)-1], endPos)
		if !lst.Failed() {
			actualEnd = bufToVec3(closest)
		}
	}
	f.actualEnd = actualEnd

	if f.useStraightPath {
		f.renderStraight(startPt, vec3Buf(actualEnd))
	} else {
		f.renderSmooth(startPt, vec3Buf(actualEnd))
	}

	if f.forceDestination && !incomplete {
		if len(f.points) > 0 {
			f.points[len(f.points)-1] = dest
		}
	}

	if incomplete {
		f.pathType = PathIncomplete
	} else {
		f.pathType = PathNormal
	}
	return f.pathType
}

func (f *Finder) renderStraight(startPos, endPos []float32) {
	verts, _ := f.query.FindStraightPath(startPos, endPos, f.polyPath, maxPointPathLength, 0)
	f.points = make([]mgl32.Vec3, len(verts))
	for i, v := range verts {
		f.points[i] = mgl32.Vec3{v.Pos[0], v.Pos[1], v.Pos[2]}
	}
}

// buildShortcut falls back to the xz-straight segment from origin to dest,
// ignoring the mesh entirely: the classification policy for snapping
// failure or an empty corridor.
func (f *Finder) buildShortcut(origin, dest mgl32.Vec3) PathType {
	f.polyPath = nil
	f.points = []mgl32.Vec3{origin, dest}
	f.actualEnd = dest
	f.pathType = PathShortcut
	return f.pathType
}

func vec3Buf(v mgl32.Vec3) []float32 { return []float32{v[0], v[1], v[2]} }
func bufToVec3(b []float32) mgl32.Vec3 { return mgl32.Vec3{b[0], b[1], b[2]} }
