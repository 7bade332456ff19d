package navmesh

const (
	StraightPathStart             int32 = 0x01
	StraightPathEnd               int32 = 0x02
	StraightPathOffMeshConnection int32 = 0x04

	StraightPathAreaCrossings int32 = 0x01
	StraightPathAllCrossings  int32 = 0x02
)

// StraightPathVertex is one emitted waypoint of a findStraightPath result.
type StraightPathVertex struct {
	Pos   [3]float32
	Flags int32
	Ref   PolyRef
}

func appendVertex(out []StraightPathVertex, pos []float32, flags int32, ref PolyRef, maxPoints int32) ([]StraightPathVertex, bool) {
	if len(out) > 0 {
		last := &out[len(out)-1]
		if vdistSqr(last.Pos[:], pos) < 1e-9 {
			last.Flags = flags
			last.Ref = ref
			return out, int32(len(out)) < maxPoints
		}
	}
	if int32(len(out)) >= maxPoints {
		return out, false
	}
	v := StraightPathVertex{Flags: flags, Ref: ref}
	vcopy(v.Pos[:], pos)
	out = append(out, v)
	return out, int32(len(out)) < maxPoints
}

// FindStraightPath string-pulls corridor path into a taut sequence of 3D
// vertices via the Simple Stupid Funnel Algorithm. startPos/endPos are
// first clamped onto their polygons' boundary. Returns PartialResult if a
// mid-corridor polygon is invalid. options is not read: only the funnel
// corners are emitted, and no vertices are inserted where the corridor
// crosses area or polygon borders.
func (q *Query) FindStraightPath(startPos, endPos []float32, path []PolyRef, maxPoints int32, options int32) (verts []StraightPathVertex, status Status) {
	if len(path) == 0 || startPos == nil || endPos == nil || maxPoints <= 0 {
		return nil, Failure | InvalidParam
	}

	closestStartTile, closestStartPoly, st := q.mesh.GetTileAndPolyByRef(path[0])
	if st.Failed() {
		return nil, Failure | InvalidParam
	}
	closestStart, _ := closestPointOnPoly(closestStartTile, closestStartPoly, startPos)

	closestEndTile, closestEndPoly, st2 := q.mesh.GetTileAndPolyByRef(path[len(path)-1])
	if st2.Failed() {
		return nil, Failure | InvalidParam
	}
	closestEnd, _ := closestPointOnPoly(closestEndTile, closestEndPoly, endPos)

	var out []StraightPathVertex
	var ok bool
	out, ok = appendVertex(out, closestStart, StraightPathStart, path[0], maxPoints)
	if !ok {
		return out, Success
	}
	status = Success

	portalApex := [3]float32{closestStart[0], closestStart[1], closestStart[2]}
	portalLeft := portalApex
	portalRight := portalApex
	apexIndex := int32(0)
	leftIndex := int32(0)
	rightIndex := int32(0)
	leftPolyType := uint8(0)
	rightPolyType := uint8(0)
	leftPolyRef := path[0]
	rightPolyRef := path[0]

	i := int32(0)
	for ; len(path) > 1 && i < int32(len(path)); i++ {
		var left, right [3]float32
		var toType uint8

		if i+1 < int32(len(path)) {
			fromTile, fromPoly, sf := q.mesh.GetTileAndPolyByRef(path[i])
			if sf.Failed() {
				return out, Failure | InvalidParam
			}
			toTile, toPoly, st3 := q.mesh.GetTileAndPolyByRef(path[i+1])
			if st3.Failed() {
				return out, status | PartialResult
			}
			toType = toPoly.Type()
			l, r, sp := q.mesh.getPortalPoints(path[i], fromPoly, fromTile, path[i+1], toPoly, toTile)
			if sp.Failed() {
				// clamp to the current polygon and stop.
				cl, _ := closestPointOnPoly(fromTile, fromPoly, endPos)
				out, _ = appendVertex(out, cl, 0, path[i], maxPoints)
				return out, status | PartialResult
			}
			vcopy(left[:], l)
			vcopy(right[:], r)

			if leftPolyType == PolyTypeOffMeshConnection {
				// fall through; handled below via generic checks
			}
		} else {
			vcopy(left[:], closestEnd)
			vcopy(right[:], closestEnd)
			toType = PolyTypeGround
		}

		// Right vertex.
		if triArea2D(portalApex[:], portalRight[:], right[:]) <= 0 {
			if vdistSqr(portalApex[:], portalRight[:]) < 1e-9 || triArea2D(portalApex[:], portalLeft[:], right[:]) > 0 {
				portalRight = right
				rightPolyRef = pathRefAt(path, i)
				rightPolyType = toType
				rightIndex = i
			} else {
				vcopy(portalApex[:], portalLeft[:])
				apexIndex = leftIndex
				var flags int32
				if leftPolyRef == 0 {
					flags = StraightPathEnd
				} else if leftPolyType == PolyTypeOffMeshConnection {
					flags = StraightPathOffMeshConnection
				}
				ref := leftPolyRef
				out, ok = appendVertex(out, portalApex[:], flags, ref, maxPoints)
				if !ok {
					return out, status | BufferTooSmall
				}
				portalLeft = portalApex
				portalRight = portalApex
				leftIndex = apexIndex
				rightIndex = apexIndex
				i = apexIndex
				continue
			}
		}

		// Left vertex.
		if triArea2D(portalApex[:], portalLeft[:], left[:]) >= 0 {
			if vdistSqr(portalApex[:], portalLeft[:]) < 1e-9 || triArea2D(portalApex[:], portalRight[:], left[:]) < 0 {
				portalLeft = left
				leftPolyRef = pathRefAt(path, i)
				leftPolyType = toType
				leftIndex = i
			} else {
				vcopy(portalApex[:], portalRight[:])
				apexIndex = rightIndex
				var flags int32
				if rightPolyRef == 0 {
					flags = StraightPathEnd
				} else if rightPolyType == PolyTypeOffMeshConnection {
					flags = StraightPathOffMeshConnection
				}
				ref := rightPolyRef
				out, ok = appendVertex(out, portalApex[:], flags, ref, maxPoints)
				if !ok {
					return out, status | BufferTooSmall
				}
				portalLeft = portalApex
				portalRight = portalApex
				leftIndex = apexIndex
				rightIndex = apexIndex
				i = apexIndex
				continue
			}
		}
	}

	out, _ = appendVertex(out, closestEnd, StraightPathEnd, 0, maxPoints)
	return out, Success
}

func pathRefAt(path []PolyRef, i int32) PolyRef {
	if i+1 < int32(len(path)) {
		return path[i+1]
	}
	return 0
}
