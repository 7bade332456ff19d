package navmesh

import "github.com/ornfelt/navmesh/common"

// allocLink pops a free link slot from the tile's link free-list, growing
// the backing slice if every slot is in use (new tiles start with
// maxLinkCount reserved at bake time; runtime growth only matters for
// programmatically constructed test meshes).
func (m *Mesh) allocLink(tile *Tile) uint32 {
	if tile.LinksFreeList == nullLink {
		idx := uint32(len(tile.Links))
		tile.Links = append(tile.Links, Link{Next: nullLink})
		return idx
	}
	link := tile.LinksFreeList
	tile.LinksFreeList = tile.Links[link].Next
	return link
}

func (m *Mesh) freeLink(tile *Tile, link uint32) {
	tile.Links[link].Next = tile.LinksFreeList
	tile.LinksFreeList = link
}

// connectIntLinks wires every same-tile adjacency recorded in Poly.Neis
// (populated at bake time) into the tile's link list.
func (m *Mesh) connectIntLinks(tile *Tile) {
	if tile.Header == nil {
		return
	}
	base := m.GetPolyRefBase(tile.tileIndex)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		poly.FirstLink = nullLink
		if poly.Type() == PolyTypeOffMeshConnection {
			continue
		}
		for j := int(poly.VertCount) - 1; j >= 0; j-- {
			if poly.Neis[j] == 0 || poly.Neis[j]&extLink != 0 {
				continue
			}
			idx := m.allocLink(tile)
			tile.Links[idx].Ref = base | PolyRef(poly.Neis[j]-1)
			tile.Links[idx].Edge = uint8(j)
			tile.Links[idx].Side = 0xff
			tile.Links[idx].Bmin, tile.Links[idx].Bmax = 0, 0
			tile.Links[idx].Next = poly.FirstLink
			poly.FirstLink = idx
		}
	}
}

// baseOffMeshLinks adds, for each off-mesh connection, one link from the
// connection polygon to the nearest ground polygon of the same tile under
// its first endpoint (Pos[0:3]). No link is added from that ground polygon
// back into the connection, and the second endpoint is not attached.
func (m *Mesh) baseOffMeshLinks(tile *Tile) {
	if tile.Header == nil {
		return
	}
	base := m.GetPolyRefBase(tile.tileIndex)
	for i := range tile.OffMeshCons {
		con := &tile.OffMeshCons[i]
		poly := &tile.Polys[con.Poly]

		ext := []float32{con.Rad, tile.Header.WalkableClimb, con.Rad}
		ref := m.findNearestPolyInTile(tile, common.GetVert3(con.Pos[:], 0), ext)
		if ref == 0 {
			continue
		}
		idx := m.allocLink(tile)
		tile.Links[idx].Ref = ref
		tile.Links[idx].Edge = 0
		tile.Links[idx].Side = 0xff
		tile.Links[idx].Next = poly.FirstLink
		poly.FirstLink = idx
		_ = base
	}
}

// connectExtLinks scans tile's boundary polygons on the given side and
// attaches partial-overlap links into target's polygons crossing that
// boundary, encoding the overlapping span as Bmin/Bmax bytes (0..255).
func (m *Mesh) connectExtLinks(tile, target *Tile, side uint8) {
	if tile.Header == nil || target.Header == nil {
		return
	}
	opp := oppositeTile(side)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		nv := int(poly.VertCount)
		for j := 0; j < nv; j++ {
			if !isBoundaryEdge(poly, j, nv, side) {
				continue
			}
			va := common.GetVert3(tile.Verts, poly.Verts[j])
			vb := common.GetVert3(tile.Verts, poly.Verts[(j+1)%nv])

			for k := range target.Polys {
				tpoly := &target.Polys[k]
				tnv := int(tpoly.VertCount)
				for l := 0; l < tnv; l++ {
					if !isBoundaryEdge(tpoly, l, tnv, opp) {
						continue
					}
					tva := common.GetVert3(target.Verts, tpoly.Verts[l])
					tvb := common.GetVert3(target.Verts, tpoly.Verts[(l+1)%tnv])

					bmin, bmax, ok := overlapEdgeSpan(va, vb, tva, tvb, side)
					if !ok {
						continue
					}
					idx := m.allocLink(tile)
					tile.Links[idx].Ref = m.GetPolyRefBase(target.tileIndex) | PolyRef(k)
					tile.Links[idx].Edge = uint8(j)
					tile.Links[idx].Side = side
					tile.Links[idx].Bmin, tile.Links[idx].Bmax = bmin, bmax
					tile.Links[idx].Next = poly.FirstLink
					poly.FirstLink = idx
				}
			}
		}
	}
}

func oppositeTile(side uint8) uint8 { return (side + 4) % 8 }

// isBoundaryEdge reports whether poly edge j is tagged, at bake time, as
// lying on the tile boundary identified by side.
func isBoundaryEdge(poly *Poly, edge, nv int, side uint8) bool {
	return poly.Neis[edge]&extLink != 0 && uint8(poly.Neis[edge]&0xff) == side
}

// overlapEdgeSpan computes the overlap of two boundary edges projected
// onto the axis running along the boundary (z for sides 0/4, x for sides 2/6)
// and returns it quantized to [0,255], or ok=false if they don't overlap.
func overlapEdgeSpan(va, vb, tva, tvb []float32, side uint8) (bmin, bmax uint8, ok bool) {
	axis := 2 // z
	if side == 2 || side == 6 {
		axis = 0 // x
	}
	amin, amax := minf(va[axis], vb[axis]), maxf(va[axis], vb[axis])
	bminF, bmaxF := minf(tva[axis], tvb[axis]), maxf(tva[axis], tvb[axis])

	lo := maxf(amin, bminF)
	hi := minf(amax, bmaxF)
	if lo > hi {
		return 0, 0, false
	}
	span := amax - amin
	if span < eps {
		return 0, 255, true
	}
	bmin = uint8(clampf((lo-amin)/span*255, 0, 255))
	bmax = uint8(clampf((hi-amin)/span*255, 0, 255))
	return bmin, bmax, true
}

// getPortalPoints returns the shared edge endpoints between polygons from
// and to. Off-mesh connections collapse to a single point for both ends
// (preserved verbatim from the source behavior — see DESIGN.md).
func (m *Mesh) getPortalPoints(from PolyRef, fromPoly *Poly, fromTile *Tile, to PolyRef, toPoly *Poly, toTile *Tile) (left, right []float32, status Status) {
	if fromPoly.Type() == PolyTypeOffMeshConnection {
		for i := fromPoly.FirstLink; i != nullLink; i = fromTile.Links[i].Next {
			if fromTile.Links[i].Ref == to {
				v := fromTile.Links[i].Edge
				p := common.GetVert3(fromTile.Verts, fromPoly.Verts[v])
				return p, p, Success
			}
		}
		return nil, nil, Failure | InvalidParam
	}
	if toPoly.Type() == PolyTypeOffMeshConnection {
		for i := toPoly.FirstLink; i != nullLink; i = toTile.Links[i].Next {
			if toTile.Links[i].Ref == from {
				v := toTile.Links[i].Edge
				p := common.GetVert3(toTile.Verts, toPoly.Verts[v])
				return p, p, Success
			}
		}
		return nil, nil, Failure | InvalidParam
	}

	for i := fromPoly.FirstLink; i != nullLink; i = fromTile.Links[i].Next {
		link := fromTile.Links[i]
		if link.Ref != to {
			continue
		}
		v0 := fromPoly.Verts[link.Edge]
		v1 := fromPoly.Verts[(int(link.Edge)+1)%int(fromPoly.VertCount)]
		left = common.GetVert3(fromTile.Verts, v0)
		right = common.GetVert3(fromTile.Verts, v1)
		return left, right, Success
	}
	return nil, nil, Failure | InvalidParam
}

// findNearestPolyInTile is the single-tile variant used by baseOffMeshLinks
// to attach an off-mesh endpoint to the ground polygon beneath it.
func (m *Mesh) findNearestPolyInTile(tile *Tile, center, halfExtents []float32) PolyRef {
	qmin := []float32{center[0] - halfExtents[0], center[1] - halfExtents[1], center[2] - halfExtents[2]}
	qmax := []float32{center[0] + halfExtents[0], center[1] + halfExtents[1], center[2] + halfExtents[2]}
	var nearest PolyRef
	nearestDist := float32(1e30)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		if poly.Type() == PolyTypeOffMeshConnection {
			continue
		}
		bmin, bmax := polyBounds(tile, poly)
		if !overlapBounds(qmin, qmax, bmin, bmax) {
			continue
		}
		closest, _ := closestPointOnPolyInTile(tile, poly, center)
		d := vdistSqr(center, closest)
		if d < nearestDist {
			nearestDist = d
			nearest = m.GetPolyRefBase(tile.tileIndex) | PolyRef(i)
		}
	}
	return nearest
}

func polyBounds(tile *Tile, poly *Poly) (bmin, bmax []float32) {
	v0 := common.GetVert3(tile.Verts, poly.Verts[0])
	bmin = []float32{v0[0], v0[1], v0[2]}
	bmax = []float32{v0[0], v0[1], v0[2]}
	for i := 1; i < int(poly.VertCount); i++ {
		v := common.GetVert3(tile.Verts, poly.Verts[i])
		vmin(bmin, v)
		vmax(bmax, v)
	}
	return
}
