package navmesh

// buildGridMesh constructs a single-tile mesh of nx*nz unit quads covering
// [0,nx]x[0,nz] in xz (y=0), with every quad linked to its grid neighbours
// except where skip reports a column/row as missing. It mirrors spec
// scenarios S1 (full grid) and S2 (a missing column, connected only
// through the top row).
func buildGridMesh(t testingT, nx, nz int32, skip func(c, r int32) bool) (*Mesh, map[[2]int32]int32) {
	params := Params{TileWidth: float32(nx), TileHeight: float32(nz), MaxTiles: 1, MaxPolys: nx * nz}
	mesh, err := NewMesh(params)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	refs := buildGridMeshInto(t, mesh, nx, nz, skip)
	return mesh, refs
}

// buildGridMeshInto adds a fresh grid tile into an already-constructed
// mesh (e.g. one whose original tile at (0,0) was just removed), letting
// tests exercise free-slot reuse.
func buildGridMeshInto(t testingT, mesh *Mesh, nx, nz int32, skip func(c, r int32) bool) map[[2]int32]int32 {
	verts := make([]float32, 0, (nx+1)*(nz+1)*3)
	vidx := func(i, j int32) uint16 { return uint16(j*(nx+1) + i) }
	for j := int32(0); j <= nz; j++ {
		for i := int32(0); i <= nx; i++ {
			verts = append(verts, float32(i), 0, float32(j))
		}
	}

	quadIdx := func(c, r int32) int32 { return r*nx + c }

	var polys []Poly
	cellToPoly := make(map[[2]int32]int32)
	for r := int32(0); r < nz; r++ {
		for c := int32(0); c < nx; c++ {
			if skip != nil && skip(c, r) {
				continue
			}
			p := Poly{VertCount: 4, Flags: 1}
			p.Verts[0] = vidx(c, r)
			p.Verts[1] = vidx(c+1, r)
			p.Verts[2] = vidx(c+1, r+1)
			p.Verts[3] = vidx(c, r+1)

			if r > 0 && !(skip != nil && skip(c, r-1)) {
				p.Neis[0] = uint16(len(polys)) // placeholder; fixed below
			}
			polys = append(polys, p)
			cellToPoly[[2]int32{c, r}] = int32(len(polys) - 1)
		}
	}

	// Fix up neighbour indices now that every quad has a final slot.
	for r := int32(0); r < nz; r++ {
		for c := int32(0); c < nx; c++ {
			pi, ok := cellToPoly[[2]int32{c, r}]
			if !ok {
				continue
			}
			p := &polys[pi]
			if r > 0 {
				if n, ok := cellToPoly[[2]int32{c, r - 1}]; ok {
					p.Neis[0] = uint16(n + 1)
				}
			}
			if c < nx-1 {
				if n, ok := cellToPoly[[2]int32{c + 1, r}]; ok {
					p.Neis[1] = uint16(n + 1)
				}
			}
			if r < nz-1 {
				if n, ok := cellToPoly[[2]int32{c, r + 1}]; ok {
					p.Neis[2] = uint16(n + 1)
				}
			}
			if c > 0 {
				if n, ok := cellToPoly[[2]int32{c - 1, r}]; ok {
					p.Neis[3] = uint16(n + 1)
				}
			}
			_ = quadIdx
		}
	}

	tile := &Tile{
		Header: &TileHeader{Bmin: [3]float32{0, 0, 0}, Bmax: [3]float32{float32(nx), 0, float32(nz)}},
		Verts:  verts,
		Polys:  polys,
	}
	if _, err := mesh.AddTile(tile, 0, 0); err != nil {
		t.Fatalf("AddTile: %v", err)
	}

	refs := make(map[[2]int32]int32)
	base := mesh.GetPolyRefBase(0)
	for k, idx := range cellToPoly {
		refs[k] = int32(base) + idx
	}
	return refs
}

func refFor(mesh *Mesh, idx int32) PolyRef {
	return mesh.GetPolyRefBase(0) | PolyRef(idx)
}

// adjacentPolys reports whether b is reachable from a via one of a's links,
// letting tests assert a reconstructed corridor is actually contiguous
// rather than just checking its endpoints.
func adjacentPolys(mesh *Mesh, a, b PolyRef) bool {
	tile, poly, status := mesh.GetTileAndPolyByRef(a)
	if status.Failed() {
		return false
	}
	for i := poly.FirstLink; i != nullLink; i = tile.Links[i].Next {
		if tile.Links[i].Ref == b {
			return true
		}
	}
	return false
}

// testingT is the minimal subset of *testing.T this helper needs, so it
// can be called from any _test.go file in the package without importing
// "testing" into non-test helper files.
type testingT interface {
	Fatalf(format string, args ...any)
}
