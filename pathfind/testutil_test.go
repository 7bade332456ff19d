package pathfind

import (
	"testing"

	"github.com/ornfelt/navmesh/navmesh"
)

// buildGridMesh mirrors the navmesh package's own grid-mesh test fixture,
// built here purely from navmesh's public API so Finder can be exercised
// without a real baked tile file.
func buildGridMesh(t *testing.T, nx, nz int32) *navmesh.Mesh {
	mesh, err := navmesh.NewMesh(navmesh.Params{TileWidth: float32(nx), TileHeight: float32(nz), MaxTiles: 1, MaxPolys: nx * nz})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	verts := make([]float32, 0, (nx+1)*(nz+1)*3)
	vidx := func(i, j int32) uint16 { return uint16(j*(nx+1) + i) }
	for j := int32(0); j <= nz; j++ {
		for i := int32(0); i <= nx; i++ {
			verts = append(verts, float32(i), 0, float32(j))
		}
	}

	quadIdx := func(c, r int32) int32 { return r*nx + c }
	polys := make([]navmesh.Poly, nx*nz)
	for r := int32(0); r < nz; r++ {
		for c := int32(0); c < nx; c++ {
			p := &polys[quadIdx(c, r)]
			p.VertCount = 4
			p.Flags = 1
			p.Verts[0] = vidx(c, r)
			p.Verts[1] = vidx(c+1, r)
			p.Verts[2] = vidx(c+1, r+1)
			p.Verts[3] = vidx(c, r+1)
			if r > 0 {
				p.Neis[0] = uint16(quadIdx(c, r-1) + 1)
			}
			if c < nx-1 {
				p.Neis[1] = uint16(quadIdx(c+1, r) + 1)
			}
			if r < nz-1 {
				p.Neis[2] = uint16(quadIdx(c, r+1) + 1)
			}
			if c > 0 {
				p.Neis[3] = uint16(quadIdx(c-1, r) + 1)
			}
		}
	}

	tile := &navmesh.Tile{
		Header: &navmesh.TileHeader{Bmin: [3]float32{0, 0, 0}, Bmax: [3]float32{float32(nx), 0, float32(nz)}},
		Verts:  verts,
		Polys:  polys,
	}
	if _, err := mesh.AddTile(tile, 0, 0); err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	return mesh
}
