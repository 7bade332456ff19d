package navmesh

import "testing"

func TestEncodeDecodePolyID(t *testing.T) {
	mesh, err := NewMesh(Params{TileWidth: 1, TileHeight: 1, MaxTiles: 64, MaxPolys: 1000})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	ref := mesh.EncodePolyID(7, 3, 42)
	salt, tileIdx, polyIdx := mesh.DecodePolyID(ref)
	if salt != 7 || tileIdx != 3 || polyIdx != 42 {
		t.Fatalf("round-trip mismatch: got salt=%d tile=%d poly=%d", salt, tileIdx, polyIdx)
	}
}

func TestAddTileThenIsValidPolyRef(t *testing.T) {
	mesh, refs := buildGridMesh(t, 3, 3, nil)
	ref := refFor(mesh, refs[[2]int32{1, 1}])
	if !mesh.IsValidPolyRef(ref) {
		t.Fatalf("expected a freshly added poly ref to validate")
	}
	if mesh.IsValidPolyRef(0) {
		t.Fatalf("ref 0 must never validate")
	}
}

func TestInternalLinksConnectNeighbours(t *testing.T) {
	mesh, refs := buildGridMesh(t, 3, 3, nil)
	tile, poly, status := mesh.GetTileAndPolyByRef(refFor(mesh, refs[[2]int32{1, 1}]))
	if status.Failed() {
		t.Fatalf("GetTileAndPolyByRef failed: %v", status)
	}
	var neighbours []PolyRef
	for i := poly.FirstLink; i != nullLink; i = tile.Links[i].Next {
		neighbours = append(neighbours, tile.Links[i].Ref)
	}
	// Cell (1,1) of a 3x3 grid sits in the interior: all four sides have a
	// neighbour.
	if len(neighbours) != 4 {
		t.Fatalf("expected 4 internal links for an interior cell, got %d: %v", len(neighbours), neighbours)
	}
}

func TestRemoveTileInvalidatesOutstandingRefs(t *testing.T) {
	mesh, refs := buildGridMesh(t, 3, 3, nil)
	ref := refFor(mesh, refs[[2]int32{1, 1}])
	if !mesh.IsValidPolyRef(ref) {
		t.Fatalf("expected ref to validate before removal")
	}
	mesh.RemoveTile(0, 0)
	if mesh.IsValidPolyRef(ref) {
		t.Fatalf("expected the salt bump on RemoveTile to invalidate outstanding refs")
	}
}

func TestAddTileAfterRemoveReusesSlot(t *testing.T) {
	mesh, refs := buildGridMesh(t, 3, 3, nil)
	_ = refs
	mesh.RemoveTile(0, 0)

	refs2 := buildGridMeshInto(t, mesh, 3, 3, nil)
	ref := refFor(mesh, refs2[[2]int32{1, 1}])
	if !mesh.IsValidPolyRef(ref) {
		t.Fatalf("expected the reused slot's new tile to validate")
	}
}
