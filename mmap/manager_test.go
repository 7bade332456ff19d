package mmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ornfelt/navmesh/navmesh"
)

// writeTestMap bakes a minimal two-quad (2x1 strip) single-tile map (mapID, tile at
// x=0,y=0) into dir, in the exact wire format readMapParams/decodeTilePayload
// expect.
func writeTestMap(t *testing.T, dir string, mapID uint32) {
	params := MapParamsFile{TileWidth: 2, TileHeight: 2, MaxTiles: 1, MaxPolys: 8}
	var paramsBuf bytes.Buffer
	if err := binary.Write(&paramsBuf, binary.LittleEndian, &params); err != nil {
		t.Fatalf("encode params: %v", err)
	}
	mapPath := filepath.Join(dir, pad3(mapID)+".mmap")
	if err := os.WriteFile(mapPath, paramsBuf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", mapPath, err)
	}

	verts := []float32{
		0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, // quad (0,0)
		1, 0, 0, 2, 0, 0, 2, 0, 1, 1, 0, 1, // quad (1,0)
	}
	polys := make([]navmesh.Poly, 2)
	polys[0].VertCount = 4
	polys[0].Flags = 1
	polys[0].Verts = [navmesh.VertsPerPolygon]uint16{0, 1, 2, 3}
	polys[0].Neis[1] = 2 // east neighbour is poly 1

	polys[1].VertCount = 4
	polys[1].Flags = 1
	polys[1].Verts = [navmesh.VertsPerPolygon]uint16{4, 5, 6, 7}
	polys[1].Neis[3] = 1 // west neighbour is poly 0

	var payload bytes.Buffer
	hdrFields := []any{
		int32(0), int32(0), int32(0), int32(0), int32(0), uint32(0),
		int32(2), int32(8), int32(0),
		int32(0), int32(0), int32(0),
		int32(0), int32(0), int32(0),
		float32(2), float32(0.5), float32(0.5),
		[3]float32{0, 0, 0}, [3]float32{2, 0, 2}, float32(0),
	}
	for _, f := range hdrFields {
		if err := binary.Write(&payload, binary.LittleEndian, f); err != nil {
			t.Fatalf("encode header field: %v", err)
		}
	}
	if err := binary.Write(&payload, binary.LittleEndian, verts); err != nil {
		t.Fatalf("encode verts: %v", err)
	}
	if err := binary.Write(&payload, binary.LittleEndian, polys); err != nil {
		t.Fatalf("encode polys: %v", err)
	}
	// MaxLinkCount is 0: no links/detail meshes/detail verts/detail
	// tris/BV nodes/off-mesh cons to follow.

	tileHdr := TileHeader{MmapMagic: mmapMagic, DtVersion: dtVersion, MmapVersion: mmapVersion, Size: uint32(payload.Len())}
	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &tileHdr); err != nil {
		t.Fatalf("encode tile header: %v", err)
	}
	out.Write(payload.Bytes())

	tilePath := filepath.Join(dir, pad3(mapID)+"0000.mmtile")
	if err := os.WriteFile(tilePath, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", tilePath, err)
	}
}

func pad3(v uint32) string { return fmt.Sprintf("%03d", v) }

func TestEnsureMapLoadedAndGetQuery(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir, 1)

	mgr := NewManager(Config{Root: dir}, zap.NewNop())
	if err := mgr.EnsureMapLoaded(1); err != nil {
		t.Fatalf("EnsureMapLoaded: %v", err)
	}
	if mgr.LoadedMapCount() != 1 {
		t.Fatalf("expected 1 loaded map, got %d", mgr.LoadedMapCount())
	}

	// A second call is a no-op (memoized via zoneMap), not a re-scan error.
	if err := mgr.EnsureMapLoaded(1); err != nil {
		t.Fatalf("second EnsureMapLoaded should be a no-op, got %v", err)
	}

	q, err := mgr.GetQuery(1, 0)
	if err != nil {
		t.Fatalf("GetQuery: %v", err)
	}
	mesh, err := mgr.GetMesh(1)
	if err != nil {
		t.Fatalf("GetMesh: %v", err)
	}

	ref, _, status := q.FindNearestPoly([]float32{0.5, 0, 0.5}, []float32{1, 1, 1}, navmesh.NewQueryFilter())
	if status.Failed() || ref == 0 {
		t.Fatalf("expected to find the decoded quad near the origin, status=%v ref=%v", status, ref)
	}
	if mesh.Params().MaxTiles != 1 {
		t.Fatalf("expected the decoded params to round-trip, got %+v", mesh.Params())
	}
}

func TestGetQueryBeforeLoadFails(t *testing.T) {
	mgr := NewManager(Config{Root: t.TempDir()}, zap.NewNop())
	if _, err := mgr.GetQuery(42, 0); err == nil {
		t.Fatalf("expected ErrMapNotFound for an unloaded map")
	}
}

func TestUnloadMapAllowsReload(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir, 2)

	mgr := NewManager(Config{Root: dir}, zap.NewNop())
	if err := mgr.EnsureMapLoaded(2); err != nil {
		t.Fatalf("EnsureMapLoaded: %v", err)
	}
	mgr.UnloadMap(2)
	if mgr.LoadedMapCount() != 0 {
		t.Fatalf("expected UnloadMap to drop the slot")
	}
	if err := mgr.EnsureMapLoaded(2); err != nil {
		t.Fatalf("expected reload after unload to succeed, got %v", err)
	}
}
