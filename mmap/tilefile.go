package mmap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ornfelt/navmesh/common/rw"
	"github.com/ornfelt/navmesh/navmesh"
)

// MmapMagic/DtVersion/MmapVersion identify the on-disk tile format (§6).
const (
	mmapMagic   = 0x4d4d4150 // "MMAP"
	dtVersion   = 7
	mmapVersion = 9
)

// TileHeader is the fixed little-endian prefix of a .mmtile file.
type TileHeader struct {
	MmapMagic   uint32
	DtVersion   uint32
	MmapVersion uint32
	Size        uint32
	UsesLiquids uint8
	Padding     [3]uint8
}

// MapParamsFile mirrors NavMeshParams as persisted in a <mapId3>.mmap file.
type MapParamsFile struct {
	Origin             [3]float32
	TileWidth          float32
	TileHeight         float32
	MaxTiles, MaxPolys int32
}

// readMapParams parses a <mapId3>.mmap header file into navmesh.Params.
func readMapParams(r io.Reader) (navmesh.Params, error) {
	var p MapParamsFile
	if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
		return navmesh.Params{}, fmt.Errorf("mmap: read map params: %w", err)
	}
	return navmesh.Params{
		Orig:       p.Origin,
		TileWidth:  p.TileWidth,
		TileHeight: p.TileHeight,
		MaxTiles:   p.MaxTiles,
		MaxPolys:   p.MaxPolys,
	}, nil
}

// readTileHeader parses a .mmtile file's MmapTileHeader and validates its
// magic and dtVersion fields (mmapVersion is not checked); callers must
// check the returned error before trusting the payload that follows.
func readTileHeader(r io.Reader) (TileHeader, error) {
	var h TileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("mmap: read tile header: %w", err)
	}
	if h.MmapMagic != mmapMagic {
		return h, fmt.Errorf("mmap: %w: wrong magic %#x", ErrCorruptTile, h.MmapMagic)
	}
	if h.DtVersion != dtVersion {
		return h, fmt.Errorf("mmap: %w: wrong dtVersion %d", ErrCorruptTile, h.DtVersion)
	}
	return h, nil
}

// decodeTilePayload unpacks the navmesh.TileHeader and packed arrays
// following the MmapTileHeader into a navmesh.Tile, ready for
// navmesh.Mesh.AddTile. Each section is walked field by field through a
// ReaderWriter, in the exact order the baking pipeline wrote it.
func decodeTilePayload(data []byte) (tile *navmesh.Tile, err error) {
	defer func() {
		if p := recover(); p != nil {
			tile, err = nil, fmt.Errorf("mmap: %w: %v", ErrCorruptTile, p)
		}
	}()

	r := rw.NewNavMeshDataBinReader(data)
	hdr := (&navmesh.TileHeader{}).FromBin(r)
	tile = &navmesh.Tile{Header: hdr}

	verts := make([]float32, hdr.VertCount*3)
	r.ReadFloat32s(verts)
	tile.Verts = verts

	tile.Polys = make([]navmesh.Poly, hdr.PolyCount)
	for i := range tile.Polys {
		tile.Polys[i].FromBin(r)
	}

	tile.Links = make([]navmesh.Link, hdr.MaxLinkCount)
	for i := range tile.Links {
		tile.Links[i].FromBin(r)
	}

	tile.DetailMeshes = make([]navmesh.PolyDetail, hdr.DetailMeshCount)
	for i := range tile.DetailMeshes {
		tile.DetailMeshes[i].FromBin(r)
	}

	detailVerts := make([]float32, hdr.DetailVertCount*3)
	r.ReadFloat32s(detailVerts)
	tile.DetailVerts = detailVerts

	detailTris := make([]uint8, hdr.DetailTriCount*4)
	r.ReadUInt8s(detailTris)
	tile.DetailTris = detailTris

	tile.BvTree = make([]navmesh.BVNode, hdr.BvNodeCount)
	for i := range tile.BvTree {
		tile.BvTree[i].FromBin(r)
	}

	tile.OffMeshCons = make([]navmesh.OffMeshConnection, hdr.OffMeshConCount)
	for i := range tile.OffMeshCons {
		tile.OffMeshCons[i].FromBin(r)
	}

	return tile, nil
}

// packTileID mirrors MMapManager::packTileID: a single uint32 cache key
// combining the tile's grid coordinates.
func packTileID(x, y int32) uint32 { return uint32(x)<<16 | uint32(uint16(y)) }
