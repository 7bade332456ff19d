package navmesh

import (
	"fmt"

	"github.com/ornfelt/navmesh/common"
)

// Params configures a Mesh at creation time: world origin, tile footprint,
// and the bit budget for the tile/poly table.
type Params struct {
	Orig              [3]float32
	TileWidth         float32
	TileHeight        float32
	MaxTiles          int32
	MaxPolys          int32
}

const maxPolyRefBits = 63 // reserve the sign/zero bit; PolyRef 0 means "none"

// Mesh is the tile registry: polygon address scheme, link graph, and
// tile-grid index. Read-only from the perspective of query objects once a
// tile has been added.
type Mesh struct {
	params   Params
	tileLUT  map[int64]int32 // (gx,gy) packed -> first tile index at that cell
	tiles    []Tile
	nextFree int32 // unused; free tile slots are tracked in freeList
	freeList []int32

	saltBits int32
	tileBits int32
	polyBits int32
}

func gridKey(x, y int32) int64 { return int64(x)<<32 | int64(uint32(y)) }

// NewMesh allocates a tile table sized for params.MaxTiles/MaxPolys and
// derives the salt|tile|poly bit partition, exactly as EncodePolyId does.
func NewMesh(params Params) (*Mesh, error) {
	if params.MaxTiles <= 0 || params.MaxPolys <= 0 {
		return nil, fmt.Errorf("navmesh: invalid params: maxTiles=%d maxPolys=%d", params.MaxTiles, params.MaxPolys)
	}
	m := &Mesh{params: params}
	m.tiles = make([]Tile, params.MaxTiles)
	m.tileLUT = make(map[int64]int32)
	m.freeList = make([]int32, params.MaxTiles)
	for i := range m.tiles {
		m.tiles[i].Salt = 1
		m.freeList[i] = int32(params.MaxTiles) - 1 - int32(i)
	}

	tileBits := int32(ilog2(nextPow2(uint32(params.MaxTiles))))
	if tileBits > 28 {
		tileBits = 28
	}
	polyBits := int32(ilog2(nextPow2(uint32(params.MaxPolys))))
	if polyBits > 20 {
		polyBits = 20
	}
	saltBits := int32(maxPolyRefBits) - tileBits - polyBits
	if saltBits < 10 {
		saltBits = 10
	}
	m.saltBits, m.tileBits, m.polyBits = saltBits, tileBits, polyBits
	return m, nil
}

func ilog2(v uint32) uint32    { return common.Ilog2(v) }
func nextPow2(v uint32) uint32 { return common.NextPow2(v) }

func (m *Mesh) Params() Params { return m.params }

// CalcTileLoc floors world position into the tile grid.
func (m *Mesh) CalcTileLoc(pos []float32) (x, y int32) {
	x = int32(floorDiv(pos[0]-m.params.Orig[0], m.params.TileWidth))
	y = int32(floorDiv(pos[2]-m.params.Orig[2], m.params.TileHeight))
	return
}

func floorDiv(a, b float32) float32 {
	q := a / b
	f := float32(int32(q))
	if f > q {
		f--
	}
	return f
}

func (m *Mesh) EncodePolyID(salt uint32, tileIndex, polyIndex int32) PolyRef {
	return PolyRef(uint64(salt)<<uint(m.polyBits+m.tileBits) | uint64(tileIndex)<<uint(m.polyBits) | uint64(polyIndex))
}

func (m *Mesh) DecodePolyID(ref PolyRef) (salt uint32, tileIndex, polyIndex int32) {
	saltMask := (uint64(1) << uint(m.saltBits)) - 1
	tileMask := (uint64(1) << uint(m.tileBits)) - 1
	polyMask := (uint64(1) << uint(m.polyBits)) - 1
	salt = uint32((uint64(ref) >> uint(m.polyBits+m.tileBits)) & saltMask)
	tileIndex = int32((uint64(ref) >> uint(m.polyBits)) & tileMask)
	polyIndex = int32(uint64(ref) & polyMask)
	return
}

func (m *Mesh) GetPolyRefBase(tileIndex int32) PolyRef {
	t := &m.tiles[tileIndex]
	return m.EncodePolyID(t.Salt, tileIndex, 0)
}

// IsValidPolyRef validates salt and index bounds without dereferencing.
func (m *Mesh) IsValidPolyRef(ref PolyRef) bool {
	if ref == 0 {
		return false
	}
	salt, ti, pi := m.DecodePolyID(ref)
	if ti < 0 || ti >= int32(len(m.tiles)) {
		return false
	}
	t := &m.tiles[ti]
	if t.Salt != salt || t.Header == nil {
		return false
	}
	if pi < 0 || pi >= int32(len(t.Polys)) {
		return false
	}
	return true
}

// GetTileAndPolyByRef validates the ref and returns the tile and polygon.
func (m *Mesh) GetTileAndPolyByRef(ref PolyRef) (*Tile, *Poly, Status) {
	if ref == 0 {
		return nil, nil, Failure | InvalidParam
	}
	salt, ti, pi := m.DecodePolyID(ref)
	if ti < 0 || ti >= int32(len(m.tiles)) {
		return nil, nil, Failure | InvalidParam
	}
	t := &m.tiles[ti]
	if t.Salt != salt || t.Header == nil {
		return nil, nil, Failure | InvalidParam
	}
	if pi < 0 || pi >= int32(len(t.Polys)) {
		return nil, nil, Failure | InvalidParam
	}
	return t, &t.Polys[pi], Success
}

// GetTileAndPolyByRefUnsafe skips validation; callers must have validated
// ref beforehand (e.g. via a prior GetTileAndPolyByRef or loop invariant).
func (m *Mesh) GetTileAndPolyByRefUnsafe(ref PolyRef) (*Tile, *Poly) {
	_, ti, pi := m.DecodePolyID(ref)
	t := &m.tiles[ti]
	return t, &t.Polys[pi]
}

func (m *Mesh) GetTilesAt(x, y int32) []*Tile {
	var out []*Tile
	idx, ok := m.tileLUT[gridKey(x, y)]
	if !ok {
		return nil
	}
	for t := &m.tiles[idx]; t != nil; t = t.next {
		out = append(out, t)
	}
	return out
}

// AddTile inserts a fully-populated tile (vertices/polys/links/detail/BV
// already decoded by the caller from the wire format) into a free slot,
// assigns it a fresh salt, and stitches boundary links against tiles
// already occupying neighbouring grid cells.
func (m *Mesh) AddTile(tile *Tile, x, y int32) (PolyRef, error) {
	if len(m.freeList) == 0 {
		return 0, fmt.Errorf("navmesh: tile table full (max %d)", m.params.MaxTiles)
	}
	idx := m.freeList[len(m.freeList)-1]
	m.freeList = m.freeList[:len(m.freeList)-1]

	slot := &m.tiles[idx]
	salt := slot.Salt
	*slot = *tile
	slot.Salt = salt
	if slot.Header == nil {
		slot.Header = &TileHeader{}
	}
	slot.Header.X, slot.Header.Y = x, y
	slot.tileIndex = idx
	// A freshly built or decoded tile has no established free-list chain
	// (LinksFreeList's zero value collides with a real link index), so
	// start every tile's link table empty and let allocLink grow it.
	slot.LinksFreeList = nullLink
	slot.Links = slot.Links[:0]

	key := gridKey(x, y)
	if head, ok := m.tileLUT[key]; ok {
		slot.next = &m.tiles[head]
	}
	m.tileLUT[key] = idx

	m.connectIntLinks(slot)
	m.baseOffMeshLinks(slot)
	for side := 0; side < 8; side++ {
		nx, ny := x, y
		switch side {
		case 0:
			nx++
		case 1:
			nx++
			ny++
		case 2:
			ny++
		case 3:
			nx--
			ny++
		case 4:
			nx--
		case 5:
			nx--
			ny--
		case 6:
			ny--
		case 7:
			nx++
			ny--
		}
		for _, nt := range m.GetTilesAt(nx, ny) {
			m.connectExtLinks(slot, nt, uint8(side))
			m.connectExtLinks(nt, slot, uint8((side+4)%8))
		}
	}

	return m.GetPolyRefBase(idx), nil
}

// RemoveTile evicts the tile at (x,y,layer-0), bumping its salt so
// outstanding PolyRefs into it fail validation, and unlinks every inbound
// boundary link from neighbouring tiles.
func (m *Mesh) RemoveTile(x, y int32) {
	key := gridKey(x, y)
	idx, ok := m.tileLUT[key]
	if !ok {
		return
	}
	t := &m.tiles[idx]
	for side := 0; side < 8; side++ {
		nx, ny := x, y
		switch side {
		case 0:
			nx++
		case 2:
			ny++
		case 4:
			nx--
		case 6:
			ny--
		}
		for _, nt := range m.GetTilesAt(nx, ny) {
			m.unconnectLinks(nt, t)
		}
	}
	t.Salt++
	if t.Salt == 0 {
		t.Salt = 1
	}
	t.Header = nil
	t.Polys = nil
	t.Links = nil
	t.next = nil
	delete(m.tileLUT, key)
	m.freeList = append(m.freeList, idx)
}

func (m *Mesh) unconnectLinks(tile, target *Tile) {
	if target.Header == nil {
		return
	}
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		j := poly.FirstLink
		var prev uint32 = nullLink
		for j != nullLink {
			next := tile.Links[j].Next
			_, ti, _ := m.DecodePolyID(tile.Links[j].Ref)
			if ti == target.tileIndex {
				if prev == nullLink {
					poly.FirstLink = next
				} else {
					tile.Links[prev].Next = next
				}
				m.freeLink(tile, j)
			} else {
				prev = j
			}
			j = next
		}
	}
}
