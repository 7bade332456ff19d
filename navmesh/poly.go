package navmesh

// VertsPerPolygon is the maximum number of vertices of one polygon.
const VertsPerPolygon = 6

// MaxAreas bounds the per-filter area-cost table.
const MaxAreas = 64

const (
	PolyTypeGround              uint8 = 0
	PolyTypeOffMeshConnection   uint8 = 1
)

const nullLink = 0xffffffff

// ExtLink marks a polygon-local edge index as an inter-tile boundary edge
// in Poly.Neis, rather than a direct same-tile neighbour index.
const extLink = 0x8000

// PolyRef is an opaque handle packing (salt, tileIndex, polyIndex). Zero
// means "no polygon."
type PolyRef uint64

// Poly is one convex walkable patch, up to VertsPerPolygon vertices, stored
// by index into its tile's shared vertex buffer.
type Poly struct {
	FirstLink uint32
	Verts     [VertsPerPolygon]uint16
	Neis      [VertsPerPolygon]uint16
	Flags     uint16
	VertCount uint8
	AreaType  uint8 // low 6 bits area, high 2 bits type
}

func (p *Poly) SetArea(a uint8) { p.AreaType = (p.AreaType & 0xc0) | (a & 0x3f) }
func (p *Poly) Area() uint8     { return p.AreaType & 0x3f }
func (p *Poly) SetType(t uint8) { p.AreaType = (p.AreaType & 0x3f) | (t << 6) }
func (p *Poly) Type() uint8     { return p.AreaType >> 6 }

// Link is a directed adjacency from one polygon to another.
type Link struct {
	Ref  PolyRef
	Next uint32
	Edge uint8
	Side uint8
	Bmin uint8
	Bmax uint8
}

// PolyDetail indexes into a tile's detail vertex/triangle buffers for one
// polygon's finer height-query triangulation.
type PolyDetail struct {
	VertBase  uint32
	TriBase   uint32
	VertCount uint8
	TriCount  uint8
}

// BVNode is one node of a tile's quantized-AABB bounding volume tree.
// Leaves have I >= 0 (the polygon index); internal nodes store a negative
// escape offset used to skip the subtree during traversal.
type BVNode struct {
	Bmin, Bmax [3]uint16
	I          int32
}

// OffMeshConnection is a degenerate 2-vertex polygon that teleports an
// agent between its two endpoints (stairs, jumps, doors).
type OffMeshConnection struct {
	Pos   [6]float32
	Rad   float32
	Poly  uint16
	Flags uint16
	Side  uint8
	UserID uint32
}
