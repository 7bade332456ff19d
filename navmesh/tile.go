package navmesh

// TileHeader is the fixed-size header prefixing a tile's packed payload, as
// produced by offline baking and consumed verbatim here (§6 wire format).
type TileHeader struct {
	Magic           int32
	Version         int32
	X, Y            int32
	Layer           int32
	UserID          uint32
	PolyCount       int32
	VertCount       int32
	MaxLinkCount    int32
	DetailMeshCount int32
	DetailVertCount int32
	DetailTriCount  int32
	BvNodeCount     int32
	OffMeshConCount int32
	OffMeshBase     int32
	WalkableHeight  float32
	WalkableRadius  float32
	WalkableClimb   float32
	Bmin, Bmax      [3]float32
	BvQuantFactor   float32
}

// Tile is one loaded rectangular patch of the navmesh: a polygon registry
// plus its shared vertex buffer, link table, detail mesh, and BV-tree.
type Tile struct {
	Salt          uint32
	LinksFreeList uint32
	Header        *TileHeader
	Polys         []Poly
	Verts         []float32
	Links         []Link
	DetailMeshes  []PolyDetail
	DetailVerts   []float32
	DetailTris    []uint8
	BvTree        []BVNode
	OffMeshCons   []OffMeshConnection
	next          *Tile // chains tiles stacked at the same grid cell
	tileIndex     int32 // slot in Mesh.tiles
}
