package navmesh

import "github.com/ornfelt/navmesh/common/rw"

// FromBin decode methods give every on-disk tile structure a single place that
// knows its wire layout, mirroring how the rest of the packed binary data is
// walked field by field rather than through reflection-based decoding.

func (h *TileHeader) FromBin(r *rw.ReaderWriter) *TileHeader {
	h.Magic = r.ReadInt32()
	h.Version = r.ReadInt32()
	h.X = r.ReadInt32()
	h.Y = r.ReadInt32()
	h.Layer = r.ReadInt32()
	h.UserID = r.ReadUInt32()
	h.PolyCount = r.ReadInt32()
	h.VertCount = r.ReadInt32()
	h.MaxLinkCount = r.ReadInt32()
	h.DetailMeshCount = r.ReadInt32()
	h.DetailVertCount = r.ReadInt32()
	h.DetailTriCount = r.ReadInt32()
	h.BvNodeCount = r.ReadInt32()
	h.OffMeshConCount = r.ReadInt32()
	h.OffMeshBase = r.ReadInt32()
	h.WalkableHeight = r.ReadFloat32()
	h.WalkableRadius = r.ReadFloat32()
	h.WalkableClimb = r.ReadFloat32()
	r.ReadFloat32s(h.Bmin[:])
	r.ReadFloat32s(h.Bmax[:])
	h.BvQuantFactor = r.ReadFloat32()
	return h
}

func (p *Poly) FromBin(r *rw.ReaderWriter) *Poly {
	p.FirstLink = r.ReadUInt32()
	r.ReadUInt16s(p.Verts[:])
	r.ReadUInt16s(p.Neis[:])
	p.Flags = r.ReadUInt16()
	p.VertCount = r.ReadUInt8()
	p.AreaType = r.ReadUInt8()
	return p
}

func (l *Link) FromBin(r *rw.ReaderWriter) *Link {
	l.Ref = PolyRef(r.ReadUInt32())
	l.Next = r.ReadUInt32()
	l.Edge = r.ReadUInt8()
	l.Side = r.ReadUInt8()
	l.Bmin = r.ReadUInt8()
	l.Bmax = r.ReadUInt8()
	return l
}

func (d *PolyDetail) FromBin(r *rw.ReaderWriter) *PolyDetail {
	d.VertBase = r.ReadUInt32()
	d.TriBase = r.ReadUInt32()
	d.VertCount = r.ReadUInt8()
	d.TriCount = r.ReadUInt8()
	return d
}

func (n *BVNode) FromBin(r *rw.ReaderWriter) *BVNode {
	r.ReadUInt16s(n.Bmin[:])
	r.ReadUInt16s(n.Bmax[:])
	n.I = r.ReadInt32()
	return n
}

func (c *OffMeshConnection) FromBin(r *rw.ReaderWriter) *OffMeshConnection {
	r.ReadFloat32s(c.Pos[:])
	c.Rad = r.ReadFloat32()
	c.Poly = r.ReadUInt16()
	c.Flags = r.ReadUInt16()
	c.Side = r.ReadUInt8()
	c.UserID = r.ReadUInt32()
	return c
}
