package navmesh

// QueryFilter is the narrow two-method capability every search consults to
// decide which polygons are passable and how expensive they are to cross.
// The default implementation stores include/exclude flag masks and a
// 64-entry per-area cost table; callers needing custom semantics should
// wrap or replace it, keeping costs >= Euclidean distance for A*
// admissibility.
type QueryFilter struct {
	AreaCost     [MaxAreas]float32
	IncludeFlags uint16
	ExcludeFlags uint16
}

// NewQueryFilter returns a filter that accepts every area at cost 1.0 and
// excludes nothing.
func NewQueryFilter() *QueryFilter {
	f := &QueryFilter{IncludeFlags: 0xffff}
	for i := range f.AreaCost {
		f.AreaCost[i] = 1.0
	}
	return f
}

func (f *QueryFilter) PassFilter(poly *Poly) bool {
	return (poly.Flags&f.IncludeFlags) != 0 && (poly.Flags&f.ExcludeFlags) == 0
}

func (f *QueryFilter) GetCost(pa, pb []float32, _, cur, _ *Poly) float32 {
	return vdist(pa, pb) * f.AreaCost[cur.Area()]
}
