package navmesh

import "container/heap"

const (
	nodeOpen           uint8 = 1 << 0
	nodeClosed         uint8 = 1 << 1
	nodeParentDetached uint8 = 1 << 2 // parent found via raycast shortcut, not an adjacent poly
)

// Node is one entry of a graph search: a polygon reached at a given state
// (the state disambiguates arrivals at the same polygon via different tile
// sides), with its running cost and a 1-based index back to its parent.
type Node struct {
	Pos       [3]float32
	Cost      float32
	Total     float32
	Pidx      uint32
	State     uint8
	Flags     uint8
	Ref       PolyRef
	heapIndex int
	poolIdx   uint32 // 1-based index into NodePool.nodes; 0 means detached
}

type nodeHeap struct {
	data []*Node
}

func (h *nodeHeap) Len() int            { return len(h.data) }
func (h *nodeHeap) Less(i, j int) bool  { return h.data[i].Total < h.data[j].Total }
func (h *nodeHeap) Swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
	h.data[i].heapIndex = i
	h.data[j].heapIndex = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*Node)
	n.heapIndex = len(h.data)
	h.data = append(h.data, n)
}
func (h *nodeHeap) Pop() any {
	old := h.data
	n := len(old)
	item := old[n-1]
	h.data = old[:n-1]
	return item
}

// NodeQueue is a binary min-heap over nodes keyed by Total cost.
type NodeQueue struct {
	h nodeHeap
}

func NewNodeQueue() *NodeQueue {
	q := &NodeQueue{}
	heap.Init(&q.h)
	return q
}

func (q *NodeQueue) Reset()        { q.h.data = q.h.data[:0] }
func (q *NodeQueue) Empty() bool   { return len(q.h.data) == 0 }
func (q *NodeQueue) Push(n *Node)  { heap.Push(&q.h, n) }
func (q *NodeQueue) Pop() *Node    { return heap.Pop(&q.h).(*Node) }
func (q *NodeQueue) Modify(n *Node) {
	heap.Fix(&q.h, n.heapIndex)
}

const nullIdx = 0xffffffff

// NodePool is an arena of nodes addressed by 1-based index, with a
// power-of-two hash table (chained by PolyRef) supporting multiple nodes
// per PolyRef distinguished by State.
type NodePool struct {
	nodes     []Node
	first     []uint32
	next      []uint32
	maxNodes  uint32
	hashSize  uint32
	nodeCount uint32
}

func NewNodePool(maxNodes, hashSize uint32) *NodePool {
	p := &NodePool{maxNodes: maxNodes, hashSize: hashSize}
	p.nodes = make([]Node, maxNodes)
	p.next = make([]uint32, maxNodes)
	p.first = make([]uint32, hashSize)
	p.Clear()
	return p
}

func hashRef(ref PolyRef) uint32 {
	a := uint64(ref)
	a += ^(a << 15)
	a ^= a >> 10
	a += a << 3
	a ^= a >> 6
	a += ^(a << 11)
	a ^= a >> 16
	return uint32(a)
}

func (p *NodePool) Clear() {
	for i := range p.first {
		p.first[i] = nullIdx
	}
	for i := range p.next {
		p.next[i] = nullIdx
	}
	p.nodeCount = 0
}

func (p *NodePool) bucket(ref PolyRef) uint32 { return hashRef(ref) & (p.hashSize - 1) }

// GetNode returns the node for (ref, state), allocating it if it does not
// yet exist. Returns nil when the pool is saturated.
func (p *NodePool) GetNode(ref PolyRef, state uint8) *Node {
	b := p.bucket(ref)
	for i := p.first[b]; i != nullIdx; i = p.next[i] {
		if p.nodes[i].Ref == ref && p.nodes[i].State == state {
			return &p.nodes[i]
		}
	}
	if p.nodeCount >= p.maxNodes {
		return nil
	}
	i := p.nodeCount
	p.nodeCount++
	n := &p.nodes[i]
	*n = Node{Ref: ref, State: state, poolIdx: i + 1}
	p.next[i] = p.first[b]
	p.first[b] = i
	return n
}

// FindNode returns an existing node for (ref, state), or nil.
func (p *NodePool) FindNode(ref PolyRef, state uint8) *Node {
	b := p.bucket(ref)
	for i := p.first[b]; i != nullIdx; i = p.next[i] {
		if p.nodes[i].Ref == ref && p.nodes[i].State == state {
			return &p.nodes[i]
		}
	}
	return nil
}

// FindNodes returns every node with the given ref, regardless of state, up
// to max entries.
func (p *NodePool) FindNodes(ref PolyRef, max int) []*Node {
	var out []*Node
	b := p.bucket(ref)
	for i := p.first[b]; i != nullIdx && len(out) < max; i = p.next[i] {
		if p.nodes[i].Ref == ref {
			out = append(out, &p.nodes[i])
		}
	}
	return out
}

func (p *NodePool) GetNodeIdx(n *Node) uint32 {
	if n == nil {
		return 0
	}
	return n.poolIdx
}

func (p *NodePool) GetNodeAtIdx(idx uint32) *Node {
	if idx == 0 {
		return nil
	}
	return &p.nodes[idx-1]
}
