package datastructure

import (
	"math"
	"sort"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

/*
Topology is the immutable node catalog plus the base adjacency.

edges are stored as two compressed sparse rows (out-edges and in-edges). out-edges of a vertex are
sorted by head, so iterating them visits neighbours in ascending index order, and parallel edges are
collapsed to the cheapest one. this gives the same relaxation order and the same base cost as a
dense n*n matrix while using O(n+m) space.
*/
type Topology struct {
	nodes     []Node
	codeIndex map[string]Index

	firstOut []Index // len n+1
	outHead  []Index
	outCost  []float64
	outName  []Index // index into roadNames, 0 = unnamed

	firstIn []Index // len n+1
	inTail  []Index
	inCost  []float64

	roadNames []string
}

type topologyOptions struct {
	requireSymmetric bool
}

type TopologyOption func(*topologyOptions)

// RequireSymmetric rejects adjacencies where some base cost i->j differs from j->i.
func RequireSymmetric() TopologyOption {
	return func(o *topologyOptions) {
		o.requireSymmetric = true
	}
}

// NewTopologyFromMatrix builds a topology from a square matrix of base costs. +Inf means no edge,
// the diagonal must be zero and every other finite cost strictly positive.
func NewTopologyFromMatrix(nodes []Node, matrix [][]float64, opts ...TopologyOption) (*Topology, error) {
	n := len(matrix)
	if n != len(nodes) {
		return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
			"adjacency has %d rows but the catalog has %d nodes", n, len(nodes))
	}

	edges := make([]Edge, 0, n)
	for i, row := range matrix {
		if len(row) != n {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"adjacency is not square: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, cost := range row {
			switch {
			case math.IsNaN(cost):
				return nil, util.WrapErrorf(nil, util.ErrMalformedTopology, "cost %d->%d is NaN", i, j)
			case cost < 0:
				return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
					"cost %d->%d is negative (%v)", i, j, cost)
			case i == j:
				if cost != 0 {
					return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
						"self cost of node %d must be zero, got %v", i, cost)
				}
			case cost == 0:
				return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
					"cost %d->%d is zero, zero is reserved for the self edge", i, j)
			case math.IsInf(cost, 1):
				// no edge
			default:
				edges = append(edges, NewEdge(Index(i), Index(j), cost, ""))
			}
		}
	}

	return NewTopologyFromEdges(nodes, edges, opts...)
}

// NewTopologyFromEdges builds a topology from directed edges. self loops are dropped since they
// never shorten a path.
func NewTopologyFromEdges(nodes []Node, edges []Edge, opts ...TopologyOption) (*Topology, error) {
	options := topologyOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	n := len(nodes)
	codeIndex := make(map[string]Index, n)
	for i, node := range nodes {
		if node.code == "" {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology, "node %d has an empty code", i)
		}
		if prev, ok := codeIndex[node.code]; ok {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"duplicate node code %q at %d and %d", node.code, prev, i)
		}
		codeIndex[node.code] = Index(i)
	}

	cleaned := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if int(e.from) >= n || int(e.to) >= n {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"edge %d->%d references a node outside [0, %d)", e.from, e.to, n)
		}
		if math.IsNaN(e.cost) || e.cost < 0 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"edge %d->%d has invalid cost %v", e.from, e.to, e.cost)
		}
		if e.from == e.to {
			continue
		}
		if e.cost == 0 || math.IsInf(e.cost, 1) {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"edge %d->%d must have a strictly positive finite cost, got %v", e.from, e.to, e.cost)
		}
		cleaned = append(cleaned, e)
	}

	sort.SliceStable(cleaned, func(a, b int) bool {
		if cleaned[a].from != cleaned[b].from {
			return cleaned[a].from < cleaned[b].from
		}
		if cleaned[a].to != cleaned[b].to {
			return cleaned[a].to < cleaned[b].to
		}
		return cleaned[a].cost < cleaned[b].cost
	})

	// collapse parallel edges, the cheapest one comes first after sorting.
	unique := cleaned[:0]
	for _, e := range cleaned {
		if last := len(unique) - 1; last >= 0 && e.from == unique[last].from && e.to == unique[last].to {
			continue
		}
		unique = append(unique, e)
	}

	t := &Topology{
		nodes:     append([]Node(nil), nodes...),
		codeIndex: codeIndex,
		roadNames: []string{""},
	}
	t.buildCSR(unique)

	if options.requireSymmetric {
		if err := t.checkSymmetric(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Topology) buildCSR(edges []Edge) {
	n := len(t.nodes)
	m := len(edges)

	nameIds := make(map[string]Index)

	t.firstOut = make([]Index, n+1)
	t.outHead = make([]Index, m)
	t.outCost = make([]float64, m)
	t.outName = make([]Index, m)

	// edges are sorted by (from, to): out-edges are already in CSR order.
	for _, e := range edges {
		t.firstOut[e.from+1]++
	}
	for i := 0; i < n; i++ {
		t.firstOut[i+1] += t.firstOut[i]
	}
	for k, e := range edges {
		t.outHead[k] = e.to
		t.outCost[k] = e.cost
		if e.roadName != "" {
			id, ok := nameIds[e.roadName]
			if !ok {
				id = Index(len(t.roadNames))
				t.roadNames = append(t.roadNames, e.roadName)
				nameIds[e.roadName] = id
			}
			t.outName[k] = id
		}
	}

	// in-edges: counting sort on head. iterating edges in (from, to) order keeps tails ascending.
	t.firstIn = make([]Index, n+1)
	t.inTail = make([]Index, m)
	t.inCost = make([]float64, m)
	for _, e := range edges {
		t.firstIn[e.to+1]++
	}
	for i := 0; i < n; i++ {
		t.firstIn[i+1] += t.firstIn[i]
	}
	next := make([]Index, n)
	copy(next, t.firstIn[:n])
	for _, e := range edges {
		pos := next[e.to]
		t.inTail[pos] = e.from
		t.inCost[pos] = e.cost
		next[e.to]++
	}
}

func (t *Topology) checkSymmetric() error {
	for u := 0; u < len(t.nodes); u++ {
		for k := t.firstOut[u]; k < t.firstOut[u+1]; k++ {
			v := t.outHead[k]
			back := t.baseCost(v, Index(u))
			if !Eq(back, t.outCost[k]) {
				return util.WrapErrorf(nil, util.ErrMalformedTopology,
					"asymmetric cost between %s and %s: %v vs %v",
					t.nodes[u].code, t.nodes[v].code, t.outCost[k], back)
			}
		}
	}
	return nil
}

func (t *Topology) NodeCount() int {
	return len(t.nodes)
}

func (t *Topology) EdgeCount() int {
	return len(t.outHead)
}

func (t *Topology) ValidIndex(i Index) bool {
	return int(i) < len(t.nodes)
}

func (t *Topology) checkIndex(i Index) error {
	if !t.ValidIndex(i) {
		return util.WrapErrorf(nil, util.ErrOutOfRange, "node index %d outside [0, %d)", i, len(t.nodes))
	}
	return nil
}

// IndexOf resolves a catalog code.
func (t *Topology) IndexOf(code string) (Index, error) {
	idx, ok := t.codeIndex[code]
	if !ok {
		return INVALID_VERTEX_ID, util.WrapErrorf(nil, util.ErrUnknownNode, "node code %q is not in the catalog", code)
	}
	return idx, nil
}

func (t *Topology) Node(i Index) (Node, error) {
	if err := t.checkIndex(i); err != nil {
		return Node{}, err
	}
	return t.nodes[i], nil
}

func (t *Topology) Code(i Index) (string, error) {
	if err := t.checkIndex(i); err != nil {
		return "", err
	}
	return t.nodes[i].code, nil
}

func (t *Topology) Name(i Index) (string, error) {
	if err := t.checkIndex(i); err != nil {
		return "", err
	}
	return t.nodes[i].name, nil
}

func (t *Topology) Tier(i Index) (pkg.Tier, error) {
	if err := t.checkIndex(i); err != nil {
		return pkg.UNTIERED, err
	}
	return t.nodes[i].tier, nil
}

// Coordinates. ok is false when the node has no position.
func (t *Topology) Coordinates(i Index) (lat, lon float64, ok bool, err error) {
	if err := t.checkIndex(i); err != nil {
		return 0, 0, false, err
	}
	node := t.nodes[i]
	return node.lat, node.lon, node.hasCoord, nil
}

// GetNode. unchecked accessor for hot loops, i must be valid.
func (t *Topology) GetNode(i Index) Node {
	return t.nodes[i]
}

func (t *Topology) GetNodes() []Node {
	return t.nodes
}

// Facilities returns the indices of every ranked (tiered) node, ascending.
func (t *Topology) Facilities() []Index {
	facilities := make([]Index, 0)
	for i, node := range t.nodes {
		if node.tier.Ranked() {
			facilities = append(facilities, Index(i))
		}
	}
	return facilities
}

// HasCoordinates reports whether every node carries a position.
func (t *Topology) HasCoordinates() bool {
	if len(t.nodes) == 0 {
		return false
	}
	for _, node := range t.nodes {
		if !node.hasCoord {
			return false
		}
	}
	return true
}

// BaseCost returns the direct edge cost i->j, 0 for i == j and +Inf when there is no edge.
func (t *Topology) BaseCost(i, j Index) (float64, error) {
	if err := t.checkIndex(i); err != nil {
		return 0, err
	}
	if err := t.checkIndex(j); err != nil {
		return 0, err
	}
	return t.baseCost(i, j), nil
}

func (t *Topology) baseCost(i, j Index) float64 {
	if i == j {
		return 0
	}
	k, ok := t.findOutEdge(i, j)
	if !ok {
		return pkg.INF_WEIGHT
	}
	return t.outCost[k]
}

func (t *Topology) findOutEdge(i, j Index) (Index, bool) {
	lo, hi := t.firstOut[i], t.firstOut[i+1]
	pos := lo + Index(sort.Search(int(hi-lo), func(k int) bool {
		return t.outHead[lo+Index(k)] >= j
	}))
	if pos < hi && t.outHead[pos] == j {
		return pos, true
	}
	return 0, false
}

// EdgeRoadName returns the road name of edge u->v, or "" when unnamed or absent.
func (t *Topology) EdgeRoadName(u, v Index) string {
	if !t.ValidIndex(u) || !t.ValidIndex(v) {
		return ""
	}
	k, ok := t.findOutEdge(u, v)
	if !ok {
		return ""
	}
	return t.roadNames[t.outName[k]]
}

func (t *Topology) OutDegree(u Index) int {
	return int(t.firstOut[u+1] - t.firstOut[u])
}

func (t *Topology) InDegree(v Index) int {
	return int(t.firstIn[v+1] - t.firstIn[v])
}

// ForOutEdges visits the out-edges of u in ascending head order.
func (t *Topology) ForOutEdges(u Index, handle func(v Index, cost float64)) {
	for k := t.firstOut[u]; k < t.firstOut[u+1]; k++ {
		handle(t.outHead[k], t.outCost[k])
	}
}

// ForInEdges visits the in-edges of v in ascending tail order.
func (t *Topology) ForInEdges(v Index, handle func(u Index, cost float64)) {
	for k := t.firstIn[v]; k < t.firstIn[v+1]; k++ {
		handle(t.inTail[k], t.inCost[k])
	}
}

// ForEachEdge visits every directed edge in (from, to) order.
func (t *Topology) ForEachEdge(handle func(u, v Index, cost float64, roadName string)) {
	for u := 0; u < len(t.nodes); u++ {
		for k := t.firstOut[u]; k < t.firstOut[u+1]; k++ {
			handle(Index(u), t.outHead[k], t.outCost[k], t.roadNames[t.outName[k]])
		}
	}
}

// Edges returns the directed edges as builder input, in (from, to) order.
func (t *Topology) Edges() []Edge {
	edges := make([]Edge, 0, len(t.outHead))
	t.ForEachEdge(func(u, v Index, cost float64, roadName string) {
		edges = append(edges, NewEdge(u, v, cost, roadName))
	})
	return edges
}
