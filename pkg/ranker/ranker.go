package ranker

import (
	"sort"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

// Entry is one ranked destination.
type Entry struct {
	node     da.Index
	distance float64
	path     []da.Index
}

func NewEntry(node da.Index, distance float64, path []da.Index) Entry {
	return Entry{node: node, distance: distance, path: path}
}

func (e Entry) GetNode() da.Index {
	return e.node
}

func (e Entry) GetDistance() float64 {
	return e.distance
}

func (e Entry) GetPath() []da.Index {
	return e.path
}

type TierRecommendation struct {
	tier    pkg.Tier
	entries []Entry
}

func (tr TierRecommendation) GetTier() pkg.Tier {
	return tr.tier
}

func (tr TierRecommendation) GetEntries() []Entry {
	return tr.entries
}

// Recommendations holds one list per ranked tier, in priority order. a tier without reachable members
// has an empty list.
type Recommendations struct {
	source da.Index
	k      int
	tiers  []TierRecommendation
}

func (r *Recommendations) GetSource() da.Index {
	return r.source
}

func (r *Recommendations) GetK() int {
	return r.k
}

func (r *Recommendations) GetTiers() []TierRecommendation {
	return r.tiers
}

// Tier returns the entries of t. ok is false only when t is not a ranked tier.
func (r *Recommendations) Tier(t pkg.Tier) ([]Entry, bool) {
	for _, tr := range r.tiers {
		if tr.tier == t {
			return tr.entries, true
		}
	}
	return nil, false
}

func checkTree(topology *da.Topology, tree *routing.ShortestPathTree) error {
	if tree.NodeCount() != topology.NodeCount() {
		return util.WrapErrorf(nil, util.ErrOutOfRange, "tree covers %d vertices, topology has %d",
			tree.NodeCount(), topology.NodeCount())
	}
	return nil
}

// byDistance sorts ascending by distance, ties by index.
func byDistance(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].distance != entries[j].distance {
			return entries[i].distance < entries[j].distance
		}
		return entries[i].node < entries[j].node
	})
}

/*
Rank. for every ranked tier in priority order, the k nearest reachable members of that tier, source
excluded, sorted by distance then index. k <= 0 means DEFAULT_TOP_K.
*/
func Rank(topology *da.Topology, tree *routing.ShortestPathTree, k int) (*Recommendations, error) {
	if err := checkTree(topology, tree); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = pkg.DEFAULT_TOP_K
	}

	candidates := make(map[pkg.Tier][]Entry, len(pkg.TierPriority))
	for v := 0; v < topology.NodeCount(); v++ {
		node := da.Index(v)
		tier := topology.GetNode(node).GetTier()
		if !tier.Ranked() || node == tree.GetSource() || !tree.Reachable(node) {
			continue
		}
		candidates[tier] = append(candidates[tier], Entry{node: node, distance: tree.Distance(node)})
	}

	recs := &Recommendations{
		source: tree.GetSource(),
		k:      k,
		tiers:  make([]TierRecommendation, 0, len(pkg.TierPriority)),
	}
	for _, tier := range pkg.TierPriority {
		entries := candidates[tier]
		byDistance(entries)
		if len(entries) > k {
			entries = entries[:k]
		}
		out := make([]Entry, 0, len(entries))
		for _, e := range entries {
			path, ok := routing.Reconstruct(tree, e.node)
			if !ok {
				continue
			}
			e.path = path
			out = append(out, e)
		}
		recs.tiers = append(recs.tiers, TierRecommendation{tier: tier, entries: out})
	}
	return recs, nil
}

// Best is the first entry of the highest tier that has one.
func Best(recs *Recommendations) (Entry, bool) {
	for _, tr := range recs.tiers {
		if len(tr.entries) > 0 {
			return tr.entries[0], true
		}
	}
	return Entry{}, false
}

// Nearest is the reachable target with the smallest distance, lowest index on ties. the source counts
// when it is listed as a target.
func Nearest(topology *da.Topology, tree *routing.ShortestPathTree, targets []da.Index) (Entry, bool, error) {
	if err := checkTree(topology, tree); err != nil {
		return Entry{}, false, err
	}

	reachable := make([]Entry, 0, len(targets))
	for _, t := range targets {
		if !topology.ValidIndex(t) {
			return Entry{}, false, util.WrapErrorf(nil, util.ErrOutOfRange, "target index %d out of range [0, %d)",
				t, topology.NodeCount())
		}
		if tree.Reachable(t) {
			reachable = append(reachable, Entry{node: t, distance: tree.Distance(t)})
		}
	}
	if len(reachable) == 0 {
		return Entry{}, false, nil
	}

	byDistance(reachable)
	best := reachable[0]
	best.path, _ = routing.Reconstruct(tree, best.node)
	return best, true, nil
}
