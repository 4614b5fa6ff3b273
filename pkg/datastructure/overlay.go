package datastructure

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

// CostOverlay turns a base cost into the cost a query actually pays.
type CostOverlay interface {
	EffectiveCost(i, j Index, baseCost float64) float64
	// Key is the canonical form of the overlay: equal keys mean equal effective costs.
	Key() string
	// Fingerprint is a short hash of Key, for logs and metrics.
	Fingerprint() string
}

// edgeKey is an unordered node pair, a <= b.
type edgeKey struct {
	a, b Index
}

func newEdgeKey(i, j Index) edgeKey {
	if i > j {
		i, j = j, i
	}
	return edgeKey{a: i, b: j}
}

type ConditionRecord struct {
	from   Index
	to     Index
	status pkg.RoadStatus
}

func NewConditionRecord(from, to Index, status pkg.RoadStatus) ConditionRecord {
	k := newEdgeKey(from, to)
	return ConditionRecord{from: k.a, to: k.b, status: status}
}

func (r ConditionRecord) GetFrom() Index {
	return r.from
}

func (r ConditionRecord) GetTo() Index {
	return r.to
}

func (r ConditionRecord) GetStatus() pkg.RoadStatus {
	return r.status
}

// effectiveCost. shared by the mutable overlay and its snapshots.
func effectiveCost(records map[edgeKey]pkg.RoadStatus, i, j Index, baseCost float64) float64 {
	if math.IsInf(baseCost, 1) || (i == j && baseCost == 0) {
		return pkg.INF_WEIGHT
	}
	switch records[newEdgeKey(i, j)] {
	case pkg.BLOCKED:
		return pkg.INF_WEIGHT
	case pkg.FLOODED:
		return baseCost * pkg.FLOODED_COST_MULTIPLIER
	default:
		return baseCost
	}
}

func sortedRecords(records map[edgeKey]pkg.RoadStatus) []ConditionRecord {
	out := make([]ConditionRecord, 0, len(records))
	for k, s := range records {
		out = append(out, ConditionRecord{from: k.a, to: k.b, status: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].from != out[j].from {
			return out[i].from < out[j].from
		}
		return out[i].to < out[j].to
	})
	return out
}

// canonicalKey lists the records sorted by pair, e.g. "0-1:FLOODED;2-3:BLOCKED;".
func canonicalKey(records map[edgeKey]pkg.RoadStatus) string {
	if len(records) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range sortedRecords(records) {
		sb.WriteString(strconv.FormatUint(uint64(r.from), 10))
		sb.WriteString("-")
		sb.WriteString(strconv.FormatUint(uint64(r.to), 10))
		sb.WriteString(":")
		sb.WriteString(r.status.String())
		sb.WriteString(";")
	}
	return sb.String()
}

func fingerprint(key string) string {
	if key == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

/*
ConditionOverlay is the session-wide, mutable set of road conditions layered over a Topology.
records are keyed by unordered pair, so one record covers both traversal directions. a missing
record means OPEN, and setting OPEN removes the record.

queries never read the overlay directly while it may change: they take a Snapshot first.
*/
type ConditionOverlay struct {
	mu      sync.RWMutex
	records map[edgeKey]pkg.RoadStatus
}

func NewConditionOverlay() *ConditionOverlay {
	return &ConditionOverlay{records: make(map[edgeKey]pkg.RoadStatus)}
}

// SetStatus replaces the status of pair {i, j}. argument order does not matter.
func (o *ConditionOverlay) SetStatus(i, j Index, status pkg.RoadStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := newEdgeKey(i, j)
	if status == pkg.OPEN {
		delete(o.records, k)
		return
	}
	o.records[k] = status
}

func (o *ConditionOverlay) Clear() {
	o.mu.Lock()
	o.records = make(map[edgeKey]pkg.RoadStatus)
	o.mu.Unlock()
}

func (o *ConditionOverlay) Status(i, j Index) pkg.RoadStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.records[newEdgeKey(i, j)]
}

func (o *ConditionOverlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.records)
}

// Records returns the non-OPEN pairs sorted by (from, to), from < to.
func (o *ConditionOverlay) Records() []ConditionRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return sortedRecords(o.records)
}

func (o *ConditionOverlay) EffectiveCost(i, j Index, baseCost float64) float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return effectiveCost(o.records, i, j, baseCost)
}

func (o *ConditionOverlay) Key() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return canonicalKey(o.records)
}

func (o *ConditionOverlay) Fingerprint() string {
	return fingerprint(o.Key())
}

// Snapshot copies the current records into an immutable overlay.
func (o *ConditionOverlay) Snapshot() *OverlaySnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	records := make(map[edgeKey]pkg.RoadStatus, len(o.records))
	for k, s := range o.records {
		records[k] = s
	}
	key := canonicalKey(records)
	return &OverlaySnapshot{records: records, key: key, fingerprint: fingerprint(key)}
}

// OverlaySnapshot is a read-only copy of a ConditionOverlay, safe to share between goroutines.
type OverlaySnapshot struct {
	records     map[edgeKey]pkg.RoadStatus
	key         string
	fingerprint string
}

// NoConditions is an all-OPEN snapshot.
func NoConditions() *OverlaySnapshot {
	return &OverlaySnapshot{records: map[edgeKey]pkg.RoadStatus{}}
}

func (s *OverlaySnapshot) EffectiveCost(i, j Index, baseCost float64) float64 {
	return effectiveCost(s.records, i, j, baseCost)
}

func (s *OverlaySnapshot) Status(i, j Index) pkg.RoadStatus {
	return s.records[newEdgeKey(i, j)]
}

func (s *OverlaySnapshot) Key() string {
	return s.key
}

func (s *OverlaySnapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *OverlaySnapshot) Len() int {
	return len(s.records)
}

func (s *OverlaySnapshot) Records() []ConditionRecord {
	return sortedRecords(s.records)
}

// ConditionDirective is a disaster-simulation input expressed with catalog codes.
type ConditionDirective struct {
	From   string
	To     string
	Status pkg.RoadStatus
}

func NewConditionDirective(from, to string, status pkg.RoadStatus) ConditionDirective {
	return ConditionDirective{From: from, To: to, Status: status}
}

// ApplyDirectives resolves every directive first, so an unknown code leaves the overlay untouched.
func (o *ConditionOverlay) ApplyDirectives(t *Topology, directives []ConditionDirective) error {
	type resolved struct {
		i, j   Index
		status pkg.RoadStatus
	}
	pending := make([]resolved, 0, len(directives))
	for _, d := range directives {
		i, err := t.IndexOf(d.From)
		if err != nil {
			return err
		}
		j, err := t.IndexOf(d.To)
		if err != nil {
			return err
		}
		pending = append(pending, resolved{i: i, j: j, status: d.Status})
	}
	for _, p := range pending {
		o.SetStatus(p.i, p.j, p.status)
	}
	return nil
}

// ApplyRoadCondition sets status on every edge whose road name contains fragment
// (case-insensitive). returns the number of node pairs affected.
func (o *ConditionOverlay) ApplyRoadCondition(t *Topology, fragment string, status pkg.RoadStatus) (int, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "road name fragment must not be empty")
	}

	pairs := make(map[edgeKey]struct{})
	t.ForEachEdge(func(u, v Index, cost float64, roadName string) {
		if roadName != "" && strings.Contains(strings.ToLower(roadName), needle) {
			pairs[newEdgeKey(u, v)] = struct{}{}
		}
	})

	for k := range pairs {
		o.SetStatus(k.a, k.b, status)
	}
	return len(pairs), nil
}
