package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/ranker"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

const ruleWidth = 90

// Report is one console evacuation report: every node's distance from start plus the tiered
// recommendations, all under a fixed set of road conditions.
type Report struct {
	topology *da.Topology
	overlay  *da.OverlaySnapshot
	tree     *routing.ShortestPathTree
	recs     *ranker.Recommendations
}

// Build runs Dijkstra from start under overlay, nil meaning no conditions, and ranks the result.
func Build(topology *da.Topology, overlay *da.OverlaySnapshot, start da.Index, k int) (*Report, error) {
	if overlay == nil {
		overlay = da.NoConditions()
	}
	tree, err := routing.ShortestPaths(topology, overlay, start)
	if err != nil {
		return nil, err
	}
	recs, err := ranker.Rank(topology, tree, k)
	if err != nil {
		return nil, err
	}
	return &Report{topology: topology, overlay: overlay, tree: tree, recs: recs}, nil
}

func (r *Report) GetTree() *routing.ShortestPathTree {
	return r.tree
}

func (r *Report) GetRecommendations() *ranker.Recommendations {
	return r.recs
}

func (r *Report) route(v da.Index) string {
	path, ok := routing.Reconstruct(r.tree, v)
	if !ok {
		return "-"
	}
	codes := make([]string, len(path))
	for i, u := range path {
		codes[i] = r.topology.GetNode(u).GetCode()
	}
	return strings.Join(codes, " -> ")
}

func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	start := r.tree.GetSource()
	startNode := r.topology.GetNode(start)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "HOSPITAL EVACUATION ROUTING REPORT")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Starting Location: %s - %s\n", startNode.GetCode(), startNode.GetName())
	fmt.Fprintf(bw, "Tier: %s\n\n", startNode.GetTier())

	if records := r.overlay.Records(); len(records) > 0 {
		fmt.Fprintln(bw, "ACTIVE ROAD RESTRICTIONS:")
		for _, rec := range records {
			fmt.Fprintf(bw, "   %s <-> %s: %s\n", r.topology.GetNode(rec.GetFrom()).GetCode(),
				r.topology.GetNode(rec.GetTo()).GetCode(), rec.GetStatus())
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "%-15s | %-40s | %-15s | %s\n", "Code", "Name", "Distance", "Route")
	fmt.Fprintln(bw, thin)
	for v := 0; v < r.topology.NodeCount(); v++ {
		node := da.Index(v)
		if node == start {
			continue
		}
		n := r.topology.GetNode(node)
		display := fmt.Sprintf("%s [%s]", n.GetName(), n.GetTier())
		distance := "Not Reachable"
		if r.tree.Reachable(node) {
			distance = fmt.Sprintf("%.1f", util.RoundFloat(r.tree.Distance(node), 1))
		}
		fmt.Fprintf(bw, "%-15s | %-40s | %-15s | %s\n", n.GetCode(), display, distance, r.route(node))
	}
	fmt.Fprintln(bw, rule)

	fmt.Fprintln(bw, "\nRECOMMENDED EVACUATION DESTINATIONS:")
	fmt.Fprintln(bw, thin)
	for _, tr := range r.recs.GetTiers() {
		if len(tr.GetEntries()) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n%s:\n", tr.GetTier())
		for rank, e := range tr.GetEntries() {
			n := r.topology.GetNode(e.GetNode())
			fmt.Fprintf(bw, "  %d. %s - %s\n", rank+1, n.GetCode(), n.GetName())
			fmt.Fprintf(bw, "     Distance: %.1f\n", e.GetDistance())
			fmt.Fprintf(bw, "     Route: %s\n", r.route(e.GetNode()))
		}
	}
	if _, ok := ranker.Best(r.recs); !ok {
		fmt.Fprintln(bw, "\nNo facility is reachable from the starting location.")
	}
	fmt.Fprintln(bw, "\n"+rule)

	return bw.Flush()
}

// ParseCondition parses FROM:TO:STATUS, e.g. DST:SIL:FLOODED, or FROM,TO,STATUS when a code holds a colon,
// e.g. osm:101,osm:102,BLOCKED.
func ParseCondition(s string) (da.ConditionDirective, error) {
	var from, to, status string
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return da.ConditionDirective{}, util.WrapErrorf(nil, util.ErrBadParamInput,
				"condition %q must look like FROM,TO,STATUS", s)
		}
		from, to, status = parts[0], parts[1], parts[2]
	} else {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return da.ConditionDirective{}, util.WrapErrorf(nil, util.ErrBadParamInput,
				"condition %q must look like FROM:TO:STATUS, or FROM,TO,STATUS when a code holds a colon", s)
		}
		from, to, status = parts[0], parts[1], parts[2]
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return da.ConditionDirective{}, util.WrapErrorf(nil, util.ErrBadParamInput,
			"condition %q has an empty node code", s)
	}
	st, ok := pkg.ParseRoadStatus(status)
	if !ok {
		return da.ConditionDirective{}, util.WrapErrorf(nil, util.ErrBadParamInput,
			"condition %q has unknown road status %q", s, status)
	}
	return da.NewConditionDirective(from, to, st), nil
}

func formatCondition(d da.ConditionDirective) string {
	if strings.Contains(d.From, ":") || strings.Contains(d.To, ":") {
		return fmt.Sprintf("%s,%s,%s", d.From, d.To, d.Status)
	}
	return fmt.Sprintf("%s:%s:%s", d.From, d.To, d.Status)
}

// Conditions is a repeatable flag.Value of FROM:TO:STATUS directives.
type Conditions []da.ConditionDirective

func (c *Conditions) String() string {
	if c == nil {
		return ""
	}
	out := make([]string, len(*c))
	for i, d := range *c {
		out[i] = formatCondition(d)
	}
	return strings.Join(out, " ")
}

func (c *Conditions) Set(s string) error {
	d, err := ParseCondition(s)
	if err != nil {
		return err
	}
	*c = append(*c, d)
	return nil
}
