package datastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

/*
topology file, bzip2 compressed text:

	<numNodes> <numEdges> <numRoadNames>
	numNodes lines:     code \t name \t tier \t lat \t lon \t hasCoord \t osmId
	numRoadNames lines: road name (name id = line number, 1-based; 0 is unnamed)
	numEdges lines:     from to cost nameId
*/
func (t *Topology) WriteTopology(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d %d\n", len(t.nodes), len(t.outHead), len(t.roadNames)-1)

	for _, node := range t.nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%d\n",
			node.code, sanitizeField(node.name), tierKey(node.tier),
			strconv.FormatFloat(node.lat, 'f', -1, 64), strconv.FormatFloat(node.lon, 'f', -1, 64),
			node.hasCoord, node.osmId)
	}

	for _, name := range t.roadNames[1:] {
		fmt.Fprintf(w, "%s\n", sanitizeField(name))
	}

	for u := 0; u < len(t.nodes); u++ {
		for k := t.firstOut[u]; k < t.firstOut[u+1]; k++ {
			fmt.Fprintf(w, "%d %d %s %d\n", u, t.outHead[k], util.FormatFloat(t.outCost[k]), t.outName[k])
		}
	}

	return w.Flush()
}

func ReadTopology(filename string) (*Topology, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	tokens := util.Fields(line)
	if len(tokens) != 3 {
		return nil, malformedFile(filename, "header must have 3 fields, got %d", len(tokens))
	}
	counts := make([]int, 3)
	for i, tok := range tokens {
		counts[i], err = strconv.Atoi(tok)
		if err != nil {
			return nil, malformedFile(filename, "header field %d: %v", i, err)
		}
	}
	numNodes, numEdges, numRoadNames := counts[0], counts[1], counts[2]

	nodes := make([]Node, numNodes)
	for i := 0; i < numNodes; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		nodes[i], err = parseNode(line)
		if err != nil {
			return nil, malformedFile(filename, "node %d: %v", i, err)
		}
	}

	roadNames := make([]string, numRoadNames+1)
	for i := 1; i <= numRoadNames; i++ {
		roadNames[i], err = util.ReadLine(br)
		if err != nil {
			return nil, err
		}
	}

	edges := make([]Edge, numEdges)
	for i := 0; i < numEdges; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		ff := util.Fields(line)
		if len(ff) != 4 {
			return nil, malformedFile(filename, "edge %d must have 4 fields, got %d", i, len(ff))
		}
		from, err := ParseIndex(ff[0])
		if err != nil {
			return nil, malformedFile(filename, "edge %d: %v", i, err)
		}
		to, err := ParseIndex(ff[1])
		if err != nil {
			return nil, malformedFile(filename, "edge %d: %v", i, err)
		}
		cost, err := util.ParseFloat(ff[2])
		if err != nil {
			return nil, malformedFile(filename, "edge %d: %v", i, err)
		}
		nameId, err := ParseIndex(ff[3])
		if err != nil || int(nameId) > numRoadNames {
			return nil, malformedFile(filename, "edge %d: bad road name id %q", i, ff[3])
		}
		edges[i] = NewEdge(from, to, cost, roadNames[nameId])
	}

	return NewTopologyFromEdges(nodes, edges)
}

func parseNode(line string) (Node, error) {
	ff := strings.Split(line, "\t")
	if len(ff) != 7 {
		return Node{}, fmt.Errorf("want 7 tab separated fields, got %d", len(ff))
	}
	tier, ok := pkg.ParseTier(ff[2])
	if !ok {
		return Node{}, fmt.Errorf("unknown tier %q", ff[2])
	}
	lat, err := strconv.ParseFloat(ff[3], 64)
	if err != nil {
		return Node{}, err
	}
	lon, err := strconv.ParseFloat(ff[4], 64)
	if err != nil {
		return Node{}, err
	}
	hasCoord, err := strconv.ParseBool(ff[5])
	if err != nil {
		return Node{}, err
	}
	osmId, err := strconv.ParseInt(ff[6], 10, 64)
	if err != nil {
		return Node{}, err
	}
	return Node{
		code:     ff[0],
		name:     ff[1],
		tier:     tier,
		lat:      lat,
		lon:      lon,
		hasCoord: hasCoord,
		osmId:    osmId,
	}, nil
}

func tierKey(t pkg.Tier) string {
	switch t {
	case pkg.TOP_TIER:
		return "top"
	case pkg.UPPER_TIER:
		return "upper"
	case pkg.MIDDLE_TIER:
		return "middle"
	case pkg.LOWER_MIDDLE_TIER:
		return "lower_middle"
	default:
		return "untiered"
	}
}

func sanitizeField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

func malformedFile(filename, format string, a ...interface{}) error {
	return util.WrapErrorf(fmt.Errorf(format, a...), util.ErrMalformedTopology, "read topology %s", filename)
}
