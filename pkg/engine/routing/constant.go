package routing

import (
	"strings"

	"github.com/lintang-b-s/evacroute/pkg/util"
)

type Algorithm uint8

const (
	DIJKSTRA Algorithm = iota
	ASTAR
	BFS
)

// graphs up to this size use the linear-scan selection, larger ones the 4-ary heap.
const LINEAR_SCAN_MAX_NODES = 2048

func (a Algorithm) String() string {
	switch a {
	case DIJKSTRA:
		return "dijkstra"
	case ASTAR:
		return "astar"
	case BFS:
		return "bfs"
	default:
		return "unknown"
	}
}

// ParseAlgorithm. empty string means dijkstra.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dijkstra":
		return DIJKSTRA, nil
	case "astar", "a*", "alt":
		return ASTAR, nil
	case "bfs":
		return BFS, nil
	default:
		return DIJKSTRA, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown algorithm %q", s)
	}
}
