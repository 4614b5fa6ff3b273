package landmark

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Landmark struct {
	lw        [][]float64 // distance from each landmarks to every vertices in graph
	vlw       [][]float64 // distance from all vertices to each landmarks
	landmarks []da.Index  // landmark vertex ids
}

func NewLandmark() *Landmark {
	return &Landmark{
		lw:        make([][]float64, 0),
		vlw:       make([][]float64, 0),
		landmarks: make([]da.Index, 0),
	}
}

func (lm *Landmark) GetLandmarks() []da.Index {
	return lm.landmarks
}

func (lm *Landmark) NumberOfVertices() int {
	return len(lm.vlw)
}

/*
[1] Goldberg, A.V. and Harrelson, C. (2005) 'Computing the shortest path: A search meets graph theory', SODA '05, pp. 156-165.

farthest landmark selection (section 7 of [1]): the first landmark is the vertex farthest from vertex 0,
each next one maximises the distance to the closest already selected landmark. vertices unreachable
from every landmark are never picked. ties go to the lowest index.

returns the selected landmarks together with their forward distance arrays.
*/
func (lm *Landmark) SelectLandmarks(k int, topology *da.Topology) ([]da.Index, [][]float64, error) {
	n := topology.NodeCount()
	if n == 0 || k <= 0 {
		return nil, nil, nil
	}

	minDist := make([]float64, n)
	for v := range minDist {
		minDist[v] = pkg.INF_WEIGHT
	}

	start, err := NewDijkstra(topology, false).ShortestPath(0)
	if err != nil {
		return nil, nil, err
	}
	next := farthest(start, func(v int) bool { return true })

	landmarks := make([]da.Index, 0, k)
	forward := make([][]float64, 0, k)
	chosen := make(map[da.Index]struct{}, k)

	for len(landmarks) < k && next != da.INVALID_VERTEX_ID {
		dist, err := NewDijkstra(topology, false).ShortestPath(next)
		if err != nil {
			return nil, nil, err
		}
		landmarks = append(landmarks, next)
		forward = append(forward, dist)
		chosen[next] = struct{}{}

		for v := 0; v < n; v++ {
			if dist[v] < minDist[v] {
				minDist[v] = dist[v]
			}
		}

		next = farthest(minDist, func(v int) bool {
			_, ok := chosen[da.Index(v)]
			return !ok && minDist[v] > 0
		})
	}

	return landmarks, forward, nil
}

// farthest. index of the largest finite value among accepted vertices, lowest index on ties.
func farthest(dist []float64, accept func(v int) bool) da.Index {
	best := da.INVALID_VERTEX_ID
	bestDist := -1.0
	for v, d := range dist {
		if math.IsInf(d, 1) || !accept(v) {
			continue
		}
		if d > bestDist {
			bestDist = d
			best = da.Index(v)
		}
	}
	return best
}

/*
preprocessing phase of A*, landmark, and triangle inequality (ALT) described in [1]

O((n+m)logn * k), n=number of vertices,m=number of edges,k=number of landmarks

distances are computed on base costs. road conditions only ever raise a cost (x3 or infinite), so the
bounds stay admissible under every overlay.
*/
func (lm *Landmark) PreprocessALT(k int, topology *da.Topology, logger *zap.Logger) error {
	if k > pkg.MAX_LANDMARKS {
		return fmt.Errorf("too much landmarks!, the maximum number of landmarks is %d", pkg.MAX_LANDMARKS)
	}
	logger.Info("computing landmarks....", zap.Int("k", k))

	landmarks, forward, err := lm.SelectLandmarks(k, topology)
	if err != nil {
		return err
	}
	k = len(landmarks)
	n := topology.NodeCount()

	lm.landmarks = landmarks
	lm.lw = forward
	lm.vlw = make([][]float64, n)
	for v := 0; v < n; v++ {
		lm.vlw[v] = make([]float64, k)
	}

	backward := make([][]float64, k)
	g := errgroup.Group{}
	for i := 0; i < k; i++ {
		il := i
		g.Go(func() error {
			dist, err := NewDijkstra(topology, true).ShortestPath(landmarks[il])
			if err != nil {
				return err
			}
			backward[il] = dist
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 0; i < k; i++ {
		for v := 0; v < n; v++ {
			lm.vlw[v][i] = backward[i][v]
		}
	}

	logger.Info("done computing landmarks....", zap.Int("landmarks", k))
	return nil
}

/*
[2] Bast, H. et al. (2016) "Route Planning in Transportation Networks", in Algorithm Engineering, pp. 19-80.

tightest lower bound on dist(u, t) from the triangle inequality, section 2.2 ALT in [2]:

	dist(u,t) >= dist(u,L) - dist(t,L)
	dist(u,t) >= dist(L,t) - dist(L,u)
*/
func (lm *Landmark) FindTighestLowerBound(u, t da.Index) float64 {
	// O(k), k = number of landmarks
	tighestLowerBound := 0.0
	for i := 0; i < len(lm.landmarks); i++ {
		if math.IsInf(lm.vlw[u][i], 1) || math.IsInf(lm.lw[i][t], 1) ||
			math.IsInf(lm.vlw[t][i], 1) || math.IsInf(lm.lw[i][u], 1) {
			continue
		}
		lbOne := lm.vlw[u][i] - lm.vlw[t][i]
		lbTwo := lm.lw[i][t] - lm.lw[i][u]

		tighestLowerBound = math.Max(tighestLowerBound, math.Max(lbOne, lbTwo))
	}

	return tighestLowerBound
}

// Unreachable reports a landmark proving t cannot be reached from u: L reaches u but not t,
// or t reaches L but u does not.
func (lm *Landmark) Unreachable(u, t da.Index) bool {
	for i := 0; i < len(lm.landmarks); i++ {
		if !math.IsInf(lm.lw[i][u], 1) && math.IsInf(lm.lw[i][t], 1) {
			return true
		}
		if !math.IsInf(lm.vlw[t][i], 1) && math.IsInf(lm.vlw[u][i], 1) {
			return true
		}
	}
	return false
}

func (lm *Landmark) WriteLandmark(filename string) error {
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

	k := len(lm.landmarks)
	n := len(lm.vlw)
	fmt.Fprintf(w, "%d %d\n", k, n)

	for i := 0; i < k; i++ {
		fmt.Fprintf(w, "%d ", lm.landmarks[i])

		for v := 0; v < n; v++ {
			fmt.Fprintf(w, "%s", util.FormatFloat(lm.lw[i][v]))
			if v < n-1 {
				fmt.Fprintf(w, " ")
			}
		}
		fmt.Fprintf(w, "\n")

		for v := 0; v < n; v++ {
			fmt.Fprintf(w, "%s", util.FormatFloat(lm.vlw[v][i]))
			if v < n-1 {
				fmt.Fprintf(w, " ")
			}
		}
		fmt.Fprintf(w, "\n")
	}

	return w.Flush()
}

func ReadLandmark(filename string) (*Landmark, error) {
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
	ff := util.Fields(line)
	if len(ff) != 2 {
		return nil, fmt.Errorf("landmark file %s: bad header %q", filename, line)
	}
	k, err := strconv.Atoi(ff[0])
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(ff[1])
	if err != nil {
		return nil, err
	}

	landmarks := make([]da.Index, k)
	lw := make([][]float64, k)
	vlw := make([][]float64, n)
	for v := 0; v < n; v++ {
		vlw[v] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		ff := util.Fields(line)
		if len(ff) != n+1 {
			return nil, fmt.Errorf("landmark file %s: landmark %d has %d forward values, want %d", filename, i, len(ff)-1, n)
		}

		landmarks[i], err = da.ParseIndex(ff[0])
		if err != nil {
			return nil, err
		}
		lw[i] = make([]float64, n)
		for j := 1; j < len(ff); j++ {
			lw[i][j-1], err = util.ParseFloat(ff[j])
			if err != nil {
				return nil, err
			}
		}

		line, err = util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		ff = util.Fields(line)
		if len(ff) != n {
			return nil, fmt.Errorf("landmark file %s: landmark %d has %d backward values, want %d", filename, i, len(ff), n)
		}
		for v := 0; v < len(ff); v++ {
			vlw[v][i], err = util.ParseFloat(ff[v])
			if err != nil {
				return nil, err
			}
		}
	}

	lm := NewLandmark()
	lm.lw = lw
	lm.vlw = vlw
	lm.landmarks = landmarks
	return lm, nil
}
