package datastructure

// StronglyConnectedComponents. runs kosaraju's algorithm over the base edges. comp[v] is the
// component of v, components are numbered in the order the second pass finds them.
func (t *Topology) StronglyConnectedComponents() ([]Index, int) {
	n := Index(t.NodeCount())

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			t.dfs(v, &order, visited, false)
		}
	}

	// second pass on the reversed graph in decreasing finish time
	visited = make([]bool, n)
	comp := make([]Index, n)
	count := 0
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		if visited[v] {
			continue
		}
		component := make([]Index, 0, 10)
		t.dfs(v, &component, visited, true)
		for _, u := range component {
			comp[u] = Index(count)
		}
		count++
	}
	return comp, count
}

func (t *Topology) dfs(v Index, output *[]Index, visited []bool, reversed bool) {
	visited[v] = true

	next := func(u Index, _ float64) {
		if !visited[u] {
			t.dfs(u, output, visited, reversed)
		}
	}
	if !reversed {
		t.ForOutEdges(v, next)
	} else {
		t.ForInEdges(v, next)
	}

	*output = append(*output, v)
}

// LargestComponent marks the vertices of the biggest strongly connected component. the component
// found first wins ties.
func (t *Topology) LargestComponent() []bool {
	comp, count := t.StronglyConnectedComponents()
	size := make([]int, count)
	for _, c := range comp {
		size[c]++
	}
	best := 0
	for c := 1; c < count; c++ {
		if size[c] > size[best] {
			best = c
		}
	}

	in := make([]bool, len(comp))
	for v, c := range comp {
		in[v] = int(c) == best
	}
	return in
}
