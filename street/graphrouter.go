package street

import "container/heap"

// Graph is a minimal in-memory street graph: an adjacency list of
// vertices connected by edges weighted in millimetres. It exists so
// this module's tests (and the build CLI's demo street graph) have a
// concrete Router without pulling in a real street-routing engine,
// which is out of scope for this module.
type Graph struct {
	edges       map[int][]edge
	stopAtVertex map[int]int // vertex -> stop index, for ReachedStops
}

type edge struct {
	to   int
	distMM int32
}

func NewGraph() *Graph {
	return &Graph{edges: map[int][]edge{}, stopAtVertex: map[int]int{}}
}

// AddEdge adds an undirected edge between a and b with the given
// distance in millimetres.
func (g *Graph) AddEdge(a, b int, distMM int32) {
	g.edges[a] = append(g.edges[a], edge{to: b, distMM: distMM})
	g.edges[b] = append(g.edges[b], edge{to: a, distMM: distMM})
}

// LinkStop records that vertex corresponds to the given transit stop
// index, so a Router built from this graph can populate ReachedStops.
func (g *Graph) LinkStop(vertex, stopIndex int) {
	g.stopAtVertex[vertex] = stopIndex
}

// NewRouter returns a fresh, single-use Router over this graph.
func (g *Graph) NewRouter() Router {
	return &dijkstraRouter{graph: g, distanceLimitMM: -1}
}

type dijkstraRouter struct {
	graph           *Graph
	origin          int
	distanceLimitMM int32
	quantity        QuantityToMinimize

	distances map[int]int32
	previous  map[int]int
}

func (r *dijkstraRouter) SetOrigin(vertex int) { r.origin = vertex }

func (r *dijkstraRouter) SetDistanceLimitMeters(meters float64) {
	r.distanceLimitMM = int32(meters * 1000)
}

func (r *dijkstraRouter) SetQuantityToMinimize(q QuantityToMinimize) { r.quantity = q }

type pqItem struct {
	vertex int
	dist   int32
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

func (r *dijkstraRouter) Route() error {
	r.distances = map[int]int32{r.origin: 0}
	r.previous = map[int]int{}

	pq := &priorityQueue{{vertex: r.origin, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if d, ok := r.distances[cur.vertex]; ok && cur.dist > d {
			continue
		}
		for _, e := range r.graph.edges[cur.vertex] {
			nd := cur.dist + e.distMM
			if r.distanceLimitMM >= 0 && nd > r.distanceLimitMM {
				continue
			}
			if existing, ok := r.distances[e.to]; !ok || nd < existing {
				r.distances[e.to] = nd
				r.previous[e.to] = cur.vertex
				heap.Push(pq, pqItem{vertex: e.to, dist: nd})
			}
		}
	}

	return nil
}

func (r *dijkstraRouter) ReachedStops() map[int]int32 {
	out := map[int]int32{}
	for vertex, dist := range r.distances {
		if stopIdx, ok := r.graph.stopAtVertex[vertex]; ok {
			if existing, already := out[stopIdx]; !already || dist < existing {
				out[stopIdx] = dist
			}
		}
	}
	return out
}

func (r *dijkstraRouter) ReachedVertices() map[int]int32 {
	out := make(map[int]int32, len(r.distances))
	for v, d := range r.distances {
		out[v] = d
	}
	return out
}

// StateAtVertex walks r.previous from vertex back to the search origin
// and returns the chain, State.Previous pointing toward the origin.
func (r *dijkstraRouter) StateAtVertex(vertex int) *State {
	if _, ok := r.distances[vertex]; !ok {
		return nil
	}

	head := &State{Vertex: vertex, DistanceMM: r.distances[vertex]}
	node := head
	cur := vertex
	for {
		prev, ok := r.previous[cur]
		if !ok {
			break
		}
		node.Previous = &State{Vertex: prev, DistanceMM: r.distances[prev]}
		node = node.Previous
		cur = prev
	}
	return head
}
