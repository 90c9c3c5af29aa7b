// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

import (
	"math"
)

// ChristofidesBuilder computes a Christofides tour over the node set
// (MST, odd-degree matching, Eulerian shortcut) and shards it across the
// fleet: each route takes tour nodes as long as the filters accept, then
// spills to the next vehicle.
type ChristofidesBuilder struct {
	routingFilteredBuilder
}

// NewChristofidesBuilder returns a Christofides-based first solution builder.
func NewChristofidesBuilder(m *Model, filters []LocalSearchFilter) *ChristofidesBuilder {
	return &ChristofidesBuilder{newRoutingFilteredBuilder(m, filters)}
}

// BuildSolution implements FirstSolutionBuilder.
func (b *ChristofidesBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	tour := b.christofidesTour()
	vehicle := 0
	for _, node := range tour {
		if b.limitCrossed() {
			return false
		}
		if b.Contains(node) || b.m.IsStart(node) {
			continue
		}
		for vehicle < b.m.vehicles {
			from := b.chainEnd(vehicle)
			if b.m.IsEnd(from) {
				vehicle++
				continue
			}
			b.SetValue(from, int64(node))
			if b.Commit() {
				break
			}
			// The node does not fit this route: close it and spill over.
			b.SetValue(from, int64(b.m.ends[vehicle]))
			if !b.Commit() {
				return false
			}
			vehicle++
		}
		if vehicle >= b.m.vehicles {
			break
		}
	}
	// Close the last open route and the untouched ones.
	for v := 0; v < b.m.vehicles; v++ {
		from := b.chainEnd(v)
		if !b.m.IsEnd(from) && !b.Contains(from) {
			b.SetValue(from, int64(b.m.ends[v]))
			if !b.Commit() {
				return false
			}
		}
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	if !b.closeEmptyRoutes() {
		return false
	}
	return b.AllCommitted()
}

// christofidesTour returns the visit indices ordered along a Christofides
// tour anchored at vehicle 0's start.
func (b *ChristofidesBuilder) christofidesTour() []int {
	m := b.m
	depot := m.starts[0]
	nodes := []int{depot}
	for i := 0; i < m.size; i++ {
		if !m.IsStart(i) && !b.Contains(i) {
			nodes = append(nodes, i)
		}
	}
	n := len(nodes)
	if n <= 1 {
		return nil
	}
	class := m.costClassOfVehicle[0]
	dist := make([][]int64, n)
	for i := range dist {
		dist[i] = make([]int64, n)
		for j := range dist[i] {
			if i != j {
				// Symmetrize: Christofides assumes an undirected metric.
				dist[i][j] = (m.GetArcCostForClass(nodes[i], nodes[j], class) +
					m.GetArcCostForClass(nodes[j], nodes[i], class)) / 2
			}
		}
	}

	adj := minimumSpanningTree(dist)
	odd := make([]int, 0, n/2+1)
	for v := range adj {
		if len(adj[v])%2 == 1 {
			odd = append(odd, v)
		}
	}
	greedyMatch(odd, dist, adj)
	circuit := eulerianCircuit(adj, 0)

	// Shortcut repeated vertices to a Hamiltonian order.
	seen := make([]bool, n)
	var tour []int
	for _, v := range circuit {
		if seen[v] || v == 0 {
			continue
		}
		seen[v] = true
		tour = append(tour, nodes[v])
	}
	return tour
}

// minimumSpanningTree runs Prim's algorithm on the dense matrix and returns
// the tree as adjacency lists.
func minimumSpanningTree(dist [][]int64) [][]int {
	n := len(dist)
	inMST := make([]bool, n)
	bestCost := make([]int64, n)
	parents := make([]int, n)
	adj := make([][]int, n)
	for v := range bestCost {
		bestCost[v] = math.MaxInt64
		parents[v] = -1
	}
	bestCost[0] = 0
	for it := 0; it < n; it++ {
		u, minW := -1, int64(math.MaxInt64)
		for v := 0; v < n; v++ {
			if !inMST[v] && bestCost[v] < minW {
				minW, u = bestCost[v], v
			}
		}
		if u < 0 {
			break
		}
		inMST[u] = true
		if p := parents[u]; p >= 0 {
			adj[u] = append(adj[u], p)
			adj[p] = append(adj[p], u)
		}
		for v := 0; v < n; v++ {
			if !inMST[v] && dist[u][v] < bestCost[v] {
				bestCost[v] = dist[u][v]
				parents[v] = u
			}
		}
	}
	return adj
}

// greedyMatch pairs each remaining odd-degree vertex with its nearest
// unmatched partner, adding the edges to the multigraph.
func greedyMatch(odd []int, dist [][]int64, adj [][]int) {
	remaining := append([]int(nil), odd...)
	for len(remaining) > 1 {
		u := remaining[0]
		remaining = remaining[1:]
		bestIdx, bestD := -1, int64(math.MaxInt64)
		for i, v := range remaining {
			if d := dist[u][v]; d < bestD {
				bestD, bestIdx = d, i
			}
		}
		v := remaining[bestIdx]
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
}

// eulerianCircuit returns an Eulerian tour of the multigraph with
// Hierholzer's algorithm.
func eulerianCircuit(adj [][]int, start int) []int {
	local := make([][]int, len(adj))
	for u := range adj {
		local[u] = append([]int(nil), adj[u]...)
	}
	var circuit []int
	stack := []int{start}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		if len(local[u]) == 0 {
			circuit = append(circuit, u)
			stack = stack[:len(stack)-1]
		} else {
			v := local[u][len(local[u])-1]
			local[u] = local[u][:len(local[u])-1]
			for i, x := range local[v] {
				if x == u {
					local[v] = append(local[v][:i], local[v][i+1:]...)
					break
				}
			}
			stack = append(stack, v)
		}
	}
	return circuit
}
