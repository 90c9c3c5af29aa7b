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
	"sort"
)

// OperatorKind enumerates the local-search neighborhood operators.
type OperatorKind int

// Neighborhood operators.
const (
	OperatorRelocate OperatorKind = iota
	OperatorExchange
	OperatorCross
	OperatorTwoOpt
	OperatorOrOpt
	OperatorLinKernighan
	OperatorTSPOpt
	OperatorRelocatePair
	OperatorExchangePair
	OperatorLightRelocatePair
	OperatorRelocateNeighbors
	OperatorRelocateExpensiveChain
	OperatorMakeActive
	OperatorMakeInactive
	OperatorMakeChainInactive
	OperatorSwapActive
	OperatorExtendedSwapActive
	OperatorNodePairSwap
	OperatorExchangeRelocatePair
	OperatorPathLNS
	OperatorFullPathLNS
	OperatorTSPLNS
	OperatorInactiveLNS
)

// NeighborhoodOperator produces candidate solutions near a base solution.
// Reset installs the base; MakeNextNeighbor streams candidates until false.
type NeighborhoodOperator interface {
	Name() string
	Reset(base []int64)
	MakeNextNeighbor() ([]int64, bool)
}

// lsContext is the derived view of a base solution shared by the operators.
type lsContext struct {
	m         *Model
	base      []int64
	prev      []int
	vehicleOf []int
	routes    [][]int
	inactive  []int
	valid     bool
}

func newLSContext(m *Model, base []int64) *lsContext {
	c := &lsContext{m: m, base: base}
	vehicleOf, err := m.vehicleAndActiveFromNexts(base)
	if err != nil {
		return c
	}
	c.valid = true
	c.vehicleOf = vehicleOf
	n := m.manager.NumIndices()
	c.prev = make([]int, n)
	for i := range c.prev {
		c.prev[i] = -1
	}
	c.routes = make([][]int, m.vehicles)
	for v := 0; v < m.vehicles; v++ {
		route := m.routeOfVehicle(base, v)
		c.routes[v] = route
		for k := 1; k < len(route); k++ {
			c.prev[route[k]] = route[k-1]
		}
	}
	for i := 0; i < m.size; i++ {
		if int(base[i]) == i {
			c.inactive = append(c.inactive, i)
		}
	}
	return c
}

// modify returns a copy of the base with the given next reassignments.
func (c *lsContext) modify(mods map[int]int64) []int64 {
	cand := append([]int64(nil), c.base...)
	for i, v := range mods {
		cand[i] = v
	}
	return cand
}

// activeChains lists the chains of `length` consecutive active visits
// (no starts or ends inside).
func (c *lsContext) activeChains(length int) [][2]int {
	var chains [][2]int
	for _, route := range c.routes {
		for k := 1; k+length < len(route); k++ {
			last := k + length - 1
			if last >= len(route)-1 {
				break
			}
			chains = append(chains, [2]int{route[k], route[last]})
		}
	}
	return chains
}

// insertionSpots lists every index a chain can be inserted after: starts and
// active visits.
func (c *lsContext) insertionSpots() []int {
	var spots []int
	for _, route := range c.routes {
		for k := 0; k+1 < len(route); k++ {
			spots = append(spots, route[k])
		}
	}
	return spots
}

// onChain reports whether x lies on the chain [a..b] of the base solution.
func (c *lsContext) onChain(x, a, b int) bool {
	for i := a; ; i = int(c.base[i]) {
		if i == x {
			return true
		}
		if i == b {
			return false
		}
	}
}

// relocateChain rewires chain [a..b] behind `after`. Returns nil when the
// move is degenerate.
func (c *lsContext) relocateChain(a, b, after int) map[int]int64 {
	if c.onChain(after, a, b) || after == c.prev[a] {
		return nil
	}
	return map[int]int64{
		c.prev[a]: c.base[b],
		after:     int64(a),
		b:         c.base[after],
	}
}

// pathOperatorBase precomputes the full candidate list on Reset and streams
// it. Concrete operators provide the generator.
type pathOperatorBase struct {
	name       string
	m          *Model
	generate   func(c *lsContext) [][]int64
	candidates [][]int64
	cursor     int
}

// Name implements NeighborhoodOperator.
func (o *pathOperatorBase) Name() string { return o.name }

// Reset implements NeighborhoodOperator.
func (o *pathOperatorBase) Reset(base []int64) {
	c := newLSContext(o.m, base)
	o.cursor = 0
	if !c.valid {
		o.candidates = nil
		return
	}
	o.candidates = o.generate(c)
}

// MakeNextNeighbor implements NeighborhoodOperator.
func (o *pathOperatorBase) MakeNextNeighbor() ([]int64, bool) {
	if o.cursor >= len(o.candidates) {
		return nil, false
	}
	cand := o.candidates[o.cursor]
	o.cursor++
	return cand, true
}

func makeOperator(m *Model, name string, generate func(c *lsContext) [][]int64) NeighborhoodOperator {
	return &pathOperatorBase{name: name, m: m, generate: generate}
}

// NewOperator builds the neighborhood operator of the given kind.
func NewOperator(m *Model, kind OperatorKind) NeighborhoodOperator {
	switch kind {
	case OperatorRelocate:
		return makeOperator(m, "Relocate", func(c *lsContext) [][]int64 {
			return generateRelocate(c, 1)
		})
	case OperatorOrOpt:
		return makeOperator(m, "OrOpt", func(c *lsContext) [][]int64 {
			var out [][]int64
			for _, l := range []int{2, 3} {
				out = append(out, generateRelocate(c, l)...)
			}
			return out
		})
	case OperatorExchange:
		return makeOperator(m, "Exchange", generateExchange)
	case OperatorCross:
		return makeOperator(m, "Cross", generateCross)
	case OperatorTwoOpt:
		return makeOperator(m, "TwoOpt", generateTwoOpt)
	case OperatorLinKernighan:
		return makeOperator(m, "LinKernighan", generateLinKernighan)
	case OperatorTSPOpt:
		return makeOperator(m, "TSPOpt", func(c *lsContext) [][]int64 {
			return generateTSPReorder(c, 8)
		})
	case OperatorTSPLNS:
		return makeOperator(m, "TSPLNS", func(c *lsContext) [][]int64 {
			return generateTSPReorder(c, 12)
		})
	case OperatorRelocatePair:
		return makeOperator(m, "RelocatePair", generateRelocatePair)
	case OperatorLightRelocatePair:
		return makeOperator(m, "LightRelocatePair", generateLightRelocatePair)
	case OperatorExchangePair:
		return makeOperator(m, "ExchangePair", generateExchangePair)
	case OperatorNodePairSwap:
		return makeOperator(m, "NodePairSwap", generateNodePairSwap)
	case OperatorExchangeRelocatePair:
		return makeOperator(m, "ExchangeRelocatePair", generateExchangeRelocatePair)
	case OperatorRelocateNeighbors:
		return makeOperator(m, "RelocateNeighbors", generateRelocateNeighbors)
	case OperatorRelocateExpensiveChain:
		return makeOperator(m, "RelocateExpensiveChain", generateRelocateExpensiveChain)
	case OperatorMakeActive:
		return makeOperator(m, "MakeActive", generateMakeActive)
	case OperatorMakeInactive:
		return makeOperator(m, "MakeInactive", func(c *lsContext) [][]int64 {
			return generateMakeChainInactive(c, 1)
		})
	case OperatorMakeChainInactive:
		return makeOperator(m, "MakeChainInactive", func(c *lsContext) [][]int64 {
			var out [][]int64
			for _, l := range []int{2, 3} {
				out = append(out, generateMakeChainInactive(c, l)...)
			}
			return out
		})
	case OperatorSwapActive:
		return makeOperator(m, "SwapActive", generateSwapActive)
	case OperatorExtendedSwapActive:
		return makeOperator(m, "ExtendedSwapActive", generateExtendedSwapActive)
	case OperatorPathLNS:
		return makeOperator(m, "PathLNS", generatePathLNS)
	case OperatorFullPathLNS:
		return makeOperator(m, "FullPathLNS", generateFullPathLNS)
	case OperatorInactiveLNS:
		return makeOperator(m, "InactiveLNS", generateInactiveLNS)
	}
	return nil
}

func generateRelocate(c *lsContext, length int) [][]int64 {
	var out [][]int64
	for _, chain := range c.activeChains(length) {
		a, b := chain[0], chain[1]
		for _, after := range c.insertionSpots() {
			if mods := c.relocateChain(a, b, after); mods != nil {
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

func generateExchange(c *lsContext) [][]int64 {
	var out [][]int64
	chains := c.activeChains(1)
	for i := 0; i < len(chains); i++ {
		for j := i + 1; j < len(chains); j++ {
			x, y := chains[i][0], chains[j][0]
			if int(c.base[x]) == y || int(c.base[y]) == x {
				continue // adjacent swaps degenerate to relocates
			}
			mods := map[int]int64{
				c.prev[x]: int64(y),
				y:         c.base[x],
				c.prev[y]: int64(x),
				x:         c.base[y],
			}
			out = append(out, c.modify(mods))
		}
	}
	return out
}

func generateCross(c *lsContext) [][]int64 {
	var out [][]int64
	for v1 := 0; v1 < len(c.routes); v1++ {
		for v2 := v1 + 1; v2 < len(c.routes); v2++ {
			r1, r2 := c.routes[v1], c.routes[v2]
			for k1 := 0; k1+1 < len(r1); k1++ {
				for k2 := 0; k2+1 < len(r2); k2++ {
					if k1 == 0 && k2 == 0 {
						continue // whole-route swap is a no-op up to naming
					}
					mods := map[int]int64{
						r1[k1]: int64(r2[k2+1]),
						r2[k2]: int64(r1[k1+1]),
					}
					// Tails swap vehicles; ends must swap back.
					tail1 := r1[len(r1)-2]
					tail2 := r2[len(r2)-2]
					if k1+1 < len(r1)-1 {
						mods[tail1] = int64(c.m.ends[v2])
					} else {
						mods[r2[k2]] = int64(c.m.ends[v2])
					}
					if k2+1 < len(r2)-1 {
						mods[tail2] = int64(c.m.ends[v1])
					} else {
						mods[r1[k1]] = int64(c.m.ends[v1])
					}
					out = append(out, c.modify(mods))
				}
			}
		}
	}
	return out
}

func generateTwoOpt(c *lsContext) [][]int64 {
	var out [][]int64
	for _, route := range c.routes {
		// Reverse [k1+1 .. k2] for visits only.
		for k1 := 0; k1+2 < len(route)-1; k1++ {
			for k2 := k1 + 2; k2 < len(route)-1; k2++ {
				mods := make(map[int]int64)
				mods[route[k1]] = int64(route[k2])
				for t := k2; t > k1+1; t-- {
					mods[route[t]] = int64(route[t-1])
				}
				mods[route[k1+1]] = int64(route[k2+1])
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

// generateLinKernighan produces reversed-chain relocations, the 3-opt style
// moves a sequential gain search explores.
func generateLinKernighan(c *lsContext) [][]int64 {
	var out [][]int64
	for _, l := range []int{2, 3} {
		for _, chain := range c.activeChains(l) {
			a, b := chain[0], chain[1]
			for _, after := range c.insertionSpots() {
				if c.onChain(after, a, b) || after == c.prev[a] {
					continue
				}
				// Insert the chain reversed: after -> b .. a -> old next.
				mods := make(map[int]int64)
				mods[c.prev[a]] = c.base[b]
				mods[after] = int64(b)
				nodes := []int{a}
				for i := a; i != b; {
					i = int(c.base[i])
					nodes = append(nodes, i)
				}
				for t := len(nodes) - 1; t > 0; t-- {
					mods[nodes[t]] = int64(nodes[t-1])
				}
				mods[a] = c.base[after]
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

// generateTSPReorder re-solves each route of at most maxVisits visits to
// optimality with Held-Karp dynamic programming.
func generateTSPReorder(c *lsContext, maxVisits int) [][]int64 {
	var out [][]int64
	for v, route := range c.routes {
		visits := route[1 : len(route)-1]
		n := len(visits)
		if n < 3 || n > maxVisits {
			continue
		}
		order := heldKarpOrder(c.m, visits, c.m.starts[v], c.m.ends[v], v)
		mods := make(map[int]int64)
		prev := c.m.starts[v]
		for _, node := range order {
			mods[prev] = int64(node)
			prev = node
		}
		mods[prev] = int64(c.m.ends[v])
		out = append(out, c.modify(mods))
	}
	return out
}

// heldKarpOrder returns the optimal visit order between start and end under
// the vehicle's arc costs.
func heldKarpOrder(m *Model, visits []int, start, end, v int) []int {
	n := len(visits)
	const inf = int64(1) << 60
	dp := make([][]int64, 1<<n)
	parent := make([][]int8, 1<<n)
	for s := range dp {
		dp[s] = make([]int64, n)
		parent[s] = make([]int8, n)
		for i := range dp[s] {
			dp[s][i] = inf
			parent[s][i] = -1
		}
	}
	for i := 0; i < n; i++ {
		dp[1<<i][i] = m.GetArcCostForVehicle(start, visits[i], v)
	}
	for s := 1; s < 1<<n; s++ {
		for i := 0; i < n; i++ {
			if s&(1<<i) == 0 || dp[s][i] == inf {
				continue
			}
			for j := 0; j < n; j++ {
				if s&(1<<j) != 0 {
					continue
				}
				ns := s | 1 << j
				cost := dp[s][i] + m.GetArcCostForVehicle(visits[i], visits[j], v)
				if cost < dp[ns][j] {
					dp[ns][j] = cost
					parent[ns][j] = int8(i)
				}
			}
		}
	}
	full := 1<<n - 1
	best, bestCost := 0, inf
	for i := 0; i < n; i++ {
		if c := dp[full][i] + m.GetArcCostForVehicle(visits[i], end, v); c < bestCost {
			best, bestCost = i, c
		}
	}
	order := make([]int, n)
	s, i := full, best
	for k := n - 1; k >= 0; k-- {
		order[k] = visits[i]
		p := parent[s][i]
		s &^= 1 << i
		if p < 0 {
			break
		}
		i = int(p)
	}
	return order
}

// activePairs lists the pairs whose pickup and delivery are both active, as
// the selected (pickup, delivery) alternative indices.
func activePairs(c *lsContext) [][2]int {
	var pairs [][2]int
	for _, pd := range c.m.pickupDeliveryPairs {
		var p, d int = -1, -1
		for _, alt := range pd.PickupAlternatives {
			if int(c.base[alt]) != alt {
				p = alt
			}
		}
		for _, alt := range pd.DeliveryAlternatives {
			if int(c.base[alt]) != alt {
				d = alt
			}
		}
		if p >= 0 && d >= 0 {
			pairs = append(pairs, [2]int{p, d})
		}
	}
	return pairs
}

func generateRelocatePair(c *lsContext) [][]int64 {
	var out [][]int64
	for _, pair := range activePairs(c) {
		p, d := pair[0], pair[1]
		for _, afterP := range c.insertionSpots() {
			if afterP == p || afterP == d {
				continue
			}
			// Remove p and d, then insert p after afterP and d right after p.
			removed := c.removePairMods(p, d)
			if removed == nil {
				continue
			}
			next := func(i int) int64 {
				if v, ok := removed[i]; ok {
					return v
				}
				return c.base[i]
			}
			mods := make(map[int]int64, len(removed)+3)
			for k, v := range removed {
				mods[k] = v
			}
			mods[p] = next(afterP)
			mods[afterP] = int64(p)
			// d immediately after p.
			mods[d] = mods[p]
			mods[p] = int64(d)
			out = append(out, c.modify(mods))
		}
	}
	return out
}

// removePairMods unlinks p and d from their route.
func (c *lsContext) removePairMods(p, d int) map[int]int64 {
	mods := make(map[int]int64)
	if int(c.base[p]) == d {
		mods[c.prev[p]] = c.base[d]
	} else {
		mods[c.prev[p]] = c.base[p]
		if c.prev[d] == p {
			return nil
		}
		mods[c.prev[d]] = c.base[d]
	}
	return mods
}

func generateLightRelocatePair(c *lsContext) [][]int64 {
	var out [][]int64
	for _, pair := range activePairs(c) {
		p, d := pair[0], pair[1]
		if int(c.base[p]) != d {
			continue // only adjacent pairs move as one chain
		}
		for _, after := range c.insertionSpots() {
			if mods := c.relocateChain(p, d, after); mods != nil {
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

func generateExchangePair(c *lsContext) [][]int64 {
	var out [][]int64
	pairs := activePairs(c)
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			p1, d1 := pairs[i][0], pairs[i][1]
			p2, d2 := pairs[j][0], pairs[j][1]
			if int(c.base[p1]) != d1 || int(c.base[p2]) != d2 {
				continue
			}
			if c.prev[p2] == d1 || c.prev[p1] == d2 {
				continue
			}
			mods := map[int]int64{
				c.prev[p1]: int64(p2),
				d2:         c.base[d1],
				c.prev[p2]: int64(p1),
				d1:         c.base[d2],
			}
			out = append(out, c.modify(mods))
		}
	}
	return out
}

func generateNodePairSwap(c *lsContext) [][]int64 {
	var out [][]int64
	for _, pair := range activePairs(c) {
		p, d := pair[0], pair[1]
		if int(c.base[p]) == d || c.prev[d] == p {
			continue
		}
		// Swap the positions of pickup and delivery.
		mods := map[int]int64{
			c.prev[p]: int64(d),
			d:         c.base[p],
			c.prev[d]: int64(p),
			p:         c.base[d],
		}
		out = append(out, c.modify(mods))
	}
	return out
}

func generateExchangeRelocatePair(c *lsContext) [][]int64 {
	var out [][]int64
	for _, pair := range activePairs(c) {
		p, d := pair[0], pair[1]
		if int(c.base[p]) != d {
			continue
		}
		for _, chain := range c.activeChains(1) {
			x := chain[0]
			if x == p || x == d || c.onChain(x, p, d) {
				continue
			}
			if c.prev[x] == d || c.prev[p] == x {
				continue
			}
			// The pair chain takes x's slot; x takes the pair's slot.
			mods := map[int]int64{
				c.prev[p]: int64(x),
				x:         c.base[d],
				c.prev[x]: int64(p),
				d:         c.base[x],
			}
			out = append(out, c.modify(mods))
		}
	}
	return out
}

func generateRelocateNeighbors(c *lsContext) [][]int64 {
	var out [][]int64
	for _, chain := range c.activeChains(2) {
		a, b := chain[0], chain[1]
		// Move the two-node chain next to a's cheapest predecessor candidate.
		type spot struct {
			after int
			cost  int64
		}
		var spots []spot
		for _, after := range c.insertionSpots() {
			v := c.vehicleOf[after]
			spots = append(spots, spot{after, c.m.GetArcCostForVehicle(after, a, v)})
		}
		sort.Slice(spots, func(i, j int) bool {
			if spots[i].cost != spots[j].cost {
				return spots[i].cost < spots[j].cost
			}
			return spots[i].after < spots[j].after
		})
		if len(spots) > 5 {
			spots = spots[:5]
		}
		for _, s := range spots {
			if mods := c.relocateChain(a, b, s.after); mods != nil {
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

func generateRelocateExpensiveChain(c *lsContext) [][]int64 {
	type arc struct {
		from int
		cost int64
	}
	var arcs []arc
	for _, route := range c.routes {
		v := c.vehicleOf[route[0]]
		for k := 1; k+1 < len(route); k++ {
			arcs = append(arcs, arc{route[k], c.m.GetArcCostForVehicle(route[k], int(c.base[route[k]]), v)})
		}
	}
	sort.Slice(arcs, func(i, j int) bool {
		if arcs[i].cost != arcs[j].cost {
			return arcs[i].cost > arcs[j].cost
		}
		return arcs[i].from < arcs[j].from
	})
	if len(arcs) > 4 {
		arcs = arcs[:4]
	}
	var out [][]int64
	for _, a := range arcs {
		for _, after := range c.insertionSpots() {
			if mods := c.relocateChain(a.from, a.from, after); mods != nil {
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

func generateMakeActive(c *lsContext) [][]int64 {
	var out [][]int64
	for _, i := range c.inactive {
		for _, after := range c.insertionSpots() {
			mods := map[int]int64{
				i:     c.base[after],
				after: int64(i),
			}
			out = append(out, c.modify(mods))
		}
	}
	return out
}

func generateMakeChainInactive(c *lsContext, length int) [][]int64 {
	var out [][]int64
	for _, chain := range c.activeChains(length) {
		a, b := chain[0], chain[1]
		mods := map[int]int64{c.prev[a]: c.base[b]}
		for i := a; ; i = int(c.base[i]) {
			mods[i] = int64(i)
			if i == b {
				break
			}
		}
		out = append(out, c.modify(mods))
	}
	return out
}

func generateSwapActive(c *lsContext) [][]int64 {
	var out [][]int64
	for _, i := range c.inactive {
		for _, chain := range c.activeChains(1) {
			j := chain[0]
			mods := map[int]int64{
				c.prev[j]: int64(i),
				i:         c.base[j],
				j:         int64(j),
			}
			out = append(out, c.modify(mods))
		}
	}
	return out
}

func generateExtendedSwapActive(c *lsContext) [][]int64 {
	var out [][]int64
	for _, i := range c.inactive {
		for _, chain := range c.activeChains(1) {
			j := chain[0]
			for _, after := range c.insertionSpots() {
				if after == j {
					continue
				}
				mods := map[int]int64{
					c.prev[j]: c.base[j],
					j:         int64(j),
				}
				next := c.base[after]
				if int(next) == j {
					next = c.base[j]
				}
				mods[i] = next
				mods[after] = int64(i)
				out = append(out, c.modify(mods))
			}
		}
	}
	return out
}

// cheapestRebuild greedily reinserts `nodes` into the candidate solution by
// minimum incremental arc cost, restricted to the given vehicles.
func cheapestRebuild(c *lsContext, cand []int64, nodes []int, vehicles []int) []int64 {
	m := c.m
	for _, node := range nodes {
		bestAfter, bestCost := -1, int64(1)<<62
		for _, v := range vehicles {
			i := m.starts[v]
			for {
				j := int(cand[i])
				cost := m.GetArcCostForVehicle(i, node, v) +
					m.GetArcCostForVehicle(node, j, v) -
					m.GetArcCostForVehicle(i, j, v)
				if cost < bestCost {
					bestAfter, bestCost = i, cost
				}
				if m.IsEnd(j) {
					break
				}
				i = j
			}
		}
		if bestAfter < 0 {
			return nil
		}
		cand[node] = cand[bestAfter]
		cand[bestAfter] = int64(node)
	}
	return cand
}

func generatePathLNS(c *lsContext) [][]int64 {
	var out [][]int64
	m := c.m
	for v1 := 0; v1 < m.vehicles; v1++ {
		for v2 := v1 + 1; v2 < m.vehicles; v2++ {
			var nodes []int
			cand := append([]int64(nil), c.base...)
			for _, v := range []int{v1, v2} {
				for _, i := range c.routes[v][1 : len(c.routes[v])-1] {
					nodes = append(nodes, i)
					cand[i] = int64(i)
				}
				cand[m.starts[v]] = int64(m.ends[v])
			}
			if len(nodes) == 0 {
				continue
			}
			if rebuilt := cheapestRebuild(c, cand, nodes, []int{v1, v2}); rebuilt != nil {
				out = append(out, rebuilt)
			}
		}
	}
	return out
}

func generateFullPathLNS(c *lsContext) [][]int64 {
	var out [][]int64
	m := c.m
	for v := 0; v < m.vehicles; v++ {
		visits := c.routes[v][1 : len(c.routes[v])-1]
		if len(visits) == 0 {
			continue
		}
		cand := append([]int64(nil), c.base...)
		for _, i := range visits {
			cand[i] = int64(i)
		}
		cand[m.starts[v]] = int64(m.ends[v])
		allVehicles := make([]int, m.vehicles)
		for i := range allVehicles {
			allVehicles[i] = i
		}
		if rebuilt := cheapestRebuild(c, cand, visits, allVehicles); rebuilt != nil {
			out = append(out, rebuilt)
		}
	}
	return out
}

func generateInactiveLNS(c *lsContext) [][]int64 {
	if len(c.inactive) == 0 {
		return nil
	}
	m := c.m
	cand := append([]int64(nil), c.base...)
	allVehicles := make([]int, m.vehicles)
	for i := range allVehicles {
		allVehicles[i] = i
	}
	rebuilt := cheapestRebuild(c, cand, c.inactive, allVehicles)
	if rebuilt == nil {
		return nil
	}
	return [][]int64{rebuilt}
}
