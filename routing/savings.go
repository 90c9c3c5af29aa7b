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
	"fmt"
	"sort"
)

// vehicleType groups vehicles sharing a cost class and terminals; savings are
// computed per type.
type vehicleType struct {
	costClass CostClassIndex
	start     int
	end       int
	vehicles  []int // ordered by increasing fixed cost
}

// saving is the gain of chaining i before j on a route of the type instead of
// serving both on separate routes.
type saving struct {
	value    int64
	from, to int
	vType    int
}

// savingsBuilder carries the machinery shared by the sequential and parallel
// savings heuristics.
type savingsBuilder struct {
	routingFilteredBuilder
	neighborsRatio float64
	arcCoefficient float64
	addReverseArcs bool

	types   []vehicleType
	savings []saving

	// Open-route bookkeeping: routeHead/routeTail index the first and last
	// visit of the vehicle's chain, -1 when the route is closed or empty.
	routeVehicleOfNode []int
	routeHead          []int
	routeTail          []int
	vehiclesLeft       [][]int // per type, unopened vehicles
}

func newSavingsBuilder(m *Model, filters []LocalSearchFilter, neighborsRatio, arcCoefficient float64, addReverseArcs bool) savingsBuilder {
	return savingsBuilder{
		routingFilteredBuilder: newRoutingFilteredBuilder(m, filters),
		neighborsRatio:         neighborsRatio,
		arcCoefficient:         arcCoefficient,
		addReverseArcs:         addReverseArcs,
	}
}

// computeVehicleTypes groups vehicles by (cost class, start, end), ordering
// each group's vehicles by increasing fixed cost so cheap vehicles open
// routes first.
func (b *savingsBuilder) computeVehicleTypes() {
	m := b.m
	typeOf := make(map[string]int)
	for v := 0; v < m.vehicles; v++ {
		key := fmt.Sprintf("%d:%d:%d", m.costClassOfVehicle[v], m.starts[v], m.ends[v])
		t, ok := typeOf[key]
		if !ok {
			t = len(b.types)
			typeOf[key] = t
			b.types = append(b.types, vehicleType{
				costClass: m.costClassOfVehicle[v],
				start:     m.starts[v],
				end:       m.ends[v],
			})
		}
		b.types[t].vehicles = append(b.types[t].vehicles, v)
	}
	for t := range b.types {
		vs := b.types[t].vehicles
		sort.Slice(vs, func(i, j int) bool {
			if m.fixedCosts[vs[i]] != m.fixedCosts[vs[j]] {
				return m.fixedCosts[vs[i]] < m.fixedCosts[vs[j]]
			}
			return vs[i] < vs[j]
		})
	}
	b.vehiclesLeft = make([][]int, len(b.types))
	for t := range b.types {
		for _, v := range b.types[t].vehicles {
			// Vehicles with a committed start (locked routes) are not
			// available for opening.
			if !b.Contains(m.starts[v]) {
				b.vehiclesLeft[t] = append(b.vehiclesLeft[t], v)
			}
		}
	}
}

// computeSavings fills the sorted savings list. The candidate arcs per node
// are optionally truncated to the cheapest neighbors.
func (b *savingsBuilder) computeSavings() {
	m := b.m
	for t, vt := range b.types {
		// Per-source candidate targets, truncated by the neighbors ratio.
		keep := m.size
		if b.neighborsRatio < 1 {
			keep = int(b.neighborsRatio * float64(m.size))
			if keep < 1 {
				keep = 1
			}
		}
		arcs := make(map[[2]int]bool)
		for i := 0; i < m.size; i++ {
			if m.IsStart(i) || !b.nodeInsertable(i) {
				continue
			}
			type target struct {
				j    int
				cost int64
			}
			var targets []target
			for j := 0; j < m.size; j++ {
				if j == i || m.IsStart(j) || !b.nodeInsertable(j) {
					continue
				}
				targets = append(targets, target{j, m.GetArcCostForClass(i, j, vt.costClass)})
			}
			sort.Slice(targets, func(x, y int) bool {
				if targets[x].cost != targets[y].cost {
					return targets[x].cost < targets[y].cost
				}
				return targets[x].j < targets[y].j
			})
			if len(targets) > keep {
				targets = targets[:keep]
			}
			for _, tg := range targets {
				arcs[[2]int{i, tg.j}] = true
				if b.addReverseArcs {
					arcs[[2]int{tg.j, i}] = true
				}
			}
		}
		for arc := range arcs {
			i, j := arc[0], arc[1]
			value := m.GetArcCostForClass(vt.start, j, vt.costClass) +
				m.GetArcCostForClass(i, vt.end, vt.costClass) -
				int64(b.arcCoefficient*float64(m.GetArcCostForClass(i, j, vt.costClass)))
			b.savings = append(b.savings, saving{value: value, from: i, to: j, vType: t})
		}
	}
	sort.Slice(b.savings, func(x, y int) bool {
		if b.savings[x].value != b.savings[y].value {
			return b.savings[x].value > b.savings[y].value
		}
		if b.savings[x].from != b.savings[y].from {
			return b.savings[x].from < b.savings[y].from
		}
		if b.savings[x].to != b.savings[y].to {
			return b.savings[x].to < b.savings[y].to
		}
		return b.savings[x].vType < b.savings[y].vType
	})
}

func (b *savingsBuilder) nodeInsertable(i int) bool {
	return i < b.m.size && !b.m.IsStart(i)
}

func (b *savingsBuilder) initRouteState() {
	n := b.m.manager.NumIndices()
	b.routeVehicleOfNode = make([]int, n)
	for i := range b.routeVehicleOfNode {
		b.routeVehicleOfNode[i] = -1
	}
	b.routeHead = make([]int, b.m.vehicles)
	b.routeTail = make([]int, b.m.vehicles)
	for v := range b.routeHead {
		b.routeHead[v] = -1
		b.routeTail[v] = -1
	}
}

// openRoute starts a new route start->from->to->end on an unopened vehicle of
// the type. Passing from == to opens a single-node route.
func (b *savingsBuilder) openRoute(s saving) bool {
	left := b.vehiclesLeft[s.vType]
	if len(left) == 0 {
		return false
	}
	v := left[0]
	if s.from == s.to {
		b.SetValue(b.m.starts[v], int64(s.from))
		b.SetValue(s.from, int64(b.m.ends[v]))
	} else {
		b.SetValue(b.m.starts[v], int64(s.from))
		b.SetValue(s.from, int64(s.to))
		b.SetValue(s.to, int64(b.m.ends[v]))
	}
	if !b.Commit() {
		return false
	}
	b.vehiclesLeft[s.vType] = left[1:]
	b.routeHead[v] = s.from
	b.routeTail[v] = s.to
	b.routeVehicleOfNode[s.from] = v
	b.routeVehicleOfNode[s.to] = v
	return true
}

// extendTail appends `node` after the route tail of vehicle v.
func (b *savingsBuilder) extendTail(v, node int) bool {
	tail := b.routeTail[v]
	b.SetValue(tail, int64(node))
	b.SetValue(node, int64(b.m.ends[v]))
	if !b.Commit() {
		return false
	}
	b.routeTail[v] = node
	b.routeVehicleOfNode[node] = v
	return true
}

// extendHead prepends `node` before the route head of vehicle v.
func (b *savingsBuilder) extendHead(v, node int) bool {
	head := b.routeHead[v]
	b.SetValue(b.m.starts[v], int64(node))
	b.SetValue(node, int64(head))
	if !b.Commit() {
		return false
	}
	b.routeHead[v] = node
	b.routeVehicleOfNode[node] = v
	return true
}

// SequentialSavingsBuilder builds routes one at a time: the best remaining
// saving opens a route, which is then grown at both ends by the best savings
// touching its endpoints until no extension fits.
type SequentialSavingsBuilder struct {
	savingsBuilder
}

// NewSequentialSavingsBuilder returns a sequential savings builder.
func NewSequentialSavingsBuilder(m *Model, filters []LocalSearchFilter, neighborsRatio, arcCoefficient float64, addReverseArcs bool) *SequentialSavingsBuilder {
	return &SequentialSavingsBuilder{newSavingsBuilder(m, filters, neighborsRatio, arcCoefficient, addReverseArcs)}
}

// BuildSolution implements FirstSolutionBuilder.
func (b *SequentialSavingsBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	b.computeVehicleTypes()
	b.computeSavings()
	b.initRouteState()

	for si := range b.savings {
		if b.limitCrossed() {
			return false
		}
		s := b.savings[si]
		if b.Contains(s.from) || b.Contains(s.to) || s.from == s.to {
			continue
		}
		if !b.openRoute(s) {
			continue
		}
		v := b.routeVehicleOfNode[s.from]
		// Grow both ends until nothing extends the route.
		for {
			if b.limitCrossed() {
				return false
			}
			extended := false
			for _, s2 := range b.savings {
				if s2.vType != s.vType {
					continue
				}
				if s2.from == b.routeTail[v] && !b.Contains(s2.to) && b.routeVehicleOfNode[s2.to] < 0 {
					if b.extendTail(v, s2.to) {
						extended = true
						break
					}
				}
				if s2.to == b.routeHead[v] && !b.Contains(s2.from) && b.routeVehicleOfNode[s2.from] < 0 {
					if b.extendHead(v, s2.from) {
						extended = true
						break
					}
				}
			}
			if !extended {
				break
			}
		}
	}
	if !b.closeOpenChains() {
		return false
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	if !b.closeEmptyRoutes() {
		return false
	}
	return b.AllCommitted()
}

// ParallelSavingsBuilder grows all routes simultaneously: each saving in
// order either opens a route, extends an endpoint, or merges two routes when
// it links the tail of one to the head of another.
type ParallelSavingsBuilder struct {
	savingsBuilder
}

// NewParallelSavingsBuilder returns a parallel savings builder.
func NewParallelSavingsBuilder(m *Model, filters []LocalSearchFilter, neighborsRatio, arcCoefficient float64, addReverseArcs bool) *ParallelSavingsBuilder {
	return &ParallelSavingsBuilder{newSavingsBuilder(m, filters, neighborsRatio, arcCoefficient, addReverseArcs)}
}

// BuildSolution implements FirstSolutionBuilder.
func (b *ParallelSavingsBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	b.computeVehicleTypes()
	b.computeSavings()
	b.initRouteState()

	for _, s := range b.savings {
		if b.limitCrossed() {
			return false
		}
		vFrom := b.routeVehicleOfNode[s.from]
		vTo := b.routeVehicleOfNode[s.to]
		switch {
		case vFrom < 0 && vTo < 0:
			if !b.Contains(s.from) && !b.Contains(s.to) && s.from != s.to {
				b.openRoute(s)
			}
		case vFrom >= 0 && vTo < 0 && b.routeTail[vFrom] == s.from && !b.Contains(s.to):
			b.extendTail(vFrom, s.to)
		case vFrom < 0 && vTo >= 0 && b.routeHead[vTo] == s.to && !b.Contains(s.from):
			b.extendHead(vTo, s.from)
		case vFrom >= 0 && vTo >= 0 && vFrom != vTo &&
			b.routeTail[vFrom] == s.from && b.routeHead[vTo] == s.to:
			b.mergeRoutes(vFrom, vTo)
		}
	}
	if !b.closeOpenChains() {
		return false
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	if !b.closeEmptyRoutes() {
		return false
	}
	return b.AllCommitted()
}

// mergeRoutes glues the route of v2 behind the route of v1. The surviving
// vehicle is the one with the lower fixed cost (v1 on a tie); the other
// vehicle's start chains directly to its end.
func (b *ParallelSavingsBuilder) mergeRoutes(v1, v2 int) {
	m := b.m
	if m.fixedCosts[v2] < m.fixedCosts[v1] {
		// Keep the cheaper vehicle: reverse roles by merging v1's chain into
		// v2 head-side instead.
		b.SetValue(b.routeTail[v1], int64(b.routeHead[v2]))
		b.SetValue(m.starts[v2], int64(b.routeHead[v1]))
		b.SetValue(b.routeTail[v2], int64(m.ends[v2]))
		b.SetValue(m.starts[v1], int64(m.ends[v1]))
		// The combined chain now runs on v2.
		if !b.Commit() {
			return
		}
		for i := b.routeHead[v1]; ; i = int(b.Value(i)) {
			b.routeVehicleOfNode[i] = v2
			if i == b.routeTail[v2] || m.IsEnd(i) {
				break
			}
		}
		b.routeHead[v2] = b.routeHead[v1]
		b.routeHead[v1] = -1
		b.routeTail[v1] = -1
		return
	}
	b.SetValue(b.routeTail[v1], int64(b.routeHead[v2]))
	b.SetValue(b.routeTail[v2], int64(m.ends[v1]))
	b.SetValue(m.starts[v2], int64(m.ends[v2]))
	if !b.Commit() {
		return
	}
	for i := b.routeHead[v2]; ; i = int(b.Value(i)) {
		b.routeVehicleOfNode[i] = v1
		if i == b.routeTail[v2] || m.IsEnd(i) {
			break
		}
	}
	b.routeTail[v1] = b.routeTail[v2]
	b.routeHead[v2] = -1
	b.routeTail[v2] = -1
}
