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
)

// vehicleAndActiveFromNexts walks every vehicle chain and derives the vehicle
// of each index. Indices not reached by any chain must be self-looped
// (inactive). Returns an error on malformed chains.
func (m *Model) vehicleAndActiveFromNexts(next []int64) ([]int, error) {
	n := m.manager.NumIndices()
	vehicleOf := make([]int, n)
	for i := range vehicleOf {
		vehicleOf[i] = -1
	}
	visited := make([]bool, n)
	for v := 0; v < m.vehicles; v++ {
		i := m.starts[v]
		for steps := 0; ; steps++ {
			if steps > n {
				return nil, fmt.Errorf("route of vehicle %v does not reach its end", v)
			}
			if visited[i] {
				return nil, fmt.Errorf("index %v visited twice", i)
			}
			visited[i] = true
			vehicleOf[i] = v
			if m.IsEnd(i) {
				if i != m.ends[v] {
					return nil, fmt.Errorf("vehicle %v reaches foreign end %v", v, i)
				}
				break
			}
			j := int(next[i])
			if j < 0 || j >= n {
				return nil, fmt.Errorf("next(%v)=%v out of range", i, j)
			}
			if j == i {
				return nil, fmt.Errorf("active chain of vehicle %v self-loops at %v", v, i)
			}
			i = j
		}
	}
	for i := 0; i < m.size; i++ {
		if !visited[i] && int(next[i]) != i {
			return nil, fmt.Errorf("inactive index %v must self-loop, has next %v", i, next[i])
		}
	}
	return vehicleOf, nil
}

// routeOfVehicle returns the chain of indices of the vehicle, start and end
// included.
func (m *Model) routeOfVehicle(next []int64, v int) []int {
	var route []int
	i := m.starts[v]
	for {
		route = append(route, i)
		if m.IsEnd(i) {
			return route
		}
		i = int(next[i])
	}
}

// computeSchedules derives the earliest-start cumul values of every dimension
// given complete nexts. Base dimensions are scheduled before their dependents.
// Returns nil and false when some route violates a window, capacity, slack or
// span bound.
func (m *Model) computeSchedules(next []int64, vehicleOf []int) (map[DimensionIndex][]int64, bool) {
	cumuls := make(map[DimensionIndex][]int64, len(m.dimensions))
	var order []*Dimension
	scheduled := make(map[DimensionIndex]bool)
	for _, d := range m.dimensions {
		if d.base == nil || d.base == d {
			order = append(order, d)
			scheduled[d.index] = true
		}
	}
	for _, d := range m.dimensions {
		if !scheduled[d.index] {
			order = append(order, d)
		}
	}
	for _, d := range order {
		var baseCumuls []int64
		if d.base != nil && d.base != d {
			baseCumuls = cumuls[d.base.index]
		}
		c, ok := m.scheduleDimension(d, next, baseCumuls)
		if !ok {
			return nil, false
		}
		cumuls[d.index] = c
	}
	return cumuls, true
}

// scheduleDimension computes the earliest cumul schedule of one dimension.
func (m *Model) scheduleDimension(d *Dimension, next []int64, baseCumuls []int64) ([]int64, bool) {
	n := m.manager.NumIndices()
	cumul := make([]int64, n)
	for v := 0; v < m.vehicles; v++ {
		i := m.starts[v]
		cumul[i] = d.cumuls[i].Min()
		for !m.IsEnd(i) {
			j := int(next[i])
			if j == i {
				break // inactive start is impossible; guards malformed input
			}
			var t int64
			switch {
			case !d.IsStateDependent():
				t = d.GetTransitValue(i, j, v)
			case d.IsSelfBased():
				t = d.stateDependentTransitValue(cumul[i], i, j, v)
			default:
				t = d.stateDependentTransitValue(baseCumuls[i], i, j, v)
			}
			raw := cumul[i] + t
			c := raw
			if lo := d.cumuls[j].Min(); c < lo {
				c = lo
			}
			if c-raw > d.slackMax {
				return nil, false
			}
			if c > d.cumuls[j].Max() || c > d.vehicleCapacities[v] || c < 0 {
				return nil, false
			}
			cumul[j] = c
			i = j
		}
		if cumul[m.ends[v]]-cumul[m.starts[v]] > d.vehicleSpanUpperBounds[v] {
			return nil, false
		}
	}
	return cumul, true
}

// solutionCost is the decomposition of a committed solution's objective.
type solutionCost struct {
	ArcCosts             int64
	DisjunctionPenalties int64
	SpanCosts            int64
	GlobalSpanCosts      int64
	SoftBoundCosts       int64
	PiecewiseCosts       int64
	SameVehicleCosts     int64
	AmortizedCosts       int64
}

// Total sums every component.
func (c solutionCost) Total() int64 {
	return c.ArcCosts + c.DisjunctionPenalties + c.SpanCosts + c.GlobalSpanCosts +
		c.SoftBoundCosts + c.PiecewiseCosts + c.SameVehicleCosts + c.AmortizedCosts
}

// evaluateObjective recomputes the full objective of a complete nexts vector.
// When `cumuls` is nil the earliest schedules are used. The second return is
// false when the solution is infeasible.
func (m *Model) evaluateObjective(next []int64, cumuls map[DimensionIndex][]int64) (solutionCost, bool) {
	var cost solutionCost
	vehicleOf, err := m.vehicleAndActiveFromNexts(next)
	if err != nil {
		return cost, false
	}
	if cumuls == nil {
		var ok bool
		cumuls, ok = m.computeSchedules(next, vehicleOf)
		if !ok {
			return cost, false
		}
	}

	// Arc costs. Unused vehicles (start chained directly to end) cost nothing,
	// not even their fixed cost.
	used := make([]bool, m.vehicles)
	routeLength := make([]int, m.vehicles)
	for v := 0; v < m.vehicles; v++ {
		start, end := m.starts[v], m.ends[v]
		if int(next[start]) == end {
			continue
		}
		used[v] = true
		for i := start; !m.IsEnd(i); {
			j := int(next[i])
			cost.ArcCosts += m.GetArcCostForVehicle(i, j, v)
			if !m.IsEnd(j) {
				routeLength[v]++
			}
			i = j
		}
	}

	// Disjunction penalties: each missing activation below max cardinality
	// costs the penalty; hard disjunctions must be saturated.
	for _, disj := range m.disjunctions {
		active := 0
		for _, i := range disj.Indices {
			if int(next[i]) != i {
				active++
			}
		}
		if active > disj.MaxCardinality {
			return cost, false
		}
		missing := int64(disj.MaxCardinality - active)
		if missing > 0 {
			if disj.Penalty < 0 {
				return cost, false
			}
			cost.DisjunctionPenalties += missing * disj.Penalty
		}
	}

	// Dimension-based costs.
	for _, d := range m.dimensions {
		cumul := cumuls[d.index]
		for v := 0; v < m.vehicles; v++ {
			span := cumul[m.ends[v]] - cumul[m.starts[v]]
			if coef := d.vehicleSpanCostCoefficients[v]; coef > 0 {
				cost.SpanCosts += coef * span
			}
		}
		if d.globalSpanCostCoefficient > 0 {
			maxEnd := cumul[m.ends[0]]
			minStart := cumul[m.starts[0]]
			for v := 1; v < m.vehicles; v++ {
				if c := cumul[m.ends[v]]; c > maxEnd {
					maxEnd = c
				}
				if c := cumul[m.starts[v]]; c < minStart {
					minStart = c
				}
			}
			cost.GlobalSpanCosts += d.globalSpanCostCoefficient * (maxEnd - minStart)
		}
		for i := 0; i < m.manager.NumIndices(); i++ {
			if i < m.size && int(next[i]) == i && !m.IsStart(i) {
				continue // inactive: no cumul cost
			}
			if ub := d.softUpperBounds[i]; ub.Coefficient != 0 && cumul[i] > ub.Bound {
				cost.SoftBoundCosts += ub.Coefficient * (cumul[i] - ub.Bound)
			}
			if lb := d.softLowerBounds[i]; lb.Coefficient != 0 && cumul[i] < lb.Bound {
				cost.SoftBoundCosts += lb.Coefficient * (lb.Bound - cumul[i])
			}
			if f := d.piecewiseCosts[i]; f != nil {
				cost.PiecewiseCosts += f.Value(cumul[i])
			}
		}
	}

	// Soft same-vehicle groups: each extra vehicle serving a group costs.
	if m.numSameVehicleGroups > 0 {
		groupVehicles := make([]map[int]bool, m.numSameVehicleGroups)
		for i, g := range m.sameVehicleGroupOf {
			if g < 0 || vehicleOf[i] < 0 {
				continue
			}
			if groupVehicles[g] == nil {
				groupVehicles[g] = make(map[int]bool)
			}
			groupVehicles[g][vehicleOf[i]] = true
		}
		for _, vs := range groupVehicles {
			if len(vs) > 1 {
				cost.SameVehicleCosts += m.sameVehicleCost * int64(len(vs)-1)
			}
		}
	}

	// Amortized per-vehicle term.
	if m.hasAmortizedCosts {
		for v := 0; v < m.vehicles; v++ {
			if !used[v] {
				continue
			}
			l := int64(routeLength[v])
			cost.AmortizedCosts += m.amortizedLinear[v] - m.amortizedQuadratic[v]*l*l
		}
	}
	return cost, true
}
