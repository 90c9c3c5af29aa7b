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

// CheapestAdditionBuilder extends each route from its current chain end with
// the best legal successor. The preference is given either by an evaluator
// (smaller is better) or a user comparator.
type CheapestAdditionBuilder struct {
	routingFilteredBuilder
	evaluator  func(from, to int) int64
	comparator func(from, a, b int) bool
}

// NewEvaluatorCheapestAdditionBuilder returns a cheapest addition builder
// ranking successors by the evaluator. A nil evaluator uses the vehicle arc
// cost.
func NewEvaluatorCheapestAdditionBuilder(m *Model, filters []LocalSearchFilter, evaluator func(from, to int) int64) *CheapestAdditionBuilder {
	return &CheapestAdditionBuilder{
		routingFilteredBuilder: newRoutingFilteredBuilder(m, filters),
		evaluator:              evaluator,
	}
}

// NewComparatorCheapestAdditionBuilder returns a cheapest addition builder
// ranking successors by the comparator: comparator(from, a, b) is true when a
// is the better successor of from.
func NewComparatorCheapestAdditionBuilder(m *Model, filters []LocalSearchFilter, comparator func(from, a, b int) bool) *CheapestAdditionBuilder {
	return &CheapestAdditionBuilder{
		routingFilteredBuilder: newRoutingFilteredBuilder(m, filters),
		comparator:             comparator,
	}
}

// BuildSolution implements FirstSolutionBuilder.
func (b *CheapestAdditionBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	// Vehicles with partial pre-routes first, then by decreasing index.
	order := make([]int, b.m.vehicles)
	for v := range order {
		order[v] = v
	}
	sort.Slice(order, func(i, j int) bool {
		pi, pj := len(b.m.locks[order[i]]) > 0, len(b.m.locks[order[j]]) > 0
		if pi != pj {
			return pi
		}
		return order[i] > order[j]
	})
	for _, v := range order {
		if !b.extendRoute(v) {
			return false
		}
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	return b.AllCommitted()
}

func (b *CheapestAdditionBuilder) extendRoute(v int) bool {
	for {
		if b.limitCrossed() {
			return false
		}
		from := b.chainEnd(v)
		if b.m.IsEnd(from) || b.Contains(from) {
			return true
		}
		var candidates []int
		for node := 0; node < b.m.size; node++ {
			if !b.Contains(node) && !b.m.IsStart(node) && node != from {
				candidates = append(candidates, node)
			}
		}
		b.sortSuccessors(from, v, candidates)
		extended := false
		for _, node := range candidates {
			b.SetValue(from, int64(node))
			if b.Commit() {
				extended = true
				break
			}
		}
		if extended {
			continue
		}
		// No extension fits: close the route.
		b.SetValue(from, int64(b.m.ends[v]))
		if !b.Commit() {
			return false
		}
		return true
	}
}

func (b *CheapestAdditionBuilder) sortSuccessors(from, v int, candidates []int) {
	if b.comparator != nil {
		sort.SliceStable(candidates, func(i, j int) bool {
			return b.comparator(from, candidates[i], candidates[j])
		})
		return
	}
	eval := b.evaluator
	if eval == nil {
		eval = func(x, y int) int64 { return b.m.GetArcCostForVehicle(x, y, v) }
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := eval(from, candidates[i]), eval(from, candidates[j])
		if ci != cj {
			return ci < cj
		}
		return candidates[i] < candidates[j]
	})
}
