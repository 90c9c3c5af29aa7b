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
	"github.com/opsolve/routing/cpsolver"
)

// IntVarFilteredDecisionBuilder maintains a committed assignment over a set
// of variables and a candidate delta. SetValue stages values; Commit runs
// every filter on the delta and either merges it into the committed
// assignment or drops it.
type IntVarFilteredDecisionBuilder struct {
	vars    []*cpsolver.IntVar
	filters []LocalSearchFilter

	committed *cpsolver.Assignment
	has       []bool
	values    []int64
	delta     *cpsolver.Assignment

	decisions int64
	rejects   int64

	limit *cpsolver.SearchLimit
}

func newIntVarFilteredDecisionBuilder(vars []*cpsolver.IntVar, filters []LocalSearchFilter) IntVarFilteredDecisionBuilder {
	return IntVarFilteredDecisionBuilder{
		vars:      vars,
		filters:   filters,
		committed: cpsolver.NewAssignment(),
		has:       make([]bool, len(vars)),
		values:    make([]int64, len(vars)),
		delta:     cpsolver.NewAssignment(),
	}
}

// SetLimit installs a search limit consulted at the top of each builder loop.
func (b *IntVarFilteredDecisionBuilder) SetLimit(limit *cpsolver.SearchLimit) { b.limit = limit }

func (b *IntVarFilteredDecisionBuilder) limitCrossed() bool {
	return b.limit != nil && b.limit.Check() != nil
}

// SetValue stages `value` for the variable at `index` in the candidate delta.
func (b *IntVarFilteredDecisionBuilder) SetValue(index int, value int64) {
	b.delta.SetValue(b.vars[index], value)
}

// Value returns the committed value of the variable at `index`.
func (b *IntVarFilteredDecisionBuilder) Value(index int) int64 { return b.values[index] }

// Contains returns true when the variable at `index` is committed.
func (b *IntVarFilteredDecisionBuilder) Contains(index int) bool { return b.has[index] }

// NumberOfDecisions returns the number of Commit calls so far.
func (b *IntVarFilteredDecisionBuilder) NumberOfDecisions() int64 { return b.decisions }

// NumberOfRejects returns the number of deltas dropped by filters.
func (b *IntVarFilteredDecisionBuilder) NumberOfRejects() int64 { return b.rejects }

// Commit runs the filters on the delta. On acceptance the delta merges into
// the committed assignment and the filters resynchronize; otherwise the delta
// is dropped.
func (b *IntVarFilteredDecisionBuilder) Commit() bool {
	b.decisions++
	if b.delta.Empty() {
		return true
	}
	for _, f := range b.filters {
		if !f.Accept(b.delta) {
			b.rejects++
			b.delta.Clear()
			return false
		}
	}
	b.committed.Merge(b.delta)
	for i, v := range b.vars {
		if e := b.delta.Element(v); e != nil && e.Bound() {
			b.has[i] = true
			b.values[i] = e.Min
		}
	}
	b.delta.Clear()
	b.SynchronizeFilters()
	return true
}

// ClearDelta drops the staged values without consulting the filters.
func (b *IntVarFilteredDecisionBuilder) ClearDelta() { b.delta.Clear() }

// SynchronizeFilters pushes the committed assignment into every filter.
func (b *IntVarFilteredDecisionBuilder) SynchronizeFilters() {
	for _, f := range b.filters {
		f.Synchronize(b.committed)
	}
}

// Assignment returns the committed assignment.
func (b *IntVarFilteredDecisionBuilder) Assignment() *cpsolver.Assignment { return b.committed }

// AllCommitted returns true once every variable is committed.
func (b *IntVarFilteredDecisionBuilder) AllCommitted() bool {
	for _, h := range b.has {
		if !h {
			return false
		}
	}
	return true
}

// FirstSolutionBuilder is the interface of the routing first-solution
// heuristics: BuildSolution returns true and leaves a complete committed
// assignment on success.
type FirstSolutionBuilder interface {
	BuildSolution() bool
	Assignment() *cpsolver.Assignment
	NumberOfRejects() int64
}

// routingFilteredBuilder extends the filtered builder with the routing
// variable layout: variable k is the next of index k. It pre-fixes the locked
// route chains before the concrete heuristic runs.
type routingFilteredBuilder struct {
	IntVarFilteredDecisionBuilder
	m *Model
}

func newRoutingFilteredBuilder(m *Model, filters []LocalSearchFilter) routingFilteredBuilder {
	return routingFilteredBuilder{
		IntVarFilteredDecisionBuilder: newIntVarFilteredDecisionBuilder(m.nexts, filters),
		m:                             m,
	}
}

// commitLocks commits the user's pre-locked partial routes.
func (b *routingFilteredBuilder) commitLocks() bool {
	for v := 0; v < b.m.vehicles; v++ {
		chain := b.m.locks[v]
		if len(chain) == 0 {
			continue
		}
		prev := b.m.starts[v]
		for _, i := range chain {
			b.SetValue(prev, int64(i))
			prev = i
		}
		if !b.Commit() {
			return false
		}
	}
	return true
}

// chainEnd returns the last committed index of the vehicle's chain, walking
// committed nexts from the start.
func (b *routingFilteredBuilder) chainEnd(v int) int {
	i := b.m.starts[v]
	for !b.m.IsEnd(i) && b.Contains(i) {
		j := int(b.Value(i))
		if j == i {
			break
		}
		i = j
	}
	return i
}

// makeUnassignedUnperformed self-loops every uncommitted next. Nodes without
// a disjunction allowing them to be dropped make the builder fail.
func (b *routingFilteredBuilder) makeUnassignedUnperformed() bool {
	for i := 0; i < b.m.size; i++ {
		if b.limitCrossed() {
			return false
		}
		if b.Contains(i) || b.m.IsStart(i) {
			continue
		}
		if _, droppable := b.m.UnperformedPenalty(i); !droppable {
			return false
		}
		b.SetValue(i, int64(i))
		if !b.Commit() {
			return false
		}
	}
	return true
}

// closeEmptyRoutes chains every untouched vehicle start to its end.
func (b *routingFilteredBuilder) closeEmptyRoutes() bool {
	for v := 0; v < b.m.vehicles; v++ {
		if b.limitCrossed() {
			return false
		}
		start := b.m.starts[v]
		if b.Contains(start) {
			continue
		}
		b.SetValue(start, int64(b.m.ends[v]))
		if !b.Commit() {
			return false
		}
	}
	return true
}

// closeOpenChains commits the arc from every open chain end to its vehicle
// end.
func (b *routingFilteredBuilder) closeOpenChains() bool {
	for v := 0; v < b.m.vehicles; v++ {
		from := b.chainEnd(v)
		if !b.m.IsEnd(from) && !b.Contains(from) {
			b.SetValue(from, int64(b.m.ends[v]))
			if !b.Commit() {
				return false
			}
		}
	}
	return true
}

// insertionPositions lists the committed indices after which a node can be
// inserted on the vehicle's current chain: the start and every committed
// non-end chain member. Locked chains only accept insertions after their
// last locked index.
func (b *routingFilteredBuilder) insertionPositions(v int) []int {
	var positions []int
	i := b.m.starts[v]
	if chain := b.m.locks[v]; len(chain) > 0 {
		i = chain[len(chain)-1]
	}
	for {
		positions = append(positions, i)
		if !b.Contains(i) {
			break
		}
		j := int(b.Value(i))
		if j == i || b.m.IsEnd(j) {
			break
		}
		i = j
	}
	return positions
}

// successorOf returns the committed successor of `i`, or the vehicle end when
// the chain is still open at `i`.
func (b *routingFilteredBuilder) successorOf(i, v int) int {
	if b.Contains(i) {
		return int(b.Value(i))
	}
	return b.m.ends[v]
}

// insertionCost is the standard incremental arc cost of inserting `node`
// between `after` and its successor on vehicle `v`.
func (b *routingFilteredBuilder) insertionCost(node, after, v int) int64 {
	succ := b.successorOf(after, v)
	return b.m.GetArcCostForVehicle(after, node, v) +
		b.m.GetArcCostForVehicle(node, succ, v) -
		b.m.GetArcCostForVehicle(after, succ, v)
}

// tryInsert stages the insertion of `node` after `after` on vehicle `v` and
// commits it.
func (b *routingFilteredBuilder) tryInsert(node, after, v int) bool {
	succ := b.successorOf(after, v)
	b.SetValue(after, int64(node))
	b.SetValue(node, int64(succ))
	return b.Commit()
}
