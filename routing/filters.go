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

	"github.com/opsolve/routing/cpsolver"
)

// LocalSearchFilter is a fast feasibility check on a candidate delta.
// Synchronize installs the committed assignment; Accept judges a delta
// against it without mutating state.
type LocalSearchFilter interface {
	Name() string
	Accept(delta *cpsolver.Assignment) bool
	Synchronize(assignment *cpsolver.Assignment)
}

// basePathFilter holds the machinery shared by the path-local filters: the
// committed next values, delta overlaying, and the walk over touched paths.
// Concrete filters implement acceptPath.
type basePathFilter struct {
	m *Model
	// values[i] is the committed next of i, or -1 when not yet committed.
	values []int64
	delta  map[int]int64
}

func newBasePathFilter(m *Model) basePathFilter {
	values := make([]int64, m.size)
	for i := range values {
		values[i] = -1
	}
	return basePathFilter{m: m, values: values, delta: make(map[int]int64)}
}

// Synchronize installs the committed next values.
func (f *basePathFilter) Synchronize(assignment *cpsolver.Assignment) {
	for i := range f.values {
		f.values[i] = -1
	}
	if assignment == nil {
		return
	}
	for _, e := range assignment.Elements() {
		if idx, ok := f.m.varToNextIndex[e.Var]; ok && e.Bound() {
			f.values[idx] = e.Min
		}
	}
}

// loadDelta extracts the next-variable part of the delta.
func (f *basePathFilter) loadDelta(delta *cpsolver.Assignment) {
	clear(f.delta)
	for _, e := range delta.Elements() {
		if idx, ok := f.m.varToNextIndex[e.Var]; ok && e.Bound() {
			f.delta[idx] = e.Min
		}
	}
}

// value returns the candidate next of i: delta first, then committed.
func (f *basePathFilter) value(i int) int64 {
	if v, ok := f.delta[i]; ok {
		return v
	}
	return f.values[i]
}

// touchedVehicles returns the vehicles whose path contains a delta index
// under the committed or candidate state.
func (f *basePathFilter) touchedVehicles() []int {
	touched := make(map[int]bool)
	n := f.m.manager.NumIndices()
	for v := 0; v < f.m.vehicles; v++ {
		i := f.m.starts[v]
		for steps := 0; steps <= n; steps++ {
			if _, ok := f.delta[i]; ok {
				touched[v] = true
				break
			}
			if f.m.IsEnd(i) {
				break
			}
			nxt := f.value(i)
			if nxt < 0 || int(nxt) == i {
				break
			}
			i = int(nxt)
		}
	}
	var vehicles []int
	for v := range touched {
		vehicles = append(vehicles, v)
	}
	return vehicles
}

// walkPath returns the candidate path of the vehicle. A closed path runs
// start to end; an open one stops at the last committed chain member. Cycles
// return ok=false.
func (f *basePathFilter) walkPath(v int) (path []int, closed, ok bool) {
	n := f.m.manager.NumIndices()
	i := f.m.starts[v]
	for steps := 0; steps <= n; steps++ {
		path = append(path, i)
		if f.m.IsEnd(i) {
			return path, true, true
		}
		nxt := f.value(i)
		if nxt < 0 || int(nxt) == i {
			return path, false, true
		}
		i = int(nxt)
	}
	return nil, false, false // cycle
}

type pathAcceptor interface {
	acceptPath(v int, path []int, closed bool) bool
}

func (f *basePathFilter) acceptWith(delta *cpsolver.Assignment, acceptor pathAcceptor) bool {
	f.loadDelta(delta)
	for _, v := range f.touchedVehicles() {
		path, closed, ok := f.walkPath(v)
		if !ok {
			return false
		}
		if !acceptor.acceptPath(v, path, closed) {
			return false
		}
	}
	return true
}

// NodeDisjunctionFilter bounds the number of active members per disjunction.
type NodeDisjunctionFilter struct {
	basePathFilter
}

// NewNodeDisjunctionFilter returns a disjunction cardinality filter.
func NewNodeDisjunctionFilter(m *Model) *NodeDisjunctionFilter {
	return &NodeDisjunctionFilter{newBasePathFilter(m)}
}

// Name implements LocalSearchFilter.
func (f *NodeDisjunctionFilter) Name() string { return "NodeDisjunctionFilter" }

// Accept implements LocalSearchFilter.
func (f *NodeDisjunctionFilter) Accept(delta *cpsolver.Assignment) bool {
	f.loadDelta(delta)
	touched := make(map[DisjunctionIndex]bool)
	for i := range f.delta {
		for _, d := range f.m.indexToDisjunctions[i] {
			touched[d] = true
		}
	}
	for di := range touched {
		disj := f.m.disjunctions[di]
		active := 0
		for _, i := range disj.Indices {
			if v := f.value(i); v >= 0 && int(v) != i {
				active++
			}
		}
		if active > disj.MaxCardinality {
			return false
		}
	}
	return true
}

// VehicleVarFilter checks that every index on a touched path may be served by
// the path's vehicle.
type VehicleVarFilter struct {
	basePathFilter
}

// NewVehicleVarFilter returns an allowed-vehicle filter.
func NewVehicleVarFilter(m *Model) *VehicleVarFilter {
	return &VehicleVarFilter{newBasePathFilter(m)}
}

// Name implements LocalSearchFilter.
func (f *VehicleVarFilter) Name() string { return "VehicleVarFilter" }

// Accept implements LocalSearchFilter.
func (f *VehicleVarFilter) Accept(delta *cpsolver.Assignment) bool {
	return f.acceptWith(delta, f)
}

func (f *VehicleVarFilter) acceptPath(v int, path []int, _ bool) bool {
	for _, i := range path {
		if allowed := f.m.allowedVehicles[i]; allowed != nil && !allowed[v] {
			return false
		}
	}
	return true
}

// PathCumulFilter runs forward bounds propagation of one dimension over each
// touched path, including capacity, slack, span and pickup-to-delivery
// limits.
type PathCumulFilter struct {
	basePathFilter
	d *Dimension
}

// NewPathCumulFilter returns the cumul filter of a dimension.
func NewPathCumulFilter(d *Dimension) *PathCumulFilter {
	return &PathCumulFilter{newBasePathFilter(d.model), d}
}

// Name implements LocalSearchFilter.
func (f *PathCumulFilter) Name() string { return "PathCumulFilter(" + f.d.name + ")" }

// Accept implements LocalSearchFilter.
func (f *PathCumulFilter) Accept(delta *cpsolver.Assignment) bool {
	return f.acceptWith(delta, f)
}

func (f *PathCumulFilter) acceptPath(v int, path []int, closed bool) bool {
	d := f.d
	cumul := d.cumuls[path[0]].Min()
	pickupCumul := make(map[int]int64) // pair -> cumul at pickup
	pickupAlt := make(map[int]int)
	for pos := 0; pos+1 < len(path); pos++ {
		i, j := path[pos], path[pos+1]
		var t int64
		if d.IsStateDependent() {
			t = d.stateDependentTransitValue(cumul, i, j, v)
		} else {
			t = d.GetTransitValue(i, j, v)
		}
		raw := cumul + t
		cumul = raw
		if lo := d.cumuls[j].Min(); cumul < lo {
			cumul = lo
		}
		if cumul-raw > d.slackMax {
			return false
		}
		if cumul > d.cumuls[j].Max() || cumul > d.vehicleCapacities[v] {
			return false
		}
		if d.HasPickupToDeliveryLimits() {
			if p := f.m.pickupPairOf[j]; p >= 0 {
				pickupCumul[p] = cumul
				for alt, idx := range f.m.pickupDeliveryPairs[p].PickupAlternatives {
					if idx == j {
						pickupAlt[p] = alt
					}
				}
			}
			if p := f.m.deliveryPairOf[j]; p >= 0 {
				if pc, ok := pickupCumul[p]; ok {
					deliveryAlt := 0
					for alt, idx := range f.m.pickupDeliveryPairs[p].DeliveryAlternatives {
						if idx == j {
							deliveryAlt = alt
						}
					}
					if cumul-pc > d.GetPickupToDeliveryLimitForPair(p, pickupAlt[p], deliveryAlt) {
						return false
					}
				}
			}
		}
	}
	if closed && cumul-d.cumuls[path[0]].Min() > d.vehicleSpanUpperBounds[v] {
		return false
	}
	return true
}

// VehicleBreaksFilter runs the disjunctive propagator for each touched
// vehicle carrying breaks.
type VehicleBreaksFilter struct {
	basePathFilter
	d          *Dimension
	propagator DisjunctivePropagator
	tasks      Tasks
}

// NewVehicleBreaksFilter returns the break filter of a dimension.
func NewVehicleBreaksFilter(d *Dimension) *VehicleBreaksFilter {
	return &VehicleBreaksFilter{basePathFilter: newBasePathFilter(d.model), d: d}
}

// Name implements LocalSearchFilter.
func (f *VehicleBreaksFilter) Name() string { return "VehicleBreaksFilter(" + f.d.name + ")" }

// Accept implements LocalSearchFilter.
func (f *VehicleBreaksFilter) Accept(delta *cpsolver.Assignment) bool {
	return f.acceptWith(delta, f)
}

func (f *VehicleBreaksFilter) acceptPath(v int, path []int, _ bool) bool {
	return f.d.routeBreaksFeasible(v, path, &f.propagator, &f.tasks)
}

// PickupDeliveryFilter checks precedence and the per-vehicle LIFO/FIFO
// ordering policies on touched paths.
type PickupDeliveryFilter struct {
	basePathFilter
}

// NewPickupDeliveryFilter returns the pickup-and-delivery ordering filter.
func NewPickupDeliveryFilter(m *Model) *PickupDeliveryFilter {
	return &PickupDeliveryFilter{newBasePathFilter(m)}
}

// Name implements LocalSearchFilter.
func (f *PickupDeliveryFilter) Name() string { return "PickupDeliveryFilter" }

// Accept implements LocalSearchFilter.
func (f *PickupDeliveryFilter) Accept(delta *cpsolver.Assignment) bool {
	return f.acceptWith(delta, f)
}

func (f *PickupDeliveryFilter) acceptPath(v int, path []int, _ bool) bool {
	m := f.m
	policy := m.pdPolicies[v]
	onPath := make(map[int]bool, len(path))
	for _, i := range path {
		onPath[i] = true
	}
	var stack []int // open pair indices, pickup seen
	var queue []int
	for _, i := range path {
		if p := m.pickupPairOf[i]; p >= 0 {
			stack = append(stack, p)
			queue = append(queue, p)
			continue
		}
		p := m.deliveryPairOf[i]
		if p < 0 {
			continue
		}
		pickupHere := false
		for _, pk := range m.pickupDeliveryPairs[p].PickupAlternatives {
			if onPath[pk] {
				pickupHere = true
			}
		}
		if !pickupHere {
			return false // delivery without its pickup on the route
		}
		switch policy {
		case PickupAndDeliveryLIFO:
			if len(stack) == 0 || stack[len(stack)-1] != p {
				return false
			}
			stack = stack[:len(stack)-1]
			for qi, q := range queue {
				if q == p {
					queue = append(queue[:qi], queue[qi+1:]...)
					break
				}
			}
		case PickupAndDeliveryFIFO:
			if len(queue) == 0 || queue[0] != p {
				return false
			}
			queue = queue[1:]
			for si, q := range stack {
				if q == p {
					stack = append(stack[:si], stack[si+1:]...)
					break
				}
			}
		default:
			found := false
			for si, q := range stack {
				if q == p {
					stack = append(stack[:si], stack[si+1:]...)
					found = true
					break
				}
			}
			if !found {
				return false // delivery before its pickup
			}
			for qi, q := range queue {
				if q == p {
					queue = append(queue[:qi], queue[qi+1:]...)
					break
				}
			}
		}
	}
	return true
}

// TypeIncompatibilityFilter rejects paths carrying two incompatible visit
// types.
type TypeIncompatibilityFilter struct {
	basePathFilter
}

// NewTypeIncompatibilityFilter returns the visit-type filter.
func NewTypeIncompatibilityFilter(m *Model) *TypeIncompatibilityFilter {
	return &TypeIncompatibilityFilter{newBasePathFilter(m)}
}

// Name implements LocalSearchFilter.
func (f *TypeIncompatibilityFilter) Name() string { return "TypeIncompatibilityFilter" }

// Accept implements LocalSearchFilter.
func (f *TypeIncompatibilityFilter) Accept(delta *cpsolver.Assignment) bool {
	return f.acceptWith(delta, f)
}

func (f *TypeIncompatibilityFilter) acceptPath(v int, path []int, _ bool) bool {
	var types []int
	for _, i := range path {
		t := f.m.visitTypes[i]
		if t < 0 {
			continue
		}
		for _, seen := range types {
			if f.m.TypesAreIncompatible(seen, t) {
				return false
			}
		}
		types = append(types, t)
	}
	return true
}

// VehicleAmortizedCostFilter tracks the quadratic route-length cost term. The
// candidate term is compared against a settable bound; the default bound is
// infinite, so the filter only prunes when the orchestrator installs one.
type VehicleAmortizedCostFilter struct {
	basePathFilter
	bound int64
}

// NewVehicleAmortizedCostFilter returns the amortized-cost filter.
func NewVehicleAmortizedCostFilter(m *Model) *VehicleAmortizedCostFilter {
	return &VehicleAmortizedCostFilter{basePathFilter: newBasePathFilter(m), bound: math.MaxInt64}
}

// Name implements LocalSearchFilter.
func (f *VehicleAmortizedCostFilter) Name() string { return "VehicleAmortizedCostFilter" }

// SetBound installs an upper bound on the candidate amortized term.
func (f *VehicleAmortizedCostFilter) SetBound(bound int64) { f.bound = bound }

// DeltaCost returns the amortized term of the candidate given by `delta` minus
// the committed term, summed over the touched vehicles.
func (f *VehicleAmortizedCostFilter) DeltaCost(delta *cpsolver.Assignment) int64 {
	f.loadDelta(delta)
	var total int64
	for _, v := range f.touchedVehicles() {
		total += f.termOf(v, true) - f.termOf(v, false)
	}
	return total
}

func (f *VehicleAmortizedCostFilter) termOf(v int, withDelta bool) int64 {
	m := f.m
	length := int64(0)
	i := m.starts[v]
	n := m.manager.NumIndices()
	for steps := 0; steps <= n; steps++ {
		if m.IsEnd(i) {
			break
		}
		var nxt int64
		if withDelta {
			nxt = f.value(i)
		} else {
			nxt = f.values[i]
		}
		if nxt < 0 || int(nxt) == i {
			return 0
		}
		if !m.IsEnd(int(nxt)) {
			length++
		}
		i = int(nxt)
	}
	if length == 0 {
		return 0
	}
	return m.amortizedLinear[v] - m.amortizedQuadratic[v]*length*length
}

// Accept implements LocalSearchFilter.
func (f *VehicleAmortizedCostFilter) Accept(delta *cpsolver.Assignment) bool {
	f.loadDelta(delta)
	var total int64
	for v := 0; v < f.m.vehicles; v++ {
		total += f.termOf(v, true)
	}
	return total <= f.bound
}

// CPFeasibilityFilter is the catch-all filter: it restores the committed
// assignment overlaid with the delta into a shadow propagation on the CP
// solver and accepts iff propagation holds.
type CPFeasibilityFilter struct {
	m         *Model
	committed *cpsolver.Assignment
}

// NewCPFeasibilityFilter returns the CP propagation filter.
func NewCPFeasibilityFilter(m *Model) *CPFeasibilityFilter {
	return &CPFeasibilityFilter{m: m}
}

// Name implements LocalSearchFilter.
func (f *CPFeasibilityFilter) Name() string { return "CPFeasibilityFilter" }

// Synchronize implements LocalSearchFilter.
func (f *CPFeasibilityFilter) Synchronize(assignment *cpsolver.Assignment) {
	f.committed = assignment
}

// Accept implements LocalSearchFilter.
func (f *CPFeasibilityFilter) Accept(delta *cpsolver.Assignment) bool {
	var shadow *cpsolver.Assignment
	if f.committed != nil {
		shadow = f.committed.Copy()
	} else {
		shadow = cpsolver.NewAssignment()
	}
	shadow.Merge(delta)
	return f.m.solver.CheckAssignment(shadow)
}
