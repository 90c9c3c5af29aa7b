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

	log "github.com/golang/glog"

	"github.com/opsolve/routing/cpsolver"
)

// Next returns the successor of `index` in the assignment.
func (m *Model) Next(assignment *cpsolver.Assignment, index int) int {
	return int(assignment.Value(m.nexts[index]))
}

// IsVehicleUsed returns true when the vehicle serves at least one node in
// the assignment.
func (m *Model) IsVehicleUsed(assignment *cpsolver.Assignment, vehicle int) bool {
	return m.Next(assignment, m.starts[vehicle]) != m.ends[vehicle]
}

// RoutesToAssignment converts per-vehicle visit sequences (without starts and
// ends) into an assignment over the next variables. Indices absent from every
// route become unperformed. Returns nil and an error on malformed routes.
func (m *Model) RoutesToAssignment(routes [][]int) (*cpsolver.Assignment, error) {
	if len(routes) != m.vehicles {
		return nil, fmt.Errorf("need %v routes, got %v: %w", m.vehicles, len(routes), ErrInvalidParameter)
	}
	next := make([]int64, m.size)
	for i := range next {
		next[i] = int64(i)
	}
	seen := make(map[int]bool)
	for v, route := range routes {
		prev := m.starts[v]
		for _, i := range route {
			if i < 0 || i >= m.size || m.IsStart(i) {
				return nil, fmt.Errorf("route of vehicle %v contains invalid index %v: %w", v, i, ErrInvalidParameter)
			}
			if seen[i] {
				return nil, fmt.Errorf("index %v appears on two routes: %w", i, ErrInvalidParameter)
			}
			seen[i] = true
			next[prev] = int64(i)
			prev = i
		}
		next[prev] = int64(m.ends[v])
	}
	return m.assignmentFromNexts(next), nil
}

// AssignmentToRoutes converts an assignment into per-vehicle visit sequences,
// the inverse of RoutesToAssignment for valid routes.
func (m *Model) AssignmentToRoutes(assignment *cpsolver.Assignment) ([][]int, error) {
	next, ok := m.nextsFromAssignment(assignment)
	if !ok {
		return nil, fmt.Errorf("assignment misses next values: %w", ErrInvalidParameter)
	}
	if _, err := m.vehicleAndActiveFromNexts(next); err != nil {
		return nil, err
	}
	routes := make([][]int, m.vehicles)
	for v := 0; v < m.vehicles; v++ {
		route := m.routeOfVehicle(next, v)
		routes[v] = append([]int{}, route[1:len(route)-1]...)
	}
	return routes, nil
}

// CompactAssignment remaps the used vehicles onto the lowest vehicle indices
// of their vehicle class, keeping routes otherwise intact. The remapping is
// validated by recomputing the cost; a cost change rejects the compaction.
func (m *Model) CompactAssignment(assignment *cpsolver.Assignment) *cpsolver.Assignment {
	m.requireClosed("CompactAssignment")
	next, ok := m.nextsFromAssignment(assignment)
	if !ok {
		return nil
	}
	originalCost, feasible := m.costOfChecked(next)
	if !feasible {
		return nil
	}

	// Permute vehicles: within each vehicle class, used routes first.
	permuted := make([]int64, len(next))
	copy(permuted, next)
	assigned := make([]bool, m.vehicles)
	targetOf := make([]int, m.vehicles)
	for v := range targetOf {
		targetOf[v] = -1
	}
	for v := 0; v < m.vehicles; v++ {
		if int(next[m.starts[v]]) == m.ends[v] {
			continue // empty routes fill the remaining slots afterwards
		}
		class := m.vehicleClassOfVehicle[v]
		target := -1
		for w := 0; w < m.vehicles; w++ {
			if !assigned[w] && m.vehicleClassOfVehicle[w] == class {
				target = w
				break
			}
		}
		if target < 0 {
			return nil
		}
		assigned[target] = true
		targetOf[v] = target
	}
	// Empty every moved route first so fill writes are not clobbered when a
	// moved vehicle is itself the target of another chain.
	for v := 0; v < m.vehicles; v++ {
		if targetOf[v] >= 0 && targetOf[v] != v {
			permuted[m.starts[v]] = int64(m.ends[v])
		}
	}
	for v := 0; v < m.vehicles; v++ {
		target := targetOf[v]
		if target < 0 || target == v {
			continue
		}
		route := m.routeOfVehicle(next, v)
		prev := m.starts[target]
		for _, i := range route[1 : len(route)-1] {
			permuted[prev] = int64(i)
			prev = i
		}
		permuted[prev] = int64(m.ends[target])
	}
	// Close any route whose vehicle lost its chain without gaining one.
	for v := 0; v < m.vehicles; v++ {
		if targetOf[v] >= 0 || assigned[v] {
			continue
		}
		permuted[m.starts[v]] = int64(m.ends[v])
	}

	compactCost, feasible := m.costOfChecked(permuted)
	if !feasible || compactCost != originalCost {
		log.Errorf("CompactAssignment changed cost from %v to %v; rejecting", originalCost, compactCost)
		return nil
	}
	return m.assignmentFromNexts(permuted)
}

// WriteAssignment serializes the solution of the last solve to the file as
// (variable-index, value) tuples: every next variable, the vehicle variables
// when costs are not homogeneous, and the objective value. Returns false on
// any error.
func (m *Model) WriteAssignment(path string) bool {
	if m.bestAssignment == nil {
		log.Errorf("WriteAssignment: no solution available")
		return false
	}
	out := cpsolver.NewAssignment()
	for i := 0; i < m.size; i++ {
		out.SetValue(m.nexts[i], m.bestAssignment.Value(m.nexts[i]))
	}
	if !m.costsHomogeneous {
		for i := 0; i < m.manager.NumIndices(); i++ {
			out.SetValue(m.vehicleVars[i], m.bestAssignment.Value(m.vehicleVars[i]))
		}
	}
	if obj, ok := m.bestAssignment.ObjectiveValue(); ok {
		out.SetObjectiveValue(m.costVar, obj)
	}
	return out.WriteFile(path)
}

// ReadAssignment loads an assignment written by WriteAssignment. Returns nil
// on any error.
func (m *Model) ReadAssignment(path string) *cpsolver.Assignment {
	a := cpsolver.NewAssignment()
	if !a.ReadFile(m.solver, path) {
		return nil
	}
	return a
}
