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
	"testing"

	"github.com/opsolve/routing/cpsolver"
)

// routeDelta stages a complete single-vehicle route (given as visit indices)
// as a filter delta.
func routeDelta(m *Model, vehicle int, visits []int) *cpsolver.Assignment {
	delta := cpsolver.NewAssignment()
	next := make([]int64, m.Size())
	for i := range next {
		next[i] = int64(i)
	}
	prev := m.Start(vehicle)
	for _, i := range visits {
		next[prev] = int64(i)
		prev = i
	}
	next[prev] = int64(m.End(vehicle))
	for i := 0; i < m.Size(); i++ {
		delta.SetValue(m.NextVar(i), next[i])
	}
	return delta
}

func TestPathCumulFilter_Capacity(t *testing.T) {
	m, manager := newTestModel(t, 5, 1)
	demands := []int64{0, 5, 4, 7, 3}
	demandCb := m.RegisterUnaryTransitCallback(func(from int) int64 {
		return demands[manager.IndexToNode(from)]
	})
	d, err := m.AddDimensionWithVehicleCapacity(demandCb, 0, []int64{10}, true, "load")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	f := NewPathCumulFilter(d)
	f.Synchronize(nil)

	n := func(node NodeIndex) int {
		idx, err := manager.NodeToIndex(node)
		if err != nil {
			t.Fatalf("NodeToIndex(%v) returned %v", node, err)
		}
		return idx
	}
	// 5 + 4 = 9 <= 10.
	if !f.Accept(routeDelta(m, 0, []int{n(1), n(2)})) {
		t.Error("Accept rejected a route within capacity")
	}
	// 5 + 7 = 12 > 10.
	if f.Accept(routeDelta(m, 0, []int{n(1), n(3)})) {
		t.Error("Accept allowed a route over capacity")
	}
}

func TestPathCumulFilter_TimeWindows(t *testing.T) {
	m, manager := newTestModel(t, 3, 1)
	travel := m.RegisterTransitCallback(func(from, to int) int64 { return 10 })
	d, err := m.AddDimension(travel, 2, 1000, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	// Node 2 must be reached within [0, 15]: going via node 1 arrives at 20.
	if err := d.CumulVar(n2).SetMax(15); err != nil {
		t.Fatalf("SetMax returned %v", err)
	}
	f := NewPathCumulFilter(d)
	f.Synchronize(nil)
	if !f.Accept(routeDelta(m, 0, []int{n2, n1})) {
		t.Error("Accept rejected a schedule meeting the window")
	}
	if f.Accept(routeDelta(m, 0, []int{n1, n2})) {
		t.Error("Accept allowed an arrival past the window")
	}
}

// newLIFOModel builds the pickup-and-delivery fixture: one vehicle, pairs
// (1,4), (2,5), (3,6) by node, LIFO policy.
func newLIFOModel(t *testing.T) (*Model, func(NodeIndex) int) {
	m, manager := newTestModel(t, 7, 1)
	n := func(node NodeIndex) int {
		idx, err := manager.NodeToIndex(node)
		if err != nil {
			t.Fatalf("NodeToIndex(%v) returned %v", node, err)
		}
		return idx
	}
	for _, pair := range [][2]NodeIndex{{1, 4}, {2, 5}, {3, 6}} {
		if err := m.AddPickupAndDelivery(n(pair[0]), n(pair[1])); err != nil {
			t.Fatalf("AddPickupAndDelivery returned %v", err)
		}
	}
	if err := m.SetPickupAndDeliveryPolicyOfAllVehicles(PickupAndDeliveryLIFO); err != nil {
		t.Fatalf("SetPickupAndDeliveryPolicyOfAllVehicles returned %v", err)
	}
	return m, n
}

func TestPickupDeliveryFilter_LIFO(t *testing.T) {
	m, n := newLIFOModel(t)
	f := NewPickupDeliveryFilter(m)
	f.Synchronize(nil)

	sequence := func(nodes ...NodeIndex) []int {
		var visits []int
		for _, node := range nodes {
			visits = append(visits, n(node))
		}
		return visits
	}
	testCases := []struct {
		name  string
		nodes []NodeIndex
		want  bool
	}{
		{name: "ProperNesting", nodes: []NodeIndex{1, 2, 3, 6, 5, 4}, want: true},
		{name: "CrossedNesting", nodes: []NodeIndex{1, 2, 4, 3, 6, 5}, want: false},
		{name: "ImmediateDeliveries", nodes: []NodeIndex{1, 4, 2, 5, 3, 6}, want: true},
		{name: "DeliveryBeforePickup", nodes: []NodeIndex{4, 1, 2, 5, 3, 6}, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Accept(routeDelta(m, 0, sequence(tc.nodes...))); got != tc.want {
				t.Errorf("Accept(%v) = %v, want %v", tc.nodes, got, tc.want)
			}
		})
	}
}

func TestPickupDeliveryFilter_FIFO(t *testing.T) {
	m, manager := newTestModel(t, 5, 1)
	n := func(node NodeIndex) int {
		idx, _ := manager.NodeToIndex(node)
		return idx
	}
	for _, pair := range [][2]NodeIndex{{1, 3}, {2, 4}} {
		if err := m.AddPickupAndDelivery(n(pair[0]), n(pair[1])); err != nil {
			t.Fatalf("AddPickupAndDelivery returned %v", err)
		}
	}
	if err := m.SetPickupAndDeliveryPolicyOfAllVehicles(PickupAndDeliveryFIFO); err != nil {
		t.Fatalf("SetPickupAndDeliveryPolicyOfAllVehicles returned %v", err)
	}
	f := NewPickupDeliveryFilter(m)
	f.Synchronize(nil)
	if !f.Accept(routeDelta(m, 0, []int{n(1), n(2), n(3), n(4)})) {
		t.Error("Accept rejected a FIFO-ordered route")
	}
	if f.Accept(routeDelta(m, 0, []int{n(1), n(2), n(4), n(3)})) {
		t.Error("Accept allowed a LIFO-ordered route under FIFO policy")
	}
}

func TestNodeDisjunctionFilter_Cardinality(t *testing.T) {
	m, manager := newTestModel(t, 4, 1)
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	if _, err := m.AddDisjunction([]int{n1, n2}, 10, 1); err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	f := NewNodeDisjunctionFilter(m)
	f.Synchronize(nil)
	if !f.Accept(routeDelta(m, 0, []int{n1})) {
		t.Error("Accept rejected a route activating one of two alternatives")
	}
	if f.Accept(routeDelta(m, 0, []int{n1, n2})) {
		t.Error("Accept allowed two active members of a cardinality-1 disjunction")
	}
}

func TestTypeIncompatibilityFilter(t *testing.T) {
	m, manager := newTestModel(t, 4, 1)
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	n3, _ := manager.NodeToIndex(3)
	if err := m.SetVisitType(n1, 1); err != nil {
		t.Fatalf("SetVisitType returned %v", err)
	}
	if err := m.SetVisitType(n2, 2); err != nil {
		t.Fatalf("SetVisitType returned %v", err)
	}
	if err := m.AddTypeIncompatibility(1, 2); err != nil {
		t.Fatalf("AddTypeIncompatibility returned %v", err)
	}
	f := NewTypeIncompatibilityFilter(m)
	f.Synchronize(nil)
	if !f.Accept(routeDelta(m, 0, []int{n1, n3})) {
		t.Error("Accept rejected compatible visits")
	}
	if f.Accept(routeDelta(m, 0, []int{n1, n2})) {
		t.Error("Accept allowed incompatible types on one vehicle")
	}
}

func TestVehicleVarFilter_AllowedVehicles(t *testing.T) {
	m, manager := newTestModel(t, 3, 2)
	n1, _ := manager.NodeToIndex(1)
	if err := m.SetAllowedVehiclesForIndex([]int{1}, n1); err != nil {
		t.Fatalf("SetAllowedVehiclesForIndex returned %v", err)
	}
	f := NewVehicleVarFilter(m)
	f.Synchronize(nil)
	if f.Accept(routeDelta(m, 0, []int{n1})) {
		t.Error("Accept allowed a forbidden vehicle")
	}
	if !f.Accept(routeDelta(m, 1, []int{n1})) {
		t.Error("Accept rejected the allowed vehicle")
	}
}

func TestVehicleBreaksFilter(t *testing.T) {
	m, manager := newTestModel(t, 3, 1)
	service := m.RegisterTransitCallback(func(from, to int) int64 { return 4 })
	d, err := m.AddDimension(service, 30, 1000, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	breakVar := m.Solver().NewIntervalVar(10, 10, 10, 10, false, "lunch")
	visits := make([]int64, m.Size())
	for i := range visits {
		visits[i] = 4
	}
	if err := d.SetBreakIntervalsOfVehicle([]*cpsolver.IntervalVar{breakVar}, 0, visits); err != nil {
		t.Fatalf("SetBreakIntervalsOfVehicle returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	f := NewVehicleBreaksFilter(d)
	f.Synchronize(nil)
	if !f.Accept(routeDelta(m, 0, []int{n1, n2})) {
		t.Error("Accept rejected a route that can be scheduled around the break")
	}
}
