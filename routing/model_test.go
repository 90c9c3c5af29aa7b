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
	"errors"
	"testing"
)

func TestModel_OpenClosedViolations(t *testing.T) {
	m, _ := newTestModel(t, 4, 1)
	cb := m.RegisterTransitCallback(func(from, to int) int64 { return 1 })
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	// Idempotent close.
	if err := m.CloseModel(); err != nil {
		t.Fatalf("second CloseModel returned %v", err)
	}
	if err := m.SetFixedCostOfAllVehicles(5); !errors.Is(err, ErrModelClosed) {
		t.Errorf("SetFixedCostOfAllVehicles after close = %v, want ErrModelClosed", err)
	}
	if _, err := m.AddDisjunction([]int{0}, 10, 1); !errors.Is(err, ErrModelClosed) {
		t.Errorf("AddDisjunction after close = %v, want ErrModelClosed", err)
	}
	if _, err := m.AddDimension(cb, 0, 10, true, "late"); !errors.Is(err, ErrModelClosed) {
		t.Errorf("AddDimension after close = %v, want ErrModelClosed", err)
	}
}

func TestModel_DisjunctionValidation(t *testing.T) {
	m, _ := newTestModel(t, 5, 1)
	if _, err := m.AddDisjunction([]int{0, 1}, 10, 3); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("AddDisjunction with cardinality above size = %v, want ErrInvalidParameter", err)
	}
	if _, err := m.AddDisjunction([]int{0, 1}, 10, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("AddDisjunction with zero cardinality = %v, want ErrInvalidParameter", err)
	}
	if _, err := m.AddDisjunction(nil, 10, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("AddDisjunction with no indices = %v, want ErrInvalidParameter", err)
	}
	d, err := m.AddDisjunction([]int{0, 1}, 10, 1)
	if err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	if got := m.GetDisjunction(d).MaxCardinality; got != 1 {
		t.Errorf("MaxCardinality = %v, want 1", got)
	}
}

func TestModel_UnperformedPenalty(t *testing.T) {
	m, _ := newTestModel(t, 5, 1)
	if _, droppable := m.UnperformedPenalty(0); droppable {
		t.Error("index without disjunction reported droppable")
	}
	if _, err := m.AddDisjunction([]int{0}, 25, 1); err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	penalty, droppable := m.UnperformedPenalty(0)
	if !droppable || penalty != 25 {
		t.Errorf("UnperformedPenalty(0) = (%v, %v), want (25, true)", penalty, droppable)
	}
	if _, err := m.AddDisjunction([]int{1}, NoPenalty, 1); err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	if _, droppable := m.UnperformedPenalty(1); droppable {
		t.Error("hard singleton disjunction reported droppable")
	}
}

func TestModel_CostClasses(t *testing.T) {
	m, _ := newTestModel(t, 4, 3)
	cheap := m.RegisterTransitCallback(func(from, to int) int64 { return 1 })
	dear := m.RegisterTransitCallback(func(from, to int) int64 { return 9 })
	if err := m.SetArcCostEvaluatorOfAllVehicles(cheap); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.SetArcCostEvaluatorOfVehicle(dear, 2); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfVehicle returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	if got := m.CostClasses(); got != 2 {
		t.Errorf("CostClasses() = %v, want 2", got)
	}
	if m.GetCostClassOfVehicle(0) != m.GetCostClassOfVehicle(1) {
		t.Error("vehicles 0 and 1 should share a cost class")
	}
	if m.GetCostClassOfVehicle(0) == m.GetCostClassOfVehicle(2) {
		t.Error("vehicles 0 and 2 should not share a cost class")
	}
	if m.CostsAreHomogeneousAcrossVehicles() {
		t.Error("CostsAreHomogeneousAcrossVehicles() = true, want false")
	}
}

func TestModel_VehicleClassesRefineFixedCost(t *testing.T) {
	m, _ := newTestModel(t, 4, 2)
	cb := m.RegisterTransitCallback(func(from, to int) int64 { return 1 })
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.SetFixedCostOfVehicle(100, 1); err != nil {
		t.Fatalf("SetFixedCostOfVehicle returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	// Fixed cost is not part of the cost class but splits the vehicle class.
	if got := m.CostClasses(); got != 1 {
		t.Errorf("CostClasses() = %v, want 1", got)
	}
	if got := m.VehicleClasses(); got != 2 {
		t.Errorf("VehicleClasses() = %v, want 2", got)
	}
	if m.CostsAreHomogeneousAcrossVehicles() {
		t.Error("CostsAreHomogeneousAcrossVehicles() = true with differing fixed costs")
	}
}

func TestModel_GetArcCostForVehicle(t *testing.T) {
	m, manager := newTestModel(t, 3, 1)
	matrix := [][]int64{
		{0, 4, 7},
		{4, 0, 2},
		{7, 2, 0},
	}
	cb := m.RegisterTransitMatrix(matrix)
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.SetFixedCostOfVehicle(10, 0); err != nil {
		t.Fatalf("SetFixedCostOfVehicle returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	if got := m.GetArcCostForVehicle(n1, n2, 0); got != 2 {
		t.Errorf("GetArcCostForVehicle(n1, n2, 0) = %v, want 2", got)
	}
	// The fixed cost lands on arcs leaving the vehicle start.
	if got := m.GetArcCostForVehicle(m.Start(0), n1, 0); got != 14 {
		t.Errorf("GetArcCostForVehicle(start, n1, 0) = %v, want 4+10", got)
	}
	if got := m.GetArcCostForVehicle(n1, n2, -1); got != 0 {
		t.Errorf("GetArcCostForVehicle(n1, n2, -1) = %v, want 0", got)
	}
	// Class costs never include the fixed cost.
	if got := m.GetArcCostForClass(m.Start(0), n1, m.GetCostClassOfVehicle(0)); got != 4 {
		t.Errorf("GetArcCostForClass(start, n1) = %v, want 4", got)
	}
}

func TestModel_VisitTypesAndIncompatibilities(t *testing.T) {
	m, _ := newTestModel(t, 4, 1)
	if err := m.SetVisitType(0, 1); err != nil {
		t.Fatalf("SetVisitType returned %v", err)
	}
	if err := m.SetVisitType(1, 2); err != nil {
		t.Fatalf("SetVisitType returned %v", err)
	}
	if err := m.AddTypeIncompatibility(1, 2); err != nil {
		t.Fatalf("AddTypeIncompatibility returned %v", err)
	}
	if !m.TypesAreIncompatible(1, 2) || !m.TypesAreIncompatible(2, 1) {
		t.Error("TypesAreIncompatible should hold in both directions")
	}
	if m.TypesAreIncompatible(1, 3) {
		t.Error("TypesAreIncompatible(1, 3) = true, want false")
	}
	if err := m.SetVisitType(0, -2); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetVisitType with negative type = %v, want ErrInvalidParameter", err)
	}
}
