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
)

// newBuilderFixture returns a closed 6-node, 2-vehicle model with Manhattan
// costs.
func newBuilderFixture(t *testing.T) *Model {
	t.Helper()
	points := []point{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {0, 2}, {3, 3}}
	m, _ := newTestModel(t, len(points), 2)
	cb := m.RegisterTransitMatrix(manhattanMatrix(points))
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	return m
}

// checkComplete asserts that the builder committed a complete, well-formed
// solution serving every node.
func checkComplete(t *testing.T, m *Model, b FirstSolutionBuilder) {
	t.Helper()
	if !b.BuildSolution() {
		t.Fatal("BuildSolution returned false")
	}
	committed := b.Assignment()
	next := make([]int64, m.Size())
	for i := 0; i < m.Size(); i++ {
		if !committed.Bound(m.NextVar(i)) {
			t.Fatalf("next(%v) not committed", i)
		}
		next[i] = committed.Value(m.NextVar(i))
	}
	vehicleOf, err := m.vehicleAndActiveFromNexts(next)
	if err != nil {
		t.Fatalf("committed solution is malformed: %v", err)
	}
	for i := 0; i < m.Size(); i++ {
		if !m.IsStart(i) && vehicleOf[i] < 0 {
			t.Errorf("index %v left unserved with no disjunction", i)
		}
	}
}

func TestGlobalCheapestInsertionBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewGlobalCheapestInsertionBuilder(m, m.makeLocalSearchFilters(), false, 1.0, 0)
	checkComplete(t, m, b)
}

func TestGlobalCheapestInsertionBuilder_Sequential(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewGlobalCheapestInsertionBuilder(m, m.makeLocalSearchFilters(), true, 1.0, 0)
	checkComplete(t, m, b)
}

func TestGlobalCheapestInsertionBuilder_NeighborTruncation(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewGlobalCheapestInsertionBuilder(m, m.makeLocalSearchFilters(), false, 0.5, 0)
	checkComplete(t, m, b)
}

func TestLocalCheapestInsertionBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewLocalCheapestInsertionBuilder(m, m.makeLocalSearchFilters())
	checkComplete(t, m, b)
}

func TestCheapestAdditionBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewEvaluatorCheapestAdditionBuilder(m, m.makeLocalSearchFilters(), nil)
	checkComplete(t, m, b)
}

func TestComparatorCheapestAdditionBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewComparatorCheapestAdditionBuilder(m, m.makeLocalSearchFilters(), func(from, a, bb int) bool {
		return m.GetArcCostForVehicle(from, a, 0) < m.GetArcCostForVehicle(from, bb, 0)
	})
	checkComplete(t, m, b)
}

func TestSequentialSavingsBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewSequentialSavingsBuilder(m, m.makeLocalSearchFilters(), 1.0, 1.0, false)
	checkComplete(t, m, b)
}

func TestParallelSavingsBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewParallelSavingsBuilder(m, m.makeLocalSearchFilters(), 1.0, 1.0, true)
	checkComplete(t, m, b)
}

func TestChristofidesBuilder(t *testing.T) {
	m := newBuilderFixture(t)
	b := NewChristofidesBuilder(m, m.makeLocalSearchFilters())
	checkComplete(t, m, b)
}

func TestBuilder_PreLockedRoutes(t *testing.T) {
	points := []point{{0, 0}, {1, 0}, {2, 0}, {0, 1}}
	m, manager := newTestModel(t, len(points), 1)
	cb := m.RegisterTransitMatrix(manhattanMatrix(points))
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	n3, _ := manager.NodeToIndex(3)
	if err := m.SetRouteLocks(0, []int{n3}); err != nil {
		t.Fatalf("SetRouteLocks returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	b := NewLocalCheapestInsertionBuilder(m, m.makeLocalSearchFilters())
	if !b.BuildSolution() {
		t.Fatal("BuildSolution returned false")
	}
	if got := b.Assignment().Value(m.NextVar(m.Start(0))); got != int64(n3) {
		t.Errorf("next(start) = %v, want locked chain head %v", got, n3)
	}
}

func TestBuilder_RejectCounters(t *testing.T) {
	// A capacity that admits only one of two nodes forces rejects and drops.
	points := []point{{0, 0}, {1, 0}, {2, 0}}
	m, manager := newTestModel(t, len(points), 1)
	cb := m.RegisterTransitMatrix(manhattanMatrix(points))
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	demand := m.RegisterUnaryTransitCallback(func(from int) int64 {
		if m.IsStart(from) {
			return 0
		}
		return 6
	})
	if _, err := m.AddDimensionWithVehicleCapacity(demand, 0, []int64{10}, true, "load"); err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	if _, err := m.AddDisjunction([]int{n1}, 100, 1); err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	if _, err := m.AddDisjunction([]int{n2}, 100, 1); err != nil {
		t.Fatalf("AddDisjunction returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	b := NewLocalCheapestInsertionBuilder(m, m.makeLocalSearchFilters())
	if !b.BuildSolution() {
		t.Fatal("BuildSolution returned false")
	}
	if b.NumberOfRejects() == 0 {
		t.Error("NumberOfRejects() = 0, want rejected insertions")
	}
}
