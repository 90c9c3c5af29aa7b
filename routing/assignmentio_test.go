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
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoutesToAssignment_RoundTrip(t *testing.T) {
	points := []point{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {0, 2}}
	m, manager := newTestModel(t, len(points), 2)
	cb := m.RegisterTransitMatrix(manhattanMatrix(points))
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	n := func(node NodeIndex) int {
		idx, _ := manager.NodeToIndex(node)
		return idx
	}
	routes := [][]int{{n(1), n(2)}, {n(3), n(4)}}
	a, err := m.RoutesToAssignment(routes)
	if err != nil {
		t.Fatalf("RoutesToAssignment returned %v", err)
	}
	back, err := m.AssignmentToRoutes(a)
	if err != nil {
		t.Fatalf("AssignmentToRoutes returned %v", err)
	}
	if diff := cmp.Diff(routes, back); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestRoutesToAssignment_Validation(t *testing.T) {
	m, manager := newTestModel(t, 4, 2)
	if err := m.SetArcCostEvaluatorOfAllVehicles(m.RegisterConstantTransit(1)); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	if _, err := m.RoutesToAssignment([][]int{{n1}}); err == nil {
		t.Error("short route list accepted, want error")
	}
	if _, err := m.RoutesToAssignment([][]int{{n1}, {n1}}); err == nil {
		t.Error("node on two routes accepted, want error")
	}
	if _, err := m.RoutesToAssignment([][]int{{m.Start(0)}, nil}); err == nil {
		t.Error("start index inside a route accepted, want error")
	}
}

func TestCompactAssignment(t *testing.T) {
	points := []point{{0, 0}, {1, 0}, {2, 0}}
	m, manager := newTestModel(t, len(points), 2)
	cb := m.RegisterTransitMatrix(manhattanMatrix(points))
	if err := m.SetArcCostEvaluatorOfAllVehicles(cb); err != nil {
		t.Fatalf("SetArcCostEvaluatorOfAllVehicles returned %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel returned %v", err)
	}
	n := func(node NodeIndex) int {
		idx, _ := manager.NodeToIndex(node)
		return idx
	}
	// Only vehicle 1 is used; compaction must shift its route onto vehicle 0.
	a, err := m.RoutesToAssignment([][]int{nil, {n(1), n(2)}})
	if err != nil {
		t.Fatalf("RoutesToAssignment returned %v", err)
	}
	compact := m.CompactAssignment(a)
	if compact == nil {
		t.Fatal("CompactAssignment returned nil")
	}
	if !m.IsVehicleUsed(compact, 0) {
		t.Error("vehicle 0 unused after compaction")
	}
	if m.IsVehicleUsed(compact, 1) {
		t.Error("vehicle 1 still used after compaction")
	}
	before, _ := m.costOfChecked(mustNexts(t, m, a))
	after, _ := m.costOfChecked(mustNexts(t, m, compact))
	if before != after {
		t.Errorf("compaction changed cost from %v to %v", before, after)
	}
}

func TestWriteReadAssignment(t *testing.T) {
	m, _, _ := newCVRPModel(t)
	solution := m.Solve()
	if solution == nil {
		t.Fatalf("Solve returned nil, status %v", m.Status())
	}
	path := filepath.Join(t.TempDir(), "solution.txt")
	if !m.WriteAssignment(path) {
		t.Fatal("WriteAssignment returned false")
	}
	loaded := m.ReadAssignment(path)
	if loaded == nil {
		t.Fatal("ReadAssignment returned nil")
	}
	for i := 0; i < m.Size(); i++ {
		if got, want := loaded.Value(m.NextVar(i)), solution.Value(m.NextVar(i)); got != want {
			t.Errorf("loaded next(%v) = %v, want %v", i, got, want)
		}
	}
	if m.WriteAssignment(filepath.Join(t.TempDir(), "missing", "dir", "x.txt")) {
		t.Error("WriteAssignment into a missing directory returned true")
	}
}
