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

func TestRouteCumulOptimizer_MinimizesSpan(t *testing.T) {
	m, manager := newTestModel(t, 2, 1)
	travel := m.RegisterTransitCallback(func(from, to int) int64 { return 5 })
	d, err := m.AddDimension(travel, 100, 1000, false, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	// The visit can only happen in [20,30]; a late departure keeps the span
	// minimal.
	if err := d.CumulVar(n1).SetRange(20, 30); err != nil {
		t.Fatalf("SetRange returned %v", err)
	}
	d.SetSpanCostCoefficientForVehicle(1, 0)

	o := NewRouteDimensionCumulOptimizer(d)
	route := []int{m.Start(0), n1, m.End(0)}
	cumuls, cost, ok := o.OptimizeRouteCumuls(0, route)
	if !ok {
		t.Fatal("OptimizeRouteCumuls reported infeasible")
	}
	span := cumuls[2] - cumuls[0]
	if span != 10 {
		t.Errorf("optimized span = %v, want 10", span)
	}
	if cost != 10 {
		t.Errorf("optimized cost = %v, want 10", cost)
	}
	if cumuls[1] < 20 || cumuls[1] > 30 {
		t.Errorf("visit cumul = %v, outside its window [20,30]", cumuls[1])
	}
	// The chaining holds with nonnegative slack.
	if cumuls[1]-cumuls[0] < 5 || cumuls[2]-cumuls[1] < 5 {
		t.Errorf("cumuls %v violate the transit chain", cumuls)
	}
}

func TestRouteCumulOptimizer_SoftUpperBound(t *testing.T) {
	m, manager := newTestModel(t, 2, 1)
	travel := m.RegisterTransitCallback(func(from, to int) int64 { return 8 })
	d, err := m.AddDimension(travel, 0, 1000, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	// Arrival is forced to 8 with zero slack; the soft bound at 5 costs 3/unit.
	d.SetCumulVarSoftUpperBound(n1, 5, 3)

	o := NewRouteDimensionCumulOptimizer(d)
	route := []int{m.Start(0), n1, m.End(0)}
	cumuls, cost, ok := o.OptimizeRouteCumuls(0, route)
	if !ok {
		t.Fatal("OptimizeRouteCumuls reported infeasible")
	}
	if cumuls[1] != 8 {
		t.Errorf("visit cumul = %v, want 8", cumuls[1])
	}
	if cost != 9 {
		t.Errorf("optimized cost = %v, want 3*(8-5)", cost)
	}
}

func TestRouteCumulOptimizer_Infeasible(t *testing.T) {
	m, manager := newTestModel(t, 2, 1)
	travel := m.RegisterTransitCallback(func(from, to int) int64 { return 50 })
	d, err := m.AddDimension(travel, 0, 1000, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	if err := d.CumulVar(n1).SetMax(10); err != nil {
		t.Fatalf("SetMax returned %v", err)
	}
	o := NewRouteDimensionCumulOptimizer(d)
	route := []int{m.Start(0), n1, m.End(0)}
	if _, _, ok := o.OptimizeRouteCumuls(0, route); ok {
		t.Error("OptimizeRouteCumuls accepted an unreachable window")
	}
}

func TestRouteCumulOptimizer_ReusesModels(t *testing.T) {
	m, manager := newTestModel(t, 3, 1)
	travel := m.RegisterTransitCallback(func(from, to int) int64 { return 1 })
	d, err := m.AddDimension(travel, 10, 1000, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	o := NewRouteDimensionCumulOptimizer(d)
	for i := 0; i < 3; i++ {
		route := []int{m.Start(0), n1, n2, m.End(0)}
		if _, _, ok := o.OptimizeRouteCumuls(0, route); !ok {
			t.Fatalf("solve %v reported infeasible", i)
		}
	}
	if o.models[0] == nil {
		t.Error("per-vehicle LP model was not kept")
	}
}
