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

	"github.com/google/go-cmp/cmp"
)

func TestAddDimension_DuplicateName(t *testing.T) {
	m, _ := newTestModel(t, 4, 1)
	cb := m.RegisterConstantTransit(1)
	if _, err := m.AddDimension(cb, 0, 10, true, "load"); err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	if _, err := m.AddDimension(cb, 0, 10, true, "load"); !errors.Is(err, ErrDuplicateDimension) {
		t.Errorf("duplicate AddDimension = %v, want ErrDuplicateDimension", err)
	}
	if !m.HasDimension("load") {
		t.Error("HasDimension(load) = false, want true")
	}
	if m.HasDimension("time") {
		t.Error("HasDimension(time) = true, want false")
	}
}

func TestAddDimension_InvalidParameters(t *testing.T) {
	m, _ := newTestModel(t, 4, 1)
	cb := m.RegisterConstantTransit(1)
	if _, err := m.AddDimensionWithVehicleCapacity(cb, 0, []int64{-1}, true, "bad"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative capacity = %v, want ErrInvalidParameter", err)
	}
	if _, err := m.AddDimension(cb, -1, 10, true, "bad2"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative slack = %v, want ErrInvalidParameter", err)
	}
	if _, err := m.GetDimension("missing"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("GetDimension(missing) = %v, want ErrInvalidParameter", err)
	}
}

func TestDimension_TransitValues(t *testing.T) {
	m, manager := newTestModel(t, 3, 2)
	short := m.RegisterTransitCallback(func(from, to int) int64 { return 2 })
	long := m.RegisterTransitCallback(func(from, to int) int64 { return 5 })
	d, err := m.AddDimensionWithVehicleTransits([]CallbackIndex{short, long}, 0, 100, true, "time")
	if err != nil {
		t.Fatalf("AddDimensionWithVehicleTransits returned %v", err)
	}
	n1, _ := manager.NodeToIndex(1)
	n2, _ := manager.NodeToIndex(2)
	if got := d.GetTransitValue(n1, n2, 0); got != 2 {
		t.Errorf("GetTransitValue(v0) = %v, want 2", got)
	}
	if got := d.GetTransitValue(n1, n2, 1); got != 5 {
		t.Errorf("GetTransitValue(v1) = %v, want 5", got)
	}
	if d.TransitEvaluatorClassOfVehicle(0) == d.TransitEvaluatorClassOfVehicle(1) {
		t.Error("vehicles with different evaluators share a transit class")
	}
}

func TestDimension_SoftBoundsAccessors(t *testing.T) {
	m, _ := newTestModel(t, 4, 1)
	cb := m.RegisterConstantTransit(1)
	d, err := m.AddDimension(cb, 10, 100, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	if d.HasCumulVarSoftUpperBound(0) {
		t.Error("HasCumulVarSoftUpperBound(0) = true before setting")
	}
	d.SetCumulVarSoftUpperBound(0, 50, 3)
	if !d.HasCumulVarSoftUpperBound(0) {
		t.Error("HasCumulVarSoftUpperBound(0) = false after setting")
	}
	got := d.GetCumulVarSoftUpperBound(0)
	if diff := cmp.Diff(SoftBound{Bound: 50, Coefficient: 3}, got); diff != "" {
		t.Errorf("GetCumulVarSoftUpperBound(0) mismatch (-want +got):\n%s", diff)
	}
	d.SetCumulVarSoftLowerBound(1, 5, 2)
	if !d.HasCumulVarSoftLowerBound(1) {
		t.Error("HasCumulVarSoftLowerBound(1) = false after setting")
	}
	if !d.cumulDependentCost() {
		t.Error("cumulDependentCost() = false with soft bounds set")
	}
}

func TestPiecewiseLinearFunction(t *testing.T) {
	f, err := NewPiecewiseLinearFunction([]int64{0, 10, 20}, []int64{0, 0, 50})
	if err != nil {
		t.Fatalf("NewPiecewiseLinearFunction returned %v", err)
	}
	testCases := []struct {
		x    int64
		want int64
	}{
		{-5, 0}, {0, 0}, {10, 0}, {12, 10}, {20, 50}, {22, 60},
	}
	for _, tc := range testCases {
		if got := f.Value(tc.x); got != tc.want {
			t.Errorf("Value(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
	if _, err := NewPiecewiseLinearFunction([]int64{0, 0}, []int64{1, 2}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("non-increasing x accepted: %v", err)
	}
	if _, err := NewPiecewiseLinearFunction([]int64{0, 5}, []int64{3, 1}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("decreasing y accepted: %v", err)
	}
}

func TestDependentDimension(t *testing.T) {
	m, _ := newTestModel(t, 3, 1)
	base := m.RegisterConstantTransit(5)
	if _, err := m.AddDimension(base, 10, 100, true, "time"); err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	sd := m.RegisterStateDependentTransitCallback(func(from, to int) StateDependentTransit {
		return MakeStateDependentTransit(func(x int64) int64 { return x / 2 }, 0, 100)
	})
	d, err := m.AddDimensionDependentDimensionWithVehicleCapacity(
		[]CallbackIndex{sd}, "time", 0, []int64{1000}, true, "fatigue")
	if err != nil {
		t.Fatalf("AddDimensionDependentDimension returned %v", err)
	}
	if !d.IsStateDependent() {
		t.Error("IsStateDependent() = false, want true")
	}
	if d.IsSelfBased() {
		t.Error("IsSelfBased() = true for a time-based dimension")
	}
	if d.BaseDimension() != m.GetDimensionOrDie("time") {
		t.Error("BaseDimension() does not point at the time dimension")
	}
	if got := d.stateDependentTransitValue(40, 0, 1, 0); got != 20 {
		t.Errorf("stateDependentTransitValue(40) = %v, want 20", got)
	}
	// A dimension depending on a dependent dimension is rejected.
	if _, err := m.AddDimensionDependentDimensionWithVehicleCapacity(
		[]CallbackIndex{sd}, "fatigue", 0, []int64{1000}, true, "chained"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("chained dependent dimension accepted: %v", err)
	}
}

func TestDimension_SpanAccessors(t *testing.T) {
	m, _ := newTestModel(t, 3, 2)
	cb := m.RegisterConstantTransit(1)
	d, err := m.AddDimension(cb, 0, 100, true, "time")
	if err != nil {
		t.Fatalf("AddDimension returned %v", err)
	}
	d.SetSpanCostCoefficientForVehicle(7, 1)
	if got := d.GetSpanCostCoefficientForVehicle(1); got != 7 {
		t.Errorf("GetSpanCostCoefficientForVehicle(1) = %v, want 7", got)
	}
	if got := d.GetSpanCostCoefficientForVehicle(0); got != 0 {
		t.Errorf("GetSpanCostCoefficientForVehicle(0) = %v, want 0", got)
	}
	d.SetGlobalSpanCostCoefficient(3)
	if got := d.GlobalSpanCostCoefficient(); got != 3 {
		t.Errorf("GlobalSpanCostCoefficient() = %v, want 3", got)
	}
	d.SetSpanUpperBoundForVehicle(40, 0)
	if got := d.GetSpanUpperBoundForVehicle(0); got != 40 {
		t.Errorf("GetSpanUpperBoundForVehicle(0) = %v, want 40", got)
	}
}
