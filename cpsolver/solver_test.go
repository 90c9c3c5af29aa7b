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

package cpsolver

import (
	"testing"
	"time"
)

// lessConstraint enforces a < b with bound consistency.
type lessConstraint struct {
	a, b *IntVar
}

func (c *lessConstraint) Post() {
	c.a.WhenDomain(c.propagate)
	c.b.WhenDomain(c.propagate)
}

func (c *lessConstraint) InitialPropagate() error { return c.propagate() }

func (c *lessConstraint) propagate() error {
	if err := c.b.SetMin(c.a.Min() + 1); err != nil {
		return err
	}
	return c.a.SetMax(c.b.Max() - 1)
}

func TestIntVar_DomainOperations(t *testing.T) {
	s := NewSolver("test")
	v := s.NewIntVar(0, 10, "v")
	if err := v.SetMin(3); err != nil {
		t.Fatalf("SetMin(3) returned %v", err)
	}
	if err := v.SetMax(7); err != nil {
		t.Fatalf("SetMax(7) returned %v", err)
	}
	if err := v.RemoveValue(5); err != nil {
		t.Fatalf("RemoveValue(5) returned %v", err)
	}
	if v.Contains(5) {
		t.Error("Contains(5) = true after RemoveValue")
	}
	if got := v.Size(); got != 4 {
		t.Errorf("Size() = %v, want 4", got)
	}
	if err := v.SetMin(11); err != ErrFailed {
		t.Errorf("SetMin(11) = %v, want ErrFailed", err)
	}
}

func TestSolver_PropagationAndBacktrack(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 10, "a")
	b := s.NewIntVar(0, 10, "b")
	s.AddConstraint(&lessConstraint{a, b})
	if err := s.InitialPropagate(); err != nil {
		t.Fatalf("InitialPropagate() returned %v", err)
	}
	if got := b.Min(); got != 1 {
		t.Errorf("b.Min() = %v, want 1", got)
	}

	mark, im := s.markTrail()
	if err := a.SetMin(5); err != nil {
		t.Fatalf("SetMin(5) returned %v", err)
	}
	if err := s.Propagate(); err != nil {
		t.Fatalf("Propagate() returned %v", err)
	}
	if got := b.Min(); got != 6 {
		t.Errorf("b.Min() = %v after a>=5, want 6", got)
	}
	s.backtrackTo(mark, im)
	if got, want := a.Min(), int64(0); got != want {
		t.Errorf("a.Min() = %v after backtrack, want %v", got, want)
	}
	if got, want := b.Min(), int64(1); got != want {
		t.Errorf("b.Min() = %v after backtrack, want %v", got, want)
	}
}

func TestSolver_SolveFindsSolution(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 3, "a")
	b := s.NewIntVar(0, 3, "b")
	c := s.NewIntVar(0, 3, "c")
	s.AddConstraint(&lessConstraint{a, b})
	s.AddConstraint(&lessConstraint{b, c})
	if err := s.InitialPropagate(); err != nil {
		t.Fatalf("InitialPropagate() returned %v", err)
	}
	values, ok := s.SolveAndCollect(AssignVariables([]*IntVar{a, b, c}), []*IntVar{a, b, c})
	if !ok {
		t.Fatal("SolveAndCollect found no solution")
	}
	if !(values[0] < values[1] && values[1] < values[2]) {
		t.Errorf("solution %v violates a < b < c", values)
	}
	if a.Bound() {
		t.Error("solver state was not rewound after SolveAndCollect")
	}
}

func TestSolver_SetValuesFromTargets(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 10, "a")
	b := s.NewIntVar(0, 10, "b")
	s.AddConstraint(&lessConstraint{a, b})
	if err := s.InitialPropagate(); err != nil {
		t.Fatalf("InitialPropagate() returned %v", err)
	}
	values, ok := s.SolveAndCollect(SetValuesFromTargets([]*IntVar{a, b}, []int64{4, 4}), []*IntVar{a, b})
	if !ok {
		t.Fatal("SolveAndCollect found no solution")
	}
	if values[0] != 4 {
		t.Errorf("a = %v, want its target 4", values[0])
	}
	if values[1] <= 4 {
		t.Errorf("b = %v, want a value above 4", values[1])
	}
}

func TestSearchLimit_Branches(t *testing.T) {
	s := NewSolver("test")
	var vars []*IntVar
	for i := 0; i < 8; i++ {
		vars = append(vars, s.NewIntVar(0, 7, ""))
	}
	// An unsatisfiable chain forces exhaustive search; the limit must cut it.
	for i := 0; i+1 < len(vars); i++ {
		s.AddConstraint(&lessConstraint{vars[i], vars[i+1]})
	}
	s.AddConstraint(&lessConstraint{vars[len(vars)-1], vars[0]})
	limit := NewSearchLimit(s, 0, 10, 0, 0)
	found := s.Solve(AssignVariables(vars), limit)
	if found {
		t.Error("Solve() found a solution to an unsatisfiable problem")
	}
}

func TestSearchLimit_Time(t *testing.T) {
	s := NewSolver("test")
	limit := NewSearchLimit(s, time.Nanosecond, 0, 0, 0)
	limit.Start()
	time.Sleep(time.Millisecond)
	if err := limit.Check(); err == nil {
		t.Error("Check() = nil after deadline, want ErrLimitCrossed")
	}
	if !limit.TimeExceeded() {
		t.Error("TimeExceeded() = false, want true")
	}
}
