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
	"bytes"
	"path/filepath"
	"testing"
)

func TestAssignment_SetValueAndCopy(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 10, "a")
	b := s.NewIntVar(0, 10, "b")

	asgn := NewAssignment()
	asgn.SetValue(a, 3)
	asgn.SetValue(b, 7)
	asgn.SetValue(a, 4) // overwrite

	if got := asgn.Value(a); got != 4 {
		t.Errorf("Value(a) = %v, want 4", got)
	}
	cp := asgn.Copy()
	cp.SetValue(a, 9)
	if got := asgn.Value(a); got != 4 {
		t.Errorf("Value(a) = %v after copy mutation, want 4", got)
	}
	if got := cp.Value(b); got != 7 {
		t.Errorf("copy Value(b) = %v, want 7", got)
	}
}

func TestAssignment_Restore(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 10, "a")

	asgn := NewAssignment()
	asgn.SetValue(a, 6)
	if err := asgn.Restore(); err != nil {
		t.Fatalf("Restore() returned %v", err)
	}
	if !a.Bound() || a.Value() != 6 {
		t.Errorf("a = [%v,%v] after restore, want bound to 6", a.Min(), a.Max())
	}

	bad := NewAssignment()
	bad.SetValue(a, 9) // incompatible with the now-bound domain
	if err := bad.Restore(); err != ErrFailed {
		t.Errorf("Restore() of incompatible value = %v, want ErrFailed", err)
	}
}

func TestAssignment_SaveLoadRoundTrip(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 100, "a")
	b := s.NewIntVar(0, 100, "b")

	asgn := NewAssignment()
	asgn.SetValue(b, 42)
	asgn.SetValue(a, 17)
	asgn.SetObjectiveValue(a, 59)

	var buf bytes.Buffer
	if err := asgn.Save(&buf); err != nil {
		t.Fatalf("Save() returned %v", err)
	}
	loaded := NewAssignment()
	if err := loaded.Load(s, &buf); err != nil {
		t.Fatalf("Load() returned %v", err)
	}
	if got := loaded.Value(a); got != 17 {
		t.Errorf("loaded Value(a) = %v, want 17", got)
	}
	if got := loaded.Value(b); got != 42 {
		t.Errorf("loaded Value(b) = %v, want 42", got)
	}
	if obj, ok := loaded.ObjectiveValue(); !ok || obj != 59 {
		t.Errorf("loaded ObjectiveValue() = (%v, %v), want (59, true)", obj, ok)
	}
}

func TestAssignment_FileRoundTrip(t *testing.T) {
	s := NewSolver("test")
	a := s.NewIntVar(0, 100, "a")

	asgn := NewAssignment()
	asgn.SetValue(a, 23)
	path := filepath.Join(t.TempDir(), "assignment.txt")
	if !asgn.WriteFile(path) {
		t.Fatal("WriteFile returned false")
	}
	loaded := NewAssignment()
	if !loaded.ReadFile(s, path) {
		t.Fatal("ReadFile returned false")
	}
	if got := loaded.Value(a); got != 23 {
		t.Errorf("loaded Value(a) = %v, want 23", got)
	}
}

func TestAssignment_ReadMissingFile(t *testing.T) {
	s := NewSolver("test")
	loaded := NewAssignment()
	if loaded.ReadFile(s, filepath.Join(t.TempDir(), "absent.txt")) {
		t.Error("ReadFile of a missing file returned true")
	}
}
