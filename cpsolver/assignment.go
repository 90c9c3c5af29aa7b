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
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/golang/glog"
)

// IntVarElement is the recorded value range of one integer variable inside an
// Assignment. The element represents a fixed value when Min == Max.
type IntVarElement struct {
	Var *IntVar
	Min int64
	Max int64
}

// Bound returns true if the element holds a single value.
func (e *IntVarElement) Bound() bool { return e.Min == e.Max }

// IntervalVarElement is the recorded state of one interval variable inside an
// Assignment.
type IntervalVarElement struct {
	Var       *IntervalVar
	StartMin  int64
	StartMax  int64
	Duration  int64
	Performed bool
}

// Assignment is a container of variable/value bindings. It is used both for
// full solutions and for candidate deltas handed to local-search filters.
type Assignment struct {
	elements         []IntVarElement
	index            map[*IntVar]int
	intervalElements []IntervalVarElement
	intervalIndex    map[*IntervalVar]int
	objective        *IntVar
	objectiveValue   int64
	hasObjective     bool
}

// NewAssignment returns an empty assignment.
func NewAssignment() *Assignment {
	return &Assignment{
		index:         make(map[*IntVar]int),
		intervalIndex: make(map[*IntervalVar]int),
	}
}

// Clear removes every element from the assignment.
func (a *Assignment) Clear() {
	a.elements = a.elements[:0]
	a.intervalElements = a.intervalElements[:0]
	a.index = make(map[*IntVar]int)
	a.intervalIndex = make(map[*IntervalVar]int)
	a.hasObjective = false
}

// Size returns the number of integer elements in the assignment.
func (a *Assignment) Size() int { return len(a.elements) }

// Empty returns true if the assignment holds no element.
func (a *Assignment) Empty() bool {
	return len(a.elements) == 0 && len(a.intervalElements) == 0
}

// Add adds the variable to the assignment with its current domain bounds and
// returns its element. Adding a variable twice returns the existing element.
func (a *Assignment) Add(v *IntVar) *IntVarElement {
	if i, ok := a.index[v]; ok {
		return &a.elements[i]
	}
	a.index[v] = len(a.elements)
	a.elements = append(a.elements, IntVarElement{Var: v, Min: v.Min(), Max: v.Max()})
	return &a.elements[len(a.elements)-1]
}

// AddInterval adds the interval variable with its current state.
func (a *Assignment) AddInterval(v *IntervalVar) *IntervalVarElement {
	if i, ok := a.intervalIndex[v]; ok {
		return &a.intervalElements[i]
	}
	a.intervalIndex[v] = len(a.intervalElements)
	a.intervalElements = append(a.intervalElements, IntervalVarElement{
		Var:       v,
		StartMin:  v.StartMin(),
		StartMax:  v.StartMax(),
		Duration:  v.DurationMin(),
		Performed: v.MustBePerformed(),
	})
	return &a.intervalElements[len(a.intervalElements)-1]
}

// Contains returns true if the variable has an element in the assignment.
func (a *Assignment) Contains(v *IntVar) bool {
	_, ok := a.index[v]
	return ok
}

// SetValue binds the variable to `val` inside the assignment, adding it first
// if needed.
func (a *Assignment) SetValue(v *IntVar, val int64) {
	e := a.Add(v)
	e.Min, e.Max = val, val
}

// Value returns the value recorded for the variable.
func (a *Assignment) Value(v *IntVar) int64 {
	i, ok := a.index[v]
	if !ok {
		log.Fatalf("Value() on variable %q absent from assignment", v.Name())
	}
	e := &a.elements[i]
	if !e.Bound() {
		log.Fatalf("Value() on unbound element of %q", v.Name())
	}
	return e.Min
}

// Bound returns true if the variable is present and bound in the assignment.
func (a *Assignment) Bound(v *IntVar) bool {
	i, ok := a.index[v]
	return ok && a.elements[i].Bound()
}

// Element returns the element of the variable, or nil if absent.
func (a *Assignment) Element(v *IntVar) *IntVarElement {
	if i, ok := a.index[v]; ok {
		return &a.elements[i]
	}
	return nil
}

// IntervalElement returns the element of the interval variable, or nil if absent.
func (a *Assignment) IntervalElement(v *IntervalVar) *IntervalVarElement {
	if i, ok := a.intervalIndex[v]; ok {
		return &a.intervalElements[i]
	}
	return nil
}

// Elements returns the integer elements in insertion order. The returned slice
// aliases the assignment.
func (a *Assignment) Elements() []IntVarElement { return a.elements }

// IntervalElements returns the interval elements in insertion order.
func (a *Assignment) IntervalElements() []IntervalVarElement { return a.intervalElements }

// SetObjectiveValue records the objective variable value.
func (a *Assignment) SetObjectiveValue(obj *IntVar, value int64) {
	a.objective = obj
	a.objectiveValue = value
	a.hasObjective = true
}

// ObjectiveValue returns the recorded objective value and whether one was set.
func (a *Assignment) ObjectiveValue() (int64, bool) {
	return a.objectiveValue, a.hasObjective
}

// Copy returns a deep copy of the assignment.
func (a *Assignment) Copy() *Assignment {
	c := NewAssignment()
	c.elements = append([]IntVarElement(nil), a.elements...)
	for i, e := range c.elements {
		c.index[e.Var] = i
	}
	c.intervalElements = append([]IntervalVarElement(nil), a.intervalElements...)
	for i, e := range c.intervalElements {
		c.intervalIndex[e.Var] = i
	}
	c.objective = a.objective
	c.objectiveValue = a.objectiveValue
	c.hasObjective = a.hasObjective
	return c
}

// CopyIntersection overwrites the elements of `a` that also appear in `other`
// with the values from `other`.
func (a *Assignment) CopyIntersection(other *Assignment) {
	for _, e := range other.elements {
		if i, ok := a.index[e.Var]; ok {
			a.elements[i].Min = e.Min
			a.elements[i].Max = e.Max
		}
	}
}

// Merge copies every element of `other` into `a`, adding missing variables.
func (a *Assignment) Merge(other *Assignment) {
	for _, e := range other.elements {
		el := a.Add(e.Var)
		el.Min, el.Max = e.Min, e.Max
	}
	for _, e := range other.intervalElements {
		el := a.AddInterval(e.Var)
		*el = e
	}
}

// Restore writes the recorded bounds back into the variables. Returns ErrFailed
// if a recorded range is incompatible with a current domain.
func (a *Assignment) Restore() error {
	for _, e := range a.elements {
		if err := e.Var.SetRange(e.Min, e.Max); err != nil {
			return err
		}
	}
	for _, e := range a.intervalElements {
		v := e.Var
		if !e.Performed {
			if err := v.SetPerformed(false); err != nil {
				return err
			}
			continue
		}
		if err := v.SetPerformed(true); err != nil {
			return err
		}
		if err := v.SetStartMin(e.StartMin); err != nil {
			return err
		}
		if err := v.SetStartMax(e.StartMax); err != nil {
			return err
		}
	}
	return nil
}

// Save serializes the assignment as a sequence of (variable-index, value)
// tuples, one per line, sorted by variable index, followed by the objective
// value if one is set.
func (a *Assignment) Save(w io.Writer) error {
	sorted := append([]IntVarElement(nil), a.elements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Var.Index() < sorted[j].Var.Index() })
	bw := bufio.NewWriter(w)
	for _, e := range sorted {
		if _, err := fmt.Fprintf(bw, "%d %d\n", e.Var.Index(), e.Min); err != nil {
			return err
		}
	}
	if a.hasObjective {
		if _, err := fmt.Fprintf(bw, "objective %d\n", a.objectiveValue); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads the serialized form produced by Save, resolving variable indices
// on the given solver.
func (a *Assignment) Load(s *Solver, r io.Reader) error {
	a.Clear()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var value int64
		if _, err := fmt.Sscanf(line, "objective %d", &value); err == nil {
			a.objectiveValue = value
			a.hasObjective = true
			continue
		}
		var index int
		if _, err := fmt.Sscanf(line, "%d %d", &index, &value); err != nil {
			return fmt.Errorf("malformed assignment line %q: %w", line, err)
		}
		if index < 0 || index >= s.NumIntVars() {
			return fmt.Errorf("assignment references unknown variable index %d", index)
		}
		a.SetValue(s.IntVarByIndex(index), value)
	}
	return scanner.Err()
}

// WriteFile saves the assignment to the named file. Returns false on any file
// or encoding error.
func (a *Assignment) WriteFile(path string) bool {
	f, err := os.Create(path)
	if err != nil {
		log.Errorf("cannot create assignment file %q: %v", path, err)
		return false
	}
	defer f.Close()
	if err := a.Save(f); err != nil {
		log.Errorf("cannot write assignment file %q: %v", path, err)
		return false
	}
	return true
}

// ReadFile loads the assignment from the named file. Returns false on any file
// or decoding error.
func (a *Assignment) ReadFile(s *Solver, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("cannot open assignment file %q: %v", path, err)
		return false
	}
	defer f.Close()
	if err := a.Load(s, f); err != nil {
		log.Errorf("cannot read assignment file %q: %v", path, err)
		return false
	}
	return true
}
