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
	log "github.com/golang/glog"
)

// IntVar is an integer variable owned by a Solver. Domain reductions are
// trailed and undone on backtrack. All reduction methods return ErrFailed when
// they would empty the domain.
type IntVar struct {
	s      *Solver
	index  int
	name   string
	dom    Domain
	demons []Demon
}

// Name returns the name of the variable.
func (v *IntVar) Name() string { return v.name }

// Index returns the creation index of the variable on its solver. Indices are
// dense and stable; they key serialized assignments.
func (v *IntVar) Index() int { return v.index }

// Solver returns the owning solver.
func (v *IntVar) Solver() *Solver { return v.s }

// Min returns the smallest value of the current domain.
func (v *IntVar) Min() int64 {
	m, ok := v.dom.Min()
	if !ok {
		log.Fatalf("Min() on empty domain of %q", v.name)
	}
	return m
}

// Max returns the largest value of the current domain.
func (v *IntVar) Max() int64 {
	m, ok := v.dom.Max()
	if !ok {
		log.Fatalf("Max() on empty domain of %q", v.name)
	}
	return m
}

// Bound returns true if the domain is a singleton.
func (v *IntVar) Bound() bool {
	return v.dom.Size() == 1
}

// Value returns the value of a bound variable.
func (v *IntVar) Value() int64 {
	if !v.Bound() {
		log.Fatalf("Value() on unbound variable %q", v.name)
	}
	return v.Min()
}

// Contains returns true if `val` is in the current domain.
func (v *IntVar) Contains(val int64) bool {
	return v.dom.Contains(val)
}

// Domain returns a copy of the current domain.
func (v *IntVar) Domain() Domain { return v.dom }

// Size returns the number of values in the current domain.
func (v *IntVar) Size() int64 { return v.dom.Size() }

// WhenDomain attaches a demon run whenever the domain of the variable changes.
func (v *IntVar) WhenDomain(d Demon) {
	v.demons = append(v.demons, d)
}

func (v *IntVar) setDomain(d Domain) error {
	if d.IsEmpty() {
		return ErrFailed
	}
	if d.Size() == v.dom.Size() {
		// Same cardinality within the old domain means no change.
		oldMin, _ := v.dom.Min()
		newMin, _ := d.Min()
		oldMax, _ := v.dom.Max()
		newMax, _ := d.Max()
		if oldMin == newMin && oldMax == newMax && len(d.intervals) == len(v.dom.intervals) {
			return nil
		}
	}
	v.s.trail = append(v.s.trail, trailEntry{v, v.dom})
	v.dom = d
	v.s.enqueue(v.demons)
	return nil
}

// SetMin raises the lower bound of the variable to `m`.
func (v *IntVar) SetMin(m int64) error {
	if m <= v.Min() {
		return nil
	}
	return v.setDomain(v.dom.IntersectionWith(NewDomain(m, v.Max())))
}

// SetMax lowers the upper bound of the variable to `m`.
func (v *IntVar) SetMax(m int64) error {
	if m >= v.Max() {
		return nil
	}
	return v.setDomain(v.dom.IntersectionWith(NewDomain(v.Min(), m)))
}

// SetRange intersects the domain with `[lo,hi]`.
func (v *IntVar) SetRange(lo, hi int64) error {
	if lo <= v.Min() && hi >= v.Max() {
		return nil
	}
	return v.setDomain(v.dom.IntersectionWith(NewDomain(lo, hi)))
}

// SetValue binds the variable to `val`.
func (v *IntVar) SetValue(val int64) error {
	if !v.dom.Contains(val) {
		return ErrFailed
	}
	if v.Bound() {
		return nil
	}
	return v.setDomain(NewSingleDomain(val))
}

// RemoveValue removes `val` from the domain.
func (v *IntVar) RemoveValue(val int64) error {
	if !v.dom.Contains(val) {
		return nil
	}
	return v.setDomain(v.dom.RemoveValue(val))
}

// SetDomain intersects the current domain with `d`.
func (v *IntVar) SetDomain(d Domain) error {
	return v.setDomain(v.dom.IntersectionWith(d))
}
