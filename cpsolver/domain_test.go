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

	"github.com/google/go-cmp/cmp"
)

func TestDomain_FromValues(t *testing.T) {
	testCases := []struct {
		name   string
		values []int64
		want   []int64
	}{
		{
			name:   "Contiguous",
			values: []int64{3, 1, 2},
			want:   []int64{1, 3},
		},
		{
			name:   "WithHole",
			values: []int64{0, 2, 3, 7},
			want:   []int64{0, 0, 2, 3, 7, 7},
		},
		{
			name:   "Repeats",
			values: []int64{5, 5, 5},
			want:   []int64{5, 5},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := FromValues(tc.values)
			if diff := cmp.Diff(tc.want, d.FlattenedIntervals()); diff != "" {
				t.Errorf("FromValues(%v) returned unexpected intervals (-want +got):\n%s", tc.values, diff)
			}
		})
	}
}

func TestDomain_Contains(t *testing.T) {
	d := FromIntervals([]ClosedInterval{{0, 2}, {5, 5}, {9, 10}})
	testCases := []struct {
		value int64
		want  bool
	}{
		{0, true}, {2, true}, {3, false}, {5, true}, {6, false}, {9, true}, {11, false},
	}
	for _, tc := range testCases {
		if got := d.Contains(tc.value); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestDomain_RemoveValue(t *testing.T) {
	d := NewDomain(0, 4).RemoveValue(2)
	want := []int64{0, 1, 3, 4}
	if diff := cmp.Diff(want, d.FlattenedIntervals()); diff != "" {
		t.Errorf("RemoveValue(2) returned unexpected intervals (-want +got):\n%s", diff)
	}
	if got := d.Size(); got != 4 {
		t.Errorf("Size() = %v, want 4", got)
	}
}

func TestDomain_IntersectionWith(t *testing.T) {
	a := FromIntervals([]ClosedInterval{{0, 5}, {8, 12}})
	b := FromIntervals([]ClosedInterval{{3, 9}})
	got := a.IntersectionWith(b)
	want := []int64{3, 5, 8, 9}
	if diff := cmp.Diff(want, got.FlattenedIntervals()); diff != "" {
		t.Errorf("IntersectionWith returned unexpected intervals (-want +got):\n%s", diff)
	}
}

func TestDomain_ValueAtOrAfter(t *testing.T) {
	d := FromIntervals([]ClosedInterval{{0, 2}, {6, 8}})
	testCases := []struct {
		value int64
		want  int64
		ok    bool
	}{
		{-1, 0, true}, {1, 1, true}, {3, 6, true}, {8, 8, true}, {9, 0, false},
	}
	for _, tc := range testCases {
		got, ok := d.ValueAtOrAfter(tc.value)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ValueAtOrAfter(%v) = (%v, %v), want (%v, %v)", tc.value, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDomain_MinMax(t *testing.T) {
	d := FromValues([]int64{4, 7, 2})
	if min, ok := d.Min(); !ok || min != 2 {
		t.Errorf("Min() = (%v, %v), want (2, true)", min, ok)
	}
	if max, ok := d.Max(); !ok || max != 7 {
		t.Errorf("Max() = (%v, %v), want (7, true)", max, ok)
	}
	empty := NewEmptyDomain()
	if _, ok := empty.Min(); ok {
		t.Error("Min() on empty domain reported a value")
	}
}
