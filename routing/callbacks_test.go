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

func TestCallbackRegistry_StableIDs(t *testing.T) {
	r := newCallbackRegistry()
	a := r.registerTransit(func(from, to int) int64 { return 1 })
	b := r.registerTransit(func(from, to int) int64 { return 2 })
	if a == b {
		t.Errorf("two registrations share id %v", a)
	}
	if got := r.transit(a, 0, 1); got != 1 {
		t.Errorf("transit(a) = %v, want 1", got)
	}
	if got := r.transit(b, 0, 1); got != 2 {
		t.Errorf("transit(b) = %v, want 2", got)
	}
}

func TestCallbackRegistry_MemoizesPerPair(t *testing.T) {
	r := newCallbackRegistry()
	calls := 0
	id := r.registerTransit(func(from, to int) int64 {
		calls++
		return int64(from*10 + to)
	})
	for i := 0; i < 3; i++ {
		if got := r.transit(id, 2, 5); got != 25 {
			t.Errorf("transit(2,5) = %v, want 25", got)
		}
	}
	if calls != 1 {
		t.Errorf("callback invoked %v times for one pair, want 1", calls)
	}
	r.transit(id, 5, 2)
	if calls != 2 {
		t.Errorf("callback invoked %v times for two pairs, want 2", calls)
	}
}

func TestCallbackRegistry_UnaryLifting(t *testing.T) {
	r := newCallbackRegistry()
	id := r.registerUnaryTransit(func(from int) int64 { return int64(from * 2) })
	if got := r.transit(id, 3, 9); got != 6 {
		t.Errorf("transit(3, 9) = %v, want source-only value 6", got)
	}
}

func TestCallbackRegistry_StateDependentCaching(t *testing.T) {
	r := newCallbackRegistry()
	calls := 0
	id := r.registerStateDependentTransit(func(from, to int) StateDependentTransit {
		calls++
		return MakeStateDependentTransit(func(x int64) int64 { return x / 2 }, 0, 10)
	})
	first := r.stateDependentTransit(id, 1, 2)
	second := r.stateDependentTransit(id, 1, 2)
	if calls != 1 {
		t.Errorf("state-dependent callback invoked %v times for one pair, want 1", calls)
	}
	if got, want := first.Transit(8), int64(4); got != want {
		t.Errorf("Transit(8) = %v, want %v", got, want)
	}
	if got, want := second.TransitPlusIdentity(8), int64(12); got != want {
		t.Errorf("TransitPlusIdentity(8) = %v, want %v", got, want)
	}
}

func TestMakeStateDependentTransit_Clamps(t *testing.T) {
	sd := MakeStateDependentTransit(func(x int64) int64 { return 3 * x }, 2, 4)
	if got, want := sd.Transit(0), int64(6); got != want {
		t.Errorf("Transit(0) = %v, want clamped %v", got, want)
	}
	if got, want := sd.Transit(9), int64(12); got != want {
		t.Errorf("Transit(9) = %v, want clamped %v", got, want)
	}
}
