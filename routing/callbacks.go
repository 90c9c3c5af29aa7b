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
	log "github.com/golang/glog"
)

// CallbackIndex is the stable id returned by callback registration.
type CallbackIndex int

// NoCallback is the id of the absent callback.
const NoCallback CallbackIndex = -1

// TransitCallback evaluates the transit of the arc from->to.
type TransitCallback func(from, to int) int64

// UnaryTransitCallback evaluates a transit depending on the source index only.
type UnaryTransitCallback func(from int) int64

// RangeFunction maps a parent cumul value to a dependent transit.
type RangeFunction func(x int64) int64

// StateDependentTransit is the pair of functions produced by a state-dependent
// callback: the transit as a function of the parent cumul, and the same
// function with the identity added, i.e. TransitPlusIdentity(x) = Transit(x)+x.
type StateDependentTransit struct {
	Transit           RangeFunction
	TransitPlusIdentity RangeFunction
}

// StateDependentTransitCallback evaluates a state-dependent transit for an arc.
type StateDependentTransitCallback func(from, to int) StateDependentTransit

type pairKey struct{ from, to int }

// callbackRegistry owns the registered transit callbacks and their
// memoization caches. Registration is an open-phase operation; caches are
// filled lazily during search and are read-mostly from then on.
type callbackRegistry struct {
	unary  []UnaryTransitCallback
	binary []TransitCallback
	// binaryCaches[i] memoizes binary callback i per arc.
	binaryCaches []map[pairKey]int64
	stateDependent []StateDependentTransitCallback
	stateDependentCaches []map[pairKey]StateDependentTransit
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{}
}

// registerTransit registers a binary transit callback and returns its id.
func (r *callbackRegistry) registerTransit(cb TransitCallback) CallbackIndex {
	r.binary = append(r.binary, cb)
	r.binaryCaches = append(r.binaryCaches, nil)
	return CallbackIndex(len(r.binary) - 1)
}

// registerUnaryTransit registers a unary transit callback and returns its id.
// The id lives in the same space as binary callbacks: the unary callback is
// also registered as its binary lifting.
func (r *callbackRegistry) registerUnaryTransit(cb UnaryTransitCallback) CallbackIndex {
	r.unary = append(r.unary, cb)
	return r.registerTransit(func(from, _ int) int64 { return cb(from) })
}

// registerStateDependentTransit registers a state-dependent callback.
// State-dependent ids live in their own space.
func (r *callbackRegistry) registerStateDependentTransit(cb StateDependentTransitCallback) CallbackIndex {
	r.stateDependent = append(r.stateDependent, cb)
	r.stateDependentCaches = append(r.stateDependentCaches, nil)
	return CallbackIndex(len(r.stateDependent) - 1)
}

// transit evaluates binary callback `id` on the arc, memoizing per pair.
func (r *callbackRegistry) transit(id CallbackIndex, from, to int) int64 {
	if id < 0 || int(id) >= len(r.binary) {
		log.Fatalf("transit callback %v not registered", id)
	}
	cache := r.binaryCaches[id]
	if cache == nil {
		cache = make(map[pairKey]int64)
		r.binaryCaches[id] = cache
	}
	k := pairKey{from, to}
	if v, ok := cache[k]; ok {
		return v
	}
	v := r.binary[id](from, to)
	cache[k] = v
	return v
}

// stateDependentTransit evaluates state-dependent callback `id` on the arc,
// memoizing the function pair per arc.
func (r *callbackRegistry) stateDependentTransit(id CallbackIndex, from, to int) StateDependentTransit {
	if id < 0 || int(id) >= len(r.stateDependent) {
		log.Fatalf("state-dependent transit callback %v not registered", id)
	}
	cache := r.stateDependentCaches[id]
	if cache == nil {
		cache = make(map[pairKey]StateDependentTransit)
		r.stateDependentCaches[id] = cache
	}
	k := pairKey{from, to}
	if v, ok := cache[k]; ok {
		return v
	}
	v := r.stateDependent[id](from, to)
	cache[k] = v
	return v
}

// MakeStateDependentTransit materializes a range function over the bounded
// domain `[min,max]` into a lookup table so repeated queries during local
// search cost O(1).
func MakeStateDependentTransit(f RangeFunction, min, max int64) StateDependentTransit {
	values := make([]int64, max-min+1)
	for x := min; x <= max; x++ {
		values[x-min] = f(x)
	}
	lookup := func(x int64) int64 {
		if x < min {
			x = min
		} else if x > max {
			x = max
		}
		return values[x-min]
	}
	return StateDependentTransit{
		Transit:           lookup,
		TransitPlusIdentity: func(x int64) int64 { return lookup(x) + x },
	}
}
