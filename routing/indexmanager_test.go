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

func TestIndexManager_SingleDepot(t *testing.T) {
	m, err := NewIndexManager(5, 2, 0)
	if err != nil {
		t.Fatalf("NewIndexManager returned %v", err)
	}
	// 4 visit nodes + 2 starts + 2 ends.
	if got, want := m.NumIndices(), 8; got != want {
		t.Errorf("NumIndices() = %v, want %v", got, want)
	}
	if got, want := m.NumUniqueIndices(), 6; got != want {
		t.Errorf("NumUniqueIndices() = %v, want %v", got, want)
	}
	for v := 0; v < 2; v++ {
		if got := m.IndexToNode(m.VehicleStart(v)); got != 0 {
			t.Errorf("IndexToNode(VehicleStart(%v)) = %v, want 0", v, got)
		}
		if got := m.IndexToNode(m.VehicleEnd(v)); got != 0 {
			t.Errorf("IndexToNode(VehicleEnd(%v)) = %v, want 0", v, got)
		}
	}
}

func TestIndexManager_Bijection(t *testing.T) {
	m, err := NewIndexManager(6, 2, 0)
	if err != nil {
		t.Fatalf("NewIndexManager returned %v", err)
	}
	for node := NodeIndex(1); node < 6; node++ {
		idx, err := m.NodeToIndex(node)
		if err != nil {
			t.Fatalf("NodeToIndex(%v) returned %v", node, err)
		}
		if got := m.IndexToNode(idx); got != node {
			t.Errorf("IndexToNode(NodeToIndex(%v)) = %v, want %v", node, got, node)
		}
	}
	if _, err := m.NodeToIndex(0); err == nil {
		t.Error("NodeToIndex(depot) = nil error, want error (one index per vehicle)")
	}
	if _, err := m.NodeToIndex(6); err == nil {
		t.Error("NodeToIndex(6) = nil error, want out-of-range error")
	}
}

func TestIndexManager_StartsEnds(t *testing.T) {
	starts := []NodeIndex{0, 1}
	ends := []NodeIndex{2, 2}
	m, err := NewIndexManagerStartsEnds(6, 2, starts, ends)
	if err != nil {
		t.Fatalf("NewIndexManagerStartsEnds returned %v", err)
	}
	// Universe: nodes + 2*vehicles - physical terminals = 6 + 4 - 3.
	if got, want := m.NumIndices(), 7; got != want {
		t.Errorf("NumIndices() = %v, want %v", got, want)
	}
	if got := m.IndexToNode(m.VehicleStart(1)); got != 1 {
		t.Errorf("IndexToNode(VehicleStart(1)) = %v, want 1", got)
	}
	if got := m.IndexToNode(m.VehicleEnd(0)); got != 2 {
		t.Errorf("IndexToNode(VehicleEnd(0)) = %v, want 2", got)
	}
}

func TestIndexManager_Validation(t *testing.T) {
	if _, err := NewIndexManager(0, 1, 0); err == nil {
		t.Error("NewIndexManager(0, 1, 0) = nil error, want error")
	}
	if _, err := NewIndexManagerStartsEnds(3, 1, []NodeIndex{5}, []NodeIndex{0}); err == nil {
		t.Error("out-of-range start accepted, want error")
	}
	if _, err := NewIndexManagerStartsEnds(3, 2, []NodeIndex{0}, []NodeIndex{0}); err == nil {
		t.Error("short starts slice accepted, want error")
	}
}
