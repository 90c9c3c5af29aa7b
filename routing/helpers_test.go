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

	"github.com/opsolve/routing/cpsolver"
)

type point struct{ x, y int64 }

func manhattan(a, b point) int64 {
	dx, dy := a.x-b.x, a.y-b.y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// manhattanMatrix builds the node-to-node cost matrix of the points.
func manhattanMatrix(points []point) [][]int64 {
	n := len(points)
	matrix := make([][]int64, n)
	for i := range matrix {
		matrix[i] = make([]int64, n)
		for j := range matrix[i] {
			matrix[i][j] = manhattan(points[i], points[j])
		}
	}
	return matrix
}

// newTestModel builds a model over numNodes nodes and numVehicles vehicles
// with depot 0.
func newTestModel(t *testing.T, numNodes, numVehicles int) (*Model, *IndexManager) {
	t.Helper()
	manager, err := NewIndexManager(numNodes, numVehicles, 0)
	if err != nil {
		t.Fatalf("NewIndexManager(%v, %v, 0) returned %v", numNodes, numVehicles, err)
	}
	return NewModel(manager), manager
}

// solvedRoutes extracts the node sequences of an assignment, one per vehicle,
// without terminals.
func solvedRoutes(t *testing.T, m *Model, a *cpsolver.Assignment) [][]NodeIndex {
	t.Helper()
	routes, err := m.AssignmentToRoutes(a)
	if err != nil {
		t.Fatalf("AssignmentToRoutes returned %v", err)
	}
	nodeRoutes := make([][]NodeIndex, len(routes))
	for v, route := range routes {
		for _, i := range route {
			nodeRoutes[v] = append(nodeRoutes[v], m.Manager().IndexToNode(i))
		}
	}
	return nodeRoutes
}

// servedNodes returns the set of nodes served over all routes.
func servedNodes(routes [][]NodeIndex) map[NodeIndex]bool {
	served := make(map[NodeIndex]bool)
	for _, route := range routes {
		for _, n := range route {
			served[n] = true
		}
	}
	return served
}
