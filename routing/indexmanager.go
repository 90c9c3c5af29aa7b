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
	"fmt"
)

// NodeIndex identifies a problem node as supplied by the user.
type NodeIndex int

// IndexManager maintains the bijection between problem nodes and model
// variable indices. Each vehicle owns a private copy of its start and end
// node, so a node shared as depot by several vehicles maps to several indices.
//
// Index layout: visit nodes first, then the vehicle starts, then the vehicle
// ends. Indices below NumIndices()-NumVehicles() are "next" indices; the tail
// holds the per-vehicle end indices.
type IndexManager struct {
	numNodes    int
	numVehicles int
	starts      []NodeIndex
	ends        []NodeIndex

	indexToNode []NodeIndex
	nodeToIndex []int // index of a visit node, -1 for start/end nodes
	vehicleStarts []int
	vehicleEnds   []int
	numIndices  int
}

// NewIndexManager creates a manager for a single-depot fleet: every vehicle
// starts and ends at `depot`.
func NewIndexManager(numNodes, numVehicles int, depot NodeIndex) (*IndexManager, error) {
	starts := make([]NodeIndex, numVehicles)
	ends := make([]NodeIndex, numVehicles)
	for v := 0; v < numVehicles; v++ {
		starts[v] = depot
		ends[v] = depot
	}
	return NewIndexManagerStartsEnds(numNodes, numVehicles, starts, ends)
}

// NewIndexManagerStartsEnds creates a manager with per-vehicle start and end
// nodes.
func NewIndexManagerStartsEnds(numNodes, numVehicles int, starts, ends []NodeIndex) (*IndexManager, error) {
	if numNodes <= 0 || numVehicles <= 0 {
		return nil, fmt.Errorf("numNodes=%v and numVehicles=%v must be positive", numNodes, numVehicles)
	}
	if len(starts) != numVehicles || len(ends) != numVehicles {
		return nil, fmt.Errorf("starts and ends must have %v entries, got %v and %v", numVehicles, len(starts), len(ends))
	}
	terminal := make(map[NodeIndex]bool)
	for v := 0; v < numVehicles; v++ {
		for _, n := range []NodeIndex{starts[v], ends[v]} {
			if n < 0 || int(n) >= numNodes {
				return nil, fmt.Errorf("vehicle %v terminal node %v out of range [0,%v)", v, n, numNodes)
			}
			terminal[n] = true
		}
	}

	m := &IndexManager{
		numNodes:    numNodes,
		numVehicles: numVehicles,
		starts:      append([]NodeIndex(nil), starts...),
		ends:        append([]NodeIndex(nil), ends...),
		nodeToIndex: make([]int, numNodes),
		vehicleStarts: make([]int, numVehicles),
		vehicleEnds:   make([]int, numVehicles),
	}
	for n := range m.nodeToIndex {
		m.nodeToIndex[n] = -1
	}
	// Visit nodes first.
	for n := 0; n < numNodes; n++ {
		if terminal[NodeIndex(n)] {
			continue
		}
		m.nodeToIndex[n] = len(m.indexToNode)
		m.indexToNode = append(m.indexToNode, NodeIndex(n))
	}
	// Then one start index per vehicle, then one end index per vehicle.
	for v := 0; v < numVehicles; v++ {
		m.vehicleStarts[v] = len(m.indexToNode)
		m.indexToNode = append(m.indexToNode, starts[v])
	}
	for v := 0; v < numVehicles; v++ {
		m.vehicleEnds[v] = len(m.indexToNode)
		m.indexToNode = append(m.indexToNode, ends[v])
	}
	m.numIndices = len(m.indexToNode)
	return m, nil
}

// NumNodes returns the number of problem nodes.
func (m *IndexManager) NumNodes() int { return m.numNodes }

// NumVehicles returns the number of vehicles.
func (m *IndexManager) NumVehicles() int { return m.numVehicles }

// NumIndices returns the total size of the index universe.
func (m *IndexManager) NumIndices() int { return m.numIndices }

// NumUniqueIndices returns the number of "next" indices, i.e. NumIndices minus
// the vehicle ends.
func (m *IndexManager) NumUniqueIndices() int { return m.numIndices - m.numVehicles }

// NodeToIndex returns the variable index of a visit node. Start or end nodes
// have no unique index; use VehicleStart/VehicleEnd for those.
func (m *IndexManager) NodeToIndex(node NodeIndex) (int, error) {
	if node < 0 || int(node) >= m.numNodes {
		return 0, fmt.Errorf("node %v out of range [0,%v)", node, m.numNodes)
	}
	i := m.nodeToIndex[node]
	if i < 0 {
		return 0, fmt.Errorf("node %v is a vehicle terminal; it has one index per vehicle", node)
	}
	return i, nil
}

// NodesToIndices converts a slice of visit nodes.
func (m *IndexManager) NodesToIndices(nodes []NodeIndex) ([]int, error) {
	indices := make([]int, len(nodes))
	for i, n := range nodes {
		idx, err := m.NodeToIndex(n)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return indices, nil
}

// IndexToNode returns the problem node behind a variable index.
func (m *IndexManager) IndexToNode(index int) NodeIndex {
	return m.indexToNode[index]
}

// VehicleStart returns the start index of the vehicle.
func (m *IndexManager) VehicleStart(vehicle int) int { return m.vehicleStarts[vehicle] }

// VehicleEnd returns the end index of the vehicle.
func (m *IndexManager) VehicleEnd(vehicle int) int { return m.vehicleEnds[vehicle] }

// StartNode returns the start node of the vehicle.
func (m *IndexManager) StartNode(vehicle int) NodeIndex { return m.starts[vehicle] }

// EndNode returns the end node of the vehicle.
func (m *IndexManager) EndNode(vehicle int) NodeIndex { return m.ends[vehicle] }
