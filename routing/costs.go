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
	"sort"

	log "github.com/golang/glog"
)

// DimensionCost is the per-dimension component of a cost class: the transit
// evaluator class and span cost coefficient of a dimension with nonzero span
// cost.
type DimensionCost struct {
	Dimension             DimensionIndex
	TransitEvaluatorClass int
	SpanCostCoefficient   int64
}

// CostClass is the equivalence class of vehicles sharing an arc cost
// evaluator and span-cost structure. Fixed cost is deliberately not part of
// the class: it does not influence arc costs.
type CostClass struct {
	EvaluatorIndex CallbackIndex
	DimensionCosts []DimensionCost
}

// VehicleClass refines CostClass with everything that affects route
// feasibility: fixed cost, terminals, per-dimension capacities and bounds,
// and the set of indices the vehicle cannot visit.
type VehicleClass struct {
	CostClass        CostClassIndex
	FixedCost        int64
	StartNode        NodeIndex
	EndNode          NodeIndex
	dimensionKey     string
	unvisitableKey   string
}

type costCacheElement struct {
	toIndex   int
	costClass CostClassIndex
	cost      int64
}

func (m *Model) computeCostClasses() {
	m.costClasses = m.costClasses[:0]
	m.costClassOfVehicle = make([]CostClassIndex, m.vehicles)
	classOfKey := make(map[string]CostClassIndex)
	for v := 0; v < m.vehicles; v++ {
		var dimCosts []DimensionCost
		for _, d := range m.dimensions {
			if coef := d.vehicleSpanCostCoefficients[v]; coef > 0 {
				dimCosts = append(dimCosts, DimensionCost{
					Dimension:             d.index,
					TransitEvaluatorClass: d.vehicleToClass[v],
					SpanCostCoefficient:   coef,
				})
			}
		}
		sort.Slice(dimCosts, func(i, j int) bool {
			if dimCosts[i].Dimension != dimCosts[j].Dimension {
				return dimCosts[i].Dimension < dimCosts[j].Dimension
			}
			if dimCosts[i].TransitEvaluatorClass != dimCosts[j].TransitEvaluatorClass {
				return dimCosts[i].TransitEvaluatorClass < dimCosts[j].TransitEvaluatorClass
			}
			return dimCosts[i].SpanCostCoefficient < dimCosts[j].SpanCostCoefficient
		})
		key := fmt.Sprintf("%d|%v", m.arcCostEvaluators[v], dimCosts)
		c, ok := classOfKey[key]
		if !ok {
			c = CostClassIndex(len(m.costClasses))
			classOfKey[key] = c
			m.costClasses = append(m.costClasses, CostClass{
				EvaluatorIndex: m.arcCostEvaluators[v],
				DimensionCosts: dimCosts,
			})
		}
		m.costClassOfVehicle[v] = c
	}

	m.costsHomogeneous = len(m.costClasses) == 1
	for v := 1; v < m.vehicles && m.costsHomogeneous; v++ {
		if m.fixedCosts[v] != m.fixedCosts[0] {
			m.costsHomogeneous = false
		}
	}
}

func (m *Model) computeVehicleClasses() {
	m.vehicleClasses = m.vehicleClasses[:0]
	m.vehicleClassOfVehicle = make([]VehicleClassIndex, m.vehicles)
	classOfKey := make(map[string]VehicleClassIndex)
	for v := 0; v < m.vehicles; v++ {
		dimKey := ""
		for _, d := range m.dimensions {
			startCumul := d.cumuls[m.starts[v]]
			endCumul := d.cumuls[m.ends[v]]
			dimKey += fmt.Sprintf("%s:%d:%d:[%d,%d][%d,%d];",
				d.name, d.vehicleCapacities[v], d.vehicleToClass[v],
				startCumul.Min(), startCumul.Max(), endCumul.Min(), endCumul.Max())
		}
		unvisitable := ""
		for i := 0; i < m.size; i++ {
			if m.IsStart(i) {
				continue
			}
			if allowed := m.allowedVehicles[i]; allowed != nil && !allowed[v] {
				unvisitable += fmt.Sprintf("%d,", i)
			}
		}
		vc := VehicleClass{
			CostClass:      m.costClassOfVehicle[v],
			FixedCost:      m.fixedCosts[v],
			StartNode:      m.manager.StartNode(v),
			EndNode:        m.manager.EndNode(v),
			dimensionKey:   dimKey,
			unvisitableKey: unvisitable,
		}
		key := fmt.Sprintf("%d|%d|%d|%d|%s|%s", vc.CostClass, vc.FixedCost, vc.StartNode, vc.EndNode, dimKey, unvisitable)
		c, ok := classOfKey[key]
		if !ok {
			c = VehicleClassIndex(len(m.vehicleClasses))
			classOfKey[key] = c
			m.vehicleClasses = append(m.vehicleClasses, vc)
		}
		m.vehicleClassOfVehicle[v] = c
	}
}

// CostClasses returns the number of cost classes. Valid after CloseModel.
func (m *Model) CostClasses() int { return len(m.costClasses) }

// VehicleClasses returns the number of vehicle classes. Valid after CloseModel.
func (m *Model) VehicleClasses() int { return len(m.vehicleClasses) }

// GetCostClassOfVehicle returns the cost class of the vehicle.
func (m *Model) GetCostClassOfVehicle(vehicle int) CostClassIndex {
	m.requireClosed("GetCostClassOfVehicle")
	return m.costClassOfVehicle[vehicle]
}

// GetVehicleClassOfVehicle returns the vehicle class of the vehicle.
func (m *Model) GetVehicleClassOfVehicle(vehicle int) VehicleClassIndex {
	m.requireClosed("GetVehicleClassOfVehicle")
	return m.vehicleClassOfVehicle[vehicle]
}

// CostsAreHomogeneousAcrossVehicles returns true if every vehicle shares one
// cost class and fixed cost. Valid after CloseModel.
func (m *Model) CostsAreHomogeneousAcrossVehicles() bool {
	m.requireClosed("CostsAreHomogeneousAcrossVehicles")
	return m.costsHomogeneous
}

func (m *Model) requireClosed(op string) {
	if !m.closed {
		log.Fatalf("%s called before CloseModel", op)
	}
}

// arcCostForClassUncached evaluates the class-level arc cost: raw evaluator
// cost plus the span-cost contributions.
func (m *Model) arcCostForClassUncached(from, to int, costClass CostClassIndex) int64 {
	cc := &m.costClasses[costClass]
	var cost int64
	if cc.EvaluatorIndex != NoCallback {
		cost = m.registry.transit(cc.EvaluatorIndex, from, to)
	}
	for _, dc := range cc.DimensionCosts {
		d := m.dimensions[dc.Dimension]
		cost += dc.SpanCostCoefficient * d.GetTransitValueFromClass(from, to, dc.TransitEvaluatorClass)
	}
	return cost
}

// GetArcCostForClass returns the arc cost for a cost class. This never
// includes vehicle fixed costs. Results are cached per source index.
func (m *Model) GetArcCostForClass(from, to int, costClass CostClassIndex) int64 {
	m.requireClosed("GetArcCostForClass")
	cache := &m.costCache[from]
	if cache.toIndex == to && cache.costClass == costClass {
		return cache.cost
	}
	cost := m.arcCostForClassUncached(from, to, costClass)
	cache.toIndex = to
	cache.costClass = costClass
	cache.cost = cost
	return cost
}

// GetArcCostForVehicle returns the cost of the arc for the vehicle, including
// the fixed cost when the arc leaves the vehicle start. A negative vehicle
// yields zero.
func (m *Model) GetArcCostForVehicle(from, to, vehicle int) int64 {
	m.requireClosed("GetArcCostForVehicle")
	if vehicle < 0 {
		return 0
	}
	cost := m.GetArcCostForClass(from, to, m.costClassOfVehicle[vehicle])
	if from == m.starts[vehicle] {
		cost += m.fixedCosts[vehicle]
	}
	return cost
}

// GetHomogeneousCost returns the arc cost under the homogeneous-cost
// shortcut: the cost of vehicle 0. Calling it on a model whose costs are not
// homogeneous is a programming error.
func (m *Model) GetHomogeneousCost(from, to int) int64 {
	if !m.CostsAreHomogeneousAcrossVehicles() {
		log.Fatalf("GetHomogeneousCost on a model with heterogeneous costs")
	}
	return m.GetArcCostForVehicle(from, to, 0)
}
