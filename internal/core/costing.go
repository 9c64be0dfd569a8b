package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostPolicy decides an item's new carrying unit cost after a goods receipt.
// oldQty and oldCost describe the item before the receipt; newQty and newCost
// describe the incoming goods. Policies are pure functions so the ledger can
// swap costing methods without touching transaction logic.
type CostPolicy func(oldQty, oldCost, newQty, newCost decimal.Decimal) decimal.Decimal

// LastCostPolicy values inventory at the most recently paid unit price: the
// incoming cost replaces the carrying cost whenever it is positive and
// differs. A zero incoming cost keeps the old cost (free samples and bonus
// goods must not wipe out the carrying cost).
func LastCostPolicy(oldQty, oldCost, newQty, newCost decimal.Decimal) decimal.Decimal {
	if newCost.IsPositive() && !newCost.Equal(oldCost) {
		return newCost
	}
	return oldCost
}

// WeightedAverageCostPolicy blends the incoming cost into the carrying cost
// proportionally to quantity. Selected with COST_POLICY=weighted_average;
// LastCostPolicy stays the default.
func WeightedAverageCostPolicy(oldQty, oldCost, newQty, newCost decimal.Decimal) decimal.Decimal {
	totalQty := oldQty.Add(newQty)
	if totalQty.IsZero() {
		return newCost
	}
	return oldQty.Mul(oldCost).Add(newQty.Mul(newCost)).Div(totalQty)
}

// CostPolicyByName maps a COST_POLICY configuration value to a policy.
// An empty name selects LastCostPolicy.
func CostPolicyByName(name string) (CostPolicy, error) {
	switch name {
	case "", "last_cost":
		return LastCostPolicy, nil
	case "weighted_average":
		return WeightedAverageCostPolicy, nil
	default:
		return nil, fmt.Errorf("unknown cost policy %q", name)
	}
}
