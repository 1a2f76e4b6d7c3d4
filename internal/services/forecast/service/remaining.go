package service

import (
	"takt/internal/core/forecast"
	"takt/internal/services/forecast/repo"
)

// buildRemaining converts the day's ordered plan plus recorded actuals into
// the remaining work list, preserving plan sequence order
//
// actual quantity for a part is allocated to its earliest plan rows first,
// since items are produced strictly in sequence; finished rows are dropped;
// the earliest remaining row whose part shows recent production is marked
// as currently in production
func buildRemaining(
	plan []repo.PlanItemRow,
	actuals map[string]int64,
	recent map[string]int64,
) (items []forecast.RemainingItem, planned, actual int64) {
	left := make(map[string]int64, len(actuals))
	seen := make(map[string]bool, len(plan))
	for _, p := range plan {
		planned += p.PlannedQty
		if !seen[p.Part] {
			seen[p.Part] = true
			left[p.Part] = actuals[p.Part]
			actual += actuals[p.Part]
		}
	}

	marked := false
	for _, p := range plan {
		use := min(left[p.Part], p.PlannedQty)
		left[p.Part] -= use
		remaining := p.PlannedQty - use
		if remaining <= 0 {
			continue
		}
		item := forecast.RemainingItem{
			Part:      p.Part,
			Remaining: remaining,
			TargetPPH: p.TargetPPH,
		}
		if !marked && recent[p.Part] > 0 {
			item.InProduction = true
			marked = true
		}
		items = append(items, item)
	}
	return items, planned, actual
}
