package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

// EstimateResources aggregates a schedule into crew, cost, equipment and
// budget figures. Totals are additive over entries; crew hours count every
// crew member for the full entry duration.
func (s *Scheduler) EstimateResources(schedule []api.ScheduleEntry) api.ResourcePlan {
	plan := api.ResourcePlan{
		AnalysisDate:          s.now().Format("2006-01-02"),
		TotalMaintenanceItems: len(schedule),
		EquipmentRequirements: map[string]int{},
		WeeklyRequirements:    map[string]api.WeekLoad{},
	}

	var crewHours, downtime float64
	totalCost := decimal.Zero
	var emergency, preventive, planned decimal.Decimal
	weekHours := map[string]float64{}
	weekCost := map[string]decimal.Decimal{}
	weekItems := map[string]int{}

	for _, entry := range schedule {
		hours := entry.DurationHours * float64(entry.CrewSize)
		crewHours += hours
		// Downtime only accrues when the track is actually closed.
		if entry.TrackClosureRequired {
			downtime += entry.DowntimeHours
		}

		cost := decimal.NewFromFloat(entry.Cost)
		totalCost = totalCost.Add(cost)
		switch entry.Priority {
		case 1:
			emergency = emergency.Add(cost)
		case 2:
			preventive = preventive.Add(cost)
		default:
			planned = planned.Add(cost)
		}

		for _, eq := range entry.Equipment {
			plan.EquipmentRequirements[eq]++
		}

		week := isoWeekKey(entry.ScheduledDate)
		weekHours[week] += hours
		weekCost[week] = weekCost[week].Add(cost)
		weekItems[week]++
	}

	plan.TotalCrewHoursRequired = util.Round1(crewHours)
	plan.TotalTrackDowntimeHours = util.Round1(downtime)
	plan.TotalEstimatedCost = moneyFloat(totalCost)
	plan.CostBreakdown = api.CostBreakdown{
		Emergency:  moneyFloat(emergency),
		Preventive: moneyFloat(preventive),
		Planned:    moneyFloat(planned),
	}

	var peak float64
	for week, hours := range weekHours {
		if hours > peak {
			peak = hours
		}
		plan.WeeklyRequirements[week] = api.WeekLoad{
			CrewHours: util.Round1(hours),
			Cost:      moneyFloat(weekCost[week]),
			Items:     weekItems[week],
		}
	}

	avg := 0.0
	if len(weekHours) > 0 {
		avg = crewHours / float64(len(weekHours))
	}
	// One crew covers 4 people x 40 hours per week.
	recommended := int(crewHours / (4 * 40))
	if recommended < 8 {
		recommended = 8
	}
	plan.CrewUtilization = api.CrewUtilization{
		PeakWeekHours:       util.Round1(peak),
		AverageWeekHours:    util.Round1(avg),
		RecommendedCrewSize: recommended,
	}

	plan.BudgetAllocation = api.BudgetAllocation{
		ImmediateBudgetNeeded: moneyFloat(emergency.Add(preventive)),
		QuarterlyBudgetNeeded: moneyFloat(totalCost),
	}
	if len(schedule) > 0 {
		perComponent := totalCost.Div(decimal.NewFromInt(int64(len(schedule))))
		plan.BudgetAllocation.CostPerComponent = moneyFloat(perComponent)
	}

	plan.Opportunities = api.OptimizationOpportunities{
		BatchMaintenanceSavings:     moneyFloat(totalCost.Mul(decimal.NewFromFloat(s.cost.BatchSavingsRatio))),
		PreventiveVsReactiveSavings: moneyFloat(emergency.Mul(decimal.NewFromFloat(s.cost.ProactiveSavingsRatio))),
		TotalPotentialSavings:       moneyFloat(totalCost.Mul(decimal.NewFromFloat(s.cost.TotalSavingsRatio))),
	}

	return plan
}

// isoWeekKey buckets a scheduled date into its ISO year and week. Dates
// that fail to parse land in a single "unknown" bucket rather than being
// dropped, so totals stay additive.
func isoWeekKey(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "unknown"
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func moneyFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
