// Package schedule converts failure predictions into a dated maintenance
// schedule and aggregates the resources it demands.
//
// The scheduler is a greedy, priority-first heuristic, not a constrained
// optimizer. The tier rules below (durations, crew sizes, spacing, the
// planned-batch cap) are operating policy and must not be derived from the
// data.
package schedule

import (
	"time"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

var (
	emergencyEquipment = []string{"Hydraulic tools", "Replacement components", "Safety equipment"}
	urgentEquipment    = []string{"Hand tools", "Inspection equipment", "Maintenance supplies"}
	plannedEquipment   = []string{"Inspection tools", "Documentation"}
)

// Scheduler builds maintenance schedules from failure predictions.
type Scheduler struct {
	maintenance config.MaintenanceConfig
	cost        config.CostConfig
	now         func() time.Time
}

// NewScheduler creates a scheduler.
func NewScheduler(maintenance config.MaintenanceConfig, cost config.CostConfig) *Scheduler {
	return &Scheduler{
		maintenance: maintenance,
		cost:        cost,
		now:         time.Now,
	}
}

// Build produces the dated schedule for one run. Entries are fresh values:
// the schedule is recomputed from current component state every run, never
// mutated in place.
//
// Emergency items are scheduled today with no batching limit. Urgent items
// spread across the next seven days by index. Planned items are capped at
// the configured batch limit (in incoming sort order) and spaced out after
// the urgent window.
func (s *Scheduler) Build(predictions []api.FailurePrediction) []api.ScheduleEntry {
	now := s.now()
	schedule := make([]api.ScheduleEntry, 0, len(predictions))

	var urgentIdx, plannedIdx int
	for _, pred := range predictions {
		switch pred.Urgency {
		case api.UrgencyEmergency:
			schedule = append(schedule, s.entry(pred, now,
				"Emergency Replacement", 8, 4, pred.EstimatedMaintenanceCost, 1,
				emergencyEquipment, true, 6))

		case api.UrgencyUrgent:
			date := now.AddDate(0, 0, urgentIdx%7)
			urgentIdx++
			schedule = append(schedule, s.entry(pred, date,
				"Preventive Maintenance", 6, 3, pred.EstimatedMaintenanceCost, 2,
				urgentEquipment, false, 2))

		case api.UrgencyPlanned:
			if plannedIdx >= s.maintenance.PlannedBatchLimit {
				continue
			}
			offset := 7 + 1.2*float64(plannedIdx)
			plannedIdx++
			date := now.Add(time.Duration(offset * 24 * float64(time.Hour)))
			schedule = append(schedule, s.entry(pred, date,
				"Scheduled Inspection", 4, 2, pred.EstimatedMaintenanceCost*0.7, 3,
				plannedEquipment, false, 1))
		}
		// Routine predictions carry no scheduled action this run.
	}

	return schedule
}

func (s *Scheduler) entry(pred api.FailurePrediction, date time.Time, maintenanceType string,
	duration float64, crew int, cost float64, priority int,
	equipment []string, closure bool, downtime float64) api.ScheduleEntry {

	optimization := (5-float64(priority))*0.4 + (cost/50000)*0.3 + (downtime/10)*0.3

	return api.ScheduleEntry{
		ComponentID:  pred.ComponentID,
		Type:         pred.Type,
		TrackSection: pred.TrackSection,

		ScheduledDate:   date.Format("2006-01-02"),
		MaintenanceType: maintenanceType,
		DurationHours:   duration,
		Cost:            util.RoundMoney(cost),
		Priority:        priority,
		CrewSize:        crew,
		Equipment:       equipment,

		TrackClosureRequired: closure,
		DowntimeHours:        downtime,
		OptimizationScore:    util.RoundScore(optimization),
	}
}
