// Package lifecycle projects remaining useful life for track components
// from their age, quality history and type-specific lifespan tables.
package lifecycle

import (
	"time"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

// Projector estimates remaining life, lifecycle stage and upcoming
// maintenance milestones per component.
type Projector struct {
	maintenance config.MaintenanceConfig
	now         func() time.Time
}

// NewProjector creates a projector using the configured lifespan and
// milestone tables.
func NewProjector(maintenance config.MaintenanceConfig) *Projector {
	return &Projector{maintenance: maintenance, now: time.Now}
}

// Project returns one lifecycle projection per component, in input order.
func (p *Projector) Project(records []api.ComponentRecord) []api.LifecycleProjection {
	out := make([]api.LifecycleProjection, 0, len(records))
	for _, rec := range records {
		out = append(out, p.projectOne(rec))
	}
	return out
}

func (p *Projector) projectOne(rec api.ComponentRecord) api.LifecycleProjection {
	now := p.now()
	lifespan := float64(p.maintenance.Lifespans[rec.Type])
	milestones := p.maintenance.Milestones[rec.Type]

	// Heavy quality histories shorten expected life. Ten or more recorded
	// issues pin the factor at zero: the component is past salvage.
	conditionFactor := 1 - float64(rec.QualityIssues)*0.1
	if conditionFactor < 0 {
		conditionFactor = 0
	}
	adjustedLifespan := lifespan * conditionFactor

	ageDays := int(rec.AgeDays)
	remainingDays := adjustedLifespan - rec.AgeDays
	if remainingDays < 0 {
		remainingDays = 0
	}
	remainingPct := 0.0
	if adjustedLifespan > 0 {
		remainingPct = remainingDays / adjustedLifespan * 100
	}

	var stage string
	switch {
	case remainingPct > 75:
		stage = api.StageEarlyLife
	case remainingPct > 50:
		stage = api.StageMidLife
	case remainingPct > 25:
		stage = api.StageMature
	default:
		stage = api.StageEndOfLife
	}

	next := make([]api.MaintenanceMilestone, 0, len(milestones))
	for _, interval := range milestones {
		daysTo := interval - ageDays%interval
		if daysTo > 0 && float64(daysTo) <= remainingDays {
			next = append(next, api.MaintenanceMilestone{
				Type:            "Scheduled",
				DaysFromNow:     daysTo,
				MaintenanceDate: now.AddDate(0, 0, daysTo).Format("2006-01-02"),
			})
		}
	}

	serviceYears := rec.ServiceDays / 365.25
	if serviceYears < 0.1 {
		serviceYears = 0.1
	}
	annualCost := rec.TotalMaintenanceCost / serviceYears
	projectedCost := annualCost * (remainingDays / 365.25)

	replaceIn := remainingDays - 180
	if replaceIn < 0 {
		replaceIn = 0
	}

	return api.LifecycleProjection{
		ComponentID:  rec.ComponentID,
		Type:         rec.Type,
		Manufacturer: rec.Manufacturer,

		CurrentAgeDays:         ageDays,
		CurrentAgeYears:        util.Round1(rec.AgeDays / 365.25),
		ExpectedLifespanYears:  util.Round1(adjustedLifespan / 365.25),
		RemainingLifeDays:      int(remainingDays),
		RemainingLifeYears:     util.Round1(remainingDays / 365.25),
		RemainingLifePct:       util.Round1(remainingPct),
		LifecycleStage:         stage,
		EndOfLifeDate:          now.AddDate(0, 0, int(remainingDays)).Format("2006-01-02"),
		ProjectedRemainingCost: util.RoundMoney(projectedCost),
		ReplacementDate:        now.AddDate(0, 0, int(replaceIn)).Format("2006-01-02"),
		LifecycleEfficiency:    util.RoundScore((1 - float64(rec.QualityIssues)/10) * conditionFactor),

		NextMaintenanceIntervals: next,
	}
}
