package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railtrace/internal/config"
	"railtrace/pkg/api"
)

var testDay = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestProjector() *Projector {
	p := NewProjector(config.Default().Maintenance)
	p.now = func() time.Time { return testDay }
	return p
}

func TestProjectHealthyClip(t *testing.T) {
	p := newTestProjector()

	out := p.Project([]api.ComponentRecord{{
		ComponentID:  "ERC-001",
		Type:         api.TypeERC,
		Manufacturer: "TrackFit",
		AgeDays:      730,
		ServiceDays:  700,
	}})
	require.Len(t, out, 1)
	proj := out[0]

	assert.Equal(t, 730, proj.CurrentAgeDays)
	assert.InDelta(t, 6.0, proj.ExpectedLifespanYears, 0.05, "no issues leaves the full lifespan")
	assert.Equal(t, 1460, proj.RemainingLifeDays)
	assert.InDelta(t, 66.7, proj.RemainingLifePct, 0.05)
	assert.Equal(t, api.StageMidLife, proj.LifecycleStage)
	assert.Equal(t, testDay.AddDate(0, 0, 1460).Format("2006-01-02"), proj.EndOfLifeDate)
	assert.Equal(t, testDay.AddDate(0, 0, 1280).Format("2006-01-02"), proj.ReplacementDate,
		"replacement recommended 180 days before end of life")
	assert.InDelta(t, 1.0, proj.LifecycleEfficiency, 1e-9)

	// All three ERC milestones fall inside the remaining window.
	require.Len(t, proj.NextMaintenanceIntervals, 3)
	assert.Equal(t, 730, proj.NextMaintenanceIntervals[0].DaysFromNow)
	assert.Equal(t, 730, proj.NextMaintenanceIntervals[1].DaysFromNow)
	assert.Equal(t, 1460, proj.NextMaintenanceIntervals[2].DaysFromNow)
}

func TestProjectStages(t *testing.T) {
	p := newTestProjector()

	cases := []struct {
		name    string
		ageDays float64
		stage   string
	}{
		{"fresh", 100, api.StageEarlyLife},
		{"mid", 730, api.StageMidLife},
		{"mature", 1300, api.StageMature},
		{"spent", 1900, api.StageEndOfLife},
	}
	for _, tc := range cases {
		out := p.Project([]api.ComponentRecord{{
			ComponentID: tc.name,
			Type:        api.TypeERC,
			AgeDays:     tc.ageDays,
		}})
		assert.Equal(t, tc.stage, out[0].LifecycleStage, tc.name)
	}
}

func TestProjectConditionFactorClamp(t *testing.T) {
	p := newTestProjector()

	out := p.Project([]api.ComponentRecord{{
		ComponentID:   "wrecked",
		Type:          api.TypeRPD,
		AgeDays:       400,
		QualityIssues: 12,
	}})
	require.Len(t, out, 1)
	proj := out[0]

	assert.Equal(t, 0, proj.RemainingLifeDays, "twelve issues zero out the adjusted lifespan")
	assert.Zero(t, proj.RemainingLifePct)
	assert.Equal(t, api.StageEndOfLife, proj.LifecycleStage)
	assert.Empty(t, proj.NextMaintenanceIntervals)
	assert.GreaterOrEqual(t, proj.LifecycleEfficiency, -0.2)
	assert.Equal(t, testDay.Format("2006-01-02"), proj.ReplacementDate, "replace immediately")
}

func TestProjectTypeLifespans(t *testing.T) {
	p := newTestProjector()

	out := p.Project([]api.ComponentRecord{
		{ComponentID: "erc", Type: api.TypeERC},
		{ComponentID: "rpd", Type: api.TypeRPD},
		{ComponentID: "lnr", Type: api.TypeLNR},
	})
	require.Len(t, out, 3)

	assert.Equal(t, 2190, out[0].RemainingLifeDays)
	assert.Equal(t, 1825, out[1].RemainingLifeDays)
	assert.Equal(t, 2555, out[2].RemainingLifeDays)
}

func TestProjectIssueDegradation(t *testing.T) {
	p := newTestProjector()

	out := p.Project([]api.ComponentRecord{{
		ComponentID:   "worn",
		Type:          api.TypeERC,
		AgeDays:       1000,
		ServiceDays:   950,
		QualityIssues: 3,
	}})
	require.Len(t, out, 1)
	proj := out[0]

	// Lifespan shrinks to 70%: 2190 * 0.7 = 1533, minus 1000 days of age.
	// Truncation of the float product can land one day under.
	assert.InDelta(t, 533, proj.RemainingLifeDays, 1)
	assert.InDelta(t, 0.49, proj.LifecycleEfficiency, 1e-9)
}

func TestProjectExhaustedComponentHasEmptyMilestones(t *testing.T) {
	p := newTestProjector()

	out := p.Project([]api.ComponentRecord{{
		ComponentID: "spent",
		Type:        api.TypeERC,
		AgeDays:     2200,
		ServiceDays: 2100,
	}})
	require.Len(t, out, 1)
	proj := out[0]

	assert.Equal(t, 0, proj.RemainingLifeDays)
	assert.Equal(t, api.StageEndOfLife, proj.LifecycleStage)
	assert.NotNil(t, proj.NextMaintenanceIntervals, "serializes as an empty list, not null")
	assert.Empty(t, proj.NextMaintenanceIntervals)
}
