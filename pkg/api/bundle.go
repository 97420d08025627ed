package api

import "time"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusFailed  = "failed"
)

// RunStats counts what a pipeline run touched.
type RunStats struct {
	ComponentsProcessed        int     `json:"components_processed"`
	QualityIssuesDetected      int     `json:"quality_issues_detected"`
	MaintenanceRecommendations int     `json:"maintenance_recommendations"`
	ExecutionSeconds           float64 `json:"execution_time_seconds"`
}

// AnalysisBundle is the full result of one pipeline run. A bundle is either
// complete (all stages succeeded) or absent; there is no partial-success
// shape. NoData bundles carry empty stage results and zeroed aggregates.
type AnalysisBundle struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"pipeline_status"`
	Timestamp time.Time `json:"execution_timestamp"`
	NoiseSeed int64     `json:"noise_seed"`
	Stats     RunStats  `json:"statistics"`

	Conditions  ConditionResult       `json:"condition_analysis"`
	Risks       []RiskAssessment      `json:"risk_assessment"`
	Patterns    PatternResult         `json:"failure_patterns"`
	Performance PerformanceResult     `json:"manufacturer_analysis"`
	Trends      QualityTrends         `json:"quality_trends"`
	Predictions []FailurePrediction   `json:"failure_predictions"`
	Schedule    []ScheduleEntry       `json:"maintenance_schedule"`
	Lifecycles  []LifecycleProjection `json:"lifecycle_predictions"`
	Resources   ResourcePlan          `json:"resource_requirements"`

	// Attention counts derived from the predictions.
	ImmediateAttention int `json:"immediate_attention"`
	Next30Days         int `json:"next_30_days"`
	Next90Days         int `json:"next_90_days"`
	CriticalComponents int `json:"critical_components"`
	HighRiskComponents int `json:"high_risk_components"`
}
