// Package api defines the data contracts exchanged between the analysis
// engines and their consumers (reporting, cost optimization, persistence).
// Field names and rounding are part of the contract: downstream report
// formatters read these exact JSON keys.
package api

import "time"

// ComponentType identifies the three tracked fitment categories.
type ComponentType string

const (
	TypeERC ComponentType = "ERC" // elastic rail clip
	TypeRPD ComponentType = "RPD" // rail pad
	TypeLNR ComponentType = "LNR" // liner
)

// AllComponentTypes lists the known types in a stable order.
var AllComponentTypes = []ComponentType{TypeERC, TypeRPD, TypeLNR}

// ComponentRecord is one row of the fleet snapshot: a physical asset plus
// the aggregates joined from its quality reports and scan history.
// Invariant: AgeDays >= ServiceDays >= 0. Aggregates missing upstream are
// filled with zero by the source, never NULL/NaN.
type ComponentRecord struct {
	ComponentID       string        `json:"component_id"`
	QRCode            string        `json:"qr_code,omitempty"`
	Type              ComponentType `json:"component_type"`
	Manufacturer      string        `json:"manufacturer"`
	BatchNumber       string        `json:"batch_number,omitempty"`
	TrackSection      string        `json:"track_section"`
	KMPost            float64       `json:"km_post,omitempty"`
	Status            string        `json:"status"`
	ManufacturingDate time.Time     `json:"manufacturing_date"`
	InstallationDate  time.Time     `json:"installation_date"`
	LastScanned       time.Time     `json:"last_scanned,omitempty"`
	WarrantyMonths    int           `json:"warranty_months,omitempty"`

	AgeDays     float64 `json:"age_days"`
	ServiceDays float64 `json:"service_days"`
	ScanCount   int     `json:"scan_count"`

	QualityIssues        int     `json:"quality_issues"`
	AvgSeverityScore     float64 `json:"avg_severity_score"`
	TotalMaintenanceCost float64 `json:"total_maintenance_cost"`
	TotalScans           int     `json:"total_scans"`
	AvgProcessingTimeMs  float64 `json:"avg_processing_time"`
}

// FeatureVector holds the engineered features derived from one record.
// Ephemeral: recomputed on every analysis run, shared read-only by the
// downstream engines. Undefined ratios are normalized to 0, never NaN/Inf.
type FeatureVector struct {
	ComponentID string `json:"component_id"`

	AgeYears     float64 `json:"age_years"`
	ServiceYears float64 `json:"service_years"`
	ScansPerDay  float64 `json:"scans_per_day"`
	ScansPerYear float64 `json:"scans_per_year"`

	IssuesPerScan float64 `json:"issues_per_scan"`
	CostPerIssue  float64 `json:"cost_per_issue"`
	CostPerYear   float64 `json:"cost_per_year"`

	ReliabilityScore float64 `json:"reliability_score"`
	EfficiencyScore  float64 `json:"efficiency_score"`

	AgeRisk   bool `json:"age_risk"`
	UsageRisk bool `json:"usage_risk"`
}

// Condition labels, ordered best to worst.
const (
	ConditionExcellent = "Excellent"
	ConditionGood      = "Good"
	ConditionFair      = "Fair"
	ConditionPoor      = "Poor"
)

// ConditionAssessment tags one component with a discrete condition label
// plus the anomaly signal that contributed to it.
type ConditionAssessment struct {
	ComponentID      string        `json:"component_id"`
	Type             ComponentType `json:"component_type"`
	Manufacturer     string        `json:"manufacturer"`
	Condition        string        `json:"condition"`
	AgeYears         float64       `json:"age_years"`
	QualityIssues    int           `json:"quality_issues"`
	ReliabilityScore float64       `json:"reliability_score"`
	AnomalyScore     float64       `json:"anomaly_score"`
	IsAnomaly        bool          `json:"is_anomaly"`
}

// ConditionSummary tallies assessments by label.
type ConditionSummary struct {
	Excellent           int     `json:"excellent"`
	Good                int     `json:"good"`
	Fair                int     `json:"fair"`
	Poor                int     `json:"poor"`
	AnomaliesDetected   int     `json:"anomalies_detected"`
	AvgReliabilityScore float64 `json:"avg_reliability_score"`
}

// ConditionResult bundles the per-component assessments with the summary.
type ConditionResult struct {
	Conditions      []ConditionAssessment `json:"component_conditions"`
	Summary         ConditionSummary      `json:"summary"`
	TotalComponents int                   `json:"total_components"`
}

// Risk tiers, ordered by severity.
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// RiskAssessment is the weighted composite risk view of one component.
type RiskAssessment struct {
	ComponentID  string        `json:"component_id"`
	Type         ComponentType `json:"component_type"`
	Manufacturer string        `json:"manufacturer"`
	TrackSection string        `json:"track_section"`

	RiskLevel          string  `json:"risk_level"`
	RiskScore          float64 `json:"risk_score"`
	FailureProbability float64 `json:"failure_probability"`

	AgeRisk     float64 `json:"age_risk"`
	UsageRisk   float64 `json:"usage_risk"`
	QualityRisk float64 `json:"quality_risk"`
	CostRisk    float64 `json:"cost_risk"`

	DaysToMaintenance        int     `json:"days_to_maintenance"`
	EstimatedMaintenanceCost float64 `json:"estimated_maintenance_cost"`
	Priority                 int     `json:"priority"`
}

// Urgency tiers for failure predictions.
const (
	UrgencyEmergency = "Emergency"
	UrgencyUrgent    = "Urgent"
	UrgencyPlanned   = "Planned"
	UrgencyRoutine   = "Routine"
)

// UrgencyPriority returns the sort rank for an urgency tier (lower is more
// urgent). Unknown tiers sort last.
func UrgencyPriority(urgency string) int {
	switch urgency {
	case UrgencyEmergency:
		return 0
	case UrgencyUrgent:
		return 1
	case UrgencyPlanned:
		return 2
	case UrgencyRoutine:
		return 3
	default:
		return 4
	}
}

// FailurePrediction is the smoothed days-to-failure estimate for one
// component together with the urgency and cost derived from it.
type FailurePrediction struct {
	ComponentID  string        `json:"component_id"`
	Type         ComponentType `json:"component_type"`
	Manufacturer string        `json:"manufacturer"`
	TrackSection string        `json:"track_section"`

	CurrentAgeDays       int     `json:"current_age_days"`
	DaysToFailure        int     `json:"days_to_failure"`
	PredictedFailureDate string  `json:"predicted_failure_date"`
	FailureProbability   float64 `json:"failure_probability"`
	Confidence           float64 `json:"confidence"`

	Urgency                  string  `json:"urgency"`
	EstimatedMaintenanceCost float64 `json:"estimated_maintenance_cost"`
	ConditionScore           float64 `json:"current_condition_score"`
	MaintenanceType          string  `json:"maintenance_type"`
}

// ScheduleEntry is one dated maintenance action. Produced fresh per run;
// never persisted as mutable state.
type ScheduleEntry struct {
	ComponentID  string        `json:"component_id"`
	Type         ComponentType `json:"component_type"`
	TrackSection string        `json:"track_section"`

	ScheduledDate   string   `json:"scheduled_date"`
	MaintenanceType string   `json:"maintenance_type"`
	DurationHours   float64  `json:"estimated_duration_hours"`
	Cost            float64  `json:"estimated_cost"`
	Priority        int      `json:"priority"`
	CrewSize        int      `json:"crew_size"`
	Equipment       []string `json:"equipment_needed"`

	TrackClosureRequired bool    `json:"track_closure_required"`
	DowntimeHours        float64 `json:"estimated_downtime_hours"`
	OptimizationScore    float64 `json:"optimization_score"`
}

// WeekLoad aggregates scheduled work within one ISO week.
type WeekLoad struct {
	CrewHours float64 `json:"crew_hours"`
	Cost      float64 `json:"cost"`
	Items     int     `json:"items"`
}

// CostBreakdown splits schedule cost by priority tier.
type CostBreakdown struct {
	Emergency  float64 `json:"emergency_maintenance"`
	Preventive float64 `json:"preventive_maintenance"`
	Planned    float64 `json:"planned_maintenance"`
}

// CrewUtilization summarizes weekly crew load.
type CrewUtilization struct {
	PeakWeekHours       float64 `json:"peak_week_hours"`
	AverageWeekHours    float64 `json:"average_week_hours"`
	RecommendedCrewSize int     `json:"recommended_crew_size"`
}

// BudgetAllocation derives budget figures from the schedule cost split.
type BudgetAllocation struct {
	ImmediateBudgetNeeded float64 `json:"immediate_budget_needed"`
	QuarterlyBudgetNeeded float64 `json:"quarterly_budget_needed"`
	CostPerComponent      float64 `json:"cost_per_component"`
}

// OptimizationOpportunities holds the fixed-ratio savings estimates. These
// are illustrative multipliers applied to schedule cost, not computed
// optimizations; the ratios come from configuration.
type OptimizationOpportunities struct {
	BatchMaintenanceSavings     float64 `json:"batch_maintenance_savings"`
	PreventiveVsReactiveSavings float64 `json:"preventive_vs_reactive_savings"`
	TotalPotentialSavings       float64 `json:"total_potential_savings"`
}

// ResourcePlan aggregates crews, cost, downtime and equipment across a
// maintenance schedule.
type ResourcePlan struct {
	AnalysisDate            string                    `json:"resource_analysis_date"`
	TotalMaintenanceItems   int                       `json:"total_maintenance_items"`
	TotalCrewHoursRequired  float64                   `json:"total_crew_hours_required"`
	TotalEstimatedCost      float64                   `json:"total_estimated_cost"`
	TotalTrackDowntimeHours float64                   `json:"total_track_downtime_hours"`
	CostBreakdown           CostBreakdown             `json:"cost_breakdown"`
	EquipmentRequirements   map[string]int            `json:"equipment_requirements"`
	WeeklyRequirements      map[string]WeekLoad       `json:"weekly_resource_requirements"`
	CrewUtilization         CrewUtilization           `json:"crew_utilization"`
	BudgetAllocation        BudgetAllocation          `json:"budget_allocation"`
	Opportunities           OptimizationOpportunities `json:"optimization_opportunities"`
}

// Lifecycle stages, ordered by remaining life.
const (
	StageEarlyLife = "Early Life"
	StageMidLife   = "Mid Life"
	StageMature    = "Mature"
	StageEndOfLife = "End of Life"
)

// MaintenanceMilestone is one interval-based maintenance date inside the
// remaining life window.
type MaintenanceMilestone struct {
	Type            string `json:"type"`
	DaysFromNow     int    `json:"days_from_now"`
	MaintenanceDate string `json:"maintenance_date"`
}

// LifecycleProjection estimates remaining useful life and cost for one
// component.
type LifecycleProjection struct {
	ComponentID  string        `json:"component_id"`
	Type         ComponentType `json:"component_type"`
	Manufacturer string        `json:"manufacturer"`

	CurrentAgeDays         int     `json:"current_age_days"`
	CurrentAgeYears        float64 `json:"current_age_years"`
	ExpectedLifespanYears  float64 `json:"expected_total_lifespan_years"`
	RemainingLifeDays      int     `json:"remaining_life_days"`
	RemainingLifeYears     float64 `json:"remaining_life_years"`
	RemainingLifePct       float64 `json:"remaining_life_percentage"`
	LifecycleStage         string  `json:"lifecycle_stage"`
	EndOfLifeDate          string  `json:"end_of_life_date"`
	ProjectedRemainingCost float64 `json:"projected_remaining_cost"`
	ReplacementDate        string  `json:"replacement_recommendation_date"`
	LifecycleEfficiency    float64 `json:"lifecycle_efficiency"`

	NextMaintenanceIntervals []MaintenanceMilestone `json:"next_maintenance_intervals"`
}
