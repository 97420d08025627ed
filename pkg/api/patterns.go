package api

// TypePattern summarizes failure behavior for one component type.
type TypePattern struct {
	FailureRate          float64 `json:"failure_rate"`
	AvgAgeAtFailureDays  float64 `json:"avg_age_at_failure_days"`
	TotalComponents      int     `json:"total_components"`
	FailedComponents     int     `json:"failed_components"`
	AvgMaintenanceCost   float64 `json:"avg_maintenance_cost"`
}

// Reliability rankings for manufacturers.
const (
	RankingHigh   = "High"
	RankingMedium = "Medium"
	RankingLow    = "Low"
)

// ManufacturerPattern summarizes failure behavior for one manufacturer.
type ManufacturerPattern struct {
	FailureRate        float64 `json:"failure_rate"`
	QualityScore       float64 `json:"quality_score"`
	TotalComponents    int     `json:"total_components"`
	AvgMaintenanceCost float64 `json:"avg_maintenance_cost"`
	ReliabilityRanking string  `json:"reliability_ranking"`
}

// CriticalPattern flags a category whose failure rate crossed a configured
// threshold.
type CriticalPattern struct {
	PatternType    string  `json:"pattern_type"`
	Category       string  `json:"category"`
	Value          string  `json:"value"`
	FailureRate    float64 `json:"failure_rate"`
	Severity       string  `json:"severity"`
	Recommendation string  `json:"recommendation"`
}

// PatternResult bundles the per-type and per-manufacturer failure patterns
// with the flagged critical patterns.
type PatternResult struct {
	TypePatterns         map[ComponentType]TypePattern  `json:"component_type_patterns"`
	ManufacturerPatterns map[string]ManufacturerPattern `json:"manufacturer_patterns"`
	CriticalPatterns     []CriticalPattern              `json:"critical_patterns"`
	PatternCount         int                            `json:"pattern_count"`
}

// ManufacturerPerformance is the composite supplier scorecard.
type ManufacturerPerformance struct {
	Manufacturer string `json:"manufacturer"`

	OverallRating  string  `json:"overall_rating"`
	OverallScore   float64 `json:"overall_score"`
	Reliability    float64 `json:"reliability_score"`
	CostEfficiency float64 `json:"cost_efficiency"`
	Durability     float64 `json:"durability_score"`

	FailureRate        float64 `json:"failure_rate"`
	AvgMaintenanceCost float64 `json:"avg_maintenance_cost"`
	TotalComponents    int     `json:"total_components"`
	MarketShare        float64 `json:"market_share"`
	AvgComponentAge    float64 `json:"avg_component_age_years"`

	Recommendations []string `json:"recommendations"`
	ContractRenewal string   `json:"contract_renewal_recommendation"`
}

// PerformanceResult ranks manufacturers by overall score.
type PerformanceResult struct {
	Ranked                   []ManufacturerPerformance `json:"ranked_manufacturers"`
	TopPerformer             string                    `json:"top_performer"`
	ImprovementOpportunities int                       `json:"improvement_opportunities"`
}

// MonthlyFailureRate is one point of the simulated trend series.
type MonthlyFailureRate struct {
	Month           string  `json:"month"`
	FailureRate     float64 `json:"failure_rate"`
	TotalComponents int     `json:"total_components"`
	QualityIssues   int     `json:"quality_issues"`
}

// TypeTrend is the per-type slice of the trend analysis.
type TypeTrend struct {
	CurrentFailureRate float64 `json:"current_failure_rate"`
	QualityGrade       string  `json:"quality_grade"`
}

// ManufacturerTrend is the per-manufacturer slice of the trend analysis.
type ManufacturerTrend struct {
	CurrentFailureRate float64 `json:"current_failure_rate"`
	QualityScore       float64 `json:"quality_score"`
	MarketShare        float64 `json:"market_share"`
}

// QualityTrends carries the simulated historical series. Simulated is always
// true: no real per-month history is stored yet, so the monthly points are
// generated from the current snapshot plus seeded noise. Consumers must not
// present this as measured history.
type QualityTrends struct {
	Simulated          bool                                `json:"simulated"`
	MonthlyRates       []MonthlyFailureRate                `json:"monthly_failure_rates"`
	TypeTrends         map[ComponentType]TypeTrend         `json:"component_type_trends"`
	ManufacturerTrends map[string]ManufacturerTrend        `json:"manufacturer_quality_trends"`
}
