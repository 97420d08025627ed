// Package clickhouse persists analysis run history. ClickHouse fits the
// workload: append-only run summaries at high cardinality, queried by time
// range for trend dashboards.
package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"railtrace/pkg/api"
)

// RunRecord is one persisted analysis run summary.
type RunRecord struct {
	RunID       uuid.UUID       `ch:"run_id"`
	Status      string          `ch:"status"`
	ExecutedAt  time.Time       `ch:"executed_at"`
	NoiseSeed   int64           `ch:"noise_seed"`
	Components  int             `ch:"components_processed"`
	Issues      int             `ch:"quality_issues_detected"`
	Scheduled   int             `ch:"maintenance_items"`
	Critical    int             `ch:"critical_components"`
	HighRisk    int             `ch:"high_risk_components"`
	Immediate   int             `ch:"immediate_attention"`
	TotalCost   decimal.Decimal `ch:"total_estimated_cost"`
	DurationSec float64         `ch:"execution_seconds"`
	Bundle      string          `ch:"bundle_json"`
	CreatedAt   time.Time       `ch:"created_at"`
}

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "railtrace",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store persists run history in ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore creates a new ClickHouse run store.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveRun persists one analysis bundle as a run summary row plus the full
// bundle JSON for replay.
func (s *Store) SaveRun(ctx context.Context, bundle *api.AnalysisBundle) error {
	runID, err := uuid.Parse(bundle.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", bundle.RunID, err)
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	query := `
		INSERT INTO analysis_runs (
			run_id, status, executed_at, noise_seed,
			components_processed, quality_issues_detected, maintenance_items,
			critical_components, high_risk_components, immediate_attention,
			total_estimated_cost, execution_seconds, bundle_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		runID,
		bundle.Status,
		bundle.Timestamp,
		bundle.NoiseSeed,
		bundle.Stats.ComponentsProcessed,
		bundle.Stats.QualityIssuesDetected,
		len(bundle.Schedule),
		bundle.CriticalComponents,
		bundle.HighRiskComponents,
		bundle.ImmediateAttention,
		decimal.NewFromFloat(bundle.Resources.TotalEstimatedCost),
		bundle.Stats.ExecutionSeconds,
		string(payload),
		time.Now(),
	)
}

// GetRun retrieves one persisted run by ID, or nil when absent.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT run_id, status, executed_at, noise_seed,
			   components_processed, quality_issues_detected, maintenance_items,
			   critical_components, high_risk_components, immediate_attention,
			   total_estimated_cost, execution_seconds, bundle_json, created_at
		FROM analysis_runs
		WHERE run_id = ?
		LIMIT 1
	`
	row := s.conn.QueryRow(ctx, query, runID)

	var rec RunRecord
	err := row.Scan(
		&rec.RunID, &rec.Status, &rec.ExecutedAt, &rec.NoiseSeed,
		&rec.Components, &rec.Issues, &rec.Scheduled,
		&rec.Critical, &rec.HighRisk, &rec.Immediate,
		&rec.TotalCost, &rec.DurationSec, &rec.Bundle, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &rec, nil
}

// ListRuns returns the most recent run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `
		SELECT run_id, status, executed_at, noise_seed,
			   components_processed, quality_issues_detected, maintenance_items,
			   critical_components, high_risk_components, immediate_attention,
			   total_estimated_cost, execution_seconds, bundle_json, created_at
		FROM analysis_runs
		ORDER BY executed_at DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID, &rec.Status, &rec.ExecutedAt, &rec.NoiseSeed,
			&rec.Components, &rec.Issues, &rec.Scheduled,
			&rec.Critical, &rec.HighRisk, &rec.Immediate,
			&rec.TotalCost, &rec.DurationSec, &rec.Bundle, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

// UnmarshalBundle decodes the stored bundle payload.
func (r *RunRecord) UnmarshalBundle() (*api.AnalysisBundle, error) {
	var bundle api.AnalysisBundle
	if err := json.Unmarshal([]byte(r.Bundle), &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}
	return &bundle, nil
}
