// Package postgres loads the component fleet snapshot from the tracking
// database: one row per component with its quality report and scan history
// aggregates joined in.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"railtrace/pkg/api"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		Database: "railtrace",
		Username: "railtrace",
		Password: "",
		SSLMode:  "disable",
	}
}

// Source reads component snapshots from PostgreSQL.
type Source struct {
	db *sql.DB
}

// NewSource opens a connection pool against the tracking database.
func NewSource(cfg *Config) (*Source, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, cfg.SSLMode)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &Source{db: db}, nil
}

// NewSourceFromDSN opens a pool from a lib/pq DSN or URL.
func NewSourceFromDSN(dsn string) (*Source, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &Source{db: db}, nil
}

// Ping checks database connectivity.
func (s *Source) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

// Components returns the active fleet snapshot. Replaced components are
// excluded; aggregates with no matching reports or scans come back as zero,
// never NULL.
func (s *Source) Components(ctx context.Context) ([]api.ComponentRecord, error) {
	query := `
		SELECT
			c.component_id,
			c.qr_code,
			c.component_type,
			c.manufacturer,
			c.batch_number,
			c.track_section,
			COALESCE(c.km_post, 0),
			c.status,
			c.manufacturing_date,
			c.installation_date,
			COALESCE(c.scan_count, 0),
			COALESCE(c.warranty_months, 0),
			GREATEST(EXTRACT(EPOCH FROM now() - c.manufacturing_date) / 86400, 0) AS age_days,
			GREATEST(EXTRACT(EPOCH FROM now() - c.installation_date) / 86400, 0) AS service_days,
			COUNT(qr.report_id) AS quality_issues,
			COALESCE(AVG(CASE qr.severity
				WHEN 'Critical' THEN 4
				WHEN 'High' THEN 3
				WHEN 'Medium' THEN 2
				WHEN 'Low' THEN 1
				ELSE 0 END), 0) AS avg_severity_score,
			COALESCE(SUM(qr.actual_cost), 0) AS total_maintenance_cost,
			COUNT(sh.id) AS total_scans,
			COALESCE(AVG(sh.processing_time_ms), 0) AS avg_processing_time
		FROM components c
		LEFT JOIN quality_reports qr ON c.component_id = qr.component_id
		LEFT JOIN scan_history sh ON c.component_id = sh.component_id
		WHERE c.status != 'Replaced'
		GROUP BY c.component_id, c.qr_code, c.component_type, c.manufacturer,
			c.batch_number, c.track_section, c.km_post, c.status,
			c.manufacturing_date, c.installation_date, c.scan_count, c.warranty_months
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	var records []api.ComponentRecord
	for rows.Next() {
		var rec api.ComponentRecord
		if err := rows.Scan(
			&rec.ComponentID, &rec.QRCode, &rec.Type, &rec.Manufacturer,
			&rec.BatchNumber, &rec.TrackSection, &rec.KMPost, &rec.Status,
			&rec.ManufacturingDate, &rec.InstallationDate,
			&rec.ScanCount, &rec.WarrantyMonths,
			&rec.AgeDays, &rec.ServiceDays,
			&rec.QualityIssues, &rec.AvgSeverityScore,
			&rec.TotalMaintenanceCost, &rec.TotalScans, &rec.AvgProcessingTimeMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan component row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read component rows: %w", err)
	}
	return records, nil
}

// StaticSource serves a fixed snapshot. Used by tests and offline analysis
// of exported fleet data.
type StaticSource struct {
	Records []api.ComponentRecord
}

// Components returns the fixed snapshot.
func (s *StaticSource) Components(_ context.Context) ([]api.ComponentRecord, error) {
	return s.Records, nil
}
