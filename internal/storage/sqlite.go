// Package storage handles database connections, schema migrations, and report persistence using SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/assets"
	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	migrations, err := assets.Migrations()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := runMigrations(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Fingerprint identifies a log by its content, independent of line endings.
func Fingerprint(lines []string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(lines, "\n")))
}

// UpsertReport stores a new record or, when the fingerprint is already known, bumps its
// submission count and refreshes the report. It returns the record ID and whether it was created.
func (r *Repository) UpsertReport(rec models.Record) (string, bool, error) {
	report, err := json.Marshal(rec.Report)
	if err != nil {
		return "", false, fmt.Errorf("encode report: %w", err)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now()
	}
	if rec.FirstSeen.IsZero() {
		rec.FirstSeen = rec.LastSeen
	}

	query := `
	INSERT INTO reports (
		id, fingerprint, source, platform, version, report, raw_log,
		count, first_seen, last_seen
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	ON CONFLICT(fingerprint) DO UPDATE SET
		count = count + 1,
		last_seen = excluded.last_seen,
		source = excluded.source,
		platform = excluded.platform,
		version = excluded.version,
		report = excluded.report
	RETURNING id, count;
	`

	var (
		id    string
		count int64
	)
	err = r.db.QueryRow(query,
		rec.ID, rec.Fingerprint, rec.Source, rec.Report.Platform.String(), versionOf(rec.Report), string(report), rec.RawLog,
		rec.FirstSeen.UTC(), rec.LastSeen.UTC(),
	).Scan(&id, &count)
	if err != nil {
		return "", false, err
	}

	return id, count == 1, nil
}

// UpdateReport replaces the stored report of a record without counting a submission.
func (r *Repository) UpdateReport(id string, report analyzer.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = r.db.Exec(`UPDATE reports SET platform = ?, version = ?, report = ? WHERE id = ?`,
		report.Platform.String(), versionOf(report), string(data), id)
	return err
}

// GetReports retrieves stored reports without raw logs, newest first.
// If platform is provided (not empty), only reports of that platform are returned.
func (r *Repository) GetReports(platform string) ([]models.Record, error) {
	return r.query(false, platform)
}

// GetReportsSubset retrieves records with raw logs for maintenance.
// Empty platform means any platform.
func (r *Repository) GetReportsSubset(platform string) ([]models.Record, error) {
	return r.query(true, platform)
}

// GetReport retrieves a specific record with its raw log by ID.
func (r *Repository) GetReport(id string) (*models.Record, error) {
	row := r.db.QueryRow(`
		SELECT id, fingerprint, source, report, raw_log, count, first_seen, last_seen
		FROM reports
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// GetReportByFingerprint retrieves a record without raw log by log fingerprint.
func (r *Repository) GetReportByFingerprint(fingerprint string) (*models.Record, error) {
	row := r.db.QueryRow(`
		SELECT id, fingerprint, source, report, '', count, first_seen, last_seen
		FROM reports
		WHERE fingerprint = ?
	`, fingerprint)

	rec, err := scanRecord(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// DeleteReport removes a specific record. It reports whether a record existed.
func (r *Repository) DeleteReport(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteOlderThan removes records last seen before cutoff.
// If platform is provided (not empty), it restricts deletion to that platform.
func (r *Repository) DeleteOlderThan(cutoff time.Time, platform string) (int64, error) {
	query := `DELETE FROM reports WHERE last_seen < ?`
	args := []any{cutoff.UTC()}

	if platform != "" {
		query += ` AND platform = ?`
		args = append(args, platform)
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) query(withRaw bool, platform string) ([]models.Record, error) {
	rawColumn := "''"
	if withRaw {
		rawColumn = "raw_log"
	}

	query := `
		SELECT id, fingerprint, source, report, ` + rawColumn + `, count, first_seen, last_seen
		FROM reports
		WHERE 1=1
	`
	var args []any

	if platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}
	query += " ORDER BY last_seen DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows, withRaw)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("Skipping unreadable report")
			continue
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row. On failure the record still carries the columns read so far.
func scanRecord(row scanner, withRaw bool) (*models.Record, error) {
	var (
		rec    models.Record
		report string
	)
	if err := row.Scan(
		&rec.ID, &rec.Fingerprint, &rec.Source, &report, &rec.RawLog,
		&rec.Count, &rec.FirstSeen, &rec.LastSeen,
	); err != nil {
		return &rec, err
	}

	if err := json.Unmarshal([]byte(report), &rec.Report); err != nil {
		return &rec, fmt.Errorf("decode report %s: %w", rec.ID, err)
	}
	if !withRaw {
		rec.RawLog = ""
	}

	return &rec, nil
}

func versionOf(report analyzer.Report) string {
	if report.Version == nil {
		return ""
	}
	return *report.Version
}
