package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersionV2

// sqlitePragmas is appended to the database path when opening.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection serializes saves
	// instead of surfacing SQLITE_BUSY to concurrent callers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		// schema_version exists but is empty: the first layout.
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch v {
	case currentSchemaVersion:
		return nil
	case schemaVersionV1:
		return s.migrateV1ToV2()
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

func (s *SqlStore) freshInstall() error {
	if _, err := s.db.Exec(schemaV2); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// migrateV1ToV2 runs inside a transaction so a failed migration leaves the
// v1 table untouched.
func (s *SqlStore) migrateV1ToV2() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrationV1ToV2); err != nil {
		return fmt.Errorf("v1→v2 migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveAssessment implements Store.
func (s *SqlStore) SaveAssessment(a *Assessment) (string, error) {
	if a == nil {
		return "", errors.New("assessment is nil")
	}
	if a.PatientID == "" {
		return "", errors.New("assessment has no patient id")
	}
	meas, err := json.Marshal(a.Measurements)
	if err != nil {
		return "", fmt.Errorf("marshal measurements: %w", err)
	}
	points, err := json.Marshal(a.ParameterScores)
	if err != nil {
		return "", fmt.Errorf("marshal parameter scores: %w", err)
	}
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO assessments(id, patient_id, recorded_at, measurements, crisp_score, fuzzy_score,
		        risk_category, recommended_response, red_score, oxygen_scale, parameter_scores, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.PatientID, ts.UnixNano(), string(meas), a.CrispScore, a.FuzzyScore,
		a.RiskCategory, a.RecommendedResponse, a.RedScore, a.OxygenScale, string(points), nowUTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert assessment: %w", err)
	}
	return id, nil
}

const assessmentColumns = `id, patient_id, recorded_at, measurements, crisp_score, fuzzy_score,
	risk_category, recommended_response, red_score, oxygen_scale, parameter_scores`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*Assessment, error) {
	var a Assessment
	var recorded int64
	var meas, points string
	err := row.Scan(&a.ID, &a.PatientID, &recorded, &meas, &a.CrispScore, &a.FuzzyScore,
		&a.RiskCategory, &a.RecommendedResponse, &a.RedScore, &a.OxygenScale, &points)
	if err != nil {
		return nil, err
	}
	a.Timestamp = time.Unix(0, recorded).UTC()
	if err := json.Unmarshal([]byte(meas), &a.Measurements); err != nil {
		return nil, fmt.Errorf("assessment %s: decode measurements: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(points), &a.ParameterScores); err != nil {
		return nil, fmt.Errorf("assessment %s: decode parameter scores: %w", a.ID, err)
	}
	return &a, nil
}

// GetAssessment implements Store.
func (s *SqlStore) GetAssessment(id string) (*Assessment, error) {
	row := s.db.QueryRow("SELECT "+assessmentColumns+" FROM assessments WHERE id = ?", id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

// ListAssessments implements Store.
func (s *SqlStore) ListAssessments(patientID string, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(
		"SELECT "+assessmentColumns+` FROM assessments WHERE patient_id = ?
		 ORDER BY recorded_at DESC, rowid DESC LIMIT ?`,
		patientID, limit,
	)
}

// ListAssessmentsSince implements Store.
func (s *SqlStore) ListAssessmentsSince(patientID string, since time.Time) ([]*Assessment, error) {
	return s.query(
		"SELECT "+assessmentColumns+` FROM assessments WHERE patient_id = ? AND recorded_at > ?
		 ORDER BY recorded_at DESC, rowid DESC`,
		patientID, since.UnixNano(),
	)
}

func (s *SqlStore) query(q string, args ...any) ([]*Assessment, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()
	var out []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
