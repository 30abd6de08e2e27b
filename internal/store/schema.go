package store

// schemaVersionV1 is the first assessments table.
const schemaVersionV1 = 1

// schemaVersionV2 adds the red score flag and the SpO2 scale.
const schemaVersionV2 = 2

// schemaV1 is kept for migration tests.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS assessments (
	id                   TEXT PRIMARY KEY,
	patient_id           TEXT NOT NULL,
	recorded_at          INTEGER NOT NULL,
	measurements         TEXT NOT NULL,
	crisp_score          INTEGER NOT NULL,
	fuzzy_score          REAL NOT NULL,
	risk_category        TEXT NOT NULL,
	recommended_response TEXT NOT NULL,
	parameter_scores     TEXT NOT NULL,
	created_at           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_patient ON assessments(patient_id, recorded_at);
`

// schemaV2 is the fresh-install DDL. recorded_at holds Unix nanoseconds so
// that ordering by it is chronological.
var schemaV2 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS assessments (
	id                   TEXT PRIMARY KEY,
	patient_id           TEXT NOT NULL,
	recorded_at          INTEGER NOT NULL,
	measurements         TEXT NOT NULL,
	crisp_score          INTEGER NOT NULL,
	fuzzy_score          REAL NOT NULL,
	risk_category        TEXT NOT NULL,
	recommended_response TEXT NOT NULL,
	red_score            INTEGER NOT NULL DEFAULT 0,
	oxygen_scale         INTEGER NOT NULL DEFAULT 1,
	parameter_scores     TEXT NOT NULL,
	created_at           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_patient ON assessments(patient_id, recorded_at);
`

// migrationV1ToV2 backfills red_score from the stored parameter points.
var migrationV1ToV2 = `
ALTER TABLE assessments ADD COLUMN red_score INTEGER NOT NULL DEFAULT 0;
ALTER TABLE assessments ADD COLUMN oxygen_scale INTEGER NOT NULL DEFAULT 1;
UPDATE assessments SET red_score = 1 WHERE
	json_extract(parameter_scores, '$.respiratory_rate') >= 3 OR
	json_extract(parameter_scores, '$.oxygen_saturation') >= 3 OR
	json_extract(parameter_scores, '$.systolic_bp') >= 3 OR
	json_extract(parameter_scores, '$.pulse') >= 3 OR
	json_extract(parameter_scores, '$.consciousness') >= 3 OR
	json_extract(parameter_scores, '$.temperature') >= 3;
UPDATE assessments SET oxygen_scale = 2 WHERE
	json_extract(measurements, '$.supplemental_oxygen') = 1;
UPDATE schema_version SET version = 2;
`
