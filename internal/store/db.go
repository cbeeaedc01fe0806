package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and ensures the
// schema exists.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// migrate creates the tables on first run. Column and table identifiers are
// quoted PascalCase to match the published API field names. Statements run
// one at a time; pgx's prepared-statement mode rejects multi-command strings.
func migrate(db *sql.DB) error {
	statements := []string{`
	CREATE TABLE IF NOT EXISTS "Instructor" (
		"InstructorID" SERIAL PRIMARY KEY,
		"FullName"     VARCHAR(255) NOT NULL,
		"Email"        VARCHAR(254) NOT NULL,
		"Department"   VARCHAR(100) NOT NULL DEFAULT ''
	)`, `
	CREATE TABLE IF NOT EXISTS "Course" (
		"CourseID"     SERIAL PRIMARY KEY,
		"CourseName"   VARCHAR(255) NOT NULL,
		"CourseCode"   VARCHAR(20) NOT NULL,
		"InstructorID" INTEGER
	)`, `
	CREATE TABLE IF NOT EXISTS "Student" (
		"StudentID"       SERIAL PRIMARY KEY,
		"FullName"        VARCHAR(255) NOT NULL,
		"Email"           VARCHAR(254) NOT NULL,
		"ConsentStatus"   VARCHAR(50) NOT NULL DEFAULT 'pending',
		"ConsentVersion"  VARCHAR(20),
		"ConsentTextHash" VARCHAR(64),
		"ConsentMethod"   VARCHAR(100),
		"EnrollmentDate"  DATE NOT NULL,
		"CourseList"      TEXT[] NOT NULL DEFAULT '{}'
	)`, `
	CREATE TABLE IF NOT EXISTS "Session" (
		"SessionID"              SERIAL PRIMARY KEY,
		"CourseID"               INTEGER NOT NULL REFERENCES "Course"("CourseID"),
		"InstructorID"           INTEGER,
		"StartTime"              TIMESTAMPTZ NOT NULL,
		"EndTime"                TIMESTAMPTZ NOT NULL,
		"AttendanceWindowBefore" INTEGER NOT NULL DEFAULT 10 CHECK ("AttendanceWindowBefore" >= 0),
		"AttendanceWindowAfter"  INTEGER NOT NULL DEFAULT 10 CHECK ("AttendanceWindowAfter" >= 0),
		"Status"                 VARCHAR(50) NOT NULL DEFAULT 'scheduled',
		CHECK ("StartTime" < "EndTime")
	)`, `
	CREATE TABLE IF NOT EXISTS "AttendanceRecord" (
		"RecordID"                 SERIAL PRIMARY KEY,
		"SessionID"                INTEGER NOT NULL REFERENCES "Session"("SessionID"),
		"StudentID"                INTEGER NOT NULL REFERENCES "Student"("StudentID"),
		"PresentFlag"              BOOLEAN NOT NULL DEFAULT TRUE,
		"FirstSeenAt"              TIMESTAMPTZ,
		"LastSeenAt"               TIMESTAMPTZ,
		"CumulativeSecondsVisible" INTEGER,
		"AverageConfidence"        NUMERIC CHECK ("AverageConfidence" IS NULL OR ("AverageConfidence" >= 0 AND "AverageConfidence" <= 1)),
		"CamerasSeen"              INTEGER[] NOT NULL DEFAULT '{}',
		"IsManualOverride"         BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE ("SessionID", "StudentID")
	)`, `
	CREATE TABLE IF NOT EXISTS "AuditLog" (
		"LogID"         SERIAL PRIMARY KEY,
		"ActorID"       VARCHAR(100) NOT NULL,
		"Action"        VARCHAR(50) NOT NULL,
		"Target"        VARCHAR(255) NOT NULL,
		"Timestamp"     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"Details"       TEXT,
		"PreviousValue" JSONB,
		"NewValue"      JSONB
	)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_session ON "AttendanceRecord"("SessionID")`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_student ON "AttendanceRecord"("StudentID")`,
		`CREATE INDEX IF NOT EXISTS idx_session_start      ON "Session"("StartTime")`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
