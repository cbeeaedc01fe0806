package records

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Repository persists roster and attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ---------- Students ----------

const studentCols = `"StudentID", "FullName", "Email", "ConsentStatus", "ConsentVersion", "ConsentTextHash", "ConsentMethod", "EnrollmentDate", "CourseList"::text`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	var courses pq.StringArray
	err := row.Scan(&s.StudentID, &s.FullName, &s.Email, &s.ConsentStatus,
		&s.ConsentVersion, &s.ConsentTextHash, &s.ConsentMethod,
		&s.EnrollmentDate, &courses)
	s.CourseList = []string(courses)
	return s, err
}

// InsertStudent writes a new student and returns the assigned id.
func (r *Repository) InsertStudent(ctx context.Context, s Student) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO "Student" ("FullName", "Email", "ConsentStatus", "ConsentVersion", "ConsentTextHash", "ConsentMethod", "EnrollmentDate", "CourseList")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text[])
		RETURNING "StudentID"
	`, s.FullName, s.Email, s.ConsentStatus, s.ConsentVersion, s.ConsentTextHash, s.ConsentMethod, s.EnrollmentDate, pq.Array(s.CourseList))
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetStudent returns a single student by id.
func (r *Repository) GetStudent(ctx context.Context, id int) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM "Student" WHERE "StudentID" = $1`, id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// ListStudents returns all students.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentCols+` FROM "Student" ORDER BY "StudentID"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// StudentExists reports whether the id resolves.
func (r *Repository) StudentExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM "Student" WHERE "StudentID" = $1`, id)
}

// ---------- Courses ----------

// InsertCourse writes a new course and returns the assigned id.
func (r *Repository) InsertCourse(ctx context.Context, c Course) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO "Course" ("CourseName", "CourseCode", "InstructorID")
		VALUES ($1, $2, $3)
		RETURNING "CourseID"
	`, c.CourseName, c.CourseCode, c.InstructorID)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetCourse returns a single course by id.
func (r *Repository) GetCourse(ctx context.Context, id int) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT "CourseID", "CourseName", "CourseCode", "InstructorID"
		FROM "Course" WHERE "CourseID" = $1
	`, id)
	var c Course
	if err := row.Scan(&c.CourseID, &c.CourseName, &c.CourseCode, &c.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return c, nil
}

// ListCourses returns all courses.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT "CourseID", "CourseName", "CourseCode", "InstructorID"
		FROM "Course" ORDER BY "CourseID"
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.CourseID, &c.CourseName, &c.CourseCode, &c.InstructorID); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CourseExists reports whether the id resolves.
func (r *Repository) CourseExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM "Course" WHERE "CourseID" = $1`, id)
}

// ---------- Instructors ----------

// InsertInstructor writes a new instructor and returns the assigned id.
func (r *Repository) InsertInstructor(ctx context.Context, i Instructor) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO "Instructor" ("FullName", "Email", "Department")
		VALUES ($1, $2, $3)
		RETURNING "InstructorID"
	`, i.FullName, i.Email, i.Department)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListInstructors returns all instructors.
func (r *Repository) ListInstructors(ctx context.Context) ([]Instructor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT "InstructorID", "FullName", "Email", "Department"
		FROM "Instructor" ORDER BY "InstructorID"
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Instructor
	for rows.Next() {
		var i Instructor
		if err := rows.Scan(&i.InstructorID, &i.FullName, &i.Email, &i.Department); err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, rows.Err()
}

// InstructorExists reports whether the id resolves.
func (r *Repository) InstructorExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM "Instructor" WHERE "InstructorID" = $1`, id)
}

// ---------- Sessions ----------

const sessionCols = `"SessionID", "CourseID", "InstructorID", "StartTime", "EndTime", "AttendanceWindowBefore", "AttendanceWindowAfter", "Status"`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	err := row.Scan(&s.SessionID, &s.CourseID, &s.InstructorID, &s.StartTime,
		&s.EndTime, &s.AttendanceWindowBefore, &s.AttendanceWindowAfter, &s.Status)
	return s, err
}

// InsertSession writes a new session and returns the assigned id.
func (r *Repository) InsertSession(ctx context.Context, s Session) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO "Session" ("CourseID", "InstructorID", "StartTime", "EndTime", "AttendanceWindowBefore", "AttendanceWindowAfter", "Status")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING "SessionID"
	`, s.CourseID, s.InstructorID, s.StartTime, s.EndTime, s.AttendanceWindowBefore, s.AttendanceWindowAfter, s.Status)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetSession returns a single session by id.
func (r *Repository) GetSession(ctx context.Context, id int) (Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM "Session" WHERE "SessionID" = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

// ListSessions returns all sessions.
func (r *Repository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionCols+` FROM "Session" ORDER BY "SessionID"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// SessionExists reports whether the id resolves.
func (r *Repository) SessionExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM "Session" WHERE "SessionID" = $1`, id)
}

// ---------- Attendance records ----------

const attendanceCols = `"RecordID", "SessionID", "StudentID", "PresentFlag", "FirstSeenAt", "LastSeenAt", "CumulativeSecondsVisible", "AverageConfidence"::float8, "CamerasSeen"::text, "IsManualOverride"`

func scanAttendance(row interface{ Scan(...any) error }) (AttendanceRecord, error) {
	var rec AttendanceRecord
	var cameras pq.Int64Array
	err := row.Scan(&rec.RecordID, &rec.SessionID, &rec.StudentID, &rec.PresentFlag,
		&rec.FirstSeenAt, &rec.LastSeenAt, &rec.CumulativeSecondsVisible,
		&rec.AverageConfidence, &cameras, &rec.IsManualOverride)
	rec.CamerasSeen = []int64(cameras)
	return rec, err
}

// InsertAttendance writes a new attendance record and returns the assigned
// id. A second record for the same (session, student) pair yields
// ErrDuplicate.
func (r *Repository) InsertAttendance(ctx context.Context, rec AttendanceRecord) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO "AttendanceRecord" ("SessionID", "StudentID", "PresentFlag", "FirstSeenAt", "LastSeenAt", "CumulativeSecondsVisible", "AverageConfidence", "CamerasSeen", "IsManualOverride")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::integer[], $9)
		RETURNING "RecordID"
	`, rec.SessionID, rec.StudentID, rec.PresentFlag, rec.FirstSeenAt, rec.LastSeenAt,
		rec.CumulativeSecondsVisible, rec.AverageConfidence, pq.Array(rec.CamerasSeen), rec.IsManualOverride)
	var id int
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// GetAttendance returns a single record by id.
func (r *Repository) GetAttendance(ctx context.Context, id int) (AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+attendanceCols+` FROM "AttendanceRecord" WHERE "RecordID" = $1`, id)
	rec, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AttendanceRecord{}, ErrNotFound
	}
	return rec, err
}

// ListAttendance returns records, optionally scoped to one session or one
// student. A nil filter lists everything.
func (r *Repository) ListAttendance(ctx context.Context, sessionID, studentID *int) ([]AttendanceRecord, error) {
	query := `SELECT ` + attendanceCols + ` FROM "AttendanceRecord"`
	args := []any{}
	switch {
	case sessionID != nil:
		query += ` WHERE "SessionID" = $1`
		args = append(args, *sessionID)
	case studentID != nil:
		query += ` WHERE "StudentID" = $1`
		args = append(args, *studentID)
	}
	query += ` ORDER BY "RecordID"`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// UpdateAttendance applies the non-nil patch fields and leaves the rest
// untouched.
func (r *Repository) UpdateAttendance(ctx context.Context, id int, patch AttendancePatch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE "AttendanceRecord"
		SET "PresentFlag"      = COALESCE($2, "PresentFlag"),
		    "IsManualOverride" = COALESCE($3, "IsManualOverride")
		WHERE "RecordID" = $1
	`, id, patch.PresentFlag, patch.IsManualOverride)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Aggregates ----------

// CountStats returns the dashboard counters. today is a calendar day in the
// configured reporting timezone; tz names the IANA zone used to bucket
// session start times.
func (r *Repository) CountStats(ctx context.Context, today string, tz string) (Stats, error) {
	var st Stats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "Student"`).Scan(&st.TotalStudents); err != nil {
		return Stats{}, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "Course"`).Scan(&st.TotalCourses); err != nil {
		return Stats{}, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "Session"`).Scan(&st.TotalSessions); err != nil {
		return Stats{}, err
	}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM "Session"
		WHERE ("StartTime" AT TIME ZONE $1)::date = $2::date
	`, tz, today).Scan(&st.TodaySessions)
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (r *Repository) exists(ctx context.Context, query string, id int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
