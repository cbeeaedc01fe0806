package records

import (
	"context"
	"time"
)

// Service validates input, applies business defaults, and coordinates the
// repository. All mutating paths reject malformed input before storage is
// touched.
type Service struct {
	repo *Repository
	now  func() time.Time
	loc  *time.Location
}

// NewService creates a service backed by a repository. loc is the reporting
// timezone for calendar-day aggregates.
func NewService(repo *Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, now: time.Now, loc: loc}
}

// ---------- Students ----------

// CreateStudent validates and inserts a student. ConsentStatus defaults to
// pending and the enrollment date is stamped with today.
func (s *Service) CreateStudent(ctx context.Context, st Student) (Student, error) {
	if st.FullName == "" {
		return Student{}, required("FullName")
	}
	if st.Email == "" {
		return Student{}, required("Email")
	}
	if st.ConsentStatus == "" {
		st.ConsentStatus = ConsentPending
	}
	if !validConsentStatus(st.ConsentStatus) {
		return Student{}, invalid("ConsentStatus", "must be pending, granted or revoked")
	}
	if st.CourseList == nil {
		st.CourseList = []string{}
	}
	st.EnrollmentDate = s.now().In(s.loc)

	id, err := s.repo.InsertStudent(ctx, st)
	if err != nil {
		return Student{}, err
	}
	st.StudentID = id
	return st, nil
}

// GetStudent returns one student or ErrNotFound.
func (s *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return s.repo.GetStudent(ctx, id)
}

// ListStudents returns all students.
func (s *Service) ListStudents(ctx context.Context) ([]Student, error) {
	return s.repo.ListStudents(ctx)
}

// ---------- Courses ----------

// CreateCourse validates and inserts a course. A referenced instructor must
// exist; dangling references are rejected rather than stored.
func (s *Service) CreateCourse(ctx context.Context, c Course) (Course, error) {
	if c.CourseName == "" {
		return Course{}, required("CourseName")
	}
	if c.CourseCode == "" {
		return Course{}, required("CourseCode")
	}
	if c.InstructorID != nil {
		ok, err := s.repo.InstructorExists(ctx, *c.InstructorID)
		if err != nil {
			return Course{}, err
		}
		if !ok {
			return Course{}, invalid("InstructorID", "unknown instructor")
		}
	}
	id, err := s.repo.InsertCourse(ctx, c)
	if err != nil {
		return Course{}, err
	}
	c.CourseID = id
	return c, nil
}

// GetCourse returns one course or ErrNotFound.
func (s *Service) GetCourse(ctx context.Context, id int) (Course, error) {
	return s.repo.GetCourse(ctx, id)
}

// ListCourses returns all courses.
func (s *Service) ListCourses(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

// ---------- Instructors ----------

// CreateInstructor validates and inserts an instructor.
func (s *Service) CreateInstructor(ctx context.Context, i Instructor) (Instructor, error) {
	if i.FullName == "" {
		return Instructor{}, required("FullName")
	}
	if i.Email == "" {
		return Instructor{}, required("Email")
	}
	id, err := s.repo.InsertInstructor(ctx, i)
	if err != nil {
		return Instructor{}, err
	}
	i.InstructorID = id
	return i, nil
}

// ListInstructors returns all instructors.
func (s *Service) ListInstructors(ctx context.Context) ([]Instructor, error) {
	return s.repo.ListInstructors(ctx)
}

// ---------- Sessions ----------

const defaultWindowMinutes = 10

// CreateSession validates and inserts a session. Window values default to 10
// minutes on either side of the nominal bounds.
func (s *Service) CreateSession(ctx context.Context, sess Session, windowBefore, windowAfter *int) (Session, error) {
	if sess.CourseID == 0 {
		return Session{}, required("CourseID")
	}
	if sess.StartTime.IsZero() {
		return Session{}, required("StartTime")
	}
	if sess.EndTime.IsZero() {
		return Session{}, required("EndTime")
	}
	if !sess.StartTime.Before(sess.EndTime) {
		return Session{}, invalid("StartTime", "must be before EndTime")
	}

	sess.AttendanceWindowBefore = defaultWindowMinutes
	sess.AttendanceWindowAfter = defaultWindowMinutes
	if windowBefore != nil {
		sess.AttendanceWindowBefore = *windowBefore
	}
	if windowAfter != nil {
		sess.AttendanceWindowAfter = *windowAfter
	}
	if sess.AttendanceWindowBefore < 0 {
		return Session{}, invalid("AttendanceWindowBefore", "must not be negative")
	}
	if sess.AttendanceWindowAfter < 0 {
		return Session{}, invalid("AttendanceWindowAfter", "must not be negative")
	}

	if sess.Status == "" {
		sess.Status = SessionScheduled
	}
	if !validSessionStatus(sess.Status) {
		return Session{}, invalid("Status", "must be scheduled, in-progress, completed or cancelled")
	}

	ok, err := s.repo.CourseExists(ctx, sess.CourseID)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, invalid("CourseID", "unknown course")
	}

	id, err := s.repo.InsertSession(ctx, sess)
	if err != nil {
		return Session{}, err
	}
	sess.SessionID = id
	return sess, nil
}

// GetSession returns one session or ErrNotFound.
func (s *Service) GetSession(ctx context.Context, id int) (Session, error) {
	return s.repo.GetSession(ctx, id)
}

// ListSessions returns all sessions.
func (s *Service) ListSessions(ctx context.Context) ([]Session, error) {
	return s.repo.ListSessions(ctx)
}

// ---------- Attendance ----------

// CreateManualAttendance records presence entered by a human. Both seen
// timestamps are stamped with now and the record is flagged as a manual
// override.
func (s *Service) CreateManualAttendance(ctx context.Context, sessionID, studentID int, present *bool) (AttendanceRecord, error) {
	if sessionID == 0 {
		return AttendanceRecord{}, required("SessionID")
	}
	if studentID == 0 {
		return AttendanceRecord{}, required("StudentID")
	}
	if ok, err := s.repo.SessionExists(ctx, sessionID); err != nil {
		return AttendanceRecord{}, err
	} else if !ok {
		return AttendanceRecord{}, invalid("SessionID", "unknown session")
	}
	if ok, err := s.repo.StudentExists(ctx, studentID); err != nil {
		return AttendanceRecord{}, err
	} else if !ok {
		return AttendanceRecord{}, invalid("StudentID", "unknown student")
	}

	now := s.now().UTC()
	rec := AttendanceRecord{
		SessionID:        sessionID,
		StudentID:        studentID,
		PresentFlag:      true,
		FirstSeenAt:      &now,
		LastSeenAt:       &now,
		CamerasSeen:      []int64{},
		IsManualOverride: true,
	}
	if present != nil {
		rec.PresentFlag = *present
	}
	if err := validateRecord(rec); err != nil {
		return AttendanceRecord{}, err
	}

	id, err := s.repo.InsertAttendance(ctx, rec)
	if err != nil {
		return AttendanceRecord{}, err
	}
	rec.RecordID = id
	return rec, nil
}

// validateRecord enforces the record invariants shared by manual entry and
// the detection pipeline: seen timestamps ordered, confidence within [0,1].
func validateRecord(rec AttendanceRecord) error {
	if rec.FirstSeenAt != nil && rec.LastSeenAt != nil && rec.FirstSeenAt.After(*rec.LastSeenAt) {
		return invalid("FirstSeenAt", "must not be after LastSeenAt")
	}
	if rec.AverageConfidence != nil && (*rec.AverageConfidence < 0 || *rec.AverageConfidence > 1) {
		return invalid("AverageConfidence", "must be within [0,1]")
	}
	if rec.CumulativeSecondsVisible != nil && *rec.CumulativeSecondsVisible < 0 {
		return invalid("CumulativeSecondsVisible", "must not be negative")
	}
	return nil
}

// GetAttendance returns one record or ErrNotFound.
func (s *Service) GetAttendance(ctx context.Context, id int) (AttendanceRecord, error) {
	return s.repo.GetAttendance(ctx, id)
}

// ListAttendance returns records, optionally filtered by session or student.
func (s *Service) ListAttendance(ctx context.Context, sessionID, studentID *int) ([]AttendanceRecord, error) {
	return s.repo.ListAttendance(ctx, sessionID, studentID)
}

// UpdateAttendance applies a partial update and returns the record before and
// after the change. Fields absent from the patch keep their prior values; an
// all-nil patch is a no-op.
func (s *Service) UpdateAttendance(ctx context.Context, id int, patch AttendancePatch) (before, after AttendanceRecord, err error) {
	before, err = s.repo.GetAttendance(ctx, id)
	if err != nil {
		return AttendanceRecord{}, AttendanceRecord{}, err
	}
	after = applyPatch(before, patch)
	if err := s.repo.UpdateAttendance(ctx, id, patch); err != nil {
		return AttendanceRecord{}, AttendanceRecord{}, err
	}
	return before, after, nil
}

func applyPatch(rec AttendanceRecord, patch AttendancePatch) AttendanceRecord {
	if patch.PresentFlag != nil {
		rec.PresentFlag = *patch.PresentFlag
	}
	if patch.IsManualOverride != nil {
		rec.IsManualOverride = *patch.IsManualOverride
	}
	return rec
}

// ---------- Dashboard ----------

// DashboardStats recomputes the aggregate counters on every call. A session
// counts as today's when its start instant falls on the current calendar day
// in the reporting timezone.
func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	return s.repo.CountStats(ctx, calendarDay(s.now(), s.loc), s.loc.String())
}

// calendarDay buckets an instant into a calendar day in loc.
func calendarDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
