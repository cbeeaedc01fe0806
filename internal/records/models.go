package records

import "time"

// Consent states a student can be in. The policy text behind a grant is
// tracked by version and hash on the student row.
const (
	ConsentPending = "pending"
	ConsentGranted = "granted"
	ConsentRevoked = "revoked"
)

// Session lifecycle states. The API never advances these automatically; a
// scheduler or operator moves sessions along.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in-progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

// Student is an enrolled person subject to attendance tracking.
type Student struct {
	StudentID       int
	FullName        string
	Email           string
	ConsentStatus   string
	ConsentVersion  *string
	ConsentTextHash *string
	ConsentMethod   *string
	EnrollmentDate  time.Time
	CourseList      []string
}

// Course groups sessions under an owning instructor. InstructorID is
// advisory in the schema but validated on create.
type Course struct {
	CourseID     int
	CourseName   string
	CourseCode   string
	InstructorID *int
}

// Instructor teaches courses.
type Instructor struct {
	InstructorID int
	FullName     string
	Email        string
	Department   string
}

// Session is a single scheduled meeting of a course. The attendance window
// extends the creditable interval by minutes before the start and after the
// end.
type Session struct {
	SessionID              int
	CourseID               int
	InstructorID           *int
	StartTime              time.Time
	EndTime                time.Time
	AttendanceWindowBefore int
	AttendanceWindowAfter  int
	Status                 string
}

// AttendanceRecord captures one student's presence in one session, either
// derived by the detection pipeline or entered by hand (IsManualOverride).
type AttendanceRecord struct {
	RecordID                 int
	SessionID                int
	StudentID                int
	PresentFlag              bool
	FirstSeenAt              *time.Time
	LastSeenAt               *time.Time
	CumulativeSecondsVisible *int
	AverageConfidence        *float64
	CamerasSeen              []int64
	IsManualOverride         bool
}

// AttendancePatch carries the mutable fields of a record; nil fields are left
// untouched by an update.
type AttendancePatch struct {
	PresentFlag      *bool
	IsManualOverride *bool
}

// Stats is the dashboard aggregate snapshot.
type Stats struct {
	TotalStudents int
	TotalCourses  int
	TotalSessions int
	TodaySessions int
}

func validConsentStatus(s string) bool {
	switch s {
	case ConsentPending, ConsentGranted, ConsentRevoked:
		return true
	}
	return false
}

func validSessionStatus(s string) bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}
