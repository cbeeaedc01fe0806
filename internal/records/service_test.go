package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validationField(t *testing.T, err error) string {
	t.Helper()
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Field
}

func TestCreateStudentRejectsMissingFields(t *testing.T) {
	svc := NewService(nil, time.UTC)
	ctx := context.Background()

	_, err := svc.CreateStudent(ctx, Student{Email: "jane@x.com"})
	if field := validationField(t, err); field != "FullName" {
		t.Fatalf("expected FullName error, got %s", field)
	}

	_, err = svc.CreateStudent(ctx, Student{FullName: "Jane Doe"})
	if field := validationField(t, err); field != "Email" {
		t.Fatalf("expected Email error, got %s", field)
	}

	_, err = svc.CreateStudent(ctx, Student{FullName: "Jane Doe", Email: "jane@x.com", ConsentStatus: "maybe"})
	if field := validationField(t, err); field != "ConsentStatus" {
		t.Fatalf("expected ConsentStatus error, got %s", field)
	}
}

func TestCreateCourseRejectsMissingFields(t *testing.T) {
	svc := NewService(nil, time.UTC)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, Course{CourseCode: "CS101"})
	if field := validationField(t, err); field != "CourseName" {
		t.Fatalf("expected CourseName error, got %s", field)
	}

	_, err = svc.CreateCourse(ctx, Course{CourseName: "Intro"})
	if field := validationField(t, err); field != "CourseCode" {
		t.Fatalf("expected CourseCode error, got %s", field)
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	svc := NewService(nil, time.UTC)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	_, err := svc.CreateSession(ctx, Session{}, nil, nil)
	if field := validationField(t, err); field != "CourseID" {
		t.Fatalf("expected CourseID error, got %s", field)
	}

	_, err = svc.CreateSession(ctx, Session{CourseID: 1, EndTime: end}, nil, nil)
	if field := validationField(t, err); field != "StartTime" {
		t.Fatalf("expected StartTime error, got %s", field)
	}

	// Start must precede end; equality is rejected too.
	_, err = svc.CreateSession(ctx, Session{CourseID: 1, StartTime: end, EndTime: start}, nil, nil)
	if field := validationField(t, err); field != "StartTime" {
		t.Fatalf("expected StartTime ordering error, got %s", field)
	}
	_, err = svc.CreateSession(ctx, Session{CourseID: 1, StartTime: start, EndTime: start}, nil, nil)
	if field := validationField(t, err); field != "StartTime" {
		t.Fatalf("expected StartTime equality error, got %s", field)
	}

	// Negative windows are rejected, defaults are 10 minutes each side.
	negative := -5
	_, err = svc.CreateSession(ctx, Session{CourseID: 1, StartTime: start, EndTime: end}, &negative, nil)
	if field := validationField(t, err); field != "AttendanceWindowBefore" {
		t.Fatalf("expected window error, got %s", field)
	}
	_, err = svc.CreateSession(ctx, Session{CourseID: 1, StartTime: start, EndTime: end}, nil, &negative)
	if field := validationField(t, err); field != "AttendanceWindowAfter" {
		t.Fatalf("expected window error, got %s", field)
	}

	_, err = svc.CreateSession(ctx, Session{CourseID: 1, StartTime: start, EndTime: end, Status: "postponed"}, nil, nil)
	if field := validationField(t, err); field != "Status" {
		t.Fatalf("expected Status error, got %s", field)
	}
}

func TestCreateManualAttendanceRequiresIDs(t *testing.T) {
	svc := NewService(nil, time.UTC)
	ctx := context.Background()

	_, err := svc.CreateManualAttendance(ctx, 0, 1, nil)
	if field := validationField(t, err); field != "SessionID" {
		t.Fatalf("expected SessionID error, got %s", field)
	}
	_, err = svc.CreateManualAttendance(ctx, 1, 0, nil)
	if field := validationField(t, err); field != "StudentID" {
		t.Fatalf("expected StudentID error, got %s", field)
	}
}

func TestValidateRecord(t *testing.T) {
	earlier := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	ok := AttendanceRecord{FirstSeenAt: &earlier, LastSeenAt: &later}
	if err := validateRecord(ok); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}

	swapped := AttendanceRecord{FirstSeenAt: &later, LastSeenAt: &earlier}
	if err := validateRecord(swapped); err == nil {
		t.Fatal("expected error when FirstSeenAt is after LastSeenAt")
	}

	for _, conf := range []float64{-0.1, 1.1} {
		c := conf
		if err := validateRecord(AttendanceRecord{AverageConfidence: &c}); err == nil {
			t.Fatalf("expected error for confidence %v", conf)
		}
	}
	half := 0.5
	if err := validateRecord(AttendanceRecord{AverageConfidence: &half}); err != nil {
		t.Fatalf("expected 0.5 confidence to pass, got %v", err)
	}

	negative := -1
	if err := validateRecord(AttendanceRecord{CumulativeSecondsVisible: &negative}); err == nil {
		t.Fatal("expected error for negative visibility")
	}
}

func TestApplyPatch(t *testing.T) {
	rec := AttendanceRecord{PresentFlag: true, IsManualOverride: false}

	// Empty patch is a no-op.
	if got := applyPatch(rec, AttendancePatch{}); got.PresentFlag != rec.PresentFlag || got.IsManualOverride != rec.IsManualOverride {
		t.Fatalf("empty patch changed the record: %+v", got)
	}

	// Only the present flag changes; the override flag is untouched.
	f := false
	got := applyPatch(rec, AttendancePatch{PresentFlag: &f})
	if got.PresentFlag != false || got.IsManualOverride != false {
		t.Fatalf("unexpected patch result: %+v", got)
	}

	tr := true
	got = applyPatch(rec, AttendancePatch{IsManualOverride: &tr})
	if got.PresentFlag != true || got.IsManualOverride != true {
		t.Fatalf("unexpected patch result: %+v", got)
	}
}

func TestCalendarDayAdvancesWithClock(t *testing.T) {
	frozen := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)

	if day := calendarDay(frozen, time.UTC); day != "2026-03-02" {
		t.Fatalf("expected 2026-03-02, got %s", day)
	}
	// One hour later the calendar day has advanced.
	if day := calendarDay(frozen.Add(time.Hour), time.UTC); day != "2026-03-03" {
		t.Fatalf("expected 2026-03-03, got %s", day)
	}

	// The reporting timezone governs the bucketing, not the instant's zone.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if day := calendarDay(frozen, tokyo); day != "2026-03-03" {
		t.Fatalf("expected 2026-03-03 in Tokyo, got %s", day)
	}
}

func TestStatusSets(t *testing.T) {
	for _, s := range []string{ConsentPending, ConsentGranted, ConsentRevoked} {
		if !validConsentStatus(s) {
			t.Fatalf("expected consent status %s to be valid", s)
		}
	}
	if validConsentStatus("approved") {
		t.Fatal("expected unknown consent status to be invalid")
	}

	for _, s := range []string{SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled} {
		if !validSessionStatus(s) {
			t.Fatalf("expected session status %s to be valid", s)
		}
	}
	if validSessionStatus("done") {
		t.Fatal("expected unknown session status to be invalid")
	}
}
