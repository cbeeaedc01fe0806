package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartattend/internal/records"
)

func sessionJSON(s records.Session) gin.H {
	var instructor any
	if s.InstructorID != nil {
		instructor = *s.InstructorID
	}
	return gin.H{
		"SessionID":    s.SessionID,
		"CourseID":     s.CourseID,
		"InstructorID": instructor,
		"StartTime":    s.StartTime.UTC().Format(time.RFC3339),
		"EndTime":      s.EndTime.UTC().Format(time.RFC3339),
		"Status":       s.Status,
	}
}

// ListSessions returns all sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionJSON(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetSession returns one session by id.
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionJSON(s))
}

type createSessionRequest struct {
	CourseID               int    `json:"CourseID"`
	InstructorID           *int   `json:"InstructorID"`
	StartTime              string `json:"StartTime"`
	EndTime                string `json:"EndTime"`
	AttendanceWindowBefore *int   `json:"AttendanceWindowBefore"`
	AttendanceWindowAfter  *int   `json:"AttendanceWindowAfter"`
	Status                 string `json:"Status"`
}

// CreateSession validates and inserts a session. Timestamps arrive as
// RFC 3339 strings; malformed values are rejected before storage.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		badRequest(c, "StartTime: must be an RFC 3339 timestamp")
		return
	}
	end, err := parseTimestamp(req.EndTime)
	if err != nil {
		badRequest(c, "EndTime: must be an RFC 3339 timestamp")
		return
	}

	s, err := h.svc.CreateSession(c.Request.Context(), records.Session{
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
		StartTime:    start,
		EndTime:      end,
		Status:       req.Status,
	}, req.AttendanceWindowBefore, req.AttendanceWindowAfter)
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "create", "Session", nil, sessionJSON(s))
	c.JSON(http.StatusCreated, gin.H{"success": true, "SessionID": s.SessionID, "message": "Session created"})
}

// parseTimestamp accepts RFC 3339 with or without an explicit offset. An
// empty value parses to the zero time so the required-field check can name
// the missing field.
func parseTimestamp(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", v)
}
