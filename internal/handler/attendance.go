package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/records"
)

func attendanceJSON(r records.AttendanceRecord) gin.H {
	return gin.H{
		"RecordID":         r.RecordID,
		"SessionID":        r.SessionID,
		"StudentID":        r.StudentID,
		"PresentFlag":      r.PresentFlag,
		"FirstSeenAt":      timeOrNil(r.FirstSeenAt),
		"LastSeenAt":       timeOrNil(r.LastSeenAt),
		"IsManualOverride": r.IsManualOverride,
	}
}

func writeAttendanceList(c *gin.Context, recs []records.AttendanceRecord, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(recs))
	for _, r := range recs {
		out = append(out, attendanceJSON(r))
	}
	c.JSON(http.StatusOK, out)
}

// ListAttendance returns all attendance records.
func (h *Handler) ListAttendance(c *gin.Context) {
	recs, err := h.svc.ListAttendance(c.Request.Context(), nil, nil)
	writeAttendanceList(c, recs, err)
}

// ListAttendanceBySession returns the records for one session.
func (h *Handler) ListAttendanceBySession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	recs, err := h.svc.ListAttendance(c.Request.Context(), &id, nil)
	writeAttendanceList(c, recs, err)
}

// ListAttendanceByStudent returns the records for one student.
func (h *Handler) ListAttendanceByStudent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	recs, err := h.svc.ListAttendance(c.Request.Context(), nil, &id)
	writeAttendanceList(c, recs, err)
}

type createAttendanceRequest struct {
	SessionID   int   `json:"SessionID"`
	StudentID   int   `json:"StudentID"`
	PresentFlag *bool `json:"PresentFlag"`
}

// CreateAttendance records a manual attendance entry.
func (h *Handler) CreateAttendance(c *gin.Context) {
	var req createAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	rec, err := h.svc.CreateManualAttendance(c.Request.Context(), req.SessionID, req.StudentID, req.PresentFlag)
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "create", "AttendanceRecord", nil, attendanceJSON(rec))
	c.JSON(http.StatusCreated, gin.H{"success": true, "RecordID": rec.RecordID, "message": "Attendance recorded"})
}

type updateAttendanceRequest struct {
	PresentFlag      *bool `json:"PresentFlag"`
	IsManualOverride *bool `json:"IsManualOverride"`
}

// UpdateAttendance applies a partial update: only fields present in the
// payload change, everything else keeps its prior value.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	before, after, err := h.svc.UpdateAttendance(c.Request.Context(), id, records.AttendancePatch{
		PresentFlag:      req.PresentFlag,
		IsManualOverride: req.IsManualOverride,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "update", "AttendanceRecord", attendanceJSON(before), attendanceJSON(after))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Attendance updated"})
}
