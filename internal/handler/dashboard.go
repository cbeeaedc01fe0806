package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// DashboardStats returns the aggregate counters, recomputed on every call.
func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalStudents": stats.TotalStudents,
		"totalCourses":  stats.TotalCourses,
		"totalSessions": stats.TotalSessions,
		"todaySessions": stats.TodaySessions,
	})
}

// ListAudit returns recent audit entries, newest first.
func (h *Handler) ListAudit(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	entries, err := h.auditLog.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"ActorID":       e.ActorID,
			"Action":        e.Action,
			"Target":        e.Target,
			"Timestamp":     e.Timestamp.UTC().Format(time.RFC3339),
			"Details":       e.Details,
			"PreviousValue": e.PreviousValue,
			"NewValue":      e.NewValue,
		})
	}
	c.JSON(http.StatusOK, out)
}
