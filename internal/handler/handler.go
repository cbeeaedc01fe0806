package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"smartattend/internal/audit"
	"smartattend/internal/auth"
	"smartattend/internal/records"
)

// Handler serves the /api surface.
type Handler struct {
	svc      *records.Service
	users    *auth.Store
	auditor  *audit.Recorder
	auditLog *audit.Repository

	jwtIssuer string
	jwtKey    string
	jwtTTL    time.Duration
}

// New wires the handler dependencies.
func New(svc *records.Service, users *auth.Store, auditor *audit.Recorder, auditLog *audit.Repository, jwtIssuer, jwtKey string, jwtTTL time.Duration) *Handler {
	return &Handler{
		svc:       svc,
		users:     users,
		auditor:   auditor,
		auditLog:  auditLog,
		jwtIssuer: jwtIssuer,
		jwtKey:    jwtKey,
		jwtTTL:    jwtTTL,
	}
}

// Register attaches all API routes to the router group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/login", h.Login)
	api.POST("/register", h.RegisterUser)

	api.GET("/students", h.ListStudents)
	api.POST("/students", h.CreateStudent)
	api.GET("/students/:id", h.GetStudent)

	api.GET("/courses", h.ListCourses)
	api.POST("/courses", h.CreateCourse)
	api.GET("/courses/:id", h.GetCourse)

	api.GET("/sessions", h.ListSessions)
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)

	api.GET("/attendance", h.ListAttendance)
	api.POST("/attendance", h.CreateAttendance)
	api.GET("/attendance/session/:id", h.ListAttendanceBySession)
	api.GET("/attendance/student/:id", h.ListAttendanceByStudent)
	api.PUT("/attendance/:id", h.UpdateAttendance)

	api.GET("/instructors", h.ListInstructors)
	api.POST("/instructors", h.CreateInstructor)

	api.GET("/dashboard/stats", h.DashboardStats)
	api.GET("/audit", h.ListAudit)
}

// idParam parses the numeric path id; a non-numeric id cannot match any row.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "resource not found"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}

// fail maps a service error onto the API taxonomy. Internal details never
// leak into the response body.
func fail(c *gin.Context, err error) {
	var ve records.ValidationError
	switch {
	case errors.As(err, &ve):
		badRequest(c, ve.Error())
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "resource not found"})
	case errors.Is(err, records.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "attendance already recorded for this session and student"})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	}
}

// record publishes an audit entry for a mutation, tagged with the request id.
func (h *Handler) record(c *gin.Context, action, target string, prev, next any) {
	e := audit.New(auth.Actor(c), action, target, prev, next)
	e.Details = c.GetString("request_id")
	h.auditor.Record(c.Request.Context(), e)
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
