package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/records"
)

// studentJSON is the whitelisted projection of a student row; consent
// bookkeeping beyond the status stays internal.
func studentJSON(s records.Student) gin.H {
	return gin.H{
		"StudentID":      s.StudentID,
		"FullName":       s.FullName,
		"Email":          s.Email,
		"ConsentStatus":  s.ConsentStatus,
		"EnrollmentDate": s.EnrollmentDate.Format("2006-01-02"),
		"CourseList":     s.CourseList,
	}
}

// ListStudents returns all students.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.ListStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(students))
	for _, s := range students {
		out = append(out, studentJSON(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetStudent returns one student by id.
func (h *Handler) GetStudent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.svc.GetStudent(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, studentJSON(s))
}

type createStudentRequest struct {
	FullName      string   `json:"FullName"`
	Email         string   `json:"Email"`
	ConsentStatus string   `json:"ConsentStatus"`
	CourseList    []string `json:"CourseList"`
}

// CreateStudent validates and inserts a student.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	s, err := h.svc.CreateStudent(c.Request.Context(), records.Student{
		FullName:      req.FullName,
		Email:         req.Email,
		ConsentStatus: req.ConsentStatus,
		CourseList:    req.CourseList,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "create", "Student", nil, studentJSON(s))
	c.JSON(http.StatusCreated, gin.H{"success": true, "StudentID": s.StudentID, "message": "Student created"})
}
