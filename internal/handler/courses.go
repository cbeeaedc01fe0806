package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/records"
)

func courseJSON(co records.Course) gin.H {
	var instructor any
	if co.InstructorID != nil {
		instructor = *co.InstructorID
	}
	return gin.H{
		"CourseID":     co.CourseID,
		"CourseName":   co.CourseName,
		"CourseCode":   co.CourseCode,
		"InstructorID": instructor,
	}
}

// ListCourses returns all courses.
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.svc.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(courses))
	for _, co := range courses {
		out = append(out, courseJSON(co))
	}
	c.JSON(http.StatusOK, out)
}

// GetCourse returns one course by id.
func (h *Handler) GetCourse(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	co, err := h.svc.GetCourse(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courseJSON(co))
}

type createCourseRequest struct {
	CourseName   string `json:"CourseName"`
	CourseCode   string `json:"CourseCode"`
	InstructorID *int   `json:"InstructorID"`
}

// CreateCourse validates and inserts a course.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	co, err := h.svc.CreateCourse(c.Request.Context(), records.Course{
		CourseName:   req.CourseName,
		CourseCode:   req.CourseCode,
		InstructorID: req.InstructorID,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "create", "Course", nil, courseJSON(co))
	c.JSON(http.StatusCreated, gin.H{"success": true, "CourseID": co.CourseID, "message": "Course created"})
}
