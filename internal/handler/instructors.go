package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/records"
)

func instructorJSON(i records.Instructor) gin.H {
	return gin.H{
		"InstructorID": i.InstructorID,
		"FullName":     i.FullName,
		"Email":        i.Email,
		"Department":   i.Department,
	}
}

// ListInstructors returns all instructors.
func (h *Handler) ListInstructors(c *gin.Context) {
	instructors, err := h.svc.ListInstructors(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(instructors))
	for _, i := range instructors {
		out = append(out, instructorJSON(i))
	}
	c.JSON(http.StatusOK, out)
}

type createInstructorRequest struct {
	FullName   string `json:"FullName"`
	Email      string `json:"Email"`
	Department string `json:"Department"`
}

// CreateInstructor validates and inserts an instructor.
func (h *Handler) CreateInstructor(c *gin.Context) {
	var req createInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	i, err := h.svc.CreateInstructor(c.Request.Context(), records.Instructor{
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.record(c, "create", "Instructor", nil, instructorJSON(i))
	c.JSON(http.StatusCreated, gin.H{"success": true, "InstructorID": i.InstructorID, "message": "Instructor created"})
}
