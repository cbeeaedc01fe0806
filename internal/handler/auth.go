package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the mock credential tables. On success the response carries a
// short-lived token whose subject attributes later audited actions.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	name, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	resp := gin.H{
		"success": true,
		"message": "Login successful",
		"user":    gin.H{"email": req.Email, "name": name},
	}
	if token, exp, err := auth.Issue(req.Email, name, h.jwtIssuer, h.jwtKey, h.jwtTTL); err == nil {
		resp["access_token"] = token
		resp["expires_at"] = exp.Unix()
	}
	c.JSON(http.StatusOK, resp)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser stores a signup in the volatile registry. Nothing is
// persisted; the registry lives and dies with the process.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		badRequest(c, "All fields are required")
		return
	}

	if err := h.users.Register(req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			badRequest(c, "User already exists")
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"user":    gin.H{"email": req.Email, "name": req.Name},
	})
}
