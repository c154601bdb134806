package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: NewUserResponse(user)})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err, "Registration failed")
		return
	}
	token, err := h.auth.IssueToken(user)
	if err != nil {
		writeError(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: NewUserResponse(user)})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetUint64(ctxUserID))
	if err != nil {
		writeError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}
