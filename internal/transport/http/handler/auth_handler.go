package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidmarket/internal/domain"
	"bidmarket/internal/service"
	"bidmarket/internal/transport/http/middleware"
	resp "bidmarket/internal/transport/http/response"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupReq struct {
	Username string `json:"username" binding:"required"`
	LEI      string `json:"LEI"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=supplier buyer"`
	City     string `json:"city"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Password string `json:"password" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "Username, email, role and password are required.")
		return
	}

	u, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		LEI:      req.LEI,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     domain.Role(req.Role),
		City:     req.City,
		Address1: req.Address1,
		Address2: req.Address2,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			resp.Error(c, http.StatusConflict, "User with this email or username already exists.")
			return
		}
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user": gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		},
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login POST /api/auth/login
// 404/401 的区分是历史契约，带用户名枚举泄漏（见 DESIGN.md）
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.MsgMissingCredentials)
		return
	}

	u, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		resp.Error(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, domain.ErrWrongPassword):
		resp.Error(c, http.StatusUnauthorized, "Incorrect password.")
	case err != nil:
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful.",
			"user":    u,
		})
	}
}

// Profile GET|POST /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		resp.Error(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileUpdateReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	// 与认证凭证共用同一个 body 字段，非空即重新散列
	Password string `json:"password"`
}

// UpdateProfile PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		resp.Error(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		return
	}

	var req profileUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "Invalid profile payload.")
		return
	}

	u, err := h.auth.UpdateProfile(c.Request.Context(), p, service.ProfileUpdateInput{
		Email:    req.Email,
		Phone:    req.Phone,
		City:     req.City,
		Address1: req.Address1,
		Address2: req.Address2,
		Password: req.Password,
	})
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user":    u,
	})
}
