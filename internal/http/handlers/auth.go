package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nmbsms/scholarship-backend/internal/auth"
	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/nmbsms/scholarship-backend/internal/http/middleware"
	"github.com/nmbsms/scholarship-backend/internal/token"
)

type AuthHandler struct {
	svc *auth.Service
	// cookieMaxAge matches the token lifetime, in seconds.
	cookieMaxAge int
}

func NewAuthHandler(svc *auth.Service, cookieMaxAge int) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		cookieMaxAge: cookieMaxAge,
	}
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *AuthHandler) InitialSignUp(c *gin.Context) {
	var req InitialSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.InitialSignUp(c.Request.Context(), req.Email, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authorization successful"})
}

func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.SetPassword(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password set successfully"})
}

func (h *AuthHandler) CompleteSignUp(c *gin.Context) {
	var req CompleteSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	profile := auth.Profile{
		Name:                     req.Name,
		Sex:                      req.Sex,
		PhoneNumber:              req.PhoneNumber,
		UniversityName:           req.UniversityName,
		UniversityRegistrationID: req.UniversityRegistrationID,
		CourseProgrammeName:      req.CourseProgrammeName,
		EnrolledYear:             req.EnrolledYear,
		BatchNo:                  req.BatchNo,
	}
	if err := h.svc.CompleteSignUp(c.Request.Context(), req.Email, profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile created successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	tokenStr, account, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, tokenStr, h.cookieMaxAge, "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(account),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	tokenStr := middleware.ExtractToken(c)
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or missing Authorization header"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), tokenStr); err != nil {
		respondError(c, err)
		return
	}

	// Expire the session cookie client-side as well.
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// ChangePassword is the authenticated variant: the subject comes from the
// session, not the request body.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	email := middleware.Subject(c)
	if err := h.svc.ChangePassword(c.Request.Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// Me echoes the authenticated account, the cheap way for the frontend to
// restore a session after a reload.
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.svc.AccountByEmail(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(account)})
}

func userResponse(account *model.Account) UserResponse {
	resp := UserResponse{
		ID:               account.ID,
		Email:            account.Email,
		Role:             string(account.Role),
		BatchNo:          account.BatchNo,
		ProfileCompleted: account.ProfileCompleted(),
	}
	if account.Name != nil {
		resp.Name = *account.Name
	}
	if account.EnrollmentStatus != nil {
		resp.EnrollmentStatus = *account.EnrollmentStatus
	}
	return resp
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, auth.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, token.ErrInvalidToken), errors.Is(err, token.ErrExpiredToken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
