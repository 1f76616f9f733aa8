package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
	"task-reminder/internal/service"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type otpRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (s *Server) handleSignup(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Please fill all the fields"})
			return
		}

		if _, err := auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
			s.authError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Congratulations! Account has been created for you.."})
	}
}

func (s *Server) handleLogin(auth *service.AuthService, tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Please enter all details!"})
			return
		}

		user, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.authError(c, err)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			s.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Login successful.", "token": token, "user": publicUser(user)})
	}
}

func (s *Server) handleVerifyOTP(auth *service.AuthService, tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Email and OTP are required"})
			return
		}

		user, err := auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
		if err != nil {
			s.authError(c, err)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			s.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "OTP verified successfully", "token": token, "user": publicUser(user)})
	}
}

func (s *Server) handleResendOTP(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Email is required"})
			return
		}

		if err := auth.ResendOTP(c.Request.Context(), req.Email); err != nil {
			s.authError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "OTP resent successfully"})
	}
}

func (s *Server) handleResetPassword(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Email and newPassword are required"})
			return
		}

		if err := auth.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
			s.authError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Password reset successfully. Please login with your new password."})
	}
}

// authError maps auth service errors onto the status codes the original
// API used.
func (s *Server) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": err.Error()})
	case errors.Is(err, service.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"status": false, "msg": err.Error()})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"status": false, "msg": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": false, "msg": "This email is not registered!"})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"status": false, "msg": "Internal Server Error"})
}

func publicUser(u *model.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"verified": u.IsVerified,
	}
}
