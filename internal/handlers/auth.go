package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/dto"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication and account HTTP handlers.
type AuthHandler struct {
	authService     *services.AuthService
	settingsService *services.SettingsService
	logger          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, settingsService *services.SettingsService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService:     authService,
		settingsService: settingsService,
		logger:          logger,
	}
}

// Register creates an account and returns an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username" binding:"required,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"max=150"`
	}

	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "auth.register", err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondError(c, h.logger, "auth.register", err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  dto.ToUserDTO(*user),
	})
}

// Login authenticates a user by email (or username) and password.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "auth.login", err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "auth.login", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.ToUserDTO(*user),
	})
}

// Logout acknowledges a logout. Tokens are stateless, so the client simply
// discards its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// LogoutMethodNotAllowed rejects logouts sent with GET.
func (h *AuthHandler) LogoutMethodNotAllowed(c *gin.Context) {
	apierrors.BadRequest(c, "Use POST to log out")
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*actor))
}

// UpdateProfile changes the authenticated user's profile and, optionally, password.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.ProfilePatchRequest
	if _, err := decodePatch(c, &req); err != nil {
		respondError(c, h.logger, "auth.update_profile", err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor.ID, services.ProfilePatch{
		Name:            req.Name,
		Timezone:        req.Timezone,
		Language:        req.Language,
		ProfileImage:    req.ProfileImage,
		Bio:             req.Bio,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondError(c, h.logger, "auth.update_profile", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetSettings returns the authenticated user's preferences.
func (h *AuthHandler) GetSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, "auth.get_settings", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingsDTO(*settings))
}

// UpdateSettings changes the authenticated user's preferences.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.SettingsDTO
	if _, err := decodePatch(c, &req); err != nil {
		respondError(c, h.logger, "auth.update_settings", err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), actor.ID, services.SettingsPatch{
		Theme:                 req.Theme,
		FontSize:              req.FontSize,
		EnableAnimations:      req.EnableAnimations,
		ReduceMotion:          req.ReduceMotion,
		CompactSidebar:        req.CompactSidebar,
		StickyHeader:          req.StickyHeader,
		EmailNotifications:    req.EmailNotifications,
		PushNotifications:     req.PushNotifications,
		TaskReminderFrequency: req.TaskReminderFrequency,
		WeeklySummaryDay:      req.WeeklySummaryDay,
		DoNotDisturb:          req.DoNotDisturb,
		DNDStartTime:          req.DNDStartTime,
		DNDEndTime:            req.DNDEndTime,
	})
	if err != nil {
		respondError(c, h.logger, "auth.update_settings", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingsDTO(*settings))
}

// DeleteAccount removes the authenticated user and all of their data.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), actor.ID); err != nil {
		respondError(c, h.logger, "auth.delete_account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account deleted successfully",
	})
}

// RequestPasswordReset mails a reset link to the account's address.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type PasswordResetRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "auth.password_reset_request", err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "auth.password_reset_request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset email sent",
	})
}

// ResetPassword sets a new password using a mailed reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "auth.password_reset", err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, h.logger, "auth.password_reset", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}

// RequestEmailVerification mails a verification link to the authenticated user.
func (h *AuthHandler) RequestEmailVerification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	alreadyVerified, err := h.authService.RequestEmailVerification(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, "auth.email_verification_request", err)
		return
	}

	message := "Verification email sent"
	if alreadyVerified {
		message = "Email is already verified"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// VerifyEmail confirms an email address using a mailed verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	type VerifyEmailRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req VerifyEmailRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "auth.email_verification", err)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondError(c, h.logger, "auth.email_verification", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
	})
}
