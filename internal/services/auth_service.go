package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yukikurage/timewise-api/internal/mailer"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthConfig holds token lifetimes and the base URL used in mailed links.
type AuthConfig struct {
	AccessTokenTTL       time.Duration
	PasswordResetTTL     time.Duration
	EmailVerificationTTL time.Duration
	FrontendURL          string
}

// AuthService handles registration, login and account self-service.
type AuthService struct {
	store  *repository.Store
	tokens *token.Service
	mailer mailer.Mailer
	cfg    AuthConfig
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, tokens *token.Service, m mailer.Mailer, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:  store,
		tokens: tokens,
		mailer: m,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
}

// Register creates a new user with default settings and returns an access token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	switch {
	case username == "":
		return nil, "", missingField("username")
	case email == "":
		return nil, "", missingField("email")
	case input.Password == "":
		return nil, "", missingField("password")
	}
	if name == "" {
		name = username
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	emailTaken, usernameTaken, err := s.store.Users().ExistsByEmailOrUsername(ctx, email, username, "")
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing users: %w", err)
	}
	if emailTaken {
		return nil, "", ErrEmailTaken
	}
	if usernameTaken {
		return nil, "", ErrUsernameTaken
	}

	user := &models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Timezone:     "UTC",
		Language:     "en",
	}
	settings := DefaultSettings()

	if err := s.store.Users().CreateWithSettings(ctx, user, settings); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrAccountConflict
		}
		return nil, "", fmt.Errorf("failed to complete registration: %w", err)
	}

	accessToken, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, accessToken, nil
}

// LoginInput holds the credentials for authentication. Either Email or
// Username identifies the account.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// Login verifies credentials and returns the user with a fresh access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case strings.TrimSpace(input.Email) != "":
		user, err = s.store.Users().FindByEmail(ctx, normalizeEmail(input.Email))
	case strings.TrimSpace(input.Username) != "":
		user, err = s.store.Users().FindByUsername(ctx, strings.TrimSpace(input.Username))
	default:
		return nil, "", missingField("email")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, input.Password) {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, accessToken, nil
}

// IssueAccessToken signs an access token for user.
func (s *AuthService) IssueAccessToken(user *models.User) (string, error) {
	tok, err := s.tokens.Issue(user.ID, token.PurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return tok, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findUser(ctx, s.store, id)
}

// ProfilePatch lists the profile fields a user may change on their own
// account. Nil fields are left untouched.
type ProfilePatch struct {
	Name            *string
	Timezone        *string
	Language        *string
	ProfileImage    *string
	Bio             *string
	CurrentPassword *string
	NewPassword     *string
}

// UpdateProfile applies patch to the user's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error) {
	var updated *models.User
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if patch.Name != nil {
			name, err := validateName(*patch.Name)
			if err != nil {
				return err
			}
			user.Name = name
		}
		if patch.Timezone != nil {
			if err := validateTimezone(*patch.Timezone); err != nil {
				return err
			}
			user.Timezone = *patch.Timezone
		}
		if patch.Language != nil {
			user.Language = *patch.Language
		}
		if patch.ProfileImage != nil {
			user.ProfileImage = *patch.ProfileImage
		}
		if patch.Bio != nil {
			user.Bio = *patch.Bio
		}

		if patch.NewPassword != nil {
			if patch.CurrentPassword == nil {
				return missingField("current_password")
			}
			if !CheckPassword(user.PasswordHash, *patch.CurrentPassword) {
				return ErrCurrentPasswordIncorrect
			}
			hashed, err := HashPassword(*patch.NewPassword)
			if err != nil {
				return err
			}
			user.PasswordHash = hashed
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes the user and everything they own.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logger.Info("user account deleted", zap.String("user_id", userID))
	return nil
}

// RequestPasswordReset mails a short-lived reset token to the account owner.
// The token is only ever delivered by mail and is bound to the current
// password, so it stops working once any password change succeeds.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return missingField("email")
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetEmailNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	resetToken, err := s.tokens.IssueBound(user.ID, token.PurposePasswordReset, passwordFingerprint(user.PasswordHash), s.cfg.PasswordResetTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "Reset your TimeWise password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n\nIf you did not ask for a reset you can ignore this message.\n",
			user.Name, s.cfg.PasswordResetTTL, s.link("/reset-password", resetToken),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("password reset mail failed", zap.String("user_id", user.ID), zap.Error(err))
		return ErrFailedToSendMail
	}

	s.logger.Info("password reset requested", zap.String("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return missingField("token")
	}
	if newPassword == "" {
		return missingField("new_password")
	}

	userID, fingerprint, err := s.tokens.VerifyBound(resetToken, token.PurposePasswordReset)
	if err != nil {
		s.logger.Warn("password reset rejected", zap.String("reason", err.Error()))
		return ErrInvalidResetToken
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("failed to find user: %w", err)
		}
		current := passwordFingerprint(user.PasswordHash)
		if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(current)) != 1 {
			s.logger.Warn("password reset rejected", zap.String("user_id", user.ID), zap.String("reason", "token already used or superseded"))
			return ErrInvalidResetToken
		}

		user.PasswordHash = hashed
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}
		return nil
	})
}

// RequestEmailVerification mails a verification token to the user. It
// reports alreadyVerified without sending anything when there is nothing to do.
func (s *AuthService) RequestEmailVerification(ctx context.Context, userID string) (alreadyVerified bool, err error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.EmailVerified {
		return true, nil
	}

	verifyToken, err := s.tokens.Issue(user.ID, token.PurposeEmailVerification, s.cfg.EmailVerificationTTL)
	if err != nil {
		return false, fmt.Errorf("failed to issue verification token: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "Verify your TimeWise email address",
		Body: fmt.Sprintf(
			"Hi %s,\n\nConfirm your email address with the link below. It expires in %s.\n\n%s\n",
			user.Name, s.cfg.EmailVerificationTTL, s.link("/verify-email", verifyToken),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("verification mail failed", zap.String("user_id", user.ID), zap.Error(err))
		return false, ErrFailedToSendMail
	}
	return false, nil
}

// VerifyEmail consumes a verification token and marks the address verified.
func (s *AuthService) VerifyEmail(ctx context.Context, verifyToken string) error {
	if verifyToken == "" {
		return missingField("token")
	}

	userID, err := s.tokens.Verify(verifyToken, token.PurposeEmailVerification)
	if err != nil {
		s.logger.Warn("email verification rejected", zap.String("reason", err.Error()))
		return ErrInvalidVerificationToken
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidVerificationToken
			}
			return fmt.Errorf("failed to find user: %w", err)
		}
		if user.EmailVerified {
			return nil
		}

		user.EmailVerified = true
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to verify email: %w", err)
		}
		return nil
	})
}

func (s *AuthService) link(path, tok string) string {
	return s.cfg.FrontendURL + path + "?token=" + url.QueryEscape(tok)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateName trims name and rejects an empty result.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidField("name", "name cannot be empty")
	}
	return name, nil
}

// validateTimezone accepts IANA zone names such as "Europe/Paris" or "UTC".
func validateTimezone(tz string) error {
	if tz == "" {
		return invalidField("timezone", "timezone cannot be empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return invalidField("timezone", "unknown timezone %q", tz)
	}
	return nil
}

// passwordFingerprint identifies a password hash without exposing it in a
// token. It changes whenever the password does.
func passwordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:16])
}
