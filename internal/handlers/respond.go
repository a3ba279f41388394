package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/timewise-api/internal/constants"
	"github.com/yukikurage/timewise-api/internal/dto"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/middleware"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/services"
	"go.uber.org/zap"
)

var registerTagNameOnce sync.Once

// RegisterJSONFieldNames makes validation errors report JSON field names.
func RegisterJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindJSON binds the request body into req and translates binding failures
// into field-level validation errors.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return &services.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("Missing required field: %s", fe.Field()),
				Missing: true,
			}
		}
		return &services.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("Invalid value for field: %s", fe.Field()),
		}
	}
	return dto.ErrInvalidBody
}

// decodePatch reads the raw body and decodes it against the allow-list of req.
func decodePatch(c *gin.Context, req any) (dto.Fields, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, dto.ErrInvalidBody
	}
	return dto.DecodePatch(body, req)
}

// respondError maps a service error onto the API error taxonomy. Unexpected
// errors are logged with the operation and caller and answered with a
// generic 500.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var (
		verr    *services.ValidationError
		unknown *dto.UnknownFieldError
	)

	switch {
	case errors.As(err, &verr):
		if verr.Missing {
			apierrors.MissingField(c, verr.Field, verr.Message)
			return
		}
		apierrors.InvalidField(c, verr.Field, verr.Message)
	case errors.As(err, &unknown):
		apierrors.UnknownField(c, unknown.Field, unknown.Allowed, unknown.Error())
	case errors.Is(err, dto.ErrInvalidBody):
		apierrors.BadRequest(c, "Invalid request body")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrCurrentPasswordIncorrect):
		apierrors.BadRequest(c, sentence(err))
	case errors.Is(err, services.ErrInvalidResetToken),
		errors.Is(err, services.ErrInvalidVerificationToken):
		apierrors.InvalidToken(c, sentence(err))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, sentence(err))
	case errors.Is(err, services.ErrForbidden):
		logDenied(c, logger, op, err)
		apierrors.Forbidden(c, sentence(err))
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProgressNotFound),
		errors.Is(err, services.ErrSettingsNotFound),
		errors.Is(err, services.ErrResetEmailNotFound):
		apierrors.NotFound(c, sentence(err))
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAccountConflict),
		errors.Is(err, services.ErrProgressSessionOpen),
		errors.Is(err, services.ErrProgressSessionStopped):
		apierrors.Conflict(c, sentence(err))
	case errors.Is(err, services.ErrFailedToSendMail):
		logFailure(c, logger, op, err)
		apierrors.ServiceUnavailable(c, sentence(err))
	default:
		logFailure(c, logger, op, err)
		apierrors.InternalError(c, "")
	}
}

func logFailure(c *gin.Context, logger *zap.Logger, op string, err error) {
	userID, _ := middleware.GetUserID(c)
	logger.Error("request failed",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
}

func logDenied(c *gin.Context, logger *zap.Logger, op string, err error) {
	userID, _ := middleware.GetUserID(c)
	logger.Warn("request denied",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("reason", err.Error()),
	)
}

// sentence capitalizes the first letter of an error message.
func sentence(err error) string {
	msg := err.Error()
	for i, r := range msg {
		return string(unicode.ToUpper(r)) + msg[i+len(string(r)):]
	}
	return msg
}

// currentActor returns the user resolved by the guard middleware.
func currentActor(c *gin.Context) (*models.User, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return actor, true
}
