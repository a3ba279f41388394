// Package token issues and verifies the signed, self-contained credentials
// used for authentication, password resets and email verification.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to one use. A token never verifies for a purpose
// other than the one it was issued for.
type Purpose string

const (
	PurposeAccess            Purpose = "access"
	PurposePasswordReset     Purpose = "password_reset"
	PurposeEmailVerification Purpose = "email_verification"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Claims is the JWT payload. The subject is the user ID. Binding ties the
// token to server-side state; a bound token stops verifying once the caller
// sees that state change.
type Claims struct {
	Purpose Purpose `json:"purpose"`
	Binding string  `json:"bnd,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewService creates a Service signing with HS256.
func NewService(secret, issuer string) *Service {
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service reading time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.now = now
	return &clone
}

// Issue signs a token for subjectID. A ttl of zero issues a token without an
// expiry.
func (s *Service) Issue(subjectID string, purpose Purpose, ttl time.Duration) (string, error) {
	return s.IssueBound(subjectID, purpose, "", ttl)
}

// IssueBound is Issue with a binding value carried in the token.
func (s *Service) IssueBound(subjectID string, purpose Purpose, binding string, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("token subject is required")
	}

	issuedAt := s.now()
	claims := &Claims{
		Purpose: purpose,
		Binding: binding,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subjectID,
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and purpose of tokenString and returns
// its subject.
func (s *Service) Verify(tokenString string, purpose Purpose) (string, error) {
	subject, _, err := s.VerifyBound(tokenString, purpose)
	return subject, err
}

// VerifyBound is Verify that also returns the token's binding value. Comparing
// the binding against current state is left to the caller.
func (s *Service) VerifyBound(tokenString string, purpose Purpose) (subject, binding string, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpired
		}
		return "", "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", "", ErrInvalid
	}
	if claims.Purpose != purpose {
		return "", "", fmt.Errorf("%w: unexpected purpose %q", ErrInvalid, claims.Purpose)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return claims.Subject, claims.Binding, nil
}
