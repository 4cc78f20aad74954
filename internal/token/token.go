package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: the user id travels in the registered subject
// claim, the email in a custom claim.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and validates signed, time-bound identity tokens. It holds
// no state beyond the signing secret and lifetime, so all methods are pure
// functions of their inputs.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

func NewService(secret string, lifetime time.Duration) *Service {
	return &Service{secret: []byte(secret), lifetime: lifetime}
}

// Issue signs a token for the given user, expiring after the configured
// lifetime.
func (s *Service) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(s.secret)
}

// Validate reports whether the token is well formed, correctly signed and
// unexpired. It never returns an error: any failure is simply false.
func (s *Service) Validate(raw string) bool {
	_, err := s.parse(raw)
	return err == nil
}

// ExtractUserID returns the subject claim as a user id. Callers are expected
// to have validated the token first.
func (s *Service) ExtractUserID(raw string) (uuid.UUID, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// ExtractEmail returns the email claim.
func (s *Service) ExtractEmail(raw string) (string, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (s *Service) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
