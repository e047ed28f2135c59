package token

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only failure callers see: malformed structure,
// bad signature and expiry all deny access the same way. The distinct
// cause is logged for operators.
var ErrInvalidToken = errors.New("invalid or expired token")

// Config carries the signing material. It is injected at construction so
// the service never reads ambient global state.
type Config struct {
	Secret string
	TTL    time.Duration
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token: TTL must be positive")
	}
	return &Service{secret: []byte(cfg.Secret), ttl: cfg.TTL}, nil
}

// Issue creates a signed HS256 token whose subject is the user's email.
func (s *Service) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded subject.
func (s *Service) Validate(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Printf("[Token] rejected expired token: %v", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Printf("[Token] rejected malformed token: %v", err)
		default:
			log.Printf("[Token] rejected token: %v", err)
		}
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		log.Printf("[Token] rejected token with empty or unreadable claims")
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
