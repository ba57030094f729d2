package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "taxi-kpis"

// TokenService issues and validates admin tokens signed with HS256.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for subject with the admin role.
func (s *TokenService) Issue(ctx context.Context, subject string) (string, time.Time, error) {
	ctx = wrap.WithAction(ctx, "issue_token")

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	claims := models.AdminClaims{
		Role: types.AdminRole.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrTokenGenerateFail, err))
	}

	return token, expiresAt, nil
}

// Validate parses token and checks the signature, expiry and admin role.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.AdminClaims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &models.AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, types.ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}
	if !parsed.Valid {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	if claims.Role != types.AdminRole.String() {
		return nil, wrap.Error(ctx, types.ErrForbidden)
	}

	return claims, nil
}
