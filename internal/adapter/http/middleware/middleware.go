package middleware

import (
	"context"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.AdminClaims, error)
	}

	Middleware struct {
		tokens TokenValidator // nil when admin auth is disabled
		log    logger.Logger
	}
)

// NewMiddleware builds the middleware set. A nil tokens disables RequireAdmin.
func NewMiddleware(tokens TokenValidator, log logger.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log,
	}
}
