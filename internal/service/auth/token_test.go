package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueValidate(t *testing.T) {
	svc, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, exp, err := svc.Issue(context.Background(), "ops")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("Issue() expiry %v is in the past", exp)
	}

	claims, err := svc.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != types.AdminRole.String() {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	svc, _ := NewTokenService("secret", time.Hour)
	other, _ := NewTokenService("other-secret", time.Hour)

	foreign, _, err := other.Issue(context.Background(), "ops")
	if err != nil {
		t.Fatal(err)
	}

	expiredSvc, _ := NewTokenService("secret", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredSvc.Issue(context.Background(), "ops")
	if err != nil {
		t.Fatal(err)
	}

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.AdminClaims{
		Role: "VIEWER",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", types.ErrInvalidToken},
		{"wrong secret", foreign, types.ErrInvalidToken},
		{"expired", expired, ErrExpToken},
		{"not admin", notAdmin, types.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewTokenServiceEmptySecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("NewTokenService(\"\") error = %v", err)
	}
}
