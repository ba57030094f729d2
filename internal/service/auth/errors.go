package auth

import "errors"

var (
	ErrTokenGenerateFail = errors.New("failed to generate token")
	ErrExpToken          = errors.New("expired token")
	ErrEmptySecret       = errors.New("jwt secret is empty")
)
