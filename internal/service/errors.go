package service

import (
	"errors"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingSecret         = errors.New("token signing secret is not configured")
	ErrInvalidToken          = errors.New("invalid token")
	ErrExpiredToken          = errors.New("token expired")
	ErrProviderNotConfigured = errors.New("provider is not configured")
	ErrProviderVerification  = errors.New("provider verification failed")
	ErrProviderUnavailable   = errors.New("upstream provider unavailable")
	ErrMissingCoordinates    = errors.New("latitude and longitude are required")
)
