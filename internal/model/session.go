package model

import (
	"time"
)

// Session is the identity carried by a verified bearer token.
type Session struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// FederatedIdentity is a provider-verified identity presented for sign-in.
type FederatedIdentity struct {
	Provider    Provider
	ProviderID  string
	Email       string
	DisplayName string
	Login       string // provider handle, used when DisplayName is empty
	AvatarURL   string
}
