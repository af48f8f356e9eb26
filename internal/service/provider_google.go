package service

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/newstech/newstech/internal/model"
)

// GoogleVerifier validates a Google ID token and returns the identity it asserts.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*model.FederatedIdentity, error)
}

type googleVerifier struct {
	clientID string
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier checks signature, issuer, expiry and audience against clientID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*model.FederatedIdentity, error) {
	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderVerification, err)
	}
	return identityFromGooglePayload(payload)
}

func identityFromGooglePayload(payload *idtoken.Payload) (*model.FederatedIdentity, error) {
	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrProviderVerification)
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrProviderVerification)
	}
	if !claimTrue(payload.Claims, "email_verified") {
		return nil, fmt.Errorf("%w: email not verified", ErrProviderVerification)
	}

	return &model.FederatedIdentity{
		Provider:    model.ProviderGoogle,
		ProviderID:  payload.Subject,
		Email:       email,
		DisplayName: claimString(payload.Claims, "name"),
		Login:       claimString(payload.Claims, "given_name"),
		AvatarURL:   claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}

// claimTrue accepts the boolean and the string form Google has used for
// email_verified.
func claimTrue(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
