package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/repository"
)

const (
	usernameSuffixRange = 1000
	maxUsernameAttempts = 5
	// Lookups are repeated when a concurrent sign-in wins the race for the
	// same email or provider id.
	maxResolveAttempts = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Linker maps a verified federated identity onto exactly one account:
// provider id match, then email match (linking the provider), then a new account.
type Linker struct {
	accounts repository.AccountRepository
	suffix   func() int
}

func NewLinker(accounts repository.AccountRepository) *Linker {
	return &Linker{
		accounts: accounts,
		suffix:   func() int { return rand.IntN(usernameSuffixRange) },
	}
}

func (l *Linker) Resolve(ctx context.Context, identity *model.FederatedIdentity) (*model.Account, error) {
	if identity == nil || !identity.Provider.Valid() || identity.ProviderID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: incomplete identity", ErrProviderVerification)
	}

	var lastErr error
	for range maxResolveAttempts {
		account, err := l.accounts.ByEmailOrProviderID(ctx, identity.Email, identity.Provider, identity.ProviderID)
		switch {
		case err == nil:
			account, err = l.link(ctx, account, identity)
		case errors.Is(err, repository.ErrAccountNotFound):
			account, err = l.create(ctx, identity)
		default:
			return nil, fmt.Errorf("failed to lookup account: %w", err)
		}

		if err == nil {
			return account, nil
		}

		var conflict *repository.ConflictError
		if errors.As(err, &conflict) && conflict.Field != "username" {
			slog.Debug("federated sign-in raced, retrying lookup", "provider", identity.Provider, "field", conflict.Field)
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (l *Linker) link(ctx context.Context, account *model.Account, identity *model.FederatedIdentity) (*model.Account, error) {
	linked := account.ProviderID(identity.Provider)
	if linked != nil && *linked == identity.ProviderID {
		return account, nil
	}

	// An existing link is never overwritten; the email match still signs in.
	if linked != nil {
		slog.Warn("email matched an account linked to a different provider identity",
			"provider", identity.Provider, "user_id", account.ID)
		return account, nil
	}

	err := l.accounts.LinkProvider(ctx, account.ID, identity.Provider, identity.ProviderID, optional(identity.AvatarURL))
	if errors.Is(err, repository.ErrProviderAlreadyLinked) {
		slog.Warn("provider linked concurrently to a different identity",
			"provider", identity.Provider, "user_id", account.ID)
		return l.accounts.ByID(ctx, account.ID)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("provider linked to existing account", "provider", identity.Provider, "user_id", account.ID)

	return l.accounts.ByID(ctx, account.ID)
}

func (l *Linker) create(ctx context.Context, identity *model.FederatedIdentity) (*model.Account, error) {
	sentinel := model.PasswordSentinel
	account := &model.Account{
		FullName:     displayName(identity),
		Email:        identity.Email,
		PasswordHash: &sentinel,
		AvatarURL:    optional(identity.AvatarURL),
	}
	providerID := identity.ProviderID
	switch identity.Provider {
	case model.ProviderGoogle:
		account.GoogleID = &providerID
	case model.ProviderGitHub:
		account.GitHubID = &providerID
	default:
		return nil, fmt.Errorf("unknown provider %q", identity.Provider)
	}

	var err error
	for range maxUsernameAttempts {
		account.Username = deriveUsername(identity.Email, l.suffix())

		err = l.accounts.Create(ctx, account)
		if err == nil {
			slog.Info("new federated account created", "provider", identity.Provider, "user_id", account.ID, "username", account.Username)
			return account, nil
		}

		var conflict *repository.ConflictError
		if !errors.As(err, &conflict) || conflict.Field != "username" {
			return nil, err
		}
	}

	return nil, err
}

// deriveUsername strips the email local part to letters and digits and
// appends a numeric suffix.
func deriveUsername(email string, suffix int) string {
	local, _, _ := strings.Cut(email, "@")
	base := nonAlphanumeric.ReplaceAllString(local, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 26 {
		base = base[:26]
	}
	return base + strconv.Itoa(suffix)
}

func displayName(identity *model.FederatedIdentity) string {
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		return name
	}
	if identity.Login != "" {
		return identity.Login
	}
	local, _, _ := strings.Cut(identity.Email, "@")
	return local
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
