package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/repository"
	"github.com/newstech/newstech/internal/validation"
)

// AuthResult is a signed-in account with its fresh session token.
type AuthResult struct {
	Account   *model.Account
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

type AuthService struct {
	accounts repository.AccountRepository
	tokens   *TokenService
	linker   *Linker
	google   GoogleVerifier // nil when Google sign-in is not configured
	github   GitHubProvider // nil when GitHub sign-in is not configured
}

func NewAuthService(
	accounts repository.AccountRepository,
	tokens *TokenService,
	linker *Linker,
	google GoogleVerifier,
	github GitHubProvider,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		linker:   linker,
		google:   google,
		github:   github,
	}
}

func (s *AuthService) GoogleEnabled() bool { return s.google != nil }
func (s *AuthService) GitHubEnabled() bool { return s.github != nil }

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, &validation.Error{Message: "all fields are required"}
	}

	err := validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateName(in.FullName)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateUsername(in.Username)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		FullName:     in.FullName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: &hash,
	}
	err = s.accounts.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("new account registered", "user_id", account.ID, "username", account.Username)

	return s.issue(account)
}

// Login accepts a username or an email as identifier. Unknown identifiers and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, &validation.Error{Message: "username and password are required"}
	}

	account, err := s.accounts.ByLoginIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.signIn(ctx, account.ID)
}

func (s *AuthService) AuthenticateGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google: %w", ErrProviderNotConfigured)
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, &validation.Error{Field: "idToken", Message: "idToken is required"}
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	account, err := s.linker.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.signIn(ctx, account.ID)
}

func (s *AuthService) GitHubAuthURL(state string) (string, error) {
	if s.github == nil {
		return "", fmt.Errorf("github: %w", ErrProviderNotConfigured)
	}
	return s.github.AuthCodeURL(state), nil
}

func (s *AuthService) AuthenticateGitHub(ctx context.Context, code string) (*AuthResult, error) {
	if s.github == nil {
		return nil, fmt.Errorf("github: %w", ErrProviderNotConfigured)
	}

	identity, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	account, err := s.linker.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.signIn(ctx, account.ID)
}

// VerifyToken resolves a bearer token to its session.
func (s *AuthService) VerifyToken(token string) (*model.Session, error) {
	return s.tokens.Verify(token)
}

// signIn records the login and returns the refreshed account with a token.
func (s *AuthService) signIn(ctx context.Context, accountID int64) (*AuthResult, error) {
	err := s.accounts.TouchLogin(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	account, err := s.accounts.ByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	slog.Info("user signed in", "user_id", account.ID)

	return s.issue(account)
}

func (s *AuthService) issue(account *model.Account) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Token: token, ExpiresAt: exp}, nil
}
