package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/newstech/newstech/internal/model"
)

const (
	githubAPIBaseURL = "https://api.github.com"

	// githubPlaceholderDomain completes a synthetic email when GitHub exposes none.
	githubPlaceholderDomain = "github.provider"
)

// GitHubProvider runs the authorization-code flow and reads the user profile.
type GitHubProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.FederatedIdentity, error)
}

type GitHubOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint // defaults to github.Endpoint
	APIBaseURL   string          // defaults to https://api.github.com
}

type githubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
}

func NewGitHubProvider(opts GitHubOptions) GitHubProvider {
	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = github.Endpoint
	}
	apiBaseURL := opts.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = githubAPIBaseURL
	}

	return &githubProvider{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     endpoint,
		},
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
	}
}

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (*model.FederatedIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: github token exchange: %v", ErrProviderVerification, err)
	}

	client := p.config.Client(ctx, token)

	var user githubUser
	err = p.getJSON(ctx, client, "/user", &user)
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: github user has no id", ErrProviderVerification)
	}

	// GitHub omits the email from /user when it's private. A public profile
	// email can only be set to a verified address.
	email := user.Email
	if email == "" {
		email = p.primaryEmail(ctx, client)
	}
	if email == "" {
		email = user.Login + "@" + githubPlaceholderDomain
	}

	return &model.FederatedIdentity{
		Provider:    model.ProviderGitHub,
		ProviderID:  strconv.FormatInt(user.ID, 10),
		Email:       email,
		DisplayName: user.Name,
		Login:       user.Login,
		AvatarURL:   user.AvatarURL,
	}, nil
}

// primaryEmail returns the verified primary address from /user/emails, else
// the first verified one. Unverified addresses are never used. Failures are
// logged and yield "".
func (p *githubProvider) primaryEmail(ctx context.Context, client *http.Client) string {
	var emails []githubEmail
	err := p.getJSON(ctx, client, "/user/emails", &emails)
	if err != nil {
		slog.Warn("failed to get github user emails", "error", err)
		return ""
	}

	first := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if first == "" {
			first = e.Email
		}
	}
	return first
}

func (p *githubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: github %s: %v", ErrProviderUnavailable, path, err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: github %s returned %d", ErrProviderUnavailable, path, resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(dst)
	if err != nil {
		return fmt.Errorf("failed to decode github %s: %w", path, err)
	}

	return nil
}
