package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/newstech/newstech/internal/ctxkeys"
	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/service"
)

const oauthStateCookie = "oauth_state"

type authResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    *model.Account `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
}

func NewAuthHandler(authService *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "user registered successfully",
		Token:   result.Token,
		User:    result.Account,
	})
}

// Login accepts either the username or the email in the username field.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.Warn("password login failed", "identifier", req.Username)
		}
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "login successful",
		Token:   result.Token,
		User:    result.Account,
	})
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.AuthenticateGoogle(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "google authentication successful",
		Token:   result.Token,
		User:    result.Account,
	})
}

// GitHubAuth redirects the browser to the GitHub consent screen
func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	authURL, err := h.authService.GitHubAuthURL(state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/github",
		HttpOnly: true,
		Secure:   isProduction, // Secure flag based on APP_ENV (safer than r.TLS behind load balancers)
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

// GitHubCallback finishes the flow and hands the session to the frontend via
// query parameters.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		slog.Warn("github oauth callback missing code")
		h.redirectFrontend(w, r, url.Values{"error": {"github_no_code"}})
		return
	}

	state := query.Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("github oauth state validation failed", "error", err)
		h.redirectFrontend(w, r, url.Values{"error": {"github_failed"}})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/api/auth/github",
		MaxAge: -1,
	})

	result, err := h.authService.AuthenticateGitHub(r.Context(), code)
	if err != nil {
		slog.Error("github authentication failed", "error", err)
		h.redirectFrontend(w, r, url.Values{"error": {"github_failed"}})
		return
	}

	h.redirectFrontend(w, r, url.Values{
		"token":  {result.Token},
		"userId": {strconv.FormatInt(result.Account.ID, 10)},
	})
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.frontendURL+"/?"+params.Encode(), http.StatusFound)
}

// generateOAuthState creates a random state token for OAuth CSRF protection
func generateOAuthState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
