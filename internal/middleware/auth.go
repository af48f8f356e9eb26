package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/newstech/newstech/internal/ctxkeys"
	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/service"
)

const (
	msgAuthRequired = "authentication required"
	msgInvalidToken = "invalid or expired token"
)

// TokenVerifier resolves a bearer token to a session.
type TokenVerifier interface {
	Verify(token string) (*model.Session, error)
}

type Auth struct {
	tokens TokenVerifier
}

func NewAuth(tokens TokenVerifier) *Auth {
	return &Auth{tokens: tokens}
}

// RequireAuth rejects requests without a bearer token (401) or with an
// invalid or expired one (403), and attaches the session otherwise.
func (a *Auth) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgAuthRequired)
			return
		}

		session, err := a.tokens.Verify(token)
		if err != nil {
			if !errors.Is(err, service.ErrExpiredToken) {
				slog.Debug("rejected bearer token", "error", err, "path", r.URL.Path)
			}
			writeError(w, http.StatusForbidden, msgInvalidToken)
			return
		}

		next(w, r.WithContext(ctxkeys.WithSession(r.Context(), session)))
	}
}

// OptionalAuth never fails; a valid token attaches a session, anything else
// proceeds anonymously.
func (a *Auth) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if ok {
			session, err := a.tokens.Verify(token)
			if err == nil {
				r = r.WithContext(ctxkeys.WithSession(r.Context(), session))
			}
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
