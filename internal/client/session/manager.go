// Package session tracks who is signed in on this device.
//
// The persisted snapshot is advisory: the server re-validates the token on
// every request, and a restore always ends Authenticated or Anonymous.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newstech/newstech/internal/client/store"
	"github.com/newstech/newstech/internal/model"
)

type State int

const (
	StateUnknown State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

var ErrNotAuthenticated = errors.New("not signed in")

// Storage is the key/value backing of the snapshot. store.Store implements it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// UserFetcher loads the canonical account for a token.
type UserFetcher interface {
	User(ctx context.Context, token string, id int64) (*model.Account, error)
}

// User is the account as the client sees it. LastSeen is stamped locally on
// every save and never overwrites the server's LastAccess.
type User struct {
	model.Account
	LastSeen time.Time `json:"lastSeen"`
}

type Snapshot struct {
	Token  string
	UserID int64
	User   User
}

type Manager struct {
	storage Storage
	users   UserFetcher
	now     func() time.Time

	// restoreMu serializes Restore; mu guards the fields below and is never
	// held across a network call.
	restoreMu sync.Mutex
	mu        sync.Mutex
	state     State
	current   *Snapshot
	restored  bool
}

func NewManager(storage Storage, users UserFetcher) *Manager {
	return &Manager{
		storage: storage,
		users:   users,
		now:     time.Now,
		state:   StateUnknown,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the active snapshot, or nil when anonymous.
func (m *Manager) Current() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Restore rebuilds the session from storage. It runs once; later calls
// report the state already reached. StateRestoring is visible while the
// stored token is being checked against the server. A Login or Logout that
// lands meanwhile wins over the restored snapshot.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	m.restoreMu.Lock()
	defer m.restoreMu.Unlock()

	m.mu.Lock()
	if m.restored {
		state := m.state
		m.mu.Unlock()
		return state, nil
	}
	m.restored = true
	m.state = StateRestoring
	m.mu.Unlock()

	token, account, loadErr := m.fetchStored(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRestoring {
		return m.state, nil
	}
	if account == nil {
		m.becomeAnonymous(ctx)
		return m.state, loadErr
	}

	err := m.save(ctx, token, account)
	if err != nil {
		m.becomeAnonymous(ctx)
		return m.state, err
	}
	return m.state, nil
}

// fetchStored reads the snapshot and asks the server for the canonical user.
// A nil account means the session cannot be restored; the error is set only
// when storage itself failed.
func (m *Manager) fetchStored(ctx context.Context) (string, *model.Account, error) {
	token, userID, err := m.load(ctx)
	if err != nil {
		return "", nil, err
	}
	if token == "" || userID == 0 {
		return "", nil, nil
	}

	if m.expired(token) {
		slog.Debug("stored token expired, clearing session", "user_id", userID)
		return "", nil, nil
	}

	account, err := m.users.User(ctx, token, userID)
	if err != nil {
		slog.Debug("session restore failed, clearing session", "user_id", userID, "error", err)
		return "", nil, nil
	}
	return token, account, nil
}

// Login records a fresh sign-in. Credential checks already happened on the server.
func (m *Manager) Login(ctx context.Context, account *model.Account, token string) error {
	if account == nil || token == "" {
		return fmt.Errorf("login: missing user or token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = true
	return m.save(ctx, token, account)
}

// Logout forgets the session locally. Issued tokens stay valid until expiry.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = true

	err := m.storage.DeleteMany(ctx, store.SessionKeys...)
	m.current = nil
	m.state = StateAnonymous
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// UpdateUser replaces the cached user and keeps the token.
func (m *Manager) UpdateUser(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated || m.current == nil {
		return ErrNotAuthenticated
	}
	return m.save(ctx, m.current.Token, account)
}

// Token returns the active token. A token found expired drops the session.
func (m *Manager) Token(ctx context.Context) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated || m.current == nil {
		return "", 0, ErrNotAuthenticated
	}
	if m.expired(m.current.Token) {
		m.becomeAnonymous(ctx)
		return "", 0, ErrNotAuthenticated
	}
	return m.current.Token, m.current.UserID, nil
}

func (m *Manager) load(ctx context.Context) (string, int64, error) {
	token, err := m.storage.Get(ctx, store.KeyToken)
	if err != nil {
		return "", 0, err
	}
	rawID, err := m.storage.Get(ctx, store.KeyUserID)
	if err != nil {
		return "", 0, err
	}
	if token == nil || rawID == nil {
		return "", 0, nil
	}

	userID, err := strconv.ParseInt(string(rawID), 10, 64)
	if err != nil {
		return "", 0, nil
	}
	return string(token), userID, nil
}

func (m *Manager) save(ctx context.Context, token string, account *model.Account) error {
	user := User{Account: *account, LastSeen: m.now().UTC()}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	err = m.storage.SetMany(ctx, map[string][]byte{
		store.KeyToken:  []byte(token),
		store.KeyUser:   payload,
		store.KeyUserID: []byte(strconv.FormatInt(account.ID, 10)),
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.current = &Snapshot{Token: token, UserID: account.ID, User: user}
	m.state = StateAuthenticated
	return nil
}

// becomeAnonymous clears storage best-effort; the in-memory state is
// anonymous regardless.
func (m *Manager) becomeAnonymous(ctx context.Context) {
	err := m.storage.DeleteMany(ctx, store.SessionKeys...)
	if err != nil {
		slog.Warn("failed to clear stored session", "error", err)
	}
	m.current = nil
	m.state = StateAnonymous
}

// expired decodes exp without verifying the signature. A token without a
// readable exp is treated as expired.
func (m *Manager) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	session := model.Session{ExpiresAt: claims.ExpiresAt.Time}
	return session.IsExpired(m.now())
}
