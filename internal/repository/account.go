package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/newstech/newstech/internal/model"
)

type AccountRepository interface {
	ByID(ctx context.Context, id int64) (*model.Account, error)
	ByLoginIdentifier(ctx context.Context, identifier string) (*model.Account, error)
	ByEmailOrProviderID(ctx context.Context, email string, provider model.Provider, providerID string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	LinkProvider(ctx context.Context, accountID int64, provider model.Provider, providerID string, avatarURL *string) error
	TouchLogin(ctx context.Context, accountID int64) error
	Update(ctx context.Context, account *model.Account) error
	Count(ctx context.Context) (int, error)
}

type accountRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db, now: time.Now}
}

// providerColumn maps a provider to its column. Only fixed identifiers are
// returned so the result is safe to splice into SQL.
func providerColumn(p model.Provider) (string, error) {
	switch p {
	case model.ProviderGoogle:
		return "google_id", nil
	case model.ProviderGitHub:
		return "github_id", nil
	}
	return "", fmt.Errorf("unknown provider %q", p)
}

func (r *accountRepository) ByID(ctx context.Context, id int64) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) ByLoginIdentifier(ctx context.Context, identifier string) (*model.Account, error) {
	account := &model.Account{}
	// Username match first so a username that looks like someone else's
	// email resolves deterministically.
	query := `SELECT * FROM users WHERE username = $1 OR email = $2
		ORDER BY CASE WHEN username = $3 THEN 0 ELSE 1 END LIMIT 1`

	err := r.db.GetContext(ctx, account, query, identifier, identifier, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) ByEmailOrProviderID(ctx context.Context, email string, provider model.Provider, providerID string) (*model.Account, error) {
	col, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}

	account := &model.Account{}
	query := `SELECT * FROM users WHERE ` + col + ` = $1 OR email = $2
		ORDER BY CASE WHEN ` + col + ` = $3 THEN 0 ELSE 1 END LIMIT 1`

	err = r.db.GetContext(ctx, account, query, providerID, email, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	if !account.HasAuthMethod() {
		return ErrNoAuthMethod
	}

	now := r.now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.LastAccess.IsZero() {
		account.LastAccess = now
	}

	query := `INSERT INTO users (full_name, email, username, password_hash, google_id, github_id, avatar_url,
		created_at, last_access, logins_this_month, articles_read, online_time, years_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		account.FullName, account.Email, account.Username, account.PasswordHash,
		account.GoogleID, account.GitHubID, account.AvatarURL,
		account.CreatedAt, account.LastAccess,
		account.LoginsThisMonth, account.ArticlesRead, account.OnlineTime, account.YearsActive,
	).Scan(&account.ID)
	if err != nil {
		return asConflict(err)
	}

	return nil
}

func (r *accountRepository) LinkProvider(ctx context.Context, accountID int64, provider model.Provider, providerID string, avatarURL *string) error {
	col, err := providerColumn(provider)
	if err != nil {
		return err
	}

	// Only an empty provider column is written; an existing link is never overwritten.
	query := `UPDATE users SET ` + col + ` = $1, avatar_url = COALESCE($2, avatar_url)
		WHERE id = $3 AND ` + col + ` IS NULL`

	result, err := r.db.ExecContext(ctx, query, providerID, avatarURL, accountID)
	if err != nil {
		return asConflict(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	existing, err := r.ByID(ctx, accountID)
	if err != nil {
		return err
	}
	linked := existing.ProviderID(provider)
	if linked != nil && *linked == providerID {
		return nil
	}

	return ErrProviderAlreadyLinked
}

func (r *accountRepository) TouchLogin(ctx context.Context, accountID int64) error {
	query := `UPDATE users SET last_access = $1, logins_this_month = logins_this_month + 1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, r.now().UTC(), accountID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `UPDATE users SET full_name = $1, email = $2, username = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, account.FullName, account.Email, account.Username, account.ID)
	if err != nil {
		return asConflict(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *accountRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}
