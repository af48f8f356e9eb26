package model

import (
	"time"
)

// PasswordSentinel is stored as password_hash for accounts created through a
// federated provider. It can never match bcrypt output.
const PasswordSentinel = "oauth_user"

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderGitHub
}

type Account struct {
	ID              int64     `db:"id" json:"id"`
	FullName        string    `db:"full_name" json:"fullName"`
	Email           string    `db:"email" json:"email"`
	Username        string    `db:"username" json:"username"`
	PasswordHash    *string   `db:"password_hash" json:"-"` // Nullable for federated accounts
	GoogleID        *string   `db:"google_id" json:"googleId"`
	GitHubID        *string   `db:"github_id" json:"githubId"`
	AvatarURL       *string   `db:"avatar_url" json:"avatarUrl"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	LastAccess      time.Time `db:"last_access" json:"lastAccess"`
	LoginsThisMonth int       `db:"logins_this_month" json:"loginsThisMonth"`
	ArticlesRead    int       `db:"articles_read" json:"articlesRead"`
	OnlineTime      int       `db:"online_time" json:"onlineTime"`
	YearsActive     int       `db:"years_active" json:"yearsActive"`
}

// HasPassword reports whether the account has a usable local password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != "" && *a.PasswordHash != PasswordSentinel
}

// HasAuthMethod reports whether at least one way to sign in is set.
func (a *Account) HasAuthMethod() bool {
	return (a.PasswordHash != nil && *a.PasswordHash != "") ||
		(a.GoogleID != nil && *a.GoogleID != "") ||
		(a.GitHubID != nil && *a.GitHubID != "")
}

// ProviderID returns the linked id for the provider, or nil.
func (a *Account) ProviderID(p Provider) *string {
	switch p {
	case ProviderGoogle:
		return a.GoogleID
	case ProviderGitHub:
		return a.GitHubID
	}
	return nil
}
