package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newstech/newstech/internal/db"
	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/repository"
)

func newTestAccounts(t *testing.T) repository.AccountRepository {
	t.Helper()
	database, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	return repository.NewAccountRepository(database)
}

// fakeGoogle accepts the id tokens it knows about.
type fakeGoogle map[string]*model.FederatedIdentity

func (f fakeGoogle) Verify(_ context.Context, idToken string) (*model.FederatedIdentity, error) {
	identity, ok := f[idToken]
	if !ok {
		return nil, ErrProviderVerification
	}
	copied := *identity
	return &copied, nil
}

type fakeGitHub struct {
	identity *model.FederatedIdentity
	err      error
}

func (f *fakeGitHub) AuthCodeURL(state string) string {
	return "https://github.example/authorize?state=" + state
}

func (f *fakeGitHub) Exchange(_ context.Context, _ string) (*model.FederatedIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.identity
	return &copied, nil
}

// sequence returns the given values in order, then repeats the last.
func sequence(values ...int) func() int {
	i := 0
	return func() int {
		v := values[min(i, len(values)-1)]
		i++
		return v
	}
}
