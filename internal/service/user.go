package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/newstech/newstech/internal/model"
	"github.com/newstech/newstech/internal/repository"
	"github.com/newstech/newstech/internal/validation"
)

// ProfileUpdate carries the editable fields; nil or blank leaves a field unchanged.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

type UserService struct {
	accounts repository.AccountRepository
}

func NewUserService(accounts repository.AccountRepository) *UserService {
	return &UserService{accounts: accounts}
}

func (s *UserService) ByID(ctx context.Context, id int64) (*model.Account, error) {
	return s.accounts.ByID(ctx, id)
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.accounts.Count(ctx)
}

// Update applies a partial profile edit. Uniqueness is enforced by the store.
func (s *UserService) Update(ctx context.Context, id int64, in ProfileUpdate) (*model.Account, error) {
	account, err := s.accounts.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if v, ok := present(in.FullName); ok && v != account.FullName {
		err = validation.ValidateName(v)
		if err != nil {
			return nil, err
		}
		account.FullName = v
		changed = true
	}
	if v, ok := present(in.Email); ok && v != account.Email {
		err = validation.ValidateEmail(v)
		if err != nil {
			return nil, err
		}
		account.Email = v
		changed = true
	}
	if v, ok := present(in.Username); ok && v != account.Username {
		err = validation.ValidateUsername(v)
		if err != nil {
			return nil, err
		}
		account.Username = v
		changed = true
	}

	if !changed {
		return account, nil
	}

	err = s.accounts.Update(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return s.accounts.ByID(ctx, id)
}

func present(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}
