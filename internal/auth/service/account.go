package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
)

const (
	lastLoginLayout = "02.01.06 15:04"
	noProfileImage  = "-"
)

type AccountService struct {
	Store store.Store
}

// GetAccount fetches an account by id.
func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	acc, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: id})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return acc, err
}

// ClearanceLevel feeds the clearance middleware. Inactive accounts have no
// clearance regardless of the stored level.
func (s *AccountService) ClearanceLevel(ctx context.Context, id string) (int, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}
	if !acc.IsActive || acc.Status != domain.StatusActive {
		return 0, nil
	}
	return acc.ClearanceLevel, nil
}

// AccountView is the public shape of an account.
type AccountView struct {
	ID                  string               `json:"id"`
	FirstName           string               `json:"firstName"`
	LastName            string               `json:"lastName"`
	FullName            string               `json:"fullName"`
	Initials            string               `json:"initials"`
	Username            string               `json:"username"`
	PhoneNumber         string               `json:"phoneNumber"`
	ProfileImage        string               `json:"profileImage"`
	Role                domain.Role          `json:"role"`
	ClearanceLevel      int                  `json:"clearanceLevel"`
	Status              domain.AccountStatus `json:"status"`
	IsActive            bool                 `json:"isActive"`
	LastLogin           string               `json:"lastLogin,omitempty"`
	LastLoginExpressive string               `json:"lastLoginExpressive,omitempty"`
}

func Transform(acc domain.Account) AccountView {
	v := AccountView{
		ID:             acc.ID,
		FirstName:      acc.FirstName,
		LastName:       acc.LastName,
		FullName:       acc.FullName(),
		Initials:       acc.Initials(),
		Username:       acc.Username,
		PhoneNumber:    acc.PhoneNumber(),
		ProfileImage:   acc.ProfileImage,
		Role:           acc.Role,
		ClearanceLevel: acc.ClearanceLevel,
		Status:         acc.Status,
		IsActive:       acc.IsActive,
	}
	if v.ProfileImage == "" {
		v.ProfileImage = noProfileImage
	}
	if acc.LastLogin != nil {
		t := acc.LastLogin.UTC()
		v.LastLogin = t.Format(lastLoginLayout)
		v.LastLoginExpressive = t.Format(time.RFC1123)
	}
	return v
}
