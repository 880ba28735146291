package user

import "context"

// AccountLookup serves the stored role and status to per-request role checks.
type AccountLookup struct {
	repo Repository
}

func NewAccountLookup(repo Repository) *AccountLookup {
	return &AccountLookup{repo: repo}
}

func (a *AccountLookup) Account(ctx context.Context, id string) (string, string, error) {
	p, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return "", "", err
	}
	return string(p.UserType), string(p.AccountStatus), nil
}
