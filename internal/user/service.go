package user

import (
	"context"
	"errors"
	"strings"

	"irokart-be/internal/auth"
	"irokart-be/internal/logger"
	"irokart-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthUser, error)
	SignIn(ctx context.Context, in SignInInput) (*AuthUser, *auth.Session, error)
	Me(ctx context.Context, uid string) (any, error)
	List(ctx context.Context, f ListFilter) ([]*Profile, error)
	SetAccountStatus(ctx context.Context, id string, status AccountStatus) (*Profile, error)
	SetUserType(ctx context.Context, id string, t UserType) (*Profile, error)
}

type TokenIssuer interface {
	Issue(userID, email, role string) (*auth.Session, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) SignUp(ctx context.Context, in SignUpInput) (*AuthUser, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SignUp"),
	)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = strings.Split(email, "@")[0]
	}

	cred := &Credential{Email: email, PasswordHash: hashed}
	profile := &Profile{
		FullName:        &fullName,
		Email:           &email,
		UserType:        TypeIndividual,
		AccountStatus:   StatusActive,
		IsEmailVerified: true,
	}
	if err := s.repo.CreateWithProfile(ctx, cred, profile); err != nil {
		return nil, err
	}

	log.Info("sign up completed", zap.String("user_id", cred.ID))

	return &AuthUser{
		ID:           cred.ID,
		Email:        cred.Email,
		Role:         string(profile.UserType),
		CreatedAt:    cred.CreatedAt,
		UserMetadata: map[string]string{"full_name": strings.TrimSpace(in.FullName)},
	}, nil
}

func (s *service) SignIn(ctx context.Context, in SignInInput) (*AuthUser, *auth.Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SignIn"),
	)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, nil, ErrEmailPasswordRequired
	}

	cred, err := s.repo.FindCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("email not found")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !CheckPasswordHash(in.Password, cred.PasswordHash) {
		log.Info("password mismatch", zap.String("user_id", cred.ID))
		return nil, nil, ErrInvalidCredentials
	}

	role := string(TypeIndividual)
	profile, err := s.repo.GetProfile(ctx, cred.ID)
	switch {
	case err == nil:
		if profile.AccountStatus == StatusSuspended {
			log.Info("suspended account sign in rejected", zap.String("user_id", cred.ID))
			return nil, nil, ErrAccountSuspended
		}
		role = string(profile.UserType)
	case !errors.Is(err, ErrProfileNotFound):
		return nil, nil, err
	}

	session, err := s.tokens.Issue(cred.ID, cred.Email, role)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		return nil, nil, err
	}

	u := &AuthUser{
		ID:           cred.ID,
		Email:        cred.Email,
		Role:         role,
		CreatedAt:    cred.CreatedAt,
		UserMetadata: map[string]string{},
	}
	if profile != nil {
		if updated, err := s.repo.RecordLogin(ctx, cred.ID); err != nil {
			log.Warn("failed to record login", zap.Error(err))
		} else {
			u.LastSignInAt = updated.LastLoginAt
		}
		u.UserMetadata["full_name"] = utils.PtrString(profile.FullName)
	}

	log.Info("sign in completed", zap.String("user_id", cred.ID))
	return u, session, nil
}

// Me returns the profile for uid, or a default profile when none exists yet.
func (s *service) Me(ctx context.Context, uid string) (any, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrUIDRequired
	}
	if !utils.IsUUID(uid) {
		return nil, ErrInvalidUID
	}

	p, err := s.repo.GetProfile(ctx, uid)
	if errors.Is(err, ErrProfileNotFound) {
		return &DefaultProfile{
			ID:            uid,
			UserType:      TypeIndividual,
			AccountStatus: StatusActive,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Profile, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *service) SetAccountStatus(ctx context.Context, id string, status AccountStatus) (*Profile, error) {
	if !status.Valid() {
		return nil, ErrInvalidAccountStatus
	}
	if !utils.IsUUID(id) {
		return nil, ErrProfileNotFound
	}

	p, err := s.repo.UpdateAccountStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("account status updated",
		zap.String("user_id", id),
		zap.String("account_status", string(status)),
	)
	return p, nil
}

func (s *service) SetUserType(ctx context.Context, id string, t UserType) (*Profile, error) {
	if !t.Valid() {
		return nil, ErrInvalidUserType
	}
	if !utils.IsUUID(id) {
		return nil, ErrProfileNotFound
	}

	p, err := s.repo.UpdateUserType(ctx, id, t)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("user type updated",
		zap.String("user_id", id),
		zap.String("user_type", string(t)),
	)
	return p, nil
}
