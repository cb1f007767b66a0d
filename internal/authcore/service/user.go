package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/cryptox"
	"github.com/harborhealth/claims/pkg/idx"
	"github.com/harborhealth/claims/pkg/slogx"
)

// UserService owns account administration.
type UserService struct {
	Store store.Store
}

// CreateUserParams describe a new account. Role and sub-role are
// validated against the policy table before anything is written.
type CreateUserParams struct {
	Username     string
	Password     string
	Role         string
	SubRole      string
	Organization string
}

func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return domain.User{}, ErrInvalidUsername
	}
	if len(p.Password) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	role := rbac.Role(p.Role)
	sub := rbac.SubRole(p.SubRole)
	if !rbac.ValidRole(role) || !rbac.ValidSubRole(role, sub) {
		return domain.User{}, ErrInvalidRole
	}

	hash, err := cryptox.HashCredential(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:             idx.New().String(),
		Username:       p.Username,
		CredentialHash: hash,
		Role:           p.Role,
		SubRole:        p.SubRole,
		Organization:   p.Organization,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
		slog.String("sub_role", user.SubRole),
	)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser removes the account and, through the schema cascade, its
// sessions.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// The redis driver has no cascade; sweep explicitly.
	if err := s.Store.Sessions().DeleteAllUserSessions(ctx, userID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", userID))
	return nil
}
