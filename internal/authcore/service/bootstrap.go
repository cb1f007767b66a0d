package service

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/cryptox"
	"github.com/harborhealth/claims/pkg/idx"
	"github.com/harborhealth/claims/pkg/slogx"
)

// BootstrapService creates the initial admin account on a fresh install.
// It is gated by a pre-configured token and refuses to run once any user
// exists.
type BootstrapService struct {
	Store store.Store
	Token string
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token, adminUsername, adminPassword string) (string, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapDone
	}

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapToken
	}

	if len(adminPassword) < MinPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := cryptox.HashCredential(adminPassword)
	if err != nil {
		return "", err
	}

	adminID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID:             adminID,
			Username:       adminUsername,
			CredentialHash: hash,
			Role:           string(rbac.RoleAdmin),
		})
	})
	if err != nil {
		return "", err
	}

	l.Info("system bootstrapped", slog.String("admin_user_id", adminID))
	return adminID, nil
}
