package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ServiceConfig carries the out-of-band administrative identity. The admin
// email is the only thing that can elevate an account to the admin role; it
// is never stored anywhere a client could influence.
type ServiceConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Service is the credential verifier: it validates presented secrets against
// the user store and produces or links accounts. It is the single entry point
// for both credential paths, including administrative login.
type Service struct {
	users         UserStore
	tokens        *TokenService
	sessions      *ActivityTracker
	adminEmail    string
	adminPassword string
	log           *zap.Logger
}

// NewService creates the credential verifier.
func NewService(users UserStore, tokens *TokenService, sessions *ActivityTracker, cfg ServiceConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:         users,
		tokens:        tokens,
		sessions:      sessions,
		adminEmail:    normalizeEmail(cfg.AdminEmail),
		adminPassword: cfg.AdminPassword,
		log:           log,
	}
}

// Tokens exposes the token codec for handlers that issue tokens directly.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// RegisterLocal creates a customer account with a freshly salted hash. The
// administrative address is reserved: that identity may only come into being
// through the admin login path.
func (s *Service) RegisterLocal(ctx context.Context, name, email, password string) (*Account, error) {
	email = normalizeEmail(email)

	if s.adminEmail != "" && email == s.adminEmail {
		return nil, ErrReservedEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("could not check existing account: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	acc := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AuthProvider: ProviderLocal,
		Role:         RoleCustomer,
	}
	if err := s.users.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("could not create account: %w", err)
	}

	s.log.Info("registered local account", zap.String("account_id", acc.ID.Hex()))
	return acc, nil
}

// VerifyLocal validates an email/password pair. Unknown email and wrong
// password fail identically so the response does not reveal which accounts
// exist.
func (s *Service) VerifyLocal(ctx context.Context, email, password string) (*Account, error) {
	acc, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not load account: %w", err)
	}

	// Google-only accounts carry no hash and can never pass this path.
	if acc.PasswordHash == "" || !CheckPassword(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// VerifyOrLinkExternal resolves a third-party identity assertion to an
// account: an existing external account is returned as-is, a local account
// sharing the email gets the identity linked, and an unknown identity gets a
// fresh account. A single email identifies one human across both paths.
func (s *Service) VerifyOrLinkExternal(ctx context.Context, profile ExternalProfile) (*Account, error) {
	acc, err := s.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("could not look up external identity: %w", err)
	}

	email := normalizeEmail(profile.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		role := existing.Role
		if s.adminEmail != "" && email == s.adminEmail {
			role = RoleAdmin
		}
		linked, err := s.users.LinkGoogle(ctx, existing.ID.Hex(), profile.ID, role)
		if err != nil {
			return nil, fmt.Errorf("could not link external identity: %w", err)
		}
		s.log.Info("linked external identity to existing account",
			zap.String("account_id", linked.ID.Hex()))
		return linked, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("could not look up account by email: %w", err)
	}

	role := RoleCustomer
	if s.adminEmail != "" && email == s.adminEmail {
		role = RoleAdmin
	}

	acc = &Account{
		Name:         profile.Name,
		Email:        email,
		GoogleID:     profile.ID,
		AuthProvider: ProviderGoogle,
		Role:         role,
	}
	if err := s.users.Create(ctx, acc); err != nil {
		// A concurrent callback for the same identity won the insert; the
		// unique index turned ours into a conflict. Return the winner.
		if errors.Is(err, ErrDuplicateAccount) {
			return s.refetchExternal(ctx, profile.ID, email)
		}
		return nil, fmt.Errorf("could not create external account: %w", err)
	}

	s.log.Info("created account from external identity",
		zap.String("account_id", acc.ID.Hex()), zap.String("role", string(role)))
	return acc, nil
}

func (s *Service) refetchExternal(ctx context.Context, googleID, email string) (*Account, error) {
	if acc, err := s.users.FindByGoogleID(ctx, googleID); err == nil {
		return acc, nil
	}
	acc, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("could not re-fetch account after create conflict: %w", err)
	}
	return acc, nil
}

// AdminLogin is the consolidated administrative credential path: the email
// must equal the configured admin address and the password the configured
// admin password. The backing account is created on first login and its role
// is repaired to admin if something downgraded it.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*Account, error) {
	email = normalizeEmail(email)

	if s.adminEmail == "" || s.adminPassword == "" {
		s.log.Warn("admin login attempted without configured admin credentials")
		return nil, ErrInvalidCredentials
	}
	if email != s.adminEmail || password != s.adminPassword {
		return nil, ErrInvalidCredentials
	}

	acc, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		hash, err := HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("could not hash password: %w", err)
		}
		acc = &Account{
			Name:         "Admin",
			Email:        email,
			PasswordHash: hash,
			AuthProvider: ProviderLocal,
			Role:         RoleAdmin,
		}
		if err := s.users.Create(ctx, acc); err != nil {
			if errors.Is(err, ErrDuplicateAccount) {
				return s.users.FindByEmail(ctx, email)
			}
			return nil, fmt.Errorf("could not create admin account: %w", err)
		}
		s.log.Info("created admin account on first login")
		return acc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load admin account: %w", err)
	}

	if acc.Role != RoleAdmin {
		if err := s.users.SetRole(ctx, acc.ID.Hex(), RoleAdmin); err != nil {
			return nil, fmt.Errorf("could not restore admin role: %w", err)
		}
		acc.Role = RoleAdmin
	}

	return acc, nil
}

// Logout drops the subject's activity entry. It never fails outward: the
// stateless token stays valid until its expiry, which is an accepted
// limitation of the codec.
func (s *Service) Logout(subjectID string) {
	if subjectID != "" {
		s.sessions.Clear(subjectID)
	}
}
