package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/auth"
)

// AuthAuditor records sign-in and sign-out events. Fire and forget: a
// failing audit never blocks authentication.
type AuthAuditor interface {
	RecordAuthEvent(ctx context.Context, userID int, username, action string)
}

type Service struct {
	repo    Repository
	issuer  *auth.TokenIssuer
	auditor AuthAuditor
	log     zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, auditor AuthAuditor, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		issuer:  issuer,
		auditor: auditor,
		log:     log.With().Str("component", "user").Logger(),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, apperr.Validation("username", "username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperr.Validation("email", "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("name", "name is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password", "password must be at least 8 characters")
	}
	if req.Role == "" {
		req.Role = RoleResident
	}
	if !validRoles[req.Role] {
		return nil, apperr.Validation("role", fmt.Sprintf("unknown role %q", req.Role))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		CRM:          strings.TrimSpace(req.CRM),
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("username", u.Username).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// Login verifies the credentials and issues a token. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperr.Validation("username", "username and password are required")
	}

	u, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.issuer.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}

	s.auditor.RecordAuthEvent(ctx, u.ID, u.Username, "login")
	s.log.Info().Str("username", u.Username).Msg("login")
	return &LoginResponse{Token: token, User: u}, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Logout only audits: the JWT stays valid until it expires, the client
// drops it.
func (s *Service) Logout(ctx context.Context, userID int, username string) {
	s.auditor.RecordAuthEvent(ctx, userID, username, "logout")
	s.log.Info().Str("username", username).Msg("logout")
}
