package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
)

// Session signs users in and picks the workspace they land on.
type Session struct {
	auth port.Authenticator
}

func NewSession(auth port.Authenticator) Session {
	return Session{auth}
}

// Login routes by the returned user's role, falling back to accountType,
// the account type picked on the auth screen.
func (s Session) Login(
	ctx context.Context, email, password string, accountType domain.Role,
) (domain.Destination, error) {
	const op = "Session.Login"
	log := slog.With("op", op)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Destination{}, fmt.Errorf("%s: %w", op, domain.ErrRequiredFields)
	}

	u, err := s.auth.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		log.Warn("login failed", "err", err)
		return domain.Destination{}, fmt.Errorf("%s: %w", op, err)
	}
	return destination(u, accountType), nil
}

func (s Session) Signup(
	ctx context.Context, name, email, password string, role domain.Role,
) (domain.Destination, error) {
	const op = "Session.Signup"
	log := slog.With("op", op)

	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return domain.Destination{}, fmt.Errorf("%s: %w", op, domain.ErrRequiredFields)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.Destination{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.auth.Signup(ctx, domain.Registration{
		Name: name, Email: email, Password: password, Role: role,
	})
	if err != nil {
		log.Warn("signup failed", "err", err)
		return domain.Destination{}, fmt.Errorf("%s: %w", op, err)
	}
	return destination(u, role), nil
}

func destination(u domain.User, fallback domain.Role) domain.Destination {
	if u.Role == "" {
		u.Role = fallback
	}
	return domain.Destination{
		Workspace: domain.WorkspaceFor(u.Role, fallback),
		User:      u,
	}
}
