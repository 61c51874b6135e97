package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
)

// ErrNotAuthenticated means no signed-in principal is available. It is
// fatal to the current operation and is never retried.
var ErrNotAuthenticated = errors.New("not authenticated")

// Principal is the authenticated user on whose behalf backup and restore
// operate. Exported documents carry its UID and imports are scoped to it.
type Principal struct {
	UID string
}

// Provider abstracts how the current principal is resolved.
type Provider interface {
	Acquire(ctx context.Context) (Principal, error)
}

// New selects the provider based on cfg.Auth.Method.
// NOTE: This package never initializes logging; main() does via logx.InitFromEnv().
func New(cfg config.Config) (Provider, error) {
	method := strings.ToLower(strings.TrimSpace(cfg.Auth.Method))
	switch method {
	case "static":
		log.Debug().
			Str("action", "auth_new").
			Str("method", "static").
			Msg("auth provider selected")
		return &staticProvider{uid: strings.TrimSpace(cfg.Auth.UserID)}, nil

	case "jwt":
		log.Debug().
			Str("action", "auth_new").
			Str("method", "jwt").
			Msg("auth provider selected")
		return newJWTProvider(cfg)

	default:
		return nil, errors.New("unsupported auth method: " + method)
	}
}
