package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
)

// jwtProvider resolves the principal from a signed id token. The token's
// sub claim is the user id.
type jwtProvider struct {
	token  string
	secret []byte
}

// newJWTProvider validates configuration and returns a provider.
// Token and secret are mandatory.
func newJWTProvider(cfg config.Config) (*jwtProvider, error) {
	if strings.TrimSpace(cfg.Auth.IDToken) == "" {
		return nil, errors.New("jwt auth requires an id token")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("jwt auth requires a signing secret")
	}
	return &jwtProvider{
		token:  strings.TrimSpace(cfg.Auth.IDToken),
		secret: []byte(cfg.Auth.JWTSecret),
	}, nil
}

// Acquire verifies the id token signature and extracts the subject claim.
func (p *jwtProvider) Acquire(ctx context.Context) (Principal, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(p.token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !tok.Valid {
		return Principal{}, ErrNotAuthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return Principal{}, fmt.Errorf("%w: id token has no subject", ErrNotAuthenticated)
	}

	log.Debug().
		Str("action", "auth_acquire").
		Str("method", "jwt").
		Msg("principal resolved")
	return Principal{UID: sub}, nil
}
