package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

type staticProvider struct {
	uid string
}

func (p *staticProvider) Acquire(ctx context.Context) (Principal, error) {
	if p.uid == "" {
		log.Debug().
			Str("action", "auth_acquire").
			Str("method", "static").
			Msg("missing user id")
		return Principal{}, ErrNotAuthenticated
	}
	log.Debug().
		Str("action", "auth_acquire").
		Str("method", "static").
		Msg("principal resolved")
	return Principal{UID: p.uid}, nil
}
