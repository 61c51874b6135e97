package auth

import (
	"context"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
)

// AcquirePrincipal is a convenience for call sites that only need the
// resolved principal.
func AcquirePrincipal(ctx context.Context, cfg config.Config) (Principal, error) {
	p, err := New(cfg)
	if err != nil {
		return Principal{}, err
	}
	return p.Acquire(ctx)
}
