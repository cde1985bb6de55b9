package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

// Sandbox drives the scripted browser acceptance of a single trade
// offer. Each call uses a fresh, isolated browser instance which is
// torn down before the call returns, success or not.
type Sandbox interface {
	AcceptOffer(ctx context.Context, auth domain.AuthContext, offerID string) error
}
