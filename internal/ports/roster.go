package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

// Roster is the persisted peer roster: blocked peers are refused
// trades and skipped by offer automation, allowed peers are exempt
// from automatic friend removal.
type Roster struct {
	Blocked []domain.PeerID
	Allowed []domain.PeerID
}

type PeerRoster interface {
	IsBlocked(ctx context.Context, peer domain.PeerID) (bool, error)
	IsAllowed(ctx context.Context, peer domain.PeerID) (bool, error)
	Block(ctx context.Context, peer domain.PeerID) error
	Unblock(ctx context.Context, peer domain.PeerID) error
	Allow(ctx context.Context, peer domain.PeerID) error
	List(ctx context.Context) (Roster, error)
}
