package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

// Messenger is the connection manager's outbound surface: persistent
// friend messaging, presence, friend management and trade-proposal
// responses. It stays valid across web-session renewals.
type Messenger interface {
	SendMessage(ctx context.Context, peer domain.PeerID, text string) error
	SetPersona(ctx context.Context, state domain.PersonaState) error
	RespondToTrade(ctx context.Context, tradeID string, accept bool) error
	AddFriend(ctx context.Context, peer domain.PeerID) error
	RemoveFriend(ctx context.Context, peer domain.PeerID) error
	PlayGame(ctx context.Context, gameID string) error
}
