package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

// EventHandler receives platform events from the connection manager.
// The core consumes these; it never initiates login or reconnection.
type EventHandler interface {
	OnLoggedOn(ctx context.Context)
	OnDisconnected(ctx context.Context, err error)
	OnWebSessionReady(ctx context.Context, sessionID string, cookies []string)
	OnFriendInvite(ctx context.Context, peer domain.PeerID)
	OnFriendMessage(ctx context.Context, peer domain.PeerID, text string, kind domain.ChatEntryKind)
	OnTradeProposed(ctx context.Context, tradeID string, peer domain.PeerID)
	OnSessionStart(ctx context.Context, peer domain.PeerID)
	OnOffersPending(ctx context.Context, count int)
}

// Connection is the platform connection manager boundary. Run blocks
// until ctx is cancelled, delivering events to the handler.
type Connection interface {
	Run(ctx context.Context, handler EventHandler) error
}
