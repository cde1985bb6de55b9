package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

type TradeEventKind int

const (
	TradeEventChat TradeEventKind = iota
	TradeEventReady
	TradeEventUnready
	TradeEventEnd
)

// TradeEvent is one peer-side event observed on an open trade session.
// The transport delivers events in arrival order.
type TradeEvent struct {
	Kind   TradeEventKind
	Text   string
	Status domain.TradeStatus
}

type AddResult struct {
	ItemID string
	Err    string
}

func (r AddResult) OK() bool { return r.Err == "" }

// TradeTransport is one live trade session with a peer. Events() is
// closed by the transport after the end event has been delivered.
type TradeTransport interface {
	Events() <-chan TradeEvent
	LoadInventory(ctx context.Context, appID, contextID string) ([]domain.InventoryItem, error)
	AddItems(ctx context.Context, items []domain.InventoryItem) ([]AddResult, error)
	Ready(ctx context.Context) error
	Confirm(ctx context.Context) error
	ChatMsg(ctx context.Context, text string) error
	Close(ctx context.Context) error
}

type TransportOpener interface {
	Open(ctx context.Context, auth domain.AuthContext, peer domain.PeerID) (TradeTransport, error)
}
