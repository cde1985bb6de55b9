package application

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// Bot fans platform events out to the services. It is the single
// ports.EventHandler the connection manager drives.
type Bot struct {
	Auth      *AuthService
	Sessions  *SessionService
	Offers    *OfferService
	Commander *Commander
}

var _ ports.EventHandler = (*Bot)(nil)

func (b *Bot) OnLoggedOn(ctx context.Context) {
	b.Auth.HandleLoggedOn(ctx)
}

func (b *Bot) OnDisconnected(ctx context.Context, err error) {
	b.Auth.HandleDisconnected(ctx, err)
}

func (b *Bot) OnWebSessionReady(ctx context.Context, sessionID string, cookies []string) {
	b.Auth.HandleWebSessionReady(ctx, sessionID, cookies)
}

func (b *Bot) OnFriendInvite(ctx context.Context, peer domain.PeerID) {
	b.Commander.HandleFriendInvite(ctx, peer)
}

func (b *Bot) OnFriendMessage(ctx context.Context, peer domain.PeerID, text string, kind domain.ChatEntryKind) {
	b.Commander.HandleFriendMessage(ctx, peer, text, kind)
}

func (b *Bot) OnTradeProposed(ctx context.Context, tradeID string, peer domain.PeerID) {
	b.Commander.HandleTradeProposed(ctx, tradeID, peer)
}

func (b *Bot) OnSessionStart(ctx context.Context, peer domain.PeerID) {
	_ = b.Sessions.HandleSessionStart(ctx, peer)
}

func (b *Bot) OnOffersPending(ctx context.Context, count int) {
	b.Offers.HandleOffersPending(ctx, count)
}
