package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// Commander handles the owner command channel, friend-message replies,
// trade-proposal screening and the friend lifecycle timers.
type Commander struct {
	state     *State
	messenger ports.Messenger
	roster    ports.PeerRoster
	offers    *OfferService
	history   *HistoryService

	ownerID             domain.PeerID
	exportPath          string
	welcomeDelay        time.Duration
	friendRemoveTimeout time.Duration
	log                 *slog.Logger
}

func NewCommander(state *State, messenger ports.Messenger, roster ports.PeerRoster, offers *OfferService, history *HistoryService, ownerID domain.PeerID, exportPath string, welcomeDelay, friendRemoveTimeout time.Duration, log *slog.Logger) *Commander {
	return &Commander{
		state:               state,
		messenger:           messenger,
		roster:              roster,
		offers:              offers,
		history:             history,
		ownerID:             ownerID,
		exportPath:          exportPath,
		welcomeDelay:        welcomeDelay,
		friendRemoveTimeout: friendRemoveTimeout,
		log:                 log,
	}
}

// HandleFriendMessage dispatches owner commands; anyone else gets the
// canned hello reply.
func (c *Commander) HandleFriendMessage(ctx context.Context, peer domain.PeerID, text string, kind domain.ChatEntryKind) {
	c.log.Info("friend message", "peer", peer, "kind", kind, "message", text)
	if kind != domain.ChatEntryMessage {
		return
	}

	if peer != c.ownerID {
		c.send(ctx, peer, domain.ChatResponseMessage)
		return
	}

	if gameID, ok := strings.CutPrefix(text, "game "); ok {
		if err := c.messenger.PlayGame(ctx, gameID); err != nil {
			c.log.Error("set played game", "game", gameID, "error", err)
		}
		return
	}

	switch text {
	case "pause":
		c.state.Pause()
		if err := c.messenger.SetPersona(ctx, domain.PersonaSnooze); err != nil {
			c.log.Error("set persona snooze", "error", err)
		}
		c.log.Info("paused")
	case "unpause":
		c.state.Unpause()
		if err := c.messenger.SetPersona(ctx, domain.PersonaLookingToTrade); err != nil {
			c.log.Error("set persona looking-to-trade", "error", err)
		}
		c.log.Info("unpaused")
	case "export":
		go func() {
			if _, err := c.history.ExportFile(ctx, c.exportPath); err != nil {
				c.log.Error("export trade history", "error", err)
			}
		}()
	case "offers":
		go func() {
			if err := c.offers.AcceptAll(ctx); err != nil {
				c.log.Error("accept trade offers", "error", err)
			}
		}()
	default:
		c.send(ctx, peer, domain.UnknownCommandMessage)
	}
}

// HandleTradeProposed screens an incoming live-trade proposal before
// the session ever opens.
func (c *Commander) HandleTradeProposed(ctx context.Context, tradeID string, peer domain.PeerID) {
	c.log.Info("trade proposed", "trade_id", tradeID, "peer", peer)

	blocked, err := c.roster.IsBlocked(ctx, peer)
	if err != nil {
		c.log.Error("check peer roster", "peer", peer, "error", err)
	}

	switch {
	case blocked:
		c.log.Warn("declining trade from blocked peer", "peer", peer)
		c.respond(ctx, tradeID, false)
	case !c.state.CanTrade():
		c.log.Warn("can't trade yet", "peer", peer)
		c.send(ctx, peer, domain.NotReadyMessage)
		c.respond(ctx, tradeID, false)
	case c.state.Paused() && peer != c.ownerID:
		c.log.Info("paused, declining trade", "peer", peer)
		c.send(ctx, peer, domain.PausedMessage)
		c.respond(ctx, tradeID, false)
	default:
		c.respond(ctx, tradeID, true)
	}
}

// HandleFriendInvite auto-accepts the invite, greets after a short
// delay and schedules automatic removal unless the peer is allowed or
// is the owner.
func (c *Commander) HandleFriendInvite(ctx context.Context, peer domain.PeerID) {
	c.log.Info("friend invite", "peer", peer)

	if err := c.messenger.AddFriend(ctx, peer); err != nil {
		c.log.Error("add friend", "peer", peer, "error", err)
		return
	}

	time.AfterFunc(c.welcomeDelay, func() {
		c.send(ctx, peer, domain.WelcomeMessage)
	})

	time.AfterFunc(c.friendRemoveTimeout, func() {
		if peer == c.ownerID {
			return
		}
		allowed, err := c.roster.IsAllowed(ctx, peer)
		if err != nil {
			c.log.Error("check peer roster", "peer", peer, "error", err)
			return
		}
		if allowed {
			return
		}
		c.log.Info("automatically removing friend", "peer", peer)
		if err := c.messenger.RemoveFriend(ctx, peer); err != nil {
			c.log.Error("remove friend", "peer", peer, "error", err)
		}
	})
}

func (c *Commander) send(ctx context.Context, peer domain.PeerID, text string) {
	if err := c.messenger.SendMessage(ctx, peer, text); err != nil {
		c.log.Error("send message", "peer", peer, "error", err)
	}
}

func (c *Commander) respond(ctx context.Context, tradeID string, accept bool) {
	if err := c.messenger.RespondToTrade(ctx, tradeID, accept); err != nil {
		c.log.Error("respond to trade", "trade_id", tradeID, "accept", accept, "error", err)
	}
}
