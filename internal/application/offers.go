package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// OfferService discovers pending trade offers and accepts them one at
// a time through the browser sandbox. At most one acceptance pass runs
// system-wide; a trigger while one is in flight is dropped, not
// queued, so a burst of offers is only picked up by a later trigger.
type OfferService struct {
	state       *State
	source      ports.OfferSource
	sandbox     ports.Sandbox
	roster      ports.PeerRoster
	settleDelay time.Duration
	log         *slog.Logger

	wg sync.WaitGroup
}

func NewOfferService(state *State, source ports.OfferSource, sandbox ports.Sandbox, roster ports.PeerRoster, settleDelay time.Duration, log *slog.Logger) *OfferService {
	return &OfferService{
		state:       state,
		source:      source,
		sandbox:     sandbox,
		roster:      roster,
		settleDelay: settleDelay,
		log:         log,
	}
}

// HandleOffersPending reacts to a non-zero pending-offer count. The
// settle delay lets server-side offer state stabilize before the pass
// starts.
func (o *OfferService) HandleOffersPending(ctx context.Context, count int) {
	o.log.Info("offers pending", "count", count)

	if count <= 0 {
		return
	}
	if !o.state.CanTrade() {
		o.log.Warn("can't accept trade offers yet")
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		select {
		case <-time.After(o.settleDelay):
		case <-ctx.Done():
			return
		}
		if err := o.AcceptAll(ctx); err != nil {
			o.log.Error("accept trade offers", "error", err)
		}
	}()
}

// Wait blocks until any in-flight acceptance pass has finished.
func (o *OfferService) Wait() { o.wg.Wait() }

// AcceptAll runs one full pass over the currently actionable offers.
// Offers are processed strictly in listing order; a failure on one
// offer abandons only that offer.
func (o *OfferService) AcceptAll(ctx context.Context) error {
	if o.state.Paused() {
		o.log.Info("paused, skipping trade offers")
		return nil
	}

	if !o.state.BeginAcceptance() {
		o.log.Info("already responding to trade offers")
		return nil
	}
	defer o.state.EndAcceptance()

	auth, ok := o.state.Auth()
	if !ok {
		return domain.ErrAuthNotReady
	}

	offers, err := o.source.ListOffers(ctx, auth)
	if err != nil {
		return fmt.Errorf("list trade offers: %w", err)
	}

	for _, offer := range offers {
		if !offer.Actionable {
			o.log.Info("skipping inactive offer", "offer", offer.ID)
			continue
		}

		if o.senderBlocked(ctx, offer) {
			o.log.Warn("skipping offer from blocked peer", "offer", offer.ID, "peer", offer.Sender)
			continue
		}

		o.log.Info("accepting offer", "offer", offer.ID)
		if err := o.sandbox.AcceptOffer(ctx, auth, offer.ID); err != nil {
			o.log.Error("accept offer", "offer", offer.ID, "error", err)
			continue
		}
		o.log.Info("accepted offer", "offer", offer.ID)
	}

	o.log.Info("finished accepting trade offers")
	return nil
}

func (o *OfferService) senderBlocked(ctx context.Context, offer domain.OfferRecord) bool {
	if offer.Sender == "" {
		return false
	}
	blocked, err := o.roster.IsBlocked(ctx, offer.Sender)
	if err != nil {
		o.log.Error("check peer roster", "peer", offer.Sender, "error", err)
		return false
	}
	return blocked
}
