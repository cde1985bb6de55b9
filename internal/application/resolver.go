package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// Resolver turns a pasted inventory permalink into a resolved item
// from the bot's own inventory snapshot.
type Resolver struct {
	// inventoryURL is the bot's inventory page with a trailing slash.
	inventoryURL string
}

func NewResolver(inventoryURL string) *Resolver {
	return &Resolver{inventoryURL: inventoryURL}
}

// ParseLink strips one of the two accepted permalink prefixes
// (".../inventory/#" or ".../inventory#") and splits the remainder
// into the (app, context, item) triple.
func (r *Resolver) ParseLink(message string) (domain.ItemRef, error) {
	prefix := r.inventoryURL + "#"
	if !strings.HasPrefix(message, prefix) {
		prefix = strings.TrimSuffix(r.inventoryURL, "/") + "#"
	}
	if !strings.HasPrefix(message, prefix) {
		return domain.ItemRef{}, domain.ErrLinkNotRecognized
	}

	details := strings.TrimPrefix(message, prefix)
	fields := strings.Split(details, "_")
	if details == "" || len(fields) != 3 {
		return domain.ItemRef{}, fmt.Errorf("%w: %q", domain.ErrLinkMalformed, details)
	}

	return domain.ItemRef{AppID: fields[0], ContextID: fields[1], ItemID: fields[2]}, nil
}

// Resolve parses the link and looks the item up in the inventory
// snapshot loaded through the session's transport. A missing item is
// a normal outcome reported as domain.ErrItemNotFound.
func (r *Resolver) Resolve(ctx context.Context, transport ports.TradeTransport, message string) (domain.InventoryItem, error) {
	ref, err := r.ParseLink(message)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	items, err := transport.LoadInventory(ctx, ref.AppID, ref.ContextID)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("load inventory %s/%s: %w", ref.AppID, ref.ContextID, err)
	}
	if items == nil {
		return domain.InventoryItem{}, domain.ErrInventoryUnavailable
	}

	for _, item := range items {
		if item.ID == ref.ItemID {
			return item, nil
		}
	}

	return domain.InventoryItem{}, fmt.Errorf("%w: %s", domain.ErrItemNotFound, ref.ItemID)
}
