package ports

import (
	"context"

	"github.com/bnema/trashbot/internal/domain"
)

// OfferSource lists the currently pending trade offers from the
// authenticated offers page.
type OfferSource interface {
	ListOffers(ctx context.Context, auth domain.AuthContext) ([]domain.OfferRecord, error)
}

// HistorySource scrapes one page of the authenticated trade-history
// listing. Pages are numbered from 1.
type HistorySource interface {
	HistoryPage(ctx context.Context, auth domain.AuthContext, page int) (domain.HistoryPage, error)
}
