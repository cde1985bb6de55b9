package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

var historyHeader = []string{"Trade ID", "Date", "Time", "Encrypted User", "Direction", "Item"}

// HistoryService exports the paginated trade history as CSV. Peer
// identities are anonymized with an HMAC so the export can be shared.
type HistoryService struct {
	state      *State
	source     ports.HistorySource
	secret     []byte
	newTradeID func() string
	log        *slog.Logger
}

func NewHistoryService(state *State, source ports.HistorySource, hmacSecret string, log *slog.Logger) *HistoryService {
	return &HistoryService{
		state:      state,
		source:     source,
		secret:     []byte(hmacSecret),
		newTradeID: uuid.NewString,
		log:        log,
	}
}

// Export walks history pages from the first until the pager reports no
// next page, writing one CSV row per item moved. Returns the number of
// item rows written.
func (h *HistoryService) Export(ctx context.Context, w io.Writer) (int, error) {
	auth, ok := h.state.Auth()
	if !ok {
		return 0, domain.ErrAuthNotReady
	}

	out := csv.NewWriter(w)
	if err := out.Write(historyHeader); err != nil {
		return 0, fmt.Errorf("write history header: %w", err)
	}

	rows := 0
	for page := 1; ; page++ {
		h.log.Info("requesting history page", "page", page)
		listing, err := h.source.HistoryPage(ctx, auth, page)
		if err != nil {
			return rows, fmt.Errorf("fetch history page %d: %w", page, err)
		}

		for _, trade := range listing.Trades {
			n, err := h.writeTrade(out, trade)
			if err != nil {
				return rows, err
			}
			rows += n
		}

		if !listing.HasNext {
			break
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return rows, fmt.Errorf("flush history export: %w", err)
	}

	h.log.Info("history export complete", "rows", rows)
	return rows, nil
}

func (h *HistoryService) ExportFile(ctx context.Context, path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return h.Export(ctx, file)
}

func (h *HistoryService) writeTrade(out *csv.Writer, trade domain.HistoryTrade) (int, error) {
	// All items of one history row share a generated trade id so the
	// export can be grouped back into trades.
	tradeID := h.newTradeID()
	peer := h.anonymize(trade.PeerLink)

	rows := 0
	for _, item := range trade.Received {
		if err := out.Write([]string{tradeID, trade.Date, trade.Time, peer, string(domain.DirectionReceived), item}); err != nil {
			return rows, fmt.Errorf("write history row: %w", err)
		}
		rows++
	}
	for _, item := range trade.Given {
		if err := out.Write([]string{tradeID, trade.Date, trade.Time, peer, string(domain.DirectionGiven), item}); err != nil {
			return rows, fmt.Errorf("write history row: %w", err)
		}
		rows++
	}

	return rows, nil
}

func (h *HistoryService) anonymize(peerLink string) string {
	mac := hmac.New(sha1.New, h.secret)
	mac.Write([]byte(peerLink))
	return hex.EncodeToString(mac.Sum(nil))
}
