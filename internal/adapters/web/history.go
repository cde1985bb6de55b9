package web

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bnema/trashbot/internal/domain"
)

// parseHistory extracts the trades on one inventory-history page and
// whether an enabled ">" pager button points at a further page.
func parseHistory(doc *goquery.Document) domain.HistoryPage {
	page := domain.HistoryPage{}

	doc.Find(".pagebtn").Each(func(_ int, btn *goquery.Selection) {
		if strings.TrimSpace(btn.Text()) == ">" && !btn.HasClass("disabled") {
			page.HasNext = true
		}
	})

	doc.Find(".tradehistoryrow").Each(func(_ int, row *goquery.Selection) {
		trade := domain.HistoryTrade{
			Date: strings.TrimSpace(row.Find(".tradehistory_date").Text()),
			Time: strings.TrimSpace(row.Find(".tradehistory_timestamp").Text()),
		}
		if href, ok := row.Find(".tradehistory_event_description a").Attr("href"); ok {
			trade.PeerLink = href
		}

		row.Find(".tradehistory_items_received .history_item .history_item_name").Each(func(_ int, item *goquery.Selection) {
			trade.Received = append(trade.Received, strings.TrimSpace(item.Text()))
		})
		row.Find(".tradehistory_items_given .history_item .history_item_name").Each(func(_ int, item *goquery.Selection) {
			trade.Given = append(trade.Given, strings.TrimSpace(item.Text()))
		})

		page.Trades = append(page.Trades, trade)
	})

	return page
}
