package web

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bnema/trashbot/internal/domain"
)

const offerIDPrefix = "tradeofferid_"

// parseOffers extracts offer records from the trade-offers listing.
// An entry is actionable when it still exposes the footer action
// controls; its id sits in the element id attribute.
func parseOffers(doc *goquery.Document) []domain.OfferRecord {
	var offers []domain.OfferRecord

	doc.Find(".tradeoffer").Each(func(_ int, entry *goquery.Selection) {
		id, _ := entry.Attr("id")
		offerID := strings.TrimPrefix(id, offerIDPrefix)
		if offerID == "" || offerID == id {
			return
		}

		offers = append(offers, domain.OfferRecord{
			ID:         offerID,
			Actionable: entry.Find(".tradeoffer_footer_actions").Length() > 0,
			Sender:     offerSender(entry),
		})
	})

	return offers
}

// offerSender pulls the sending peer's id out of the entry's avatar
// link, e.g. ".../profiles/7656...". Missing markup yields an empty
// sender, which discovery treats as unscreenable rather than blocked.
func offerSender(entry *goquery.Selection) domain.PeerID {
	href, ok := entry.Find(".tradeoffer_avatar").Attr("href")
	if !ok {
		return ""
	}

	href = strings.TrimSuffix(href, "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}

	return domain.PeerID(href)
}
