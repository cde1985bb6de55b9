package domain

// OfferRecord is one entry from the pending trade-offers listing.
// Records are produced fresh on every discovery poll and never
// persisted across polls.
type OfferRecord struct {
	ID string
	// Actionable reports whether the listing entry still exposes
	// accept/decline controls.
	Actionable bool
	Sender     PeerID
}
