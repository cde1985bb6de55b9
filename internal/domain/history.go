package domain

// HistoryTrade is one row of the inventory-history page: a single
// trade with the items that moved in each direction.
type HistoryTrade struct {
	Date     string
	Time     string
	PeerLink string
	Received []string
	Given    []string
}

// HistoryPage is one page of scraped trade history. HasNext reports
// whether a further page exists behind an enabled pager control.
type HistoryPage struct {
	Trades  []HistoryTrade
	HasNext bool
}

type TradeDirection string

const (
	DirectionReceived TradeDirection = "Received"
	DirectionGiven    TradeDirection = "Given"
)
