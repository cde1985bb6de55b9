package domain

// ItemRef is the identifier triple carried by an inventory permalink.
type ItemRef struct {
	AppID     string
	ContextID string
	ItemID    string
}

// InventoryItem is one asset from a loaded inventory snapshot.
type InventoryItem struct {
	ID        string
	AppID     string
	ContextID string
	Name      string
	Tradable  bool
}
