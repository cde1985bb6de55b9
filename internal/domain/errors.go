package domain

import "errors"

var (
	// Link resolution outcomes. These are normal business results a
	// peer can recover from by pasting a fresh link, not faults.
	ErrLinkNotRecognized    = errors.New("link not recognized")
	ErrLinkMalformed        = errors.New("link malformed")
	ErrInventoryUnavailable = errors.New("inventory unavailable")
	ErrItemNotFound         = errors.New("item not found")

	// ErrAuthNotReady means no valid web session exists yet; trade
	// sessions refuse to open until one is published.
	ErrAuthNotReady = errors.New("web session not ready")
)
