package domain

type PeerID string

type SessionState string

const (
	StateOpening      SessionState = "opening"
	StateInstructing  SessionState = "instructing"
	StateNegotiating  SessionState = "negotiating"
	StateReadyPending SessionState = "ready_pending"
	StateConfirming   SessionState = "confirming"
	StateClosed       SessionState = "closed"
)

// TradeStatus is the completion status reported when a live trade
// session ends.
type TradeStatus string

const (
	TradeStatusComplete  TradeStatus = "complete"
	TradeStatusCancelled TradeStatus = "cancelled"
	TradeStatusTimeout   TradeStatus = "timeout"
	TradeStatusFailed    TradeStatus = "failed"
)

type PersonaState string

const (
	PersonaOnline         PersonaState = "online"
	PersonaAway           PersonaState = "away"
	PersonaSnooze         PersonaState = "snooze"
	PersonaLookingToTrade PersonaState = "looking_to_trade"
)

// ChatEntryKind distinguishes plain chat lines from typing
// notifications and other non-message entries.
type ChatEntryKind int

const (
	ChatEntryInvalid ChatEntryKind = iota
	ChatEntryMessage
	ChatEntryTyping
)
