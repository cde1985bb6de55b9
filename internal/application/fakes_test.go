package application

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Hand-written fakes for the platform ports, shared by the tests in
// this package.

type fakeMessenger struct {
	mu       sync.Mutex
	messages []sentMessage
	personas []domain.PersonaState
	games    []string
	added    []domain.PeerID
	removed  []domain.PeerID
	trades   []tradeResponse
}

type sentMessage struct {
	Peer domain.PeerID
	Text string
}

type tradeResponse struct {
	TradeID string
	Accept  bool
}

var _ ports.Messenger = (*fakeMessenger)(nil)

func (m *fakeMessenger) SendMessage(_ context.Context, peer domain.PeerID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sentMessage{Peer: peer, Text: text})
	return nil
}

func (m *fakeMessenger) SetPersona(_ context.Context, state domain.PersonaState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas = append(m.personas, state)
	return nil
}

func (m *fakeMessenger) RespondToTrade(_ context.Context, tradeID string, accept bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, tradeResponse{TradeID: tradeID, Accept: accept})
	return nil
}

func (m *fakeMessenger) AddFriend(_ context.Context, peer domain.PeerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, peer)
	return nil
}

func (m *fakeMessenger) RemoveFriend(_ context.Context, peer domain.PeerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, peer)
	return nil
}

func (m *fakeMessenger) PlayGame(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, gameID)
	return nil
}

func (m *fakeMessenger) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *fakeMessenger) sentPersonas() []domain.PersonaState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PersonaState, len(m.personas))
	copy(out, m.personas)
	return out
}

func (m *fakeMessenger) removedPeers() []domain.PeerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PeerID, len(m.removed))
	copy(out, m.removed)
	return out
}

type fakeTransport struct {
	events chan ports.TradeEvent

	inventory    []domain.InventoryItem
	inventoryErr error
	addErr       error
	addResultErr string
	chatErr      error
	readyErr     error
	confirmErr   error

	mu           sync.Mutex
	chats        []string
	addedItems   []string
	readyCalls   int
	confirmCalls int
	closeCalls   int
}

var _ ports.TradeTransport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan ports.TradeEvent, 16)}
}

func (t *fakeTransport) Events() <-chan ports.TradeEvent { return t.events }

func (t *fakeTransport) LoadInventory(context.Context, string, string) ([]domain.InventoryItem, error) {
	return t.inventory, t.inventoryErr
}

func (t *fakeTransport) AddItems(_ context.Context, items []domain.InventoryItem) ([]ports.AddResult, error) {
	if t.addErr != nil {
		return nil, t.addErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	results := make([]ports.AddResult, 0, len(items))
	for _, item := range items {
		t.addedItems = append(t.addedItems, item.ID)
		results = append(results, ports.AddResult{ItemID: item.ID, Err: t.addResultErr})
	}
	return results, nil
}

func (t *fakeTransport) Ready(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readyCalls++
	return t.readyErr
}

func (t *fakeTransport) Confirm(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirmCalls++
	return t.confirmErr
}

func (t *fakeTransport) ChatMsg(_ context.Context, text string) error {
	if t.chatErr != nil {
		return t.chatErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chats = append(t.chats, text)
	return nil
}

func (t *fakeTransport) Close(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeCalls++
	return nil
}

func (t *fakeTransport) sentChats() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.chats))
	copy(out, t.chats)
	return out
}

func (t *fakeTransport) counts() (ready, confirm, closed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readyCalls, t.confirmCalls, t.closeCalls
}

type fakeOpener struct {
	mu         sync.Mutex
	transports []*fakeTransport
	err        error
	opened     int
}

var _ ports.TransportOpener = (*fakeOpener)(nil)

func (o *fakeOpener) Open(context.Context, domain.AuthContext, domain.PeerID) (ports.TradeTransport, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	transport := o.transports[o.opened]
	o.opened++
	return transport, nil
}

type fakeOfferSource struct {
	mu     sync.Mutex
	offers []domain.OfferRecord
	err    error
	calls  int
}

var _ ports.OfferSource = (*fakeOfferSource)(nil)

func (s *fakeOfferSource) ListOffers(context.Context, domain.AuthContext) ([]domain.OfferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.offers, s.err
}

func (s *fakeOfferSource) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeSandbox struct {
	mu       sync.Mutex
	accepted []string
	failOn   map[string]error
	gate     chan struct{}
}

var _ ports.Sandbox = (*fakeSandbox)(nil)

func (s *fakeSandbox) AcceptOffer(_ context.Context, _ domain.AuthContext, offerID string) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = append(s.accepted, offerID)
	if err, ok := s.failOn[offerID]; ok {
		return err
	}
	return nil
}

func (s *fakeSandbox) acceptedOffers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.accepted))
	copy(out, s.accepted)
	return out
}

type fakeRoster struct {
	mu      sync.Mutex
	blocked map[domain.PeerID]bool
	allowed map[domain.PeerID]bool
	err     error
}

var _ ports.PeerRoster = (*fakeRoster)(nil)

func (r *fakeRoster) IsBlocked(_ context.Context, peer domain.PeerID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocked[peer], r.err
}

func (r *fakeRoster) IsAllowed(_ context.Context, peer domain.PeerID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allowed[peer], r.err
}

func (r *fakeRoster) Block(_ context.Context, peer domain.PeerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blocked == nil {
		r.blocked = map[domain.PeerID]bool{}
	}
	r.blocked[peer] = true
	return nil
}

func (r *fakeRoster) Unblock(_ context.Context, peer domain.PeerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blocked, peer)
	return nil
}

func (r *fakeRoster) Allow(_ context.Context, peer domain.PeerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.allowed == nil {
		r.allowed = map[domain.PeerID]bool{}
	}
	r.allowed[peer] = true
	return nil
}

func (r *fakeRoster) List(context.Context) (ports.Roster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster := ports.Roster{}
	for peer := range r.blocked {
		roster.Blocked = append(roster.Blocked, peer)
	}
	for peer := range r.allowed {
		roster.Allowed = append(roster.Allowed, peer)
	}
	return roster, nil
}

type fakeHistorySource struct {
	pages map[int]domain.HistoryPage
	err   error
}

var _ ports.HistorySource = (*fakeHistorySource)(nil)

func (s *fakeHistorySource) HistoryPage(_ context.Context, _ domain.AuthContext, page int) (domain.HistoryPage, error) {
	if s.err != nil {
		return domain.HistoryPage{}, s.err
	}
	return s.pages[page], nil
}
