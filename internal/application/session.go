package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// Session is one live negotiation with a peer. The transport's event
// channel is drained by a single goroutine, so events are handled
// strictly in arrival order; events that land while the instruction
// messages are still going out simply wait in the channel.
type Session struct {
	peer      domain.PeerID
	transport ports.TradeTransport

	mu      sync.Mutex
	state   domain.SessionState
	chatLog []string
}

func newSession(peer domain.PeerID, transport ports.TradeTransport) *Session {
	return &Session{
		peer:      peer,
		transport: transport,
		state:     domain.StateOpening,
	}
}

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ChatLog returns the received chat lines, for diagnostics.
func (s *Session) ChatLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := make([]string, len(s.chatLog))
	copy(log, s.chatLog)
	return log
}

func (s *Session) logChat(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatLog = append(s.chatLog, line)
}

// SessionService owns all live trade sessions, keyed by peer id. A
// second session start for the same peer replaces and closes the
// prior session.
type SessionService struct {
	state        *State
	opener       ports.TransportOpener
	messenger    ports.Messenger
	resolver     *Resolver
	inventoryURL string
	log          *slog.Logger

	mu       sync.Mutex
	sessions map[domain.PeerID]*Session
	wg       sync.WaitGroup
}

func NewSessionService(state *State, opener ports.TransportOpener, messenger ports.Messenger, inventoryURL string, log *slog.Logger) *SessionService {
	return &SessionService{
		state:        state,
		opener:       opener,
		messenger:    messenger,
		resolver:     NewResolver(inventoryURL),
		inventoryURL: inventoryURL,
		log:          log,
		sessions:     map[domain.PeerID]*Session{},
	}
}

// HandleSessionStart opens a trade session with the peer. Without a
// valid auth context no session is created and the peer gets exactly
// one "not ready" message.
func (s *SessionService) HandleSessionStart(ctx context.Context, peer domain.PeerID) error {
	s.log.Info("session start", "peer", peer)

	auth, ok := s.state.Auth()
	if !ok || !s.state.CanTrade() {
		s.log.Warn("not ready to trade", "peer", peer)
		if err := s.messenger.SendMessage(ctx, peer, domain.NotReadyMessage); err != nil {
			s.log.Error("send not-ready message", "peer", peer, "error", err)
		}
		return domain.ErrAuthNotReady
	}

	transport, err := s.opener.Open(ctx, auth, peer)
	if err != nil {
		s.log.Error("open trade session", "peer", peer, "error", err)
		if sendErr := s.messenger.SendMessage(ctx, peer, domain.NotReadyMessage); sendErr != nil {
			s.log.Error("send not-ready message", "peer", peer, "error", sendErr)
		}
		return err
	}

	session := newSession(peer, transport)
	if displaced := s.register(session); displaced != nil {
		s.log.Warn("replacing open session", "peer", peer)
		if err := displaced.transport.Close(ctx); err != nil {
			s.log.Error("close displaced session", "peer", peer, "error", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, session)
	}()

	return nil
}

// Lookup returns the live session for a peer, if any.
func (s *SessionService) Lookup(peer domain.PeerID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[peer]
	return session, ok
}

// Wait blocks until all session goroutines have finished.
func (s *SessionService) Wait() { s.wg.Wait() }

func (s *SessionService) register(session *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	displaced := s.sessions[session.peer]
	s.sessions[session.peer] = session
	return displaced
}

func (s *SessionService) unregister(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.peer] == session {
		delete(s.sessions, session.peer)
	}
}

func (s *SessionService) run(ctx context.Context, session *Session) {
	defer s.unregister(session)

	if !s.state.Paused() {
		if err := s.messenger.SetPersona(ctx, domain.PersonaAway); err != nil {
			s.log.Error("set persona away", "error", err)
		}
	}

	// The two instruction messages go out in strict order before any
	// structured input is honored. Each ChatMsg returns only once the
	// message is acknowledged.
	session.setState(domain.StateInstructing)
	instructed := false
	if err := session.transport.ChatMsg(ctx, domain.SendInstructionsMessage); err != nil {
		s.log.Error("send give-instructions", "peer", session.peer, "error", err)
	} else if err := session.transport.ChatMsg(ctx, domain.TakeInstructions(s.inventoryURL)); err != nil {
		s.log.Error("send take-instructions", "peer", session.peer, "error", err)
	} else {
		instructed = true
		session.setState(domain.StateNegotiating)
		s.log.Info("instructions sent", "peer", session.peer)
	}

	for event := range session.transport.Events() {
		switch event.Kind {
		case ports.TradeEventChat:
			session.logChat(event.Text)
			if !instructed {
				s.log.Warn("chat before instructions delivered", "peer", session.peer)
				continue
			}
			s.negotiate(ctx, session, event.Text)
		case ports.TradeEventReady:
			s.readyUp(ctx, session)
		case ports.TradeEventUnready:
			s.unready(session)
		case ports.TradeEventEnd:
			s.end(ctx, session, event.Status)
			return
		}
	}

	// Channel closed without an end event: the session was displaced
	// or the transport died. No completion message is owed.
	session.setState(domain.StateClosed)
	s.log.Info("session closed without end event", "peer", session.peer)
}

// negotiate handles one chat line while the session is open. No state
// transition happens here; the peer drives readiness separately.
func (s *SessionService) negotiate(ctx context.Context, session *Session, message string) {
	s.log.Info("trade chat", "peer", session.peer, "message", message)

	if session.State() != domain.StateNegotiating {
		s.log.Warn("chat outside negotiation", "peer", session.peer, "state", session.State())
		return
	}

	root := strings.TrimSuffix(s.inventoryURL, "/")
	switch {
	case !strings.HasPrefix(message, root):
		s.reply(ctx, session, domain.BadLinkMessage(s.inventoryURL))
		return
	case message == s.inventoryURL:
		// The peer copied the page URL instead of an item link.
		s.reply(ctx, session, domain.WrongLinkMessage)
		return
	}

	item, err := s.resolver.Resolve(ctx, session.transport, message)
	if err != nil {
		s.log.Info("item not resolved", "peer", session.peer, "error", err)
		s.reply(ctx, session, domain.ItemNotFoundMessage)
		return
	}

	results, err := session.transport.AddItems(ctx, []domain.InventoryItem{item})
	if err != nil || len(results) < 1 || !results[0].OK() {
		s.log.Warn("item not addable", "peer", session.peer, "item", item.ID, "error", err)
		s.reply(ctx, session, domain.CantAddMessage)
		return
	}

	s.log.Info("item added", "peer", session.peer, "item", item.ID)
	s.reply(ctx, session, domain.AddedMessage)
}

// readyUp marks our side ready and then requests confirmation. The
// two steps are not atomic: a failed ready must never be followed by
// a confirm attempt.
func (s *SessionService) readyUp(ctx context.Context, session *Session) {
	if session.State() != domain.StateNegotiating {
		s.log.Warn("ready signal ignored", "peer", session.peer, "state", session.State())
		return
	}

	session.setState(domain.StateReadyPending)

	s.log.Info("peer is ready", "peer", session.peer)
	if err := session.transport.Ready(ctx); err != nil {
		s.log.Error("set ready", "peer", session.peer, "error", err)
		session.setState(domain.StateNegotiating)
		s.reply(ctx, session, domain.TradeErrorMessage)
		return
	}

	session.setState(domain.StateConfirming)
	if err := session.transport.Confirm(ctx); err != nil {
		s.log.Error("confirm trade", "peer", session.peer, "error", err)
		s.reply(ctx, session, domain.TradeErrorMessage)
		return
	}

	s.log.Info("trade confirmed", "peer", session.peer)
}

func (s *SessionService) unready(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state == domain.StateReadyPending || session.state == domain.StateConfirming {
		session.state = domain.StateNegotiating
	}
}

func (s *SessionService) end(ctx context.Context, session *Session, status domain.TradeStatus) {
	session.setState(domain.StateClosed)
	s.log.Info("trade ended", "peer", session.peer, "status", status)

	if !s.state.Paused() {
		if err := s.messenger.SetPersona(ctx, domain.PersonaLookingToTrade); err != nil {
			s.log.Error("set persona looking-to-trade", "error", err)
		}
	}

	if status == domain.TradeStatusComplete {
		// The trade chat is gone; the reminder goes out over the
		// persistent messaging channel.
		if err := s.messenger.SendMessage(ctx, session.peer, domain.TradeCompleteMessage); err != nil {
			s.log.Error("send trade-complete message", "peer", session.peer, "error", err)
		}
	}
}

func (s *SessionService) reply(ctx context.Context, session *Session, text string) {
	if err := session.transport.ChatMsg(ctx, text); err != nil {
		s.log.Error("send trade chat", "peer", session.peer, "error", err)
	}
}
