package application

import (
	"sync/atomic"

	"github.com/bnema/trashbot/internal/domain"
)

// State is the process-wide mutable state: pause mode, trade
// readiness, the current auth context and the acceptance single-flight
// guard. All fields are atomics; the auth context is replaced
// wholesale so readers never observe a torn value.
type State struct {
	paused    atomic.Bool
	canTrade  atomic.Bool
	auth      atomic.Pointer[domain.AuthContext]
	accepting atomic.Bool
}

func NewState() *State {
	return &State{}
}

func (s *State) Pause()       { s.paused.Store(true) }
func (s *State) Unpause()     { s.paused.Store(false) }
func (s *State) Paused() bool { return s.paused.Load() }

func (s *State) SetCanTrade(v bool) { s.canTrade.Store(v) }
func (s *State) CanTrade() bool     { return s.canTrade.Load() }

// PublishAuth installs a new auth context. In-flight consumers keep
// whatever snapshot they already captured.
func (s *State) PublishAuth(auth domain.AuthContext) {
	s.auth.Store(&auth)
}

func (s *State) Auth() (domain.AuthContext, bool) {
	p := s.auth.Load()
	if p == nil {
		return domain.AuthContext{}, false
	}
	return *p, true
}

// BeginAcceptance claims the single acceptance slot. The caller must
// release it with EndAcceptance, normally via defer, so an error
// mid-run can never leave the pipeline wedged.
func (s *State) BeginAcceptance() bool {
	return s.accepting.CompareAndSwap(false, true)
}

func (s *State) EndAcceptance() {
	s.accepting.Store(false)
}
