package application

import (
	"context"
	"log/slog"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// AuthService tracks the web-session lifecycle. Exactly one auth
// context is live at a time; publication replaces it atomically and
// in-flight consumers keep their captured snapshot.
type AuthService struct {
	state     *State
	messenger ports.Messenger
	log       *slog.Logger
}

func NewAuthService(state *State, messenger ports.Messenger, log *slog.Logger) *AuthService {
	return &AuthService{state: state, messenger: messenger, log: log}
}

func (a *AuthService) HandleLoggedOn(ctx context.Context) {
	a.log.Info("logged on")
	a.state.SetCanTrade(false)
	if err := a.messenger.SetPersona(ctx, domain.PersonaOnline); err != nil {
		a.log.Error("set persona online", "error", err)
	}
}

func (a *AuthService) HandleDisconnected(ctx context.Context, err error) {
	a.log.Error("disconnected", "error", err)
	a.state.SetCanTrade(false)
}

// HandleWebSessionReady publishes a fresh auth context and, when the
// bot is not paused, advertises it is looking to trade.
func (a *AuthService) HandleWebSessionReady(ctx context.Context, sessionID string, cookies []string) {
	a.log.Info("web session ready", "session_id", sessionID, "cookies", len(cookies))

	a.state.PublishAuth(domain.NewAuthContext(sessionID, cookies))

	if !a.state.Paused() {
		if err := a.messenger.SetPersona(ctx, domain.PersonaLookingToTrade); err != nil {
			a.log.Error("set persona looking-to-trade", "error", err)
		}
	}

	a.state.SetCanTrade(true)
}
