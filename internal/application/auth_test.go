package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/trashbot/internal/domain"
)

func TestLoggedOnRevokesTradingUntilWebSession(t *testing.T) {
	state := NewState()
	state.SetCanTrade(true)
	messenger := &fakeMessenger{}
	svc := NewAuthService(state, messenger, discardLogger())

	svc.HandleLoggedOn(context.Background())

	assert.False(t, state.CanTrade())
	assert.Equal(t, []domain.PersonaState{domain.PersonaOnline}, messenger.sentPersonas())
}

func TestWebSessionReadyPublishesAuthAndEnablesTrading(t *testing.T) {
	state := NewState()
	messenger := &fakeMessenger{}
	svc := NewAuthService(state, messenger, discardLogger())

	svc.HandleWebSessionReady(context.Background(), "sess-1", []string{"sessionid=sess-1", "steamLogin=x||y"})

	auth, ok := state.Auth()
	require.True(t, ok)
	assert.Equal(t, "sess-1", auth.SessionID)
	require.Len(t, auth.Cookies, 2)
	assert.Equal(t, "sessionid", auth.Cookies[0].Name)

	assert.True(t, state.CanTrade())
	assert.Equal(t, []domain.PersonaState{domain.PersonaLookingToTrade}, messenger.sentPersonas())
}

func TestWebSessionReadyWhilePausedKeepsPersona(t *testing.T) {
	state := NewState()
	state.Pause()
	messenger := &fakeMessenger{}
	svc := NewAuthService(state, messenger, discardLogger())

	svc.HandleWebSessionReady(context.Background(), "sess-1", []string{"sessionid=sess-1"})

	assert.True(t, state.CanTrade())
	assert.Empty(t, messenger.sentPersonas())
}

func TestDisconnectedRevokesTrading(t *testing.T) {
	state := NewState()
	state.SetCanTrade(true)
	svc := NewAuthService(state, &fakeMessenger{}, discardLogger())

	svc.HandleDisconnected(context.Background(), assert.AnError)
	assert.False(t, state.CanTrade())
}
