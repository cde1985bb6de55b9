package steam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingHandler struct {
	mu             sync.Mutex
	loggedOn       int
	sessionID      string
	cookies        []string
	friendMessages []string
	invites        []domain.PeerID
	proposals      []string
	sessionStarts  []domain.PeerID
	offersPending  int

	done chan struct{}
}

var _ ports.EventHandler = (*recordingHandler)(nil)

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{})}
}

func (h *recordingHandler) OnLoggedOn(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loggedOn++
}

func (h *recordingHandler) OnDisconnected(context.Context, error) {}

func (h *recordingHandler) OnWebSessionReady(_ context.Context, sessionID string, cookies []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessionID = sessionID
	h.cookies = cookies
}

func (h *recordingHandler) OnFriendInvite(_ context.Context, peer domain.PeerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invites = append(h.invites, peer)
}

func (h *recordingHandler) OnFriendMessage(_ context.Context, peer domain.PeerID, text string, kind domain.ChatEntryKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.friendMessages = append(h.friendMessages, fmt.Sprintf("%s/%s/%d", peer, text, kind))
}

func (h *recordingHandler) OnTradeProposed(_ context.Context, tradeID string, peer domain.PeerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proposals = append(h.proposals, tradeID+"@"+string(peer))
}

func (h *recordingHandler) OnSessionStart(_ context.Context, peer domain.PeerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessionStarts = append(h.sessionStarts, peer)
}

func (h *recordingHandler) OnOffersPending(_ context.Context, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.offersPending = count
	close(h.done)
}

func TestRunLogsOnPublishesSessionAndDispatchesPollMessages(t *testing.T) {
	var pollMu sync.Mutex
	var pollCursor string
	polls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Logon/v1/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		assert.Equal(t, "tok", r.PostForm.Get("access_token"))
		fmt.Fprint(w, `{"error": "OK", "umqid": "u1", "message": 5}`)
	})
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Poll/v1/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		pollMu.Lock()
		polls++
		first := polls == 1
		if first {
			pollCursor = r.PostForm.Get("message")
		}
		pollMu.Unlock()
		if first {
			fmt.Fprint(w, `{"error": "OK", "messagelast": 9, "messages": [
				{"type": "saytext", "steamid_from": "friend-1", "text": "hi"},
				{"type": "typing", "steamid_from": "friend-1"},
				{"type": "personarelationship", "steamid_from": "friend-2", "persona_relationship": 2},
				{"type": "personarelationship", "steamid_from": "friend-3", "persona_relationship": 3},
				{"type": "tradeproposed", "steamid_from": "friend-1", "trade_id": "t-9"},
				{"type": "sessionstart", "steamid_from": "friend-1"},
				{"type": "tradeoffers", "pending_offers": 2}
			]}`)
			return
		}
		fmt.Fprint(w, `{"error": "Timeout"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{
		APIBase:       server.URL,
		CommunityBase: server.URL,
		AccessToken:   "tok",
		SteamID:       "42",
		PollInterval:  2 * time.Millisecond,
		ReconnectWait: 2 * time.Millisecond,
	}, server.Client(), discardLogger())

	handler := newRecordingHandler()
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- client.Run(ctx, handler) }()

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll messages not dispatched")
	}
	cancel()
	require.ErrorIs(t, <-errs, context.Canceled)

	handler.mu.Lock()
	defer handler.mu.Unlock()

	assert.Equal(t, 1, handler.loggedOn)
	assert.Equal(t, "u1", handler.sessionID)
	assert.Equal(t, []string{"sessionid=u1", "steamLogin=42||tok"}, handler.cookies)
	pollMu.Lock()
	assert.Equal(t, "5", pollCursor)
	pollMu.Unlock()

	assert.Contains(t, handler.friendMessages, fmt.Sprintf("friend-1/hi/%d", domain.ChatEntryMessage))
	assert.Contains(t, handler.friendMessages, fmt.Sprintf("friend-1//%d", domain.ChatEntryTyping))
	assert.Equal(t, []domain.PeerID{"friend-2"}, handler.invites)
	assert.Equal(t, []string{"t-9@friend-1"}, handler.proposals)
	assert.Equal(t, []domain.PeerID{"friend-1"}, handler.sessionStarts)
	assert.Equal(t, 2, handler.offersPending)
}

func TestSendMessagePostsSaytext(t *testing.T) {
	var form map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Message/v1/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = map[string]string{}
		for key := range r.PostForm {
			form[key] = r.PostForm.Get(key)
		}
		fmt.Fprint(w, `{"error": "OK"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{APIBase: server.URL, AccessToken: "tok"}, server.Client(), discardLogger())
	client.umqid = "u1"

	require.NoError(t, client.SendMessage(context.Background(), "friend-1", "hello"))
	assert.Equal(t, "saytext", form["type"])
	assert.Equal(t, "friend-1", form["steamid_dst"])
	assert.Equal(t, "hello", form["text"])
	assert.Equal(t, "u1", form["umqid"])
}

func TestSetPersonaCodes(t *testing.T) {
	assert.Equal(t, "3", personaCode(domain.PersonaAway))
	assert.Equal(t, "4", personaCode(domain.PersonaSnooze))
	assert.Equal(t, "5", personaCode(domain.PersonaLookingToTrade))
	assert.Equal(t, "1", personaCode(domain.PersonaOnline))
}

func TestRespondToTradeHitsCommunityEndpoint(t *testing.T) {
	var path, response string
	mux := http.NewServeMux()
	mux.HandleFunc("/trade/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		path = r.URL.Path
		response = r.PostForm.Get("response")
		fmt.Fprint(w, `{"success": true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{CommunityBase: server.URL, AccessToken: "tok"}, server.Client(), discardLogger())
	client.umqid = "u1"

	require.NoError(t, client.RespondToTrade(context.Background(), "t-9", true))
	assert.Equal(t, "/trade/t-9/response/", path)
	assert.Equal(t, "1", response)

	require.NoError(t, client.RespondToTrade(context.Background(), "t-9", false))
	assert.Equal(t, "0", response)
}

func TestSessionStateSafeAcrossReconnectAndSends(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Logon/v1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": "OK", "umqid": "u1", "message": 5}`)
	})
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Message/v1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": "OK"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{APIBase: server.URL, AccessToken: "tok"}, server.Client(), discardLogger())
	ctx := context.Background()

	// Logon rewrites the session while sends read it, as happens when
	// the reconnect loop races a Commander timer.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, client.logon(ctx))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, client.SendMessage(ctx, "friend-1", "hello"))
		}()
	}
	wg.Wait()

	assert.Equal(t, "u1", client.sessionID())
}

func TestLogonRejectionSurfacesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamWebUserPresenceOAuth/Logon/v1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": "Not Logged On"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{APIBase: server.URL, AccessToken: "bad"}, server.Client(), discardLogger())
	err := client.logon(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logon rejected")
}
