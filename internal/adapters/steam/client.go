// Package steam implements the platform ports against the community
// site's web endpoints: the long-poll chat connection, persistent
// messaging, and the live trade-session transport.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

const maxResponseBytes = 1 << 20

type Config struct {
	APIBase       string
	CommunityBase string
	AccessToken   string
	SteamID       string
	PollInterval  time.Duration
	ReconnectWait time.Duration
}

func (c *Config) applyDefaults() {
	if c.APIBase == "" {
		c.APIBase = "https://api.steampowered.com"
	}
	if c.CommunityBase == "" {
		c.CommunityBase = "http://steamcommunity.com"
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = time.Minute
	}
}

// Client is the connection manager. It owns logon and reconnection;
// the engine only consumes the events it emits.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger

	// mu guards the logon session state: logon rewrites it on every
	// reconnect while messenger calls read it from other goroutines.
	mu            sync.Mutex
	umqid         string
	lastMessageID int64
}

var (
	_ ports.Connection = (*Client)(nil)
	_ ports.Messenger  = (*Client)(nil)
)

func NewClient(cfg Config, httpClient *http.Client, log *slog.Logger) *Client {
	cfg.applyDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}

	return &Client{cfg: cfg, http: httpClient, log: log}
}

// Run keeps a logged-on poll session alive until ctx is cancelled,
// reconnecting after the configured wait on any failure.
func (c *Client) Run(ctx context.Context, handler ports.EventHandler) error {
	for {
		if err := c.session(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			handler.OnDisconnected(ctx, err)
			c.log.Error("poll session failed, reconnecting", "error", err, "wait", c.cfg.ReconnectWait)
		}

		select {
		case <-time.After(c.cfg.ReconnectWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) session(ctx context.Context, handler ports.EventHandler) error {
	if err := c.logon(ctx); err != nil {
		return fmt.Errorf("logon: %w", err)
	}

	handler.OnLoggedOn(ctx)
	handler.OnWebSessionReady(ctx, c.sessionID(), c.sessionCookies())

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.poll(ctx, handler); err != nil {
				return fmt.Errorf("poll: %w", err)
			}
		}
	}
}

type logonResponse struct {
	UMQID         string `json:"umqid"`
	Error         string `json:"error"`
	MessageLast   int64  `json:"message"`
	SteamIDString string `json:"steamid"`
}

func (c *Client) logon(ctx context.Context) error {
	var resp logonResponse
	err := c.postForm(ctx, c.cfg.APIBase+"/ISteamWebUserPresenceOAuth/Logon/v1/", url.Values{
		"access_token": {c.cfg.AccessToken},
	}, &resp)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Error, "OK") {
		return fmt.Errorf("logon rejected: %s", resp.Error)
	}

	c.mu.Lock()
	c.umqid = resp.UMQID
	c.lastMessageID = resp.MessageLast
	c.mu.Unlock()
	c.log.Info("web chat logon", "umqid", resp.UMQID)
	return nil
}

func (c *Client) sessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.umqid
}

func (c *Client) pollCursor() (string, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.umqid, c.lastMessageID
}

func (c *Client) advanceCursor(messageLast int64) {
	c.mu.Lock()
	c.lastMessageID = messageLast
	c.mu.Unlock()
}

// sessionCookies builds the cookie set consumers use for community
// HTTP and the browser sandbox.
func (c *Client) sessionCookies() []string {
	return []string{
		"sessionid=" + c.sessionID(),
		"steamLogin=" + c.cfg.SteamID + "||" + c.cfg.AccessToken,
	}
}

type pollResponse struct {
	Error       string        `json:"error"`
	MessageLast int64         `json:"messagelast"`
	Messages    []pollMessage `json:"messages"`
}

type pollMessage struct {
	Type          string `json:"type"`
	SteamIDFrom   string `json:"steamid_from"`
	Text          string `json:"text"`
	PersonaState  int    `json:"persona_state"`
	Relationship  int    `json:"persona_relationship"`
	TradeID       string `json:"trade_id"`
	PendingOffers int    `json:"pending_offers"`
}

const relationshipPendingInvitee = 2

func (c *Client) poll(ctx context.Context, handler ports.EventHandler) error {
	umqid, lastMessageID := c.pollCursor()

	var resp pollResponse
	err := c.postForm(ctx, c.cfg.APIBase+"/ISteamWebUserPresenceOAuth/Poll/v1/", url.Values{
		"access_token": {c.cfg.AccessToken},
		"umqid":        {umqid},
		"message":      {strconv.FormatInt(lastMessageID, 10)},
	}, &resp)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Error, "OK") && !strings.EqualFold(resp.Error, "Timeout") {
		return fmt.Errorf("poll rejected: %s", resp.Error)
	}
	if resp.MessageLast != 0 {
		c.advanceCursor(resp.MessageLast)
	}

	for _, msg := range resp.Messages {
		c.dispatch(ctx, handler, msg)
	}

	return nil
}

func (c *Client) dispatch(ctx context.Context, handler ports.EventHandler, msg pollMessage) {
	peer := domain.PeerID(msg.SteamIDFrom)

	switch msg.Type {
	case "saytext":
		handler.OnFriendMessage(ctx, peer, msg.Text, domain.ChatEntryMessage)
	case "typing":
		handler.OnFriendMessage(ctx, peer, "", domain.ChatEntryTyping)
	case "personarelationship":
		if msg.Relationship == relationshipPendingInvitee {
			handler.OnFriendInvite(ctx, peer)
		}
	case "tradeproposed":
		handler.OnTradeProposed(ctx, msg.TradeID, peer)
	case "sessionstart":
		handler.OnSessionStart(ctx, peer)
	case "tradeoffers":
		handler.OnOffersPending(ctx, msg.PendingOffers)
	default:
		c.log.Debug("ignoring poll message", "type", msg.Type)
	}
}

func (c *Client) SendMessage(ctx context.Context, peer domain.PeerID, text string) error {
	var resp struct {
		Error string `json:"error"`
	}
	err := c.postForm(ctx, c.cfg.APIBase+"/ISteamWebUserPresenceOAuth/Message/v1/", url.Values{
		"access_token": {c.cfg.AccessToken},
		"umqid":        {c.sessionID()},
		"type":         {"saytext"},
		"steamid_dst":  {string(peer)},
		"text":         {text},
	}, &resp)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Error, "OK") {
		return fmt.Errorf("send message rejected: %s", resp.Error)
	}

	return nil
}

func (c *Client) SetPersona(ctx context.Context, state domain.PersonaState) error {
	var resp struct {
		Error string `json:"error"`
	}
	err := c.postForm(ctx, c.cfg.APIBase+"/ISteamWebUserPresenceOAuth/Message/v1/", url.Values{
		"access_token":  {c.cfg.AccessToken},
		"umqid":         {c.sessionID()},
		"type":          {"personastate"},
		"persona_state": {personaCode(state)},
	}, &resp)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Error, "OK") {
		return fmt.Errorf("set persona rejected: %s", resp.Error)
	}

	return nil
}

func personaCode(state domain.PersonaState) string {
	switch state {
	case domain.PersonaAway:
		return "3"
	case domain.PersonaSnooze:
		return "4"
	case domain.PersonaLookingToTrade:
		return "5"
	default:
		return "1"
	}
}

func (c *Client) RespondToTrade(ctx context.Context, tradeID string, accept bool) error {
	response := "0"
	if accept {
		response = "1"
	}

	var resp struct {
		Success bool `json:"success"`
	}
	err := c.postForm(ctx, c.cfg.CommunityBase+"/trade/"+tradeID+"/response/", url.Values{
		"sessionid": {c.sessionID()},
		"response":  {response},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("trade response rejected for %s", tradeID)
	}

	return nil
}

func (c *Client) AddFriend(ctx context.Context, peer domain.PeerID) error {
	var resp json.RawMessage
	return c.postForm(ctx, c.cfg.CommunityBase+"/actions/AddFriendAjax", url.Values{
		"sessionID": {c.sessionID()},
		"steamid":   {string(peer)},
	}, &resp)
}

func (c *Client) RemoveFriend(ctx context.Context, peer domain.PeerID) error {
	var resp json.RawMessage
	return c.postForm(ctx, c.cfg.CommunityBase+"/actions/RemoveFriendAjax", url.Values{
		"sessionID": {c.sessionID()},
		"steamid":   {string(peer)},
	}, &resp)
}

func (c *Client) PlayGame(ctx context.Context, gameID string) error {
	var resp struct {
		Error string `json:"error"`
	}
	err := c.postForm(ctx, c.cfg.APIBase+"/ISteamWebUserPresenceOAuth/Message/v1/", url.Values{
		"access_token": {c.cfg.AccessToken},
		"umqid":        {c.sessionID()},
		"type":         {"gameplayed"},
		"game_id":      {gameID},
	}, &resp)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Error, "OK") {
		return fmt.Errorf("set played game rejected: %s", resp.Error)
	}

	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, values url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	return nil
}
