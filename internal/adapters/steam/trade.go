package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// TransportOpener opens live trade-session transports against the
// community trade endpoints, one per peer.
type TransportOpener struct {
	base         string
	pollInterval time.Duration
	http         *http.Client
	log          *slog.Logger
}

var _ ports.TransportOpener = (*TransportOpener)(nil)

func NewTransportOpener(communityBase string, httpClient *http.Client, log *slog.Logger) *TransportOpener {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &TransportOpener{
		base:         communityBase,
		pollInterval: time.Second,
		http:         httpClient,
		log:          log,
	}
}

func (o *TransportOpener) Open(ctx context.Context, auth domain.AuthContext, peer domain.PeerID) (ports.TradeTransport, error) {
	base, err := url.Parse(o.base)
	if err != nil {
		return nil, fmt.Errorf("parse community base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(auth.Cookies))
	for _, cookie := range auth.CloneCookies() {
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	jar.SetCookies(base, cookies)

	client := *o.http
	client.Jar = jar

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &Transport{
		base:      o.base,
		peer:      peer,
		sessionID: auth.SessionID,
		http:      &client,
		events:    make(chan ports.TradeEvent, 64),
		cancel:    cancel,
		log:       o.log,
	}

	// Initial status fetch validates that the session is actually
	// open before the poller starts. Chat lines already in the trade
	// log replay into the event stream so arrival order holds.
	status, err := t.status(pollCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open trade with %s: %w", peer, err)
	}
	t.emitEvents(status)

	go t.pollLoop(pollCtx, o.pollInterval)

	return t, nil
}

// Transport drives one live trade session over HTTP, long-polling the
// status endpoint and translating its event log into trade events.
type Transport struct {
	base      string
	peer      domain.PeerID
	sessionID string
	http      *http.Client
	log       *slog.Logger

	events    chan ports.TradeEvent
	cancel    context.CancelFunc
	closeOnce sync.Once

	// mu guards the status cursor, shared between the poll loop and
	// the session goroutine issuing actions.
	mu        sync.Mutex
	logPos    int
	version   int
	themReady bool
}

var _ ports.TradeTransport = (*Transport)(nil)

func (t *Transport) Events() <-chan ports.TradeEvent { return t.events }

type tradeStatusResponse struct {
	Success     bool               `json:"success"`
	TradeStatus int                `json:"trade_status"`
	LogPos      int                `json:"logpos"`
	Version     int                `json:"version"`
	Events      []tradeStatusEvent `json:"events"`
	Them        struct {
		Ready     int `json:"ready"`
		Confirmed int `json:"confirmed"`
	} `json:"them"`
}

type tradeStatusEvent struct {
	Action string `json:"action"`
	User   string `json:"steamid"`
	Text   string `json:"text"`
}

const (
	actionChat = "7"

	tradeStatusOngoing   = 0
	tradeStatusComplete  = 1
	tradeStatusCancelled = 3
	tradeStatusTimeout   = 4
)

func (t *Transport) pollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer t.closeEvents()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := t.status(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.log.Error("trade status poll", "peer", t.peer, "error", err)
				continue
			}

			t.emitEvents(status)

			if status.TradeStatus != tradeStatusOngoing {
				t.events <- ports.TradeEvent{
					Kind:   ports.TradeEventEnd,
					Status: statusFromCode(status.TradeStatus),
				}
				return
			}
		}
	}
}

func (t *Transport) emitEvents(status tradeStatusResponse) {
	for _, event := range status.Events {
		if event.Action == actionChat && event.User == string(t.peer) {
			t.events <- ports.TradeEvent{Kind: ports.TradeEventChat, Text: event.Text}
		}
	}

	t.mu.Lock()
	ready := status.Them.Ready != 0
	changed := ready != t.themReady
	t.themReady = ready
	t.mu.Unlock()
	if changed {
		kind := ports.TradeEventUnready
		if ready {
			kind = ports.TradeEventReady
		}
		t.events <- ports.TradeEvent{Kind: kind}
	}
}

func statusFromCode(code int) domain.TradeStatus {
	switch code {
	case tradeStatusComplete:
		return domain.TradeStatusComplete
	case tradeStatusCancelled:
		return domain.TradeStatusCancelled
	case tradeStatusTimeout:
		return domain.TradeStatusTimeout
	default:
		return domain.TradeStatusFailed
	}
}

func (t *Transport) status(ctx context.Context) (tradeStatusResponse, error) {
	logPos, version := t.cursor()

	var resp tradeStatusResponse
	err := t.post(ctx, "tradestatus", url.Values{
		"sessionid": {t.sessionID},
		"logpos":    {strconv.Itoa(logPos)},
		"version":   {strconv.Itoa(version)},
	}, &resp)
	if err != nil {
		return tradeStatusResponse{}, err
	}
	if !resp.Success {
		return tradeStatusResponse{}, fmt.Errorf("trade status unsuccessful for %s", t.peer)
	}

	t.mu.Lock()
	if resp.LogPos != 0 {
		t.logPos = resp.LogPos
	}
	if resp.Version != 0 {
		t.version = resp.Version
	}
	t.mu.Unlock()

	return resp, nil
}

func (t *Transport) cursor() (logPos, version int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logPos, t.version
}

type inventoryResponse struct {
	Success      bool                     `json:"success"`
	Inventory    map[string]inventoryItem `json:"rgInventory"`
	Descriptions map[string]itemDetails   `json:"rgDescriptions"`
}

type inventoryItem struct {
	ID         string `json:"id"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
}

type itemDetails struct {
	Name     string `json:"name"`
	Tradable int    `json:"tradable"`
}

// LoadInventory fetches the bot's own inventory snapshot for the
// given app/context pair. A failed load reports as unavailable (nil
// slice) rather than an error; the caller treats it as a business
// outcome.
func (t *Transport) LoadInventory(ctx context.Context, appID, contextID string) ([]domain.InventoryItem, error) {
	endpoint := fmt.Sprintf("%s/my/inventory/json/%s/%s?trading=1", t.base, appID, contextID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create inventory request: %w", err)
	}

	httpResp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch inventory: status %d", httpResp.StatusCode)
	}

	var resp inventoryResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseBytes)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if !resp.Success {
		return nil, nil
	}

	items := make([]domain.InventoryItem, 0, len(resp.Inventory))
	for _, entry := range resp.Inventory {
		details := resp.Descriptions[entry.ClassID+"_"+entry.InstanceID]
		items = append(items, domain.InventoryItem{
			ID:        entry.ID,
			AppID:     appID,
			ContextID: contextID,
			Name:      details.Name,
			Tradable:  details.Tradable != 0,
		})
	}

	return items, nil
}

func (t *Transport) AddItems(ctx context.Context, items []domain.InventoryItem) ([]ports.AddResult, error) {
	results := make([]ports.AddResult, 0, len(items))
	for slot, item := range items {
		result := ports.AddResult{ItemID: item.ID}

		var resp struct {
			Success bool `json:"success"`
		}
		err := t.post(ctx, "additem", url.Values{
			"sessionid": {t.sessionID},
			"appid":     {item.AppID},
			"contextid": {item.ContextID},
			"itemid":    {item.ID},
			"slot":      {strconv.Itoa(slot)},
		}, &resp)
		switch {
		case err != nil:
			result.Err = err.Error()
		case !resp.Success:
			result.Err = "item not addable"
		}

		results = append(results, result)
	}

	return results, nil
}

func (t *Transport) Ready(ctx context.Context) error {
	var resp struct {
		Success bool `json:"success"`
	}
	_, version := t.cursor()
	err := t.post(ctx, "toggleready", url.Values{
		"sessionid": {t.sessionID},
		"ready":     {"true"},
		"version":   {strconv.Itoa(version)},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("toggle ready unsuccessful for %s", t.peer)
	}

	return nil
}

func (t *Transport) Confirm(ctx context.Context) error {
	var resp struct {
		Success bool `json:"success"`
	}
	_, version := t.cursor()
	err := t.post(ctx, "confirm", url.Values{
		"sessionid": {t.sessionID},
		"version":   {strconv.Itoa(version)},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("confirm unsuccessful for %s", t.peer)
	}

	return nil
}

func (t *Transport) ChatMsg(ctx context.Context, text string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	logPos, _ := t.cursor()
	err := t.post(ctx, "chat", url.Values{
		"sessionid": {t.sessionID},
		"logpos":    {strconv.Itoa(logPos)},
		"message":   {text},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("chat message unsuccessful for %s", t.peer)
	}

	return nil
}

func (t *Transport) Close(ctx context.Context) error {
	t.cancel()
	return nil
}

func (t *Transport) closeEvents() {
	t.closeOnce.Do(func() { close(t.events) })
}

func (t *Transport) post(ctx context.Context, action string, values url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/trade/%s/%s/", t.base, t.peer, action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", fmt.Sprintf("%s/trade/%s/", t.base, t.peer))

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", action, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}

	return nil
}
