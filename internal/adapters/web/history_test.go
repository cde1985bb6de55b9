package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/trashbot/internal/domain"
)

const historyFixture = `
<html><body>
<div class="pagebtn">&lt;</div>
<div class="tradehistoryrow">
  <div class="tradehistory_date">Jan 3, 2014</div>
  <div class="tradehistory_timestamp">4:15pm</div>
  <div class="tradehistory_event_description">
    You traded with <a href="http://steamcommunity.com/id/alice">alice</a>.
  </div>
  <div class="tradehistory_items_received">
    <div class="history_item"><span class="history_item_name">Rusty Hat</span></div>
    <div class="history_item"><span class="history_item_name">Scrap Metal</span></div>
  </div>
  <div class="tradehistory_items_given">
    <div class="history_item"><span class="history_item_name">Crate Key</span></div>
  </div>
</div>
<div class="tradehistoryrow">
  <div class="tradehistory_date">Jan 2, 2014</div>
  <div class="tradehistory_timestamp">9:01am</div>
  <div class="tradehistory_event_description">
    You traded with <a href="http://steamcommunity.com/profiles/765611980001">bob</a>.
  </div>
  <div class="tradehistory_items_received"></div>
  <div class="tradehistory_items_given">
    <div class="history_item"><span class="history_item_name">Paint Can</span></div>
  </div>
</div>
<div class="pagebtn">&gt;</div>
</body></html>`

const historyLastPageFixture = `
<html><body>
<div class="pagebtn">&lt;</div>
<div class="pagebtn disabled">&gt;</div>
</body></html>`

func TestParseHistoryRowsAndPager(t *testing.T) {
	page := parseHistory(docFromString(t, historyFixture))

	assert.True(t, page.HasNext)
	require.Len(t, page.Trades, 2)

	first := page.Trades[0]
	assert.Equal(t, "Jan 3, 2014", first.Date)
	assert.Equal(t, "4:15pm", first.Time)
	assert.Equal(t, "http://steamcommunity.com/id/alice", first.PeerLink)
	assert.Equal(t, []string{"Rusty Hat", "Scrap Metal"}, first.Received)
	assert.Equal(t, []string{"Crate Key"}, first.Given)

	second := page.Trades[1]
	assert.Empty(t, second.Received)
	assert.Equal(t, []string{"Paint Can"}, second.Given)
}

func TestParseHistoryDisabledPagerStops(t *testing.T) {
	page := parseHistory(docFromString(t, historyLastPageFixture))

	assert.False(t, page.HasNext)
	assert.Empty(t, page.Trades)
}

func TestHistoryPageRequestsNumberedPage(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, historyLastPageFixture)
	}))
	defer server.Close()

	client := NewClient(server.URL, "trashbot", server.Client())
	auth := domain.NewAuthContext("sess-1", []string{"sessionid=sess-1"})

	page, err := client.HistoryPage(context.Background(), auth, 3)
	require.NoError(t, err)
	assert.False(t, page.HasNext)
	assert.Equal(t, "p=3", gotQuery)
}
