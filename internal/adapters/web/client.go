// Package web fetches and parses the community site's offers and
// trade-history pages under session-cookie authentication.
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

type Client struct {
	baseURL   string
	profileID string
	http      *http.Client
}

var (
	_ ports.OfferSource   = (*Client)(nil)
	_ ports.HistorySource = (*Client)(nil)
)

func NewClient(baseURL, profileID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:   baseURL,
		profileID: profileID,
		http:      httpClient,
	}
}

func (c *Client) ListOffers(ctx context.Context, auth domain.AuthContext) ([]domain.OfferRecord, error) {
	pageURL := fmt.Sprintf("%s/id/%s/tradeoffers/", c.baseURL, c.profileID)
	doc, err := c.fetch(ctx, auth, pageURL)
	if err != nil {
		return nil, err
	}

	return parseOffers(doc), nil
}

func (c *Client) HistoryPage(ctx context.Context, auth domain.AuthContext, page int) (domain.HistoryPage, error) {
	pageURL := fmt.Sprintf("%s/id/%s/inventoryhistory/?p=%d", c.baseURL, c.profileID, page)
	doc, err := c.fetch(ctx, auth, pageURL)
	if err != nil {
		return domain.HistoryPage{}, err
	}

	return parseHistory(doc), nil
}

// fetch retrieves a page with the auth context installed as a cookie
// jar. Each call gets its own jar so concurrent consumers holding
// different auth snapshots never share cookies.
func (c *Client) fetch(ctx context.Context, auth domain.AuthContext, pageURL string) (*goquery.Document, error) {
	target, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(auth.Cookies))
	for _, cookie := range auth.CloneCookies() {
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	jar.SetCookies(target, cookies)

	client := *c.http
	client.Jar = jar

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return doc, nil
}
