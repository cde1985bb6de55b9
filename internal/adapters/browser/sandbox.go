// Package browser accepts trade offers by driving the community site
// in a scripted headless browser. Plain HTTP posts against the accept
// endpoint are rejected, so the acceptance has to go through the real
// page with its session cookies.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// acceptScript runs inside the offer page. The settle pauses between
// clicks give the site's own scripts time to react; the whole sequence
// resolves as a promise the sandbox awaits, so there is no polling.
// $J is the site's bundled jQuery.
const acceptScript = `async (delay) => {
	const sleep = (ms) => new Promise((resolve) => setTimeout(resolve, ms));
	await sleep(delay);
	$J('#you_notready').click();
	await sleep(delay);
	const gift = $J('.newmodal .btn_green_white_innerfade');
	if (gift && gift.length > 0) {
		gift.click();
	}
	await sleep(delay);
	$J('#trade_confirmbtn').click();
	return true;
}`

type Sandbox struct {
	baseURL    string
	headless   bool
	stepDelay  time.Duration
	navTimeout time.Duration
	cookieTTL  time.Duration
	clock      ports.Clock
	log        *slog.Logger
}

var _ ports.Sandbox = (*Sandbox)(nil)

func NewSandbox(baseURL string, headless bool, stepDelay time.Duration, clock ports.Clock, log *slog.Logger) *Sandbox {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Sandbox{
		baseURL:    baseURL,
		headless:   headless,
		stepDelay:  stepDelay,
		navTimeout: 30 * time.Second,
		cookieTTL:  time.Hour,
		clock:      clock,
		log:        log,
	}
}

// AcceptOffer launches a fresh browser, seeds it with the auth
// cookies re-targeted at the community domain, walks the offer page's
// acceptance controls and tears the browser down regardless of
// outcome.
func (s *Sandbox) AcceptOffer(ctx context.Context, auth domain.AuthContext, offerID string) error {
	controlURL, err := launcher.New().Headless(s.headless).Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.log.Error("close browser", "error", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	if err := page.SetCookies(s.cookieParams(auth)); err != nil {
		return fmt.Errorf("seed session cookies: %w", err)
	}

	offerURL := fmt.Sprintf("%s/tradeoffer/%s/", s.baseURL, offerID)
	s.log.Info("opening trade offer page", "offer", offerID, "url", offerURL)
	if err := page.Timeout(s.navTimeout).Navigate(offerURL); err != nil {
		return fmt.Errorf("open offer page: %w", err)
	}
	if err := page.Timeout(s.navTimeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait for offer page: %w", err)
	}

	_, err = page.Evaluate(&rod.EvalOptions{
		JS:           acceptScript,
		JSArgs:       []interface{}{s.stepDelay.Milliseconds()},
		AwaitPromise: true,
		ByValue:      true,
		UserGesture:  true,
	})
	if err != nil {
		return fmt.Errorf("run acceptance script: %w", err)
	}

	s.log.Info("acceptance script finished", "offer", offerID)
	return nil
}

func (s *Sandbox) cookieParams(auth domain.AuthContext) []*proto.NetworkCookieParam {
	domainName := s.baseURL
	if parsed, err := url.Parse(s.baseURL); err == nil && parsed.Host != "" {
		domainName = parsed.Hostname()
	}

	expires := proto.TimeSinceEpoch(s.clock.Now().Add(s.cookieTTL).Unix())
	params := make([]*proto.NetworkCookieParam, 0, len(auth.Cookies))
	for _, cookie := range auth.CloneCookies() {
		params = append(params, &proto.NetworkCookieParam{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   domainName,
			Path:     "/",
			HTTPOnly: true,
			Expires:  expires,
		})
	}

	return params
}
