package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/trashbot/internal/adapters/browser"
	peersrender "github.com/bnema/trashbot/internal/adapters/render/peers"
	tomlrepo "github.com/bnema/trashbot/internal/adapters/repo/toml"
	"github.com/bnema/trashbot/internal/adapters/steam"
	"github.com/bnema/trashbot/internal/adapters/web"
	"github.com/bnema/trashbot/internal/application"
	"github.com/bnema/trashbot/internal/config"
	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/observability"
	"github.com/bnema/trashbot/internal/ports"
)

type app struct {
	cfg config.Config
	log *slog.Logger

	conn     ports.Connection
	roster   ports.PeerRoster
	state    *application.State
	sessions *application.SessionService
	history  *application.HistoryService
	bot      *application.Bot

	rosterRenderer func(ports.Roster) string
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	observability.Init(cfg.LogLevel)
	log := observability.Logger()

	rosterCfg := viper.New()
	if cfg.PeersPath != "" {
		rosterCfg.Set("peers_path", cfg.PeersPath)
	}
	roster, err := tomlrepo.NewRosterRepository(rosterCfg)
	if err != nil {
		return nil, fmt.Errorf("wire peer roster: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pages := web.NewClient(cfg.CommunityURL, cfg.ProfileID, httpClient)
	sandbox := browser.NewSandbox(cfg.CommunityURL, cfg.Headless, cfg.AcceptStepDelay, ports.SystemClock{}, log)
	conn := steam.NewClient(steam.Config{
		CommunityBase: cfg.CommunityURL,
		AccessToken:   cfg.AccessToken,
		SteamID:       cfg.SteamID,
	}, nil, log)
	opener := steam.NewTransportOpener(cfg.CommunityURL, httpClient, log)

	inventoryURL := domain.InventoryURL(cfg.CommunityURL, cfg.ProfileID)

	state := application.NewState()
	auth := application.NewAuthService(state, conn, log)
	sessions := application.NewSessionService(state, opener, conn, inventoryURL, log)
	offers := application.NewOfferService(state, pages, sandbox, roster, cfg.OffersSettleDelay, log)
	history := application.NewHistoryService(state, pages, cfg.HMACSecret, log)
	commander := application.NewCommander(state, conn, roster, offers, history,
		domain.PeerID(cfg.OwnerID), cfg.ExportPath, cfg.WelcomeDelay, cfg.FriendRemoveTimeout, log)

	return &app{
		cfg:      cfg,
		log:      log,
		conn:     conn,
		roster:   roster,
		state:    state,
		sessions: sessions,
		history:  history,
		bot: &application.Bot{
			Auth:      auth,
			Sessions:  sessions,
			Offers:    offers,
			Commander: commander,
		},
		rosterRenderer: peersrender.Render,
	}, nil
}
