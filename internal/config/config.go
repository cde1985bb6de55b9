package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// ProfileID is the bot's vanity profile id, used to build the
	// inventory, offers and history URLs.
	ProfileID string
	// OwnerID is the operator account with command privileges.
	OwnerID string

	// AccessToken and SteamID authenticate the messaging logon.
	AccessToken string
	SteamID     string

	CommunityURL string
	HMACSecret   string
	ExportPath   string
	PeersPath    string
	LogLevel     string

	OffersSettleDelay   time.Duration
	AcceptStepDelay     time.Duration
	WelcomeDelay        time.Duration
	FriendRemoveTimeout time.Duration

	Headless bool
}

func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix("trashbot")
	v.AutomaticEnv()

	v.SetDefault("community_url", "http://steamcommunity.com")
	v.SetDefault("export_path", "trades.csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("offers_settle_delay", "10s")
	v.SetDefault("accept_step_delay", "5s")
	v.SetDefault("welcome_delay", "5s")
	v.SetDefault("friend_remove_timeout", "24h")
	v.SetDefault("headless", true)

	return Config{
		ProfileID:           v.GetString("profile_id"),
		OwnerID:             v.GetString("owner_id"),
		AccessToken:         v.GetString("access_token"),
		SteamID:             v.GetString("steam_id"),
		CommunityURL:        v.GetString("community_url"),
		HMACSecret:          v.GetString("hmac_secret"),
		ExportPath:          v.GetString("export_path"),
		PeersPath:           v.GetString("peers_path"),
		LogLevel:            v.GetString("log_level"),
		OffersSettleDelay:   v.GetDuration("offers_settle_delay"),
		AcceptStepDelay:     v.GetDuration("accept_step_delay"),
		WelcomeDelay:        v.GetDuration("welcome_delay"),
		FriendRemoveTimeout: v.GetDuration("friend_remove_timeout"),
		Headless:            v.GetBool("headless"),
	}, nil
}

// ValidateForRun checks the fields the bot daemon cannot start
// without. Commands like peers and version do not need them.
func (c Config) ValidateForRun() error {
	if c.ProfileID == "" {
		return errors.New("profile_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	if c.SteamID == "" {
		return errors.New("steam_id is required")
	}

	return nil
}
