package optimize

import (
	"errors"
	"fmt"
	"net/url"
)

// AuthConfig enables OAuth2 client credentials on the optimize client. An
// empty TokenURL leaves requests unauthenticated.
type AuthConfig struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

func (a AuthConfig) enabled() bool { return a.TokenURL != "" }

type Config struct {
	BaseURL            string     `json:"base_url"`
	PollIntervalMs     int        `json:"poll_interval_ms"`
	PollTimeoutSeconds int        `json:"poll_timeout_seconds"`
	TimeoutSeconds     int        `json:"timeout_seconds"`
	Auth               AuthConfig `json:"auth"`
}

func (c *Config) SetDefaults() {
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = 2000
	}
	if c.PollTimeoutSeconds <= 0 {
		c.PollTimeoutSeconds = 300
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("optimize: base_url is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("optimize: invalid base_url: %w", err)
	}
	if c.Auth.enabled() && c.Auth.ClientID == "" {
		return errors.New("optimize: auth.client_id is required with auth.token_url")
	}
	return nil
}
