package routing

import "fmt"

// DefaultBaseURL is the Mapbox matrix endpoint prefix; the travel profile is
// appended as a path segment.
const DefaultBaseURL = "https://api.mapbox.com/directions-matrix/v1/mapbox"

// Config holds the matrix API settings.
type Config struct {
	BaseURL           string `json:"base_url"`
	AccessToken       string `json:"access_token"`
	MaxCoordinates    int    `json:"max_coordinates"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxCoordinates == 0 {
		c.MaxCoordinates = 25
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = 60
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxCoordinates < 2 {
		return fmt.Errorf("routing: max_coordinates must be >= 2")
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("routing: requests_per_minute must be > 0")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("routing: timeout_seconds must be > 0")
	}
	return nil
}
