package dorcas

import "time"

// Config contains configuration for the Dorcas identity service.
type Config struct {
	// BaseURL is the root of the Dorcas API, e.g. https://api.dorcas.io
	BaseURL string

	// ClientID and ClientSecret identify this application to the OAuth endpoints.
	ClientID     string
	ClientSecret string

	// Timeout bounds every HTTP round-trip.
	// Default is 30 seconds.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns sensible defaults for the given API root
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   30 * time.Second,
		UserAgent: "dorcas-auth",
	}
}
