package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient bound to baseURL that sends userAgent
// on every request. A zero timeout leaves resty's default in place.
//
// Example usage:
//
//	client := utils.NewHTTPClient("https://api.example.com/api/1", "go-vrc-link/1.0", 30*time.Second)
//	resp, err := client.R().Get("/auth/user")
func NewHTTPClient(baseURL, userAgent string, timeout time.Duration) *HTTPClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &HTTPClient{Client: c}
}
