package identity

import (
	"net"
	"net/http"
	"time"
)

const (
	// ClientTimeout is the total request timeout for provider calls.
	ClientTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
)

// NewProviderHTTPClient creates an HTTP client configured for identity
// provider calls. Short timeouts: these sit on the hot path of every
// authenticated request.
func NewProviderHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
