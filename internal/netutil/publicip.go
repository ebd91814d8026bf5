// Package netutil contains small network helpers used during installs.
package netutil

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// defaultProviders is the ranked list of plain-text public-IP endpoints.
// Earlier entries win; later ones are fallbacks for unreachable providers.
var defaultProviders = []string{
	"https://api.ipify.org",
	"https://icanhazip.com",
	"https://api.ip.sb/ip",
}

// Resolver looks up the caller's public IP from a ranked provider list.
type Resolver struct {
	// Providers overrides the default endpoint list when non-empty.
	Providers []string
	// Timeout bounds each individual provider request.
	Timeout time.Duration

	client *http.Client
}

// NewResolver constructs a Resolver with the default provider ranking.
func NewResolver() *Resolver {
	return &Resolver{Timeout: 5 * time.Second}
}

// PublicIP queries the providers in order and returns the first response
// that parses as an IP address. When every provider fails or returns
// garbage the result is ("", nil): an empty result is a valid outcome and
// the caller must fall back to asking the operator.
func (r *Resolver) PublicIP(ctx context.Context) (string, error) {
	providers := r.Providers
	if len(providers) == 0 {
		providers = defaultProviders
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: timeout}
	}

	for _, url := range providers {
		ip, err := r.fetch(ctx, url)
		if err != nil {
			continue
		}
		if ip != "" {
			return ip, nil
		}
	}
	return "", nil
}

func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}

	candidate := strings.TrimSpace(string(body))
	if net.ParseIP(candidate) == nil {
		return "", nil
	}
	return candidate, nil
}
