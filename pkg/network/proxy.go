// Package network builds the outbound HTTP configuration from the proxy
// environment. It is evaluated once at startup and passed to whatever makes
// outbound requests; nothing here touches http.DefaultTransport.
package network

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Config holds the proxy used for each outbound scheme. A nil URL means a
// direct connection.
type Config struct {
	HTTPProxy  *url.URL
	HTTPSProxy *url.URL
}

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// FromEnv applies the proxy rules:
//
//   - HTTP_PROXY (or http_proxy) routes both HTTP and HTTPS requests.
//   - HTTPS_PROXY (or https_proxy) routes HTTPS requests, and HTTP requests
//     too when HTTP_PROXY is unset.
func FromEnv(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := &Config{}

	httpProxy, err := parseProxy(firstSet(lookup, "HTTP_PROXY", "http_proxy"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_PROXY: %w", err)
	}
	if httpProxy != nil {
		cfg.HTTPProxy = httpProxy
		cfg.HTTPSProxy = httpProxy
	}

	httpsProxy, err := parseProxy(firstSet(lookup, "HTTPS_PROXY", "https_proxy"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTPS_PROXY: %w", err)
	}
	if httpsProxy != nil {
		if httpProxy == nil {
			cfg.HTTPProxy = httpsProxy
		}
		cfg.HTTPSProxy = httpsProxy
	}

	return cfg, nil
}

// ProxyFunc returns a function suitable for http.Transport.Proxy
func (c *Config) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		switch req.URL.Scheme {
		case "https", "wss":
			return c.HTTPSProxy, nil
		default:
			return c.HTTPProxy, nil
		}
	}
}

// NewTransport clones the default transport and installs the proxy rules
func (c *Config) NewTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = c.ProxyFunc()
	return t
}

// NewClient returns an HTTP client using NewTransport
func (c *Config) NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: c.NewTransport(),
		Timeout:   timeout,
	}
}

// Enabled reports whether any proxy is configured
func (c *Config) Enabled() bool {
	return c.HTTPProxy != nil || c.HTTPSProxy != nil
}

func firstSet(lookup LookupFunc, keys ...string) string {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v
		}
	}
	return ""
}

func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy URL must include a scheme and host: %s", raw)
	}
	return u, nil
}
