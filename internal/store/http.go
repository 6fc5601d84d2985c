package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPStore fetches blobs by key-addressed GET against a base URL, e.g. an
// object-store HTTP gateway or a static file server.
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore builds an HTTPStore for baseURL. timeout bounds a single
// request; 0 applies a default.
func NewHTTPStore(baseURL string, timeout time.Duration) (*HTTPStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store url: unsupported scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		MaxIdleConns:        4,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPStore{
		base:   strings.TrimRight(u.String(), "/"),
		client: &http.Client{Transport: tr, Timeout: timeout},
	}, nil
}

func (s *HTTPStore) keyURL(key string) string {
	return s.base + "/" + strings.TrimLeft(key, "/")
}

// Get fetches the blob stored under key.
func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.keyURL(key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store get %s: %w", key, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("store get %s: read body: %w", key, err)
		}
		return b, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound(key)
	default:
		return nil, fmt.Errorf("store get %s: unexpected status %d", key, resp.StatusCode)
	}
}

// Exists probes key with a HEAD request.
func (s *HTTPStore) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.keyURL(key), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("store head %s: %w", key, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("store head %s: unexpected status %d", key, resp.StatusCode)
	}
}
