// Package feed retrieves the economic calendar from the upstream supplier.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"econalert/internal/calendar"
)

// ErrUnavailable wraps every failure to obtain a usable feed: transport
// errors, non-2xx statuses and payloads that are not an event list.
var ErrUnavailable = errors.New("feed unavailable")

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 16 << 20
)

// wrapperKeys are tried, in order, when the payload is an object instead of an array.
var wrapperKeys = []string{"events", "data", "items", "result", "calendar"}

type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Client performs a single GET per Fetch. It never retries.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = "econalert/1.0"
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		IdleConnTimeout:     30 * time.Second,
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout, Transport: tr}}
}

func (c *Client) URL() string { return c.cfg.URL }

// Fetch downloads and decodes the feed.
func (c *Client) Fetch(ctx context.Context) ([]calendar.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	evs, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return evs, nil
}

// Decode accepts a JSON array of event objects, or an object wrapping one.
// Non-object array items are skipped; non-string fields read as empty.
func Decode(body []byte) ([]calendar.RawEvent, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var items []json.RawMessage
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		arr, ok := unwrap(obj)
		if !ok {
			return nil, errors.New("object does not wrap an event array")
		}
		items = arr
	default:
		return nil, errors.New("payload is neither array nor object")
	}

	out := make([]calendar.RawEvent, 0, len(items))
	for _, it := range items {
		var m map[string]any
		if err := json.Unmarshal(it, &m); err != nil || m == nil {
			continue
		}
		out = append(out, calendar.RawEvent{
			Title:   pickStr(m, "title"),
			Country: pickStr(m, "country"),
			Impact:  pickStr(m, "impact"),
			Date:    pickStr(m, "date"),
			Time:    pickStr(m, "time"),
		})
	}
	return out, nil
}

func unwrap(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
	for _, k := range wrapperKeys {
		if raw, ok := obj[k]; ok {
			var arr []json.RawMessage
			if json.Unmarshal(raw, &arr) == nil {
				return arr, true
			}
		}
	}
	// Fall back to the first array-valued field in key order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw := bytes.TrimSpace(obj[k])
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var arr []json.RawMessage
		if json.Unmarshal(raw, &arr) == nil {
			return arr, true
		}
	}
	return nil, false
}

// pickStr returns the first non-blank string value among keys, exactly as the
// feed sent it. Title and country feed the event identifier, so surrounding
// whitespace is part of the value; the filter and resolver trim on their own.
func pickStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}
