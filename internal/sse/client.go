// Package sse listens to the verifier's server-sent-event stream and hands
// named events to registered handlers, reconnecting with exponential backoff.
package sse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrMaxReconnects = errors.New("sse: max reconnection attempts reached")

type Config struct {
	URL            string
	Insecure       bool          // accept self-signed certificates
	MaxReconnects  int           // consecutive failed attempts before giving up
	ReconnectDelay time.Duration // base delay, doubled per attempt
	KeepAlive      time.Duration // connection state check interval; 0 disables
}

// Handler receives one event. It runs on the read loop, so events are
// handled one at a time in stream order.
type Handler func(ctx context.Context, ev Event)

type Client struct {
	cfg       Config
	http      *http.Client
	logger    zerolog.Logger
	mu        sync.RWMutex
	handlers  map[string]Handler
	connected atomic.Bool
	lastID    string
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.MaxReconnects < 0 {
		cfg.MaxReconnects = 0
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // verifier runs on localhost with a self-signed cert
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Transport: tr},
		logger:   logger.With().Str("component", "sse").Str("url", cfg.URL).Logger(),
		handlers: make(map[string]Handler),
	}
}

// On registers h for events named name ("message" for unnamed events).
func (c *Client) On(name string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = h
}

func (c *Client) Connected() bool { return c.connected.Load() }

// Run reads the stream until ctx is done (returns nil) or reconnecting
// fails MaxReconnects times in a row (returns ErrMaxReconnects).
func (c *Client) Run(ctx context.Context) error {
	if c.cfg.KeepAlive > 0 {
		go c.keepAlive(ctx)
	}

	attempts := 0
	delay := c.cfg.ReconnectDelay
	for {
		opened, retry, err := c.stream(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if retry > 0 {
			delay = retry
		}
		if opened {
			attempts = 0
		}
		if err != nil {
			c.logger.Error().Err(err).Msg("sse error")
		} else {
			c.logger.Warn().Msg("sse stream closed")
		}

		if attempts >= c.cfg.MaxReconnects {
			c.logger.Error().Int("attempts", attempts).Msg("max reconnection attempts reached")
			return ErrMaxReconnects
		}
		attempts++
		wait := delay * time.Duration(1<<(attempts-1))
		c.logger.Info().
			Int("attempt", attempts).
			Int("max", c.cfg.MaxReconnects).
			Dur("delay", wait).
			Msg("attempting to reconnect")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// stream holds one connection open and dispatches its events.
func (c *Client) stream(ctx context.Context) (opened bool, retry time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return false, 0, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.lastID != "" {
		req.Header.Set("Last-Event-ID", c.lastID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.logger.Info().Msg("sse connection opened")

	dec := newDecoder(resp.Body, c.lastID)
	for {
		ev, err := dec.Next()
		c.lastID = dec.lastID
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, dec.retry, nil
			}
			return true, dec.retry, err
		}
		c.dispatch(ctx, ev)
	}
}

func (c *Client) dispatch(ctx context.Context, ev Event) {
	c.mu.RLock()
	h, ok := c.handlers[ev.Name]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug().Str("event", ev.Name).Msg("unhandled event")
		return
	}
	h(ctx, ev)
}

func (c *Client) keepAlive(ctx context.Context) {
	t := time.NewTicker(c.cfg.KeepAlive)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if c.connected.Load() {
				c.logger.Debug().Msg("sse connection alive")
			} else {
				c.logger.Warn().Msg("sse connection lost, waiting for reconnect")
			}
		}
	}
}
