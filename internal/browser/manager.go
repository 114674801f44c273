// Package browser drives a live Chrome page over the DevTools protocol and
// exposes it as an autofill Document.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

var (
	ErrNotConnected = errors.New("browser: not connected")
	ErrNoActivePage = errors.New("browser: no open page")
)

// Config holds browser connection settings.
type Config struct {
	DebuggerURL string        // ws://... of a running Chrome; empty launches one
	Headless    bool          // only used when launching
	Timeout     time.Duration // per-operation timeout on pages
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// Manager owns the connection to Chrome.
type Manager struct {
	cfg        Config
	logger     zerolog.Logger
	mu         sync.Mutex
	browser    *rod.Browser
	controlURL string
	launched   bool
	cancel     context.CancelFunc
}

func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.With().Str("component", "browser").Logger()}
}

// Start connects to DebuggerURL or launches Chrome. A stale connection is
// replaced.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.logger.Warn().Msg("stale browser connection, reconnecting")
		_ = m.disconnect()
	}

	controlURL := m.cfg.DebuggerURL
	launched := controlURL == ""
	if launched {
		u, err := launcher.New().Headless(m.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	// the connection outlives the call that opened it
	bctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b := rod.New().ControlURL(controlURL).Context(bctx)
	if err := b.Connect(); err != nil {
		cancel()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = b
	m.controlURL = controlURL
	m.launched = launched
	m.cancel = cancel
	m.logger.Info().Str("url", controlURL).Msg("browser connected")
	return nil
}

func (m *Manager) ensureStarted(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b != nil {
		return b, nil
	}
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser == nil {
		return nil, ErrNotConnected
	}
	return m.browser, nil
}

// ControlURL is the DevTools websocket of the connected browser, empty when
// disconnected.
func (m *Manager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlURL
}

// Open creates a page at url and waits for it to load.
func (m *Manager) Open(ctx context.Context, url string) (*rod.Page, error) {
	b, err := m.ensureStarted(ctx)
	if err != nil {
		return nil, err
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	loading := page.Context(ctx).Timeout(m.cfg.timeout())
	defer loading.CancelTimeout()
	if err := loading.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	return page, nil
}

// ActivePage picks the page the user is looking at: a focused page first,
// then a visible one, then any.
func (m *Manager) ActivePage(ctx context.Context) (*rod.Page, error) {
	b, err := m.ensureStarted(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrNoActivePage
	}

	var visible *rod.Page
	for _, p := range pages {
		res, err := pageState(ctx, p, m.cfg.timeout())
		if err != nil {
			m.logger.Debug().Err(err).Str("target", string(p.TargetID)).Msg("page state")
			continue
		}
		state := res.Value.Arr()
		if len(state) == 2 && state[0].Bool() {
			return p, nil
		}
		if visible == nil && len(state) == 2 && state[1].Bool() {
			visible = p
		}
	}
	if visible != nil {
		return visible, nil
	}
	return pages.First(), nil
}

func pageState(ctx context.Context, p *rod.Page, timeout time.Duration) (*proto.RuntimeRemoteObject, error) {
	tp := p.Context(ctx).Timeout(timeout)
	defer tp.CancelTimeout()
	return tp.Eval(`() => [document.hasFocus(), document.visibilityState === 'visible']`)
}

// ActiveDocument wraps ActivePage as a Document.
func (m *Manager) ActiveDocument(ctx context.Context) (*Document, error) {
	p, err := m.ActivePage(ctx)
	if err != nil {
		return nil, err
	}
	return NewDocument(p, m.cfg.timeout()), nil
}

// Close disconnects, closing Chrome if this process launched it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnect()
}

// disconnect expects m.mu held.
func (m *Manager) disconnect() error {
	if m.browser == nil {
		return nil
	}
	var err error
	if m.launched {
		err = m.browser.Close()
	}
	m.cancel()
	m.browser, m.cancel = nil, nil
	m.controlURL, m.launched = "", false
	return err
}
