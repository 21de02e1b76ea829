package browser

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/domain"
)

// webdriverMask hides the automation flag the provider probes for.
const webdriverMask = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

var launchArgs = []string{
	"--disable-gpu",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-setuid-sandbox",
}

// Launcher owns the Playwright driver and one Chromium process shared by all
// sessions. Each acquisition run gets its own isolated browser context.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.BrowserConfig
	logger  *slog.Logger
}

// NewLauncher starts the driver and launches Chromium.
func NewLauncher(cfg config.BrowserConfig, logger *slog.Logger) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!cfg.Headed),
		Args:     launchArgs,
	}
	if cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(cfg.ExecutablePath)
	}

	b, err := pw.Chromium.Launch(opts)
	if err != nil {
		stopErr := pw.Stop()
		if stopErr != nil {
			return nil, fmt.Errorf("launch chromium: %w (stop driver: %v)", err, stopErr)
		}
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &Launcher{pw: pw, browser: b, cfg: cfg, logger: logger}, nil
}

// NewSession opens a stealth context, seeded with session state when present.
func (l *Launcher) NewSession(state domain.SessionState, hasState bool) (*Session, error) {
	ctx, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(l.cfg.UserAgent),
		Locale:            playwright.String(l.cfg.Locale),
		Viewport:          &playwright.Size{Width: l.cfg.ViewportWidth, Height: l.cfg.ViewportHeight},
		DeviceScaleFactor: playwright.Float(1),
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(webdriverMask)}); err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("install stealth script: %w", err)
	}

	if hasState {
		if err := ctx.AddCookies(toOptionalCookies(state)); err != nil {
			// A stale cookie set must not abort acquisition.
			l.debug("seed session cookies failed, continuing anonymous", "error", err)
		}
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &Session{context: ctx, page: page, logger: l.logger}, nil
}

// Close tears down the browser process and the driver.
func (l *Launcher) Close() error {
	if err := l.browser.Close(); err != nil {
		_ = l.pw.Stop()
		return fmt.Errorf("close browser: %w", err)
	}
	if err := l.pw.Stop(); err != nil {
		return fmt.Errorf("stop playwright: %w", err)
	}
	return nil
}

func (l *Launcher) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

// Session is one browser context bound to a single acquisition run.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
	logger  *slog.Logger
}

// Page exposes the session's single tab.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Cookies snapshots the current cookie set for persistence.
func (s *Session) Cookies() (domain.SessionState, error) {
	cookies, err := s.context.Cookies()
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("read context cookies: %w", err)
	}
	return fromCookies(cookies), nil
}

// Close releases the browser context. Safe to call on every exit path.
func (s *Session) Close() {
	if err := s.context.Close(); err != nil && s.logger != nil {
		s.logger.Debug("close browser context", "error", err)
	}
}

func toOptionalCookies(state domain.SessionState) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.Expires != 0 {
			cookie.Expires = playwright.Float(c.Expires)
		}
		if attr := toSameSite(c.SameSite); attr != nil {
			cookie.SameSite = attr
		}
		out = append(out, cookie)
	}
	return out
}

func fromCookies(cookies []playwright.Cookie) domain.SessionState {
	state := domain.SessionState{Cookies: make([]domain.Cookie, 0, len(cookies))}
	for _, c := range cookies {
		cookie := domain.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		state.Cookies = append(state.Cookies, cookie)
	}
	return state
}

func toSameSite(value string) *playwright.SameSiteAttribute {
	switch value {
	case string(*playwright.SameSiteAttributeStrict):
		return playwright.SameSiteAttributeStrict
	case string(*playwright.SameSiteAttributeLax):
		return playwright.SameSiteAttributeLax
	case string(*playwright.SameSiteAttributeNone):
		return playwright.SameSiteAttributeNone
	}
	return nil
}
