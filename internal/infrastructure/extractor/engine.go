package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/infrastructure/auth"
	"ReviewScanner/internal/infrastructure/browser"
	"ReviewScanner/internal/ports"
)

const (
	reviewBlockSelector = ".jJc9Ad"
	reviewTabSelector   = "button[aria-label*='Reseñas'], button[aria-label*='Reviews']"
	showMoreSelector    = "button[aria-label^='Ver más'], button[aria-label^='See more'], button:has-text('Más')"
)

// Title candidates tried in order; none matching falls back to the sentinel.
var businessNameSelectors = []string{".a5H0ec", "h1.DUwDvf"}

// Engine drives one browser session through the listing page and harvests
// review records via incremental loading. Every step is independently
// best-effort: the target UI has no versioned contract, so a rigid
// all-or-nothing parse would break on routine markup changes.
type Engine struct {
	launcher  *browser.Launcher
	sessions  ports.SessionStore
	login     *auth.Machine
	snapshots *auth.Snapshotter
	cfg       config.ExtractionConfig
	logger    *slog.Logger
}

var _ ports.Extractor = (*Engine)(nil)

// NewEngine wires the browser launcher, session store and login flow.
func NewEngine(launcher *browser.Launcher, sessions ports.SessionStore, login *auth.Machine, cfg config.ExtractionConfig, debugDir string, logger *slog.Logger) *Engine {
	return &Engine{
		launcher:  launcher,
		sessions:  sessions,
		login:     login,
		snapshots: auth.NewSnapshotter(debugDir, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Extract navigates to the target URL and returns up to limit review records.
// An empty slice is a valid outcome meaning no data is obtainable right now;
// partial results after a mid-run failure are valid too. The browser context
// is released on every exit path.
func (e *Engine) Extract(ctx context.Context, targetURL string, limit int) ([]domain.ReviewRecord, error) {
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	state, restored := e.sessions.Load()
	sess, err := e.launcher.NewSession(state, restored)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer sess.Close()

	page := sess.Page()

	if restored {
		e.debug("session restored from artifact")
	} else {
		e.authenticate(ctx, sess)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.debug("navigating to target", "url", targetURL)
	if _, err := page.Goto(targetURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(e.cfg.NavigationTimeoutMs)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		e.snapshots.Capture(page, "crash_navigation")
		e.warn("navigation failed", "url", targetURL, "error", err)
		return []domain.ReviewRecord{}, nil
	}

	browser.Pause(ctx, 3000, 5000)

	businessName := e.extractBusinessName(page)
	e.debug("business resolved", "name", businessName)

	e.openReviewPanel(ctx, page)

	blocks := page.Locator(reviewBlockSelector)
	if err := blocks.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(e.cfg.ContainerTimeoutMs)),
	}); err != nil {
		e.debug("review container never materialized", "url", targetURL)
		return []domain.ReviewRecord{}, nil
	}

	records := e.collectReviews(ctx, page, blocks, businessName, limit)

	if e.cfg.ExportCSV && len(records) > 0 {
		if path, err := writeCSV(records, e.cfg.CSVDir, targetURL); err != nil {
			e.warn("csv export failed", "error", err)
		} else {
			e.debug("csv exported", "path", path)
		}
	}

	return records, nil
}

func (e *Engine) collectReviews(ctx context.Context, page playwright.Page, blocks playwright.Locator, businessName string, limit int) []domain.ReviewRecord {
	col := newCollector(limit, e.cfg.MaxStagnantRounds)

	for !col.full() {
		if ctx.Err() != nil {
			e.debug("extraction abandoned by caller", "collected", len(col.results()))
			break
		}

		rendered, err := blocks.All()
		if err != nil {
			e.snapshots.Capture(page, "crash_enumerate")
			e.warn("block enumeration failed, keeping partial results", "error", err)
			break
		}

		for _, block := range rendered {
			if col.full() {
				break
			}

			text, err := block.InnerText()
			if err != nil {
				continue
			}
			if !col.admit(text) {
				continue
			}

			e.revealFullText(block)

			snap := blockSnapshot{Text: text}
			if html, err := block.InnerHTML(); err == nil {
				snap.HTML = html
			}
			if label, err := block.GetAttribute("aria-label"); err == nil {
				snap.AriaLabel = label
			}

			col.append(parseBlock(snap, businessName, time.Now()))
		}

		e.debug("load iteration done", "collected", len(col.results()), "limit", limit)

		if len(rendered) > 0 {
			e.triggerMoreContent(page, rendered[len(rendered)-1])
		}

		browser.Pause(ctx, e.cfg.MinPauseMs, e.cfg.MaxPauseMs)

		if col.endRound() {
			e.debug("content stagnated, no more reviews available")
			break
		}
	}

	return col.results()
}

// authenticate runs the login state machine and persists fresh session state
// on success. Any login failure degrades to anonymous mode.
func (e *Engine) authenticate(ctx context.Context, sess *browser.Session) {
	if e.login == nil || !e.login.Configured() {
		e.debug("running in anonymous mode")
		return
	}

	finalState, err := e.login.Login(ctx, sess.Page())
	if err != nil {
		e.warn("login failed, continuing anonymous", "state", string(finalState), "error", err)
		return
	}
	if finalState != auth.StateAuthenticated {
		return
	}

	state, err := sess.Cookies()
	if err != nil {
		e.debug("session snapshot failed", "error", err)
		return
	}
	if err := e.sessions.Save(state); err != nil {
		e.debug("session persist failed", "error", err)
	}
}

func (e *Engine) extractBusinessName(page playwright.Page) string {
	for _, selector := range businessNameSelectors {
		title := page.Locator(selector).First()
		visible, _ := title.IsVisible()
		if !visible {
			continue
		}

		name, err := title.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(2000)})
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			return trimmed
		}
	}
	return domain.UnknownBusiness
}

// openReviewPanel clicks the reviews tab when one exists. Some layouts present
// reviews already expanded, so an absent trigger is not an error.
func (e *Engine) openReviewPanel(ctx context.Context, page playwright.Page) {
	tab := page.Locator(reviewTabSelector).First()
	visible, _ := tab.IsVisible()
	if !visible {
		return
	}

	if err := tab.Click(); err != nil {
		e.debug("review tab click failed", "error", err)
		return
	}

	browser.Pause(ctx, 2000, 4000)
}

func (e *Engine) revealFullText(block playwright.Locator) {
	more := block.Locator(showMoreSelector).First()
	visible, _ := more.IsVisible()
	if !visible {
		return
	}
	if err := more.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(1000)}); err != nil {
		e.debug("show-more click failed", "error", err)
	}
}

// triggerMoreContent nudges the panel to load the next batch: scroll the last
// known block into view, wheel over the panel area, then signal page end.
func (e *Engine) triggerMoreContent(page playwright.Page, last playwright.Locator) {
	if err := last.ScrollIntoViewIfNeeded(); err != nil {
		e.debug("scroll into view failed", "error", err)
	}
	if err := page.Mouse().Move(400, 600); err == nil {
		_ = page.Mouse().Wheel(0, 3000)
	}
	if err := page.Keyboard().Press("End"); err != nil {
		e.debug("page-end signal failed", "error", err)
	}
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
