package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/infrastructure/browser"
)

// State identifies a step of the interactive login flow.
type State string

const (
	StateStart             State = "START"
	StateNavigatedToLogin  State = "NAVIGATED_TO_LOGIN"
	StateEmailSubmitted    State = "EMAIL_SUBMITTED"
	StatePasswordSubmitted State = "PASSWORD_SUBMITTED"
	StateAuthenticated     State = "AUTHENTICATED"
	StateFailed            State = "FAILED"
)

// Failure classes of a login attempt. All of them are terminal for the attempt
// but never fatal to the pipeline, which proceeds in anonymous mode.
var (
	ErrBlockedByProvider   = errors.New("provider detected an automated browser")
	ErrUnexpectedRedirect  = errors.New("navigation landed outside the login domain")
	ErrFormNotFound        = errors.New("login form not found")
	ErrInvalidCredentials  = errors.New("credentials rejected by provider")
	ErrUnexpectedChallenge = errors.New("unexpected challenge during login")
)

const (
	loginDomain          = "accounts.google.com"
	emailSelector        = `input[type="email"]`
	passwordSelector     = `input[type="password"]`
	emailNextSelector    = "#identifierNext, button:has-text('Siguiente'), button:has-text('Next')"
	passwordNextSelector = "#passwordNext, button:has-text('Siguiente'), button:has-text('Next')"

	formTimeoutMs       = 10000
	navigationTimeoutMs = 60000
	validationTimeoutMs = 30000
)

var blockedSignals = []string{
	"This browser or app may not be secure",
	"Este navegador o aplicación no es seguro",
}

var authenticatedURL = regexp.MustCompile(`myaccount\.google\.com|accounts\.google\.com/ManageAccount`)

// Machine drives the interactive login against the identity provider. With no
// credentials configured it short-circuits to anonymous mode without touching
// the page.
type Machine struct {
	cfg       config.AuthConfig
	snapshots *Snapshotter
	logger    *slog.Logger
}

// NewMachine builds the login flow from configuration.
func NewMachine(cfg config.AuthConfig, logger *slog.Logger) *Machine {
	return &Machine{
		cfg:       cfg,
		snapshots: NewSnapshotter(cfg.DebugDir, logger),
		logger:    logger,
	}
}

// Configured reports whether credentials are available at all.
func (m *Machine) Configured() bool {
	return m.cfg.Email != "" && m.cfg.Password != ""
}

// Login walks the state machine on the given page. It returns the terminal
// state; StateAuthenticated means the session can be persisted for reuse. A
// returned error always pairs with StateFailed, except the credential-less
// short circuit which reports StateStart with no error.
func (m *Machine) Login(ctx context.Context, page playwright.Page) (State, error) {
	if !m.Configured() {
		m.debug("no credentials configured, staying anonymous")
		return StateStart, nil
	}

	if _, err := m.navigateToLogin(ctx, page); err != nil {
		return m.fail(page, "login_navigate", err)
	}

	if _, err := m.submitEmail(ctx, page); err != nil {
		return m.fail(page, "login_email", err)
	}

	if _, err := m.submitPassword(ctx, page); err != nil {
		return m.fail(page, "login_password", err)
	}

	state, err := m.validate(ctx, page)
	if err != nil {
		return m.fail(page, "login_validate", err)
	}

	m.debug("login flow finished", "state", string(state))
	return state, nil
}

func (m *Machine) navigateToLogin(ctx context.Context, page playwright.Page) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	m.debug("navigating to login", "url", m.cfg.LoginURL)
	if _, err := page.Goto(m.cfg.LoginURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(navigationTimeoutMs),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return StateFailed, fmt.Errorf("open login page: %w", err)
	}

	if !strings.Contains(page.URL(), loginDomain) {
		return StateFailed, fmt.Errorf("%w: landed on %s", ErrUnexpectedRedirect, page.URL())
	}

	for _, signal := range blockedSignals {
		visible, _ := page.GetByText(signal).First().IsVisible()
		if visible {
			return StateFailed, ErrBlockedByProvider
		}
	}

	m.snapshots.Capture(page, "login_loaded")
	return StateNavigatedToLogin, nil
}

func (m *Machine) submitEmail(ctx context.Context, page playwright.Page) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	email := page.Locator(emailSelector).First()
	if err := email.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(formTimeoutMs),
	}); err != nil {
		m.snapshots.CaptureHTML(page, "login_no_email")
		return StateFailed, fmt.Errorf("%w: email input missing", ErrFormNotFound)
	}

	if err := email.Fill(m.cfg.Email); err != nil {
		return StateFailed, fmt.Errorf("fill email: %w", err)
	}

	next := page.Locator(emailNextSelector).First()
	if visible, _ := next.IsVisible(); !visible {
		return StateFailed, fmt.Errorf("%w: email continue button missing", ErrFormNotFound)
	}
	if err := next.Click(); err != nil {
		return StateFailed, fmt.Errorf("advance past email: %w", err)
	}

	browser.Pause(ctx, 2000, 4000)

	if visible, _ := page.GetByText("Couldn't find your Google Account").First().IsVisible(); visible {
		return StateFailed, fmt.Errorf("%w: account not recognized", ErrInvalidCredentials)
	}

	m.snapshots.Capture(page, "login_email_submitted")
	return StateEmailSubmitted, nil
}

func (m *Machine) submitPassword(ctx context.Context, page playwright.Page) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	password := page.Locator(passwordSelector).First()
	if err := password.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(formTimeoutMs),
	}); err != nil {
		// Covers 2FA and CAPTCHA interstitials this system does not solve.
		return StateFailed, fmt.Errorf("%w: password field never appeared", ErrUnexpectedChallenge)
	}

	if err := password.Fill(m.cfg.Password); err != nil {
		return StateFailed, fmt.Errorf("fill password: %w", err)
	}

	browser.Pause(ctx, 1000, 2000)

	if err := page.Locator(passwordNextSelector).First().Click(); err != nil {
		return StateFailed, fmt.Errorf("advance past password: %w", err)
	}

	m.snapshots.Capture(page, "login_password_submitted")
	return StatePasswordSubmitted, nil
}

func (m *Machine) validate(ctx context.Context, page playwright.Page) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	err := page.WaitForURL(authenticatedURL, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(validationTimeoutMs),
	})
	if err == nil {
		m.snapshots.Capture(page, "login_success")
		return StateAuthenticated, nil
	}

	m.snapshots.Capture(page, "login_uncertain")

	if visible, _ := page.GetByText("Wrong password").First().IsVisible(); visible {
		return StateFailed, fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
	}

	if m.cfg.StrictValidation {
		return StateFailed, fmt.Errorf("%w: no authenticated destination reached", ErrUnexpectedChallenge)
	}

	// No known failure signal. Absence of proof is not proof of success, but
	// blocking forever is worse; tentative success is the configured default.
	m.debug("validation timed out without failure signal, tentative success")
	return StateAuthenticated, nil
}

func (m *Machine) fail(page playwright.Page, snapshot string, err error) (State, error) {
	m.snapshots.Capture(page, snapshot)
	if m.logger != nil {
		m.logger.Warn("login attempt failed", "error", err)
	}
	return StateFailed, err
}

func (m *Machine) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
