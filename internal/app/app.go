package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/infrastructure/auth"
	"ReviewScanner/internal/infrastructure/browser"
	"ReviewScanner/internal/infrastructure/extractor"
	"ReviewScanner/internal/infrastructure/httpapi"
	"ReviewScanner/internal/infrastructure/nlp"
	"ReviewScanner/internal/infrastructure/session"
	"ReviewScanner/internal/infrastructure/storage"
	"ReviewScanner/internal/logging"
	"ReviewScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	launcher *browser.Launcher
	store    *storage.SqliteRepository
	sessions *session.FileStore
	server   *http.Server
}

// New builds a runnable application instance. The classifier handle is
// constructed once here and shared read-only across pipelines.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	launcher, err := browser.NewLauncher(cfg.Browser, baseLogger.With("component", "browser"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	sessions := session.NewFileStore(cfg.Auth.SessionPath, baseLogger.With("component", "session"))
	login := auth.NewMachine(cfg.Auth, baseLogger.With("component", "auth"))
	engine := extractor.NewEngine(launcher, sessions, login, cfg.Extraction, cfg.Auth.DebugDir, baseLogger.With("component", "extractor"))
	classifier := nlp.NewClient(cfg.Classifier, baseLogger.With("component", "classifier"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor:  engine,
		Classifier: classifier,
		Store:      store,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	handler := httpapi.NewHandler(pipeline, cfg.Extraction.DefaultLimit, baseLogger.With("component", "httpapi"))

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		launcher: launcher,
		store:    store,
		sessions: sessions,
		server:   &http.Server{Addr: cfg.Server.Addr, Handler: handler},
	}, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

// BootstrapSession opens a headed browser so an operator can log in by hand
// (covering 2FA and similar challenges), then persists the resulting cookie
// set as the session artifact.
func (a *Application) BootstrapSession(ctx context.Context) error {
	cfg := a.cfg.Browser
	cfg.Headed = true

	launcher, err := browser.NewLauncher(cfg, a.logger.With("component", "browser"))
	if err != nil {
		return fmt.Errorf("launch headed browser: %w", err)
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			a.logger.Debug("close headed browser", "error", err)
		}
	}()

	sess, err := launcher.NewSession(domain.SessionState{}, false)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}
	defer sess.Close()

	if _, err := sess.Page().Goto(a.cfg.Auth.LoginURL, playwright.PageGotoOptions{
		Timeout: playwright.Float(60000),
	}); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	fmt.Println("Log in (including any verification) in the browser window,")
	fmt.Println("then press Enter here to save the session.")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("wait for operator: %w", err)
		}
	}

	state, err := sess.Cookies()
	if err != nil {
		return fmt.Errorf("snapshot session: %w", err)
	}
	if err := a.sessions.Save(state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	a.logger.Info("session artifact saved", "path", a.cfg.Auth.SessionPath, "cookies", len(state.Cookies))
	return nil
}

// Close releases the shared browser process and the cache store.
func (a *Application) Close() error {
	var firstErr error
	if err := a.launcher.Close(); err != nil {
		firstErr = err
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
