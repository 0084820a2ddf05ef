// Package app wires the editor together: configuration, content
// store, backend client, draft journal and the sessions themselves.
package app

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"blockpad/internal/content"
	"blockpad/internal/editor"
	"blockpad/internal/persist"
	"blockpad/internal/storage"
)

// App owns the long-lived pieces and hands out editing sessions, one
// per page.
type App struct {
	cfg     Config
	log     *zap.Logger
	store   *content.Store
	client  *persist.Client
	journal *storage.DB
	cron    *cron.Cron

	mu        sync.Mutex
	sessions  map[string]*editor.Session
	listeners []editor.EventEmitter
}

// New builds the application from config. The backend client is only
// created when a backend URL is configured.
func New(cfg Config, log *zap.Logger) (*App, error) {
	journal, err := storage.Open(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open draft journal: %w", err)
	}
	a := &App{
		cfg:      cfg,
		log:      log,
		store:    content.NewStore(cfg.ContentDir),
		journal:  journal,
		cron:     cron.New(),
		sessions: map[string]*editor.Session{},
	}
	if cfg.Backend.URL != "" {
		a.client = persist.NewClient(cfg.Backend.URL, persist.WithToken(cfg.Backend.Token))
	}

	retention := time.Duration(cfg.DraftRetentionDays) * 24 * time.Hour
	if _, err := a.cron.AddFunc("@hourly", func() {
		n, err := a.journal.Prune(retention)
		if err != nil {
			a.log.Warn("draft prune failed", zap.Error(err))
			return
		}
		if n > 0 {
			a.log.Info("pruned old drafts", zap.Int64("count", n))
		}
	}); err != nil {
		journal.Close()
		return nil, fmt.Errorf("schedule draft prune: %w", err)
	}
	return a, nil
}

// Start launches background jobs.
func (a *App) Start() { a.cron.Start() }

// Close stops background jobs and releases resources. Open sessions
// are cancelled without saving.
func (a *App) Close() error {
	a.cron.Stop()
	a.mu.Lock()
	sessions := make([]*editor.Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	a.mu.Unlock()
	for _, s := range sessions {
		s.Cancel(true)
	}
	return a.journal.Close()
}

func (a *App) Store() *content.Store { return a.store }

func (a *App) Config() Config { return a.cfg }

// AddListener subscribes an emitter to all session events.
func (a *App) AddListener(l editor.EventEmitter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

// Emit fans session events out to listeners and drops sessions from
// the registry once they close.
func (a *App) Emit(ctx context.Context, event string, data any) {
	a.log.Debug("event", zap.String("event", event), zap.Any("data", data))
	if event == editor.EventSessionClosed {
		if p, ok := data.(editor.ClosedPayload); ok {
			a.mu.Lock()
			delete(a.sessions, p.Page)
			a.mu.Unlock()
		}
	}
	a.mu.Lock()
	listeners := append([]editor.EventEmitter(nil), a.listeners...)
	a.mu.Unlock()
	for _, l := range listeners {
		l.Emit(ctx, event, data)
	}
}

// Open loads a page and starts (or returns the existing) editing
// session for it.
func (a *App) Open(page string) (*editor.Session, error) {
	a.mu.Lock()
	if s, ok := a.sessions[page]; ok && !s.Closed() {
		a.mu.Unlock()
		return s, nil
	}
	a.mu.Unlock()

	p, err := a.store.Page(page)
	if err != nil {
		return nil, err
	}
	cfg := editor.Config{
		Saver:   a.saverFor(p),
		Journal: a.journal,
		Emitter: a,
	}
	if a.cfg.AutosaveMS > 0 {
		cfg.Debounce = time.Duration(a.cfg.AutosaveMS) * time.Millisecond
	}
	s := editor.NewSession(page, p.Body, p.Meta, cfg)

	a.mu.Lock()
	a.sessions[page] = s
	a.mu.Unlock()
	a.log.Info("session opened", zap.String("page", page))
	return s, nil
}

// Session returns the open session for a page, if any.
func (a *App) Session(page string) (*editor.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[page]
	if ok && s.Closed() {
		delete(a.sessions, page)
		return nil, false
	}
	return s, ok
}

// Sessions lists the pages with open sessions.
func (a *App) Sessions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.sessions))
	for page := range a.sessions {
		out = append(out, page)
	}
	return out
}

// LatestDraft exposes the newest journaled draft for crash recovery.
func (a *App) LatestDraft(page string) (storage.Draft, bool, error) {
	return a.journal.Latest(page)
}

// UploadMedia forwards an upload to the backend. It fails when no
// backend is configured.
func (a *App) UploadMedia(ctx context.Context, filename string, data []byte) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("no backend configured for media upload")
	}
	return a.client.UploadMedia(ctx, filename, bytes.NewReader(data))
}

func (a *App) saverFor(p *content.Page) editor.Saver {
	return &pageSaver{
		store:   a.store,
		client:  a.client,
		journal: a.journal,
		page:    p,
		log:     a.log,
	}
}
