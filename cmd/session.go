package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/providers/generic"
	"github.com/brogergvhs/noveltomanga/internal/render"
	"github.com/brogergvhs/noveltomanga/internal/synthetic"
	"github.com/brogergvhs/noveltomanga/internal/ui"
	"github.com/brogergvhs/noveltomanga/internal/util"
)

// session is what every pipeline command needs: the merged config, the
// renderer store of the selected source and an engine to draw with.
type session struct {
	cfg      *config.Config
	usedPath string
	log      *ui.Logger
	prefs    config.Prefs
	store    *config.Store
	engine   *render.TextEngine
}

func openSession(opts config.Options) (*session, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = opts.Debug || flagDebug
	if opts.Source == "" {
		opts.Source = flagSource
	}

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	rt := &session{cfg: cfg, usedPath: usedPath, log: ui.NewLogger(cfg.Debug)}

	rt.prefs, err = config.OpenPrefs(cfg.PrefsBackend, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("open renderer prefs: %w", err)
	}

	rt.store, err = config.LoadStore(rt.prefs)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load renderer prefs: %w", err)
	}

	var engineOpts []render.Option
	if cfg.FontFile != "" {
		engineOpts = append(engineOpts, render.WithFontFile(cfg.FontFile))
	}
	rt.engine, err = render.New(engineOpts...)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.log.Debugf("source %q, prefs backend %s, renderer %+v\n", cfg.Source, cfg.PrefsBackend, rt.store.Snapshot())

	return rt, nil
}

// httpClient builds the shared client. The synthetic interceptor sits first
// so page URLs are answered before any network stage.
func (s *session) httpClient() (*http.Client, error) {
	return util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:           30 * time.Second,
		UserAgent:         util.PickUserAgent(s.cfg.UserAgent),
		Cookie:            s.cfg.Cookie,
		CookieFile:        s.cfg.CookieFile,
		Cloudflare:        s.cfg.Cloudflare,
		RequestsPerSecond: s.cfg.RequestsPerSecond,
		Middlewares:       []util.Middleware{synthetic.Interceptor(s.engine, s.store)},
		DebugLogger:       s.log,
	})
}

func (s *session) source(client *http.Client) *generic.Source {
	return generic.NewSource(client, s.cfg.ContentSelector, s.log,
		generic.WithReadabilityFallback(s.cfg.ReadabilityFallback))
}

func (s *session) Close() {
	if c, ok := s.prefs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Errorf("close prefs: %v\n", err)
		}
	}
}
