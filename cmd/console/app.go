package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/application/session"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/config"
	"github.com/erp/console/internal/infrastructure/logger"
	"github.com/erp/console/internal/infrastructure/printing"
	"github.com/erp/console/internal/infrastructure/storage"
	"github.com/erp/console/internal/infrastructure/telemetry"
)

// app is the wired console: configuration, the sessions and the screens
// built on the API client. The CLI has one restored session in sessions;
// the server keeps one per client in clients.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    storage.Store
	client   *apiclient.Client
	sessions *session.Holder
	clients  *session.Manager
	screens  *screen.Registry
	markers  *screen.MarkerStore
	metrics  *prometheus.Registry
	pdf      *printing.ChromedpRenderer
}

// bootstrap wires the console. server selects the long-running variant:
// JSON logs as configured, metrics and the PDF renderer. CLI commands log
// to stderr at warn level unless --log-level says otherwise.
func bootstrap(ctx context.Context, opts *globalOptions, server bool) (*app, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if !server {
		logCfg = logger.DefaultConfig()
		logCfg.Level = "warn"
	}
	if opts.logLevel != "" {
		logCfg.Level = opts.logLevel
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if server && cfg.Metrics.Enabled {
		a.metrics = telemetry.NewRegistry()
	}

	a.store, err = storage.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	clientOpts := []apiclient.Option{apiclient.WithLogger(log)}
	if a.metrics != nil {
		clientOpts = append(clientOpts, apiclient.WithMetrics(apiclient.NewMetrics(a.metrics)))
	}
	a.client, err = apiclient.New(apiclient.Config{
		BaseURL:       cfg.API.BaseURL,
		APIVersion:    cfg.API.APIVersion,
		Timeout:       cfg.API.Timeout,
		TLSSkipVerify: cfg.API.TLSSkipVerify,
		UserAgent:     cfg.API.UserAgent,
	}, clientOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create API client: %w", err)
	}

	auth := apiclient.NewAuthAPI(a.client, cfg.API.LoginPath)
	if server {
		a.clients = session.NewManager(a.store, auth, log)
		a.client.SetTokenSource(session.ContextTokens)
	} else {
		a.sessions = session.NewHolder(a.store, auth, log)
		a.client.SetTokenSource(a.sessions)
		if err := a.sessions.Restore(ctx); err != nil {
			log.Warn("session restore failed, starting signed out", zap.Error(err))
		}
	}

	templates, err := printing.NewTemplateEngine(printing.Company{
		Name:    cfg.Print.CompanyName,
		Address: cfg.Print.CompanyAddress,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load print templates: %w", err)
	}

	deps := screen.Deps{
		Client:    a.client,
		Templates: templates,
		Logger:    log,
		PageSize:  cfg.API.PageSize,
	}
	if server {
		a.markers = screen.NewMarkerStore(cfg.Print.MarkerTTL)
		deps.Markers = a.markers
		if cfg.Print.PDFEnabled {
			a.pdf = printing.NewChromedpRenderer(printing.ChromedpConfig{
				DefaultTimeout: cfg.Print.Timeout,
				RemoteURL:      cfg.Print.ChromeURL,
				NoSandbox:      cfg.Print.NoSandbox,
				Logger:         log,
			})
			deps.PDF = a.pdf
		}
	}
	a.screens = screen.Build(deps)
	return a, nil
}

// Close releases the PDF browser and the session store
func (a *app) Close() {
	if a.pdf != nil {
		if err := a.pdf.Close(); err != nil {
			a.log.Warn("failed to close PDF renderer", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("failed to close session storage", zap.Error(err))
		}
	}
	logger.Sync(a.log)
}
