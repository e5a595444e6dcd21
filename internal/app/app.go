package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"

	"StockScraper/internal/airtable"
	"StockScraper/internal/baseline"
	"StockScraper/internal/database"
	"StockScraper/internal/notify"
	"StockScraper/internal/persist"
	"StockScraper/internal/processor"
	"StockScraper/internal/scraper"
	"StockScraper/internal/scraper/catalog"
	"StockScraper/internal/sink"
	"StockScraper/internal/telemetry"
	"StockScraper/pkg/config"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config   *config.Config
	Pipeline *Pipeline
	log      *slog.Logger
	webhook  *processor.WebhookClient

	mu       sync.Mutex
	store    baseline.Store
	closer   io.Closer
	diffSink *sink.Diff
}

// New wires the renderer and the push client. The baseline store and the
// notifier are opened on first use, so modes that never diff do not need
// their credentials.
func New(cfg *config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	renderer := catalog.New(catalog.Config{
		Headless:          cfg.Scraper.HeadlessEnabled(),
		ChromePath:        cfg.Scraper.ChromePath,
		NoSandbox:         cfg.Scraper.NoSandboxEnabled(),
		NavigationTimeout: cfg.Scraper.NavigationTimeout,
	}, log)
	return NewWithRenderer(cfg, renderer, log)
}

// NewWithRenderer is New with a caller-supplied renderer.
func NewWithRenderer(cfg *config.Config, renderer scraper.Renderer, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		Config:   cfg,
		Pipeline: NewPipeline(renderer, cfg.Scraper.URL, log),
		log:      log,
		webhook:  processor.NewWebhookClient(newRestyClient(60*time.Second, log)),
	}
}

// UseStore sets the baseline store instead of opening the configured one.
func (a *App) UseStore(store baseline.Store) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = store
	a.diffSink = nil
}

// Store returns the configured baseline store, opening it if needed.
func (a *App) Store(ctx context.Context) (baseline.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.storeLocked(ctx)
}

func (a *App) storeLocked(ctx context.Context) (baseline.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	sc := a.Config.Store
	switch strings.ToLower(sc.Backend) {
	case config.StoreAirtable:
		a.store = airtable.New(newRestyClient(30*time.Second, a.log), airtable.Config{
			BaseURL: sc.Airtable.BaseURL,
			APIKey:  sc.Airtable.APIKey,
			BaseID:  sc.Airtable.BaseID,
			Table:   sc.Airtable.Table,
		})
	case config.StoreSQLite, config.StoreLibSQL:
		repo, err := database.Open(ctx, strings.ToLower(sc.Backend), sc.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.store = repo
		a.closer = repo
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
	return a.store, nil
}

// DiffSink returns the diff+notify+persist sink.
func (a *App) DiffSink(ctx context.Context) (*sink.Diff, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.diffSink != nil {
		return a.diffSink, nil
	}

	store, err := a.storeLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("open baseline store: %w", err)
	}
	var dispatcher *notify.Dispatcher
	if sender := a.sender(); sender != nil {
		dispatcher = notify.NewDispatcher(sender, a.log)
	}
	a.diffSink = sink.NewDiff(store, dispatcher, persist.New(store, a.Config.Store.ChunkSize, a.log), a.log)
	return a.diffSink, nil
}

func (a *App) sender() notify.Sender {
	nc := a.Config.Notify
	switch strings.ToLower(nc.Channel) {
	case config.NotifyTelegram:
		return notify.NewTelegram(newRestyClient(30*time.Second, a.log), nc.Telegram.BaseURL, nc.Telegram.BotToken, nc.Telegram.ChatID)
	case config.NotifyEmail:
		return notify.NewEmail(notify.SMTPConfig{
			Server:   nc.Email.Server,
			Port:     nc.Email.Port,
			Username: nc.Email.Username,
			Password: nc.Email.Password,
			From:     nc.Email.From,
			To:       nc.Email.To,
			Subject:  nc.Email.Subject,
		})
	default:
		a.log.Warn("notifications disabled", "channel", nc.Channel)
		return nil
	}
}

// RunDiff scrapes, diffs against the baseline, notifies and persists.
func (a *App) RunDiff(ctx context.Context) (Result, error) {
	s, err := a.DiffSink(ctx)
	if err != nil {
		return Result{}, err
	}
	return a.Pipeline.Run(ctx, s)
}

// RunForward scrapes and pushes every product to targetURL, falling back
// to the configured webhook.
func (a *App) RunForward(ctx context.Context, targetURL string) (Result, error) {
	if targetURL == "" {
		targetURL = a.Config.Forward.WebhookURL
	}
	return a.Pipeline.Run(ctx, sink.NewForward(a.webhook, targetURL, a.log))
}

// RunReturn scrapes and returns the normalized products.
func (a *App) RunReturn(ctx context.Context) (Result, error) {
	return a.Pipeline.Run(ctx, sink.Return{})
}

// Watch runs the diff pipeline on the configured cron schedule until ctx
// is done. A tick that fires while a run is in progress is skipped.
func (a *App) Watch(ctx context.Context) error {
	logger := telemetry.CronLogger{Log: a.log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(a.Config.Schedule.Cron, func() {
		if _, err := a.RunDiff(ctx); err != nil {
			a.log.Error("scheduled run failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", a.Config.Schedule.Cron, err)
	}

	a.log.Info("watching catalog", "schedule", a.Config.Schedule.Cron, "url", a.Config.Scraper.URL)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Close releases the baseline store.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func newRestyClient(timeout time.Duration, log *slog.Logger) *resty.Client {
	return telemetry.InstrumentResty(resty.New().SetTimeout(timeout), log)
}
