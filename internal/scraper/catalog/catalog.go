// Package catalog renders a product catalog page in a headless browser and
// extracts its product containers.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/stealth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"StockScraper/internal/models"
	"StockScraper/internal/scraper"
	"StockScraper/utils"
)

// DefaultNavigationTimeout bounds a single navigation, including the wait
// for the load event.
const DefaultNavigationTimeout = 2 * time.Minute

// ErrNavigationTimeout is returned when the page did not load in time.
var ErrNavigationTimeout = errors.New("catalog navigation timed out")

var tracer = otel.Tracer("StockScraper/internal/scraper/catalog")

// Config holds the browser settings.
type Config struct {
	Headless          bool
	ChromePath        string
	NoSandbox         bool
	NavigationTimeout time.Duration
}

// page is the part of a rod page the renderer drives.
type page interface {
	Navigate(url string) error
	WaitLoad() error
	HTML() (string, error)
}

// launchFunc starts a browser and returns its control URL and a teardown
// that stops the process and removes its profile.
type launchFunc func(ctx context.Context) (controlURL string, teardown func(), err error)

// connectFunc attaches to a running browser and opens a page whose
// operations share one timeout. closePage releases the page and the
// connection.
type connectFunc func(ctx context.Context, controlURL string, timeout time.Duration) (p page, closePage func(), err error)

// Renderer launches a fresh browser for every Render call.
type Renderer struct {
	conf    Config
	log     *slog.Logger
	launch  launchFunc
	connect connectFunc
}

var _ scraper.Renderer = (*Renderer)(nil)

// New builds a renderer. A zero NavigationTimeout means the default.
func New(conf Config, log *slog.Logger) *Renderer {
	if conf.NavigationTimeout <= 0 {
		conf.NavigationTimeout = DefaultNavigationTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Renderer{conf: conf, log: log}
	r.launch = r.launchBrowser
	r.connect = r.openPage
	return r
}

// Render loads url and extracts its product containers.
func (r *Renderer) Render(ctx context.Context, url string) ([]models.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "catalog.Render")
	defer span.End()

	pageHTML, err := r.fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, err
	}

	records, err := ParseCatalog(pageHTML, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.products", len(records)))
	r.log.Info("catalog rendered", "url", url, "products", len(records))
	return records, nil
}

// fetch owns the browser for one navigation. The browser and its process
// are torn down on every return path.
func (r *Renderer) fetch(ctx context.Context, url string) (string, error) {
	controlURL, teardown, err := r.launch(ctx)
	if err != nil {
		return "", err
	}
	defer teardown()

	p, closePage, err := r.connect(ctx, controlURL, r.conf.NavigationTimeout)
	if err != nil {
		return "", err
	}
	defer closePage()

	if err := p.Navigate(url); err != nil {
		return "", navigationError(url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", navigationError(url, err)
	}

	pageHTML, err := p.HTML()
	if err != nil {
		return "", navigationError(url, err)
	}
	return pageHTML, nil
}

func (r *Renderer) launchBrowser(ctx context.Context) (string, func(), error) {
	l := launcher.New().
		Context(ctx).
		Headless(r.conf.Headless).
		NoSandbox(r.conf.NoSandbox)
	if r.conf.ChromePath != "" {
		l = l.Bin(r.conf.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		r.discard(l)
		return "", nil, fmt.Errorf("launch browser: %w", err)
	}
	return controlURL, func() { r.release(l) }, nil
}

func (r *Renderer) openPage(ctx context.Context, controlURL string, timeout time.Duration) (page, func(), error) {
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}
	closeBrowser := func() {
		if err := browser.Close(); err != nil {
			r.log.Debug("closing browser", "err", err)
		}
	}

	p, err := stealth.Page(browser)
	if err != nil {
		closeBrowser()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	nav := p.Timeout(timeout)
	return nav, func() {
		nav.CancelTimeout()
		_ = p.Close()
		closeBrowser()
	}, nil
}

// discard cleans up after a failed launch. Cleanup blocks until the process
// exits, so it only runs when a process was started.
func (r *Renderer) discard(l *launcher.Launcher) {
	if l.PID() == 0 {
		removeProfile(l)
		return
	}
	l.Kill()
	r.release(l)
}

// release waits for the browser process to exit and removes its profile. A
// process that survives is killed and reported.
func (r *Renderer) release(l *launcher.Launcher) {
	pid := l.PID()
	done := make(chan struct{})
	go func() {
		l.Cleanup()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		r.log.Warn("browser did not exit after close, killing it", "pid", pid)
		l.Kill()
		removeProfile(l)
	}

	if utils.ProcessAlive(pid) {
		r.log.Warn("browser process leaked", "pid", pid)
		l.Kill()
	}
}

func removeProfile(l *launcher.Launcher) {
	if dir := l.Get(flags.UserDataDir); dir != "" {
		_ = os.RemoveAll(dir)
	}
}

func navigationError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, url, err)
	}
	return fmt.Errorf("navigate to %s: %w", url, err)
}
