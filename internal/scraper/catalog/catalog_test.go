package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePage struct {
	ctx         context.Context
	navigateErr error
	html        string
}

func (p *fakePage) Navigate(string) error {
	if p.navigateErr != nil {
		return p.navigateErr
	}
	if p.ctx != nil {
		<-p.ctx.Done()
		return p.ctx.Err()
	}
	return nil
}

func (p *fakePage) WaitLoad() error        { return nil }
func (p *fakePage) HTML() (string, error) { return p.html, nil }

// lifecycle counts how often each scoped resource is released.
type lifecycle struct {
	teardowns int
	closes    int
}

func newTestRenderer(lc *lifecycle, timeout time.Duration, connect connectFunc) *Renderer {
	r := New(Config{NavigationTimeout: timeout}, nil)
	r.launch = func(context.Context) (string, func(), error) {
		return "ws://127.0.0.1:9222/devtools/browser/test", func() { lc.teardowns++ }, nil
	}
	r.connect = connect
	return r
}

func connectTo(lc *lifecycle, p page) connectFunc {
	return func(context.Context, string, time.Duration) (page, func(), error) {
		return p, func() { lc.closes++ }, nil
	}
}

func TestRenderReleasesBrowserOnSuccess(t *testing.T) {
	var lc lifecycle
	r := newTestRenderer(&lc, time.Minute, connectTo(&lc, &fakePage{html: fixturePage}))

	records, err := r.Render(context.Background(), "https://shop.example.com/collections/tea")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, lifecycle{teardowns: 1, closes: 1}, lc)
}

func TestRenderReleasesBrowserWhenConnectFails(t *testing.T) {
	var lc lifecycle
	connectErr := errors.New("connect browser: connection refused")
	r := newTestRenderer(&lc, time.Minute, func(context.Context, string, time.Duration) (page, func(), error) {
		return nil, nil, connectErr
	})

	_, err := r.Render(context.Background(), "https://shop.example.com")
	require.ErrorIs(t, err, connectErr)
	require.Equal(t, lifecycle{teardowns: 1}, lc)
}

func TestRenderReleasesBrowserWhenNavigationFails(t *testing.T) {
	var lc lifecycle
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	r := newTestRenderer(&lc, time.Minute, connectTo(&lc, &fakePage{navigateErr: navErr}))

	_, err := r.Render(context.Background(), "https://shop.example.com")
	require.ErrorIs(t, err, navErr)
	require.NotErrorIs(t, err, ErrNavigationTimeout)
	require.Equal(t, lifecycle{teardowns: 1, closes: 1}, lc)
}

func TestRenderBoundsNavigation(t *testing.T) {
	var lc lifecycle
	var gotTimeout time.Duration
	r := newTestRenderer(&lc, 20*time.Millisecond, func(ctx context.Context, _ string, timeout time.Duration) (page, func(), error) {
		gotTimeout = timeout
		navCtx, cancel := context.WithTimeout(ctx, timeout)
		return &fakePage{ctx: navCtx}, func() {
			cancel()
			lc.closes++
		}, nil
	})

	start := time.Now()
	_, err := r.Render(context.Background(), "https://shop.example.com")
	require.ErrorIs(t, err, ErrNavigationTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start).Seconds(), 5.0)
	require.Equal(t, 20*time.Millisecond, gotTimeout)
	require.Equal(t, lifecycle{teardowns: 1, closes: 1}, lc)
}

func TestRenderLaunchFailureSkipsConnect(t *testing.T) {
	launchErr := errors.New("launch browser: exec: \"chromium\": executable file not found")
	r := New(Config{}, nil)
	r.launch = func(context.Context) (string, func(), error) {
		return "", nil, launchErr
	}
	r.connect = func(context.Context, string, time.Duration) (page, func(), error) {
		t.Fatal("connect called after failed launch")
		return nil, nil, nil
	}

	_, err := r.Render(context.Background(), "https://shop.example.com")
	require.ErrorIs(t, err, launchErr)
}

func TestNavigationError(t *testing.T) {
	err := navigationError("https://shop.example.com", context.DeadlineExceeded)
	require.ErrorIs(t, err, ErrNavigationTimeout)

	err = navigationError("https://shop.example.com", errors.New("boom"))
	require.NotErrorIs(t, err, ErrNavigationTimeout)
	require.Contains(t, err.Error(), "navigate to https://shop.example.com")
}
