package responsive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/pagegate/internal/types"
)

// ChromeOptions configures the headless Chrome engine.
type ChromeOptions struct {
	ExecPath string // Empty uses chromedp's lookup
	Headless bool
	Verbose  bool
}

// ChromeBrowser is the chromedp-backed Browser. Requires Chrome/Chromium on the system.
type ChromeBrowser struct {
	opts ChromeOptions
}

// NewChromeBrowser creates a ChromeBrowser.
func NewChromeBrowser(opts ChromeOptions) *ChromeBrowser {
	return &ChromeBrowser{opts: opts}
}

// Launch starts a browser process. The session lives until Close or until ctx is done.
func (b *ChromeBrowser) Launch(ctx context.Context) (Session, error) {
	if b.opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", false),
	)
	if b.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the process so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &LaunchError{Message: "failed to start chrome", Cause: err}
	}

	return &chromeSession{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		verbose:     b.opts.Verbose,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	verbose     bool
}

// NewPage opens a tab in a fresh browser context so no two viewports share
// cookies, storage or cache.
func (s *chromeSession) NewPage(ctx context.Context, vp types.Viewport) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.ctx, chromedp.WithNewBrowserContext())
	p := &chromePage{
		ctx:    tabCtx,
		cancel: tabCancel,
		idle:   newIdleTracker(),
	}
	chromedp.ListenTarget(tabCtx, p.onEvent)

	emulate := []chromedp.EmulateViewportOption{chromedp.EmulateScale(vp.DeviceScaleFactor)}
	if vp.IsMobile {
		emulate = append(emulate, chromedp.EmulateMobile)
	}
	if vp.HasTouch {
		emulate = append(emulate, chromedp.EmulateTouch)
	}

	// The first Run must use the tab context itself; it creates the target.
	errc := make(chan error, 1)
	go func() {
		errc <- chromedp.Run(tabCtx,
			page.SetLifecycleEventsEnabled(true),
			runtime.Enable(),
			chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height), emulate...),
		)
	}()
	select {
	case err := <-errc:
		if err != nil {
			tabCancel()
			return nil, fmt.Errorf("open tab for %s: %w", vp.Name, err)
		}
	case <-ctx.Done():
		tabCancel()
		<-errc
		return nil, ctx.Err()
	}

	if s.verbose {
		log.Printf("[BROWSER] Opened tab for %s", vp)
	}
	return p, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	idle   *idleTracker

	mu      sync.Mutex
	runtime []string
	console []string
	file    string
}

func (p *chromePage) onEvent(ev any) {
	switch e := ev.(type) {
	case *page.EventLifecycleEvent:
		if e.Name == "networkIdle" {
			p.idle.mark(e.LoaderID)
		}
	case *runtime.EventExceptionThrown:
		if e.ExceptionDetails == nil {
			return
		}
		msg := e.ExceptionDetails.Text
		if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
			msg = ex.Description
		}
		p.mu.Lock()
		p.runtime = append(p.runtime, firstLine(msg))
		p.mu.Unlock()
	case *runtime.EventConsoleAPICalled:
		if e.Type != runtime.APITypeError {
			return
		}
		parts := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			parts = append(parts, remoteString(arg))
		}
		p.mu.Lock()
		p.console = append(p.console, strings.Join(parts, " "))
		p.mu.Unlock()
	}
}

// idleTracker records which document loads have reached network idle.
type idleTracker struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]bool
	signal chan struct{}
}

func newIdleTracker() *idleTracker {
	return &idleTracker{seen: map[cdp.LoaderID]bool{}, signal: make(chan struct{}, 1)}
}

func (t *idleTracker) mark(id cdp.LoaderID) {
	t.mu.Lock()
	t.seen[id] = true
	t.mu.Unlock()
	select {
	case t.signal <- struct{}{}:
	default:
	}
}

// wait blocks until the load identified by id reaches network idle.
func (t *idleTracker) wait(ctx context.Context, id cdp.LoaderID) error {
	for {
		t.mu.Lock()
		done := t.seen[id]
		t.mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-t.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func remoteString(obj *runtime.RemoteObject) string {
	if obj == nil {
		return ""
	}
	if len(obj.Value) > 0 {
		var s string
		if err := json.Unmarshal([]byte(obj.Value), &s); err == nil {
			return s
		}
		return string(obj.Value)
	}
	if obj.Description != "" {
		return firstLine(obj.Description)
	}
	return string(obj.Type)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// run executes actions on the tab, cancelling them when the caller's ctx ends.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) Load(ctx context.Context, document string) error {
	f, err := os.CreateTemp("", "pagegate-*.html")
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if _, err := f.WriteString(document); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write document: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("write document: %w", err)
	}
	p.mu.Lock()
	p.file = f.Name()
	p.mu.Unlock()

	target := (&url.URL{Scheme: "file", Path: f.Name()}).String()
	var loader cdp.LoaderID
	err = p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, id, errText, _, err := page.Navigate(target).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return errors.New(errText)
		}
		loader = id
		return nil
	}))
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	// Idle events for about:blank carry a different loader and are ignored.
	if err := p.idle.wait(ctx, loader); err != nil {
		return fmt.Errorf("waiting for network idle: %w", err)
	}
	return nil
}

func (p *chromePage) Evaluate(ctx context.Context, expr string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

func (p *chromePage) Errors() ([]string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.runtime...), append([]string(nil), p.console...)
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromePage) Close() error {
	p.cancel()
	p.mu.Lock()
	file := p.file
	p.mu.Unlock()
	if file != "" {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove document: %w", err)
		}
	}
	return nil
}
