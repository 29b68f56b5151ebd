package responsive

import (
	"context"

	"github.com/jonathan/pagegate/internal/types"
)

// Browser starts rendering sessions. The chromedp engine implements it; tests use fakes.
type Browser interface {
	Launch(ctx context.Context) (Session, error)
}

// Session owns one running engine. Pages opened from it do not share state.
type Session interface {
	NewPage(ctx context.Context, vp types.Viewport) (Page, error)
	Close() error
}

// Page is one isolated rendering context sized to a viewport.
type Page interface {
	// Load renders document and returns once the network is idle or ctx expires.
	Load(ctx context.Context, document string) error
	// Evaluate runs expr in the page and decodes its JSON result into out.
	Evaluate(ctx context.Context, expr string, out any) error
	// Errors returns uncaught exceptions and console errors seen so far.
	Errors() (runtime []string, console []string)
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
