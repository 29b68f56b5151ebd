package responsive

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jonathan/pagegate/internal/types"
)

// fakeBrowser serves canned probe payloads keyed by viewport name.
type fakeBrowser struct {
	launchErr error
	payloads  map[string]map[string]string // viewport -> probe -> JSON
	shared    map[string]string            // probe -> JSON for every viewport
	blockLoad map[string]bool
	runtime   []string
	console   []string

	mu            sync.Mutex
	pages         []*fakePage
	sessionClosed bool
}

func (b *fakeBrowser) Launch(ctx context.Context) (Session, error) {
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	return &fakeSession{b: b}, nil
}

type fakeSession struct {
	b *fakeBrowser
}

func (s *fakeSession) NewPage(ctx context.Context, vp types.Viewport) (Page, error) {
	p := &fakePage{
		viewport: vp,
		payloads: map[string]string{},
		block:    s.b.blockLoad[vp.Name],
		runtime:  s.b.runtime,
		console:  s.b.console,
	}
	for k, v := range s.b.shared {
		p.payloads[k] = v
	}
	for k, v := range s.b.payloads[vp.Name] {
		p.payloads[k] = v
	}
	s.b.mu.Lock()
	s.b.pages = append(s.b.pages, p)
	s.b.mu.Unlock()
	return p, nil
}

func (s *fakeSession) Close() error {
	s.b.mu.Lock()
	s.b.sessionClosed = true
	s.b.mu.Unlock()
	return nil
}

type fakePage struct {
	viewport types.Viewport
	payloads map[string]string
	block    bool
	runtime  []string
	console  []string
	loaded   string
	closed   bool
}

func (p *fakePage) Load(ctx context.Context, document string) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.loaded = document
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, expr string, out any) error {
	for name, payload := range p.payloads {
		if strings.Contains(expr, "/* probe:"+name+" */") {
			return json.Unmarshal([]byte(payload), out)
		}
	}
	return json.Unmarshal([]byte("{}"), out)
}

func (p *fakePage) Errors() ([]string, []string) {
	return p.runtime, p.console
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}
