// Package session captures the host-context token a Telegram Mini App
// shell hands to the client and keeps it available for the rest of the
// session. The live host runtime is authoritative; the page URL is the
// fallback; a previously captured value is never clobbered by an empty
// capture.
package session

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tgmarket/miniapp-client/storage"
)

// StorageKey is the session-scoped storage key holding the captured
// host-context string.
const StorageKey = "tg_init_data"

// initDataParams are the accepted URL parameter names, matched
// case-insensitively, in query first and fragment second.
var initDataParams = []string{"tgWebAppData", "initData", "init_data"}

// Context is the captured host context.
type Context struct {
	InitData   string
	CapturedAt time.Time
}

// Provider returns the init data string from a live host runtime object,
// or "" when the runtime is absent. The provider is consulted on every
// Capture and wins over both the URL fallback and any stored value.
type Provider func() string

// Bridge obtains the host-context token and persists it for the session.
type Bridge struct {
	mu         sync.Mutex
	store      storage.Store
	live       Provider
	capturedAt time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithProvider installs the live host runtime hook.
func WithProvider(p Provider) Option {
	return func(b *Bridge) { b.live = p }
}

// NewBridge creates a bridge persisting into store. A nil store gets an
// in-memory session store.
func NewBridge(store storage.Store, opts ...Option) *Bridge {
	b := &Bridge{store: store}
	if b.store == nil {
		b.store = storage.NewMemoryStore()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Capture derives the host-context token and persists it. rawURL is the
// current page address, or "" when none is available. Calling Capture
// again is safe: a fresh live value overwrites, an empty capture leaves
// any previously stored value untouched. Absence of host context is not
// an error; the backend decides whether it is required.
func (b *Bridge) Capture(ctx context.Context, rawURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.live != nil {
		if v := b.live(); v != "" {
			return b.persist(ctx, v)
		}
	}

	// Don't clobber a stored value with a stale URL fallback.
	if stored, err := b.store.Get(ctx, StorageKey); err == nil && stored != "" {
		return nil
	}

	if v := InitDataFromURL(rawURL); v != "" {
		return b.persist(ctx, v)
	}
	return nil
}

func (b *Bridge) persist(ctx context.Context, v string) error {
	if err := b.store.Set(ctx, StorageKey, v); err != nil {
		return err
	}
	b.capturedAt = time.Now()
	return nil
}

// InitData returns the captured token, or "" when none was obtained.
// It never fails; a storage error degrades to absence.
func (b *Bridge) InitData(ctx context.Context) string {
	v, err := b.store.Get(ctx, StorageKey)
	if err != nil {
		return ""
	}
	return v
}

// Context returns the captured context and whether one is present.
func (b *Bridge) Context(ctx context.Context) (Context, bool) {
	v := b.InitData(ctx)
	if v == "" {
		return Context{}, false
	}
	b.mu.Lock()
	capturedAt := b.capturedAt
	b.mu.Unlock()
	return Context{InitData: v, CapturedAt: capturedAt}, true
}

// InitDataFromURL extracts the init data parameter from a page address.
// The query string is checked before the fragment, and within each the
// accepted parameter names are tried in order, case-insensitively. The
// value is returned URL-decoded. An unparseable URL yields "".
func InitDataFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if v := initDataFromValues(u.Query()); v != "" {
		return v
	}

	// Hash routers put the parameters in the fragment, itself encoded
	// as a query string, possibly after a route path.
	frag := u.Fragment
	if i := strings.IndexByte(frag, '?'); i >= 0 {
		frag = frag[i+1:]
	}
	values, err := url.ParseQuery(frag)
	if err != nil {
		return ""
	}
	return initDataFromValues(values)
}

func initDataFromValues(values url.Values) string {
	for _, name := range initDataParams {
		for key, vs := range values {
			if strings.EqualFold(key, name) && len(vs) > 0 && vs[0] != "" {
				return vs[0]
			}
		}
	}
	return ""
}
