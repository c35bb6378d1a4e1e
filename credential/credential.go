// Package credential is the single source of truth for bearer tokens,
// keyed by audience. The standard audience reads through a legacy
// fallback chain so sessions issued under older key names keep working;
// new writes always use the canonical key.
package credential

import (
	"context"
	"strings"

	"github.com/tgmarket/miniapp-client/storage"
)

// Audience is the trust tier a credential and a request belong to.
type Audience int

const (
	// AudienceStandard is the regular storefront user tier.
	AudienceStandard Audience = iota
	// AudiencePrivileged is the admin tier.
	AudiencePrivileged
)

func (a Audience) String() string {
	if a == AudiencePrivileged {
		return "privileged"
	}
	return "standard"
}

// Storage key names. Readers of the standard audience walk the chain in
// this order; writers use only the canonical name.
const (
	KeyAccessToken = "access_token"
	KeyAdminToken  = "admin_token"
)

var standardKeyChain = []string{KeyAccessToken, "jwt", "token"}

// ClassifyPath classifies a request path by audience: a path whose first
// segment is "admin", optionally after one "api" root segment, is
// privileged. Everything else is standard.
func ClassifyPath(path string) Audience {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) > 0 && segs[0] == "api" {
		segs = segs[1:]
	}
	if len(segs) > 0 && segs[0] == "admin" {
		return AudiencePrivileged
	}
	return AudienceStandard
}

// Store holds bearer tokens keyed by audience.
type Store struct {
	storage storage.Store
}

// NewStore creates a credential store over the given storage. A nil
// storage gets an in-memory one.
func NewStore(s storage.Store) *Store {
	if s == nil {
		s = storage.NewMemoryStore()
	}
	return &Store{storage: s}
}

// Get returns the token for the audience and whether one is present.
// Storage failures degrade to absence; Get never fails loudly.
func (s *Store) Get(ctx context.Context, audience Audience) (string, bool) {
	for _, key := range keysFor(audience) {
		v, err := s.storage.Get(ctx, key)
		if err == nil && v != "" {
			return v, true
		}
	}
	return "", false
}

// Set stores the token under the audience's canonical key.
func (s *Store) Set(ctx context.Context, audience Audience, token string) error {
	return s.storage.Set(ctx, canonicalKey(audience), token)
}

// Clear removes the audience's token, including the legacy aliases for
// the standard audience so a cleared session cannot resurrect through
// the fallback chain.
func (s *Store) Clear(ctx context.Context, audience Audience) error {
	var firstErr error
	for _, key := range keysFor(audience) {
		if err := s.storage.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func canonicalKey(audience Audience) string {
	if audience == AudiencePrivileged {
		return KeyAdminToken
	}
	return KeyAccessToken
}

func keysFor(audience Audience) []string {
	if audience == AudiencePrivileged {
		return []string{KeyAdminToken}
	}
	return standardKeyChain
}
