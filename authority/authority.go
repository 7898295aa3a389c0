// Package authority resolves an issuer hostname to a usable signing
// key by fetching its well-known BrowserID document, following
// bounded issuer delegation, and caching the result. It also
// implements the isAuthoritative trust test used to decide whether a
// certificate's issuer may vouch for a given email domain.
package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/cache"
	"github.com/cursive-id/browserid/jwk"
	"github.com/rs/zerolog"
)

// WellKnownPath is the path component of the authority document
// relative to the issuer's host.
const WellKnownPath = "/.well-known/browserid"

// DefaultMaxDelegations bounds how many hops the delegation chain may
// follow before resolution gives up.
const DefaultMaxDelegations = 6

// DefaultMaxTTL clamps a document's self-reported expiry so a
// misbehaving or compromised IdP cannot pin a stale key indefinitely.
const DefaultMaxTTL = 24 * time.Hour

// document is the wire shape of a BrowserID well-known document.
type document struct {
	PublicKey json.RawMessage `json:"public-key"`
	Authority string          `json:"authority,omitempty"`
	Expires   int64           `json:"expires,omitempty"`
}

// Entry is a resolved, cached authority record for one issuer host.
type Entry struct {
	Host      string    `json:"host"`
	Key       jwk.Key   `json:"-"`
	RawKey    []byte    `json:"key"`
	Delegate  string    `json:"delegate,omitempty"`
	Expires   time.Time `json:"expires"`
	LastFetch time.Time `json:"lastFetch"`
}

// Trusted reports whether the entry has not yet expired as of t.
func (e *Entry) Trusted(t time.Time) bool {
	return e != nil && t.Before(e.Expires)
}

// SigningKey returns the entry's public key, reconstituting it from
// RawKey if the entry was loaded from a persistent store where the
// jwk.Key interface value itself does not survive JSON round-tripping.
func (e *Entry) SigningKey() (jwk.Key, error) {
	if e.Key != nil {
		return e.Key, nil
	}
	if len(e.RawKey) == 0 {
		return nil, bidcode.New(bidcode.NoKey)
	}
	key, err := jwk.UnmarshalKey(e.RawKey)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidKey, err)
	}
	e.Key = key
	return key, nil
}

// Resolver resolves issuer hostnames to signing keys, honoring
// delegation and a per-host cache.
type Resolver struct {
	client          *http.Client
	store           cache.Store[Entry]
	maxDelegations  int
	maxTTL          time.Duration
	trustedIssuers  map[string]struct{}
	log             zerolog.Logger
	fetchInFlight   map[string]*sync.Mutex
	fetchInFlightMu sync.Mutex
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the default HTTP client used to fetch
// well-known documents.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithMaxDelegations overrides DefaultMaxDelegations.
func WithMaxDelegations(n int) Option {
	return func(r *Resolver) { r.maxDelegations = n }
}

// WithMaxTTL overrides DefaultMaxTTL.
func WithMaxTTL(d time.Duration) Option {
	return func(r *Resolver) { r.maxTTL = d }
}

// WithTrustedIssuers marks hosts that are authoritative for any email
// domain regardless of delegation, mirroring a relying party's
// explicitly configured issuer allowlist.
func WithTrustedIssuers(hosts ...string) Option {
	return func(r *Resolver) {
		for _, h := range hosts {
			r.trustedIssuers[h] = struct{}{}
		}
	}
}

// WithLogger attaches a logger used to record fetch and delegation
// activity.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a Resolver backed by store for its cache.
func NewResolver(store cache.Store[Entry], opts ...Option) *Resolver {
	r := &Resolver{
		client:         http.DefaultClient,
		store:          store,
		maxDelegations: DefaultMaxDelegations,
		maxTTL:         DefaultMaxTTL,
		trustedIssuers: make(map[string]struct{}),
		log:            zerolog.Nop(),
		fetchInFlight:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the signing key for host, fetching and following
// delegation as needed. now is the caller-supplied verification time,
// used to decide cache freshness.
func (r *Resolver) Resolve(ctx context.Context, host string, now time.Time) (*Entry, error) {
	return r.resolve(ctx, host, now, make(map[string]struct{}), 0)
}

func (r *Resolver) resolve(ctx context.Context, host string, now time.Time, visited map[string]struct{}, depth int) (*Entry, error) {
	if depth > r.maxDelegations {
		return nil, bidcode.New(bidcode.UntrustedIssuer)
	}
	if _, seen := visited[host]; seen {
		return nil, bidcode.New(bidcode.UntrustedIssuer)
	}
	visited[host] = struct{}{}

	if entry, err := r.store.Get(host); err == nil && entry.Trusted(now) {
		if entry.Delegate != "" {
			return r.resolve(ctx, entry.Delegate, now, visited, depth+1)
		}
		return &entry, nil
	}

	entry, err := r.fetchAndCache(ctx, host, now)
	if err != nil {
		return nil, err
	}
	if entry.Delegate != "" {
		r.log.Debug().Str("host", host).Str("delegate", entry.Delegate).Msg("authority delegation")
		return r.resolve(ctx, entry.Delegate, now, visited, depth+1)
	}
	return entry, nil
}

// fetchAndCache serializes the fetch-parse-insert sequence per host so
// concurrent resolvers for the same issuer do not issue duplicate HTTP
// requests.
func (r *Resolver) fetchAndCache(ctx context.Context, host string, now time.Time) (*Entry, error) {
	lock := r.lockFor(host)
	lock.Lock()
	defer lock.Unlock()

	// Another goroutine may have populated the cache while we waited.
	cached, cacheErr := r.store.Get(host)
	if cacheErr == nil && cached.Trusted(now) {
		return &cached, nil
	}

	var ifModifiedSince time.Time
	if cacheErr == nil {
		ifModifiedSince = cached.LastFetch
	}

	doc, notModified, err := r.fetch(ctx, host, ifModifiedSince)
	if err != nil {
		return nil, err
	}
	if notModified {
		if cacheErr != nil {
			return nil, bidcode.New(bidcode.HTTPError)
		}
		cached.Expires = r.expiryFor(now, 0)
		_ = r.store.Set(host, cached)
		return &cached, nil
	}

	entry := &Entry{
		Host:      host,
		Delegate:  doc.Authority,
		Expires:   r.expiryFor(now, doc.Expires),
		LastFetch: now,
	}

	if len(doc.PublicKey) > 0 {
		key, err := jwk.UnmarshalKey(doc.PublicKey)
		if err != nil {
			return nil, bidcode.Wrap(bidcode.InvalidKey, err)
		}
		entry.Key = key
		entry.RawKey = doc.PublicKey
	} else if doc.Authority == "" {
		return nil, bidcode.New(bidcode.NoKey)
	}

	if err := r.store.Set(host, *entry); err != nil {
		r.log.Warn().Err(err).Str("host", host).Msg("authority cache write failed")
	}

	return entry, nil
}

func (r *Resolver) expiryFor(now time.Time, expiresMillis int64) time.Time {
	ttl := r.maxTTL
	if expiresMillis > 0 {
		docTTL := time.UnixMilli(expiresMillis).Sub(now)
		if docTTL > 0 && docTTL < ttl {
			ttl = docTTL
		}
	}
	return now.Add(ttl)
}

func (r *Resolver) fetch(ctx context.Context, host string, ifModifiedSince time.Time) (*document, bool, error) {
	url := "https://" + host + WellKnownPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, bidcode.Wrap(bidcode.HTTPError, err)
	}
	req.Header.Set("Accept", "application/json")
	if !ifModifiedSince.IsZero() {
		req.Header.Set("If-Modified-Since", ifModifiedSince.UTC().Format(http.TimeFormat))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, false, bidcode.Wrap(bidcode.HTTPError, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return nil, true, nil
	case http.StatusOK:
	default:
		return nil, false, bidcode.Wrap(bidcode.HTTPError, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url))
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, false, bidcode.Wrap(bidcode.InvalidJSON, err)
	}
	return &doc, false, nil
}

func (r *Resolver) lockFor(host string) *sync.Mutex {
	r.fetchInFlightMu.Lock()
	defer r.fetchInFlightMu.Unlock()

	l, ok := r.fetchInFlight[host]
	if !ok {
		l = &sync.Mutex{}
		r.fetchInFlight[host] = l
	}
	return l
}

// IsAuthoritative reports whether certIssuer may vouch for
// emailDomain: either they are equal, certIssuer is configured as a
// globally trusted issuer, or certIssuer is reachable from
// emailDomain by following the delegation chain.
func (r *Resolver) IsAuthoritative(ctx context.Context, emailDomain, certIssuer string, now time.Time) error {
	if certIssuer == emailDomain {
		return nil
	}
	if _, ok := r.trustedIssuers[certIssuer]; ok {
		return nil
	}

	visited := make(map[string]struct{})
	host := emailDomain
	for depth := 0; depth <= r.maxDelegations; depth++ {
		if _, seen := visited[host]; seen {
			return bidcode.New(bidcode.UntrustedIssuer)
		}
		visited[host] = struct{}{}

		if host == certIssuer {
			return nil
		}

		entry, err := r.fetchAndCache(ctx, host, now)
		if err != nil {
			return err
		}
		if entry.Delegate == "" {
			return bidcode.New(bidcode.UntrustedIssuer)
		}
		host = entry.Delegate
	}
	return bidcode.New(bidcode.UntrustedIssuer)
}
