package browserid

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cursive-id/browserid/assertion"
	"github.com/cursive-id/browserid/authority"
	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/cache"
	"github.com/cursive-id/browserid/identity"
	"github.com/cursive-id/browserid/internal/codec"
	"github.com/cursive-id/browserid/reauth"
	"github.com/rs/zerolog"
)

// Context is the relying party's entry point: a configured assertion
// verifier, its authority resolver, and the reauthentication caches,
// wired together from a Config. It corresponds to the handle returned
// by the original library's BIDAcquireContext.
type Context struct {
	cfg Config
	log zerolog.Logger

	authorityCache cache.Store[authority.Entry]
	replayCache    cache.Store[reauth.ReplayEntry]
	ticketCache    cache.Store[reauth.TicketEntry]

	resolver *authority.Resolver
	verifier *assertion.Verifier
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithLogger sets the Context's logger. The authority resolver receives
// it only when a WithHTTPClient option is applied after WithLogger;
// attribute-certificate validation and reauth ticket handling do not
// receive it.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithHTTPClient overrides the HTTP client used to fetch well-known
// authority documents.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Context) {
		c.resolver = authority.NewResolver(c.authorityCache,
			authority.WithHTTPClient(client),
			authority.WithMaxDelegations(c.cfg.MaxDelegations),
			authority.WithMaxTTL(c.cfg.MaxAuthorityTTL),
			authority.WithTrustedIssuers(c.cfg.TrustedIssuers...),
			authority.WithLogger(c.log),
		)
		c.verifier.Authority = c.resolver
	}
}

// NewContext builds a Context from cfg, using in-memory caches sized
// per cfg, except that each of the authority, replay and ticket caches
// is file-backed when its cfg path (AuthorityCachePath,
// ReplayCachePath, TicketCachePath) is set.
func NewContext(cfg Config, opts ...Option) (*Context, error) {
	var (
		replayCache    cache.Store[reauth.ReplayEntry]
		ticketCache    cache.Store[reauth.TicketEntry]
		authorityCache cache.Store[authority.Entry]
		err            error
	)

	if cfg.ReplayCachePath != "" {
		replayCache, err = cache.OpenFileStore[reauth.ReplayEntry](cfg.ReplayCachePath)
	} else {
		replayCache, err = cache.NewMemoryStore[reauth.ReplayEntry](cfg.ReplayCacheSize)
	}
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CacheOpenError, err)
	}

	if cfg.TicketCachePath != "" {
		ticketCache, err = cache.OpenFileStore[reauth.TicketEntry](cfg.TicketCachePath)
	} else {
		ticketCache, err = cache.NewMemoryStore[reauth.TicketEntry](cfg.TicketCacheSize)
	}
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CacheOpenError, err)
	}

	if cfg.AuthorityCachePath != "" {
		authorityCache, err = cache.OpenFileStore[authority.Entry](cfg.AuthorityCachePath)
	} else {
		authorityCache, err = cache.NewMemoryStore[authority.Entry](256)
	}
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CacheOpenError, err)
	}

	c := &Context{
		cfg:            cfg,
		log:            zerolog.Nop(),
		authorityCache: authorityCache,
		replayCache:    replayCache,
		ticketCache:    ticketCache,
	}

	c.resolver = authority.NewResolver(authorityCache,
		authority.WithMaxDelegations(cfg.MaxDelegations),
		authority.WithMaxTTL(cfg.MaxAuthorityTTL),
		authority.WithTrustedIssuers(cfg.TrustedIssuers...),
		authority.WithLogger(c.log),
	)
	c.verifier = &assertion.Verifier{
		Authority:   c.resolver,
		ReplayCache: replayCache,
		Skew:        cfg.Skew,
		MaxCerts:    cfg.MaxCerts,
		AllowReauth: cfg.AllowReauth,
		ReplayTTL:   cfg.Skew,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Verify validates a backed assertion or fast-reauthentication
// authenticator against audience and channelBindings as of now,
// returning the materialized identity. A session key is present on
// the returned identity only for the fast-reauthentication path (per
// spec, a primary verification carries no session key of its own);
// callers that want to enable reauthentication after a primary
// verification must supply a session key obtained through their own
// channel-binding/key-agreement layer to EnableReauth.
func (c *Context) Verify(ctx context.Context, assertionString, audience string, channelBindings []byte, now time.Time) (*identity.Identity, error) {
	id, _, err := c.verifier.Verify(ctx, assertionString, audience, channelBindings, now)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// EnableReauth stores a reauthentication ticket for id, deriving the
// authenticator root key from sessionKey, obtained outside this
// module (e.g. from a GSS-API or TLS channel-binding exchange the
// caller already completed). A subsequent GetReauthAssertion call for
// the same audience can then skip the full certificate chain.
func (c *Context) EnableReauth(id *identity.Identity, sessionKey []byte, assertionString, audience string, now time.Time) error {
	id.SetSessionKey(sessionKey)

	// The primary verification keyed its replay-cache entry on the
	// final assertion segment, so the ticket references that same key.
	final := assertionString[strings.LastIndex(assertionString, "~")+1:]
	replayKey := codec.DigestAssertion(final)
	ticketKey := assertion.PackAudience(audience, nil)

	return reauth.StoreTicket(c.ticketCache, c.replayCache, id, audience, ticketKey, replayKey, now, c.cfg.TicketLifetime)
}

// GetReauthAssertion mints a fast-reauthentication backed assertion
// for audience from a previously stored ticket, corresponding to the
// original library's BIDAcquireAuthenticator. subjectHint, if
// non-empty, is used to find the ticket by subject when no entry is
// cached under audience directly. Tickets are keyed by the audience
// without channel bindings.
func (c *Context) GetReauthAssertion(audience string, channelBindings []byte, subjectHint string, now time.Time) (string, time.Time, error) {
	ticketKey := assertion.PackAudience(audience, nil)
	entry, err := reauth.LookupTicket(c.ticketCache, ticketKey, audience, subjectHint)
	if err != nil {
		return "", time.Time{}, err
	}

	packedAudience := assertion.PackAudience(audience, channelBindings)
	return reauth.MintAuthenticator(entry, packedAudience, channelBindings, now, c.cfg.Skew)
}

// Resolver returns the Context's authority resolver, for callers that
// need to inspect or pre-warm authority trust outside of Verify (e.g.
// the cmd/bidcheck "show-authority" subcommand).
func (c *Context) Resolver() *authority.Resolver {
	return c.resolver
}

// Close releases the Context's in-memory caches. File-backed caches
// are left on disk so a later Context can reopen them.
func (c *Context) Close() error {
	var errs []error
	if _, onDisk := c.authorityCache.(*cache.FileStore[authority.Entry]); !onDisk {
		errs = append(errs, c.authorityCache.Destroy())
	}
	if _, onDisk := c.replayCache.(*cache.FileStore[reauth.ReplayEntry]); !onDisk {
		errs = append(errs, c.replayCache.Destroy())
	}
	if _, onDisk := c.ticketCache.(*cache.FileStore[reauth.TicketEntry]); !onDisk {
		errs = append(errs, c.ticketCache.Destroy())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
