package browserid

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-tunable setting of the engine. Zero
// value Config is invalid; build one with LoadConfig or DefaultConfig.
type Config struct {
	// Skew is the clock-skew tolerance applied to every expiry check
	// and the default assertion/certificate lifetime when "exp" is
	// absent.
	Skew time.Duration `env:"BID_SKEW" envDefault:"5m"`

	// MaxCerts bounds a backed assertion's certificate chain length
	// (BID_MAX_CERTS).
	MaxCerts int `env:"BID_MAX_CERTS" envDefault:"6"`

	// MaxDelegations bounds how many issuer-delegation hops the
	// authority resolver follows before giving up.
	MaxDelegations int `env:"BID_MAX_DELEGATIONS" envDefault:"6"`

	// MaxAuthorityTTL clamps a well-known document's self-reported
	// expiry.
	MaxAuthorityTTL time.Duration `env:"BID_MAX_AUTHORITY_TTL" envDefault:"24h"`

	// TicketLifetime bounds how long a reauthentication ticket (and
	// its derived ARK) remains usable after a primary verification.
	TicketLifetime time.Duration `env:"BID_TICKET_LIFETIME" envDefault:"24h"`

	// ReplayCacheSize bounds the in-memory replay cache's entry count.
	ReplayCacheSize int `env:"BID_REPLAY_CACHE_SIZE" envDefault:"4096"`

	// TicketCacheSize bounds the in-memory ticket cache's entry count.
	TicketCacheSize int `env:"BID_TICKET_CACHE_SIZE" envDefault:"1024"`

	// AuthorityCachePath is the file the authority cache persists to.
	// Empty uses an in-memory cache instead (no persistence across
	// process restarts).
	AuthorityCachePath string `env:"BID_AUTHORITY_CACHE_PATH"`

	// TicketCachePath is the file the reauthentication ticket cache
	// persists to. Empty uses an in-memory cache instead; a CLI that
	// wants getReauthAssertion to work across separate invocations
	// needs this set.
	TicketCachePath string `env:"BID_TICKET_CACHE_PATH"`

	// ReplayCachePath is the file the replay cache persists to. Empty
	// uses an in-memory cache instead.
	ReplayCachePath string `env:"BID_REPLAY_CACHE_PATH"`

	// TrustedIssuers are issuer hosts treated as authoritative for any
	// email domain, bypassing the delegation walk.
	TrustedIssuers []string `env:"BID_TRUSTED_ISSUERS" envSeparator:","`

	// AllowReauth enables the zero-certificate fast-reauthentication
	// verification path.
	AllowReauth bool `env:"BID_ALLOW_REAUTH" envDefault:"true"`
}

// DefaultConfig returns a Config populated with every envDefault, as
// if loaded from a completely empty environment.
func DefaultConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates a Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
