// Package identity implements the verified-identity result produced
// by a successful assertion check, mirroring the public and private
// attribute sets the original libbrowserid exposes through
// BIDGetIdentityAttribute and friends.
package identity

import (
	"crypto/subtle"
	"time"
)

// Well-known attribute names populated by the assertion verifier.
const (
	AttrEmail     = "email"
	AttrAudience  = "audience"
	AttrIssuer    = "issuer"
	AttrExpires   = "expires"
	AttrSubject   = "sub"
	AttrPrincipal = "principal"

	// Private attributes, never surfaced to relying-party callers
	// through Attribute/HasAttribute; only SetReauthTicket,
	// ReauthTicket and Release touch these directly.
	privAttrARK    = "ark"
	privAttrARKExp = "a-exp"
	privAttrTicket = "tkt"
)

// Identity is the result of successfully verifying a backed identity
// assertion or an authenticator in the fast-reauthentication protocol.
type Identity struct {
	attributes map[string]any
	sessionKey []byte
}

// New creates an empty Identity.
func New() *Identity {
	return &Identity{attributes: make(map[string]any)}
}

// SetAttribute sets a public attribute. Setting one of the reserved
// private attribute names panics: callers asking for that have a bug,
// not a runtime condition to recover from.
func (id *Identity) SetAttribute(name string, value any) {
	if isPrivate(name) {
		panic("identity: " + name + " is a private attribute")
	}
	id.attributes[name] = value
}

// setPrivateAttribute sets one of the reserved private attributes;
// other packages reach it only through SetReauthTicket.
func (id *Identity) setPrivateAttribute(name string, value any) {
	id.attributes[name] = value
}

func isPrivate(name string) bool {
	switch name {
	case privAttrARK, privAttrARKExp, privAttrTicket:
		return true
	default:
		return false
	}
}

// Attribute returns a public attribute and whether it was present.
func (id *Identity) Attribute(name string) (any, bool) {
	if isPrivate(name) {
		return nil, false
	}
	v, ok := id.attributes[name]
	return v, ok
}

// HasAttribute reports whether a public attribute is present.
func (id *Identity) HasAttribute(name string) bool {
	_, ok := id.Attribute(name)
	return ok
}

// Email returns the verified email address, if any.
func (id *Identity) Email() string {
	v, _ := id.attributes[AttrEmail].(string)
	return v
}

// Audience returns the verified audience, if any.
func (id *Identity) Audience() string {
	v, _ := id.attributes[AttrAudience].(string)
	return v
}

// Issuer returns the leaf certificate's issuer, if any.
func (id *Identity) Issuer() string {
	v, _ := id.attributes[AttrIssuer].(string)
	return v
}

// Expires returns the assertion's expiry time.
func (id *Identity) Expires() time.Time {
	v, _ := id.attributes[AttrExpires].(time.Time)
	return v
}

// SessionKey returns the identity's session key: the per-authenticator
// key derived during fast reauthentication, or the key a caller set with
// SetSessionKey (as EnableReauth does). An identity produced by a full
// assertion verification has none until one is set.
func (id *Identity) SessionKey() []byte {
	return id.sessionKey
}

// SetReauthTicket sets the fields needed to resume fast
// reauthentication: the authenticator root key, its expiry and the
// replay-cache ticket identifier. These are never exposed through
// Attribute/HasAttribute.
func (id *Identity) SetReauthTicket(ark []byte, arkExpiry time.Time, ticket string) {
	id.setPrivateAttribute(privAttrARK, ark)
	id.setPrivateAttribute(privAttrARKExp, arkExpiry)
	id.setPrivateAttribute(privAttrTicket, ticket)
}

// ReauthTicket returns the authenticator root key material, its
// expiry, and the ticket identifier set by SetReauthTicket, along with
// whether reauthentication material is present at all.
func (id *Identity) ReauthTicket() (ark []byte, arkExpiry time.Time, ticket string, ok bool) {
	ark, hasARK := id.attributes[privAttrARK].([]byte)
	exp, hasExp := id.attributes[privAttrARKExp].(time.Time)
	tkt, hasTkt := id.attributes[privAttrTicket].(string)
	if !hasARK || !hasExp || !hasTkt {
		return nil, time.Time{}, "", false
	}
	return ark, exp, tkt, true
}

// SetSessionKey records the identity's session key.
func (id *Identity) SetSessionKey(key []byte) {
	id.sessionKey = key
}

// Release zeroizes every secret this identity carries: the
// authenticator root key and the session key. The original
// libbrowserid memsets these buffers on every exit path from
// _BIDReleaseIdentity; Go has no destructor to hook that into, so
// callers that processed reauthentication material must call Release
// explicitly once they are done with the identity.
func (id *Identity) Release() {
	if ark, ok := id.attributes[privAttrARK].([]byte); ok {
		zero(ark)
	}
	zero(id.sessionKey)
	id.attributes = nil
	id.sessionKey = nil
}

func zero(b []byte) {
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
