package bidcode

import (
	"errors"
	"fmt"
)

// Code names one member of the closed error taxonomy of the
// verification and reauthentication engine (spec §7). The zero value,
// OK, is never wrapped into an Error.
type Code int

const (
	OK Code = iota

	// Input
	InvalidAssertion
	InvalidJSON
	InvalidBase64
	InvalidJWT
	InvalidParameter
	TooManyCerts

	// Audience / time
	MissingAudience
	BadAudience
	MissingChannelBindings
	ChannelBindingsMismatch
	ExpiredAssertion
	AssertionNotYetValid
	ExpiredCert
	CertNotYetValid

	// Trust
	MissingIssuer
	InvalidIssuer
	UntrustedIssuer
	MissingPrincipal
	UnknownPrincipalType
	MissingCert

	// Key / signature
	UnknownAlgorithm
	MissingAlgorithm
	InvalidKey
	InvalidKeySet
	NoKey
	InvalidSignature
	CryptoError

	// Attribute certificates
	MissingCertBinding
	CertBindingMismatch

	// Replay / reauth
	ReplayedAssertion
	BadTicketCache
	NoTicketCache

	// I/O
	HTTPError
	DocumentNotModified
	CacheKeyNotFound
	CacheOpenError

	// Resource
	NoMemory
	BufferTooSmall
	BufferTooLong
	Unavailable
	NotImplemented
)

var names = [...]string{
	OK:                      "ok",
	InvalidAssertion:        "invalid assertion",
	InvalidJSON:             "invalid json",
	InvalidBase64:           "invalid base64",
	InvalidJWT:              "invalid json web token",
	InvalidParameter:        "invalid parameter",
	TooManyCerts:            "too many certs",
	MissingAudience:         "missing audience",
	BadAudience:             "bad audience",
	MissingChannelBindings:  "missing channel bindings",
	ChannelBindingsMismatch: "channel bindings mismatch",
	ExpiredAssertion:        "expired assertion",
	AssertionNotYetValid:    "assertion not yet valid",
	ExpiredCert:             "expired certificate",
	CertNotYetValid:         "certificate not yet valid",
	MissingIssuer:           "missing issuer",
	InvalidIssuer:           "invalid issuer",
	UntrustedIssuer:         "untrusted issuer",
	MissingPrincipal:        "missing principal",
	UnknownPrincipalType:    "unknown principal type",
	MissingCert:             "missing certificate",
	UnknownAlgorithm:        "unknown algorithm",
	MissingAlgorithm:        "missing algorithm",
	InvalidKey:              "invalid key",
	InvalidKeySet:           "invalid key set",
	NoKey:                   "no key",
	InvalidSignature:        "invalid signature",
	CryptoError:             "internal crypto error",
	MissingCertBinding:      "missing certificate binding",
	CertBindingMismatch:     "certificate binding mismatch",
	ReplayedAssertion:       "replayed assertion",
	BadTicketCache:          "bad ticket cache",
	NoTicketCache:           "no ticket cache",
	HTTPError:               "http error",
	DocumentNotModified:     "document not modified",
	CacheKeyNotFound:        "cache key not found",
	CacheOpenError:          "cache open error",
	NoMemory:                "no memory",
	BufferTooSmall:          "buffer too small",
	BufferTooLong:           "buffer too long",
	Unavailable:             "unavailable",
	NotImplemented:          "not implemented",
}

// String returns the human-readable name of c, or "unknown error code"
// if c is outside the closed taxonomy.
func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(names) || names[c] == "" {
		return "unknown error code"
	}
	return names[c]
}

// Error wraps a Code with an optional underlying cause. It is the
// concrete error type returned from every public operation in this
// module; callers distinguish failures with errors.As, never by
// matching on Error's formatted string.
type Error struct {
	Code  Code
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.cause)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error for code with no further detail.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap creates an Error for code that carries cause as its underlying
// error, preserving it for errors.Unwrap/errors.Is chains.
func Wrap(code Code, cause error) *Error {
	if cause == nil {
		return New(code)
	}
	return &Error{Code: code, cause: cause}
}

// Is reports whether err is, or wraps, a bidcode.Error with the given code.
func Is(err error, code Code) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	return be.Code == code
}
