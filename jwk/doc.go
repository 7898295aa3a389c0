// Package jwk provides types and functions implementing the subset of
// JSON Web Keys specified in RFC 7517
// (https://datatracker.ietf.org/doc/html/rfc7517) that the BrowserID
// wire format uses: RSA, DSA and octet (symmetric) keys, including
// the legacy decimal big-integer encoding used by the original IdP
// implementation.
package jwk
