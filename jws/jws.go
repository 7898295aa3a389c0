// Package jws implements the JSON Web Signature compact serialization
// defined in RFC 7515 (https://datatracker.ietf.org/doc/html/rfc7515),
// restricted to the closed signature algorithm set the BrowserID wire
// format uses: RS256, RS128, RS64, DS256, DS128 and HS256. Unlike a
// general-purpose JOSE library, this package never negotiates or adds
// algorithms at runtime — the set above is exhaustive by design.
package jws

import (
	"fmt"
	"strings"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/codec"
)

// Header defines the structure representing a JWS JOSE header as
// defined in RFC 7515 section 4
// (https://datatracker.ietf.org/doc/html/rfc7515#section-4). This
// implementation has no support for private header parameters or for
// header parameters outside the closed algorithm set (jku, x5u, x5t,
// x5t#S256). "x5c" is not supported either: no package in this module
// reads an embedded certificate chain.
type Header struct {
	Algorithm SignatureAlgorithm `json:"alg"`
	Type      string             `json:"typ,omitempty"`
}

// Encode returns h as a base64url-encoded JSON header segment.
func (h *Header) Encode() string {
	data, err := codec.MarshalJSON(*h)
	if err != nil {
		panic(err)
	}
	return codec.Encode(data)
}

// DecodeHeader decodes a base64url-encoded JSON header segment.
func DecodeHeader(encoded string) (*Header, error) {
	data, err := codec.Decode(encoded)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}

	var h Header
	if err := codec.UnmarshalJSON(data, &h); err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}

	return &h, nil
}

// JWS implements a JSON Web Signature data structure. The fields of
// this struct represent the different components of a JWS in
// multiple ways. Once created a JWS is immutable. A JWS may only be
// created through functions exposed from this package:
//
//	func Sign(signer Signer, payload []byte, header Header) (*JWS, error)
//	func ParseCompact(compact string) (*JWS, error)
type JWS struct {
	header           Header
	headerEncoded    string
	payload          []byte
	payloadEncoded   string
	signature        []byte
	signatureEncoded string
}

// Header returns a copy of j's header.
func (j *JWS) Header() Header {
	return j.header
}

// Payload returns a deep copy of j's payload.
func (j *JWS) Payload() []byte {
	b := make([]byte, len(j.payload))
	copy(b, j.payload)
	return b
}

// SigningInput returns the exact bytes that were, or would be, signed:
// the encoded header and payload joined by a dot. The reauth package
// derives each authenticator's session key from it, so this is exposed
// rather than kept private.
func (j *JWS) SigningInput() string {
	return j.headerEncoded + "." + j.payloadEncoded
}

// Compact returns the JWS in compact serialization as specified in
// RFC 7515 section 7.1
// (https://datatracker.ietf.org/doc/html/rfc7515#section-7.1)
func (j *JWS) Compact() string {
	return j.headerEncoded + "." + j.payloadEncoded + "." + j.signatureEncoded
}

// VerifySignature verifies j's signature using verifier.
func (j *JWS) VerifySignature(verifier Verifier) error {
	if err := verifier.Verify(j.header.Algorithm, []byte(j.SigningInput()), j.signature); err != nil {
		return bidcode.Wrap(bidcode.InvalidSignature, err)
	}
	return nil
}

// Sign signs the given payload and header with the given signer. It
// returns a JWS value containing the raw and encoded parts as well as
// the signature.
func Sign(signer Signer, payload []byte, header Header) (*JWS, error) {
	header.Algorithm = signer.Alg()
	headerEncoded := header.Encode()
	payloadEncoded := codec.Encode(payload)

	signature, err := signer.Sign([]byte(headerEncoded + "." + payloadEncoded))
	if err != nil {
		return nil, err
	}

	return &JWS{
		header:           header,
		headerEncoded:    headerEncoded,
		payload:          payload,
		payloadEncoded:   payloadEncoded,
		signature:        signature,
		signatureEncoded: codec.Encode(signature),
	}, nil
}

// ParseCompact parses the given compact representation into a JWS
// data structure. It performs only syntactic validation of the
// base64url-encoded segments and of the header JSON; the signature is
// NOT verified. Use VerifySignature for that.
func ParseCompact(compact string) (*JWS, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, fmt.Errorf("invalid number of encoded parts: %d", len(parts)))
	}

	header, err := DecodeHeader(parts[0])
	if err != nil {
		return nil, err
	}

	payload, err := codec.Decode(parts[1])
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}

	signature, err := codec.Decode(parts[2])
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}

	return &JWS{
		header:           *header,
		headerEncoded:    parts[0],
		payload:          payload,
		payloadEncoded:   parts[1],
		signature:        signature,
		signatureEncoded: parts[2],
	}, nil
}

// SignatureAlgorithm names one of the closed set of algorithms this
// package implements.
type SignatureAlgorithm string

const (
	ALG_RS256 SignatureAlgorithm = "RS256"
	ALG_RS128 SignatureAlgorithm = "RS128"
	ALG_RS64  SignatureAlgorithm = "RS64"
	ALG_DS256 SignatureAlgorithm = "DS256"
	ALG_DS128 SignatureAlgorithm = "DS128"
	ALG_HS256 SignatureAlgorithm = "HS256"
)

// Signer defines the interface for types implementing a given
// signature method for signing byte slices.
type Signer interface {
	// Alg returns the name of the signature algorithm.
	Alg() SignatureAlgorithm

	// Sign computes the signature or MAC for data.
	Sign(data []byte) ([]byte, error)
}

// Verifier defines the interface for types verifying signatures.
type Verifier interface {
	// Verify reports whether signature is a valid signature for data
	// under alg. Implementations MUST NOT modify data or signature.
	Verify(alg SignatureAlgorithm, data []byte, signature []byte) error
}

// SignerVerifier is the combination of both Signer and Verifier. It
// is used for symmetric signatures (HS256).
type SignerVerifier interface {
	Signer
	Verifier
}

type symmetricSignature struct {
	Signer
	verify func(data, signature []byte) error
}

func (s *symmetricSignature) Verify(alg SignatureAlgorithm, data []byte, signature []byte) error {
	if alg != s.Alg() {
		return bidcode.New(bidcode.UnknownAlgorithm)
	}
	return s.verify(data, signature)
}

// SymmetricSignature creates a SignerVerifier from a Signer whose
// matching verify function is a constant-time recomputation of the
// signature rather than a second-channel comparison, so HS256
// verification never leaks timing information about the secret.
func SymmetricSignature(s Signer, verify func(data, signature []byte) error) SignerVerifier {
	return &symmetricSignature{Signer: s, verify: verify}
}
