// Package jwt contains types and functions to create, sign and parse
// JSON Web Tokens as specified in RFC 7519
// (https://datatracker.ietf.org/doc/html/rfc7519), with timestamp
// claims interpreted in milliseconds rather than the RFC's seconds
// convention, matching the BrowserID wire format. Policy decisions
// about issuer trust, audience and expiry live in the assertion
// package, which layers BrowserID-specific rules over the claims this
// package exposes.
package jwt
