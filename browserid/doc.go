// Package browserid wires the verification engine's component
// packages — authority resolution, assertion verification,
// attribute-certificate validation, fast reauthentication and their
// caches — into a single Context that mirrors the public surface of
// the original library's BIDAcquireContext/BIDVerifyAssertion/
// BIDAcquireAuthenticator entry points.
package browserid
