// Package bidcode defines the closed error taxonomy shared by every
// package in this module, mirroring the BIDError enumeration and
// _BIDErrorTable string lookup of the original libbrowserid C implementation.
package bidcode
