package integration

import (
	"crypto/sha1" //nolint:gosec // name-based identifier, not a security primitive
	"strings"

	"github.com/google/uuid"
)

// vendorNamespace is the namespace for vendor identities.
var vendorNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// VendorIdentityFromNo derives a stable identifier from an ERP vendor number.
// The same vendor number (ignoring case and surrounding spaces) always yields
// the same identifier.
//
// Identifiers are hashed over the little-endian GUID byte layout so they match
// the ones already issued to the vendor portal, which is why this is not a
// plain uuid.NewSHA1.
func VendorIdentityFromNo(vendorNo string) (uuid.UUID, error) {
	normalized := strings.ToUpper(strings.TrimSpace(vendorNo))
	if normalized == "" {
		return uuid.Nil, ErrVendorNoRequired
	}

	ns := guidLayout(vendorNamespace)

	h := sha1.New() //nolint:gosec
	h.Write(ns[:])
	h.Write([]byte(normalized))
	sum := h.Sum(nil)

	var raw uuid.UUID
	copy(raw[:], sum[:16])
	raw[6] = (raw[6] & 0x0f) | 0x50
	raw[8] = (raw[8] & 0x3f) | 0x80

	return guidLayout(raw), nil
}

// guidLayout swaps between RFC 4122 byte order and the GUID layout, where the
// first three groups are little-endian. The swap is its own inverse.
func guidLayout(u uuid.UUID) uuid.UUID {
	out := u
	out[0], out[1], out[2], out[3] = u[3], u[2], u[1], u[0]
	out[4], out[5] = u[5], u[4]
	out[6], out[7] = u[7], u[6]
	return out
}
