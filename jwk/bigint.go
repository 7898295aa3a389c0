package jwk

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cursive-id/browserid/internal/codec"
)

// encodeBigInt renders n as base64url for modern keys, or as a
// decimal string when legacy is true, matching the document it will
// be embedded in.
func encodeBigInt(n *big.Int, legacy bool) string {
	if legacy {
		return n.String()
	}
	return codec.Encode(n.Bytes())
}

// decodeBigInt parses s as a legacy decimal or hex string when legacy
// is true (matching documents stamped with a "version" field by the
// original libbrowserid IdP), or as base64url otherwise per RFC 7518.
// Legacy inputs auto-detect their base: an all-digit string is
// decimal, anything else (containing a-f/A-F) is hex.
func decodeBigInt(s string, legacy bool) (*big.Int, error) {
	if legacy {
		base := 10
		if strings.ContainsAny(s, "abcdefABCDEF") {
			base = 16
		}
		n, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("invalid legacy integer: %s", s)
		}
		return n, nil
	}

	b, err := codec.Decode(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
