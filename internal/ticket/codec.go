// Package ticket encodes a reservation identity into the opaque token
// printed on a ticket and parses it back at the theater door.  The
// textual form is four semicolon-separated Key:Value fields:
//
//	ReservationId:R;ShowtimeId:S;UserId:U;Sig:<hex>
//
// Sig is an HMAC-SHA256 over the first three fields so a forged token
// is rejected before any database lookup.  The codec is stateless and
// knows nothing about whether the referenced reservation exists; that
// check belongs to the validator.
package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned when a token does not have the
// expected field count, field names or numeric identifiers.
var ErrMalformedToken = errors.New("malformed ticket token")

// ErrTamperedToken is returned when a token parses but its signature
// does not match the identifier triplet.
var ErrTamperedToken = errors.New("tampered ticket token")

// Identity is the decoded content of a ticket token.
type Identity struct {
	ReservationID uint64
	ShowtimeID    uint64
	UserID        uint64
}

// Codec signs and verifies ticket tokens with a shared secret.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec signing with the given secret.  The secret
// must not be empty; an empty secret would make every forged token
// verify.
func NewCodec(secret string) *Codec {
	if secret == "" {
		panic("empty ticket secret passed to NewCodec")
	}
	return &Codec{secret: []byte(secret)}
}

// Encode serializes the identity triplet and appends its signature.
// Encoding is deterministic: the same triplet always yields the same
// token.
func (c *Codec) Encode(reservationID, showtimeID, userID uint64) string {
	payload := fmt.Sprintf("ReservationId:%d;ShowtimeId:%d;UserId:%d", reservationID, showtimeID, userID)
	return payload + ";Sig:" + c.sign(payload)
}

// Decode parses a token back into its identity triplet.  It returns
// ErrMalformedToken for shape errors (wrong field count, wrong keys,
// non-numeric ids) and ErrTamperedToken when the shape is valid but
// the signature does not verify.  The two cases are distinct so door
// operators can tell a scanning glitch from a forgery.
func (c *Codec) Decode(token string) (Identity, error) {
	parts := strings.Split(token, ";")
	if len(parts) != 4 {
		return Identity{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedToken, len(parts))
	}
	reservationID, err := parseField(parts[0], "ReservationId")
	if err != nil {
		return Identity{}, err
	}
	showtimeID, err := parseField(parts[1], "ShowtimeId")
	if err != nil {
		return Identity{}, err
	}
	userID, err := parseField(parts[2], "UserId")
	if err != nil {
		return Identity{}, err
	}
	sig, ok := strings.CutPrefix(parts[3], "Sig:")
	if !ok || sig == "" {
		return Identity{}, fmt.Errorf("%w: missing signature field", ErrMalformedToken)
	}
	payload := strings.Join(parts[:3], ";")
	if !hmac.Equal([]byte(sig), []byte(c.sign(payload))) {
		return Identity{}, ErrTamperedToken
	}
	return Identity{ReservationID: reservationID, ShowtimeID: showtimeID, UserID: userID}, nil
}

// sign returns the hex HMAC-SHA256 of the payload under the codec secret.
func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseField splits a "Key:Value" field, checks the key matches and
// parses the value as an unsigned decimal identifier.
func parseField(field, key string) (uint64, error) {
	val, ok := strings.CutPrefix(field, key+":")
	if !ok {
		return 0, fmt.Errorf("%w: expected field %s", ErrMalformedToken, key)
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrMalformedToken, key)
	}
	return id, nil
}
