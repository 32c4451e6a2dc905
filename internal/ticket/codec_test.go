package ticket

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec("door-secret")
	triples := []Identity{
		{ReservationID: 1, ShowtimeID: 1, UserID: 1},
		{ReservationID: 5, ShowtimeID: 5, UserID: 7},
		{ReservationID: 18446744073709551615, ShowtimeID: 42, UserID: 900},
		{ReservationID: 0, ShowtimeID: 0, UserID: 0},
	}
	for _, want := range triples {
		token := c.Encode(want.ReservationID, want.ShowtimeID, want.UserID)
		got, err := c.Decode(token)
		require.NoError(t, err, "token %s", token)
		assert.Equal(t, want, got)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	c := NewCodec("door-secret")
	assert.Equal(t, c.Encode(5, 5, 7), c.Encode(5, 5, 7))
}

func TestTokenShape(t *testing.T) {
	c := NewCodec("door-secret")
	token := c.Encode(12, 34, 56)
	assert.True(t, strings.HasPrefix(token, "ReservationId:12;ShowtimeId:34;UserId:56;Sig:"))
}

func TestDecodeMalformed(t *testing.T) {
	c := NewCodec("door-secret")
	bad := []string{
		"",
		"garbage",
		"ReservationId:1;ShowtimeId:2",                            // wrong field count
		"ReservationId:1;ShowtimeId:2;UserId:3",                   // missing signature
		"ReservationId:x;ShowtimeId:2;UserId:3;Sig:aa",            // non-numeric id
		"ReservationId:1;ShowtimeId:2;UserId:3;Sig:",              // empty signature
		"BookingId:1;ShowtimeId:2;UserId:3;Sig:aa",                // wrong key
		"ReservationId:1;ShowtimeId:2;UserId:3;Sig:aa;Extra:true", // extra field
	}
	for _, token := range bad {
		_, err := c.Decode(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}
}

func TestDecodeTampered(t *testing.T) {
	c := NewCodec("door-secret")

	// Hand-built triplet with a plausible but wrong signature.
	forged := fmt.Sprintf("ReservationId:5;ShowtimeId:5;UserId:7;Sig:%s", strings.Repeat("ab", 32))
	_, err := c.Decode(forged)
	assert.ErrorIs(t, err, ErrTamperedToken)

	// Valid token with one identifier swapped after signing.
	token := c.Encode(5, 5, 7)
	tampered := strings.Replace(token, "ReservationId:5", "ReservationId:6", 1)
	_, err = c.Decode(tampered)
	assert.ErrorIs(t, err, ErrTamperedToken)

	// Token signed under a different secret.
	other := NewCodec("other-secret").Encode(5, 5, 7)
	_, err = c.Decode(other)
	assert.ErrorIs(t, err, ErrTamperedToken)
}

func TestQRPNG(t *testing.T) {
	c := NewCodec("door-secret")
	token := c.Encode(5, 5, 7)

	png, err := QRPNG(token, QRSizeStandard)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	uri, err := QRDataURI(token, QRSizeStandard)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
