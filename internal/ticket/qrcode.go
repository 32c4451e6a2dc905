package ticket

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Standard QR sizes in pixels.  300 is the mobile/email default; 500
// is large enough for print.
const (
	QRSizeStandard = 300
	QRSizeLarge    = 500
)

// QRPNG renders a ticket token as a PNG QR code.  Medium error
// correction (15% recovery) matches what standard scanner apps expect.
func QRPNG(token string, size int) ([]byte, error) {
	qr, err := qrcode.New(token, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}

// QRDataURI renders a ticket token as a data URI suitable for direct
// embedding in an <img> tag.
func QRDataURI(token string, size int) (string, error) {
	png, err := QRPNG(token, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
