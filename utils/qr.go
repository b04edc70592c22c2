package utils

import (
	"encoding/base64"
	"fmt"

	"github.com/gosimple/slug"
	qrcode "github.com/skip2/go-qrcode"
)

// QR image rendering matches the original printables: highest error
// correction so codes survive print wear, 512px square.
const qrImageSize = 512

// EncodeQRPNG renders the signed token as a QR PNG.
func EncodeQRPNG(signedToken string) ([]byte, error) {
	png, err := qrcode.Encode(signedToken, qrcode.Highest, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR image: %w", err)
	}
	return png, nil
}

// QRDataURL wraps a PNG as an inline data URL for direct client display.
func QRDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// QRObjectKey builds the R2 object key for a credential's printable image.
func QRObjectKey(code string) string {
	return fmt.Sprintf("qr/%s.png", slug.Make(code))
}
