package broker

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of generated QR codes.
const QRSize = 256

// RenderQR encodes content as a PNG QR code.
func RenderQR(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	return png, nil
}
