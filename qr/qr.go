// Package qr renders payment strings as QR codes for display in the shell.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of generated images.
const DefaultSize = 256

const dataURLPrefix = "data:image/png;base64,"

// PNG encodes s as a QR code PNG of the given size.
func PNG(s string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(s, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// DataURL returns s encoded as a QR code PNG data URL, ready to be used as
// an image source. An empty input yields an empty URL.
func DataURL(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	png, err := PNG(s, DefaultSize)
	if err != nil {
		return "", err
	}
	if len(png) == 0 {
		return "", nil
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
