package qr

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// BuildLoginURL returns the provisioning URL encoded in a tablet's QR code.
// It carries the tablet account identifier only; the password is typed on the
// device.
func BuildLoginURL(baseURL, identifier string) string {
	return fmt.Sprintf("%s/login?identifier=%s", baseURL, url.QueryEscape(identifier))
}

// PNG renders content as a QR code PNG of the given pixel size.
func PNG(content string, size int) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, code.Image(size)); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
