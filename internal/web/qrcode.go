package web

import (
	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQRCodePNG encodes content as a size x size PNG.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
