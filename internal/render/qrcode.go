package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

var errEmptyPayload = errors.New("qr payload is empty")

// QRCodeImage returns a QR code for payload, used to hand a posting link to a phone.
func QRCodeImage(payload string, sizePx int) (image.Image, error) {
	q, err := newQRCode(payload)
	if err != nil {
		return nil, err
	}
	return q.Image(qrSize(sizePx)), nil
}

// QRCodePNG is QRCodeImage encoded as PNG.
func QRCodePNG(payload string, sizePx int) ([]byte, error) {
	q, err := newQRCode(payload)
	if err != nil {
		return nil, err
	}
	return q.PNG(qrSize(sizePx))
}

func newQRCode(payload string) (*qrcode.QRCode, error) {
	if payload == "" {
		return nil, errEmptyPayload
	}
	return qrcode.New(payload, qrcode.Medium)
}

func qrSize(sizePx int) int {
	if sizePx <= 0 {
		return defaultQRCodeSizePx
	}
	return sizePx
}
