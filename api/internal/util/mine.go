package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SniffImageMIME recognizes the image formats the providers accept by their
// magic bytes and falls back to http.DetectContentType.
func SniffImageMIME(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	// GIF87a / GIF89a
	if len(b) >= 6 && string(b[:4]) == "GIF8" {
		return "image/gif"
	}
	// RIFF....WEBP
	if len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP" {
		return "image/webp"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

func IsImageMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), "image/")
}

// ErrInlineImage reports an image field that is neither base64 nor a
// base64 data: URL.
var ErrInlineImage = errors.New("image is not valid base64")

// InlineImage is an image sent as text in a JSON body.
type InlineImage struct {
	Data []byte
	// MIMEType is the type declared by a data: URL, if any.
	MIMEType string
}

// DecodeInlineImage accepts plain base64 in the standard or URL alphabet,
// padded or not, or a data:<mime>;base64,<payload> URL.
func DecodeInlineImage(s string) (InlineImage, error) {
	var img InlineImage
	payload := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return img, fmt.Errorf("%w: data URL has no payload", ErrInlineImage)
		}
		mime, params, _ := strings.Cut(meta, ";")
		if params != "base64" {
			return img, fmt.Errorf("%w: data URL is not base64 encoded", ErrInlineImage)
		}
		img.MIMEType = strings.TrimSpace(mime)
		payload = data
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(payload); err == nil {
			img.Data = b
			return img, nil
		}
	}
	return img, ErrInlineImage
}

// PickMIME prefers the explicit type, then the data: URI hint, then sniffs the bytes.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" && exp != "application/octet-stream" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		return SniffImageMIME(data)
	}
	return "image/jpeg"
}
