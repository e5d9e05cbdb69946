// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging checks uploaded images before they reach object storage.
// Only the header is decoded, so an oversized image is rejected without
// allocating its pixels.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxPixels caps width*height. 10000x10000 is about 400 MB decoded in RGBA.
const MaxPixels = 100_000_000

var (
	// ErrNotImage is returned when the data is not a supported image.
	ErrNotImage = errors.New("not a supported image")
	// ErrTooLarge is returned when the image exceeds MaxPixels.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Info describes an accepted image.
type Info struct {
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// formatTypes maps decoder names to the MIME type stored with the object.
var formatTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Inspect sniffs and decodes the image header. The sniffed content type
// must agree with the decoded format.
func Inspect(data []byte) (Info, error) {
	sniffed := http.DetectContentType(data)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	ct, ok := formatTypes[format]
	if !ok || ct != sniffed {
		return Info{}, fmt.Errorf("%w: %s", ErrNotImage, sniffed)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("%w: empty dimensions", ErrNotImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return Info{ContentType: ct, Width: cfg.Width, Height: cfg.Height}, nil
}
