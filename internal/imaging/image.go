// Package imaging turns client screenshot encodings into image bytes that are
// safe to send to a vision model.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder

	"maestroai/internal/domain"
)

const (
	DefaultMaxWidth  = 2048
	DefaultMaxHeight = 2048
	// DefaultMaxPixels caps width*height read from an image header before
	// any pixel buffer is allocated.
	DefaultMaxPixels = 50_000_000

	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeGIF  = "image/gif"
	MimeWebP = "image/webp"

	jpegQuality = 95
)

// Image is a prepared screenshot: bounded in size with a known MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Decode converts a client screen encoding into raw image bytes.
func Decode(screen domain.Screen) ([]byte, error) {
	if screen.IsByteArray() {
		return DecodeSignedBytes(screen.SignedBytes)
	}
	return DecodeBase64(screen.Encoded)
}

// DecodeBase64 decodes a Base64 image, stripping an optional
// "data:<mime>;base64," header and any embedded whitespace.
func DecodeBase64(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: data URI without payload", domain.ErrImageDecode)
		}
		s = s[idx+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Some clients drop the trailing padding.
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: invalid base64: %v", domain.ErrImageDecode, err)
		}
		data = raw
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}
	return data, nil
}

// DecodeSignedBytes maps a signed byte array (JVM byte[] semantics) onto raw
// bytes. Values in [-128,-1] wrap modulo 256; [0,255] pass through.
func DecodeSignedBytes(values []int) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < -128 || v > 255 {
			return nil, fmt.Errorf("%w: byte value %d at index %d out of range", domain.ErrImageDecode, v, i)
		}
		out[i] = byte((v + 256) % 256)
	}
	return out, nil
}

// Inspect reads the image header and rejects images whose pixel count
// exceeds maxPixels. A non-positive maxPixels means DefaultMaxPixels.
func Inspect(data []byte, maxPixels int) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: data is not a supported image format: %v", domain.ErrImageDecode, err)
	}
	if err := checkPixels(cfg, maxPixels); err != nil {
		return image.Config{}, "", err
	}
	return cfg, format, nil
}

// Validate reports whether data fully decodes as a supported image within
// DefaultMaxPixels.
func Validate(data []byte) bool {
	if _, _, err := Inspect(data, DefaultMaxPixels); err != nil {
		return false
	}
	_, _, err := image.Decode(bytes.NewReader(data))
	return err == nil
}

func checkPixels(cfg image.Config, maxPixels int) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", domain.ErrImageProcessing, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: image is %dx%d, exceeding the %d pixel limit",
			domain.ErrImageProcessing, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// MimeType sniffs the image format from content, defaulting to PNG.
func MimeType(data []byte) string {
	mt := mimetype.Detect(data)
	for _, candidate := range []string{MimePNG, MimeJPEG, MimeGIF, MimeWebP} {
		if mt.Is(candidate) {
			return candidate
		}
	}
	return MimePNG
}

// ResizeIfNeeded returns data unchanged when it fits within maxWidth x
// maxHeight. Otherwise it downscales preserving aspect ratio and re-encodes in
// the original format; formats without an encoder are written as PNG. Images
// above maxPixels are rejected before decoding.
func ResizeIfNeeded(data []byte, maxWidth, maxHeight, maxPixels int) ([]byte, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image header: %v", domain.ErrImageProcessing, err)
	}
	if err := checkPixels(cfg, maxPixels); err != nil {
		return nil, err
	}
	if cfg.Width <= maxWidth && cfg.Height <= maxHeight {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", domain.ErrImageProcessing, err)
	}

	width, height := fitWithin(cfg.Width, cfg.Height, maxWidth, maxHeight)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encoding resized image: %v", domain.ErrImageProcessing, err)
	}
	return buf.Bytes(), nil
}

// Prepare bounds the image and determines its MIME type.
func Prepare(data []byte, maxWidth, maxHeight, maxPixels int) (Image, error) {
	resized, err := ResizeIfNeeded(data, maxWidth, maxHeight, maxPixels)
	if err != nil {
		return Image{}, err
	}
	return Image{Data: resized, MIMEType: MimeType(resized)}, nil
}

// fitWithin scales width x height down uniformly so both sides fit the bounds.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := clamp(int(math.Round(float64(width)*scale)), 1, maxWidth)
	h := clamp(int(math.Round(float64(height)*scale)), 1, maxHeight)
	return w, h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
