// Package media prepares images picked in an edit dialog: raster uploads
// are downscaled before they are sent to the backend, and every selection
// gets a small inline preview.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	previewWidth  = 320
	jpegQuality   = 82

	// MaxUploadSize bounds a single selected file.
	MaxUploadSize = 10 << 20
)

// ErrTooLarge is returned for files over MaxUploadSize.
var ErrTooLarge = errors.New("media: file too large (max 10MB)")

// Upload is a file selected for an entity's image field.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Process reads a selected file. JPEG, PNG and GIF images wider than the
// limit are scaled down and re-encoded as JPEG; anything else (SVG icons
// in particular) passes through untouched.
func Process(src io.Reader, originalName string) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("media: read %s: %w", originalName, err)
	}
	if len(data) > MaxUploadSize {
		return Upload{}, ErrTooLarge
	}
	u := Upload{
		Filename:    cleanFilename(originalName),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if strings.EqualFold(filepath.Ext(u.Filename), ".svg") {
		u.ContentType = "image/svg+xml"
		return u, nil
	}
	if !isRaster(u.ContentType) {
		return u, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Upload{}, fmt.Errorf("media: decode %s: %w", originalName, err)
	}
	bounds := img.Bounds()
	u.Width, u.Height = bounds.Dx(), bounds.Dy()
	if u.Width <= maxImageWidth {
		return u, nil
	}

	newH := max(u.Height*maxImageWidth/u.Width, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Upload{}, fmt.Errorf("media: encode %s: %w", originalName, err)
	}
	u.Data = buf.Bytes()
	u.ContentType = "image/jpeg"
	u.Width, u.Height = maxImageWidth, newH
	u.Filename = strings.TrimSuffix(u.Filename, filepath.Ext(u.Filename)) + ".jpg"
	return u, nil
}

// Preview returns a data URL for showing u before it is saved. Raster
// images are shrunk to a thumbnail; SVGs are inlined as-is.
func Preview(u Upload) (string, error) {
	if u.ContentType == "image/svg+xml" {
		return dataURL(u.ContentType, u.Data), nil
	}
	if !isRaster(u.ContentType) {
		return "", fmt.Errorf("media: %s is not an image", u.Filename)
	}
	img, err := imaging.Decode(bytes.NewReader(u.Data))
	if err != nil {
		return "", fmt.Errorf("media: preview %s: %w", u.Filename, err)
	}
	if img.Bounds().Dx() > previewWidth {
		img = imaging.Resize(img, previewWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return "", fmt.Errorf("media: preview %s: %w", u.Filename, err)
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func isRaster(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// cleanFilename keeps the base name and drops characters the backend's
// upload handler rejects.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "upload"
	}
	return b.String()
}

// DataURL encodes the whole of u as a data URL, letting a selected file
// ride along in a hidden form field until the dialog is saved.
func DataURL(u Upload) string {
	return dataURL(u.ContentType, u.Data)
}

// FromDataURL decodes a data URL written by DataURL back into an Upload.
func FromDataURL(filename, s string) (Upload, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Upload{}, fmt.Errorf("media: %s is not a data URL", filename)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Upload{}, fmt.Errorf("media: %s is not a base64 data URL", filename)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxUploadSize+3 {
		return Upload{}, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Upload{}, fmt.Errorf("media: decode %s: %w", filename, err)
	}
	if len(data) > MaxUploadSize {
		return Upload{}, ErrTooLarge
	}
	return Upload{
		Filename:    cleanFilename(filename),
		ContentType: strings.TrimSuffix(meta, ";base64"),
		Data:        data,
	}, nil
}
