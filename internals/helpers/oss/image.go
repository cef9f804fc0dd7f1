// internals/helpers/oss/image.go
package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type WebPOptions struct {
	MaxW     int
	MaxH     int
	Quality  float32
	Lossless bool
}

// Logos keep their aspect ratio; 512 is enough for the check-in page header.
var LogoWebPOptions = WebPOptions{MaxW: 512, MaxH: 512, Quality: 82}

/* =======================================================================
   Decode (jpeg/png/webp) with MIME sniffing, extension as fallback
======================================================================= */

func DecodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	r := bytes.NewReader(all)
	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(r)
	case strings.Contains(ct, "png"):
		return png.Decode(r)
	case strings.Contains(ct, "webp"):
		return webp.Decode(r)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".webp":
		return webp.Decode(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
}

// DownscaleIfNeeded keeps aspect ratio, CatmullRom.
func DownscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func EncodeWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: opt.Lossless, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SquareIcon center-crops to size x size (favicon / kiosk header icon).
func SquareIcon(img image.Image, size int) image.Image {
	if size <= 0 {
		size = 192
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// ConvertLogo returns the resized logo and its square icon, both webp.
func ConvertLogo(all []byte, filename string, iconSize int) (logo []byte, icon []byte, err error) {
	img, err := DecodeImage(all, filename)
	if err != nil {
		return nil, nil, err
	}
	logo, err = EncodeWebP(DownscaleIfNeeded(img, LogoWebPOptions.MaxW, LogoWebPOptions.MaxH), LogoWebPOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode logo: %w", err)
	}
	icon, err = EncodeWebP(SquareIcon(img, iconSize), WebPOptions{Quality: 85})
	if err != nil {
		return nil, nil, fmt.Errorf("encode icon: %w", err)
	}
	return logo, icon, nil
}
