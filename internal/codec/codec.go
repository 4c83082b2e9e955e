// Package codec decodes, crops, scales and encodes JPEG and PNG images.
package codec

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"photosort/internal/cropmap"
	"photosort/pkg/imgutil"
)

// DefaultJPEGQuality is used when re-encoding cropped JPEG files.
const DefaultJPEGQuality = 95

// Codec is the image decode/encode collaborator used by the triage engine.
type Codec interface {
	DecodeConfig(r io.Reader) (image.Config, error)
	Decode(r io.Reader) (image.Image, error)
	Encode(w io.Writer, img image.Image, kind imgutil.Kind) error
}

// Standard encodes through the standard library JPEG and PNG encoders.
type Standard struct {
	JPEGQuality int
}

func (Standard) DecodeConfig(r io.Reader) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(r)
	return cfg, err
}

func (Standard) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

// Encode writes img as kind. KindUnknown falls back to PNG so no pixel data
// is lost.
func (s Standard) Encode(w io.Writer, img image.Image, kind imgutil.Kind) error {
	switch kind {
	case imgutil.KindJPEG:
		quality := s.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case imgutil.KindPNG, imgutil.KindUnknown:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("encode: unsupported kind %v", kind)
	}
}

// Crop copies the region r of img into a new image anchored at the origin.
func Crop(img image.Image, r cropmap.Rect) image.Image {
	b := img.Bounds()
	src := image.Rect(b.Min.X+r.X, b.Min.Y+r.Y, b.Min.X+r.X+r.Width, b.Min.Y+r.Y+r.Height).Intersect(b)
	dst := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, src.Min, xdraw.Src)
	return dst
}

// Scale resamples img to width x height for on-screen previews.
func Scale(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
