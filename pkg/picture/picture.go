// Package picture defines the image-processing capability the connector
// needs and a stdlib-backed default.
//
// Pixel work is deliberately behind an interface: the connector only
// cares that something can report dimensions, scale, crop and rotate.
// Hosting applications with better codecs plug in their own Editor.
package picture

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Editor is the image-processing capability consumed by the thumbnail
// manager and the dim/resize/crop/rotate commands. The ext parameter is
// the file extension including the dot (".jpg") and selects the codec on
// both decode and encode.
type Editor interface {
	// CanDecode reports whether the editor handles files with this
	// extension.
	CanDecode(ext string) bool

	// Dimensions returns the pixel width and height of the image in r.
	Dimensions(r io.Reader, ext string) (int, int, error)

	// Resize scales the image to exactly width x height.
	Resize(r io.Reader, ext string, width, height int) ([]byte, error)

	// Crop cuts the width x height rectangle at offset (x, y).
	Crop(r io.Reader, ext string, x, y, width, height int) ([]byte, error)

	// Rotate turns the image by degrees clockwise.
	Rotate(r io.Reader, ext string, degrees int) ([]byte, error)

	// Thumbnail scales the image down so its longer edge is size pixels,
	// preserving aspect ratio. Images already smaller pass through.
	Thumbnail(r io.Reader, ext string, size int) ([]byte, error)
}

// StdEditor implements Editor with the standard library codecs
// (jpeg, png, gif) and nearest-neighbor sampling.
type StdEditor struct{}

func NewStdEditor() *StdEditor { return &StdEditor{} }

func (e *StdEditor) CanDecode(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

func (e *StdEditor) Dimensions(r io.Reader, ext string) (int, int, error) {
	img, err := decode(r, ext)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (e *StdEditor) Resize(r io.Reader, ext string, width, height int) ([]byte, error) {
	img, err := decode(r, ext)
	if err != nil {
		return nil, err
	}
	return encode(scale(img, width, height), ext)
}

func (e *StdEditor) Crop(r io.Reader, ext string, x, y, width, height int) ([]byte, error) {
	img, err := decode(r, ext)
	if err != nil {
		return nil, err
	}

	src := img.Bounds()
	rect := image.Rect(src.Min.X+x, src.Min.Y+y, src.Min.X+x+width, src.Min.Y+y+height).Intersect(src)
	if rect.Empty() {
		return nil, fmt.Errorf("crop rectangle outside image bounds")
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for dy := 0; dy < rect.Dy(); dy++ {
		for dx := 0; dx < rect.Dx(); dx++ {
			out.Set(dx, dy, img.At(rect.Min.X+dx, rect.Min.Y+dy))
		}
	}
	return encode(out, ext)
}

func (e *StdEditor) Rotate(r io.Reader, ext string, degrees int) ([]byte, error) {
	img, err := decode(r, ext)
	if err != nil {
		return nil, err
	}

	// Snap to quarter turns; the client UI only produces those.
	turns := ((degrees%360+360)%360 + 45) / 90 % 4
	b := img.Bounds()
	var out *image.RGBA
	switch turns {
	case 0:
		out = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	case 1:
		out = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Set(b.Dy()-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	case 2:
		out = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Set(b.Dx()-1-x, b.Dy()-1-y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	case 3:
		out = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Set(y, b.Dx()-1-x, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return encode(out, ext)
}

func (e *StdEditor) Thumbnail(r io.Reader, ext string, size int) ([]byte, error) {
	img, err := decode(r, ext)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return encode(img, ext)
	}

	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return encode(scale(img, w, h), ext)
}

// scale resamples img to width x height with nearest-neighbor lookup.
func scale(img image.Image, width, height int) image.Image {
	src := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx := src.Min.X + x*src.Dx()/width
			sy := src.Min.Y + y*src.Dy()/height
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}

func decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".gif":
		return gif.Decode(r)
	}
	return nil, fmt.Errorf("unsupported image extension %q", ext)
}

func encode(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case ".png":
		err = png.Encode(&buf, img)
	case ".gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = fmt.Errorf("unsupported image extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
