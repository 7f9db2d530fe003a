package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Load images, re-encode them at a requested quality
type ImageProcessor struct {
	img image.Image
}

func (i *ImageProcessor) LoadPNG(r io.Reader) error {
	img, err := png.Decode(r)
	i.img = img
	return err
}

func (i *ImageProcessor) LoadJPEG(r io.Reader) error {
	img, err := jpeg.Decode(r)
	i.img = img

	return err
}

// Load decodes by file extension.
func (i *ImageProcessor) Load(ext string, r io.Reader) error {
	switch ext {
	case ".png":
		return i.LoadPNG(r)
	case ".jpg", ".jpeg":
		return i.LoadJPEG(r)
	default:
		return fmt.Errorf("unsupported image extension: %s", ext)
	}
}

// EncodeJPEG re-encodes the loaded image as JPEG at the given quality (1-100).
func (i *ImageProcessor) EncodeJPEG(quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := imaging.Encode(buf, i.img, imaging.JPEG, imaging.JPEGQuality(quality))
	return buf.Bytes(), err
}
