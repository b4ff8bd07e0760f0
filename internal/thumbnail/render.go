package thumbnail

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const jpegQuality = 70

// Render decodes the image file at path, resizes it to fit within a
// size x size bounding box (0 means "return the original") and encodes
// the result as JPEG at quality 70 (§4.F, §6, §8 boundary case: size 0
// or size >= max(width, height) returns the original).
func Render(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open image '%s'", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode image '%s'", path)
	}

	return render(img, size)
}

// RenderBytes is Render's from-memory counterpart, for embedded images
// read out of an audio container rather than decoded from a standalone
// file (§6 external-library contract: "decode from memory (JPEG)").
func RenderBytes(data []byte, size int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode embedded image")
	}

	return render(img, size)
}

func render(img image.Image, size int) ([]byte, error) {
	bounds := img.Bounds()
	if size <= 0 || size >= bounds.Dx() && size >= bounds.Dy() {
		return encodeJPEG(img)
	}

	resized := imaging.Fit(img, size, size, imaging.Lanczos)
	return encodeJPEG(resized)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "cannot encode JPEG")
	}
	return buf.Bytes(), nil
}
