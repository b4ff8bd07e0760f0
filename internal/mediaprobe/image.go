package mediaprobe

import (
	"image"
	"os"

	// registers decoders for bmp/tiff (and re-registers jpeg/png/gif),
	// so ProbeImageDimensions below can read those five formats. The
	// other extensions the image handler (§4.D) recognises (webp, tga,
	// ico, hdr, pbm, pam, ppm, pgm) have no decoder here and yield ok=false.
	_ "github.com/disintegration/imaging"
)

// ProbeImageDimensions returns the pixel dimensions of the standalone
// image file at path without a full decode (§4.D image handler, §6).
func ProbeImageDimensions(path string) (width, height int64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return int64(cfg.Width), int64(cfg.Height), true
}
