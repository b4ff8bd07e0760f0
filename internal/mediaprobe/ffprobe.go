package mediaprobe

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// probeDuration shells out to ffprobe to determine a container's total
// duration in seconds. This is the "external media library" collaborator
// of §6 for the one fact dhowden/tag cannot supply. Any failure (ffprobe
// missing, unreadable file, ...) yields 0, matching the "never throws into
// the scanner" contract of §4.B.
func probeDuration(path string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		log.Debugf("ffprobe failed for '%s': %v", path, err)
		return 0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		return 0
	}
	return seconds
}

// decodeDimensions returns the pixel dimensions of an embedded picture
// without a full decode of the surrounding audio container.
func decodeDimensions(data []byte) (width, height int64, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return int64(cfg.Width), int64(cfg.Height), true
}
