package engine

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/nfnt/resize"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/vcaesar/imgo"
)

// CaptureDumper receives every upscaled capture, e.g. to keep it on disk for
// calibration.
type CaptureDumper interface {
	Dump(img image.Image)
}

// RegionCapture grabs a fixed rectangle of the screen and upscales it for OCR.
type RegionCapture struct {
	Screen  ScreenGrabber
	Upscale int           // 1 or less disables resampling.
	Dumper  CaptureDumper // Optional.
}

// Capture returns the pixels inside r, enlarged by the upscale factor with a
// Lanczos-3 filter.
func (c *RegionCapture) Capture(r Rect) (image.Image, error) {
	img, err := c.Screen.Grab(r.Bounds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	if c.Upscale > 1 {
		b := img.Bounds()
		img = resize.Resize(uint(b.Dx()*c.Upscale), uint(b.Dy()*c.Upscale), img, resize.Lanczos3)
	}

	if c.Dumper != nil {
		c.Dumper.Dump(img)
	}
	return img, nil
}

// DirDumper writes numbered PNG files into Dir.
type DirDumper struct {
	Dir string
	seq atomic.Int64
}

// Dump saves img as capture-NNNN.png. Failures are logged, never returned.
func (d *DirDumper) Dump(img image.Image) {
	path := filepath.Join(d.Dir, fmt.Sprintf("capture-%04d.png", d.seq.Add(1)))
	if err := imgo.Save(path, img); err != nil {
		slog.Warn(config.ErrDebugDump,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyFile, path,
			config.LogKeyError, err)
		return
	}
	slog.Debug(config.MsgDebugSaved,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFile, path)
}
