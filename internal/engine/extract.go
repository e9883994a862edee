package engine

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// TextExtractor turns a capture into candidate name lines.
type TextExtractor struct {
	OCR           OCREngine
	Allowlist     string  // Empty keeps every rune.
	MinConfidence float64 // 0-100
	MinContrast   float64 // 0-1, luminance spread inside the line's box.
}

// Extract runs OCR over img and returns normalized, non-empty lines in the
// engine's order. Callers should treat the result as unordered.
func (e *TextExtractor) Extract(img image.Image) ([]string, error) {
	lines, err := e.OCR.Recognize(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var out []string
	for _, ln := range lines {
		if ln.Confidence < e.MinConfidence {
			continue
		}
		if e.MinContrast > 0 && !ln.Box.Empty() && Contrast(img, ln.Box) < e.MinContrast {
			continue
		}
		if name := NormalizeName(ln.Text, e.Allowlist); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// NormalizeName drops runes outside allowlist and trims surrounding spaces.
func NormalizeName(raw, allowlist string) string {
	if allowlist == "" {
		return strings.TrimSpace(raw)
	}
	filtered := strings.Map(func(r rune) rune {
		if strings.ContainsRune(allowlist, r) {
			return r
		}
		return -1
	}, raw)
	return strings.TrimSpace(filtered)
}

// Contrast returns the luminance spread (max - min, scaled to 0-1) of img
// inside box. A box outside the image has no contrast.
func Contrast(img image.Image, box image.Rectangle) float64 {
	area := box.Intersect(img.Bounds())
	if area.Empty() {
		return 0
	}

	lo, hi := uint8(255), uint8(0)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			lo = min(lo, g)
			hi = max(hi, g)
		}
	}
	return float64(hi-lo) / 255
}
