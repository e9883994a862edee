// Package ocr adapts Tesseract (through gosseract) to engine.OCREngine.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/engine"
)

var _ engine.OCREngine = (*Tesseract)(nil)

// Tesseract wraps one gosseract client. The client is not safe for
// concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract configures a client for the given languages (e.g. "eng",
// "fra") and character whitelist. Each line of the who-list is one text
// line, so the page is segmented as a single column.
func NewTesseract(languages []string, whitelist string) (*Tesseract, error) {
	c := gosseract.NewClient()

	if err := c.SetLanguage(languages...); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrOCRInit, err)
	}
	if whitelist != "" {
		if err := c.SetWhitelist(whitelist); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("%s: %w", config.ErrOCRInit, err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrOCRInit, err)
	}
	return &Tesseract{client: c}, nil
}

// Recognize returns one TextLine per line Tesseract detects, with its box
// in img coordinates and its confidence.
func (t *Tesseract) Recognize(img image.Image) ([]engine.TextLine, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, err
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, err
	}

	lines := make([]engine.TextLine, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, engine.TextLine{
			Text:       strings.TrimSpace(b.Word),
			Box:        b.Box,
			Confidence: b.Confidence,
		})
	}
	return lines, nil
}

// Close releases the Tesseract handle.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
