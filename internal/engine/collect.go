package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Collector captures the who-list across several scroll positions and merges
// the pages. Pages overlap; duplicates collapse on exact string equality only,
// so an OCR misread that differs between pages yields two names.
type Collector struct {
	Capture      *RegionCapture
	Extractor    *TextExtractor
	Input        InputDriver
	Sleeper      Sleeper
	Rand         *rand.Rand
	Settle       time.Duration
	ScrollClicks int
}

// CollectNames reads the names region once, then scrolls steps times, reading
// it again after each scroll. A page whose capture or extraction fails counts
// as empty. Only context cancellation returns an error, together with the
// names gathered so far.
func (c *Collector) CollectNames(ctx context.Context, names, scroll Rect, steps int) (NameSet, error) {
	acc := NewNameSet()
	acc.Add(c.page(names, 0)...)

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return acc, err
		}

		// Jitter the pointer inside the scrollbar before each scroll.
		x, y := scroll.RandomPoint(c.Rand)
		c.Input.MoveMouse(x, y)
		c.Input.ScrollDown(c.ScrollClicks)

		if err := c.Sleeper.Sleep(ctx, c.Settle); err != nil {
			return acc, err
		}
		acc.Add(c.page(names, i)...)
	}

	slog.Info(config.MsgCollectDone,
		config.LogKeyComponent, config.CompCollect,
		config.LogKeyCount, len(acc))
	return acc, nil
}

func (c *Collector) page(r Rect, page int) []string {
	log := slog.With(
		config.LogKeyComponent, config.CompCollect,
		config.LogKeyPage, page,
	)

	img, err := c.Capture.Capture(r)
	if err != nil {
		log.Error(config.MsgPageEmpty, config.LogKeyError, err)
		return nil
	}

	names, err := c.Extractor.Extract(img)
	if err != nil {
		log.Error(config.MsgPageEmpty, config.LogKeyError, err)
		return nil
	}

	log.Info(config.MsgPageNames, config.LogKeyNames, names)
	return names
}
