package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Bracket is an inclusive level range sent with /who.
type Bracket struct {
	Min int
	Max int
}

// String renders the bracket as "min-max", the form /who expects.
func (b Bracket) String() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// IsZero reports whether the bracket was never set.
func (b Bracket) IsZero() bool {
	return b.Min == 0 && b.Max == 0
}

// ParseRange validates the range input: a whole number in
// [config.MinLevel, config.MaxLevel]. Surrounding spaces are ignored.
func ParseRange(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrRangeNotNumber, text)
	}
	if n < config.MinLevel || n > config.MaxLevel {
		return 0, fmt.Errorf("%w: %d", ErrRangeBounds, n)
	}
	return n, nil
}

// FirstBracket is the opening bracket for a range width: 1..width.
func FirstBracket(width int) Bracket {
	return Bracket{Min: config.MinLevel, Max: min(config.MinLevel+width-1, config.MaxLevel)}
}

// Next returns the bracket following b for the given width, capped at the
// maximum level. After the last bracket it wraps to FirstBracket.
func (b Bracket) Next(width int) Bracket {
	if b.Max >= config.MaxLevel || width <= 0 {
		return FirstBracket(width)
	}
	start := b.Max + 1
	return Bracket{Min: start, Max: min(start+width-1, config.MaxLevel)}
}

// ParseBracket reads the "min-max" form produced by String.
func ParseBracket(s string) (Bracket, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Bracket{}, fmt.Errorf("%w: %q", ErrRangeNotNumber, s)
	}
	minLvl, err := ParseRange(lo)
	if err != nil {
		return Bracket{}, err
	}
	maxLvl, err := ParseRange(hi)
	if err != nil {
		return Bracket{}, err
	}
	if minLvl > maxLvl {
		return Bracket{}, fmt.Errorf("%w: %q", ErrRangeBounds, s)
	}
	return Bracket{Min: minLvl, Max: maxLvl}, nil
}
