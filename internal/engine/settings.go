package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"time"

	"github.com/tartampluch/guild-recruiter/internal/config"
	"gopkg.in/yaml.v3"
)

// Rect is a hand-calibrated screen rectangle in absolute pixels. It is not
// derived from the game window's geometry: the client is assumed to sit at a
// fixed position on screen.
type Rect struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
}

// Bounds converts the rectangle to image coordinates.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// RandomPoint picks a point inside the rectangle, edges included.
func (r Rect) RandomPoint(rng *rand.Rand) (int, int) {
	x := r.Left + rng.IntN(r.Right-r.Left+1)
	y := r.Top + rng.IntN(r.Bottom-r.Top+1)
	return x, y
}

// Regions maps a region name (config.Region*) to its rectangle.
type Regions map[string]Rect

// Span is a randomized delay window. Both ends are inclusive.
type Span struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Pick returns a uniformly distributed duration within the span.
func (s Span) Pick(rng *rand.Rand) time.Duration {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + time.Duration(rng.Int64N(int64(s.Max-s.Min)+1))
}

// Delays groups every pause the automation inserts.
type Delays struct {
	Activate       time.Duration `yaml:"activate"`
	Settle         time.Duration `yaml:"settle"`
	TypeChar       time.Duration `yaml:"type_char"`
	InviteOpen     Span          `yaml:"invite_open"`
	InviteSubmit   time.Duration `yaml:"invite_submit"`
	BetweenInvites Span          `yaml:"between_invites"`
	WhoClick       Span          `yaml:"who_click"`
	WhoType        Span          `yaml:"who_type"`
	WhoResults     Span          `yaml:"who_results"`
}

// Settings is the explicit configuration handed to every component.
type Settings struct {
	WindowTitle   string        `yaml:"window_title"`
	Regions       Regions       `yaml:"regions"`
	ScrollSteps   int           `yaml:"scroll_steps"`
	ScrollClicks  int           `yaml:"scroll_clicks"`
	Upscale       int           `yaml:"upscale"`
	Allowlist     string        `yaml:"allowlist"`
	Languages     []string      `yaml:"languages"`
	MinConfidence float64       `yaml:"min_confidence"`
	MinContrast   float64       `yaml:"min_contrast"`
	WhoCooldown   time.Duration `yaml:"who_cooldown"`
	Delays        Delays        `yaml:"delays"`
}

// DefaultSettings returns the calibrated defaults.
func DefaultSettings() Settings {
	regions := make(Regions)
	for name, r := range config.DefaultRegions() {
		regions[name] = Rect{Left: r[0], Top: r[1], Right: r[2], Bottom: r[3]}
	}

	return Settings{
		WindowTitle:   config.DefaultWindowTitle,
		Regions:       regions,
		ScrollSteps:   config.DefaultScrollSteps,
		ScrollClicks:  config.DefaultScrollClicks,
		Upscale:       config.DefaultUpscale,
		Allowlist:     config.Allowlist,
		Languages:     append([]string(nil), config.OCRLanguages...),
		MinConfidence: config.MinConfidence,
		MinContrast:   config.MinContrast,
		WhoCooldown:   config.WhoCooldown,
		Delays: Delays{
			Activate:       config.ActivateSettle,
			Settle:         config.ScrollSettle,
			TypeChar:       config.TypeCharDelay,
			InviteOpen:     Span{config.InviteOpenMin, config.InviteOpenMax},
			InviteSubmit:   config.InviteSubmitWait,
			BetweenInvites: Span{config.BetweenInviteMin, config.BetweenInviteMax},
			WhoClick:       Span{config.WhoClickMin, config.WhoClickMax},
			WhoType:        Span{config.WhoTypeMin, config.WhoTypeMax},
			WhoResults:     Span{config.WhoResultsMin, config.WhoResultsMax},
		},
	}
}

// Region returns a named rectangle or ErrRegionMissing.
func (s Settings) Region(name string) (Rect, error) {
	r, ok := s.Regions[name]
	if !ok {
		return Rect{}, fmt.Errorf("%w: %q", ErrRegionMissing, name)
	}
	return r, nil
}

// Validate checks the regions the recruitment cycle depends on.
func (s Settings) Validate() error {
	for _, name := range []string{config.RegionNames, config.RegionScroll, config.RegionTextEntry} {
		r, err := s.Region(name)
		if err != nil {
			return err
		}
		if r.Right <= r.Left || r.Bottom <= r.Top {
			return fmt.Errorf("%w: %q is empty", ErrRegionMissing, name)
		}
	}
	return nil
}

// LoadCalibration overlays the YAML file at path onto base. Keys absent from
// the file keep their base value; listed regions replace or extend the base
// regions. A missing file returns base unchanged.
func LoadCalibration(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return base, fmt.Errorf("%s: %w", config.ErrCalibration, err)
	}

	out := base
	out.Regions = maps.Clone(base.Regions)
	out.Languages = append([]string(nil), base.Languages...)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("%s: %w", config.ErrCalibration, err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("%s: %w", config.ErrCalibration, err)
	}

	slog.Info(config.MsgCalibration,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFile, path)
	return out, nil
}
