package engine_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/guild-recruiter/internal/engine"
)

var (
	namesRect  = engine.Rect{Left: 100, Top: 200, Right: 300, Bottom: 400}
	scrollRect = engine.Rect{Left: 310, Top: 200, Right: 320, Bottom: 400}
)

func newCollector(ocr engine.OCREngine, screen engine.ScreenGrabber, in *RecordingInput, sl *FakeSleeper) *engine.Collector {
	return &engine.Collector{
		Capture:      &engine.RegionCapture{Screen: screen, Upscale: 1},
		Extractor:    &engine.TextExtractor{OCR: ocr, Allowlist: "ABCDEFGHIJKLMNOPQRSTUVWXYZÉ ", MinConfidence: 70},
		Input:        in,
		Sleeper:      sl,
		Rand:         seededRand(),
		Settle:       testDelays().Settle,
		ScrollClicks: 20,
	}
}

func TestNameSet_UnionIsCommutativeAndIdempotent(t *testing.T) {
	a := engine.NewNameSet("ANN", "BEN")
	b := engine.NewNameSet("BEN", "CAL")

	assert.Equal(t, a.Union(b), b.Union(a))
	assert.Equal(t, a, a.Union(a))
	assert.Equal(t, []string{"ANN", "BEN", "CAL"}, a.Union(b).Sorted())
}

func TestSortNames_IgnoresAccentsAndCase(t *testing.T) {
	names := []string{"ZED", "ÉLODIE", "ADA", "ELLA"}
	engine.SortNames(names)
	assert.Equal(t, []string{"ADA", "ELLA", "ÉLODIE", "ZED"}, names)
}

func TestCollectNames_UnionsOverlappingPages(t *testing.T) {
	ocr := &PagedOCR{Pages: [][]engine.TextLine{
		lines("ANN", "BEN"),
		lines("BEN", "CAL"),
		lines("CAL", "DAX"),
	}}
	in := &RecordingInput{}
	sl := &FakeSleeper{}
	c := newCollector(ocr, &MockScreen{}, in, sl)

	got, err := c.CollectNames(context.Background(), namesRect, scrollRect, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"ANN", "BEN", "CAL", "DAX"}, got.Sorted())
	assert.Equal(t, 2, in.Count("scroll"))
	assert.Equal(t, 2, in.Count("move"))
	assert.Len(t, sl.Slept, 2)

	for _, e := range in.Events {
		if e.Kind == "move" {
			assert.True(t, image.Pt(e.X, e.Y).In(image.Rect(310, 200, 321, 401)), "pointer must stay inside the scroll region")
		}
		if e.Kind == "scroll" {
			assert.Equal(t, 20, e.X)
		}
	}
}

func TestCollectNames_PageOrderDoesNotMatter(t *testing.T) {
	pageA, pageB := lines("ANN", "BEN"), lines("BEN", "CAL")

	run := func(pages ...[]engine.TextLine) engine.NameSet {
		c := newCollector(&PagedOCR{Pages: pages}, &MockScreen{}, &RecordingInput{}, &FakeSleeper{})
		got, err := c.CollectNames(context.Background(), namesRect, scrollRect, 1)
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, run(pageA, pageB), run(pageB, pageA))
	assert.Equal(t, engine.NewNameSet("ANN", "BEN"), run(pageA, pageA))
}

func TestCollectNames_OCRVariantsAreDistinct(t *testing.T) {
	// A misread accent is not merged: exact-match union only.
	ocr := &PagedOCR{Pages: [][]engine.TextLine{lines("ÉLODIE"), lines("ELODIE")}}
	c := newCollector(ocr, &MockScreen{}, &RecordingInput{}, &FakeSleeper{})

	got, err := c.CollectNames(context.Background(), namesRect, scrollRect, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, len(got))
}

func TestCollectNames_FailedPageCountsAsEmpty(t *testing.T) {
	ocr := &PagedOCR{
		Pages: [][]engine.TextLine{lines("ANN"), lines("BEN"), lines("CAL")},
		Errs:  map[int]error{1: errors.New("tesseract crashed")},
	}
	c := newCollector(ocr, &MockScreen{}, &RecordingInput{}, &FakeSleeper{})

	got, err := c.CollectNames(context.Background(), namesRect, scrollRect, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"ANN", "CAL"}, got.Sorted())
}

func TestCollectNames_CaptureFailureYieldsEmptySet(t *testing.T) {
	c := newCollector(&PagedOCR{Pages: [][]engine.TextLine{lines("ANN")}}, &MockScreen{Err: errors.New("no display")}, &RecordingInput{}, &FakeSleeper{})

	got, err := c.CollectNames(context.Background(), namesRect, scrollRect, 3)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectNames_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := &RecordingInput{}
	c := newCollector(&PagedOCR{Pages: [][]engine.TextLine{lines("ANN")}}, &MockScreen{}, in, &FakeSleeper{})

	got, err := c.CollectNames(ctx, namesRect, scrollRect, 4)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"ANN"}, got.Sorted())
	assert.Zero(t, in.Count("scroll"))
}

func TestExtract_FiltersAndNormalizes(t *testing.T) {
	ocr := &PagedOCR{Pages: [][]engine.TextLine{{
		{Text: "  ANN  ", Confidence: 90},
		{Text: "B3N!", Confidence: 90},
		{Text: "GHOST", Confidence: 40},
		{Text: "   ", Confidence: 99},
		{Text: "ÉLODIE", Confidence: 70},
	}}}
	x := &engine.TextExtractor{OCR: ocr, Allowlist: "ABCDEFGHIJKLMNOPQRSTUVWXYZÉ ", MinConfidence: 70}

	got, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 1, 1)))

	require.NoError(t, err)
	assert.Equal(t, []string{"ANN", "BN", "ÉLODIE"}, got)
}

func TestExtract_WrapsEngineFailure(t *testing.T) {
	cause := errors.New("boom")
	x := &engine.TextExtractor{OCR: &PagedOCR{Errs: map[int]error{0: cause}}}

	_, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 1, 1)))

	assert.ErrorIs(t, err, engine.ErrExtraction)
	assert.ErrorIs(t, err, cause)
}

func TestExtract_DropsLowContrastLines(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	// Left half flat grey, right half has black text on white.
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	img.SetGray(15, 5, color.Gray{Y: 0})
	img.SetGray(16, 5, color.Gray{Y: 255})

	ocr := &PagedOCR{Pages: [][]engine.TextLine{{
		{Text: "FLAT", Confidence: 90, Box: image.Rect(0, 0, 10, 10)},
		{Text: "SHARP", Confidence: 90, Box: image.Rect(10, 0, 20, 10)},
	}}}
	x := &engine.TextExtractor{OCR: ocr, MinConfidence: 70, MinContrast: 0.1}

	got, err := x.Extract(img)

	require.NoError(t, err)
	assert.Equal(t, []string{"SHARP"}, got)
}

func TestContrast_OutsideImageIsZero(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	assert.Zero(t, engine.Contrast(img, image.Rect(10, 10, 20, 20)))
}

func TestCapture_UpscalesAndWrapsErrors(t *testing.T) {
	screen := &MockScreen{}
	c := &engine.RegionCapture{Screen: screen, Upscale: 2}

	img, err := c.Capture(engine.Rect{Left: 10, Top: 10, Right: 14, Bottom: 13})
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	assert.Equal(t, []image.Rectangle{image.Rect(10, 10, 14, 13)}, screen.Grabs)

	cause := errors.New("no bitmap")
	c.Screen = &MockScreen{Err: cause}
	_, err = c.Capture(namesRect)
	assert.ErrorIs(t, err, engine.ErrCapture)
	assert.ErrorIs(t, err, cause)
}

type countingDumper struct{ n int }

func (d *countingDumper) Dump(image.Image) { d.n++ }

func TestCapture_DumpsWhenConfigured(t *testing.T) {
	d := &countingDumper{}
	c := &engine.RegionCapture{Screen: &MockScreen{}, Upscale: 1, Dumper: d}

	_, err := c.Capture(namesRect)
	require.NoError(t, err)
	_, err = c.Capture(namesRect)
	require.NoError(t, err)

	assert.Equal(t, 2, d.n)
}

func TestDirDumper_WritesNumberedFiles(t *testing.T) {
	dir := t.TempDir()
	d := &engine.DirDumper{Dir: dir}

	d.Dump(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	d.Dump(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	assert.FileExists(t, dir+"/capture-0001.png")
	assert.FileExists(t, dir+"/capture-0002.png")
}
