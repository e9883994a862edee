package engine_test

import (
	"context"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/guild-recruiter/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentTime
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentTime = m.CurrentTime.Add(d)
}

// FakeSleeper records requested delays and returns immediately.
type FakeSleeper struct {
	Slept []time.Duration
}

func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.Slept = append(f.Slept, d)
	return ctx.Err()
}

// Event is one synthetic input action captured by RecordingInput.
type Event struct {
	Kind string // move, click, scroll, key, type
	Text string
	X, Y int
}

// RecordingInput captures every input call. TypeText fails for names in
// FailOn.
type RecordingInput struct {
	Events []Event
	FailOn map[string]error
}

func (r *RecordingInput) MoveMouse(x, y int) {
	r.Events = append(r.Events, Event{Kind: "move", X: x, Y: y})
}

func (r *RecordingInput) Click(x, y int) {
	r.Events = append(r.Events, Event{Kind: "click", X: x, Y: y})
}

func (r *RecordingInput) ScrollDown(clicks int) {
	r.Events = append(r.Events, Event{Kind: "scroll", X: clicks})
}

func (r *RecordingInput) KeyTap(key string) error {
	r.Events = append(r.Events, Event{Kind: "key", Text: key})
	return nil
}

func (r *RecordingInput) TypeText(text string) error {
	if err, ok := r.FailOn[text]; ok {
		return err
	}
	r.Events = append(r.Events, Event{Kind: "type", Text: text})
	return nil
}

// Typed joins every typed fragment.
func (r *RecordingInput) Typed() []string {
	var out []string
	for _, e := range r.Events {
		if e.Kind == "type" {
			out = append(out, e.Text)
		}
	}
	return out
}

// Count returns how many events of kind were recorded.
func (r *RecordingInput) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// MockWindows simulates the OS window manager using `testify/mock`.
type MockWindows struct {
	mock.Mock
}

func (m *MockWindows) Find(title string) (engine.Window, error) {
	args := m.Called(title)
	return args.Get(0).(engine.Window), args.Error(1)
}

func (m *MockWindows) Activate(w engine.Window) error {
	return m.Called(w).Error(0)
}

func (m *MockWindows) IsForeground(w engine.Window) bool {
	return m.Called(w).Bool(0)
}

// MockScreen returns blank images of the requested size, or Err.
type MockScreen struct {
	Err   error
	Grabs []image.Rectangle
}

func (m *MockScreen) Grab(r image.Rectangle) (image.Image, error) {
	m.Grabs = append(m.Grabs, r)
	if m.Err != nil {
		return nil, m.Err
	}
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

// PagedOCR returns one page of lines per call. Calls past the last page
// repeat it; a page may be replaced by an error.
type PagedOCR struct {
	Pages [][]engine.TextLine
	Errs  map[int]error
	calls int
}

func (p *PagedOCR) Recognize(image.Image) ([]engine.TextLine, error) {
	i := p.calls
	p.calls++
	if err, ok := p.Errs[i]; ok {
		return nil, err
	}
	if len(p.Pages) == 0 {
		return nil, nil
	}
	return p.Pages[min(i, len(p.Pages)-1)], nil
}

// lines builds confident OCR lines without boxes.
func lines(texts ...string) []engine.TextLine {
	out := make([]engine.TextLine, len(texts))
	for i, t := range texts {
		out[i] = engine.TextLine{Text: t, Confidence: 95}
	}
	return out
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func testDelays() engine.Delays {
	return engine.Delays{
		Activate:       500 * time.Millisecond,
		Settle:         500 * time.Millisecond,
		TypeChar:       100 * time.Millisecond,
		InviteOpen:     engine.Span{Min: 200 * time.Millisecond, Max: 500 * time.Millisecond},
		InviteSubmit:   500 * time.Millisecond,
		BetweenInvites: engine.Span{Min: 200 * time.Millisecond, Max: 750 * time.Millisecond},
		WhoClick:       engine.Span{Min: 200 * time.Millisecond, Max: 300 * time.Millisecond},
		WhoType:        engine.Span{Min: 300 * time.Millisecond, Max: 500 * time.Millisecond},
		WhoResults:     engine.Span{Min: 1500 * time.Millisecond, Max: 2000 * time.Millisecond},
	}
}
