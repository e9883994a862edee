package engine

import "image"

// Window identifies a top-level OS window.
type Window struct {
	PID   int
	Title string
}

// WindowLocator finds and focuses the game client.
type WindowLocator interface {
	// Find returns the first window whose title contains title
	// (case-sensitive), or ErrWindowNotFound.
	Find(title string) (Window, error)
	// Activate brings w to the foreground. It does not wait for the OS to
	// finish the focus transition.
	Activate(w Window) error
	// IsForeground reports whether w currently owns keyboard focus.
	IsForeground(w Window) bool
}

// ScreenGrabber copies screen pixels.
type ScreenGrabber interface {
	Grab(r image.Rectangle) (image.Image, error)
}

// InputDriver injects synthetic mouse and keyboard events.
type InputDriver interface {
	MoveMouse(x, y int)
	Click(x, y int)
	ScrollDown(clicks int)
	KeyTap(key string) error
	TypeText(text string) error
}

// TextLine is one detected line of text.
type TextLine struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // 0-100
}

// OCREngine recognises text lines in an image. Line order is whatever the
// engine produces.
type OCREngine interface {
	Recognize(img image.Image) ([]TextLine, error)
}

// Devices bundles the OS-facing collaborators.
type Devices struct {
	Windows WindowLocator
	Screen  ScreenGrabber
	Input   InputDriver
	OCR     OCREngine
}
