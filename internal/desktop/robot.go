// Package desktop drives the real OS through robotgo: window lookup and
// focus, screen grabs, and synthetic mouse and keyboard input.
package desktop

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/engine"
)

var (
	_ engine.WindowLocator = Windows{}
	_ engine.ScreenGrabber = Screen{}
	_ engine.InputDriver   = Input{}
)

// Windows implements engine.WindowLocator.
type Windows struct{}

// Find scans running processes and returns the first one whose window title
// contains title.
func (Windows) Find(title string) (engine.Window, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return engine.Window{}, fmt.Errorf("%w: %w", engine.ErrWindowNotFound, err)
	}

	for _, p := range procs {
		t := robotgo.GetTitle(p.Pid)
		if t != "" && strings.Contains(t, title) {
			return engine.Window{PID: p.Pid, Title: t}, nil
		}
	}
	return engine.Window{}, fmt.Errorf("%w: %q", engine.ErrWindowNotFound, title)
}

// Activate raises the window owned by w.PID.
func (Windows) Activate(w engine.Window) error {
	if err := robotgo.ActivePid(w.PID); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWindowActivate, err)
	}
	return nil
}

// IsForeground compares w with the process owning the active window.
func (Windows) IsForeground(w engine.Window) bool {
	return w.PID != 0 && robotgo.GetPid() == w.PID
}

// Screen implements engine.ScreenGrabber.
type Screen struct{}

// Grab copies r into Go memory and releases the native bitmap.
func (Screen) Grab(r image.Rectangle) (image.Image, error) {
	bmp := robotgo.CaptureScreen(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	if bmp == nil {
		return nil, errors.New(config.ErrScreenGrab)
	}
	defer robotgo.FreeBitmap(bmp)

	src := robotgo.ToImage(bmp)
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst, nil
}

// Input implements engine.InputDriver.
type Input struct{}

func (Input) MoveMouse(x, y int) {
	robotgo.Move(x, y)
}

func (Input) Click(x, y int) {
	robotgo.Move(x, y)
	robotgo.Click()
}

func (Input) ScrollDown(clicks int) {
	robotgo.ScrollDir(clicks, "down")
}

func (Input) KeyTap(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		slog.Debug(err.Error(),
			config.LogKeyComponent, config.CompDesktop,
			config.LogKeyKey, key)
		return err
	}
	return nil
}

// TypeText types text as Unicode. robotgo reports no typing errors.
func (Input) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// Devices bundles the robotgo drivers with an OCR engine.
func Devices(ocr engine.OCREngine) engine.Devices {
	return engine.Devices{
		Windows: Windows{},
		Screen:  Screen{},
		Input:   Input{},
		OCR:     ocr,
	}
}
