package ui

import (
	"errors"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/engine"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// statusWidgets holds references to the status window widgets so labels can
// be refreshed in place.
type statusWidgets struct {
	form       *widget.Form
	language   *widget.Select
	faction    *widget.Select
	rangeEntry *NumericalEntry
	nextRange  *widget.Label

	statsForm *widget.Form
	current   *widget.Label
	recruits  *widget.Label
	processed *widget.Label
	failed    *widget.Label
	status    *widget.Label

	start   *widget.Button
	stop    *widget.Button
	pause   *widget.Button
	console *widget.Card
}

// buildContent lays out the controls, statistics, buttons and console.
func (app *RecruiterApp) buildContent(cfg store.AppConfig) fyne.CanvasObject {
	w := &app.w

	// --- 1. Controls ---
	w.language = widget.NewSelect(app.SupportedLanguages, app.onLanguageChanged)
	w.language.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	w.faction = widget.NewSelect(config.Factions, nil)
	w.faction.SetSelected(cfg.Faction)
	w.faction.OnChanged = app.onFactionChanged

	w.rangeEntry = NewNumericalEntry(config.RangeMaxDigits)
	w.rangeEntry.Validator = app.validateRange
	w.nextRange = widget.NewLabel("")
	w.rangeEntry.OnChanged = app.updateNextRange
	if cfg.LastRange != "" {
		w.rangeEntry.SetText(cfg.LastRange)
	}
	app.updateNextRange(w.rangeEntry.Text)

	w.form = widget.NewForm(
		widget.NewFormItem("", w.language),
		widget.NewFormItem("", w.faction),
		widget.NewFormItem("", w.rangeEntry),
	)

	controls := container.NewVBox(w.form, w.nextRange)

	// --- 2. Statistics ---
	w.current = widget.NewLabel(config.RangePlaceholder)
	w.recruits = widget.NewLabel("0")
	w.processed = widget.NewLabel("0")
	w.failed = widget.NewLabel("0")
	w.status = widget.NewLabel("")
	w.status.TextStyle = fyne.TextStyle{Bold: true}

	w.statsForm = widget.NewForm(
		widget.NewFormItem("", w.current),
		widget.NewFormItem("", w.recruits),
		widget.NewFormItem("", w.processed),
		widget.NewFormItem("", w.failed),
		widget.NewFormItem("", w.status),
	)

	top := container.NewGridWithColumns(config.LayoutColumnsDouble, controls, w.statsForm)

	// --- 3. Buttons ---
	w.start = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), app.StartRecruiting)
	w.start.Importance = widget.HighImportance
	w.stop = widget.NewButtonWithIcon("", theme.MediaStopIcon(), app.StopRecruiting)
	w.stop.Importance = widget.DangerImportance
	w.pause = widget.NewButtonWithIcon("", theme.MediaPauseIcon(), app.TogglePause)

	buttons := container.NewGridWithColumns(config.LayoutColumnsTriple, w.start, w.stop, w.pause)

	// --- 4. Console ---
	w.console = widget.NewCard("", "", app.Console.Scroll)

	app.relabel()
	return container.NewBorder(container.NewVBox(top, buttons), nil, nil, nil, w.console)
}

// relabel applies the active language to every static text.
func (app *RecruiterApp) relabel() {
	w := &app.w
	if w.form == nil {
		return
	}
	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	}

	w.form.Items[0].Text = app.GetMsg(config.TKeyLblLanguage)
	w.form.Items[1].Text = app.GetMsg(config.TKeyLblFaction)
	w.form.Items[2].Text = app.GetMsg(config.TKeyLblRange)
	w.form.Items[2].HintText = app.GetMsg(config.TKeyHintRange)
	w.form.Refresh()

	w.statsForm.Items[0].Text = app.GetMsg(config.TKeyStatCurrent)
	w.statsForm.Items[1].Text = app.GetMsg(config.TKeyStatRecruits)
	w.statsForm.Items[2].Text = app.GetMsg(config.TKeyStatProcessed)
	w.statsForm.Items[3].Text = app.GetMsg(config.TKeyStatFailed)
	w.statsForm.Items[4].Text = app.GetMsg(config.TKeyStatStatus)
	w.statsForm.Refresh()

	w.start.SetText(app.GetMsg(config.TKeyBtnStart))
	w.stop.SetText(app.GetMsg(config.TKeyBtnStop))
	w.pause.SetText(app.GetMsg(config.TKeyBtnPause))
	w.console.SetTitle(app.GetMsg(config.TKeyLblConsole))

	app.updateNextRange(w.rangeEntry.Text)
	app.refreshStats(app.Controller.Stats())
}

// refreshStats renders s. It must run on the UI goroutine.
func (app *RecruiterApp) refreshStats(s engine.Stats) {
	w := &app.w
	if w.status == nil {
		return
	}

	current := config.RangePlaceholder
	if !s.Bracket.IsZero() {
		current = s.Bracket.String()
	}
	w.current.SetText(current)
	w.recruits.SetText(strconv.Itoa(s.Recruits))
	w.processed.SetText(strconv.Itoa(s.Processed))
	w.failed.SetText(strconv.Itoa(s.Failed))
	w.status.SetText(app.statusText(s.Status))

	switch s.Status {
	case engine.Stopped:
		w.start.Enable()
		w.stop.Disable()
		w.pause.Disable()
		w.rangeEntry.Enable()
	default:
		w.start.Disable()
		w.stop.Enable()
		w.pause.Enable()
		w.rangeEntry.Disable()
	}
}

func (app *RecruiterApp) statusText(s engine.Status) string {
	switch s {
	case engine.Running:
		return app.GetMsg(config.TKeyStatusRunning)
	case engine.Paused:
		return app.GetMsg(config.TKeyStatusPaused)
	default:
		return app.GetMsg(config.TKeyStatusStopped)
	}
}

// validateRange maps range parse errors to translated messages.
func (app *RecruiterApp) validateRange(text string) error {
	_, err := engine.ParseRange(text)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrRangeBounds):
		return errors.New(app.GetMsg(config.TKeyErrRangeBound))
	default:
		return errors.New(app.GetMsg(config.TKeyErrRangeNum))
	}
}

// updateNextRange previews the bracket that follows the first one.
func (app *RecruiterApp) updateNextRange(text string) {
	label := app.w.nextRange
	if label == nil {
		return
	}
	if text == "" {
		label.SetText(app.GetMsg(config.TKeyNextRangeEmpty))
		return
	}
	width, err := engine.ParseRange(text)
	if err != nil {
		label.SetText(app.validateRange(text).Error())
		return
	}
	next := engine.FirstBracket(width).Next(width)
	label.SetText(app.GetMsgWith(config.TKeyNextRange, map[string]any{
		"Start": next.Min,
		"End":   next.Max,
	}))
}

func (app *RecruiterApp) onFactionChanged(faction string) {
	if err := app.Config.SaveFaction(faction); err != nil {
		slog.Error(config.ErrPersistence,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}
	slog.Info(config.MsgFactionSaved,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyFaction, faction)
	app.publish(app.Controller.Stats())
}

func (app *RecruiterApp) onLanguageChanged(lang string) {
	if lang == app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage) {
		return
	}
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()
	app.relabel()
}
