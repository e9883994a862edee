package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/engine"
	"github.com/tartampluch/guild-recruiter/internal/server"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// Cycler runs recruitment cycles against the game. *engine.Recruiter
// implements it.
type Cycler interface {
	FindWindow() (engine.Window, error)
	IsGameFocused() bool
	RunCycle(ctx context.Context, b engine.Bracket, proceed func() bool) (engine.CycleReport, error)
	CooldownRemaining() time.Duration
}

// RecruiterApp encapsulates the status window, preferences, and the
// background recruitment worker.
type RecruiterApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server     *server.StatusServer
	Cycler     Cycler
	Controller *engine.Controller
	Scheduler  *engine.Scheduler
	Config     *store.ConfigStore
	Ledger     *store.Ledger
	Queue      *store.Queue
	Clock      engine.Clock // Injected clock for testability
	Console    *LogConsole

	SupportedLanguages []string
	wake               chan struct{}

	w statusWidgets
}

// Stores groups the three persisted documents.
type Stores struct {
	Config *store.ConfigStore
	Ledger *store.Ledger
	Queue  *store.Queue
}

// NewRecruiterApp constructs the application and wires dependencies.
func NewRecruiterApp(a fyne.App, ctx context.Context, srv *server.StatusServer, cycler Cycler, st Stores, console *LogConsole) *RecruiterApp {
	if console == nil {
		console = NewLogConsole(config.ConsoleMaxLines)
	}
	clock := engine.RealClock{}

	app := &RecruiterApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Cycler:             cycler,
		Controller:         engine.NewController(),
		Scheduler:          engine.NewScheduler(clock),
		Config:             st.Config,
		Ledger:             st.Ledger,
		Queue:              st.Queue,
		Clock:              clock,
		Console:            console,
		SupportedLanguages: config.SupportedLanguages,
		wake:               make(chan struct{}, config.ChannelBufferSize),
	}
	app.Controller.OnChange = app.onStatsChange
	return app
}

// Run launches the application services and the main UI loop.
func (app *RecruiterApp) Run() {
	app.SetupI18n()
	app.Setup()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}()

	go app.backgroundWorker()
	go app.Scheduler.Run(app.Ctx, config.SchedulerResolution)

	app.Window.ShowAndRun()
}

// Setup restores the persisted state, builds the status window and
// registers hotkeys and periodic tasks. Run calls it; tests call it
// directly.
func (app *RecruiterApp) Setup() {
	cfg := app.Config.Get()
	app.Controller.Restore(cfg.State)

	app.Window = app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window.SetMaster()
	app.Window.SetContent(app.buildContent(cfg))

	size := fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight)
	if g := cfg.WindowGeometry; g != nil && g[2] >= config.MainWindowWidth && g[3] >= config.MainWindowHeight {
		size = fyne.NewSize(float32(g[2]), float32(g[3]))
	}
	app.Window.Resize(size)
	app.Window.SetCloseIntercept(func() {
		app.SaveOnClose()
		app.Window.Close()
	})

	app.registerHotkeys()
	app.registerTasks()
	app.refreshStats(app.Controller.Stats())
	app.publish(app.Controller.Stats())
}

// registerHotkeys binds Alt+F10/F11/F12 to start, stop and pause.
func (app *RecruiterApp) registerHotkeys() {
	bind := func(key fyne.KeyName, fn func()) {
		sc := &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierAlt}
		app.Window.Canvas().AddShortcut(sc, func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyF10, app.StartRecruiting)
	bind(fyne.KeyF11, app.StopRecruiting)
	bind(fyne.KeyF12, app.TogglePause)
}

// registerTasks schedules the focus watchdog, the autosave and the status
// feed refresh.
func (app *RecruiterApp) registerTasks() {
	app.Scheduler.Every(config.TaskFocusCheck, config.FocusCheckInterval, app.checkFocus)
	app.Scheduler.Every(config.TaskAutosave, config.AutosaveInterval, app.autosave)
	app.Scheduler.Every(config.TaskPublish, config.AutosaveInterval, func() {
		app.publish(app.Controller.Stats())
	})
}

// StartRecruiting validates the range input, requires the game window, and
// starts the loop.
func (app *RecruiterApp) StartRecruiting() {
	text := app.w.rangeEntry.Text
	_, err := app.Controller.Start(text, func() error {
		_, err := app.Cycler.FindWindow()
		return err
	})
	if err != nil {
		return
	}

	if err := app.Config.SaveLastRange(text); err != nil {
		slog.Error(config.ErrPersistence,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
	app.kick()
}

// StopRecruiting stops the loop and saves the run state.
func (app *RecruiterApp) StopRecruiting() {
	app.Controller.Stop()
	app.saveState()
}

// TogglePause flips between running and paused.
func (app *RecruiterApp) TogglePause() {
	if app.Controller.TogglePause() == engine.Running {
		app.kick()
	}
}

// SaveOnClose persists the window size and the run state.
func (app *RecruiterApp) SaveOnClose() {
	size := app.Window.Canvas().Size()
	// Fyne does not expose the window position; only the size is restored.
	g := store.Geometry{0, 0, int(size.Width), int(size.Height)}
	if err := app.Config.SaveGeometry(g); err != nil {
		slog.Error(config.ErrPersistence,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	} else {
		slog.Debug(config.MsgGeometrySaved, config.LogKeyComponent, config.CompUI)
	}
	app.saveState()
}

func (app *RecruiterApp) checkFocus() {
	if app.Controller.IsRunning() && !app.Cycler.IsGameFocused() {
		app.Controller.AutoPause()
	}
}

func (app *RecruiterApp) autosave() {
	if app.Controller.Status() == engine.Stopped {
		return
	}
	app.saveState()
}

func (app *RecruiterApp) saveState() {
	st := app.Controller.Snapshot()
	if err := app.Config.SaveState(st); err != nil {
		slog.Error(config.ErrPersistence,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}
	slog.Debug(config.MsgStateSaved,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyRange, st.CurrentRange)
}

// kick wakes the worker without blocking.
func (app *RecruiterApp) kick() {
	select {
	case app.wake <- struct{}{}:
	default:
	}
}

// backgroundWorker runs cycles while the controller is running.
func (app *RecruiterApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgWorkerStart)

	for {
		wait := config.IdlePollInterval
		if app.Controller.IsRunning() {
			wait = app.runOnce()
		}
		if !app.sleep(wait) {
			log.Info(config.MsgWorkerStop)
			return
		}
	}
}

// sleep waits for d, a wake-up, or cancellation. It reports false once the
// context is done.
func (app *RecruiterApp) sleep(d time.Duration) bool {
	if app.Ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-app.Ctx.Done():
		return false
	case <-app.wake:
		return true
	case <-t.C:
		return true
	}
}

// runOnce performs one cycle, folds its outcome into the counters and
// returns how long the worker should wait before the next one.
func (app *RecruiterApp) runOnce() time.Duration {
	b := app.Controller.Bracket()
	rep, err := app.Cycler.RunCycle(app.Ctx, b, app.Controller.IsRunning)

	app.Controller.Record(rep.Invites)
	if n := len(rep.Invites.Invited); n > 0 {
		if err := app.Config.AddRecruits(n); err != nil {
			slog.Error(config.ErrPersistence,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyError, err)
		}
	}

	switch {
	case err == nil:
		if !rep.Resumed {
			app.Controller.Advance()
		}
		return 0
	case errors.Is(err, engine.ErrWhoCooldown):
		wait := app.Cycler.CooldownRemaining()
		slog.Info(config.MsgWhoWait,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyWait, wait.String())
		return wait
	case app.Ctx.Err() != nil:
		return 0
	default:
		slog.Error(config.MsgCycleFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyRange, b.String(),
			config.LogKeyError, err)
		return config.ErrorBackoff
	}
}

// onStatsChange mirrors controller changes into the window and the feed.
func (app *RecruiterApp) onStatsChange(s engine.Stats) {
	fyne.Do(func() { app.refreshStats(s) })
	app.publish(s)
}

// publish pushes the current state to the local status feed.
func (app *RecruiterApp) publish(s engine.Stats) {
	if app.Server == nil {
		return
	}
	date := engine.Today(app.Clock)
	snap := server.Snapshot{
		State:     s.Status.String(),
		Faction:   app.Config.Get().Faction,
		Recruits:  s.Recruits,
		Processed: s.Processed,
		Failed:    s.Failed,
		Date:      date,
		Today:     app.Ledger.Names(date),
		Queue:     app.Queue.Names(),
	}
	if !s.Bracket.IsZero() {
		snap.Range = s.Bracket.String()
	}
	if err := app.Server.Publish(snap); err != nil {
		slog.Error(config.ErrStatusEncode,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
}
