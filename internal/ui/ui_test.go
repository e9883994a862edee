package ui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/engine"
	"github.com/tartampluch/guild-recruiter/internal/server"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockCycler simulates the recruitment engine using testify/mock.
type MockCycler struct {
	mock.Mock
}

func (m *MockCycler) FindWindow() (engine.Window, error) {
	args := m.Called()
	return args.Get(0).(engine.Window), args.Error(1)
}

func (m *MockCycler) IsGameFocused() bool {
	return m.Called().Bool(0)
}

func (m *MockCycler) RunCycle(ctx context.Context, b engine.Bracket, proceed func() bool) (engine.CycleReport, error) {
	args := m.Called(ctx, b, proceed)
	return args.Get(0).(engine.CycleReport), args.Error(1)
}

func (m *MockCycler) CooldownRemaining() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// MockClock pins "today" for the status feed.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

var gameWindow = engine.Window{PID: 4242, Title: config.DefaultWindowTitle}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

type testEnv struct {
	app    *RecruiterApp
	cycler *MockCycler
	cancel context.CancelFunc
	dir    string
}

// setupTestApp builds a headless app over temporary stores.
func setupTestApp(t *testing.T, port string, seed func(*store.ConfigStore)) *testEnv {
	t.Helper()
	a := test.NewApp()
	dir := t.TempDir()

	cfg, err := store.OpenConfig(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	if seed != nil {
		seed(cfg)
	}
	st := Stores{
		Config: cfg,
		Ledger: store.NewLedger(filepath.Join(dir, config.LedgerFileName)),
		Queue:  store.NewQueue(filepath.Join(dir, config.QueueFileName)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cycler := new(MockCycler)
	app := NewRecruiterApp(a, ctx, server.NewStatusServer(port), cycler, st, nil)
	app.Clock = MockClock{CurrentTime: time.Date(2025, 4, 16, 12, 0, 0, 0, time.Local)}

	// Manually run the setup Run() would perform
	app.SetupI18n()
	app.Setup()

	return &testEnv{app: app, cycler: cycler, cancel: cancel, dir: dir}
}

func startRunning(t *testing.T, env *testEnv, rangeText string) {
	t.Helper()
	env.cycler.On("FindWindow").Return(gameWindow, nil).Once()
	env.app.w.rangeEntry.SetText(rangeText)
	env.app.StartRecruiting()
	require.Equal(t, engine.Running, env.app.Controller.Status())
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app

	assert.Equal(t, "Start (Alt+F10)", app.w.start.Text)
	assert.Equal(t, "Stopped", app.w.status.Text)

	app.w.language.SetSelected("fr")

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, "Démarrer (Alt+F10)", app.w.start.Text)
	assert.Equal(t, "Arrêté", app.w.status.Text)
	assert.Equal(t, "Recruteur de guilde SWTOR", app.Window.Title())
}

func TestLocalization_DetectsEmbeddedLanguages(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	assert.ElementsMatch(t, []string{"en", "fr"}, env.app.SupportedLanguages)
}

// -----------------------------------------------------------------------------
// Control Panel Tests
// -----------------------------------------------------------------------------

func TestNextRange_Preview(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app

	tests := []struct {
		input string
		want  string
	}{
		{"", "Next range will be: --"},
		{"20", "Next range will be: 21-40"},
		{"50", "Next range will be: 51-80"},
		{"90", "Range must be between 1 and 80"},
		{"0", "Range must be between 1 and 80"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("input_%q", tt.input), func(t *testing.T) {
			app.w.rangeEntry.SetText(tt.input)
			assert.Equal(t, tt.want, app.w.nextRange.Text)
		})
	}
}

func TestValidateRange_Messages(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app

	assert.NoError(t, app.validateRange("10"))
	assert.EqualError(t, app.validateRange("abc"), "Please enter a valid number")
	assert.EqualError(t, app.validateRange("81"), "Range must be between 1 and 80")
}

func TestFaction_SelectionPersists(t *testing.T) {
	env := setupTestApp(t, "0", nil)

	assert.Equal(t, config.DefaultFaction, env.app.w.faction.Selected)
	env.app.w.faction.SetSelected(config.FactionDark)

	assert.Equal(t, config.FactionDark, env.app.Config.Get().Faction)
}

func TestSetup_RestoresPersistedState(t *testing.T) {
	env := setupTestApp(t, "0", func(cfg *store.ConfigStore) {
		require.NoError(t, cfg.SaveLastRange("15"))
		require.NoError(t, cfg.SaveFaction(config.FactionDark))
		require.NoError(t, cfg.SaveState(store.RunState{
			IsRunning:      true,
			CurrentRange:   "16-30",
			RecruitsCount:  7,
			TotalProcessed: 12,
			FailedInvites:  2,
		}))
	})
	app := env.app

	assert.Equal(t, engine.Stopped, app.Controller.Status(), "restore never resumes running")
	assert.Equal(t, "15", app.w.rangeEntry.Text)
	assert.Equal(t, config.FactionDark, app.w.faction.Selected)
	assert.Equal(t, "16-30", app.w.current.Text)
	assert.Equal(t, "7", app.w.recruits.Text)
	assert.Equal(t, "12", app.w.processed.Text)
	assert.Equal(t, "2", app.w.failed.Text)
}

// -----------------------------------------------------------------------------
// State Machine Tests
// -----------------------------------------------------------------------------

func TestStart_RefusesInvalidRange(t *testing.T) {
	env := setupTestApp(t, "0", nil)

	for _, text := range []string{"", "abc", "0", "99"} {
		env.app.w.rangeEntry.SetText(text)
		env.app.StartRecruiting()
		assert.Equal(t, engine.Stopped, env.app.Controller.Status(), text)
	}
	env.cycler.AssertNotCalled(t, "FindWindow")
}

func TestStart_RefusesMissingWindow(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	env.cycler.On("FindWindow").Return(engine.Window{}, engine.ErrWindowNotFound)

	env.app.w.rangeEntry.SetText("10")
	env.app.StartRecruiting()

	assert.Equal(t, engine.Stopped, env.app.Controller.Status())
	assert.Empty(t, env.app.Config.Get().LastRange)
	env.cycler.AssertExpectations(t)
}

func TestStart_RunsAndSavesRange(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app

	startRunning(t, env, "10")

	assert.Equal(t, "10", app.Config.Get().LastRange)
	assert.Equal(t, "1-10", app.w.current.Text)
	assert.Equal(t, "Running", app.w.status.Text)
	assert.True(t, app.w.start.Disabled())
	assert.False(t, app.w.stop.Disabled())
	assert.False(t, app.w.pause.Disabled())
	assert.True(t, app.w.rangeEntry.Disabled())
}

func TestButtons_PauseAndStop(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app
	startRunning(t, env, "10")

	test.Tap(app.w.pause)
	assert.Equal(t, engine.Paused, app.Controller.Status())
	assert.Equal(t, "Paused", app.w.status.Text)

	test.Tap(app.w.pause)
	assert.Equal(t, engine.Running, app.Controller.Status())

	test.Tap(app.w.stop)
	assert.Equal(t, engine.Stopped, app.Controller.Status())
	assert.False(t, app.Config.Get().State.IsRunning)
	assert.Equal(t, "1-10", app.Config.Get().State.CurrentRange)
	assert.False(t, app.w.start.Disabled())
}

// -----------------------------------------------------------------------------
// Scheduler Task Tests
// -----------------------------------------------------------------------------

func TestFocusCheck_AutoPausesWhenGameLosesFocus(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	startRunning(t, env, "10")

	env.cycler.On("IsGameFocused").Return(true).Once()
	env.app.checkFocus()
	assert.Equal(t, engine.Running, env.app.Controller.Status())

	env.cycler.On("IsGameFocused").Return(false).Once()
	env.app.checkFocus()
	assert.Equal(t, engine.Paused, env.app.Controller.Status())
}

func TestFocusCheck_IgnoredWhenStopped(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	env.app.checkFocus()
	env.cycler.AssertNotCalled(t, "IsGameFocused")
}

func TestAutosave_OnlyWhileActive(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app

	app.autosave()
	assert.Equal(t, store.RunState{}, app.Config.Get().State)

	startRunning(t, env, "10")
	app.autosave()

	st := app.Config.Get().State
	assert.True(t, st.IsRunning)
	assert.Equal(t, "1-10", st.CurrentRange)
}

func TestScheduler_TasksRegistered(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	env.cycler.On("IsGameFocused").Return(true).Maybe()

	ran := env.app.Scheduler.Tick(time.Now().Add(config.AutosaveInterval))
	assert.Equal(t, 3, ran)
}

func TestSaveOnClose_StoresGeometry(t *testing.T) {
	env := setupTestApp(t, "0", nil)

	env.app.SaveOnClose()

	g := env.app.Config.Get().WindowGeometry
	require.NotNil(t, g)
	assert.Zero(t, g[0])
	assert.Zero(t, g[1])
	assert.Positive(t, g[2])
	assert.Positive(t, g[3])
}

// -----------------------------------------------------------------------------
// Worker Tests
// -----------------------------------------------------------------------------

func TestRunOnce_RecordsAndAdvances(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	app := env.app
	startRunning(t, env, "10")

	rep := engine.CycleReport{
		Bracket: engine.Bracket{Min: 1, Max: 10},
		Invites: engine.Report{
			Invited: []string{"ANN", "BOB"},
			Skipped: []string{"CID"},
			Failed:  []engine.Failure{{Name: "DEE", Err: engine.ErrInvite}},
		},
	}
	env.cycler.On("RunCycle", mock.Anything, engine.Bracket{Min: 1, Max: 10}, mock.Anything).Return(rep, nil).Once()

	assert.Zero(t, app.runOnce())

	s := app.Controller.Stats()
	assert.Equal(t, 2, s.Recruits)
	assert.Equal(t, 3, s.Processed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, engine.Bracket{Min: 11, Max: 20}, s.Bracket)
	assert.Equal(t, 2, app.Config.Get().TotalRecruits)
	assert.Equal(t, "11-20", app.w.current.Text)
	env.cycler.AssertExpectations(t)
}

func TestRunOnce_ResumedQueueKeepsBracket(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	startRunning(t, env, "10")

	env.cycler.On("RunCycle", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.CycleReport{Resumed: true}, nil).Once()

	env.app.runOnce()
	assert.Equal(t, engine.Bracket{Min: 1, Max: 10}, env.app.Controller.Bracket())
}

func TestRunOnce_CooldownWaits(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	startRunning(t, env, "10")

	env.cycler.On("RunCycle", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.CycleReport{}, engine.ErrWhoCooldown).Once()
	env.cycler.On("CooldownRemaining").Return(42 * time.Second).Once()

	assert.Equal(t, 42*time.Second, env.app.runOnce())
	assert.Equal(t, engine.Bracket{Min: 1, Max: 10}, env.app.Controller.Bracket())
}

func TestRunOnce_FailureBacksOffAndKeepsRunning(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	startRunning(t, env, "10")

	env.cycler.On("RunCycle", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.CycleReport{}, fmt.Errorf("%w: %q", engine.ErrWindowNotFound, "SWTOR")).Once()

	assert.Equal(t, config.ErrorBackoff, env.app.runOnce())
	assert.Equal(t, engine.Running, env.app.Controller.Status())
	assert.Equal(t, engine.Bracket{Min: 1, Max: 10}, env.app.Controller.Bracket())
}

func TestRunOnce_ProceedFollowsController(t *testing.T) {
	env := setupTestApp(t, "0", nil)
	startRunning(t, env, "10")

	var proceed func() bool
	env.cycler.On("RunCycle", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { proceed = args.Get(2).(func() bool) }).
		Return(engine.CycleReport{}, nil).Once()

	env.app.runOnce()
	require.NotNil(t, proceed)
	assert.True(t, proceed())

	env.app.TogglePause()
	assert.False(t, proceed(), "pausing halts the invite loop")
}

func TestBackgroundWorker_StopsOnCancel(t *testing.T) {
	env := setupTestApp(t, "0", nil)

	done := make(chan struct{})
	go func() {
		env.app.backgroundWorker()
		close(done)
	}()

	env.cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

// -----------------------------------------------------------------------------
// Status Feed Tests
// -----------------------------------------------------------------------------

func TestStatusFeed_ReflectsState(t *testing.T) {
	const port = "18097"
	env := setupTestApp(t, port, nil)

	go func() { _ = env.app.Server.Start(env.app.Ctx) }()

	url := "http://127.0.0.1:" + port + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond)

	startRunning(t, env, "10")

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"state":"running"`)
	assert.Contains(t, string(body), `"range":"1-10"`)
	assert.Contains(t, string(body), `"date":"2025-04-16"`)
}
