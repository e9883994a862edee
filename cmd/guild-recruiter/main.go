package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/desktop"
	"github.com/tartampluch/guild-recruiter/internal/engine"
	"github.com/tartampluch/guild-recruiter/internal/ocr"
	"github.com/tartampluch/guild-recruiter/internal/server"
	"github.com/tartampluch/guild-recruiter/internal/store"
	"github.com/tartampluch/guild-recruiter/internal/ui"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (closing the log
// file, releasing Tesseract) run before the process exits.
func main() {
	os.Exit(runMain())
}

// options carries the parsed command line.
type options struct {
	debug       bool
	dataDir     string
	calibration string
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	var opts options
	flag.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.dataDir, config.FlagDataDir, "", config.FlagDescDataDir)
	flag.StringVar(&opts.calibration, config.FlagCalibration, "", config.FlagDescCalibration)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// The status window console receives Info and above from the same logger.
	console := ui.NewLogConsole(config.ConsoleMaxLines)
	logCloser := setupLogging(opts.debug, console)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, opts, console); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run opens the stores, wires the recruiter to the OS drivers, and starts
// the UI loop.
func run(ctx context.Context, opts options, console *ui.LogConsole) error {
	dataDir, err := resolveDataDir(opts.dataDir)
	if err != nil {
		return err
	}

	stores := openStores(dataDir)

	calibration := opts.calibration
	if calibration == "" {
		calibration = filepath.Join(dataDir, config.CalibrationFileName)
	}
	settings, err := engine.LoadCalibration(calibration, engine.DefaultSettings())
	if err != nil {
		return err
	}

	tess, err := ocr.NewTesseract(settings.Languages, settings.Allowlist)
	if err != nil {
		return err
	}
	defer func() { _ = tess.Close() }()

	recruiter, err := engine.NewRecruiter(settings, desktop.Devices(tess), stores.Ledger, stores.Queue)
	if err != nil {
		return err
	}
	if opts.debug {
		dumpDir := filepath.Join(dataDir, config.DebugDirName)
		if err := os.MkdirAll(dumpDir, config.DirPermUserRWX); err != nil {
			return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
		}
		recruiter.Collector.Capture.Dumper = &engine.DirDumper{Dir: dumpDir}
	}

	// Initialize Fyne App.
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	srv := server.NewStatusServer(port)

	gui := ui.NewRecruiterApp(a, ctx, srv, recruiter, stores, console)

	// Lifecycle Bridge:
	// Watch for context cancellation to quit the UI gracefully.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// Blocks until the status window closes.
	gui.Run()

	return nil
}

// openStores loads the three JSON documents. Read failures fall back to
// empty documents; the stores log them.
func openStores(dir string) ui.Stores {
	ledger, _ := store.OpenLedger(filepath.Join(dir, config.LedgerFileName))
	queue, _ := store.OpenQueue(filepath.Join(dir, config.QueueFileName))
	cfg, _ := store.OpenConfig(filepath.Join(dir, config.ConfigFileName))

	return ui.Stores{Config: cfg, Ledger: ledger, Queue: queue}
}

// resolveDataDir returns dir, or the per-user config directory when empty,
// and makes sure it exists.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
		}
		dir = filepath.Join(base, config.AppID)
	}
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return dir, nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stdout and the
// log file, teed into the status window console.
func setupLogging(debugMode bool, console *ui.LogConsole) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	writers = append(writers, os.Stdout)

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	jsonHandler := slog.NewJSONHandler(io.MultiWriter(writers...), opts)
	slog.SetDefault(slog.New(ui.NewConsoleHandler(jsonHandler, console)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
