package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Guild Recruiter"
	AppID             = "com.github.tartampluch.guild-recruiter"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion         = "version"
	FlagDebug           = "debug"
	FlagDataDir         = "data"
	FlagCalibration     = "calibration"
	FlagDescVersion     = "Show application version and exit"
	FlagDescDebug       = "Enable debug logging and capture dumps"
	FlagDescDataDir     = "Directory holding dnd.json, extracted_text.json and config.json"
	FlagDescCalibration = "Optional YAML file overriding screen regions and delays"
	MsgVersionOutput    = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Persisted Files
// -----------------------------------------------------------------------------

const (
	LedgerFileName      = "dnd.json"
	QueueFileName       = "extracted_text.json"
	ConfigFileName      = "config.json"
	CalibrationFileName = "calibration.yaml"
	DebugDirName        = "captures"
	JSONIndent          = "    "

	// DateFormatLedger keys the DND ledger (ISO calendar date).
	DateFormatLedger = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Game Target
// -----------------------------------------------------------------------------

const (
	DefaultWindowTitle = "Star Wars™: The Old Republic™"

	WhoCommandPrefix    = "/who "
	InviteCommandPrefix = "/ginvite "
	KeyEnter            = "enter"

	FactionLight   = "Light Side"
	FactionDark    = "Dark Side"
	DefaultFaction = FactionLight

	MinLevel = 1
	MaxLevel = 80
)

// Factions lists the selectable factions in display order.
var Factions = []string{FactionLight, FactionDark}

// Screen region names. Rectangles are hand-calibrated (left, top, right, bottom).
const (
	RegionWho       = "who"
	RegionTextEntry = "text_entry"
	RegionResults   = "results"
	RegionScroll    = "scroll"
	RegionNames     = "names"

	// TextEntryClickOffset is added to the text entry corner before clicking.
	TextEntryClickOffset = 10
)

// DefaultRegions returns the calibrated rectangles for a 1080p client at the
// top-left corner of the primary display.
func DefaultRegions() map[string][4]int {
	return map[string][4]int{
		RegionWho:       {23, 51, 255, 105},
		RegionTextEntry: {62, 126, 436, 164},
		RegionResults:   {776, 122, 1222, 172},
		RegionScroll:    {1187, 239, 1216, 1023},
		RegionNames:     {58, 240, 400, 1016},
	}
}

// -----------------------------------------------------------------------------
// Capture & OCR Tuning
// -----------------------------------------------------------------------------

const (
	DefaultScrollSteps  = 4
	DefaultScrollClicks = 20
	DefaultUpscale      = 2

	// MinConfidence is on Tesseract's 0-100 scale.
	MinConfidence = 70.0
	// MinContrast is the minimum luminance spread (0-1) inside a text box.
	MinContrast = 0.1

	// Allowlist restricts OCR output to upper-case Latin letters, common
	// accented capitals, space, apostrophe and dash.
	Allowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ " +
		"ÀÁÂÄÃÆÅ" +
		"ÈÉÊË" +
		"ÌÍÎÏ" +
		"ÒÓÔÖÕØ" +
		"ÙÚÛÜ" +
		"Ý" +
		"Ñ" +
		"Ç" +
		"ß" +
		"'-"
)

// OCRLanguages are Tesseract language packs; several Latin scripts admit accents.
var OCRLanguages = []string{"eng", "fra", "spa", "deu", "por"}

// -----------------------------------------------------------------------------
// Timing
// -----------------------------------------------------------------------------

const (
	ActivateSettle   = 500 * time.Millisecond
	ScrollSettle     = 500 * time.Millisecond
	TypeCharDelay    = 100 * time.Millisecond
	InviteOpenMin    = 200 * time.Millisecond
	InviteOpenMax    = 500 * time.Millisecond
	InviteSubmitWait = 500 * time.Millisecond
	BetweenInviteMin = 200 * time.Millisecond
	BetweenInviteMax = 750 * time.Millisecond
	WhoClickMin      = 200 * time.Millisecond
	WhoClickMax      = 300 * time.Millisecond
	WhoTypeMin       = 300 * time.Millisecond
	WhoTypeMax       = 500 * time.Millisecond
	WhoResultsMin    = 1500 * time.Millisecond
	WhoResultsMax    = 2000 * time.Millisecond
	WhoCooldown      = 60 * time.Second

	// Scheduler task names
	TaskFocusCheck = "focus check"
	TaskAutosave   = "autosave"
	TaskPublish    = "status publish"

	FocusCheckInterval  = 1 * time.Second
	AutosaveInterval    = 30 * time.Second
	SchedulerResolution = 250 * time.Millisecond
	IdlePollInterval    = 500 * time.Millisecond
	ErrorBackoff        = 5 * time.Second

	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth  = 600
	MainWindowHeight = 400
	ConsoleMaxLines  = 100
	RangeMaxDigits   = 2
	TimeFormatLog    = "01/02/2006 03:04:05 PM"
	RangePlaceholder = "--"

	// Preference Keys
	PrefLanguage   = "language"
	PrefServerPort = "server_port"
	PrefLastRun    = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyLblFaction     = "lbl_faction"
	TKeyLblRange       = "lbl_range"
	TKeyHintRange      = "hint_range"
	TKeyNextRange      = "next_range"       // Requires Start, End
	TKeyNextRangeEmpty = "next_range_empty" // Placeholder before input
	TKeyStatCurrent    = "stat_current_range"
	TKeyStatRecruits   = "stat_recruits"
	TKeyStatProcessed  = "stat_processed"
	TKeyStatFailed     = "stat_failed"
	TKeyStatStatus     = "stat_status"
	TKeyStatusStopped  = "status_stopped"
	TKeyStatusRunning  = "status_running"
	TKeyStatusPaused   = "status_paused"
	TKeyBtnStart       = "btn_start"
	TKeyBtnStop        = "btn_stop"
	TKeyBtnPause       = "btn_pause"
	TKeyLblConsole     = "lbl_console"
	TKeyLblLanguage    = "lbl_language"

	// Validation Errors (UI)
	TKeyErrRangeNum   = "err_range_number"
	TKeyErrRangeBound = "err_range_bounds"
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18081"
	DefaultLanguage = "en"
)

// -----------------------------------------------------------------------------
// Network
// -----------------------------------------------------------------------------

const (
	RetryAfterSeconds = "5"
	AllowedMethods    = "GET, HEAD"
	RouteRoot         = "/"
	AddrSeparator     = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderLastModified = "Last-Modified"
	HeaderRetryAfter   = "Retry-After"
	HeaderAllow        = "Allow"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderIfNoneMatch  = "If-None-Match"
	HeaderIfModSince   = "If-Modified-Since"

	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrWindowNotFound    = "target window not found"
	ErrWindowActivate    = "failed to activate target window"
	ErrCapture           = "screen capture failed"
	ErrScreenGrab        = "screen grab returned no bitmap"
	ErrExtraction        = "text extraction failed"
	ErrInvite            = "invite keystroke sequence failed"
	ErrWhoCooldown       = "who command is cooling down"
	ErrWho               = "who command failed"
	ErrRangeNotNumber    = "range must be a number"
	ErrRangeBounds       = "range must be between 1 and 80"
	ErrInvalidTransition = "invalid run state transition"
	ErrRegionMissing     = "screen region is not calibrated"
	ErrPersistence       = "persistence failure"
	ErrCalibration       = "failed to load calibration file"
	ErrOCRInit           = "failed to initialise OCR engine"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrDebugDump         = "failed to save debug capture"
	ErrStatusEncode      = "failed to encode status snapshot"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Status initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Status cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgCalibration     = "Calibration overlay applied"
	MsgWindowFound     = "Target window located"
	MsgWindowActivated = "Target window activated"
	MsgPageNames       = "Names captured on page"
	MsgPageEmpty       = "Page treated as empty"
	MsgCollectDone     = "Name collection finished"
	MsgQueueBuilt      = "Pending queue rebuilt"
	MsgQueueResume     = "Resuming leftover queue"
	MsgInviteSent      = "Invite sent"
	MsgInviteSkipped   = "Already processed today"
	MsgInviteFailed    = "Invite failed"
	MsgInviteHalted    = "Invite loop halted"
	MsgWhoSent         = "Who command sent"
	MsgWhoWait         = "Waiting for who cooldown"
	MsgCycleStart      = "Recruitment cycle started"
	MsgCycleDone       = "Recruitment cycle finished"
	MsgCycleFailed     = "Recruitment cycle failed"
	MsgRunStarted      = "Recruitment started"
	MsgRunStopped      = "Recruitment stopped"
	MsgRunPaused       = "Recruitment paused"
	MsgRunResumed      = "Recruitment resumed"
	MsgFocusLost       = "Game window lost focus - paused"
	MsgStartRefused    = "Refusing to start"
	MsgStateSaved      = "Run state saved"
	MsgStateRestored   = "Run state restored"
	MsgGeometrySaved   = "Window geometry saved"
	MsgFactionSaved    = "Faction saved"
	MsgPersistFallback = "Using empty default after read failure"
	MsgWorkerStart     = "Recruitment worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgDebugSaved      = "Debug capture saved"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyTitle     = "title"
	LogKeyPID       = "pid"
	LogKeyCycle     = "cycle"
	LogKeyRange     = "range"
	LogKeyPage      = "page"
	LogKeyNames     = "names"
	LogKeyName      = "name"
	LogKeyCount     = "count"
	LogKeyQueued    = "queued"
	LogKeyInvited   = "invited"
	LogKeySkipped   = "skipped"
	LogKeyFailed    = "failed"
	LogKeyDate      = "date"
	LogKeyState     = "state"
	LogKeyWait      = "wait"
	LogKeyFaction   = "faction"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompEngine   = "engine"
	CompCollect  = "collector"
	CompInvite   = "invite"
	CompWho      = "who"
	CompStore    = "store"
	CompServer   = "server"
	CompWorker   = "worker"
	CompSchedule = "scheduler"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompDesktop  = "desktop"
	CompOCR      = "ocr"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
)
