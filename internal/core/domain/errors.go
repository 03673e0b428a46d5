package domain

import "go.trai.ch/zerr"

var (
	// ErrBuildFailed is returned when the external build process exits with a non-zero status.
	ErrBuildFailed = zerr.New("jigsaw build failed")

	// ErrBuildExecutionFailed is returned by the build command when the one-shot build fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrJigsawNotFound is returned when no Jigsaw binary can be located.
	ErrJigsawNotFound = zerr.New("could not find Jigsaw; please install it via Composer")

	// ErrEmptyBuildCommand is returned when a build is requested without a command.
	ErrEmptyBuildCommand = zerr.New("build command is empty")

	// ErrTaskPanicked is returned to the waiter of a queued operation that panicked.
	ErrTaskPanicked = zerr.New("queued operation panicked")

	// ErrInvalidGlobPattern is returned when a watch pattern is not a valid glob.
	ErrInvalidGlobPattern = zerr.New("invalid glob pattern")

	// ErrInvalidDelay is returned when the configured reload delay is negative.
	ErrInvalidDelay = zerr.New("delay must not be negative")

	// ErrInvalidDebounce is returned when the configured debounce window is negative.
	ErrInvalidDebounce = zerr.New("debounce must not be negative")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrServerFailed is returned when the dev server stops with an error.
	ErrServerFailed = zerr.New("dev server failed")

	// ErrHotFileWriteFailed is returned when the hot file cannot be written.
	ErrHotFileWriteFailed = zerr.New("failed to write hot file")
)
