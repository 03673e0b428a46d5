package domain

import "time"

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "jig.yaml"

	// DefaultOutDir is the asset build directory inside a Jigsaw project.
	DefaultOutDir = "source/assets/build"

	// DefaultEnv is the Jigsaw environment used for development builds.
	DefaultEnv = "local"

	// DefaultListen is the address the dev server binds to.
	DefaultListen = "localhost:5173"

	// DefaultHotFile is the file the dev server URL is written to while serving.
	DefaultHotFile = "hot"

	// UndefinedAppURL is shown on the placeholder page when no APP_URL is configured.
	UndefinedAppURL = "undefined"

	// AppURLEnv is the environment variable consulted for the site URL.
	AppURLEnv = "APP_URL"

	// VendorBinPath is where Composer installs the Jigsaw binary.
	VendorBinPath = "vendor/bin/jigsaw"

	// ComposerLockFile holds the installed Jigsaw version.
	ComposerLockFile = "composer.lock"

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// BuildSpanName is the name of the trace span recorded around every site build.
	BuildSpanName = "jigsaw.build"

	// BannerDelay is how long after startup the version banner is printed.
	BannerDelay = 100 * time.Millisecond
)

// DefaultWatchFiles are the patterns that trigger a rebuild when refresh is enabled.
func DefaultWatchFiles() []string {
	return []string{
		"config.php",
		"bootstrap.php",
		"listeners/**/*.php",
		"source/**/*.md",
		"source/**/*.php",
		"source/**/*.html",
	}
}

// DefaultIgnoredFiles are the patterns that never trigger a rebuild.
func DefaultIgnoredFiles() []string {
	return []string{
		"build_**/**",
		"cache/**",
		"source/**/_tmp/*",
	}
}
