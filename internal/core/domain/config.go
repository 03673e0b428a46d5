package domain

import "time"

// Config is the resolved project configuration.
type Config struct {
	// Root is the absolute project directory relative patterns resolve against.
	Root string
	// Refresh enables watching and rebuilding on change.
	Refresh bool
	// Files are the patterns that trigger a rebuild.
	Files []string
	// Ignored are the patterns that never trigger a rebuild.
	Ignored []string
	// Policy controls the reload broadcast.
	Policy RefreshPolicy
	// OutDir is the asset output directory.
	OutDir string
	// Env is the Jigsaw environment passed to the build.
	Env string
	// Command overrides the build command line when not empty.
	Command []string
	// Listen is the dev server address.
	Listen string
	// AppURL is the address of the served site shown on the placeholder page.
	AppURL string
	// ServeOutput serves the built site from the dev server.
	// The site directory follows the environment, see SiteBuildDir.
	ServeOutput bool
	// Coalesce collapses pending rebuilds into one.
	Coalesce bool
	// Debounce coalesces repeated events for one path. Zero disables it.
	Debounce time.Duration
	// HotFile receives the dev server URL while serving.
	HotFile string
}

// DefaultConfig returns the configuration used when no config file is present.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:    root,
		Refresh: true,
		Files:   DefaultWatchFiles(),
		Ignored: DefaultIgnoredFiles(),
		Policy:  RefreshPolicy{Always: true},
		OutDir:  DefaultOutDir,
		Env:     DefaultEnv,
		Listen:  DefaultListen,
		AppURL:  UndefinedAppURL,
		HotFile: DefaultHotFile,
	}
}

// SiteBuildDir returns the directory Jigsaw writes the given environment to.
func SiteBuildDir(env string) string {
	return "build_" + env
}
