// Package config loads the jig.yaml project configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a new Loader reading fallbacks from the process environment.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// Load finds jig.yaml in cwd or one of its parents and resolves it.
// Without a config file the defaults apply, rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "cwd", cwd)
	}

	configPath, found := findConfiguration(absCwd)
	if !found {
		cfg := domain.DefaultConfig(absCwd)
		cfg.AppURL = l.appURL("")
		return cfg, nil
	}

	var jigfile Jigfile
	if err := readAndUnmarshalYAML(configPath, &jigfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg, err := l.resolve(configPath, &jigfile)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func (l *Loader) resolve(configPath string, jf *Jigfile) (*domain.Config, error) {
	if jf.Delay < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidDelay, "invalid configuration"), "delay", jf.Delay)
	}
	if jf.Debounce < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidDebounce, "invalid configuration"), "debounce", jf.Debounce)
	}

	cfg := domain.DefaultConfig(resolveRoot(configPath, jf.Root))
	cfg.AppURL = l.appURL(jf.AppURL)
	cfg.Refresh = !jf.Refresh.Disabled
	if jf.Refresh.Files != nil {
		cfg.Files = jf.Refresh.Files
	}
	if jf.Refresh.Ignored != nil {
		cfg.Ignored = jf.Refresh.Ignored
	}
	if jf.Always != nil {
		cfg.Policy.Always = *jf.Always
	}
	cfg.Policy.Delay = time.Duration(jf.Delay) * time.Millisecond
	cfg.Debounce = time.Duration(jf.Debounce) * time.Millisecond

	cfg.OutDir = valueOr(jf.OutDir, cfg.OutDir)
	cfg.Env = valueOr(jf.Env, cfg.Env)
	cfg.Listen = valueOr(jf.Listen, cfg.Listen)
	cfg.HotFile = valueOr(jf.HotFile, cfg.HotFile)
	cfg.Command = jf.Command
	cfg.ServeOutput = jf.ServeOutput
	cfg.Coalesce = jf.Coalesce

	return cfg, nil
}

// appURL picks the configured site URL, then APP_URL, then the placeholder value.
func (l *Loader) appURL(configured string) string {
	if configured != "" {
		return configured
	}
	if fromEnv := l.getenv(domain.AppURLEnv); fromEnv != "" {
		return fromEnv
	}
	return domain.UndefinedAppURL
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into target.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
