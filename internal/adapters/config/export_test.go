package config

// NewLoaderWithEnv creates a Loader reading fallbacks from env instead of the process.
func NewLoaderWithEnv(env map[string]string) *Loader {
	return &Loader{getenv: func(key string) string { return env[key] }}
}
