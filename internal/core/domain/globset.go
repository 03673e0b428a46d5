package domain

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// NormalizePaths resolves each path against root and converts it to a slash-separated
// absolute form. Absolute paths are cleaned but otherwise left untouched.
func NormalizePaths(root string, paths ...string) []string {
	normalized := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		normalized = append(normalized, filepath.ToSlash(filepath.Clean(p)))
	}
	return normalized
}

// GlobSet decides which paths are interesting to the rebuild loop.
// It is immutable once created.
type GlobSet struct {
	root     string
	included []string
	excluded []string
}

// NewGlobSet normalizes the given patterns against root and validates them.
func NewGlobSet(root string, included, excluded []string) (GlobSet, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return GlobSet{}, zerr.With(zerr.Wrap(err, ErrFailedToGetRoot.Error()), "root", root)
	}

	set := GlobSet{
		root:     absRoot,
		included: NormalizePaths(absRoot, included...),
		excluded: NormalizePaths(absRoot, excluded...),
	}

	for _, group := range [][]string{set.included, set.excluded} {
		for _, pattern := range group {
			if !doublestar.ValidatePattern(pattern) {
				return GlobSet{}, zerr.With(zerr.Wrap(ErrInvalidGlobPattern, "failed to compile watch patterns"), "pattern", pattern)
			}
		}
	}

	return set, nil
}

// Root returns the absolute directory relative patterns were resolved against.
func (g GlobSet) Root() string {
	return g.root
}

// Included returns the normalized trigger patterns.
func (g GlobSet) Included() []string {
	return append([]string(nil), g.included...)
}

// Excluded returns the normalized suppression patterns.
func (g GlobSet) Excluded() []string {
	return append([]string(nil), g.excluded...)
}

// Match reports whether path matches an included pattern and no excluded pattern.
// Relative paths are resolved against the set's root first.
func (g GlobSet) Match(path string) bool {
	candidate := NormalizePaths(g.root, path)[0]
	return matchAny(g.included, candidate) && !matchAny(g.excluded, candidate)
}

// Excludes reports whether path matches an excluded pattern.
func (g GlobSet) Excludes(path string) bool {
	return matchAny(g.excluded, NormalizePaths(g.root, path)[0])
}

func matchAny(patterns []string, candidate string) bool {
	for _, pattern := range patterns {
		// Patterns are validated in NewGlobSet, so the error is always nil here.
		if ok, _ := doublestar.Match(pattern, candidate); ok {
			return true
		}
	}
	return false
}
