package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNormalizePaths(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "absolute path passes through",
			paths: []string{"/absolute/**/*.js"},
			want:  []string{"/absolute/**/*.js"},
		},
		{
			name:  "relative path is resolved against root",
			paths: []string{"relative/**/*.php"},
			want:  []string{"/root/relative/**/*.php"},
		},
		{
			name:  "mixed paths keep their order",
			paths: []string{"/absolute/**/*.js", "relative/**/*.php"},
			want:  []string{"/absolute/**/*.js", "/root/relative/**/*.php"},
		},
		{
			name:  "dot segments are cleaned",
			paths: []string{"./source/../config.php"},
			want:  []string{"/root/config.php"},
		},
		{
			name:  "no paths",
			paths: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizePaths("/root", tt.paths...))
		})
	}
}

func TestNewGlobSet_InvalidPattern(t *testing.T) {
	_, err := domain.NewGlobSet("/root", []string{"source/[*.md"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidGlobPattern)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "/root/source/[*.md", zErr.Metadata()["pattern"])
}

func TestNewGlobSet_NormalizesPatterns(t *testing.T) {
	set, err := domain.NewGlobSet("/root", []string{"config.php"}, []string{"cache/**"})
	require.NoError(t, err)

	assert.Equal(t, "/root", set.Root())
	assert.Equal(t, []string{"/root/config.php"}, set.Included())
	assert.Equal(t, []string{"/root/cache/**"}, set.Excluded())
}

func TestGlobSet_Match(t *testing.T) {
	set, err := domain.NewGlobSet("/root", domain.DefaultWatchFiles(), domain.DefaultIgnoredFiles())
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "config file", path: "/root/config.php", want: true},
		{name: "bootstrap file", path: "/root/bootstrap.php", want: true},
		{name: "other root php file", path: "/root/other.php", want: false},
		{name: "nested listener", path: "/root/listeners/deep/Listener.php", want: true},
		{name: "markdown source", path: "/root/source/_posts/hello.md", want: true},
		{name: "blade source", path: "/root/source/_layouts/main.blade.php", want: true},
		{name: "html source", path: "/root/source/index.html", want: true},
		{name: "css source is not watched", path: "/root/source/css/main.css", want: false},
		{name: "temporary file is ignored", path: "/root/source/_tmp/draft.md", want: false},
		{name: "nested temporary file is ignored", path: "/root/source/blog/_tmp/draft.md", want: false},
		{name: "relative path", path: "source/index.md", want: true},
		{name: "outside root", path: "/elsewhere/source/index.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Match(tt.path))
		})
	}
}

func TestGlobSet_Match_ExcludedWins(t *testing.T) {
	set, err := domain.NewGlobSet("/root", []string{"source/**/*.md"}, []string{"source/drafts/**"})
	require.NoError(t, err)

	assert.True(t, set.Match("/root/source/posts/a.md"))
	assert.False(t, set.Match("/root/source/drafts/a.md"))
	assert.True(t, set.Excludes("/root/source/drafts/a.md"))
	assert.False(t, set.Excludes("/root/source/posts/a.md"))
}

func TestGlobSet_Match_RelativeAndAbsoluteAgree(t *testing.T) {
	set, err := domain.NewGlobSet("/root", []string{"source/**/*.php"}, nil)
	require.NoError(t, err)

	assert.Equal(t, set.Match("/root/source/foo.php"), set.Match("source/foo.php"))
	assert.True(t, set.Match("source/foo.php"))
	assert.Equal(t, set.Match("/root/relative/source/foo.php"), set.Match("relative/source/foo.php"))
}

func TestGlobSet_Match_SingleFile(t *testing.T) {
	set, err := domain.NewGlobSet("/root", []string{"config.php"}, []string{})
	require.NoError(t, err)

	assert.True(t, set.Match("/root/config.php"))
	assert.False(t, set.Match("/root/other.php"))
}
