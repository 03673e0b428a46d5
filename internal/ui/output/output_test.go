package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/jig/internal/ui/output"
)

func TestProfile(t *testing.T) {
	t.Run("NO_COLOR wins over FORCE_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		t.Setenv("FORCE_COLOR", "1")
		assert.Equal(t, termenv.Ascii, output.Profile(&bytes.Buffer{}))
	})

	t.Run("pipes are plain", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("FORCE_COLOR", "")
		assert.Equal(t, termenv.Ascii, output.Profile(&bytes.Buffer{}))
	})

	t.Run("FORCE_COLOR keeps the environment profile", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("FORCE_COLOR", "1")
		assert.Equal(t, termenv.EnvColorProfile(), output.Profile(&bytes.Buffer{}))
	})
}

func TestNew_PlainForBuffers(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")

	buf := &bytes.Buffer{}
	out := output.New(buf)
	_, err := out.WriteString(out.String("hello").Bold().String())

	assert.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, output.IsTerminal(&bytes.Buffer{}))
	assert.False(t, output.IsTerminal(nil))
}
