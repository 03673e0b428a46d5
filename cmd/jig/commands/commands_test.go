package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/jig/cmd/jig/commands"
	"go.trai.ch/jig/internal/app"
	"go.trai.ch/jig/internal/build"
)

type mockApp struct {
	serveFunc func(ctx context.Context, opts app.ServeOptions) error
	buildFunc func(ctx context.Context, opts app.BuildOptions) error
}

func (m *mockApp) Serve(ctx context.Context, opts app.ServeOptions) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Serve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.ServeOptions
		called := false

		mock := &mockApp{
			serveFunc: func(_ context.Context, opts app.ServeOptions) error {
				captured = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve", "--env", "staging", "-l", "0.0.0.0:3000", "--json"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, called)
		assert.Equal(t, app.ServeOptions{Env: "staging", Listen: "0.0.0.0:3000", JSONLogs: true}, captured)
	})

	t.Run("defaults leave config in charge", func(t *testing.T) {
		var captured app.ServeOptions
		mock := &mockApp{
			serveFunc: func(_ context.Context, opts app.ServeOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.ServeOptions{}, captured)
	})

	t.Run("passes the context through", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "marker")

		var got any
		mock := &mockApp{
			serveFunc: func(ctx context.Context, _ app.ServeOptions) error {
				got = ctx.Value(key{})
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve"})

		require.NoError(t, cli.Execute(ctx))
		assert.Equal(t, "marker", got)
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		mock := &mockApp{
			serveFunc: func(context.Context, app.ServeOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"serve", "extra"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"build", "-e", "production"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "production", captured.Env)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"build"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "jig version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", buf.String())
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "jig version "+build.Version)
}

func TestCommands_EnvBeforeSubcommand(t *testing.T) {
	var served app.ServeOptions
	var built app.BuildOptions
	mock := &mockApp{
		serveFunc: func(_ context.Context, opts app.ServeOptions) error {
			served = opts
			return nil
		},
		buildFunc: func(_ context.Context, opts app.BuildOptions) error {
			built = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"--env", "staging", "serve"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "staging", served.Env)

	cli = commands.New(mock)
	cli.SetArgs([]string{"-e", "production", "build"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "production", built.Env)
}
