package app_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/jig/internal/adapters/reload"
	"go.trai.ch/jig/internal/adapters/telemetry"
	"go.trai.ch/jig/internal/app"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/jig/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader  *mocks.MockConfigLoader
	builder *mocks.MockBuilder
	watcher *mocks.MockWatcher
	logger  *mocks.MockLogger
	app     *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	metrics := telemetry.NewMetrics()
	f := &fixture{
		loader:  mocks.NewMockConfigLoader(ctrl),
		builder: mocks.NewMockBuilder(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	f.app = app.New(f.loader, f.builder, f.watcher, reload.NewHub(metrics), metrics, f.logger)
	return f
}

// messages records Info calls so tests can wait for them.
type messages struct {
	mu   sync.Mutex
	list []string
}

func (m *messages) record(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, msg)
}

func (m *messages) contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.list, func(msg string) bool {
		return strings.Contains(msg, substr)
	})
}

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Command = []string{"php", "vendor/bin/jigsaw", "build"}
	cfg.Listen = "127.0.0.1:0"
	return cfg
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig(t)

	f.loader.EXPECT().Load(".").Return(cfg, nil)
	f.builder.EXPECT().Build(gomock.Any(), &domain.BuildCommand{
		Args: []string{"php", "vendor/bin/jigsaw", "build"},
		Dir:  cfg.Root,
	}).Return(nil)
	f.logger.EXPECT().Info("Jigsaw build completed.")

	require.NoError(t, f.app.Build(t.Context(), app.BuildOptions{}))
}

func TestApp_Build_Failure(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(".").Return(testConfig(t), nil)
	f.builder.EXPECT().Build(gomock.Any(), gomock.Any()).
		Return(zerr.Wrap(errors.New("exit status 2"), domain.ErrBuildFailed.Error()))

	err := f.app.Build(t.Context(), app.BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, err, domain.ErrBuildFailed.Error())
}

func TestApp_Build_EnvOverride(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	bin := filepath.Join(root, filepath.FromSlash(domain.VendorBinPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	f.loader.EXPECT().Load(".").Return(domain.DefaultConfig(root), nil)
	f.builder.EXPECT().Build(gomock.Any(), domain.NewJigsawCommand(bin, "production", root)).Return(nil)
	f.logger.EXPECT().Info(gomock.Any())

	require.NoError(t, f.app.Build(t.Context(), app.BuildOptions{Env: "production"}))
}

func TestApp_Build_ConfigError(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigParseFailed)

	err := f.app.Build(t.Context(), app.BuildOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to load configuration")
	assert.NotErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestApp_Serve(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig(t)
	cfg.Refresh = false
	hotFile := filepath.Join(cfg.Root, domain.DefaultHotFile)

	var infos messages
	f.loader.EXPECT().Load(".").Return(cfg, nil)
	f.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(nil)
	f.logger.EXPECT().Info(gomock.Any()).Do(infos.record).AnyTimes()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f.app.Serve(ctx, app.ServeOptions{})
	}()

	require.Eventually(t, func() bool {
		return infos.contains("Initial Jigsaw build completed.") && infos.contains("JIGSAW")
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, infos.contains("Dev server running at http://127.0.0.1:"))

	url, err := os.ReadFile(hotFile)
	require.NoError(t, err)

	resp, err := http.Get(string(url) + "/_jig/client.js")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, reload.ClientScript, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.NoFileExists(t, hotFile)
}

func TestApp_Serve_RebuildsOnChange(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig(t)
	cfg.HotFile = ""

	events := make(chan ports.WatchEvent)
	var stopOnce sync.Once
	f.loader.EXPECT().Load(".").Return(cfg, nil)
	f.watcher.EXPECT().Start(gomock.Any(), cfg.Root, cfg.Ignored).Return(nil)
	f.watcher.EXPECT().Events().Return(func(yield func(ports.WatchEvent) bool) {
		for event := range events {
			if !yield(event) {
				return
			}
		}
	})
	f.watcher.EXPECT().Stop().DoAndReturn(func() error {
		stopOnce.Do(func() { close(events) })
		return nil
	})
	f.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	announced := make(chan string, 1)
	f.logger.EXPECT().Announce(gomock.Any(), true).Do(func(msg string, _ bool) {
		announced <- msg
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f.app.Serve(ctx, app.ServeOptions{})
	}()

	path := filepath.Join(cfg.Root, "source", "index.md")
	select {
	case events <- ports.WatchEvent{Path: path, Operation: ports.OpWrite}:
	case <-time.After(5 * time.Second):
		t.Fatal("event was not consumed")
	}

	select {
	case msg := <-announced:
		assert.Contains(t, msg, "full reload for source/index.md - build: ")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload announced")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestApp_Serve_WatcherFailure(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig(t)
	cfg.HotFile = ""

	f.loader.EXPECT().Load(".").Return(cfg, nil)
	f.watcher.EXPECT().Start(gomock.Any(), cfg.Root, cfg.Ignored).Return(domain.ErrWatcherStartFailed)

	err := f.app.Serve(t.Context(), app.ServeOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWatcherStartFailed)
}
