package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/jig/internal/adapters/reload"
	"go.trai.ch/jig/internal/adapters/telemetry"
	"go.trai.ch/jig/internal/app"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type testApp struct {
	loader  *mocks.MockConfigLoader
	builder *mocks.MockBuilder
	logger  *mocks.MockLogger
	app     *app.App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctrl := gomock.NewController(t)

	metrics := telemetry.NewMetrics()
	a := &testApp{
		loader:  mocks.NewMockConfigLoader(ctrl),
		builder: mocks.NewMockBuilder(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	a.app = app.New(a.loader, a.builder, mocks.NewMockWatcher(ctrl), reload.NewHub(metrics), metrics, a.logger)
	return a
}

func (a *testApp) provider() ComponentProvider {
	return func(context.Context) (*app.Components, func(), error) {
		return &app.Components{App: a.app, Logger: a.logger}, func() {}, nil
	}
}

func commandConfig(t *testing.T) *domain.Config {
	t.Helper()
	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Command = []string{"php", "vendor/bin/jigsaw", "build"}
	return cfg
}

// TestRun_Success verifies that run returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	a := newTestApp(t)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), a.provider())
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that errors outside the build are logged.
func TestRun_ExecutionError(t *testing.T) {
	a := newTestApp(t)
	a.loader.EXPECT().Load(".").Return(nil, errors.New("load failed"))
	a.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, "load failed")
	})

	exitCode := run(context.Background(), []string{"build"}, io.Discard, a.provider())
	assert.Equal(t, 1, exitCode)
}

// TestRun_BuildFailure verifies that a failed build exits 1 without logging the error again.
func TestRun_BuildFailure(t *testing.T) {
	a := newTestApp(t)
	a.loader.EXPECT().Load(".").Return(commandConfig(t), nil)
	a.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.ErrBuildFailed)

	exitCode := run(context.Background(), []string{"build"}, io.Discard, a.provider())
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that canceling the parent context stops a running build.
func TestRun_Signal(t *testing.T) {
	a := newTestApp(t)
	started := make(chan struct{})

	a.loader.EXPECT().Load(".").Return(commandConfig(t), nil)
	a.builder.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ *domain.BuildCommand) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	codes := make(chan int, 1)
	go func() {
		codes <- run(ctx, []string{"build"}, io.Discard, a.provider())
	}()

	<-started
	cancel()

	select {
	case code := <-codes:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

type errorLog struct{ errs []error }

func (l *errorLog) Error(err error) { l.errs = append(l.errs, err) }

func TestExitCode(t *testing.T) {
	log := &errorLog{}

	assert.Equal(t, exitOK, exitCode(nil, log))
	assert.Equal(t, exitFailure, exitCode(domain.ErrBuildExecutionFailed, log))
	assert.Empty(t, log.errs)

	other := errors.New("boom")
	assert.Equal(t, exitFailure, exitCode(other, log))
	assert.Equal(t, []error{other}, log.errs)
}
