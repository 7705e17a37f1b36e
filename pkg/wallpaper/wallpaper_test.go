package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wallpaperio/wallpaperio/config"
)

func newTestEngine(t *testing.T) (*Engine, *config.AppConfig, *MockUI) {
	t.Helper()
	cfg := config.NewAppConfig(test.NewTempApp(t).Preferences())
	cfg.SetCatalogPath(filepath.Join(t.TempDir(), "catalog"))

	ui := &MockUI{}
	e, err := NewEngine(cfg, ui, &fakeSink{}, Options{Pacer: rate.NewLimiter(rate.Inf, 1)})
	require.NoError(t, err)
	return e, cfg, ui
}

func TestNewEngineUsesSettings(t *testing.T) {
	cfg := config.NewAppConfig(test.NewTempApp(t).Preferences())
	root := filepath.Join(t.TempDir(), "catalog")
	cfg.SetCatalogPath(root)
	cfg.SetRotationFrequency(int(FrequencyHourly))
	cfg.SetSourceURL("http://example.com/potd")

	e, err := NewEngine(cfg, &MockUI{}, &fakeSink{}, Options{})
	require.NoError(t, err)

	assert.DirExists(t, root)
	assert.Equal(t, root, e.Catalog().Root())
	assert.Equal(t, "http://example.com/potd", e.Controller().sourceURL)
	assert.Equal(t, time.Hour, e.Controller().scheduler.interval)
	assert.Equal(t, FrequencyHourly, e.Frequency())
}

func TestNewEngineDefaults(t *testing.T) {
	e, cfg, _ := newTestEngine(t)

	assert.Equal(t, DefaultFrequency, e.Frequency())
	assert.Equal(t, DefaultFrequency.Duration(), e.Controller().scheduler.interval)
	assert.Equal(t, config.DefaultSourceURL, e.Controller().sourceURL)
	assert.Equal(t, -1, cfg.RotationFrequency())
}

func TestNewEngineCatalogUnavailable(t *testing.T) {
	cfg := config.NewAppConfig(test.NewTempApp(t).Preferences())
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.SetCatalogPath(filepath.Join(blocker, "catalog"))

	_, err := NewEngine(cfg, &MockUI{}, &fakeSink{}, Options{})
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestEngineSetFrequency(t *testing.T) {
	e, cfg, _ := newTestEngine(t)

	e.SetFrequency(int(FrequencyDaily))
	assert.Equal(t, int(FrequencyDaily), cfg.RotationFrequency())
	assert.Equal(t, FrequencyDaily, e.Frequency())

	e.SetFrequency(99)
	assert.Equal(t, int(DefaultFrequency), cfg.RotationFrequency())
}

func TestEngineChangeLocation(t *testing.T) {
	e, cfg, ui := newTestEngine(t)
	parent := t.TempDir()
	target := filepath.Join(parent, config.AppDirName)

	ui.On("PickDirectory", TitleChangeLocation, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(func(string))(parent)
	}).Once()
	done := make(chan struct{})
	ui.On("NotifyUser", TitleRelocated, fmt.Sprintf(MsgRelocatedFmt, target)).Run(func(mock.Arguments) {
		close(done)
	}).Once()

	e.Start(context.Background())
	t.Cleanup(e.Stop)

	e.ChangeLocation()
	wait(t, done, "relocation notice")

	assert.Equal(t, target, cfg.CatalogPath())
	assert.Equal(t, target, e.Catalog().Root())
	assert.DirExists(t, target)
	ui.AssertExpectations(t)
}

func TestEngineRelocateWhileFetching(t *testing.T) {
	e, cfg, ui := newTestEngine(t)
	oldRoot := cfg.CatalogPath()
	ui.On("NotifyUser", TitleRelocateFailed, mock.Anything).Once()

	e.Controller().fetching.Set(true)
	e.Start(context.Background())
	t.Cleanup(e.Stop)

	err := e.relocateTo(t.TempDir())
	assert.True(t, errors.Is(err, errFetchInProgress))
	assert.Equal(t, oldRoot, cfg.CatalogPath())
	ui.AssertExpectations(t)
}

func TestEngineRelocateIgnoresEmptyPick(t *testing.T) {
	e, cfg, _ := newTestEngine(t)
	oldRoot := cfg.CatalogPath()

	assert.NoError(t, e.relocateTo(""))
	assert.Equal(t, oldRoot, cfg.CatalogPath())
}

func TestEngineMenuActions(t *testing.T) {
	e, _, _ := newTestEngine(t)
	quit := false

	actions := e.MenuActions(func() { quit = true })
	assert.NotNil(t, actions.Fetch)
	assert.NotNil(t, actions.Random)
	assert.NotNil(t, actions.Dislike)
	assert.NotNil(t, actions.ChangeLocation)
	assert.NotNil(t, actions.SetFrequency)

	actions.Quit()
	assert.True(t, quit)
}
