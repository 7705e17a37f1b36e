package ui

import (
	"fmt"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallpaperio/wallpaperio/config"
)

type freq string

func (f freq) String() string { return string(f) }

func newTestTray(t *testing.T) (*TrayApp, *config.AppConfig) {
	a := test.NewTempApp(t)
	cfg := config.NewAppConfig(a.Preferences())
	return NewTrayApp(a, cfg), cfg
}

func labels(menu *fyne.Menu) []string {
	out := make([]string, 0, len(menu.Items))
	for _, item := range menu.Items {
		if item.IsSeparator {
			continue
		}
		out = append(out, item.Label)
	}
	return out
}

func TestBuildMenu(t *testing.T) {
	tray, _ := newTestTray(t)

	called := make(chan string, 4)
	selected := -1
	menu := tray.BuildMenu(Actions{
		Fetch:   func() { called <- LabelFetch },
		Random:  func() { called <- LabelRandom },
		Dislike: func() { called <- LabelDislike },
		SetFrequency: func(i int) {
			selected = i
		},
		Quit: func() {},
	}, []fmt.Stringer{freq("Every Minute"), freq("Every 5 Minutes")}, 1)

	assert.Equal(t, []string{
		LabelFetch, LabelRandom, LabelDislike,
		LabelChangeLocation, LabelFrequency, LabelNotifications,
		LabelQuit,
	}, labels(menu))

	for _, item := range menu.Items[:3] {
		item.Action()
		select {
		case got := <-called:
			assert.Equal(t, item.Label, got)
		case <-time.After(time.Second):
			t.Fatalf("%s did not run", item.Label)
		}
	}

	freqMenu := menu.Items[5]
	require.NotNil(t, freqMenu.ChildMenu)
	items := freqMenu.ChildMenu.Items
	require.Len(t, items, 2)
	assert.False(t, items[0].Checked)
	assert.True(t, items[1].Checked)

	items[0].Action()
	assert.Equal(t, 0, selected)
	assert.True(t, items[0].Checked)
	assert.False(t, items[1].Checked)
}

func TestNotificationsToggle(t *testing.T) {
	tray, cfg := newTestTray(t)
	menu := tray.BuildMenu(Actions{}, nil, 0)

	var toggle *fyne.MenuItem
	for _, item := range menu.Items {
		if item.Label == LabelNotifications {
			toggle = item
		}
	}
	require.NotNil(t, toggle)
	assert.True(t, toggle.Checked)

	toggle.Action()
	assert.False(t, cfg.GetAppNotificationsEnabled())
	assert.False(t, toggle.Checked)
}

func TestNotifyUser(t *testing.T) {
	tray, cfg := newTestTray(t)

	test.AssertNotificationSent(t, fyne.NewNotification("Title", "Message"), func() {
		tray.NotifyUser("Title", "Message")
	})

	cfg.SetAppNotificationsEnabled(false)
	test.AssertNotificationSent(t, nil, func() {
		tray.NotifyUser("Title", "Message")
	})
}

func TestBuildDisabledMenu(t *testing.T) {
	tray, _ := newTestTray(t)
	quit := false
	menu := tray.BuildDisabledMenu("Folder unavailable", func() { quit = true })

	assert.Equal(t, []string{"Folder unavailable", LabelQuit}, labels(menu))
	assert.True(t, menu.Items[0].Disabled)

	menu.Items[len(menu.Items)-1].Action()
	assert.True(t, quit)
}
