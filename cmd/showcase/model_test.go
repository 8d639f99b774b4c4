package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/content"
)

func newTestModel(t *testing.T) (*model, *carousel.ManualScheduler) {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)

	sched := carousel.NewManualScheduler()
	m := newModel(site)
	ctrl, err := carousel.New(site.DefaultProject(), carousel.DefaultConfig(),
		carousel.WithScheduler(sched),
		carousel.WithListener(func(s carousel.Snapshot) { m.Update(snapshotMsg(s)) }),
	)
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	m.attach(ctrl)
	return m, sched
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Navigation(t *testing.T) {
	m, sched := newTestModel(t)
	sched.Advance(time.Second)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.snap.Index)
	assert.False(t, m.snap.AutoAdvance)

	sched.Advance(time.Second)
	m.Update(runes("3"))
	assert.Equal(t, 2, m.snap.Index)

	sched.Advance(time.Second)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.snap.Index)
}

func TestModel_AutoAdvanceArrivesAsMessage(t *testing.T) {
	m, sched := newTestModel(t)
	sched.Advance(4 * time.Second)
	assert.Equal(t, 1, m.snap.Index)
	assert.Equal(t, carousel.EventAutoTick, m.snap.Event)
}

func TestModel_DropsStaleSnapshots(t *testing.T) {
	m, sched := newTestModel(t)
	sched.Advance(time.Second)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	current := m.snap

	m.Update(snapshotMsg(carousel.Snapshot{Version: 1, Index: 0}))
	assert.Equal(t, current.Index, m.snap.Index)
	assert.Equal(t, current.Version, m.snap.Version)
}

func TestModel_ProjectsAndFlags(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "tui-music", m.snap.ProjectID)

	m.Update(runes("f"))
	assert.True(t, m.snap.Fullscreen)
	assert.False(t, m.snap.AutoAdvance)

	m.Update(runes("a"))
	assert.True(t, m.snap.AutoAdvance)

	m.Update(runes("x"))
	assert.Equal(t, carousel.PhaseError, m.snap.Phase)
	assert.Equal(t, carousel.DefaultConfig().PlaceholderRef, m.snap.Item.SourceRef)

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "tui-mail", m.snap.ProjectID)
	assert.Equal(t, carousel.PhaseLoading, m.snap.Phase)

	m.Update(runes("l"))
	assert.Equal(t, carousel.PhaseReady, m.snap.Phase)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, carousel.EventClosed, m.ctrl.Snapshot().Event)
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	assert.Contains(t, out, "Terminal Mail")
	assert.Contains(t, out, "Inbox view")
	assert.Contains(t, out, "1 / 3")
	assert.Contains(t, out, "loading")
}
