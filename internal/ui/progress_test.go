package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestProgressModelUpdate(t *testing.T) {
	var cancelled bool
	m := newProgressModel("Hashing", 200, func() { cancelled = true })

	next, cmd := m.Update(progressMsg(50))
	m = next.(progressModel)
	assert.Nil(t, cmd)
	assert.EqualValues(t, 50, m.done)
	assert.InDelta(t, 0.25, m.percent(), 1e-9)
	assert.Contains(t, m.View(), "Hashing")
	assert.Contains(t, m.View(), "50 B / 200 B")

	next, cmd = m.Update(progressMsg(500))
	m = next.(progressModel)
	assert.Equal(t, 1.0, m.percent())

	next, cmd = m.Update(doneMsg{err: errors.New("x")})
	m = next.(progressModel)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.False(t, cancelled)
}

func TestProgressModelCtrlC(t *testing.T) {
	var cancelled bool
	m := newProgressModel("Hashing", 10, func() { cancelled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, cancelled)
	assert.True(t, next.(progressModel).quitting)
	assert.NotNil(t, cmd)
}

func TestProgressModelEmptyTotal(t *testing.T) {
	m := newProgressModel("Hashing", 0, func() {})
	assert.Equal(t, 1.0, m.percent())
}

func TestProgressModelResize(t *testing.T) {
	m := newProgressModel("Hashing", 10, func() {})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 30})
	assert.Equal(t, 26, next.(progressModel).bar.Width)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 300})
	assert.Equal(t, maxBarWidth, next.(progressModel).bar.Width)
}
