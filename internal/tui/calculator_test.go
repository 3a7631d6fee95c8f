package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
	"github.com/KaramelBytes/gymbmi/internal/session"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func send(m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

// fill moves from the name field down to weight, typing as it goes.
func fill(m tea.Model, name, age, height, weight string, sexSteps int) tea.Model {
	m = typeText(m, name)
	m = send(m, key(tea.KeyTab))
	for i := 0; i < sexSteps; i++ {
		m = send(m, key(tea.KeyRight))
	}
	m = send(m, key(tea.KeyTab), key(tea.KeyTab))
	m = typeText(m, age)
	m = send(m, key(tea.KeyTab))
	m = typeText(m, height)
	m = send(m, key(tea.KeyTab))
	return typeText(m, weight)
}

func TestCalculatorSubmit(t *testing.T) {
	s := session.New()
	var m tea.Model = NewCalculator(s, t.TempDir())
	m = fill(m, "Ana", "30", "1,70", "70", 1)

	in, err := m.(CalculatorModel).Input()
	require.NoError(t, err)
	assert.Equal(t, record.SexFemale, in.Sex)
	assert.Equal(t, record.RaceWhite, in.Race)
	assert.Equal(t, bmi.Known(1.7), in.HeightM)

	m = send(m, key(tea.KeyEnter))
	cm := m.(CalculatorModel)
	require.NoError(t, cm.err)
	require.NotNil(t, cm.last)
	assert.Equal(t, bmi.Known(24.22), cm.last.BMI)
	assert.Equal(t, 1, s.History().Len())
	assert.Contains(t, cm.View(), "Normal weight")
}

func TestCalculatorRejectsBadInput(t *testing.T) {
	s := session.New()
	var m tea.Model = NewCalculator(s, t.TempDir())
	m = fill(m, "", "", "3.1", "70", 0)
	m = send(m, key(tea.KeyEnter))

	cm := m.(CalculatorModel)
	var ie *session.InputError
	require.True(t, errors.As(cm.err, &ie))
	assert.Equal(t, record.ColHeight, ie.Field)
	assert.Equal(t, 0, s.History().Len())
	assert.Contains(t, cm.View(), "out of range")

	m = NewCalculator(s, t.TempDir())
	m = fill(m, "", "abc", "1.7", "70", 0)
	m = send(m, key(tea.KeyEnter))
	assert.Error(t, m.(CalculatorModel).err)
	assert.Equal(t, 0, s.History().Len())
}

func TestCalculatorFocusWraps(t *testing.T) {
	var m tea.Model = NewCalculator(session.New(), t.TempDir())
	m = send(m, key(tea.KeyShiftTab))
	assert.Equal(t, fieldWeight, m.(CalculatorModel).focus)
	m = send(m, key(tea.KeyTab))
	assert.Equal(t, fieldName, m.(CalculatorModel).focus)

	// Selectors wrap too.
	m = send(m, key(tea.KeyTab), key(tea.KeyLeft))
	assert.Equal(t, string(record.SexOther), m.(CalculatorModel).fields[fieldSex].value())
}

func TestCalculatorExport(t *testing.T) {
	dir := t.TempDir()
	s := session.New()
	var m tea.Model = NewCalculator(s, dir)

	m = send(m, key(tea.KeyCtrlS))
	assert.Error(t, m.(CalculatorModel).err)

	m = fill(m, "Ana", "30", "1.70", "70", 1)
	m = send(m, key(tea.KeyEnter), key(tea.KeyCtrlS), key(tea.KeyCtrlS))
	require.NoError(t, m.(CalculatorModel).err)

	first, err := os.ReadFile(filepath.Join(dir, "history.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(first), "name,sex,race_or_ethnicity,age,height_m,weight_kg,bmi,category\n"))
	assert.Contains(t, string(first), "Ana,Female,White,30,1.7,70,24.22,Normal weight")
	assert.FileExists(t, filepath.Join(dir, "history__2.csv"))
}

func TestCalculatorQuit(t *testing.T) {
	m := NewCalculator(session.New(), t.TempDir())
	_, cmd := m.Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
