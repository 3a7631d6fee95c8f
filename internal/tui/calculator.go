// Package tui is the interactive quick calculator: a form, the running history and
// its KPIs.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/output"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/record"
	"github.com/KaramelBytes/gymbmi/internal/session"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

const (
	fieldName = iota
	fieldSex
	fieldRace
	fieldAge
	fieldHeight
	fieldWeight
	fieldCount
)

// field is one form row. Fields with choices are selectors cycled with ←/→.
type field struct {
	label   string
	input   textinput.Model
	choices []string
	choice  int
}

func (f field) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

// CalculatorModel is the bubbletea model of the quick calculator.
type CalculatorModel struct {
	sess      *session.Session
	exportDir string

	fields []field
	focus  int
	table  table.Model

	last   *record.Person
	err    error
	status string
	width  int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 24
	return ti
}

func labels[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// NewCalculator builds the form bound to sess. Exports land in exportDir.
func NewCalculator(sess *session.Session, exportDir string) CalculatorModel {
	fields := make([]field, fieldCount)
	fields[fieldName] = field{label: "Name", input: newInput("optional", 60)}
	fields[fieldSex] = field{label: "Sex", choices: labels(record.Sexes)}
	fields[fieldRace] = field{label: "Race", choices: labels(record.Races)}
	fields[fieldAge] = field{label: "Age", input: newInput(fmt.Sprintf("%d–%d, optional", session.MinAge, session.MaxAge), 3)}
	fields[fieldHeight] = field{label: "Height m", input: newInput(fmt.Sprintf("%g–%g", session.MinHeightM, session.MaxHeightM), 6)}
	fields[fieldWeight] = field{label: "Weight kg", input: newInput(fmt.Sprintf("%g–%g", session.MinWeightKg, session.MaxWeightKg), 6)}
	fields[fieldName].input.Focus()

	cols := make([]table.Column, len(record.HistoryColumns))
	for i, c := range record.HistoryColumns {
		w := 10
		switch c {
		case record.ColName, record.ColRace:
			w = 16
		case record.ColCategory:
			w = 14
		case record.ColAge:
			w = 5
		}
		cols[i] = table.Column{Title: c, Width: w}
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))

	m := CalculatorModel{sess: sess, exportDir: exportDir, fields: fields, table: t}
	m.refresh()
	return m
}

// Init initializes the model
func (m CalculatorModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m CalculatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "enter":
			m.submit()
			return m, nil
		case "ctrl+s":
			m.export()
			return m, nil
		case "left", "right":
			f := &m.fields[m.focus]
			if f.choices != nil {
				step := 1
				if msg.String() == "left" {
					step = len(f.choices) - 1
				}
				f.choice = (f.choice + step) % len(f.choices)
				return m, nil
			}
		}
	}

	f := &m.fields[m.focus]
	if f.choices != nil {
		return m, nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return m, cmd
}

func (m *CalculatorModel) setFocus(i int) tea.Cmd {
	m.focus = (i + len(m.fields)) % len(m.fields)
	var cmd tea.Cmd
	for j := range m.fields {
		if m.fields[j].choices != nil {
			continue
		}
		if j == m.focus {
			cmd = m.fields[j].input.Focus()
		} else {
			m.fields[j].input.Blur()
		}
	}
	return cmd
}

// Input reads the form. Height and weight are required; age may be left blank.
func (m CalculatorModel) Input() (record.Input, error) {
	in := record.Input{
		Name: m.fields[fieldName].value(),
		Sex:  record.Sex(m.fields[fieldSex].value()),
		Race: record.Race(m.fields[fieldRace].value()),
	}
	if s := m.fields[fieldAge].value(); s != "" {
		a, err := strconv.Atoi(s)
		if err != nil {
			return in, fmt.Errorf("age %q is not a whole number", s)
		}
		in.Age = &a
	}
	var err error
	if in.HeightM, err = number(m.fields[fieldHeight], record.ColHeight); err != nil {
		return in, err
	}
	if in.WeightKg, err = number(m.fields[fieldWeight], record.ColWeight); err != nil {
		return in, err
	}
	return in, nil
}

func number(f field, col string) (bmi.Measure, error) {
	s := f.value()
	if s == "" {
		return bmi.Missing, nil
	}
	v, ok := parser.ParseNumber(s)
	if !ok {
		return bmi.Missing, fmt.Errorf("%s %q is not a number", col, s)
	}
	return bmi.Known(v), nil
}

func (m *CalculatorModel) submit() {
	in, err := m.Input()
	if err == nil {
		var p record.Person
		p, err = m.sess.Calculate(in)
		if err == nil {
			m.last = &p
		}
	}
	m.err = err
	m.status = ""
	m.refresh()
}

func (m *CalculatorModel) export() {
	m.err, m.status = nil, ""
	h := m.sess.History()
	if h.Len() == 0 {
		m.err = errors.New("history is empty")
		return
	}
	data, err := h.Table().CSV()
	if err != nil {
		m.err = err
		return
	}
	path := utils.UniquePath(m.exportDir, "history", ".csv")
	if err := utils.SafeWriteFile(path, data); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + path
}

func (m *CalculatorModel) refresh() {
	rows := m.sess.History().Rows()
	out := make([]table.Row, len(rows))
	for i, p := range rows {
		r := make(table.Row, len(record.HistoryColumns))
		for j, c := range record.HistoryColumns {
			r[j] = p.Field(c)
		}
		out[i] = r
	}
	m.table.SetRows(out)
}

// View renders the UI
func (m CalculatorModel) View() string {
	var form strings.Builder
	for i, f := range m.fields {
		ls := labelStyle
		if i == m.focus {
			ls = activeLabelStyle
		}
		val := f.input.View()
		if f.choices != nil {
			val = choiceStyle.Render("‹ " + f.value() + " ›")
		}
		form.WriteString(ls.Render(f.label) + " " + val + "\n")
	}

	var result string
	switch {
	case m.err != nil:
		result = errorStyle.Render("✗ " + m.err.Error())
	case m.last != nil:
		result = resultStyle.Render(fmt.Sprintf("BMI %s  %s", m.last.BMI, m.last.Category))
	}
	if m.status != "" {
		result = lipgloss.JoinVertical(lipgloss.Left, result, statusStyle.Render(m.status))
	}

	sum := analysis.Summarize(m.sess.History().Rows())
	history := subtitleStyle.Render("No calculations yet.")
	if m.sess.History().Len() > 0 {
		history = m.table.View()
	}

	help := helpStyle.Render(
		FormatKey("tab/↑↓", "field") + " • " +
			FormatKey("←/→", "choose") + " • " +
			FormatKey("enter", "calculate") + " • " +
			FormatKey("ctrl+s", "export csv") + " • " +
			FormatKey("esc", "quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Gym BMI · Quick calculator"),
		boxStyle.Render(strings.TrimRight(form.String(), "\n")),
		result,
		output.KPICards(sum),
		history,
		subtitleStyle.Render(analysis.AdultsNote),
		help,
	)
}

// RunCalculator starts the interactive calculator
func RunCalculator(sess *session.Session, exportDir string) error {
	p := tea.NewProgram(NewCalculator(sess, exportDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
