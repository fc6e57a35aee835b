// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/cybrota/clinic/registry"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// InputMode represents what the text input is used for
type InputMode int

const (
	InputModeSearch InputMode = iota
	InputModeCommand
)

// Model represents the Bubble Tea application state
type Model struct {
	ready bool
	mode  InputMode

	textInput      textinput.Model
	patientsList   list.Model
	detailViewport viewport.Model

	// Data
	reg         *registry.Registry
	session     *Session
	detailCache *cache.Cache

	// State
	focusIndex    int // 0: input, 1: patients list, 2: details
	patients      []patientItem
	lastQuery     string
	statusMessage string
	statusIsError bool

	// Styling
	styles          *Styles
	glamourRenderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int
}

// Styles holds all the styling for the application
type Styles struct {
	BorderFocused  lipgloss.Style
	BorderBlurred  lipgloss.Style
	Title          lipgloss.Style
	HelpKey        lipgloss.Style
	HelpDesc       lipgloss.Style
	SuccessMessage lipgloss.Style
	ErrorMessage   lipgloss.Style
}

// NewStyles creates the styles from the active color scheme
func NewStyles(scheme *ColorScheme) *Styles {
	return &Styles{
		BorderFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(scheme.BorderFocus).
			Bold(true),
		BorderBlurred: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(scheme.Border),
		Title: lipgloss.NewStyle().
			Foreground(scheme.Primary).
			Padding(0, 1).
			Bold(true),
		HelpKey: lipgloss.NewStyle().
			Foreground(scheme.TextMuted).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(scheme.TextMuted),
		SuccessMessage: lipgloss.NewStyle().
			Foreground(scheme.Success).
			Bold(true),
		ErrorMessage: lipgloss.NewStyle().
			Foreground(scheme.Error).
			Bold(true),
	}
}

// patientItem represents an item in the patients list
type patientItem struct {
	record    registry.Record
	placement registry.Placement
}

func (i patientItem) FilterValue() string { return i.record.Name }
func (i patientItem) Title() string       { return i.record.Name }
func (i patientItem) Description() string {
	return fmt.Sprintf("%c · %s · last visit %s", i.record.Category, i.placement, i.record.LastVisit)
}

// InitialModel creates the initial model
func InitialModel(reg *registry.Registry, session *Session, dc *cache.Cache) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a name to search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	patientsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	patientsList.SetShowTitle(false)
	patientsList.SetShowHelp(false)
	patientsList.SetFilteringEnabled(false)

	detailViewport := viewport.New(0, 0)
	detailViewport.SetContent("Select a patient to see details...")

	glamourRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)

	m := Model{
		textInput:       ti,
		patientsList:    patientsList,
		detailViewport:  detailViewport,
		reg:             reg,
		session:         session,
		detailCache:     dc,
		styles:          NewStyles(GetColorScheme()),
		glamourRenderer: glamourRenderer,
	}
	m.updatePatients("")
	return m
}

// Init is called when the program starts
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all the I/O
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.mode == InputModeCommand && msg.String() == "esc" {
				m.leaveCommandMode()
				return m, nil
			}
			return m, tea.Quit
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.ready = true
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "tab":
		m.focusIndex = (m.focusIndex + 1) % 3
		if m.focusIndex == 0 {
			m.textInput.Focus()
		} else {
			m.textInput.Blur()
		}
		return m, nil
	case ":":
		if m.mode == InputModeSearch && (m.focusIndex != 0 || m.textInput.Value() == "") {
			m.enterCommandMode("")
			return m, nil
		}
	case "ctrl+e":
		if p, ok := m.selected(); ok {
			m.enterCommandMode(fmt.Sprintf("set %q ", p.record.Name))
		}
		return m, nil
	case "ctrl+s":
		cmd = m.runCommand("save")
		return m, cmd
	case "enter":
		if m.mode == InputModeCommand {
			cmd = m.runCommand(m.textInput.Value())
			m.leaveCommandMode()
			return m, cmd
		}
		if p, ok := m.selected(); ok {
			line := m.reg.Codec().Serialize(p.record)
			if err := copyToClipboard(line); err != nil {
				m.setStatus(fmt.Sprintf("Clipboard unavailable: %v", err), true)
			} else {
				m.setStatus(fmt.Sprintf("Copied %s", line), false)
			}
		}
		return m, nil
	case "up", "k", "down", "j":
		if m.focusIndex == 1 {
			m.patientsList, cmd = m.patientsList.Update(msg)
			m.updateDetail()
			return m, cmd
		}
		if m.focusIndex == 2 {
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
	case "pgup", "pgdown", "home", "end":
		if m.focusIndex == 2 {
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
	}

	if m.focusIndex != 0 {
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	if m.mode == InputModeSearch {
		if q := m.textInput.Value(); q != m.lastQuery {
			m.updatePatients(q)
			m.lastQuery = q
		}
	}
	return m, cmd
}

func (m *Model) enterCommandMode(prefill string) {
	m.mode = InputModeCommand
	m.focusIndex = 0
	m.textInput.Prompt = ": "
	m.textInput.Placeholder = "add, set, save, find, list, help"
	m.textInput.SetValue(prefill)
	m.textInput.CursorEnd()
	m.textInput.Focus()
}

func (m *Model) leaveCommandMode() {
	m.mode = InputModeSearch
	m.textInput.Prompt = "> "
	m.textInput.Placeholder = "Type a name to search..."
	m.textInput.SetValue(m.lastQuery)
	m.textInput.CursorEnd()
}

// runCommand feeds line to the plain session and shows what it printed.
func (m *Model) runCommand(line string) tea.Cmd {
	var out bytes.Buffer
	m.session.out = &out
	err := m.session.Exec(line)
	if errors.Is(err, errQuit) {
		return tea.Quit
	}
	if err != nil {
		m.setStatus(err.Error(), true)
	} else {
		m.setStatus(strings.TrimSpace(out.String()), false)
	}

	// Edits change what detail pages show.
	m.detailCache.Flush()
	m.updatePatients(m.lastQuery)
	if out.Len() > 0 && err == nil && strings.Count(out.String(), "\n") > 1 {
		m.detailViewport.SetContent(out.String())
	}
	return nil
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMessage = msg
	m.statusIsError = isError
}

func (m Model) selected() (patientItem, bool) {
	idx := m.patientsList.Index()
	if idx < 0 || idx >= len(m.patients) {
		return patientItem{}, false
	}
	return m.patients[idx], true
}

// updatePatients refreshes the list with list patients (descending) and
// then tree patients (ascending) whose name starts with query.
func (m *Model) updatePatients(query string) {
	m.patients = m.patients[:0]
	for _, match := range m.reg.Matching(query) {
		m.patients = append(m.patients, patientItem{record: match.Record, placement: match.Placement})
	}

	items := make([]list.Item, len(m.patients))
	for i, p := range m.patients {
		items[i] = p
	}
	m.patientsList.SetItems(items)
	m.patientsList.ResetSelected()
	m.updateDetail()
}

func (m *Model) updateDetail() {
	p, ok := m.selected()
	if !ok {
		m.detailViewport.SetContent("No patients registered.")
		return
	}

	// A name may exist once per container.
	key := p.placement.String() + "/" + p.record.Name
	page := GetDetailPage(m.detailCache, key)
	if page == "" {
		md := detailMarkdown(p.record, p.placement, m.reg.Codec().Serialize(p.record), time.Now())
		page = md
		if m.glamourRenderer != nil {
			if rendered, err := m.glamourRenderer.Render(md); err == nil {
				page = rendered
			}
		}
		CacheDetailPage(m.detailCache, key, page)
	}
	m.detailViewport.SetContent(page)
	m.detailViewport.GotoTop()
}

func detailMarkdown(rec registry.Record, placement registry.Placement, line string, now time.Time) string {
	lastVisit := describeDate(rec.LastVisit)
	if since := sinceVisit(rec.LastVisit, now); since != "" {
		lastVisit = fmt.Sprintf("%s (%s)", lastVisit, since)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Name)
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %c |\n", rec.Category)
	fmt.Fprintf(&b, "| Birth date | %s |\n", describeDate(rec.BirthDate))
	fmt.Fprintf(&b, "| Last visit | %s |\n\n", lastVisit)
	fmt.Fprintf(&b, "Stored in the **%s**.\n\n", placement)
	fmt.Fprintf(&b, "`%s`\n", line)
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < 30 || m.height < 10 {
		return "Terminal too small. Please resize your terminal."
	}

	inputHeight := 3
	listHeight := m.height - inputHeight - 7
	leftWidth := (m.width / 2) - 1
	rightWidth := m.width - leftWidth - 3

	inputTitle := " 🔍 Search Patients "
	if m.mode == InputModeCommand {
		inputTitle = " ⌨️  Command "
	}
	inputBox := m.box(0, leftWidth, inputHeight).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(leftWidth-4).Render(inputTitle),
			m.textInput.View(),
		))

	listBox := m.box(1, leftWidth, listHeight).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(leftWidth-4).Render(fmt.Sprintf(" 📋 Patients (%d) ", len(m.patients))),
			m.patientsList.View(),
		))

	detailBox := m.box(2, rightWidth, listHeight+inputHeight+2).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(rightWidth-4).Render(" 🩺 Details "),
			m.detailViewport.View(),
		))

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, inputBox, listBox),
		detailBox,
	)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatus(), m.renderHelp())
}

func (m Model) box(index, width, height int) lipgloss.Style {
	style := m.styles.BorderBlurred
	if m.focusIndex == index {
		style = m.styles.BorderFocused
	}
	return style.Width(width).Height(height)
}

func (m Model) renderStatus() string {
	if m.statusMessage == "" {
		return ""
	}
	line := strings.SplitN(m.statusMessage, "\n", 2)[0]
	if m.statusIsError {
		return m.styles.ErrorMessage.Render(" " + line)
	}
	return m.styles.SuccessMessage.Render(" " + line)
}

// updateLayout updates component dimensions
func (m *Model) updateLayout() {
	inputHeight := 3
	listHeight := m.height - inputHeight - 7
	leftWidth := (m.width / 2) - 1
	rightWidth := m.width - leftWidth - 3

	m.textInput.Width = leftWidth - 6
	m.patientsList.SetSize(leftWidth-2, listHeight-2)
	m.detailViewport.Width = rightWidth - 2
	m.detailViewport.Height = listHeight + inputHeight
}

func (m Model) renderHelp() string {
	keys := []string{"enter", "tab", ":", "ctrl+e", "ctrl+s", "esc"}
	descs := []string{"copy record", "switch focus", "command", "edit selected", "save", "quit"}

	var helpEntries []string
	for i, key := range keys {
		helpEntries = append(helpEntries,
			fmt.Sprintf("%s %s",
				m.styles.HelpKey.Render(key),
				m.styles.HelpDesc.Render(descs[i])))
	}

	return lipgloss.NewStyle().
		Padding(1, 0, 0, 2).
		Render(strings.Join(helpEntries, " • "))
}

func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// runBubbleTeaApp starts the Bubble Tea application. Registry diagnostics
// would corrupt the alternate screen, so they are discarded or, with
// CLINIC_DEBUG set, written to clinic-debug.log.
func runBubbleTeaApp(reg *registry.Registry, targets registry.Targets, dc *cache.Cache) error {
	InitializeColors()

	if os.Getenv("CLINIC_DEBUG") != "" {
		f, err := tea.LogToFile("clinic-debug.log", "clinic")
		if err != nil {
			return err
		}
		defer f.Close()
		reg.SetLogger(slog.New(slog.NewTextHandler(f, nil)))
	} else {
		reg.SetLogger(slog.New(slog.DiscardHandler))
	}

	session := NewSession(reg, targets, strings.NewReader(""), &bytes.Buffer{})
	session.prompt = false
	model := InitialModel(reg, session, dc)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := program.Run()
	return err
}
