package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config         *ConsoleConfig
	client         *http.Client
	resultViewport viewport.Model
	ready          bool
	width          int
	height         int
	err            error
	loading        bool

	// Character selection state
	showCharacterModal bool
	characters         []string
	characterMap       map[string]string
	selectedCharacter  int
	loadingCharacters  bool

	// Prerequisite selection state
	showPrereqModal bool
	prereqs         []*requirement.Prerequisite
	selectedPrereq  int

	// Result view state
	characterID string
	result      *CheckResponse
	statusLine  string

	// Quit confirmation state
	showQuitModal bool
}

type charactersLoadedMsg struct {
	characters   []string
	characterMap map[string]string
	err          error
}

type prereqsLoadedMsg struct {
	prereqs []*requirement.Prerequisite
	err     error
}

type checkResultMsg struct {
	result *CheckResponse
	err    error
}

type copiedMsg struct {
	err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var typeCaser = cases.Title(language.English)

// typeDisplayName renders a requirement type tag for humans,
// e.g. "count_tag" becomes "Count Tag".
func typeDisplayName(t requirement.NodeType) string {
	return typeCaser.String(strings.ReplaceAll(string(t), "_", " "))
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:             cfg,
		client:             client,
		resultViewport:     vp,
		showCharacterModal: true,
		loadingCharacters:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadCharacters()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showCharacterModal {
		return m.updateCharacterModal(msg)
	}
	if m.showPrereqModal {
		return m.updatePrereqModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.resultViewport, vpCmd = m.resultViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultViewport.Width = m.width - 6
		m.resultViewport.Height = m.height - 5
		m.writeResultContent()
		m.ready = true

	case checkResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.result = msg.result
			if msg.result.RecordID != nil {
				m.statusLine = "Check recorded as " + msg.result.RecordID.String()
			}
		}
		m.writeResultContent()

	case copiedMsg:
		if msg.err != nil {
			m.statusLine = "Copy failed: " + msg.err.Error()
		} else {
			m.statusLine = "Failure reasons copied to clipboard"
		}
		m.writeResultContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		default:
			switch msg.String() {
			case "p":
				m.showPrereqModal = true
				m.statusLine = ""
				return m, nil
			case "s":
				m.showCharacterModal = true
				m.loadingCharacters = true
				m.statusLine = ""
				return m, m.loadCharacters()
			case "r":
				if m.result != nil && !m.loading {
					m.loading = true
					m.statusLine = ""
					m.writeResultContent()
					return m, m.runSelectedCheck(true)
				}
			case "c":
				if m.result != nil && len(m.result.FailureReasons) > 0 {
					return m, m.copyFailureReasons()
				}
			}
		}
	}

	m.resultViewport, vpCmd = m.resultViewport.Update(msg)
	return m, vpCmd
}

func (m ConsoleUI) loadCharacters() tea.Cmd {
	return func() tea.Msg {
		names, characterMap, err := listCharacters(m.client, m.config.APIBaseURL)
		return charactersLoadedMsg{names, characterMap, err}
	}
}

func (m ConsoleUI) loadPrereqs() tea.Cmd {
	return func() tea.Msg {
		prereqs, err := listPrereqs(m.client, m.config.APIBaseURL)
		return prereqsLoadedMsg{prereqs, err}
	}
}

func (m ConsoleUI) runSelectedCheck(record bool) tea.Cmd {
	prereqID := m.prereqs[m.selectedPrereq].ID
	characterID := m.characterID
	return func() tea.Msg {
		result, err := runCheck(m.client, m.config.APIBaseURL, characterID, prereqID, record)
		return checkResultMsg{result, err}
	}
}

func (m ConsoleUI) copyFailureReasons() tea.Cmd {
	text := strings.Join(m.result.FailureReasons, "\n")
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m ConsoleUI) updateCharacterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case charactersLoadedMsg:
		m.loadingCharacters = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.characters = msg.characters
			m.characterMap = msg.characterMap
			m.selectedCharacter = 0
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedCharacter > 0 {
				m.selectedCharacter--
			}
		case tea.KeyDown:
			if m.selectedCharacter < len(m.characters)-1 {
				m.selectedCharacter++
			}
		case tea.KeyEnter:
			if len(m.characters) > 0 {
				m.characterID = m.characterMap[m.characters[m.selectedCharacter]]
				m.showCharacterModal = false
				m.showPrereqModal = true
				m.loading = true
				return m, m.loadPrereqs()
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updatePrereqModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case prereqsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.prereqs = msg.prereqs
			if m.selectedPrereq >= len(m.prereqs) {
				m.selectedPrereq = 0
			}
		}

	case checkResultMsg:
		m.loading = false
		m.showPrereqModal = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.result = msg.result
		}
		m.writeResultContent()

	case tea.KeyMsg:
		if m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedPrereq > 0 {
				m.selectedPrereq--
			}
		case tea.KeyDown:
			if m.selectedPrereq < len(m.prereqs)-1 {
				m.selectedPrereq++
			}
		case tea.KeyEnter:
			if len(m.prereqs) > 0 {
				m.loading = true
				return m, m.runSelectedCheck(false)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

// writeResultContent renders the current check result into the viewport
func (m *ConsoleUI) writeResultContent() {
	width := m.resultViewport.Width - 2
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PREREQ ENGINE") + "\n\n")

	switch {
	case m.loading:
		content.WriteString(loadingStyle.Render("Running check..."))
	case m.err != nil:
		content.WriteString(failStyle.Render("Error: ") + wordwrap.String(m.err.Error(), width))
	case m.result == nil:
		content.WriteString("No check has been run yet.")
	default:
		p := m.prereqs[m.selectedPrereq]
		content.WriteString(wordwrap.String(p.Description, width) + "\n")
		content.WriteString(promptStyle.Render("Subject: "+m.result.Subject.String()) + "\n\n")

		if m.result.Passed {
			content.WriteString(passStyle.Render("PASSED") + "\n\n")
		} else {
			content.WriteString(failStyle.Render("FAILED") + "\n\n")
		}

		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
		renderResultNode(&content, m.result.Result, 0, width)

		if len(m.result.FailureReasons) > 0 {
			content.WriteString("\n" + titleStyle.Render("Failure Reasons") + "\n")
			for _, reason := range m.result.FailureReasons {
				content.WriteString(failStyle.Render("• ") + wordwrap.String(reason, width-2) + "\n")
			}
		}
	}

	if m.statusLine != "" {
		content.WriteString("\n" + loadingStyle.Render(m.statusLine) + "\n")
	}

	m.resultViewport.SetContent(content.String())
	m.resultViewport.GotoTop()
}

// renderResultNode walks the result tree, indenting per level
func renderResultNode(content *strings.Builder, r *check.Result, depth int, width int) {
	if r == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	mark := passStyle.Render("✓")
	if !r.Passed {
		mark = failStyle.Render("✗")
	}

	line := fmt.Sprintf("%s%s %s", indent, mark, typeStyle.Render(typeDisplayName(r.Type)))
	if r.Message != "" {
		line += promptStyle.Render(": " + r.Message)
	}
	content.WriteString(wordwrap.String(line, width) + "\n")

	for _, child := range r.Children {
		renderResultNode(content, child, depth+1, width)
	}
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCharacterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingCharacters {
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available characters..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(failStyle.Render(fmt.Sprintf("Failed to load characters: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if len(m.characters) == 0 {
		content.WriteString(modalTitleStyle.Render("No Characters"))
		content.WriteString("\n\n")
		content.WriteString("No character sheets were found in the data directory.")
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Character"))
		content.WriteString("\n\n")

		for i, name := range m.characters {
			if i == m.selectedCharacter {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPrereqModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loading {
		content.WriteString(modalTitleStyle.Render("Working..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(failStyle.Render(fmt.Sprintf("Failed to load prerequisites: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if len(m.prereqs) == 0 {
		content.WriteString(modalTitleStyle.Render("No Prerequisites"))
		content.WriteString("\n\n")
		content.WriteString("No prerequisites have been created yet.")
		content.WriteString("\n")
		content.WriteString("Create one with POST /v1/prereqs and come back.")
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Prerequisite"))
		content.WriteString("\n\n")

		for i, p := range m.prereqs {
			if i == m.selectedPrereq {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", p.Description)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", p.Description)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to check, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showCharacterModal {
		return m.renderCharacterModal()
	}
	if m.showPrereqModal {
		return m.renderPrereqModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := promptStyle.Render("r: re-run and record • c: copy failure reasons • p: prerequisites • s: characters • Esc: quit")

	panel := lipgloss.NewStyle().Padding(1, 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.resultViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", m.resultViewport.Width)),
			footer,
		),
	)
	return panel
}
