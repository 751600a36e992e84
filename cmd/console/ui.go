package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kdabb05/llmud/internal/mcpserver"
	"github.com/kdabb05/llmud/pkg/actor"
)

const (
	GameName        = "LLMUD"
	PlaceHolderText = "Type a command (help for a list)..."
)

type entryRole int

const (
	roleGame entryRole = iota
	rolePlayer
	roleError
	roleInfo
)

type entry struct {
	role entryRole
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	player       *player
	state        *mcpserver.SessionStateResult
	view         *mcpserver.MapResult
	sheet        actor.Sheet
	entries      []entry
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type commandResultMsg struct {
	outcome outcome
	err     error
}

type sessionStateMsg struct {
	state *mcpserver.SessionStateResult
	err   error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, p *player, created bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	welcome := fmt.Sprintf("Welcome back, %s. Resuming session %s.", p.character, p.sessionID)
	if created {
		welcome = fmt.Sprintf("Welcome, %s. Your adventure %s begins.", p.character, p.sessionID)
	}

	return ConsoleUI{
		config:       cfg,
		player:       p,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
		entries:      []entry{{role: roleInfo, text: welcome}},
		loading:      true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.runCommand("look"), m.runCommand("sheet"), m.refreshState(), progressTick())
}

func (m ConsoleUI) writeMetadata() string {
	st := m.state
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	if st == nil {
		content.WriteString("Loading...\n")
		return content.String()
	}

	content.WriteString("Session:\n" + st.SessionID + "\n\n")
	content.WriteString("Location:\n" + st.CurrentRoom + "\n")
	content.WriteString(promptStyle.Render(st.CurrentMap) + "\n\n")

	if m.view != nil && m.view.CurrentRoom == st.CurrentRoom {
		dirs := make([]string, 0, len(m.view.Exits))
		for d := range m.view.Exits {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		content.WriteString("Exits:\n")
		if len(dirs) == 0 {
			content.WriteString("None\n")
		}
		for _, d := range dirs {
			content.WriteString("• " + d + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(fmt.Sprintf("Turns:\n%d\n\n", st.TurnCount))

	content.WriteString("Character:\n" + m.player.character + "\n")
	if m.sheet != nil {
		if hp, ok := m.sheet.Stat("hp"); ok {
			maxHP, _ := m.sheet.Stat("max_hp")
			content.WriteString(fmt.Sprintf("HP %d/%d\n", hp, maxHP))
		}
		content.WriteString(fmt.Sprintf("Gold %d\n", m.sheet.Gold()))
		for _, item := range m.sheet.Inventory() {
			content.WriteString("• " + item + "\n")
		}
	}
	content.WriteString("\n")

	if len(st.ActiveQuests) > 0 {
		content.WriteString("Quests:\n")
		for _, q := range st.ActiveQuests {
			content.WriteString("• " + q + "\n")
		}
		content.WriteString("\n")
	}

	if len(st.EventFlags) > 0 {
		keys := make([]string, 0, len(st.EventFlags))
		for k := range st.EventFlags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		content.WriteString("Flags:\n")
		for _, k := range keys {
			content.WriteString(fmt.Sprintf("• %s: %v\n", k, st.EventFlags[k]))
		}
		content.WriteString("\n")
	}

	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• help: Commands\n")

	return content.String()
}

// writeLogContent rebuilds the log for the current viewport width.
func (m *ConsoleUI) writeLogContent() {
	width := m.logViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(GameName) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		content.WriteString(formatEntry(e, width) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func formatEntry(e entry, width int) string {
	switch e.role {
	case rolePlayer:
		return playerStyle.Render("> ") + wordwrap.String(e.text, width-2)
	case roleError:
		return errorStyle.Render(wordwrap.String(e.text, width))
	case roleInfo:
		return infoStyle.Render(wordwrap.String(e.text, width))
	default:
		return gameStyle.Render(wordwrap.String(e.text, width))
	}
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - logWidth - 6

	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}

			m.entries = append(m.entries, entry{role: rolePlayer, text: input})
			m.loading = true
			m.progressTick = 0
			m.writeLogContent()

			return m, tea.Batch(m.runCommand(input), progressTick())
		}

	case commandResultMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.entries = append(m.entries, entry{role: roleError, text: msg.err.Error()})
		case msg.outcome.quit:
			m.showQuitModal = true
			return m, nil
		case msg.outcome.copy:
			m.entries = append(m.entries, m.copyLastDiagram())
		default:
			m.entries = append(m.entries, entry{role: roleGame, text: msg.outcome.text})
		}
		if msg.outcome.state != nil {
			m.state = msg.outcome.state
		}
		if msg.outcome.view != nil {
			m.view = msg.outcome.view
		}
		if msg.outcome.sheet != nil {
			m.sheet = msg.outcome.sheet
		}
		m.metaViewport.SetContent(m.writeMetadata())
		m.writeLogContent()
		return m, nil

	case sessionStateMsg:
		if msg.err == nil && msg.state != nil {
			m.state = msg.state
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) copyLastDiagram() entry {
	if m.view == nil || m.view.Diagram == "" {
		return entry{role: roleInfo, text: "No map to copy yet. Try 'look' first."}
	}
	if err := clipboard.WriteAll(m.view.Diagram); err != nil {
		return entry{role: roleError, text: "Copy failed: " + err.Error()}
	}
	return entry{role: roleInfo, text: "Copied the SVG map to the clipboard."}
}

func (m ConsoleUI) runCommand(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		out, err := m.player.run(ctx, input)
		return commandResultMsg{outcome: out, err: err}
	}
}

func (m ConsoleUI) refreshState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		st, err := m.player.client.state(ctx, m.player.sessionID)
		return sessionStateMsg{state: st, err: err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your session is saved. Rejoin later with -session " + m.player.sessionID)
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
