package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

const PlaceHolderText = "attack hutt_cartel 1.0 | quest | say hutt_cartel <message> | refresh"

// ConsoleUI is the BubbleTea model that runs the operator console: a
// faction standings panel, a scrolling event log, and a command input.
type ConsoleUI struct {
	config *ConsoleConfig
	client *http.Client

	logViewport     viewport.Model
	factionViewport viewport.Model
	textarea        textarea.Model
	ready           bool
	width           int
	height          int
	err             error
	loading         bool

	factions *FactionListResponse
	logLines []string

	// lastReply is the most recent NPC line, for clipboard copy.
	lastReply string
}

type factionsMsg struct {
	list *FactionListResponse
	err  error
}

type actionResultMsg struct {
	lines []string
	err   error
}

type dialogueMsg struct {
	npc     string
	message string
	err     error
}

var (
	factionPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	logPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	hostileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	friendlyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) *ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	logVp := viewport.New(60, 20)
	factionVp := viewport.New(40, 20)

	return &ConsoleUI{
		config:          cfg,
		client:          client,
		textarea:        ta,
		logViewport:     logVp,
		factionViewport: factionVp,
		logLines: []string{
			mutedStyle.Render("Holocron Engine console. Playing as " + cfg.Character + "."),
			mutedStyle.Render("Commands: <action> <faction> [magnitude], quest, say <faction> <message>, refresh."),
			mutedStyle.Render("ctrl+y copies the last NPC line. ctrl+c quits."),
		},
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return ui.fetchFactions()
}

func (ui *ConsoleUI) fetchFactions() tea.Cmd {
	return func() tea.Msg {
		list, err := listFactions(ui.client, ui.config.APIBaseURL)
		return factionsMsg{list: list, err: err}
	}
}

func (ui *ConsoleUI) runAction(action, target string, magnitude float64) tea.Cmd {
	return func() tea.Msg {
		result, err := submitAction(ui.client, ui.config.APIBaseURL, ActionRequest{
			Actor:     ui.config.Character,
			Targets:   []string{target},
			Action:    action,
			Magnitude: magnitude,
		})
		if err != nil {
			return actionResultMsg{err: err}
		}

		var lines []string
		for _, c := range result.Changes {
			lines = append(lines, fmt.Sprintf("%s: reputation %.1f -> %.1f, awareness %.1f -> %.1f",
				c.Name, c.OldReputation, c.NewReputation, c.OldAwareness, c.NewAwareness))
			lines = append(lines, c.Responses...)
		}
		lines = append(lines, fmt.Sprintf("Alignment: %.1f (%s)", result.Alignment, result.AlignmentLabel))
		if result.ThresholdCrossed {
			lines = append(lines, "A reputation threshold was crossed. New work may be available.")
		}
		return actionResultMsg{lines: lines}
	}
}

func (ui *ConsoleUI) runQuest() tea.Cmd {
	return func() tea.Msg {
		q, err := requestQuest(ui.client, ui.config.APIBaseURL, ui.config.Character)
		if err != nil {
			return actionResultMsg{err: err}
		}

		lines := []string{
			titleStyle.Render(q.Title),
			fmt.Sprintf("Sponsor: %s | Objective: %s | Risk: %s", q.Sponsor, q.Objective, q.Risk),
			fmt.Sprintf("Reward: %s credits, +%.0f reputation", humanize.Comma(int64(q.Reward.Credits)), q.Reward.Reputation),
		}
		if len(q.Reward.Items) > 0 {
			lines = append(lines, "Items: "+strings.Join(q.Reward.Items, ", "))
		}
		if q.Degraded {
			lines = append(lines, mutedStyle.Render("(No faction trusts you; this is desperation work.)"))
		}
		return actionResultMsg{lines: lines}
	}
}

func (ui *ConsoleUI) runDialogue(target, message string) tea.Cmd {
	return func() tea.Msg {
		dr, err := requestDialogue(ui.client, ui.config.APIBaseURL, chat.DialogueRequest{
			Character: ui.config.Character,
			Faction:   target,
			Message:   message,
		})
		if err != nil {
			return dialogueMsg{err: err}
		}
		npc := dr.NPCName
		if npc == "" {
			npc = target
		}
		return dialogueMsg{npc: npc, message: dr.Message}
	}
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	ui.textarea, taCmd = ui.textarea.Update(msg)
	ui.logViewport, vpCmd = ui.logViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return ui, tea.Quit
		case tea.KeyCtrlY:
			if ui.lastReply != "" {
				if err := clipboard.WriteAll(ui.lastReply); err != nil {
					ui.appendLog(errorStyle.Render("Clipboard: " + err.Error()))
				} else {
					ui.appendLog(mutedStyle.Render("Copied last NPC line."))
				}
			}
			return ui, nil
		case tea.KeyEnter:
			cmd := ui.handleCommand(strings.TrimSpace(ui.textarea.Value()))
			ui.textarea.Reset()
			return ui, cmd
		}

	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.layout()
		ui.ready = true

	case factionsMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
			return ui, nil
		}
		ui.err = nil
		ui.factions = msg.list
		ui.renderFactions()

	case actionResultMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
			return ui, nil
		}
		for _, line := range msg.lines {
			ui.appendLog(line)
		}
		return ui, ui.fetchFactions()

	case dialogueMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
			return ui, nil
		}
		ui.lastReply = msg.message
		ui.appendLog(npcStyle.Render(msg.npc+": ") + msg.message)
		return ui, nil
	}

	return ui, tea.Batch(taCmd, vpCmd)
}

// handleCommand parses one console command line and dispatches it.
func (ui *ConsoleUI) handleCommand(input string) tea.Cmd {
	if input == "" {
		return nil
	}
	ui.appendLog(playerStyle.Render("> " + input))

	fields := strings.Fields(input)
	switch fields[0] {
	case "refresh":
		ui.loading = true
		return ui.fetchFactions()

	case "quest":
		ui.loading = true
		return ui.runQuest()

	case "say":
		if len(fields) < 3 {
			ui.appendLog(errorStyle.Render("Usage: say <faction> <message>"))
			return nil
		}
		ui.loading = true
		return ui.runDialogue(fields[1], strings.Join(fields[2:], " "))

	default:
		// <action> <faction> [magnitude]
		if len(fields) < 2 {
			ui.appendLog(errorStyle.Render("Usage: <action> <faction> [magnitude]"))
			return nil
		}
		magnitude := 1.0
		if len(fields) >= 3 {
			m, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				ui.appendLog(errorStyle.Render("Magnitude must be a number."))
				return nil
			}
			magnitude = m
		}
		ui.loading = true
		return ui.runAction(fields[0], fields[1], magnitude)
	}
}

func (ui *ConsoleUI) appendLog(line string) {
	wrapped := wordwrap.String(line, ui.logViewport.Width)
	ui.logLines = append(ui.logLines, wrapped)
	ui.logViewport.SetContent(strings.Join(ui.logLines, "\n"))
	ui.logViewport.GotoBottom()
}

func (ui *ConsoleUI) renderFactions() {
	if ui.factions == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Galaxy") + "\n")
	sb.WriteString(fmt.Sprintf("Momentum: %.0f\n\n", ui.factions.Momentum))

	for _, f := range ui.factions.Factions {
		style := mutedStyle
		switch f.Disposition.Standing {
		case faction.StandingHostile:
			style = hostileStyle
		case faction.StandingFriendly, faction.StandingAllied:
			style = friendlyStyle
		}

		sb.WriteString(style.Render(f.Name) + "\n")
		sb.WriteString(fmt.Sprintf("  rep %.1f  awr %.1f\n", f.Reputation, f.Awareness))
		sb.WriteString(fmt.Sprintf("  %s / %s\n", f.Disposition.Standing, f.Disposition.Posture))
		if !f.UpdatedAt.IsZero() {
			sb.WriteString(mutedStyle.Render("  updated "+humanize.Time(f.UpdatedAt)) + "\n")
		}
		sb.WriteString("\n")
	}

	ui.factionViewport.SetContent(sb.String())
}

func (ui *ConsoleUI) layout() {
	factionWidth := ui.width / 3
	logWidth := ui.width - factionWidth - 6
	panelHeight := ui.height - ui.textarea.Height() - 4

	ui.factionViewport.Width = factionWidth
	ui.factionViewport.Height = panelHeight
	ui.logViewport.Width = logWidth
	ui.logViewport.Height = panelHeight
	ui.textarea.SetWidth(ui.width - 4)

	ui.logViewport.SetContent(strings.Join(ui.logLines, "\n"))
	ui.renderFactions()
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	status := ""
	if ui.loading {
		status = loadingStyle.Render(" working...")
	}
	if ui.err != nil {
		status = errorStyle.Render(" " + ui.err.Error())
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		logPanelStyle.Render(ui.logViewport.View()),
		factionPanelStyle.Render(ui.factionViewport.View()))

	return fmt.Sprintf("%s\n%s%s\n%s",
		panels,
		ui.textarea.View(),
		status,
		mutedStyle.Render(time.Now().Format("15:04")+" | ctrl+c to quit"))
}
