package main

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/flow"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
	"github.com/jwebster45206/five-acts/pkg/textfx"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/wordwrap"
)

const spinLabel = "Spin the wheel"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Less    key.Binding
	More    key.Binding
	Enter   key.Binding
	NewGame key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Less:    key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/-", "fewer hours")),
	More:    key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("→/+", "more hours")),
	Enter:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "continue")),
	NewGame: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new game")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// ConsoleUI is the BubbleTea model that presents prompts from the flow
// controller and sends back results.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx          context.Context
	game         *game
	prompt       *flow.Prompt
	status       status
	notices      []string
	mainViewport viewport.Model
	metaViewport viewport.Model
	selected     int
	alloc        session.Allocation
	ready        bool
	loading      bool
	width        int
	height       int
	err          error

	showQuitModal bool
}

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	monologueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

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

func NewConsoleUI(ctx context.Context, g *game) ConsoleUI {
	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	return ConsoleUI{
		ctx:          ctx,
		game:         g,
		mainViewport: mainVp,
		metaViewport: viewport.New(20, 20),
		loading:      true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.game.start(m.ctx)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.render()

	case promptMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.status
		m.notices = notices(msg)
		if msg.prompt != nil && (m.prompt == nil || msg.prompt.Ticket != m.prompt.Ticket) {
			m.setPrompt(msg.prompt)
		}
		if msg.prompt == nil && msg.err == nil {
			return m, tea.Quit
		}
		m.render()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.showQuitModal = true
			return m, nil
		}
		if m.loading || m.prompt == nil {
			return m, nil
		}
		if key.Matches(msg, keys.NewGame) {
			m.loading = true
			m.prompt = nil
			return m, m.game.newGame(m.ctx)
		}
		if cmd, handled := m.handleKey(msg); handled {
			m.render()
			return m, cmd
		}
	}

	m.mainViewport, vpCmd = m.mainViewport.Update(msg)
	return m, vpCmd
}

func (m *ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	n := len(m.options())
	switch {
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return nil, true
	case key.Matches(msg, keys.Down):
		if m.selected < n-1 {
			m.selected++
		}
		return nil, true
	case key.Matches(msg, keys.Less):
		m.adjustHours(-1)
		return nil, true
	case key.Matches(msg, keys.More):
		m.adjustHours(1)
		return nil, true
	case key.Matches(msg, keys.Enter):
		if m.prompt.Final {
			return tea.Quit, true
		}
		m.loading = true
		return m.game.submit(m.ctx, m.result(), m.prompt.Burnout.InputDelay), true
	}

	// Number keys pick an option directly.
	if i, err := strconv.Atoi(msg.String()); err == nil && i >= 1 && i <= n && m.prompt.Kind != narrative.StepPlanning {
		m.selected = i - 1
		m.loading = true
		return m.game.submit(m.ctx, m.result(), m.prompt.Burnout.InputDelay), true
	}
	return nil, false
}

func (m *ConsoleUI) setPrompt(p *flow.Prompt) {
	m.prompt = p
	m.selected = 0
	m.alloc = session.Allocation{}
}

// options lists the selectable lines of the current prompt.
func (m *ConsoleUI) options() []string {
	if m.prompt == nil {
		return nil
	}
	var out []string
	switch m.prompt.Kind {
	case narrative.StepMoment, narrative.StepClimax:
		for _, c := range m.prompt.Moment.Choices() {
			out = append(out, c.Text)
		}
	case narrative.StepCareerRoulette:
		for _, o := range m.prompt.Options {
			out = append(out, textfx.DisplayName(o))
		}
		out = append(out, spinLabel)
	case narrative.StepPlanning:
		for _, a := range m.prompt.Activities {
			out = append(out, a.Label)
		}
	}
	return out
}

func (m *ConsoleUI) adjustHours(delta int) {
	if m.prompt == nil || m.prompt.Kind != narrative.StepPlanning || m.selected >= len(m.prompt.Activities) {
		return
	}
	id := m.prompt.Activities[m.selected].ID
	switch {
	case delta > 0 && m.alloc.Total() < m.prompt.HoursPerDay:
		m.alloc[id]++
	case delta < 0 && m.alloc[id] > 0:
		m.alloc[id]--
		if m.alloc[id] == 0 {
			delete(m.alloc, id)
		}
	}
}

// result builds the answer to the current prompt from the selection.
func (m *ConsoleUI) result() flow.Result {
	res := flow.Ack(m.prompt)
	switch m.prompt.Kind {
	case narrative.StepMoment, narrative.StepClimax:
		if choices := m.prompt.Moment.Choices(); m.selected < len(choices) {
			res.ChoiceID = choices[m.selected].ID
		}
	case narrative.StepCareerRoulette:
		if m.selected < len(m.prompt.Options) {
			res.CareerTrack = m.prompt.Options[m.selected]
		}
	case narrative.StepPlanning:
		res.Allocation = maps.Clone(m.alloc)
	}
	return res
}

func notices(msg promptMsg) []string {
	var out []string
	for _, ev := range msg.cues {
		switch ev.Cue {
		case cue.BurnoutMax:
			out = append(out, "You can't keep doing this.")
		case cue.RelationshipFade:
			id, _ := ev.Attrs["character_id"].(string)
			out = append(out, fmt.Sprintf("%s feels further away.", textfx.DisplayName(id)))
		}
	}
	if msg.prompt != nil {
		for _, l := range msg.prompt.Lost {
			out = append(out, fmt.Sprintf("%s is gone. Some doors don't reopen.", l.Name))
		}
	}
	return out
}

func (m *ConsoleUI) resize() {
	mainWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - mainWidth - 6
	m.mainViewport.Width = mainWidth - 2
	m.mainViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

func (m *ConsoleUI) render() {
	width := m.mainViewport.Width - 6
	if width < 20 {
		width = 20
	}
	m.mainViewport.SetContent(m.renderPrompt(width))
	m.metaViewport.SetContent(renderStatus(m.status))
}

func (m *ConsoleUI) renderPrompt(width int) string {
	var b strings.Builder

	for _, n := range m.notices {
		b.WriteString(noticeStyle.Render(wordwrap.String(n, width)) + "\n")
	}
	if len(m.notices) > 0 {
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	p := m.prompt
	if p == nil {
		b.WriteString(promptStyle.Render("..."))
		return b.String()
	}

	text := narratorStyle
	if p.Burnout.Tier > 0 {
		text = text.Foreground(lipgloss.Color(desaturate("#5fd7af", p.Burnout.Desaturation)))
	}

	switch p.Kind {
	case narrative.StepTitleCard, narrative.StepActTransition:
		b.WriteString(gradient(strings.ToUpper(p.Title), p.Palette, p.Burnout.Desaturation) + "\n\n")
		if p.Subtitle != "" {
			b.WriteString(text.Render(wordwrap.String(p.Subtitle, width)) + "\n")
		}

	case narrative.StepMoment, narrative.StepClimax:
		if p.Title != "" {
			b.WriteString(titleStyle.Render(p.Title) + "\n\n")
		}
		for _, e := range p.Moment.Narrative {
			switch e.Type {
			case narrative.EntryDialogue:
				name := textfx.DisplayName(e.Speaker)
				b.WriteString(speakerStyle.Render(name+": ") + wordwrap.String(e.Text, width-len(name)-2) + "\n\n")
			case narrative.EntryMonologue:
				b.WriteString(monologueStyle.Render(wordwrap.String(e.Text, width)) + "\n\n")
			case narrative.EntryChoices:
				if e.Prompt != "" {
					b.WriteString(titleStyle.Render(e.Prompt) + "\n")
				}
			default:
				b.WriteString(text.Render(wordwrap.String(e.Text, width)) + "\n\n")
			}
		}
		b.WriteString(m.renderOptions(width))

	case narrative.StepPlanning:
		b.WriteString(titleStyle.Render(fmt.Sprintf("Plan your day: %d of %d hours", m.alloc.Total(), p.HoursPerDay)) + "\n\n")
		for i, a := range p.Activities {
			line := fmt.Sprintf("%-24s %-7s %s %dh", a.Label, a.Category, strings.Repeat("█", m.alloc[a.ID]), m.alloc[a.ID])
			b.WriteString(optionLine(i == m.selected, line) + "\n")
		}

	case narrative.StepCareerRoulette:
		b.WriteString(titleStyle.Render("Where do you land?") + "\n\n")
		b.WriteString(m.renderOptions(width))

	case narrative.StepMirrorMoment:
		if p.Text != "" {
			b.WriteString(text.Render(wordwrap.String(p.Text, width)) + "\n\n")
		}
		if mr := p.Mirror; mr != nil {
			b.WriteString(fmt.Sprintf("College tier: %d\n", mr.CollegeTier))
			b.WriteString(fmt.Sprintf("Review: %s (%.0f)\n", strings.ReplaceAll(string(mr.Performance.Rating), "_", " "), mr.Performance.Score))
			b.WriteString(fmt.Sprintf("Hours worked: %d  With people: %d  Deliveries: %d\n",
				mr.Metrics.HoursWorked, mr.Metrics.HoursWithPeople, mr.Metrics.DoorDashOrders))
		}

	case narrative.StepScrapbook:
		if p.Ending != nil {
			b.WriteString(gradient(p.Ending.Title, p.Palette, 0) + "\n\n")
			b.WriteString(text.Render(wordwrap.String(p.Ending.Text, width)) + "\n\n")
		}
		b.WriteString(titleStyle.Render("Scrapbook") + "\n")
		for _, e := range p.Scrapbook {
			b.WriteString(fmt.Sprintf("Act %d  %s\n", e.Act, wordwrap.String(e.Text, width-8)))
		}
	}

	b.WriteString("\n" + promptStyle.Render(m.hint()))
	return b.String()
}

func (m *ConsoleUI) renderOptions(width int) string {
	var b strings.Builder
	for i, o := range m.options() {
		b.WriteString(optionLine(i == m.selected, fmt.Sprintf("%d. %s", i+1, wordwrap.String(o, width-6))) + "\n")
	}
	return b.String()
}

func (m *ConsoleUI) hint() string {
	switch {
	case m.prompt.Final:
		return "Press Enter to close the book."
	case m.prompt.Kind == narrative.StepPlanning:
		return "↑/↓ pick, ←/→ hours, Enter to live the day"
	case len(m.options()) > 0:
		return "↑/↓ or 1-9 to choose, Enter to confirm"
	default:
		return "Press Enter to continue"
	}
}

func optionLine(selected bool, s string) string {
	if selected {
		return selectedStyle.Render("▶ " + s)
	}
	return "  " + s
}

func renderStatus(s status) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LIFE") + "\n\n")
	b.WriteString(fmt.Sprintf("Act %d, week %d, day %d\n\n", s.Clock.Act, s.Clock.Week, s.Clock.Day))

	for _, name := range stats.Names {
		v, ok := s.Stats[name]
		if !ok {
			continue
		}
		if name == stats.Wealth {
			b.WriteString(fmt.Sprintf("%-13s $%.0f\n", name, v))
			continue
		}
		b.WriteString(fmt.Sprintf("%-13s %3.0f %s\n", name, v, strings.Repeat("▮", int(v)/10)))
	}

	if s.CareerTrack != "" {
		b.WriteString("\nCareer: " + textfx.DisplayName(s.CareerTrack) + "\n")
	}

	if len(s.Relationships) > 0 {
		b.WriteString("\n" + titleStyle.Render("PEOPLE") + "\n\n")
	}
	for _, r := range s.Relationships {
		style := lipgloss.NewStyle().Foreground(opacityColor(r.Opacity))
		line := fmt.Sprintf("%-12s %3.0f", r.Name, r.Connection)
		if r.Lost {
			line += " (lost)"
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

// opacityColor maps a portrait opacity onto the grayscale ramp.
func opacityColor(opacity float64) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(232 + int(opacity*23)))
}

// desaturate pulls a hex color's chroma down by amount in [0,1].
func desaturate(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil || amount <= 0 {
		return hex
	}
	h, chroma, l := c.Hcl()
	return colorful.Hcl(h, chroma*(1-amount), l).Clamped().Hex()
}

// gradient colors s across the palette, one color band per run of runes.
func gradient(s string, p *narrative.Palette, desat float64) string {
	if p == nil || len(p.Colors) == 0 {
		return titleStyle.Render(s)
	}
	runes := []rune(s)
	colors := p.Colors
	var b strings.Builder
	for i, r := range runes {
		c := colors[i*len(colors)/max(len(runes), 1)]
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(desaturate(c, desat))).Render(string(r)))
	}
	return b.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case promptMsg:
		// A step finished while the modal was up; keep it.
		m.showQuitModal = false
		model, cmd := m.Update(msg)
		if ui, ok := model.(ConsoleUI); ok {
			ui.showQuitModal = true
			return ui, cmd
		}
		return model, cmd

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
				return m, nil
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
	content.WriteString("Your progress is saved after every step.")
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

	mainWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - mainWidth - 6

	mainPanel := mainPanelStyle.Width(mainWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.mainViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(mainWidth-4, 1))),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, metaPanel)
}
