// Package tui is an interactive browser for the frames a running daemon
// manages.
package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/ipc"
)

// Client is the subset of the IPC client the browser drives.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListFrames() ([]frame.State, error)
	CloseFrame(id uint32) error
	ToggleMaximize(id uint32) error
	MinimizeFrame(id uint32) error
}

const (
	refreshInterval = 2 * time.Second
	statusTimeout   = 3 * time.Second
)

// Run starts the browser and blocks until the user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// frameItem implements list.Item for one managed frame.
type frameItem struct {
	state frame.State
}

func (i frameItem) Title() string {
	title := i.state.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("0x%08x  %s", uint32(i.state.Client), title)
}

func (i frameItem) Description() string {
	desc := i.state.Frame.String()
	if i.state.Maximized {
		desc += "  maximized"
	}
	if !i.state.Visible {
		desc += "  hidden"
	}
	if i.state.Animation != "" {
		desc += "  " + i.state.Animation
	}
	return desc
}

func (i frameItem) FilterValue() string { return i.state.Title }

// framesMsg carries a snapshot fetched from the daemon.
type framesMsg struct {
	status *ipc.StatusData
	frames []frame.State
	err    error
}

// actionMsg is sent after a frame command completes.
type actionMsg struct {
	text string
	err  error
}

type clearStatusMsg struct{}

type tickMsg struct{}

type model struct {
	client Client
	list   list.Model

	connected  bool
	status     *ipc.StatusData
	statusText string
	statusErr  bool

	width  int
	height int
}

func newModel(client Client) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Frames"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{client: client, list: l}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func clearStatus() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m model) fetch() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return framesMsg{err: err}
		}
		frames, err := client.ListFrames()
		return framesMsg{status: status, frames: frames, err: err}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.listHeight())
		return m, nil

	case framesMsg:
		if msg.err != nil {
			m.connected = false
			m.status = nil
			m.list.SetItems(nil)
			return m, nil
		}
		m.connected = true
		m.status = msg.status
		items := make([]list.Item, 0, len(msg.frames))
		for _, st := range msg.frames {
			items = append(items, frameItem{state: st})
		}
		m.list.SetItems(items)
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.statusText = fmt.Sprintf("error: %v", msg.err)
			m.statusErr = true
		} else {
			m.statusText = msg.text
			m.statusErr = false
		}
		return m, tea.Batch(m.fetch(), clearStatus())

	case clearStatusMsg:
		m.statusText = ""
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		case "c", "x":
			return m, m.act("closed", m.client.CloseFrame)
		case "m":
			return m, m.act("toggled maximize", m.client.ToggleMaximize)
		case "n":
			return m, m.act("minimized", m.client.MinimizeFrame)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) selected() (frameItem, bool) {
	item, ok := m.list.SelectedItem().(frameItem)
	return item, ok
}

func (m model) act(verb string, fn func(id uint32) error) tea.Cmd {
	item, ok := m.selected()
	if !ok {
		return nil
	}
	id := uint32(item.state.Client)
	return func() tea.Msg {
		if err := fn(id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("%s 0x%08x", verb, id)}
	}
}

func (m model) listHeight() int {
	// status bar and help bar
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}
