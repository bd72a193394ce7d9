package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 4 * time.Second

type toastMsg struct {
	title   string
	message string
}

type toastExpiredMsg struct{ seq int }

type cueMsg struct{}

// Alerter queues bells and toasts for the feed view. Both are delivered to the
// running program as messages; nothing is written to the terminal from the
// feed's goroutines.
type Alerter struct {
	out    io.Writer
	cues   chan struct{}
	toasts chan toastMsg
}

func NewAlerter(out io.Writer) *Alerter {
	return &Alerter{out: out, cues: make(chan struct{}, 1), toasts: make(chan toastMsg, 8)}
}

// PlayCue queues a bell. Cues arriving while one is pending coalesce.
func (a *Alerter) PlayCue() error {
	select {
	case a.cues <- struct{}{}:
	default:
	}
	return nil
}

// Toast never blocks; when the view is behind, older toasts win.
func (a *Alerter) Toast(title, message string) {
	select {
	case a.toasts <- toastMsg{title: title, message: message}:
	default:
	}
}

// ring is only called from App.Update. BEL moves no cursor, so it leaves the
// renderer's frame intact.
func (a *Alerter) ring() error {
	_, err := io.WriteString(a.out, "\a")
	return err
}

func (a *Alerter) wait() tea.Cmd {
	return func() tea.Msg {
		return <-a.toasts
	}
}

func (a *Alerter) waitCue() tea.Cmd {
	return func() tea.Msg {
		<-a.cues
		return cueMsg{}
	}
}
