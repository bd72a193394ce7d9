package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"turfbook/internal/browser"
	"turfbook/internal/feed"
)

const actionTimeout = 15 * time.Second

// Feed is the part of the feed controller the view drives.
type Feed interface {
	Notifications() []feed.Entry
	UnreadCount() int
	MarkAsRead(id uuid.UUID)
	MarkAllAsRead(ctx context.Context) error
	Reconcile(ctx context.Context) error
	Updates() <-chan struct{}
}

// -- messages --

type feedUpdatedMsg struct{}

type markAllDoneMsg struct{ err error }

type reconcileDoneMsg struct{ err error }

// App is the root Bubbletea model of the notification feed.
type App struct {
	feed    Feed
	alerter *Alerter
	baseURL string

	openURL  func(string) error
	copyText func(string) error
	now      func() time.Time

	entries  []feed.Entry
	unread   int
	cursor   int
	status   string
	err      string
	toast    *toastMsg
	toastSeq int
	width    int
	height   int
}

// NewApp creates the feed view. Relative links resolve against baseURL.
func NewApp(f Feed, alerter *Alerter, baseURL string) App {
	a := App{
		feed:     f,
		alerter:  alerter,
		baseURL:  baseURL,
		openURL:  browser.Open,
		copyText: clipboard.WriteAll,
		now:      time.Now,
	}
	a.refresh()
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForUpdate()}
	if a.alerter != nil {
		cmds = append(cmds, a.alerter.wait(), a.alerter.waitCue())
	}
	return tea.Batch(cmds...)
}

func (a App) waitForUpdate() tea.Cmd {
	if a.feed == nil {
		return nil
	}
	ch := a.feed.Updates()
	return func() tea.Msg {
		<-ch
		return feedUpdatedMsg{}
	}
}

func (a *App) refresh() {
	if a.feed == nil {
		return
	}
	a.entries = a.feed.Notifications()
	a.unread = a.feed.UnreadCount()
	if a.cursor >= len(a.entries) {
		a.cursor = len(a.entries) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) selected() (feed.Entry, bool) {
	if a.cursor < 0 || a.cursor >= len(a.entries) {
		return feed.Entry{}, false
	}
	return a.entries[a.cursor], true
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case feedUpdatedMsg:
		a.refresh()
		return a, a.waitForUpdate()

	case toastMsg:
		a.toastSeq++
		a.toast = &msg
		seq := a.toastSeq
		expire := tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
		if a.alerter == nil {
			return a, expire
		}
		return a, tea.Batch(a.alerter.wait(), expire)

	case cueMsg:
		if a.alerter == nil {
			return a, nil
		}
		if err := a.alerter.ring(); err != nil {
			log.Printf("tui_bell_failed err=%v", err)
		}
		return a, a.alerter.waitCue()

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = nil
		}
		return a, nil

	case markAllDoneMsg:
		if msg.err != nil {
			a.err = "mark all as read failed: " + msg.err.Error()
		} else {
			a.err = ""
			a.status = "All notifications marked as read"
		}
		a.refresh()
		return a, nil

	case reconcileDoneMsg:
		if msg.err != nil {
			a.err = "refresh failed: " + msg.err.Error()
		} else {
			a.err = ""
			a.status = "Feed refreshed"
		}
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "enter":
		e, ok := a.selected()
		if !ok {
			return a, nil
		}
		a.feed.MarkAsRead(e.ID)
		a.refresh()
		link, err := resolveLink(a.baseURL, e.Link)
		if err != nil {
			a.err = err.Error()
			return a, nil
		}
		if err := a.openURL(link); err != nil {
			a.err = "could not open browser: " + err.Error()
			return a, nil
		}
		a.err = ""
		a.status = "Opened " + link
	case "c":
		e, ok := a.selected()
		if !ok {
			return a, nil
		}
		link, err := resolveLink(a.baseURL, e.Link)
		if err != nil {
			a.err = err.Error()
			return a, nil
		}
		if err := a.copyText(link); err != nil {
			a.err = "copy failed: " + err.Error()
			return a, nil
		}
		a.err = ""
		a.status = "Copied " + link
	case "a":
		f := a.feed
		a.status = "Marking all as read..."
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return markAllDoneMsg{err: f.MarkAllAsRead(ctx)}
		}
	case "r":
		f := a.feed
		a.status = "Refreshing..."
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return reconcileDoneMsg{err: f.Reconcile(ctx)}
		}
	}
	return a, nil
}

func (a App) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("TURFBOOK  notifications"))
	if a.unread > 0 {
		b.WriteString("  " + badgeStyle.Render(fmt.Sprintf("%d unread", a.unread)))
	}
	b.WriteString("\n\n")

	if a.toast != nil {
		body := headerStyle.Render(a.toast.title)
		if a.toast.message != "" {
			body += "\n" + a.toast.message
		}
		b.WriteString(toastStyle.Render(body) + "\n\n")
	}

	if len(a.entries) == 0 {
		b.WriteString(dimStyle.Render("  No notifications yet") + "\n")
	}

	width := a.width
	if width <= 0 {
		width = 80
	}
	now := time.Now()
	if a.now != nil {
		now = a.now()
	}

	for i, e := range a.entries {
		b.WriteString(a.renderRow(i, e, width, now) + "\n")
	}

	b.WriteString("\n")
	if a.err != "" {
		b.WriteString(errStyle.Render(a.err) + "\n")
	} else if a.status != "" {
		b.WriteString(dimStyle.Render(a.status) + "\n")
	}
	b.WriteString(dimStyle.Render("j/k move · enter open · a read all · c copy link · r refresh · q quit"))
	return b.String()
}

func (a App) renderRow(i int, e feed.Entry, width int, now time.Time) string {
	marker := "  "
	if i == a.cursor {
		marker = cursorStyle.Render("> ")
	}

	dot := " "
	if !e.IsRead {
		dot = cursorStyle.Render("•")
	}

	sync := ""
	switch e.Sync {
	case feed.SyncPending:
		sync = dimStyle.Render(" …")
	case feed.SyncFailed:
		sync = errStyle.Render(" !")
	}

	tag := typeStyle(string(e.Type)).Render(fmt.Sprintf("[%s]", e.Type))
	when := dimStyle.Render(formatTime(e.CreatedAt, now))

	text := e.Title
	if e.Message != "" {
		text += ": " + e.Message
	}
	text = truncStr(text, width-len(string(e.Type))-20)
	if e.IsRead {
		text = readStyle.Render(text)
	} else {
		text = unreadStyle.Render(text)
	}

	return fmt.Sprintf("%s%s %s %s %s%s", marker, dot, tag, text, when, sync)
}
