package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-trip-keeper/models"
)

const (
	defaultPollInterval = time.Second
	noticeDuration      = 2 * time.Second
)

const (
	opSync = "Sync"
	opPush = "Push"
	opPull = "Pull"
)

// replaced in tests
var clipboardWriteAll = clipboard.WriteAll

type statusModel struct {
	ctx    context.Context
	engine Engine
	data   Lister
	info   BuildInfo
	poll   time.Duration
	now    func() time.Time

	status models.SyncStatus
	counts map[models.Collection]int
	loaded bool

	syncScreen syncModel
	last       *opDoneMsg
	notice     string

	showError    bool
	errorOverlay errorOverlayModel
	showAbout    bool
	quit         bool
}

func newStatusModel(ctx context.Context, engine Engine, data Lister, info BuildInfo, poll time.Duration) statusModel {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return statusModel{
		ctx:        ctx,
		engine:     engine,
		data:       data,
		info:       info,
		poll:       poll,
		now:        time.Now,
		syncScreen: newSyncModel(),
	}
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.cmdRefresh(), m.cmdPoll())
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case statusMsg:
		m.status = msg.status
		m.counts = msg.counts
		m.loaded = true
		return m, nil

	case pollMsg:
		return m, tea.Batch(m.cmdRefresh(), m.cmdPoll())

	case opDoneMsg:
		m.syncScreen.running = ""
		m.last = &msg
		if msg.err != nil {
			m.showErrorf(humanizeError(msg.err))
		} else {
			m.notice = msg.op + ": " + describeResult(msg.result)
		}
		return m, tea.Batch(m.cmdRefresh(), cmdClearNotice())

	case copiedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.notice = "Report copied to clipboard"
		return m, cmdClearNotice()

	case clearNoticeMsg:
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		if m.syncScreen.running == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.syncScreen.spinner, cmd = m.syncScreen.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m statusModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showError {
		if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
			m.showError = false
			m.errorOverlay.message = ""
		}
		return m, nil
	}
	if m.showAbout {
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.enter) || key.Matches(msg, keys.about) {
			m.showAbout = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.quit):
		m.quit = true
		return m, tea.Quit
	case key.Matches(msg, keys.about):
		m.showAbout = true
		return m, nil
	case key.Matches(msg, keys.copy):
		return m, cmdCopyToClipboard(buildReport(m.status, m.counts, m.last, m.now()))
	case key.Matches(msg, keys.refresh):
		return m, m.cmdRefresh()
	}

	if m.syncScreen.running != "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.sync):
		return m.start(opSync, m.engine.FullSync)
	case key.Matches(msg, keys.push):
		return m.start(opPush, m.engine.Push)
	case key.Matches(msg, keys.pull):
		return m.start(opPull, m.engine.Pull)
	}

	return m, nil
}

func (m statusModel) start(op string, run func(context.Context) (models.SyncResult, error)) (tea.Model, tea.Cmd) {
	m.syncScreen.running = op
	m.notice = ""
	ctx := m.ctx
	return m, tea.Batch(m.syncScreen.spinner.Tick, func() tea.Msg {
		result, err := run(ctx)
		return opDoneMsg{op: op, result: result, err: err}
	})
}

func (m statusModel) View() string {
	if m.showError {
		return appStyle.Render(m.errorOverlay.View())
	}
	if m.showAbout {
		return appStyle.Render(renderBuildInfoWindow(m.info))
	}

	var b strings.Builder
	if !m.loaded {
		b.WriteString("Loading...")
	} else {
		b.WriteString(m.renderStatus())
	}

	b.WriteString("\n")
	switch {
	case m.syncScreen.running != "":
		b.WriteString("\n" + m.syncScreen.View())
	case m.notice != "":
		b.WriteString("\n" + fitText(m.notice, 72))
	}

	hotKeys := "s: sync  p: push  l: pull  c: copy report  r: refresh  i: about  q: quit"
	return appStyle.Render(renderPage("TRIP KEEPER SYNC STATUS", b.String(), hotKeys))
}

func (m statusModel) renderStatus() string {
	var b strings.Builder
	s := m.status

	connection := offlineStyle.Render("offline")
	if s.Online {
		connection = onlineStyle.Render("online")
	}
	fmt.Fprintf(&b, "Connection:        %s\n", connection)
	fmt.Fprintf(&b, "State:             %s\n", stateLabel(s))
	fmt.Fprintf(&b, "Last sync:         %s\n", formatLastSync(s.LastSync, m.now()))
	fmt.Fprintf(&b, "Queued changes:    %d\n", s.PendingMutations)
	fmt.Fprintf(&b, "Pending deletions: %d\n", s.LedgerSize)
	if len(s.Unpushed) > 0 {
		fmt.Fprintf(&b, "Unpushed changes:  %s\n", joinCollections(s.Unpushed))
	}
	if s.DroppedTotal > 0 {
		fmt.Fprintf(&b, "Dropped changes:   %d\n", s.DroppedTotal)
	}
	if s.LastError != "" {
		fmt.Fprintf(&b, "Last error:        %s\n", fitText(s.LastError, 60))
	}

	b.WriteString("\nLocal records\n")
	for _, c := range models.Collections {
		n, ok := m.counts[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-14s %d\n", c, n)
	}

	if m.last != nil && m.last.err == nil {
		fmt.Fprintf(&b, "\nLast operation: %s, %s", m.last.op, describeResult(m.last.result))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *statusModel) showErrorf(message string) {
	m.showError = true
	m.errorOverlay.message = message
}

func (m statusModel) cmdRefresh() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	data := m.data
	return func() tea.Msg {
		return statusMsg{status: engine.Status(ctx), counts: countRecords(ctx, data)}
	}
}

func (m statusModel) cmdPoll() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWriteAll(text); err != nil {
			return copiedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearNotice() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

// countRecords counts the records of every list collection. Collections
// that fail to load are left out.
func countRecords(ctx context.Context, data Lister) map[models.Collection]int {
	counts := make(map[models.Collection]int, len(models.Collections))
	for _, c := range models.Collections {
		if !c.IsList() {
			continue
		}
		records, err := data.List(ctx, c)
		if err != nil {
			continue
		}
		counts[c] = len(records)
	}
	return counts
}

func stateLabel(s models.SyncStatus) string {
	switch {
	case s.Syncing:
		return "syncing"
	case s.PendingSync:
		return "sync scheduled"
	default:
		return "idle"
	}
}
