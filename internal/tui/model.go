// Package tui is the interactive terminal browser: a result list with the
// pinned README entry on the left, the selected primitive on the right, and a
// search box that re-filters as the user types.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kamusis/primview/internal/detail"
	"github.com/kamusis/primview/internal/query"
	"github.com/kamusis/primview/internal/record"
	"github.com/kamusis/primview/internal/selection"
)

// Resolver is what the browser needs from the asset resolver.
type Resolver interface {
	detail.Checker
	Warm(ctx context.Context) bool
}

// Options tune the browser.
type Options struct {
	Limit    int           // visible result cap
	Debounce time.Duration // quiet period before re-filtering
	Readme   string        // text shown for the pinned entry
	Logger   *zap.Logger
}

// Layout rows above the first list row: title, search box, pane border.
const listTop = 3

// Messages

type resultsMsg struct {
	seq   int
	raw   string
	view  query.View
	terms []string
}

type detailMsg struct {
	row    int
	index  int
	detail detail.Detail
}

// sender delivers messages from background goroutines. It is filled in by
// Run once the program exists; a nil send drops the message.
type sender struct {
	send func(tea.Msg)
}

func (s *sender) deliver(msg tea.Msg) {
	if s != nil && s.send != nil {
		s.send(msg)
	}
}

// selectEvent is set by the controller's OnSelect hook and drained at the end
// of every Update to dispatch a detail load.
type selectEvent struct {
	row     int
	pending bool
}

// Model is the Bubble Tea model.
type Model struct {
	ctx      context.Context
	store    *record.Store
	resolver Resolver
	ctl      *selection.Controller
	debounce *selection.Debouncer
	out      *sender
	selected *selectEvent
	log      *zap.Logger

	input  textinput.Model
	pane   viewport.Model
	readme string
	terms  []string
	seq    int

	detail  detail.Detail
	loading bool

	offset int
	width  int
	height int
}

// NewModel creates the browser over store. The full dataset is shown until
// the first query.
func NewModel(ctx context.Context, store *record.Store, res Resolver, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "femur  p_fma=FMA9611  name^=left  /^rib/i"
	ti.CharLimit = 256

	ev := &selectEvent{}
	ctl := selection.New(query.All(store.Len()), opts.Limit)
	ctl.OnSelect(func(row int) {
		ev.row, ev.pending = row, true
	})

	readme := strings.TrimSpace(opts.Readme)
	if readme == "" {
		readme = "README.md not found."
	}

	return Model{
		ctx:      ctx,
		store:    store,
		resolver: res,
		ctl:      ctl,
		debounce: selection.NewDebouncer(opts.Debounce),
		out:      &sender{},
		selected: ev,
		log:      log,
		input:    ti,
		pane:     viewport.New(40, 10),
		readme:   readme,
	}
}

func (m Model) Init() tea.Cmd {
	res, ctx := m.resolver, m.ctx
	return func() tea.Msg {
		if res != nil {
			res.Warm(ctx)
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, m.width-4)
		m.pane.Width = max(10, m.width-m.listWidth()-4)
		m.pane.Height = max(1, m.bodyHeight()-2)
		m.refreshPane(false)

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case resultsMsg:
		if msg.seq == m.seq {
			m.applyResults(msg.raw, msg.view, msg.terms)
		}

	case detailMsg:
		if idx, ok := m.ctl.Selected(); ok && msg.row == m.ctl.Index() && idx == msg.index {
			m.detail, m.loading = msg.detail, false
			m.refreshPane(false)
		}
	}

	m.clampOffset()
	load := m.dispatchDetail()
	return m, tea.Batch(cmd, load)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	if m.input.Focused() {
		switch key {
		case "ctrl+c":
			m.debounce.Stop()
			return m, tea.Quit
		case "esc":
			m.input.Blur()
			m.resetQuery()
			return m, nil
		case "enter":
			m.input.Blur()
			m.refilterNow()
			return m, nil
		case "up":
			m.ctl.Move(selection.Up)
			return m, nil
		case "down":
			m.ctl.Move(selection.Down)
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.scheduleRefilter()
		}
		return m, cmd
	}

	switch key {
	case "q", "ctrl+c":
		m.debounce.Stop()
		return m, tea.Quit
	case "/":
		cmd := m.input.Focus()
		return m, cmd
	case "esc":
		if m.input.Value() != "" {
			m.resetQuery()
		}
	case "up", "k":
		m.ctl.Move(selection.Up)
	case "down", "j":
		m.ctl.Move(selection.Down)
	case "home", "g":
		m.ctl.SelectPinned()
	case "end", "G":
		m.ctl.JumpTo(m.ctl.Upper())
	case "pgup":
		if row := m.ctl.Index() - m.listHeight(); row < 1 {
			m.ctl.SelectPinned()
		} else {
			m.ctl.JumpTo(row)
		}
	case "pgdown":
		m.ctl.JumpTo(m.ctl.Index() + m.listHeight())
	case "ctrl+d":
		m.pane.HalfViewDown()
	case "ctrl+u":
		m.pane.HalfViewUp()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctl.Move(selection.Up)
	case tea.MouseButtonWheelDown:
		m.ctl.Move(selection.Down)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || msg.X >= m.listWidth() {
			return
		}
		row := m.offset + msg.Y - listTop
		if row < 0 || row > m.ctl.Upper() || msg.Y-listTop >= m.listHeight() {
			return
		}
		if row == 0 {
			m.ctl.SelectPinned()
		} else {
			m.ctl.JumpTo(row)
		}
	}
}

// scheduleRefilter evaluates the current input after the quiet period and
// posts the result. Only the newest request is applied.
func (m *Model) scheduleRefilter() {
	m.seq++
	seq, raw, store, out := m.seq, m.input.Value(), m.store, m.out
	m.debounce.Schedule(func() {
		view, terms := query.Evaluate(query.Parse(raw), store)
		out.deliver(resultsMsg{seq: seq, raw: raw, view: view, terms: terms})
	})
}

func (m *Model) refilterNow() {
	m.debounce.Stop()
	m.seq++
	raw := m.input.Value()
	view, terms := query.Evaluate(query.Parse(raw), m.store)
	m.applyResults(raw, view, terms)
}

func (m *Model) resetQuery() {
	m.debounce.Stop()
	m.seq++
	m.input.SetValue("")
	m.applyResults("", query.All(m.store.Len()), nil)
}

func (m *Model) applyResults(raw string, view query.View, terms []string) {
	m.log.Debug("results", zap.String("query", raw), zap.Int("matches", len(view)))
	m.terms, m.offset = terms, 0
	m.ctl.OnViewChanged(view)
}

// dispatchDetail turns a pending selection change into a detail load.
func (m *Model) dispatchDetail() tea.Cmd {
	if !m.selected.pending {
		return nil
	}
	m.selected.pending = false
	row := m.selected.row

	idx, ok := m.ctl.Selected()
	if !ok {
		m.detail, m.loading = detail.Detail{}, false
		m.refreshPane(true)
		return nil
	}
	rec := m.store.At(idx)
	m.detail = detail.Detail{Record: rec, Sections: detail.Sections(rec)}
	m.loading = rec.PrimitiveID != "" && m.resolver != nil
	m.refreshPane(true)
	if !m.loading {
		return nil
	}

	ctx, res := m.ctx, m.resolver
	return func() tea.Msg {
		return detailMsg{row: row, index: idx, detail: detail.Build(ctx, rec, res)}
	}
}

func (m *Model) refreshPane(top bool) {
	m.pane.SetContent(m.detailContent(m.pane.Width))
	if top {
		m.pane.GotoTop()
	}
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	idx := m.ctl.Index()
	if idx < m.offset {
		m.offset = idx
	}
	if idx >= m.offset+h {
		m.offset = idx - h + 1
	}
	m.offset = max(0, m.offset)
}

func (m Model) listWidth() int {
	return max(24, m.width*2/5)
}

func (m Model) bodyHeight() int {
	// title + search box above, status bar below
	return max(3, m.height-3)
}

func (m Model) listHeight() int {
	return max(1, m.bodyHeight()-2)
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, store *record.Store, res Resolver, opts Options) error {
	m := NewModel(ctx, store, res, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	m.out.send = p.Send
	defer m.debounce.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
