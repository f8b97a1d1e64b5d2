package dashboard

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/configwriter"
	"github.com/thoreinstein/mcpm/internal/discovery"
	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/health"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

const (
	// tickInterval is how often the loop drains probe results and ages
	// the status line.
	tickInterval = 200 * time.Millisecond

	// statusTicks keeps a status message up for about three seconds.
	statusTicks = 15
)

// Options wires the dashboard to its engines. Zero values get defaults.
type Options struct {
	Cwd            string
	Logger         *slog.Logger
	Scanner        *discovery.Scanner
	Prober         *health.Prober
	Writer         *configwriter.Writer
	DefaultClients []client.Kind
	ShowSecrets    bool

	// Changes, when set, triggers a rescan whenever it delivers.
	Changes <-chan struct{}
}

type (
	tickMsg       time.Time
	resultsMsg    struct{}
	changedMsg    struct{}
	editorDoneMsg struct {
		path string
		err  error
	}
)

// Model is the dashboard state. It is driven by a tea.Program.
type Model struct {
	ctx  context.Context
	opts Options

	queue  *health.Queue
	result *mcp.DiscoveryResult

	selected   int
	scroll     int
	showErrors bool
	checking   int

	mode          mode
	pendingRescan bool
	wizard        *addWizard
	remove        *removeForm
	sync          *syncForm

	status      string
	statusTimer int

	width  int
	height int
}

var _ tea.Model = (*Model)(nil)

// New builds a dashboard for opts.Cwd and runs the first scan. ctx bounds
// every probe the dashboard starts.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}
	if opts.Scanner == nil {
		opts.Scanner = discovery.New(discovery.WithLogger(opts.Logger))
	}
	if opts.Prober == nil {
		opts.Prober = health.NewProber(health.WithLogger(opts.Logger))
	}
	if opts.Writer == nil {
		opts.Writer = configwriter.New(configwriter.WithLogger(opts.Logger))
	}
	if len(opts.DefaultClients) == 0 {
		opts.DefaultClients = []client.Kind{client.ClaudeCodeProject}
	}

	m := &Model{
		ctx:   ctx,
		opts:  opts,
		queue: health.NewQueue(),
	}
	m.refresh()
	return m
}

// Result returns the current discovery result.
func (m *Model) Result() *mcp.DiscoveryResult { return m.result }

// Init starts the tick, the probe-result wait and, if configured, the
// change wait.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitResults(), m.waitChanges())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitResults() tea.Cmd {
	ready := m.queue.Ready()
	return func() tea.Msg {
		<-ready
		return resultsMsg{}
	}
}

func (m *Model) waitChanges() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	changes := m.opts.Changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.poll()
		m.tickStatus()
		return m, tick()

	case resultsMsg:
		m.poll()
		return m, m.waitResults()

	case changedMsg:
		if m.mode != modeNormal {
			m.pendingRescan = true
			return m, m.waitChanges()
		}
		m.refresh()
		m.setStatus("Config changed on disk; rescanned")
		return m, m.waitChanges()

	case editorDoneMsg:
		if msg.err != nil {
			m.setStatus("Editor failed: " + msg.err.Error())
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.forceQuit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			m.updateAdd(msg)
		case modeRemove:
			m.updateRemove(msg)
		case modeSync:
			m.updateSync(msg)
		default:
			return m, m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.quit):
		return tea.Quit
	case key.Matches(msg, keys.refresh):
		m.refresh()
	case key.Matches(msg, keys.errors):
		m.showErrors = !m.showErrors
	case key.Matches(msg, keys.check):
		m.checkSelected()
	case key.Matches(msg, keys.checkAll):
		m.checkAll()
	case key.Matches(msg, keys.up):
		if m.selected > 0 {
			m.selected--
			m.scroll = 0
		}
	case key.Matches(msg, keys.down):
		if m.selected+1 < len(m.result.Servers) {
			m.selected++
			m.scroll = 0
		}
	case key.Matches(msg, keys.pageUp):
		if m.scroll > 0 {
			m.scroll--
		}
	case key.Matches(msg, keys.pageDown):
		m.scroll++
	case key.Matches(msg, keys.add):
		m.wizard = newAddWizard(m.opts.DefaultClients)
		m.mode = modeAdd
	case key.Matches(msg, keys.remove):
		m.startRemove()
	case key.Matches(msg, keys.sync):
		m.startSync()
	case key.Matches(msg, keys.edit):
		return m.edit()
	}
	return nil
}

func (m *Model) updateAdd(msg tea.KeyMsg) {
	w := m.wizard
	if key.Matches(msg, keys.back) {
		m.leaveMode()
		return
	}

	switch {
	case w.typing():
		switch {
		case key.Matches(msg, keys.enter):
			w.advance()
		case key.Matches(msg, keys.backspace):
			w.pop()
		case msg.Type == tea.KeySpace:
			w.push(" ")
		case msg.Type == tea.KeyRunes && !msg.Alt:
			w.push(string(msg.Runes))
		}
	case w.step == stepClients:
		switch {
		case key.Matches(msg, keys.up):
			w.clients.up()
		case key.Matches(msg, keys.down):
			w.clients.down()
		case key.Matches(msg, keys.toggle):
			w.clients.toggle()
			w.err = ""
		case key.Matches(msg, keys.enter):
			w.advance()
		}
	case w.step == stepConfirm:
		switch {
		case key.Matches(msg, keys.confirm):
			name := w.serverName()
			res := m.opts.Writer.AddToClients(w.selected(), m.opts.Cwd, name, w.value())
			m.finish(res.Summary("Added", name))
		case key.Matches(msg, keys.decline):
			m.leaveMode()
		}
	}
}

func (m *Model) updateRemove(msg tea.KeyMsg) {
	f := m.remove
	switch {
	case key.Matches(msg, keys.back):
		m.leaveMode()
	case f.confirming:
		switch {
		case key.Matches(msg, keys.confirm):
			res := m.opts.Writer.RemoveFromClients(m.opts.Cwd, f.selected())
			m.finish(res.Summary("Removed", f.name))
		case key.Matches(msg, keys.decline):
			m.leaveMode()
		}
	case key.Matches(msg, keys.up):
		f.list.up()
	case key.Matches(msg, keys.down):
		f.list.down()
	case key.Matches(msg, keys.toggle):
		f.list.toggle()
	case key.Matches(msg, keys.enter):
		if len(f.list.chosen()) > 0 {
			f.confirming = true
		}
	}
}

func (m *Model) updateSync(msg tea.KeyMsg) {
	f := m.sync
	switch {
	case key.Matches(msg, keys.back):
		m.leaveMode()
	case key.Matches(msg, keys.up):
		f.list.up()
	case key.Matches(msg, keys.down):
		f.list.down()
	case key.Matches(msg, keys.toggle):
		f.list.toggle()
	case key.Matches(msg, keys.enter):
		kinds := f.selected()
		if len(kinds) == 0 {
			return
		}
		res := m.opts.Writer.Sync(kinds, m.opts.Cwd, f.src)
		m.finish(res.Summary("Synced", f.src.Name))
	}
}

func (m *Model) startRemove() {
	s, ok := m.current()
	if !ok {
		return
	}
	f := newRemoveForm(s.Name, m.result)
	if len(f.records) == 0 {
		m.setStatus("No writable configs for this server")
		return
	}
	m.remove = f
	m.mode = modeRemove
}

func (m *Model) startSync() {
	s, ok := m.current()
	if !ok {
		return
	}
	missing := m.result.ClientsWithout(s.Name)
	if len(missing) == 0 {
		m.setStatus("Server already in all clients")
		return
	}
	m.sync = newSyncForm(s, missing)
	m.mode = modeSync
}

// edit suspends the dashboard and opens the selected record's source
// file in $EDITOR.
func (m *Model) edit() tea.Cmd {
	s, ok := m.current()
	if !ok {
		return nil
	}
	path := s.SourcePath
	if _, err := os.Stat(path); err != nil {
		m.setStatus("Config file doesn't exist: " + path)
		return nil
	}
	return tea.ExecProcess(editor.Command(path), func(err error) tea.Msg {
		return editorDoneMsg{path: path, err: err}
	})
}

func (m *Model) checkSelected() {
	if !m.result.MarkChecking(m.selected) {
		if _, ok := m.current(); ok {
			m.setStatus("Only stdio servers can be checked")
		}
		return
	}
	m.opts.Prober.Spawn(m.ctx, m.selected, m.result.Servers[m.selected], m.queue)
	m.checking++
}

func (m *Model) checkAll() {
	n := m.opts.Prober.CheckAll(m.ctx, m.result, m.queue)
	if n == 0 {
		m.setStatus("No stdio servers to check")
		return
	}
	m.checking += n
}

// poll applies every queued probe result. Results for slots that changed
// since the probe started are dropped.
func (m *Model) poll() {
	for _, r := range m.queue.Drain() {
		if !m.result.Apply(r) {
			m.opts.Logger.Debug("dropping stale probe result", "server", r.Key.String(), "index", r.Index)
		}
		if m.checking > 0 {
			m.checking--
		}
	}
}

// refresh rescans every client and clamps the selection.
func (m *Model) refresh() {
	m.result = m.opts.Scanner.Discover(m.opts.Cwd)
	if m.selected >= len(m.result.Servers) {
		m.selected = max(len(m.result.Servers)-1, 0)
	}
	m.scroll = 0
}

func (m *Model) finish(status string) {
	m.setStatus(status)
	m.pendingRescan = true
	m.leaveMode()
}

// leaveMode closes any open form and runs a rescan held back while it was
// open.
func (m *Model) leaveMode() {
	m.mode = modeNormal
	m.wizard, m.remove, m.sync = nil, nil, nil
	if m.pendingRescan {
		m.pendingRescan = false
		m.refresh()
	}
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusTimer = statusTicks
}

func (m *Model) tickStatus() {
	if m.statusTimer == 0 {
		return
	}
	m.statusTimer--
	if m.statusTimer == 0 {
		m.status = ""
	}
}

func (m *Model) current() (mcp.Server, bool) {
	if m.selected < 0 || m.selected >= len(m.result.Servers) {
		return mcp.Server{}, false
	}
	return m.result.Servers[m.selected], true
}
