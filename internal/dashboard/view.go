package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/redact"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	nameWidth     = 18
	matrixName    = 20
	matrixCell    = 11
	maxMatrixRows = 11
)

// View renders the whole screen.
func (m *Model) View() string {
	width, height := m.size()

	header := m.viewHeader()
	footer := m.viewFooter()
	matrix := m.viewMatrix(width)

	bodyHeight := height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(matrix)
	bodyHeight = max(bodyHeight, 6)

	var body string
	switch {
	case m.showErrors && len(m.result.Errors) > 0:
		body = m.viewErrors(width, bodyHeight)
	default:
		body = m.viewPanels(width, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, matrix, footer)
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m *Model) viewHeader() string {
	n := len(m.result.Servers)
	noun := "servers"
	if n == 1 {
		noun = "server"
	}
	line := titleStyle.Render(" mcpm") + fmt.Sprintf("  %d %s", n, noun)
	if e := len(m.result.Errors); e > 0 {
		line += failStyle.Render(fmt.Sprintf(" [%d errors]", e))
	}
	if m.checking > 0 {
		line += warnStyle.Render(fmt.Sprintf(" [checking %d]", m.checking))
	}
	return line
}

func (m *Model) viewFooter() string {
	if m.status != "" {
		return " " + m.status
	}
	return helpStyle.Render(" " + helpLine(normalHelp))
}

func (m *Model) viewPanels(width, height int) string {
	leftWidth := width * 35 / 100
	rightWidth := width - leftWidth

	left := panel(" Servers ", m.serverLines(), leftWidth, height, 0)

	var right string
	switch m.mode {
	case modeAdd:
		right = panel(" Add Server ", m.wizardLines(), rightWidth, height, 0)
	case modeRemove:
		right = panel(fmt.Sprintf(" Remove %q ", m.remove.name), m.removeLines(), rightWidth, height, 0)
	case modeSync:
		right = panel(fmt.Sprintf(" Sync %q ", m.sync.src.Name), m.syncLines(), rightWidth, height, 0)
	default:
		right = panel(" Detail ", m.detailLines(), rightWidth, height, m.scroll)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// panel draws lines in a bordered box of the given outer size, starting
// at line offset.
func panel(title string, lines []string, width, height, offset int) string {
	innerH := max(height-2, 1)
	innerW := max(width-4, 1)
	if offset > len(lines)-1 {
		offset = max(len(lines)-1, 0)
	}
	lines = lines[offset:]
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	clip := lipgloss.NewStyle().MaxWidth(innerW)
	for i, l := range lines {
		lines[i] = clip.Render(l)
	}
	body := titleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return panelStyle.Width(width - 2).Height(innerH).Render(body)
}

func (m *Model) serverLines() []string {
	if len(m.result.Servers) == 0 {
		return []string{helpStyle.Render("No servers found. Press r to rescan.")}
	}
	lines := make([]string, len(m.result.Servers))
	for i, s := range m.result.Servers {
		line := fmt.Sprintf("%s %-*s %s", healthGlyph(s.Health), nameWidth, truncate(s.Name, nameWidth), s.Client.Label())
		if i == m.selected {
			line = selectedStyle.Render("▸" + line)
		} else {
			line = " " + line
		}
		lines[i] = line
	}
	return lines
}

func healthGlyph(h mcp.HealthStatus) string {
	switch h.State {
	case mcp.StateChecking:
		return warnStyle.Render("…")
	case mcp.StateHealthy:
		return healthyStyle.Render("●")
	case mcp.StateTimeout:
		return warnStyle.Render("◔")
	case mcp.StateError:
		return failStyle.Render("✗")
	default:
		return helpStyle.Render("○")
	}
}

func (m *Model) detailLines() []string {
	s, ok := m.current()
	if !ok {
		return []string{"No servers found. Press r to rescan."}
	}

	lines := []string{
		kv("Name", s.Name),
		kv("Client", s.Client.Label()),
		kv("Source", s.SourcePath),
		kv("Transport", s.Transport.Kind.String()),
	}

	t := s.Transport
	switch t.Kind {
	case mcp.TransportStdio:
		lines = append(lines, kv("Command", t.Command))
		if len(t.Args) > 0 {
			args := t.Args
			if !m.opts.ShowSecrets {
				args = redact.Args(args)
			}
			lines = append(lines, kv("Args", strings.Join(args, " ")))
		}
	case mcp.TransportHTTP, mcp.TransportSSE:
		u := t.URL
		if !m.opts.ShowSecrets {
			u = redact.URL(u)
		}
		lines = append(lines, kv("URL", u))
		if t.Headers != nil {
			lines = append(lines, "", sectionStyle.Render("Headers:"))
			lines = append(lines, m.pairs(t.Headers)...)
		}
	}

	if len(s.Env) > 0 {
		lines = append(lines, "", sectionStyle.Render("Environment:"))
		lines = append(lines, m.pairs(s.Env)...)
	} else {
		lines = append(lines, "", helpStyle.Render("No environment variables"))
	}

	lines = append(lines, "", kv("Health", healthText(s.Health)))
	if !s.LastChecked.IsZero() {
		lines = append(lines, kv("Checked", s.LastChecked.Format(time.TimeOnly)))
	}
	return lines
}

func (m *Model) pairs(values map[string]string) []string {
	if !m.opts.ShowSecrets {
		values = redact.Map(values)
	}
	out := make([]string, 0, len(values))
	for _, k := range mcp.SortedKeys(values) {
		out = append(out, "  "+helpStyle.Render(k+":")+" "+values[k])
	}
	return out
}

func healthText(h mcp.HealthStatus) string {
	switch h.State {
	case mcp.StateHealthy:
		return healthyStyle.Render(h.String())
	case mcp.StateTimeout:
		return warnStyle.Render("timed out")
	case mcp.StateError:
		return failStyle.Render(h.String())
	case mcp.StateChecking:
		return warnStyle.Render("checking…")
	default:
		return helpStyle.Render("not checked (press h)")
	}
}

func kv(k, v string) string {
	return keyStyle.Render(fmt.Sprintf("%-12s", k)) + v
}

func (m *Model) wizardLines() []string {
	w := m.wizard
	lines := []string{sectionStyle.Render(w.stepLabel()), ""}

	field := func(label, value string, active bool) string {
		if active {
			value += "█"
		}
		return kv(label, value)
	}
	lines = append(lines,
		field("Name", w.name, w.step == stepName),
		field("Command", w.command, w.step == stepCommand),
		field("Args", w.args, w.step == stepArgs),
	)
	for _, e := range w.env {
		lines = append(lines, kv("Env", e))
	}
	if w.step == stepEnv {
		lines = append(lines, field("Env", w.envInput, true))
	}

	if w.step >= stepClients {
		lines = append(lines, "")
		lines = append(lines, checklistLines(&w.clients, w.step == stepClients)...)
	}
	if w.step == stepConfirm {
		lines = append(lines, "", fmt.Sprintf("Add %q to %d client(s)? [y/n]", w.serverName(), len(w.selected())))
	}
	if w.err != "" {
		lines = append(lines, "", failStyle.Render(w.err))
	}
	lines = append(lines, "", helpStyle.Render("enter next  esc cancel"))
	return lines
}

func (m *Model) removeLines() []string {
	f := m.remove
	lines := checklistLines(&f.list, !f.confirming)
	if f.confirming {
		lines = append(lines, "", fmt.Sprintf("Remove %q from %d config(s)? [y/n]", f.name, len(f.list.chosen())))
	} else {
		lines = append(lines, "", helpStyle.Render("space toggle  enter confirm  esc cancel"))
	}
	return lines
}

func (m *Model) syncLines() []string {
	lines := checklistLines(&m.sync.list, true)
	return append(lines, "", helpStyle.Render("space toggle  enter sync  esc cancel"))
}

func checklistLines(c *checklist, active bool) []string {
	lines := make([]string, len(c.labels))
	for i, label := range c.labels {
		box := "[ ]"
		if c.on[i] {
			box = "[✓]"
		}
		line := box + " " + label
		if active && i == c.cursor {
			line = selectedStyle.Render("▸" + line)
		} else {
			line = " " + line
		}
		lines[i] = line
	}
	return lines
}

func (m *Model) viewErrors(width, height int) string {
	lines := []string{""}
	for _, e := range m.result.Errors {
		lines = append(lines, failStyle.Render(e))
	}
	innerH := max(height-2, 1)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	body := titleStyle.Render(" Parse Errors [! to close] ") + "\n" + strings.Join(lines, "\n")
	return errorPanelStyle.Width(width - 2).Height(innerH).Render(body)
}

// viewMatrix renders which active clients declare each distinct name.
func (m *Model) viewMatrix(width int) string {
	clients := m.result.ActiveClients
	if len(clients) == 0 {
		return panelStyle.Width(width - 2).Render(helpStyle.Render("No servers discovered across any client."))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" Client Matrix "))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", matrixName+2))
	for _, c := range clients {
		b.WriteString(titleStyle.Render(fmt.Sprintf("%-*s", matrixCell, c.Label())))
	}

	names := m.result.Names()
	matrix := m.result.Matrix()
	for i, name := range names {
		if i == maxMatrixRows {
			b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("… %d more", len(names)-i)))
			break
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-*s  ", matrixName, truncate(name, matrixName)))
		for _, has := range matrix[i] {
			cell := helpStyle.Render(fmt.Sprintf("%-*s", matrixCell, " ·"))
			if has {
				cell = healthyStyle.Render(fmt.Sprintf("%-*s", matrixCell, " ✓"))
			}
			b.WriteString(cell)
		}
	}
	return panelStyle.Width(width - 2).Render(b.String())
}

// truncate shortens s to at most n display cells, marking the cut.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
