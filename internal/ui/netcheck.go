package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CheckStatus is the probe state of one relay.
type CheckStatus int

const (
	CheckPending CheckStatus = iota
	CheckOK
	CheckMismatch
	CheckFailed
)

// CheckRow is one network in the relay check table.
type CheckRow struct {
	Network string
	Relay   string
	Want    int64 // expected chain id
	Status  CheckStatus
	ChainID int64
	Block   uint64
	Latency time.Duration
	ErrMsg  string
}

// CheckResult is delivered by a probe when it finishes.
type CheckResult struct {
	Network string
	ChainID int64
	Block   uint64
	Latency time.Duration
	Err     error
}

// CheckResultMsg wraps CheckResult as a Bubble Tea message.
type CheckResultMsg CheckResult

type checkTickMsg struct{}

// CheckModel is the Bubble Tea model behind `network check`. Probe is called
// once per row and again for failed rows on "r".
type CheckModel struct {
	Rows     []CheckRow
	Probe    func(network string) tea.Cmd
	frame    int
	quitting bool
}

// NewCheckModel creates a model with every row pending.
func NewCheckModel(rows []CheckRow, probe func(network string) tea.Cmd) CheckModel {
	return CheckModel{Rows: rows, Probe: probe}
}

func checkTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return checkTickMsg{} })
}

func (m CheckModel) Init() tea.Cmd {
	cmds := []tea.Cmd{checkTick()}
	for _, r := range m.Rows {
		cmds = append(cmds, m.Probe(r.Network))
	}
	return tea.Batch(cmds...)
}

// Done reports whether every probe has answered.
func (m CheckModel) Done() bool {
	for _, r := range m.Rows {
		if r.Status == CheckPending {
			return false
		}
	}
	return true
}

// Failed counts rows that errored or answered with the wrong chain id.
func (m CheckModel) Failed() int {
	n := 0
	for _, r := range m.Rows {
		if r.Status == CheckFailed || r.Status == CheckMismatch {
			n++
		}
	}
	return n
}

func (m CheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			var cmds []tea.Cmd
			for i := range m.Rows {
				if m.Rows[i].Status == CheckFailed {
					m.Rows[i].Status = CheckPending
					m.Rows[i].ErrMsg = ""
					cmds = append(cmds, m.Probe(m.Rows[i].Network))
				}
			}
			return m, tea.Batch(cmds...)
		}

	case checkTickMsg:
		m.frame = (m.frame + 1) % len(spinFrames)
		return m, checkTick()

	case CheckResultMsg:
		m.Rows = applyResult(m.Rows, CheckResult(msg))
	}
	return m, nil
}

func applyResult(rows []CheckRow, res CheckResult) []CheckRow {
	for i := range rows {
		if rows[i].Network != res.Network {
			continue
		}
		r := &rows[i]
		r.Latency = res.Latency
		switch {
		case res.Err != nil:
			r.Status = CheckFailed
			r.ErrMsg = trimErr(res.Err.Error())
		case res.ChainID != r.Want:
			r.Status = CheckMismatch
			r.ChainID = res.ChainID
			r.Block = res.Block
		default:
			r.Status = CheckOK
			r.ChainID = res.ChainID
			r.Block = res.Block
		}
	}
	return rows
}

func (m CheckModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	spin := spinFrames[m.frame]

	sb.WriteString(StyleTitle.Render("Relay check") + "\n")

	const (
		wNet   = 12
		wRelay = 34
		wChain = 10
		wBlock = 12
		wLat   = 8
	)
	sep := StyleMeta.Render(strings.Repeat("─", wNet+wRelay+wChain+wBlock+wLat+16))
	sb.WriteString(padR(StyleDim.Render("NETWORK"), wNet) + "  " +
		padR(StyleDim.Render("RELAY"), wRelay) + "  " +
		padR(StyleDim.Render("CHAIN ID"), wChain) + "  " +
		padR(StyleDim.Render("BLOCK"), wBlock) + "  " +
		padR(StyleDim.Render("LATENCY"), wLat) + "  " +
		StyleDim.Render("STATUS") + "\n")
	sb.WriteString(sep + "\n")

	for _, r := range m.Rows {
		chain, block, lat, status := renderCheckRow(r, spin)
		sb.WriteString(padR(NetworkName(r.Network), wNet) + "  " +
			padR(StyleAddress.Render(fit(r.Relay, wRelay)), wRelay) + "  " +
			padR(chain, wChain) + "  " +
			padR(block, wBlock) + "  " +
			padR(lat, wLat) + "  " +
			status + "\n")
	}
	sb.WriteString(sep + "\n\n")

	if m.Done() {
		if n := m.Failed(); n > 0 {
			sb.WriteString(Warn(fmt.Sprintf("%d relay(s) unhealthy", n)) + "\n")
		} else {
			sb.WriteString(Success("all relays healthy") + "\n")
		}
	}
	controls := "  [ q ] quit"
	if m.Failed() > 0 {
		controls += "   [ r ] retry failed"
	}
	sb.WriteString(StyleMeta.Render(controls) + "\n")
	return sb.String()
}

func renderCheckRow(r CheckRow, spin string) (chain, block, lat, status string) {
	dash := StyleMeta.Render("—")
	switch r.Status {
	case CheckPending:
		return StyleMeta.Render(spin), dash, dash, StyleMeta.Render("probing…")
	case CheckFailed:
		return dash, dash, dash, StyleError.Render("✗ " + r.ErrMsg)
	}
	chain = fmt.Sprintf("%d", r.ChainID)
	block = fmt.Sprintf("%d", r.Block)
	lat = StyleMeta.Render(r.Latency.Truncate(time.Millisecond).String())
	if r.Status == CheckMismatch {
		return StyleError.Render(chain), block, lat, StyleWarning.Render(fmt.Sprintf("⚠ want %d", r.Want))
	}
	return StyleSuccess.Render(chain), block, lat, StyleSuccess.Render("✓")
}

// padR pads s to visible width n, ignoring ANSI escapes.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

// trimErr drops the noisy head of transport errors and caps the length.
func trimErr(s string) string {
	for _, marker := range []string{"dial tcp", "connection refused", "context deadline", "no such host"} {
		if idx := strings.Index(s, marker); idx >= 0 {
			s = s[idx:]
			break
		}
	}
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
