package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bigincgenesis/bigcli/internal/shares"
)

// DashboardData is what the live dashboard shows. Producers fill it from
// polled reads; empty strings render as "…".
type DashboardData struct {
	Network string
	Wallet  string // empty when no wallet is connected
	Genesis string
	Token   string
	Symbol  string

	Figures          shares.Figures
	PresaleActive    bool
	PresaleValuation string
	TotalValuation   string
	Balance          string
	Allowance        string

	Loading   bool
	Err       string
	UpdatedAt time.Time
}

// DashboardModel is the Bubble Tea model for `bigcli watch`.
type DashboardModel struct {
	snapshot func() DashboardData
	updates  <-chan struct{}
	refetch  func()
	refresh  time.Duration

	data     DashboardData
	frame    int
	quitting bool
}

type dashUpdateMsg struct{}
type dashTickMsg time.Time

var dashFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewDashboardModel builds the model. snapshot is read on every update
// signal and on a one second tick; refetch runs on the r key.
func NewDashboardModel(snapshot func() DashboardData, updates <-chan struct{}, refetch func()) DashboardModel {
	return DashboardModel{
		snapshot: snapshot,
		updates:  updates,
		refetch:  refetch,
		refresh:  time.Second,
		data:     snapshot(),
	}
}

// Data returns the last snapshot the model rendered.
func (m DashboardModel) Data() DashboardData { return m.data }

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), dashTick(m.refresh))
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.refetch != nil {
				m.refetch()
			}
		}

	case dashUpdateMsg:
		m.data = m.snapshot()
		return m, m.waitForUpdate()

	case dashTickMsg:
		m.frame++
		m.data = m.snapshot()
		return m, dashTick(m.refresh)
	}
	return m, nil
}

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	d := m.data

	var sb strings.Builder
	status := ""
	if d.Loading {
		status = " " + StyleInfo.Render(dashFrames[m.frame%len(dashFrames)])
	}
	sb.WriteString(StyleTitle.Render("BigInc Genesis · "+d.Network) + status + "\n")

	updated := "never"
	if !d.UpdatedAt.IsZero() {
		updated = d.UpdatedAt.Format("15:04:05")
	}
	sb.WriteString(Meta(fmt.Sprintf("Updated: %s · r refresh · q quit", updated)) + "\n\n")

	sb.WriteString(RenderShareChart(d.Figures, 0) + "\n\n")

	presale := StyleMeta.Render("closed")
	if d.PresaleActive {
		presale = StyleSuccess.Render("active")
	}
	pairs := [][2]string{
		{"Presale", presale},
		{"Presale valuation", orEllipsis(d.PresaleValuation)},
		{"Total valuation", orEllipsis(d.TotalValuation)},
	}
	if d.Wallet == "" {
		pairs = append(pairs, [2]string{"Wallet", "not connected (bigcli wallet add)"})
	} else {
		pairs = append(pairs,
			[2]string{"Wallet", TruncateAddr(d.Wallet)},
			[2]string{"Balance", orEllipsis(d.Balance) + " " + d.Symbol},
			[2]string{"Allowance", orEllipsis(d.Allowance)},
		)
	}
	sb.WriteString(KeyValueBlock("", pairs) + "\n")

	if d.Err != "" {
		sb.WriteString(Err(d.Err) + "\n")
	}
	sb.WriteString(Meta(fmt.Sprintf("Contract: %s · Token: %s", TruncateAddr(d.Genesis), TruncateAddr(d.Token))))
	return sb.String()
}

func (m DashboardModel) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return dashUpdateMsg{}
	}
}

func dashTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return dashTickMsg(t) })
}

func orEllipsis(s string) string {
	if s == "" {
		return "…"
	}
	return s
}
