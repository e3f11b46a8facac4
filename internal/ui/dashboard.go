package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Stats holds the values the dashboard renders.
type Stats struct {
	UnitPrice string
	Balance   string
	Credits   string
}

// DashboardConfig wires the dashboard view to the rest of the app.
// Fetch and Pay run off the rendering loop; Pay resolves only once the
// transfer is confirmed or failed.
type DashboardConfig struct {
	Account  string
	Network  string
	Symbol   string
	Station  string
	Units    string
	Interval time.Duration
	Fetch    func() (Stats, error)
	Pay      func() (txHash string, err error)
}

type dashboardModel struct {
	cfg        DashboardConfig
	stats      Stats
	lastUpdate time.Time
	loaded     bool
	paying     bool
	lastTx     string
	notice     string
	quitting   bool
}

type tickMsg time.Time
type statsMsg Stats
type statsErrMsg string
type payDoneMsg string
type payErrMsg string

// NewDashboard creates the Bubble Tea program for the charging
// dashboard.
func NewDashboard(cfg DashboardConfig) *tea.Program {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	return tea.NewProgram(dashboardModel{cfg: cfg})
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.cfg.Interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		case "p":
			// The pay control is disabled while a transfer is pending.
			if m.paying {
				return m, nil
			}
			m.paying = true
			m.notice = ""
			return m, m.payCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.cfg.Interval))

	case statsMsg:
		m.stats = Stats(msg)
		m.lastUpdate = time.Now()
		m.loaded = true
		m.notice = ""

	case statsErrMsg:
		m.notice = string(msg)

	case payDoneMsg:
		m.paying = false
		m.lastTx = string(msg)
		return m, m.fetchCmd()

	case payErrMsg:
		m.paying = false
		m.notice = string(msg)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ VoltCharge Dashboard") + "\n")
	sb.WriteString(Meta(fmt.Sprintf("%s · %s · updated %s\n\n",
		TruncateAddr(m.cfg.Account), m.cfg.Network, m.updatedAt())))

	if m.notice != "" {
		sb.WriteString(Err(m.notice) + "\n")
	}

	if !m.loaded {
		sb.WriteString(Meta("Loading...") + "\n")
	} else {
		panel := fmt.Sprintf("Unit price   %s\nBalance      %s\nCredits      %s",
			Val(m.stats.UnitPrice),
			Val(m.stats.Balance)+" "+Meta(m.cfg.Symbol),
			Val(m.stats.Credits))
		sb.WriteString(StylePanel.Render(panel) + "\n")
	}

	if m.paying {
		sb.WriteString(StyleWarning.Render("⏳ payment pending — waiting for confirmation") + "\n")
	} else if m.lastTx != "" {
		sb.WriteString(Success("paid — tx "+TruncateAddr(m.lastTx)) + "\n")
	}

	sb.WriteString("\n" + Meta(m.helpLine()))
	return sb.String()
}

func (m dashboardModel) helpLine() string {
	if m.paying {
		return "q quit · r refresh"
	}
	return fmt.Sprintf("p pay %s %s to %s · r refresh · q quit",
		m.cfg.Units, m.cfg.Symbol, TruncateAddr(m.cfg.Station))
}

func (m dashboardModel) updatedAt() string {
	if !m.loaded {
		return "never"
	}
	return m.lastUpdate.Format("15:04:05")
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.cfg.Fetch()
		if err != nil {
			return statsErrMsg(err.Error())
		}
		return statsMsg(stats)
	}
}

func (m dashboardModel) payCmd() tea.Cmd {
	return func() tea.Msg {
		hash, err := m.cfg.Pay()
		if err != nil {
			return payErrMsg(err.Error())
		}
		return payDoneMsg(hash)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
