package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess = lipgloss.Color("#00D26A") // green  — confirmed, success
	ColorWarning = lipgloss.Color("#FFB800") // yellow — pending, warning
	ColorError   = lipgloss.Color("#FF4444") // red    — error, rejected
	ColorAddress = lipgloss.Color("#00B4D8") // cyan   — addresses, hashes
	ColorValue   = lipgloss.Color("#FFFFFF") // white bold — balances
	ColorMeta    = lipgloss.Color("#555555") // dim gray  — timestamps, metadata
	ColorAccent  = lipgloss.Color("#7CFC00") // bright green — brand
	ColorBorder  = lipgloss.Color("#1E3A5F") // dark blue — UI chrome
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StyleNotice = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Foreground(ColorError).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// Banner returns the voltcli ASCII banner.
func Banner() string {
	art := `
  ██╗   ██╗ ██████╗ ██╗  ████████╗
  ██║   ██║██╔═══██╗██║  ╚══██╔══╝
  ██║   ██║██║   ██║██║     ██║
  ╚██╗ ██╔╝██║   ██║██║     ██║
   ╚████╔╝ ╚██████╔╝███████╗██║
    ╚═══╝   ╚═════╝ ╚══════╝╚═╝`

	tagline := StyleMeta.Render("     EV charging payments, from the terminal ⚡")
	return StyleAccent.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Notice renders a blocking, bordered notice (provider missing etc.).
func Notice(msg string) string { return StyleNotice.Render(msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
