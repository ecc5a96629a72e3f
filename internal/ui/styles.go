package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: verified, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: prompts
	ColorError     = lipgloss.Color("#FF4444") // red: errors, secrets
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, accounts, hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorNetwork   = lipgloss.Color("#9B5DE5") // purple: network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selection, headers
	ColorInfo      = lipgloss.Color("#4EA8DE")
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the hethers banner shown by the bare root command.
func Banner(version string) string {
	art := `
  _          _   _
 | |__   ___| |_| |__   ___ _ __ ___
 | '_ \ / _ \ __| '_ \ / _ \ '__/ __|
 | | | |  __/ |_| | | |  __/ |  \__ \
 |_| |_|\___|\__|_| |_|\___|_|  |___/`

	tagline := StyleMeta.Render("   Hedera ABI codec and dual-curve wallet  " + version)
	return StyleNetwork.Render(art) + "\n" + tagline + "\n"
}

func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

func Err(msg string) string { return StyleError.Render("✗ " + msg) }

func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a follow-up suggestion, usually a command to run next.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

func Addr(a string) string { return StyleAddress.Render(a) }

func Val(v string) string { return StyleValue.Render(v) }

func Meta(m string) string { return StyleMeta.Render(m) }

func NetworkName(n string) string { return StyleNetwork.Render(n) }

// Secret renders key material in the error color so it stands out on screen.
func Secret(s string) string { return StyleError.Render(s) }

// TruncateAddr shortens an address for display: 0x1234…5678. Account ids
// are short enough to stay whole.
func TruncateAddr(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
