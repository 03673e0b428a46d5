// Package style holds the brand colors, icons, and banner used by jig's terminal output.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Brand Colors.
var (
	Ember  = lipgloss.Color("#F46036")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Cyan   = lipgloss.Color("#0EA5E9")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)

var (
	bannerName    = lipgloss.NewStyle().Bold(true).Foreground(Ember)
	bannerVersion = lipgloss.NewStyle().Foreground(Slate)
	timestamp     = lipgloss.NewStyle().Foreground(Slate)
	urlStyle      = lipgloss.NewStyle().Foreground(Cyan)
)

// Banner renders the startup line naming the site generator and jig versions.
func Banner(jigsawVersion, version string) string {
	return bannerName.Render("JIGSAW") + " " +
		bannerVersion.Render(jigsawVersion) + "  " +
		bannerVersion.Render("plugin v"+strings.TrimPrefix(version, "v"))
}

// Timestamp renders the bracketed wall clock prefix of announcements.
func Timestamp(clock string) string {
	return timestamp.Render("[" + clock + "]")
}

// URL renders a local server address.
func URL(u string) string {
	return urlStyle.Render(u)
}
