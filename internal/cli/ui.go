package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// stdout receives all user-facing output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var (
	teal  = lipgloss.Color("36")
	green = lipgloss.Color("35")
	amber = lipgloss.Color("220")
	red   = lipgloss.Color("167")
	sky   = lipgloss.Color("75")
	white = lipgloss.Color("255")
	gray  = lipgloss.Color("245")
	muted = lipgloss.Color("240")
)

var (
	StyleDim    = lipgloss.NewStyle().Foreground(muted)
	StyleValue  = lipgloss.NewStyle().Foreground(white)
	StyleNumber = lipgloss.NewStyle().Foreground(teal)

	styleIconSpinner = lipgloss.NewStyle().Foreground(teal)
	styleKey         = lipgloss.NewStyle().Foreground(gray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(sky)
)

// A marker is the styled glyph at the start of a status line.
type marker struct {
	glyph string
	style lipgloss.Style
	tint  bool // also colour the message
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(green), false}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(red), false}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(amber), true}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(gray), false}
)

func (m marker) println(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if m.tint {
		msg = m.style.Render(msg)
	}
	fmt.Fprintln(stdout, m.style.Render(m.glyph), msg)
}

func printSuccess(format string, args ...any) { markSuccess.println(format, args...) }
func printError(format string, args ...any)   { markError.println(format, args...) }
func printWarning(format string, args ...any) { markWarning.println(format, args...) }
func printInfo(format string, args ...any)    { markInfo.println(format, args...) }

// printDetail prints an indented muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, " ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, " ", StyleDim.Render("→"), StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key), StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

// stats is the summary line under a command's result. Zero fields are left
// out; the cache column appears only for commands that go through a runner.
type stats struct {
	nodes     int
	branches  int
	voxels    int
	bytes     int
	elapsed   time.Duration
	showCache bool
	cached    bool
}

func (s stats) columns() []string {
	var cols []string
	count := func(n int, unit string) {
		if n > 0 {
			cols = append(cols, StyleDim.Render(humanize.Comma(int64(n))+" "+unit))
		}
	}
	count(s.nodes, "nodes")
	count(s.branches, "branches")
	count(s.voxels, "voxels")
	if s.bytes > 0 {
		cols = append(cols, StyleDim.Render(humanize.Bytes(uint64(s.bytes))))
	}
	if s.elapsed > 0 {
		cols = append(cols, StyleDim.Render(s.elapsed.Round(time.Millisecond).String()))
	}
	switch {
	case !s.showCache:
	case s.cached:
		cols = append(cols, markSuccess.style.Render("cached"))
	default:
		cols = append(cols, lipgloss.NewStyle().Foreground(gray).Render("fresh"))
	}
	return cols
}

func printStats(s stats) {
	fmt.Fprintln(stdout, "  "+strings.Join(s.columns(), StyleDim.Render(" · ")))
}
