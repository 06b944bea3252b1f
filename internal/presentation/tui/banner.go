package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner outputs the ASCII art banner for ErgoWeb along with the
// version. It is skipped when stdout is not a terminal so piped output
// stays clean.
func PrintBanner(version string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	p := termenv.ColorProfile()
	// Subtle gradient color scheme (Indigo/Violet)
	lines := []string{
		"  ______                __          __     _     ",
		" |  ____|               \\ \\        / /    | |    ",
		" | |__   _ __ __ _  ___  \\ \\  /\\  / /__ __| |__  ",
		" |  __| | '__/ _` |/ _ \\  \\ \\/  \\/ / _ \\ _ \\ '_ \\ ",
		" | |____| | | (_| | (_) |  \\  /\\  /  __/ |_) | ) |",
		" |______|_|  \\__, |\\___/    \\/  \\/ \\___|_.__/|_._/",
		"              __/ |                               ",
		"             |___/                                ",
	}
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185", "#fb7185", "#fb7185"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Println(termenv.String("  ergogen studio " + strings.TrimSpace(version)).Faint())
	fmt.Println()
}
