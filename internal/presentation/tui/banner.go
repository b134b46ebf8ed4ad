package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                  _                         _",
	"  _ __   ___  _ __| |_ __ _ _ __ __ _ _ __ | |__",
	" | '_ \\ / _ \\| '__| __/ _` | '__/ _` | '_ \\| '_ \\",
	" | |_) | (_) | |  | || (_| | | | (_| | |_) | | | |",
	" | .__/ \\___/|_|   \\__\\__, |_|  \\__,_| .__/|_| |_|",
	" |_|                  |___/          |_|",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the ASCII art banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		// Using a subtle gradient-like color scheme (Indigo/Violet)
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}

// Status formats a short status word, green for success and red otherwise.
func Status(w io.Writer, ok bool, msg string) string {
	p := termenv.NewOutput(w).ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(msg).Foreground(p.Color(color)).Bold().String()
}
